package reports

import (
	"testing"
	"time"

	"github.com/FAb114/factusystem-reports/internal/core/apperror"
)

var testNow = time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalize_Dates(t *testing.T) {
	tests := []struct {
		name     string
		raw      RawFilter
		wantFrom time.Time
		wantTo   time.Time
	}{
		{
			name:     "empty defaults to trailing 30 days",
			raw:      RawFilter{},
			wantFrom: date(2026, 2, 13),
			wantTo:   date(2026, 3, 15),
		},
		{
			name:     "only dateTo anchors the default window",
			raw:      RawFilter{DateTo: "2026-01-31"},
			wantFrom: date(2026, 1, 1),
			wantTo:   date(2026, 1, 31),
		},
		{
			name:     "explicit range kept as-is",
			raw:      RawFilter{DateFrom: "2026-01-01", DateTo: "2026-01-31"},
			wantFrom: date(2026, 1, 1),
			wantTo:   date(2026, 1, 31),
		},
		{
			name:     "inverted range snaps dateFrom to dateTo",
			raw:      RawFilter{DateFrom: "2026-02-10", DateTo: "2026-02-01"},
			wantFrom: date(2026, 2, 1),
			wantTo:   date(2026, 2, 1),
		},
		{
			name:     "single day range",
			raw:      RawFilter{DateFrom: "2026-03-01", DateTo: "2026-03-01"},
			wantFrom: date(2026, 3, 1),
			wantTo:   date(2026, 3, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Normalize(tt.raw, testNow)
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}
			if !f.DateFrom.Equal(tt.wantFrom) {
				t.Errorf("DateFrom\nwant: %v\ngot:  %v", tt.wantFrom, f.DateFrom)
			}
			if !f.DateTo.Equal(tt.wantTo) {
				t.Errorf("DateTo\nwant: %v\ngot:  %v", tt.wantTo, f.DateTo)
			}
		})
	}
}

func TestNormalize_DefaultTodayIsLocalMidnight(t *testing.T) {
	// UTC midnight truncation would put "today" on 2026-03-16 here.
	tz := time.FixedZone("ART", -3*60*60)
	now := time.Date(2026, 3, 15, 22, 30, 0, 0, tz)

	f, err := Normalize(RawFilter{}, now)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	want := time.Date(2026, 3, 15, 0, 0, 0, 0, tz)
	if !f.DateTo.Equal(want) {
		t.Errorf("DateTo\nwant: %v\ngot:  %v", want, f.DateTo)
	}
	if f.DateTo.Location() != tz {
		t.Errorf("DateTo location changed: %v", f.DateTo.Location())
	}
}

func TestNormalize_InvalidDate(t *testing.T) {
	for _, raw := range []RawFilter{
		{DateFrom: "15/03/2026"},
		{DateTo: "not-a-date"},
		{DateFrom: "2026-13-40"},
	} {
		_, err := Normalize(raw, testNow)
		if err == nil {
			t.Fatalf("expected validation error for %+v", raw)
		}
		appErr, ok := apperror.AsAppError(err)
		if !ok || appErr.Code != apperror.CodeValidation {
			t.Errorf("expected %s, got %v", apperror.CodeValidation, err)
		}
	}
}

func TestNormalize_Selectors(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  Selector
	}{
		{"empty means all", "", All},
		{"all passes through", "all", All},
		{"spanish sentinel", "todos", All},
		{"case insensitive sentinel", "TODOS", All},
		{"malformed uuid degrades to all", "not-a-uuid", All},
		{"valid uuid kept", "018e7a2b-64c8-7f3a-9d21-0242ac120002", "018e7a2b-64c8-7f3a-9d21-0242ac120002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Normalize(RawFilter{BranchID: tt.value}, testNow)
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}
			if f.BranchID != tt.want {
				t.Errorf("BranchID\nwant: %s\ngot:  %s", tt.want, f.BranchID)
			}
		})
	}
}

func TestNormalize_PaymentMethodLowercased(t *testing.T) {
	f, err := Normalize(RawFilter{PaymentMethod: "Efectivo"}, testNow)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if f.PaymentMethod != "efectivo" {
		t.Errorf("expected lowercased selector, got %s", f.PaymentMethod)
	}
}
