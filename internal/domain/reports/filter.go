package reports

import (
	"strings"
	"time"

	"github.com/FAb114/factusystem-reports/internal/core/apperror"
	"github.com/FAb114/factusystem-reports/internal/core/id"
)

// All is the sentinel selector value meaning "no filter on this dimension".
const All = "all"

// DateLayout is the wire format for filter dates.
const DateLayout = "2006-01-02"

// defaultRangeDays is the default report window when no dates are given.
const defaultRangeDays = 30

// Selector is a normalized filter dimension value: either All or a concrete value.
type Selector string

// IsAll reports whether the selector matches everything.
func (s Selector) IsAll() bool {
	return string(s) == All
}

// String returns the raw selector value.
func (s Selector) String() string {
	return string(s)
}

// RawFilter carries filter form values exactly as submitted.
type RawFilter struct {
	DateFrom      string
	DateTo        string
	BranchID      string
	UserID        string
	CategoryID    string
	PaymentMethod string
	IncludeVoided bool
}

// FilterSet is the canonical, validated filter record. Value type,
// reconstructed per report generation.
type FilterSet struct {
	DateFrom      time.Time
	DateTo        time.Time
	BranchID      Selector
	UserID        Selector
	CategoryID    Selector
	PaymentMethod Selector
	IncludeVoided bool
}

// Normalize converts raw form values into a canonical FilterSet.
//
// Defaults to the trailing 30 days when both dates are empty. An inverted
// range is snapped so that DateFrom == DateTo rather than rejected.
// Invalid date strings produce a validation error.
func Normalize(raw RawFilter, now time.Time) (FilterSet, error) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	dateTo, err := parseDate(raw.DateTo, "dateTo")
	if err != nil {
		return FilterSet{}, err
	}
	dateFrom, err := parseDate(raw.DateFrom, "dateFrom")
	if err != nil {
		return FilterSet{}, err
	}

	if dateTo.IsZero() {
		dateTo = today
	}
	if dateFrom.IsZero() {
		dateFrom = dateTo.AddDate(0, 0, -defaultRangeDays)
	}

	// Inverted range: snap the lower bound to match.
	if dateFrom.After(dateTo) {
		dateFrom = dateTo
	}

	return FilterSet{
		DateFrom:      dateFrom,
		DateTo:        dateTo,
		BranchID:      normalizeIDSelector(raw.BranchID),
		UserID:        normalizeIDSelector(raw.UserID),
		CategoryID:    normalizeIDSelector(raw.CategoryID),
		PaymentMethod: normalizeEnumSelector(raw.PaymentMethod),
		IncludeVoided: raw.IncludeVoided,
	}, nil
}

func parseDate(s, field string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, apperror.NewValidation("invalid date").
			WithDetail("field", field).
			WithDetail("value", s)
	}
	return t, nil
}

// normalizeIDSelector maps empty, "all"/"todos" and malformed IDs to All.
func normalizeIDSelector(s string) Selector {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == All || s == "todos" {
		return All
	}
	if _, err := id.Parse(s); err != nil {
		return All
	}
	return Selector(s)
}

// normalizeEnumSelector maps empty and "all"/"todos" to All, otherwise
// lowercases the value.
func normalizeEnumSelector(s string) Selector {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == All || s == "todos" {
		return All
	}
	return Selector(s)
}
