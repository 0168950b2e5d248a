package report_repo

import (
	"strings"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/FAb114/factusystem-reports/internal/domain/reports"
)

func baseQuery() squirrel.SelectBuilder {
	return squirrel.StatementBuilder.
		PlaceholderFormat(squirrel.Dollar).
		Select("s.id").
		From("sales s")
}

func testFilter() reports.FilterSet {
	return reports.FilterSet{
		DateFrom:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DateTo:        time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		BranchID:      reports.All,
		UserID:        reports.All,
		CategoryID:    reports.All,
		PaymentMethod: reports.All,
	}
}

func salesColumns() filterColumns {
	return filterColumns{
		date:   "s.date",
		branch: "s.branch_id",
		user:   "s.user_id",
		method: "s.payment_method",
		voided: "s.voided",
	}
}

func TestApplyFilter_DateRangeInclusive(t *testing.T) {
	q := applyFilter(baseQuery(), testFilter(), salesColumns())

	sql, args, err := q.ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	if !strings.Contains(sql, "s.date >= $1") {
		t.Errorf("missing lower bound: %s", sql)
	}
	if !strings.Contains(sql, "s.date < $2") {
		t.Errorf("missing upper bound: %s", sql)
	}

	// Inclusive upper bound: pushed to the start of the next day.
	upper, ok := args[1].(time.Time)
	if !ok {
		t.Fatalf("upper bound arg is %T", args[1])
	}
	want := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	if !upper.Equal(want) {
		t.Errorf("upper bound: want %v, got %v", want, upper)
	}
}

func TestApplyFilter_AllSelectorsAddNoConditions(t *testing.T) {
	q := applyFilter(baseQuery(), testFilter(), salesColumns())

	sql, args, err := q.ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	// Date bounds plus the voided exclusion; nothing else.
	if len(args) != 3 {
		t.Errorf("args: want 3, got %d (%s)", len(args), sql)
	}
	if !strings.Contains(sql, "s.voided = $3") {
		t.Errorf("missing voided exclusion: %s", sql)
	}
}

func TestApplyFilter_ConcreteSelectors(t *testing.T) {
	f := testFilter()
	f.BranchID = "018e7a2b-64c8-7f3a-9d21-0242ac120002"
	f.PaymentMethod = "efectivo"

	q := applyFilter(baseQuery(), f, salesColumns())
	sql, args, err := q.ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	if !strings.Contains(sql, "s.branch_id = ") {
		t.Errorf("missing branch condition: %s", sql)
	}
	if !strings.Contains(sql, "s.payment_method = ") {
		t.Errorf("missing payment method condition: %s", sql)
	}
	if len(args) != 5 {
		t.Errorf("args: want 5, got %d", len(args))
	}
}

func TestApplyFilter_IncludeVoided(t *testing.T) {
	f := testFilter()
	f.IncludeVoided = true

	q := applyFilter(baseQuery(), f, salesColumns())
	sql, _, err := q.ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	if strings.Contains(sql, "voided") {
		t.Errorf("voided condition should be absent: %s", sql)
	}
}

func TestApplyFilter_MissingColumnSkipsDimension(t *testing.T) {
	f := testFilter()
	f.CategoryID = "018e7a2b-64c8-7f3a-9d21-0242ac120002"

	cols := salesColumns() // no category column
	q := applyFilter(baseQuery(), f, cols)
	sql, _, err := q.ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	if strings.Contains(sql, "category") {
		t.Errorf("category condition should be absent: %s", sql)
	}
}
