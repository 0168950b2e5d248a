package report_repo

import (
	"github.com/Masterminds/squirrel"

	"github.com/FAb114/factusystem-reports/internal/domain/reports"
)

// filterColumns maps FilterSet dimensions to the columns of one report
// query. An empty column name means the dimension does not apply.
type filterColumns struct {
	date     string
	branch   string
	user     string
	category string
	method   string
	voided   string
}

// applyFilter adds the canonical filter conditions to a select builder.
// The date range is inclusive on both ends (the upper bound is pushed to
// the start of the next day).
func applyFilter(q squirrel.SelectBuilder, f reports.FilterSet, cols filterColumns) squirrel.SelectBuilder {
	q = q.
		Where(squirrel.GtOrEq{cols.date: f.DateFrom}).
		Where(squirrel.Lt{cols.date: f.DateTo.AddDate(0, 0, 1)})

	if cols.branch != "" && !f.BranchID.IsAll() {
		q = q.Where(squirrel.Eq{cols.branch: f.BranchID.String()})
	}
	if cols.user != "" && !f.UserID.IsAll() {
		q = q.Where(squirrel.Eq{cols.user: f.UserID.String()})
	}
	if cols.category != "" && !f.CategoryID.IsAll() {
		q = q.Where(squirrel.Eq{cols.category: f.CategoryID.String()})
	}
	if cols.method != "" && !f.PaymentMethod.IsAll() {
		q = q.Where(squirrel.Eq{cols.method: f.PaymentMethod.String()})
	}
	if cols.voided != "" && !f.IncludeVoided {
		q = q.Where(squirrel.Eq{cols.voided: false})
	}

	return q
}
