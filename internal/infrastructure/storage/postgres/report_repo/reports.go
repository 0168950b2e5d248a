// Package report_repo provides the PostgreSQL implementation of the report
// data access interface.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/FAb114/factusystem-reports/internal/core/id"
	"github.com/FAb114/factusystem-reports/internal/core/types"
	"github.com/FAb114/factusystem-reports/internal/domain/reports"
)

var tracer = otel.Tracer("factusystem/report_repo")

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	pool    *pgxpool.Pool
	builder squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{
		pool:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// SalesTransactions fetches sales matching the filter, newest first.
func (r *ReportRepo) SalesTransactions(ctx context.Context, f reports.FilterSet) ([]reports.Transaction, error) {
	ctx, span := tracer.Start(ctx, "report_repo.SalesTransactions")
	defer span.End()

	q := r.builder.
		Select(
			"s.id",
			"s.date",
			"s.number",
			"'venta' AS type",
			"s.total AS amount",
			"s.payment_method",
			"s.user_id",
			"COALESCE(u.name, '') AS user_name",
			"s.branch_id",
			"COALESCE(b.name, '') AS branch_name",
			"NULL::uuid AS category_id",
			"'' AS category_name",
			"s.customer_id AS party_id",
			"COALESCE(c.name, '') AS party_name",
			"COALESCE(c.tax_id, '') AS party_tax_id",
			"s.voided",
		).
		From("sales s").
		LeftJoin("users u ON u.id = s.user_id").
		LeftJoin("branches b ON b.id = s.branch_id").
		LeftJoin("customers c ON c.id = s.customer_id")

	q = applyFilter(q, f, filterColumns{
		date:   "s.date",
		branch: "s.branch_id",
		user:   "s.user_id",
		method: "s.payment_method",
		voided: "s.voided",
	})

	// Category lives on the product lines, not the sale header.
	if !f.CategoryID.IsAll() {
		q = q.Where(squirrel.Expr(
			`EXISTS (
				SELECT 1 FROM sale_items si
				JOIN products p ON p.id = si.product_id
				WHERE si.sale_id = s.id AND p.category_id = ?
			)`, f.CategoryID.String()))
	}

	q = q.OrderBy("s.date DESC", "s.number DESC")

	txs, err := r.selectTransactions(ctx, q)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("sales transactions: %w", err)
	}
	span.SetAttributes(attribute.Int("rows", len(txs)))
	return txs, nil
}

// PurchaseTransactions fetches purchases matching the filter, newest first.
func (r *ReportRepo) PurchaseTransactions(ctx context.Context, f reports.FilterSet) ([]reports.Transaction, error) {
	ctx, span := tracer.Start(ctx, "report_repo.PurchaseTransactions")
	defer span.End()

	q := r.builder.
		Select(
			"p.id",
			"p.date",
			"p.number",
			"'compra' AS type",
			"p.total AS amount",
			"p.payment_method",
			"p.user_id",
			"COALESCE(u.name, '') AS user_name",
			"p.branch_id",
			"COALESCE(b.name, '') AS branch_name",
			"p.category_id",
			"COALESCE(cat.name, '') AS category_name",
			"p.supplier_id AS party_id",
			"COALESCE(sup.name, '') AS party_name",
			"COALESCE(sup.tax_id, '') AS party_tax_id",
			"p.voided",
		).
		From("purchases p").
		LeftJoin("users u ON u.id = p.user_id").
		LeftJoin("branches b ON b.id = p.branch_id").
		LeftJoin("categories cat ON cat.id = p.category_id").
		LeftJoin("suppliers sup ON sup.id = p.supplier_id")

	q = applyFilter(q, f, filterColumns{
		date:     "p.date",
		branch:   "p.branch_id",
		user:     "p.user_id",
		category: "p.category_id",
		method:   "p.payment_method",
		voided:   "p.voided",
	})

	q = q.OrderBy("p.date DESC", "p.number DESC")

	txs, err := r.selectTransactions(ctx, q)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("purchase transactions: %w", err)
	}
	span.SetAttributes(attribute.Int("rows", len(txs)))
	return txs, nil
}

// CashMovements fetches cash-register movements matching the filter, newest first.
func (r *ReportRepo) CashMovements(ctx context.Context, f reports.FilterSet) ([]reports.Transaction, error) {
	ctx, span := tracer.Start(ctx, "report_repo.CashMovements")
	defer span.End()

	q := r.builder.
		Select(
			"m.id",
			"m.date",
			"COALESCE(m.reference, '') AS number",
			"m.type",
			"m.amount",
			"m.payment_method",
			"m.user_id",
			"COALESCE(u.name, '') AS user_name",
			"m.branch_id",
			"COALESCE(b.name, '') AS branch_name",
			"NULL::uuid AS category_id",
			"'' AS category_name",
			"NULL::uuid AS party_id",
			"'' AS party_name",
			"'' AS party_tax_id",
			"m.voided",
		).
		From("cash_movements m").
		LeftJoin("users u ON u.id = m.user_id").
		LeftJoin("branches b ON b.id = m.branch_id")

	q = applyFilter(q, f, filterColumns{
		date:   "m.date",
		branch: "m.branch_id",
		user:   "m.user_id",
		method: "m.payment_method",
		voided: "m.voided",
	})

	q = q.OrderBy("m.date DESC")

	txs, err := r.selectTransactions(ctx, q)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("cash movements: %w", err)
	}
	span.SetAttributes(attribute.Int("rows", len(txs)))
	return txs, nil
}

// FiscalEntries fetches fiscal book entries in ascending date order with
// their VAT breakdown attached.
func (r *ReportRepo) FiscalEntries(ctx context.Context, book reports.BookKind, f reports.FilterSet) ([]reports.Transaction, error) {
	ctx, span := tracer.Start(ctx, "report_repo.FiscalEntries")
	defer span.End()
	span.SetAttributes(attribute.String("book", string(book)))

	var q squirrel.SelectBuilder
	taxTable := ""
	taxFK := ""

	switch book {
	case reports.BookSales:
		q = r.builder.
			Select(
				"s.id", "s.date", "s.number",
				"'venta' AS type",
				"s.total AS amount",
				"s.payment_method",
				"s.user_id", "COALESCE(u.name, '') AS user_name",
				"s.branch_id", "COALESCE(b.name, '') AS branch_name",
				"NULL::uuid AS category_id", "'' AS category_name",
				"s.customer_id AS party_id",
				"COALESCE(c.name, '') AS party_name",
				"COALESCE(c.tax_id, '') AS party_tax_id",
				"s.voided",
			).
			From("sales s").
			LeftJoin("users u ON u.id = s.user_id").
			LeftJoin("branches b ON b.id = s.branch_id").
			LeftJoin("customers c ON c.id = s.customer_id")
		q = applyFilter(q, f, filterColumns{
			date:   "s.date",
			branch: "s.branch_id",
			user:   "s.user_id",
			voided: "s.voided",
		})
		// Regulatory presentation order is oldest first.
		q = q.OrderBy("s.date ASC", "s.number ASC")
		taxTable, taxFK = "sale_taxes", "sale_id"

	case reports.BookPurchases:
		q = r.builder.
			Select(
				"p.id", "p.date", "p.number",
				"'compra' AS type",
				"p.total AS amount",
				"p.payment_method",
				"p.user_id", "COALESCE(u.name, '') AS user_name",
				"p.branch_id", "COALESCE(b.name, '') AS branch_name",
				"p.category_id", "COALESCE(cat.name, '') AS category_name",
				"p.supplier_id AS party_id",
				"COALESCE(sup.name, '') AS party_name",
				"COALESCE(sup.tax_id, '') AS party_tax_id",
				"p.voided",
			).
			From("purchases p").
			LeftJoin("users u ON u.id = p.user_id").
			LeftJoin("branches b ON b.id = p.branch_id").
			LeftJoin("categories cat ON cat.id = p.category_id").
			LeftJoin("suppliers sup ON sup.id = p.supplier_id")
		q = applyFilter(q, f, filterColumns{
			date:   "p.date",
			branch: "p.branch_id",
			user:   "p.user_id",
			voided: "p.voided",
		})
		q = q.OrderBy("p.date ASC", "p.number ASC")
		taxTable, taxFK = "purchase_taxes", "purchase_id"

	default:
		return nil, fmt.Errorf("unknown fiscal book: %s", book)
	}

	txs, err := r.selectTransactions(ctx, q)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fiscal entries (%s): %w", book, err)
	}

	if err := r.attachTaxes(ctx, txs, taxTable, taxFK); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fiscal taxes (%s): %w", book, err)
	}

	span.SetAttributes(attribute.Int("rows", len(txs)))
	return txs, nil
}

// LineItems fetches the product lines of one transaction.
func (r *ReportRepo) LineItems(ctx context.Context, kind reports.Kind, txID id.ID) ([]reports.LineItem, error) {
	var table, fk string
	switch kind {
	case reports.KindSales:
		table, fk = "sale_items", "sale_id"
	case reports.KindPurchases:
		table, fk = "purchase_items", "purchase_id"
	default:
		return nil, fmt.Errorf("report kind %s has no line items", kind)
	}

	q := r.builder.
		Select(
			"i.product_id",
			"COALESCE(p.name, '') AS product_name",
			"i.quantity",
			"i.unit_price",
			"i.subtotal",
		).
		From(table + " i").
		LeftJoin("products p ON p.id = i.product_id").
		Where(squirrel.Eq{"i." + fk: txID}).
		OrderBy("p.name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build line items query: %w", err)
	}

	var items []reports.LineItem
	if err := pgxscan.Select(ctx, r.pool, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("line items for %s: %w", txID, err)
	}
	return items, nil
}

// StockItems fetches the stock report rows: current levels plus the trailing
// sales windows the forecaster needs. Raw SQL: the correlated window
// subqueries do not fit the builder cleanly.
func (r *ReportRepo) StockItems(ctx context.Context, f reports.FilterSet) ([]reports.StockItem, error) {
	ctx, span := tracer.Start(ctx, "report_repo.StockItems")
	defer span.End()

	query := `
		SELECT
			p.id AS product_id,
			p.name AS product_name,
			COALESCE(p.sku, '') AS product_sku,
			p.category_id,
			COALESCE(c.name, '') AS category_name,
			p.stock AS current_stock,
			p.min_stock,
			COALESCE((
				SELECT SUM(si.quantity)
				FROM sale_items si
				JOIN sales s ON s.id = si.sale_id
				WHERE si.product_id = p.id
				  AND NOT s.voided
				  AND s.date >= now() - interval '30 days'
			), 0) AS sold_last_30,
			COALESCE((
				SELECT SUM(si.quantity)
				FROM sale_items si
				JOIN sales s ON s.id = si.sale_id
				WHERE si.product_id = p.id
				  AND NOT s.voided
				  AND s.date >= now() - interval '90 days'
			), 0) AS sold_last_90
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.active
	`
	var args []any
	if !f.CategoryID.IsAll() {
		query += " AND p.category_id = $1"
		args = append(args, f.CategoryID.String())
	}
	query += " ORDER BY p.name"

	var items []reports.StockItem
	if err := pgxscan.Select(ctx, r.pool, &items, query, args...); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("stock items: %w", err)
	}
	span.SetAttributes(attribute.Int("rows", len(items)))
	return items, nil
}

// selectTransactions builds and runs a transaction query.
func (r *ReportRepo) selectTransactions(ctx context.Context, q squirrel.SelectBuilder) ([]reports.Transaction, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var txs []reports.Transaction
	if err := pgxscan.Select(ctx, r.pool, &txs, sql, args...); err != nil {
		return nil, err
	}
	return txs, nil
}

// taxRow is one VAT component row keyed back to its transaction.
type taxRow struct {
	TxID   id.ID       `db:"tx_id"`
	Rate   types.Rate  `db:"rate"`
	Base   types.Money `db:"base"`
	Amount types.Money `db:"amount"`
}

// attachTaxes loads the VAT breakdown for all given transactions in one
// query and attaches the lines in memory.
func (r *ReportRepo) attachTaxes(ctx context.Context, txs []reports.Transaction, table, fk string) error {
	if len(txs) == 0 {
		return nil
	}

	ids := make([]id.ID, len(txs))
	index := make(map[id.ID]int, len(txs))
	for i, t := range txs {
		ids[i] = t.ID
		index[t.ID] = i
	}

	q := r.builder.
		Select(fk+" AS tx_id", "rate", "base", "amount").
		From(table).
		Where(squirrel.Eq{fk: ids})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build tax query: %w", err)
	}

	var rows []taxRow
	if err := pgxscan.Select(ctx, r.pool, &rows, sql, args...); err != nil {
		return err
	}

	for _, row := range rows {
		i, ok := index[row.TxID]
		if !ok {
			continue
		}
		txs[i].Taxes = append(txs[i].Taxes, reports.TaxLine{
			Rate:   row.Rate,
			Base:   row.Base,
			Amount: row.Amount,
		})
	}
	return nil
}

// Ensure interface compliance
var _ reports.Repository = (*ReportRepo)(nil)
