package reports

import (
	"context"
	"errors"
	"time"

	"github.com/FAb114/factusystem-reports/internal/core/apperror"
	appctx "github.com/FAb114/factusystem-reports/internal/core/context"
	"github.com/FAb114/factusystem-reports/internal/domain/audit"
	"github.com/FAb114/factusystem-reports/pkg/logger"
)

// Service generates reports. Generations are guarded per client and report
// kind so a client's newer request supersedes their own in-flight one, while
// concurrent clients never cross-contaminate.
type Service struct {
	repo     Repository
	recorder audit.Recorder
	now      func() time.Time

	sessions sessionRegistry
}

// NewService creates a new reports service.
func NewService(repo Repository, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{
		repo:     repo,
		recorder: recorder,
		now:      time.Now,
	}
}

// Sales generates the sales report.
func (s *Service) Sales(ctx context.Context, raw RawFilter) (*SalesReport, error) {
	f, err := Normalize(raw, s.now())
	if err != nil {
		return nil, err
	}

	ctx, guard, seq := s.sessions.begin(ctx, KindSales)

	txs, err := s.repo.SalesTransactions(ctx, f)
	if err != nil {
		return nil, s.fetchErr(KindSales, guard, seq, err)
	}
	if err := s.loadLineItems(ctx, KindSales, txs); err != nil {
		return nil, s.fetchErr(KindSales, guard, seq, err)
	}
	if !guard.active(seq) {
		return nil, apperror.NewSuperseded(string(KindSales))
	}

	byMethod := Aggregate(txs, "payment_method", ByPaymentMethod, ClassifyIngress, f.IncludeVoided)

	report := &SalesReport{
		Filter:          f,
		Transactions:    txs,
		ByPaymentMethod: byMethod,
		ByUser:          Aggregate(txs, "user", ByUser, ClassifyIngress, f.IncludeVoided),
		ByBranch:        Aggregate(txs, "branch", ByBranch, ClassifyIngress, f.IncludeVoided),
		ByDay:           Aggregate(txs, "day", ByDay, ClassifyIngress, f.IncludeVoided),
		Totals:          byMethod.GrandTotal,
		GeneratedAt:     s.now(),
	}

	s.record(ctx, KindSales, f, len(txs))
	return report, nil
}

// Purchases generates the purchases report.
func (s *Service) Purchases(ctx context.Context, raw RawFilter) (*PurchasesReport, error) {
	f, err := Normalize(raw, s.now())
	if err != nil {
		return nil, err
	}

	ctx, guard, seq := s.sessions.begin(ctx, KindPurchases)

	txs, err := s.repo.PurchaseTransactions(ctx, f)
	if err != nil {
		return nil, s.fetchErr(KindPurchases, guard, seq, err)
	}
	if err := s.loadLineItems(ctx, KindPurchases, txs); err != nil {
		return nil, s.fetchErr(KindPurchases, guard, seq, err)
	}
	if !guard.active(seq) {
		return nil, apperror.NewSuperseded(string(KindPurchases))
	}

	bySupplier := Aggregate(txs, "supplier", ByParty, ClassifyEgress, f.IncludeVoided)

	report := &PurchasesReport{
		Filter:       f,
		Transactions: txs,
		BySupplier:   bySupplier,
		ByCategory:   Aggregate(txs, "category", ByCategory, ClassifyEgress, f.IncludeVoided),
		ByBranch:     Aggregate(txs, "branch", ByBranch, ClassifyEgress, f.IncludeVoided),
		ByMonth:      Aggregate(txs, "month", ByMonth, ClassifyEgress, f.IncludeVoided),
		Totals:       bySupplier.GrandTotal,
		GeneratedAt:  s.now(),
	}

	s.record(ctx, KindPurchases, f, len(txs))
	return report, nil
}

// Cash generates the cash-register report.
func (s *Service) Cash(ctx context.Context, raw RawFilter) (*CashReport, error) {
	f, err := Normalize(raw, s.now())
	if err != nil {
		return nil, err
	}

	ctx, guard, seq := s.sessions.begin(ctx, KindCash)

	movements, err := s.repo.CashMovements(ctx, f)
	if err != nil {
		return nil, s.fetchErr(KindCash, guard, seq, err)
	}
	if !guard.active(seq) {
		return nil, apperror.NewSuperseded(string(KindCash))
	}

	byType := Aggregate(movements, "type", ByType, ClassifyCashMovement, f.IncludeVoided)
	if byType.Unclassified > 0 {
		logger.Warn(ctx, "cash movements with unclassified type excluded from totals",
			"count", byType.Unclassified,
		)
	}

	report := &CashReport{
		Filter:          f,
		Movements:       movements,
		ByType:          byType,
		ByPaymentMethod: Aggregate(movements, "payment_method", ByPaymentMethod, ClassifyCashMovement, f.IncludeVoided),
		ByUser:          Aggregate(movements, "user", ByUser, ClassifyCashMovement, f.IncludeVoided),
		ByDay:           Aggregate(movements, "day", ByDay, ClassifyCashMovement, f.IncludeVoided),
		Totals:          byType.GrandTotal,
		Unclassified:    byType.Unclassified,
		GeneratedAt:     s.now(),
	}

	s.record(ctx, KindCash, f, len(movements))
	return report, nil
}

// Stock generates the stock report with reorder suggestions.
func (s *Service) Stock(ctx context.Context, raw RawFilter) (*StockReport, error) {
	f, err := Normalize(raw, s.now())
	if err != nil {
		return nil, err
	}

	ctx, guard, seq := s.sessions.begin(ctx, KindStock)

	items, err := s.repo.StockItems(ctx, f)
	if err != nil {
		return nil, s.fetchErr(KindStock, guard, seq, err)
	}
	if !guard.active(seq) {
		return nil, apperror.NewSuperseded(string(KindStock))
	}

	lowStock := 0
	for _, it := range items {
		if it.CurrentStock <= it.MinStock {
			lowStock++
		}
	}

	report := &StockReport{
		Filter:        f,
		Items:         items,
		TotalProducts: len(items),
		LowStockCount: lowStock,
		Suggestions:   Forecast(items, s.now()),
		GeneratedAt:   s.now(),
	}

	s.record(ctx, KindStock, f, len(items))
	return report, nil
}

// Fiscal generates a fiscal book (Libro IVA ventas or compras).
func (s *Service) Fiscal(ctx context.Context, book BookKind, raw RawFilter) (*FiscalBook, error) {
	if !book.Valid() {
		return nil, apperror.NewValidation("unknown fiscal book").WithDetail("book", string(book))
	}

	f, err := Normalize(raw, s.now())
	if err != nil {
		return nil, err
	}

	ctx, guard, seq := s.sessions.begin(ctx, KindFiscal)

	entries, err := s.repo.FiscalEntries(ctx, book, f)
	if err != nil {
		return nil, s.fetchErr(KindFiscal, guard, seq, err)
	}
	if !guard.active(seq) {
		return nil, apperror.NewSuperseded(string(KindFiscal))
	}

	byRate := TaxTotals(entries, f.IncludeVoided)

	report := &FiscalBook{
		Book:        book,
		Filter:      f,
		Entries:     entries,
		ByRate:      byRate,
		GeneratedAt: s.now(),
	}
	for _, b := range byRate {
		report.TotalBase = report.TotalBase.Add(b.Base)
		report.TotalTax = report.TotalTax.Add(b.Amount)
	}
	report.TotalAmount = report.TotalBase.Add(report.TotalTax)

	s.record(ctx, KindFiscal, f, len(entries))
	return report, nil
}

// loadLineItems enriches transactions with their product lines, one query
// per transaction, sequentially.
func (s *Service) loadLineItems(ctx context.Context, kind Kind, txs []Transaction) error {
	for i := range txs {
		items, err := s.repo.LineItems(ctx, kind, txs[i].ID)
		if err != nil {
			return err
		}
		txs[i].LineItems = items
	}
	return nil
}

// fetchErr maps a repository failure to the right client-facing error:
// a cancellation caused by a newer generation becomes a superseded conflict,
// anything else a generic load failure.
func (s *Service) fetchErr(kind Kind, g *sessionGuard, seq uint64, err error) error {
	if errors.Is(err, context.Canceled) && !g.active(seq) {
		return apperror.NewSuperseded(string(kind))
	}
	return apperror.NewDatabase(err)
}

// record writes a best-effort audit entry for a completed generation.
func (s *Service) record(ctx context.Context, kind Kind, f FilterSet, rows int) {
	s.recorder.Record(ctx, audit.Entry{
		Action: audit.ActionGenerate,
		Module: "reports." + string(kind),
		UserID: appctx.GetUserID(ctx),
		Details: map[string]any{
			"date_from": f.DateFrom.Format(DateLayout),
			"date_to":   f.DateTo.Format(DateLayout),
			"rows":      rows,
		},
	})
}
