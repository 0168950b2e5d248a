package reports

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/FAb114/factusystem-reports/internal/core/apperror"
	appctx "github.com/FAb114/factusystem-reports/internal/core/context"
	"github.com/FAb114/factusystem-reports/internal/core/id"
	"github.com/FAb114/factusystem-reports/internal/core/types"
	"github.com/FAb114/factusystem-reports/internal/domain/audit"
)

func newTestID() id.ID {
	return id.New()
}

// fakeRepo returns canned data, with per-method hooks for failure injection.
type fakeRepo struct {
	sales     []Transaction
	purchases []Transaction
	movements []Transaction
	fiscal    []Transaction
	lineItems map[id.ID][]LineItem
	stock     []StockItem

	salesFn func(ctx context.Context, f FilterSet) ([]Transaction, error)
}

func (r *fakeRepo) SalesTransactions(ctx context.Context, f FilterSet) ([]Transaction, error) {
	if r.salesFn != nil {
		return r.salesFn(ctx, f)
	}
	return r.sales, nil
}

func (r *fakeRepo) PurchaseTransactions(ctx context.Context, f FilterSet) ([]Transaction, error) {
	return r.purchases, nil
}

func (r *fakeRepo) CashMovements(ctx context.Context, f FilterSet) ([]Transaction, error) {
	return r.movements, nil
}

func (r *fakeRepo) FiscalEntries(ctx context.Context, book BookKind, f FilterSet) ([]Transaction, error) {
	return r.fiscal, nil
}

func (r *fakeRepo) LineItems(ctx context.Context, kind Kind, txID id.ID) ([]LineItem, error) {
	return r.lineItems[txID], nil
}

func (r *fakeRepo) StockItems(ctx context.Context, f FilterSet) ([]StockItem, error) {
	return r.stock, nil
}

// memRecorder captures audit entries for assertions.
type memRecorder struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (r *memRecorder) Record(_ context.Context, e audit.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
}

func (r *memRecorder) last(t *testing.T) audit.Entry {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		t.Fatal("no audit entries recorded")
	}
	return r.entries[len(r.entries)-1]
}

func TestService_Sales(t *testing.T) {
	saleID := newTestID()
	sale := tx("venta", "efectivo", "100.00")
	sale.ID = saleID

	repo := &fakeRepo{
		sales: []Transaction{sale},
		lineItems: map[id.ID][]LineItem{
			saleID: {
				{ProductName: "yerba", Quantity: 2, UnitPrice: types.MustMoney("25.00"), Subtotal: types.MustMoney("50.00")},
			},
		},
	}
	rec := &memRecorder{}
	svc := NewService(repo, rec)

	report, err := svc.Sales(context.Background(), RawFilter{})
	require.NoError(t, err)

	require.Len(t, report.Transactions, 1)
	require.Len(t, report.Transactions[0].LineItems, 1, "line items loaded in second pass")
	require.Equal(t, "100.00", report.Totals.Ingress.StringFixed(2))
	require.Equal(t, "100.00", report.Totals.Balance().StringFixed(2))

	entry := rec.last(t)
	require.Equal(t, audit.ActionGenerate, entry.Action)
	require.Equal(t, "reports.sales", entry.Module)
	require.Equal(t, 1, entry.Details["rows"])
}

func TestService_Cash_UnclassifiedSurfaced(t *testing.T) {
	repo := &fakeRepo{
		movements: []Transaction{
			tx("venta", "efectivo", "100.00"),
			tx("desconocido", "efectivo", "40.00"),
		},
	}
	svc := NewService(repo, nil)

	report, err := svc.Cash(context.Background(), RawFilter{})
	require.NoError(t, err)

	require.Equal(t, 1, report.Unclassified)
	require.Equal(t, "100.00", report.Totals.Ingress.StringFixed(2))
	require.True(t, report.Totals.Egress.IsZero())
}

func TestService_Fiscal_UnknownBook(t *testing.T) {
	svc := NewService(&fakeRepo{}, nil)

	_, err := svc.Fiscal(context.Background(), BookKind("iva_raro"), RawFilter{})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestService_Fiscal_Totals(t *testing.T) {
	entry := Transaction{
		ID:     newTestID(),
		Amount: types.MustMoney("121.00"),
		Taxes: []TaxLine{
			{Rate: types.MustRate("21"), Base: types.MustMoney("100.00"), Amount: types.MustMoney("21.00")},
		},
	}
	svc := NewService(&fakeRepo{fiscal: []Transaction{entry}}, nil)

	book, err := svc.Fiscal(context.Background(), BookSales, RawFilter{})
	require.NoError(t, err)

	require.Equal(t, "100.00", book.TotalBase.StringFixed(2))
	require.Equal(t, "21.00", book.TotalTax.StringFixed(2))
	require.Equal(t, "121.00", book.TotalAmount.StringFixed(2))
}

func TestService_Stock(t *testing.T) {
	repo := &fakeRepo{
		stock: []StockItem{
			stockItem("low", 5, 10, 60, 150),
			stockItem("ok", 100, 10, 60, 150),
		},
	}
	svc := NewService(repo, nil)

	report, err := svc.Stock(context.Background(), RawFilter{})
	require.NoError(t, err)

	require.Equal(t, 2, report.TotalProducts)
	require.Equal(t, 1, report.LowStockCount)
	require.Len(t, report.Suggestions, 1)
	require.Equal(t, "low", report.Suggestions[0].ProductName)
}

func TestService_SupersededGeneration(t *testing.T) {
	started := make(chan struct{})
	first := true

	repo := &fakeRepo{}
	repo.salesFn = func(ctx context.Context, f FilterSet) ([]Transaction, error) {
		if first {
			first = false
			close(started)
			// Block until the next generation cancels this one.
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return nil, nil
	}

	svc := NewService(repo, nil)

	// Both requests come from the same client.
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "cajero-1"})

	errCh := make(chan error, 1)
	go func() {
		_, err := svc.Sales(ctx, RawFilter{})
		errCh <- err
	}()

	<-started

	// Second generation supersedes the first.
	_, err := svc.Sales(ctx, RawFilter{})
	require.NoError(t, err)

	err = <-errCh
	require.Error(t, err)
	require.True(t, apperror.IsSuperseded(err), "want superseded conflict, got %v", err)
}

func TestService_ConcurrentClients_DoNotSupersedeEachOther(t *testing.T) {
	firstStarted := make(chan struct{})
	release := make(chan struct{})

	repo := &fakeRepo{}
	repo.salesFn = func(ctx context.Context, f FilterSet) ([]Transaction, error) {
		if appctx.GetUserID(ctx) == "cajero-1" {
			close(firstStarted)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-release:
				return nil, nil
			}
		}
		return nil, nil
	}

	svc := NewService(repo, nil)

	ctx1 := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "cajero-1"})
	ctx2 := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "cajero-2"})

	errCh := make(chan error, 1)
	go func() {
		_, err := svc.Sales(ctx1, RawFilter{})
		errCh <- err
	}()

	<-firstStarted

	// A different client's request while the first is in flight.
	_, err := svc.Sales(ctx2, RawFilter{})
	require.NoError(t, err)

	close(release)
	require.NoError(t, <-errCh, "another client's request must not supersede this one")
}

func TestService_AnonymousGenerationsNeverSuperseded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	first := true

	repo := &fakeRepo{}
	repo.salesFn = func(ctx context.Context, f FilterSet) ([]Transaction, error) {
		if first {
			first = false
			close(started)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-release:
				return nil, nil
			}
		}
		return nil, nil
	}

	svc := NewService(repo, nil)

	errCh := make(chan error, 1)
	go func() {
		_, err := svc.Sales(context.Background(), RawFilter{})
		errCh <- err
	}()

	<-started

	_, err := svc.Sales(context.Background(), RawFilter{})
	require.NoError(t, err)

	close(release)
	require.NoError(t, <-errCh)
}

func TestService_RepoFailure(t *testing.T) {
	repo := &fakeRepo{
		salesFn: func(ctx context.Context, f FilterSet) ([]Transaction, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewService(repo, nil)

	_, err := svc.Sales(context.Background(), RawFilter{})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, apperror.CodeDatabase, appErr.Code)
}
