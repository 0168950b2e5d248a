package reports

import (
	"context"

	"github.com/FAb114/factusystem-reports/internal/core/id"
)

// Repository defines report data access.
//
// Transaction queries return rows ordered descending by date; FiscalEntries
// returns ascending order to match regulatory presentation. Voided rows are
// omitted unless the filter sets IncludeVoided.
type Repository interface {
	SalesTransactions(ctx context.Context, f FilterSet) ([]Transaction, error)
	PurchaseTransactions(ctx context.Context, f FilterSet) ([]Transaction, error)
	CashMovements(ctx context.Context, f FilterSet) ([]Transaction, error)
	FiscalEntries(ctx context.Context, book BookKind, f FilterSet) ([]Transaction, error)

	// LineItems fetches the product lines of one transaction.
	// Called per transaction in a second pass; result sets are bounded to
	// human-reviewable report sizes, so the extra round trips are acceptable.
	LineItems(ctx context.Context, kind Kind, txID id.ID) ([]LineItem, error)

	StockItems(ctx context.Context, f FilterSet) ([]StockItem, error)
}
