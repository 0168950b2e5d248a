// Package reports provides report generation services: filter normalization,
// transaction aggregation, stock reorder forecasting.
package reports

import (
	"time"

	"github.com/FAb114/factusystem-reports/internal/core/id"
	"github.com/FAb114/factusystem-reports/internal/core/types"
)

// Kind identifies a report type.
type Kind string

const (
	KindSales     Kind = "sales"
	KindPurchases Kind = "purchases"
	KindCash      Kind = "cash"
	KindStock     Kind = "stock"
	KindFiscal    Kind = "fiscal"
)

// BookKind identifies a fiscal book (Libro IVA).
type BookKind string

const (
	BookSales     BookKind = "ventas"
	BookPurchases BookKind = "compras"
)

// Valid reports whether b is a known fiscal book.
func (b BookKind) Valid() bool {
	return b == BookSales || b == BookPurchases
}

// TaxLine is one VAT component of a transaction or line item.
type TaxLine struct {
	Rate   types.Rate  `db:"rate"`
	Base   types.Money `db:"base"`
	Amount types.Money `db:"amount"`
}

// LineItem is a product line belonging to exactly one transaction.
type LineItem struct {
	ProductID   id.ID       `db:"product_id"`
	ProductName string      `db:"product_name"`
	Quantity    float64     `db:"quantity"`
	UnitPrice   types.Money `db:"unit_price"`
	Subtotal    types.Money `db:"subtotal"`

	Taxes []TaxLine
}

// Transaction is one sale, purchase or cash movement fetched for a report
// session. Immutable once fetched; owned by that session.
type Transaction struct {
	ID            id.ID       `db:"id"`
	Date          time.Time   `db:"date"`
	Number        string      `db:"number"`
	Type          string      `db:"type"`
	Amount        types.Money `db:"amount"`
	PaymentMethod string      `db:"payment_method"`
	UserID        id.ID       `db:"user_id"`
	UserName      string      `db:"user_name"`
	BranchID      id.ID       `db:"branch_id"`
	BranchName    string      `db:"branch_name"`
	CategoryID    *id.ID      `db:"category_id"`
	CategoryName  string      `db:"category_name"`
	PartyID       *id.ID      `db:"party_id"`
	PartyName     string      `db:"party_name"`
	PartyTaxID    string      `db:"party_tax_id"`
	Voided        bool        `db:"voided"`

	// Filled by the second fetch pass for sales/purchase reports.
	LineItems []LineItem

	// Per-transaction VAT breakdown, used by the fiscal books.
	Taxes []TaxLine
}

// StockItem is one product row of the stock report.
type StockItem struct {
	ProductID    id.ID   `db:"product_id"`
	ProductName  string  `db:"product_name"`
	ProductSKU   string  `db:"product_sku"`
	CategoryID   *id.ID  `db:"category_id"`
	CategoryName string  `db:"category_name"`
	CurrentStock float64 `db:"current_stock"`
	MinStock     float64 `db:"min_stock"`
	SoldLast30   float64 `db:"sold_last_30"`
	SoldLast90   float64 `db:"sold_last_90"`
}

// BelowThreshold reports whether the product is close enough to its minimum
// to be considered for reordering.
func (s StockItem) BelowThreshold() bool {
	return s.CurrentStock <= s.MinStock*reorderThresholdFactor
}

// ReorderSuggestion is a derived, read-only forecast row.
// Recomputed on every report refresh.
type ReorderSuggestion struct {
	ProductID     id.ID     `json:"productId"`
	ProductName   string    `json:"productName"`
	CurrentStock  float64   `json:"currentStock"`
	AvgDailyRate  float64   `json:"avgDailyRate"`
	DaysRemaining int       `json:"daysRemaining"`
	EstimatedDate time.Time `json:"estimatedDate"`
	SuggestedQty  float64   `json:"suggestedQty"`
}

// --- Report results ---

// SalesReport is the aggregated sales report.
type SalesReport struct {
	Filter       FilterSet
	Transactions []Transaction

	ByPaymentMethod Summary
	ByUser          Summary
	ByBranch        Summary
	ByDay           Summary

	Totals      Bucket
	GeneratedAt time.Time
}

// PurchasesReport is the aggregated purchases report.
type PurchasesReport struct {
	Filter       FilterSet
	Transactions []Transaction

	BySupplier Summary
	ByCategory Summary
	ByBranch   Summary
	ByMonth    Summary

	Totals      Bucket
	GeneratedAt time.Time
}

// CashReport is the aggregated cash-register report.
type CashReport struct {
	Filter    FilterSet
	Movements []Transaction

	ByType          Summary
	ByPaymentMethod Summary
	ByUser          Summary
	ByDay           Summary

	Totals Bucket
	// Movements whose type matched neither the ingress nor the egress table.
	Unclassified int

	GeneratedAt time.Time
}

// StockReport lists stock levels plus reorder suggestions.
type StockReport struct {
	Filter FilterSet
	Items  []StockItem

	TotalProducts int
	LowStockCount int
	Suggestions   []ReorderSuggestion

	GeneratedAt time.Time
}

// FiscalBook is a regulatory VAT ledger (Libro IVA ventas/compras).
// Entries are ordered ascending by date to match presentation order.
type FiscalBook struct {
	Book    BookKind
	Filter  FilterSet
	Entries []Transaction

	ByRate      []TaxBucket
	TotalBase   types.Money
	TotalTax    types.Money
	TotalAmount types.Money

	GeneratedAt time.Time
}
