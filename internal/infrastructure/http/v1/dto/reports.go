package dto

import (
	"time"

	"github.com/FAb114/factusystem-reports/internal/domain/reports"
)

// --- Shared request ---

// ReportRequest carries the common report filters as query parameters.
type ReportRequest struct {
	DateFrom      string `form:"dateFrom"`
	DateTo        string `form:"dateTo"`
	BranchID      string `form:"branchId"`
	UserID        string `form:"userId"`
	CategoryID    string `form:"categoryId"`
	PaymentMethod string `form:"paymentMethod"`
	IncludeVoided bool   `form:"includeVoided"`
}

// ToRawFilter converts the request into the domain filter form.
func (r ReportRequest) ToRawFilter() reports.RawFilter {
	return reports.RawFilter{
		DateFrom:      r.DateFrom,
		DateTo:        r.DateTo,
		BranchID:      r.BranchID,
		UserID:        r.UserID,
		CategoryID:    r.CategoryID,
		PaymentMethod: r.PaymentMethod,
		IncludeVoided: r.IncludeVoided,
	}
}

// --- Shared response fragments ---

// FilterResponse echoes the normalized filter back to the client.
type FilterResponse struct {
	DateFrom      string `json:"dateFrom"`
	DateTo        string `json:"dateTo"`
	BranchID      string `json:"branchId"`
	UserID        string `json:"userId"`
	CategoryID    string `json:"categoryId"`
	PaymentMethod string `json:"paymentMethod"`
	IncludeVoided bool   `json:"includeVoided"`
}

func fromFilter(f reports.FilterSet) FilterResponse {
	return FilterResponse{
		DateFrom:      f.DateFrom.Format(reports.DateLayout),
		DateTo:        f.DateTo.Format(reports.DateLayout),
		BranchID:      f.BranchID.String(),
		UserID:        f.UserID.String(),
		CategoryID:    f.CategoryID.String(),
		PaymentMethod: f.PaymentMethod.String(),
		IncludeVoided: f.IncludeVoided,
	}
}

// BucketResponse is one aggregation bucket. Monetary values are fixed-point
// strings to avoid float rounding on the client.
type BucketResponse struct {
	Key     string `json:"key"`
	Ingress string `json:"ingress"`
	Egress  string `json:"egress"`
	Balance string `json:"balance"`
	Count   int    `json:"count"`
}

func fromBucket(b reports.Bucket) BucketResponse {
	return BucketResponse{
		Key:     b.Key,
		Ingress: b.Ingress.StringFixed(2),
		Egress:  b.Egress.StringFixed(2),
		Balance: b.Balance().StringFixed(2),
		Count:   b.Count,
	}
}

// SummaryResponse is one grouped aggregation.
type SummaryResponse struct {
	Dimension    string           `json:"dimension"`
	Buckets      []BucketResponse `json:"buckets"`
	GrandTotal   BucketResponse   `json:"grandTotal"`
	Unclassified int              `json:"unclassified,omitempty"`
}

func fromSummary(s reports.Summary) SummaryResponse {
	resp := SummaryResponse{
		Dimension:    s.Dimension,
		Buckets:      make([]BucketResponse, len(s.Buckets)),
		GrandTotal:   fromBucket(s.GrandTotal),
		Unclassified: s.Unclassified,
	}
	for i, b := range s.Buckets {
		resp.Buckets[i] = fromBucket(b)
	}
	return resp
}

// TaxBucketResponse is one VAT rate aggregate.
type TaxBucketResponse struct {
	Rate   string `json:"rate"`
	Base   string `json:"base"`
	Amount string `json:"amount"`
	Count  int    `json:"count"`
}

// LineItemResponse is one product line of a transaction.
type LineItemResponse struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   string  `json:"unitPrice"`
	Subtotal    string  `json:"subtotal"`
}

// TransactionResponse is one report row.
type TransactionResponse struct {
	ID            string              `json:"id"`
	Date          string              `json:"date"`
	Number        string              `json:"number"`
	Type          string              `json:"type"`
	Amount        string              `json:"amount"`
	PaymentMethod string              `json:"paymentMethod,omitempty"`
	UserName      string              `json:"userName,omitempty"`
	BranchName    string              `json:"branchName,omitempty"`
	CategoryName  string              `json:"categoryName,omitempty"`
	PartyName     string              `json:"partyName,omitempty"`
	PartyTaxID    string              `json:"partyTaxId,omitempty"`
	Voided        bool                `json:"voided,omitempty"`
	LineItems     []LineItemResponse  `json:"lineItems,omitempty"`
	Taxes         []TaxBucketResponse `json:"taxes,omitempty"`
}

func fromTransaction(t reports.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:            t.ID.String(),
		Date:          t.Date.Format(reports.DateLayout),
		Number:        t.Number,
		Type:          t.Type,
		Amount:        t.Amount.StringFixed(2),
		PaymentMethod: t.PaymentMethod,
		UserName:      t.UserName,
		BranchName:    t.BranchName,
		CategoryName:  t.CategoryName,
		PartyName:     t.PartyName,
		PartyTaxID:    t.PartyTaxID,
		Voided:        t.Voided,
	}

	for _, li := range t.LineItems {
		resp.LineItems = append(resp.LineItems, LineItemResponse{
			ProductID:   li.ProductID.String(),
			ProductName: li.ProductName,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice.StringFixed(2),
			Subtotal:    li.Subtotal.StringFixed(2),
		})
	}
	for _, tl := range t.Taxes {
		resp.Taxes = append(resp.Taxes, TaxBucketResponse{
			Rate:   tl.Rate.String(),
			Base:   tl.Base.StringFixed(2),
			Amount: tl.Amount.StringFixed(2),
		})
	}
	return resp
}

func fromTransactions(txs []reports.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txs))
	for i, t := range txs {
		out[i] = fromTransaction(t)
	}
	return out
}

// --- Sales report ---

// SalesReportResponse represents the sales report response.
type SalesReportResponse struct {
	Filter          FilterResponse        `json:"filter"`
	Transactions    []TransactionResponse `json:"transactions"`
	ByPaymentMethod SummaryResponse       `json:"byPaymentMethod"`
	ByUser          SummaryResponse       `json:"byUser"`
	ByBranch        SummaryResponse       `json:"byBranch"`
	ByDay           SummaryResponse       `json:"byDay"`
	Totals          BucketResponse        `json:"totals"`
	GeneratedAt     string                `json:"generatedAt"`
}

// FromSalesReport converts domain report to response DTO.
func FromSalesReport(r *reports.SalesReport) *SalesReportResponse {
	return &SalesReportResponse{
		Filter:          fromFilter(r.Filter),
		Transactions:    fromTransactions(r.Transactions),
		ByPaymentMethod: fromSummary(r.ByPaymentMethod),
		ByUser:          fromSummary(r.ByUser),
		ByBranch:        fromSummary(r.ByBranch),
		ByDay:           fromSummary(r.ByDay),
		Totals:          fromBucket(r.Totals),
		GeneratedAt:     r.GeneratedAt.Format(time.RFC3339),
	}
}

// --- Purchases report ---

// PurchasesReportResponse represents the purchases report response.
type PurchasesReportResponse struct {
	Filter       FilterResponse        `json:"filter"`
	Transactions []TransactionResponse `json:"transactions"`
	BySupplier   SummaryResponse       `json:"bySupplier"`
	ByCategory   SummaryResponse       `json:"byCategory"`
	ByBranch     SummaryResponse       `json:"byBranch"`
	ByMonth      SummaryResponse       `json:"byMonth"`
	Totals       BucketResponse        `json:"totals"`
	GeneratedAt  string                `json:"generatedAt"`
}

// FromPurchasesReport converts domain report to response DTO.
func FromPurchasesReport(r *reports.PurchasesReport) *PurchasesReportResponse {
	return &PurchasesReportResponse{
		Filter:       fromFilter(r.Filter),
		Transactions: fromTransactions(r.Transactions),
		BySupplier:   fromSummary(r.BySupplier),
		ByCategory:   fromSummary(r.ByCategory),
		ByBranch:     fromSummary(r.ByBranch),
		ByMonth:      fromSummary(r.ByMonth),
		Totals:       fromBucket(r.Totals),
		GeneratedAt:  r.GeneratedAt.Format(time.RFC3339),
	}
}

// --- Cash report ---

// CashReportResponse represents the cash-register report response.
type CashReportResponse struct {
	Filter          FilterResponse        `json:"filter"`
	Movements       []TransactionResponse `json:"movements"`
	ByType          SummaryResponse       `json:"byType"`
	ByPaymentMethod SummaryResponse       `json:"byPaymentMethod"`
	ByUser          SummaryResponse       `json:"byUser"`
	ByDay           SummaryResponse       `json:"byDay"`
	Totals          BucketResponse        `json:"totals"`
	Unclassified    int                   `json:"unclassified"`
	GeneratedAt     string                `json:"generatedAt"`
}

// FromCashReport converts domain report to response DTO.
func FromCashReport(r *reports.CashReport) *CashReportResponse {
	return &CashReportResponse{
		Filter:          fromFilter(r.Filter),
		Movements:       fromTransactions(r.Movements),
		ByType:          fromSummary(r.ByType),
		ByPaymentMethod: fromSummary(r.ByPaymentMethod),
		ByUser:          fromSummary(r.ByUser),
		ByDay:           fromSummary(r.ByDay),
		Totals:          fromBucket(r.Totals),
		Unclassified:    r.Unclassified,
		GeneratedAt:     r.GeneratedAt.Format(time.RFC3339),
	}
}

// --- Stock report ---

// StockItemResponse is one product row of the stock report.
type StockItemResponse struct {
	ProductID    string  `json:"productId"`
	ProductName  string  `json:"productName"`
	ProductSKU   string  `json:"productSku,omitempty"`
	CategoryName string  `json:"categoryName,omitempty"`
	CurrentStock float64 `json:"currentStock"`
	MinStock     float64 `json:"minStock"`
	SoldLast30   float64 `json:"soldLast30"`
	SoldLast90   float64 `json:"soldLast90"`
	LowStock     bool    `json:"lowStock"`
}

// ReorderSuggestionResponse is one reorder forecast row.
type ReorderSuggestionResponse struct {
	ProductID     string  `json:"productId"`
	ProductName   string  `json:"productName"`
	CurrentStock  float64 `json:"currentStock"`
	AvgDailyRate  float64 `json:"avgDailyRate"`
	DaysRemaining int     `json:"daysRemaining"`
	EstimatedDate string  `json:"estimatedDate"`
	SuggestedQty  float64 `json:"suggestedQty"`
}

// StockReportResponse represents the stock report response.
type StockReportResponse struct {
	Filter        FilterResponse              `json:"filter"`
	Items         []StockItemResponse         `json:"items"`
	TotalProducts int                         `json:"totalProducts"`
	LowStockCount int                         `json:"lowStockCount"`
	Suggestions   []ReorderSuggestionResponse `json:"suggestions"`
	GeneratedAt   string                      `json:"generatedAt"`
}

// FromStockReport converts domain report to response DTO.
func FromStockReport(r *reports.StockReport) *StockReportResponse {
	resp := &StockReportResponse{
		Filter:        fromFilter(r.Filter),
		Items:         make([]StockItemResponse, len(r.Items)),
		TotalProducts: r.TotalProducts,
		LowStockCount: r.LowStockCount,
		Suggestions:   make([]ReorderSuggestionResponse, len(r.Suggestions)),
		GeneratedAt:   r.GeneratedAt.Format(time.RFC3339),
	}

	for i, it := range r.Items {
		resp.Items[i] = StockItemResponse{
			ProductID:    it.ProductID.String(),
			ProductName:  it.ProductName,
			ProductSKU:   it.ProductSKU,
			CategoryName: it.CategoryName,
			CurrentStock: it.CurrentStock,
			MinStock:     it.MinStock,
			SoldLast30:   it.SoldLast30,
			SoldLast90:   it.SoldLast90,
			LowStock:     it.CurrentStock <= it.MinStock,
		}
	}
	for i, s := range r.Suggestions {
		resp.Suggestions[i] = ReorderSuggestionResponse{
			ProductID:     s.ProductID.String(),
			ProductName:   s.ProductName,
			CurrentStock:  s.CurrentStock,
			AvgDailyRate:  s.AvgDailyRate,
			DaysRemaining: s.DaysRemaining,
			EstimatedDate: s.EstimatedDate.Format(reports.DateLayout),
			SuggestedQty:  s.SuggestedQty,
		}
	}
	return resp
}

// --- Fiscal book ---

// FiscalBookRequest carries fiscal book query parameters.
type FiscalBookRequest struct {
	ReportRequest
	Book string `form:"book" binding:"required"`
}

// FiscalBookResponse represents the fiscal book (Libro IVA) response.
type FiscalBookResponse struct {
	Book        string                `json:"book"`
	Filter      FilterResponse        `json:"filter"`
	Entries     []TransactionResponse `json:"entries"`
	ByRate      []TaxBucketResponse   `json:"byRate"`
	TotalBase   string                `json:"totalBase"`
	TotalTax    string                `json:"totalTax"`
	TotalAmount string                `json:"totalAmount"`
	GeneratedAt string                `json:"generatedAt"`
}

// FromFiscalBook converts domain book to response DTO.
func FromFiscalBook(r *reports.FiscalBook) *FiscalBookResponse {
	resp := &FiscalBookResponse{
		Book:        string(r.Book),
		Filter:      fromFilter(r.Filter),
		Entries:     fromTransactions(r.Entries),
		ByRate:      make([]TaxBucketResponse, len(r.ByRate)),
		TotalBase:   r.TotalBase.StringFixed(2),
		TotalTax:    r.TotalTax.StringFixed(2),
		TotalAmount: r.TotalAmount.StringFixed(2),
		GeneratedAt: r.GeneratedAt.Format(time.RFC3339),
	}
	for i, b := range r.ByRate {
		resp.ByRate[i] = TaxBucketResponse{
			Rate:   b.Rate.String(),
			Base:   b.Base.StringFixed(2),
			Amount: b.Amount.StringFixed(2),
			Count:  b.Count,
		}
	}
	return resp
}
