// Package export serializes aggregated report data into downloadable files.
// Exporters are pure consumers of the aggregator's output: they format and
// write, never re-derive totals.
package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/FAb114/factusystem-reports/internal/core/types"
	"github.com/FAb114/factusystem-reports/internal/domain/reports"
)

// Format identifies an export file format.
type Format string

const (
	FormatExcel Format = "xlsx"
	FormatCSV   Format = "csv"
	FormatTXT   Format = "txt"
	FormatPDF   Format = "pdf"
)

// ParseFormat validates a format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatExcel, FormatCSV, FormatTXT, FormatPDF:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown export format: %q", s)
}

// ContentType returns the MIME type for a format.
func (f Format) ContentType() string {
	switch f {
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		return "text/csv"
	case FormatTXT:
		return "text/plain"
	case FormatPDF:
		return "application/pdf"
	}
	return "application/octet-stream"
}

// Filename builds the attachment name for an export.
func Filename(kind string, f Format, at time.Time) string {
	return fmt.Sprintf("reporte_%s_%s.%s", kind, at.Format("20060102"), f)
}

// Table is the flat row/column form every writer consumes.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	// Footer holds the totals row. Must come from the aggregator's grand
	// total, never recomputed here.
	Footer []string
}

func qty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// SalesTable flattens a sales report.
func SalesTable(r *reports.SalesReport) Table {
	t := Table{
		Title:   "Reporte de ventas",
		Headers: []string{"Fecha", "Comprobante", "Cliente", "Medio de pago", "Usuario", "Sucursal", "Importe"},
	}
	for _, tx := range r.Transactions {
		t.Rows = append(t.Rows, []string{
			tx.Date.Format(reports.DateLayout),
			tx.Number,
			tx.PartyName,
			tx.PaymentMethod,
			tx.UserName,
			tx.BranchName,
			tx.Amount.StringFixed(2),
		})
	}
	t.Footer = []string{"Total", "", "", "", "", strconv.Itoa(r.Totals.Count), r.Totals.Balance().StringFixed(2)}
	return t
}

// PurchasesTable flattens a purchases report.
func PurchasesTable(r *reports.PurchasesReport) Table {
	t := Table{
		Title:   "Reporte de compras",
		Headers: []string{"Fecha", "Comprobante", "Proveedor", "Rubro", "Sucursal", "Importe"},
	}
	for _, tx := range r.Transactions {
		t.Rows = append(t.Rows, []string{
			tx.Date.Format(reports.DateLayout),
			tx.Number,
			tx.PartyName,
			tx.CategoryName,
			tx.BranchName,
			tx.Amount.StringFixed(2),
		})
	}
	t.Footer = []string{"Total", "", "", "", strconv.Itoa(r.Totals.Count), r.Totals.Egress.StringFixed(2)}
	return t
}

// CashTable flattens a cash-register report.
func CashTable(r *reports.CashReport) Table {
	t := Table{
		Title:   "Reporte de caja",
		Headers: []string{"Fecha", "Tipo", "Medio de pago", "Usuario", "Importe"},
	}
	for _, m := range r.Movements {
		t.Rows = append(t.Rows, []string{
			m.Date.Format(reports.DateLayout),
			m.Type,
			m.PaymentMethod,
			m.UserName,
			m.Amount.StringFixed(2),
		})
	}
	t.Footer = []string{
		"Saldo",
		"Ingresos " + r.Totals.Ingress.StringFixed(2),
		"Egresos " + r.Totals.Egress.StringFixed(2),
		"",
		r.Totals.Balance().StringFixed(2),
	}
	return t
}

// StockTable flattens a stock report.
func StockTable(r *reports.StockReport) Table {
	t := Table{
		Title:   "Reporte de stock",
		Headers: []string{"Producto", "SKU", "Rubro", "Stock actual", "Stock mínimo"},
	}
	for _, it := range r.Items {
		t.Rows = append(t.Rows, []string{
			it.ProductName,
			it.ProductSKU,
			it.CategoryName,
			qty(it.CurrentStock),
			qty(it.MinStock),
		})
	}
	t.Footer = []string{"Productos", strconv.Itoa(r.TotalProducts), "Bajo mínimo", strconv.Itoa(r.LowStockCount), ""}
	return t
}

// ReorderTable flattens the reorder suggestions of a stock report.
func ReorderTable(r *reports.StockReport) Table {
	t := Table{
		Title:   "Sugerencias de reposición",
		Headers: []string{"Producto", "Stock actual", "Venta diaria", "Días restantes", "Fecha estimada", "Cantidad sugerida"},
	}
	for _, s := range r.Suggestions {
		t.Rows = append(t.Rows, []string{
			s.ProductName,
			qty(s.CurrentStock),
			strconv.FormatFloat(s.AvgDailyRate, 'f', 2, 64),
			strconv.Itoa(s.DaysRemaining),
			s.EstimatedDate.Format(reports.DateLayout),
			qty(s.SuggestedQty),
		})
	}
	return t
}

// FiscalTable flattens a fiscal book (Libro IVA).
func FiscalTable(r *reports.FiscalBook) Table {
	t := Table{
		Title:   "Libro IVA " + string(r.Book),
		Headers: []string{"Fecha", "Comprobante", "Razón social", "CUIT", "Neto", "IVA", "Total"},
	}
	for _, e := range r.Entries {
		var base, tax string
		netBase, netTax := fiscalEntryTotals(e)
		base, tax = netBase.StringFixed(2), netTax.StringFixed(2)
		t.Rows = append(t.Rows, []string{
			e.Date.Format(reports.DateLayout),
			e.Number,
			e.PartyName,
			e.PartyTaxID,
			base,
			tax,
			e.Amount.StringFixed(2),
		})
	}
	t.Footer = []string{
		"Totales", "", "", "",
		r.TotalBase.StringFixed(2),
		r.TotalTax.StringFixed(2),
		r.TotalAmount.StringFixed(2),
	}
	return t
}

// fiscalEntryTotals sums the per-entry VAT lines for display only; book
// totals always come from the aggregator.
func fiscalEntryTotals(e reports.Transaction) (types.Money, types.Money) {
	base, tax := types.Zero(), types.Zero()
	for _, tl := range e.Taxes {
		base = base.Add(tl.Base)
		tax = tax.Add(tl.Amount)
	}
	return base, tax
}
