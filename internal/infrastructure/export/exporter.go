package export

import (
	"context"
	"io"

	"github.com/FAb114/factusystem-reports/internal/core/apperror"
)

// Exporter writes report tables in any supported output format. The PDF
// renderer is optional; without one PDF requests fail with an export error.
type Exporter struct {
	pdf *PDFRenderer
}

func NewExporter(pdf *PDFRenderer) *Exporter {
	return &Exporter{pdf: pdf}
}

// Write serializes the table to w in the requested format.
func (e *Exporter) Write(ctx context.Context, w io.Writer, t Table, format Format) error {
	switch format {
	case FormatExcel:
		if err := WriteExcel(w, t); err != nil {
			return apperror.NewExport(string(format), err)
		}
	case FormatCSV:
		if err := WriteCSV(w, t); err != nil {
			return apperror.NewExport(string(format), err)
		}
	case FormatTXT:
		if err := WriteTXT(w, t); err != nil {
			return apperror.NewExport(string(format), err)
		}
	case FormatPDF:
		if e.pdf == nil {
			return apperror.NewValidation("exportación a PDF no disponible")
		}
		if err := e.pdf.WritePDF(ctx, w, t); err != nil {
			return apperror.NewExport(string(format), err)
		}
	default:
		return apperror.NewValidation("formato de exportación inválido: " + string(format))
	}
	return nil
}
