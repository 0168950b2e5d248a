package handlers

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/FAb114/factusystem-reports/internal/core/apperror"
	appctx "github.com/FAb114/factusystem-reports/internal/core/context"
	"github.com/FAb114/factusystem-reports/internal/domain/audit"
	"github.com/FAb114/factusystem-reports/internal/domain/reports"
	"github.com/FAb114/factusystem-reports/internal/infrastructure/export"
	"github.com/FAb114/factusystem-reports/internal/infrastructure/http/v1/dto"
	"github.com/FAb114/factusystem-reports/internal/infrastructure/http/v1/middleware"
)

// ExportsHandler serves report downloads in xlsx, csv, txt and pdf.
type ExportsHandler struct {
	*BaseHandler
	service  *reports.Service
	exporter *export.Exporter
	recorder audit.Recorder
}

// NewExportsHandler creates a new exports handler.
func NewExportsHandler(base *BaseHandler, service *reports.Service, exporter *export.Exporter, recorder audit.Recorder) *ExportsHandler {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &ExportsHandler{
		BaseHandler: base,
		service:     service,
		exporter:    exporter,
		recorder:    recorder,
	}
}

// Export handles GET /reports/<kind>/export?format=xlsx|csv|txt|pdf
func (h *ExportsHandler) Export(kind reports.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		format, err := export.ParseFormat(c.Query("format"))
		if err != nil {
			h.Error(c, apperror.NewValidation(err.Error()).WithDetail("format", c.Query("format")))
			return
		}

		table, err := h.buildTable(c, kind)
		if err != nil {
			h.Error(c, err)
			return
		}

		// Render into memory first so a mid-write failure never leaks a
		// truncated body with a 200 status.
		var buf bytes.Buffer
		if err := h.exporter.Write(c.Request.Context(), &buf, *table, format); err != nil {
			h.Error(c, err)
			return
		}

		name := export.Filename(string(kind), format, time.Now())
		h.record(c, kind, format, name, buf.Len())

		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
		c.Data(200, format.ContentType(), buf.Bytes())
	}
}

// buildTable regenerates the requested report and flattens it for export.
func (h *ExportsHandler) buildTable(c *gin.Context, kind reports.Kind) (*export.Table, error) {
	ctx := c.Request.Context()

	var req dto.ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		return nil, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error())
	}
	raw := req.ToRawFilter()

	switch kind {
	case reports.KindSales:
		r, err := h.service.Sales(ctx, raw)
		if err != nil {
			return nil, err
		}
		t := export.SalesTable(r)
		return &t, nil

	case reports.KindPurchases:
		r, err := h.service.Purchases(ctx, raw)
		if err != nil {
			return nil, err
		}
		t := export.PurchasesTable(r)
		return &t, nil

	case reports.KindCash:
		r, err := h.service.Cash(ctx, raw)
		if err != nil {
			return nil, err
		}
		t := export.CashTable(r)
		return &t, nil

	case reports.KindStock:
		r, err := h.service.Stock(ctx, raw)
		if err != nil {
			return nil, err
		}
		// section=reorder downloads the forecast instead of the level list
		if c.Query("section") == "reorder" {
			t := export.ReorderTable(r)
			return &t, nil
		}
		t := export.StockTable(r)
		return &t, nil

	case reports.KindFiscal:
		book := reports.BookKind(c.Query("book"))
		r, err := h.service.Fiscal(ctx, book, raw)
		if err != nil {
			return nil, err
		}
		t := export.FiscalTable(r)
		return &t, nil
	}

	return nil, apperror.NewNotFound("report", string(kind))
}

func (h *ExportsHandler) record(c *gin.Context, kind reports.Kind, format export.Format, name string, size int) {
	h.recorder.Record(c.Request.Context(), audit.Entry{
		Action: audit.ActionExport,
		Module: "reports." + string(kind),
		UserID: appctx.GetUserID(c.Request.Context()),
		Details: map[string]any{
			"format":   string(format),
			"filename": name,
			"bytes":    size,
		},
	})
}

// RegisterRoutes registers export routes. The report kind is a static path
// segment because gin cannot mix a :kind parameter with the report routes
// registered at the same level.
func (h *ExportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sales/export", h.Export(reports.KindSales))
	rg.GET("/purchases/export", h.Export(reports.KindPurchases))
	rg.GET("/cash/export", h.Export(reports.KindCash))
	rg.GET("/stock/export", h.Export(reports.KindStock))
	rg.GET("/fiscal/export", middleware.RequireRole(roleAdmin, roleAccountant), h.Export(reports.KindFiscal))
}
