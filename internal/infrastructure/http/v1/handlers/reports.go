package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/FAb114/factusystem-reports/internal/domain/reports"
	"github.com/FAb114/factusystem-reports/internal/infrastructure/http/v1/dto"
	"github.com/FAb114/factusystem-reports/internal/infrastructure/http/v1/middleware"
)

// Roles allowed to read fiscal books.
const (
	roleAdmin      = "admin"
	roleAccountant = "contador"
)

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetSales handles GET /reports/sales
func (h *ReportsHandler) GetSales(c *gin.Context) {
	var req dto.ReportRequest
	if !h.BindQuery(c, &req) {
		return
	}

	report, err := h.service.Sales(c.Request.Context(), req.ToRawFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSalesReport(report))
}

// GetPurchases handles GET /reports/purchases
func (h *ReportsHandler) GetPurchases(c *gin.Context) {
	var req dto.ReportRequest
	if !h.BindQuery(c, &req) {
		return
	}

	report, err := h.service.Purchases(c.Request.Context(), req.ToRawFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPurchasesReport(report))
}

// GetCash handles GET /reports/cash
func (h *ReportsHandler) GetCash(c *gin.Context) {
	var req dto.ReportRequest
	if !h.BindQuery(c, &req) {
		return
	}

	report, err := h.service.Cash(c.Request.Context(), req.ToRawFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCashReport(report))
}

// GetStock handles GET /reports/stock
func (h *ReportsHandler) GetStock(c *gin.Context) {
	var req dto.ReportRequest
	if !h.BindQuery(c, &req) {
		return
	}

	report, err := h.service.Stock(c.Request.Context(), req.ToRawFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromStockReport(report))
}

// GetFiscal handles GET /reports/fiscal?book=ventas|compras
func (h *ReportsHandler) GetFiscal(c *gin.Context) {
	var req dto.FiscalBookRequest
	if !h.BindQuery(c, &req) {
		return
	}

	report, err := h.service.Fiscal(c.Request.Context(), reports.BookKind(req.Book), req.ToRawFilter())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromFiscalBook(report))
}

// RegisterRoutes registers report routes.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sales", h.GetSales)
	rg.GET("/purchases", h.GetPurchases)
	rg.GET("/cash", h.GetCash)
	rg.GET("/stock", h.GetStock)
	rg.GET("/fiscal", middleware.RequireRole(roleAdmin, roleAccountant), h.GetFiscal)
}
