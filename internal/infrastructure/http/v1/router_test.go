package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/FAb114/factusystem-reports/internal/core/id"
	"github.com/FAb114/factusystem-reports/internal/core/types"
	"github.com/FAb114/factusystem-reports/internal/domain/auth"
	"github.com/FAb114/factusystem-reports/internal/domain/reports"
	"github.com/FAb114/factusystem-reports/internal/infrastructure/export"
	"github.com/FAb114/factusystem-reports/pkg/logger"
)

type stubRepo struct {
	sales     []reports.Transaction
	movements []reports.Transaction
}

func (r *stubRepo) SalesTransactions(ctx context.Context, f reports.FilterSet) ([]reports.Transaction, error) {
	return r.sales, nil
}

func (r *stubRepo) PurchaseTransactions(ctx context.Context, f reports.FilterSet) ([]reports.Transaction, error) {
	return nil, nil
}

func (r *stubRepo) CashMovements(ctx context.Context, f reports.FilterSet) ([]reports.Transaction, error) {
	return r.movements, nil
}

func (r *stubRepo) FiscalEntries(ctx context.Context, book reports.BookKind, f reports.FilterSet) ([]reports.Transaction, error) {
	return nil, nil
}

func (r *stubRepo) LineItems(ctx context.Context, kind reports.Kind, txID id.ID) ([]reports.LineItem, error) {
	return nil, nil
}

func (r *stubRepo) StockItems(ctx context.Context, f reports.FilterSet) ([]reports.StockItem, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) (http.Handler, string) {
	t.Helper()

	repo := &stubRepo{
		sales: []reports.Transaction{{
			ID:            id.New(),
			Date:          time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			Number:        "0001-00000001",
			Type:          "venta",
			PaymentMethod: "efectivo",
			Amount:        types.MustMoney("150.00"),
		}},
	}

	jwtService := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))
	token, _, err := jwtService.GenerateAccessToken("user-1", "admin@local", "branch-1", []string{"admin"})
	require.NoError(t, err)

	log, err := logger.New(logger.Config{Level: "error"})
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Logger:        log,
		JWTValidator:  jwtService,
		ReportService: reports.NewService(repo, nil),
		Exporter:      export.NewExporter(nil),
	})
	return router, token
}

func get(t *testing.T, h http.Handler, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouter_RequiresAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	w := get(t, router, "/api/v1/reports/sales", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "UNAUTHORIZED", body["code"])
}

func TestRouter_RejectsBadToken(t *testing.T) {
	router, _ := newTestRouter(t)

	w := get(t, router, "/api/v1/reports/sales", "not-a-token")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_SalesReport(t *testing.T) {
	router, token := newTestRouter(t)

	w := get(t, router, "/api/v1/reports/sales?dateFrom=2026-03-01&dateTo=2026-03-31", token)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Filter struct {
			DateFrom string `json:"dateFrom"`
			BranchID string `json:"branchId"`
		} `json:"filter"`
		Transactions []struct {
			Number string `json:"number"`
			Amount string `json:"amount"`
		} `json:"transactions"`
		Totals struct {
			Balance string `json:"balance"`
		} `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	require.Equal(t, "2026-03-01", body.Filter.DateFrom)
	require.Equal(t, "all", body.Filter.BranchID)
	require.Len(t, body.Transactions, 1)
	require.Equal(t, "150.00", body.Transactions[0].Amount)
	require.Equal(t, "150.00", body.Totals.Balance)
}

func TestRouter_InvalidDateReturns400(t *testing.T) {
	router, token := newTestRouter(t)

	w := get(t, router, "/api/v1/reports/sales?dateFrom=10/03/2026", token)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "VALIDATION_ERROR", body["code"])
}

func TestRouter_FiscalRequiresBook(t *testing.T) {
	router, token := newTestRouter(t)

	w := get(t, router, "/api/v1/reports/fiscal", token)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_FiscalForbiddenForCashier(t *testing.T) {
	router, _ := newTestRouter(t)

	jwtService := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))
	token, _, err := jwtService.GenerateAccessToken("user-2", "caja@local", "branch-1", []string{"cajero"})
	require.NoError(t, err)

	w := get(t, router, "/api/v1/reports/fiscal?book=ventas", token)
	require.Equal(t, http.StatusForbidden, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "FORBIDDEN", body["code"])

	w = get(t, router, "/api/v1/reports/fiscal/export?format=csv", token)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_ExportCSV(t *testing.T) {
	router, token := newTestRouter(t)

	w := get(t, router, "/api/v1/reports/sales/export?format=csv", token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	require.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	require.Contains(t, w.Body.String(), "0001-00000001")
}

func TestRouter_ExportUnknownFormat(t *testing.T) {
	router, token := newTestRouter(t)

	w := get(t, router, "/api/v1/reports/sales/export?format=docx", token)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_ExportUnknownKind(t *testing.T) {
	router, token := newTestRouter(t)

	w := get(t, router, "/api/v1/reports/nonsense/export?format=csv", token)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_HealthLive(t *testing.T) {
	router, _ := newTestRouter(t)

	w := get(t, router, "/health/live", "")
	require.Equal(t, http.StatusOK, w.Code)
}
