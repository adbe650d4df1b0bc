package api_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/orderrecon/internal/api"
	"github.com/eshaffer321/orderrecon/internal/api/dto"
	"github.com/eshaffer321/orderrecon/internal/api/middleware"
	"github.com/eshaffer321/orderrecon/internal/application/report"
	"github.com/eshaffer321/orderrecon/internal/infrastructure/storage"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestServer(t *testing.T, cfg api.Config) (*api.Server, *storage.MockOrderStore) {
	t.Helper()
	store := storage.NewMockOrderStore()
	logger := quietLogger()
	svc := report.NewService(store, logger).WithClock(func() time.Time { return now })
	return api.NewServerWithService(cfg, svc, store, logger), store
}

func serve(server *api.Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	return rec
}

func TestServer_HealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t, api.DefaultConfig())

	rec := serve(server, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))

	var response dto.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, "ok", response.Store)
}

func TestServer_ReportRoutes(t *testing.T) {
	server, store := newTestServer(t, api.DefaultConfig())
	store.Add(storage.OrderRecord{
		ID: "1", Country: "CA", State: "ORDER_ON_HOLD",
		CapturedDate: now.Add(-time.Hour), UpdatedAt: now.Add(-time.Hour),
		Document:      json.RawMessage(`{"OrderId":"EB-9","OrderLine":[{"UnitPrice":5,"Quantity":1}]}`),
		PaymentGroups: []storage.PaymentGroup{{Type: "GIFT_CARD"}},
	})

	for _, path := range []string{"/api/mismatch-report", "/api/auth-mismatch"} {
		rec := serve(server, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)

		var response dto.MismatchReportResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, 1, response.AuthMismatchCount, path)
		assert.Equal(t, "CA", response.Data[0].Site)
		assert.Equal(t, "-", response.Data[0].PaymentTypeIDs)
	}

	rec := serve(server, httptest.NewRequest(http.MethodGet, "/api/payment-summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var summary dto.PaymentSummaryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&summary))
	assert.Equal(t, []report.PaymentSummaryRow{
		{Method: "GIFT_CARD", CA: 1, Total: 1},
		{Method: report.TotalRow, CA: 1, Total: 1},
	}, summary.TableData)

	rec = serve(server, httptest.NewRequest(http.MethodGet, "/api/payment-summary/export?format=pdf", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
}

func TestServer_UnknownAPIRoute(t *testing.T) {
	server, _ := newTestServer(t, api.DefaultConfig())

	rec := serve(server, httptest.NewRequest(http.MethodGet, "/api/orders", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var apiErr dto.APIError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&apiErr))
	assert.Equal(t, dto.ErrCodeNotFound, apiErr.Code)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	server, _ := newTestServer(t, api.DefaultConfig())

	serve(server, httptest.NewRequest(http.MethodGet, "/api/mismatch-report", nil))
	rec := serve(server, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "orderrecon_http_requests_total")
	assert.Contains(t, rec.Body.String(), "orderrecon_report_total")
}

func TestServer_AuthRequiredWhenSecretSet(t *testing.T) {
	cfg := api.DefaultConfig()
	cfg.JWTSecret = "s3cret"
	server, _ := newTestServer(t, cfg)

	rec := serve(server, httptest.NewRequest(http.MethodGet, "/api/mismatch-report", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Health stays open for load balancers.
	rec = serve(server, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "dashboard",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/mismatch-report", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = serve(server, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_StaticDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Reports</h1>"), 0o644))

	cfg := api.DefaultConfig()
	cfg.StaticDir = dir
	server, _ := newTestServer(t, cfg)

	rec := serve(server, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "Reports"))
}

func TestServer_ShutdownWithoutStart(t *testing.T) {
	server, _ := newTestServer(t, api.DefaultConfig())
	assert.NoError(t, server.Shutdown(context.Background()))
}
