package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/trace/noop"

	"ghgcli/internal/infrastructure"
	"ghgcli/internal/shared/testutil"
)

func TestOTelMiddleware_RecordsRouteMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := infrastructure.CreateBusinessMetrics(provider.Meter("test"))
	require.NoError(t, err)

	logger, _ := testutil.NewTestLogger(t)
	m := NewOTelMiddleware(noop.NewTracerProvider().Tracer("test"), metrics, logger)

	r := chi.NewRouter()
	r.Use(m.Handler)
	r.Get("/api/v1/compliance/tiers", okHandler)
	r.Post("/api/v1/emissions/evaluate", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	})

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/v1/compliance/tiers", nil),
		httptest.NewRequest(http.MethodGet, "/api/v1/compliance/tiers", nil),
		httptest.NewRequest(http.MethodPost, "/api/v1/emissions/evaluate", nil),
	} {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	byRoute := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			if metric.Name != "http_requests_total" {
				continue
			}
			sum, ok := metric.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				route, _ := dp.Attributes.Value("route")
				byRoute[route.AsString()] += dp.Value
			}
		}
	}

	assert.Equal(t, int64(2), byRoute["/api/v1/compliance/tiers"])
	assert.Equal(t, int64(1), byRoute["/api/v1/emissions/evaluate"])
}

func TestOTelMiddleware_NilDependencies(t *testing.T) {
	m := NewOTelMiddleware(nil, nil, nil)
	h := m.Handler(http.HandlerFunc(okHandler))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestWebSocketTraceMiddleware(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	called := false
	h := WebSocketTraceMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.True(t, called)
}
