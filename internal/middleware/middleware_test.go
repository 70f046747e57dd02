package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/horde-survivors/internal/logging"
)

func newRouter(t *testing.T, registry *prometheus.Registry) (*gin.Engine, *bytes.Buffer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()

	var logs bytes.Buffer
	r.Use(NewRequestLogger(logging.NewWriterLogger("http", &logs, logging.DEBUG)).Handler())

	promMw := NewPrometheusMiddleware("test", registry, registry)
	r.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(r)

	r.GET("/ok", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"trace": c.GetString(TraceIDKey)})
	})
	r.GET("/error", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "test error"})
	})
	return r, &logs
}

func serve(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestPrometheusMiddleware_BasicMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	r, _ := newRouter(t, registry)

	assert.Equal(t, http.StatusOK, serve(r, "/ok").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(r, "/error").Code)

	metricFamilies, err := registry.Gather()
	require.NoError(t, err)

	var durationFound, errorsFound bool
	for _, mf := range metricFamilies {
		switch mf.GetName() {
		case "test_http_request_duration_seconds":
			durationFound = true
			assert.Equal(t, "Длительность HTTP-запросов.", mf.GetHelp())
			assert.Len(t, mf.Metric, 2)
		case "test_http_request_errors_total":
			errorsFound = true
			require.Len(t, mf.Metric, 1)
			assert.Equal(t, 1.0, mf.Metric[0].GetCounter().GetValue())
		case "test_http_requests_inflight":
			assert.Equal(t, 0.0, mf.Metric[0].GetGauge().GetValue())
		}
	}

	assert.True(t, durationFound, "Duration metric not found")
	assert.True(t, errorsFound, "Errors metric not found")
}

func TestPrometheusMiddleware_MetricsEndpoint(t *testing.T) {
	registry := prometheus.NewRegistry()
	r, _ := newRouter(t, registry)
	serve(r, "/ok")

	w := serve(r, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_request_duration_seconds")
}

func TestRequestLogger_TraceID(t *testing.T) {
	r, logs := newRouter(t, prometheus.NewRegistry())

	w := serve(r, "/ok")
	traceID := w.Header().Get("X-Trace-Id")
	require.NotEmpty(t, traceID)
	assert.Contains(t, w.Body.String(), traceID)
	assert.Contains(t, logs.String(), "trace="+traceID)
	assert.Contains(t, logs.String(), "GET /ok 200")
}

func TestRequestLogger_ReusesClientTraceID(t *testing.T) {
	r, _ := newRouter(t, prometheus.NewRegistry())

	id := "3f1c2a9e-5b7d-4c1e-9a2b-6d8e0f1a2b3c"
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(TraceIDHeader, id)
	r.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get(TraceIDHeader))

	req, _ = http.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(TraceIDHeader, "not-a-uuid")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not-a-uuid", w.Header().Get(TraceIDHeader))
}

func TestPrometheusMiddleware_UnmatchedAndSelfScrape(t *testing.T) {
	registry := prometheus.NewRegistry()
	r, _ := newRouter(t, registry)

	assert.Equal(t, http.StatusNotFound, serve(r, "/wp-admin/setup.php").Code)
	serve(r, "/metrics")

	families, err := registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "test_http_request_duration_seconds" {
			continue
		}
		require.Len(t, mf.Metric, 1, "запрос /metrics не учитывается")
		for _, lp := range mf.Metric[0].GetLabel() {
			if lp.GetName() == "route" {
				assert.Equal(t, "unmatched", lp.GetValue())
			}
		}
	}
}
