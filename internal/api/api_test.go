package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/horde-survivors/internal/eventbus"
	"github.com/annel0/horde-survivors/internal/world"
)

type stubSource struct {
	snap world.Snapshot
	ok   bool
}

func (s stubSource) Snapshot() (world.Snapshot, bool) { return s.snap, s.ok }

func newTestServer(t *testing.T, src StateSource, bus eventbus.EventBus) *StatusServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	return NewStatusServer(Config{
		Source:     src,
		Bus:        bus,
		Registerer: reg,
		Gatherer:   reg,
		RunID:      "run-42",
	})
}

func get(t *testing.T, ss *StatusServer, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	ss.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	ss := newTestServer(t, nil, nil)
	rec := get(t, ss, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, rec.Header().Get("X-Trace-Id"))
}

func TestState_NotReady(t *testing.T) {
	ss := newTestServer(t, stubSource{}, nil)
	rec := get(t, ss, "/api/state")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	ss = newTestServer(t, nil, nil)
	rec = get(t, ss, "/api/state")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestState_ReturnsSnapshot(t *testing.T) {
	snap := world.Snapshot{
		Frame:   120,
		StageID: "stage1",
		Wave:    2,
		Player:  world.PlayerSnapshot{Level: 3, Gold: 9},
	}
	ss := newTestServer(t, stubSource{snap: snap, ok: true}, nil)

	rec := get(t, ss, "/api/state")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool           `json:"success"`
		Data    world.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, uint64(120), resp.Data.Frame)
	assert.Equal(t, "stage1", resp.Data.StageID)
	assert.Equal(t, 3, resp.Data.Player.Level)
}

func TestStatus_IncludesProcessAndBus(t *testing.T) {
	bus := eventbus.NewMemoryBus(4)
	defer bus.Close()

	ss := newTestServer(t, stubSource{snap: world.Snapshot{Wave: 4}, ok: true}, bus)
	rec := get(t, ss, "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Data, "process")
	assert.Contains(t, resp.Data, "eventbus")
	assert.JSONEq(t, `"run-42"`, string(resp.Data["run_id"]))
	assert.JSONEq(t, `4`, string(resp.Data["wave"]))
}

func TestMetricsEndpoint(t *testing.T) {
	ss := newTestServer(t, nil, nil)
	get(t, ss, "/health")

	rec := get(t, ss, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "status_api_http_request_duration_seconds"))
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "5с", FormatUptime(5*time.Second))
	assert.Equal(t, "2м 5с", FormatUptime(2*time.Minute+5*time.Second))
	assert.Equal(t, "1ч 0м 1с", FormatUptime(time.Hour+time.Second))
	assert.Equal(t, "1д 1ч 0м 0с", FormatUptime(25*time.Hour))
}

func TestProcessMetrics_Collect(t *testing.T) {
	stats := NewProcessMetrics().Collect()
	assert.Greater(t, stats.Goroutines, 0)
	assert.GreaterOrEqual(t, stats.UptimeSec, 0.0)
}

func TestStop_WithoutStart(t *testing.T) {
	ss := newTestServer(t, nil, nil)
	assert.NoError(t, ss.Stop(context.Background()))
}
