package observability

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/horde-survivors/internal/config"
	"github.com/annel0/horde-survivors/internal/world"
)

func TestGameMetrics_Observe(t *testing.T) {
	gm := NewGameMetrics(prometheus.NewRegistry())

	gm.Observe([]world.Event{
		world.MobKilledEvent{MobType: "goblin", Cause: "projectile"},
		world.MobKilledEvent{MobType: "goblin", Cause: "projectile"},
		world.MobKilledEvent{MobType: "orc", Cause: "explosion"},
		world.LevelUpEvent{Level: 2},
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(gm.kills.WithLabelValues("goblin", "projectile")))
	assert.Equal(t, 1.0, testutil.ToFloat64(gm.kills.WithLabelValues("orc", "explosion")))
	assert.Equal(t, 3.0, testutil.ToFloat64(gm.events.WithLabelValues("mob_killed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(gm.events.WithLabelValues("level_up")))
}

func TestGameMetrics_ObserveFrame(t *testing.T) {
	gm := NewGameMetrics(prometheus.NewRegistry())

	snap := world.Snapshot{
		Wave:   3,
		Player: world.PlayerSnapshot{Level: 4, Health: 75, Gold: 12},
		Mobs:   []world.MobSnapshot{{Dead: false}, {Dead: true}, {Dead: false}},
	}
	gm.ObserveFrame(2*time.Millisecond, snap)

	assert.Equal(t, 3.0, testutil.ToFloat64(gm.wave))
	assert.Equal(t, 4.0, testutil.ToFloat64(gm.level))
	assert.Equal(t, 75.0, testutil.ToFloat64(gm.health))
	assert.Equal(t, 12.0, testutil.ToFloat64(gm.gold))
	assert.Equal(t, 2.0, testutil.ToFloat64(gm.liveMobs))
}

func TestInitTelemetry_Disabled(t *testing.T) {
	shutdown, err := InitTelemetry(context.Background(), config.TelemetryConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestExporterOptionsAndSampler(t *testing.T) {
	assert.Empty(t, exporterOptions(config.TelemetryConfig{}))
	assert.Len(t, exporterOptions(config.TelemetryConfig{Endpoint: "otel:4318", Insecure: true}), 2)

	assert.Contains(t, sampler(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}
