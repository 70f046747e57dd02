package eventbus

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/horde-survivors/internal/vec"
	"github.com/annel0/horde-survivors/internal/world"
)

type collector struct {
	mu     sync.Mutex
	events []*Envelope
}

func (c *collector) handle(_ context.Context, ev *Envelope) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func TestMemoryBus_DeliversMatchingEvents(t *testing.T) {
	bus := NewMemoryBus(16)

	var all, kills collector
	_, err := bus.Subscribe(context.Background(), Filter{}, all.handle)
	require.NoError(t, err)
	_, err = bus.Subscribe(context.Background(), Filter{Types: []string{TypeMobKilled}}, kills.handle)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, &Envelope{ID: "1", EventType: TypeMobKilled}))
	require.NoError(t, bus.Publish(ctx, &Envelope{ID: "2", EventType: TypeLevelUp}))
	require.NoError(t, bus.Close())

	assert.Equal(t, 2, all.count())
	assert.Equal(t, 1, kills.count())

	stats := bus.Metrics()
	assert.Equal(t, uint64(2), stats.Published)
	assert.Equal(t, uint64(3), stats.Consumed)
}

func TestMemoryBus_Unsubscribe(t *testing.T) {
	bus := NewMemoryBus(4)
	var c collector
	sub, err := bus.Subscribe(context.Background(), Filter{}, c.handle)
	require.NoError(t, err)
	sub.Unsubscribe()

	require.NoError(t, bus.Publish(context.Background(), &Envelope{EventType: TypeLevelUp}))
	require.NoError(t, bus.Close())
	assert.Equal(t, 0, c.count())
}

func TestMemoryBus_PublishAfterClose(t *testing.T) {
	bus := NewMemoryBus(4)
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())
	assert.ErrorIs(t, bus.Publish(context.Background(), &Envelope{}), ErrBusClosed)
}

func TestMatchFilter_Sources(t *testing.T) {
	ev := &Envelope{EventType: TypeWaveCleared, Source: "runner"}
	assert.True(t, matchFilter(ev, Filter{Sources: []string{"runner"}}))
	assert.False(t, matchFilter(ev, Filter{Sources: []string{"other"}}))
	assert.False(t, matchFilter(ev, Filter{Types: []string{TypeLevelUp}}))
}

func TestNewGameEnvelope(t *testing.T) {
	ev := world.MobKilledEvent{
		MobType:  "goblin",
		Cause:    "projectile",
		Position: vec.Vec2Float{X: 10, Y: 20},
		Streak:   5,
	}
	env, err := NewGameEnvelope(ev, "survivor", "run-1")
	require.NoError(t, err)

	_, err = uuid.Parse(env.ID)
	assert.NoError(t, err)
	assert.Equal(t, TypeMobKilled, env.EventType)
	assert.Equal(t, "survivor", env.Source)
	assert.Equal(t, "run-1", env.CorrelationID)
	assert.Equal(t, 1, env.Priority)
	assert.Equal(t, gameEventVersion, env.Version)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "goblin", payload["mob_type"])
	assert.Equal(t, 5.0, payload["streak"])
	assert.Equal(t, map[string]interface{}{"x": 10.0, "y": 20.0}, payload["position"])
}

func TestGameEventPriority_EndOfRunIsCritical(t *testing.T) {
	assert.Equal(t, 9, GameEventPriority(world.EventTypePlayerDied))
	assert.Equal(t, 9, GameEventPriority(world.EventTypeStageComplete))
	assert.Less(t, GameEventPriority(world.EventTypeMobKilled), 5, "убийства можно отбросить")
	assert.Equal(t, TypeWaveStarted, GameEventType(world.EventTypeWaveStarted))
	assert.Equal(t, "Unknown", GameEventType(world.EventType(200)))
}

func TestForwarder_PublishesWithRunID(t *testing.T) {
	bus := NewMemoryBus(16)
	var c collector
	_, err := bus.Subscribe(context.Background(), Filter{}, c.handle)
	require.NoError(t, err)

	f := NewForwarder(bus, "survivor")
	events := []world.Event{
		world.WaveEvent{EventType: world.EventTypeWaveStarted, Wave: 1},
		world.LevelUpEvent{Level: 2},
	}
	require.NoError(t, f.Forward(context.Background(), events))
	require.NoError(t, bus.Close())

	require.Equal(t, 2, c.count())
	for _, env := range c.events {
		assert.Equal(t, f.RunID(), env.CorrelationID)
	}

	var nilForwarder *Forwarder
	assert.NoError(t, nilForwarder.Forward(context.Background(), events))
}

func TestGlobalPublish_NoBus(t *testing.T) {
	Init(nil)
	assert.NoError(t, Publish(context.Background(), &Envelope{}))
}

func TestMetricsExporter_Refresh(t *testing.T) {
	bus := NewMemoryBus(8)
	reg := prometheus.NewRegistry()
	me := NewMetricsExporter(bus, reg)

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, &Envelope{EventType: TypeLevelUp}))
	require.NoError(t, bus.Publish(ctx, &Envelope{EventType: TypeLevelUp}))
	require.NoError(t, bus.Close())

	me.Refresh()
	me.Refresh()
	assert.Equal(t, 2.0, testutil.ToFloat64(me.published))

	me.Start(10 * time.Millisecond)
	me.Stop()
	assert.Equal(t, 2.0, testutil.ToFloat64(me.published))
}

func TestMemoryBus_PreservesOrderPerSubscriber(t *testing.T) {
	bus := NewMemoryBus(64)
	var c collector
	_, err := bus.Subscribe(context.Background(), Filter{}, c.handle)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		require.NoError(t, bus.Publish(context.Background(), &Envelope{ID: strconv.Itoa(i), Priority: 9}))
	}
	require.NoError(t, bus.Close())

	require.Equal(t, 50, c.count())
	for i, ev := range c.events {
		assert.Equal(t, strconv.Itoa(i), ev.ID)
	}
}

func TestMemoryBus_DropsLowPriorityWhenFull(t *testing.T) {
	bus := NewMemoryBus(1)
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	_, err := bus.Subscribe(context.Background(), Filter{}, func(context.Context, *Envelope) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, &Envelope{ID: "a", Priority: 1}))
	<-started // первый в обработчике, очередь пуста
	require.NoError(t, bus.Publish(ctx, &Envelope{ID: "b", Priority: 1}))
	require.NoError(t, bus.Publish(ctx, &Envelope{ID: "c", Priority: 1}))

	assert.Equal(t, uint64(1), bus.Metrics().Dropped)
	assert.Equal(t, 1, bus.Metrics().InFlight)

	close(release)
	require.NoError(t, bus.Close())
	assert.Equal(t, uint64(2), bus.Metrics().Consumed)
}

func TestMemoryBus_SubscribeAfterClose(t *testing.T) {
	bus := NewMemoryBus(1)
	require.NoError(t, bus.Close())
	_, err := bus.Subscribe(context.Background(), Filter{}, func(context.Context, *Envelope) {})
	assert.ErrorIs(t, err, ErrBusClosed)
}

func TestBackendName(t *testing.T) {
	assert.Equal(t, "memory", backendName(NewMemoryBus(1)))
	assert.Equal(t, "jetstream", backendName(&JetStreamBus{}))
	assert.Equal(t, "game.LevelUp", Subject(TypeLevelUp))
}
