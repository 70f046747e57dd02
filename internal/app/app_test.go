package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/horde-survivors/internal/config"
	"github.com/annel0/horde-survivors/internal/eventbus"
	"github.com/annel0/horde-survivors/internal/observability"
	"github.com/annel0/horde-survivors/internal/storage"
	"github.com/annel0/horde-survivors/internal/vec"
	"github.com/annel0/horde-survivors/internal/world"
	"github.com/annel0/horde-survivors/internal/world/entity"
	"github.com/annel0/horde-survivors/internal/world/stage"
)

const testStage = `{
  "stageId": "meadow",
  "waves": [
    {"waveNumber": 1, "spawns": [{"mobType": "goblin", "count": 1, "spawnDelay": 0.5}]},
    {"waveNumber": 2, "spawns": [{"mobType": "goblin", "count": 2, "spawnDelay": 0.5}]}
  ]
}`

func newWorld(t *testing.T, repo storage.SaveRepo) *world.WorldManager {
	t.Helper()
	def, err := stage.Parse([]byte(testStage))
	require.NoError(t, err)
	cfg := config.DefaultConfig()
	cfg.World.WaveBreak = 0.5
	wm, err := world.NewWorldManager(world.Options{Config: cfg, Stage: def, Repo: repo, Seed: 9})
	require.NoError(t, err)
	return wm
}

func TestRunner_CompletesStageWithAutosave(t *testing.T) {
	repo := storage.NewMemorySaveRepo()
	holder := &SnapshotHolder{}
	r := NewRunner(Options{
		World:       newWorld(t, repo),
		Metrics:     observability.NewGameMetrics(prometheus.NewRegistry()),
		Holder:      holder,
		MaxDuration: 2 * time.Minute,
		AutoSave:    true,
	})

	res, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, OutcomeStageComplete, res.Outcome)
	assert.Equal(t, 3, res.Kills)
	assert.Equal(t, 2, res.Wave)
	assert.Equal(t, 3, res.Saves, "две зачищенные волны и выход")

	state, found, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "meadow", state.CurrentStageID)
	assert.Equal(t, 2, state.CurrentWave)
	assert.True(t, state.StageCompleted, "пройденный уровень не переигрывается")

	snap, ok := holder.Snapshot()
	require.True(t, ok)
	assert.True(t, snap.StageComplete)
	assert.Equal(t, res.Frames, snap.Frame)
}

func TestRunner_TimeLimit(t *testing.T) {
	r := NewRunner(Options{
		World:       newWorld(t, nil),
		MaxDuration: time.Second,
		Autopilot:   NewAutopilot(1),
	})

	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeTimeLimit, res.Outcome)
	assert.Equal(t, uint64(60), res.Frames)
	assert.Equal(t, 0, res.Saves)
}

func TestRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := storage.NewMemorySaveRepo()
	r := NewRunner(Options{World: newWorld(t, repo), AutoSave: true})
	res, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeInterrupted, res.Outcome)
	assert.Equal(t, uint64(0), res.Frames)
	assert.Equal(t, 1, res.Saves, "сохранение при выходе идёт без отменённого контекста")
}

func TestRunner_ResumesFromSave(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemorySaveRepo()
	require.NoError(t, repo.Save(ctx, storage.SaveState{
		Level: 3, ExperienceToNextLevel: 225, Gold: 40,
		CurrentHealth: 80, MaxHealth: 100,
		CurrentStageID: "meadow", CurrentWave: 2,
	}))

	r := NewRunner(Options{World: newWorld(t, repo), Resume: true, MaxDuration: 100 * time.Millisecond})
	res, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Wave)
	assert.Equal(t, 3, res.Level)
	assert.Equal(t, 40, res.Gold)
}

func TestRunner_ResumeCompletedStage(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewMemorySaveRepo()
	first, err := NewRunner(Options{World: newWorld(t, repo), MaxDuration: 2 * time.Minute, AutoSave: true}).Run(ctx)
	require.NoError(t, err)
	require.Equal(t, OutcomeStageComplete, first.Outcome)

	res, err := NewRunner(Options{World: newWorld(t, repo), Resume: true, MaxDuration: 2 * time.Minute}).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeStageComplete, res.Outcome)
	assert.Equal(t, 0, res.Kills, "волны не запускаются заново")
	assert.Equal(t, uint64(0), res.Frames)
	assert.Equal(t, first.Level, res.Level)
}

func TestRunner_ResumeWithoutRepo(t *testing.T) {
	r := NewRunner(Options{World: newWorld(t, nil), Resume: true, MaxDuration: 50 * time.Millisecond})
	res, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Wave)
}

func TestRunner_ForwardsEvents(t *testing.T) {
	bus := eventbus.NewMemoryBus(1024)

	var mu sync.Mutex
	counts := map[string]int{}
	_, err := bus.Subscribe(context.Background(), eventbus.Filter{}, func(_ context.Context, ev *eventbus.Envelope) {
		mu.Lock()
		counts[ev.EventType]++
		mu.Unlock()
	})
	require.NoError(t, err)

	r := NewRunner(Options{
		World:       newWorld(t, nil),
		Forwarder:   eventbus.NewForwarder(bus, "test"),
		MaxDuration: 2 * time.Minute,
	})
	res, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, OutcomeStageComplete, res.Outcome)
	require.NoError(t, bus.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, counts[eventbus.TypeWaveStarted])
	assert.Equal(t, 2, counts[eventbus.TypeWaveCleared])
	assert.Equal(t, 3, counts[eventbus.TypeMobKilled])
	assert.Equal(t, 1, counts[eventbus.TypeStageComplete])
}

func TestRunner_SpendsLevelUpsOnPowerUps(t *testing.T) {
	wm := newWorld(t, nil)
	wm.Player().AddExperience(400)

	r := NewRunner(Options{World: wm, MaxDuration: 50 * time.Millisecond})
	_, err := r.Run(context.Background())
	require.NoError(t, err)

	p := wm.Player()
	assert.Equal(t, 0, p.PendingLevelUps())
	assert.Equal(t, 1, p.PowerUpLevel(entity.PowerUpSpeed))
	assert.Equal(t, 1, p.PowerUpLevel(entity.PowerUpStrength))
	assert.Equal(t, 1, p.PowerUpLevel(entity.PowerUpGrab))
	assert.Equal(t, 0, p.PowerUpLevel(entity.PowerUpAttackSpeed))
}

func TestRunner_ForcedPowerUpOrder(t *testing.T) {
	wm := newWorld(t, nil)
	wm.Player().AddExperience(400)

	r := NewRunner(Options{
		World:        wm,
		MaxDuration:  50 * time.Millisecond,
		PowerUpOrder: []entity.PowerUpKind{entity.PowerUpLifesteal, entity.PowerUpLifesteal},
	})
	_, err := r.Run(context.Background())
	require.NoError(t, err)

	p := wm.Player()
	assert.Equal(t, 2, p.PowerUpLevel(entity.PowerUpLifesteal))
	assert.Equal(t, 1, p.PowerUpLevel(entity.PowerUpSpeed), "после списка выбор идёт по кругу")
	assert.Equal(t, 0, p.PowerUpLevel(entity.PowerUpStrength))
}

func TestPickPowerUp_RoundRobin(t *testing.T) {
	p := entity.NewPlayer(config.DefaultPlayerConfig(), vec.Zero(), entity.NewRand(1))

	var picked []entity.PowerUpKind
	for i := 0; i < int(entity.PowerUpCount)+1; i++ {
		k := PickPowerUp(p)
		picked = append(picked, k)
		require.NoError(t, p.ApplyPowerUp(k))
	}
	assert.Equal(t, entity.AllPowerUps(), picked[:entity.PowerUpCount])
	assert.Equal(t, entity.PowerUpSpeed, picked[entity.PowerUpCount])
}

func TestAutopilot_FleesNearestMob(t *testing.T) {
	wm := newWorld(t, nil)
	// Доводим до появления гоблина
	for i := 0; i < 40 && len(wm.Mobs()) == 0; i++ {
		wm.Update(1.0 / 60)
	}
	require.NotEmpty(t, wm.Mobs())

	mob := wm.Mobs()[0]
	// Ставим моба вплотную справа от игрока
	center := wm.Player().HitboxCenter()
	base := mob.Base()
	offset := base.HitboxCenter().Sub(base.Position)
	base.Position = center.Add(vec.Vec2Float{X: 30, Y: 0}).Sub(offset)

	in := NewAutopilot(5).NextInput(wm, 1.0/60)
	assert.Less(t, in.Move.X, 0.0, "уходим от моба")
	assert.InDelta(t, 1.0, in.Move.Length(), 1e-9)
	assert.True(t, in.Dodge, "моб вплотную — рывок")
}

func TestAutopilot_WandersWhenAlone(t *testing.T) {
	wm := newWorld(t, nil)
	in := NewAutopilot(5).NextInput(wm, 1.0/60)
	assert.InDelta(t, 1.0, in.Move.Length(), 1e-9)
	assert.False(t, in.Dodge)
}

func TestSnapshotHolder(t *testing.T) {
	var h SnapshotHolder
	_, ok := h.Snapshot()
	assert.False(t, ok)

	h.Store(world.Snapshot{Frame: 7})
	snap, ok := h.Snapshot()
	assert.True(t, ok)
	assert.Equal(t, uint64(7), snap.Frame)
}
