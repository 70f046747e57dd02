// Package app собирает симуляцию в исполняемый забег: цикл кадров с
// фиксированным шагом, автопилот, автосохранение и публикацию событий.
package app

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/annel0/horde-survivors/internal/eventbus"
	"github.com/annel0/horde-survivors/internal/logging"
	"github.com/annel0/horde-survivors/internal/observability"
	"github.com/annel0/horde-survivors/internal/world"
	"github.com/annel0/horde-survivors/internal/world/entity"
)

// Outcome описывает, чем закончился забег
type Outcome string

const (
	OutcomeStageComplete Outcome = "stage_complete"
	OutcomePlayerDied    Outcome = "player_died"
	OutcomeInterrupted   Outcome = "interrupted"
	OutcomeTimeLimit     Outcome = "time_limit"
)

// Result содержит итог забега
type Result struct {
	Outcome   Outcome
	Frames    uint64
	Simulated time.Duration
	Wave      int
	Level     int
	Kills     int
	Gold      int
	Saves     int
}

// Options настраивает Runner
type Options struct {
	World     *world.WorldManager
	Forwarder *eventbus.Forwarder        // nil — события не публикуются
	Metrics   *observability.GameMetrics // nil — без метрик
	Holder    *SnapshotHolder            // nil — снимки не публикуются

	TickRate    int           // кадров в секунду симуляции
	Realtime    bool          // выдерживать шаг по часам
	MaxDuration time.Duration // предел симулированного времени, 0 — без предела
	Autopilot   *Autopilot    // nil — ввод не подаётся
	AutoSave    bool          // сохранять после зачистки волны и при выходе
	Resume      bool          // загрузить сохранение перед стартом

	// PowerUpOrder задаёт первые выборы усилений; дальше работает PickPowerUp
	PowerUpOrder []entity.PowerUpKind
}

// Runner крутит мир с фиксированным шагом
type Runner struct {
	opts  Options
	dt    float64
	saves int
	picks int
	log   *logging.Logger
}

// NewRunner создаёт Runner
func NewRunner(opts Options) *Runner {
	if opts.TickRate <= 0 {
		opts.TickRate = 60
	}
	return &Runner{
		opts: opts,
		dt:   1.0 / float64(opts.TickRate),
		log:  logging.GetRunnerLogger(),
	}
}

// Run выполняет забег до конца уровня, смерти игрока, предела времени
// или отмены ctx. Отмена ctx не считается ошибкой.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	wm := r.opts.World

	if r.opts.Resume {
		found, err := wm.LoadGame(ctx)
		switch {
		case errors.Is(err, world.ErrNoSaveRepo):
			r.log.Warn("⚠️ Продолжение невозможно: хранилище не настроено")
		case err != nil:
			return Result{}, err
		case !found:
			r.log.Info("📂 Сохранения нет, начинаем новую игру")
		}
	}
	wm.Start()
	r.publish(ctx, 0)

	var ticker *time.Ticker
	if r.opts.Realtime {
		ticker = time.NewTicker(time.Duration(float64(time.Second) * r.dt))
		defer ticker.Stop()
	}

	var frames, maxFrames uint64
	if r.opts.MaxDuration > 0 {
		maxFrames = uint64(math.Ceil(r.opts.MaxDuration.Seconds()*float64(r.opts.TickRate) - 1e-9))
	}
	outcome := OutcomeInterrupted

loop:
	for {
		if ticker != nil {
			select {
			case <-ctx.Done():
				break loop
			case <-ticker.C:
			}
		} else if ctx.Err() != nil {
			break loop
		}

		start := time.Now()
		if r.opts.Autopilot != nil {
			wm.ApplyInput(r.opts.Autopilot.NextInput(wm, r.dt))
		}
		wm.Update(r.dt)
		r.chooseLevelUps()
		frames++
		r.publish(ctx, time.Since(start))

		switch {
		case wm.StageComplete():
			outcome = OutcomeStageComplete
			break loop
		case wm.GameOver():
			outcome = OutcomePlayerDied
			break loop
		case maxFrames > 0 && frames >= maxFrames:
			outcome = OutcomeTimeLimit
			break loop
		}
	}

	// Погибшего игрока не сохраняем: остаётся снимок последней зачищенной волны
	if r.opts.AutoSave && outcome != OutcomePlayerDied {
		r.save(context.WithoutCancel(ctx))
		r.publish(context.WithoutCancel(ctx), 0)
	}

	p := wm.Player()
	res := Result{
		Outcome:   outcome,
		Frames:    wm.Snapshot().Frame,
		Simulated: time.Duration(float64(frames) * r.dt * float64(time.Second)),
		Wave:      wm.CurrentWave(),
		Level:     p.Level(),
		Kills:     wm.Kills(),
		Gold:      p.Gold(),
		Saves:     r.saves,
	}
	r.log.Info("🏁 Забег окончен: %s, волна %d, уровень %d, убийств %d", res.Outcome, res.Wave, res.Level, res.Kills)
	return res, nil
}

// chooseLevelUps тратит накопленные повышения уровня на усиления
func (r *Runner) chooseLevelUps() {
	wm := r.opts.World
	p := wm.Player()
	for p.ConsumeLevelUp() {
		if err := wm.ChoosePowerUp(r.nextPowerUp(p)); err != nil {
			r.log.Error("❌ Не удалось применить усиление: %v", err)
		}
	}
}

func (r *Runner) nextPowerUp(p *entity.Player) entity.PowerUpKind {
	if r.picks < len(r.opts.PowerUpOrder) {
		kind := r.opts.PowerUpOrder[r.picks]
		r.picks++
		return kind
	}
	return PickPowerUp(p)
}

// publish раздаёт события кадра: метрики, шина, автосохранение, снимок
func (r *Runner) publish(ctx context.Context, took time.Duration) {
	wm := r.opts.World
	events := wm.DrainEvents()

	if r.opts.Metrics != nil {
		r.opts.Metrics.Observe(events)
	}
	if err := r.opts.Forwarder.Forward(ctx, events); err != nil {
		r.log.Warn("⚠️ Не удалось опубликовать события: %v", err)
	}

	if r.opts.AutoSave {
		for _, ev := range events {
			if ev.GetType() == world.EventTypeWaveCleared {
				r.save(ctx)
				break
			}
		}
	}

	if r.opts.Metrics != nil || r.opts.Holder != nil {
		snap := wm.Snapshot()
		if r.opts.Metrics != nil {
			r.opts.Metrics.ObserveFrame(took, snap)
		}
		if r.opts.Holder != nil {
			r.opts.Holder.Store(snap)
		}
	}
}

func (r *Runner) save(ctx context.Context) {
	err := r.opts.World.SaveGame(ctx)
	switch {
	case errors.Is(err, world.ErrNoSaveRepo), errors.Is(err, world.ErrPlayerDead):
		return
	case err != nil:
		r.log.Error("❌ Автосохранение не удалось: %v", err)
	default:
		r.saves++
	}
}
