package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/annel0/horde-survivors/internal/api"
	"github.com/annel0/horde-survivors/internal/app"
	"github.com/annel0/horde-survivors/internal/config"
	"github.com/annel0/horde-survivors/internal/eventbus"
	"github.com/annel0/horde-survivors/internal/logging"
	"github.com/annel0/horde-survivors/internal/observability"
	"github.com/annel0/horde-survivors/internal/storage"
	"github.com/annel0/horde-survivors/internal/world"
	"github.com/annel0/horde-survivors/internal/world/entity"
)

var runFlags struct {
	seed       int64
	realtime   bool
	duration   time.Duration
	resume     bool
	noAutosave bool
	noStatus   bool
	idle       bool
	powerUps   []string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a stage headlessly with the autopilot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		res, err := runGame(ctx, cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Итог: %s\n", res.Outcome)
		fmt.Fprintf(out, "  волна %d, уровень %d, убийств %d, золото %d\n", res.Wave, res.Level, res.Kills, res.Gold)
		fmt.Fprintf(out, "  кадров %d (%s симуляции), сохранений %d\n", res.Frames, res.Simulated.Round(time.Millisecond), res.Saves)
		return nil
	},
}

func init() {
	f := runCmd.Flags()
	f.Int64Var(&runFlags.seed, "seed", time.Now().UnixNano(), "сид генератора случайных чисел")
	f.BoolVar(&runFlags.realtime, "realtime", false, "выдерживать шаг кадра по часам")
	f.DurationVar(&runFlags.duration, "duration", 0, "предел симулированного времени (0 — без предела)")
	f.BoolVar(&runFlags.resume, "resume", false, "продолжить с сохранения")
	f.BoolVar(&runFlags.noAutosave, "no-autosave", false, "не сохранять после волн и при выходе")
	f.BoolVar(&runFlags.noStatus, "no-status", false, "не запускать статус-сервер")
	f.BoolVar(&runFlags.idle, "idle", false, "без автопилота: игрок стоит на месте")
	f.StringSliceVar(&runFlags.powerUps, "powerups", nil, "порядок первых усилений, например speed,strength")
}

// parsePowerUpOrder разбирает список имён усилений из флага --powerups
func parsePowerUpOrder(names []string) ([]entity.PowerUpKind, error) {
	order := make([]entity.PowerUpKind, 0, len(names))
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		kind, err := entity.ParsePowerUp(name)
		if err != nil {
			return nil, fmt.Errorf("--powerups: %w", err)
		}
		order = append(order, kind)
	}
	return order, nil
}

// runGame собирает все подсистемы и выполняет забег
func runGame(ctx context.Context, cfg *config.Config) (app.Result, error) {
	logging.Info("🎮 Запуск Horde Survivors (seed=%d)", runFlags.seed)

	order, err := parsePowerUpOrder(runFlags.powerUps)
	if err != nil {
		return app.Result{}, err
	}

	shutdownTelemetry, err := observability.InitTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		logging.Warn("⚠️ OpenTelemetry не инициализирован: %v", err)
	} else {
		defer shutdownTelemetry(context.Background())
	}

	def, factory, err := loadStage(cfg.Stage)
	if err != nil {
		return app.Result{}, err
	}
	logging.Info("🗺️ Уровень %s: %d волн", def.StageID, len(def.Waves))

	repo, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return app.Result{}, err
	}
	defer repo.Close()

	bus, err := openBus(cfg.EventBus)
	if err != nil {
		return app.Result{}, err
	}
	defer bus.Close()
	eventbus.Init(bus)

	exporter := eventbus.NewMetricsExporter(bus, nil)
	exporter.Start(time.Second)
	defer exporter.Stop()

	forwarder := eventbus.NewForwarder(bus, cfg.Telemetry.ServiceName)
	holder := &app.SnapshotHolder{}

	if cfg.Server.Enabled && !runFlags.noStatus {
		srv := api.NewStatusServer(api.Config{
			Addr:        fmt.Sprintf(":%d", cfg.Server.GetStatusPort()),
			ServiceName: cfg.Telemetry.ServiceName,
			Source:      holder,
			Bus:         bus,
			RunID:       forwarder.RunID(),
		})
		go func() {
			if err := srv.Start(); err != nil {
				logging.Error("❌ Статус-сервер: %v", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Stop(ctx)
		}()
	}

	wm, err := world.NewWorldManager(world.Options{
		Config:  cfg,
		Stage:   def,
		Factory: factory,
		Repo:    repo,
		Seed:    runFlags.seed,
	})
	if err != nil {
		return app.Result{}, err
	}

	var autopilot *app.Autopilot
	if !runFlags.idle {
		autopilot = app.NewAutopilot(runFlags.seed)
	}

	runner := app.NewRunner(app.Options{
		World:       wm,
		Forwarder:   forwarder,
		Metrics:     observability.NewGameMetrics(nil),
		Holder:      holder,
		TickRate:    cfg.World.TickRate,
		Realtime:    runFlags.realtime,
		MaxDuration: runFlags.duration,
		Autopilot:   autopilot,
		AutoSave:    !runFlags.noAutosave,
		Resume:      runFlags.resume,

		PowerUpOrder: order,
	})
	return runner.Run(ctx)
}

// openBus выбирает шину: JetStream при заданном URL, иначе в памяти с логированием
func openBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	if cfg.URL == "" {
		bus := eventbus.NewMemoryBus(cfg.BufferSize)
		if _, err := eventbus.StartLoggingListener(bus); err != nil {
			bus.Close()
			return nil, err
		}
		return bus, nil
	}

	bus, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, time.Duration(cfg.Retention)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("event bus: %w", err)
	}
	logging.Info("📨 События публикуются в NATS JetStream %s (stream=%s)", cfg.URL, cfg.Stream)
	return bus, nil
}
