package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/horde-survivors/internal/world"
)

// GameMetrics содержит Prometheus-метрики симуляции.
// Обновляются из цикла кадров: Observe для событий, ObserveFrame для снимка.
type GameMetrics struct {
	kills         *prometheus.CounterVec
	events        *prometheus.CounterVec
	frameDuration prometheus.Histogram
	wave          prometheus.Gauge
	level         prometheus.Gauge
	health        prometheus.Gauge
	liveMobs      prometheus.Gauge
	gold          prometheus.Gauge
}

// NewGameMetrics создаёт метрики и регистрирует их в reg (nil — глобальный регистр)
func NewGameMetrics(reg prometheus.Registerer) *GameMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gm := &GameMetrics{
		kills: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "survivors",
			Name:      "mob_kills_total",
			Help:      "Убийства мобов по типу и причине.",
		}, []string{"mob_type", "cause"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "survivors",
			Name:      "events_total",
			Help:      "Игровые события по типу.",
		}, []string{"type"}),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "survivors",
			Name:      "frame_duration_seconds",
			Help:      "Время расчёта одного кадра.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.002, 0.004, 0.008, 0.016, 0.033},
		}),
		wave: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "survivors",
			Name:      "current_wave",
			Help:      "Номер текущей волны.",
		}),
		level: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "survivors",
			Name:      "player_level",
			Help:      "Уровень игрока.",
		}),
		health: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "survivors",
			Name:      "player_health",
			Help:      "Текущее здоровье игрока.",
		}),
		liveMobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "survivors",
			Name:      "live_mobs",
			Help:      "Живые мобы на уровне.",
		}),
		gold: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "survivors",
			Name:      "player_gold",
			Help:      "Золото игрока.",
		}),
	}

	reg.MustRegister(gm.kills, gm.events, gm.frameDuration, gm.wave, gm.level, gm.health, gm.liveMobs, gm.gold)
	return gm
}

// Observe учитывает события кадра
func (gm *GameMetrics) Observe(events []world.Event) {
	for _, ev := range events {
		gm.events.WithLabelValues(ev.GetType().String()).Inc()
		if k, ok := ev.(world.MobKilledEvent); ok {
			gm.kills.WithLabelValues(k.MobType, k.Cause).Inc()
		}
	}
}

// ObserveFrame записывает длительность кадра и показатели снимка
func (gm *GameMetrics) ObserveFrame(took time.Duration, snap world.Snapshot) {
	gm.frameDuration.Observe(took.Seconds())
	gm.wave.Set(float64(snap.Wave))
	gm.level.Set(float64(snap.Player.Level))
	gm.health.Set(snap.Player.Health)
	gm.gold.Set(float64(snap.Player.Gold))

	live := 0
	for _, m := range snap.Mobs {
		if !m.Dead {
			live++
		}
	}
	gm.liveMobs.Set(float64(live))
}
