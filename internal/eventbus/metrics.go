package eventbus

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsExporter переносит Stats шины в Prometheus с меткой backend
// (memory или jetstream). Эндпоинт /metrics обслуживает статус-сервер.
type MetricsExporter struct {
	bus EventBus

	mu   sync.Mutex
	prev Stats

	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  bool

	published prometheus.Counter
	consumed  prometheus.Counter
	dropped   prometheus.Counter
	inflight  prometheus.Gauge
}

func backendName(bus EventBus) string {
	if _, ok := bus.(*JetStreamBus); ok {
		return "jetstream"
	}
	return "memory"
}

// NewMetricsExporter регистрирует метрики шины в reg (nil — глобальный регистр)
func NewMetricsExporter(bus EventBus, reg prometheus.Registerer) *MetricsExporter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	labels := prometheus.Labels{"backend": backendName(bus)}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "survivors",
			Subsystem:   "eventbus",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
	}

	me := &MetricsExporter{
		bus:       bus,
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
		published: counter("published_total", "Игровые события, принятые шиной."),
		consumed:  counter("consumed_total", "События, обработанные подписчиками."),
		dropped:   counter("dropped_total", "События, отброшенные при переполнении или ошибке отправки."),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "survivors",
			Subsystem:   "eventbus",
			Name:        "inflight",
			Help:        "События в очередях подписчиков.",
			ConstLabels: labels,
		}),
	}

	reg.MustRegister(me.published, me.consumed, me.dropped, me.inflight)
	return me
}

// Start обновляет метрики раз в interval в отдельной горутине
func (m *MetricsExporter) Start(interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}
	m.mu.Lock()
	m.started = true
	m.mu.Unlock()
	go m.loop(interval)
}

// Stop останавливает цикл и делает последний перенос. Без Start просто переносит.
func (m *MetricsExporter) Stop() {
	m.stopOnce.Do(func() { close(m.quit) })
	m.mu.Lock()
	started := m.started
	m.mu.Unlock()
	if started {
		<-m.done
	}
	m.Refresh()
}

// Refresh прибавляет к счётчикам приращение Stats с прошлого вызова
func (m *MetricsExporter) Refresh() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := m.bus.Metrics()
	addDelta(m.published, m.prev.Published, cur.Published)
	addDelta(m.consumed, m.prev.Consumed, cur.Consumed)
	addDelta(m.dropped, m.prev.Dropped, cur.Dropped)
	m.inflight.Set(float64(cur.InFlight))
	m.prev = cur
}

func addDelta(c prometheus.Counter, prev, cur uint64) {
	if cur > prev {
		c.Add(float64(cur - prev))
	}
}

func (m *MetricsExporter) loop(interval time.Duration) {
	defer close(m.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.quit:
			return
		}
	}
}
