package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsPath — маршрут экспорта метрик; сам он в HTTP-метрики не попадает
const MetricsPath = "/metrics"

// unmatchedRoute заменяет путь запросов мимо маршрутов, чтобы сканеры
// не раздували число временных рядов
const unmatchedRoute = "unmatched"

// PrometheusMiddleware собирает HTTP-метрики статус-сервера:
// длительность по route/status, число запросов в работе и ошибки по классу статуса.
type PrometheusMiddleware struct {
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
	errors   *prometheus.CounterVec
	gatherer prometheus.Gatherer
}

// NewPrometheusMiddleware регистрирует метрики в reg с префиксом service.
// gatherer обслуживает /metrics; nil для обоих означает глобальный регистр.
func NewPrometheusMiddleware(service string, reg prometheus.Registerer, gatherer prometheus.Gatherer) *PrometheusMiddleware {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	pm := &PrometheusMiddleware{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: service,
			Name:      "http_request_duration_seconds",
			Help:      "Длительность HTTP-запросов.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"method", "route", "status"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: service,
			Name:      "http_requests_inflight",
			Help:      "Запросы, обрабатываемые прямо сейчас.",
		}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: service,
			Name:      "http_request_errors_total",
			Help:      "Ответы со статусом 4xx/5xx.",
		}, []string{"route", "class"}),
		gatherer: gatherer,
	}

	reg.MustRegister(pm.duration, pm.inflight, pm.errors)
	return pm
}

// Handler возвращает middleware для router.Use()
func (pm *PrometheusMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == MetricsPath {
			c.Next()
			return
		}

		start := time.Now()
		pm.inflight.Inc()
		defer pm.inflight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		code := c.Writer.Status()
		pm.duration.WithLabelValues(c.Request.Method, route, strconv.Itoa(code)).
			Observe(time.Since(start).Seconds())

		if code >= 400 {
			pm.errors.WithLabelValues(route, strconv.Itoa(code/100)+"xx").Inc()
		}
	}
}

// RegisterMetricsEndpoint добавляет GET /metrics
func (pm *PrometheusMiddleware) RegisterMetricsEndpoint(r *gin.Engine) {
	r.GET(MetricsPath, gin.WrapH(promhttp.HandlerFor(pm.gatherer, promhttp.HandlerOpts{})))
}
