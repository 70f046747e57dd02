// Package api реализует HTTP статус-сервер забега: только чтение состояния,
// метрик процесса и Prometheus.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/horde-survivors/internal/eventbus"
	"github.com/annel0/horde-survivors/internal/logging"
	"github.com/annel0/horde-survivors/internal/middleware"
	"github.com/annel0/horde-survivors/internal/world"
)

// StateSource отдаёт последний опубликованный снимок мира.
// ok=false, пока не рассчитан первый кадр.
type StateSource interface {
	Snapshot() (snap world.Snapshot, ok bool)
}

// Config содержит конфигурацию статус-сервера
type Config struct {
	Addr        string                // адрес для запуска сервера, например ":8088"
	ServiceName string                // имя сервиса для otel
	Source      StateSource           // источник снимков
	Bus         eventbus.EventBus     // может быть nil
	Registerer  prometheus.Registerer // nil — глобальный регистр
	Gatherer    prometheus.Gatherer   // nil — глобальный регистр
	RunID       string
}

// StatusServer представляет HTTP сервер состояния
type StatusServer struct {
	router  *gin.Engine
	server  *http.Server
	cfg     Config
	process *ProcessMetrics
	log     *logging.Logger
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// NewStatusServer создает сервер и настраивает маршруты
func NewStatusServer(cfg Config) *StatusServer {
	if cfg.Addr == "" {
		cfg.Addr = ":8088"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "horde-survivors"
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	log := logging.GetServerLogger()
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.NewRequestLogger(log).Handler())

	promMw := middleware.NewPrometheusMiddleware("status_api", cfg.Registerer, cfg.Gatherer)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router)

	ss := &StatusServer{
		router:  router,
		cfg:     cfg,
		process: NewProcessMetrics(),
		log:     log,
	}
	ss.setupRoutes()
	ss.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return ss
}

func (ss *StatusServer) setupRoutes() {
	ss.router.GET("/health", ss.handleHealth)

	api := ss.router.Group("/api")
	{
		api.GET("/state", ss.handleState)
		api.GET("/status", ss.handleStatus)
	}
}

// Handler возвращает http.Handler (для тестов и встраивания)
func (ss *StatusServer) Handler() http.Handler {
	return ss.router
}

func (ss *StatusServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

func (ss *StatusServer) handleState(c *gin.Context) {
	if ss.cfg.Source == nil {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{Message: "Симуляция не подключена"})
		return
	}
	snap, ok := ss.cfg.Source.Snapshot()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{Message: "Первый кадр ещё не рассчитан"})
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Состояние мира", Data: snap})
}

func (ss *StatusServer) handleStatus(c *gin.Context) {
	data := gin.H{
		"service": ss.cfg.ServiceName,
		"run_id":  ss.cfg.RunID,
		"process": ss.process.Collect(),
	}
	if ss.cfg.Bus != nil {
		data["eventbus"] = ss.cfg.Bus.Metrics()
	}
	if ss.cfg.Source != nil {
		if snap, ok := ss.cfg.Source.Snapshot(); ok {
			data["frame"] = snap.Frame
			data["wave"] = snap.Wave
			data["game_over"] = snap.GameOver
			data["stage_complete"] = snap.StageComplete
		}
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Статус процесса", Data: data})
}

// Serve начинает принимать соединения на уже открытом listener'е. Блокирующий.
func (ss *StatusServer) Serve(ln net.Listener) error {
	ss.log.Info("🌐 Статус-сервер слушает %s", ln.Addr())
	if err := ss.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Start запускает сервер на cfg.Addr. Блокирующий.
func (ss *StatusServer) Start() error {
	ln, err := net.Listen("tcp", ss.cfg.Addr)
	if err != nil {
		return err
	}
	return ss.Serve(ln)
}

// Stop корректно завершает сервер
func (ss *StatusServer) Stop(ctx context.Context) error {
	return ss.server.Shutdown(ctx)
}
