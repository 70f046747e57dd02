package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/annel0/horde-survivors/internal/logging"
)

// TraceIDKey: ключ gin.Context с trace-ID запроса
const TraceIDKey = "trace_id"

// TraceIDHeader передаёт trace-ID клиенту и принимается от него
const TraceIDHeader = "X-Trace-Id"

// RequestLogger снабжает каждый HTTP-запрос trace-ID и пишет строку лога на ответ.
// Частые пробы /health пишутся только на DEBUG.
type RequestLogger struct {
	log   *logging.Logger
	quiet map[string]bool
}

// NewRequestLogger создаёт middleware; nil log означает логгер статус-сервера
func NewRequestLogger(log *logging.Logger) *RequestLogger {
	if log == nil {
		log = logging.GetServerLogger()
	}
	return &RequestLogger{log: log, quiet: map[string]bool{"/health": true}}
}

// traceID берёт ID активного спана otelgin, затем присланный клиентом UUID,
// иначе создаёт новый
func traceID(c *gin.Context) string {
	if sc := trace.SpanFromContext(c.Request.Context()).SpanContext(); sc.IsValid() {
		return sc.TraceID().String()
	}
	if h := c.GetHeader(TraceIDHeader); h != "" {
		if _, err := uuid.Parse(h); err == nil {
			return h
		}
	}
	return uuid.NewString()
}

func (rl *RequestLogger) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := traceID(c)
		c.Set(TraceIDKey, id)
		c.Header(TraceIDHeader, id)

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()
		line := "[HTTP] %s %s %d %s trace=%s"
		args := []interface{}{c.Request.Method, route, status, time.Since(start), id}

		switch {
		case status >= 500:
			rl.log.Error(line, args...)
		case status >= 400:
			rl.log.Warn(line, args...)
		case rl.quiet[route]:
			rl.log.Debug(line, args...)
		default:
			rl.log.Info(line, args...)
		}
	}
}
