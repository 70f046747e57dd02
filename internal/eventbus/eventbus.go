package eventbus

import (
	"context"
	"errors"
	"time"
)

// ErrBusClosed возвращается при публикации в закрытую шину
var ErrBusClosed = errors.New("event bus is closed")

// DropBelowPriority: события с меньшим приоритетом отбрасываются при полной очереди,
// остальные ждут места
const DropBelowPriority = 5

// Envelope описывает универсальный контейнер события.
// Все поля фиксированы для версиирования и трассировки.
type Envelope struct {
	ID            string            `json:"id"`             // Глобально уникальный идентификатор (UUID).
	Timestamp     time.Time         `json:"timestamp"`      // Время создания события (UTC).
	Source        string            `json:"source"`         // Имя источника (сервис или забег).
	EventType     string            `json:"event_type"`     // Тип события (MobKilled, WaveCleared…).
	Version       int               `json:"version"`        // Схема полезной нагрузки.
	CorrelationID string            `json:"correlation_id"` // Идентификатор забега.
	Priority      int               `json:"priority"`       // 0=Low … 9=Critical (для backpressure).
	Payload       []byte            `json:"payload"`        // Событие в JSON.
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Filter позволяет подписаться только на нужные события.
type Filter struct {
	Types   []string // Если пусто — все типы.
	Sources []string // Если пусто — все источники.
}

// Subscription возвращается при подписке; позволяет отписаться.
type Subscription interface {
	Unsubscribe()
}

// Handler потребляет события.
type Handler func(ctx context.Context, ev *Envelope)

// Stats содержит счётчики шины с момента создания.
type Stats struct {
	Published uint64
	Consumed  uint64
	Dropped   uint64
	InFlight  int
}

// EventBus определяет абстракцию шины событий (в памяти или NATS JetStream).
type EventBus interface {
	Publish(ctx context.Context, ev *Envelope) error
	Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error)
	Metrics() Stats
	Close() error
}

func matchFilter(ev *Envelope, f Filter) bool {
	return contains(f.Types, ev.EventType) && contains(f.Sources, ev.Source)
}

// contains считает пустой список совпадающим с любым значением
func contains(list []string, val string) bool {
	if len(list) == 0 {
		return true
	}
	for _, v := range list {
		if v == val {
			return true
		}
	}
	return false
}
