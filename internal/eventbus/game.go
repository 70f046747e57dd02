package eventbus

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/annel0/horde-survivors/internal/world"
)

// Версия схемы полезной нагрузки игровых событий
const gameEventVersion = 1

// Имена типов событий в шине (совпадают с суффиксом subject'а)
const (
	TypeWaveStarted   = "WaveStarted"
	TypeWaveCleared   = "WaveCleared"
	TypeStageComplete = "StageComplete"
	TypeLevelUp       = "LevelUp"
	TypeMobKilled     = "MobKilled"
	TypePlayerDied    = "PlayerDied"
	TypeGameSaved     = "GameSaved"
	TypeGameLoaded    = "GameLoaded"
)

var gameEventTypes = map[world.EventType]string{
	world.EventTypeWaveStarted:   TypeWaveStarted,
	world.EventTypeWaveCleared:   TypeWaveCleared,
	world.EventTypeStageComplete: TypeStageComplete,
	world.EventTypeLevelUp:       TypeLevelUp,
	world.EventTypeMobKilled:     TypeMobKilled,
	world.EventTypePlayerDied:    TypePlayerDied,
	world.EventTypeGameSaved:     TypeGameSaved,
	world.EventTypeGameLoaded:    TypeGameLoaded,
}

// GameEventType возвращает имя типа события для шины
func GameEventType(t world.EventType) string {
	if name, ok := gameEventTypes[t]; ok {
		return name
	}
	return "Unknown"
}

// GameEventPriority задаёт приоритет: частые убийства можно отбросить при
// переполнении, конец забега и сохранения нельзя
func GameEventPriority(t world.EventType) int {
	switch t {
	case world.EventTypeMobKilled:
		return 1
	case world.EventTypeWaveStarted, world.EventTypeLevelUp:
		return 4
	case world.EventTypeWaveCleared, world.EventTypeGameSaved, world.EventTypeGameLoaded:
		return 6
	default:
		return 9
	}
}

// NewGameEnvelope упаковывает событие мира в Envelope с новым UUID.
// runID связывает события одного забега.
func NewGameEnvelope(ev world.Event, source, runID string) (*Envelope, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		Source:        source,
		EventType:     GameEventType(ev.GetType()),
		Version:       gameEventVersion,
		CorrelationID: runID,
		Priority:      GameEventPriority(ev.GetType()),
		Payload:       payload,
	}, nil
}

// Forwarder публикует события мира в шину от имени одного забега
type Forwarder struct {
	bus    EventBus
	source string
	runID  string
}

// NewForwarder создаёт Forwarder с новым идентификатором забега
func NewForwarder(bus EventBus, source string) *Forwarder {
	return &Forwarder{bus: bus, source: source, runID: uuid.NewString()}
}

// RunID возвращает идентификатор забега
func (f *Forwarder) RunID() string {
	return f.runID
}

// Forward публикует пачку событий; первая ошибка прерывает отправку
func (f *Forwarder) Forward(ctx context.Context, events []world.Event) error {
	if f == nil || f.bus == nil {
		return nil
	}
	for _, ev := range events {
		env, err := NewGameEnvelope(ev, f.source, f.runID)
		if err != nil {
			return err
		}
		if err := f.bus.Publish(ctx, env); err != nil {
			return err
		}
	}
	return nil
}
