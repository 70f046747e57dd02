package world

import "github.com/annel0/horde-survivors/internal/vec"

// EventType определяет тип события
type EventType uint8

const (
	EventTypeWaveStarted   EventType = iota // Началась волна
	EventTypeWaveCleared                    // Волна зачищена
	EventTypeStageComplete                  // Уровень пройден
	EventTypeLevelUp                        // Игрок повысил уровень
	EventTypeMobKilled                      // Игроку засчитано убийство
	EventTypePlayerDied                     // Игрок погиб
	EventTypeGameSaved                      // Прогресс сохранён
	EventTypeGameLoaded                     // Прогресс загружен
)

func (t EventType) String() string {
	switch t {
	case EventTypeWaveStarted:
		return "wave_started"
	case EventTypeWaveCleared:
		return "wave_cleared"
	case EventTypeStageComplete:
		return "stage_complete"
	case EventTypeLevelUp:
		return "level_up"
	case EventTypeMobKilled:
		return "mob_killed"
	case EventTypePlayerDied:
		return "player_died"
	case EventTypeGameSaved:
		return "game_saved"
	case EventTypeGameLoaded:
		return "game_loaded"
	default:
		return "unknown"
	}
}

// Event представляет собой интерфейс для всех событий
type Event interface {
	GetType() EventType
}

// WaveEvent сообщает о начале или зачистке волны
type WaveEvent struct {
	EventType EventType `json:"-"`
	Wave      int       `json:"wave"` // Номер волны, начиная с 1
	Boss      bool      `json:"boss"` // Волна с боссом
}

// GetType возвращает тип события
func (e WaveEvent) GetType() EventType {
	return e.EventType
}

// StageCompleteEvent: все волны уровня пройдены
type StageCompleteEvent struct {
	StageID string  `json:"stage_id"`
	Elapsed float64 `json:"elapsed"` // Секунд с начала прохождения
}

// GetType возвращает тип события
func (e StageCompleteEvent) GetType() EventType {
	return EventTypeStageComplete
}

// LevelUpEvent: игрок достиг нового уровня
type LevelUpEvent struct {
	Level int `json:"level"`
}

// GetType возвращает тип события
func (e LevelUpEvent) GetType() EventType {
	return EventTypeLevelUp
}

// MobKilledEvent описывает убийство, засчитанное игроку
type MobKilledEvent struct {
	MobType  string        `json:"mob_type"`
	Boss     bool          `json:"boss"`
	Cause    string        `json:"cause"`
	Crit     bool          `json:"crit"`
	Position vec.Vec2Float `json:"position"`
	Streak   int           `json:"streak"`
}

// GetType возвращает тип события
func (e MobKilledEvent) GetType() EventType {
	return EventTypeMobKilled
}

// PlayerDiedEvent: игрок погиб, прохождение окончено
type PlayerDiedEvent struct {
	Level int `json:"level"`
	Wave  int `json:"wave"`
	Kills int `json:"kills"`
}

// GetType возвращает тип события
func (e PlayerDiedEvent) GetType() EventType {
	return EventTypePlayerDied
}

// PersistenceEvent сообщает о сохранении или загрузке прогресса
type PersistenceEvent struct {
	EventType EventType `json:"-"`
	Level     int       `json:"level"`
	Wave      int       `json:"wave"`
}

// GetType возвращает тип события
func (e PersistenceEvent) GetType() EventType {
	return e.EventType
}
