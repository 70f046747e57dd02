package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrSaveNotFound возвращает LoadExisting, когда сохранения нет
var ErrSaveNotFound = errors.New("save not found")

// SaveState представляет плоский снимок прогресса персонажа и текущей волны
type SaveState struct {
	Level                 int     `json:"level"`
	Experience            float64 `json:"experience"`
	ExperienceToNextLevel float64 `json:"experienceToNextLevel"`
	Gold                  int     `json:"gold"`
	CurrentHealth         float64 `json:"currentHealth"`
	MaxHealth             float64 `json:"maxHealth"`

	SpeedLevel           int `json:"speedLevel"`
	StrengthLevel        int `json:"strengthLevel"`
	GrabLevel            int `json:"grabLevel"`
	AttackSpeedLevel     int `json:"attackSpeedLevel"`
	MaxHpLevel           int `json:"maxHpLevel"`
	XpBoostLevel         int `json:"xpBoostLevel"`
	ExplosionChanceLevel int `json:"explosionChanceLevel"`
	ChainLightningLevel  int `json:"chainLightningLevel"`
	LifestealLevel       int `json:"lifestealLevel"`

	CurrentStageID string `json:"currentStageId"`
	CurrentWave    int    `json:"currentWave"` // волна, с которой продолжится игра
	StageCompleted bool   `json:"stageCompleted,omitempty"`
	SaveTime       int64  `json:"saveTime"` // миллисекунды Unix
}

// SavedAt возвращает время сохранения
func (s SaveState) SavedAt() time.Time {
	return time.UnixMilli(s.SaveTime)
}

// PowerUpLevels возвращает уровни усилений в каноническом порядке:
// SPEED, STRENGTH, GRAB, ATTACK_SPEED, MAX_HP, XP_BOOST, EXPLOSION_CHANCE, CHAIN_LIGHTNING, LIFESTEAL
func (s SaveState) PowerUpLevels() []int {
	return []int{
		s.SpeedLevel, s.StrengthLevel, s.GrabLevel, s.AttackSpeedLevel, s.MaxHpLevel,
		s.XpBoostLevel, s.ExplosionChanceLevel, s.ChainLightningLevel, s.LifestealLevel,
	}
}

// SetPowerUpLevels заполняет уровни усилений в каноническом порядке
func (s *SaveState) SetPowerUpLevels(levels []int) {
	fields := []*int{
		&s.SpeedLevel, &s.StrengthLevel, &s.GrabLevel, &s.AttackSpeedLevel, &s.MaxHpLevel,
		&s.XpBoostLevel, &s.ExplosionChanceLevel, &s.ChainLightningLevel, &s.LifestealLevel,
	}
	for i := 0; i < len(fields) && i < len(levels); i++ {
		*fields[i] = levels[i]
	}
}

// Validate проверяет согласованность снимка
func (s SaveState) Validate() error {
	if s.Level < 1 {
		return fmt.Errorf("некорректный уровень %d", s.Level)
	}
	if s.Gold < 0 || s.Experience < 0 {
		return errors.New("отрицательные золото или опыт")
	}
	if s.ExperienceToNextLevel <= 0 {
		return fmt.Errorf("некорректный порог опыта %v", s.ExperienceToNextLevel)
	}
	if s.MaxHealth <= 0 || s.CurrentHealth <= 0 || s.CurrentHealth > s.MaxHealth {
		return fmt.Errorf("некорректное здоровье %v/%v", s.CurrentHealth, s.MaxHealth)
	}
	for i, l := range s.PowerUpLevels() {
		if l < 0 {
			return fmt.Errorf("отрицательный уровень усиления #%d", i)
		}
	}
	if s.CurrentWave < 1 {
		return fmt.Errorf("некорректный номер волны %d", s.CurrentWave)
	}
	return nil
}

// LoadExisting читает снимок и превращает found=false в ErrSaveNotFound
func LoadExisting(ctx context.Context, repo SaveRepo) (SaveState, error) {
	state, found, err := repo.Load(ctx)
	if err != nil {
		return SaveState{}, err
	}
	if !found {
		return SaveState{}, ErrSaveNotFound
	}
	return state, nil
}

// SaveRepo определяет интерфейс хранилища сохранений одного слота.
// Отсутствие сохранения не ошибка: Load возвращает found=false.
type SaveRepo interface {
	// Save атомарно записывает снимок
	Save(ctx context.Context, state SaveState) error

	// Load читает снимок; found=false, если сохранения нет
	Load(ctx context.Context) (SaveState, bool, error)

	// Delete удаляет сохранение (сброс прогресса)
	Delete(ctx context.Context) error

	// Close освобождает ресурсы хранилища
	Close() error
}
