package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/annel0/horde-survivors/internal/vec"
)

// ErrUnknownMobType возвращается фабрикой для незарегистрированного типа
var ErrUnknownMobType = errors.New("unknown mob type")

// DefaultMobStats возвращает встроенные таблицы характеристик
func DefaultMobStats() []MobStats {
	return []MobStats{
		{
			TypeID: "mob", MaxHealth: 30, Speed: 80, Damage: 10, AttackCooldown: 1.0,
			Width: 32, Height: 32, HitboxWidth: 24, HitboxHeight: 24, HitboxOffsetX: 4, HitboxOffsetY: 4,
			DeathGrace: 0.5, XPValue: 10, GoldValue: 1,
		},
		{
			TypeID: "goblin", MaxHealth: 40, Speed: 110, Damage: 8, AttackCooldown: 0.8,
			Width: 32, Height: 32, HitboxWidth: 22, HitboxHeight: 26, HitboxOffsetX: 5,
			DeathGrace: 0.6, XPValue: 12, GoldValue: 2,
		},
		{
			TypeID: "skeleton", MaxHealth: 60, Speed: 70, Damage: 12, AttackCooldown: 1.2,
			Width: 32, Height: 48, HitboxWidth: 20, HitboxHeight: 40, HitboxOffsetX: 6,
			DeathGrace: 0.8, XPValue: 18, GoldValue: 3,
		},
		{
			TypeID: "orc", MaxHealth: 120, Speed: 60, Damage: 20, AttackCooldown: 1.5,
			Width: 48, Height: 48, HitboxWidth: 36, HitboxHeight: 40, HitboxOffsetX: 6,
			DeathGrace: 0.8, XPValue: 30, GoldValue: 5,
		},
		{
			TypeID: "goblin_king", MaxHealth: 800, Speed: 55, Damage: 30, AttackCooldown: 1.5,
			Width: 96, Height: 96, HitboxWidth: 64, HitboxHeight: 72, HitboxOffsetX: 16,
			DeathGrace: 1.5, XPValue: 200, GoldValue: 50, Boss: true,
		},
	}
}

// MobFactory создаёт мобов по строковому идентификатору типа
type MobFactory struct {
	stats map[string]MobStats
}

// NewMobFactory создаёт фабрику со встроенными типами
func NewMobFactory() *MobFactory {
	f := &MobFactory{stats: make(map[string]MobStats)}
	for _, s := range DefaultMobStats() {
		f.stats[s.TypeID] = s
	}
	return f
}

// Register добавляет или переопределяет тип моба
func (f *MobFactory) Register(stats MobStats) error {
	if stats.TypeID == "" {
		return errors.New("пустой typeId")
	}
	if stats.MaxHealth <= 0 {
		return fmt.Errorf("тип %s: maxHealth должен быть > 0", stats.TypeID)
	}
	if stats.HitboxWidth <= 0 || stats.HitboxHeight <= 0 {
		return fmt.Errorf("тип %s: хитбокс должен иметь положительный размер", stats.TypeID)
	}
	f.stats[stats.TypeID] = stats
	return nil
}

// Create создаёт моба типа typeID в позиции pos
func (f *MobFactory) Create(typeID string, pos vec.Vec2Float) (MobEntity, error) {
	stats, ok := f.stats[typeID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMobType, typeID)
	}
	if stats.Boss {
		return NewBoss(stats, pos), nil
	}
	return NewMob(stats, pos), nil
}

// Has сообщает, зарегистрирован ли тип
func (f *MobFactory) Has(typeID string) bool {
	_, ok := f.stats[typeID]
	return ok
}

// Stats возвращает таблицу характеристик типа
func (f *MobFactory) Stats(typeID string) (MobStats, bool) {
	s, ok := f.stats[typeID]
	return s, ok
}

// Types возвращает отсортированный список зарегистрированных типов
func (f *MobFactory) Types() []string {
	types := make([]string, 0, len(f.stats))
	for t := range f.stats {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

type mobStatsFile struct {
	Mobs []MobStats `json:"mobs"`
}

// LoadMobFactory создаёт фабрику со встроенными типами и переопределениями из файла.
// Отсутствие файла не является ошибкой.
func LoadMobFactory(path string) (*MobFactory, error) {
	f := NewMobFactory()
	if path == "" {
		return f, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("чтение %s: %w", path, err)
	}

	var file mobStatsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("разбор %s: %w", path, err)
	}
	for _, s := range file.Mobs {
		if err := f.Register(s); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return f, nil
}
