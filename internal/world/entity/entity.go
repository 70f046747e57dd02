package entity

import (
	"sync/atomic"

	"github.com/annel0/horde-survivors/internal/physics"
	"github.com/annel0/horde-survivors/internal/vec"
)

// EntityType представляет тип сущности
type EntityType uint8

const (
	EntityTypePlayer EntityType = iota
	EntityTypeMob
	EntityTypeProjectile
	EntityTypePickup
)

func (t EntityType) String() string {
	switch t {
	case EntityTypePlayer:
		return "player"
	case EntityTypeMob:
		return "mob"
	case EntityTypeProjectile:
		return "projectile"
	case EntityTypePickup:
		return "pickup"
	default:
		return "unknown"
	}
}

var nextEntityID uint64

// NextID выдаёт уникальный идентификатор сущности
func NextID() uint64 {
	return atomic.AddUint64(&nextEntityID, 1)
}

// Entity представляет базовую сущность в мире.
// Position — левый нижний угол визуального прямоугольника Size;
// хитбокс задаётся смещением от Position и собственным размером.
type Entity struct {
	ID           uint64        // Уникальный идентификатор сущности
	Type         EntityType    // Тип сущности
	Position     vec.Vec2Float // Позиция в мире
	Velocity     vec.Vec2Float // Текущая скорость (единиц в секунду)
	Size         vec.Vec2Float // Визуальный размер
	HitboxOffset vec.Vec2Float // Смещение хитбокса от Position
	HitboxSize   vec.Vec2Float // Размер хитбокса
	Active       bool          // Активна ли сущность
}

// NewEntity создаёт сущность с хитбоксом во весь визуальный размер
func NewEntity(entityType EntityType, position, size vec.Vec2Float) Entity {
	return Entity{
		ID:         NextID(),
		Type:       entityType,
		Position:   position,
		Size:       size,
		HitboxSize: size,
		Active:     true,
	}
}

// SetHitbox задаёт смещение и размер хитбокса
func (e *Entity) SetHitbox(offset, size vec.Vec2Float) {
	e.HitboxOffset = offset
	e.HitboxSize = size
}

// Hitbox возвращает прямоугольник хитбокса в мировых координатах
func (e *Entity) Hitbox() physics.Rect {
	return physics.NewRect(e.Position.Add(e.HitboxOffset), e.HitboxSize)
}

// HitboxCenter возвращает центр хитбокса
func (e *Entity) HitboxCenter() vec.Vec2Float {
	return e.Hitbox().Center()
}

// Center возвращает центр визуального прямоугольника
func (e *Entity) Center() vec.Vec2Float {
	return e.Position.Add(e.Size.Mul(0.5))
}

// CollidesWith проверяет пересечение хитбоксов (симметрично)
func (e *Entity) CollidesWith(other *Entity) bool {
	return physics.CheckBoxCollision(e.Hitbox(), other.Hitbox())
}

// Integrate сдвигает сущность на Velocity*dt
func (e *Entity) Integrate(dt float64) {
	e.Position = e.Position.Add(e.Velocity.Mul(dt))
}

// Living описывает сущность со здоровьем и скоростью.
// Инвариант: 0 <= Health <= MaxHealth, Dead == (Health == 0).
type Living struct {
	Entity
	MaxHealth float64
	Health    float64
	Dead      bool
	Speed     float64

	// OnDeath вызывается ровно один раз при переходе в состояние смерти
	OnDeath func()
}

// NewLiving создаёт живую сущность с полным здоровьем
func NewLiving(entityType EntityType, position, size vec.Vec2Float, maxHealth, speed float64) Living {
	return Living{
		Entity:    NewEntity(entityType, position, size),
		MaxHealth: maxHealth,
		Health:    maxHealth,
		Speed:     speed,
	}
}

// TakeDamage наносит урон. Возвращает false, если сущность уже мертва
// или урон неположителен.
func (l *Living) TakeDamage(amount float64) bool {
	if l.Dead || amount <= 0 {
		return false
	}

	l.Health -= amount
	if l.Health <= 0 {
		l.Health = 0
		l.Dead = true
		if l.OnDeath != nil {
			l.OnDeath()
		}
	}
	return true
}

// Heal восстанавливает здоровье, не превышая максимум. Мёртвых не лечит.
func (l *Living) Heal(amount float64) {
	if l.Dead || amount <= 0 {
		return
	}
	l.Health += amount
	if l.Health > l.MaxHealth {
		l.Health = l.MaxHealth
	}
}

// IsDead сообщает, мертва ли сущность
func (l *Living) IsDead() bool {
	return l.Dead
}

// HealthPercent возвращает долю здоровья в диапазоне [0, 1]
func (l *Living) HealthPercent() float64 {
	if l.MaxHealth <= 0 {
		return 0
	}
	return l.Health / l.MaxHealth
}
