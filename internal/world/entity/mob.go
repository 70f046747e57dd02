package entity

import (
	"math"

	"github.com/annel0/horde-survivors/internal/logging"
	"github.com/annel0/horde-survivors/internal/physics"
	"github.com/annel0/horde-survivors/internal/vec"
)

// MobStats хранит статическую таблицу характеристик типа моба
type MobStats struct {
	TypeID         string  `json:"typeId"`
	MaxHealth      float64 `json:"maxHealth"`
	Speed          float64 `json:"speed"`
	Damage         float64 `json:"damage"`
	AttackCooldown float64 `json:"attackCooldown"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	HitboxWidth    float64 `json:"hitboxWidth"`
	HitboxHeight   float64 `json:"hitboxHeight"`
	HitboxOffsetX  float64 `json:"hitboxOffsetX"`
	HitboxOffsetY  float64 `json:"hitboxOffsetY"`
	DeathGrace     float64 `json:"deathGrace"` // длительность анимации смерти, сек
	XPValue        float64 `json:"xpValue"`
	GoldValue      int     `json:"goldValue"`
	Boss           bool    `json:"isBoss"`
}

// MobEntity задаёт общий набор возможностей всех вариантов мобов.
// Урон и обновление вызываются только через интерфейс, чтобы варианты
// могли переопределять поведение.
type MobEntity interface {
	Base() *Mob
	TypeID() string
	IsBoss() bool
	Update(dt float64)
	SetTarget(target vec.Vec2Float)
	TakeDamage(amount float64) bool
	IsDead() bool
	IsRemovable() bool
	Hitbox() physics.Rect
	HitboxCenter() vec.Vec2Float
	// CanAttack сообщает, готова ли контактная атака
	CanAttack() bool
	// Attack возвращает урон контактной атаки и запускает перезарядку
	Attack() float64
}

// Mob представляет базового преследующего моба
type Mob struct {
	Living

	stats          MobStats
	target         vec.Vec2Float
	hasTarget      bool
	attackTimer    float64
	attackCooldown float64
	deathTimer     float64
}

// NewMob создаёт моба по таблице характеристик
func NewMob(stats MobStats, pos vec.Vec2Float) *Mob {
	m := &Mob{
		Living: NewLiving(EntityTypeMob, pos,
			vec.Vec2Float{X: stats.Width, Y: stats.Height}, stats.MaxHealth, stats.Speed),
		stats:          stats,
		attackCooldown: stats.AttackCooldown,
	}
	m.SetHitbox(vec.Vec2Float{X: stats.HitboxOffsetX, Y: stats.HitboxOffsetY},
		vec.Vec2Float{X: stats.HitboxWidth, Y: stats.HitboxHeight})
	m.OnDeath = m.onDeath
	return m
}

func (m *Mob) onDeath() {
	logging.Debug("💀 Моб %s #%d погиб", m.stats.TypeID, m.ID)
}

func (m *Mob) Base() *Mob       { return m }
func (m *Mob) TypeID() string   { return m.stats.TypeID }
func (m *Mob) IsBoss() bool     { return m.stats.Boss }
func (m *Mob) Stats() MobStats  { return m.stats }
func (m *Mob) XPValue() float64 { return m.stats.XPValue }
func (m *Mob) GoldValue() int   { return m.stats.GoldValue }
func (m *Mob) Damage() float64  { return m.stats.Damage }

// SetTarget задаёт точку преследования на текущий кадр
func (m *Mob) SetTarget(target vec.Vec2Float) {
	m.target = target
	m.hasTarget = true
}

// ClearTarget снимает цель; моб останавливается
func (m *Mob) ClearTarget() {
	m.hasTarget = false
}

// Update двигает моба к цели и отсчитывает таймеры атаки и смерти
func (m *Mob) Update(dt float64) {
	if m.Dead {
		m.Velocity = vec.Zero()
		m.deathTimer += dt
		return
	}

	if m.attackTimer > 0 {
		m.attackTimer = math.Max(0, m.attackTimer-dt)
	}

	if !m.hasTarget {
		m.Velocity = vec.Zero()
		return
	}

	dir := m.target.Sub(m.HitboxCenter())
	if dir.LengthSq() < 1e-9 {
		m.Velocity = vec.Zero()
		return
	}
	m.Velocity = dir.Normalized().Mul(m.Speed)
	m.Integrate(dt)
}

func (m *Mob) CanAttack() bool {
	return !m.Dead && m.attackTimer <= 0
}

func (m *Mob) Attack() float64 {
	m.attackTimer = m.attackCooldown
	return m.stats.Damage
}

// IsRemovable сообщает, что моб мёртв и анимация смерти доиграла
func (m *Mob) IsRemovable() bool {
	return m.Dead && m.deathTimer >= m.stats.DeathGrace
}
