package entity

import (
	"github.com/annel0/horde-survivors/internal/logging"
	"github.com/annel0/horde-survivors/internal/vec"
)

const (
	bossEnrageThreshold = 0.5
	bossEnrageSpeed     = 1.4
	bossEnrageCooldown  = 0.7
)

// Boss представляет моба-босса: ниже половины здоровья впадает в ярость,
// ускоряясь и атакуя чаще
type Boss struct {
	*Mob
	enraged bool
}

// NewBoss создаёт босса по таблице характеристик
func NewBoss(stats MobStats, pos vec.Vec2Float) *Boss {
	b := &Boss{Mob: NewMob(stats, pos)}
	b.OnDeath = b.onDeath
	return b
}

func (b *Boss) onDeath() {
	logging.Info("👑 Босс %s повержен", b.stats.TypeID)
}

func (b *Boss) IsBoss() bool { return true }

// IsEnraged сообщает, в ярости ли босс
func (b *Boss) IsEnraged() bool { return b.enraged }

// TakeDamage наносит урон и проверяет порог ярости
func (b *Boss) TakeDamage(amount float64) bool {
	if !b.Mob.TakeDamage(amount) {
		return false
	}
	if !b.enraged && !b.Dead && b.HealthPercent() < bossEnrageThreshold {
		b.enrage()
	}
	return true
}

func (b *Boss) enrage() {
	b.enraged = true
	b.Speed *= bossEnrageSpeed
	b.attackCooldown *= bossEnrageCooldown
	logging.Info("🔥 Босс %s в ярости", b.stats.TypeID)
}
