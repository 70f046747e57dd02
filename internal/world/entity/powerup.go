package entity

import (
	"errors"
	"fmt"
	"strings"
)

// PowerUpKind задаёт вид постоянного усиления, выбираемого при повышении уровня
type PowerUpKind uint8

const (
	PowerUpSpeed PowerUpKind = iota
	PowerUpStrength
	PowerUpGrab
	PowerUpAttackSpeed
	PowerUpMaxHP
	PowerUpXPBoost
	PowerUpExplosionChance
	PowerUpChainLightning
	PowerUpLifesteal

	PowerUpCount
)

// ErrUnknownPowerUp возвращается для неизвестного вида усиления
var ErrUnknownPowerUp = errors.New("unknown power-up")

var powerUpNames = [PowerUpCount]string{
	"SPEED",
	"STRENGTH",
	"GRAB",
	"ATTACK_SPEED",
	"MAX_HP",
	"XP_BOOST",
	"EXPLOSION_CHANCE",
	"CHAIN_LIGHTNING",
	"LIFESTEAL",
}

func (k PowerUpKind) String() string {
	if k >= PowerUpCount {
		return "UNKNOWN"
	}
	return powerUpNames[k]
}

// ParsePowerUp разбирает имя усиления (регистр не важен)
func ParsePowerUp(s string) (PowerUpKind, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range powerUpNames {
		if n == name {
			return PowerUpKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPowerUp, s)
}

// AllPowerUps возвращает все виды усилений в каноническом порядке
func AllPowerUps() []PowerUpKind {
	kinds := make([]PowerUpKind, 0, PowerUpCount)
	for k := PowerUpKind(0); k < PowerUpCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

// ApplyPowerUp увеличивает счётчик усиления и сразу применяет прирост характеристик.
// Повторные вызовы складываются.
func (p *Player) ApplyPowerUp(kind PowerUpKind) error {
	if kind >= PowerUpCount {
		return fmt.Errorf("%w: %d", ErrUnknownPowerUp, kind)
	}
	p.powerUps[kind]++

	switch kind {
	case PowerUpSpeed:
		p.Speed += p.cfg.SpeedPerLevel
	case PowerUpStrength:
		p.AttackDamage += p.cfg.DamagePerLevel
	case PowerUpMaxHP:
		p.MaxHealth += p.cfg.MaxHPPerLevel
		if !p.Dead {
			p.Health += p.cfg.MaxHPPerLevel
		}
	case PowerUpAttackSpeed:
		if p.attackTimer > p.AttackCooldown() {
			p.attackTimer = p.AttackCooldown()
		}
	}
	// GRAB, XP_BOOST, EXPLOSION_CHANCE, CHAIN_LIGHTNING, LIFESTEAL читаются по уровню

	return nil
}

// PowerUpLevel возвращает уровень усиления
func (p *Player) PowerUpLevel(kind PowerUpKind) int {
	if kind >= PowerUpCount {
		return 0
	}
	return p.powerUps[kind]
}

// PowerUpLevels возвращает копию всех уровней усилений
func (p *Player) PowerUpLevels() [PowerUpCount]int {
	return p.powerUps
}
