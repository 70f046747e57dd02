package entity

import (
	"github.com/annel0/horde-survivors/internal/config"
	"github.com/annel0/horde-survivors/internal/vec"
)

// PickupKind задаёт вид подбираемого предмета
type PickupKind uint8

const (
	PickupGoldCoin PickupKind = iota
	PickupXPOrb
	PickupHealthOrb
)

func (k PickupKind) String() string {
	switch k {
	case PickupGoldCoin:
		return "GOLD_COIN"
	case PickupXPOrb:
		return "XP_ORB"
	case PickupHealthOrb:
		return "HEALTH_ORB"
	default:
		return "UNKNOWN"
	}
}

// Pickup представляет предмет, выпадающий из мобов
type Pickup struct {
	Entity
	Kind      PickupKind
	Value     float64
	Collected bool
}

// NewPickup создаёт предмет с центром в точке center
func NewPickup(kind PickupKind, center vec.Vec2Float, value, size float64) *Pickup {
	dim := vec.Vec2Float{X: size, Y: size}
	return &Pickup{
		Entity: NewEntity(EntityTypePickup, center.Sub(dim.Mul(0.5)), dim),
		Kind:   kind,
		Value:  value,
	}
}

// PullTowards смещает предмет к точке target не дальше speed*dt
func (p *Pickup) PullTowards(target vec.Vec2Float, speed, dt float64) {
	center := p.Center()
	moved := center.MoveTowards(target, speed*dt)
	p.Position = p.Position.Add(moved.Sub(center))
}

// Collect помечает предмет подобранным
func (p *Pickup) Collect() {
	p.Collected = true
	p.Active = false
}

// GrabStats хранит параметры притяжения и подбора для уровня усиления GRAB
type GrabStats struct {
	CollectRadius float64
	PullDistance  float64
	PullSpeed     float64
}

// GrabStatsFor рассчитывает параметры подбора по уровню GRAB
func GrabStatsFor(level int, cfg config.PickupConfig) GrabStats {
	l := float64(level)
	return GrabStats{
		CollectRadius: cfg.BaseCollectRadius + cfg.CollectRadiusPerGrab*l,
		PullDistance:  cfg.BasePullDistance + cfg.PullDistancePerGrab*l,
		PullSpeed:     cfg.BasePullSpeed + cfg.PullSpeedPerGrab*l,
	}
}
