package app

import (
	"github.com/annel0/horde-survivors/internal/util"
	"github.com/annel0/horde-survivors/internal/vec"
	"github.com/annel0/horde-survivors/internal/world"
	"github.com/annel0/horde-survivors/internal/world/entity"
)

// Autopilot управляет игроком без человека: убегает от ближайшего моба,
// делает рывок при прижатии, иначе блуждает по шуму Перлина.
type Autopilot struct {
	wander      *util.Wander
	fleeRadius  float64
	dodgeRadius float64
	clock       float64
}

// NewAutopilot создаёт автопилот с детерминированным блужданием
func NewAutopilot(seed int64) *Autopilot {
	return &Autopilot{
		wander:      util.NewWander(seed, 0.25),
		fleeRadius:  220,
		dodgeRadius: 40,
	}
}

// NextInput вычисляет ввод на кадр длиной dt
func (a *Autopilot) NextInput(wm *world.WorldManager, dt float64) world.Input {
	a.clock += dt
	p := wm.Player()
	pos := p.HitboxCenter()

	nearest, dist := nearestLiveMob(pos, wm.Mobs())
	if nearest == nil || dist > a.fleeRadius {
		return world.Input{Move: a.wander.Direction(a.clock)}
	}

	away := pos.Sub(nearest.HitboxCenter())
	if away.IsZero() {
		away = a.wander.Direction(a.clock)
	}
	in := world.Input{Move: away.Normalized()}
	if dist <= a.dodgeRadius && p.DodgeCharges() > 0 && !p.IsInvincible() {
		in.Dodge = true
	}
	return in
}

func nearestLiveMob(from vec.Vec2Float, mobs []entity.MobEntity) (entity.MobEntity, float64) {
	var best entity.MobEntity
	bestDist := 0.0
	for _, m := range mobs {
		if m.IsDead() {
			continue
		}
		d := from.DistanceTo(m.HitboxCenter())
		if best == nil || d < bestDist {
			best = m
			bestDist = d
		}
	}
	return best, bestDist
}

// PickPowerUp выбирает наименее прокачанное усиление; при равенстве берётся
// первое в каноническом порядке. Так выбор идёт по кругу.
func PickPowerUp(p *entity.Player) entity.PowerUpKind {
	levels := p.PowerUpLevels()
	best := entity.PowerUpKind(0)
	for i, l := range levels {
		if l < levels[best] {
			best = entity.PowerUpKind(i)
		}
	}
	return best
}
