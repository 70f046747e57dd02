// Package combat разрешает боевые взаимодействия одного кадра:
// подбор предметов, попадания снарядов, эффекты при убийстве и контактный урон.
package combat

import (
	"math"

	"github.com/annel0/horde-survivors/internal/config"
	"github.com/annel0/horde-survivors/internal/logging"
	"github.com/annel0/horde-survivors/internal/physics"
	"github.com/annel0/horde-survivors/internal/vec"
	"github.com/annel0/horde-survivors/internal/world/entity"
)

// KillCause указывает, чем нанесено смертельное попадание
type KillCause uint8

const (
	CauseProjectile KillCause = iota
	CauseChainLightning
	CauseExplosion
)

func (c KillCause) String() string {
	switch c {
	case CauseProjectile:
		return "projectile"
	case CauseChainLightning:
		return "chain_lightning"
	case CauseExplosion:
		return "explosion"
	default:
		return "unknown"
	}
}

// KillEvent описывает засчитанное игроку убийство
type KillEvent struct {
	Mob    entity.MobEntity
	Cause  KillCause
	Damage float64
	Crit   bool
}

// Stats хранит накопительные счётчики боя
type Stats struct {
	ProjectileHits int
	Crits          int
	Kills          int
	DamageDealt    float64
	DamageTaken    float64
	PickupsTaken   int
}

// Resolver применяет боевые правила к коллекциям мира.
// Новые предметы передаются в pickupSink, коллекциями владеет вызывающий.
type Resolver struct {
	cfg        config.CombatConfig
	pickupCfg  config.PickupConfig
	rng        entity.Rand
	pickupSink func(*entity.Pickup)
	onKill     func(KillEvent)
	stats      Stats
	log        *logging.Logger
}

// NewResolver создаёт резолвер боя
func NewResolver(cfg config.CombatConfig, pickupCfg config.PickupConfig, rng entity.Rand, pickupSink func(*entity.Pickup)) *Resolver {
	return &Resolver{
		cfg:        cfg,
		pickupCfg:  pickupCfg,
		rng:        rng,
		pickupSink: pickupSink,
		log:        logging.GetCombatLogger(),
	}
}

// SetKillListener задаёт обработчик засчитанных убийств
func (r *Resolver) SetKillListener(fn func(KillEvent)) {
	r.onKill = fn
}

// Stats возвращает накопленные счётчики
func (r *Resolver) Stats() Stats {
	return r.stats
}

// UpdatePickups притягивает предметы к игроку и подбирает те, что в радиусе.
// Притяжение работает, только если игрок стоит или движется к предмету.
func (r *Resolver) UpdatePickups(player *entity.Player, pickups []*entity.Pickup, dt float64) int {
	grab := entity.GrabStatsFor(player.PowerUpLevel(entity.PowerUpGrab), r.pickupCfg)
	center := player.HitboxCenter()
	collected := 0

	for _, p := range pickups {
		if p.Collected {
			continue
		}

		toPickup := p.Center().Sub(center)
		dist := toPickup.Length()
		if dist <= grab.PullDistance && player.Velocity.Dot(toPickup) >= 0 {
			p.PullTowards(center, grab.PullSpeed, dt)
			dist = p.Center().DistanceTo(center)
		}

		if dist <= grab.CollectRadius {
			r.collect(player, p)
			collected++
		}
	}
	return collected
}

func (r *Resolver) collect(player *entity.Player, p *entity.Pickup) {
	switch p.Kind {
	case entity.PickupGoldCoin:
		player.AddGold(int(p.Value))
	case entity.PickupXPOrb:
		player.AddExperience(p.Value)
	case entity.PickupHealthOrb:
		player.Heal(p.Value)
	}
	p.Collect()
	r.stats.PickupsTaken++
}

// ResolveProjectiles проверяет попадания активных снарядов.
// Снаряд поражает не более одного моба: ближайшего из пересекающихся.
func (r *Resolver) ResolveProjectiles(player *entity.Player, projectiles []*entity.Projectile, mobs []entity.MobEntity) {
	for _, proj := range projectiles {
		if !proj.Active {
			continue
		}

		target := closestHit(proj, mobs)
		if target == nil {
			continue
		}
		proj.Active = false

		if !target.TakeDamage(proj.Damage) {
			continue
		}
		r.stats.ProjectileHits++
		r.stats.DamageDealt += proj.Damage
		if proj.Crit {
			r.stats.Crits++
		}

		if target.IsDead() {
			r.handleKill(player, target, proj.Damage, proj.Crit, mobs)
		}
	}
}

func closestHit(proj *entity.Projectile, mobs []entity.MobEntity) entity.MobEntity {
	var best entity.MobEntity
	bestDist := math.Inf(1)

	for _, m := range mobs {
		if m.IsDead() {
			continue
		}
		hb := m.Hitbox()
		c := hb.Center()
		if !physics.CheckCircleCollision(proj.Position, proj.Radius, c, hb.Radius()) {
			continue
		}
		if d := proj.Position.Sub(c).LengthSq(); d < bestDist {
			best = m
			bestDist = d
		}
	}
	return best
}

// handleKill засчитывает убийство снарядом и запускает эффекты усилений
func (r *Resolver) handleKill(player *entity.Player, mob entity.MobEntity, killingBlow float64, crit bool, mobs []entity.MobEntity) {
	r.creditKill(player, mob, CauseProjectile, killingBlow, crit)

	if lvl := player.PowerUpLevel(entity.PowerUpLifesteal); lvl > 0 {
		player.Heal(killingBlow * r.cfg.LifestealPerLevel * float64(lvl))
	}

	if lvl := player.PowerUpLevel(entity.PowerUpChainLightning); lvl > 0 && r.rng.Float64() < r.cfg.ChainChance {
		r.chainLightning(player, mob, killingBlow, lvl, mobs)
	}

	if lvl := player.PowerUpLevel(entity.PowerUpExplosionChance); lvl > 0 &&
		r.rng.Float64() < r.cfg.ExplosionChancePerLevel*float64(lvl) {
		r.explode(player, mob.HitboxCenter(), killingBlow*r.cfg.ExplosionDamageFactor, mobs)
	}
}

// chainLightning перескакивает к ближайшему незатронутому мобу в радиусе,
// ослабляя урон на каждом прыжке. Прыжков не больше hops.
func (r *Resolver) chainLightning(player *entity.Player, origin entity.MobEntity, damage float64, hops int, mobs []entity.MobEntity) {
	touched := map[entity.MobEntity]bool{origin: true}
	from := origin.HitboxCenter()

	for hop := 0; hop < hops; hop++ {
		damage *= r.cfg.ChainDecay

		next := nearestUntouched(from, r.cfg.ChainRadius, mobs, touched)
		if next == nil {
			break
		}
		touched[next] = true
		from = next.HitboxCenter()

		r.log.Trace("⚡ Цепная молния: прыжок %d, урон %.1f по %s", hop+1, damage, next.TypeID())
		r.applySecondary(player, next, damage, CauseChainLightning)
	}
}

func nearestUntouched(from vec.Vec2Float, radius float64, mobs []entity.MobEntity, touched map[entity.MobEntity]bool) entity.MobEntity {
	var best entity.MobEntity
	bestDist := radius

	for _, m := range mobs {
		if m.IsDead() || touched[m] {
			continue
		}
		if d := from.DistanceTo(m.HitboxCenter()); d <= bestDist {
			if best == nil || d < bestDist {
				best = m
				bestDist = d
			}
		}
	}
	return best
}

// explode один раз наносит урон всем живым мобам в радиусе от центра
func (r *Resolver) explode(player *entity.Player, center vec.Vec2Float, damage float64, mobs []entity.MobEntity) {
	r.log.Trace("💥 Взрыв в (%.0f,%.0f), урон %.1f", center.X, center.Y, damage)
	for _, m := range mobs {
		if m.IsDead() {
			continue
		}
		if center.DistanceTo(m.HitboxCenter()) <= r.cfg.ExplosionRadius {
			r.applySecondary(player, m, damage, CauseExplosion)
		}
	}
}

// applySecondary наносит урон от эффекта; такие убийства дают добычу и серию,
// но не запускают новые эффекты
func (r *Resolver) applySecondary(player *entity.Player, mob entity.MobEntity, damage float64, cause KillCause) {
	if !mob.TakeDamage(damage) {
		return
	}
	r.stats.DamageDealt += damage
	if mob.IsDead() {
		r.creditKill(player, mob, cause, damage, false)
	}
}

func (r *Resolver) creditKill(player *entity.Player, mob entity.MobEntity, cause KillCause, damage float64, crit bool) {
	player.RegisterKill()
	r.stats.Kills++
	r.dropLoot(player, mob)

	if r.onKill != nil {
		r.onKill(KillEvent{Mob: mob, Cause: cause, Damage: damage, Crit: crit})
	}
}

// dropLoot: всегда сфера опыта, с шансом золото (с множителем серии) и сфера здоровья
func (r *Resolver) dropLoot(player *entity.Player, mob entity.MobEntity) {
	base := mob.Base()
	center := mob.HitboxCenter()
	size := r.pickupCfg.Size

	r.emit(entity.NewPickup(entity.PickupXPOrb, center, base.XPValue(), size))

	if r.rng.Float64() < r.pickupCfg.GoldDropChance {
		gold := math.Round(float64(base.GoldValue()) * player.GoldMultiplier())
		if gold < 1 {
			gold = 1
		}
		r.emit(entity.NewPickup(entity.PickupGoldCoin, center.Add(vec.Vec2Float{X: size / 2}), gold, size))
	}

	if r.rng.Float64() < r.pickupCfg.HealthDropChance {
		r.emit(entity.NewPickup(entity.PickupHealthOrb, center.Sub(vec.Vec2Float{X: size / 2}), r.pickupCfg.HealthOrbValue, size))
	}
}

func (r *Resolver) emit(p *entity.Pickup) {
	if r.pickupSink != nil {
		r.pickupSink(p)
	}
}

// ResolveContacts наносит контактный урон от живых мобов, касающихся игрока.
// Возвращает число прошедших ударов.
func (r *Resolver) ResolveContacts(player *entity.Player, mobs []entity.MobEntity) int {
	if player.IsDead() {
		return 0
	}
	hits := 0
	playerBox := player.Hitbox()

	for _, m := range mobs {
		if m.IsDead() || !m.CanAttack() {
			continue
		}
		if !physics.CheckBoxCollision(m.Hitbox(), playerBox) {
			continue
		}
		if player.IsInvincible() {
			break
		}

		damage := m.Attack()
		if player.TakeDamage(damage) {
			hits++
			r.stats.DamageTaken += damage
			r.log.Debug("🩸 %s ударил игрока на %.0f (осталось %.0f)", m.TypeID(), damage, player.Health)
		}
		if player.IsDead() {
			break
		}
	}
	return hits
}
