package entity

import (
	"math"

	"github.com/annel0/horde-survivors/internal/config"
	"github.com/annel0/horde-survivors/internal/logging"
	"github.com/annel0/horde-survivors/internal/physics"
	"github.com/annel0/horde-survivors/internal/vec"
)

// AnimState задаёт состояние анимации игрока
type AnimState uint8

const (
	AnimIdle AnimState = iota
	AnimWalking
	AnimAttacking // зарезервировано: автоатака не переключает анимацию
	AnimHurt
	AnimDead
)

func (s AnimState) String() string {
	switch s {
	case AnimIdle:
		return "IDLE"
	case AnimWalking:
		return "WALKING"
	case AnimAttacking:
		return "ATTACKING"
	case AnimHurt:
		return "HURT"
	case AnimDead:
		return "DEAD"
	default:
		return "UNKNOWN"
	}
}

// TrailPoint представляет затухающую точку следа рывка (только для отрисовки)
type TrailPoint struct {
	Position vec.Vec2Float
	Life     float64 // оставшееся время жизни, сек
	MaxLife  float64
}

// Alpha возвращает прозрачность точки в диапазоне [0, 1]
func (t TrailPoint) Alpha() float64 {
	if t.MaxLife <= 0 {
		return 0
	}
	return t.Life / t.MaxLife
}

// Player представляет персонажа игрока: движение, рывок, автоатака, прогрессия
type Player struct {
	Living

	AttackDamage float64
	AttackRange  float64

	cfg config.PlayerConfig
	rng Rand

	level            int
	experience       float64
	experienceToNext float64
	gold             int
	powerUps         [PowerUpCount]int
	streak           KillStreak
	pendingLevelUps  int

	dodgeCharges  int
	dodgeRecharge float64
	invincible    float64
	hurtTimer     float64
	anim          AnimState
	facingRight   bool
	facing        vec.Vec2Float

	input          vec.Vec2Float
	dodgeRequested bool

	attackTimer    float64
	targets        []MobEntity
	projectileSink func(*Projectile)

	trail      []TrailPoint
	trailTimer float64
	trailTime  float64

	bounds physics.Rect
}

// NewPlayer создаёт игрока на позиции pos
func NewPlayer(cfg config.PlayerConfig, pos vec.Vec2Float, rng Rand) *Player {
	p := &Player{
		Living: NewLiving(EntityTypePlayer, pos,
			vec.Vec2Float{X: cfg.Width, Y: cfg.Height}, cfg.MaxHealth, cfg.Speed),
		AttackDamage:     cfg.AttackDamage,
		AttackRange:      cfg.AttackRange,
		cfg:              cfg,
		rng:              rng,
		level:            1,
		experienceToNext: cfg.XPToFirstLevel,
		streak:           NewKillStreak(cfg.KillStreakTimeout),
		dodgeCharges:     cfg.DodgeCharges,
		anim:             AnimIdle,
		facingRight:      true,
		facing:           vec.Vec2Float{X: 1, Y: 0},
	}
	p.SetHitbox(vec.Vec2Float{X: cfg.HitboxOffX, Y: cfg.HitboxOffY},
		vec.Vec2Float{X: cfg.HitboxWidth, Y: cfg.HitboxHeight})
	p.OnDeath = func() {
		logging.Info("☠️ Игрок погиб на уровне %d", p.level)
	}
	return p
}

// SetProjectileSink задаёт приёмник выпущенных снарядов
func (p *Player) SetProjectileSink(sink func(*Projectile)) {
	p.projectileSink = sink
}

// SetTargets передаёт список мобов для автонаведения на текущий кадр
func (p *Player) SetTargets(mobs []MobEntity) {
	p.targets = mobs
}

// SetBounds ограничивает перемещение игрока прямоугольником; пустой прямоугольник снимает ограничения
func (p *Player) SetBounds(bounds physics.Rect) {
	p.bounds = bounds
}

// SetInput задаёт направление движения; длина ограничивается единицей
func (p *Player) SetInput(dir vec.Vec2Float) {
	if dir.LengthSq() > 1 {
		dir = dir.Normalized()
	}
	p.input = dir
}

// RequestDodge запрашивает рывок на следующем Update
func (p *Player) RequestDodge() {
	p.dodgeRequested = true
}

// Update продвигает таймеры, движение, рывок и автоатаку на dt секунд
func (p *Player) Update(dt float64) {
	p.updateTrail(dt)

	if p.Dead {
		p.Velocity = vec.Zero()
		p.anim = AnimDead
		p.dodgeRequested = false
		return
	}

	p.updateTimers(dt)

	p.Velocity = p.input.Mul(p.Speed)
	if !p.input.IsZero() {
		p.facing = p.input.Normalized()
		if p.input.X > 0 {
			p.facingRight = true
		} else if p.input.X < 0 {
			p.facingRight = false
		}
	}

	if p.dodgeRequested {
		p.dodgeRequested = false
		p.Dodge()
	}

	p.Integrate(dt)
	p.clampToBounds()

	p.attackTimer -= dt
	if p.attackTimer <= 0 {
		p.attackTimer = 0
		if p.tryAttack() {
			p.attackTimer = p.AttackCooldown()
		}
	}

	p.updateAnim()
}

func (p *Player) updateTimers(dt float64) {
	if p.invincible > 0 {
		p.invincible = math.Max(0, p.invincible-dt)
	}
	if p.hurtTimer > 0 {
		p.hurtTimer = math.Max(0, p.hurtTimer-dt)
	}
	p.streak.Update(dt)

	// Заряды восстанавливаются по одному, пока их меньше максимума
	if p.dodgeCharges < p.cfg.DodgeCharges {
		p.dodgeRecharge += dt
		for p.dodgeRecharge >= p.cfg.DodgeRecharge && p.dodgeCharges < p.cfg.DodgeCharges {
			p.dodgeRecharge -= p.cfg.DodgeRecharge
			p.dodgeCharges++
		}
		if p.dodgeCharges == p.cfg.DodgeCharges {
			p.dodgeRecharge = 0
		}
	}
}

func (p *Player) updateAnim() {
	switch {
	case p.Dead:
		p.anim = AnimDead
	case p.hurtTimer > 0:
		p.anim = AnimHurt
	case !p.Velocity.IsZero():
		p.anim = AnimWalking
	default:
		p.anim = AnimIdle
	}
}

// Dodge тратит заряд рывка: даёт неуязвимость и смещает игрока
// по направлению ввода (или взгляда). Возвращает false без зарядов.
func (p *Player) Dodge() bool {
	if p.Dead || p.dodgeCharges <= 0 {
		return false
	}
	p.dodgeCharges--

	dir := p.input
	if dir.IsZero() {
		dir = p.facing
	}
	dir = dir.Normalized()

	p.addTrailPoint()
	p.Position = p.Position.Add(dir.Mul(p.cfg.DodgeDistance))
	p.clampToBounds()

	p.invincible = math.Max(p.invincible, p.cfg.DodgeInvincibility)
	p.trailTime = p.cfg.DodgeInvincibility
	p.trailTimer = 0
	return true
}

func (p *Player) addTrailPoint() {
	p.trail = append(p.trail, TrailPoint{
		Position: p.Position,
		Life:     p.cfg.TrailFade,
		MaxLife:  p.cfg.TrailFade,
	})
}

func (p *Player) updateTrail(dt float64) {
	for i := len(p.trail) - 1; i >= 0; i-- {
		p.trail[i].Life -= dt
		if p.trail[i].Life <= 0 {
			p.trail = append(p.trail[:i], p.trail[i+1:]...)
		}
	}

	if p.trailTime <= 0 {
		return
	}
	p.trailTime -= dt
	p.trailTimer += dt
	if p.trailTimer >= p.cfg.TrailInterval {
		p.trailTimer = 0
		p.addTrailPoint()
	}
}

func (p *Player) clampToBounds() {
	b := p.bounds
	if b.Width <= 0 || b.Height <= 0 {
		return
	}
	p.Position.X = math.Max(b.X, math.Min(p.Position.X, b.X+b.Width-p.Size.X))
	p.Position.Y = math.Max(b.Y, math.Min(p.Position.Y, b.Y+b.Height-p.Size.Y))
}

// NearestTarget возвращает ближайшего живого моба в радиусе атаки.
// При равных расстояниях побеждает первый встреченный.
func (p *Player) NearestTarget() MobEntity {
	origin := p.HitboxCenter()
	var best MobEntity
	bestDist := p.AttackRange
	found := false

	for _, m := range p.targets {
		if m == nil || m.IsDead() {
			continue
		}
		d := origin.DistanceTo(m.HitboxCenter())
		if d > p.AttackRange {
			continue
		}
		if !found || d < bestDist {
			best = m
			bestDist = d
			found = true
		}
	}
	return best
}

// RollAttack бросает разброс урона, затем крит.
// Урон = AttackDamage × U(1-v, 1+v), при крите умножается на CritMultiplier.
func (p *Player) RollAttack() (float64, bool) {
	v := p.cfg.DamageVariance
	damage := p.AttackDamage * (1 - v + 2*v*p.rng.Float64())
	crit := p.rng.Float64() < p.cfg.CritChance
	if crit {
		damage *= p.cfg.CritMultiplier
	}
	return damage, crit
}

func (p *Player) tryAttack() bool {
	target := p.NearestTarget()
	if target == nil {
		return false
	}

	damage, crit := p.RollAttack()
	proj := NewProjectile(p.HitboxCenter(), target.HitboxCenter(),
		p.cfg.ProjectileSpeed, p.cfg.ProjectileRadius, damage, crit,
		p.AttackRange*p.cfg.ProjectileRangeFactor)

	if p.projectileSink != nil {
		p.projectileSink(proj)
	}
	return true
}

// AttackCooldown возвращает текущую перезарядку атаки с учётом ATTACK_SPEED
func (p *Player) AttackCooldown() float64 {
	cd := p.cfg.AttackCooldown - p.cfg.AttackCooldownStep*float64(p.powerUps[PowerUpAttackSpeed])
	return math.Max(p.cfg.MinAttackCooldown, cd)
}

// TakeDamage наносит урон игроку с учётом окна неуязвимости.
// Успешный удар сбрасывает серию убийств и включает HURT.
func (p *Player) TakeDamage(amount float64) bool {
	if p.invincible > 0 {
		return false
	}
	if !p.Living.TakeDamage(amount) {
		return false
	}

	p.streak.Reset()
	if p.Dead {
		p.Velocity = vec.Zero()
		p.anim = AnimDead
		return true
	}

	p.hurtTimer = p.cfg.HurtDuration
	p.invincible = math.Max(p.invincible, p.cfg.HitInvincibility)
	p.anim = AnimHurt
	return true
}

// IsInvincible сообщает, действует ли окно неуязвимости
func (p *Player) IsInvincible() bool {
	return p.invincible > 0
}

// AddExperience начисляет опыт с учётом XP_BOOST и обрабатывает повышения уровня
func (p *Player) AddExperience(xp float64) {
	if xp <= 0 || p.Dead {
		return
	}
	p.experience += xp * (1 + p.cfg.XPBoostPerLevel*float64(p.powerUps[PowerUpXPBoost]))

	for p.experience >= p.experienceToNext {
		p.experience -= p.experienceToNext
		p.level++

		growth := p.cfg.LateLevelGrowth
		if p.level <= p.cfg.EarlyLevelCap {
			growth = p.cfg.EarlyLevelGrowth
		}
		p.experienceToNext *= growth

		p.Heal(p.MaxHealth * p.cfg.LevelUpHealFraction)
		p.pendingLevelUps++
		logging.Debug("⬆️ Уровень %d, до следующего %.1f XP", p.level, p.experienceToNext)
	}
}

// ConsumeLevelUp забирает одно событие повышения уровня.
// Каждое повышение доставляется не более одного раза.
func (p *Player) ConsumeLevelUp() bool {
	if p.pendingLevelUps == 0 {
		return false
	}
	p.pendingLevelUps--
	return true
}

// PendingLevelUps возвращает число неполученных повышений уровня
func (p *Player) PendingLevelUps() int {
	return p.pendingLevelUps
}

// AddGold начисляет золото
func (p *Player) AddGold(amount int) {
	if amount > 0 {
		p.gold += amount
	}
}

// RegisterKill засчитывает убийство в серию
func (p *Player) RegisterKill() {
	p.streak.Add()
}

// GoldMultiplier возвращает множитель золота текущей серии
func (p *Player) GoldMultiplier() float64 {
	return p.streak.Multiplier()
}

// SetProgress восстанавливает уровень, опыт и золото из сохранения
func (p *Player) SetProgress(level int, experience, experienceToNext float64, gold int) {
	if level < 1 {
		level = 1
	}
	if experienceToNext <= 0 {
		experienceToNext = p.cfg.XPToFirstLevel
	}
	if experience < 0 {
		experience = 0
	}
	if gold < 0 {
		gold = 0
	}
	p.level = level
	p.experience = experience
	p.experienceToNext = experienceToNext
	p.gold = gold
}

// SetHealth задаёт текущее здоровье в пределах [0, MaxHealth]
func (p *Player) SetHealth(health float64) {
	if p.Dead {
		return
	}
	p.Health = math.Max(0, math.Min(health, p.MaxHealth))
	if p.Health == 0 {
		p.Dead = true
		p.anim = AnimDead
	}
}

func (p *Player) Level() int                     { return p.level }
func (p *Player) Experience() float64            { return p.experience }
func (p *Player) ExperienceToNextLevel() float64 { return p.experienceToNext }
func (p *Player) Gold() int                      { return p.gold }
func (p *Player) KillStreak() int                { return p.streak.Count() }
func (p *Player) DodgeCharges() int              { return p.dodgeCharges }
func (p *Player) AnimState() AnimState           { return p.anim }
func (p *Player) FacingRight() bool              { return p.facingRight }
func (p *Player) Config() config.PlayerConfig    { return p.cfg }

// Trail возвращает копию точек следа рывка
func (p *Player) Trail() []TrailPoint {
	out := make([]TrailPoint, len(p.trail))
	copy(out, p.trail)
	return out
}
