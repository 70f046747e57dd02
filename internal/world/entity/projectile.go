package entity

import "github.com/annel0/horde-survivors/internal/vec"

// Projectile представляет снаряд автоатаки игрока
type Projectile struct {
	ID       uint64
	Position vec.Vec2Float
	Velocity vec.Vec2Float
	Radius   float64
	Damage   float64
	Crit     bool
	Traveled float64
	MaxRange float64
	Active   bool
}

// NewProjectile создаёт снаряд, летящий из origin в сторону target
func NewProjectile(origin, target vec.Vec2Float, speed, radius, damage float64, crit bool, maxRange float64) *Projectile {
	dir := target.Sub(origin).Normalized()
	if dir.IsZero() {
		dir = vec.Vec2Float{X: 1, Y: 0}
	}
	return &Projectile{
		ID:       NextID(),
		Position: origin,
		Velocity: dir.Mul(speed),
		Radius:   radius,
		Damage:   damage,
		Crit:     crit,
		MaxRange: maxRange,
		Active:   true,
	}
}

// Update двигает снаряд и гасит его после превышения дальности
func (p *Projectile) Update(dt float64) {
	if !p.Active {
		return
	}
	step := p.Velocity.Mul(dt)
	p.Position = p.Position.Add(step)
	p.Traveled += step.Length()
	if p.Traveled >= p.MaxRange {
		p.Active = false
	}
}
