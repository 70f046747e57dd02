package entity

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/horde-survivors/internal/config"
	"github.com/annel0/horde-survivors/internal/vec"
)

// seqRand выдаёт заранее заданную последовательность значений
type seqRand struct {
	floats []float64
	i      int
}

func (r *seqRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0
	}
	v := r.floats[r.i%len(r.floats)]
	r.i++
	return v
}

func (r *seqRand) Intn(n int) int { return 0 }

func newTestPlayer(rng Rand) *Player {
	if rng == nil {
		rng = &seqRand{floats: []float64{0.5, 0.99}}
	}
	return NewPlayer(config.DefaultPlayerConfig(), vec.Zero(), rng)
}

func mobStats(t *testing.T, typeID string) MobStats {
	s, ok := NewMobFactory().Stats(typeID)
	require.True(t, ok, "тип %s должен быть встроенным", typeID)
	return s
}

func TestMob_ThirtyHPTakesTwoHits(t *testing.T) {
	m := NewMob(mobStats(t, "mob"), vec.Zero())
	deaths := 0
	m.OnDeath = func() { deaths++ }

	require.Equal(t, 30.0, m.Health)

	assert.True(t, m.TakeDamage(20))
	assert.Equal(t, 10.0, m.Health)
	assert.False(t, m.IsDead())

	assert.True(t, m.TakeDamage(20))
	assert.Equal(t, 0.0, m.Health, "здоровье не уходит в минус")
	assert.True(t, m.IsDead())

	assert.False(t, m.TakeDamage(20), "мёртвый не получает урон")
	assert.Equal(t, 1, deaths, "OnDeath вызывается ровно один раз")
}

func TestLiving_HealAndGuards(t *testing.T) {
	l := NewLiving(EntityTypeMob, vec.Zero(), vec.Vec2Float{X: 10, Y: 10}, 50, 10)

	assert.False(t, l.TakeDamage(0))
	assert.False(t, l.TakeDamage(-5))
	assert.Equal(t, 50.0, l.Health)

	l.TakeDamage(30)
	l.Heal(100)
	assert.Equal(t, 50.0, l.Health, "лечение не превышает максимум")

	l.TakeDamage(60)
	l.Heal(10)
	assert.Equal(t, 0.0, l.Health, "мёртвых не лечат")
	assert.Equal(t, 0.0, l.HealthPercent())
}

func TestEntity_CollidesWithIsSymmetric(t *testing.T) {
	a := NewEntity(EntityTypeMob, vec.Zero(), vec.Vec2Float{X: 10, Y: 10})
	b := NewEntity(EntityTypeMob, vec.Vec2Float{X: 5, Y: 5}, vec.Vec2Float{X: 10, Y: 10})
	c := NewEntity(EntityTypeMob, vec.Vec2Float{X: 50, Y: 0}, vec.Vec2Float{X: 10, Y: 10})

	assert.True(t, a.CollidesWith(&b))
	assert.True(t, b.CollidesWith(&a))
	assert.False(t, a.CollidesWith(&c))
	assert.False(t, c.CollidesWith(&a))
}

func TestPlayer_PowerUpsStack(t *testing.T) {
	p := newTestPlayer(nil)
	cfg := p.Config()

	const n = 4
	for i := 0; i < n; i++ {
		require.NoError(t, p.ApplyPowerUp(PowerUpSpeed))
		require.NoError(t, p.ApplyPowerUp(PowerUpStrength))
		require.NoError(t, p.ApplyPowerUp(PowerUpMaxHP))
	}

	assert.Equal(t, cfg.Speed+50*n, p.Speed)
	assert.Equal(t, cfg.AttackDamage+10*n, p.AttackDamage)
	assert.Equal(t, cfg.MaxHealth+20*n, p.MaxHealth)
	assert.Equal(t, p.MaxHealth, p.Health, "MAX_HP добавляет и текущее здоровье")
	assert.Equal(t, n, p.PowerUpLevel(PowerUpSpeed))

	err := p.ApplyPowerUp(PowerUpCount)
	assert.True(t, errors.Is(err, ErrUnknownPowerUp))
}

func TestPlayer_AttackCooldownFloor(t *testing.T) {
	p := newTestPlayer(nil)
	assert.InDelta(t, 0.8, p.AttackCooldown(), 1e-9)

	require.NoError(t, p.ApplyPowerUp(PowerUpAttackSpeed))
	assert.InDelta(t, 0.75, p.AttackCooldown(), 1e-9)

	for i := 0; i < 30; i++ {
		require.NoError(t, p.ApplyPowerUp(PowerUpAttackSpeed))
	}
	assert.InDelta(t, 0.1, p.AttackCooldown(), 1e-9)
}

func TestParsePowerUp(t *testing.T) {
	k, err := ParsePowerUp("chain_lightning")
	require.NoError(t, err)
	assert.Equal(t, PowerUpChainLightning, k)

	_, err = ParsePowerUp("teleport")
	assert.ErrorIs(t, err, ErrUnknownPowerUp)
	assert.Len(t, AllPowerUps(), int(PowerUpCount))
}

func TestPlayer_LevelingIsDeterministic(t *testing.T) {
	p := newTestPlayer(nil)

	p.AddExperience(100)
	assert.Equal(t, 2, p.Level())
	assert.InDelta(t, 0, p.Experience(), 1e-9)
	assert.InDelta(t, 150, p.ExperienceToNextLevel(), 1e-9)

	// 400 XP: 150 на уровень 3, затем 225 на уровень 4
	p.AddExperience(400)
	assert.Equal(t, 4, p.Level())
	assert.InDelta(t, 25, p.Experience(), 1e-9)
	assert.InDelta(t, 225*1.05, p.ExperienceToNextLevel(), 1e-9)

	for i := 0; i < 3; i++ {
		assert.True(t, p.ConsumeLevelUp(), "повышение %d", i+1)
	}
	assert.False(t, p.ConsumeLevelUp(), "каждое повышение доставляется один раз")
}

func TestPlayer_LevelUpHealsAndXPBoost(t *testing.T) {
	p := newTestPlayer(nil)
	require.True(t, p.TakeDamage(50))

	p.AddExperience(100)
	assert.Equal(t, 70.0, p.Health, "повышение лечит на 20% максимума")

	q := newTestPlayer(nil)
	require.NoError(t, q.ApplyPowerUp(PowerUpXPBoost))
	require.NoError(t, q.ApplyPowerUp(PowerUpXPBoost))
	q.AddExperience(50)
	assert.InDelta(t, 60, q.Experience(), 1e-9)
}

func TestStreakMultiplier_Steps(t *testing.T) {
	cases := map[int]float64{0: 1.0, 4: 1.0, 5: 1.5, 9: 1.5, 10: 2.0, 24: 2.0, 25: 2.5, 49: 2.5, 50: 3.0, 200: 3.0}
	for n, want := range cases {
		assert.Equal(t, want, StreakMultiplier(n), "серия %d", n)
	}
}

func TestKillStreak_TimeoutAndDamageReset(t *testing.T) {
	p := newTestPlayer(nil)
	for i := 0; i < 6; i++ {
		p.RegisterKill()
	}
	assert.Equal(t, 1.5, p.GoldMultiplier())

	p.Update(4.9)
	assert.Equal(t, 6, p.KillStreak())
	p.Update(0.2)
	assert.Equal(t, 0, p.KillStreak(), "серия сбрасывается через 5 секунд без убийств")

	p.RegisterKill()
	require.True(t, p.TakeDamage(1))
	assert.Equal(t, 0, p.KillStreak(), "урон сбрасывает серию")
}

func TestPlayer_CritDamageStaysInBounds(t *testing.T) {
	for _, roll := range []float64{0, 0.25, 0.5, 0.75, 0.999999} {
		p := newTestPlayer(&seqRand{floats: []float64{roll, 0.0}})
		p.AttackDamage = 48

		damage, crit := p.RollAttack()
		require.True(t, crit)
		assert.GreaterOrEqual(t, damage, 0.8*48*2)
		assert.LessOrEqual(t, damage, 1.2*48*2)
	}

	p := newTestPlayer(&seqRand{floats: []float64{0.5, 0.15}})
	damage, crit := p.RollAttack()
	assert.False(t, crit, "бросок 0.15 не даёт крит при шансе 15%")
	assert.InDelta(t, 40, damage, 1e-9)
}

func TestPlayer_AutoAttackTargetsNearest(t *testing.T) {
	p := newTestPlayer(nil)
	var shots []*Projectile
	p.SetProjectileSink(func(pr *Projectile) { shots = append(shots, pr) })

	// центр хитбокса игрока (16,12), моба — позиция + (16,16)
	far := NewMob(mobStats(t, "mob"), vec.Vec2Float{X: 100, Y: -4})
	near := NewMob(mobStats(t, "mob"), vec.Vec2Float{X: -50, Y: -4})
	outOfRange := NewMob(mobStats(t, "mob"), vec.Vec2Float{X: 0, Y: 1000})
	p.SetTargets([]MobEntity{outOfRange, far, near})

	p.Update(1.0 / 60)
	require.Len(t, shots, 1)
	assert.Less(t, shots[0].Velocity.X, 0.0, "снаряд летит к ближнему мобу")
	assert.InDelta(t, 40, shots[0].Damage, 1e-9)
	assert.InDelta(t, p.AttackRange*1.5, shots[0].MaxRange, 1e-9)

	p.Update(1.0 / 60)
	assert.Len(t, shots, 1, "до конца перезарядки новых выстрелов нет")
}

func TestPlayer_DodgeChargesAndInvincibility(t *testing.T) {
	p := newTestPlayer(nil)
	start := p.Position

	assert.True(t, p.Dodge())
	assert.InDelta(t, start.X+120, p.Position.X, 1e-9, "рывок по направлению взгляда")
	assert.True(t, p.IsInvincible())
	assert.False(t, p.TakeDamage(10), "неуязвимость гасит урон")

	assert.True(t, p.Dodge())
	assert.True(t, p.Dodge())
	assert.False(t, p.Dodge(), "зарядов всего три")
	assert.Equal(t, 0, p.DodgeCharges())
	assert.NotEmpty(t, p.Trail())

	p.Update(2.0)
	assert.Equal(t, 1, p.DodgeCharges(), "заряд восстанавливается за 2 секунды")
	p.Update(4.0)
	assert.Equal(t, 3, p.DodgeCharges())
	assert.Empty(t, p.Trail(), "след затухает")
}

func TestPlayer_AnimationStates(t *testing.T) {
	p := newTestPlayer(nil)
	assert.Equal(t, AnimIdle, p.AnimState())

	p.SetInput(vec.Vec2Float{X: -1})
	p.Update(0.1)
	assert.Equal(t, AnimWalking, p.AnimState())
	assert.False(t, p.FacingRight())

	require.True(t, p.TakeDamage(10))
	assert.Equal(t, AnimHurt, p.AnimState())
	assert.False(t, p.TakeDamage(10), "окно неуязвимости после удара")

	p.SetInput(vec.Zero())
	p.Update(0.3)
	assert.Equal(t, AnimIdle, p.AnimState(), "HURT снимается через 0.25 с")

	p.Update(0.3)
	require.True(t, p.TakeDamage(1000))
	assert.Equal(t, AnimDead, p.AnimState())

	p.SetInput(vec.Vec2Float{X: 1})
	p.Update(0.1)
	assert.True(t, p.Velocity.IsZero())
	assert.Equal(t, AnimDead, p.AnimState())
}

func TestMob_ChasesTargetAndGraceRemoval(t *testing.T) {
	m := NewMob(mobStats(t, "mob"), vec.Vec2Float{X: 200, Y: 0})
	target := vec.Zero()
	m.SetTarget(target)

	before := m.HitboxCenter().DistanceTo(target)
	m.Update(0.1)
	assert.Less(t, m.HitboxCenter().DistanceTo(target), before)

	assert.True(t, m.CanAttack())
	assert.Equal(t, 10.0, m.Attack())
	assert.False(t, m.CanAttack())
	m.Update(1.0)
	assert.True(t, m.CanAttack())

	m.TakeDamage(100)
	assert.False(t, m.IsRemovable(), "ждём доигрывания анимации смерти")
	m.Update(0.6)
	assert.True(t, m.IsRemovable())
}

func TestBoss_EnragesBelowHalfHealth(t *testing.T) {
	f := NewMobFactory()
	me, err := f.Create("goblin_king", vec.Zero())
	require.NoError(t, err)
	require.True(t, me.IsBoss())

	boss, ok := me.(*Boss)
	require.True(t, ok)
	baseSpeed := boss.Speed

	me.TakeDamage(300)
	assert.False(t, boss.IsEnraged())

	me.TakeDamage(150)
	assert.True(t, boss.IsEnraged())
	assert.InDelta(t, baseSpeed*1.4, boss.Speed, 1e-9)
	assert.InDelta(t, 1.5*0.7, boss.attackCooldown, 1e-9)
}

func TestMobFactory_UnknownAndOverrides(t *testing.T) {
	f := NewMobFactory()
	_, err := f.Create("dragon", vec.Zero())
	assert.ErrorIs(t, err, ErrUnknownMobType)

	dir := t.TempDir()
	path := filepath.Join(dir, "mobs.json")
	data := `{"mobs":[{"typeId":"dragon","maxHealth":500,"speed":40,"damage":25,"attackCooldown":2,
		"width":64,"height":64,"hitboxWidth":48,"hitboxHeight":48,"deathGrace":1,"xpValue":100,"goldValue":20}]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	loaded, err := LoadMobFactory(path)
	require.NoError(t, err)
	assert.True(t, loaded.Has("dragon"))
	assert.True(t, loaded.Has("goblin"), "встроенные типы сохраняются")

	me, err := loaded.Create("dragon", vec.Zero())
	require.NoError(t, err)
	assert.Equal(t, "dragon", me.TypeID())
	assert.Equal(t, 500.0, me.Base().Health)

	missing, err := LoadMobFactory(filepath.Join(dir, "nope.json"))
	require.NoError(t, err)
	assert.Len(t, missing.Types(), len(DefaultMobStats()))
}

func TestProjectile_ExpiresAfterRange(t *testing.T) {
	pr := NewProjectile(vec.Zero(), vec.Vec2Float{X: 10}, 100, 5, 10, false, 50)
	pr.Update(0.3)
	assert.True(t, pr.Active)
	pr.Update(0.3)
	assert.False(t, pr.Active)
}
