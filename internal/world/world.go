// Package world содержит покадровый оркестратор симуляции: владеет коллекциями
// сущностей и вызывает подсистемы в фиксированном порядке.
package world

import (
	"errors"

	"github.com/annel0/horde-survivors/internal/config"
	"github.com/annel0/horde-survivors/internal/logging"
	"github.com/annel0/horde-survivors/internal/physics"
	"github.com/annel0/horde-survivors/internal/storage"
	"github.com/annel0/horde-survivors/internal/vec"
	"github.com/annel0/horde-survivors/internal/world/combat"
	"github.com/annel0/horde-survivors/internal/world/entity"
	"github.com/annel0/horde-survivors/internal/world/stage"
)

var (
	// ErrNoSaveRepo возвращается SaveGame/LoadGame без настроенного хранилища
	ErrNoSaveRepo = errors.New("save repository is not configured")

	// ErrNoStage возвращается конструктором без описания уровня
	ErrNoStage = errors.New("stage definition is required")

	// ErrPlayerDead возвращается SaveGame после гибели игрока
	ErrPlayerDead = errors.New("player is dead")
)

// Input описывает абстрактный ввод одного кадра
type Input struct {
	Move  vec.Vec2Float // Направление движения, длина <= 1
	Dodge bool          // Запрос рывка
}

// Options собирает зависимости WorldManager
type Options struct {
	Config  *config.Config
	Stage   *stage.Definition // обязателен
	Factory *entity.MobFactory
	Repo    storage.SaveRepo // может быть nil: сохранения отключены
	Rand    entity.Rand      // nil — детерминированный генератор с Seed
	Seed    int64
}

// WorldManager управляет миром игры и координирует все процессы.
// Однопоточный: все методы вызываются из цикла кадров.
type WorldManager struct {
	cfg *config.Config

	player      *entity.Player
	mobs        []entity.MobEntity
	pickups     []*entity.Pickup
	projectiles []*entity.Projectile

	def      *stage.Definition
	factory  *entity.MobFactory
	spawner  *stage.Spawner
	resolver *combat.Resolver
	repo     storage.SaveRepo
	rng      entity.Rand

	events []Event

	started   bool
	paused    bool
	gameOver  bool
	complete  bool
	inBreak   bool
	breakLeft float64

	frame     uint64
	elapsed   float64
	kills     int
	spawned   int
	lastLevel int

	log *logging.Logger
}

// NewWorldManager создаёт мир для уровня. Волна запускается первым Update или Start.
func NewWorldManager(opts Options) (*WorldManager, error) {
	if opts.Stage == nil {
		return nil, ErrNoStage
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	factory := opts.Factory
	if factory == nil {
		factory = entity.NewMobFactory()
	}
	rng := opts.Rand
	if rng == nil {
		seed := opts.Seed
		if seed == 0 {
			seed = 1
		}
		rng = entity.NewRand(seed)
	}

	wm := &WorldManager{
		cfg:     cfg,
		def:     opts.Stage,
		factory: factory,
		repo:    opts.Repo,
		rng:     rng,
		log:     logging.GetWorldLogger(),
	}

	wm.resolver = combat.NewResolver(cfg.Combat, cfg.Pickups, rng, wm.addPickup)
	wm.resolver.SetKillListener(wm.onKill)
	wm.spawner = stage.NewSpawner(opts.Stage, factory, rng,
		vec.Vec2Float{X: cfg.World.SpawnAreaWidth, Y: cfg.World.SpawnAreaHeight}, wm.addMob)
	wm.setPlayer(wm.newPlayer())
	return wm, nil
}

func (wm *WorldManager) newPlayer() *entity.Player {
	start := vec.Zero()
	if wm.cfg.World.Width > 0 && wm.cfg.World.Height > 0 {
		start = vec.Vec2Float{X: wm.cfg.World.Width / 2, Y: wm.cfg.World.Height / 2}
	}
	return entity.NewPlayer(wm.cfg.Player, start, wm.rng)
}

// setPlayer подключает игрока к приёмнику снарядов и границам мира
func (wm *WorldManager) setPlayer(p *entity.Player) {
	p.SetProjectileSink(wm.addProjectile)
	if wm.cfg.World.Width > 0 && wm.cfg.World.Height > 0 {
		p.SetBounds(physics.Rect{Width: wm.cfg.World.Width, Height: wm.cfg.World.Height})
	}
	wm.player = p
	wm.lastLevel = p.Level()
}

func (wm *WorldManager) addMob(m entity.MobEntity) {
	wm.mobs = append(wm.mobs, m)
	wm.spawned++
}

func (wm *WorldManager) addPickup(p *entity.Pickup) {
	wm.pickups = append(wm.pickups, p)
}

func (wm *WorldManager) addProjectile(p *entity.Projectile) {
	wm.projectiles = append(wm.projectiles, p)
}

func (wm *WorldManager) onKill(e combat.KillEvent) {
	wm.kills++
	wm.emit(MobKilledEvent{
		MobType:  e.Mob.TypeID(),
		Boss:     e.Mob.IsBoss(),
		Cause:    e.Cause.String(),
		Crit:     e.Crit,
		Position: e.Mob.HitboxCenter(),
		Streak:   wm.player.KillStreak(),
	})
}

func (wm *WorldManager) emit(e Event) {
	wm.events = append(wm.events, e)
}

// Start запускает текущую волну, если она ещё не запущена
func (wm *WorldManager) Start() {
	if wm.started {
		return
	}
	wm.started = true
	wm.spawner.SetCenter(wm.player.HitboxCenter())
	wm.spawner.StartWave()
	wm.emitWaveStarted()
}

func (wm *WorldManager) emitWaveStarted() {
	wm.emit(WaveEvent{
		EventType: EventTypeWaveStarted,
		Wave:      wm.spawner.CurrentWave(),
		Boss:      wm.spawner.CurrentWaveDefinition().IsBossWave,
	})
}

// Update продвигает симуляцию на dt секунд в фиксированном порядке:
// игрок, спавнер, мобы и контактный урон, уборка мёртвых, предметы,
// снаряды, проверка волны
func (wm *WorldManager) Update(dt float64) {
	if wm.paused || wm.gameOver || wm.complete || dt <= 0 {
		return
	}
	if !wm.started {
		wm.Start()
	}
	wm.frame++
	wm.elapsed += dt

	// 1. Ссылки текущего кадра
	wm.player.SetTargets(wm.mobs)
	wm.spawner.SetCenter(wm.player.HitboxCenter())

	// 2. Игрок
	wm.player.Update(dt)

	// 3. Спавнер
	wm.spawner.Update(dt)

	// 4. Мобы и контактный урон
	target := wm.player.HitboxCenter()
	for _, m := range wm.mobs {
		m.SetTarget(target)
		m.Update(dt)
	}
	wm.resolver.ResolveContacts(wm.player, wm.mobs)

	// 5. Уборка мёртвых мобов
	for i := len(wm.mobs) - 1; i >= 0; i-- {
		if wm.mobs[i].IsRemovable() {
			wm.mobs = append(wm.mobs[:i], wm.mobs[i+1:]...)
		}
	}

	// 6. Притяжение и подбор предметов
	wm.resolver.UpdatePickups(wm.player, wm.pickups, dt)
	for i := len(wm.pickups) - 1; i >= 0; i-- {
		if wm.pickups[i].Collected {
			wm.pickups = append(wm.pickups[:i], wm.pickups[i+1:]...)
		}
	}

	// 7. Снаряды и попадания
	for _, p := range wm.projectiles {
		p.Update(dt)
	}
	wm.resolver.ResolveProjectiles(wm.player, wm.projectiles, wm.mobs)
	for i := len(wm.projectiles) - 1; i >= 0; i-- {
		if !wm.projectiles[i].Active {
			wm.projectiles = append(wm.projectiles[:i], wm.projectiles[i+1:]...)
		}
	}

	// Повышения с прошлого кадра, включая начисленные вне Update
	for lvl := wm.lastLevel + 1; lvl <= wm.player.Level(); lvl++ {
		wm.emit(LevelUpEvent{Level: lvl})
	}
	wm.lastLevel = wm.player.Level()

	if wm.player.IsDead() {
		wm.gameOver = true
		wm.emit(PlayerDiedEvent{Level: wm.player.Level(), Wave: wm.spawner.CurrentWave(), Kills: wm.kills})
		wm.log.Info("☠️ Игра окончена: волна %d, убийств %d", wm.spawner.CurrentWave(), wm.kills)
		return
	}

	// 8. Прогресс волны
	wm.checkWave(dt)
}

func (wm *WorldManager) checkWave(dt float64) {
	if wm.inBreak {
		wm.breakLeft -= dt
		if wm.breakLeft <= 0 {
			wm.inBreak = false
			wm.advanceWave()
		}
		return
	}

	if wm.spawner.IsWaveActive() || wm.LiveMobCount() > 0 {
		return
	}

	wm.emit(WaveEvent{
		EventType: EventTypeWaveCleared,
		Wave:      wm.spawner.CurrentWave(),
		Boss:      wm.spawner.CurrentWaveDefinition().IsBossWave,
	})
	wm.log.Info("✅ Волна %d зачищена", wm.spawner.CurrentWave())

	if wm.cfg.World.WaveBreak > 0 {
		wm.inBreak = true
		wm.breakLeft = wm.cfg.World.WaveBreak
		return
	}
	wm.advanceWave()
}

func (wm *WorldManager) advanceWave() {
	if wm.spawner.NextWave() {
		wm.emitWaveStarted()
		return
	}
	wm.complete = true
	wm.emit(StageCompleteEvent{StageID: wm.def.StageID, Elapsed: wm.elapsed})
}

// ApplyInput передаёт ввод кадра игроку
func (wm *WorldManager) ApplyInput(in Input) {
	wm.player.SetInput(in.Move)
	if in.Dodge {
		wm.player.RequestDodge()
	}
}

// ChoosePowerUp применяет выбранное усиление к игроку
func (wm *WorldManager) ChoosePowerUp(kind entity.PowerUpKind) error {
	if err := wm.player.ApplyPowerUp(kind); err != nil {
		return err
	}
	wm.log.Info("✨ Усиление %s → уровень %d", kind, wm.player.PowerUpLevel(kind))
	return nil
}

// SetPaused приостанавливает или возобновляет симуляцию
func (wm *WorldManager) SetPaused(paused bool) {
	wm.paused = paused
}

// DrainEvents возвращает накопленные события и очищает очередь
func (wm *WorldManager) DrainEvents() []Event {
	out := wm.events
	wm.events = nil
	return out
}

// LiveMobCount возвращает число живых мобов
func (wm *WorldManager) LiveMobCount() int {
	n := 0
	for _, m := range wm.mobs {
		if !m.IsDead() {
			n++
		}
	}
	return n
}

func (wm *WorldManager) Player() *entity.Player            { return wm.player }
func (wm *WorldManager) Mobs() []entity.MobEntity          { return wm.mobs }
func (wm *WorldManager) Pickups() []*entity.Pickup         { return wm.pickups }
func (wm *WorldManager) Projectiles() []*entity.Projectile { return wm.projectiles }
func (wm *WorldManager) Spawner() *stage.Spawner           { return wm.spawner }
func (wm *WorldManager) CombatStats() combat.Stats         { return wm.resolver.Stats() }
func (wm *WorldManager) Paused() bool                      { return wm.paused }
func (wm *WorldManager) GameOver() bool                    { return wm.gameOver }
func (wm *WorldManager) StageComplete() bool               { return wm.complete }
func (wm *WorldManager) CurrentWave() int                  { return wm.spawner.CurrentWave() }
func (wm *WorldManager) Kills() int                        { return wm.kills }
