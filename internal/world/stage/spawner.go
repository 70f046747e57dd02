package stage

import (
	"sort"

	"github.com/annel0/horde-survivors/internal/logging"
	"github.com/annel0/horde-survivors/internal/vec"
	"github.com/annel0/horde-survivors/internal/world/entity"
)

// MobFactory создаёт мобов по типу
type MobFactory interface {
	Create(typeID string, pos vec.Vec2Float) (entity.MobEntity, error)
}

// ScheduledSpawn описывает запланированное появление моба через At секунд от начала волны
type ScheduledSpawn struct {
	MobType string
	At      float64
}

// Spawner ведёт расписание текущей волны и выпускает мобов в sink
type Spawner struct {
	def     *Definition
	factory MobFactory
	rng     entity.Rand
	sink    func(entity.MobEntity)

	area   vec.Vec2Float // размер зоны появления, центрированной на игроке
	center vec.Vec2Float

	waveIndex int
	schedule  []ScheduledSpawn
	timer     float64
	active    bool
	complete  bool

	log *logging.Logger
}

// NewSpawner создаёт планировщик для уровня def
func NewSpawner(def *Definition, factory MobFactory, rng entity.Rand, area vec.Vec2Float, sink func(entity.MobEntity)) *Spawner {
	return &Spawner{
		def:     def,
		factory: factory,
		rng:     rng,
		sink:    sink,
		area:    area,
		log:     logging.GetStageLogger(),
	}
}

// SetCenter задаёт центр зоны появления (позиция игрока)
func (s *Spawner) SetCenter(pos vec.Vec2Float) {
	s.center = pos
}

// SetWaveIndex выставляет индекс волны без запуска (восстановление из сохранения)
func (s *Spawner) SetWaveIndex(index int) {
	if index < 0 {
		index = 0
	}
	if index >= len(s.def.Waves) {
		index = len(s.def.Waves) - 1
	}
	s.waveIndex = index
	s.complete = false
	s.active = false
	s.schedule = nil
}

// BuildSchedule раскладывает шаблоны волны в отдельные появления:
// k-й моб шаблона появляется через k*spawnDelay, k = 1..count.
// Результат устойчиво отсортирован по времени.
func BuildSchedule(w WaveDefinition) []ScheduledSpawn {
	schedule := make([]ScheduledSpawn, 0, w.TotalSpawns())
	for _, p := range w.Spawns {
		for k := 1; k <= p.Count; k++ {
			schedule = append(schedule, ScheduledSpawn{MobType: p.MobType, At: float64(k) * p.SpawnDelay})
		}
	}
	sort.SliceStable(schedule, func(i, j int) bool {
		return schedule[i].At < schedule[j].At
	})
	return schedule
}

// StartWave строит расписание текущей волны и запускает её
func (s *Spawner) StartWave() {
	if s.complete {
		return
	}
	w := s.def.Waves[s.waveIndex]
	s.schedule = BuildSchedule(w)
	s.timer = 0
	s.active = true
	s.log.Info("🌊 Волна %d/%d: %d мобов, босс=%v", s.waveIndex+1, len(s.def.Waves), len(s.schedule), w.IsBossWave)
}

// Update продвигает таймер волны и выпускает всех, чьё время пришло.
// Пустое расписание переводит волну в неактивное состояние.
func (s *Spawner) Update(dt float64) {
	if !s.active {
		return
	}
	s.timer += dt

	due := 0
	for due < len(s.schedule) && s.schedule[due].At <= s.timer {
		s.spawn(s.schedule[due].MobType)
		due++
	}
	s.schedule = s.schedule[due:]

	if len(s.schedule) == 0 {
		s.active = false
	}
}

func (s *Spawner) spawn(mobType string) {
	m, err := s.factory.Create(mobType, s.edgePosition())
	if err != nil {
		s.log.Error("❌ Не удалось создать моба %s: %v", mobType, err)
		return
	}
	if s.sink != nil {
		s.sink(m)
	}
}

// edgePosition выбирает случайную точку на одной из сторон зоны появления
func (s *Spawner) edgePosition() vec.Vec2Float {
	hw, hh := s.area.X/2, s.area.Y/2
	t := s.rng.Float64()

	switch s.rng.Intn(4) {
	case 0: // верх
		return vec.Vec2Float{X: s.center.X - hw + t*s.area.X, Y: s.center.Y + hh}
	case 1: // низ
		return vec.Vec2Float{X: s.center.X - hw + t*s.area.X, Y: s.center.Y - hh}
	case 2: // лево
		return vec.Vec2Float{X: s.center.X - hw, Y: s.center.Y - hh + t*s.area.Y}
	default: // право
		return vec.Vec2Float{X: s.center.X + hw, Y: s.center.Y - hh + t*s.area.Y}
	}
}

// NextWave переходит к следующей волне. После последней уровень завершён
// и дальнейших переходов нет.
func (s *Spawner) NextWave() bool {
	if s.complete {
		return false
	}
	s.waveIndex++
	if s.waveIndex >= len(s.def.Waves) {
		s.waveIndex = len(s.def.Waves) - 1
		s.complete = true
		s.active = false
		s.schedule = nil
		s.log.Info("🏁 Уровень %s пройден", s.def.StageID)
		return false
	}
	s.StartWave()
	return true
}

func (s *Spawner) IsWaveActive() bool      { return s.active }
func (s *Spawner) IsComplete() bool        { return s.complete }
func (s *Spawner) Remaining() int          { return len(s.schedule) }
func (s *Spawner) Elapsed() float64        { return s.timer }
func (s *Spawner) Definition() *Definition { return s.def }

// CurrentWave возвращает номер текущей волны, начиная с 1
func (s *Spawner) CurrentWave() int { return s.waveIndex + 1 }

// CurrentWaveDefinition возвращает описание текущей волны
func (s *Spawner) CurrentWaveDefinition() WaveDefinition {
	return s.def.Waves[s.waveIndex]
}
