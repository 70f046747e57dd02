package world

import (
	"github.com/annel0/horde-survivors/internal/vec"
	"github.com/annel0/horde-survivors/internal/world/entity"
)

// PlayerSnapshot хранит видимое состояние игрока
type PlayerSnapshot struct {
	Position         vec.Vec2Float  `json:"position"`
	Health           float64        `json:"health"`
	MaxHealth        float64        `json:"max_health"`
	HealthPercent    float64        `json:"health_percent"`
	Level            int            `json:"level"`
	Experience       float64        `json:"experience"`
	ExperienceToNext float64        `json:"experience_to_next"`
	Gold             int            `json:"gold"`
	KillStreak       int            `json:"kill_streak"`
	DodgeCharges     int            `json:"dodge_charges"`
	Invincible       bool           `json:"invincible"`
	Anim             string         `json:"anim"`
	PowerUps         map[string]int `json:"power_ups"`
}

// MobSnapshot хранит видимое состояние моба
type MobSnapshot struct {
	ID            uint64        `json:"id"`
	TypeID        string        `json:"type_id"`
	Position      vec.Vec2Float `json:"position"`
	HealthPercent float64       `json:"health_percent"`
	Dead          bool          `json:"dead"`
	Boss          bool          `json:"boss"`
}

// Snapshot представляет копию состояния мира только для чтения (UI, статус-сервер)
type Snapshot struct {
	Frame         uint64         `json:"frame"`
	Elapsed       float64        `json:"elapsed"`
	StageID       string         `json:"stage_id"`
	Wave          int            `json:"wave"`
	TotalWaves    int            `json:"total_waves"`
	WaveActive    bool           `json:"wave_active"`
	BossWave      bool           `json:"boss_wave"`
	StageComplete bool           `json:"stage_complete"`
	GameOver      bool           `json:"game_over"`
	Paused        bool           `json:"paused"`
	Kills         int            `json:"kills"`
	Spawned       int            `json:"spawned"`
	Player        PlayerSnapshot `json:"player"`
	Mobs          []MobSnapshot  `json:"mobs"`
	Pickups       int            `json:"pickups"`
	Projectiles   int            `json:"projectiles"`
}

// Snapshot копирует текущее состояние мира
func (wm *WorldManager) Snapshot() Snapshot {
	p := wm.player
	powerUps := make(map[string]int)
	levels := p.PowerUpLevels()
	for i, l := range levels {
		if l > 0 {
			powerUps[entity.PowerUpKind(i).String()] = l
		}
	}

	mobs := make([]MobSnapshot, 0, len(wm.mobs))
	for _, m := range wm.mobs {
		base := m.Base()
		mobs = append(mobs, MobSnapshot{
			ID:            base.ID,
			TypeID:        m.TypeID(),
			Position:      base.Position,
			HealthPercent: base.HealthPercent(),
			Dead:          m.IsDead(),
			Boss:          m.IsBoss(),
		})
	}

	return Snapshot{
		Frame:         wm.frame,
		Elapsed:       wm.elapsed,
		StageID:       wm.def.StageID,
		Wave:          wm.spawner.CurrentWave(),
		TotalWaves:    len(wm.def.Waves),
		WaveActive:    wm.spawner.IsWaveActive(),
		BossWave:      wm.spawner.CurrentWaveDefinition().IsBossWave,
		StageComplete: wm.complete,
		GameOver:      wm.gameOver,
		Paused:        wm.paused,
		Kills:         wm.kills,
		Spawned:       wm.spawned,
		Player: PlayerSnapshot{
			Position:         p.Position,
			Health:           p.Health,
			MaxHealth:        p.MaxHealth,
			HealthPercent:    p.HealthPercent(),
			Level:            p.Level(),
			Experience:       p.Experience(),
			ExperienceToNext: p.ExperienceToNextLevel(),
			Gold:             p.Gold(),
			KillStreak:       p.KillStreak(),
			DodgeCharges:     p.DodgeCharges(),
			Invincible:       p.IsInvincible(),
			Anim:             p.AnimState().String(),
			PowerUps:         powerUps,
		},
		Mobs:        mobs,
		Pickups:     len(wm.pickups),
		Projectiles: len(wm.projectiles),
	}
}
