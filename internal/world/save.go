package world

import (
	"context"
	"fmt"
	"time"

	"github.com/annel0/horde-survivors/internal/storage"
	"github.com/annel0/horde-survivors/internal/world/entity"
)

// resumePoint возвращает волну, с которой продолжится игра после загрузки.
// В перерыве текущая волна уже зачищена, поэтому продолжаем со следующей.
// Перерыв после последней волны означает пройденный уровень.
func (wm *WorldManager) resumePoint() (wave int, completed bool) {
	total := len(wm.def.Waves)
	wave = wm.spawner.CurrentWave()
	switch {
	case wm.complete:
		return total, true
	case wm.inBreak && wave >= total:
		return total, true
	case wm.inBreak:
		return wave + 1, false
	}
	return wave, false
}

// BuildSaveState собирает плоский снимок прогресса из геттеров игрока
func (wm *WorldManager) BuildSaveState() storage.SaveState {
	p := wm.player
	wave, completed := wm.resumePoint()
	state := storage.SaveState{
		Level:                 p.Level(),
		Experience:            p.Experience(),
		ExperienceToNextLevel: p.ExperienceToNextLevel(),
		Gold:                  p.Gold(),
		CurrentHealth:         p.Health,
		MaxHealth:             p.MaxHealth,
		CurrentStageID:        wm.def.StageID,
		CurrentWave:           wave,
		StageCompleted:        completed,
		SaveTime:              time.Now().UnixMilli(),
	}

	levels := p.PowerUpLevels()
	state.SetPowerUpLevels(levels[:])
	return state
}

// SaveGame сохраняет прогресс в репозиторий. Погибшего игрока не сохраняет.
func (wm *WorldManager) SaveGame(ctx context.Context) error {
	if wm.repo == nil {
		return ErrNoSaveRepo
	}
	if wm.player.Dead {
		return ErrPlayerDead
	}

	state := wm.BuildSaveState()
	if err := wm.repo.Save(ctx, state); err != nil {
		wm.log.Error("❌ Не удалось сохранить игру: %v", err)
		return fmt.Errorf("save game: %w", err)
	}

	wm.emit(PersistenceEvent{EventType: EventTypeGameSaved, Level: state.Level, Wave: state.CurrentWave})
	wm.log.Info("💾 Игра сохранена: уровень %d, волна %d", state.Level, state.CurrentWave)
	return nil
}

// LoadGame читает сохранение и восстанавливает игрока повторным применением
// усилений к новому персонажу. При любой ошибке текущий игрок не меняется.
// Возвращает false, если сохранения нет.
func (wm *WorldManager) LoadGame(ctx context.Context) (bool, error) {
	if wm.repo == nil {
		return false, ErrNoSaveRepo
	}

	state, found, err := wm.repo.Load(ctx)
	if err != nil {
		wm.log.Error("❌ Не удалось загрузить игру: %v", err)
		return false, fmt.Errorf("load game: %w", err)
	}
	if !found {
		return false, nil
	}

	player, err := wm.restorePlayer(state)
	if err != nil {
		wm.log.Error("❌ Сохранение отклонено: %v", err)
		return false, fmt.Errorf("load game: %w", err)
	}

	wave := state.CurrentWave
	completed := state.StageCompleted
	if state.CurrentStageID != wm.def.StageID {
		wm.log.Warn("⚠️ Сохранение относится к уровню %q, текущий %q: начинаем с первой волны",
			state.CurrentStageID, wm.def.StageID)
		wave = 1
		completed = false
	}

	wm.setPlayer(player)
	wm.mobs = nil
	wm.pickups = nil
	wm.projectiles = nil
	wm.gameOver = false
	wm.complete = false
	wm.inBreak = false

	wm.spawner.SetWaveIndex(wave - 1)
	if completed {
		// Пройденный уровень не переигрывается: волны не запускаются
		wm.started = true
		wm.complete = true
	} else {
		wm.started = false
		wm.Start()
	}

	wm.emit(PersistenceEvent{EventType: EventTypeGameLoaded, Level: state.Level, Wave: wm.spawner.CurrentWave()})
	if completed {
		wm.log.Info("📂 Игра загружена: уровень %d, этап %q уже пройден", state.Level, wm.def.StageID)
	} else {
		wm.log.Info("📂 Игра загружена: уровень %d, волна %d", state.Level, wm.spawner.CurrentWave())
	}
	return true, nil
}

// restorePlayer строит нового игрока из снимка. Производные характеристики
// получаются повторным применением усилений, а не копированием полей.
func (wm *WorldManager) restorePlayer(state storage.SaveState) (*entity.Player, error) {
	if err := state.Validate(); err != nil {
		return nil, err
	}

	p := wm.newPlayer()
	for i, level := range state.PowerUpLevels() {
		kind := entity.PowerUpKind(i)
		for n := 0; n < level; n++ {
			if err := p.ApplyPowerUp(kind); err != nil {
				return nil, err
			}
		}
	}

	if state.MaxHealth != p.MaxHealth {
		wm.log.Warn("⚠️ maxHealth в сохранении %.0f, после усилений %.0f", state.MaxHealth, p.MaxHealth)
	}

	p.SetProgress(state.Level, state.Experience, state.ExperienceToNextLevel, state.Gold)
	p.SetHealth(state.CurrentHealth)
	return p, nil
}
