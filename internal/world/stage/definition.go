// Package stage загружает описания уровней и планирует появление мобов по волнам.
package stage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrStageNotFound возвращается, если файл уровня отсутствует
var ErrStageNotFound = errors.New("stage not found")

// SpawnPattern задаёт count мобов типа MobType с интервалом SpawnDelay секунд
type SpawnPattern struct {
	MobType    string  `json:"mobType"`
	Count      int     `json:"count"`
	SpawnDelay float64 `json:"spawnDelay"`
}

// WaveDefinition описывает одну волну уровня
type WaveDefinition struct {
	WaveNumber int            `json:"waveNumber"`
	IsBossWave bool           `json:"isBossWave"`
	Spawns     []SpawnPattern `json:"spawns"`
}

// TotalSpawns возвращает общее число мобов волны
func (w WaveDefinition) TotalSpawns() int {
	total := 0
	for _, s := range w.Spawns {
		total += s.Count
	}
	return total
}

// Definition описывает уровень; после загрузки не меняется
type Definition struct {
	StageID     string           `json:"stageId"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Waves       []WaveDefinition `json:"waves"`
}

// MobRegistry сообщает, известен ли тип моба
type MobRegistry interface {
	Has(typeID string) bool
}

// Load читает уровень из JSON файла.
// Отсутствующий файл даёт ErrStageNotFound, битый даёт ошибку разбора.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrStageNotFound, path)
		}
		return nil, fmt.Errorf("чтение уровня %s: %w", path, err)
	}

	def, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("уровень %s: %w", path, err)
	}
	return def, nil
}

// Parse разбирает JSON описания уровня и проверяет его структуру
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("разбор JSON: %w", err)
	}

	if def.StageID == "" {
		return nil, errors.New("пустой stageId")
	}
	if len(def.Waves) == 0 {
		return nil, fmt.Errorf("уровень %s не содержит волн", def.StageID)
	}
	for i, w := range def.Waves {
		for _, s := range w.Spawns {
			if s.MobType == "" {
				return nil, fmt.Errorf("волна %d: пустой mobType", i+1)
			}
			if s.Count < 0 || s.SpawnDelay < 0 {
				return nil, fmt.Errorf("волна %d: отрицательные count или spawnDelay у %s", i+1, s.MobType)
			}
		}
	}
	return &def, nil
}

// Validate проверяет, что все типы мобов уровня зарегистрированы
func (d *Definition) Validate(registry MobRegistry) error {
	for i, w := range d.Waves {
		for _, s := range w.Spawns {
			if !registry.Has(s.MobType) {
				return fmt.Errorf("уровень %s, волна %d: неизвестный тип моба %q", d.StageID, i+1, s.MobType)
			}
		}
	}
	return nil
}
