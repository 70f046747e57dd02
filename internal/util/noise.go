package util

import (
	"math"

	"github.com/aquilax/go-perlin"

	"github.com/annel0/horde-survivors/internal/vec"
)

// Wander даёт плавно меняющееся направление блуждания на основе шума Перлина
type Wander struct {
	noise     *perlin.Perlin
	frequency float64
}

// NewWander создаёт генератор блуждания с указанным сидом.
// frequency задаёт скорость смены направления (оборотов шума в секунду).
func NewWander(seed int64, frequency float64) *Wander {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	if frequency <= 0 {
		frequency = 0.25
	}
	return &Wander{
		noise:     perlin.NewPerlin(alpha, beta, n, seed),
		frequency: frequency,
	}
}

// Noise01 возвращает значение шума для момента t в диапазоне [0, 1]
func (w *Wander) Noise01(t float64) float64 {
	// Значение шума в диапазоне примерно от -1 до 1
	v := w.noise.Noise2D(t*w.frequency, 0.5)
	return math.Max(0, math.Min(1, (v+1)/2))
}

// Direction возвращает единичный вектор блуждания в момент t
func (w *Wander) Direction(t float64) vec.Vec2Float {
	angle := w.Noise01(t) * 4 * math.Pi
	return vec.Vec2Float{X: math.Cos(angle), Y: math.Sin(angle)}
}
