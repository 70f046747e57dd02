package physics

import (
	"math"

	"github.com/annel0/horde-survivors/internal/vec"
)

// Rect представляет прямоугольный хитбокс, выровненный по осям.
// (X, Y) — левый нижний угол.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// NewRect создаёт прямоугольник из позиции и размера
func NewRect(pos vec.Vec2Float, size vec.Vec2Float) Rect {
	return Rect{X: pos.X, Y: pos.Y, Width: size.X, Height: size.Y}
}

// Center возвращает центр прямоугольника
func (r Rect) Center() vec.Vec2Float {
	return vec.Vec2Float{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Radius возвращает радиус описанной окружности для круговых проверок:
// max(ширина, высота) / 2
func (r Rect) Radius() float64 {
	return math.Max(r.Width, r.Height) / 2
}

// IsPointInside проверяет, находится ли точка внутри прямоугольника
func (r Rect) IsPointInside(point vec.Vec2Float) bool {
	return point.X >= r.X &&
		point.X < r.X+r.Width &&
		point.Y >= r.Y &&
		point.Y < r.Y+r.Height
}

// Overlaps проверяет пересечение двух прямоугольников (симметрично)
func (r Rect) Overlaps(other Rect) bool {
	return r.X < other.X+other.Width &&
		r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height &&
		r.Y+r.Height > other.Y
}

// CheckBoxCollision проверяет столкновение двух хитбоксов
func CheckBoxCollision(a, b Rect) bool {
	return a.Overlaps(b)
}

// CheckCircleCollision проверяет пересечение двух окружностей:
// расстояние между центрами не больше суммы радиусов
func CheckCircleCollision(c1 vec.Vec2Float, r1 float64, c2 vec.Vec2Float, r2 float64) bool {
	sum := r1 + r2
	return c1.Sub(c2).LengthSq() <= sum*sum
}
