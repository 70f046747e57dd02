package vec

import "math"

// Vec2Float представляет 2D координаты с плавающей точкой
type Vec2Float struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Zero возвращает нулевой вектор
func Zero() Vec2Float {
	return Vec2Float{}
}

// Add складывает два вектора
func (v Vec2Float) Add(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub вычитает вектор
func (v Vec2Float) Sub(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X - other.X, Y: v.Y - other.Y}
}

// Mul умножает вектор на скаляр
func (v Vec2Float) Mul(scalar float64) Vec2Float {
	return Vec2Float{X: v.X * scalar, Y: v.Y * scalar}
}

// Dot возвращает скалярное произведение
func (v Vec2Float) Dot(other Vec2Float) float64 {
	return v.X*other.X + v.Y*other.Y
}

// IsZero сообщает, является ли вектор нулевым
func (v Vec2Float) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Normalized возвращает нормализованный вектор
func (v Vec2Float) Normalized() Vec2Float {
	length := v.Length()
	if length == 0 {
		return Vec2Float{X: 0, Y: 0}
	}
	return Vec2Float{X: v.X / length, Y: v.Y / length}
}

// Length возвращает длину вектора
func (v Vec2Float) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// LengthSq возвращает квадрат длины (без корня, для сравнений)
func (v Vec2Float) LengthSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2Float) DistanceTo(other Vec2Float) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// MoveTowards сдвигает точку к цели не более чем на maxStep, без перелёта
func (v Vec2Float) MoveTowards(target Vec2Float, maxStep float64) Vec2Float {
	delta := target.Sub(v)
	dist := delta.Length()
	if dist <= maxStep || dist == 0 {
		return target
	}
	return v.Add(delta.Mul(maxStep / dist))
}
