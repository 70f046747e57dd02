package entity

import "math/rand"

// Rand задаёт источник случайных чисел для боевых бросков.
// *rand.Rand удовлетворяет интерфейсу; в тестах подставляются заглушки.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// NewRand создаёт детерминированный генератор с заданным seed
func NewRand(seed int64) Rand {
	return rand.New(rand.NewSource(seed))
}
