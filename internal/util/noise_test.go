package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWander_DirectionIsUnit(t *testing.T) {
	w := NewWander(7, 0.5)
	for i := 0; i < 50; i++ {
		d := w.Direction(float64(i) * 0.1)
		assert.InDelta(t, 1.0, d.Length(), 1e-9)
	}
}

func TestWander_Deterministic(t *testing.T) {
	a := NewWander(11, 0.25)
	b := NewWander(11, 0.25)
	for i := 0; i < 20; i++ {
		tm := float64(i) * 0.37
		assert.Equal(t, a.Direction(tm), b.Direction(tm))
	}
}

func TestWander_NoiseRange(t *testing.T) {
	w := NewWander(3, 0)
	for i := 0; i < 100; i++ {
		v := w.Noise01(float64(i) * 0.13)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}
