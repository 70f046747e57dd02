package physics

import (
	"testing"

	"github.com/annel0/horde-survivors/internal/vec"
	"github.com/stretchr/testify/assert"
)

func TestRect_Overlaps(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}

	cases := []struct {
		name string
		b    Rect
		want bool
	}{
		{"внутри", Rect{X: 2, Y: 2, Width: 2, Height: 2}, true},
		{"частично", Rect{X: 8, Y: 8, Width: 5, Height: 5}, true},
		{"касание по краю", Rect{X: 10, Y: 0, Width: 5, Height: 5}, false},
		{"далеко", Rect{X: 50, Y: 50, Width: 5, Height: 5}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, a.Overlaps(tc.b))
			// Проверка симметрична
			assert.Equal(t, tc.want, tc.b.Overlaps(a))
		})
	}
}

func TestRect_CenterAndRadius(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 30, Height: 40}
	assert.Equal(t, vec.Vec2Float{X: 25, Y: 40}, r.Center())
	assert.Equal(t, 20.0, r.Radius())
	assert.True(t, r.IsPointInside(vec.Vec2Float{X: 10, Y: 20}))
	assert.False(t, r.IsPointInside(vec.Vec2Float{X: 40, Y: 20}))
}

func TestCheckCircleCollision(t *testing.T) {
	c1 := vec.Vec2Float{X: 0, Y: 0}
	c2 := vec.Vec2Float{X: 10, Y: 0}

	assert.True(t, CheckCircleCollision(c1, 5, c2, 5), "касание считается попаданием")
	assert.False(t, CheckCircleCollision(c1, 4, c2, 5))
}
