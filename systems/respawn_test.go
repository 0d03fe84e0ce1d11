package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestRespawnerCountdown(t *testing.T) {
	r := NewRespawner(1.0, 50, 2)

	assert.Zero(t, r.Update(0.4))
	assert.Zero(t, r.Update(0.4))
	assert.Equal(t, 2, r.Update(0.2), "fires once the interval has elapsed")
	assert.Zero(t, r.Update(0.5), "countdown reloads after a wave")
	assert.Equal(t, 2, r.Update(0.5))
}

func TestRespawnerLargeDTFiresOnce(t *testing.T) {
	r := NewRespawner(1.0, 50, 1)
	assert.Equal(t, 1, r.Update(1000))
	assert.Zero(t, r.Update(0.5))
}

func TestRespawnerRewind(t *testing.T) {
	r := NewRespawner(1.0, 50, 1)
	r.Update(0.9)
	r.Rewind()
	assert.Zero(t, r.Update(0.9))
	assert.Equal(t, 1, r.Update(0.1))
}

func TestSpawnBehind(t *testing.T) {
	r := NewRespawner(1.0, 50, 1)

	tests := []struct {
		name    string
		pos     r2.Vec
		vel     r2.Vec
		wantPos r2.Vec
		wantVel r2.Vec
	}{
		{
			name:    "moving right",
			pos:     r2.Vec{X: 400, Y: 225},
			vel:     r2.Vec{X: 80, Y: 0},
			wantPos: r2.Vec{X: 350, Y: 225},
			wantVel: r2.Vec{X: -80, Y: 0},
		},
		{
			name:    "diagonal",
			pos:     r2.Vec{X: 400, Y: 225},
			vel:     r2.Vec{X: 30, Y: 40},
			wantPos: r2.Vec{X: 370, Y: 185},
			wantVel: r2.Vec{X: -48, Y: -64},
		},
		{
			name:    "stationary",
			pos:     r2.Vec{X: 10, Y: 20},
			vel:     r2.Vec{},
			wantPos: r2.Vec{X: 10, Y: 20},
			wantVel: r2.Vec{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := newAgent(tc.pos.X, tc.pos.Y, tc.vel.X, tc.vel.Y, 20)
			pos, vel := r.SpawnBehind(d, 80)
			assert.InDelta(t, tc.wantPos.X, pos.X, 1e-9)
			assert.InDelta(t, tc.wantPos.Y, pos.Y, 1e-9)
			assert.InDelta(t, tc.wantVel.X, vel.X, 1e-9)
			assert.InDelta(t, tc.wantVel.Y, vel.Y, 1e-9)
		})
	}
}
