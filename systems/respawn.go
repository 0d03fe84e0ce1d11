package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/critters/components"
)

// Respawner gates respawning with a countdown accumulator.
type Respawner struct {
	Interval    float64 // seconds between respawn waves
	Offset      float64 // spawn distance behind the destroyer
	PerInterval int     // agents revived per wave

	remaining float64
}

// NewRespawner creates a respawner whose first wave fires after one interval.
func NewRespawner(interval, offset float64, perInterval int) *Respawner {
	return &Respawner{
		Interval:    interval,
		Offset:      offset,
		PerInterval: perInterval,
		remaining:   interval,
	}
}

// Update advances the countdown by dt and returns how many agents should be
// revived this tick. At most one wave fires per call, however large dt is.
func (r *Respawner) Update(dt float64) int {
	r.remaining -= dt
	if r.remaining > 0 {
		return 0
	}
	r.remaining = r.Interval
	return r.PerInterval
}

// Rewind restarts the countdown from a full interval.
func (r *Respawner) Rewind() {
	r.remaining = r.Interval
}

// SpawnBehind returns a spawn position Offset units behind the destroyer,
// along its heading, and a velocity of maxSpeed pointing away from it. A
// stationary destroyer yields its own position and zero velocity.
func (r *Respawner) SpawnBehind(destroyer *components.Agent, maxSpeed float64) (pos, vel r2.Vec) {
	dir := Unit(destroyer.Vel)
	pos = r2.Sub(destroyer.Pos, r2.Scale(r.Offset, dir))
	vel = r2.Scale(-maxSpeed, dir)
	return pos, vel
}
