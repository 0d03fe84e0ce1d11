package systems

import (
	"github.com/pthm-cable/critters/components"
)

// Bounds represents the arena size. The arena spans [0, Width] x [0, Height].
type Bounds struct {
	Width, Height float64
}

// Region returns the arena as a Region.
func (b Bounds) Region() Region {
	return Region{Width: b.Width, Height: b.Height}
}

// SanitizeDT maps negative or non-finite time steps to zero.
func SanitizeDT(dt float64) float64 {
	if !finiteNonNegative(dt) {
		return 0
	}
	return dt
}

// Integrate advances the agent by dt and keeps it inside the arena.
func Integrate(a *components.Agent, dt float64, b Bounds) {
	a.Update(dt)
	Contain(a, b)
}

// Clamp moves an agent's centre into [r, size-r] on both axes without
// touching its velocity.
func Clamp(a *components.Agent, b Bounds) {
	r := a.Radius
	a.Pos.X = max(r, min(a.Pos.X, b.Width-r))
	a.Pos.Y = max(r, min(a.Pos.Y, b.Height-r))
}

// Contain clamps an active agent inside the arena and reflects the velocity
// component of every wall it crossed. Each axis is handled independently.
func Contain(a *components.Agent, b Bounds) {
	if !a.Active() {
		return
	}
	r := a.Radius

	// Horizontal walls
	if a.Pos.X-r < 0 {
		a.Pos.X = r
		a.Vel.X = -a.Vel.X
	} else if a.Pos.X+r > b.Width {
		a.Pos.X = b.Width - r
		a.Vel.X = -a.Vel.X
	}

	// Vertical walls
	if a.Pos.Y-r < 0 {
		a.Pos.Y = r
		a.Vel.Y = -a.Vel.Y
	} else if a.Pos.Y+r > b.Height {
		a.Pos.Y = b.Height - r
		a.Vel.Y = -a.Vel.Y
	}
}
