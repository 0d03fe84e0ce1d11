// Package components holds the simulated entity types.
package components

import "gonum.org/v1/gonum/spatial/r2"

// ResourceKey identifies an external resource (texture, glyph) used to draw
// an agent. The simulation never resolves it.
type ResourceKey string

// State is an agent's lifecycle state.
type State uint8

const (
	Uninitialized State = iota
	Active
	Inactive
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Active:
		return "active"
	case Inactive:
		return "inactive"
	default:
		return "unknown"
	}
}

// Agent is a circular body moving in the arena.
//
// The zero value is an Uninitialized agent. Pos, Vel and Radius are exported
// so the systems can integrate and resolve collisions in place.
type Agent struct {
	Pos      r2.Vec
	Vel      r2.Vec
	Radius   float64
	Resource ResourceKey

	state State
	dirty bool // already handled a collision this tick
}

// Init activates the agent with the given state and clears the dirty flag.
func (a *Agent) Init(pos, vel r2.Vec, radius float64, key ResourceKey) {
	a.Pos = pos
	a.Vel = vel
	a.Radius = radius
	a.Resource = key
	a.state = Active
	a.dirty = false
}

// Reset re-activates a recycled agent. It has the same effect as Init.
func (a *Agent) Reset(pos, vel r2.Vec, radius float64, key ResourceKey) {
	a.Init(pos, vel, radius, key)
}

// Destroy marks the agent inactive. Position, velocity and resource are kept
// until the agent is reset.
func (a *Agent) Destroy() {
	a.state = Inactive
}

// Update advances an active agent by dt and clears its dirty flag.
func (a *Agent) Update(dt float64) {
	if a.state != Active {
		return
	}
	a.Pos.X += a.Vel.X * dt
	a.Pos.Y += a.Vel.Y * dt
	a.dirty = false
}

// State returns the lifecycle state.
func (a *Agent) State() State { return a.state }

// Active reports whether the agent takes part in the simulation.
func (a *Agent) Active() bool { return a.state == Active }

// Dead reports whether the agent is not active.
func (a *Agent) Dead() bool { return a.state != Active }

// Dirty reports whether the agent already had a collision response this tick.
func (a *Agent) Dirty() bool { return a.dirty }

// MarkDirty flags the agent as having had its collision response.
func (a *Agent) MarkDirty() { a.dirty = true }
