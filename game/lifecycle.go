package game

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/systems"
	"github.com/pthm-cable/critters/telemetry"
)

// spawnMargin keeps initial positions off the arena edge.
const spawnMargin = 5.0

// spawnInitialPopulation borrows and initialises the configured number of agents.
func (g *Game) spawnInitialPopulation() {
	critter := g.cfg.Classes.Critter
	for range g.cfg.Population.Agents {
		a := g.pool.Get()
		a.Init(g.randomPosition(), g.randomVelocity(), critter.Radius, components.ResourceKey(critter.Texture))
		systems.Clamp(a, g.bounds)
	}
}

// spawnDestroyer places the destroyer at the arena centre with a random heading.
func (g *Game) spawnDestroyer() {
	d := g.cfg.Classes.Destroyer
	center := r2.Vec{X: g.bounds.Width / 2, Y: g.bounds.Height / 2}
	g.destroyer.Init(center, g.randomVelocity(), d.Radius, components.ResourceKey(d.Texture))
}

// randomPosition returns a point in [margin, size-margin) on both axes,
// falling back to the full arena when it is too small for the margin.
func (g *Game) randomPosition() r2.Vec {
	axis := func(size float64) float64 {
		span := size - 2*spawnMargin
		if span <= 0 {
			return g.rng.Float64() * size
		}
		return spawnMargin + g.rng.Float64()*span
	}
	return r2.Vec{X: axis(g.bounds.Width), Y: axis(g.bounds.Height)}
}

// randomVelocity returns a random direction scaled to the max speed.
func (g *Game) randomVelocity() r2.Vec {
	dir := r2.Vec{
		X: -100 + g.rng.Float64()*200,
		Y: -100 + g.rng.Float64()*200,
	}
	return r2.Scale(g.cfg.Physics.MaxSpeed, systems.Unit(dir))
}

// Restart destroys every agent, makes the whole pool available again and
// re-initialises the population and the destroyer. No agent is constructed
// unless the configured population exceeds the pool.
func (g *Game) Restart() {
	for a := range g.pool.All() {
		a.Destroy()
	}
	g.pool.Reset()
	g.tree.Clear()

	g.spawnDestroyer()
	g.spawnInitialPopulation()
	g.respawner.Rewind()
	g.collector.Reset(g.tick, g.simTime)

	g.restarts++
	telemetry.InstrumentEvents(telemetry.EventRestart, 1)
	g.logger.Info("simulation_restart",
		"tick", g.tick,
		"restarts", g.restarts,
		"pool_size", g.pool.Len(),
	)
}
