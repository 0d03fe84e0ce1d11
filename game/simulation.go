package game

import (
	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/systems"
	"github.com/pthm-cable/critters/telemetry"
)

// Tick advances the simulation by dt seconds. Negative or non-finite dt is
// treated as zero.
func (g *Game) Tick(dt float64) {
	if clean := systems.SanitizeDT(dt); clean != dt {
		g.logger.Debug("tick_dt_sanitized", "dt", dt)
		dt = clean
	}

	g.perf.StartTick()

	g.perf.StartPhase(telemetry.PhaseClear)
	g.tree.Clear()

	g.perf.StartPhase(telemetry.PhaseIntegrate)
	g.integrate(dt)

	g.perf.StartPhase(telemetry.PhaseEliminate)
	g.eliminate()

	g.perf.StartPhase(telemetry.PhaseRebuild)
	g.rebuildTree()

	g.perf.StartPhase(telemetry.PhaseCollide)
	g.resolveCollisions()

	g.perf.StartPhase(telemetry.PhaseRespawn)
	g.respawn(dt)

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	g.tick++
	g.simTime += dt
	telemetry.InstrumentTick()
	g.flushTelemetry()

	g.perf.EndTick()
}

// integrate moves the destroyer and every pooled agent and keeps them in the arena.
func (g *Game) integrate(dt float64) {
	systems.Integrate(&g.destroyer, dt, g.bounds)
	for a := range g.pool.All() {
		systems.Integrate(a, dt, g.bounds)
	}
}

// eliminate destroys agents touching the destroyer and returns them to the pool.
func (g *Game) eliminate() {
	killed := systems.Eliminate(&g.destroyer, g.pool.All(), g.release)
	if killed == 0 {
		return
	}
	g.eliminations += killed
	g.collector.RecordEliminations(killed)
	telemetry.InstrumentEvents(telemetry.EventElimination, killed)
}

// release hands a destroyed agent back to the pool. A rejected return is
// logged and the simulation carries on.
func (g *Game) release(a *components.Agent) {
	if err := g.pool.Return(a); err != nil {
		g.logger.Warn("pool_return_rejected", "error", err, "tick", g.tick)
		g.collector.RecordReturnRejected()
		telemetry.InstrumentEvents(telemetry.EventReturnRejected, 1)
	}
}

// rebuildTree inserts every active agent into the spatial index.
func (g *Game) rebuildTree() {
	for a := range g.pool.All() {
		if !a.Active() {
			continue
		}
		if !g.tree.Insert(a, a.Pos) {
			g.logger.Debug("quadtree_insert_miss", "x", a.Pos.X, "y", a.Pos.Y)
			g.collector.RecordInsertMiss()
			telemetry.InstrumentEvents(telemetry.EventInsertMiss, 1)
		}
	}
}

// resolveCollisions runs the pairwise collision pass.
func (g *Game) resolveCollisions() {
	n := g.collisions.Resolve(g.pool.All(), g.tree)
	if n == 0 {
		return
	}
	g.responses += n
	g.collector.RecordCollisions(n)
	telemetry.InstrumentEvents(telemetry.EventCollision, n)
}

// respawn revives pooled agents behind the destroyer when the respawn
// countdown fires. Only available instances are reused, so the pool never
// grows here.
func (g *Game) respawn(dt float64) {
	due := g.respawner.Update(dt)
	revived := 0
	for ; revived < due && g.pool.Available() > 0; revived++ {
		pos, vel := g.respawner.SpawnBehind(&g.destroyer, g.cfg.Physics.MaxSpeed)
		critter := g.cfg.Classes.Critter

		a := g.pool.Get()
		a.Reset(pos, vel, critter.Radius, components.ResourceKey(critter.Texture))
		systems.Clamp(a, g.bounds)
	}
	if revived == 0 {
		return
	}
	g.respawns += revived
	g.collector.RecordRespawns(revived)
	telemetry.InstrumentEvents(telemetry.EventRespawn, revived)
}
