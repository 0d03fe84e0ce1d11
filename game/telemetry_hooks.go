package game

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/critters/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and writes it out.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.simTime) {
		return
	}

	census := g.census()
	stats := g.collector.Flush(g.tick, g.simTime, census)
	perfStats := g.perf.Stats()
	g.lastStats = stats

	telemetry.InstrumentPopulation(census.Active, census.PoolSize, census.TreeNodes)
	telemetry.InstrumentPerf(perfStats)

	// Call stats callback if provided
	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if g.output != nil {
		if err := g.output.WriteTelemetry(stats); err != nil {
			g.logger.Error("failed to write telemetry", "error", err)
		}
		if err := g.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			g.logger.Error("failed to write perf", "error", err)
		}
	}
}

// census samples the population and index shape for a stats window.
func (g *Game) census() telemetry.Census {
	c := telemetry.Census{
		PoolSize:      g.pool.Len(),
		PoolAvailable: g.pool.Available(),
		TreeNodes:     g.tree.Nodes(),
		TreeDepth:     g.tree.Depth(),
	}
	for a := range g.pool.All() {
		if !a.Active() {
			continue
		}
		c.Active++
		c.Speeds = append(c.Speeds, r2.Norm(a.Vel))
	}
	return c
}
