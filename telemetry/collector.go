// Package telemetry provides windowed run statistics, tick phase timings,
// Prometheus metrics and per-run output files.
package telemetry

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec float64

	// Current window tracking
	windowStartTick int64
	windowStartTime float64

	// Event counters for current window
	eliminations     int
	collisions       int
	respawns         int
	insertMisses     int
	returnRejections int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds.
// Non-positive values flush on every tick.
func NewCollector(windowDurationSec float64) *Collector {
	return &Collector{windowDurationSec: windowDurationSec}
}

// RecordEliminations records agents destroyed by the destroyer.
func (c *Collector) RecordEliminations(n int) {
	c.eliminations += n
}

// RecordCollisions records collision responses applied.
func (c *Collector) RecordCollisions(n int) {
	c.collisions += n
}

// RecordRespawns records agents revived from the pool.
func (c *Collector) RecordRespawns(n int) {
	c.respawns += n
}

// RecordInsertMiss records an agent the spatial index refused.
func (c *Collector) RecordInsertMiss() {
	c.insertMisses++
}

// RecordReturnRejected records a pool Return that was refused.
func (c *Collector) RecordReturnRejected() {
	c.returnRejections++
}

// ShouldFlush returns true if enough simulated time has passed to flush the window.
func (c *Collector) ShouldFlush(simTime float64) bool {
	return simTime-c.windowStartTime >= c.windowDurationSec
}

// Census is the population state sampled at the end of a window.
type Census struct {
	Active        int       // active pooled agents
	PoolSize      int       // pool high-water mark
	PoolAvailable int       // instances waiting in the pool
	Speeds        []float64 // speed of every active pooled agent
	TreeNodes     int
	TreeDepth     int
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(tick int64, simTime float64, census Census) WindowStats {
	speedMean, speedStd := ComputeSpeedStats(census.Speeds)
	p10, p50, p90 := SpeedPercentiles(census.Speeds)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   tick,
		SimTimeSec:      simTime,

		Active:        census.Active,
		PoolSize:      census.PoolSize,
		PoolAvailable: census.PoolAvailable,

		Eliminations:     c.eliminations,
		Collisions:       c.collisions,
		Respawns:         c.respawns,
		InsertMisses:     c.insertMisses,
		ReturnRejections: c.returnRejections,

		SpeedMean: speedMean,
		SpeedStd:  speedStd,
		SpeedP10:  p10,
		SpeedP50:  p50,
		SpeedP90:  p90,

		TreeNodes: census.TreeNodes,
		TreeDepth: census.TreeDepth,
	}

	// Reset for next window
	c.windowStartTick = tick
	c.windowStartTime = simTime
	c.eliminations = 0
	c.collisions = 0
	c.respawns = 0
	c.insertMisses = 0
	c.returnRejections = 0

	return stats
}

// Reset discards the current window and starts a new one at the given time.
func (c *Collector) Reset(tick int64, simTime float64) {
	c.Flush(tick, simTime, Census{})
}
