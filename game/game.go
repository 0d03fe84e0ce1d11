// Package game owns the simulation state and runs the tick pipeline.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/config"
	"github.com/pthm-cable/critters/pool"
	"github.com/pthm-cable/critters/systems"
	"github.com/pthm-cable/critters/telemetry"
)

// MaxSpeed bounds the simulation speed multiplier.
const MaxSpeed = 10

// Options configures game behavior.
type Options struct {
	Seed           int64   // RNG seed (0 = time-based)
	LogStats       bool    // log window and perf stats via slog
	StatsWindowSec float64 // overrides telemetry.stats_window when > 0
	OutputDir      string  // CSV, config and summary output (empty = disabled)
	StepsPerUpdate int     // ticks per UpdateHeadless call

	// StatsCallback is called with every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete simulation state. It is not safe for concurrent
// use; the driver loop owns it.
type Game struct {
	cfg    *config.Config
	bounds systems.Bounds
	rng    *rand.Rand
	seed   int64
	runID  string
	logger *slog.Logger

	// Agents
	pool       *pool.Pool[components.Agent]
	destroyer  components.Agent
	tree       *systems.QuadTree[*components.Agent]
	collisions *systems.CollisionSystem
	respawner  *systems.Respawner

	// Telemetry
	collector     *telemetry.Collector
	perf          *telemetry.PerfCollector
	output        *telemetry.OutputManager
	lastStats     telemetry.WindowStats
	statsCallback func(telemetry.WindowStats)
	logStats      bool

	// Run totals for the summary
	startedAt    time.Time
	eliminations int
	responses    int
	respawns     int
	restarts     int

	// State
	tick           int64
	simTime        float64
	paused         bool
	speed          int // simulation speed multiplier (1-MaxSpeed)
	stepsPerUpdate int
}

// New validates cfg and builds a game with the configured population.
func New(cfg *config.Config, opts Options) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bounds := systems.Bounds{Width: cfg.Arena.Width, Height: cfg.Arena.Height}
	tree, err := systems.NewQuadTree[*components.Agent](bounds.Region(), cfg.Spatial.Capacity, cfg.Spatial.MaxDepth)
	if err != nil {
		return nil, fmt.Errorf("building spatial index: %w", err)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}

	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	runID := uuid.NewString()
	g := &Game{
		cfg:            cfg,
		bounds:         bounds,
		rng:            rand.New(rand.NewSource(seed)),
		seed:           seed,
		runID:          runID,
		logger:         slog.Default().With("run_id", runID),
		pool:           pool.New[components.Agent](cfg.Population.Agents),
		tree:           tree,
		collisions:     systems.NewCollisionSystem(cfg.Physics.MaxSpeed),
		respawner:      systems.NewRespawner(cfg.Respawn.Interval, cfg.Respawn.SpawnOffset, cfg.Respawn.PerInterval),
		collector:      telemetry.NewCollector(statsWindow),
		perf:           telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		output:         output,
		statsCallback:  opts.StatsCallback,
		logStats:       opts.LogStats,
		startedAt:      time.Now(),
		speed:          1,
		stepsPerUpdate: steps,
	}

	g.spawnDestroyer()
	g.spawnInitialPopulation()

	g.logger.Info("simulation_start",
		"seed", seed,
		"agents", cfg.Population.Agents,
		"arena_width", cfg.Arena.Width,
		"arena_height", cfg.Arena.Height,
		"output_dir", output.Dir(),
	)
	return g, nil
}

// Update runs one frame of simulation in graphics mode: speed ticks of
// frameDT each, or nothing while paused.
func (g *Game) Update(frameDT float64) {
	g.perf.RecordFrame()
	if g.paused {
		return
	}
	for range g.speed {
		g.Tick(frameDT)
	}
}

// UpdateHeadless runs StepsPerUpdate ticks of the configured fixed step.
func (g *Game) UpdateHeadless() {
	for range g.stepsPerUpdate {
		g.Tick(g.cfg.Physics.FixedDT)
	}
}

// Close writes the run summary and closes output files.
func (g *Game) Close() error {
	if err := g.output.WriteSummary(g.Summary()); err != nil {
		g.logger.Error("failed to write summary", "error", err)
	}
	return g.output.Close()
}

// Summary returns the totals of the run so far.
func (g *Game) Summary() telemetry.Summary {
	active := 0
	for a := range g.pool.All() {
		if a.Active() {
			active++
		}
	}
	return telemetry.Summary{
		RunID:        g.runID,
		Seed:         g.seed,
		StartedAt:    g.startedAt,
		FinishedAt:   time.Now(),
		Ticks:        g.tick,
		SimTimeSec:   g.simTime,
		Eliminations: g.eliminations,
		Collisions:   g.responses,
		Respawns:     g.respawns,
		Restarts:     g.restarts,
		PoolSize:     g.pool.Len(),
		FinalActive:  active,
	}
}

// Ticks returns the number of ticks run since the game was created.
func (g *Game) Ticks() int64 { return g.tick }

// SimTime returns the simulated seconds elapsed.
func (g *Game) SimTime() float64 { return g.simTime }

// Seed returns the RNG seed in use.
func (g *Game) Seed() int64 { return g.seed }

// RunID returns the unique identifier of this run.
func (g *Game) RunID() string { return g.runID }

// Bounds returns the arena size.
func (g *Game) Bounds() systems.Bounds { return g.bounds }

// Config returns the configuration the game was built with.
func (g *Game) Config() *config.Config { return g.cfg }

// Paused reports whether Update is suspended.
func (g *Game) Paused() bool { return g.paused }

// SetPaused suspends or resumes Update.
func (g *Game) SetPaused(p bool) { g.paused = p }

// TogglePause flips the paused state.
func (g *Game) TogglePause() { g.paused = !g.paused }

// Speed returns the simulation speed multiplier.
func (g *Game) Speed() int { return g.speed }

// SetSpeed sets the speed multiplier, clamped to [1, MaxSpeed].
func (g *Game) SetSpeed(s int) { g.speed = max(1, min(s, MaxSpeed)) }

// LastStats returns the most recently flushed stats window.
func (g *Game) LastStats() telemetry.WindowStats { return g.lastStats }

// PerfStats returns the rolling performance statistics.
func (g *Game) PerfStats() telemetry.PerfStats { return g.perf.Stats() }

// PoolStats returns the pool high-water mark and the number of instances
// waiting to be reused.
func (g *Game) PoolStats() (size, available int) {
	return g.pool.Len(), g.pool.Available()
}
