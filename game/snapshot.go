package game

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/critters/components"
	"github.com/pthm-cable/critters/systems"
	"github.com/pthm-cable/critters/telemetry"
)

// ErrNoOutputDir is returned by SaveSnapshot when the game was created
// without an output directory.
var ErrNoOutputDir = errors.New("no output directory configured")

// Snapshot captures the current arena state.
func (g *Game) Snapshot() *telemetry.Snapshot {
	size, available := g.PoolStats()
	s := &telemetry.Snapshot{
		Version:       telemetry.SnapshotVersion,
		RunID:         g.runID,
		RNGSeed:       g.seed,
		ArenaWidth:    g.bounds.Width,
		ArenaHeight:   g.bounds.Height,
		Tick:          g.tick,
		SimTime:       g.simTime,
		PoolSize:      size,
		PoolAvailable: available,
	}

	for a := range g.pool.All() {
		if a.Active() {
			s.Agents = append(s.Agents, agentState(a, false))
		}
	}
	if d := &g.destroyer; d.Active() {
		s.Agents = append(s.Agents, agentState(d, true))
	}
	return s
}

func agentState(a *components.Agent, destroyer bool) telemetry.AgentState {
	return telemetry.AgentState{
		X:         a.Pos.X,
		Y:         a.Pos.Y,
		VelX:      a.Vel.X,
		VelY:      a.Vel.Y,
		Radius:    a.Radius,
		Resource:  string(a.Resource),
		Destroyer: destroyer,
	}
}

// SaveSnapshot writes the current state into the output directory and
// returns the file path.
func (g *Game) SaveSnapshot() (string, error) {
	dir := g.output.Dir()
	if dir == "" {
		return "", ErrNoOutputDir
	}
	path, err := telemetry.SaveSnapshot(g.Snapshot(), dir)
	if err != nil {
		return "", err
	}
	g.logger.Info("snapshot_saved", "tick", g.tick, "path", path)
	return path, nil
}

// ErrSnapshotMismatch is returned by Restore when a snapshot cannot be
// applied to this game.
var ErrSnapshotMismatch = errors.New("snapshot does not match the game")

// Restore replaces the arena state with the agents in s. Pooled agents are
// reused before any new ones are constructed, and the respawn countdown and
// stats window start over at the snapshot's tick. The game is left untouched
// when s is rejected.
func (g *Game) Restore(s *telemetry.Snapshot) error {
	if s.ArenaWidth != g.bounds.Width || s.ArenaHeight != g.bounds.Height {
		return fmt.Errorf("%w: arena %vx%v, game arena %vx%v",
			ErrSnapshotMismatch, s.ArenaWidth, s.ArenaHeight, g.bounds.Width, g.bounds.Height)
	}
	destroyers := 0
	for i, a := range s.Agents {
		if !finite(a.X) || !finite(a.Y) || !finite(a.VelX) || !finite(a.VelY) || !finite(a.Radius) || a.Radius < 0 {
			return fmt.Errorf("%w: agent %d has invalid state", ErrSnapshotMismatch, i)
		}
		if a.Destroyer {
			destroyers++
		}
	}
	if destroyers > 1 {
		return fmt.Errorf("%w: %d destroyers", ErrSnapshotMismatch, destroyers)
	}

	for a := range g.pool.All() {
		a.Destroy()
	}
	g.pool.Reset()
	g.tree.Clear()
	g.destroyer.Destroy()

	for _, st := range s.Agents {
		pos, vel := r2.Vec{X: st.X, Y: st.Y}, r2.Vec{X: st.VelX, Y: st.VelY}
		key := components.ResourceKey(st.Resource)
		if st.Destroyer {
			g.destroyer.Init(pos, vel, st.Radius, key)
			systems.Clamp(&g.destroyer, g.bounds)
			continue
		}
		a := g.pool.Get()
		a.Init(pos, vel, st.Radius, key)
		systems.Clamp(a, g.bounds)
	}

	g.tick = s.Tick
	g.simTime = s.SimTime
	g.respawner.Rewind()
	g.collector.Reset(g.tick, g.simTime)

	g.logger.Info("snapshot_restored",
		"tick", g.tick,
		"agents", len(s.Agents),
		"from_run", s.RunID,
	)
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
