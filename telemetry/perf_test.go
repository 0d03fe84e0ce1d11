package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for range 5 {
		pc.StartTick()
		pc.StartPhase(PhaseRebuild)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseIntegrate)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	assert.Equal(t, 5, stats.Samples)
	assert.Positive(t, stats.AvgTickDuration)
	assert.GreaterOrEqual(t, stats.PhaseAvg[PhaseRebuild], 100*time.Microsecond)
	assert.GreaterOrEqual(t, stats.PhaseAvg[PhaseIntegrate], 200*time.Microsecond)
	assert.Zero(t, stats.PhaseAvg[PhaseCollide], "untimed phase")
	assert.LessOrEqual(t, stats.MinTickDuration, stats.AvgTickDuration)
	assert.GreaterOrEqual(t, stats.MaxTickDuration, stats.AvgTickDuration)
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(3)

	tick := func(d time.Duration) {
		pc.StartTick()
		pc.StartPhase(PhaseCollide)
		time.Sleep(d)
		pc.EndTick()
	}

	// Slow ticks first, then enough fast ones to push them all out.
	for range 3 {
		tick(5 * time.Millisecond)
	}
	for range 3 {
		tick(0)
	}

	stats := pc.Stats()
	assert.Equal(t, 3, stats.Samples)
	assert.Less(t, stats.MaxTickDuration, 5*time.Millisecond, "evicted samples leave the window sums")
	assert.Less(t, stats.PhaseAvg[PhaseCollide], 5*time.Millisecond)
	assert.Positive(t, stats.TicksPerSecond)
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for range 5 {
		pc.StartTick()
		pc.StartPhase(PhaseClear)
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase(PhaseCollide)
		time.Sleep(500 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	assert.Greater(t, stats.PhasePct[PhaseCollide], stats.PhasePct[PhaseClear])

	var sum float64
	for _, pct := range stats.PhasePct {
		sum += pct
	}
	assert.LessOrEqual(t, sum, 100.0+1e-9)
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	assert.Zero(t, stats.Samples)
	assert.Zero(t, stats.AvgTickDuration)
	assert.Equal(t, PhaseDurations{}, stats.PhaseAvg)
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	assert.GreaterOrEqual(t, stats.FrameDuration, 15*time.Millisecond)
	assert.Positive(t, stats.FPS)
	assert.Less(t, stats.FPS, 70.0)
}

func TestPerfCollector_RecordingDoesNotAllocate(t *testing.T) {
	pc := NewPerfCollector(8)

	allocs := testing.AllocsPerRun(100, func() {
		pc.StartTick()
		for _, ph := range Phases {
			pc.StartPhase(ph)
		}
		pc.EndTick()
		_ = pc.Stats()
	})
	assert.Zero(t, allocs)
}

func TestPhaseString(t *testing.T) {
	names := make([]string, 0, len(Phases))
	for _, ph := range Phases {
		names = append(names, ph.String())
	}
	require.Equal(t, []string{"clear", "integrate", "eliminate", "rebuild", "collide", "respawn", "telemetry"}, names)
	assert.Equal(t, "unknown", Phase(200).String())
}

func TestPerfStats_ToCSV(t *testing.T) {
	stats := PerfStats{AvgTickDuration: 250 * time.Microsecond}
	stats.PhasePct[PhaseCollide] = 40
	stats.PhasePct[PhaseRebuild] = 25

	row := stats.ToCSV(600)

	assert.Equal(t, int64(600), row.WindowEnd)
	assert.Equal(t, int64(250), row.AvgTickUS)
	assert.Equal(t, 40.0, row.CollidePct)
	assert.Equal(t, 25.0, row.RebuildPct)
	assert.Zero(t, row.RespawnPct)
}
