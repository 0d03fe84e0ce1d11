package telemetry

import (
	"log/slog"
	"time"
)

// Phase identifies one stage of the tick pipeline.
type Phase uint8

// Tick phases in pipeline order.
const (
	PhaseClear Phase = iota
	PhaseIntegrate
	PhaseEliminate
	PhaseRebuild
	PhaseCollide
	PhaseRespawn
	PhaseTelemetry
	numPhases
)

var phaseNames = [numPhases]string{
	PhaseClear:     "clear",
	PhaseIntegrate: "integrate",
	PhaseEliminate: "eliminate",
	PhaseRebuild:   "rebuild",
	PhaseCollide:   "collide",
	PhaseRespawn:   "respawn",
	PhaseTelemetry: "telemetry",
}

// Phases lists every phase in pipeline order.
var Phases = [numPhases]Phase{
	PhaseClear, PhaseIntegrate, PhaseEliminate,
	PhaseRebuild, PhaseCollide, PhaseRespawn, PhaseTelemetry,
}

func (p Phase) String() string {
	if p < numPhases {
		return phaseNames[p]
	}
	return "unknown"
}

// PhaseDurations holds one duration per phase, indexed by Phase.
type PhaseDurations [numPhases]time.Duration

type tickSample struct {
	total  time.Duration
	phases PhaseDurations
}

// PerfCollector times tick phases over a rolling window of ticks. It keeps
// running sums so neither recording nor Stats allocates.
type PerfCollector struct {
	ring  []tickSample
	next  int
	count int

	sumTotal  time.Duration
	sumPhases PhaseDurations

	cur        tickSample
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase
	inPhase    bool

	lastFrame time.Time
	frame     time.Duration
}

// NewPerfCollector creates a collector averaging over windowSize ticks
// (60 when windowSize < 1).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{ring: make([]tickSample, windowSize)}
}

// StartTick begins timing a tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = time.Now()
	p.cur = tickSample{}
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := time.Now()
	p.closePhase(now)
	p.phase = phase
	p.phaseStart = now
	p.inPhase = phase < numPhases
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.inPhase {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	}
	p.inPhase = false
}

// EndTick closes the running phase and records the tick in the window,
// evicting the oldest sample once the window is full.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.cur.total = now.Sub(p.tickStart)

	if p.count == len(p.ring) {
		old := &p.ring[p.next]
		p.sumTotal -= old.total
		for i := range old.phases {
			p.sumPhases[i] -= old.phases[i]
		}
	} else {
		p.count++
	}

	p.ring[p.next] = p.cur
	p.sumTotal += p.cur.total
	for i := range p.cur.phases {
		p.sumPhases[i] += p.cur.phases[i]
	}
	p.next = (p.next + 1) % len(p.ring)
}

// RecordFrame records the time since the previous call as the frame time.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frame = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats summarises the current window.
type PerfStats struct {
	Samples int

	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	TicksPerSecond  float64

	PhaseAvg PhaseDurations
	PhasePct [numPhases]float64 // share of the average tick, 0-100

	FrameDuration time.Duration
	FPS           float64
}

// Stats returns the window averages.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{Samples: p.count, FrameDuration: p.frame}
	if p.frame > 0 {
		s.FPS = float64(time.Second) / float64(p.frame)
	}
	if p.count == 0 {
		return s
	}

	n := time.Duration(p.count)
	s.AvgTickDuration = p.sumTotal / n
	s.MinTickDuration, s.MaxTickDuration = p.ring[0].total, p.ring[0].total
	for _, t := range p.ring[1:p.count] {
		s.MinTickDuration = min(s.MinTickDuration, t.total)
		s.MaxTickDuration = max(s.MaxTickDuration, t.total)
	}

	for i := range s.PhaseAvg {
		s.PhaseAvg[i] = p.sumPhases[i] / n
		if s.AvgTickDuration > 0 {
			s.PhasePct[i] = float64(s.PhaseAvg[i]) / float64(s.AvgTickDuration) * 100
		}
	}
	if s.AvgTickDuration > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTickDuration)
	}
	return s
}

// LogStats logs the window under the "perf" message.
func (s PerfStats) LogStats() {
	slog.Info("perf", "window", s)
}

// LogValue implements slog.LogValuer. Phases under 0.1% are omitted.
func (s PerfStats) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 5+int(numPhases))
	attrs = append(attrs,
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int("ticks_per_sec", int(s.TicksPerSecond)),
	)
	if s.FPS > 0 {
		attrs = append(attrs, slog.Int("fps", int(s.FPS)))
	}
	for _, ph := range Phases {
		if pct := s.PhasePct[ph]; pct > 0.1 {
			attrs = append(attrs, slog.Float64(ph.String()+"_pct", float64(int(pct*10))/10))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd    int64   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	ClearPct     float64 `csv:"clear_pct"`
	IntegratePct float64 `csv:"integrate_pct"`
	EliminatePct float64 `csv:"eliminate_pct"`
	RebuildPct   float64 `csv:"rebuild_pct"`
	CollidePct   float64 `csv:"collide_pct"`
	RespawnPct   float64 `csv:"respawn_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats into a perf.csv row.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	pct := s.PhasePct
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		ClearPct:     pct[PhaseClear],
		IntegratePct: pct[PhaseIntegrate],
		EliminatePct: pct[PhaseEliminate],
		RebuildPct:   pct[PhaseRebuild],
		CollidePct:   pct[PhaseCollide],
		RespawnPct:   pct[PhaseRespawn],
		TelemetryPct: pct[PhaseTelemetry],
	}
}
