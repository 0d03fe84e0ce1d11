package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int64   `csv:"-"`
	WindowEndTick   int64   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Active        int `csv:"active"`
	PoolSize      int `csv:"pool_size"`
	PoolAvailable int `csv:"pool_available"`

	// Events during window
	Eliminations     int `csv:"eliminations"`
	Collisions       int `csv:"collisions"`
	Respawns         int `csv:"respawns"`
	InsertMisses     int `csv:"insert_misses"`
	ReturnRejections int `csv:"return_rejections"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Spatial index shape after the last rebuild
	TreeNodes int `csv:"tree_nodes"`
	TreeDepth int `csv:"tree_depth"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeSpeedStats returns the mean and population standard deviation of
// the given speeds.
func ComputeSpeedStats(values []float64) (mean, std float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return values[0], 0
	}
	mean, std = stat.PopMeanStdDev(values, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return mean, std
}

// SpeedPercentiles returns the 10th, 50th and 90th percentile speeds.
func SpeedPercentiles(values []float64) (p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("active", s.Active),
		slog.Int("pool_size", s.PoolSize),
		slog.Int("pool_available", s.PoolAvailable),
		slog.Int("eliminations", s.Eliminations),
		slog.Int("collisions", s.Collisions),
		slog.Int("respawns", s.Respawns),
		slog.Int("insert_misses", s.InsertMisses),
		slog.Int("return_rejections", s.ReturnRejections),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Int("tree_nodes", s.TreeNodes),
		slog.Int("tree_depth", s.TreeDepth),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
