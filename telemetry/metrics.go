package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace  = "critters"
	eventLabel = "event"
	phaseLabel = "phase"
)

// Event label values.
const (
	EventElimination    = "elimination"
	EventCollision      = "collision"
	EventRespawn        = "respawn"
	EventInsertMiss     = "insert_miss"
	EventReturnRejected = "return_rejected"
	EventRestart        = "restart"
)

var (
	ticksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ticks_total",
		Help:      "The number of simulation ticks run.",
	})

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_total",
		Help:      "The number of simulation events by type.",
	}, []string{eventLabel})

	activeAgents = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_agents",
		Help:      "The number of active pooled agents.",
	})

	poolSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "pool_size",
		Help:      "The number of agents ever constructed by the pool.",
	})

	treeNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "quadtree_nodes",
		Help:      "The number of quadtree nodes after the last rebuild.",
	})

	phaseSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "phase_seconds",
		Help:      "Average duration of each tick phase over a perf window.",
		Buckets:   prometheus.ExponentialBuckets(1e-7, 4, 10),
	}, []string{phaseLabel})
)

// InstrumentTick counts one simulation tick.
func InstrumentTick() {
	ticksTotal.Inc()
}

// InstrumentEvents adds n events of the given type.
func InstrumentEvents(event string, n int) {
	if n <= 0 {
		return
	}
	eventsTotal.With(prometheus.Labels{eventLabel: event}).Add(float64(n))
}

// InstrumentPopulation sets the population gauges.
func InstrumentPopulation(active, pooled, nodes int) {
	activeAgents.Set(float64(active))
	poolSize.Set(float64(pooled))
	treeNodes.Set(float64(nodes))
}

// InstrumentPerf observes the average phase durations of a perf window.
// Empty windows are skipped.
func InstrumentPerf(s PerfStats) {
	if s.Samples == 0 {
		return
	}
	for _, ph := range Phases {
		phaseSeconds.With(prometheus.Labels{phaseLabel: ph.String()}).Observe(s.PhaseAvg[ph].Seconds())
	}
}

// NewMetricsServer returns an HTTP server exposing /metrics on addr. The
// caller starts it with ListenAndServe and stops it with Shutdown.
func NewMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
