package telemetry

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentEvents(t *testing.T) {
	counter := eventsTotal.With(prometheus.Labels{eventLabel: EventCollision})
	before := testutil.ToFloat64(counter)

	InstrumentEvents(EventCollision, 3)
	InstrumentEvents(EventCollision, 0)
	InstrumentEvents(EventCollision, -2)

	assert.Equal(t, before+3, testutil.ToFloat64(counter))
}

func TestInstrumentPopulation(t *testing.T) {
	InstrumentPopulation(42, 50, 13)

	assert.Equal(t, 42.0, testutil.ToFloat64(activeAgents))
	assert.Equal(t, 50.0, testutil.ToFloat64(poolSize))
	assert.Equal(t, 13.0, testutil.ToFloat64(treeNodes))
}

func TestMetricsServerExposesSeries(t *testing.T) {
	InstrumentTick()
	var avg PhaseDurations
	avg[PhaseCollide] = time.Microsecond
	InstrumentPerf(PerfStats{Samples: 1, PhaseAvg: avg})

	srv := httptest.NewServer(NewMetricsServer(":0").Handler)
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "critters_ticks_total")
	assert.Contains(t, string(body), `critters_phase_seconds_count{phase="collide"}`)
}

func TestInstrumentPerfSkipsEmptyWindow(t *testing.T) {
	before := testutil.CollectAndCount(phaseSeconds)

	InstrumentPerf(PerfStats{})

	assert.Equal(t, before, testutil.CollectAndCount(phaseSeconds))
}
