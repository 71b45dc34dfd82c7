package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRun(t *testing.T) {
	m := New()
	m.ObserveRun(true, 30, 6, 1.0, 2*time.Millisecond)
	m.ObserveRun(false, 4, 15, 5.0/31, time.Millisecond)
	m.IncrementFailed()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues(OutcomeSaturated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues(OutcomeCompleted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Runs.WithLabelValues(OutcomeFailed)))
	assert.Equal(t, 34.0, testutil.ToFloat64(m.Adoptions))
	assert.Equal(t, 2, testutil.CollectAndCount(m.RunLatency))
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.IncrementFailed()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Runs.WithLabelValues(OutcomeFailed)))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRun(true, 1, 1, 1, time.Second)
		m.IncrementFailed()
		m.SetStoredRuns(3)
	})
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.SetStoredRuns(2)
	m.ObserveRun(false, 1, 3, 0.1, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "diffusion_stored_runs 2")
	assert.Contains(t, string(body), `diffusion_runs_total{outcome="completed"} 1`)
}
