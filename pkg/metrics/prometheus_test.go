package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics_Counters(t *testing.T) {
	m := NewPrometheusMetrics()

	m.RecordRun("1-1", "passed", 20*time.Millisecond)
	m.RecordRun("1-1", "passed", 30*time.Millisecond)
	m.RecordRun("1-1", "failed", 10*time.Millisecond)
	m.RecordAssertion("1-1", "expression", OutcomePassed)
	m.RecordAssertion("1-1", "expression", OutcomeError)
	m.RecordCompletion("1-1")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.runs.WithLabelValues("1-1", "passed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("1-1", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.assertions.WithLabelValues("1-1", "expression", OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.completions.WithLabelValues("1-1")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.runDuration))
}

func TestPrometheusMetrics_ActiveRuns(t *testing.T) {
	m := NewPrometheusMetrics()
	m.RunStarted()
	m.RunStarted()
	m.RunFinished()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeRuns))
}

func TestPrometheusMetrics_IndependentRegistries(t *testing.T) {
	a := NewPrometheusMetrics()
	b := NewPrometheusMetrics()
	a.RecordCompletion("2-1")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.completions.WithLabelValues("2-1")))
	assert.NotSame(t, a.Registry(), b.Registry())
}

func TestPrometheusMetrics_Handler(t *testing.T) {
	m := NewPrometheusMetrics()
	m.RecordRun("3-1", "passed", time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `learnfil_runs_total{lesson="3-1",status="passed"} 1`)
	assert.Contains(t, string(body), "learnfil_active_runs 0")
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomePassed, Outcome(true, ""))
	assert.Equal(t, OutcomeFailed, Outcome(false, ""))
	assert.Equal(t, OutcomeError, Outcome(false, "boom"))
}

func TestNoopMetrics(t *testing.T) {
	var r Recorder = NoopMetrics{}
	r.RecordRun("x", "passed", 0)
	r.RecordAssertion("x", "k", OutcomePassed)
	r.RecordCompletion("x")
	r.RunStarted()
	r.RunFinished()
}
