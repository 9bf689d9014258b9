package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersRecord(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementVerification("passed")
	m.IncrementVerification("passed")
	m.IncrementVerification("rejected")
	m.IncrementOutcome("lookup", "902")
	m.IncrementTokensIssued()
	m.IncrementLogEntries("ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Verifications.WithLabelValues("passed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Verifications.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WorkflowOutcomes.WithLabelValues("lookup", "902")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TokensIssued))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LogEntriesAppended.WithLabelValues("ok")))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementVerification("passed")
		m.ObserveVerification(time.Now())
		m.IncrementOutcome("register", "ok")
		m.IncrementTokensIssued()
		m.IncrementLogEntries("error")
		m.ObserveRequest("/get", "GET", time.Millisecond)
	})
}
