package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the service. All methods are
// safe to call on a nil receiver so tests can pass nil.
type Metrics struct {
	Verifications       *prometheus.CounterVec
	VerificationLatency prometheus.Histogram
	WorkflowOutcomes    *prometheus.CounterVec
	TokensIssued        prometheus.Counter
	LogEntriesAppended  *prometheus.CounterVec
	RequestLatency      *prometheus.HistogramVec
}

// New creates and registers all collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Verifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "airdrop_verifications_total",
			Help: "reCAPTCHA verification attempts by outcome",
		}, []string{"outcome"}), // outcome: "passed", "rejected", "transport_error"

		VerificationLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "airdrop_verification_duration_seconds",
			Help:    "Round-trip duration of calls to the verification endpoint",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		WorkflowOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "airdrop_workflow_outcomes_total",
			Help: "Register and lookup outcomes by flow and result code",
		}, []string{"flow", "result"}),

		TokensIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "airdrop_tokens_issued_total",
			Help: "Audit bearer tokens issued",
		}),

		LogEntriesAppended: f.NewCounterVec(prometheus.CounterOpts{
			Name: "airdrop_log_entries_total",
			Help: "Audit log appends by result",
		}, []string{"result"}),

		RequestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "airdrop_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"route", "method"}),
	}
}

func (m *Metrics) IncrementVerification(outcome string) {
	if m != nil {
		m.Verifications.WithLabelValues(outcome).Inc()
	}
}

// ObserveVerification records a verification round trip started at start.
func (m *Metrics) ObserveVerification(start time.Time) {
	if m != nil {
		m.VerificationLatency.Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) IncrementOutcome(flow, result string) {
	if m != nil {
		m.WorkflowOutcomes.WithLabelValues(flow, result).Inc()
	}
}

func (m *Metrics) IncrementTokensIssued() {
	if m != nil {
		m.TokensIssued.Inc()
	}
}

func (m *Metrics) IncrementLogEntries(result string) {
	if m != nil {
		m.LogEntriesAppended.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) ObserveRequest(route, method string, d time.Duration) {
	if m != nil {
		m.RequestLatency.WithLabelValues(route, method).Observe(d.Seconds())
	}
}
