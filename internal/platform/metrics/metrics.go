package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ValidationRuns      *prometheus.CounterVec
	ValidationDuration  prometheus.Histogram
	RuleResults         *prometheus.CounterVec
	OracleFailures      prometheus.Counter
	RecordWriteFailures prometheus.Counter
	RulesCreated        prometheus.Counter
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		ValidationRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lcvet_validation_runs_total",
			Help: "Validation runs by overall status",
		}, []string{"status"}),
		ValidationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "lcvet_validation_run_duration_seconds",
			Help:    "Duration of full validation runs",
			Buckets: prometheus.DefBuckets,
		}),
		RuleResults: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "lcvet_rule_results_total",
			Help: "Per-rule verdicts by status and rule kind",
		}, []string{"status", "kind"}),
		OracleFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lcvet_oracle_failures_total",
			Help: "Judgment oracle calls that errored and were folded into warnings",
		}),
		RecordWriteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lcvet_record_write_failures_total",
			Help: "Best-effort validation record writes that failed",
		}),
		RulesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "lcvet_rules_created_total",
			Help: "Rules created via ingestion or the API",
		}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lcvet_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// ObserveRun records the outcome and duration of one validation run.
func (m *Metrics) ObserveRun(status string, seconds float64) {
	if m == nil {
		return
	}
	m.ValidationRuns.WithLabelValues(status).Inc()
	m.ValidationDuration.Observe(seconds)
}

// ObserveRuleResult counts one per-rule verdict.
func (m *Metrics) ObserveRuleResult(status, kind string) {
	if m == nil {
		return
	}
	m.RuleResults.WithLabelValues(status, kind).Inc()
}

// IncOracleFailure counts one recovered oracle failure.
func (m *Metrics) IncOracleFailure() {
	if m == nil {
		return
	}
	m.OracleFailures.Inc()
}

// IncRecordWriteFailure counts one failed audit record write.
func (m *Metrics) IncRecordWriteFailure() {
	if m == nil {
		return
	}
	m.RecordWriteFailures.Inc()
}

// AddRulesCreated counts rules created during ingestion.
func (m *Metrics) AddRulesCreated(n int) {
	if m == nil {
		return
	}
	m.RulesCreated.Add(float64(n))
}
