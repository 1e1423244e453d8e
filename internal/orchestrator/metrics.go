package orchestrator

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the orchestrator's Prometheus collectors. A nil *Metrics
// is valid and records nothing, so tests and the CLI can run without a
// registry.
type Metrics struct {
	runsTotal     *prometheus.CounterVec
	runDuration   prometheus.Histogram
	stageDuration *prometheus.HistogramVec
	tablesSkipped *prometheus.CounterVec
	domainsRun    *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "erpinsight",
			Subsystem: "orchestrator",
			Name:      "runs_total",
			Help:      "Analysis runs by outcome.",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "erpinsight",
			Subsystem: "orchestrator",
			Name:      "run_duration_seconds",
			Help:      "End to end analysis run duration.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "erpinsight",
			Subsystem: "orchestrator",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"stage"}),
		tablesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "erpinsight",
			Subsystem: "orchestrator",
			Name:      "tables_skipped_total",
			Help:      "Uploaded tables excluded from analysis, by reason.",
		}, []string{"reason"}),
		domainsRun: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "erpinsight",
			Subsystem: "orchestrator",
			Name:      "domain_analyses_total",
			Help:      "Domain analyzer executions.",
		}, []string{"domain"}),
	}
	reg.MustRegister(m.runsTotal, m.runDuration, m.stageDuration, m.tablesSkipped, m.domainsRun)
	return m
}

func (m *Metrics) runFinished(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(seconds)
}

func (m *Metrics) stageFinished(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(seconds)
}

func (m *Metrics) tableSkipped(reason string) {
	if m == nil {
		return
	}
	m.tablesSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) domainAnalyzed(d string) {
	if m == nil {
		return
	}
	m.domainsRun.WithLabelValues(d).Inc()
}
