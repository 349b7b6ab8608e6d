// Package metrics exports Prometheus metrics for diagnosis runs.
package metrics

import (
	"time"

	"github.com/logdoctor/logdoctor-go/pkg/logdoctor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "logdoctor"

// Observer records rule outcomes and run results. It implements
// logdoctor.Observer.
type Observer struct {
	// RuleEvaluations counts rule evaluations.
	// Labels: rule, outcome (matched, no_match, defect)
	RuleEvaluations *prometheus.CounterVec

	// RuleDuration tracks how long single rule evaluations take.
	// Labels: rule
	RuleDuration *prometheus.HistogramVec

	// Diagnoses counts finished runs by the highest severity reported.
	// Labels: severity (none, medium, high)
	Diagnoses *prometheus.CounterVec

	// DiagnosisDuration tracks whole-run duration.
	DiagnosisDuration prometheus.Histogram

	// Reports counts reports produced.
	// Labels: severity
	Reports *prometheus.CounterVec

	// IngestErrors counts rejected inputs.
	// Labels: reason (too_large, not_text, not_allowed, other)
	IngestErrors *prometheus.CounterVec
}

// New registers the metrics with reg. Use prometheus.DefaultRegisterer for
// the process-wide registry.
func New(reg prometheus.Registerer) *Observer {
	factory := promauto.With(reg)
	return &Observer{
		RuleEvaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "rule",
				Name:      "evaluations_total",
				Help:      "Total number of rule evaluations by outcome",
			},
			[]string{"rule", "outcome"},
		),
		RuleDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "rule",
				Name:      "duration_seconds",
				Help:      "Duration of single rule evaluations in seconds",
				Buckets:   []float64{.00001, .0001, .001, .01, .1, 1},
			},
			[]string{"rule"},
		),
		Diagnoses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "diagnoses_total",
				Help:      "Total number of diagnosis runs by highest reported severity",
			},
			[]string{"severity"},
		),
		DiagnosisDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "diagnosis_duration_seconds",
				Help:      "Duration of whole diagnosis runs in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
		Reports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reports_total",
				Help:      "Total number of reports produced by severity",
			},
			[]string{"severity"},
		),
		IngestErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ingest",
				Name:      "errors_total",
				Help:      "Total number of rejected inputs by reason",
			},
			[]string{"reason"},
		),
	}
}

// ObserveRule implements logdoctor.Observer.
func (o *Observer) ObserveRule(rule string, outcome logdoctor.Outcome, elapsed time.Duration) {
	o.RuleEvaluations.WithLabelValues(rule, outcome.String()).Inc()
	o.RuleDuration.WithLabelValues(rule).Observe(elapsed.Seconds())
}

// ObserveDiagnosis implements logdoctor.Observer. A run with no reports is
// counted under severity "none".
func (o *Observer) ObserveDiagnosis(reports []logdoctor.Report, elapsed time.Duration) {
	o.Diagnoses.WithLabelValues(logdoctor.MaxSeverity(reports).String()).Inc()
	o.DiagnosisDuration.Observe(elapsed.Seconds())
	for _, r := range reports {
		o.Reports.WithLabelValues(r.Severity.String()).Inc()
	}
}

// ObserveIngestError counts a rejected input.
func (o *Observer) ObserveIngestError(reason string) {
	o.IngestErrors.WithLabelValues(reason).Inc()
}
