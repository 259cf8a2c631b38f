// Package metrics exports fee engine metrics to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements fee.MetricsCollector for Prometheus.
type PrometheusCollector struct {
	fees        *prometheus.CounterVec
	skipped     *prometheus.CounterVec
	conversions *prometheus.CounterVec
	overages    prometheus.Counter
	errors      *prometheus.CounterVec
	runDuration prometheus.Histogram
}

// NewPrometheusCollector creates a new Prometheus metrics collector.
func NewPrometheusCollector(namespace string) *PrometheusCollector {
	return &PrometheusCollector{
		fees: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fees_total",
				Help:      "Total number of fees calculated per kind",
			},
			[]string{"kind"},
		),
		skipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "skipped_records_total",
				Help:      "Total number of records that matched no fee rule",
			},
			[]string{"reason"},
		),
		conversions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conversions_total",
				Help:      "Total number of currency conversions",
			},
			[]string{"from", "to"},
		),
		overages: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "free_credit_overages_total",
				Help:      "Total number of private withdrawals that exceeded the free credit",
			},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of errors per operation",
			},
			[]string{"operation", "type"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of fee calculation runs",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
		),
	}
}

// Register registers all metrics with the given registerer.
func (pc *PrometheusCollector) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		pc.fees,
		pc.skipped,
		pc.conversions,
		pc.overages,
		pc.errors,
		pc.runDuration,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (pc *PrometheusCollector) RecordFee(kind string) {
	pc.fees.WithLabelValues(kind).Inc()
}

func (pc *PrometheusCollector) RecordSkipped(reason string) {
	pc.skipped.WithLabelValues(reason).Inc()
}

func (pc *PrometheusCollector) RecordConversion(from, to string) {
	pc.conversions.WithLabelValues(from, to).Inc()
}

func (pc *PrometheusCollector) RecordOverage() {
	pc.overages.Inc()
}

func (pc *PrometheusCollector) RecordRunDuration(duration time.Duration) {
	pc.runDuration.Observe(duration.Seconds())
}

func (pc *PrometheusCollector) RecordError(operation, errType string) {
	pc.errors.WithLabelValues(operation, errType).Inc()
}
