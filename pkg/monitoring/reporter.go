/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reporter.go
Description: Query reporters for inference telemetry. LoggerReporter writes one structured
log line per query, PrometheusReporter exports query counters, latency and factor sizes
to a Prometheus registry that can be dumped to a textfile for node exporters.
*/

package monitoring

import (
	"fmt"

	"github.com/kleascm/bayes-engine/pkg/inference"
	"github.com/kleascm/bayes-engine/pkg/logging"
	"github.com/kleascm/bayes-engine/pkg/network"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LoggerReporter logs query events through the engine logger
type LoggerReporter struct {
	logger *logging.Logger
}

// NewLoggerReporter creates a new LoggerReporter
func NewLoggerReporter(logger *logging.Logger) *LoggerReporter {
	return &LoggerReporter{logger: logger}
}

// OnQueryCompleted logs the most probable value and the query cost
func (r *LoggerReporter) OnQueryCompleted(result *inference.QueryResult) {
	r.logger.LogQuery(result, nil)
}

// OnQueryFailed logs the failing query
func (r *LoggerReporter) OnQueryFailed(algorithm, query string, evidence network.Assignment, err error) {
	r.logger.LogQueryFailure(algorithm, query, err, map[string]interface{}{
		"evidence": evidence.String(),
	})
}

// PrometheusReporter exports query metrics to a Prometheus registry
type PrometheusReporter struct {
	registry *prometheus.Registry

	QueriesTotal   *prometheus.CounterVec
	QueryDuration  *prometheus.HistogramVec
	QueryCost      *prometheus.HistogramVec
	PeakFactorSize *prometheus.HistogramVec
}

// NewPrometheusReporter registers the query metrics on registry. A nil
// registry gets a fresh one.
func NewPrometheusReporter(registry *prometheus.Registry) *PrometheusReporter {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	r := &PrometheusReporter{registry: registry}

	r.QueriesTotal = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "bayes_queries_total",
			Help: "Total number of inference queries",
		},
		[]string{"algorithm", "status"},
	)

	r.QueryDuration = promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bayes_query_duration_seconds",
			Help:    "Inference query duration in seconds",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1.0},
		},
		[]string{"algorithm"},
	)

	r.QueryCost = promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bayes_query_operations",
			Help:    "Recursive calls or factor operations per query",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
		[]string{"algorithm"},
	)

	r.PeakFactorSize = promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bayes_peak_factor_size",
			Help:    "Largest factor table created by variable elimination",
			Buckets: prometheus.ExponentialBuckets(2, 4, 10),
		},
		[]string{"algorithm"},
	)

	return r
}

// Registry returns the registry the metrics live in
func (r *PrometheusReporter) Registry() *prometheus.Registry {
	return r.registry
}

// OnQueryCompleted records a successful query
func (r *PrometheusReporter) OnQueryCompleted(result *inference.QueryResult) {
	r.QueriesTotal.WithLabelValues(result.Algorithm, "success").Inc()
	r.QueryDuration.WithLabelValues(result.Algorithm).Observe(result.Stats.Elapsed.Seconds())
	r.QueryCost.WithLabelValues(result.Algorithm).Observe(float64(operations(result)))
	if result.Stats.PeakFactorSize > 0 {
		r.PeakFactorSize.WithLabelValues(result.Algorithm).Observe(float64(result.Stats.PeakFactorSize))
	}
}

// OnQueryFailed records a failed query
func (r *PrometheusReporter) OnQueryFailed(algorithm, query string, evidence network.Assignment, err error) {
	r.QueriesTotal.WithLabelValues(algorithm, "error").Inc()
}

// WriteTextfile writes the registry in the text exposition format
func (r *PrometheusReporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
