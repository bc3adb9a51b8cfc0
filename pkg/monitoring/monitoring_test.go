/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: monitoring_test.go
Description: Tests for the query reporters and the in-memory query metrics.
*/

package monitoring

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kleascm/bayes-engine/pkg/inference"
	"github.com/kleascm/bayes-engine/pkg/logging"
	"github.com/kleascm/bayes-engine/pkg/network"
	"github.com/kleascm/bayes-engine/pkg/parser"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var johnCalls = network.Assignment{"JohnCalls": network.BoolValue(true)}

func syntheticResult(algorithm string, elapsed time.Duration, peak int) *inference.QueryResult {
	return &inference.QueryResult{
		Algorithm: algorithm,
		Query:     "Burglary",
		Distribution: []inference.Outcome{
			{Value: network.BoolValue(true), Probability: 0.25},
			{Value: network.BoolValue(false), Probability: 0.75},
		},
		Stats: inference.Statistics{
			FactorOperations: 6,
			PeakFactorSize:   peak,
			Elapsed:          elapsed,
		},
	}
}

// TestLoggerReporter tests the logged fields for completed and failed queries
func TestLoggerReporter(t *testing.T) {
	logger, err := logging.NewLogger(&logging.LoggerConfig{
		Level:   logging.LogLevelInfo,
		Format:  logging.LogFormatText,
		Console: io.Discard,
	})
	require.NoError(t, err)
	defer logger.Close()
	hook := test.NewLocal(logger.GetLogger())
	engine := inference.WithReporting(inference.NewEliminationEngine(), NewLoggerReporter(logger))
	bn := parser.BurglaryNetwork()

	_, err = engine.Ask(bn, "Burglary", johnCalls)
	require.NoError(t, err)
	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "Query answered", entry.Message)
	assert.Equal(t, "elimination", entry.Data["algorithm"])
	assert.Equal(t, "JohnCalls=true", entry.Data["evidence"])
	assert.Equal(t, "false", entry.Data["most_probable"])

	_, err = engine.Ask(bn, "Ghost", nil)
	require.Error(t, err)
	require.Len(t, hook.Entries, 2)
	entry = hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "Query failed", entry.Message)
	assert.Contains(t, entry.Data["error"], "Ghost")
	assert.Equal(t, "{}", entry.Data["evidence"])
}

// TestPrometheusReporter tests counters and histograms per algorithm
func TestPrometheusReporter(t *testing.T) {
	reporter := NewPrometheusReporter(nil)
	bn := parser.BurglaryNetwork()
	enumeration := inference.WithReporting(inference.NewEnumerationEngine(), reporter)
	elimination := inference.WithReporting(inference.NewEliminationEngine(), reporter)

	for i := 0; i < 3; i++ {
		_, err := enumeration.Ask(bn, "Burglary", johnCalls)
		require.NoError(t, err)
	}
	_, err := elimination.Ask(bn, "Burglary", johnCalls)
	require.NoError(t, err)
	_, err = elimination.Ask(bn, "Burglary", network.Assignment{"Burglary": network.BoolValue(true)})
	require.Error(t, err)

	assert.Equal(t, 3.0, testutil.ToFloat64(reporter.QueriesTotal.WithLabelValues("enumeration", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reporter.QueriesTotal.WithLabelValues("elimination", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reporter.QueriesTotal.WithLabelValues("elimination", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(reporter.QueryDuration))
	// Only elimination reports a factor size
	assert.Equal(t, 1, testutil.CollectAndCount(reporter.PeakFactorSize))
}

// TestWriteTextfile tests the textfile export
func TestWriteTextfile(t *testing.T) {
	reporter := NewPrometheusReporter(nil)
	reporter.OnQueryCompleted(syntheticResult("elimination", time.Millisecond, 8))

	path := filepath.Join(t.TempDir(), "bayes.prom")
	require.NoError(t, reporter.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.Contains(text, `bayes_queries_total{algorithm="elimination",status="success"} 1`))
	assert.Contains(t, text, "bayes_query_duration_seconds_bucket")
	assert.Contains(t, text, "bayes_peak_factor_size_count")

	assert.Error(t, reporter.WriteTextfile(filepath.Join(t.TempDir(), "missing", "bayes.prom")))
}

// TestQueryMetrics tests aggregation per algorithm
func TestQueryMetrics(t *testing.T) {
	metrics := NewQueryMetrics(Thresholds{}, nil)
	metrics.OnQueryCompleted(syntheticResult("elimination", 2*time.Millisecond, 8))
	metrics.OnQueryCompleted(syntheticResult("elimination", 4*time.Millisecond, 4))
	metrics.OnQueryFailed("enumeration", "Ghost", nil, errors.New("unknown variable"))

	elimination := metrics.Algorithm("elimination")
	require.NotNil(t, elimination)
	assert.Equal(t, int64(2), elimination.Queries)
	assert.Equal(t, int64(12), elimination.TotalOperations)
	assert.Equal(t, 8, elimination.PeakFactorSize)
	assert.Equal(t, 4*time.Millisecond, elimination.MaxElapsed)
	assert.Equal(t, 3*time.Millisecond, elimination.AverageElapsed())

	enumeration := metrics.Algorithm("enumeration")
	require.NotNil(t, enumeration)
	assert.Equal(t, int64(1), enumeration.Failures)
	assert.Equal(t, "unknown variable", enumeration.LastFailureError)
	assert.Zero(t, enumeration.AverageElapsed())

	assert.Nil(t, metrics.Algorithm("sampling"))

	snapshot := metrics.Snapshot()
	assert.Equal(t, int64(2), snapshot.Queries)
	assert.Equal(t, int64(1), snapshot.Failures)
	assert.Len(t, snapshot.Algorithms, 2)
	assert.Empty(t, snapshot.Alerts)
}

// TestQueryMetricsAlerts tests threshold alerts and their log lines
func TestQueryMetricsAlerts(t *testing.T) {
	logger, hook := test.NewNullLogger()
	metrics := NewQueryMetrics(Thresholds{SlowQuery: time.Millisecond, LargeFactor: 16}, logger)

	metrics.OnQueryCompleted(syntheticResult("elimination", 500*time.Microsecond, 8))
	assert.Empty(t, metrics.Snapshot().Alerts)

	metrics.OnQueryCompleted(syntheticResult("elimination", 5*time.Millisecond, 32))
	alerts := metrics.Snapshot().Alerts
	require.Len(t, alerts, 2)
	assert.Equal(t, "slow_query", alerts[0].Type)
	assert.Equal(t, "large_factor", alerts[1].Type)
	assert.Equal(t, 32.0, alerts[1].Value)
	assert.Len(t, hook.Entries, 2)
	assert.Equal(t, "Query threshold exceeded", hook.LastEntry().Message)
}

// TestQueryMetricsConcurrent tests reporting from several goroutines
func TestQueryMetricsConcurrent(t *testing.T) {
	metrics := NewQueryMetrics(Thresholds{}, nil)
	engine := inference.WithReporting(inference.NewEliminationEngine(), metrics)
	bn := parser.BurglaryNetwork()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_, _ = engine.Ask(bn, "Alarm", johnCalls)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(80), metrics.Snapshot().Queries)
}
