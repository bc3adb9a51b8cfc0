/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics.go
Description: In-memory query metrics for the inference engines. Aggregates per-algorithm
counters, latency and factor sizes from reported queries and raises alerts when a query
exceeds the configured latency or factor size thresholds.
*/

package monitoring

import (
	"sync"
	"time"

	"github.com/kleascm/bayes-engine/pkg/inference"
	"github.com/kleascm/bayes-engine/pkg/network"
	"github.com/sirupsen/logrus"
)

// AlgorithmMetrics aggregates the queries answered by one algorithm
type AlgorithmMetrics struct {
	Algorithm        string        `json:"algorithm"`
	Queries          int64         `json:"queries"`
	Failures         int64         `json:"failures"`
	TotalElapsed     time.Duration `json:"total_elapsed"`
	MaxElapsed       time.Duration `json:"max_elapsed"`
	TotalOperations  int64         `json:"total_operations"`
	PeakFactorSize   int           `json:"peak_factor_size"`
	LastQuery        string        `json:"last_query"`
	LastQueryAt      time.Time     `json:"last_query_at"`
	LastFailureError string        `json:"last_failure_error,omitempty"`
}

// AverageElapsed returns the mean latency of successful queries
func (m *AlgorithmMetrics) AverageElapsed() time.Duration {
	if m.Queries == 0 {
		return 0
	}
	return m.TotalElapsed / time.Duration(m.Queries)
}

// Alert records a query that crossed a threshold
type Alert struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"` // slow_query, large_factor
	Algorithm string    `json:"algorithm"`
	Query     string    `json:"query"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
}

// Thresholds bound what counts as an expensive query. Zero disables a check.
type Thresholds struct {
	SlowQuery   time.Duration `json:"slow_query" mapstructure:"slow_query"`
	LargeFactor int           `json:"large_factor" mapstructure:"large_factor"`
}

// Snapshot is a point-in-time copy of the collected metrics
type Snapshot struct {
	StartTime  time.Time                    `json:"start_time"`
	Uptime     time.Duration                `json:"uptime"`
	Queries    int64                        `json:"queries"`
	Failures   int64                        `json:"failures"`
	Algorithms map[string]*AlgorithmMetrics `json:"algorithms"`
	Alerts     []Alert                      `json:"alerts"`
}

// QueryMetrics collects metrics from reported queries. It implements
// inference.Reporter and is safe for concurrent use.
type QueryMetrics struct {
	startTime  time.Time
	thresholds Thresholds
	algorithms map[string]*AlgorithmMetrics
	alerts     []Alert
	maxAlerts  int
	mu         sync.RWMutex
	logger     *logrus.Logger
}

// NewQueryMetrics creates a collector. A nil logger disables alert logging.
func NewQueryMetrics(thresholds Thresholds, logger *logrus.Logger) *QueryMetrics {
	return &QueryMetrics{
		startTime:  time.Now(),
		thresholds: thresholds,
		algorithms: make(map[string]*AlgorithmMetrics),
		maxAlerts:  1000,
		logger:     logger,
	}
}

// algorithm returns the entry for name, creating it. Caller holds mu.
func (qm *QueryMetrics) algorithm(name string) *AlgorithmMetrics {
	m, ok := qm.algorithms[name]
	if !ok {
		m = &AlgorithmMetrics{Algorithm: name}
		qm.algorithms[name] = m
	}
	return m
}

// OnQueryCompleted records a successful query
func (qm *QueryMetrics) OnQueryCompleted(result *inference.QueryResult) {
	qm.mu.Lock()
	defer qm.mu.Unlock()

	m := qm.algorithm(result.Algorithm)
	m.Queries++
	m.TotalElapsed += result.Stats.Elapsed
	if result.Stats.Elapsed > m.MaxElapsed {
		m.MaxElapsed = result.Stats.Elapsed
	}
	m.TotalOperations += int64(operations(result))
	if result.Stats.PeakFactorSize > m.PeakFactorSize {
		m.PeakFactorSize = result.Stats.PeakFactorSize
	}
	m.LastQuery = result.Query
	m.LastQueryAt = time.Now()

	qm.checkThresholds(result)
}

// OnQueryFailed records a failed query
func (qm *QueryMetrics) OnQueryFailed(algorithm, query string, evidence network.Assignment, err error) {
	qm.mu.Lock()
	defer qm.mu.Unlock()

	m := qm.algorithm(algorithm)
	m.Failures++
	m.LastQuery = query
	m.LastQueryAt = time.Now()
	m.LastFailureError = err.Error()
}

// checkThresholds raises alerts for result. Caller holds mu.
func (qm *QueryMetrics) checkThresholds(result *inference.QueryResult) {
	if qm.thresholds.SlowQuery > 0 && result.Stats.Elapsed > qm.thresholds.SlowQuery {
		qm.addAlert(Alert{
			Timestamp: time.Now(),
			Type:      "slow_query",
			Algorithm: result.Algorithm,
			Query:     result.Query,
			Value:     result.Stats.Elapsed.Seconds(),
			Threshold: qm.thresholds.SlowQuery.Seconds(),
		})
	}
	if qm.thresholds.LargeFactor > 0 && result.Stats.PeakFactorSize > qm.thresholds.LargeFactor {
		qm.addAlert(Alert{
			Timestamp: time.Now(),
			Type:      "large_factor",
			Algorithm: result.Algorithm,
			Query:     result.Query,
			Value:     float64(result.Stats.PeakFactorSize),
			Threshold: float64(qm.thresholds.LargeFactor),
		})
	}
}

func (qm *QueryMetrics) addAlert(alert Alert) {
	if len(qm.alerts) >= qm.maxAlerts {
		qm.alerts = qm.alerts[1:]
	}
	qm.alerts = append(qm.alerts, alert)

	if qm.logger != nil {
		qm.logger.WithFields(logrus.Fields{
			"type":      alert.Type,
			"algorithm": alert.Algorithm,
			"query":     alert.Query,
			"value":     alert.Value,
			"threshold": alert.Threshold,
		}).Warn("Query threshold exceeded")
	}
}

// Snapshot returns a copy of the current metrics
func (qm *QueryMetrics) Snapshot() *Snapshot {
	qm.mu.RLock()
	defer qm.mu.RUnlock()

	snapshot := &Snapshot{
		StartTime:  qm.startTime,
		Uptime:     time.Since(qm.startTime),
		Algorithms: make(map[string]*AlgorithmMetrics, len(qm.algorithms)),
		Alerts:     append([]Alert(nil), qm.alerts...),
	}
	for name, m := range qm.algorithms {
		copied := *m
		snapshot.Algorithms[name] = &copied
		snapshot.Queries += m.Queries
		snapshot.Failures += m.Failures
	}
	return snapshot
}

// Algorithm returns a copy of the metrics for name, or nil if none were reported
func (qm *QueryMetrics) Algorithm(name string) *AlgorithmMetrics {
	qm.mu.RLock()
	defer qm.mu.RUnlock()

	m, ok := qm.algorithms[name]
	if !ok {
		return nil
	}
	copied := *m
	return &copied
}

// operations is the algorithm's own cost counter
func operations(result *inference.QueryResult) int {
	if result.Stats.FactorOperations > 0 {
		return result.Stats.FactorOperations
	}
	return result.Stats.Operations
}
