/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: worker.go
Description: Worker implementation for parallel query execution. Each worker answers
jobs with the shared engine and keeps its own execution counters.
*/

package batch

import (
	"sync"
	"time"

	"github.com/kleascm/bayes-engine/pkg/inference"
	"github.com/kleascm/bayes-engine/pkg/network"
	"github.com/sirupsen/logrus"
)

// Worker answers jobs with one engine
type Worker struct {
	ID     int              // Unique worker identifier
	engine inference.Engine // Engines are stateless and shared between workers
	logger *logrus.Logger

	// Performance tracking
	executions int64
	failures   int64
	busy       time.Duration
	startTime  time.Time

	mu sync.RWMutex
}

// NewWorker creates a new worker instance
func NewWorker(id int, engine inference.Engine, logger *logrus.Logger) *Worker {
	return &Worker{
		ID:        id,
		engine:    engine,
		logger:    logger,
		startTime: time.Now(),
	}
}

// Execute answers job against bn. Failures are recorded in the result, not returned.
func (w *Worker) Execute(bn *network.Network, job *Job) *JobResult {
	result := &JobResult{Job: job, Worker: w.ID, Status: StatusSuccess}

	startTime := time.Now()
	answer, err := w.engine.Ask(bn, job.Query, job.Evidence)
	result.Duration = time.Since(startTime)

	fields := logrus.Fields{
		"worker": w.ID,
		"job":    job.Name,
		"query":  job.Query,
	}

	w.mu.Lock()
	w.executions++
	w.busy += result.Duration
	if err != nil {
		w.failures++
	}
	w.mu.Unlock()

	if err != nil {
		result.Status = StatusError
		result.Error = err.Error()
		result.err = err
		w.logger.WithFields(fields).WithError(err).Warn("Batch query failed")
		return result
	}

	result.Result = answer
	w.logger.WithFields(fields).Debug("Batch query answered")
	return result
}

// GetStats returns worker performance statistics
func (w *Worker) GetStats() map[string]interface{} {
	w.mu.RLock()
	defer w.mu.RUnlock()

	stats := make(map[string]interface{})
	stats["id"] = w.ID
	stats["executions"] = w.executions
	stats["failures"] = w.failures
	stats["busy"] = w.busy
	stats["uptime"] = time.Since(w.startTime)
	return stats
}

// Executions returns the number of jobs this worker answered or failed
func (w *Worker) Executions() int64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.executions
}
