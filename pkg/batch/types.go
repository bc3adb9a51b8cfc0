/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: types.go
Description: Core types for batch query execution. Defines jobs, per-job results, run
statistics and the configuration of the worker pool that answers many queries against
one network in parallel.
*/

package batch

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/bayes-engine/pkg/inference"
	"github.com/kleascm/bayes-engine/pkg/network"
)

// Job is a single query to be answered by a worker
type Job struct {
	Index    int                `json:"index"`    // Position in the batch, results keep this order
	Name     string             `json:"name"`     // Label shown in reports
	Query    string             `json:"query"`    // Query variable
	Evidence network.Assignment `json:"evidence"` // Observed variables
}

// JobStatus represents the outcome of a job
type JobStatus string

const (
	StatusSuccess JobStatus = "success"
	StatusError   JobStatus = "error"
	StatusSkipped JobStatus = "skipped"
)

// JobResult represents the result of answering one job
type JobResult struct {
	Job      *Job                   `json:"job"`
	Worker   int                    `json:"worker"`
	Status   JobStatus              `json:"status"`
	Result   *inference.QueryResult `json:"result,omitempty"`
	Error    string                 `json:"error,omitempty"`
	Duration time.Duration          `json:"duration"`

	err error
}

// Err returns the error the job failed with, if any
func (r *JobResult) Err() error {
	return r.err
}

// Stats tracks batch statistics. Counters are updated atomically by the workers.
type Stats struct {
	Jobs             int64         `json:"jobs"`
	Succeeded        int64         `json:"succeeded"`
	Failed           int64         `json:"failed"`
	Skipped          int64         `json:"skipped"`
	StartTime        time.Time     `json:"start_time"`
	Elapsed          time.Duration `json:"elapsed"`
	QueriesPerSecond float64       `json:"queries_per_second"`
}

// IncrementSucceeded atomically increments the success counter
func (s *Stats) IncrementSucceeded() {
	atomic.AddInt64(&s.Succeeded, 1)
}

// IncrementFailed atomically increments the failure counter
func (s *Stats) IncrementFailed() {
	atomic.AddInt64(&s.Failed, 1)
}

// Config contains the configuration of the worker pool
type Config struct {
	Workers     int  `json:"workers" mapstructure:"workers"`             // Number of parallel workers, NumCPU when <= 0
	StopOnError bool `json:"stop_on_error" mapstructure:"stop_on_error"` // Skip remaining jobs after the first failure
}

// Report is the outcome of a batch run
type Report struct {
	ID        uuid.UUID    `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Network   string       `json:"network"`
	Algorithm string       `json:"algorithm"`
	Workers   int          `json:"workers"`
	Results   []*JobResult `json:"results"`
	Stats     Stats        `json:"stats"`
}

// FirstError returns the error of the first failed job in batch order
func (r *Report) FirstError() error {
	for _, result := range r.Results {
		if result.err != nil {
			return result.err
		}
	}
	return nil
}
