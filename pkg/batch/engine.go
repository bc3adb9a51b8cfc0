/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine.go
Description: Batch engine. Dispatches a list of queries over a pool of workers sharing
one inference engine and collects the answers in batch order. Supports cancellation
and stopping at the first failed query.
*/

package batch

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/bayes-engine/pkg/inference"
	"github.com/kleascm/bayes-engine/pkg/network"
	"github.com/kleascm/bayes-engine/pkg/parser"
	"github.com/sirupsen/logrus"
)

// Engine answers batches of queries in parallel
type Engine struct {
	config  *Config
	engine  inference.Engine
	logger  *logrus.Logger
	workers []*Worker
}

// task pairs a job with its slot in the report
type task struct {
	index int
	job   *Job
}

// NewEngine creates the worker pool. A nil logger discards log output.
func NewEngine(engine inference.Engine, config *Config, logger *logrus.Logger) *Engine {
	if config == nil {
		config = &Config{}
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	numWorkers := config.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	e := &Engine{
		config:  config,
		engine:  engine,
		logger:  logger,
		workers: make([]*Worker, numWorkers),
	}
	for i := range e.workers {
		e.workers[i] = NewWorker(i, engine, logger)
	}
	return e
}

// NewJobs turns resolved batch queries into jobs
func NewJobs(queries []parser.Query) []*Job {
	jobs := make([]*Job, len(queries))
	for i, q := range queries {
		jobs[i] = &Job{Index: i, Name: q.Name, Query: q.Variable, Evidence: q.Evidence}
	}
	return jobs
}

// Workers returns the pool's workers
func (e *Engine) Workers() []*Worker {
	return e.workers
}

// Run answers every job against bn. The report is returned even when the run
// is cancelled or stopped early. Jobs that never ran are marked skipped.
func (e *Engine) Run(ctx context.Context, bn *network.Network, jobs []*Job) (*Report, error) {
	report := &Report{
		ID:        uuid.New(),
		Timestamp: time.Now(),
		Network:   bn.Name(),
		Algorithm: e.engine.Name(),
		Workers:   len(e.workers),
		Results:   make([]*JobResult, len(jobs)),
	}
	stats := &report.Stats
	stats.Jobs = int64(len(jobs))
	stats.StartTime = time.Now()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := make(chan task)
	var wg sync.WaitGroup
	for _, worker := range e.workers {
		wg.Add(1)
		go func(w *Worker) {
			defer wg.Done()
			for t := range queue {
				if runCtx.Err() != nil {
					continue
				}
				result := w.Execute(bn, t.job)
				report.Results[t.index] = result
				if result.err != nil {
					stats.IncrementFailed()
					if e.config.StopOnError {
						cancel()
					}
					continue
				}
				stats.IncrementSucceeded()
			}
		}(worker)
	}

dispatch:
	for i, job := range jobs {
		select {
		case <-runCtx.Done():
			break dispatch
		case queue <- task{index: i, job: job}:
		}
	}
	close(queue)
	wg.Wait()

	for i, result := range report.Results {
		if result == nil {
			report.Results[i] = &JobResult{Job: jobs[i], Worker: -1, Status: StatusSkipped}
			stats.Skipped++
		}
	}

	stats.Elapsed = time.Since(stats.StartTime)
	if seconds := stats.Elapsed.Seconds(); seconds > 0 {
		stats.QueriesPerSecond = float64(stats.Succeeded+stats.Failed) / seconds
	}

	e.logger.WithFields(logrus.Fields{
		"batch_id":  report.ID.String(),
		"algorithm": report.Algorithm,
		"jobs":      stats.Jobs,
		"succeeded": stats.Succeeded,
		"failed":    stats.Failed,
		"skipped":   stats.Skipped,
		"workers":   report.Workers,
		"elapsed":   stats.Elapsed,
	}).Info("Batch finished")

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("batch interrupted: %w", err)
	}
	if e.config.StopOnError && stats.Failed > 0 {
		return report, fmt.Errorf("batch stopped: %w", report.FirstError())
	}
	return report, nil
}
