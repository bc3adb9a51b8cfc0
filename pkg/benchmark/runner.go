/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: runner.go
Description: Benchmark runner comparing a baseline engine against a candidate engine.
Times every case on both engines, checks that their posteriors agree within a tolerance
and summarizes totals and speedups per suite and overall.
*/

package benchmark

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/bayes-engine/pkg/inference"
	"github.com/kleascm/bayes-engine/pkg/logging"
	"gonum.org/v1/gonum/floats"
)

// DefaultTolerance is the consistency tolerance between engines
const DefaultTolerance = 1e-6

// RunnerConfig configures a benchmark run
type RunnerConfig struct {
	Tolerance   float64 `json:"tolerance" mapstructure:"tolerance"`
	Repetitions int     `json:"repetitions" mapstructure:"repetitions"`
}

// CaseResult holds the timings and agreement of one case
type CaseResult struct {
	Case
	BaselineTime  time.Duration      `json:"baseline_time"`
	CandidateTime time.Duration      `json:"candidate_time"`
	BaselineCost  int                `json:"baseline_cost"`
	CandidateCost int                `json:"candidate_cost"`
	MaxDifference float64            `json:"max_difference"`
	Consistent    bool               `json:"consistent"`
	Posterior     map[string]float64 `json:"posterior"`
	MostProbable  string             `json:"most_probable"`
	MostProbableP float64            `json:"most_probable_probability"`
}

// SuiteResult summarizes one suite
type SuiteResult struct {
	Name           string        `json:"name"`
	Network        string        `json:"network"`
	Cases          []CaseResult  `json:"cases"`
	BaselineTotal  time.Duration `json:"baseline_total"`
	CandidateTotal time.Duration `json:"candidate_total"`
	Speedup        float64       `json:"speedup"`
	Consistent     bool          `json:"consistent"`
}

// Report is the outcome of a full benchmark run
type Report struct {
	ID             uuid.UUID     `json:"id"`
	Timestamp      time.Time     `json:"timestamp"`
	Baseline       string        `json:"baseline"`
	Candidate      string        `json:"candidate"`
	Tolerance      float64       `json:"tolerance"`
	Repetitions    int           `json:"repetitions"`
	Suites         []SuiteResult `json:"suites"`
	TotalQueries   int           `json:"total_queries"`
	BaselineTotal  time.Duration `json:"baseline_total"`
	CandidateTotal time.Duration `json:"candidate_total"`
	Speedup        float64       `json:"speedup"`
	Consistent     bool          `json:"consistent"`
	Conclusion     string        `json:"conclusion"`
}

// Runner times two engines over benchmark suites
type Runner struct {
	baseline  inference.Engine
	candidate inference.Engine
	config    RunnerConfig
	logger    *logging.Logger
}

// NewRunner creates a runner. The speedup is baseline time over candidate time.
func NewRunner(baseline, candidate inference.Engine, config RunnerConfig) *Runner {
	if config.Tolerance <= 0 {
		config.Tolerance = DefaultTolerance
	}
	if config.Repetitions <= 0 {
		config.Repetitions = 1
	}
	return &Runner{baseline: baseline, candidate: candidate, config: config}
}

// SetLogger enables a summary log line per suite
func (r *Runner) SetLogger(logger *logging.Logger) {
	r.logger = logger
}

// Run benchmarks every suite in order. It stops early when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, suites ...Suite) (*Report, error) {
	report := &Report{
		ID:          uuid.New(),
		Timestamp:   time.Now(),
		Baseline:    r.baseline.Name(),
		Candidate:   r.candidate.Name(),
		Tolerance:   r.config.Tolerance,
		Repetitions: r.config.Repetitions,
		Consistent:  true,
	}

	var baselineSeconds, candidateSeconds []float64
	for _, suite := range suites {
		result, err := r.runSuite(ctx, suite)
		if err != nil {
			return nil, fmt.Errorf("suite %s: %w", suite.Name, err)
		}
		report.Suites = append(report.Suites, *result)
		report.TotalQueries += len(result.Cases)
		report.Consistent = report.Consistent && result.Consistent
		baselineSeconds = append(baselineSeconds, result.BaselineTotal.Seconds())
		candidateSeconds = append(candidateSeconds, result.CandidateTotal.Seconds())

		if r.logger != nil {
			r.logger.LogBenchmark(suite.Name, len(result.Cases), result.Speedup, result.Consistent, map[string]interface{}{
				"baseline_total":  result.BaselineTotal,
				"candidate_total": result.CandidateTotal,
			})
		}
	}

	report.BaselineTotal = seconds(floats.Sum(baselineSeconds))
	report.CandidateTotal = seconds(floats.Sum(candidateSeconds))
	report.Speedup = speedup(report.BaselineTotal, report.CandidateTotal)
	report.Conclusion = Conclusion(report.Speedup)
	return report, nil
}

func (r *Runner) runSuite(ctx context.Context, suite Suite) (*SuiteResult, error) {
	result := &SuiteResult{
		Name:       suite.Name,
		Network:    suite.Network.Name(),
		Consistent: true,
	}

	for _, c := range suite.Cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		caseResult, err := r.runCase(suite, c)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c, err)
		}
		result.Cases = append(result.Cases, *caseResult)
		result.BaselineTotal += caseResult.BaselineTime
		result.CandidateTotal += caseResult.CandidateTime
		result.Consistent = result.Consistent && caseResult.Consistent
	}

	result.Speedup = speedup(result.BaselineTotal, result.CandidateTotal)
	return result, nil
}

func (r *Runner) runCase(suite Suite, c Case) (*CaseResult, error) {
	baseline, baselineTime, err := r.measure(r.baseline, suite, c)
	if err != nil {
		return nil, err
	}
	candidate, candidateTime, err := r.measure(r.candidate, suite, c)
	if err != nil {
		return nil, err
	}

	diff := distance(baseline, candidate)
	best := candidate.MostProbable()
	return &CaseResult{
		Case:          c,
		BaselineTime:  baselineTime,
		CandidateTime: candidateTime,
		BaselineCost:  cost(baseline),
		CandidateCost: cost(candidate),
		MaxDifference: diff,
		Consistent:    sameValues(baseline, candidate) && diff <= r.config.Tolerance,
		Posterior:     candidate.Map(),
		MostProbable:  best.Value.String(),
		MostProbableP: best.Probability,
	}, nil
}

// measure runs the case Repetitions times and returns the last result with the mean wall time
func (r *Runner) measure(engine inference.Engine, suite Suite, c Case) (*inference.QueryResult, time.Duration, error) {
	var result *inference.QueryResult
	start := time.Now()
	for i := 0; i < r.config.Repetitions; i++ {
		var err error
		result, err = engine.Ask(suite.Network, c.Query, c.Evidence)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", engine.Name(), err)
		}
	}
	return result, time.Since(start) / time.Duration(r.config.Repetitions), nil
}

// Conclusion describes a speedup of the candidate over the baseline
func Conclusion(speedup float64) string {
	switch {
	case speedup > 1.5:
		return "candidate is significantly faster"
	case speedup > 1.0:
		return "candidate is slightly faster"
	case speedup > 0 && speedup < 0.8:
		return "baseline is faster"
	default:
		return "similar performance"
	}
}

func speedup(baseline, candidate time.Duration) float64 {
	if candidate <= 0 {
		return 0
	}
	return float64(baseline) / float64(candidate)
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

func cost(result *inference.QueryResult) int {
	if result.Stats.FactorOperations > 0 {
		return result.Stats.FactorOperations
	}
	return result.Stats.Operations
}

func sameValues(a, b *inference.QueryResult) bool {
	if len(a.Distribution) != len(b.Distribution) {
		return false
	}
	for i := range a.Distribution {
		if a.Distribution[i].Value != b.Distribution[i].Value {
			return false
		}
	}
	return true
}

// distance is the largest absolute difference over the values of a
func distance(a, b *inference.QueryResult) float64 {
	pa := make([]float64, len(a.Distribution))
	pb := make([]float64, len(a.Distribution))
	for i, o := range a.Distribution {
		pa[i] = o.Probability
		pb[i] = b.Probability(o.Value)
	}
	return floats.Distance(pa, pb, math.Inf(1))
}
