/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: differential.go
Description: Differential analysis of inference engines. Runs the same query through
several engines, compares their posteriors value by value and classifies every
divergence by severity. Disagreeing comparisons can be saved to disk for later study.
*/

package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/bayes-engine/pkg/inference"
	"github.com/kleascm/bayes-engine/pkg/network"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// DefaultTolerance is the largest posterior difference still counted as agreement
const DefaultTolerance = 1e-9

// Comparison is the outcome of running one query through several engines
type Comparison struct {
	ID            uuid.UUID                `json:"id"`
	Timestamp     time.Time                `json:"timestamp"`
	Query         string                   `json:"query"`
	Evidence      network.Assignment       `json:"evidence"`
	Engines       []string                 `json:"engines"`
	Results       []*inference.QueryResult `json:"results"`
	Errors        map[string]string        `json:"errors,omitempty"`
	Differences   []Difference             `json:"differences"`
	MaxDifference float64                  `json:"max_difference"`
	Tolerance     float64                  `json:"tolerance"`
	Agree         bool                     `json:"agree"`
	Severity      DifferenceSeverity       `json:"severity"`
}

// Result returns the result of the named engine, or nil if it failed
func (c *Comparison) Result(engine string) *inference.QueryResult {
	for _, r := range c.Results {
		if r != nil && r.Algorithm == engine {
			return r
		}
	}
	return nil
}

// Difference is one detected divergence between two engines
type Difference struct {
	Type        DifferenceType     `json:"type"`
	Description string             `json:"description"`
	Engine1     string             `json:"engine1"`
	Engine2     string             `json:"engine2"`
	Value       string             `json:"value,omitempty"`
	Value1      interface{}        `json:"value1"`
	Value2      interface{}        `json:"value2"`
	Delta       float64            `json:"delta,omitempty"`
	Severity    DifferenceSeverity `json:"severity"`
}

// DifferenceType represents the type of difference detected
type DifferenceType string

const (
	DiffProbability  DifferenceType = "probability"
	DiffMostProbable DifferenceType = "most_probable"
	DiffError        DifferenceType = "error"
)

// DifferenceSeverity represents the severity of a difference
type DifferenceSeverity string

const (
	DiffSeverityNone     DifferenceSeverity = "none"
	DiffSeverityLow      DifferenceSeverity = "low"
	DiffSeverityMedium   DifferenceSeverity = "medium"
	DiffSeverityHigh     DifferenceSeverity = "high"
	DiffSeverityCritical DifferenceSeverity = "critical"
)

var severityRank = map[DifferenceSeverity]int{
	DiffSeverityNone:     0,
	DiffSeverityLow:      1,
	DiffSeverityMedium:   2,
	DiffSeverityHigh:     3,
	DiffSeverityCritical: 4,
}

// DifferentialConfig configures the differential engine
type DifferentialConfig struct {
	Tolerance float64 `json:"tolerance" mapstructure:"tolerance"`
	OutputDir string  `json:"output_dir" mapstructure:"output_dir"` // empty: keep in memory only
}

// DifferentialStats tracks comparison statistics
type DifferentialStats struct {
	TotalComparisons int64     `json:"total_comparisons"`
	Disagreements    int64     `json:"disagreements"`
	CriticalDiffs    int64     `json:"critical_differences"`
	HighDiffs        int64     `json:"high_differences"`
	MediumDiffs      int64     `json:"medium_differences"`
	LowDiffs         int64     `json:"low_differences"`
	StartTime        time.Time `json:"start_time"`
	LastDiffTime     time.Time `json:"last_difference_time"`
}

// DifferentialEngine compares the posteriors of several engines
type DifferentialEngine struct {
	config  *DifferentialConfig
	engines []inference.Engine
	logger  *logrus.Logger
	results []*Comparison
	stats   *DifferentialStats
	mu      sync.RWMutex
}

// NewDifferentialEngine creates a differential engine over at least two engines
func NewDifferentialEngine(config *DifferentialConfig, engines ...inference.Engine) (*DifferentialEngine, error) {
	if len(engines) < 2 {
		return nil, fmt.Errorf("differential analysis needs at least two engines, got %d", len(engines))
	}
	if config == nil {
		config = &DifferentialConfig{}
	}
	if config.Tolerance <= 0 {
		config.Tolerance = DefaultTolerance
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &DifferentialEngine{
		config:  config,
		engines: engines,
		logger:  logger,
		stats:   &DifferentialStats{StartTime: time.Now()},
	}, nil
}

// SetLogger sets the logger for the differential engine
func (d *DifferentialEngine) SetLogger(logger *logrus.Logger) {
	d.logger = logger
}

// Compare runs the query through every engine concurrently and compares the
// answers. It fails only when every engine fails, returning the first error.
func (d *DifferentialEngine) Compare(bn *network.Network, query string, evidence network.Assignment) (*Comparison, error) {
	results := make([]*inference.QueryResult, len(d.engines))
	errs := make([]error, len(d.engines))

	var wg sync.WaitGroup
	for i, engine := range d.engines {
		wg.Add(1)
		go func(i int, engine inference.Engine) {
			defer wg.Done()
			results[i], errs[i] = engine.Ask(bn, query, evidence)
		}(i, engine)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed == len(d.engines) {
		return nil, errs[0]
	}

	comparison := &Comparison{
		ID:        uuid.New(),
		Timestamp: time.Now(),
		Query:     query,
		Evidence:  evidence.Clone(),
		Tolerance: d.config.Tolerance,
	}
	for i, engine := range d.engines {
		comparison.Engines = append(comparison.Engines, engine.Name())
		if errs[i] != nil {
			if comparison.Errors == nil {
				comparison.Errors = make(map[string]string)
			}
			comparison.Errors[engine.Name()] = errs[i].Error()
			continue
		}
		comparison.Results = append(comparison.Results, results[i])
	}

	comparison.Differences = d.analyzeDifferences(comparison.Engines, results, errs)
	comparison.MaxDifference = maxDifference(comparison.Results)
	comparison.Severity = overallSeverity(comparison.Differences)
	comparison.Agree = len(comparison.Differences) == 0

	d.updateStats(comparison)
	d.logger.WithFields(logrus.Fields{
		"comparison_id":  comparison.ID.String(),
		"query":          query,
		"evidence":       evidence.String(),
		"max_difference": comparison.MaxDifference,
		"agree":          comparison.Agree,
	}).Debug("Compared engines")

	if !comparison.Agree {
		if err := d.saveResult(comparison); err != nil {
			return comparison, err
		}
	}
	return comparison, nil
}

// analyzeDifferences compares every pair of engines
func (d *DifferentialEngine) analyzeDifferences(names []string, results []*inference.QueryResult, errs []error) []Difference {
	var differences []Difference
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			if errs[i] != nil || errs[j] != nil {
				if errs[i] != nil && errs[j] != nil {
					continue
				}
				differences = append(differences, errorDifference(names[i], names[j], errs[i], errs[j]))
				continue
			}
			differences = append(differences, d.compareResults(names[i], names[j], results[i], results[j])...)
		}
	}
	return differences
}

// compareResults compares two posteriors value by value
func (d *DifferentialEngine) compareResults(name1, name2 string, r1, r2 *inference.QueryResult) []Difference {
	var differences []Difference
	for _, o := range r1.Distribution {
		p2 := r2.Probability(o.Value)
		delta := math.Abs(o.Probability - p2)
		if delta <= d.config.Tolerance {
			continue
		}
		differences = append(differences, Difference{
			Type:        DiffProbability,
			Description: fmt.Sprintf("P(%s=%s) mismatch: %s=%.9f, %s=%.9f", r1.Query, o.Value, name1, o.Probability, name2, p2),
			Engine1:     name1,
			Engine2:     name2,
			Value:       o.Value.String(),
			Value1:      o.Probability,
			Value2:      p2,
			Delta:       delta,
			Severity:    probabilitySeverity(delta),
		})
	}

	best1, best2 := r1.MostProbable(), r2.MostProbable()
	if best1.Value != best2.Value && math.Abs(best1.Probability-best2.Probability) > d.config.Tolerance {
		differences = append(differences, Difference{
			Type:        DiffMostProbable,
			Description: fmt.Sprintf("Most probable value mismatch: %s=%s, %s=%s", name1, best1.Value, name2, best2.Value),
			Engine1:     name1,
			Engine2:     name2,
			Value1:      best1.Value.String(),
			Value2:      best2.Value.String(),
			Severity:    DiffSeverityCritical,
		})
	}
	return differences
}

func errorDifference(name1, name2 string, err1, err2 error) Difference {
	diff := Difference{
		Type:     DiffError,
		Engine1:  name1,
		Engine2:  name2,
		Severity: DiffSeverityCritical,
	}
	if err1 != nil {
		diff.Value1 = err1.Error()
		diff.Value2 = "ok"
		diff.Description = fmt.Sprintf("%s failed while %s succeeded: %v", name1, name2, err1)
	} else {
		diff.Value1 = "ok"
		diff.Value2 = err2.Error()
		diff.Description = fmt.Sprintf("%s failed while %s succeeded: %v", name2, name1, err2)
	}
	return diff
}

// probabilitySeverity classifies a posterior difference
func probabilitySeverity(delta float64) DifferenceSeverity {
	switch {
	case delta < 1e-6:
		return DiffSeverityLow
	case delta < 1e-3:
		return DiffSeverityMedium
	default:
		return DiffSeverityHigh
	}
}

// overallSeverity returns the most severe difference
func overallSeverity(differences []Difference) DifferenceSeverity {
	severity := DiffSeverityNone
	for _, diff := range differences {
		if severityRank[diff.Severity] > severityRank[severity] {
			severity = diff.Severity
		}
	}
	return severity
}

// maxDifference is the largest absolute posterior difference between any two results
func maxDifference(results []*inference.QueryResult) float64 {
	if len(results) < 2 {
		return 0
	}
	base := results[0]
	reference := make([]float64, len(base.Distribution))
	for k, o := range base.Distribution {
		reference[k] = o.Probability
	}

	max := 0.0
	for _, other := range results[1:] {
		aligned := make([]float64, len(base.Distribution))
		for k, o := range base.Distribution {
			aligned[k] = other.Probability(o.Value)
		}
		if dist := floats.Distance(reference, aligned, math.Inf(1)); dist > max {
			max = dist
		}
	}
	return max
}

// updateStats updates comparison statistics
func (d *DifferentialEngine) updateStats(comparison *Comparison) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.results = append(d.results, comparison)
	d.stats.TotalComparisons++
	if comparison.Agree {
		return
	}

	d.stats.Disagreements++
	d.stats.LastDiffTime = comparison.Timestamp
	for _, diff := range comparison.Differences {
		switch diff.Severity {
		case DiffSeverityCritical:
			d.stats.CriticalDiffs++
		case DiffSeverityHigh:
			d.stats.HighDiffs++
		case DiffSeverityMedium:
			d.stats.MediumDiffs++
		case DiffSeverityLow:
			d.stats.LowDiffs++
		}
	}
}

// saveResult saves a disagreeing comparison to disk
func (d *DifferentialEngine) saveResult(comparison *Comparison) error {
	if d.config.OutputDir == "" {
		return nil
	}
	if err := os.MkdirAll(d.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := comparison.Timestamp.Format("20060102_150405")
	filename := fmt.Sprintf("diff_%s_%s.json", timestamp, comparison.ID.String()[:8])
	path := filepath.Join(d.config.OutputDir, filename)

	data, err := json.MarshalIndent(comparison, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal comparison: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write comparison file: %w", err)
	}

	d.logger.Infof("Saved differential result: %s", path)
	return nil
}

// GetStats returns current comparison statistics
func (d *DifferentialEngine) GetStats() *DifferentialStats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := *d.stats
	return &stats
}

// GetResults returns all comparisons made so far
func (d *DifferentialEngine) GetResults() []*Comparison {
	d.mu.RLock()
	defer d.mu.RUnlock()

	results := make([]*Comparison, len(d.results))
	copy(results, d.results)
	return results
}

// IsDisagreement reports whether err came from a comparison that found differences
func IsDisagreement(err error) bool {
	var target *DisagreementError
	return errors.As(err, &target)
}

// DisagreementError reports engines that returned different posteriors
type DisagreementError struct {
	Query         string
	MaxDifference float64
	Tolerance     float64
}

func (e *DisagreementError) Error() string {
	return fmt.Sprintf("engines disagree on %s: max difference %.3g exceeds tolerance %.3g", e.Query, e.MaxDifference, e.Tolerance)
}

// Err returns a DisagreementError when the engines disagree, nil otherwise
func (c *Comparison) Err() error {
	if c.Agree {
		return nil
	}
	return &DisagreementError{Query: c.Query, MaxDifference: c.MaxDifference, Tolerance: c.Tolerance}
}
