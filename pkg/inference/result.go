/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: result.go
Description: Query results and per-query statistics returned by the inference
engines and consumed by the reporting, analysis and benchmark layers.
*/

package inference

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/bayes-engine/pkg/network"
)

// Outcome is the posterior probability of one domain value
type Outcome struct {
	Value       network.Value `json:"value"`
	Probability float64       `json:"probability"`
}

// Statistics holds algorithm-specific counters for one query
type Statistics struct {
	// Enumeration: one per recursive invocation, base cases included
	Operations int `json:"operations,omitempty"`

	// Elimination
	FactorProducts   int      `json:"factor_products,omitempty"`
	SumOuts          int      `json:"sum_outs,omitempty"`
	FactorOperations int      `json:"factor_operations,omitempty"`
	PeakFactorSize   int      `json:"peak_factor_size,omitempty"`
	PeakFactorCount  int      `json:"peak_factor_count,omitempty"`
	EliminationOrder []string `json:"elimination_order,omitempty"`
	Ordering         string   `json:"ordering,omitempty"`

	Elapsed time.Duration `json:"elapsed_ns"`
}

// QueryResult is a normalized posterior over the query variable's domain
type QueryResult struct {
	ID           uuid.UUID          `json:"id"`
	Algorithm    string             `json:"algorithm"`
	Query        string             `json:"query"`
	Evidence     network.Assignment `json:"evidence"`
	Distribution []Outcome          `json:"distribution"`
	Stats        Statistics         `json:"stats"`
}

func newResult(algorithm, query string, evidence network.Assignment) *QueryResult {
	return &QueryResult{
		ID:        uuid.New(),
		Algorithm: algorithm,
		Query:     query,
		Evidence:  evidence.Clone(),
	}
}

// Probability returns the posterior of v, or 0 when v is not in the domain
func (r *QueryResult) Probability(v network.Value) float64 {
	for _, o := range r.Distribution {
		if o.Value == v {
			return o.Probability
		}
	}
	return 0
}

// Lookup returns the posterior of the value whose literal form matches
func (r *QueryResult) Lookup(literal string) (float64, bool) {
	for _, o := range r.Distribution {
		if o.Value.MatchesLiteral(literal) {
			return o.Probability, true
		}
	}
	return 0, false
}

// MostProbable returns the outcome with the highest posterior. Ties go to the
// value declared first in the domain.
func (r *QueryResult) MostProbable() Outcome {
	var best Outcome
	for i, o := range r.Distribution {
		if i == 0 || o.Probability > best.Probability {
			best = o
		}
	}
	return best
}

// Map returns the distribution keyed by literal value
func (r *QueryResult) Map() map[string]float64 {
	m := make(map[string]float64, len(r.Distribution))
	for _, o := range r.Distribution {
		m[o.Value.String()] = o.Probability
	}
	return m
}

// Sum returns the total probability mass, 1 up to rounding
func (r *QueryResult) Sum() float64 {
	total := 0.0
	for _, o := range r.Distribution {
		total += o.Probability
	}
	return total
}

// String renders the result like P(Burglary | JohnCalls=true) = {true: 0.284172, false: 0.715828}
func (r *QueryResult) String() string {
	parts := make([]string, len(r.Distribution))
	for i, o := range r.Distribution {
		parts[i] = fmt.Sprintf("%s: %.6f", o.Value, o.Probability)
	}
	if len(r.Evidence) == 0 {
		return fmt.Sprintf("P(%s) = {%s}", r.Query, strings.Join(parts, ", "))
	}
	return fmt.Sprintf("P(%s | %s) = {%s}", r.Query, r.Evidence, strings.Join(parts, ", "))
}
