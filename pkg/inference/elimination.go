/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: elimination.go
Description: Exact inference by variable elimination (ELIMINATION-ASK). Builds one
evidence-restricted factor per variable, then multiplies and sums out each hidden
variable in the configured order before normalizing the remaining factors.
*/

package inference

import (
	"fmt"
	"time"

	"github.com/kleascm/bayes-engine/pkg/factor"
	"github.com/kleascm/bayes-engine/pkg/network"
	"github.com/sirupsen/logrus"
)

// EliminationEngine answers queries with factor-based variable elimination
type EliminationEngine struct {
	logger   *logrus.Logger
	ordering OrderingStrategy
}

// NewEliminationEngine creates an elimination engine. The ordering defaults to
// ReverseTopological.
func NewEliminationEngine(opts ...Option) *EliminationEngine {
	o := buildOptions(opts)
	return &EliminationEngine{logger: o.logger, ordering: o.ordering}
}

// Name returns "elimination"
func (e *EliminationEngine) Name() string {
	return "elimination"
}

// Ordering returns the configured ordering strategy
func (e *EliminationEngine) Ordering() OrderingStrategy {
	return e.ordering
}

// tracker keeps the working-set statistics up to date
type tracker struct {
	stats *Statistics
}

func (t tracker) created(f *factor.Factor) {
	if f.Size() > t.stats.PeakFactorSize {
		t.stats.PeakFactorSize = f.Size()
	}
}

func (t tracker) working(n int) {
	if n > t.stats.PeakFactorCount {
		t.stats.PeakFactorCount = n
	}
}

// Ask computes P(query | evidence)
func (e *EliminationEngine) Ask(bn *network.Network, query string, evidence network.Assignment) (*QueryResult, error) {
	start := time.Now()
	if err := validateQuery(bn, query, evidence); err != nil {
		return nil, err
	}
	order, err := e.ordering.Order(bn, query, evidence)
	if err != nil {
		return nil, fmt.Errorf("computing elimination order: %w", err)
	}

	result := newResult(e.Name(), query, evidence)
	stats := &result.Stats
	stats.Ordering = e.ordering.Name()
	track := tracker{stats: stats}

	factors := make([]*factor.Factor, 0, bn.Len())
	for _, node := range bn.Nodes() {
		f, err := factor.FromCPT(bn, node, evidence)
		if err != nil {
			return nil, err
		}
		track.created(f)
		factors = append(factors, f)
		e.logger.WithFields(logrus.Fields{
			"node":  node.Name(),
			"scope": f.Scope(),
			"size":  f.Size(),
		}).Debug("Initial factor")
	}
	track.working(len(factors))

	for _, variable := range order {
		if variable == query || evidence.Has(variable) {
			continue
		}
		factors, err = e.eliminate(factors, variable, track)
		if err != nil {
			return nil, err
		}
		stats.EliminationOrder = append(stats.EliminationOrder, variable)
	}

	joint, err := e.combine(factors, track)
	if err != nil {
		return nil, err
	}
	posterior, err := factor.Normalize(joint)
	if err != nil {
		return nil, err
	}

	domain, err := posterior.Domain(query)
	if err != nil {
		return nil, err
	}
	result.Distribution = make([]Outcome, len(domain))
	for i, v := range domain {
		p, err := posterior.Value(network.Assignment{query: v})
		if err != nil {
			return nil, err
		}
		result.Distribution[i] = Outcome{Value: v, Probability: p}
	}

	stats.FactorOperations = stats.FactorProducts + stats.SumOuts
	stats.Elapsed = time.Since(start)
	return result, nil
}

// eliminate multiplies every factor mentioning variable, sums variable out and
// appends the result to the factors that did not mention it
func (e *EliminationEngine) eliminate(factors []*factor.Factor, variable string, track tracker) ([]*factor.Factor, error) {
	var gathered []*factor.Factor
	kept := make([]*factor.Factor, 0, len(factors))
	for _, f := range factors {
		if f.Contains(variable) {
			gathered = append(gathered, f)
		} else {
			kept = append(kept, f)
		}
	}
	if len(gathered) == 0 {
		return factors, nil
	}

	product, err := e.combine(gathered, track)
	if err != nil {
		return nil, err
	}
	summed, err := factor.SumOut(product, variable)
	if err != nil {
		return nil, err
	}
	track.stats.SumOuts++
	track.created(summed)

	kept = append(kept, summed)
	track.working(len(kept))
	e.logger.WithFields(logrus.Fields{
		"variable": variable,
		"gathered": len(gathered),
		"scope":    summed.Scope(),
		"size":     summed.Size(),
	}).Debug("Eliminated variable")
	return kept, nil
}

// combine left-folds PointwiseProduct over factors, counting each product
func (e *EliminationEngine) combine(factors []*factor.Factor, track tracker) (*factor.Factor, error) {
	if len(factors) == 0 {
		return factor.Unit(), nil
	}
	result := factors[0]
	for _, f := range factors[1:] {
		product, err := factor.PointwiseProduct(result, f)
		if err != nil {
			return nil, err
		}
		track.stats.FactorProducts++
		track.created(product)
		result = product
	}
	return result, nil
}
