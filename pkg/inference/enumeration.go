/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: enumeration.go
Description: Exact inference by enumeration (ENUMERATION-ASK). Evaluates the
joint-probability sum directly by recursing over the variables in topological
order, so every parent value is fixed before its child's CPT is consulted.
*/

package inference

import (
	"time"

	"github.com/kleascm/bayes-engine/pkg/network"
	"github.com/sirupsen/logrus"
)

// EnumerationEngine answers queries by summing out hidden variables one
// recursive branch at a time. Cost is exponential in the number of hidden
// variables; recursion depth equals the number of network variables.
type EnumerationEngine struct {
	logger *logrus.Logger
}

// NewEnumerationEngine creates an enumeration engine
func NewEnumerationEngine(opts ...Option) *EnumerationEngine {
	o := buildOptions(opts)
	return &EnumerationEngine{logger: o.logger}
}

// Name returns "enumeration"
func (e *EnumerationEngine) Name() string {
	return "enumeration"
}

// Ask computes P(query | evidence)
func (e *EnumerationEngine) Ask(bn *network.Network, query string, evidence network.Assignment) (*QueryResult, error) {
	start := time.Now()
	if err := validateQuery(bn, query, evidence); err != nil {
		return nil, err
	}
	order, err := bn.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	node, err := bn.Node(query)
	if err != nil {
		return nil, err
	}

	result := newResult(e.Name(), query, evidence)
	domain := node.Domain()
	weights := make([]float64, len(domain))
	for i, v := range domain {
		p, err := e.enumerateAll(bn, order, evidence.With(query, v), &result.Stats)
		if err != nil {
			return nil, err
		}
		weights[i] = p
		e.logger.WithFields(logrus.Fields{
			"query": query,
			"value": v.String(),
			"mass":  p,
		}).Debug("Enumerated query value")
	}

	result.Distribution, err = normalizeDistribution(query, domain, weights)
	if err != nil {
		return nil, err
	}
	result.Stats.Elapsed = time.Since(start)
	return result, nil
}

// enumerateAll sums the joint probability of a over every completion of vars
func (e *EnumerationEngine) enumerateAll(bn *network.Network, vars []string, a network.Assignment, stats *Statistics) (float64, error) {
	stats.Operations++
	if len(vars) == 0 {
		return 1.0, nil
	}

	head, rest := vars[0], vars[1:]
	node, err := bn.Node(head)
	if err != nil {
		return 0, err
	}

	if v, bound := a[head]; bound {
		p, err := node.Probability(v, a)
		if err != nil {
			return 0, err
		}
		tail, err := e.enumerateAll(bn, rest, a, stats)
		if err != nil {
			return 0, err
		}
		return p * tail, nil
	}

	total := 0.0
	for _, v := range node.Domain() {
		p, err := node.Probability(v, a)
		if err != nil {
			return 0, err
		}
		tail, err := e.enumerateAll(bn, rest, a.With(head, v), stats)
		if err != nil {
			return 0, err
		}
		total += p * tail
	}
	return total, nil
}
