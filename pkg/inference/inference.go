/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inference.go
Description: Exact-inference capability shared by every engine. Defines the Engine
interface, functional options and the query validation every engine performs
before computing a posterior distribution.
*/

package inference

import (
	"fmt"
	"io"

	"github.com/kleascm/bayes-engine/pkg/network"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// Engine computes P(query | evidence) over a Bayesian network
type Engine interface {
	// Name identifies the algorithm, e.g. "enumeration"
	Name() string
	// Ask returns the normalized posterior of query given evidence
	Ask(bn *network.Network, query string, evidence network.Assignment) (*QueryResult, error)
}

// Option configures an engine
type Option func(*options)

type options struct {
	logger   *logrus.Logger
	ordering OrderingStrategy
}

// WithLogger sets the logger used for Debug-level trace output
func WithLogger(logger *logrus.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithOrdering sets the elimination ordering strategy. Enumeration ignores it.
func WithOrdering(strategy OrderingStrategy) Option {
	return func(o *options) {
		if strategy != nil {
			o.ordering = strategy
		}
	}
}

func buildOptions(opts []Option) *options {
	o := &options{
		logger:   discardLogger(),
		ordering: ReverseTopological{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// validateQuery checks the network and the query arguments in a fixed order:
// network structure, query variable, evidence keys, evidence values and
// finally that the query is not observed
func validateQuery(bn *network.Network, query string, evidence network.Assignment) error {
	if bn == nil {
		return &network.StructuralError{Reason: "no network given"}
	}
	if err := bn.Validate(); err != nil {
		return err
	}
	if !bn.HasNode(query) {
		return &network.UnknownVariableError{Variable: query}
	}

	names := evidence.Names()
	nodes := make([]*network.Node, len(names))
	for i, name := range names {
		node, err := bn.Node(name)
		if err != nil {
			return err
		}
		nodes[i] = node
	}
	for i, name := range names {
		node := nodes[i]
		if !node.Domain().Contains(evidence[name]) {
			return &network.DomainError{Variable: name, Value: evidence[name], Domain: node.Domain()}
		}
	}

	if evidence.Has(query) {
		return &network.InvalidQueryError{Query: query, Reason: "query variable appears in the evidence"}
	}
	return nil
}

// normalizeDistribution turns unnormalized weights aligned with domain into outcomes
func normalizeDistribution(query string, domain network.Domain, weights []float64) ([]Outcome, error) {
	if len(weights) != len(domain) {
		return nil, &network.ShapeError{Variable: query, Reason: fmt.Sprintf("%d weights for %d domain values", len(weights), len(domain))}
	}
	sum := floats.Sum(weights)
	if !(sum > 0) {
		return nil, &network.NumericalError{Query: query, Sum: sum}
	}
	outcomes := make([]Outcome, len(domain))
	for i, v := range domain {
		outcomes[i] = Outcome{Value: v, Probability: weights[i] / sum}
	}
	return outcomes, nil
}
