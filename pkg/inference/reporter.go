/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reporter.go
Description: Reporter hooks for query telemetry. WithReporting decorates any
Engine so that every completed or failed query is forwarded to the registered
reporters without the engines knowing about them.
*/

package inference

import (
	"github.com/kleascm/bayes-engine/pkg/network"
)

// Reporter receives query events
type Reporter interface {
	// OnQueryCompleted is called after a query returns a distribution
	OnQueryCompleted(result *QueryResult)
	// OnQueryFailed is called when a query returns an error
	OnQueryFailed(algorithm, query string, evidence network.Assignment, err error)
}

type reportingEngine struct {
	Engine
	reporters []Reporter
}

// WithReporting wraps engine so every Ask is reported to reporters
func WithReporting(engine Engine, reporters ...Reporter) Engine {
	if len(reporters) == 0 {
		return engine
	}
	return &reportingEngine{Engine: engine, reporters: reporters}
}

// Ask delegates to the wrapped engine and reports the outcome
func (r *reportingEngine) Ask(bn *network.Network, query string, evidence network.Assignment) (*QueryResult, error) {
	result, err := r.Engine.Ask(bn, query, evidence)
	for _, reporter := range r.reporters {
		if err != nil {
			reporter.OnQueryFailed(r.Name(), query, evidence, err)
		} else {
			reporter.OnQueryCompleted(result)
		}
	}
	return result, err
}
