/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: queries.go
Description: Convenience queries built on top of any Engine: the marginal
probability of a single value and the most probable value of a variable.
*/

package inference

import (
	"github.com/kleascm/bayes-engine/pkg/network"
)

// MarginalProbability returns P(variable = value | evidence)
func MarginalProbability(engine Engine, bn *network.Network, variable string, value network.Value, evidence network.Assignment) (float64, error) {
	result, err := engine.Ask(bn, variable, evidence)
	if err != nil {
		return 0, err
	}
	node, err := bn.Node(variable)
	if err != nil {
		return 0, err
	}
	if !node.Domain().Contains(value) {
		return 0, &network.DomainError{Variable: variable, Value: value, Domain: node.Domain()}
	}
	return result.Probability(value), nil
}

// MostProbableValue returns the value of variable with the highest posterior
// and that posterior
func MostProbableValue(engine Engine, bn *network.Network, variable string, evidence network.Assignment) (network.Value, float64, error) {
	result, err := engine.Ask(bn, variable, evidence)
	if err != nil {
		return network.Value{}, 0, err
	}
	best := result.MostProbable()
	return best.Value, best.Probability, nil
}
