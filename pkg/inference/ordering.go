/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: ordering.go
Description: Elimination ordering strategies. ReverseTopological is the fixed,
reproducible default. MinNeighbors is a greedy min-degree heuristic that must be
selected explicitly.
*/

package inference

import (
	"github.com/kleascm/bayes-engine/pkg/network"
)

// OrderingStrategy chooses the order in which hidden variables are eliminated.
// The returned order contains exactly the variables that are neither the query
// nor observed.
type OrderingStrategy interface {
	Name() string
	Order(bn *network.Network, query string, evidence network.Assignment) ([]string, error)
}

// ReverseTopological eliminates descendants before ancestors
type ReverseTopological struct{}

// Name returns "reverse-topological"
func (ReverseTopological) Name() string {
	return "reverse-topological"
}

// Order returns the hidden variables in reverse topological order
func (ReverseTopological) Order(bn *network.Network, query string, evidence network.Assignment) ([]string, error) {
	topo, err := bn.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	order := make([]string, 0, len(topo))
	for i := len(topo) - 1; i >= 0; i-- {
		if v := topo[i]; v != query && !evidence.Has(v) {
			order = append(order, v)
		}
	}
	return order, nil
}

// MinNeighbors repeatedly eliminates the hidden variable with the fewest
// neighbours in the interaction graph, connecting its neighbours afterwards.
// Ties go to the variable declared first.
type MinNeighbors struct{}

// Name returns "min-neighbors"
func (MinNeighbors) Name() string {
	return "min-neighbors"
}

// Order returns the hidden variables in greedy min-degree order
func (MinNeighbors) Order(bn *network.Network, query string, evidence network.Assignment) ([]string, error) {
	// Interaction graph over unobserved variables: each CPT factor's scope is a clique
	neighbours := make(map[string]map[string]bool)
	for _, v := range bn.Variables() {
		if !evidence.Has(v) {
			neighbours[v] = make(map[string]bool)
		}
	}
	for _, node := range bn.Nodes() {
		scope := make([]string, 0, 1+len(node.Parents()))
		for _, v := range append([]string{node.Name()}, node.Parents()...) {
			if _, ok := neighbours[v]; ok {
				scope = append(scope, v)
			}
		}
		for _, a := range scope {
			for _, b := range scope {
				if a != b {
					neighbours[a][b] = true
				}
			}
		}
	}

	remaining := make([]string, 0, len(neighbours))
	for _, v := range bn.Variables() {
		if _, ok := neighbours[v]; ok && v != query {
			remaining = append(remaining, v)
		}
	}

	order := make([]string, 0, len(remaining))
	for len(remaining) > 0 {
		best := 0
		for i, v := range remaining {
			if len(neighbours[v]) < len(neighbours[remaining[best]]) {
				best = i
			}
		}
		chosen := remaining[best]
		order = append(order, chosen)
		remaining = append(remaining[:best], remaining[best+1:]...)

		for a := range neighbours[chosen] {
			delete(neighbours[a], chosen)
			for b := range neighbours[chosen] {
				if a != b {
					neighbours[a][b] = true
				}
			}
		}
		delete(neighbours, chosen)
	}
	return order, nil
}

// OrderingByName returns the strategy registered under name
func OrderingByName(name string) (OrderingStrategy, bool) {
	switch name {
	case ReverseTopological{}.Name(), "":
		return ReverseTopological{}, true
	case MinNeighbors{}.Name():
		return MinNeighbors{}, true
	default:
		return nil, false
	}
}
