/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: network.go
Description: BayesianNetwork container. Owns the nodes in declaration order and
derives the edge set from each node's declared parents. Once built the network
is only read, so any number of queries may share one instance.
*/

package network

import (
	"fmt"
	"math"
)

// Edge is a directed parent -> child dependency
type Edge struct {
	Parent string `json:"parent" yaml:"parent"`
	Child  string `json:"child" yaml:"child"`
}

// Network is a discrete Bayesian network
type Network struct {
	name  string
	nodes map[string]*Node
	order []string
}

// New creates an empty network
func New(name string) *Network {
	return &Network{
		name:  name,
		nodes: make(map[string]*Node),
	}
}

// Name returns the descriptive network name
func (bn *Network) Name() string {
	return bn.name
}

// AddNode adds a node. Names must be unique.
func (bn *Network) AddNode(node *Node) error {
	if node == nil {
		return &StructuralError{Reason: "nil node"}
	}
	if node.name == "" {
		return &StructuralError{Reason: "node name must not be empty"}
	}
	if _, exists := bn.nodes[node.name]; exists {
		return &StructuralError{Node: node.name, Reason: "duplicate node name"}
	}
	bn.nodes[node.name] = node
	bn.order = append(bn.order, node.name)
	return nil
}

// Node returns the node with the given name
func (bn *Network) Node(name string) (*Node, error) {
	node, ok := bn.nodes[name]
	if !ok {
		return nil, &UnknownVariableError{Variable: name}
	}
	return node, nil
}

// HasNode reports whether a variable exists
func (bn *Network) HasNode(name string) bool {
	_, ok := bn.nodes[name]
	return ok
}

// Len returns the number of variables
func (bn *Network) Len() int {
	return len(bn.order)
}

// Nodes returns the nodes in declaration order
func (bn *Network) Nodes() []*Node {
	nodes := make([]*Node, len(bn.order))
	for i, name := range bn.order {
		nodes[i] = bn.nodes[name]
	}
	return nodes
}

// Variables returns the variable names in declaration order
func (bn *Network) Variables() []string {
	vars := make([]string, len(bn.order))
	copy(vars, bn.order)
	return vars
}

// Parents returns the declared parents of a variable
func (bn *Network) Parents(name string) ([]string, error) {
	node, err := bn.Node(name)
	if err != nil {
		return nil, err
	}
	return node.Parents(), nil
}

// Children returns the variables that declare name as a parent, in declaration order
func (bn *Network) Children(name string) ([]string, error) {
	if !bn.HasNode(name) {
		return nil, &UnknownVariableError{Variable: name}
	}
	return bn.children(name), nil
}

func (bn *Network) children(name string) []string {
	children := make([]string, 0)
	for _, candidate := range bn.order {
		if bn.nodes[candidate].hasParent(name) {
			children = append(children, candidate)
		}
	}
	return children
}

// Edges returns every parent -> child edge, grouped by child in declaration order
func (bn *Network) Edges() []Edge {
	edges := make([]Edge, 0)
	for _, child := range bn.order {
		for _, parent := range bn.nodes[child].parents {
			edges = append(edges, Edge{Parent: parent, Child: child})
		}
	}
	return edges
}

// TopologicalOrder returns the variables so that every parent precedes its
// children, using Kahn's algorithm. Among nodes that are ready at the same time
// the one declared first wins, so the order is stable across calls.
func (bn *Network) TopologicalOrder() ([]string, error) {
	index := make(map[string]int, len(bn.order))
	for i, name := range bn.order {
		index[name] = i
	}

	// In-degree counts only parents that exist; dangling parents are a
	// validation failure reported separately
	inDegree := make([]int, len(bn.order))
	children := make([][]int, len(bn.order))
	for i, name := range bn.order {
		for _, parent := range bn.nodes[name].parents {
			p, ok := index[parent]
			if !ok {
				return nil, &StructuralError{Node: name, Reason: fmt.Sprintf("parent '%s' does not exist in the network", parent)}
			}
			inDegree[i]++
			children[p] = append(children[p], i)
		}
	}

	done := make([]bool, len(bn.order))
	sorted := make([]string, 0, len(bn.order))
	for len(sorted) < len(bn.order) {
		next := -1
		for i := range bn.order {
			if !done[i] && inDegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			for i, name := range bn.order {
				if !done[i] {
					return nil, &StructuralError{Node: name, Reason: "network contains a cycle"}
				}
			}
			return nil, &StructuralError{Reason: "network contains a cycle"}
		}
		done[next] = true
		sorted = append(sorted, bn.order[next])
		for _, c := range children[next] {
			inDegree[c]--
		}
	}

	return sorted, nil
}

// IsDAG reports whether the parent declarations form an acyclic graph
func (bn *Network) IsDAG() bool {
	_, err := bn.TopologicalOrder()
	return err == nil
}

// Ancestors returns every variable with a directed path to name, in declaration order
func (bn *Network) Ancestors(name string) ([]string, error) {
	node, err := bn.Node(name)
	if err != nil {
		return nil, err
	}
	visited := make(map[string]bool)
	queue := node.Parents()
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		if parent, ok := bn.nodes[current]; ok {
			queue = append(queue, parent.parents...)
		}
	}
	return bn.inDeclarationOrder(visited), nil
}

// Descendants returns every variable reachable from name, in declaration order
func (bn *Network) Descendants(name string) ([]string, error) {
	if !bn.HasNode(name) {
		return nil, &UnknownVariableError{Variable: name}
	}
	visited := make(map[string]bool)
	queue := bn.children(name)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if visited[current] {
			continue
		}
		visited[current] = true
		queue = append(queue, bn.children(current)...)
	}
	return bn.inDeclarationOrder(visited), nil
}

// MarkovBlanket returns the parents, children and co-parents of name
func (bn *Network) MarkovBlanket(name string) ([]string, error) {
	node, err := bn.Node(name)
	if err != nil {
		return nil, err
	}
	members := make(map[string]bool)
	for _, p := range node.parents {
		members[p] = true
	}
	for _, child := range bn.children(name) {
		members[child] = true
		for _, coParent := range bn.nodes[child].parents {
			if coParent != name {
				members[coParent] = true
			}
		}
	}
	return bn.inDeclarationOrder(members), nil
}

func (bn *Network) inDeclarationOrder(set map[string]bool) []string {
	result := make([]string, 0, len(set))
	for _, name := range bn.order {
		if set[name] {
			result = append(result, name)
		}
	}
	return result
}

// ParentCombinations enumerates every assignment of the node's parents, the
// first declared parent varying slowest. A root node yields one empty assignment.
func (bn *Network) ParentCombinations(name string) ([]Assignment, error) {
	node, err := bn.Node(name)
	if err != nil {
		return nil, err
	}
	domains := make([]Domain, len(node.parents))
	for i, p := range node.parents {
		parent, err := bn.Node(p)
		if err != nil {
			return nil, err
		}
		domains[i] = parent.domain
	}

	combos := []Assignment{{}}
	for i, p := range node.parents {
		next := make([]Assignment, 0, len(combos)*len(domains[i]))
		for _, partial := range combos {
			for _, v := range domains[i] {
				next = append(next, partial.With(p, v))
			}
		}
		combos = next
	}
	return combos, nil
}

// Validate checks every structural invariant: well-formed domains, existing
// parents, acyclicity, complete CPTs and rows summing to one. It never mutates
// the network.
func (bn *Network) Validate() error {
	if len(bn.order) == 0 {
		return &StructuralError{Reason: "network has no nodes"}
	}

	for _, name := range bn.order {
		if err := validateDomain(bn.nodes[name]); err != nil {
			return err
		}
	}

	for _, name := range bn.order {
		node := bn.nodes[name]
		seen := make(map[string]bool, len(node.parents))
		for _, p := range node.parents {
			if p == name {
				return &StructuralError{Node: name, Reason: "node cannot be its own parent"}
			}
			if seen[p] {
				return &StructuralError{Node: name, Reason: fmt.Sprintf("parent '%s' declared twice", p)}
			}
			seen[p] = true
			if !bn.HasNode(p) {
				return &StructuralError{Node: name, Reason: fmt.Sprintf("CPT references undeclared parent '%s'", p)}
			}
		}
	}

	if _, err := bn.TopologicalOrder(); err != nil {
		return err
	}

	for _, name := range bn.order {
		if err := bn.validateCPT(bn.nodes[name]); err != nil {
			return err
		}
	}

	return nil
}

func validateDomain(node *Node) error {
	if len(node.domain) < 2 {
		return &StructuralError{Node: node.name, Reason: fmt.Sprintf("domain must have at least 2 values, has %d", len(node.domain))}
	}
	kind := node.domain[0].Kind()
	for i, v := range node.domain {
		if !v.IsValid() {
			return &StructuralError{Node: node.name, Reason: "domain contains an invalid value"}
		}
		if v.Kind() != kind {
			return &StructuralError{Node: node.name, Reason: fmt.Sprintf("domain mixes %s and %s values", kind, v.Kind())}
		}
		if node.domain.IndexOf(v) != i {
			return &StructuralError{Node: node.name, Reason: fmt.Sprintf("domain value '%s' appears twice", v)}
		}
	}
	return nil
}

func (bn *Network) validateCPT(node *Node) error {
	combos, err := bn.ParentCombinations(node.name)
	if err != nil {
		return err
	}
	for _, combo := range combos {
		row, err := node.Distribution(combo)
		if err != nil {
			return &StructuralError{Node: node.name, Reason: fmt.Sprintf("missing CPT row for parents {%s}", combo)}
		}
		sum := 0.0
		for i, p := range row {
			if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
				return &StructuralError{Node: node.name, Reason: fmt.Sprintf("invalid probability %g for value '%s'", p, node.domain[i])}
			}
			sum += p
		}
		if math.Abs(sum-1.0) > ProbabilityTolerance {
			return &StructuralError{Node: node.name, Reason: fmt.Sprintf("CPT row {%s} sums to %g, expected 1", combo, sum)}
		}
	}
	if node.RowCount() != len(combos) {
		return &StructuralError{Node: node.name, Reason: fmt.Sprintf("CPT has %d rows, expected %d", node.RowCount(), len(combos))}
	}
	return nil
}

// Probability returns P(nodeName = value | parentAssignment). Every key of the
// assignment must be a network variable holding a value of its domain.
func (bn *Network) Probability(nodeName string, value Value, parentAssignment Assignment) (float64, error) {
	node, err := bn.Node(nodeName)
	if err != nil {
		return 0, err
	}
	for key, v := range parentAssignment {
		other, ok := bn.nodes[key]
		if !ok {
			return 0, &UnknownVariableError{Variable: key}
		}
		if !other.domain.Contains(v) {
			return 0, &DomainError{Variable: key, Value: v, Domain: other.domain}
		}
	}
	return node.Probability(value, parentAssignment)
}

// String summarises the network
func (bn *Network) String() string {
	return fmt.Sprintf("Network('%s', %d nodes, %d edges)", bn.name, len(bn.order), len(bn.Edges()))
}
