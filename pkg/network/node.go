/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: node.go
Description: Network variable with its ordered domain, declared parents and
conditional probability table. CPT rows are keyed by the canonical encoding of
the parent values taken in declared parent order, so lookups never depend on map
iteration order.
*/

package network

import (
	"fmt"
	"strings"
)

// ProbabilityTolerance is the allowed deviation of a CPT row sum from 1.0
const ProbabilityTolerance = 1e-6

// CPTRow is one row of a conditional probability table
type CPTRow struct {
	Parents       Assignment
	Probabilities []float64 // aligned with the node's domain
}

// Node is one random variable of a Bayesian network
type Node struct {
	name        string
	domain      Domain
	parents     []string
	description string

	rows     map[string][]float64
	rowOrder []string
	rowKeys  map[string]Assignment
}

// NewNode creates a node with the given domain and declared parents
func NewNode(name string, domain Domain, parents ...string) *Node {
	d := make(Domain, len(domain))
	copy(d, domain)
	p := make([]string, len(parents))
	copy(p, parents)
	return &Node{
		name:    name,
		domain:  d,
		parents: p,
		rows:    make(map[string][]float64),
		rowKeys: make(map[string]Assignment),
	}
}

// Name returns the variable name
func (n *Node) Name() string {
	return n.name
}

// Domain returns the ordered domain. Callers must not modify it.
func (n *Node) Domain() Domain {
	return n.domain
}

// Parents returns the declared parent names in order
func (n *Node) Parents() []string {
	p := make([]string, len(n.parents))
	copy(p, n.parents)
	return p
}

// Description returns the free-form description
func (n *Node) Description() string {
	return n.description
}

// SetDescription sets the free-form description
func (n *Node) SetDescription(description string) *Node {
	n.description = description
	return n
}

// AddParent declares an extra parent. Existing CPT rows are discarded because
// their keys no longer cover every parent.
func (n *Node) AddParent(parent string) {
	for _, p := range n.parents {
		if p == parent {
			return
		}
	}
	n.parents = append(n.parents, parent)
	if len(n.rows) > 0 {
		n.rows = make(map[string][]float64)
		n.rowKeys = make(map[string]Assignment)
		n.rowOrder = nil
	}
}

// SetDistribution installs the CPT row for one parent-value combination.
// Domain values missing from probs get probability 0.
func (n *Node) SetDistribution(parentValues Assignment, probs map[Value]float64) error {
	row := make([]float64, len(n.domain))
	for v, p := range probs {
		idx := n.domain.IndexOf(v)
		if idx < 0 {
			return &DomainError{Variable: n.name, Value: v, Domain: n.domain}
		}
		row[idx] = p
	}
	return n.SetRow(parentValues, row)
}

// SetRow installs a CPT row given as probabilities aligned with the domain
func (n *Node) SetRow(parentValues Assignment, probabilities []float64) error {
	if len(probabilities) != len(n.domain) {
		return &StructuralError{
			Node:   n.name,
			Reason: fmt.Sprintf("CPT row has %d probabilities for a domain of %d values", len(probabilities), len(n.domain)),
		}
	}
	for name := range parentValues {
		if !n.hasParent(name) {
			return &StructuralError{Node: n.name, Reason: fmt.Sprintf("CPT references undeclared parent '%s'", name)}
		}
	}
	key, missing := n.rowKey(parentValues)
	if missing != "" {
		return &StructuralError{Node: n.name, Reason: fmt.Sprintf("CPT row has no value for parent '%s'", missing)}
	}

	row := make([]float64, len(probabilities))
	copy(row, probabilities)
	if _, exists := n.rows[key]; !exists {
		n.rowOrder = append(n.rowOrder, key)
	}
	n.rows[key] = row
	n.rowKeys[key] = parentValues.Clone()
	return nil
}

// Rows returns the CPT rows in insertion order
func (n *Node) Rows() []CPTRow {
	rows := make([]CPTRow, 0, len(n.rowOrder))
	for _, key := range n.rowOrder {
		probs := make([]float64, len(n.rows[key]))
		copy(probs, n.rows[key])
		rows = append(rows, CPTRow{Parents: n.rowKeys[key].Clone(), Probabilities: probs})
	}
	return rows
}

// RowCount returns the number of CPT rows
func (n *Node) RowCount() int {
	return len(n.rows)
}

// Distribution returns the CPT row selected by the parent values in a
func (n *Node) Distribution(a Assignment) ([]float64, error) {
	key, missing := n.rowKey(a)
	if missing != "" {
		return nil, &InvalidQueryError{Query: n.name, Reason: fmt.Sprintf("no value given for parent '%s'", missing)}
	}
	row, ok := n.rows[key]
	if !ok {
		return nil, &StructuralError{Node: n.name, Reason: fmt.Sprintf("no CPT row for parents {%s}", n.describeKey(a))}
	}
	return row, nil
}

// Probability returns P(n = value | parents as fixed by a). Keys of a that are
// not parents of n are ignored.
func (n *Node) Probability(value Value, a Assignment) (float64, error) {
	idx := n.domain.IndexOf(value)
	if idx < 0 {
		return 0, &DomainError{Variable: n.name, Value: value, Domain: n.domain}
	}
	row, err := n.Distribution(a)
	if err != nil {
		return 0, err
	}
	return row[idx], nil
}

func (n *Node) hasParent(name string) bool {
	for _, p := range n.parents {
		if p == name {
			return true
		}
	}
	return false
}

// rowKey encodes the parent values of a in declared order. It returns the
// first parent without a value when the encoding is impossible.
func (n *Node) rowKey(a Assignment) (string, string) {
	if len(n.parents) == 0 {
		return "", ""
	}
	var b strings.Builder
	for i, p := range n.parents {
		v, ok := a[p]
		if !ok {
			return "", p
		}
		if i > 0 {
			b.WriteByte(0x1f)
		}
		b.WriteString(v.key())
	}
	return b.String(), ""
}

func (n *Node) describeKey(a Assignment) string {
	parts := make([]string, len(n.parents))
	for i, p := range n.parents {
		parts[i] = p + "=" + a[p].String()
	}
	return strings.Join(parts, ", ")
}

// String renders the node like Node('Alarm', domain=[true, false], parents=[Burglary])
func (n *Node) String() string {
	return fmt.Sprintf("Node('%s', domain=%s, parents=[%s])", n.name, n.domain, strings.Join(n.parents, ", "))
}
