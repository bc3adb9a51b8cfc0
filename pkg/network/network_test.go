/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: network_test.go
Description: Tests for the Bayesian network container: validation, topological
ordering, structural queries and conditional probability lookup.
*/

package network

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	vTrue  = BoolValue(true)
	vFalse = BoolValue(false)
)

func boolRow(t *testing.T, n *Node, parents Assignment, pTrue float64) {
	t.Helper()
	require.NoError(t, n.SetDistribution(parents, map[Value]float64{vTrue: pTrue, vFalse: 1 - pTrue}))
}

func buildBurglary(t *testing.T) *Network {
	t.Helper()
	bn := New("burglary")

	burglary := NewNode("Burglary", BoolDomain())
	boolRow(t, burglary, Assignment{}, 0.001)
	earthquake := NewNode("Earthquake", BoolDomain())
	boolRow(t, earthquake, Assignment{}, 0.002)

	alarm := NewNode("Alarm", BoolDomain(), "Burglary", "Earthquake")
	boolRow(t, alarm, Assignment{"Burglary": vTrue, "Earthquake": vTrue}, 0.95)
	boolRow(t, alarm, Assignment{"Burglary": vTrue, "Earthquake": vFalse}, 0.94)
	boolRow(t, alarm, Assignment{"Burglary": vFalse, "Earthquake": vTrue}, 0.29)
	boolRow(t, alarm, Assignment{"Burglary": vFalse, "Earthquake": vFalse}, 0.001)

	john := NewNode("JohnCalls", BoolDomain(), "Alarm")
	boolRow(t, john, Assignment{"Alarm": vTrue}, 0.90)
	boolRow(t, john, Assignment{"Alarm": vFalse}, 0.05)

	mary := NewNode("MaryCalls", BoolDomain(), "Alarm")
	boolRow(t, mary, Assignment{"Alarm": vTrue}, 0.70)
	boolRow(t, mary, Assignment{"Alarm": vFalse}, 0.01)

	for _, n := range []*Node{burglary, earthquake, alarm, john, mary} {
		require.NoError(t, bn.AddNode(n))
	}
	return bn
}

func TestValidateBurglaryNetwork(t *testing.T) {
	bn := buildBurglary(t)
	require.NoError(t, bn.Validate())
	// Validation is read-only and repeatable
	require.NoError(t, bn.Validate())
	assert.Equal(t, 5, bn.Len())
	assert.Len(t, bn.Edges(), 4)
}

func TestValidateDetectsCycle(t *testing.T) {
	bn := New("cycle")
	a := NewNode("A", BoolDomain(), "B")
	b := NewNode("B", BoolDomain(), "A")
	boolRow(t, a, Assignment{"B": vTrue}, 0.5)
	boolRow(t, a, Assignment{"B": vFalse}, 0.5)
	boolRow(t, b, Assignment{"A": vTrue}, 0.5)
	boolRow(t, b, Assignment{"A": vFalse}, 0.5)
	require.NoError(t, bn.AddNode(a))
	require.NoError(t, bn.AddNode(b))

	err := bn.Validate()
	var structural *StructuralError
	require.True(t, errors.As(err, &structural))
	assert.Contains(t, structural.Reason, "cycle")
	assert.False(t, bn.IsDAG())
}

func TestValidateDetectsUndeclaredParent(t *testing.T) {
	bn := New("dangling")
	a := NewNode("A", BoolDomain(), "Ghost")
	boolRow(t, a, Assignment{"Ghost": vTrue}, 0.5)
	require.NoError(t, bn.AddNode(a))

	err := bn.Validate()
	var structural *StructuralError
	require.True(t, errors.As(err, &structural))
	assert.Equal(t, "A", structural.Node)
	assert.Contains(t, structural.Reason, "Ghost")
}

func TestValidateDetectsMissingRow(t *testing.T) {
	bn := New("missing")
	root := NewNode("Root", BoolDomain())
	boolRow(t, root, Assignment{}, 0.3)
	child := NewNode("Child", BoolDomain(), "Root")
	boolRow(t, child, Assignment{"Root": vTrue}, 0.6)
	require.NoError(t, bn.AddNode(root))
	require.NoError(t, bn.AddNode(child))

	err := bn.Validate()
	var structural *StructuralError
	require.True(t, errors.As(err, &structural))
	assert.Equal(t, "Child", structural.Node)
	assert.Contains(t, structural.Reason, "missing CPT row")
}

func TestValidateDetectsBadRowSum(t *testing.T) {
	bn := New("sum")
	root := NewNode("Root", BoolDomain())
	require.NoError(t, root.SetDistribution(Assignment{}, map[Value]float64{vTrue: 0.5, vFalse: 0.4}))
	require.NoError(t, bn.AddNode(root))

	err := bn.Validate()
	var structural *StructuralError
	require.True(t, errors.As(err, &structural))
	assert.Contains(t, structural.Reason, "sums to")
}

func TestValidateRowSumTolerance(t *testing.T) {
	bn := New("tolerance")
	root := NewNode("Root", BoolDomain())
	require.NoError(t, root.SetRow(Assignment{}, []float64{0.5, 0.5000005}))
	require.NoError(t, bn.AddNode(root))
	assert.NoError(t, bn.Validate())
}

func TestValidateDomainRules(t *testing.T) {
	single := New("single")
	require.NoError(t, single.AddNode(NewNode("X", StringDomain("only"))))
	assert.Error(t, single.Validate())

	mixed := New("mixed")
	require.NoError(t, mixed.AddNode(NewNode("X", Domain{BoolValue(true), IntValue(1)})))
	err := mixed.Validate()
	var structural *StructuralError
	require.True(t, errors.As(err, &structural))
	assert.Contains(t, structural.Reason, "mixes")

	assert.Error(t, New("empty").Validate())
}

func TestAddNodeRejectsDuplicates(t *testing.T) {
	bn := New("dup")
	require.NoError(t, bn.AddNode(NewNode("A", BoolDomain())))
	err := bn.AddNode(NewNode("A", BoolDomain()))
	var structural *StructuralError
	require.True(t, errors.As(err, &structural))
}

func TestSetDistributionRejectsUnknownParentKey(t *testing.T) {
	n := NewNode("A", BoolDomain(), "B")
	err := n.SetDistribution(Assignment{"C": vTrue}, map[Value]float64{vTrue: 1})
	var structural *StructuralError
	require.True(t, errors.As(err, &structural))

	err = n.SetDistribution(Assignment{"B": vTrue}, map[Value]float64{StringValue("maybe"): 1})
	var domainErr *DomainError
	require.True(t, errors.As(err, &domainErr))
}

func TestTopologicalOrderStable(t *testing.T) {
	bn := buildBurglary(t)
	order, err := bn.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, []string{"Burglary", "Earthquake", "Alarm", "JohnCalls", "MaryCalls"}, order)

	again, err := bn.TopologicalOrder()
	require.NoError(t, err)
	assert.Equal(t, order, again)
}

func TestTopologicalOrderIgnoresDeclarationOrderOfDependencies(t *testing.T) {
	// Children declared before their parents still come after them
	bn := New("reversed")
	c := NewNode("C", BoolDomain(), "B")
	b := NewNode("B", BoolDomain(), "A")
	a := NewNode("A", BoolDomain())
	d := NewNode("D", BoolDomain())
	for _, n := range []*Node{c, b, a, d} {
		require.NoError(t, bn.AddNode(n))
	}

	order, err := bn.TopologicalOrder()
	require.NoError(t, err)
	// A and D start ready and A is declared first; B and C then become ready
	// ahead of D in declaration order
	assert.Equal(t, []string{"A", "B", "C", "D"}, order)
}

func TestStructuralQueries(t *testing.T) {
	bn := buildBurglary(t)

	ancestors, err := bn.Ancestors("JohnCalls")
	require.NoError(t, err)
	assert.Equal(t, []string{"Burglary", "Earthquake", "Alarm"}, ancestors)

	descendants, err := bn.Descendants("Burglary")
	require.NoError(t, err)
	assert.Equal(t, []string{"Alarm", "JohnCalls", "MaryCalls"}, descendants)

	children, err := bn.Children("Alarm")
	require.NoError(t, err)
	assert.Equal(t, []string{"JohnCalls", "MaryCalls"}, children)

	blanket, err := bn.MarkovBlanket("Burglary")
	require.NoError(t, err)
	assert.Equal(t, []string{"Earthquake", "Alarm"}, blanket)

	_, err = bn.Ancestors("Nope")
	var unknown *UnknownVariableError
	assert.True(t, errors.As(err, &unknown))
}

func TestProbabilityLookup(t *testing.T) {
	bn := buildBurglary(t)

	p, err := bn.Probability("Alarm", vTrue, Assignment{"Burglary": vFalse, "Earthquake": vTrue})
	require.NoError(t, err)
	assert.InDelta(t, 0.29, p, 1e-12)

	p, err = bn.Probability("Burglary", vFalse, Assignment{})
	require.NoError(t, err)
	assert.InDelta(t, 0.999, p, 1e-12)

	_, err = bn.Probability("Nope", vTrue, Assignment{})
	var unknown *UnknownVariableError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Nope", unknown.Variable)

	_, err = bn.Probability("Alarm", vTrue, Assignment{"Burglary": vTrue, "Earthquake": vTrue, "Ghost": vTrue})
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Ghost", unknown.Variable)

	_, err = bn.Probability("Alarm", StringValue("loud"), Assignment{"Burglary": vTrue, "Earthquake": vTrue})
	var domainErr *DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "Alarm", domainErr.Variable)

	_, err = bn.Probability("Alarm", vTrue, Assignment{"Burglary": vTrue})
	var invalid *InvalidQueryError
	assert.True(t, errors.As(err, &invalid))
}

func TestParentCombinations(t *testing.T) {
	bn := buildBurglary(t)
	combos, err := bn.ParentCombinations("Alarm")
	require.NoError(t, err)
	require.Len(t, combos, 4)
	assert.Equal(t, Assignment{"Burglary": vTrue, "Earthquake": vTrue}, combos[0])
	assert.Equal(t, Assignment{"Burglary": vFalse, "Earthquake": vFalse}, combos[3])

	roots, err := bn.ParentCombinations("Burglary")
	require.NoError(t, err)
	assert.Equal(t, []Assignment{{}}, roots)
}

func TestValueParsingAndLiterals(t *testing.T) {
	assert.Equal(t, BoolValue(true), ParseValue("TRUE"))
	assert.Equal(t, IntValue(42), ParseValue(" 42 "))
	assert.Equal(t, StringValue("high"), ParseValue("high"))
	assert.Equal(t, StringValue("1.5"), ParseValue("1.5"))

	assert.True(t, BoolValue(false).MatchesLiteral("False"))
	assert.NotEqual(t, StringValue("1"), IntValue(1))

	d := IntDomain(1, 2, 3)
	v, ok := d.Lookup("2")
	require.True(t, ok)
	assert.Equal(t, IntValue(2), v)

	data, err := StringValue("a\"b").MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"a\"b"`, string(data))
}

func TestAssignmentHelpers(t *testing.T) {
	a := Assignment{"B": vTrue}
	b := a.With("A", vFalse)
	assert.False(t, a.Has("A"))
	assert.True(t, b.Has("A"))
	assert.Equal(t, "A=false, B=true", b.String())
	assert.Equal(t, "{}", Assignment{}.String())
}
