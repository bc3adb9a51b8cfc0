/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: factor_test.go
Description: Tests for factor construction from CPTs, pointwise product, summing
out, normalization and the error cases of each operation.
*/

package factor

import (
	"errors"
	"testing"

	"github.com/kleascm/bayes-engine/pkg/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	vTrue  = network.BoolValue(true)
	vFalse = network.BoolValue(false)
)

// rainNetwork builds Rain -> WetGrass <- Sprinkler
func rainNetwork(t *testing.T) *network.Network {
	t.Helper()
	bn := network.New("rain")

	rain := network.NewNode("Rain", network.BoolDomain())
	require.NoError(t, rain.SetRow(network.Assignment{}, []float64{0.2, 0.8}))
	sprinkler := network.NewNode("Sprinkler", network.BoolDomain())
	require.NoError(t, sprinkler.SetRow(network.Assignment{}, []float64{0.4, 0.6}))

	wet := network.NewNode("WetGrass", network.BoolDomain(), "Rain", "Sprinkler")
	require.NoError(t, wet.SetRow(network.Assignment{"Rain": vTrue, "Sprinkler": vTrue}, []float64{0.99, 0.01}))
	require.NoError(t, wet.SetRow(network.Assignment{"Rain": vTrue, "Sprinkler": vFalse}, []float64{0.8, 0.2}))
	require.NoError(t, wet.SetRow(network.Assignment{"Rain": vFalse, "Sprinkler": vTrue}, []float64{0.9, 0.1}))
	require.NoError(t, wet.SetRow(network.Assignment{"Rain": vFalse, "Sprinkler": vFalse}, []float64{0.0, 1.0}))

	for _, n := range []*network.Node{rain, sprinkler, wet} {
		require.NoError(t, bn.AddNode(n))
	}
	require.NoError(t, bn.Validate())
	return bn
}

func mustNode(t *testing.T, bn *network.Network, name string) *network.Node {
	t.Helper()
	n, err := bn.Node(name)
	require.NoError(t, err)
	return n
}

func TestNewLayout(t *testing.T) {
	f, err := New([]string{"A", "B"}, []network.Domain{network.BoolDomain(), network.IntDomain(1, 2, 3)})
	require.NoError(t, err)
	assert.Equal(t, 6, f.Size())
	assert.Equal(t, []string{"A", "B"}, f.Scope())

	// Last variable varies fastest
	require.NoError(t, f.Set(network.Assignment{"A": vTrue, "B": network.IntValue(2)}, 0.5))
	assert.Equal(t, []float64{0, 0.5, 0, 0, 0, 0}, f.Values())

	v, err := f.Value(network.Assignment{"A": vTrue, "B": network.IntValue(2), "Other": vFalse})
	require.NoError(t, err)
	assert.Equal(t, 0.5, v)

	_, err = New([]string{"A", "A"}, []network.Domain{network.BoolDomain(), network.BoolDomain()})
	var shape *network.ShapeError
	assert.True(t, errors.As(err, &shape))

	_, err = New([]string{"A"}, nil)
	assert.True(t, errors.As(err, &shape))
}

func TestValueErrors(t *testing.T) {
	f, err := New([]string{"A"}, []network.Domain{network.BoolDomain()})
	require.NoError(t, err)

	_, err = f.Value(network.Assignment{})
	var scope *network.ScopeError
	require.True(t, errors.As(err, &scope))
	assert.Equal(t, "A", scope.Variable)

	_, err = f.Value(network.Assignment{"A": network.StringValue("x")})
	var domainErr *network.DomainError
	assert.True(t, errors.As(err, &domainErr))
}

func TestFromCPT(t *testing.T) {
	bn := rainNetwork(t)
	wet := mustNode(t, bn, "WetGrass")

	// Test the unrestricted factor
	f, err := FromCPT(bn, wet, network.Assignment{})
	require.NoError(t, err)
	assert.Equal(t, []string{"WetGrass", "Rain", "Sprinkler"}, f.Scope())
	assert.Equal(t, 8, f.Size())
	v, err := f.Value(network.Assignment{"WetGrass": vTrue, "Rain": vFalse, "Sprinkler": vTrue})
	require.NoError(t, err)
	assert.InDelta(t, 0.9, v, 1e-12)

	// Test with the node itself observed
	f, err = FromCPT(bn, wet, network.Assignment{"WetGrass": vTrue})
	require.NoError(t, err)
	assert.Equal(t, []string{"Rain", "Sprinkler"}, f.Scope())
	assert.InDeltaSlice(t, []float64{0.99, 0.8, 0.9, 0.0}, f.Values(), 1e-12)

	// Test with a parent observed
	f, err = FromCPT(bn, wet, network.Assignment{"Rain": vTrue})
	require.NoError(t, err)
	assert.Equal(t, []string{"WetGrass", "Sprinkler"}, f.Scope())
	assert.InDeltaSlice(t, []float64{0.99, 0.8, 0.01, 0.2}, f.Values(), 1e-12)

	// Everything observed leaves a scalar
	f, err = FromCPT(bn, wet, network.Assignment{"WetGrass": vFalse, "Rain": vFalse, "Sprinkler": vFalse})
	require.NoError(t, err)
	assert.Empty(t, f.Scope())
	assert.Equal(t, []float64{1.0}, f.Values())

	_, err = FromCPT(bn, wet, network.Assignment{"Rain": network.StringValue("drizzle")})
	var domainErr *network.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "Rain", domainErr.Variable)
}

func TestRestrict(t *testing.T) {
	f, err := New([]string{"A", "B"}, []network.Domain{network.BoolDomain(), network.IntDomain(1, 2, 3)})
	require.NoError(t, err)
	for i, a := range []network.Value{vTrue, vFalse} {
		for j := int64(1); j <= 3; j++ {
			require.NoError(t, f.Set(network.Assignment{"A": a, "B": network.IntValue(j)}, float64(i*10)+float64(j)))
		}
	}

	// Observed variables leave the scope, the rest keep their order
	r, err := Restrict(f, network.Assignment{"B": network.IntValue(2)})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, r.Scope())
	assert.Equal(t, []float64{2, 12}, r.Values())

	r, err = Restrict(f, network.Assignment{"A": vFalse, "Other": vTrue})
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, r.Scope())
	assert.Equal(t, []float64{11, 12, 13}, r.Values())

	// No evidence on the scope copies the table
	r, err = Restrict(f, network.Assignment{})
	require.NoError(t, err)
	assert.Equal(t, f.Scope(), r.Scope())
	assert.Equal(t, f.Values(), r.Values())

	// All observed gives a scalar
	r, err = Restrict(f, network.Assignment{"A": vTrue, "B": network.IntValue(3)})
	require.NoError(t, err)
	assert.Empty(t, r.Scope())
	assert.Equal(t, 1, r.Size())
	assert.Equal(t, []float64{3}, r.Values())

	_, err = Restrict(f, network.Assignment{"B": network.IntValue(7)})
	var domainErr *network.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "B", domainErr.Variable)
}

func TestPointwiseProduct(t *testing.T) {
	bn := rainNetwork(t)
	rain, err := FromCPT(bn, mustNode(t, bn, "Rain"), network.Assignment{})
	require.NoError(t, err)
	wet, err := FromCPT(bn, mustNode(t, bn, "WetGrass"), network.Assignment{"Sprinkler": vFalse})
	require.NoError(t, err)

	product, err := PointwiseProduct(rain, wet)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rain", "WetGrass"}, product.Scope())

	v, err := product.Value(network.Assignment{"Rain": vTrue, "WetGrass": vTrue})
	require.NoError(t, err)
	assert.InDelta(t, 0.2*0.8, v, 1e-12)
	v, err = product.Value(network.Assignment{"Rain": vFalse, "WetGrass": vFalse})
	require.NoError(t, err)
	assert.InDelta(t, 0.8*1.0, v, 1e-12)

	// Unit is the identity
	same, err := PointwiseProduct(Unit(), rain)
	require.NoError(t, err)
	assert.Equal(t, rain.Scope(), same.Scope())
	assert.Equal(t, rain.Values(), same.Values())
}

func TestPointwiseProductDisjointScopes(t *testing.T) {
	a, err := New([]string{"A"}, []network.Domain{network.BoolDomain()})
	require.NoError(t, err)
	copy(a.values, []float64{2, 3})
	b, err := New([]string{"B"}, []network.Domain{network.IntDomain(0, 1, 2)})
	require.NoError(t, err)
	copy(b.values, []float64{1, 10, 100})

	product, err := PointwiseProduct(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 20, 200, 3, 30, 300}, product.Values())
}

func TestPointwiseProductDomainMismatch(t *testing.T) {
	a, err := New([]string{"X"}, []network.Domain{network.BoolDomain()})
	require.NoError(t, err)
	b, err := New([]string{"X"}, []network.Domain{network.StringDomain("lo", "hi")})
	require.NoError(t, err)

	_, err = PointwiseProduct(a, b)
	var shape *network.ShapeError
	require.True(t, errors.As(err, &shape))
	assert.Equal(t, "X", shape.Variable)
}

func TestSumOut(t *testing.T) {
	bn := rainNetwork(t)
	wet, err := FromCPT(bn, mustNode(t, bn, "WetGrass"), network.Assignment{})
	require.NoError(t, err)

	// Each CPT row sums to one, so summing out the child leaves all ones
	f, err := SumOut(wet, "WetGrass")
	require.NoError(t, err)
	assert.Equal(t, []string{"Rain", "Sprinkler"}, f.Scope())
	assert.InDeltaSlice(t, []float64{1, 1, 1, 1}, f.Values(), 1e-12)

	// Summing out a middle variable
	f, err = SumOut(wet, "Rain")
	require.NoError(t, err)
	assert.Equal(t, []string{"WetGrass", "Sprinkler"}, f.Scope())
	assert.InDeltaSlice(t, []float64{0.99 + 0.9, 0.8 + 0.0, 0.01 + 0.1, 0.2 + 1.0}, f.Values(), 1e-12)

	_, err = SumOut(wet, "Cloudy")
	var scope *network.ScopeError
	require.True(t, errors.As(err, &scope))
	assert.Equal(t, "Cloudy", scope.Variable)
}

func TestNormalize(t *testing.T) {
	f, err := New([]string{"A"}, []network.Domain{network.BoolDomain()})
	require.NoError(t, err)
	copy(f.values, []float64{1, 3})

	n, err := Normalize(f)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.25, 0.75}, n.Values(), 1e-12)
	// The input is left untouched
	assert.Equal(t, []float64{1, 3}, f.Values())

	zero, err := New([]string{"A"}, []network.Domain{network.BoolDomain()})
	require.NoError(t, err)
	_, err = Normalize(zero)
	var numerical *network.NumericalError
	require.True(t, errors.As(err, &numerical))
	assert.Equal(t, "A", numerical.Query)

	wide, err := New([]string{"A", "B"}, []network.Domain{network.BoolDomain(), network.BoolDomain()})
	require.NoError(t, err)
	_, err = Normalize(wide)
	var shape *network.ShapeError
	assert.True(t, errors.As(err, &shape))
}

func TestProductAll(t *testing.T) {
	unit, err := ProductAll(nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, unit.Values())

	bn := rainNetwork(t)
	factors := make([]*Factor, 0, 3)
	for _, node := range bn.Nodes() {
		f, err := FromCPT(bn, node, network.Assignment{})
		require.NoError(t, err)
		factors = append(factors, f)
	}
	joint, err := ProductAll(factors)
	require.NoError(t, err)
	assert.Equal(t, []string{"Rain", "Sprinkler", "WetGrass"}, joint.Scope())

	total := 0.0
	for _, v := range joint.Values() {
		total += v
	}
	assert.InDelta(t, 1.0, total, 1e-12)
}

func TestString(t *testing.T) {
	f, err := New([]string{"A"}, []network.Domain{network.BoolDomain()})
	require.NoError(t, err)
	copy(f.values, []float64{0.25, 0.75})
	out := f.String()
	assert.Contains(t, out, "Factor([A], 2 entries)")
	assert.Contains(t, out, "A=false: 0.750000")
}
