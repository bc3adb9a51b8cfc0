/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: factor.go
Description: Dense factor algebra for variable elimination. A factor maps every
combination of values of its ordered scope to a non-negative real; the table is
stored row-major with the first scope variable varying slowest.
*/

package factor

import (
	"fmt"
	"strings"

	"github.com/kleascm/bayes-engine/pkg/network"
	"gonum.org/v1/gonum/floats"
)

// Factor is a function from an ordered set of variables to non-negative reals
type Factor struct {
	scope   []string
	domains []network.Domain
	strides []int
	values  []float64
}

// New creates a zero-filled factor over the given scope
func New(scope []string, domains []network.Domain) (*Factor, error) {
	if len(scope) != len(domains) {
		return nil, &network.ShapeError{Reason: fmt.Sprintf("%d variables but %d domains", len(scope), len(domains))}
	}
	seen := make(map[string]bool, len(scope))
	for i, v := range scope {
		if seen[v] {
			return nil, &network.ShapeError{Variable: v, Reason: "variable appears twice in scope"}
		}
		seen[v] = true
		if len(domains[i]) == 0 {
			return nil, &network.ShapeError{Variable: v, Reason: "empty domain"}
		}
	}

	f := &Factor{
		scope:   append([]string(nil), scope...),
		domains: append([]network.Domain(nil), domains...),
		strides: make([]int, len(scope)),
	}
	size := 1
	for i := len(scope) - 1; i >= 0; i-- {
		f.strides[i] = size
		size *= len(domains[i])
	}
	f.values = make([]float64, size)
	return f, nil
}

// Unit returns the scalar factor 1, the identity of PointwiseProduct
func Unit() *Factor {
	return &Factor{values: []float64{1}}
}

// Scope returns the ordered scope variables
func (f *Factor) Scope() []string {
	return append([]string(nil), f.scope...)
}

// Size returns the number of table entries
func (f *Factor) Size() int {
	return len(f.values)
}

// Values returns a copy of the table in row-major order
func (f *Factor) Values() []float64 {
	return append([]float64(nil), f.values...)
}

// Contains reports whether variable is in the scope
func (f *Factor) Contains(variable string) bool {
	return f.position(variable) >= 0
}

// Domain returns the domain the factor uses for variable
func (f *Factor) Domain(variable string) (network.Domain, error) {
	pos := f.position(variable)
	if pos < 0 {
		return nil, &network.ScopeError{Variable: variable, Scope: f.Scope()}
	}
	return f.domains[pos], nil
}

func (f *Factor) position(variable string) int {
	for i, v := range f.scope {
		if v == variable {
			return i
		}
	}
	return -1
}

// offset maps an assignment covering the scope to a table index
func (f *Factor) offset(a network.Assignment) (int, error) {
	idx := 0
	for i, v := range f.scope {
		value, ok := a[v]
		if !ok {
			return 0, &network.ScopeError{Variable: v, Scope: a.Names()}
		}
		pos := f.domains[i].IndexOf(value)
		if pos < 0 {
			return 0, &network.DomainError{Variable: v, Value: value, Domain: f.domains[i]}
		}
		idx += pos * f.strides[i]
	}
	return idx, nil
}

// Value returns the entry selected by a. Keys outside the scope are ignored.
func (f *Factor) Value(a network.Assignment) (float64, error) {
	idx, err := f.offset(a)
	if err != nil {
		return 0, err
	}
	return f.values[idx], nil
}

// Set stores the entry selected by a
func (f *Factor) Set(a network.Assignment, value float64) error {
	idx, err := f.offset(a)
	if err != nil {
		return err
	}
	f.values[idx] = value
	return nil
}

// assignmentAt decodes a table index into an assignment over the scope
func (f *Factor) assignmentAt(idx int) network.Assignment {
	a := make(network.Assignment, len(f.scope))
	for i, v := range f.scope {
		pos := (idx / f.strides[i]) % len(f.domains[i])
		a[v] = f.domains[i][pos]
	}
	return a
}

// FromCPT builds the factor for node restricted by evidence. The scope is the
// node itself (unless observed) followed by its unobserved parents in declared
// order.
func FromCPT(bn *network.Network, node *network.Node, evidence network.Assignment) (*Factor, error) {
	scope := append([]string{node.Name()}, node.Parents()...)
	domains := make([]network.Domain, len(scope))
	domains[0] = node.Domain()
	for i, p := range node.Parents() {
		parent, err := bn.Node(p)
		if err != nil {
			return nil, err
		}
		domains[i+1] = parent.Domain()
	}

	full, err := New(scope, domains)
	if err != nil {
		return nil, err
	}
	for idx := range full.values {
		a := full.assignmentAt(idx)
		p, err := node.Probability(a[node.Name()], a)
		if err != nil {
			return nil, fmt.Errorf("building factor for '%s': %w", node.Name(), err)
		}
		full.values[idx] = p
	}
	return Restrict(full, evidence)
}

// Restrict fixes the observed variables of the scope to their evidence values
// and drops them. Evidence on variables outside the scope is ignored; when
// every variable is observed the result is a scalar factor.
func Restrict(f *Factor, evidence network.Assignment) (*Factor, error) {
	scope := make([]string, 0, len(f.scope))
	domains := make([]network.Domain, 0, len(f.scope))
	fixed := make(network.Assignment)
	for i, v := range f.scope {
		value, ok := evidence[v]
		if !ok {
			scope = append(scope, v)
			domains = append(domains, f.domains[i])
			continue
		}
		if !f.domains[i].Contains(value) {
			return nil, &network.DomainError{Variable: v, Value: value, Domain: f.domains[i]}
		}
		fixed[v] = value
	}

	result, err := New(scope, domains)
	if err != nil {
		return nil, err
	}
	for idx := range result.values {
		a := result.assignmentAt(idx)
		for k, v := range fixed {
			a[k] = v
		}
		value, err := f.Value(a)
		if err != nil {
			return nil, err
		}
		result.values[idx] = value
	}
	return result, nil
}

// PointwiseProduct multiplies two factors. The result scope is f1's scope
// followed by the variables of f2 not already present.
func PointwiseProduct(f1, f2 *Factor) (*Factor, error) {
	scope := append([]string(nil), f1.scope...)
	domains := append([]network.Domain(nil), f1.domains...)
	for i, v := range f2.scope {
		if pos := f1.position(v); pos >= 0 {
			if !f1.domains[pos].Equal(f2.domains[i]) {
				return nil, &network.ShapeError{
					Variable: v,
					Reason:   fmt.Sprintf("domain %s does not match %s", f1.domains[pos], f2.domains[i]),
				}
			}
			continue
		}
		scope = append(scope, v)
		domains = append(domains, f2.domains[i])
	}

	result, err := New(scope, domains)
	if err != nil {
		return nil, err
	}

	// Stride of each result variable inside f1 and f2 (0 when absent)
	s1 := make([]int, len(scope))
	s2 := make([]int, len(scope))
	for i, v := range scope {
		if pos := f1.position(v); pos >= 0 {
			s1[i] = f1.strides[pos]
		}
		if pos := f2.position(v); pos >= 0 {
			s2[i] = f2.strides[pos]
		}
	}

	counter := make([]int, len(scope))
	i1, i2 := 0, 0
	for idx := range result.values {
		result.values[idx] = f1.values[i1] * f2.values[i2]

		// Advance the odometer, last variable fastest
		for d := len(scope) - 1; d >= 0; d-- {
			counter[d]++
			i1 += s1[d]
			i2 += s2[d]
			if counter[d] < len(domains[d]) {
				break
			}
			i1 -= s1[d] * counter[d]
			i2 -= s2[d] * counter[d]
			counter[d] = 0
		}
	}
	return result, nil
}

// ProductAll folds PointwiseProduct over factors from the left. An empty list
// yields the unit factor.
func ProductAll(factors []*Factor) (*Factor, error) {
	if len(factors) == 0 {
		return Unit(), nil
	}
	result := factors[0]
	for _, f := range factors[1:] {
		var err error
		result, err = PointwiseProduct(result, f)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// SumOut marginalises variable out of the factor
func SumOut(f *Factor, variable string) (*Factor, error) {
	pos := f.position(variable)
	if pos < 0 {
		return nil, &network.ScopeError{Variable: variable, Scope: f.Scope()}
	}

	scope := make([]string, 0, len(f.scope)-1)
	domains := make([]network.Domain, 0, len(f.scope)-1)
	for i, v := range f.scope {
		if i != pos {
			scope = append(scope, v)
			domains = append(domains, f.domains[i])
		}
	}
	result, err := New(scope, domains)
	if err != nil {
		return nil, err
	}

	// Entries sharing the block before pos and the offset after it collapse
	stride := f.strides[pos]
	card := len(f.domains[pos])
	block := stride * card
	for idx, v := range f.values {
		outer := idx / block
		inner := idx % stride
		result.values[outer*stride+inner] += v
	}
	return result, nil
}

// Normalize rescales a single-variable factor so its entries sum to one
func Normalize(f *Factor) (*Factor, error) {
	if len(f.scope) != 1 {
		return nil, &network.ShapeError{Reason: fmt.Sprintf("normalize needs a single-variable factor, scope is [%s]", strings.Join(f.scope, ", "))}
	}
	sum := floats.Sum(f.values)
	if !(sum > 0) {
		return nil, &network.NumericalError{Query: f.scope[0], Sum: sum}
	}
	result, err := New(f.scope, f.domains)
	if err != nil {
		return nil, err
	}
	copy(result.values, f.values)
	floats.Scale(1/sum, result.values)
	return result, nil
}

// String renders the factor as a table, one entry per line
func (f *Factor) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Factor([%s], %d entries)\n", strings.Join(f.scope, ", "), len(f.values))
	for idx, v := range f.values {
		a := f.assignmentAt(idx)
		parts := make([]string, len(f.scope))
		for i, name := range f.scope {
			parts[i] = name + "=" + a[name].String()
		}
		fmt.Fprintf(&b, "  %s: %.6f\n", strings.Join(parts, ", "), v)
	}
	return b.String()
}
