/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: errors.go
Description: Error taxonomy for the inference engine. Every failure surfaced to a
caller is one of these typed errors so the presentation layer can tell them apart
with errors.As and print the offending variable or value.
*/

package network

import (
	"fmt"
	"strings"
)

// StructuralError reports a network that violates acyclicity, completeness or
// CPT-sum invariants
type StructuralError struct {
	Node   string
	Reason string
}

func (e *StructuralError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("structural error: %s", e.Reason)
	}
	return fmt.Sprintf("structural error in node '%s': %s", e.Node, e.Reason)
}

// UnknownVariableError reports a reference to a variable absent from the network
type UnknownVariableError struct {
	Variable string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("unknown variable '%s'", e.Variable)
}

// DomainError reports a value outside its variable's declared domain
type DomainError struct {
	Variable string
	Value    Value
	Domain   Domain
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("value '%s' is outside the domain %s of variable '%s'", e.Value, e.Domain, e.Variable)
}

// InvalidQueryError reports a malformed query, such as the query variable
// appearing in its own evidence
type InvalidQueryError struct {
	Query  string
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("invalid query for '%s': %s", e.Query, e.Reason)
}

// ShapeError reports factors that cannot be combined. Unreachable for factors
// built from one validated network.
type ShapeError struct {
	Variable string
	Reason   string
}

func (e *ShapeError) Error() string {
	if e.Variable == "" {
		return fmt.Sprintf("factor shape error: %s", e.Reason)
	}
	return fmt.Sprintf("factor shape error on '%s': %s", e.Variable, e.Reason)
}

// ScopeError reports an operation on a variable outside a factor's scope
type ScopeError struct {
	Variable string
	Scope    []string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("variable '%s' is not in factor scope [%s]", e.Variable, strings.Join(e.Scope, ", "))
}

// NumericalError reports a non-positive normalization sum
type NumericalError struct {
	Query string
	Sum   float64
}

func (e *NumericalError) Error() string {
	if e.Query == "" {
		return fmt.Sprintf("cannot normalize: sum of entries is %g", e.Sum)
	}
	return fmt.Sprintf("cannot normalize distribution of '%s': sum is %g (evidence has zero probability)", e.Query, e.Sum)
}
