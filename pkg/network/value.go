/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: value.go
Description: Value, Domain and Assignment types for the Bayesian network engine.
Values are small comparable tagged unions over bool, integer and string so they
can be used directly as map keys, domain members and factor coordinates.
*/

package network

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the underlying type of a Value
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindString
)

// String returns the name of the kind
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// Value is one element of a variable's domain
type Value struct {
	kind Kind
	b    bool
	i    int64
	s    string
}

// BoolValue creates a boolean value
func BoolValue(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// IntValue creates an integer value
func IntValue(i int64) Value {
	return Value{kind: KindInt, i: i}
}

// StringValue creates a string value
func StringValue(s string) Value {
	return Value{kind: KindString, s: s}
}

// ParseValue converts a literal into a Value. "true"/"false" (any case) become
// booleans, integer literals become integers and anything else is kept as a string.
func ParseValue(literal string) Value {
	literal = strings.TrimSpace(literal)
	switch strings.ToLower(literal) {
	case "true":
		return BoolValue(true)
	case "false":
		return BoolValue(false)
	}
	if i, err := strconv.ParseInt(literal, 10, 64); err == nil {
		return IntValue(i)
	}
	return StringValue(literal)
}

// Kind returns the kind of the value
func (v Value) Kind() Kind {
	return v.kind
}

// IsValid reports whether the value was built with one of the constructors
func (v Value) IsValid() bool {
	return v.kind != KindInvalid
}

// Bool returns the boolean payload
func (v Value) Bool() bool {
	return v.b
}

// Int returns the integer payload
func (v Value) Int() int64 {
	return v.i
}

// Str returns the string payload
func (v Value) Str() string {
	return v.s
}

// Interface returns the payload as a plain Go value
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindString:
		return v.s
	default:
		return nil
	}
}

// String returns the literal form of the value
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindString:
		return v.s
	default:
		return "<invalid>"
	}
}

// key returns an encoding that is unique across kinds
func (v Value) key() string {
	switch v.kind {
	case KindBool:
		if v.b {
			return "b:1"
		}
		return "b:0"
	case KindInt:
		return "i:" + strconv.FormatInt(v.i, 10)
	case KindString:
		return "s:" + v.s
	default:
		return "?"
	}
}

// MatchesLiteral reports whether a user-supplied literal denotes this value.
// Booleans compare case-insensitively.
func (v Value) MatchesLiteral(literal string) bool {
	literal = strings.TrimSpace(literal)
	if v.kind == KindBool {
		return strings.EqualFold(literal, v.String())
	}
	return literal == v.String()
}

// MarshalJSON encodes the value as its natural JSON literal
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return []byte(strconv.FormatBool(v.b)), nil
	case KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindString:
		return []byte(strconv.Quote(v.s)), nil
	default:
		return nil, fmt.Errorf("cannot marshal invalid value")
	}
}

// MarshalYAML encodes the value as its plain payload
func (v Value) MarshalYAML() (interface{}, error) {
	if !v.IsValid() {
		return nil, fmt.Errorf("cannot marshal invalid value")
	}
	return v.Interface(), nil
}

// Domain is the ordered set of values a variable can take
type Domain []Value

// BoolDomain returns the canonical boolean domain [true, false]
func BoolDomain() Domain {
	return Domain{BoolValue(true), BoolValue(false)}
}

// StringDomain builds a domain of string values
func StringDomain(values ...string) Domain {
	d := make(Domain, len(values))
	for i, s := range values {
		d[i] = StringValue(s)
	}
	return d
}

// IntDomain builds a domain of integer values
func IntDomain(values ...int64) Domain {
	d := make(Domain, len(values))
	for i, n := range values {
		d[i] = IntValue(n)
	}
	return d
}

// IndexOf returns the position of v in the domain, or -1
func (d Domain) IndexOf(v Value) int {
	for i, dv := range d {
		if dv == v {
			return i
		}
	}
	return -1
}

// Contains reports whether v belongs to the domain
func (d Domain) Contains(v Value) bool {
	return d.IndexOf(v) >= 0
}

// Lookup finds the domain value whose literal form matches the given text
func (d Domain) Lookup(literal string) (Value, bool) {
	for _, dv := range d {
		if dv.MatchesLiteral(literal) {
			return dv, true
		}
	}
	return Value{}, false
}

// Equal reports whether two domains hold the same values in the same order
func (d Domain) Equal(other Domain) bool {
	if len(d) != len(other) {
		return false
	}
	for i := range d {
		if d[i] != other[i] {
			return false
		}
	}
	return true
}

// String renders the domain as [a, b, c]
func (d Domain) String() string {
	parts := make([]string, len(d))
	for i, v := range d {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Assignment maps variable names to values. It is used as evidence, as a
// partial restriction and as a full joint state.
type Assignment map[string]Value

// Clone returns an independent copy of the assignment
func (a Assignment) Clone() Assignment {
	c := make(Assignment, len(a)+1)
	for k, v := range a {
		c[k] = v
	}
	return c
}

// With returns a copy of the assignment extended with name=v
func (a Assignment) With(name string, v Value) Assignment {
	c := a.Clone()
	c[name] = v
	return c
}

// Has reports whether the variable is bound
func (a Assignment) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// Names returns the bound variable names in sorted order
func (a Assignment) Names() []string {
	names := make([]string, 0, len(a))
	for k := range a {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// String renders the assignment as "A=true, B=false", sorted by name
func (a Assignment) String() string {
	if len(a) == 0 {
		return "{}"
	}
	names := a.Names()
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n + "=" + a[n].String()
	}
	return strings.Join(parts, ", ")
}
