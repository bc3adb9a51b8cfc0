/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: evidence.go
Description: Evidence strings of the form "A=true,B=false". Values are matched
against each variable's domain by their literal form.
*/

package parser

import (
	"fmt"
	"strings"

	"github.com/kleascm/bayes-engine/pkg/network"
)

// EvidenceSyntaxError reports a malformed evidence string
type EvidenceSyntaxError struct {
	Input  string
	Reason string
}

func (e *EvidenceSyntaxError) Error() string {
	return fmt.Sprintf("invalid evidence '%s': %s", e.Input, e.Reason)
}

// SplitEvidence splits "A=x, B=y" into ordered name/literal pairs
func SplitEvidence(s string) ([][2]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	seen := make(map[string]bool)
	pairs := make([][2]string, 0)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		name, literal, ok := strings.Cut(part, "=")
		if !ok {
			return nil, &EvidenceSyntaxError{Input: s, Reason: fmt.Sprintf("'%s' is not of the form variable=value", part)}
		}
		name = strings.TrimSpace(name)
		literal = strings.TrimSpace(literal)
		if name == "" {
			return nil, &EvidenceSyntaxError{Input: s, Reason: "empty variable name"}
		}
		if literal == "" {
			return nil, &EvidenceSyntaxError{Input: s, Reason: fmt.Sprintf("no value given for '%s'", name)}
		}
		if seen[name] {
			return nil, &EvidenceSyntaxError{Input: s, Reason: fmt.Sprintf("variable '%s' given twice", name)}
		}
		seen[name] = true
		pairs = append(pairs, [2]string{name, literal})
	}
	return pairs, nil
}

// ParseEvidence parses s against the variables and domains of bn
func ParseEvidence(bn *network.Network, s string) (network.Assignment, error) {
	pairs, err := SplitEvidence(s)
	if err != nil {
		return nil, err
	}
	evidence := make(network.Assignment, len(pairs))
	for _, pair := range pairs {
		v, err := ParseValueFor(bn, pair[0], pair[1])
		if err != nil {
			return nil, err
		}
		evidence[pair[0]] = v
	}
	return evidence, nil
}

// ParseValueFor resolves a literal against one variable's domain
func ParseValueFor(bn *network.Network, variable, literal string) (network.Value, error) {
	node, err := bn.Node(variable)
	if err != nil {
		return network.Value{}, err
	}
	v, ok := node.Domain().Lookup(literal)
	if !ok {
		return network.Value{}, &network.DomainError{Variable: variable, Value: network.ParseValue(literal), Domain: node.Domain()}
	}
	return v, nil
}
