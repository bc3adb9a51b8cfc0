/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: description.go
Description: Serializable network descriptions. The same schema is used for JSON
and YAML files: a name, a list of nodes with their domain and CPT entries, and an
optional list of parent -> child edges. Descriptions are checked with struct tags
before a network is built from them.
*/

package parser

import (
	"fmt"
	"math"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/kleascm/bayes-engine/pkg/network"
)

// NetworkDescription is the on-disk form of a Bayesian network
type NetworkDescription struct {
	Name  string            `json:"name" yaml:"name" validate:"required"`
	Nodes []NodeDescription `json:"nodes" yaml:"nodes" validate:"required,min=1,dive"`
	Edges []EdgeDescription `json:"edges,omitempty" yaml:"edges,omitempty" validate:"dive"`
}

// NodeDescription describes one variable
type NodeDescription struct {
	Name        string                `json:"name" yaml:"name" validate:"required"`
	Domain      []interface{}         `json:"domain" yaml:"domain" validate:"required,min=2"`
	Description string                `json:"description,omitempty" yaml:"description,omitempty"`
	Parents     []string              `json:"parents,omitempty" yaml:"parents,omitempty" validate:"dive,required"`
	CPT         []CPTEntryDescription `json:"cpt" yaml:"cpt" validate:"dive"`
}

// CPTEntryDescription is one CPT row. Probability keys are the literal form of
// the node's domain values.
type CPTEntryDescription struct {
	ParentValues  map[string]interface{} `json:"parent_values" yaml:"parent_values"`
	Probabilities map[string]float64     `json:"probabilities" yaml:"probabilities" validate:"required,min=1"`
}

// EdgeDescription declares parent as a parent of child
type EdgeDescription struct {
	Parent string `json:"parent" yaml:"parent" validate:"required"`
	Child  string `json:"child" yaml:"child" validate:"required,nefield=Parent"`
}

var validate = validator.New()

// Check validates the description's shape without building a network
func (d *NetworkDescription) Check() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("invalid network description: %w", err)
	}
	return nil
}

// Build constructs and validates the network described by desc
func Build(desc *NetworkDescription) (*network.Network, error) {
	if err := desc.Check(); err != nil {
		return nil, err
	}

	bn := network.New(desc.Name)
	nodes := make(map[string]*network.Node, len(desc.Nodes))
	ordered := make([]*network.Node, 0, len(desc.Nodes))
	for _, nd := range desc.Nodes {
		if _, dup := nodes[nd.Name]; dup {
			return nil, &network.StructuralError{Node: nd.Name, Reason: "duplicate node name"}
		}
		domain, err := convertDomain(nd.Name, nd.Domain)
		if err != nil {
			return nil, err
		}
		node := network.NewNode(nd.Name, domain, nd.Parents...).SetDescription(nd.Description)
		nodes[nd.Name] = node
		ordered = append(ordered, node)
	}

	// Parents must be complete before any CPT row is installed
	for _, e := range desc.Edges {
		child, ok := nodes[e.Child]
		if !ok {
			return nil, &network.StructuralError{Reason: fmt.Sprintf("edge %s -> %s references unknown child '%s'", e.Parent, e.Child, e.Child)}
		}
		if _, ok := nodes[e.Parent]; !ok {
			return nil, &network.StructuralError{Node: e.Child, Reason: fmt.Sprintf("edge references unknown parent '%s'", e.Parent)}
		}
		child.AddParent(e.Parent)
	}

	for _, nd := range desc.Nodes {
		node := nodes[nd.Name]
		for _, entry := range nd.CPT {
			if err := installEntry(node, nodes, entry); err != nil {
				return nil, err
			}
		}
	}

	for _, node := range ordered {
		if err := bn.AddNode(node); err != nil {
			return nil, err
		}
	}
	if err := bn.Validate(); err != nil {
		return nil, err
	}
	return bn, nil
}

func installEntry(node *network.Node, nodes map[string]*network.Node, entry CPTEntryDescription) error {
	parents := make(network.Assignment, len(entry.ParentValues))
	for name, raw := range entry.ParentValues {
		parent, ok := nodes[name]
		if !ok {
			return &network.StructuralError{Node: node.Name(), Reason: fmt.Sprintf("CPT references undeclared parent '%s'", name)}
		}
		literal, err := literalOf(raw)
		if err != nil {
			return fmt.Errorf("node '%s' parent '%s': %w", node.Name(), name, err)
		}
		v, ok := parent.Domain().Lookup(literal)
		if !ok {
			return &network.DomainError{Variable: name, Value: network.ParseValue(literal), Domain: parent.Domain()}
		}
		parents[name] = v
	}

	probs := make(map[network.Value]float64, len(entry.Probabilities))
	for literal, p := range entry.Probabilities {
		v, ok := node.Domain().Lookup(literal)
		if !ok {
			return &network.DomainError{Variable: node.Name(), Value: network.ParseValue(literal), Domain: node.Domain()}
		}
		probs[v] = p
	}
	return node.SetDistribution(parents, probs)
}

// convertDomain maps decoded JSON/YAML scalars onto network values. Numbers must
// be integral.
func convertDomain(name string, raw []interface{}) (network.Domain, error) {
	domain := make(network.Domain, 0, len(raw))
	for _, r := range raw {
		v, err := convertValue(r)
		if err != nil {
			return nil, &network.StructuralError{Node: name, Reason: err.Error()}
		}
		domain = append(domain, v)
	}
	return domain, nil
}

func convertValue(raw interface{}) (network.Value, error) {
	switch v := raw.(type) {
	case bool:
		return network.BoolValue(v), nil
	case string:
		return network.StringValue(v), nil
	case int:
		return network.IntValue(int64(v)), nil
	case int64:
		return network.IntValue(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return network.Value{}, fmt.Errorf("domain value %d overflows int64", v)
		}
		return network.IntValue(int64(v)), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) || math.Abs(v) > 1<<53 {
			return network.Value{}, fmt.Errorf("domain value %v is not an integer", v)
		}
		return network.IntValue(int64(v)), nil
	default:
		return network.Value{}, fmt.Errorf("unsupported domain value %v (%T)", raw, raw)
	}
}

// literalOf renders a decoded scalar the way Value.String renders it
func literalOf(raw interface{}) (string, error) {
	switch v := raw.(type) {
	case bool:
		return strconv.FormatBool(v), nil
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported value %v (%T)", raw, raw)
	}
}

// ToDescription converts a network back into its serializable form. Parents are
// written as edges grouped by child, preserving declared parent order.
func ToDescription(bn *network.Network) *NetworkDescription {
	desc := &NetworkDescription{Name: bn.Name()}
	for _, node := range bn.Nodes() {
		nd := NodeDescription{
			Name:        node.Name(),
			Description: node.Description(),
		}
		for _, v := range node.Domain() {
			nd.Domain = append(nd.Domain, v.Interface())
		}
		for _, row := range node.Rows() {
			entry := CPTEntryDescription{
				ParentValues:  make(map[string]interface{}, len(row.Parents)),
				Probabilities: make(map[string]float64, len(row.Probabilities)),
			}
			for name, v := range row.Parents {
				entry.ParentValues[name] = v.Interface()
			}
			for i, p := range row.Probabilities {
				entry.Probabilities[node.Domain()[i].String()] = p
			}
			nd.CPT = append(nd.CPT, entry)
		}
		desc.Nodes = append(desc.Nodes, nd)
	}
	for _, e := range bn.Edges() {
		desc.Edges = append(desc.Edges, EdgeDescription{Parent: e.Parent, Child: e.Child})
	}
	return desc
}
