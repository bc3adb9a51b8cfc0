/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: examples.go
Description: Built-in example networks: the burglary alarm network from Russell &
Norvig and a small medical diagnosis network.
*/

package parser

import (
	"fmt"
	"sort"

	"github.com/kleascm/bayes-engine/pkg/network"
)

var examples = map[string]func() *NetworkDescription{
	"burglary": burglaryDescription,
	"medical":  medicalDescription,
}

// ExampleNames lists the built-in networks
func ExampleNames() []string {
	names := make([]string, 0, len(examples))
	for name := range examples {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Example builds the built-in network registered under name
func Example(name string) (*network.Network, error) {
	describe, ok := examples[name]
	if !ok {
		return nil, fmt.Errorf("unknown example network '%s' (available: %v)", name, ExampleNames())
	}
	return Build(describe())
}

// BurglaryNetwork returns the burglary alarm network
func BurglaryNetwork() *network.Network {
	return mustBuild(burglaryDescription())
}

// MedicalNetwork returns the medical diagnosis network
func MedicalNetwork() *network.Network {
	return mustBuild(medicalDescription())
}

func mustBuild(desc *NetworkDescription) *network.Network {
	bn, err := Build(desc)
	if err != nil {
		panic(fmt.Sprintf("built-in network '%s' is invalid: %v", desc.Name, err))
	}
	return bn
}

func boolNode(name, description string, rows ...CPTEntryDescription) NodeDescription {
	return NodeDescription{
		Name:        name,
		Domain:      []interface{}{true, false},
		Description: description,
		CPT:         rows,
	}
}

func boolRow(pTrue float64, parents ...interface{}) CPTEntryDescription {
	values := make(map[string]interface{}, len(parents)/2)
	for i := 0; i+1 < len(parents); i += 2 {
		values[parents[i].(string)] = parents[i+1]
	}
	return CPTEntryDescription{
		ParentValues:  values,
		Probabilities: map[string]float64{"true": pTrue, "false": 1 - pTrue},
	}
}

func burglaryDescription() *NetworkDescription {
	return &NetworkDescription{
		Name: "Burglary Network",
		Nodes: []NodeDescription{
			boolNode("Burglary", "A burglary occurs", boolRow(0.001)),
			boolNode("Earthquake", "An earthquake occurs", boolRow(0.002)),
			boolNode("Alarm", "The alarm goes off",
				boolRow(0.95, "Burglary", true, "Earthquake", true),
				boolRow(0.94, "Burglary", true, "Earthquake", false),
				boolRow(0.29, "Burglary", false, "Earthquake", true),
				boolRow(0.001, "Burglary", false, "Earthquake", false),
			),
			boolNode("JohnCalls", "John calls",
				boolRow(0.90, "Alarm", true),
				boolRow(0.05, "Alarm", false),
			),
			boolNode("MaryCalls", "Mary calls",
				boolRow(0.70, "Alarm", true),
				boolRow(0.01, "Alarm", false),
			),
		},
		Edges: []EdgeDescription{
			{Parent: "Burglary", Child: "Alarm"},
			{Parent: "Earthquake", Child: "Alarm"},
			{Parent: "Alarm", Child: "JohnCalls"},
			{Parent: "Alarm", Child: "MaryCalls"},
		},
	}
}

func medicalDescription() *NetworkDescription {
	return &NetworkDescription{
		Name: "Medical Diagnosis Network",
		Nodes: []NodeDescription{
			boolNode("Disease", "Presence of the disease", boolRow(0.1)),
			boolNode("Symptom1", "Fever",
				boolRow(0.8, "Disease", true),
				boolRow(0.1, "Disease", false),
			),
			boolNode("Symptom2", "Pain",
				boolRow(0.7, "Disease", true),
				boolRow(0.05, "Disease", false),
			),
			boolNode("TestResult", "Lab test result",
				boolRow(0.9, "Disease", true),
				boolRow(0.05, "Disease", false),
			),
		},
		Edges: []EdgeDescription{
			{Parent: "Disease", Child: "Symptom1"},
			{Parent: "Disease", Child: "Symptom2"},
			{Parent: "Disease", Child: "TestResult"},
		},
	}
}
