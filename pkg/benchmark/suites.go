/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: suites.go
Description: Built-in benchmark suites: the burglary and medical query sets and the
marginal suites that query every variable of a network without evidence.
*/

package benchmark

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kleascm/bayes-engine/pkg/network"
	"github.com/kleascm/bayes-engine/pkg/parser"
)

// Case is one query of a suite
type Case struct {
	Query    string             `json:"query"`
	Evidence network.Assignment `json:"evidence"`
}

func (c Case) String() string {
	if len(c.Evidence) == 0 {
		return fmt.Sprintf("P(%s)", c.Query)
	}
	return fmt.Sprintf("P(%s | %s)", c.Query, c.Evidence)
}

// Suite is a set of queries against one network
type Suite struct {
	Name    string
	Network *network.Network
	Cases   []Case
}

func observed(names ...string) network.Assignment {
	a := network.Assignment{}
	for _, name := range names {
		a[name] = network.BoolValue(true)
	}
	return a
}

// BurglarySuite queries the alarm network with growing evidence
func BurglarySuite() Suite {
	return Suite{
		Name:    "burglary",
		Network: parser.BurglaryNetwork(),
		Cases: []Case{
			{Query: "Burglary", Evidence: observed()},
			{Query: "Burglary", Evidence: observed("JohnCalls")},
			{Query: "Burglary", Evidence: observed("MaryCalls")},
			{Query: "Burglary", Evidence: observed("JohnCalls", "MaryCalls")},
			{Query: "Alarm", Evidence: observed("Burglary")},
			{Query: "Alarm", Evidence: observed("Earthquake")},
		},
	}
}

// MedicalSuite queries the diagnosis network with symptoms and test results
func MedicalSuite() Suite {
	return Suite{
		Name:    "medical",
		Network: parser.MedicalNetwork(),
		Cases: []Case{
			{Query: "Disease", Evidence: observed()},
			{Query: "Disease", Evidence: observed("Symptom1")},
			{Query: "Disease", Evidence: observed("Symptom2")},
			{Query: "Disease", Evidence: observed("TestResult")},
			{Query: "Disease", Evidence: observed("Symptom1", "Symptom2")},
			{Query: "Disease", Evidence: observed("Symptom1", "TestResult")},
			{Query: "TestResult", Evidence: observed("Disease")},
		},
	}
}

// MarginalSuite queries every variable of bn without evidence
func MarginalSuite(name string, bn *network.Network) Suite {
	suite := Suite{Name: "marginal-" + name, Network: bn}
	for _, variable := range bn.Variables() {
		suite.Cases = append(suite.Cases, Case{Query: variable, Evidence: network.Assignment{}})
	}
	return suite
}

// DefaultSuites returns every built-in suite
func DefaultSuites() []Suite {
	return []Suite{
		BurglarySuite(),
		MedicalSuite(),
		MarginalSuite("burglary", parser.BurglaryNetwork()),
		MarginalSuite("medical", parser.MedicalNetwork()),
	}
}

// SuiteNames lists the names accepted by SelectSuites
func SuiteNames() []string {
	names := make([]string, 0, 4)
	for _, s := range DefaultSuites() {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// SelectSuites returns the named built-in suites. No names selects all of them.
func SelectSuites(names ...string) ([]Suite, error) {
	all := DefaultSuites()
	if len(names) == 0 {
		return all, nil
	}

	byName := make(map[string]Suite, len(all))
	for _, s := range all {
		byName[s.Name] = s
	}
	selected := make([]Suite, 0, len(names))
	for _, name := range names {
		s, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown benchmark suite %q (available: %s)", name, strings.Join(SuiteNames(), ", "))
		}
		selected = append(selected, s)
	}
	return selected, nil
}
