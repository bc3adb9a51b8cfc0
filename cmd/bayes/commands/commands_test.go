/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: commands_test.go
Description: End-to-end tests for the bayes command tree. Every test builds a fresh
root command, runs it against in-memory output and checks what the user would see.
*/

package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kleascm/bayes-engine/pkg/network"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var burglaryQuery = []string{"--example", "burglary", "-q", "Burglary", "-e", "JohnCalls=true,MaryCalls=true"}

// execute runs the CLI with args and returns stdout, stderr and the error
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	root := NewRootCommand("test")
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestQueryCommand(t *testing.T) {
	out, _, err := execute(t, "", append([]string{"query"}, burglaryQuery...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Query:      P(Burglary | JohnCalls=true, MaryCalls=true)")
	assert.Contains(t, out, "Algorithm:  enumeration")
	assert.Contains(t, out, "0.284172")
	assert.Contains(t, out, "Recursive calls:")
}

func TestQueryElimination(t *testing.T) {
	args := append([]string{"query", "-a", "elimination", "--ordering", "min-neighbors"}, burglaryQuery...)
	out, _, err := execute(t, "", args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Algorithm:  elimination")
	assert.Contains(t, out, "Elimination order (min-neighbors)")
	assert.Contains(t, out, "0.284172")
}

func TestQueryJSON(t *testing.T) {
	out, _, err := execute(t, "", append([]string{"-o", "json", "query"}, burglaryQuery...)...)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "Burglary", decoded["query"])
	assert.Equal(t, "enumeration", decoded["algorithm"])
}

func TestQueryBoth(t *testing.T) {
	out, _, err := execute(t, "", append([]string{"query", "-a", "both"}, burglaryQuery...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "ENUMERATION")
	assert.Contains(t, out, "ELIMINATION")
	assert.Contains(t, out, "Engines agree")
}

func TestQuerySingleValue(t *testing.T) {
	out, _, err := execute(t, "", append([]string{"query", "--value", "true"}, burglaryQuery...)...)
	require.NoError(t, err)
	assert.Equal(t, "P(Burglary=true | JohnCalls=true, MaryCalls=true) = 0.284172\n", out)

	_, _, err = execute(t, "", append([]string{"query", "--value", "maybe"}, burglaryQuery...)...)
	var domainErr *network.DomainError
	assert.ErrorAs(t, err, &domainErr)
}

func TestQueryNetworkFile(t *testing.T) {
	out, _, err := execute(t, "", "query", "-n", filepath.Join("..", "..", "..", "examples", "medical.yaml"),
		"-q", "Disease", "-e", "Symptom1=true", "-a", "elimination")
	require.NoError(t, err)
	assert.Contains(t, out, "P(Disease | Symptom1=true)")
	assert.Contains(t, out, "Most probable:")
}

func TestQueryErrors(t *testing.T) {
	_, _, err := execute(t, "", "query", "-q", "Burglary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a network is required")

	_, _, err = execute(t, "", "query", "--example", "burglary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"query"`)

	_, _, err = execute(t, "", "query", "--example", "burglary", "-n", "x.json", "-q", "Burglary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")

	_, _, err = execute(t, "", "query", "--example", "burglary", "-q", "Burglary", "-a", "sampling")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	_, _, err = execute(t, "", "query", "--example", "burglary", "-q", "Ghost")
	var unknown *network.UnknownVariableError
	assert.ErrorAs(t, err, &unknown)

	_, _, err = execute(t, "", "query", "--example", "burglary", "-q", "Burglary", "-e", "Burglary=true")
	var invalid *network.InvalidQueryError
	assert.ErrorAs(t, err, &invalid)
}

func TestCompareCommand(t *testing.T) {
	diffDir := filepath.Join(t.TempDir(), "diffs")
	out, _, err := execute(t, "", append([]string{"compare", "--diff-dir", diffDir}, burglaryQuery...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Comparison: P(Burglary | JohnCalls=true, MaryCalls=true)")
	assert.Contains(t, out, "Engines agree")
	assert.NoDirExists(t, diffDir)
}

func TestBenchmarkCommand(t *testing.T) {
	dir := t.TempDir()
	resultsDir := filepath.Join(dir, "results")
	dashboardDir := filepath.Join(dir, "dashboard")

	out, errOut, err := execute(t, "", "benchmark", "--suite", "burglary", "--repetitions", "2",
		"--results-dir", resultsDir, "--dashboard", dashboardDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Suite burglary")
	assert.Contains(t, out, "All 6 queries consistent")
	assert.Contains(t, errOut, "Results saved to:")
	assert.Contains(t, errOut, "Dashboard written to:")

	files, err := filepath.Glob(filepath.Join(resultsDir, "benchmark", "*_benchmark_vtest.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, float64(6), report["total_queries"])
	assert.Equal(t, float64(2), report["repetitions"])

	assert.FileExists(t, filepath.Join(dashboardDir, "index.html"))
}

func TestBenchmarkUnknownSuite(t *testing.T) {
	_, _, err := execute(t, "", "benchmark", "--suite", "sprinkler")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sprinkler")
}

func TestMetricsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bayes.prom")
	_, _, err := execute(t, "", append([]string{"--metrics-file", path, "query"}, burglaryQuery...)...)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `bayes_queries_total{algorithm="enumeration",status="success"} 1`)
}

func TestInfoCommand(t *testing.T) {
	out, _, err := execute(t, "", "info", "--example", "burglary")
	require.NoError(t, err)
	assert.Contains(t, out, "Network: Burglary Network")
	assert.Contains(t, out, "Nodes: 5, edges: 4")
	assert.Contains(t, out, "Valid: yes")

	out, _, err = execute(t, "", "info", "--example", "burglary", "--blanket", "Alarm")
	require.NoError(t, err)
	assert.Equal(t, "Markov blanket of Alarm: Burglary, Earthquake, JohnCalls, MaryCalls\n", out)
}

func TestExportAndValidate(t *testing.T) {
	exported := filepath.Join(t.TempDir(), "medical.yaml")
	out, _, err := execute(t, "", "export", "--example", "medical", "--out", exported)
	require.NoError(t, err)
	assert.Contains(t, out, "written to")

	broken := writeFile(t, "broken.json", `{"name": "broken", "nodes": [`)
	out, _, err = execute(t, "", "validate", exported, broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1/2 networks invalid")
	assert.Contains(t, out, "✅ "+exported+": Medical Diagnosis Network (4 nodes, 3 edges)")
	assert.Contains(t, out, "❌ "+broken)

	_, _, err = execute(t, "", "validate", exported)
	assert.NoError(t, err)
}

func TestReplayCommand(t *testing.T) {
	out, _, err := execute(t, "", append([]string{"replay", "--attempts", "3"}, burglaryQuery...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Attempts:   3")
	assert.Contains(t, out, "Reproducible: yes (100% of attempts matched)")
	assert.Contains(t, out, "Minimal evidence for the same answer: (none)")

	_, _, err = execute(t, "", append([]string{"replay", "-a", "both"}, burglaryQuery...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single algorithm")
}

func TestConfigFile(t *testing.T) {
	config := writeFile(t, "bayes.yaml", "algorithm: elimination\nordering: min-neighbors\n")
	out, _, err := execute(t, "", append([]string{"--config", config, "query"}, burglaryQuery...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Algorithm:  elimination")
	assert.Contains(t, out, "Elimination order (min-neighbors)")

	// flags win over the config file
	out, _, err = execute(t, "", append([]string{"--config", config, "query", "-a", "enumeration"}, burglaryQuery...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Algorithm:  enumeration")

	bad := writeFile(t, "bad.yaml", "tolerance: -1\n")
	_, _, err = execute(t, "", append([]string{"--config", bad, "query"}, burglaryQuery...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")

	_, _, err = execute(t, "", append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "query"}, burglaryQuery...)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestEnvironment(t *testing.T) {
	t.Setenv("BAYES_ALGORITHM", "elimination")
	out, _, err := execute(t, "", append([]string{"query"}, burglaryQuery...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Algorithm:  elimination")
}

func TestInteractive(t *testing.T) {
	script := strings.Join([]string{
		"help",
		"query Burglary",
		"example burglary",
		"query Burglary JohnCalls=true, MaryCalls=true",
		"algorithm elimination",
		"query Alarm",
		"blanket Alarm",
		"algorithm sampling",
		"bogus",
		"stats",
		"quit",
		"query Burglary",
	}, "\n") + "\n"

	out, _, err := execute(t, script, "interactive")
	require.NoError(t, err)
	assert.Contains(t, out, "Commands:")
	assert.Contains(t, out, "Error: no network loaded")
	assert.Contains(t, out, "Loaded Burglary Network: 5 variables")
	assert.Contains(t, out, "bayes(Burglary Network)> ")
	assert.Contains(t, out, "0.284172")
	assert.Contains(t, out, "Algorithm set to elimination")
	assert.Contains(t, out, "Algorithm:  elimination")
	assert.Contains(t, out, "Markov blanket of Alarm: Burglary, Earthquake, JohnCalls, MaryCalls")
	assert.Contains(t, out, "Error: unknown algorithm 'sampling'")
	assert.Contains(t, out, "Error: unknown command 'bogus'")
	assert.Contains(t, out, "Queries: 2, failures: 0")
	assert.True(t, strings.HasSuffix(out, "Bye.\n"))
}

func TestInteractiveWithNetworkAndEOF(t *testing.T) {
	out, _, err := execute(t, "info\ncompare Alarm Earthquake=true\n", "interactive", "--example", "medical")
	require.NoError(t, err)
	assert.Contains(t, out, "Topological order: Disease -> Symptom1 -> Symptom2 -> TestResult")
	assert.Contains(t, out, "unknown variable")
}

func TestBatchCommand(t *testing.T) {
	out, _, err := execute(t, "", "batch", "--example", "burglary", "-a", "elimination", "--workers", "2",
		"--file", filepath.Join("..", "..", "..", "examples", "burglary_queries.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "Batch: 6 queries on Burglary Network with elimination, 2 workers")
	assert.Contains(t, out, "both-call")
	assert.Contains(t, out, "0.715828")
	assert.Contains(t, out, "Succeeded: 6, failed: 0, skipped: 0")
}

func TestBatchCommandFailures(t *testing.T) {
	file := writeFile(t, "queries.json", `{"queries": [{"query": "Burglary"}, {"name": "ghost", "query": "Ghost"}]}`)
	out, _, err := execute(t, "", "batch", "--example", "burglary", "--file", file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1/2 queries failed")
	assert.Contains(t, out, "error: unknown variable 'Ghost'")

	_, _, err = execute(t, "", "batch", "--example", "burglary", "--file", file, "-a", "both")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single algorithm")

	_, _, err = execute(t, "", "batch", "--example", "burglary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"file"`)
}
