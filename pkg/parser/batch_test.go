/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: batch_test.go
Description: Tests for query batch files.
*/

package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kleascm/bayes-engine/pkg/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBatchFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`queries:
  - name: joint
    query: Burglary
    evidence: JohnCalls=true, MaryCalls=true
  - query: Alarm
`), 0644))

	queries, err := LoadBatchFile(path, BurglaryNetwork())
	require.NoError(t, err)
	require.Len(t, queries, 2)
	assert.Equal(t, "joint", queries[0].Name)
	assert.Equal(t, "Burglary", queries[0].Variable)
	assert.Equal(t, network.Assignment{
		"JohnCalls": network.BoolValue(true),
		"MaryCalls": network.BoolValue(true),
	}, queries[0].Evidence)
	assert.Equal(t, "q2", queries[1].Name)
	assert.Empty(t, queries[1].Evidence)
}

func TestDecodeBatchJSON(t *testing.T) {
	batch, err := DecodeBatch([]byte(`{"queries": [{"query": "Disease", "evidence": "Symptom1=true"}]}`), FormatJSON)
	require.NoError(t, err)
	queries, err := batch.Resolve(MedicalNetwork())
	require.NoError(t, err)
	assert.Equal(t, "Disease", queries[0].Variable)
}

func TestDecodeBatchErrors(t *testing.T) {
	_, err := DecodeBatch([]byte(`{"queries": []}`), FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid query batch")

	_, err = DecodeBatch([]byte(`{"queries": [{"evidence": "A=true"}]}`), FormatJSON)
	require.Error(t, err)

	_, err = DecodeBatch([]byte(`{"queries": [{"query": "A", "priority": 2}]}`), FormatJSON)
	require.Error(t, err)

	_, err = DecodeBatch([]byte(`queries: [`), FormatYAML)
	require.Error(t, err)

	batch, err := DecodeBatch([]byte(`{"queries": [{"query": "Burglary", "evidence": "Ghost=true"}]}`), FormatJSON)
	require.NoError(t, err)
	_, err = batch.Resolve(BurglaryNetwork())
	var unknown *network.UnknownVariableError
	assert.ErrorAs(t, err, &unknown)
	assert.Contains(t, err.Error(), "query 1")

	_, err = LoadBatchFile("queries.txt", BurglaryNetwork())
	require.Error(t, err)
}
