/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: batch.go
Description: Query batch files. A batch is a list of queries, each a variable name and
an evidence string, stored as JSON or YAML next to the network it targets.
*/

package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kleascm/bayes-engine/pkg/network"
	"gopkg.in/yaml.v3"
)

// QueryDescription is one entry of a batch file
type QueryDescription struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Query    string `json:"query" yaml:"query" validate:"required"`
	Evidence string `json:"evidence,omitempty" yaml:"evidence,omitempty"`
}

// BatchDescription is the on-disk form of a query batch
type BatchDescription struct {
	Queries []QueryDescription `json:"queries" yaml:"queries" validate:"required,min=1,dive"`
}

// Query is a batch entry resolved against a network
type Query struct {
	Name     string
	Variable string
	Evidence network.Assignment
}

// DecodeBatch reads and checks a batch in the given format
func DecodeBatch(data []byte, format Format) (*BatchDescription, error) {
	batch := &BatchDescription{}
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(batch); err != nil {
			return nil, fmt.Errorf("failed to parse JSON batch: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(batch); err != nil {
			return nil, fmt.Errorf("failed to parse YAML batch: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format '%s'", format)
	}
	if err := validate.Struct(batch); err != nil {
		return nil, fmt.Errorf("invalid query batch: %w", err)
	}
	return batch, nil
}

// Resolve parses every entry's evidence against bn. Unnamed entries are named
// after their position.
func (b *BatchDescription) Resolve(bn *network.Network) ([]Query, error) {
	queries := make([]Query, 0, len(b.Queries))
	for i, q := range b.Queries {
		evidence, err := ParseEvidence(bn, q.Evidence)
		if err != nil {
			return nil, fmt.Errorf("query %d: %w", i+1, err)
		}
		name := q.Name
		if name == "" {
			name = fmt.Sprintf("q%d", i+1)
		}
		queries = append(queries, Query{Name: name, Variable: q.Query, Evidence: evidence})
	}
	return queries, nil
}

// LoadBatchFile reads the batch at path and resolves it against bn
func LoadBatchFile(path string, bn *network.Network) ([]Query, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}
	batch, err := DecodeBatch(data, format)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return batch.Resolve(bn)
}
