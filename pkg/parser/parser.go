/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: parser.go
Description: Loading and saving network description files. The format is chosen
from the file extension: .json for JSON, .yaml or .yml for YAML.
*/

package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kleascm/bayes-engine/pkg/network"
	"gopkg.in/yaml.v3"
)

// Format is a description file format
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported network file extension '%s' (want .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// Decode reads a description in the given format
func Decode(data []byte, format Format) (*NetworkDescription, error) {
	desc := &NetworkDescription{}
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(desc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON network: %w", err)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(desc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML network: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format '%s'", format)
	}
	return desc, nil
}

// Encode writes a description in the given format
func Encode(desc *NetworkDescription, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(desc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal network: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(desc); err != nil {
			return nil, fmt.Errorf("failed to marshal network: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to marshal network: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format '%s'", format)
	}
}

// Parse decodes and builds a network
func Parse(data []byte, format Format) (*network.Network, error) {
	desc, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return Build(desc)
}

// LoadFile reads, builds and validates the network stored at path
func LoadFile(path string) (*network.Network, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read network file: %w", err)
	}
	bn, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return bn, nil
}

// SaveFile writes bn to path in the format implied by its extension
func SaveFile(bn *network.Network, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Encode(ToDescription(bn), format)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write network file: %w", err)
	}
	return nil
}
