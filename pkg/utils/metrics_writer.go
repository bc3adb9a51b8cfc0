/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: metrics_writer.go
Description: Utility for writing benchmark and comparison results to a results directory.
Handles timestamped, versioned and kind-specific subdirectory naming, and writes JSON
or YAML files for later analysis.
*/

package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultResultsDir is where results land when no directory is configured
const DefaultResultsDir = "results"

// ResultWriter writes results under <BaseDir>/<kind>/
type ResultWriter struct {
	BaseDir string
	Version string
	YAML    bool

	now func() time.Time
}

// NewResultWriter creates a writer rooted at baseDir
func NewResultWriter(baseDir, version string) *ResultWriter {
	if baseDir == "" {
		baseDir = DefaultResultsDir
	}
	return &ResultWriter{BaseDir: baseDir, Version: version, now: time.Now}
}

func (w *ResultWriter) extension() string {
	if w.YAML {
		return "yaml"
	}
	return "json"
}

// Write stores result and returns the file path, for example
// results/benchmark/2024-06-11_01-30-00.000_benchmark_v1.0.0.json
func (w *ResultWriter) Write(kind string, result interface{}) (string, error) {
	dir := filepath.Join(w.BaseDir, kind)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}

	now := time.Now
	if w.now != nil {
		now = w.now
	}
	timestamp := now().Format("2006-01-02_15-04-05.000")
	filename := fmt.Sprintf("%s_%s_v%s.%s", timestamp, kind, w.Version, w.extension())
	path := filepath.Join(dir, filename)

	var data []byte
	var err error
	if w.YAML {
		data, err = yaml.Marshal(result)
	} else {
		data, err = json.MarshalIndent(result, "", "  ")
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write results file: %w", err)
	}
	return path, nil
}

// List returns the result files of kind, oldest first
func (w *ResultWriter) List(kind string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(w.BaseDir, kind, "*_"+kind+"_v*.*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	sort.Strings(files)
	return files, nil
}
