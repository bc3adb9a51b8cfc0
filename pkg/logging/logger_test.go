/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: logger_test.go
Description: Tests for the logging system. Tests logger creation, config validation,
formatting, file output, query helpers and log retention.
*/

package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kleascm/bayes-engine/pkg/inference"
	"github.com/kleascm/bayes-engine/pkg/network"
	"github.com/kleascm/bayes-engine/pkg/parser"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func answer(t *testing.T) *inference.QueryResult {
	t.Helper()
	result, err := inference.NewEliminationEngine().Ask(parser.BurglaryNetwork(), "Burglary",
		network.Assignment{"JohnCalls": network.BoolValue(true)})
	require.NoError(t, err)
	return result
}

// TestLoggerCreation tests logger creation with different configurations
func TestLoggerCreation(t *testing.T) {
	// Test with default configuration
	logger, err := NewLogger(nil)
	require.NoError(t, err)
	assert.Empty(t, logger.FilePath())
	require.NoError(t, logger.Close())

	// Test with a log directory
	dir := t.TempDir()
	logger, err = NewLogger(&LoggerConfig{
		Level:     LogLevelDebug,
		Format:    LogFormatJSON,
		OutputDir: dir,
		MaxFiles:  5,
		Console:   &bytes.Buffer{},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filepath.Base(logger.FilePath()), "bayes-engine_"))
	assert.FileExists(t, logger.FilePath())
	require.NoError(t, logger.Close())
}

// TestConfigValidation tests rejection of bad configurations
func TestConfigValidation(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Format = "xml"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.OutputDir = t.TempDir()
	cfg.MaxFiles = 0
	assert.Error(t, cfg.Validate())

	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

// TestLogQueryJSON tests the structured fields of a logged query
func TestLogQueryJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: LogFormatJSON, Console: &buf})
	require.NoError(t, err)
	defer logger.Close()

	result := answer(t)
	logger.LogQuery(result, map[string]interface{}{"network": "burglary"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Query answered", entry["msg"])
	assert.Equal(t, "elimination", entry["algorithm"])
	assert.Equal(t, "Burglary", entry["query"])
	assert.Equal(t, "JohnCalls=true", entry["evidence"])
	assert.Equal(t, "false", entry["most_probable"])
	assert.Equal(t, "burglary", entry["network"])
	assert.Equal(t, result.ID.String(), entry["query_id"])
	assert.Contains(t, entry, "peak_factor_size")
}

// TestLogHelpers tests failure, comparison and benchmark logging
func TestLogHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: LogFormatText, Console: &buf})
	require.NoError(t, err)
	defer logger.Close()

	logger.LogQueryFailure("enumeration", "Ghost", errors.New("unknown variable 'Ghost'"), nil)
	logger.LogComparison("Burglary", 1e-12, true, nil)
	logger.LogComparison("Alarm", 0.5, false, nil)
	logger.LogBenchmark("burglary", 6, 2.5, true, nil)

	out := buf.String()
	assert.Contains(t, out, "Query failed")
	assert.Contains(t, out, "Engines agree")
	assert.Contains(t, out, "level=warning")
	assert.Contains(t, out, "Benchmark suite finished")
	assert.Equal(t, logrus.DebugLevel, logger.GetLogger().GetLevel())
}

// TestCustomFormatter tests the custom output layout
func TestCustomFormatter(t *testing.T) {
	formatter := &CustomFormatter{}
	entry := &logrus.Entry{
		Time:    time.Date(2024, 6, 11, 1, 30, 0, 0, time.UTC),
		Level:   logrus.InfoLevel,
		Message: "Query answered",
		Data: logrus.Fields{
			"query":    "Burglary",
			"elapsed":  1500 * time.Microsecond,
			"speedup":  3.0,
			"query_id": "0123456789abcdef",
		},
	}

	out, err := formatter.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "INFO [QUERY] Query answered elapsed=1.5ms query=Burglary query_id=01234567 speedup=3.00x\n", string(out))

	formatter.Timestamp = true
	formatter.Colors = true
	out, err = formatter.Format(entry)
	require.NoError(t, err)
	assert.Contains(t, string(out), "2024-06-11 01:30:00.000")
	assert.Contains(t, string(out), "\033[32mINFO\033[0m")
}

// TestLogRetention tests removal of old log files
func TestLogRetention(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"bayes-engine_2024-01-01_00-00-00.000.log",
		"bayes-engine_2024-01-02_00-00-00.000.log",
		"bayes-engine_2024-01-03_00-00-00.000.log",
		"unrelated.txt",
	}
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("line\n"), 0644))
	}

	retention := Retention{Dir: dir, Keep: 2}
	removed, err := retention.Prune()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, names[0])}, removed)

	assert.NoFileExists(t, filepath.Join(dir, names[0]))
	assert.FileExists(t, filepath.Join(dir, names[1]))
	assert.FileExists(t, filepath.Join(dir, names[2]))
	assert.FileExists(t, filepath.Join(dir, names[3]))

	usage, err := retention.Usage()
	require.NoError(t, err)
	assert.Equal(t, 2, usage.Files)
	assert.Equal(t, int64(10), usage.Bytes)
	assert.False(t, usage.Newest.Before(usage.Oldest))

	// Nothing left to prune, and Keep <= 0 keeps everything
	removed, err = retention.Prune()
	require.NoError(t, err)
	assert.Empty(t, removed)
	removed, err = Retention{Dir: dir}.Prune()
	require.NoError(t, err)
	assert.Empty(t, removed)
}
