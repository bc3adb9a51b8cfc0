/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Log file retention for the inference engine. Keeps the newest engine
log files of a directory and reports how much space the kept files use.
*/

package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Retention keeps the newest Keep engine log files in Dir. Keep <= 0 keeps all.
type Retention struct {
	Dir  string
	Keep int
}

// LogUsage summarizes the engine log files on disk
type LogUsage struct {
	Files  int       `json:"files"`
	Bytes  int64     `json:"bytes"`
	Oldest time.Time `json:"oldest"`
	Newest time.Time `json:"newest"`
}

type logFile struct {
	path string
	info os.FileInfo
}

// scan lists engine log files oldest first. File names carry the creation
// timestamp, and os.ReadDir returns them sorted by name.
func (r Retention) scan() ([]logFile, error) {
	entries, err := os.ReadDir(r.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read log directory: %w", err)
	}

	var logs []logFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || filepath.Ext(name) != ".log" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed since the directory was read
			continue
		}
		logs = append(logs, logFile{path: filepath.Join(r.Dir, name), info: info})
	}
	return logs, nil
}

// Prune deletes the oldest log files beyond Keep and returns their paths
func (r Retention) Prune() ([]string, error) {
	logs, err := r.scan()
	if err != nil {
		return nil, err
	}
	excess := len(logs) - r.Keep
	if r.Keep <= 0 || excess <= 0 {
		return nil, nil
	}

	removed := make([]string, 0, excess)
	for _, lf := range logs[:excess] {
		if err := os.Remove(lf.path); err != nil {
			return removed, fmt.Errorf("failed to remove log file %s: %w", lf.path, err)
		}
		removed = append(removed, lf.path)
	}
	return removed, nil
}

// Usage reports the count, total size and age range of the kept log files
func (r Retention) Usage() (*LogUsage, error) {
	logs, err := r.scan()
	if err != nil {
		return nil, err
	}

	usage := &LogUsage{Files: len(logs)}
	for _, lf := range logs {
		usage.Bytes += lf.info.Size()
		modified := lf.info.ModTime()
		if usage.Oldest.IsZero() || modified.Before(usage.Oldest) {
			usage.Oldest = modified
		}
		if modified.After(usage.Newest) {
			usage.Newest = modified
		}
	}
	return usage, nil
}
