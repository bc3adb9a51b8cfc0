/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reproducibility.go
Description: Reproducibility harness for inference queries. Replays a query several times
and checks that every attempt returns a bit-identical posterior and elimination order,
and reduces the evidence to the smallest subset that keeps the same most probable value.
*/

package analysis

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/kleascm/bayes-engine/pkg/inference"
	"github.com/kleascm/bayes-engine/pkg/network"
	"github.com/sirupsen/logrus"
)

// ReproducibilityResult contains the results of replaying one query
type ReproducibilityResult struct {
	Algorithm        string             `json:"algorithm"`
	Query            string             `json:"query"`
	Evidence         network.Assignment `json:"evidence"`
	Reproducible     bool               `json:"reproducible"`
	ReproductionRate float64            `json:"reproduction_rate"`
	Attempts         int                `json:"attempts"`
	ReferenceHash    string             `json:"reference_hash"`
	DistinctHashes   []string           `json:"distinct_hashes"`
	ReproductionTime time.Duration      `json:"reproduction_time"`
	MinimalEvidence  network.Assignment `json:"minimal_evidence,omitempty"`
}

// ReproducibilityConfig configures the reproducibility harness
type ReproducibilityConfig struct {
	Attempts        int  `json:"attempts" mapstructure:"attempts"`
	MinimalEvidence bool `json:"minimal_evidence" mapstructure:"minimal_evidence"`
}

// ReproducibilityHarness replays queries against one engine
type ReproducibilityHarness struct {
	config *ReproducibilityConfig
	engine inference.Engine
	logger *logrus.Logger
}

// NewReproducibilityHarness creates a new reproducibility harness
func NewReproducibilityHarness(engine inference.Engine, config *ReproducibilityConfig) *ReproducibilityHarness {
	if config == nil {
		config = &ReproducibilityConfig{
			Attempts:        10,
			MinimalEvidence: true,
		}
	}
	if config.Attempts <= 0 {
		config.Attempts = 1
	}
	return &ReproducibilityHarness{config: config, engine: engine}
}

// SetLogger sets the logger for detailed replay logging
func (h *ReproducibilityHarness) SetLogger(logger *logrus.Logger) {
	h.logger = logger
}

// Replay runs the query the configured number of times and compares the
// fingerprints of every answer with the first one
func (h *ReproducibilityHarness) Replay(bn *network.Network, query string, evidence network.Assignment) (*ReproducibilityResult, error) {
	startTime := time.Now()
	result := &ReproducibilityResult{
		Algorithm: h.engine.Name(),
		Query:     query,
		Evidence:  evidence.Clone(),
	}

	seen := make(map[string]bool)
	matches := 0
	for attempt := 1; attempt <= h.config.Attempts; attempt++ {
		answer, err := h.engine.Ask(bn, query, evidence)
		if err != nil {
			return nil, fmt.Errorf("replay attempt %d: %w", attempt, err)
		}

		hash := Fingerprint(answer)
		if attempt == 1 {
			result.ReferenceHash = hash
		}
		if hash == result.ReferenceHash {
			matches++
		}
		if !seen[hash] {
			seen[hash] = true
			result.DistinctHashes = append(result.DistinctHashes, hash)
		}
		result.Attempts++

		if h.logger != nil {
			h.logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"hash":    hash[:12],
			}).Debug("Replayed query")
		}
	}

	result.ReproductionRate = float64(matches) / float64(result.Attempts)
	result.Reproducible = len(result.DistinctHashes) == 1

	if h.config.MinimalEvidence && len(evidence) > 0 {
		minimal, err := h.MinimalEvidence(bn, query, evidence)
		if err != nil {
			return nil, err
		}
		result.MinimalEvidence = minimal
	}

	result.ReproductionTime = time.Since(startTime)
	if h.logger != nil {
		h.logger.Infof("Query replay: %d/%d identical (%.1f%%)",
			matches, result.Attempts, result.ReproductionRate*100)
	}
	return result, nil
}

// MinimalEvidence drops observed variables one at a time, in name order,
// while the most probable query value stays the same
func (h *ReproducibilityHarness) MinimalEvidence(bn *network.Network, query string, evidence network.Assignment) (network.Assignment, error) {
	reference, err := h.engine.Ask(bn, query, evidence)
	if err != nil {
		return nil, err
	}
	target := reference.MostProbable().Value

	minimal := evidence.Clone()
	for _, name := range evidence.Names() {
		candidate := minimal.Clone()
		delete(candidate, name)

		answer, err := h.engine.Ask(bn, query, candidate)
		if err != nil {
			return nil, fmt.Errorf("evaluating evidence without %s: %w", name, err)
		}
		if answer.MostProbable().Value == target {
			minimal = candidate
		}
	}
	return minimal, nil
}

// Fingerprint hashes the posterior bits and the elimination order of a result
func Fingerprint(result *inference.QueryResult) string {
	hasher := sha256.New()
	var buf [8]byte
	for _, o := range result.Distribution {
		hasher.Write([]byte(o.Value.String()))
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(o.Probability))
		hasher.Write(buf[:])
	}
	hasher.Write([]byte(strings.Join(result.Stats.EliminationOrder, ",")))
	return hex.EncodeToString(hasher.Sum(nil))
}
