/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: replay.go
Description: Replay command implementation. Repeats one query against a single engine,
checks that every answer has the same fingerprint and searches the smallest evidence
set that keeps the most probable value.
*/

package commands

import (
	"fmt"

	"github.com/kleascm/bayes-engine/pkg/analysis"
	"github.com/spf13/cobra"
)

// RunReplay replays a query and reports whether the answers are identical
func RunReplay(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		if s.settings.Algorithm == algorithmBoth {
			return fmt.Errorf("replay needs a single algorithm")
		}
		bn, err := loadNetwork(cmd)
		if err != nil {
			return err
		}
		query, evidence, err := readQuery(cmd, bn)
		if err != nil {
			return err
		}
		attempts, _ := cmd.Flags().GetInt("attempts")
		minimal, _ := cmd.Flags().GetBool("minimal")

		engine, err := s.engine(s.settings.Algorithm)
		if err != nil {
			return err
		}
		harness := analysis.NewReproducibilityHarness(engine, &analysis.ReproducibilityConfig{
			Attempts:        attempts,
			MinimalEvidence: minimal,
		})
		harness.SetLogger(s.logger.GetLogger())

		result, err := harness.Replay(bn, query, evidence)
		if err != nil {
			return fmt.Errorf("replay failed: %w", err)
		}
		if err := s.printer.PrintReproducibility(result); err != nil {
			return err
		}
		if !result.Reproducible {
			return fmt.Errorf("%s is not reproducible: %d distinct answers", queryLabel(query, evidence), len(result.DistinctHashes))
		}
		return nil
	})
}
