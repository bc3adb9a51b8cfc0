/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: query.go
Description: Query and compare commands. Answer a single posterior query with the
configured algorithm, or run every engine on it and report their agreement.
*/

package commands

import (
	"encoding/json"
	"fmt"

	"github.com/kleascm/bayes-engine/pkg/inference"
	"github.com/kleascm/bayes-engine/pkg/parser"
	"github.com/spf13/cobra"
)

// RunQuery answers P(query | evidence) on the selected network
func RunQuery(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		bn, err := loadNetwork(cmd)
		if err != nil {
			return err
		}
		query, evidence, err := readQuery(cmd, bn)
		if err != nil {
			return err
		}

		literal, _ := cmd.Flags().GetString("value")
		if literal == "" {
			return s.answer(bn, query, evidence, s.settings.Algorithm)
		}

		if s.settings.Algorithm == algorithmBoth {
			return fmt.Errorf("--value needs a single algorithm")
		}
		value, err := parser.ParseValueFor(bn, query, literal)
		if err != nil {
			return err
		}
		engine, err := s.engine(s.settings.Algorithm)
		if err != nil {
			return err
		}
		p, err := inference.MarginalProbability(engine, bn, query, value, evidence)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if s.settings.Output == "json" {
			return json.NewEncoder(out).Encode(map[string]interface{}{
				"query":       query,
				"value":       value.String(),
				"evidence":    evidence,
				"algorithm":   engine.Name(),
				"probability": p,
			})
		}
		label := fmt.Sprintf("%s=%s", query, value)
		if len(evidence) > 0 {
			label = fmt.Sprintf("%s | %s", label, evidence)
		}
		fmt.Fprintf(out, "P(%s) = %.6f\n", label, p)
		return nil
	})
}

// RunCompare runs every engine on the query and fails when they disagree
func RunCompare(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		bn, err := loadNetwork(cmd)
		if err != nil {
			return err
		}
		query, evidence, err := readQuery(cmd, bn)
		if err != nil {
			return err
		}
		return s.compare(bn, query, evidence)
	})
}
