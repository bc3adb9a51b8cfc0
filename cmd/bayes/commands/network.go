/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: network.go
Description: Network inspection commands: info, validate and export.
*/

package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kleascm/bayes-engine/pkg/parser"
	"github.com/spf13/cobra"
)

// RunInfo prints the structure of the selected network
func RunInfo(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		bn, err := loadNetwork(cmd)
		if err != nil {
			return err
		}

		variable, _ := cmd.Flags().GetString("blanket")
		if variable == "" {
			return s.printer.PrintNetworkInfo(bn)
		}

		blanket, err := bn.MarkovBlanket(variable)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if s.settings.Output == "json" {
			return json.NewEncoder(out).Encode(map[string]interface{}{
				"variable":       variable,
				"markov_blanket": blanket,
			})
		}
		fmt.Fprintf(out, "Markov blanket of %s: %s\n", variable, strings.Join(blanket, ", "))
		return nil
	})
}

// RunValidate loads every file given and reports which ones are valid networks
func RunValidate(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		out := cmd.OutOrStdout()
		failed := 0
		for _, path := range args {
			bn, err := parser.LoadFile(path)
			if err != nil {
				failed++
				fmt.Fprintf(out, "❌ %s: %v\n", path, err)
				s.logger.GetLogger().WithField("file", path).WithError(err).Warn("Invalid network")
				continue
			}
			fmt.Fprintf(out, "✅ %s: %s (%d nodes, %d edges)\n", path, bn.Name(), bn.Len(), len(bn.Edges()))
		}

		if failed > 0 {
			return fmt.Errorf("%d/%d networks invalid", failed, len(args))
		}
		return nil
	})
}

// RunExport writes the selected network to --out
func RunExport(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		bn, err := loadNetwork(cmd)
		if err != nil {
			return err
		}
		path, _ := cmd.Flags().GetString("out")
		if err := parser.SaveFile(bn, path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Network %s written to %s\n", bn.Name(), path)
		return nil
	})
}
