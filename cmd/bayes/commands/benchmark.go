/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: benchmark.go
Description: Benchmark command implementation. Times enumeration against variable
elimination on the selected suites, prints the report and optionally saves it as a
timestamped result file and an HTML dashboard.
*/

package commands

import (
	"context"
	"fmt"

	"github.com/kleascm/bayes-engine/pkg/benchmark"
	"github.com/kleascm/bayes-engine/pkg/reporting"
	"github.com/kleascm/bayes-engine/pkg/utils"
	"github.com/spf13/cobra"
)

// RunBenchmark runs the benchmark suites with both exact engines
func RunBenchmark(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		names, _ := cmd.Flags().GetStringSlice("suite")
		repetitions, _ := cmd.Flags().GetInt("repetitions")
		resultsDir, _ := cmd.Flags().GetString("results-dir")
		asYAML, _ := cmd.Flags().GetBool("yaml")
		dashboardDir, _ := cmd.Flags().GetString("dashboard")

		suites, err := benchmark.SelectSuites(names...)
		if err != nil {
			return err
		}

		baseline, err := s.engine("enumeration")
		if err != nil {
			return err
		}
		candidate, err := s.engine("elimination")
		if err != nil {
			return err
		}

		runner := benchmark.NewRunner(baseline, candidate, benchmark.RunnerConfig{
			Tolerance:   s.settings.Tolerance,
			Repetitions: repetitions,
		})
		runner.SetLogger(s.logger)

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		report, err := runner.Run(ctx, suites...)
		if err != nil {
			return fmt.Errorf("benchmark failed: %w", err)
		}

		if err := s.printer.PrintBenchmark(report); err != nil {
			return err
		}

		out := cmd.ErrOrStderr()
		if resultsDir != "" {
			writer := utils.NewResultWriter(resultsDir, cmd.Root().Version)
			writer.YAML = asYAML
			path, err := writer.Write("benchmark", report)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Results saved to: %s\n", path)
		}
		if dashboardDir != "" {
			path, err := reporting.NewDashboardGenerator(dashboardDir, s.logger.GetLogger()).GenerateDashboard(report, cmd.Root().Version)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Dashboard written to: %s\n", path)
		}

		if !report.Consistent {
			return fmt.Errorf("engines returned inconsistent results (tolerance %.0e)", report.Tolerance)
		}
		return nil
	})
}
