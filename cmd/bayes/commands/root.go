/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: root.go
Description: Command tree for the bayes CLI. Builds the root command with its
persistent configuration and logging flags and attaches every subcommand.
*/

package commands

import (
	"fmt"
	"strings"

	"github.com/kleascm/bayes-engine/pkg/benchmark"
	"github.com/kleascm/bayes-engine/pkg/inference"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand builds the bayes command tree
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bayes",
		Short: "Bayes Engine - exact inference over discrete Bayesian networks",
		Long: `Bayes Engine answers P(Query | Evidence) over discrete Bayesian networks using
exact inference by enumeration or by variable elimination. Networks are loaded from
JSON or YAML descriptions or picked from the built-in examples.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add persistent flags
	rootCmd.PersistentFlags().String("config", "", "Configuration file path")
	rootCmd.PersistentFlags().String("log-level", "warn", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json, custom)")
	rootCmd.PersistentFlags().String("log-dir", "", "Log output directory (console only when empty)")
	rootCmd.PersistentFlags().StringP("output", "o", "text", "Output format (text, json)")
	rootCmd.PersistentFlags().String("metrics-file", "", "Write Prometheus query metrics to this file on exit")

	// Bind flags to viper
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("metrics_file", rootCmd.PersistentFlags().Lookup("metrics-file"))

	orderings := fmt.Sprintf("Elimination ordering (%s, %s)", inference.ReverseTopological{}.Name(), inference.MinNeighbors{}.Name())
	algorithms := fmt.Sprintf("Inference algorithm (%s, %s)", strings.Join(AlgorithmNames(), ", "), algorithmBoth)

	// Query command
	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Compute the posterior of a variable given evidence",
		Long: `Compute P(Query | Evidence) with the selected algorithm. With --algorithm both
every engine answers the query and their posteriors are compared. With --value only
the probability of that single value is printed.`,
		Example: `  bayes query --example burglary -q Burglary -e JohnCalls=true,MaryCalls=true
  bayes query -n examples/medical.yaml -q Disease -e Symptom1=true -a elimination`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, map[string]string{"algorithm": "algorithm", "ordering": "ordering", "tolerance": "tolerance"})
		},
		RunE: RunQuery,
	}
	addNetworkFlags(queryCmd)
	addQueryFlags(queryCmd)
	queryCmd.Flags().StringP("algorithm", "a", "enumeration", algorithms)
	queryCmd.Flags().String("ordering", inference.ReverseTopological{}.Name(), orderings)
	queryCmd.Flags().Float64("tolerance", 0, "Agreement tolerance for --algorithm both")
	queryCmd.Flags().String("value", "", "Print only the probability of this value")

	// Compare command
	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "Run every engine on one query and check that they agree",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, map[string]string{"ordering": "ordering", "tolerance": "tolerance", "diff_dir": "diff-dir"})
		},
		RunE: RunCompare,
	}
	addNetworkFlags(compareCmd)
	addQueryFlags(compareCmd)
	compareCmd.Flags().String("ordering", inference.ReverseTopological{}.Name(), orderings)
	compareCmd.Flags().Float64("tolerance", 0, "Maximum allowed difference between posteriors")
	compareCmd.Flags().String("diff-dir", "", "Save disagreeing comparisons as JSON in this directory")

	// Benchmark command
	benchmarkCmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Time enumeration against variable elimination on the built-in suites",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, map[string]string{"ordering": "ordering", "tolerance": "tolerance"})
		},
		RunE: RunBenchmark,
	}
	benchmarkCmd.Flags().StringSlice("suite", nil, fmt.Sprintf("Suites to run (%s); all when empty", strings.Join(benchmark.SuiteNames(), ", ")))
	benchmarkCmd.Flags().Int("repetitions", 1, "Times each query is run per engine")
	benchmarkCmd.Flags().String("ordering", inference.ReverseTopological{}.Name(), orderings)
	benchmarkCmd.Flags().Float64("tolerance", 0, "Maximum allowed difference between the engines")
	benchmarkCmd.Flags().String("results-dir", "", "Save the report as timestamped JSON under this directory")
	benchmarkCmd.Flags().Bool("yaml", false, "Save the report as YAML instead of JSON")
	benchmarkCmd.Flags().String("dashboard", "", "Write an HTML dashboard into this directory")

	// Batch command
	batchCmd := &cobra.Command{
		Use:     "batch",
		Short:   "Answer every query of a batch file in parallel",
		Example: `  bayes batch --example burglary --file examples/burglary_queries.yaml --workers 4`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, map[string]string{"algorithm": "algorithm", "ordering": "ordering"})
		},
		RunE: RunBatch,
	}
	addNetworkFlags(batchCmd)
	batchCmd.Flags().StringP("file", "f", "", "Batch file listing the queries (.json, .yaml, .yml)")
	batchCmd.Flags().StringP("algorithm", "a", "enumeration", fmt.Sprintf("Inference algorithm (%s)", strings.Join(AlgorithmNames(), ", ")))
	batchCmd.Flags().String("ordering", inference.ReverseTopological{}.Name(), orderings)
	batchCmd.Flags().Int("workers", 0, "Number of parallel workers (number of CPUs when 0)")
	batchCmd.Flags().Bool("stop-on-error", false, "Skip the remaining queries after the first failure")
	_ = batchCmd.MarkFlagRequired("file")

	// Info command
	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Show the variables and structure of a network",
		RunE:  RunInfo,
	}
	addNetworkFlags(infoCmd)
	infoCmd.Flags().String("blanket", "", "Print only the Markov blanket of this variable")

	// Validate command
	validateCmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check network description files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  RunValidate,
	}

	// Export command
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write a network description to a JSON or YAML file",
		RunE:  RunExport,
	}
	addNetworkFlags(exportCmd)
	exportCmd.Flags().String("out", "", "Destination file (.json, .yaml, .yml)")
	_ = exportCmd.MarkFlagRequired("out")

	// Replay command
	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Repeat a query and check that every answer is bit-identical",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, map[string]string{"algorithm": "algorithm", "ordering": "ordering"})
		},
		RunE: RunReplay,
	}
	addNetworkFlags(replayCmd)
	addQueryFlags(replayCmd)
	replayCmd.Flags().StringP("algorithm", "a", "enumeration", fmt.Sprintf("Inference algorithm (%s)", strings.Join(AlgorithmNames(), ", ")))
	replayCmd.Flags().String("ordering", inference.ReverseTopological{}.Name(), orderings)
	replayCmd.Flags().Int("attempts", 10, "Number of replays")
	replayCmd.Flags().Bool("minimal", true, "Search the smallest evidence set giving the same most probable value")

	// Interactive command
	interactiveCmd := &cobra.Command{
		Use:     "interactive",
		Aliases: []string{"repl"},
		Short:   "Load networks and run queries from a prompt",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, map[string]string{"algorithm": "algorithm", "ordering": "ordering"})
		},
		RunE: RunInteractive,
	}
	addNetworkFlags(interactiveCmd)
	interactiveCmd.Flags().StringP("algorithm", "a", "enumeration", algorithms)
	interactiveCmd.Flags().String("ordering", inference.ReverseTopological{}.Name(), orderings)

	rootCmd.AddCommand(queryCmd, compareCmd, benchmarkCmd, batchCmd, infoCmd, validateCmd, exportCmd, replayCmd, interactiveCmd)
	return rootCmd
}
