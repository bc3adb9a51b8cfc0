/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the bayes commands. Provides the per-invocation
session (settings, logger, printer and query reporters), the engine selection table
and network loading used across all command implementations.
*/

package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kleascm/bayes-engine/pkg/analysis"
	"github.com/kleascm/bayes-engine/pkg/inference"
	"github.com/kleascm/bayes-engine/pkg/logging"
	"github.com/kleascm/bayes-engine/pkg/monitoring"
	"github.com/kleascm/bayes-engine/pkg/network"
	"github.com/kleascm/bayes-engine/pkg/parser"
	"github.com/kleascm/bayes-engine/pkg/reporting"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// algorithmBoth runs every exact engine and compares their answers
const algorithmBoth = "both"

// engineFactories maps algorithm names to engine constructors
var engineFactories = map[string]func(opts ...inference.Option) inference.Engine{
	"enumeration": func(opts ...inference.Option) inference.Engine {
		return inference.NewEnumerationEngine(opts...)
	},
	"elimination": func(opts ...inference.Option) inference.Engine {
		return inference.NewEliminationEngine(opts...)
	},
}

// AlgorithmNames lists the registered engines in name order
func AlgorithmNames() []string {
	names := make([]string, 0, len(engineFactories))
	for name := range engineFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// session carries everything one command invocation needs
type session struct {
	cmd      *cobra.Command
	settings *Settings
	logger   *logging.Logger
	printer  *reporting.Printer
	metrics  *monitoring.QueryMetrics
	prom     *monitoring.PrometheusReporter
}

// withSession loads configuration, runs fn and flushes metrics and logs
func withSession(cmd *cobra.Command, fn func(s *session) error) (err error) {
	if err := LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	settings, err := LoadSettings()
	if err != nil {
		return err
	}
	logger, err := SetupLogging(settings, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	s := &session{
		cmd:      cmd,
		settings: settings,
		logger:   logger,
		printer:  reporting.NewPrinter(cmd.OutOrStdout(), reporting.Format(settings.Output)),
		metrics:  monitoring.NewQueryMetrics(settings.Thresholds, logger.GetLogger()),
		prom:     monitoring.NewPrometheusReporter(nil),
	}
	defer func() {
		if cerr := s.close(); err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

func (s *session) close() error {
	var err error
	if s.settings.MetricsFile != "" {
		err = s.prom.WriteTextfile(s.settings.MetricsFile)
	}
	if cerr := s.logger.Close(); err == nil {
		err = cerr
	}
	return err
}

// engine builds the named engine wrapped with the session reporters
func (s *session) engine(name string) (inference.Engine, error) {
	factory, ok := engineFactories[name]
	if !ok {
		return nil, fmt.Errorf("unknown algorithm '%s' (available: %s)", name, strings.Join(AlgorithmNames(), ", "))
	}
	ordering, ok := inference.OrderingByName(s.settings.Ordering)
	if !ok {
		return nil, fmt.Errorf("unknown ordering strategy '%s'", s.settings.Ordering)
	}

	engine := factory(inference.WithLogger(s.logger.GetLogger()), inference.WithOrdering(ordering))
	return inference.WithReporting(engine,
		monitoring.NewLoggerReporter(s.logger),
		s.metrics,
		s.prom,
	), nil
}

// differential builds a comparison over every registered engine
func (s *session) differential() (*analysis.DifferentialEngine, error) {
	var engines []inference.Engine
	for _, name := range AlgorithmNames() {
		engine, err := s.engine(name)
		if err != nil {
			return nil, err
		}
		engines = append(engines, engine)
	}

	diff, err := analysis.NewDifferentialEngine(&analysis.DifferentialConfig{
		Tolerance: s.settings.Tolerance,
		OutputDir: s.settings.DiffDir,
	}, engines...)
	if err != nil {
		return nil, err
	}
	diff.SetLogger(s.logger.GetLogger())
	return diff, nil
}

// answer runs one query with the given algorithm and prints the result
func (s *session) answer(bn *network.Network, query string, evidence network.Assignment, algorithm string) error {
	if algorithm == algorithmBoth {
		return s.compare(bn, query, evidence)
	}

	engine, err := s.engine(algorithm)
	if err != nil {
		return err
	}
	result, err := engine.Ask(bn, query, evidence)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	return s.printer.PrintResult(result)
}

// compare runs the query through every engine and prints their agreement.
// A disagreement is returned as an error.
func (s *session) compare(bn *network.Network, query string, evidence network.Assignment) error {
	diff, err := s.differential()
	if err != nil {
		return err
	}
	comparison, err := diff.Compare(bn, query, evidence)
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}
	s.logger.LogComparison(queryLabel(query, evidence), comparison.MaxDifference, comparison.Agree, nil)
	if err := s.printer.PrintComparison(comparison); err != nil {
		return err
	}
	return comparison.Err()
}

// addNetworkFlags registers the flags that select the network to load
func addNetworkFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("network", "n", "", "Network description file (.json, .yaml, .yml)")
	cmd.Flags().String("example", "", fmt.Sprintf("Built-in example network (%s)", strings.Join(parser.ExampleNames(), ", ")))
}

// addQueryFlags registers the query variable and evidence flags
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("query", "q", "", "Query variable (e.g. Burglary)")
	cmd.Flags().StringP("evidence", "e", "", "Observed evidence (e.g. JohnCalls=true,MaryCalls=true)")
	_ = cmd.MarkFlagRequired("query")
}

// loadNetwork resolves --network or --example into a validated network
func loadNetwork(cmd *cobra.Command) (*network.Network, error) {
	path, _ := cmd.Flags().GetString("network")
	example, _ := cmd.Flags().GetString("example")

	switch {
	case path != "" && example != "":
		return nil, fmt.Errorf("--network and --example are mutually exclusive")
	case path != "":
		return parser.LoadFile(path)
	case example != "":
		return parser.Example(example)
	default:
		return nil, fmt.Errorf("a network is required: use --network FILE or --example NAME (available: %s)",
			strings.Join(parser.ExampleNames(), ", "))
	}
}

// readQuery returns the query variable and the evidence parsed against bn
func readQuery(cmd *cobra.Command, bn *network.Network) (string, network.Assignment, error) {
	query, _ := cmd.Flags().GetString("query")
	raw, _ := cmd.Flags().GetString("evidence")
	evidence, err := parser.ParseEvidence(bn, raw)
	if err != nil {
		return "", nil, err
	}
	return query, evidence, nil
}

// bindFlags binds local flags of cmd to viper keys. Flags are bound when the
// command runs so that commands sharing a key do not shadow each other.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, flag := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", flag, err)
		}
	}
	return nil
}

func queryLabel(query string, evidence network.Assignment) string {
	if len(evidence) == 0 {
		return fmt.Sprintf("P(%s)", query)
	}
	return fmt.Sprintf("P(%s | %s)", query, evidence)
}
