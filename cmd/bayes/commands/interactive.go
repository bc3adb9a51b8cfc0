/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: interactive.go
Description: Interactive mode. A line-oriented prompt for loading networks and running
queries, comparisons and structure lookups against the currently loaded network.
*/

package commands

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kleascm/bayes-engine/pkg/network"
	"github.com/kleascm/bayes-engine/pkg/parser"
	"github.com/spf13/cobra"
)

const interactiveHelp = `Commands:
  load FILE                  load a network description
  example NAME               load a built-in network (%s)
  query VAR [EVIDENCE]       posterior of VAR, e.g. query Burglary JohnCalls=true,MaryCalls=true
  compare VAR [EVIDENCE]     run every engine and compare
  algorithm [NAME]           show or set the algorithm (%s, both)
  info                       describe the loaded network
  blanket VAR                Markov blanket of VAR
  stats                      queries answered so far
  help                       show this help
  quit                       leave interactive mode
`

// repl holds the state of one interactive session
type repl struct {
	*session
	out       io.Writer
	network   *network.Network
	algorithm string
}

// RunInteractive starts the prompt on the command's input and output
func RunInteractive(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(s *session) error {
		r := &repl{session: s, out: cmd.OutOrStdout(), algorithm: s.settings.Algorithm}

		path, _ := cmd.Flags().GetString("network")
		example, _ := cmd.Flags().GetString("example")
		if path != "" || example != "" {
			bn, err := loadNetwork(cmd)
			if err != nil {
				return err
			}
			r.network = bn
		}

		fmt.Fprintln(r.out, "🧠 Bayes Engine - Interactive Mode")
		fmt.Fprintln(r.out, "Type 'help' for commands.")
		return r.run(cmd.InOrStdin())
	})
}

func (r *repl) run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, r.prompt())
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		command, rest := strings.ToLower(fields[0]), fields[1:]
		if command == "quit" || command == "exit" {
			fmt.Fprintln(r.out, "Bye.")
			return nil
		}
		if err := r.dispatch(command, rest); err != nil {
			fmt.Fprintf(r.out, "Error: %v\n", err)
		}
	}
}

func (r *repl) prompt() string {
	if r.network == nil {
		return "bayes> "
	}
	return fmt.Sprintf("bayes(%s)> ", r.network.Name())
}

func (r *repl) dispatch(command string, args []string) error {
	switch command {
	case "help", "?":
		fmt.Fprintf(r.out, interactiveHelp, strings.Join(parser.ExampleNames(), ", "), strings.Join(AlgorithmNames(), ", "))
		return nil
	case "load":
		if len(args) != 1 {
			return fmt.Errorf("usage: load FILE")
		}
		bn, err := parser.LoadFile(args[0])
		if err != nil {
			return err
		}
		return r.use(bn)
	case "example":
		if len(args) != 1 {
			return fmt.Errorf("usage: example NAME")
		}
		bn, err := parser.Example(args[0])
		if err != nil {
			return err
		}
		return r.use(bn)
	case "algorithm":
		return r.setAlgorithm(args)
	case "stats":
		r.printStats()
		return nil
	}

	if r.network == nil {
		return fmt.Errorf("no network loaded, use 'load FILE' or 'example NAME' first")
	}

	switch command {
	case "query", "compare":
		if len(args) == 0 {
			return fmt.Errorf("usage: %s VAR [EVIDENCE]", command)
		}
		evidence, err := parser.ParseEvidence(r.network, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		if command == "compare" {
			return r.compare(r.network, args[0], evidence)
		}
		return r.answer(r.network, args[0], evidence, r.algorithm)
	case "info":
		return r.printer.PrintNetworkInfo(r.network)
	case "blanket":
		if len(args) != 1 {
			return fmt.Errorf("usage: blanket VAR")
		}
		blanket, err := r.network.MarkovBlanket(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "Markov blanket of %s: %s\n", args[0], listOrNone(blanket))
		return nil
	default:
		return fmt.Errorf("unknown command '%s', type 'help' for commands", command)
	}
}

func (r *repl) use(bn *network.Network) error {
	r.network = bn
	fmt.Fprintf(r.out, "Loaded %s: %d variables (%s)\n", bn.Name(), bn.Len(), strings.Join(bn.Variables(), ", "))
	return nil
}

func (r *repl) setAlgorithm(args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "Algorithm: %s\n", r.algorithm)
		return nil
	}
	name := args[0]
	if _, ok := engineFactories[name]; !ok && name != algorithmBoth {
		return fmt.Errorf("unknown algorithm '%s' (available: %s, %s)", name, strings.Join(AlgorithmNames(), ", "), algorithmBoth)
	}
	r.algorithm = name
	fmt.Fprintf(r.out, "Algorithm set to %s\n", name)
	return nil
}

func (r *repl) printStats() {
	snapshot := r.metrics.Snapshot()
	fmt.Fprintf(r.out, "Queries: %d, failures: %d, uptime %s\n", snapshot.Queries, snapshot.Failures, snapshot.Uptime.Round(time.Millisecond))
	for _, name := range AlgorithmNames() {
		m := r.metrics.Algorithm(name)
		if m == nil {
			continue
		}
		fmt.Fprintf(r.out, "  %s: %d queries, %d failures, average %s\n", name, m.Queries, m.Failures, m.AverageElapsed())
	}
	for _, alert := range snapshot.Alerts {
		fmt.Fprintf(r.out, "  alert %s: %s on %s (%.0f > %.0f)\n", alert.Type, alert.Algorithm, alert.Query, alert.Value, alert.Threshold)
	}
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
