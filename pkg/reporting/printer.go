/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: printer.go
Description: Text and JSON rendering of query results, engine comparisons, benchmark
reports and network structure for the command line.
*/

package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/kleascm/bayes-engine/pkg/analysis"
	"github.com/kleascm/bayes-engine/pkg/batch"
	"github.com/kleascm/bayes-engine/pkg/benchmark"
	"github.com/kleascm/bayes-engine/pkg/inference"
	"github.com/kleascm/bayes-engine/pkg/network"
)

// Format selects the printer output
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Printer renders reports to a writer
type Printer struct {
	out    io.Writer
	format Format
}

// NewPrinter creates a printer. Unknown formats fall back to text.
func NewPrinter(out io.Writer, format Format) *Printer {
	if format != FormatJSON {
		format = FormatText
	}
	return &Printer{out: out, format: format}
}

func (p *Printer) json(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	_, err = fmt.Fprintln(p.out, string(data))
	return err
}

func (p *Printer) table() *tabwriter.Writer {
	return tabwriter.NewWriter(p.out, 0, 0, 2, ' ', 0)
}

// PrintResult renders a posterior and its statistics
func (p *Printer) PrintResult(result *inference.QueryResult) error {
	if p.format == FormatJSON {
		return p.json(result)
	}

	fmt.Fprintf(p.out, "Query:      %s\n", queryString(result.Query, result.Evidence))
	fmt.Fprintf(p.out, "Algorithm:  %s\n", result.Algorithm)
	fmt.Fprintf(p.out, "Elapsed:    %s\n\n", formatDuration(result.Stats.Elapsed))

	tw := p.table()
	fmt.Fprintln(tw, "VALUE\tPROBABILITY")
	for _, o := range result.Distribution {
		fmt.Fprintf(tw, "%s\t%.6f\n", o.Value, o.Probability)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	best := result.MostProbable()
	fmt.Fprintf(p.out, "\nMost probable: %s (%.6f)\n", best.Value, best.Probability)
	p.printStats(result.Stats)
	return nil
}

func (p *Printer) printStats(stats inference.Statistics) {
	if stats.Operations > 0 {
		fmt.Fprintf(p.out, "Recursive calls: %d\n", stats.Operations)
	}
	if stats.FactorOperations > 0 {
		order := "none"
		if len(stats.EliminationOrder) > 0 {
			order = strings.Join(stats.EliminationOrder, ", ")
		}
		fmt.Fprintf(p.out, "Elimination order (%s): %s\n", stats.Ordering, order)
		fmt.Fprintf(p.out, "Factor operations: %d (%d products, %d sum-outs)\n",
			stats.FactorOperations, stats.FactorProducts, stats.SumOuts)
		fmt.Fprintf(p.out, "Peak factor size: %d, peak factor count: %d\n", stats.PeakFactorSize, stats.PeakFactorCount)
	}
}

// PrintComparison renders the posteriors of every engine side by side
func (p *Printer) PrintComparison(c *analysis.Comparison) error {
	if p.format == FormatJSON {
		return p.json(c)
	}

	fmt.Fprintf(p.out, "Comparison: %s\n\n", queryString(c.Query, c.Evidence))

	if len(c.Results) > 0 {
		tw := p.table()
		header := []string{"VALUE"}
		for _, r := range c.Results {
			header = append(header, strings.ToUpper(r.Algorithm))
		}
		fmt.Fprintln(tw, strings.Join(header, "\t"))
		for _, o := range c.Results[0].Distribution {
			row := []string{o.Value.String()}
			for _, r := range c.Results {
				row = append(row, fmt.Sprintf("%.6f", r.Probability(o.Value)))
			}
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		fmt.Fprintln(p.out, "\nPerformance:")
		tw = p.table()
		for _, r := range c.Results {
			fmt.Fprintf(tw, "  %s:\t%s\n", r.Algorithm, formatDuration(r.Stats.Elapsed))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if len(c.Results) == 2 && c.Results[1].Stats.Elapsed > 0 {
			fmt.Fprintf(p.out, "  speedup:  %.2fx\n",
				float64(c.Results[0].Stats.Elapsed)/float64(c.Results[1].Stats.Elapsed))
		}
	}

	failed := make([]string, 0, len(c.Errors))
	for engine := range c.Errors {
		failed = append(failed, engine)
	}
	sort.Strings(failed)
	for _, engine := range failed {
		fmt.Fprintf(p.out, "\n%s failed: %s\n", engine, c.Errors[engine])
	}

	if c.Agree {
		fmt.Fprintf(p.out, "\nEngines agree (max difference %.3g, tolerance %.3g)\n", c.MaxDifference, c.Tolerance)
		return nil
	}
	fmt.Fprintf(p.out, "\nEngines DISAGREE (severity %s, max difference %.3g)\n", c.Severity, c.MaxDifference)
	for _, d := range c.Differences {
		fmt.Fprintf(p.out, "  [%s] %s\n", d.Severity, d.Description)
	}
	return nil
}

// PrintBenchmark renders per-case timings and the per-suite summary
func (p *Printer) PrintBenchmark(report *benchmark.Report) error {
	if p.format == FormatJSON {
		return p.json(report)
	}

	for _, suite := range report.Suites {
		fmt.Fprintf(p.out, "Suite %s (%s), %d queries\n", suite.Name, suite.Network, len(suite.Cases))
		tw := p.table()
		fmt.Fprintf(tw, "  #\tQUERY\t%s\t%s\tCONSISTENT\n", strings.ToUpper(report.Baseline), strings.ToUpper(report.Candidate))
		for i, c := range suite.Cases {
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\n", i+1, c.Case, formatDuration(c.BaselineTime),
				formatDuration(c.CandidateTime), yesNo(c.Consistent))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(p.out, "  total: %s | %s | speedup %.2fx\n\n",
			formatDuration(suite.BaselineTotal), formatDuration(suite.CandidateTotal), suite.Speedup)
	}

	fmt.Fprintln(p.out, "Summary")
	fmt.Fprintln(p.out, strings.Repeat("-", 60))
	tw := p.table()
	fmt.Fprintf(tw, "SUITE\tQUERIES\t%s\t%s\tSPEEDUP\n", strings.ToUpper(report.Baseline), strings.ToUpper(report.Candidate))
	for _, suite := range report.Suites {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%.2fx\n", suite.Name, len(suite.Cases),
			formatDuration(suite.BaselineTotal), formatDuration(suite.CandidateTotal), suite.Speedup)
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t%s\t%s\t%.2fx\n", report.TotalQueries,
		formatDuration(report.BaselineTotal), formatDuration(report.CandidateTotal), report.Speedup)
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(p.out, strings.Repeat("-", 60))

	fmt.Fprintf(p.out, "Conclusion: %s\n", report.Conclusion)
	if report.Consistent {
		fmt.Fprintf(p.out, "All %d queries consistent within %.0e\n", report.TotalQueries, report.Tolerance)
	} else {
		fmt.Fprintf(p.out, "Inconsistent results found (tolerance %.0e)\n", report.Tolerance)
	}
	return nil
}

// PrintReproducibility renders the outcome of a replay run
func (p *Printer) PrintReproducibility(r *analysis.ReproducibilityResult) error {
	if p.format == FormatJSON {
		return p.json(r)
	}

	fmt.Fprintf(p.out, "Replay:     %s\n", queryString(r.Query, r.Evidence))
	fmt.Fprintf(p.out, "Algorithm:  %s\n", r.Algorithm)
	fmt.Fprintf(p.out, "Attempts:   %d in %s\n", r.Attempts, formatDuration(r.ReproductionTime))
	fmt.Fprintf(p.out, "Fingerprint: %s\n", r.ReferenceHash)
	fmt.Fprintf(p.out, "Reproducible: %s (%.0f%% of attempts matched)\n", yesNo(r.Reproducible), r.ReproductionRate*100)
	if len(r.DistinctHashes) > 1 {
		fmt.Fprintf(p.out, "Distinct fingerprints: %s\n", strings.Join(r.DistinctHashes, ", "))
	}
	if r.MinimalEvidence != nil {
		minimal := "(none)"
		if len(r.MinimalEvidence) > 0 {
			minimal = r.MinimalEvidence.String()
		}
		fmt.Fprintf(p.out, "Minimal evidence for the same answer: %s\n", minimal)
	}
	return nil
}

// PrintBatch renders every answer of a batch run and its statistics
func (p *Printer) PrintBatch(report *batch.Report) error {
	if p.format == FormatJSON {
		return p.json(report)
	}

	fmt.Fprintf(p.out, "Batch: %d queries on %s with %s, %d workers\n\n",
		report.Stats.Jobs, report.Network, report.Algorithm, report.Workers)

	tw := p.table()
	fmt.Fprintln(tw, "#\tNAME\tQUERY\tMOST PROBABLE\tPROBABILITY\tSTATUS")
	for i, r := range report.Results {
		label := queryString(r.Job.Query, r.Job.Evidence)
		switch r.Status {
		case batch.StatusSuccess:
			best := r.Result.MostProbable()
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.6f\tok\n", i+1, r.Job.Name, label, best.Value, best.Probability)
		case batch.StatusError:
			fmt.Fprintf(tw, "%d\t%s\t%s\t-\t-\terror: %s\n", i+1, r.Job.Name, label, r.Error)
		default:
			fmt.Fprintf(tw, "%d\t%s\t%s\t-\t-\t%s\n", i+1, r.Job.Name, label, r.Status)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	stats := report.Stats
	fmt.Fprintf(p.out, "\nSucceeded: %d, failed: %d, skipped: %d\n", stats.Succeeded, stats.Failed, stats.Skipped)
	fmt.Fprintf(p.out, "Elapsed: %s (%.0f queries/s)\n", formatDuration(stats.Elapsed), stats.QueriesPerSecond)
	return nil
}

// NodeInfo describes one variable of a network
type NodeInfo struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Domain        []string `json:"domain"`
	Parents       []string `json:"parents"`
	Children      []string `json:"children"`
	MarkovBlanket []string `json:"markov_blanket"`
	CPTRows       int      `json:"cpt_rows"`
}

// NetworkInfo describes the structure of a network
type NetworkInfo struct {
	Name             string     `json:"name"`
	Nodes            []NodeInfo `json:"nodes"`
	Edges            int        `json:"edges"`
	TopologicalOrder []string   `json:"topological_order"`
	Valid            bool       `json:"valid"`
	ValidationError  string     `json:"validation_error,omitempty"`
}

// DescribeNetwork collects the structure of bn. Invalid networks are described
// with their validation error.
func DescribeNetwork(bn *network.Network) (*NetworkInfo, error) {
	info := &NetworkInfo{
		Name:  bn.Name(),
		Edges: len(bn.Edges()),
		Valid: true,
	}
	if err := bn.Validate(); err != nil {
		info.Valid = false
		info.ValidationError = err.Error()
	}
	if order, err := bn.TopologicalOrder(); err == nil {
		info.TopologicalOrder = order
	}

	for _, node := range bn.Nodes() {
		children, err := bn.Children(node.Name())
		if err != nil {
			return nil, err
		}
		blanket, err := bn.MarkovBlanket(node.Name())
		if err != nil {
			return nil, err
		}
		domain := make([]string, len(node.Domain()))
		for i, v := range node.Domain() {
			domain[i] = v.String()
		}
		info.Nodes = append(info.Nodes, NodeInfo{
			Name:          node.Name(),
			Description:   node.Description(),
			Domain:        domain,
			Parents:       node.Parents(),
			Children:      children,
			MarkovBlanket: blanket,
			CPTRows:       node.RowCount(),
		})
	}
	return info, nil
}

// PrintNetworkInfo renders the variables, their domains and the graph structure
func (p *Printer) PrintNetworkInfo(bn *network.Network) error {
	info, err := DescribeNetwork(bn)
	if err != nil {
		return err
	}
	if p.format == FormatJSON {
		return p.json(info)
	}

	fmt.Fprintf(p.out, "Network: %s\n", info.Name)
	fmt.Fprintf(p.out, "Nodes: %d, edges: %d\n", len(info.Nodes), info.Edges)
	if info.Valid {
		fmt.Fprintln(p.out, "Valid: yes")
	} else {
		fmt.Fprintf(p.out, "Valid: no (%s)\n", info.ValidationError)
	}
	if len(info.TopologicalOrder) > 0 {
		fmt.Fprintf(p.out, "Topological order: %s\n", strings.Join(info.TopologicalOrder, " -> "))
	}

	fmt.Fprintln(p.out)
	tw := p.table()
	fmt.Fprintln(tw, "VARIABLE\tDOMAIN\tPARENTS\tCHILDREN\tMARKOV BLANKET")
	for _, n := range info.Nodes {
		fmt.Fprintf(tw, "%s\t[%s]\t%s\t%s\t%s\n", n.Name, strings.Join(n.Domain, ", "),
			listOrDash(n.Parents), listOrDash(n.Children), listOrDash(n.MarkovBlanket))
	}
	return tw.Flush()
}

func queryString(query string, evidence network.Assignment) string {
	if len(evidence) == 0 {
		return fmt.Sprintf("P(%s)", query)
	}
	return fmt.Sprintf("P(%s | %s)", query, evidence)
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return d.String()
	case d < time.Millisecond:
		return fmt.Sprintf("%.1fµs", float64(d)/float64(time.Microsecond))
	case d < time.Second:
		return fmt.Sprintf("%.3fms", float64(d)/float64(time.Millisecond))
	default:
		return fmt.Sprintf("%.4fs", d.Seconds())
	}
}

func listOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "NO"
}
