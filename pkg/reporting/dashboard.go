/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dashboard.go
Description: HTML dashboard for benchmark runs. Renders per-suite timing charts, the
speedup of the candidate engine and a per-case consistency table into a single
static index.html.
*/

package reporting

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/kleascm/bayes-engine/pkg/benchmark"
	"github.com/sirupsen/logrus"
)

// DashboardGenerator creates HTML benchmark dashboards
type DashboardGenerator struct {
	outputDir string
	logger    *logrus.Logger
	templates *template.Template
}

// DashboardData contains all data for dashboard generation
type DashboardData struct {
	Title       string            `json:"title"`
	GeneratedAt time.Time         `json:"generated_at"`
	Version     string            `json:"version"`
	Report      *benchmark.Report `json:"report"`
	Rows        []DashboardRow    `json:"rows"`
	Charts      *ChartData        `json:"charts"`
}

// DashboardRow is one case in the consistency table
type DashboardRow struct {
	Suite         string
	Query         string
	BaselineTime  string
	CandidateTime string
	MostProbable  string
	MaxDifference float64
	Consistent    bool
}

// ChartData holds the chart configurations embedded in the page
type ChartData struct {
	TimingChart  *ChartConfig `json:"timing_chart"`
	SpeedupChart *ChartConfig `json:"speedup_chart"`
}

// ChartConfig is a Chart.js chart definition
type ChartConfig struct {
	Type    string      `json:"type"`
	Title   string      `json:"title"`
	Data    interface{} `json:"data"`
	Options interface{} `json:"options"`
}

// NewDashboardGenerator creates a new dashboard generator
func NewDashboardGenerator(outputDir string, logger *logrus.Logger) *DashboardGenerator {
	funcs := template.FuncMap{
		"chart": func(c *ChartConfig) (template.JS, error) {
			data, err := json.Marshal(c)
			if err != nil {
				return "", err
			}
			return template.JS(data), nil
		},
	}
	return &DashboardGenerator{
		outputDir: outputDir,
		logger:    logger,
		templates: template.Must(template.New("dashboard").Funcs(funcs).Parse(dashboardTemplate)),
	}
}

// GenerateDashboard writes index.html for report and returns its path
func (dg *DashboardGenerator) GenerateDashboard(report *benchmark.Report, version string) (string, error) {
	if err := os.MkdirAll(dg.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data := &DashboardData{
		Title:       fmt.Sprintf("%s vs %s", report.Baseline, report.Candidate),
		GeneratedAt: time.Now(),
		Version:     version,
		Report:      report,
		Rows:        dashboardRows(report),
	}
	dg.prepareChartData(data)

	outputFile := filepath.Join(dg.outputDir, "index.html")
	file, err := os.Create(outputFile)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := dg.templates.Execute(file, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	if dg.logger != nil {
		dg.logger.Infof("Dashboard generated successfully in: %s", dg.outputDir)
	}
	return outputFile, nil
}

func dashboardRows(report *benchmark.Report) []DashboardRow {
	var rows []DashboardRow
	for _, suite := range report.Suites {
		for _, c := range suite.Cases {
			rows = append(rows, DashboardRow{
				Suite:         suite.Name,
				Query:         c.Case.String(),
				BaselineTime:  formatDuration(c.BaselineTime),
				CandidateTime: formatDuration(c.CandidateTime),
				MostProbable:  fmt.Sprintf("%s (%.4f)", c.MostProbable, c.MostProbableP),
				MaxDifference: c.MaxDifference,
				Consistent:    c.Consistent,
			})
		}
	}
	return rows
}

// prepareChartData builds the timing and speedup charts
func (dg *DashboardGenerator) prepareChartData(data *DashboardData) {
	report := data.Report
	labels := make([]string, len(report.Suites))
	baseline := make([]float64, len(report.Suites))
	candidate := make([]float64, len(report.Suites))
	speedups := make([]float64, len(report.Suites))
	for i, suite := range report.Suites {
		labels[i] = suite.Name
		baseline[i] = float64(suite.BaselineTotal) / float64(time.Millisecond)
		candidate[i] = float64(suite.CandidateTotal) / float64(time.Millisecond)
		speedups[i] = suite.Speedup
	}

	data.Charts = &ChartData{
		TimingChart: &ChartConfig{
			Type:  "bar",
			Title: "Total time per suite (ms)",
			Data: map[string]interface{}{
				"labels": labels,
				"datasets": []map[string]interface{}{
					{"label": report.Baseline, "data": baseline, "backgroundColor": "rgba(255, 99, 132, 0.6)"},
					{"label": report.Candidate, "data": candidate, "backgroundColor": "rgba(75, 192, 192, 0.6)"},
				},
			},
			Options: map[string]interface{}{
				"responsive": true,
				"scales": map[string]interface{}{
					"y": map[string]interface{}{"beginAtZero": true},
				},
			},
		},
		SpeedupChart: &ChartConfig{
			Type:  "line",
			Title: "Speedup per suite",
			Data: map[string]interface{}{
				"labels": labels,
				"datasets": []map[string]interface{}{
					{"label": "speedup", "data": speedups, "borderColor": "rgb(102, 126, 234)"},
				},
			},
			Options: map[string]interface{}{"responsive": true},
		},
	}
}
