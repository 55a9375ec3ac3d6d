// Package report turns a finished strategy text into a deliverable HTML
// document: a best-effort chart, a best-effort styled fragment, and a
// fixed template wrapping both.
package report

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/dealbrief/dealbrief/internal/llm"
	"github.com/dealbrief/dealbrief/internal/logging"
)

// chartPrompt asks the model for a self-contained matplotlib script that
// renders the report's price history against target and cost lines.
const chartPrompt = `Take the following raw negotiation strategy report. The report contains data on 'purchase_history' (with dates and prices), a 'current_target_price', and a 'current_cost_price' (or 'Baseline_Price_USD').
Your task is to generate a self-contained Python script using 'matplotlib.pyplot' to create ONE clear, professional line and area chart.

Chart Requirements:
1.  X-Axis: Dates from 'purchase_history' (must parse strings to datetime).
2.  Y-Axis: Price ($).
3.  Historical Prices: Plot 'price_achieved' from 'purchased_price' as a line with markers.
4.  Target Line: Draw a horizontal dashed line for 'current_target_price' (or 'Target_Price_USD').
5.  Cost Line: Draw a horizontal dashed line for 'current_cost_price' (or 'Baseline_Price_USD').
6.  Profit Zone: Create a shaded green area (using plt.fill_between) between the cost and target lines.

Python Script Requirements:
1.  Code Only: Respond ONLY with Python code in ` + "```python ... ```" + `.
2.  Library: Use 'matplotlib.pyplot' and 'datetime'.
3.  Save to File: Save the chart to 'chart.png'.
4.  No Display: Do not use plt.show().

Input Report:
---
%s
---
`

// scriptHeader forces the non-interactive backend so the script cannot
// try to open a display.
const scriptHeader = "import matplotlib\nmatplotlib.use('Agg')\n"

var pythonBlockRe = regexp.MustCompile("(?s)```python\n(.*?)\n```")

var chartTemperature = 0.1

// ChartGenerator produces a base64-encoded PNG chart for a report by
// asking the model for a plotting script and executing it in a
// sandboxed subprocess. Every failure mode degrades to "no chart".
type ChartGenerator struct {
	client  llm.Client
	python  string
	timeout time.Duration
	log     *logging.Logger
}

// NewChartGenerator creates a generator. python is the interpreter to
// invoke (default "python3"); timeout bounds the subprocess wall clock.
func NewChartGenerator(client llm.Client, python string, timeout time.Duration, log *logging.Logger) *ChartGenerator {
	if python == "" {
		python = "python3"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ChartGenerator{
		client:  client,
		python:  python,
		timeout: timeout,
		log:     log.Sub("chart"),
	}
}

// Generate returns the chart as a base64 PNG string, or "" when no
// chart could be produced. It never returns an error to the caller:
// charting is best-effort and must not fail the report.
func (g *ChartGenerator) Generate(ctx context.Context, reportText string) string {
	resp, err := g.client.Generate(ctx, llm.GenerateRequest{
		Contents:    []llm.Content{llm.UserText(fmt.Sprintf(chartPrompt, reportText))},
		Temperature: &chartTemperature,
	})
	if err != nil {
		g.log.Warn().Err(err).Msg("chart script request failed")
		return ""
	}

	script, ok := ExtractPythonScript(resp.Text())
	if !ok {
		g.log.Warn().Msg("model response contained no python code block")
		return ""
	}

	png, err := g.runScript(ctx, PrepareScript(script))
	if err != nil {
		g.log.Warn().Err(err).Msg("chart script execution failed")
		return ""
	}
	return base64.StdEncoding.EncodeToString(png)
}

// ExtractPythonScript pulls the first fenced python block out of a
// model response.
func ExtractPythonScript(text string) (string, bool) {
	m := pythonBlockRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// PrepareScript hardens a model-generated plotting script: the headless
// backend is forced and display calls are stripped.
func PrepareScript(script string) string {
	return scriptHeader + strings.ReplaceAll(script, "plt.show()", "")
}

// runScript writes the script into a private temp directory, runs the
// interpreter there under the timeout, and reads back chart.png. The
// directory is removed afterwards regardless of outcome.
func (g *ChartGenerator) runScript(ctx context.Context, script string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "dealbrief-chart-")
	if err != nil {
		return nil, fmt.Errorf("creating work dir: %w", err)
	}
	defer os.RemoveAll(dir)

	scriptPath := filepath.Join(dir, "generate_chart.py")
	if err := os.WriteFile(scriptPath, []byte(script), 0o600); err != nil {
		return nil, fmt.Errorf("writing script: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, g.python, "generate_chart.py")
	cmd.Dir = dir
	// The script is model-generated and may spawn children that inherit
	// the output pipes; kill the whole process group on cancellation and
	// stop waiting for stragglers so the timeout actually bounds the run.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = time.Second
	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("script timed out after %s", g.timeout)
	}
	if err != nil {
		return nil, fmt.Errorf("script failed: %w: %s", err, strings.TrimSpace(string(out)))
	}

	png, err := os.ReadFile(filepath.Join(dir, "chart.png"))
	if err != nil {
		return nil, fmt.Errorf("script produced no chart.png: %w", err)
	}
	return png, nil
}
