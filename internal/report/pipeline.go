package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dealbrief/dealbrief/internal/agent"
	"github.com/dealbrief/dealbrief/internal/hooks"
	"github.com/dealbrief/dealbrief/internal/logging"
)

// Strategist produces the strategy text for a report request.
type Strategist interface {
	Run(ctx context.Context, req agent.Request) (*agent.Result, error)
}

// Report is a finished, assembled report.
type Report struct {
	CustomerName string    `json:"customerName"`
	Text         string    `json:"text"`
	HTML         string    `json:"-"`
	Path         string    `json:"path,omitempty"`
	HasChart     bool      `json:"hasChart"`
	GeneratedAt  time.Time `json:"generatedAt"`
}

// Pipeline strings the stages together: strategy conversation, chart
// generation, styling, assembly, and persistence.
type Pipeline struct {
	strategist Strategist
	charts     *ChartGenerator
	styler     *Styler
	reportsDir string
	hooks      *hooks.Manager
	log        *logging.Logger
	now        func() time.Time
}

// NewPipeline creates a pipeline. reportsDir may be empty to skip
// persistence; the hook manager may be nil.
func NewPipeline(strategist Strategist, charts *ChartGenerator, styler *Styler, reportsDir string, hm *hooks.Manager, log *logging.Logger) *Pipeline {
	return &Pipeline{
		strategist: strategist,
		charts:     charts,
		styler:     styler,
		reportsDir: reportsDir,
		hooks:      hm,
		log:        log.Sub("report"),
		now:        time.Now,
	}
}

// Run generates one report end to end. The strategy conversation is the
// only stage that can fail the report; charting and styling degrade.
func (p *Pipeline) Run(ctx context.Context, req agent.Request) (*Report, error) {
	p.emit(ctx, hooks.EventReportStarted, map[string]any{"customer": req.CustomerName})

	res, err := p.strategist.Run(ctx, req)
	if err != nil {
		p.emit(ctx, hooks.EventReportFailed, map[string]any{
			"customer": req.CustomerName,
			"error":    err.Error(),
		})
		return nil, err
	}

	imageBase64 := p.charts.Generate(ctx, res.Text)
	if imageBase64 == "" {
		p.emit(ctx, hooks.EventChartSkipped, map[string]any{"customer": req.CustomerName})
	} else {
		p.emit(ctx, hooks.EventChartGenerated, map[string]any{"customer": req.CustomerName})
	}

	fragment := p.styler.Style(ctx, res.Text)

	generatedAt := p.now()
	html, err := Assemble(req.CustomerName, fragment, imageBase64, generatedAt)
	if err != nil {
		p.emit(ctx, hooks.EventReportFailed, map[string]any{
			"customer": req.CustomerName,
			"error":    err.Error(),
		})
		return nil, err
	}

	rep := &Report{
		CustomerName: req.CustomerName,
		Text:         res.Text,
		HTML:         html,
		HasChart:     imageBase64 != "",
		GeneratedAt:  generatedAt,
	}

	if p.reportsDir != "" {
		path, err := p.persist(rep)
		if err != nil {
			return nil, err
		}
		rep.Path = path
	}

	p.emit(ctx, hooks.EventReportCompleted, map[string]any{
		"customer": req.CustomerName,
		"path":     rep.Path,
		"hasChart": rep.HasChart,
	})
	p.log.Info().
		Str("customer", req.CustomerName).
		Bool("hasChart", rep.HasChart).
		Str("path", rep.Path).
		Msg("report generated")
	return rep, nil
}

func (p *Pipeline) persist(rep *Report) (string, error) {
	if err := os.MkdirAll(p.reportsDir, 0o755); err != nil {
		return "", fmt.Errorf("creating reports dir: %w", err)
	}
	path := filepath.Join(p.reportsDir, ReportFileName(rep.CustomerName))
	if err := os.WriteFile(path, []byte(rep.HTML), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// ReportFileName returns the download file name for a customer's report.
// The customer name is sanitized so it cannot escape the reports dir.
func ReportFileName(customerName string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '.':
			return r
		default:
			return '_'
		}
	}, customerName)
	return fmt.Sprintf("Negotiation_Report_%s.html", safe)
}

func (p *Pipeline) emit(ctx context.Context, event string, data map[string]any) {
	if p.hooks != nil {
		p.hooks.Emit(ctx, event, data)
	}
}
