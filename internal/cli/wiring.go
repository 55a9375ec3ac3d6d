package cli

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/dealbrief/dealbrief/internal/agent"
	"github.com/dealbrief/dealbrief/internal/config"
	"github.com/dealbrief/dealbrief/internal/customerdata"
	"github.com/dealbrief/dealbrief/internal/hooks"
	"github.com/dealbrief/dealbrief/internal/llm"
	"github.com/dealbrief/dealbrief/internal/report"
)

// newModelClient builds the model backend from config. Missing
// credentials are a startup error, not something to discover mid-report.
func newModelClient(ctx context.Context, cfg config.Config) (llm.Client, error) {
	switch cfg.Model.Provider {
	case "vertex":
		return llm.NewVertexClient(ctx, cfg.Model.Project, cfg.Model.Region, cfg.Model.ID)
	default:
		if cfg.Model.APIKey == "" {
			return nil, errors.New("no model credentials: set model.apiKey (or DEALBRIEF_API_KEY), or switch to provider: vertex with application default credentials")
		}
		return llm.NewGeminiClient(cfg.Model.APIKey, cfg.Model.ID), nil
	}
}

// newDataClient builds the customer data service client from config.
func newDataClient(cfg config.Config) *customerdata.Client {
	timeout := time.Duration(cfg.DataService.TimeoutSeconds) * time.Second
	return customerdata.NewClient(cfg.DataService.URL, timeout, log)
}

// buildPipeline wires the full report pipeline: runner with the
// customer data tool, chart generator, styler, and persistence.
func buildPipeline(cfg config.Config, client llm.Client, hm *hooks.Manager, reportsDir string) *report.Pipeline {
	registry := agent.NewRegistry()
	registry.Register(agent.NewCustomerDataTool(newDataClient(cfg)))

	runner := agent.NewRunner(agent.Config{
		Model:         cfg.Model.ID,
		MaxToolRounds: cfg.Agent.MaxToolRounds,
		Temperature:   cfg.Model.Temperature,
		MaxTokens:     cfg.Model.MaxTokens,
	}, client, registry, hm, log)

	charts := report.NewChartGenerator(client, cfg.Chart.Python,
		time.Duration(cfg.Chart.TimeoutSeconds)*time.Second, log)
	styler := report.NewStyler(client, log)

	return report.NewPipeline(runner, charts, styler, reportsDir, hm, log)
}

// storePath resolves the customer store location.
func storePath(cfg config.Config) string {
	if cfg.DataService.DBPath != "" {
		return cfg.DataService.DBPath
	}
	return filepath.Join(paths.Data, "customers.db")
}

// reportsDir resolves where finished reports are written.
func reportsDir(cfg config.Config) string {
	if cfg.Reports.Dir != "" {
		return cfg.Reports.Dir
	}
	return paths.Reports
}
