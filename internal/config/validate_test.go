package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.Model.APIKey = "test-key"
	return cfg
}

func issuePaths(issues []ValidationIssue) []string {
	paths := make([]string, len(issues))
	for i, issue := range issues {
		paths[i] = issue.Path
	}
	return paths
}

func TestValidateOK(t *testing.T) {
	cfg := validConfig()
	assert.Empty(t, Validate(&cfg))
}

func TestValidateGeminiNeedsKey(t *testing.T) {
	cfg := Defaults()
	cfg.Model.APIKey = ""
	assert.Contains(t, issuePaths(Validate(&cfg)), "model.apiKey")
}

func TestValidateVertexNeedsProjectAndRegion(t *testing.T) {
	cfg := Defaults()
	cfg.Model.Provider = "vertex"
	paths := issuePaths(Validate(&cfg))
	assert.Contains(t, paths, "model.project")
	assert.Contains(t, paths, "model.region")
}

func TestValidateBadProvider(t *testing.T) {
	cfg := validConfig()
	cfg.Model.Provider = "openai"
	assert.Contains(t, issuePaths(Validate(&cfg)), "model.provider")
}

func TestValidateBounds(t *testing.T) {
	cfg := validConfig()
	cfg.Agent.MaxToolRounds = 0
	cfg.Chart.TimeoutSeconds = 0
	cfg.DataService.TimeoutSeconds = -1
	cfg.Web.Port = 99999

	paths := issuePaths(Validate(&cfg))
	assert.Contains(t, paths, "agent.maxToolRounds")
	assert.Contains(t, paths, "chart.timeoutSeconds")
	assert.Contains(t, paths, "dataService.timeoutSeconds")
	assert.Contains(t, paths, "web.port")
}

func TestValidateWebBind(t *testing.T) {
	cfg := validConfig()
	cfg.Web.Bind = "tailnet"
	assert.Contains(t, issuePaths(Validate(&cfg)), "web.bind")

	cfg = validConfig()
	cfg.Web.Bind = "custom"
	assert.Contains(t, issuePaths(Validate(&cfg)), "web.host")
}

func TestValidateLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	assert.Contains(t, issuePaths(Validate(&cfg)), "logging.level")
}
