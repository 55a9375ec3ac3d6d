package config

import (
	"fmt"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	validProviders := []string{"gemini", "vertex"}
	if cfg.Model.Provider != "" && !slices.Contains(validProviders, cfg.Model.Provider) {
		issues = append(issues, ValidationIssue{
			Path:    "model.provider",
			Message: fmt.Sprintf("must be one of %v, got %q", validProviders, cfg.Model.Provider),
		})
	}

	if cfg.Model.Provider == "gemini" && cfg.Model.APIKey == "" {
		issues = append(issues, ValidationIssue{
			Path:    "model.apiKey",
			Message: "required for provider: gemini (set DEALBRIEF_API_KEY or model.apiKey)",
		})
	}

	if cfg.Model.Provider == "vertex" {
		if cfg.Model.Project == "" {
			issues = append(issues, ValidationIssue{
				Path:    "model.project",
				Message: "required for provider: vertex",
			})
		}
		if cfg.Model.Region == "" {
			issues = append(issues, ValidationIssue{
				Path:    "model.region",
				Message: "required for provider: vertex",
			})
		}
	}

	if cfg.Agent.MaxToolRounds < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "agent.maxToolRounds",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Agent.MaxToolRounds),
		})
	}

	if cfg.DataService.TimeoutSeconds < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "dataService.timeoutSeconds",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.DataService.TimeoutSeconds),
		})
	}

	if cfg.Chart.TimeoutSeconds < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "chart.timeoutSeconds",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Chart.TimeoutSeconds),
		})
	}

	if cfg.Web.Port < 0 || cfg.Web.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "web.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Web.Port),
		})
	}

	validBinds := []string{"loopback", "lan", "custom"}
	if cfg.Web.Bind != "" && !slices.Contains(validBinds, cfg.Web.Bind) {
		issues = append(issues, ValidationIssue{
			Path:    "web.bind",
			Message: fmt.Sprintf("must be one of %v, got %q", validBinds, cfg.Web.Bind),
		})
	}
	if cfg.Web.Bind == "custom" && cfg.Web.Host == "" {
		issues = append(issues, ValidationIssue{
			Path:    "web.host",
			Message: "required when web.bind is custom",
		})
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	return issues
}
