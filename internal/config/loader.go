package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so the API key can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.Model.APIKey = expandEnvVars(cfg.Model.APIKey)
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// Save writes a Config back to a YAML file.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	def := Defaults()
	if cfg.Model.Provider == "" {
		cfg.Model.Provider = def.Model.Provider
	}
	if cfg.Model.ID == "" {
		cfg.Model.ID = def.Model.ID
	}
	if cfg.Agent.MaxToolRounds == 0 {
		cfg.Agent.MaxToolRounds = def.Agent.MaxToolRounds
	}
	if cfg.Agent.TimeoutSeconds == 0 {
		cfg.Agent.TimeoutSeconds = def.Agent.TimeoutSeconds
	}
	if cfg.DataService.URL == "" {
		cfg.DataService.URL = def.DataService.URL
	}
	if cfg.DataService.TimeoutSeconds == 0 {
		cfg.DataService.TimeoutSeconds = def.DataService.TimeoutSeconds
	}
	if cfg.DataService.Listen == "" {
		cfg.DataService.Listen = def.DataService.Listen
	}
	if cfg.Chart.Python == "" {
		cfg.Chart.Python = def.Chart.Python
	}
	if cfg.Chart.TimeoutSeconds == 0 {
		cfg.Chart.TimeoutSeconds = def.Chart.TimeoutSeconds
	}
	if cfg.Web.Port == 0 {
		cfg.Web.Port = def.Web.Port
	}
	if cfg.Web.Bind == "" {
		cfg.Web.Bind = def.Web.Bind
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
}

// applyEnvOverrides reads DEALBRIEF_* environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DEALBRIEF_API_KEY"); v != "" {
		cfg.Model.APIKey = v
	}
	if v := os.Getenv("DEALBRIEF_MODEL"); v != "" {
		cfg.Model.ID = v
	}
	if v := os.Getenv("DEALBRIEF_DATA_SERVICE_URL"); v != "" {
		cfg.DataService.URL = v
	}
	if v := os.Getenv("DEALBRIEF_WEB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Web.Port = port
		}
	}
	if v := os.Getenv("DEALBRIEF_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}
