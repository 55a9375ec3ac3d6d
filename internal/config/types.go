package config

// Config is the root configuration for dealbrief.
type Config struct {
	Model       ModelConfig       `yaml:"model,omitempty"`
	Agent       AgentConfig       `yaml:"agent,omitempty"`
	DataService DataServiceConfig `yaml:"dataService,omitempty"`
	Chart       ChartConfig       `yaml:"chart,omitempty"`
	Reports     ReportsConfig     `yaml:"reports,omitempty"`
	Web         WebConfig         `yaml:"web,omitempty"`
	Logging     LoggingConfig     `yaml:"logging,omitempty"`
}

// ModelConfig selects and configures the generative model backend.
type ModelConfig struct {
	Provider    string   `yaml:"provider,omitempty"` // "gemini" | "vertex"
	ID          string   `yaml:"id,omitempty"`       // model identifier, e.g. "gemini-2.5-flash"
	APIKey      string   `yaml:"apiKey,omitempty"`   // required for provider: gemini
	Project     string   `yaml:"project,omitempty"`  // required for provider: vertex
	Region      string   `yaml:"region,omitempty"`   // required for provider: vertex
	Temperature *float64 `yaml:"temperature,omitempty"`
	MaxTokens   int      `yaml:"maxTokens,omitempty"`
}

// AgentConfig controls the conversation loop.
type AgentConfig struct {
	MaxToolRounds  int `yaml:"maxToolRounds,omitempty"`  // tool-call rounds before the loop is declared stuck
	TimeoutSeconds int `yaml:"timeoutSeconds,omitempty"` // wall-clock budget for one report's conversation
}

// DataServiceConfig points at (and configures) the customer data service.
type DataServiceConfig struct {
	URL            string `yaml:"url,omitempty"`            // base URL the getCustomerData tool calls
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"` // per-fetch timeout
	Listen         string `yaml:"listen,omitempty"`         // customerd listen address
	DBPath         string `yaml:"dbPath,omitempty"`         // customer store database path
}

// ChartConfig controls chart-script execution.
type ChartConfig struct {
	Python         string `yaml:"python,omitempty"`         // interpreter for generated chart scripts
	TimeoutSeconds int    `yaml:"timeoutSeconds,omitempty"` // hard wall-clock limit for the subprocess
}

// ReportsConfig controls report persistence.
type ReportsConfig struct {
	Dir string `yaml:"dir,omitempty"` // where finished HTML reports are written
}

// WebConfig controls the dashboard server.
type WebConfig struct {
	Port int    `yaml:"port,omitempty"`
	Bind string `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	Host string `yaml:"host,omitempty"` // used when bind: custom
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File  string `yaml:"file,omitempty"`
}
