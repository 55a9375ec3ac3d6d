package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Model: ModelConfig{
			Provider: "gemini",
			ID:       "gemini-2.5-flash",
		},
		Agent: AgentConfig{
			MaxToolRounds:  8,
			TimeoutSeconds: 300,
		},
		DataService: DataServiceConfig{
			URL:            "http://127.0.0.1:8787",
			TimeoutSeconds: 10,
			Listen:         "127.0.0.1:8787",
		},
		Chart: ChartConfig{
			Python:         "python3",
			TimeoutSeconds: 15,
		},
		Web: WebConfig{
			Port: 8799,
			Bind: "loopback",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
