// Package cli implements the dealbrief command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/dealbrief/dealbrief/internal/config"
	"github.com/dealbrief/dealbrief/internal/logging"
)

var (
	cfgFile  string
	logLevel string

	// loaded at init time
	paths config.Paths
	log   *logging.Logger
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dealbrief",
		Short: "dealbrief — AI sales-negotiation strategy reports",
		Long: "dealbrief prepares sales-negotiation strategy reports: an agent retrieves\n" +
			"customer data through a tool call, produces a strategy, and a post-processing\n" +
			"stage renders it as an HTML report with a price-history chart.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			paths, err = config.ResolvePaths()
			if err != nil {
				return err
			}
			if cfgFile != "" {
				paths.Config = cfgFile
			}
			level := logLevel
			if level == "" {
				level = "info"
			}
			log = logging.New(nil, level)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.dealbrief/config.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace, debug, info, warn, error, fatal, silent)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newCustomersCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

// loadConfig reads the config file, falling back to defaults, and
// applies the log level from config when no flag overrides it.
func loadConfig() config.Config {
	cfg, err := config.Load(paths.Config)
	if err != nil {
		log.Warn().Err(err).Str("path", paths.Config).Msg("config load failed, using defaults")
		cfg = config.Defaults()
	}
	if logLevel == "" && cfg.Logging.Level != "" {
		log = logging.New(nil, cfg.Logging.Level)
	}
	return cfg
}
