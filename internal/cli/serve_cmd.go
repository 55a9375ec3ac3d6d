package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/dealbrief/dealbrief/internal/hooks"
	"github.com/dealbrief/dealbrief/internal/webui"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the report dashboard",
		Long: "Serves the interactive dashboard: a form to request reports, live progress\n" +
			"over WebSocket, and report download. Customer names come from the data service.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if err := paths.EnsureDirs(); err != nil {
				return err
			}
			if port != 0 {
				cfg.Web.Port = port
			}

			ctx := cmd.Context()
			client, err := newModelClient(ctx, cfg)
			if err != nil {
				return err
			}

			dir := reportsDir(cfg)
			factory := func(hm *hooks.Manager) webui.ReportRunner {
				return buildPipeline(cfg, client, hm, dir)
			}
			jobTimeout := time.Duration(cfg.Agent.TimeoutSeconds) * time.Second
			jobs := webui.NewJobManager(factory, jobTimeout, log)

			srv := webui.New(cfg.Web, jobs, newDataClient(cfg), log)
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "dashboard port (overrides config)")
	return cmd
}
