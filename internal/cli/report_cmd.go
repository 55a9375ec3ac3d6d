package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dealbrief/dealbrief/internal/agent"
	"github.com/dealbrief/dealbrief/internal/hooks"
)

func newReportCmd() *cobra.Command {
	var (
		customer string
		purpose  string
		noSave   bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a negotiation strategy report for a customer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			if err := paths.EnsureDirs(); err != nil {
				return err
			}

			ctx := cmd.Context()
			timeout := time.Duration(cfg.Agent.TimeoutSeconds) * time.Second
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			client, err := newModelClient(ctx, cfg)
			if err != nil {
				return err
			}

			hm := hooks.NewManager(log)
			hm.OnAll("progress", func(ctx context.Context, p hooks.Payload) error {
				switch p.Event {
				case hooks.EventToolCall:
					fmt.Printf("  → tool call: %v\n", p.Data["tool"])
				case hooks.EventToolResult:
					if errMsg, ok := p.Data["error"]; ok && errMsg != nil {
						fmt.Printf("  ← tool error: %v\n", errMsg)
					} else {
						fmt.Println("  ← tool result received")
					}
				case hooks.EventChartGenerated:
					fmt.Println("  chart generated")
				case hooks.EventChartSkipped:
					fmt.Println("  chart skipped")
				}
				return nil
			})

			dir := reportsDir(cfg)
			if noSave {
				dir = ""
			}
			pipeline := buildPipeline(cfg, client, hm, dir)

			fmt.Printf("Generating report for %s...\n", customer)
			rep, err := pipeline.Run(ctx, agent.Request{CustomerName: customer, Purpose: purpose})
			if err != nil {
				return err
			}

			fmt.Println()
			fmt.Println(rep.Text)
			if rep.Path != "" {
				fmt.Printf("\nSaved: %s\n", rep.Path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&customer, "customer", "", "customer name (required)")
	cmd.Flags().StringVar(&purpose, "purpose", agent.DefaultPurpose, "negotiation purpose")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "print the report without writing the HTML file")
	cmd.MarkFlagRequired("customer")

	return cmd
}
