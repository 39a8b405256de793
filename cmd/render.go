package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/chargeplan/app"
	"github.com/kilianp07/chargeplan/infra/logger"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Evaluate the rule set once and write the conditional schedule",
	RunE:  render,
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

func render(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("render-command").Errorf("service close: %v", err)
		}
	}()
	report, err := svc.Renderer.Run(ctx)
	if err != nil {
		return err
	}
	warnings := make([]string, 0, len(report.Result.Warnings))
	for _, w := range report.Result.Warnings {
		warnings = append(warnings, w.Error())
	}
	return printJSON(cmd.OutOrStdout(), map[string]any{
		"entries":           report.Result.Fragment,
		"matches":           report.Result.Matches,
		"warnings":          warnings,
		"battery_available": report.BatteryAvailable,
		"prices_available":  report.PricesAvailable,
	})
}
