package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/chargeplan/app"
	"github.com/kilianp07/chargeplan/core/gateway"
)

var clearSimulate bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove schedule entries dated before today",
	RunE:  clearOld,
}

func init() {
	clearCmd.Flags().BoolVar(&clearSimulate, "simulate", false, "list the entries without removing them")
	rootCmd.AddCommand(clearCmd)
}

func clearOld(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gw, closeFn, err := app.OpenGateway(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	action := gateway.ClearDelete
	if clearSimulate {
		action = gateway.ClearSimulate
	}
	res, err := gw.Clear(cmd.Context(), action)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}
