package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kilianp07/chargeplan/app"
	"github.com/kilianp07/chargeplan/pkg/export"
)

var (
	resolveDate   string
	resolveFormat string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print the effective timeline of a day",
	RunE:  resolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveDate, "date", "", "day to resolve as YYYYMMDD (default today)")
	resolveCmd.Flags().StringVar(&resolveFormat, "format", "", "print only the timeline as json or csv")
	rootCmd.AddCommand(resolveCmd)
}

func resolve(cmd *cobra.Command, args []string) error {
	var format export.Format
	if resolveFormat != "" {
		f, err := export.ParseFormat(resolveFormat)
		if err != nil {
			return err
		}
		format = f
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gw, closeFn, err := app.OpenGateway(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	res, err := gw.Read(cmd.Context(), resolveDate)
	if err != nil {
		return err
	}
	switch format {
	case export.FormatCSV:
		return export.WriteCSV(cmd.OutOrStdout(), res.Date, res.Resolved)
	case export.FormatJSON:
		return export.WriteJSON(cmd.OutOrStdout(), res.Resolved)
	}
	return printJSON(cmd.OutOrStdout(), res)
}
