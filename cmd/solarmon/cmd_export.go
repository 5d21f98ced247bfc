package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tejusbharadwaj/solarmon/internal/monitoring"
	"github.com/tejusbharadwaj/solarmon/internal/validator"
	"github.com/tejusbharadwaj/solarmon/internal/window"
)

var exportCmd = &cobra.Command{
	Use:   "export SITE_ID...",
	Short: "Export site energy to one CSV file per site",
	Long: `Export site energy for one period starting at --start. Files are named
"<date> - <site name> (<site id>) - <UNIT>.csv" and written to --dir.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("start", "", "first day of the period, YYYY-MM-DD")
	exportCmd.Flags().String("period", "Month", "period length: "+strings.Join(validator.PeriodLengths, ", "))
	exportCmd.Flags().String("unit", string(window.Day), unitUsage)
	exportCmd.Flags().String("dir", "", "output directory (default from config)")
	_ = exportCmd.MarkFlagRequired("start")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	flags := cmd.Flags()

	rawStart, _ := flags.GetString("start")
	start, err := parseTime("start", rawStart)
	if err != nil {
		return err
	}
	period, _ := flags.GetString("period")
	unit, _ := flags.GetString("unit")
	dir, _ := flags.GetString("dir")
	if dir == "" {
		dir = a.cfg.Export.Dir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	paths, err := a.svc.ExportSiteEnergy(cmd.Context(), args, monitoring.EnergyExport{
		Dir:      dir,
		Start:    start,
		Period:   period,
		TimeUnit: unit,
	}, a.onErr)
	if err != nil {
		return err
	}

	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
