// Command solarmon queries a solar monitoring account, exports site energy
// to CSV and collects readings into PostgreSQL.
//
// Usage:
//
//	solarmon [command] [flags]
//
// Configuration is read from --config (default config.yaml when present),
// a .env file next to it and SOLARMON_* environment variables. The API key
// can also be given with --api-key or typed at the prompt.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "solarmon",
	Short: "solarmon - solar monitoring API client",
	Long: `solarmon reads site, energy, power and equipment data from the vendor
monitoring API, exports energy to CSV files and collects readings on a
schedule.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadApp,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "path to config file (default config.yaml if it exists)")
	flags.String("api-key", "", "monitoring API key (overrides config and SOLARMON_API_KEY)")
	flags.StringP("output", "o", "text", "output format: text or json")
	flags.String("on-error", "", "per-site error policy: stop, continue or silent (default from config)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
