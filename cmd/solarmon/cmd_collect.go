package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tejusbharadwaj/solarmon/internal/database"
	"github.com/tejusbharadwaj/solarmon/internal/scheduler"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect site energy into PostgreSQL on the configured schedule",
	Long: `Collect fetches the last collector.lookback_days whole days of site energy
for collector.sites and upserts every reading into the energy_readings table.
Without --once it runs on collector.schedule until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().Bool("once", false, "collect once and exit")
	collectCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9102")

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, _ []string) error {
	a := appFrom(cmd)
	ctx := cmd.Context()
	cfg := a.cfg

	once, _ := cmd.Flags().GetBool("once")
	if !once && !cfg.Collector.Enabled {
		return errors.New("collector is disabled: set collector.enabled or use --once")
	}

	repo, err := database.NewPostgresRepo(cfg.Database.DSN(), cfg.Database.MaxConnections)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	sched := scheduler.NewScheduler(a.svc, repo, scheduler.Options{
		Schedule:     cfg.Collector.Schedule,
		Sites:        cfg.Collector.Sites,
		TimeUnit:     cfg.Collector.TimeUnit,
		LookbackDays: cfg.Collector.LookbackDays,
	}, a.logger)

	if once {
		n, err := sched.CollectOnce(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored %d readings\n", n)
		return nil
	}

	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		srv := &http.Server{
			Addr:              addr,
			Handler:           promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			a.logger.WithFields(logrus.Fields{"addr": addr}).Info("Serving metrics")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.WithError(err).Error("Metrics server failed")
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	if err := sched.Start(); err != nil {
		return fmt.Errorf("scheduler error: %w", err)
	}

	<-ctx.Done()
	a.logger.Info("Shutting down collector")
	<-sched.Stop().Done()
	return nil
}
