package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tejusbharadwaj/solarmon/internal/api"
	"github.com/tejusbharadwaj/solarmon/internal/config"
	"github.com/tejusbharadwaj/solarmon/internal/endpoint"
	"github.com/tejusbharadwaj/solarmon/internal/models"
	"github.com/tejusbharadwaj/solarmon/internal/monitoring"
	"github.com/tejusbharadwaj/solarmon/internal/render"
	"github.com/tejusbharadwaj/solarmon/internal/window"
)

const defaultConfigPath = "config.yaml"

// app is what every command needs, built once before it runs.
type app struct {
	cfg      *config.Config
	logger   *logrus.Logger
	registry *prometheus.Registry
	svc      *monitoring.Service
	onErr    monitoring.ErrorPolicy
	output   string
}

type appKey struct{}

func appFrom(cmd *cobra.Command) *app {
	return cmd.Context().Value(appKey{}).(*app)
}

func loadApp(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	if path == "" {
		if _, err := os.Stat(defaultConfigPath); err == nil {
			path = defaultConfigPath
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := cfg.Logging.NewLogger()
	if err != nil {
		return fmt.Errorf("invalid logging configuration: %w", err)
	}
	logger.SetOutput(os.Stderr)

	key, _ := flags.GetString("api-key")
	if key == "" {
		key = cfg.API.Key
	}
	if key == "" {
		if key, err = promptKey(); err != nil {
			return err
		}
	}

	registry := prometheus.NewRegistry()
	metrics, err := api.NewMetrics(registry)
	if err != nil {
		return err
	}
	client := api.NewClient(cfg.API.URL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger),
		api.WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst),
		api.WithMetrics(metrics),
	)

	svc, err := monitoring.NewService(client, key, logger)
	if err != nil {
		return err
	}

	policy, _ := flags.GetString("on-error")
	if policy == "" {
		policy = cfg.Export.ErrorPolicy
	}
	onErr, err := monitoring.PolicyByName(policy, logger)
	if err != nil {
		return err
	}

	output, _ := flags.GetString("output")
	if output != "text" && output != "json" {
		return fmt.Errorf("unknown output format %q (valid: text, json)", output)
	}

	cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		svc:      svc,
		onErr:    onErr,
		output:   output,
	}))
	return nil
}

func promptKey() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no API key configured: use --api-key, SOLARMON_API_KEY or api.key")
	}

	fmt.Fprint(os.Stderr, "Enter API key: ")
	keyBytes, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr) // New line after key input
	if err != nil {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	return strings.TrimSpace(string(keyBytes)), nil
}

func (a *app) print(w io.Writer, records []models.Record) error {
	if a.output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	return render.Text(w, records)
}

// parseTime accepts a date or a date-time in the vendor layouts.
func parseTime(flag, raw string) (time.Time, error) {
	t, err := endpoint.ParseTimestamp(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: want %s or %s",
			flag, raw, endpoint.DateLayout, endpoint.DateTimeLayout)
	}
	return t, nil
}

// timeFlags reads a --start/--end pair.
func timeFlags(cmd *cobra.Command) (time.Time, time.Time, error) {
	rawStart, _ := cmd.Flags().GetString("start")
	rawEnd, _ := cmd.Flags().GetString("end")

	start, err := parseTime("start", rawStart)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseTime("end", rawEnd)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

var unitUsage = "time unit: " + strings.Join(window.TimeUnits(), ", ") + " (" + window.QuarterHourAlias + " also accepted)"

func addTimeFlags(cmd *cobra.Command) {
	cmd.Flags().String("start", "", "window start, "+endpoint.DateLayout+" or \""+endpoint.DateTimeLayout+"\"")
	cmd.Flags().String("end", "", "window end, same layouts as --start")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
}
