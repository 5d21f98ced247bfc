//go:build integration
// +build integration

package integration_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejusbharadwaj/solarmon/internal/api"
	"github.com/tejusbharadwaj/solarmon/internal/config"
	"github.com/tejusbharadwaj/solarmon/internal/database"
	"github.com/tejusbharadwaj/solarmon/internal/endpoint"
	"github.com/tejusbharadwaj/solarmon/internal/monitoring"
	"github.com/tejusbharadwaj/solarmon/internal/scheduler"
)

const testKey = "ABCDEFGHIJKLMNOPQRSTUVWXYZ012345"

func setupTestDB(t *testing.T) *database.PostgresRepo {
	cfg := config.DatabaseConfig{
		Host:              getEnvOrDefault("DB_HOST", "db"),
		Port:              5432,
		User:              getEnvOrDefault("DB_USER", "solarmon"),
		Password:          getEnvOrDefault("DB_PASSWORD", "solarmon"),
		Name:              getEnvOrDefault("DB_NAME", "solarmon"),
		SSLMode:           "disable",
		ConnectionTimeout: 5,
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		_, err := fmt.Sscanf(port, "%d", &cfg.Port)
		require.NoError(t, err)
	}

	repo, err := database.NewPostgresRepo(cfg.DSN(), 4)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	require.NoError(t, repo.EnsureSchema(context.Background()))

	// Clean up any existing test data
	db, err := sql.Open("postgres", cfg.DSN())
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec("TRUNCATE TABLE energy_readings")
	require.NoError(t, err)

	return repo
}

// Helper function to get environment variables with defaults
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// setupMockAPIServer answers /site/{id}/energy with one hourly value from
// startDate up to and including endDate midnight, which the client trims.
func setupMockAPIServer(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("api_key") != testKey {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if !strings.HasSuffix(r.URL.Path, "/energy") || strings.Contains(r.URL.Path, "/404/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		start, err := time.Parse(endpoint.DateLayout, q.Get("startDate"))
		require.NoError(t, err)
		end, err := time.Parse(endpoint.DateLayout, q.Get("endDate"))
		require.NoError(t, err)
		require.Equal(t, "HOUR", q.Get("timeUnit"))

		var values []map[string]interface{}
		for cur := start; !cur.After(end); cur = cur.Add(time.Hour) {
			var v interface{}
			if cur.Hour() >= 6 && cur.Hour() < 18 {
				v = rand.Float64() * 1000
			}
			values = append(values, map[string]interface{}{"date": endpoint.DateTime(cur), "value": v})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"energy": map[string]interface{}{"timeUnit": "HOUR", "unit": "Wh", "values": values},
		})
	}))
}

func newCollector(t *testing.T, apiURL string, repo database.ReadingRepository, sites []string) (*scheduler.Scheduler, *api.Metrics) {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	metrics, err := api.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	client := api.NewClient(apiURL, api.WithLogger(logger), api.WithMetrics(metrics))
	svc, err := monitoring.NewService(client, testKey, logger)
	require.NoError(t, err)

	return scheduler.NewScheduler(svc, repo, scheduler.Options{
		Schedule:     "@hourly",
		Sites:        sites,
		TimeUnit:     "HOUR",
		LookbackDays: 2,
	}, logger), metrics
}

func TestCollectE2E(t *testing.T) {
	repo := setupTestDB(t)
	mockAPI := setupMockAPIServer(t)
	defer mockAPI.Close()

	collector, metrics := newCollector(t, mockAPI.URL, repo, []string{"1", "404", "2"})
	ctx := context.Background()

	// 2 days of hourly values, 12 daylight hours each, for two sites
	n, err := collector.CollectOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2*2*12, n)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Requests.WithLabelValues("siteEnergy", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests.WithLabelValues("siteEnergy", "404")))

	start, end := collector.Window()
	readings, err := repo.Query(ctx, "1", start, end)
	require.NoError(t, err)
	require.Len(t, readings, 24)
	for _, r := range readings {
		assert.Equal(t, "siteEnergy", r.Series)
		assert.True(t, r.Time.Before(end), "reading at %s not trimmed", r.Time)
	}

	// collecting the same window again updates in place
	_, err = collector.CollectOnce(ctx)
	require.NoError(t, err)
	readings, err = repo.Query(ctx, "1", start, end)
	require.NoError(t, err)
	assert.Len(t, readings, 24)
}
