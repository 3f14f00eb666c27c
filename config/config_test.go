package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctrmdash/config"
)

// go test -v --run ^TestLoadRepositoryConfig$
func TestLoadRepositoryConfig(t *testing.T) {
	cfg, err := config.Load("config.yaml")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, uint32(123), cfg.Dashboard.Seed)
	assert.Equal(t, 90, cfg.Dashboard.SeriesDays)
	assert.Equal(t, 15, cfg.Dashboard.ForecastDays)
	assert.Equal(t, 3*time.Second, cfg.Dashboard.ToastDuration)
	require.Len(t, cfg.Dashboard.Benchmarks, 2)
	assert.Equal(t, "WTI", cfg.Dashboard.Benchmarks[0].Name)
	assert.Equal(t, 78.0, cfg.Dashboard.Benchmarks[0].Base)
	assert.False(t, cfg.Postgres.Enabled)
	assert.Equal(t, time.Hour, cfg.Postgres.ConnMaxLifetime)
	assert.Equal(t, 365, cfg.Postgres.RetentionDays)
	assert.Equal(t, "ws://localhost:8080/ws", cfg.Client.WSURL)
}

// go test -v --run ^TestLoadDefaultsAndEnvOverride$
func TestLoadDefaultsAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))

	t.Setenv("SERVER_ADDR", ":9999")
	t.Setenv("DASHBOARD_SEED", "7")

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, uint32(7), cfg.Dashboard.Seed)
	assert.Equal(t, 5, cfg.Dashboard.GridRows)
	assert.Equal(t, 7, cfg.Dashboard.GridCols)
	assert.Equal(t, 0.8, cfg.Dashboard.ForecastBand)
}

// go test -v --run ^TestLoadMissingFile$
func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// go test -v --run ^TestAnchorTime$
func TestAnchorTime(t *testing.T) {
	now := time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC)

	got, err := config.DashboardConfig{}.AnchorTime(now)
	require.NoError(t, err)
	assert.Equal(t, now, got)

	got, err = config.DashboardConfig{Anchor: "2025-01-02"}.AnchorTime(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), got)

	_, err = config.DashboardConfig{Anchor: "yesterday"}.AnchorTime(now)
	assert.Error(t, err)
}

// go test -v --run ^TestPostgresDSN$
func TestPostgresDSN(t *testing.T) {
	cfg := config.PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "pw",
		DBName:   "ctrmdash",
		SSLMode:  "disable",
		TimeZone: "UTC",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=pw dbname=ctrmdash sslmode=disable TimeZone=UTC",
		cfg.DSN("dev"))
	assert.Contains(t, cfg.AdminDSN(), "dbname=postgres")
}
