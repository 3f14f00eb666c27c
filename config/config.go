package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Log       LogConfig       `mapstructure:"log"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Client    ClientConfig    `mapstructure:"client"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	CORSOrigin      string        `mapstructure:"cors_origin"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	Mode            string        `mapstructure:"mode"` // gin mode: "debug", "release", "test"
}

// DashboardConfig controls the generated sample data and the session behaviour.
type DashboardConfig struct {
	Seed             uint32            `mapstructure:"seed"`
	Anchor           string            `mapstructure:"anchor"` // YYYY-MM-DD; empty means today
	Benchmarks       []BenchmarkConfig `mapstructure:"benchmarks"`
	Amplitude        float64           `mapstructure:"amplitude"`
	Drift            float64           `mapstructure:"drift"`
	SeriesDays       int               `mapstructure:"series_days"`
	ForecastDays     int               `mapstructure:"forecast_days"`
	ForecastBand     float64           `mapstructure:"forecast_band"`
	GridRows         int               `mapstructure:"grid_rows"`
	GridCols         int               `mapstructure:"grid_cols"`
	ToastDuration    time.Duration     `mapstructure:"toast_duration"`
	SubscriberBuffer int               `mapstructure:"subscriber_buffer"`
	CacheMaxCost     int64             `mapstructure:"cache_max_cost"`
	CacheTTL         time.Duration     `mapstructure:"cache_ttl"`
}

type BenchmarkConfig struct {
	Name string  `mapstructure:"name"`
	Base float64 `mapstructure:"base"`
}

// AnchorTime parses Anchor, falling back to now when it is empty.
func (d DashboardConfig) AnchorTime(now time.Time) (time.Time, error) {
	if d.Anchor == "" {
		return now, nil
	}
	t, err := time.Parse("2006-01-02", d.Anchor)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid dashboard.anchor %q: %w", d.Anchor, err)
	}
	return t, nil
}

// Options defines the logger configuration options.
type LogConfig struct {
	Level       string `mapstructure:"level"`       // log level: "debug", "info", "warn", "error"
	Format      string `mapstructure:"format"`      // log format: "json" or "console"
	OutputFile  string `mapstructure:"output_file"` // file path to store logs (optional)
	Environment string `mapstructure:"environment"` // environment: "dev" or "prod"
}

// ClientConfig is read by the terminal client.
type ClientConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	WSURL           string        `mapstructure:"ws_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	ReconnectDelay  time.Duration `mapstructure:"reconnect_delay"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origin", "*")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.mode", "release")

	v.SetDefault("dashboard.seed", 123)
	v.SetDefault("dashboard.anchor", "")
	v.SetDefault("dashboard.benchmarks", []map[string]any{
		{"name": "WTI", "base": 78},
		{"name": "Brent", "base": 82},
	})
	v.SetDefault("dashboard.amplitude", 5)
	v.SetDefault("dashboard.drift", 0.02)
	v.SetDefault("dashboard.series_days", 90)
	v.SetDefault("dashboard.forecast_days", 15)
	v.SetDefault("dashboard.forecast_band", 0.8)
	v.SetDefault("dashboard.grid_rows", 5)
	v.SetDefault("dashboard.grid_cols", 7)
	v.SetDefault("dashboard.toast_duration", 3000*time.Millisecond)
	v.SetDefault("dashboard.subscriber_buffer", 32)
	v.SetDefault("dashboard.cache_max_cost", 64)
	v.SetDefault("dashboard.cache_ttl", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_file", "")
	v.SetDefault("log.environment", "dev")

	v.SetDefault("postgres.enabled", false)
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.dbname", "ctrmdash")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.timezone", "UTC")
	v.SetDefault("postgres.create_db", false)
	v.SetDefault("postgres.retention_days", 0)

	v.SetDefault("client.base_url", "http://localhost:8080")
	v.SetDefault("client.ws_url", "ws://localhost:8080/ws")
	v.SetDefault("client.timeout", 5*time.Second)
	v.SetDefault("client.reconnect_delay", 3*time.Second)
	v.SetDefault("client.refresh_interval", 0)
}

// Load loads application configuration using Viper.
// A .env file in the working directory is applied to the environment first,
// then config.yaml is read from path (a file or a directory) or, when path is
// empty, from the config directory next to the binary. Environment variables
// override file values (e.g., SERVER_ADDR for server.addr).
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	switch {
	case path != "" && filepath.Ext(path) != "":
		v.SetConfigFile(path)
	default:
		v.SetConfigName("config") // config.yaml
		v.SetConfigType("yaml")
		if path != "" {
			v.AddConfigPath(path)
		} else {
			addDefaultPaths(v)
		}
	}

	// Support environment variables with dot notation (e.g., SERVER_ADDR)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func addDefaultPaths(v *viper.Viper) {
	v.AddConfigPath("config")
	ex, err := os.Executable()
	if err != nil {
		return
	}
	if strings.Contains(ex, "go-build") {
		pwd, _ := os.Getwd()
		v.AddConfigPath(filepath.Join(pwd, "../../config"))
	} else {
		v.AddConfigPath(filepath.Join(filepath.Dir(ex), "../config"))
	}
}
