package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Data sources selectable with DATA_SOURCE
const (
	SourceMemory   = "memory"
	SourcePostgres = "postgres"
)

type Config struct {
	// Server
	Port int    `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// CORS
	AllowedOrigins []string `mapstructure:"-"`

	// Storage
	DataSource    string `mapstructure:"DATA_SOURCE"`
	PostgresURL   string `mapstructure:"POSTGRES_URL"`
	RedisURL      string `mapstructure:"REDIS_URL"`
	ClickHouseURL string `mapstructure:"CLICKHOUSE_URL"`

	PredictionCacheTTL time.Duration `mapstructure:"PREDICTION_CACHE_TTL"`

	// Feedback export pool
	WorkerCount   int           `mapstructure:"WORKER_COUNT"`
	QueueSize     int           `mapstructure:"QUEUE_SIZE"`
	BatchSize     int           `mapstructure:"BATCH_SIZE"`
	FlushInterval time.Duration `mapstructure:"FLUSH_INTERVAL"`

	// RandomSeed makes model variance reproducible; 0 uses entropy
	RandomSeed uint64 `mapstructure:"RANDOM_SEED"`
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory when one exists.
// It returns an error if critical configuration is missing.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", 8080)
	v.SetDefault("ENV", "development")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("DATA_SOURCE", SourceMemory)
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("CLICKHOUSE_URL", "")
	v.SetDefault("PREDICTION_CACHE_TTL", 5*time.Minute)
	v.SetDefault("WORKER_COUNT", 2)
	v.SetDefault("QUEUE_SIZE", 10000)
	v.SetDefault("BATCH_SIZE", 500)
	v.SetDefault("FLUSH_INTERVAL", time.Second)
	v.SetDefault("RANDOM_SEED", 0)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	for _, o := range strings.Split(v.GetString("ALLOWED_ORIGINS"), ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	cfg.DataSource = strings.ToLower(strings.TrimSpace(cfg.DataSource))
	switch cfg.DataSource {
	case SourceMemory:
	case SourcePostgres:
		// Critical configuration - fail if missing
		if cfg.PostgresURL == "" {
			return nil, fmt.Errorf("missing required environment variable: POSTGRES_URL (DATA_SOURCE=%s)", SourcePostgres)
		}
	default:
		return nil, fmt.Errorf("invalid DATA_SOURCE %q: want %s or %s", cfg.DataSource, SourceMemory, SourcePostgres)
	}

	return &cfg, nil
}

// IsProduction reports whether ENV selects production logging.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
