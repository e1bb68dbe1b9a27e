package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName   string `mapstructure:"app_name"`
	Env       string `mapstructure:"app_env"`
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	JobsFile               string        `mapstructure:"jobs_file"`
	PublishersFile         string        `mapstructure:"publishers_file"`
	ImagesDir              string        `mapstructure:"images_dir"`
	HarvestIntervalSeconds int64         `mapstructure:"harvest_interval"`
	HarvestInterval        time.Duration `mapstructure:"-"`
	RequestsPerMinute      int           `mapstructure:"requests_per_minute"`

	Discogs DiscogsConfig `mapstructure:",squash"`

	StorageType            string        `mapstructure:"storage_type"`
	StoragePath            string        `mapstructure:"storage_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// DiscogsConfig holds the API client settings. Credentials never appear in
// logged config.
type DiscogsConfig struct {
	Scheme             string        `mapstructure:"discogs_scheme"`
	Host               string        `mapstructure:"discogs_host"`
	BasePath           string        `mapstructure:"discogs_base_path"`
	PerPage            int           `mapstructure:"discogs_per_page"`
	UserAgent          string        `mapstructure:"discogs_user_agent"`
	Key                string        `mapstructure:"discogs_key" json:"-"`
	Secret             string        `mapstructure:"discogs_secret" json:"-"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("app_name", "discogs-harvester")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("jobs_file", "./configs/jobs.yaml")
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("images_dir", "./data/images")
	v.SetDefault("harvest_interval", 3600) // seconds
	v.SetDefault("requests_per_minute", 60)

	v.SetDefault("discogs_scheme", "https")
	v.SetDefault("discogs_host", "api.discogs.com")
	v.SetDefault("discogs_base_path", "/")
	v.SetDefault("discogs_per_page", 50)
	v.SetDefault("discogs_user_agent", "")
	v.SetDefault("discogs_key", "")
	v.SetDefault("discogs_secret", "")
	v.SetDefault("http_timeout_seconds", 30)

	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("storage_path", "./data/records.db")
	v.SetDefault("storage_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.HarvestIntervalSeconds <= 0 {
		return nil, fmt.Errorf("invalid harvest_interval (must be positive seconds)")
	}
	cfg.HarvestInterval = time.Duration(cfg.HarvestIntervalSeconds) * time.Second

	if cfg.RequestsPerMinute <= 0 {
		return nil, fmt.Errorf("invalid requests_per_minute (must be positive)")
	}
	if cfg.Discogs.PerPage < 0 || cfg.Discogs.PerPage > 100 {
		return nil, fmt.Errorf("invalid discogs_per_page (must be 0 to 100, 0 keeps the client default)")
	}
	if cfg.Discogs.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.Discogs.HTTPTimeout = time.Duration(cfg.Discogs.HTTPTimeoutSeconds) * time.Second
	cfg.Discogs.Scheme = strings.ToLower(strings.TrimSpace(cfg.Discogs.Scheme))
	if cfg.Discogs.Scheme != "https" && cfg.Discogs.Scheme != "http" {
		return nil, fmt.Errorf("invalid discogs_scheme %q (expected https or http)", cfg.Discogs.Scheme)
	}

	if cfg.StorageTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}
