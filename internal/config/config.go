package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	Report  ReportConfig  `mapstructure:"report"`
	Storage StorageConfig `mapstructure:"storage"`
	Tracker TrackerConfig `mapstructure:"tracker"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ReportConfig defines the timeline reduction and aggregation tunables
type ReportConfig struct {
	Rounding  string `mapstructure:"rounding"`   // session boundary rounding granularity
	WorkStart string `mapstructure:"work_start"` // working-hours window start (HH:MM)
	WorkEnd   string `mapstructure:"work_end"`   // working-hours window end (HH:MM)
	WorkIdle  string `mapstructure:"work_idle"`  // idle threshold within working hours
	AfterIdle string `mapstructure:"after_idle"` // idle threshold outside working hours
}

// StorageConfig defines storage backend settings
type StorageConfig struct {
	Type  string      `mapstructure:"type"` // "bolt" or "redis"
	Path  string      `mapstructure:"path"`
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig defines Redis connection settings
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	DialTimeout  string `mapstructure:"dial_timeout"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// TrackerConfig defines capture daemon settings
type TrackerConfig struct {
	PollInterval  string `mapstructure:"poll_interval"`
	MetricsAddr   string `mapstructure:"metrics_addr"`
	RetentionDays int    `mapstructure:"retention_days"`
	SeenCacheSize int    `mapstructure:"seen_cache_size"`
	Origin        string `mapstructure:"origin"`
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables.
// An empty configPath falls back to the default user config location.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	if configPath == "" {
		configPath = DefaultPath()
	}

	// Configure viper
	v.SetConfigFile(configPath)
	v.SetEnvPrefix("WORKDAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
		// Config file not found, use defaults and environment variables
	}

	// Unmarshal config
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "workday.yaml"
	}
	return filepath.Join(dir, "workday", "config.yaml")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Report defaults
	v.SetDefault("report.rounding", "5m")
	v.SetDefault("report.work_start", "06:00")
	v.SetDefault("report.work_end", "18:00")
	v.SetDefault("report.work_idle", "4h")
	v.SetDefault("report.after_idle", "15m")

	// Storage defaults
	v.SetDefault("storage.type", "bolt")
	v.SetDefault("storage.path", "")

	// Redis defaults
	v.SetDefault("storage.redis.host", "127.0.0.1")
	v.SetDefault("storage.redis.port", 6379)
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.pool_size", 10)
	v.SetDefault("storage.redis.min_idle_conns", 5)
	v.SetDefault("storage.redis.dial_timeout", "5s")
	v.SetDefault("storage.redis.read_timeout", "3s")
	v.SetDefault("storage.redis.write_timeout", "3s")

	// Tracker defaults
	v.SetDefault("tracker.poll_interval", "30s")
	v.SetDefault("tracker.metrics_addr", "127.0.0.1:9182")
	v.SetDefault("tracker.retention_days", 180)
	v.SetDefault("tracker.seen_cache_size", 4096)
	v.SetDefault("tracker.origin", "journal")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// validate validates the configuration
func validate(cfg *Config) error {
	// Validate report tunables
	for name, value := range map[string]string{
		"report.rounding":   cfg.Report.Rounding,
		"report.work_idle":  cfg.Report.WorkIdle,
		"report.after_idle": cfg.Report.AfterIdle,
	} {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid %s: %q", name, value)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %q", name, value)
		}
	}

	// Validate storage type
	switch cfg.Storage.Type {
	case "bolt":
		if cfg.Storage.Path == "" {
			path, err := defaultStoragePath()
			if err != nil {
				return fmt.Errorf("resolve storage path: %w", err)
			}
			cfg.Storage.Path = path
		}
	case "redis":
		if cfg.Storage.Redis.Host == "" {
			return fmt.Errorf("redis host is required")
		}
	default:
		return fmt.Errorf("unknown storage type: %s", cfg.Storage.Type)
	}

	if cfg.Tracker.RetentionDays < 0 {
		return fmt.Errorf("tracker.retention_days cannot be negative")
	}

	return nil
}

// defaultStoragePath resolves the per-user event database location.
func defaultStoragePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "workday", "events.bolt"), nil
}
