// Package config loads the service-level configuration (§6, §C9): the
// backend endpoint, Redis/Mongo URLs, ingestion tuning, and the
// QuerySettings tuning surface consumed by the planner. Loading follows the
// teacher's viper pattern: a yaml file plus environment overrides, read
// once at boot and shared by reference thereafter.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// BackendConfig configures the search backend executor (§C7). URL has no
// compiled-in default: per §9's open question, the endpoint must always
// come from configuration.
type BackendConfig struct {
	Driver  string        `mapstructure:"driver"` // "es" | "meili"
	URL     string        `mapstructure:"url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// IngestConfig configures the OSM ingestion CLI (§C13, §5).
type IngestConfig struct {
	AdminLevels   []int  `mapstructure:"admin_levels"`
	CityLevel     int    `mapstructure:"city_level"`
	DBBufferSize  int    `mapstructure:"db_buffer_size"`
	NbThreads     int    `mapstructure:"nb_threads"`
	SpillDir      string `mapstructure:"spill_dir"`
}

// Config is the top-level service configuration.
type Config struct {
	AppPort string        `mapstructure:"app_port"`
	AppEnv  string        `mapstructure:"app_env"`

	Backend BackendConfig `mapstructure:"backend"`
	Redis   struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"redis"`
	Mongo struct {
		URL string `mapstructure:"url"`
	} `mapstructure:"mongo"`

	Ingest IngestConfig `mapstructure:"ingest"`

	Query QuerySettings `mapstructure:"query"`
}

// Load reads config/geocore.yaml (or ./geocore.yaml) plus environment
// overrides, exactly the way the teacher's main.go wires viper: config
// name + type + search paths, defaults, AutomaticEnv, then ReadInConfig
// (a missing file is silently ignored, not a fatal error, since env vars
// or defaults may be sufficient in a container deployment).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("geocore")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetDefault("app_port", "8080")
	v.SetDefault("app_env", "development")
	v.SetDefault("backend.driver", "es")
	v.SetDefault("backend.timeout", 2*time.Second)
	v.SetDefault("redis.url", "redis://localhost:6379")
	v.SetDefault("mongo.url", "mongodb://localhost:27017/geocore")
	v.SetDefault("ingest.admin_levels", []int{2, 4, 6, 8})
	v.SetDefault("ingest.city_level", 8)
	v.SetDefault("ingest.db_buffer_size", 200000)
	v.SetDefault("ingest.nb_threads", 4)
	v.SetDefault("ingest.spill_dir", "./data/spill")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{Query: DefaultQuerySettings()}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if cfg.Backend.URL == "" {
		return nil, fmt.Errorf("backend.url must be set in configuration (no default endpoint is compiled in)")
	}

	return cfg, nil
}
