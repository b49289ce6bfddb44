// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Fetch modes accepted by fetch.mode.
var validFetchModes = map[string]bool{
	"headless": true,
	"static":   true,
	"auto":     true,
}

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                  int    `mapstructure:"port"`
	StaticDir             string `mapstructure:"static_dir"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds"`
}

// FetchConfig governs the fetch pipeline.
type FetchConfig struct {
	URL                 string `mapstructure:"url"`
	Mode                string `mapstructure:"mode"`
	UserAgent           string `mapstructure:"user_agent"`
	NavTimeoutSeconds   int    `mapstructure:"nav_timeout_seconds"`
	ReadyTimeoutSeconds int    `mapstructure:"ready_timeout_seconds"`
	ReadySelector       string `mapstructure:"ready_selector"`
	Prewarm             bool   `mapstructure:"prewarm"`
	RefreshCron         string `mapstructure:"refresh_cron"`
}

// CacheConfig controls the snapshot store. An empty path selects the
// in-memory store.
type CacheConfig struct {
	Path  string `mapstructure:"path"`
	TTLMs int64  `mapstructure:"ttl_ms"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PRONOSTICO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.static_dir", "public")
	v.SetDefault("server.request_timeout_seconds", 120)
	v.SetDefault("fetch.url", "https://www.meteorologia.gov.py/pronosticos")
	v.SetDefault("fetch.mode", "headless")
	v.SetDefault("fetch.user_agent", "pronostico-service/1.0")
	v.SetDefault("fetch.nav_timeout_seconds", 60)
	v.SetDefault("fetch.ready_timeout_seconds", 30)
	v.SetDefault("fetch.ready_selector", "table, .pronostico, .forecast")
	v.SetDefault("fetch.prewarm", true)
	v.SetDefault("fetch.refresh_cron", "")
	v.SetDefault("cache.path", "data/pronostico.json")
	v.SetDefault("cache.ttl_ms", int64(24*time.Hour/time.Millisecond))
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("server.request_timeout_seconds must be > 0")
	}
	if c.Fetch.URL == "" {
		return fmt.Errorf("fetch.url must be set")
	}
	if !validFetchModes[c.Fetch.Mode] {
		return fmt.Errorf("fetch.mode must be one of headless, static, auto")
	}
	if c.Fetch.NavTimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.nav_timeout_seconds must be > 0")
	}
	if c.Fetch.ReadyTimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.ready_timeout_seconds must be > 0")
	}
	if c.Cache.TTLMs <= 0 {
		return fmt.Errorf("cache.ttl_ms must be > 0")
	}
	return nil
}

// TTL returns the snapshot time-to-live.
func (c Config) TTL() time.Duration {
	return time.Duration(c.Cache.TTLMs) * time.Millisecond
}

// NavTimeout returns the navigation budget.
func (c Config) NavTimeout() time.Duration {
	return time.Duration(c.Fetch.NavTimeoutSeconds) * time.Second
}

// ReadyTimeout returns the readiness-wait budget.
func (c Config) ReadyTimeout() time.Duration {
	return time.Duration(c.Fetch.ReadyTimeoutSeconds) * time.Second
}

// RequestTimeout returns the outer HTTP handler timeout.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}
