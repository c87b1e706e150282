package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	PostgresURL string `mapstructure:"POSTGRES_URL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	WikiBaseURL string `mapstructure:"WIKI_BASE_URL"`
	TargetPath  string `mapstructure:"TARGET_PATH"`

	FetchMode           string  `mapstructure:"FETCH_MODE"` // "http" or "browser"
	FetchTimeoutSeconds int     `mapstructure:"FETCH_TIMEOUT_SECONDS"`
	FetchRetries        int     `mapstructure:"FETCH_RETRIES"`
	FetchRPS            float64 `mapstructure:"FETCH_RPS"`
	FetchBurst          int     `mapstructure:"FETCH_BURST"`
	UserAgent           string  `mapstructure:"USER_AGENT"`

	PageCache           string `mapstructure:"PAGE_CACHE"` // "redis", "memory" or "none"
	PageCacheTTLMinutes int    `mapstructure:"PAGE_CACHE_TTL_MINUTES"`

	QueueWorkers     int    `mapstructure:"QUEUE_WORKERS"`
	BatchConcurrency int    `mapstructure:"BATCH_CONCURRENCY"`
	StartPages       string `mapstructure:"START_PAGES"` // comma separated article names
}

// Load reads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Production runs are configured purely through the environment.
	_ = v.ReadInConfig()

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.WikiBaseURL = strings.TrimRight(cfg.WikiBaseURL, "/")
	if cfg.FetchRetries < 0 {
		cfg.FetchRetries = 0
	}
	if cfg.FetchRetries > 1 {
		cfg.FetchRetries = 1
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := map[string]any{
		"SERVER_PORT":            "8080",
		"LOG_LEVEL":              "info",
		"POSTGRES_URL":           "",
		"REDIS_ADDR":             "",
		"REDIS_PASSWORD":         "",
		"REDIS_DB":               0,
		"WIKI_BASE_URL":          "https://en.wikipedia.org",
		"TARGET_PATH":            "/wiki/Philosophy",
		"FETCH_MODE":             "http",
		"FETCH_TIMEOUT_SECONDS":  30,
		"FETCH_RETRIES":          1,
		"FETCH_RPS":              2.0,
		"FETCH_BURST":            2,
		"USER_AGENT":             "philosophy-walker/1.0 (+https://github.com/user/philosophy-walker)",
		"PAGE_CACHE":             "memory",
		"PAGE_CACHE_TTL_MINUTES": 60,
		"QUEUE_WORKERS":          2,
		"BATCH_CONCURRENCY":      3,
		"START_PAGES":            "Pianist,Computer_Science,President",
	}
	// AutomaticEnv only resolves keys viper already knows about, SetDefault registers them.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// TargetURL is the address that ends a successful traversal.
func (c *Config) TargetURL() string {
	return c.WikiBaseURL + c.TargetPath
}

// FetchTimeout returns the per-page fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// PageCacheTTL returns how long fetched pages stay cached.
func (c *Config) PageCacheTTL() time.Duration {
	return time.Duration(c.PageCacheTTLMinutes) * time.Minute
}

// StartPageNames splits START_PAGES into trimmed, non-empty names.
func (c *Config) StartPageNames() []string {
	var names []string
	for _, name := range strings.Split(c.StartPages, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}
