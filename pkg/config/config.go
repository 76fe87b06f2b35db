// Package config loads the YAML configuration file, applies defaults and validates it
package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/umputun/wouldreads/pkg/domain"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// DefaultRelayURL wraps feed responses into JSON with the payload under "contents"
const DefaultRelayURL = "https://api.allorigins.win/get?url="

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,minLength=1,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
		BaseURL string        `yaml:"base_url" json:"base_url" jsonschema:"default=http://localhost:8080,minLength=1,description=Base URL for the generated RSS feed"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:wouldreads.db?cache=shared&mode=rwc,minLength=1,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=4,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=2,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Fetch FetchConfig `yaml:"fetch" json:"fetch" jsonschema:"description=Feed retrieval configuration"`

	Aggregate struct {
		MaxArticles      int `yaml:"max_articles" json:"max_articles" jsonschema:"default=50,minimum=1,description=Size of the ranked article list"`
		DescriptionLimit int `yaml:"description_limit" json:"description_limit" jsonschema:"default=200,minimum=1,description=Maximum description length in characters"`
	} `yaml:"aggregate" json:"aggregate" jsonschema:"description=Aggregation configuration"`

	Schedule struct {
		RefreshInterval time.Duration `yaml:"refresh_interval" json:"refresh_interval" jsonschema:"description=Periodic refresh interval, disabled if not set"`
	} `yaml:"schedule" json:"schedule" jsonschema:"description=Scheduler configuration"`

	Sources []domain.Source `yaml:"sources" json:"sources" jsonschema:"description=Feed sources in display order, built-in list if empty"`
}

// FetchConfig holds feed retrieval settings
type FetchConfig struct {
	Timeout    time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=15s,description=Per-source fetch deadline"`
	RelayURL   string        `yaml:"relay_url" json:"relay_url" jsonschema:"default=https://api.allorigins.win/get?url=,minLength=1,description=Relay prefix, the escaped feed URL is appended"`
	Direct     bool          `yaml:"direct" json:"direct" jsonschema:"default=false,description=Fetch feeds directly without the relay"`
	UserAgent  string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=Mozilla/5.0 (compatible; wouldreads/1.0),minLength=1,description=User agent for HTTP requests"`
	MaxWorkers int           `yaml:"max_workers" json:"max_workers" jsonschema:"default=6,minimum=1,description=Maximum concurrent source fetches"`
	Breaker    BreakerConfig `yaml:"breaker" json:"breaker" jsonschema:"description=Per-source circuit breaker"`
}

// BreakerConfig holds circuit breaker settings
type BreakerConfig struct {
	MaxFailures uint32        `yaml:"max_failures" json:"max_failures" jsonschema:"default=3,description=Consecutive failures before a source is disabled"`
	OpenTimeout time.Duration `yaml:"open_timeout" json:"open_timeout" jsonschema:"default=5m,description=How long a disabled source stays disabled"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

// Default returns configuration with all defaults, used when no config file is given
func Default() *Config {
	var cfg Config
	setDefaults(&cfg)
	return &cfg
}

func setDefaults(cfg *Config) {
	// set defaults for server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:8080"
	}

	// set defaults for database
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:wouldreads.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 4
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 3600
	}

	// set defaults for fetch
	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = 15 * time.Second
	}
	if cfg.Fetch.RelayURL == "" {
		cfg.Fetch.RelayURL = DefaultRelayURL
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = "Mozilla/5.0 (compatible; wouldreads/1.0)"
	}
	if cfg.Fetch.MaxWorkers == 0 {
		cfg.Fetch.MaxWorkers = 6
	}
	if cfg.Fetch.Breaker.MaxFailures == 0 {
		cfg.Fetch.Breaker.MaxFailures = 3
	}
	if cfg.Fetch.Breaker.OpenTimeout == 0 {
		cfg.Fetch.Breaker.OpenTimeout = 5 * time.Minute
	}

	// set defaults for aggregate
	if cfg.Aggregate.MaxArticles == 0 {
		cfg.Aggregate.MaxArticles = 50
	}
	if cfg.Aggregate.DescriptionLimit == 0 {
		cfg.Aggregate.DescriptionLimit = 200
	}

	if len(cfg.Sources) == 0 {
		cfg.Sources = make([]domain.Source, len(domain.DefaultSources))
		copy(cfg.Sources, domain.DefaultSources)
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	// validate server config
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}
	if err := checkURL(cfg.Server.BaseURL); err != nil {
		return fmt.Errorf("server.base_url: %w", err)
	}

	// validate fetch config
	if cfg.Fetch.Timeout < 100*time.Millisecond {
		return fmt.Errorf("fetch timeout must be at least 100ms")
	}
	if cfg.Fetch.MaxWorkers < 1 {
		return fmt.Errorf("fetch.max_workers must be at least 1")
	}
	if !cfg.Fetch.Direct {
		if err := checkURL(cfg.Fetch.RelayURL); err != nil {
			return fmt.Errorf("fetch.relay_url: %w", err)
		}
	}

	// validate aggregate config
	if cfg.Aggregate.MaxArticles < 1 {
		return fmt.Errorf("aggregate.max_articles must be at least 1")
	}
	if cfg.Aggregate.DescriptionLimit < 1 {
		return fmt.Errorf("aggregate.description_limit must be at least 1")
	}

	if cfg.Schedule.RefreshInterval < 0 {
		return fmt.Errorf("schedule.refresh_interval must be non-negative")
	}

	// validate sources, names identify breakers and articles so they must be unique
	names := make(map[string]bool, len(cfg.Sources))
	for i, src := range cfg.Sources {
		if src.Name == "" {
			return fmt.Errorf("sources[%d].name is required", i)
		}
		if names[src.Name] {
			return fmt.Errorf("sources[%d]: duplicate source name %q", i, src.Name)
		}
		names[src.Name] = true
		if err := checkURL(src.FeedURL); err != nil {
			return fmt.Errorf("sources[%d].feed_url: %w", i, err)
		}
	}

	return nil
}

func checkURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", s, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid url %q: scheme must be http or https", s)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid url %q: host is required", s)
	}
	return nil
}

// RelayURL returns the relay prefix, empty when fetching directly
func (c *Config) RelayURL() string {
	if c.Fetch.Direct {
		return ""
	}
	return c.Fetch.RelayURL
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetFullConfig returns the full configuration
func (c *Config) GetFullConfig() *Config {
	return c
}
