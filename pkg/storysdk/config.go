package storysdk

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/storyprotocol/story-sdk-go/internal/httpx"
	"github.com/storyprotocol/story-sdk-go/pkg/ipaccount"
	"github.com/storyprotocol/story-sdk-go/pkg/license"
	"github.com/storyprotocol/story-sdk-go/pkg/optrack"
)

// Duration wraps time.Duration for YAML decoding of values like "500ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("storysdk: invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// RetryConfig mirrors httpx.RetryPolicy for file-based configuration.
type RetryConfig struct {
	MaxRetries int      `yaml:"max_retries"`
	BaseDelay  Duration `yaml:"base_delay"`
	MaxDelay   Duration `yaml:"max_delay"`
	Jitter     float64  `yaml:"jitter"`
}

// Config is the YAML configuration for gateway-backed clients.
type Config struct {
	APIURL   string       `yaml:"api_url"`
	Timeout  Duration     `yaml:"timeout"`
	LogLevel string       `yaml:"log_level"`
	Retry    *RetryConfig `yaml:"retry"`

	TermsCacheSize int      `yaml:"terms_cache_size"`
	TermsCacheTTL  Duration `yaml:"terms_cache_ttl"`
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("storysdk: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("storysdk: decode config: %w", err)
	}
	if strings.TrimSpace(cfg.APIURL) == "" {
		return nil, fmt.Errorf("storysdk: config is missing api_url")
	}
	return &cfg, nil
}

// Logger builds a zerolog logger honouring the configured level. Unknown or
// empty levels fall back to info.
func (c *Config) Logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.LogLevel)))
	if err != nil || c.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}

// NewFromConfig initialises gateway-backed IP-account and license clients.
func NewFromConfig(cfg *Config) (*ipaccount.Client, *license.Client, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("storysdk: config is nil")
	}

	log := cfg.Logger()
	httpOpts := []httpx.Option{httpx.WithLogger(log)}
	if cfg.Timeout > 0 {
		httpOpts = append(httpOpts, httpx.WithTimeout(cfg.Timeout.Std()))
	}
	if cfg.Retry != nil {
		httpOpts = append(httpOpts, httpx.WithRetryPolicy(httpx.RetryPolicy{
			MaxRetries: cfg.Retry.MaxRetries,
			BaseDelay:  cfg.Retry.BaseDelay.Std(),
			MaxDelay:   cfg.Retry.MaxDelay.Std(),
			Jitter:     cfg.Retry.Jitter,
		}))
	}
	trackerOpts := []optrack.Option{optrack.WithLogger(log)}

	accounts, err := ipaccount.New(cfg.APIURL,
		ipaccount.WithHTTPOptions(httpOpts...),
		ipaccount.WithTrackerOptions(trackerOpts...),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("storysdk: init ipaccount client: %w", err)
	}

	licenseOpts := []license.Option{
		license.WithHTTPOptions(httpOpts...),
		license.WithTrackerOptions(trackerOpts...),
	}
	if cfg.TermsCacheSize > 0 {
		licenseOpts = append(licenseOpts, license.WithTermsCache(cfg.TermsCacheSize, cfg.TermsCacheTTL.Std()))
	}
	licenses, err := license.New(cfg.APIURL, licenseOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("storysdk: init license client: %w", err)
	}

	return accounts, licenses, nil
}
