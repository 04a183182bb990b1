// Package config loads server and analyzer settings from an optional config
// file and CHATSTATS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ConfabulousDev/chatstats/internal/analytics"
)

// Config holds every tunable setting.
type Config struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	LogLevel     string        `mapstructure:"log_level"`

	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`

	CORSOrigins []string `mapstructure:"cors_origins"`

	Analytics AnalyticsConfig `mapstructure:"analytics"`
}

// AnalyticsConfig holds the analyzer knobs.
type AnalyticsConfig struct {
	MediaPlaceholder   string `mapstructure:"media_placeholder"`
	NotificationSender string `mapstructure:"notification_sender"`
	TopWords           int    `mapstructure:"top_words"`
	TopEmojis          int    `mapstructure:"top_emojis"`
	StrictLinks        bool   `mapstructure:"strict_links"`
}

// Options converts the settings into analyzer options.
func (c AnalyticsConfig) Options() analytics.Options {
	opts := analytics.Options{
		MediaPlaceholder:   c.MediaPlaceholder,
		NotificationSender: c.NotificationSender,
		TopWords:           c.TopWords,
		TopEmojis:          c.TopEmojis,
	}
	if c.StrictLinks {
		opts.Links = analytics.NewStrictLinkDetector()
	}
	return opts
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8080)
	v.SetDefault("read_timeout", 30*time.Second)
	v.SetDefault("write_timeout", 30*time.Second)
	v.SetDefault("max_body_bytes", 32<<20)
	v.SetDefault("log_level", "info")
	v.SetDefault("rate_limit_rps", 5.0)
	v.SetDefault("rate_limit_burst", 20)
	v.SetDefault("cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("analytics.media_placeholder", analytics.DefaultMediaPlaceholder)
	v.SetDefault("analytics.notification_sender", analytics.DefaultNotificationSender)
	v.SetDefault("analytics.top_words", analytics.DefaultTopWords)
	v.SetDefault("analytics.top_emojis", analytics.DefaultTopEmojis)
	v.SetDefault("analytics.strict_links", false)
}

// Load reads configuration. path may be empty, in which case only defaults
// and environment variables apply. Environment variables use the CHATSTATS_
// prefix with dots replaced by underscores, e.g. CHATSTATS_ANALYTICS_TOP_WORDS.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CHATSTATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("max_body_bytes must be positive"))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("rate limit rps and burst must be positive"))
	}
	if c.Analytics.TopWords <= 0 || c.Analytics.TopEmojis <= 0 {
		errs = append(errs, errors.New("analytics top_words and top_emojis must be positive"))
	}
	if c.Analytics.MediaPlaceholder == "" {
		errs = append(errs, errors.New("analytics media_placeholder must not be empty"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
