package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Configuration validation errors
var (
	ErrEmptySelector    = errors.New("scrape.selector must not be empty")
	ErrEmptyResultsDir  = errors.New("paths.results_dir must not be empty")
	ErrEmptyFaviconsDir = errors.New("paths.favicons_dir must not be empty")
	ErrNegativeTimeout  = errors.New("crawler.timeout must not be negative")
	ErrLogFormat        = errors.New("logging.format must be one of text, json, logfmt")
	ErrReportFormat     = errors.New("output.report must be one of text, json, markdown, none")
)

// DefaultURLList is the URL list location relative to the install root
var DefaultURLList = filepath.Join("input", "urls.txt")

// Config holds all application configuration
type Config struct {
	Scrape  ScrapeConfig  `mapstructure:"scrape"`
	Paths   PathsConfig   `mapstructure:"paths"`
	Crawler CrawlerConfig `mapstructure:"crawler"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
}

// ScrapeConfig holds headline extraction settings
type ScrapeConfig struct {
	Selector string `mapstructure:"selector"`
}

// PathsConfig holds input and output locations
type PathsConfig struct {
	// Root is the install root the default URL list is resolved against.
	Root        string `mapstructure:"root"`
	URLs        string `mapstructure:"urls"`
	ResultsDir  string `mapstructure:"results_dir"`
	FaviconsDir string `mapstructure:"favicons_dir"`
}

// CrawlerConfig holds HTTP settings shared by every fetch
type CrawlerConfig struct {
	UserAgent string `mapstructure:"user_agent"`
	// Timeout of zero leaves requests unbounded.
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text", "json" or "logfmt"
}

// OutputConfig controls what the operator sees after a batch
type OutputConfig struct {
	Report   string `mapstructure:"report"` // "text", "json", "markdown" or "none"
	Progress bool   `mapstructure:"progress"`
}

// flagKeys maps CLI flag names onto configuration keys
var flagKeys = map[string]string{
	"selector":     "scrape.selector",
	"root":         "paths.root",
	"urls":         "paths.urls",
	"results-dir":  "paths.results_dir",
	"favicons-dir": "paths.favicons_dir",
	"user-agent":   "crawler.user_agent",
	"timeout":      "crawler.timeout",
	"log-level":    "logging.level",
	"log-format":   "logging.format",
	"report":       "output.report",
	"progress":     "output.progress",
}

// Load builds the configuration from defaults, an optional YAML file and
// any flags in fs that the operator set explicitly.
func Load(configPath string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("headsmith")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	if fs != nil {
		if err := bindFlags(v, fs); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine when none was asked for explicitly.
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if cfg.Paths.URLs == "" {
		cfg.Paths.URLs = filepath.Join(cfg.Paths.Root, DefaultURLList)
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	cfg, err := Load("", nil)
	if err != nil {
		// Defaults alone never fail to decode; only a bad ./headsmith.yaml can.
		return &Config{
			Scrape:  ScrapeConfig{Selector: "h2"},
			Paths:   PathsConfig{Root: ".", URLs: DefaultURLList, ResultsDir: "results", FaviconsDir: "favicons"},
			Crawler: CrawlerConfig{UserAgent: "headsmith/1.0"},
			Logging: LoggingConfig{Level: "info", Format: "text"},
			Output:  OutputConfig{Report: "text"},
		}
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scrape.selector", "h2")

	v.SetDefault("paths.root", ".")
	v.SetDefault("paths.urls", "")
	v.SetDefault("paths.results_dir", "results")
	v.SetDefault("paths.favicons_dir", "favicons")

	v.SetDefault("crawler.user_agent", "headsmith/1.0")
	v.SetDefault("crawler.timeout", "0s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("output.report", "text")
	v.SetDefault("output.progress", false)
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Scrape.Selector) == "" {
		return ErrEmptySelector
	}
	if c.Paths.ResultsDir == "" {
		return ErrEmptyResultsDir
	}
	if c.Paths.FaviconsDir == "" {
		return ErrEmptyFaviconsDir
	}
	if c.Crawler.Timeout < 0 {
		return ErrNegativeTimeout
	}

	switch c.Logging.Format {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("%w: got %q", ErrLogFormat, c.Logging.Format)
	}

	switch c.Output.Report {
	case "text", "json", "markdown", "none":
	default:
		return fmt.Errorf("%w: got %q", ErrReportFormat, c.Output.Report)
	}

	return nil
}
