package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment"` // "development" or "production"
	Server      ServerConfig   `toml:"server"`
	Fetch       FetchConfig    `toml:"fetch"`
	News        NewsConfig     `toml:"news"`
	Watch       WatchConfig    `toml:"watch"`
	Report      ReportConfig   `toml:"report"`
	Schedule    ScheduleConfig `toml:"schedule"`
	Logging     LoggingConfig  `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// FetchConfig controls the market data fetchers
type FetchConfig struct {
	TopSectors     int    `toml:"top_sectors"`     // Rows kept per sector ranking table
	TopStocks      int    `toml:"top_stocks"`      // Rows kept per stock ranking table
	RequestTimeout string `toml:"request_timeout"` // e.g., "15s" - per provider call
	Push2Interval  string `toml:"push2_interval"`  // e.g., "300ms" - min gap between eastmoney push2 calls
}

// Timeout returns the per-call provider timeout
func (c FetchConfig) Timeout() time.Duration {
	if d, err := time.ParseDuration(c.RequestTimeout); err == nil && d > 0 {
		return d
	}
	return 15 * time.Second
}

// Throttle returns the minimum interval between eastmoney push2 calls
func (c FetchConfig) Throttle() time.Duration {
	if d, err := time.ParseDuration(c.Push2Interval); err == nil && d > 0 {
		return d
	}
	return 300 * time.Millisecond
}

// NewsConfig controls the news collection subsystem
type NewsConfig struct {
	Enabled  bool     `toml:"enabled"`   // Collect news at all (CLI -no-news overrides)
	RSSFeeds []string `toml:"rss_feeds"` // Optional extra RSS feed URLs
	MaxItems int      `toml:"max_items"` // Cap on collected items after dedup (0 = no cap)
}

// WatchConfig lists user-followed stocks and sectors.
// Order is significant: report rows keep this order, not provider order.
type WatchConfig struct {
	Stocks  []string          `toml:"stocks"`  // Stock codes, e.g., ["600519", "300274"]
	Sectors []WatchSectorSpec `toml:"sectors"` // Eastmoney board codes with display names
}

type WatchSectorSpec struct {
	Code string `toml:"code"` // e.g., "BK0473"
	Name string `toml:"name"` // e.g., "证券"
}

type ReportConfig struct {
	OutputDir string `toml:"output_dir"` // Directory for rendered markdown artifacts
}

// ScheduleConfig holds cron specs for the trading-session runs
type ScheduleConfig struct {
	Morning   string `toml:"morning"`   // Default "35 11 * * 1-5"
	Afternoon string `toml:"afternoon"` // Default "5 15 * * 1-5"
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings should be exposed in marketbrief.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8088,
			Host: "localhost",
		},
		Fetch: FetchConfig{
			TopSectors:     5,
			TopStocks:      10,
			RequestTimeout: "15s",
			Push2Interval:  "300ms",
		},
		News: NewsConfig{
			Enabled:  true,
			MaxItems: 0,
		},
		Report: ReportConfig{
			OutputDir: "./output",
		},
		Schedule: ScheduleConfig{
			Morning:   "35 11 * * 1-5",
			Afternoon: "5 15 * * 1-5",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files, environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("MARKETBRIEF_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("MARKETBRIEF_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("MARKETBRIEF_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if dir := os.Getenv("MARKETBRIEF_OUTPUT_DIR"); dir != "" {
		config.Report.OutputDir = dir
	}

	if level := os.Getenv("MARKETBRIEF_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("MARKETBRIEF_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if o = strings.TrimSpace(o); o != "" {
				outputs = append(outputs, o)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}
}

func validate(config *Config) error {
	if config.Fetch.TopSectors <= 0 {
		return fmt.Errorf("fetch.top_sectors must be positive, got %d", config.Fetch.TopSectors)
	}
	if config.Fetch.TopStocks <= 0 {
		return fmt.Errorf("fetch.top_stocks must be positive, got %d", config.Fetch.TopStocks)
	}
	if _, err := time.ParseDuration(config.Fetch.RequestTimeout); err != nil {
		return fmt.Errorf("fetch.request_timeout is not a valid duration: %w", err)
	}
	if _, err := time.ParseDuration(config.Fetch.Push2Interval); err != nil {
		return fmt.Errorf("fetch.push2_interval is not a valid duration: %w", err)
	}
	return nil
}
