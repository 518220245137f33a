package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/etf-portal/internal/common"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Environment string               `toml:"environment"`
	Server      ServerConfig         `toml:"server"`
	Data        DataConfig           `toml:"data"`
	Cache       CacheConfig          `toml:"cache"`
	Storage     StorageConfig        `toml:"storage"`
	MCP         MCPConfig            `toml:"mcp"`
	Logging     common.LoggingConfig `toml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// DataConfig describes where the catalog and series documents come from.
// BaseURL takes precedence over Dir when both are set.
type DataConfig struct {
	BaseURL        string `toml:"base_url"`
	Dir            string `toml:"dir"`
	CatalogPath    string `toml:"catalog_path"`
	SeriesPath     string `toml:"series_path"` // {ticker} is replaced with the uppercase ticker
	HistoryCSV     string `toml:"history_csv"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the fetch timeout for data source requests.
func (d DataConfig) Timeout() time.Duration {
	if d.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// CacheConfig contains rendered chart cache settings.
type CacheConfig struct {
	ChartTTLSeconds int `toml:"chart_ttl_seconds"`
	MaxEntries      int `toml:"max_entries"`
}

// ChartTTL returns the chart cache TTL.
func (c CacheConfig) ChartTTL() time.Duration {
	if c.ChartTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.ChartTTLSeconds) * time.Second
}

// StorageConfig contains storage layer settings.
type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig contains BadgerDB-specific settings.
type BadgerConfig struct {
	Path string `toml:"path"`
}

// MCPConfig controls the MCP endpoint.
type MCPConfig struct {
	Enabled bool `toml:"enabled"`
}

// IsDevMode reports whether the portal runs in the dev environment.
func (c *Config) IsDevMode() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "dev")
}

// BaseURL returns the externally visible portal URL.
func (c *Config) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
}

// Validate returns a list of configuration problems. An empty list means valid.
func (c *Config) Validate() []string {
	var issues []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		issues = append(issues, fmt.Sprintf("server.port must be between 1 and 65535 (got %d)", c.Server.Port))
	}
	if c.Data.BaseURL == "" && c.Data.Dir == "" && c.Data.HistoryCSV == "" {
		issues = append(issues, "one of data.base_url, data.dir or data.history_csv must be set (ETF_DATA_URL, ETF_DATA_DIR, ETF_HISTORY_CSV)")
	}
	if c.Data.BaseURL != "" {
		u, err := url.Parse(c.Data.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			issues = append(issues, fmt.Sprintf("data.base_url must be an http(s) URL (got %q)", c.Data.BaseURL))
		}
	}
	if c.Data.SeriesPath != "" && !strings.Contains(c.Data.SeriesPath, "{ticker}") {
		issues = append(issues, fmt.Sprintf("data.series_path must contain {ticker} (got %q)", c.Data.SeriesPath))
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		issues = append(issues, fmt.Sprintf("logging.level %q is not one of trace, debug, info, warn, error", c.Logging.Level))
	}

	return issues
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier files.
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

		err = toml.Unmarshal(data, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies ETF_* environment variable overrides to config.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("ETF_ENV"); env != "" {
		config.Environment = env
	}
	if port := os.Getenv("ETF_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("ETF_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if u := os.Getenv("ETF_DATA_URL"); u != "" {
		config.Data.BaseURL = u
	}
	if dir := os.Getenv("ETF_DATA_DIR"); dir != "" {
		config.Data.Dir = dir
	}
	if csv := os.Getenv("ETF_HISTORY_CSV"); csv != "" {
		config.Data.HistoryCSV = csv
	}
	if timeout := os.Getenv("ETF_DATA_TIMEOUT_SECONDS"); timeout != "" {
		if s, err := strconv.Atoi(timeout); err == nil {
			config.Data.TimeoutSeconds = s
		}
	}
	if badgerPath := os.Getenv("ETF_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if mcp := os.Getenv("ETF_MCP_ENABLED"); mcp != "" {
		if b, err := strconv.ParseBool(mcp); err == nil {
			config.MCP.Enabled = b
		}
	}
	if level := os.Getenv("ETF_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("ETF_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
}

// Overrides holds command-line values. Zero values leave the config alone.
type Overrides struct {
	Port       int
	Host       string
	DataDir    string
	HistoryCSV string
	LogLevel   string
}

// Apply writes the non-zero overrides into config. Flags have the final say.
func (o Overrides) Apply(config *Config) {
	if o.Port > 0 {
		config.Server.Port = o.Port
	}
	if o.Host != "" {
		config.Server.Host = o.Host
	}
	if o.DataDir != "" {
		config.Data.Dir = o.DataDir
	}
	if o.HistoryCSV != "" {
		config.Data.HistoryCSV = o.HistoryCSV
	}
	if o.LogLevel != "" {
		config.Logging.Level = o.LogLevel
	}
}

// Discover returns the first existing <name>.toml, looking next to the
// executable and then in the working directory, each both directly and
// under config/. It returns "" when none exists.
func Discover(name string) string {
	var dirs []string
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	dirs = append(dirs, ".")

	for _, dir := range dirs {
		for _, candidate := range []string{
			filepath.Join(dir, name+".toml"),
			filepath.Join(dir, "config", name+".toml"),
		} {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
	}
	return ""
}
