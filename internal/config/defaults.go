package config

import "github.com/bobmcallan/etf-portal/internal/common"

// NewDefaultConfig creates a configuration with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "prod",
		Server: ServerConfig{
			Port: 4250,
			Host: "localhost",
		},
		Data: DataConfig{
			CatalogPath:    "catalog.json",
			SeriesPath:     "series/{ticker}.json",
			TimeoutSeconds: 10,
		},
		Cache: CacheConfig{
			ChartTTLSeconds: 300,
			MaxEntries:      64,
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/etf-portal",
			},
		},
		MCP: MCPConfig{
			Enabled: true,
		},
		Logging: common.LoggingConfig{
			Level:      "info",
			Format:     "text",
			Outputs:    []string{"console", "file"},
			FilePath:   "logs/etf-portal.log",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
	}
}
