// Command etf-mcp serves the portfolio tools over MCP stdio for desktop clients.
// The selection lives for the lifetime of the process.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bobmcallan/etf-portal/internal/common"
	"github.com/bobmcallan/etf-portal/internal/config"
	"github.com/bobmcallan/etf-portal/internal/dataset"
	"github.com/bobmcallan/etf-portal/internal/mcp"
	"github.com/bobmcallan/etf-portal/internal/portfolio"
	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	configFile := flag.String("config", "", "Path to config file")
	flag.Parse()

	_ = godotenv.Load()
	common.LoadVersionFromFile()

	path := *configFile
	if path == "" {
		path = config.Discover("etf-portal")
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// stdout carries JSON-RPC; log to file only.
	cfg.Logging.Outputs = []string{"file"}
	if cfg.Logging.FilePath == "" || cfg.Logging.FilePath == config.NewDefaultConfig().Logging.FilePath {
		cfg.Logging.FilePath = "logs/etf-mcp.log"
	}
	logger := common.NewLoggerFromConfig(cfg.Logging)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	catalog, err := dataset.Open(ctx, cfg.Data, logger)
	cancel()
	if err != nil {
		logger.Warn().Str("error", err.Error()).Msg("catalog loaded with errors")
	}

	manager := portfolio.NewManager(catalog, logger)
	mcpServer, tools := mcp.NewServer(manager, logger)

	logger.Info().
		Int("tickers", catalog.Len()).
		Int("tools", len(tools)+1).
		Msg("starting MCP stdio server")

	if err := server.ServeStdio(mcpServer); err != nil {
		fmt.Fprintf(os.Stderr, "stdio server error: %v\n", err)
		os.Exit(1)
	}
}
