// Command etf-portal serves the ETF NAV dashboard, its JSON API and the MCP
// endpoint.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bobmcallan/etf-portal/internal/app"
	"github.com/bobmcallan/etf-portal/internal/common"
	"github.com/bobmcallan/etf-portal/internal/config"
	"github.com/bobmcallan/etf-portal/internal/server"
	"github.com/joho/godotenv"
)

const shutdownTimeout = 10 * time.Second

// fileList collects repeated -config flags in order.
type fileList []string

func (f *fileList) String() string     { return strings.Join(*f, ",") }
func (f *fileList) Set(v string) error { *f = append(*f, v); return nil }

// errInvalidConfig has already been reported to stderr.
var errInvalidConfig = errors.New("invalid configuration")

func main() {
	var (
		files       fileList
		overrides   config.Overrides
		showVersion bool
	)
	flag.Var(&files, "config", "Configuration file (repeatable, later files win)")
	flag.Var(&files, "c", "Configuration file (shorthand)")
	flag.IntVar(&overrides.Port, "port", 0, "Server port")
	flag.StringVar(&overrides.Host, "host", "", "Server host")
	flag.StringVar(&overrides.DataDir, "data", "", "Directory holding catalog.json and series/")
	flag.StringVar(&overrides.HistoryCSV, "csv", "", "Historical NAV CSV to merge into the catalog")
	flag.StringVar(&overrides.LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Print version information")
	flag.Parse()

	common.LoadVersionFromFile()
	if showVersion {
		fmt.Printf("etf-portal version %s\n", common.GetFullVersion())
		return
	}

	if err := run(files, overrides); err != nil {
		if !errors.Is(err, errInvalidConfig) {
			fmt.Fprintf(os.Stderr, "etf-portal: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(files fileList, overrides config.Overrides) error {
	// .env is optional and never overrides variables already set.
	_ = godotenv.Load()

	if len(files) == 0 {
		if found := config.Discover("etf-portal"); found != "" {
			files = append(files, found)
		}
	}

	cfg, err := config.LoadFromFiles(files...)
	if err != nil {
		return err
	}
	overrides.Apply(cfg)

	if issues := cfg.Validate(); len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "Configuration is invalid:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "  - %s\n", issue)
		}
		fmt.Fprintln(os.Stderr, "Set values in a TOML file, ETF_* environment variables (or .env), or flags.")
		return errInvalidConfig
	}

	logger := common.NewLoggerFromConfig(cfg.Logging)
	logger.Info().
		Str("environment", cfg.Environment).
		Strs("config_files", files).
		Str("data_dir", cfg.Data.Dir).
		Str("data_url", cfg.Data.BaseURL).
		Str("history_csv", cfg.Data.HistoryCSV).
		Msg("configuration loaded")

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error().Str("error", err.Error()).Msg("application shutdown failed")
		}
	}()

	srv := server.New(application)
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Start() }()
	logger.Info().Str("url", cfg.BaseURL()).Msg("server ready")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Str("error", err.Error()).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
