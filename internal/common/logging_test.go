package common

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func consoleOnly(level string) LoggingConfig {
	return LoggingConfig{Level: level, Outputs: []string{"console"}}
}

func TestNewLoggerFromConfig_FluentAPI(t *testing.T) {
	logger := NewLoggerFromConfig(consoleOnly("error"))
	if logger == nil {
		t.Fatal("NewLoggerFromConfig returned nil")
	}
	logger.Info().Str("ticker", "SSO").Msg("selected")
	logger.Warn().Int("points", 42).Msg("partial series")
	logger.Error().Err(nil).Msg("fetch failed")
	logger.Debug().Int("selected", 3).Dur("elapsed", time.Millisecond).Msg("averaged")
}

func TestNewLoggerFromConfig_DoesNotWriteToStdout(t *testing.T) {
	// stdout carries JSON-RPC for the stdio MCP binary.
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	logger := NewLoggerFromConfig(consoleOnly("info"))
	logger.Info().Str("tool", "list_etfs").Msg("this must not go to stdout")

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	buf.ReadFrom(r)
	r.Close()

	if buf.Len() > 0 {
		t.Errorf("logger wrote %d bytes to stdout: %s", buf.Len(), buf.String())
	}
}

func TestFileWriterConfig_Defaults(t *testing.T) {
	wc := fileWriterConfig(LoggingConfig{})
	if wc.FileName != "logs/etf-portal.log" {
		t.Errorf("FileName = %q", wc.FileName)
	}
	if wc.MaxSize != 500<<10 {
		t.Errorf("MaxSize = %d", wc.MaxSize)
	}
	if wc.MaxBackups != 20 {
		t.Errorf("MaxBackups = %d", wc.MaxBackups)
	}

	path := filepath.Join(t.TempDir(), "etf.log")
	wc = fileWriterConfig(LoggingConfig{FilePath: path, MaxSizeMB: 2, MaxBackups: 3})
	if wc.FileName != path || wc.MaxSize != 2<<20 || wc.MaxBackups != 3 {
		t.Errorf("unexpected writer config: %+v", wc)
	}
}

func TestNewSilentLogger_Usable(t *testing.T) {
	silent := NewSilentLogger()
	silent.Info().Str("key", "value").Msg("discarded")
	silent.Error().Msg("discarded too")
}

func TestWithCorrelationId_ReturnsNewLogger(t *testing.T) {
	logger := NewSilentLogger()
	correlated := logger.WithCorrelationId("req-123")

	if correlated == nil {
		t.Fatal("WithCorrelationId returned nil")
	}
	if correlated == logger {
		t.Error("WithCorrelationId should return a new Logger instance")
	}
}
