package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bobmcallan/etf-portal/internal/config"
)

func TestOpen_DirAndHistory(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "history.csv")
	if err := os.WriteFile(csvPath, []byte(historyCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.NewDefaultConfig().Data
	cfg.Dir = writeDataDir(t)
	cfg.HistoryCSV = csvPath

	c, err := Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if !c.Has("TQQQ") || !c.Has("SDS") {
		t.Errorf("expected catalog and csv tickers, got %v", c.Tickers())
	}
	rec, _ := c.Get("SSO")
	if rec.Latest == nil || !rec.HasSeries() {
		t.Error("expected SSO to carry the csv series and snapshot")
	}
}

func TestOpen_NothingConfigured(t *testing.T) {
	c, err := Open(context.Background(), config.DataConfig{}, nil)
	if err != nil {
		t.Fatalf("expected no error without a source, got %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("expected empty catalog, got %d", c.Len())
	}
}

func TestOpen_ReportsErrors(t *testing.T) {
	cfg := config.DataConfig{
		Dir:         t.TempDir(),
		CatalogPath: "catalog.json",
		SeriesPath:  "series/{ticker}.json",
		HistoryCSV:  filepath.Join(t.TempDir(), "missing.csv"),
	}
	c, err := Open(context.Background(), cfg, nil)
	if err == nil {
		t.Fatal("expected error for missing catalog and csv")
	}
	if c == nil {
		t.Fatal("expected a usable catalog despite errors")
	}
}
