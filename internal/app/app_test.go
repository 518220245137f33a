package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bobmcallan/etf-portal/internal/common"
	"github.com/bobmcallan/etf-portal/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dataDir := t.TempDir()
	writeFile(t, filepath.Join(dataDir, "catalog.json"), `{
		"SSO": {"Name": "ProShares Ultra S&P500", "Sectors": {"Tech": 30.5}},
		"SDS": {"Name": "ProShares UltraShort S&P500", "Holdings": null}
	}`)
	writeFile(t, filepath.Join(dataDir, "series", "SSO.json"), `{"Date":["1/2/20","1/3/20"],"NAV":["10","20"],"YHV":["1","2"]}`)
	writeFile(t, filepath.Join(dataDir, "series", "SDS.json"), `{"Date":["1/2/20"],"NAV":[30],"YHV":[3]}`)

	cfg := config.NewDefaultConfig()
	cfg.Data.Dir = dataDir
	cfg.Storage.Badger.Path = filepath.Join(t.TempDir(), "db")
	return cfg
}

func TestNew_LoadsCatalog(t *testing.T) {
	a, err := New(testConfig(t), common.NewSilentLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if a.Catalog.Len() != 2 {
		t.Errorf("expected 2 tickers, got %d", a.Catalog.Len())
	}
	if a.LoadError() != nil {
		t.Errorf("unexpected load error: %v", a.LoadError())
	}
	if a.MCPHandler == nil {
		t.Error("expected MCP handler when enabled")
	}
	if len(catalogAdapter(a.MCPHandler)()) == 0 {
		t.Error("expected dashboard tools from the MCP catalog")
	}
}

func TestNew_RestoresSelection(t *testing.T) {
	cfg := testConfig(t)

	a, err := New(cfg, common.NewSilentLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := a.Manager.Select(t.Context(), "sds"); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Manager.Select(t.Context(), "SSO"); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	b, err := New(cfg, common.NewSilentLogger())
	if err != nil {
		t.Fatalf("second New failed: %v", err)
	}
	defer b.Close()

	if got := strings.Join(b.Manager.Selection(), ","); got != "SDS,SSO" {
		t.Errorf("expected SDS,SSO restored in order, got %s", got)
	}
	if n := len(b.Manager.Average()); n != 2 {
		t.Errorf("expected 2 averaged days after restore, got %d", n)
	}
}

func TestNew_MissingCatalogIsNotFatal(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.Dir = t.TempDir()
	cfg.MCP.Enabled = false

	a, err := New(cfg, common.NewSilentLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if a.LoadError() == nil {
		t.Error("expected a load error for a missing catalog")
	}
	if a.MCPHandler != nil {
		t.Error("expected no MCP handler when disabled")
	}
	if catalogAdapter(a.MCPHandler)() != nil {
		t.Error("expected no dashboard tools without an MCP handler")
	}
}

func TestLoadData_HistoryFromSetting(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, filepath.Join(cfg.Data.Dir, "history.csv"),
		"Date,ProShares Name,Ticker,NAV\n01/02/2020,ProShares Ultra QQQ,QLD,50.25\n")

	a, err := New(cfg, common.NewSilentLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if _, ok := a.Catalog.Get("QLD"); ok {
		t.Fatal("QLD should not load before the setting is stored")
	}

	if err := a.Settings.SetFilename(t.Context(), " history.csv "); err != nil {
		t.Fatal(err)
	}
	a.LoadData(t.Context())

	if a.LoadError() != nil {
		t.Errorf("unexpected load error: %v", a.LoadError())
	}
	rec, ok := a.Catalog.Get("QLD")
	if !ok || !rec.HasSeries() || rec.Latest == nil {
		t.Fatalf("expected QLD with series and snapshot, got %+v", rec)
	}
}

func TestLoadData_RefusesOutOfTreeFilename(t *testing.T) {
	cfg := testConfig(t)
	outside := filepath.Join(t.TempDir(), "secret.csv")
	writeFile(t, outside, "Date,ProShares Name,Ticker,NAV\n01/02/2020,TOPSECRET-ROW,QLD,50.25\n")

	a, err := New(cfg, common.NewSilentLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	rel, err := filepath.Rel(cfg.Data.Dir, outside)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{outside, rel, "../secret.csv", "series/SSO.json"} {
		if err := a.Settings.SetFilename(t.Context(), name); err != nil {
			t.Fatal(err)
		}
		a.LoadData(t.Context())

		if _, ok := a.Catalog.Get("QLD"); ok {
			t.Fatalf("%q: file outside data.dir was loaded", name)
		}
		loadErr := a.LoadError()
		if !errors.Is(loadErr, errFilenameUnsafe) {
			t.Errorf("%q: expected refusal, got %v", name, loadErr)
		}
		if loadErr != nil && strings.Contains(loadErr.Error(), "TOPSECRET") {
			t.Errorf("%q: load error leaks file contents: %v", name, loadErr)
		}
	}
}

func TestLoadData_ParseErrorIsGeneric(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, filepath.Join(cfg.Data.Dir, "bad.csv"),
		"Date,ProShares Name,Ticker,NAV\n01/02/2020,Fund,QLD,TOPSECRET-CELL\n")

	a, err := New(cfg, common.NewSilentLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer a.Close()

	if err := a.Settings.SetFilename(t.Context(), "bad.csv"); err != nil {
		t.Fatal(err)
	}
	a.LoadData(t.Context())

	loadErr := a.LoadError()
	if !errors.Is(loadErr, errHistoryLoad) {
		t.Fatalf("expected generic history error, got %v", loadErr)
	}
	if strings.Contains(loadErr.Error(), "TOPSECRET") || strings.Contains(loadErr.Error(), cfg.Data.Dir) {
		t.Errorf("load error leaks detail: %v", loadErr)
	}
	if a.Catalog.Len() != 2 {
		t.Errorf("catalog must survive a bad CSV, got %d tickers", a.Catalog.Len())
	}
}

func TestHistoryPathFromSetting(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		want error
	}{
		{name: "history.csv"},
		{name: "/etc/passwd", want: errFilenameUnsafe},
		{name: "../history.csv", want: errFilenameUnsafe},
		{name: "..", want: errFilenameUnsafe},
		{name: "sub/history.csv", want: errFilenameUnsafe},
		{name: `sub\history.csv`, want: errFilenameUnsafe},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := historyPathFromSetting(dir, tt.name)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if tt.want == nil && path != filepath.Join(dir, tt.name) {
				t.Errorf("unexpected path %q", path)
			}
		})
	}

	if _, err := historyPathFromSetting("", "history.csv"); !errors.Is(err, errFilenameNoDir) {
		t.Errorf("expected errFilenameNoDir, got %v", err)
	}
}
