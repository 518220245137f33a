package common

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadVersionFrom_FillsDefaultsOnly(t *testing.T) {
	origVersion, origBuild, origCommit := Version, Build, GitCommit
	t.Cleanup(func() { Version, Build, GitCommit = origVersion, origBuild, origCommit })

	Version, Build, GitCommit = "dev", "unknown", "abc1234"

	path := filepath.Join(t.TempDir(), ".version")
	content := "# generated\nversion: 1.2.3\nbuild: 20261018\ncommit: ffff\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	loadVersionFrom(path)

	if Version != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %s", Version)
	}
	if Build != "20261018" {
		t.Errorf("expected build 20261018, got %s", Build)
	}
	if GitCommit != "abc1234" {
		t.Errorf("ldflags commit should win, got %s", GitCommit)
	}
	if GetFullVersion() != "1.2.3 (build: 20261018, commit: abc1234)" {
		t.Errorf("unexpected full version %q", GetFullVersion())
	}
}
