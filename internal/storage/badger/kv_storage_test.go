package badger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/bobmcallan/etf-portal/internal/common"
	"github.com/bobmcallan/etf-portal/internal/config"
	"github.com/bobmcallan/etf-portal/internal/interfaces"
)

func openTestManager(t *testing.T, path string) *Manager {
	t.Helper()
	mgr, err := NewManager(common.NewSilentLogger(), &config.BadgerConfig{Path: path})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func TestKVStorage_SetGetUpsert(t *testing.T) {
	kv := openTestManager(t, t.TempDir()).KeyValueStorage()
	ctx := context.Background()

	for _, v := range []string{"historical_nav.csv", "archive/2019.csv"} {
		if err := kv.Set(ctx, "filename", v); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		got, err := kv.Get(ctx, "filename")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got != v {
			t.Errorf("expected %q, got %q", v, got)
		}
	}
}

func TestKVStorage_GetMissing(t *testing.T) {
	kv := openTestManager(t, t.TempDir()).KeyValueStorage()
	_, err := kv.Get(context.Background(), "selection")
	if !errors.Is(err, interfaces.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestKVStorage_Delete(t *testing.T) {
	kv := openTestManager(t, t.TempDir()).KeyValueStorage()
	ctx := context.Background()

	if err := kv.Delete(ctx, "selection"); err != nil {
		t.Errorf("deleting a missing key should not error: %v", err)
	}

	kv.Set(ctx, "selection", `["SSO"]`)
	if err := kv.Delete(ctx, "selection"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := kv.Get(ctx, "selection"); !errors.Is(err, interfaces.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestManager_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "etf-portal")
	ctx := context.Background()

	mgr, err := NewManager(common.NewSilentLogger(), &config.BadgerConfig{Path: path})
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	if err := mgr.KeyValueStorage().Set(ctx, "filename", "nav.csv"); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := mgr.Close(); err != nil {
		t.Errorf("second Close should be a no-op: %v", err)
	}

	got, err := openTestManager(t, path).KeyValueStorage().Get(ctx, "filename")
	if err != nil || got != "nav.csv" {
		t.Errorf("expected nav.csv after reopen, got %q %v", got, err)
	}
}
