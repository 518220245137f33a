package interfaces

import (
	"context"
	"errors"
)

// ErrNotFound is returned by KeyValueStorage.Get when the key is absent.
var ErrNotFound = errors.New("key not found")

// StorageManager owns the backing store.
type StorageManager interface {
	KeyValueStorage() KeyValueStorage
	Close() error
}

// KeyValueStorage provides basic key-value operations.
type KeyValueStorage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// SettingsStore persists the dashboard's user-editable setting.
type SettingsStore interface {
	Filename(ctx context.Context) (string, error)
	SetFilename(ctx context.Context, value string) error
}

// SelectionStore persists the selected tickers between restarts.
type SelectionStore interface {
	LoadSelection(ctx context.Context) ([]string, error)
	SaveSelection(ctx context.Context, tickers []string) error
}
