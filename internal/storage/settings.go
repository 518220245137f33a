package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bobmcallan/etf-portal/internal/interfaces"
)

// Fixed keys in the key-value store.
const (
	FilenameKey  = "filename"
	SelectionKey = "selection"
)

// Settings stores the dashboard setting and the persisted selection in a
// key-value store. A missing key reads as the zero value.
type Settings struct {
	kv interfaces.KeyValueStorage
}

var (
	_ interfaces.SettingsStore  = (*Settings)(nil)
	_ interfaces.SelectionStore = (*Settings)(nil)
)

// NewSettings wraps kv.
func NewSettings(kv interfaces.KeyValueStorage) *Settings {
	return &Settings{kv: kv}
}

// Filename returns the stored free-text setting, or "" when unset.
func (s *Settings) Filename(ctx context.Context) (string, error) {
	v, err := s.kv.Get(ctx, FilenameKey)
	if errors.Is(err, interfaces.ErrNotFound) {
		return "", nil
	}
	return v, err
}

// SetFilename stores value verbatim.
func (s *Settings) SetFilename(ctx context.Context, value string) error {
	return s.kv.Set(ctx, FilenameKey, value)
}

// LoadSelection returns the persisted tickers, or nil when none were saved.
func (s *Settings) LoadSelection(ctx context.Context) ([]string, error) {
	v, err := s.kv.Get(ctx, SelectionKey)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var tickers []string
	if err := json.Unmarshal([]byte(v), &tickers); err != nil {
		return nil, fmt.Errorf("failed to decode stored selection: %w", err)
	}
	return tickers, nil
}

// SaveSelection replaces the persisted tickers. An empty selection removes
// the key.
func (s *Settings) SaveSelection(ctx context.Context, tickers []string) error {
	if len(tickers) == 0 {
		return s.kv.Delete(ctx, SelectionKey)
	}
	data, err := json.Marshal(tickers)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, SelectionKey, string(data))
}
