// Package badger stores the portal settings in an embedded BadgerDB via
// badgerhold.
package badger

import (
	"fmt"
	"os"

	"github.com/bobmcallan/etf-portal/internal/common"
	"github.com/bobmcallan/etf-portal/internal/config"
	"github.com/bobmcallan/etf-portal/internal/interfaces"
	"github.com/timshannon/badgerhold/v4"
)

// Manager owns the badgerhold store and implements interfaces.StorageManager.
type Manager struct {
	store  *badgerhold.Store
	kv     *KVStorage
	logger *common.Logger
}

var _ interfaces.StorageManager = (*Manager)(nil)

// NewManager opens (creating if needed) the database directory at cfg.Path.
func NewManager(logger *common.Logger, cfg *config.BadgerConfig) (*Manager, error) {
	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = cfg.Path
	options.ValueDir = cfg.Path
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", cfg.Path, err)
	}
	logger.Debug().Str("path", cfg.Path).Msg("settings store opened")

	return &Manager{
		store:  store,
		kv:     &KVStorage{store: store, logger: logger},
		logger: logger,
	}, nil
}

// KeyValueStorage returns the key-value view of the store.
func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage {
	return m.kv
}

// Close closes the database. It is safe to call more than once.
func (m *Manager) Close() error {
	if m.store == nil {
		return nil
	}
	m.logger.Debug().Msg("closing settings store")
	err := m.store.Close()
	m.store = nil
	return err
}
