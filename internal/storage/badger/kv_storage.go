package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/bobmcallan/etf-portal/internal/common"
	"github.com/bobmcallan/etf-portal/internal/interfaces"
	"github.com/timshannon/badgerhold/v4"
)

// kvEntry is the record type persisted for every key.
type kvEntry struct {
	Key   string `badgerhold:"key"`
	Value string
}

// KVStorage implements interfaces.KeyValueStorage on a badgerhold store.
type KVStorage struct {
	store  *badgerhold.Store
	logger *common.Logger
}

// Get returns interfaces.ErrNotFound (wrapped) for a missing key.
func (s *KVStorage) Get(_ context.Context, key string) (string, error) {
	var entry kvEntry
	if err := s.store.Get(key, &entry); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", interfaces.ErrNotFound, key)
		}
		return "", fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return entry.Value, nil
}

func (s *KVStorage) Set(_ context.Context, key, value string) error {
	if err := s.store.Upsert(key, &kvEntry{Key: key, Value: value}); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	s.logger.Debug().Str("key", key).Int("bytes", len(value)).Msg("kv set")
	return nil
}

// Delete is a no-op for a missing key.
func (s *KVStorage) Delete(_ context.Context, key string) error {
	err := s.store.Delete(key, kvEntry{})
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	s.logger.Debug().Str("key", key).Msg("kv delete")
	return nil
}
