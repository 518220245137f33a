package dataset

import (
	"context"
	"errors"

	"github.com/bobmcallan/etf-portal/internal/common"
	"github.com/bobmcallan/etf-portal/internal/config"
)

// Open builds a catalog from cfg: the catalog document when a source is
// configured, merged with the historical CSV when one is set. The catalog is
// returned even when loading fails so callers can run with partial data.
func Open(ctx context.Context, cfg config.DataConfig, logger *common.Logger) (*Catalog, error) {
	c := NewCatalog(NewSource(cfg), logger)

	var errs []error
	if err := c.Load(ctx); err != nil && !errors.Is(err, ErrNoSource) {
		errs = append(errs, err)
	}
	if cfg.HistoryCSV != "" {
		records, err := LoadHistoryFile(cfg.HistoryCSV)
		if err != nil {
			errs = append(errs, err)
		} else {
			c.Merge(records)
		}
	}
	return c, errors.Join(errs...)
}
