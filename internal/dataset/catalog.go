package dataset

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/bobmcallan/etf-portal/internal/common"
	"github.com/bobmcallan/etf-portal/internal/models"
)

// ErrNoSource is returned when a series must be fetched but no source is configured.
var ErrNoSource = errors.New("no data source configured")

// FetchResult reports what FetchSeries did.
type FetchResult int

const (
	// FetchLoaded means the series was fetched and attached by this call.
	FetchLoaded FetchResult = iota
	// FetchCached means the series was already present; nothing was fetched.
	FetchCached
	// FetchUnknownTicker means the ticker is not in the catalog; nothing was done.
	FetchUnknownTicker
	// FetchFailed accompanies a non-nil error; the record has no series.
	FetchFailed
)

// sharedFetchTimeout bounds a series fetch once it is detached from the
// caller that started it.
const sharedFetchTimeout = time.Minute

func (r FetchResult) String() string {
	switch r {
	case FetchLoaded:
		return "loaded"
	case FetchCached:
		return "cached"
	case FetchUnknownTicker:
		return "unknown_ticker"
	case FetchFailed:
		return "failed"
	}
	return fmt.Sprintf("FetchResult(%d)", int(r))
}

// fetchCall is an in-flight series fetch shared by concurrent callers.
type fetchCall struct {
	done chan struct{}
	err  error
}

// Catalog owns the ticker -> record mapping. Records are replaced, never
// mutated, once published, so pointers handed out by Records and Subset stay
// consistent for readers.
type Catalog struct {
	source Source
	logger *common.Logger

	mu       sync.RWMutex
	records  map[string]*models.TickerRecord
	inflight map[string]*fetchCall
}

// NewCatalog creates an empty catalog backed by source. source may be nil
// when every record arrives with its series already loaded.
func NewCatalog(source Source, logger *common.Logger) *Catalog {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Catalog{
		source:   source,
		logger:   logger,
		records:  make(map[string]*models.TickerRecord),
		inflight: make(map[string]*fetchCall),
	}
}

// Load fetches the catalog document and replaces the records with its
// normalized contents. Series and snapshots already attached to tickers that
// remain in the catalog are kept.
func (c *Catalog) Load(ctx context.Context) error {
	if c.source == nil {
		return ErrNoSource
	}
	raw, err := c.source.Catalog(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	normalized := NormalizeCatalog(raw)

	c.mu.Lock()
	for key, rec := range normalized {
		if prev, ok := c.records[key]; ok {
			rec.Series = prev.Series
			rec.Latest = prev.Latest
		}
	}
	c.records = normalized
	c.mu.Unlock()

	c.logger.Info().Int("tickers", len(normalized)).Msg("catalog loaded")
	return nil
}

// Merge installs records built elsewhere (the historical CSV). Existing
// records keep their name and categories; a missing series or snapshot is
// filled from the incoming record.
func (c *Catalog) Merge(records map[string]*models.TickerRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, in := range records {
		if in == nil {
			continue
		}
		key := models.NormalizeTicker(in.Ticker)
		prev, ok := c.records[key]
		if !ok {
			rec := in.Clone()
			rec.Ticker = key
			c.records[key] = rec
			continue
		}
		rec := prev.Clone()
		if rec.DisplayName == "" {
			rec.DisplayName = in.DisplayName
		}
		if rec.Series == nil {
			rec.Series = in.Series
		}
		if in.Latest != nil {
			rec.Latest = in.Latest
		}
		c.records[key] = rec
	}
}

// FetchSeries loads the series document for ticker and attaches it to the
// record. Unknown tickers and already-loaded series are no-ops reported
// through the result. Concurrent calls for one ticker share a single fetch,
// which runs detached from any one caller: a caller whose ctx ends stops
// waiting without failing the others. On error the record stays without a
// series and the result is FetchFailed.
func (c *Catalog) FetchSeries(ctx context.Context, ticker string) (FetchResult, error) {
	key := models.NormalizeTicker(ticker)

	c.mu.Lock()
	rec, ok := c.records[key]
	if !ok {
		c.mu.Unlock()
		c.logger.Debug().Str("ticker", key).Msg("series requested for unknown ticker")
		return FetchUnknownTicker, nil
	}
	if rec.Series != nil {
		c.mu.Unlock()
		return FetchCached, nil
	}
	if c.source == nil {
		c.mu.Unlock()
		return FetchFailed, fmt.Errorf("series for %s: %w", key, ErrNoSource)
	}
	call, joined := c.inflight[key]
	if !joined {
		call = &fetchCall{done: make(chan struct{})}
		c.inflight[key] = call
		go c.runFetch(context.WithoutCancel(ctx), key, call)
	}
	c.mu.Unlock()

	select {
	case <-call.done:
	case <-ctx.Done():
		return FetchFailed, ctx.Err()
	}
	if call.err != nil {
		return FetchFailed, call.err
	}
	if joined {
		return FetchCached, nil
	}
	return FetchLoaded, nil
}

// runFetch performs one shared fetch and publishes its outcome on call.
func (c *Catalog) runFetch(ctx context.Context, key string, call *fetchCall) {
	ctx, cancel := context.WithTimeout(ctx, sharedFetchTimeout)
	defer cancel()

	series, err := c.loadSeries(ctx, key)

	c.mu.Lock()
	delete(c.inflight, key)
	if err == nil {
		if cur, ok := c.records[key]; ok && cur.Series == nil {
			updated := *cur
			updated.Series = series
			c.records[key] = &updated
		}
	}
	c.mu.Unlock()

	call.err = err
	close(call.done)

	if err != nil {
		c.logger.Warn().Str("ticker", key).Str("error", err.Error()).Msg("series fetch failed")
		return
	}
	c.logger.Debug().Str("ticker", key).Int("points", series.Len()).Msg("series loaded")
}

func (c *Catalog) loadSeries(ctx context.Context, ticker string) (*models.Series, error) {
	raw, err := c.source.Series(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch series for %s: %w", ticker, err)
	}
	series, err := ParseSeries(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse series for %s: %w", ticker, err)
	}
	return series, nil
}

// Has reports whether ticker is in the catalog.
func (c *Catalog) Has(ticker string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.records[models.NormalizeTicker(ticker)]
	return ok
}

// Get returns a copy of the record for ticker.
func (c *Catalog) Get(ticker string) (*models.TickerRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.records[models.NormalizeTicker(ticker)]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Series returns the loaded series for ticker, or nil when none is attached.
func (c *Catalog) Series(ticker string) *models.Series {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if rec, ok := c.records[models.NormalizeTicker(ticker)]; ok {
		return rec.Series
	}
	return nil
}

// Len returns the number of tickers.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Tickers returns all tickers sorted alphabetically.
func (c *Catalog) Tickers() []string {
	c.mu.RLock()
	out := make([]string, 0, len(c.records))
	for key := range c.records {
		out = append(out, key)
	}
	c.mu.RUnlock()
	slices.Sort(out)
	return out
}

// Records returns the current records. Callers must treat them as read-only.
func (c *Catalog) Records() map[string]*models.TickerRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]*models.TickerRecord, len(c.records))
	for k, v := range c.records {
		out[k] = v
	}
	return out
}

// Subset returns the records for the given tickers that exist in the catalog.
// Callers must treat them as read-only.
func (c *Catalog) Subset(tickers []string) map[string]*models.TickerRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]*models.TickerRecord, len(tickers))
	for _, t := range tickers {
		key := models.NormalizeTicker(t)
		if rec, ok := c.records[key]; ok {
			out[key] = rec
		}
	}
	return out
}
