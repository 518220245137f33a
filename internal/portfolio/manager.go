package portfolio

import (
	"context"
	"fmt"
	"sync"

	"github.com/bobmcallan/etf-portal/internal/common"
	"github.com/bobmcallan/etf-portal/internal/dataset"
	"github.com/bobmcallan/etf-portal/internal/models"
	"github.com/shopspring/decimal"
)

// Outcome reports what a selection mutation did.
type Outcome int

const (
	// OutcomeAdded means the ticker's series is loaded and the ticker was appended.
	OutcomeAdded Outcome = iota
	// OutcomeAlreadySelected means the ticker was selected before; nothing changed.
	OutcomeAlreadySelected
	// OutcomeUnknownTicker means the ticker is not in the catalog; nothing changed.
	OutcomeUnknownTicker
	// OutcomeRemoved means the ticker was dropped from the selection.
	OutcomeRemoved
	// OutcomeNotSelected means the ticker was not selected; nothing changed.
	OutcomeNotSelected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdded:
		return "added"
	case OutcomeAlreadySelected:
		return "already_selected"
	case OutcomeUnknownTicker:
		return "unknown_ticker"
	case OutcomeRemoved:
		return "removed"
	case OutcomeNotSelected:
		return "not_selected"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Changed reports whether the selection was mutated.
func (o Outcome) Changed() bool {
	return o == OutcomeAdded || o == OutcomeRemoved
}

// Card is the display row for one selected ticker.
type Card struct {
	Ticker      string           `json:"ticker"`
	Name        string           `json:"name"`
	Points      int              `json:"points"`
	FirstDate   string           `json:"first_date,omitempty"`
	LastDate    string           `json:"last_date,omitempty"`
	LastNAV     decimal.Decimal  `json:"last_nav"`
	LastVolume  decimal.Decimal  `json:"last_volume"`
	Latest      *models.Snapshot `json:"latest,omitempty"`
	Categories  []string         `json:"categories,omitempty"`
	HasSnapshot bool             `json:"has_snapshot"`
	Display     CardDisplay      `json:"display"`
}

// CardDisplay holds the card values formatted for the dashboard. Fields are
// empty when the underlying value is absent.
type CardDisplay struct {
	LastNAV string `json:"last_nav,omitempty"`
	Change  string `json:"change,omitempty"`
	AUM     string `json:"aum,omitempty"`
}

// Manager owns the catalog and the current selection.
type Manager struct {
	catalog *dataset.Catalog
	logger  *common.Logger

	mu        sync.Mutex
	selection *Selection
	listeners []func([]string)
}

// NewManager creates a manager with an empty selection.
func NewManager(catalog *dataset.Catalog, logger *common.Logger) *Manager {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Manager{
		catalog:   catalog,
		logger:    logger,
		selection: NewSelection(),
	}
}

// Catalog returns the catalog the manager selects from.
func (m *Manager) Catalog() *dataset.Catalog {
	return m.catalog
}

// OnChange registers fn to run after every selection mutation with the new
// selection. Listeners run synchronously, outside the manager lock.
func (m *Manager) OnChange(fn func(selection []string)) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

func (m *Manager) notify(selection []string) {
	m.mu.Lock()
	listeners := make([]func([]string), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(selection)
	}
}

// Select adds ticker to the selection once its series is loaded. A fetch
// error is returned and the selection is left unchanged.
func (m *Manager) Select(ctx context.Context, ticker string) (Outcome, error) {
	key := models.NormalizeTicker(ticker)

	if !m.catalog.Has(key) {
		return OutcomeUnknownTicker, nil
	}
	m.mu.Lock()
	selected := m.selection.Contains(key)
	m.mu.Unlock()
	if selected {
		return OutcomeAlreadySelected, nil
	}

	res, err := m.catalog.FetchSeries(ctx, key)
	if err != nil {
		return OutcomeNotSelected, fmt.Errorf("failed to select %s: %w", key, err)
	}
	if res == dataset.FetchUnknownTicker {
		// The catalog was reloaded without this ticker while we waited.
		return OutcomeUnknownTicker, nil
	}

	m.mu.Lock()
	added := m.selection.Add(key)
	snapshot := m.selection.Tickers()
	m.mu.Unlock()

	if !added {
		return OutcomeAlreadySelected, nil
	}
	m.logger.Info().Str("ticker", key).Str("fetch", res.String()).Int("selected", len(snapshot)).Msg("ticker selected")
	m.notify(snapshot)
	return OutcomeAdded, nil
}

// Deselect removes ticker from the selection.
func (m *Manager) Deselect(ticker string) Outcome {
	key := models.NormalizeTicker(ticker)

	m.mu.Lock()
	removed := m.selection.Remove(key)
	snapshot := m.selection.Tickers()
	m.mu.Unlock()

	if !removed {
		return OutcomeNotSelected
	}
	m.logger.Info().Str("ticker", key).Int("selected", len(snapshot)).Msg("ticker deselected")
	m.notify(snapshot)
	return OutcomeRemoved
}

// Reset clears the selection.
func (m *Manager) Reset() {
	m.mu.Lock()
	had := m.selection.Len()
	m.selection.Reset()
	m.mu.Unlock()

	if had == 0 {
		return
	}
	m.logger.Info().Int("cleared", had).Msg("selection reset")
	m.notify([]string{})
}

// Selection returns the selected tickers in display order.
func (m *Manager) Selection() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selection.Tickers()
}

// Restore selects each ticker in order, skipping unknown tickers and fetch
// failures. It returns the number of tickers added.
func (m *Manager) Restore(ctx context.Context, tickers []string) int {
	added := 0
	for _, t := range tickers {
		out, err := m.Select(ctx, t)
		if err != nil {
			m.logger.Warn().Str("ticker", t).Str("error", err.Error()).Msg("failed to restore selection")
			continue
		}
		if out == OutcomeAdded {
			added++
		}
	}
	return added
}

// View is the full portfolio state served to the dashboard, API and MCP tools.
type View struct {
	Selection []string               `json:"selection"`
	Cards     []Card                 `json:"cards"`
	Average   []models.AveragedPoint `json:"average"`
}

// View returns the selection, its cards and the averaged series.
func (m *Manager) View() View {
	selection := m.Selection()
	records := m.catalog.Subset(selection)

	cards := make([]Card, 0, len(selection))
	for _, ticker := range selection {
		if rec, ok := records[ticker]; ok {
			cards = append(cards, newCard(rec))
		}
	}
	return View{
		Selection: selection,
		Cards:     cards,
		Average:   Average(selection, records),
	}
}

// Average averages the selected tickers' series.
func (m *Manager) Average() []models.AveragedPoint {
	return m.AverageOf(m.Selection())
}

// AverageOf averages a selection snapshot taken earlier, so callers that key
// results by the selection render exactly what they keyed.
func (m *Manager) AverageOf(selection []string) []models.AveragedPoint {
	return Average(selection, m.catalog.Subset(selection))
}

// Cards returns a display row per selected ticker in display order.
func (m *Manager) Cards() []Card {
	selection := m.Selection()
	records := m.catalog.Subset(selection)

	cards := make([]Card, 0, len(selection))
	for _, ticker := range selection {
		rec, ok := records[ticker]
		if !ok {
			continue
		}
		cards = append(cards, newCard(rec))
	}
	return cards
}

func newCard(rec *models.TickerRecord) Card {
	card := Card{
		Ticker:      rec.Ticker,
		Name:        rec.DisplayName,
		Latest:      rec.Latest,
		HasSnapshot: rec.Latest != nil,
		Categories:  rec.Summary().Categories,
	}
	if rec.HasSeries() {
		s := rec.Series
		card.Points = s.Len()
		if day, nav, ok := s.Last(); ok {
			card.FirstDate = models.DayKey(s.Dates[0])
			card.LastDate = models.DayKey(day)
			card.LastNAV = nav
			card.LastVolume = s.Volume[s.Len()-1]
			card.Display.LastNAV = common.FormatNAV(nav)
		}
	}
	if rec.Latest != nil {
		if card.Display.LastNAV == "" {
			card.Display.LastNAV = common.FormatNAV(rec.Latest.NAV)
		}
		card.Display.Change = common.FormatSignedPct(rec.Latest.ChangePercent)
		card.Display.AUM = common.FormatCompact(rec.Latest.AssetsUnderMgmt)
	}
	return card
}
