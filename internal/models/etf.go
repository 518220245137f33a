// Package models defines the ETF catalog and time-series types shared by the
// dataset, portfolio and presentation layers.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DayLayout is the fixed layout used to key dates at day granularity.
const DayLayout = "2006-01-02"

// DayKey re-keys a timestamp to its calendar day so equal days always collide.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// NormalizeTicker returns the canonical (uppercase) form of a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Category names a per-ETF breakdown as it appears in the catalog document.
type Category string

const (
	CategoryHoldings      Category = "Holdings"
	CategoryHoldingsLong  Category = "HoldingsLong"
	CategoryHoldingsShort Category = "HoldingsShort"
	CategorySectors       Category = "Sectors"
	CategorySectorsLong   Category = "SectorsLong"
	CategorySectorsShort  Category = "SectorsShort"
	CategorySubSectors    Category = "SubSectors"
	CategoryCountries     Category = "Countries"
)

// Categories lists every known category in display order.
var Categories = []Category{
	CategoryHoldings,
	CategoryHoldingsLong,
	CategoryHoldingsShort,
	CategorySectors,
	CategorySectorsLong,
	CategorySectorsShort,
	CategorySubSectors,
	CategoryCountries,
}

// Breakdown maps a label (holding, sector, country) to its percentage weight.
type Breakdown map[string]decimal.Decimal

// TickerRecord is one ETF in the catalog.
type TickerRecord struct {
	Ticker      string                 `json:"ticker"`
	DisplayName string                 `json:"name"`
	Categories  map[Category]Breakdown `json:"categories,omitempty"`
	Series      *Series                `json:"series,omitempty"`
	Latest      *Snapshot              `json:"latest,omitempty"`
}

// HasSeries reports whether the record's time series has been loaded.
func (r *TickerRecord) HasSeries() bool {
	return r != nil && r.Series != nil
}

// Clone returns a copy that shares no mutable maps with r.
// Series and Snapshot are immutable once attached and are shared.
func (r *TickerRecord) Clone() *TickerRecord {
	if r == nil {
		return nil
	}
	out := *r
	if r.Categories != nil {
		out.Categories = make(map[Category]Breakdown, len(r.Categories))
		for k, v := range r.Categories {
			b := make(Breakdown, len(v))
			for label, w := range v {
				b[label] = w
			}
			out.Categories[k] = b
		}
	}
	return &out
}

var (
	// ErrSeriesLength is returned when the parallel series arrays differ in length.
	ErrSeriesLength = errors.New("series arrays differ in length")
	// ErrSeriesOrder is returned when series dates are not strictly ascending by day.
	ErrSeriesOrder = errors.New("series dates are not strictly ascending")
)

// Series holds a ticker's NAV and volume history as parallel arrays.
type Series struct {
	Dates  []time.Time       `json:"-"`
	NAV    []decimal.Decimal `json:"nav"`
	Volume []decimal.Decimal `json:"volume"`
}

// Len returns the number of samples.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Dates)
}

// Validate checks the equal-length and strictly-ascending invariants.
func (s *Series) Validate() error {
	if len(s.Dates) != len(s.NAV) || len(s.Dates) != len(s.Volume) {
		return fmt.Errorf("%w: dates=%d nav=%d volume=%d", ErrSeriesLength, len(s.Dates), len(s.NAV), len(s.Volume))
	}
	for i := 1; i < len(s.Dates); i++ {
		if DayKey(s.Dates[i]) <= DayKey(s.Dates[i-1]) {
			return fmt.Errorf("%w: %s follows %s", ErrSeriesOrder, DayKey(s.Dates[i]), DayKey(s.Dates[i-1]))
		}
	}
	return nil
}

// Last returns the most recent date and NAV. ok is false for an empty series.
func (s *Series) Last() (day time.Time, nav decimal.Decimal, ok bool) {
	n := s.Len()
	if n == 0 {
		return time.Time{}, decimal.Zero, false
	}
	return s.Dates[n-1], s.NAV[n-1], true
}

// MarshalJSON writes dates with the day layout.
func (s Series) MarshalJSON() ([]byte, error) {
	dates := make([]string, len(s.Dates))
	for i, d := range s.Dates {
		dates[i] = DayKey(d)
	}
	return json.Marshal(struct {
		Dates  []string          `json:"dates"`
		NAV    []decimal.Decimal `json:"nav"`
		Volume []decimal.Decimal `json:"volume"`
	}{dates, s.NAV, s.Volume})
}

// Snapshot is the most recent row of the historical NAV CSV for a ticker.
type Snapshot struct {
	Date              time.Time       `json:"-"`
	NAV               decimal.Decimal `json:"nav"`
	PriorNAV          decimal.Decimal `json:"prior_nav"`
	ChangePercent     decimal.Decimal `json:"nav_change_percent"`
	ChangeDollars     decimal.Decimal `json:"nav_change_dollars"`
	SharesOutstanding decimal.Decimal `json:"shares_outstanding"`
	AssetsUnderMgmt   decimal.Decimal `json:"assets_under_management"`
}

// MarshalJSON writes the snapshot date with the day layout.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	type alias Snapshot
	return json.Marshal(struct {
		Date string `json:"date"`
		alias
	}{DayKey(s.Date), alias(s)})
}

// AveragedPoint is one day of the merged portfolio series.
type AveragedPoint struct {
	Date    time.Time
	Average decimal.Decimal
}

// MarshalJSON writes {"date":"2006-01-02","average":"12.5"}.
func (p AveragedPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date    string          `json:"date"`
		Average decimal.Decimal `json:"average"`
	}{DayKey(p.Date), p.Average})
}

// TickerSummary is the catalog listing row for one ticker.
type TickerSummary struct {
	Ticker       string   `json:"ticker"`
	Name         string   `json:"name"`
	Categories   []string `json:"categories,omitempty"`
	SeriesLoaded bool     `json:"series_loaded"`
	Points       int      `json:"points"`
}

// Summary returns the listing row for r.
func (r *TickerRecord) Summary() TickerSummary {
	s := TickerSummary{
		Ticker:       r.Ticker,
		Name:         r.DisplayName,
		SeriesLoaded: r.HasSeries(),
		Points:       r.Series.Len(),
	}
	for _, c := range Categories {
		if _, ok := r.Categories[c]; ok {
			s.Categories = append(s.Categories, string(c))
		}
	}
	return s
}
