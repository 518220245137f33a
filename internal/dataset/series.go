package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bobmcallan/etf-portal/internal/models"
	"github.com/shopspring/decimal"
)

// SeriesDateLayout is the month/day/2-digit-year layout of series documents.
const SeriesDateLayout = "1/2/06"

var (
	// ErrSeriesShape is returned when the Date, NAV and YHV arrays differ in length.
	ErrSeriesShape = errors.New("series document arrays differ in length")
	// ErrDuplicateDate is returned when a series document repeats a calendar day.
	ErrDuplicateDate = errors.New("series document repeats a date")
)

// Numeric is a JSON value that may be encoded as a string or a number.
type Numeric string

// UnmarshalJSON accepts "12.5", 12.5 and null.
func (n *Numeric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = Numeric(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("invalid numeric value %s: %w", data, err)
	}
	*n = Numeric(num)
	return nil
}

// Decimal coerces the value to a decimal. Blank values coerce to zero.
func (n Numeric) Decimal() (decimal.Decimal, error) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid numeric value %q: %w", s, err)
	}
	return d, nil
}

// RawSeries is a per-ticker series document with parallel arrays.
type RawSeries struct {
	Date []string  `json:"Date"`
	NAV  []Numeric `json:"NAV"`
	YHV  []Numeric `json:"YHV"`
}

type sample struct {
	day    time.Time
	nav    decimal.Decimal
	volume decimal.Decimal
}

// ParseSeries converts a series document into a validated models.Series
// sorted ascending by day.
func ParseSeries(raw *RawSeries) (*models.Series, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: empty document", ErrSeriesShape)
	}
	n := len(raw.Date)
	if len(raw.NAV) != n || len(raw.YHV) != n {
		return nil, fmt.Errorf("%w: Date=%d NAV=%d YHV=%d", ErrSeriesShape, n, len(raw.NAV), len(raw.YHV))
	}

	samples := make([]sample, n)
	for i := range n {
		day, err := time.Parse(SeriesDateLayout, strings.TrimSpace(raw.Date[i]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid date %q want format %q: %w", i, raw.Date[i], SeriesDateLayout, err)
		}
		nav, err := raw.NAV[i].Decimal()
		if err != nil {
			return nil, fmt.Errorf("row %d: NAV: %w", i, err)
		}
		volume, err := raw.YHV[i].Decimal()
		if err != nil {
			return nil, fmt.Errorf("row %d: YHV: %w", i, err)
		}
		samples[i] = sample{day: day, nav: nav, volume: volume}
	}

	slices.SortStableFunc(samples, func(a, b sample) int { return a.day.Compare(b.day) })

	series := &models.Series{
		Dates:  make([]time.Time, n),
		NAV:    make([]decimal.Decimal, n),
		Volume: make([]decimal.Decimal, n),
	}
	for i, s := range samples {
		if i > 0 && models.DayKey(s.day) == models.DayKey(samples[i-1].day) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDate, models.DayKey(s.day))
		}
		series.Dates[i] = s.day
		series.NAV[i] = s.nav
		series.Volume[i] = s.volume
	}

	if err := series.Validate(); err != nil {
		return nil, err
	}
	return series, nil
}
