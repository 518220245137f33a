package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/bobmcallan/etf-portal/internal/models"
	"github.com/shopspring/decimal"
)

// HistoryDateLayout is the date layout of the historical NAV CSV.
const HistoryDateLayout = "01/02/2006"

// Historical NAV CSV column headers.
const (
	colDate              = "Date"
	colName              = "ProShares Name"
	colTicker            = "Ticker"
	colNAV               = "NAV"
	colPriorNAV          = "Prior NAV"
	colChangePercent     = "NAV Change (%)"
	colChangeDollars     = "NAV Change ($)"
	colSharesOutstanding = "Shares Outstanding (000)"
	colAUM               = "Assets Under Management"
)

var requiredColumns = []string{colDate, colTicker, colNAV}

// ErrMissingColumn is returned when the CSV header lacks a required column.
var ErrMissingColumn = errors.New("history csv is missing a required column")

// historyRow is one parsed CSV row.
type historyRow struct {
	name string
	snap models.Snapshot
}

// LoadHistoryFile opens and parses a historical NAV CSV file.
func LoadHistoryFile(path string) (map[string]*models.TickerRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history csv: %w", err)
	}
	defer f.Close()
	return LoadHistoryCSV(f)
}

// LoadHistoryCSV parses the flat historical NAV CSV (one row per ticker and
// day) into records with a loaded series and a Latest snapshot. The CSV has
// no volume column, so volumes are zero. When a ticker repeats a day the
// later row wins.
func LoadHistoryCSV(r io.Reader) (map[string]*models.TickerRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read history csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}
	field := func(rec []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	rows := make(map[string]map[string]historyRow)
	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		ticker := models.NormalizeTicker(field(rec, colTicker))
		if ticker == "" {
			continue
		}
		day, err := time.Parse(HistoryDateLayout, field(rec, colDate))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date %q want format %q: %w", line, field(rec, colDate), HistoryDateLayout, err)
		}

		row := historyRow{name: field(rec, colName), snap: models.Snapshot{Date: day}}
		targets := []struct {
			col string
			dst *decimal.Decimal
		}{
			{colNAV, &row.snap.NAV},
			{colPriorNAV, &row.snap.PriorNAV},
			{colChangePercent, &row.snap.ChangePercent},
			{colChangeDollars, &row.snap.ChangeDollars},
			{colSharesOutstanding, &row.snap.SharesOutstanding},
			{colAUM, &row.snap.AssetsUnderMgmt},
		}
		for _, t := range targets {
			v, err := parseCSVNumber(field(rec, t.col))
			if err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, t.col, err)
			}
			*t.dst = v
		}

		if rows[ticker] == nil {
			rows[ticker] = make(map[string]historyRow)
		}
		rows[ticker][models.DayKey(day)] = row
	}

	out := make(map[string]*models.TickerRecord, len(rows))
	for ticker, byDay := range rows {
		days := make([]string, 0, len(byDay))
		for k := range byDay {
			days = append(days, k)
		}
		slices.Sort(days)

		series := &models.Series{
			Dates:  make([]time.Time, len(days)),
			NAV:    make([]decimal.Decimal, len(days)),
			Volume: make([]decimal.Decimal, len(days)),
		}
		var name string
		for i, k := range days {
			row := byDay[k]
			series.Dates[i] = row.snap.Date
			series.NAV[i] = row.snap.NAV
			series.Volume[i] = decimal.Zero
			if row.name != "" {
				name = row.name
			}
		}
		latest := byDay[days[len(days)-1]].snap

		out[ticker] = &models.TickerRecord{
			Ticker:      ticker,
			DisplayName: name,
			Series:      series,
			Latest:      &latest,
		}
	}
	return out, nil
}

// parseCSVNumber accepts exported number formats such as "$1,234.50" and "-0.25%".
// Blank cells coerce to zero.
func parseCSVNumber(s string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", "%", "", " ", "").Replace(s)
	if cleaned == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid numeric value %q: %w", s, err)
	}
	return d, nil
}
