package portfolio

import (
	"slices"
	"time"

	"github.com/bobmcallan/etf-portal/internal/models"
	"github.com/shopspring/decimal"
)

type dayBucket struct {
	date  time.Time
	sum   decimal.Decimal
	count int64
}

// Average merges the NAV series of the selected tickers into one series with
// a point per distinct calendar day, valued at the arithmetic mean of the NAVs
// observed that day. Days covered by a single ticker are kept. Tickers are
// uppercased before lookup and each contributes once; those missing from
// catalog or without a series are skipped. The result is ascending by day and
// never nil.
func Average(selection []string, catalog map[string]*models.TickerRecord) []models.AveragedPoint {
	buckets := make(map[string]*dayBucket)
	seen := make(map[string]bool, len(selection))
	for _, ticker := range selection {
		key := models.NormalizeTicker(ticker)
		if seen[key] {
			continue
		}
		seen[key] = true
		rec, ok := catalog[key]
		if !ok || !rec.HasSeries() {
			continue
		}
		s := rec.Series
		for i, d := range s.Dates {
			key := models.DayKey(d)
			b, ok := buckets[key]
			if !ok {
				b = &dayBucket{date: d}
				buckets[key] = b
			}
			b.sum = b.sum.Add(s.NAV[i])
			b.count++
		}
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]models.AveragedPoint, 0, len(keys))
	for _, k := range keys {
		b := buckets[k]
		out = append(out, models.AveragedPoint{
			Date:    b.date,
			Average: b.sum.Div(decimal.NewFromInt(b.count)),
		})
	}
	return out
}
