// Package dataset loads ETF catalog and series documents and normalizes them
// into models.TickerRecord values.
package dataset

import (
	"github.com/bobmcallan/etf-portal/internal/models"
)

// RawCatalog is the catalog document: ticker -> source entry.
type RawCatalog map[string]RawEntry

// RawEntry is one ticker in the catalog document. Every breakdown is optional
// and may be null, missing or empty.
type RawEntry struct {
	Name          string           `json:"Name"`
	Holdings      models.Breakdown `json:"Holdings"`
	HoldingsLong  models.Breakdown `json:"HoldingsLong"`
	HoldingsShort models.Breakdown `json:"HoldingsShort"`
	Sectors       models.Breakdown `json:"Sectors"`
	SectorsLong   models.Breakdown `json:"SectorsLong"`
	SectorsShort  models.Breakdown `json:"SectorsShort"`
	SubSectors    models.Breakdown `json:"SubSectors"`
	Countries     models.Breakdown `json:"Countries"`
}

// breakdown returns the source field for a category.
func (e RawEntry) breakdown(c models.Category) models.Breakdown {
	switch c {
	case models.CategoryHoldings:
		return e.Holdings
	case models.CategoryHoldingsLong:
		return e.HoldingsLong
	case models.CategoryHoldingsShort:
		return e.HoldingsShort
	case models.CategorySectors:
		return e.Sectors
	case models.CategorySectorsLong:
		return e.SectorsLong
	case models.CategorySectorsShort:
		return e.SectorsShort
	case models.CategorySubSectors:
		return e.SubSectors
	case models.CategoryCountries:
		return e.Countries
	}
	return nil
}

// NormalizeCatalog flattens the catalog document into records keyed by
// uppercase ticker. Categories that are null or empty are omitted entirely;
// a record never carries an empty breakdown.
func NormalizeCatalog(raw RawCatalog) map[string]*models.TickerRecord {
	out := make(map[string]*models.TickerRecord, len(raw))
	for ticker, entry := range raw {
		key := models.NormalizeTicker(ticker)
		if key == "" {
			continue
		}

		rec := &models.TickerRecord{
			Ticker:      key,
			DisplayName: entry.Name,
		}
		for _, c := range models.Categories {
			b := entry.breakdown(c)
			if len(b) == 0 {
				continue
			}
			if rec.Categories == nil {
				rec.Categories = make(map[models.Category]models.Breakdown)
			}
			copied := make(models.Breakdown, len(b))
			for label, weight := range b {
				copied[label] = weight
			}
			rec.Categories[c] = copied
		}
		out[key] = rec
	}
	return out
}
