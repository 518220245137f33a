package handlers

import (
	"net/http"

	"github.com/bobmcallan/etf-portal/internal/common"
	"github.com/bobmcallan/etf-portal/internal/dataset"
	"github.com/bobmcallan/etf-portal/internal/models"
)

// ETFHandler serves the catalog API.
type ETFHandler struct {
	logger  *common.Logger
	catalog *dataset.Catalog
}

// NewETFHandler creates a new catalog API handler.
func NewETFHandler(logger *common.Logger, catalog *dataset.Catalog) *ETFHandler {
	return &ETFHandler{logger: logger, catalog: catalog}
}

// HandleList handles GET /api/etfs.
func (h *ETFHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	records := h.catalog.Records()
	tickers := h.catalog.Tickers()
	out := make([]models.TickerSummary, 0, len(tickers))
	for _, t := range tickers {
		out = append(out, records[t].Summary())
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(out),
		"tickers": out,
	})
}

// HandleItem handles GET /api/etfs/{ticker}. With ?load=true the series is
// fetched first.
func (h *ETFHandler) HandleItem(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	ticker := TickerFromPath(r.URL.Path, "/api/etfs/")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	if r.URL.Query().Get("load") == "true" {
		res, err := h.catalog.FetchSeries(r.Context(), ticker)
		if err != nil {
			h.logger.Warn().Str("ticker", ticker).Str("error", err.Error()).Msg("series load failed")
			WriteError(w, http.StatusBadGateway, err.Error())
			return
		}
		if res == dataset.FetchUnknownTicker {
			WriteError(w, http.StatusNotFound, "unknown ticker: "+ticker)
			return
		}
	}

	rec, ok := h.catalog.Get(ticker)
	if !ok {
		WriteError(w, http.StatusNotFound, "unknown ticker: "+ticker)
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}
