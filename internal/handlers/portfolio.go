package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/bobmcallan/etf-portal/internal/cache"
	"github.com/bobmcallan/etf-portal/internal/chart"
	"github.com/bobmcallan/etf-portal/internal/common"
	"github.com/bobmcallan/etf-portal/internal/portfolio"
)

// Chart size limits for the chart endpoint.
const (
	minChartSize = 100
	maxChartSize = 4000
)

// PortfolioHandler serves the selection API and the averaged chart.
type PortfolioHandler struct {
	logger  *common.Logger
	manager *portfolio.Manager
	charts  *cache.ChartCache
}

// NewPortfolioHandler creates a new portfolio API handler. charts may be nil
// to render every request.
func NewPortfolioHandler(logger *common.Logger, manager *portfolio.Manager, charts *cache.ChartCache) *PortfolioHandler {
	return &PortfolioHandler{logger: logger, manager: manager, charts: charts}
}

// outcomeResponse is returned by selection mutations.
type outcomeResponse struct {
	Ticker    string         `json:"ticker"`
	Outcome   string         `json:"outcome"`
	Portfolio portfolio.View `json:"portfolio"`
}

// HandleView handles GET /api/portfolio.
func (h *PortfolioHandler) HandleView(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	WriteJSON(w, http.StatusOK, h.manager.View())
}

// HandleSelect handles POST /api/portfolio/{ticker}.
func (h *PortfolioHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	ticker := TickerFromPath(r.URL.Path, "/api/portfolio/")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	out, err := h.manager.Select(r.Context(), ticker)
	if err != nil {
		h.logger.Warn().Str("ticker", ticker).Str("error", err.Error()).Msg("select failed")
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	if out == portfolio.OutcomeUnknownTicker {
		WriteError(w, http.StatusNotFound, "unknown ticker: "+ticker)
		return
	}
	WriteJSON(w, http.StatusOK, outcomeResponse{Ticker: ticker, Outcome: out.String(), Portfolio: h.manager.View()})
}

// HandleDeselect handles DELETE /api/portfolio/{ticker}.
func (h *PortfolioHandler) HandleDeselect(w http.ResponseWriter, r *http.Request) {
	ticker := TickerFromPath(r.URL.Path, "/api/portfolio/")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	out := h.manager.Deselect(ticker)
	WriteJSON(w, http.StatusOK, outcomeResponse{Ticker: ticker, Outcome: out.String(), Portfolio: h.manager.View()})
}

// HandleReset handles POST /api/portfolio/reset.
func (h *PortfolioHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	h.manager.Reset()
	WriteJSON(w, http.StatusOK, h.manager.View())
}

// HandleAverage handles GET /api/portfolio/average.
func (h *PortfolioHandler) HandleAverage(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	points := h.manager.Average()
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"selection": h.manager.Selection(),
		"points":    points,
	})
}

// HandleChart handles GET /api/portfolio/chart.svg and /api/portfolio/chart.png.
// Optional query parameters: width, height.
func (h *PortfolioHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	opts := chart.Options{Format: chart.FormatSVG}
	if strings.HasSuffix(r.URL.Path, ".png") {
		opts.Format = chart.FormatPNG
	}
	var err error
	if opts.Width, err = sizeParam(r, "width"); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if opts.Height, err = sizeParam(r, "height"); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	selection := h.manager.Selection()
	key := cache.MakeKey(selection, opts.Format, opts.Width, opts.Height)
	if h.charts != nil {
		if img, ok := h.charts.Get(key); ok {
			writeImage(w, img, "HIT")
			return
		}
	}

	opts.Title = "Average NAV: " + strings.Join(selection, ", ")
	body, err := chart.Render(h.manager.AverageOf(selection), opts)
	if err != nil {
		if errors.Is(err, chart.ErrNoData) {
			WriteError(w, http.StatusNotFound, "no series data for the current selection")
			return
		}
		h.logger.Error().Str("error", err.Error()).Msg("chart render failed")
		WriteError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}

	img := &cache.Image{ContentType: opts.ContentType(), Body: body}
	if h.charts != nil {
		h.charts.Set(key, img)
	}
	writeImage(w, img, "MISS")
}

func writeImage(w http.ResponseWriter, img *cache.Image, cacheStatus string) {
	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	w.Write(img.Body)
}

// sizeParam parses an optional chart dimension; 0 means default.
func sizeParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < minChartSize || n > maxChartSize {
		return 0, errors.New(name + " must be an integer between 100 and 4000")
	}
	return n, nil
}
