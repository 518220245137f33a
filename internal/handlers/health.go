package handlers

import (
	"net/http"

	"github.com/bobmcallan/etf-portal/internal/config"
)

type healthResponse struct {
	Status  string `json:"status"`
	Tickers int    `json:"tickers"`
	Error   string `json:"error,omitempty"`
}

// HealthHandler serves GET /api/health. The portal still answers 200 when
// the data load failed but reports itself as "degraded".
type HealthHandler struct {
	tickers func() int
	loadErr func() error
}

// NewHealthHandler takes the catalog size and the last load error. Either
// may be nil.
func NewHealthHandler(tickers func() int, loadErr func() error) *HealthHandler {
	return &HealthHandler{tickers: tickers, loadErr: loadErr}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	resp := healthResponse{Status: "ok"}
	if h.tickers != nil {
		resp.Tickers = h.tickers()
	}
	if h.loadErr != nil {
		if err := h.loadErr(); err != nil {
			resp.Status = "degraded"
			resp.Error = err.Error()
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}

// VersionHandler serves GET /api/version from the ldflags-injected values.
type VersionHandler struct{}

func (VersionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version":    config.GetVersion(),
		"build":      config.GetBuild(),
		"git_commit": config.GetGitCommit(),
	})
}
