package handlers

import (
	"html/template"
	"net/http"

	"github.com/bobmcallan/etf-portal/internal/common"
	"github.com/bobmcallan/etf-portal/internal/config"
	"github.com/bobmcallan/etf-portal/internal/interfaces"
	"github.com/bobmcallan/etf-portal/internal/models"
	"github.com/bobmcallan/etf-portal/internal/portfolio"
)

// DashboardTool is an MCP tool listed on the dashboard.
type DashboardTool struct {
	Name        string
	Description string
	Params      []string
}

// DashboardHandler serves the dashboard page: catalog picker, selected
// ticker cards and the averaged NAV chart.
type DashboardHandler struct {
	logger    *common.Logger
	templates *template.Template
	devMode   bool
	manager   *portfolio.Manager
	settings  interfaces.SettingsStore
	catalogFn func() []DashboardTool
	loadErrFn func() error
	port      int
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(logger *common.Logger, devMode bool, port int, manager *portfolio.Manager, catalogFn func() []DashboardTool) *DashboardHandler {
	return &DashboardHandler{
		logger:    logger,
		templates: ParseTemplates(),
		devMode:   devMode,
		manager:   manager,
		catalogFn: catalogFn,
		port:      port,
	}
}

// SetSettingsStore sets the store the data file setting is read from.
func (h *DashboardHandler) SetSettingsStore(s interfaces.SettingsStore) {
	h.settings = s
}

// SetLoadErrorFn sets the function reporting the last catalog load failure.
func (h *DashboardHandler) SetLoadErrorFn(fn func() error) {
	h.loadErrFn = fn
}

// ServeHTTP renders the dashboard page.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	var tools []DashboardTool
	if h.catalogFn != nil {
		tools = h.catalogFn()
	}

	loadError := ""
	if h.loadErrFn != nil {
		if err := h.loadErrFn(); err != nil {
			loadError = err.Error()
		}
	}

	filename := ""
	if h.settings != nil {
		v, err := h.settings.Filename(r.Context())
		if err != nil && h.logger != nil {
			h.logger.Warn().Str("error", err.Error()).Msg("failed to read filename setting")
		}
		filename = v
	}

	var (
		catalog []models.TickerSummary
		view    portfolio.View
	)
	if h.manager != nil {
		records := h.manager.Catalog().Records()
		for _, t := range h.manager.Catalog().Tickers() {
			catalog = append(catalog, records[t].Summary())
		}
		view = h.manager.View()
	}

	data := map[string]interface{}{
		"Page":          "dashboard",
		"DevMode":       h.devMode,
		"PortalVersion": config.GetVersion(),
		"Catalog":       catalog,
		"View":          view,
		"HasChart":      len(view.Average) > 0,
		"LoadError":     loadError,
		"Filename":      filename,
		"Tools":         tools,
		"ToolCount":     len(tools),
		"Port":          h.port,
	}

	render(w, h.templates, h.logger, "dashboard.html", data)
}
