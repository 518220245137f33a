package server

import (
	"net/http"
	"strings"
)

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// UI page routes (HTML templates)
	mux.HandleFunc("/", s.app.PageHandler.ServePage("landing.html", "home"))
	mux.Handle("/dashboard", s.app.DashboardHandler)
	mux.HandleFunc("/settings", s.handleSettings)

	// Static files (CSS, JS, images)
	mux.HandleFunc("/static/", s.app.PageHandler.StaticFileHandler)

	// MCP endpoint (JSON-RPC over HTTP)
	if s.app.MCPHandler != nil {
		mux.Handle("/mcp", s.app.MCPHandler)
	}

	// API routes
	mux.HandleFunc("/api/health", s.app.HealthHandler.ServeHTTP)
	mux.HandleFunc("/api/version", s.app.VersionHandler.ServeHTTP)
	mux.HandleFunc("/api/settings", s.handleSettingsAPI)
	mux.HandleFunc("/api/etfs", s.handleETFs)
	mux.HandleFunc("/api/etfs/", s.app.ETFHandler.HandleItem)
	mux.HandleFunc("/api/portfolio", s.app.PortfolioHandler.HandleView)
	mux.HandleFunc("/api/portfolio/", s.handlePortfolioRoutes)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.handleNotFound)

	return mux
}

// handleSettings routes /settings: GET renders the page, POST saves the form.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	RouteByMethod(w, r, MethodRouter{
		http.MethodGet:  s.app.SettingsHandler.HandleSettings,
		http.MethodPost: s.app.SettingsHandler.HandleSaveSettings,
	})
}

// handleSettingsAPI routes /api/settings: GET reads, PUT replaces.
func (s *Server) handleSettingsAPI(w http.ResponseWriter, r *http.Request) {
	h := s.app.SettingsHandler.HandleSettingsAPI
	RouteResourceItem(w, r, h, h, nil)
}

// handleETFs routes the read-only catalog collection.
func (s *Server) handleETFs(w http.ResponseWriter, r *http.Request) {
	RouteResourceCollection(w, r, s.app.ETFHandler.HandleList, nil)
}

// handlePortfolioRoutes dispatches /api/portfolio/{action|ticker}.
func (s *Server) handlePortfolioRoutes(w http.ResponseWriter, r *http.Request) {
	h := s.app.PortfolioHandler
	switch strings.TrimPrefix(r.URL.Path, "/api/portfolio/") {
	case "reset":
		h.HandleReset(w, r)
	case "average":
		h.HandleAverage(w, r)
	case "chart.svg", "chart.png":
		h.HandleChart(w, r)
	default:
		RouteByMethod(w, r, MethodRouter{
			http.MethodPost:   h.HandleSelect,
			http.MethodDelete: h.HandleDeselect,
		})
	}
}

// handleNotFound returns a JSON 404 for unmatched API routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"Not Found","message":"The requested endpoint does not exist"}`))
}
