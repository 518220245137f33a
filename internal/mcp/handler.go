package mcp

import (
	"net/http"

	"github.com/bobmcallan/etf-portal/internal/common"
	"github.com/bobmcallan/etf-portal/internal/portfolio"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Handler is the HTTP handler for the MCP endpoint.
// It wraps mcp-go's StreamableHTTPServer and delegates to it.
type Handler struct {
	server     *mcpserver.MCPServer
	streamable *mcpserver.StreamableHTTPServer
	logger     *common.Logger
	catalog    []CatalogTool
}

// NewServer builds an MCP server exposing the portfolio tools. It is shared
// by the HTTP endpoint and the stdio binary.
func NewServer(m *portfolio.Manager, logger *common.Logger) (*mcpserver.MCPServer, []CatalogTool) {
	s := mcpserver.NewMCPServer(
		"etf-portal",
		common.GetVersion(),
		mcpserver.WithToolCapabilities(true),
	)

	validated := ValidateCatalog(DefaultCatalog(), logger)
	registered := RegisterTools(s, m, validated, logger)
	s.AddTool(VersionTool(), VersionToolHandler(m.Catalog().Len))

	return s, registered
}

// NewHandler creates the streamable HTTP MCP handler.
func NewHandler(m *portfolio.Manager, logger *common.Logger) *Handler {
	s, registered := NewServer(m, logger)

	streamable := mcpserver.NewStreamableHTTPServer(s,
		mcpserver.WithStateLess(true),
	)

	if logger != nil {
		logger.Info().
			Int("tools", len(registered)+1).
			Msg("MCP handler initialized")
	}

	return &Handler{
		server:     s,
		streamable: streamable,
		logger:     logger,
		catalog:    registered,
	}
}

// Catalog returns a copy of the registered tool catalog.
func (h *Handler) Catalog() []CatalogTool {
	result := make([]CatalogTool, len(h.catalog))
	copy(result, h.catalog)
	return result
}

// Server returns the underlying MCP server.
func (h *Handler) Server() *mcpserver.MCPServer {
	return h.server
}

// ServeHTTP delegates to the mcp-go StreamableHTTPServer.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.streamable.ServeHTTP(w, r)
}
