package mcp

import (
	"github.com/bobmcallan/etf-portal/internal/common"
	"github.com/bobmcallan/etf-portal/internal/portfolio"
	"github.com/mark3labs/mcp-go/server"
)

// toolHandlers maps tool names to their handler constructors.
var toolHandlers = map[string]func(*portfolio.Manager) server.ToolHandlerFunc{
	ToolListETFs:   handleListETFs,
	ToolGetETF:     handleGetETF,
	ToolSelect:     handleSelect,
	ToolDeselect:   handleDeselect,
	ToolReset:      handleReset,
	ToolPortfolio:  handleGetPortfolio,
	ToolGetAverage: handleGetAverage,
}

// RegisterTools registers every catalog tool that has a handler and returns
// the tools actually registered.
func RegisterTools(s *server.MCPServer, m *portfolio.Manager, catalog []CatalogTool, logger *common.Logger) []CatalogTool {
	registered := make([]CatalogTool, 0, len(catalog))
	for _, ct := range catalog {
		newHandler, ok := toolHandlers[ct.Name]
		if !ok {
			if logger != nil {
				logger.Warn().Str("name", ct.Name).Msg("no handler for catalog tool")
			}
			continue
		}
		s.AddTool(BuildMCPTool(ct), newHandler(m))
		registered = append(registered, ct)
	}
	return registered
}
