package mcp

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/etf-portal/internal/common"
	"github.com/mark3labs/mcp-go/mcp"
)

// allowedMethods is the whitelist of HTTP methods a tool's REST twin may use.
var allowedMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true,
}

// CatalogTool describes one MCP tool and the REST endpoint it mirrors.
type CatalogTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Method      string         `json:"method"`
	Path        string         `json:"path"`
	Params      []CatalogParam `json:"params"`
}

// CatalogParam describes one parameter for a catalog tool.
type CatalogParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // string, number, boolean
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Tool names.
const (
	ToolVersion    = "get_version"
	ToolListETFs   = "list_etfs"
	ToolGetETF     = "get_etf"
	ToolSelect     = "select_etf"
	ToolDeselect   = "deselect_etf"
	ToolReset      = "reset_portfolio"
	ToolPortfolio  = "get_portfolio"
	ToolGetAverage = "get_average"
)

var tickerParam = CatalogParam{
	Name:        "ticker",
	Type:        "string",
	Description: "ETF ticker symbol, e.g. SSO (case-insensitive)",
	Required:    true,
}

// DefaultCatalog returns the tools served by the portal.
func DefaultCatalog() []CatalogTool {
	return []CatalogTool{
		{
			Name:        ToolListETFs,
			Description: "List every ETF in the catalog with its name, breakdown categories and whether its NAV series is loaded.",
			Method:      "GET",
			Path:        "/api/etfs",
		},
		{
			Name:        ToolGetETF,
			Description: "Get one ETF's catalog record: breakdowns, latest snapshot and NAV series when loaded.",
			Method:      "GET",
			Path:        "/api/etfs/{ticker}",
			Params: []CatalogParam{
				tickerParam,
				{Name: "load", Type: "boolean", Description: "Fetch the NAV series first if it is not loaded yet"},
			},
		},
		{
			Name:        ToolSelect,
			Description: "Add an ETF to the portfolio selection. Its NAV series is fetched on demand.",
			Method:      "POST",
			Path:        "/api/portfolio/{ticker}",
			Params:      []CatalogParam{tickerParam},
		},
		{
			Name:        ToolDeselect,
			Description: "Remove an ETF from the portfolio selection.",
			Method:      "DELETE",
			Path:        "/api/portfolio/{ticker}",
			Params:      []CatalogParam{tickerParam},
		},
		{
			Name:        ToolReset,
			Description: "Clear the portfolio selection.",
			Method:      "POST",
			Path:        "/api/portfolio/reset",
		},
		{
			Name:        ToolPortfolio,
			Description: "Get the selected ETFs with their latest NAV and the averaged NAV series.",
			Method:      "GET",
			Path:        "/api/portfolio",
		},
		{
			Name:        ToolGetAverage,
			Description: "Get the day-by-day average NAV across the selected ETFs as a markdown table.",
			Method:      "GET",
			Path:        "/api/portfolio/average",
			Params: []CatalogParam{
				{Name: "limit", Type: "number", Description: "Only return the most recent N days (0 for all)"},
			},
		},
	}
}

// ValidateCatalogTool validates a single catalog tool entry.
func ValidateCatalogTool(ct CatalogTool) error {
	if ct.Name == "" {
		return fmt.Errorf("tool has empty name")
	}
	if ct.Method == "" {
		return fmt.Errorf("tool %q has empty method", ct.Name)
	}
	if !allowedMethods[strings.ToUpper(ct.Method)] {
		return fmt.Errorf("tool %q has unsupported method %q", ct.Name, ct.Method)
	}
	if !strings.HasPrefix(ct.Path, "/api/") {
		return fmt.Errorf("tool %q has invalid path %q (must start with /api/)", ct.Name, ct.Path)
	}
	if strings.Contains(ct.Path, "..") {
		return fmt.Errorf("tool %q has invalid path %q (contains ..)", ct.Name, ct.Path)
	}
	return nil
}

// ValidateCatalog drops invalid and duplicate entries, logging a warning for each.
func ValidateCatalog(catalog []CatalogTool, logger *common.Logger) []CatalogTool {
	seen := make(map[string]bool, len(catalog))
	valid := make([]CatalogTool, 0, len(catalog))
	for _, ct := range catalog {
		if err := ValidateCatalogTool(ct); err != nil {
			if logger != nil {
				logger.Warn().Str("error", err.Error()).Msg("skipping invalid catalog tool")
			}
			continue
		}
		if seen[ct.Name] {
			if logger != nil {
				logger.Warn().Str("name", ct.Name).Msg("skipping duplicate catalog tool")
			}
			continue
		}
		seen[ct.Name] = true
		valid = append(valid, ct)
	}
	return valid
}

// BuildMCPTool converts a CatalogTool into an mcp.Tool with the matching input schema.
func BuildMCPTool(ct CatalogTool) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(ct.Description)}
	for _, p := range ct.Params {
		opts = append(opts, buildParamOption(p))
	}
	return mcp.NewTool(ct.Name, opts...)
}

func buildParamOption(p CatalogParam) mcp.ToolOption {
	var opts []mcp.PropertyOption
	if p.Description != "" {
		opts = append(opts, mcp.Description(p.Description))
	}
	if p.Required {
		opts = append(opts, mcp.Required())
	}

	switch p.Type {
	case "number":
		return mcp.WithNumber(p.Name, opts...)
	case "boolean":
		return mcp.WithBoolean(p.Name, opts...)
	default:
		return mcp.WithString(p.Name, opts...)
	}
}

// ParamNames returns the parameter names of a tool, required ones marked with "*".
func (ct CatalogTool) ParamNames() []string {
	names := make([]string, 0, len(ct.Params))
	for _, p := range ct.Params {
		if p.Required {
			names = append(names, p.Name+"*")
			continue
		}
		names = append(names, p.Name)
	}
	return names
}
