package mcp

import (
	"context"
	"encoding/json"

	"github.com/bobmcallan/etf-portal/internal/common"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// versionInfo holds the build fields reported by get_version.
type versionInfo struct {
	Version string `json:"version"`
	Build   string `json:"build"`
	Commit  string `json:"commit"`
	Tickers int    `json:"tickers"`
}

// VersionTool returns the mcp.Tool definition for get_version.
func VersionTool() mcp.Tool {
	return mcp.NewTool(ToolVersion,
		mcp.WithDescription("Get the ETF portal version and catalog size. Use this to verify connectivity."),
	)
}

// VersionToolHandler reports build info and the number of catalog tickers.
func VersionToolHandler(tickers func() int) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		info := versionInfo{
			Version: common.GetVersion(),
			Build:   common.GetBuild(),
			Commit:  common.GetGitCommit(),
		}
		if tickers != nil {
			info.Tickers = tickers()
		}

		out, err := json.Marshal(info)
		if err != nil {
			return errorResult("failed to marshal version info"), nil
		}
		return textResult(string(out)), nil
	}
}
