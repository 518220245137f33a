package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bobmcallan/etf-portal/internal/dataset"
	"github.com/bobmcallan/etf-portal/internal/models"
	"github.com/bobmcallan/etf-portal/internal/portfolio"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

// errorResult creates an MCP error result.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

func jsonResult(v interface{}) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("Error: failed to encode result: %v", err))
	}
	return textResult(string(out))
}

func requireTicker(request mcp.CallToolRequest) (string, *mcp.CallToolResult) {
	raw, err := request.RequireString("ticker")
	if err != nil {
		return "", errorResult("Error: ticker parameter is required")
	}
	ticker := models.NormalizeTicker(raw)
	if ticker == "" {
		return "", errorResult("Error: ticker parameter is required")
	}
	return ticker, nil
}

// catalogRows returns the catalog listing in ticker order.
func catalogRows(c *dataset.Catalog) []models.TickerSummary {
	records := c.Records()
	tickers := c.Tickers()
	rows := make([]models.TickerSummary, 0, len(tickers))
	for _, t := range tickers {
		rows = append(rows, records[t].Summary())
	}
	return rows
}

func handleListETFs(m *portfolio.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return textResult(FormatCatalog(catalogRows(m.Catalog()))), nil
	}
}

func handleGetETF(m *portfolio.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, errRes := requireTicker(request)
		if errRes != nil {
			return errRes, nil
		}

		if request.GetBool("load", false) {
			res, err := m.Catalog().FetchSeries(ctx, ticker)
			if err != nil {
				return errorResult(fmt.Sprintf("Error: %v", err)), nil
			}
			if res == dataset.FetchUnknownTicker {
				return errorResult("Error: unknown ticker " + ticker), nil
			}
		}

		rec, ok := m.Catalog().Get(ticker)
		if !ok {
			return errorResult("Error: unknown ticker " + ticker), nil
		}
		return jsonResult(rec), nil
	}
}

func handleSelect(m *portfolio.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, errRes := requireTicker(request)
		if errRes != nil {
			return errRes, nil
		}

		out, err := m.Select(ctx, ticker)
		if err != nil {
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		if out == portfolio.OutcomeUnknownTicker {
			return errorResult("Error: unknown ticker " + ticker), nil
		}
		return textResult(fmt.Sprintf("%s: %s\n\n%s", ticker, out, FormatPortfolio(m.View()))), nil
	}
}

func handleDeselect(m *portfolio.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, errRes := requireTicker(request)
		if errRes != nil {
			return errRes, nil
		}
		out := m.Deselect(ticker)
		return textResult(fmt.Sprintf("%s: %s\n\n%s", ticker, out, FormatPortfolio(m.View()))), nil
	}
}

func handleReset(m *portfolio.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		m.Reset()
		return textResult(FormatPortfolio(m.View())), nil
	}
}

func handleGetPortfolio(m *portfolio.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return textResult(FormatPortfolio(m.View())), nil
	}
}

func handleGetAverage(m *portfolio.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := request.GetInt("limit", 0)
		if limit < 0 {
			return errorResult("Error: limit must not be negative"), nil
		}
		return textResult(FormatAverage(m.Average(), limit)), nil
	}
}
