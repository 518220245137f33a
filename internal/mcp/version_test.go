package mcp

import (
	"encoding/json"
	"testing"

	"github.com/bobmcallan/etf-portal/internal/common"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

func TestVersionToolHandler(t *testing.T) {
	handler := VersionToolHandler(func() int { return 42 })

	result, err := handler(t.Context(), mcpgo.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %v", result.Content)
	}

	var info versionInfo
	text := result.Content[0].(mcpgo.TextContent).Text
	if err := json.Unmarshal([]byte(text), &info); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if info.Version != common.GetVersion() {
		t.Errorf("expected version %s, got %s", common.GetVersion(), info.Version)
	}
	if info.Tickers != 42 {
		t.Errorf("expected 42 tickers, got %d", info.Tickers)
	}
}

func TestVersionToolHandler_NilCounter(t *testing.T) {
	handler := VersionToolHandler(nil)

	result, err := handler(t.Context(), mcpgo.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatal("expected success without a ticker counter")
	}
}
