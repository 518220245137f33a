package server

import (
	"context"
	"net/http/httptest"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
)

// newBrowser starts headless Chrome. The test is skipped when no browser is
// installed or ETF_UI_TESTS is unset (the dashboard loads Alpine from a CDN).
func newBrowser(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()

	if os.Getenv("ETF_UI_TESTS") == "" {
		t.Skip("set ETF_UI_TESTS=1 to run browser tests")
	}
	found := false
	for _, name := range []string{"google-chrome", "chromium", "chromium-browser", "headless-shell"} {
		if _, err := exec.LookPath(name); err == nil {
			found = true
			break
		}
	}
	if !found {
		t.Skip("no Chrome binary on PATH")
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, ctxCancel := chromedp.NewContext(allocCtx)
	ctx, timeoutCancel := context.WithTimeout(ctx, 30*time.Second)

	cancel := func() {
		timeoutCancel()
		ctxCancel()
		allocCancel()
	}
	return ctx, cancel
}

func TestUIDashboardSelectDrawsChart(t *testing.T) {
	ctx, cancel := newBrowser(t)
	defer cancel()

	ts := httptest.NewServer(New(newTestApp(t)).Handler())
	defer ts.Close()

	var count, src string
	err := chromedp.Run(ctx,
		chromedp.Navigate(ts.URL+"/dashboard"),
		chromedp.WaitVisible(`button[data-ticker="SSO"]`, chromedp.ByQuery),
		chromedp.Click(`button[data-ticker="SSO"]`, chromedp.ByQuery),
		chromedp.WaitVisible(`#chart`, chromedp.ByQuery),
		chromedp.Text(`.toolbar span`, &count, chromedp.ByQuery),
		chromedp.AttributeValue(`#chart`, "src", &src, nil, chromedp.ByQuery),
	)
	if err != nil {
		t.Fatalf("dashboard interaction failed: %v", err)
	}

	if !strings.HasPrefix(count, "1 selected") {
		t.Errorf("expected 1 selected, got %q", count)
	}
	if !strings.Contains(src, "/api/portfolio/chart.svg") {
		t.Errorf("expected chart image source, got %q", src)
	}
}
