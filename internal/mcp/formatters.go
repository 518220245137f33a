package mcp

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/etf-portal/internal/common"
	"github.com/bobmcallan/etf-portal/internal/models"
	"github.com/bobmcallan/etf-portal/internal/portfolio"
)

// FormatCatalog formats the catalog listing as markdown.
func FormatCatalog(rows []models.TickerSummary) string {
	var sb strings.Builder

	sb.WriteString("# ETF Catalog\n\n")
	if len(rows) == 0 {
		sb.WriteString("No tickers loaded.\n")
		return sb.String()
	}

	sb.WriteString("| Ticker | Name | Categories | Series |\n")
	sb.WriteString("|--------|------|------------|--------|\n")
	for _, r := range rows {
		series := "-"
		if r.SeriesLoaded {
			series = fmt.Sprintf("%d days", r.Points)
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			r.Ticker, escapeCell(r.Name), strings.Join(r.Categories, ", "), series))
	}
	sb.WriteString(fmt.Sprintf("\n%d tickers\n", len(rows)))
	return sb.String()
}

// FormatPortfolio formats the selection cards and the averaged series summary as markdown.
func FormatPortfolio(view portfolio.View) string {
	var sb strings.Builder

	sb.WriteString("# Portfolio\n\n")
	if len(view.Selection) == 0 {
		sb.WriteString("Nothing selected.\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("**Selected:** %s\n\n", strings.Join(view.Selection, ", ")))
	sb.WriteString("| Ticker | Name | Days | First | Last | Last NAV |\n")
	sb.WriteString("|--------|------|------|-------|------|----------|\n")
	for _, c := range view.Cards {
		sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %s | %s |\n",
			c.Ticker, escapeCell(c.Name), c.Points, c.FirstDate, c.LastDate, common.FormatNAV(c.LastNAV)))
	}

	sb.WriteString("\n## Average NAV\n\n")
	n := len(view.Average)
	if n == 0 {
		sb.WriteString("No series data for the current selection.\n")
		return sb.String()
	}
	first, last := view.Average[0], view.Average[n-1]
	sb.WriteString(fmt.Sprintf("**Days:** %d (%s to %s)\n", n, models.DayKey(first.Date), models.DayKey(last.Date)))
	sb.WriteString(fmt.Sprintf("**Latest:** %s\n", common.FormatNAV(last.Average)))
	if !first.Average.IsZero() {
		change := last.Average.Sub(first.Average).Div(first.Average).Shift(2)
		sb.WriteString(fmt.Sprintf("**Change:** %s\n", common.FormatSignedPct(change)))
	}
	return sb.String()
}

// FormatAverage formats the averaged series as a markdown table. A positive
// limit keeps only the most recent days.
func FormatAverage(points []models.AveragedPoint, limit int) string {
	var sb strings.Builder

	sb.WriteString("## Average NAV\n\n")
	if len(points) == 0 {
		sb.WriteString("No series data for the current selection.\n")
		return sb.String()
	}
	if limit > 0 && limit < len(points) {
		points = points[len(points)-limit:]
	}

	sb.WriteString("| Date | Average NAV |\n")
	sb.WriteString("|------|-------------|\n")
	for _, p := range points {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", models.DayKey(p.Date), p.Average.StringFixed(4)))
	}
	return sb.String()
}

// escapeCell keeps free text from breaking a markdown table row.
func escapeCell(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
