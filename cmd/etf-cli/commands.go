package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bobmcallan/etf-portal/internal/chart"
	"github.com/bobmcallan/etf-portal/internal/common"
	"github.com/bobmcallan/etf-portal/internal/config"
	"github.com/bobmcallan/etf-portal/internal/dataset"
	"github.com/bobmcallan/etf-portal/internal/mcp"
	"github.com/bobmcallan/etf-portal/internal/models"
	"github.com/bobmcallan/etf-portal/internal/portfolio"
	"github.com/google/subcommands"
)

var (
	configFile = flag.String("config", "", "Path to config file")
	rawOutput  = flag.Bool("raw", false, "Print markdown without terminal styling")
)

// openCatalog loads configuration and the catalog for a command run.
func openCatalog(ctx context.Context) (*dataset.Catalog, error) {
	path := *configFile
	if path == "" {
		path = config.Discover("etf-portal")
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Logging.Outputs = []string{"file"}
	logger := common.NewLoggerFromConfig(cfg.Logging)

	ctx, cancel := context.WithTimeout(ctx, cfg.Data.Timeout()*3)
	defer cancel()
	catalog, err := dataset.Open(ctx, cfg.Data, logger)
	if err != nil && catalog.Len() == 0 {
		return nil, err
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	return catalog, nil
}

type catalogCmd struct{}

func (*catalogCmd) Name() string     { return "catalog" }
func (*catalogCmd) Synopsis() string { return "list the ETFs in the catalog" }
func (*catalogCmd) Usage() string {
	return `catalog

  Lists every ticker with its name and breakdown categories.
`
}
func (*catalogCmd) SetFlags(*flag.FlagSet) {}

func (*catalogCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	catalog, err := openCatalog(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		return subcommands.ExitFailure
	}

	records := catalog.Records()
	rows := make([]models.TickerSummary, 0, len(records))
	for _, t := range catalog.Tickers() {
		rows = append(rows, records[t].Summary())
	}
	return printMarkdown(mcp.FormatCatalog(rows))
}

type seriesCmd struct {
	last int
}

func (*seriesCmd) Name() string     { return "series" }
func (*seriesCmd) Synopsis() string { return "display one ETF's NAV and volume history" }
func (*seriesCmd) Usage() string {
	return `series [-n days] <ticker>

  Fetches the ticker's series and prints it as a table.
`
}

func (c *seriesCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.last, "n", 0, "only show the most recent N days")
}

func (c *seriesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "exactly one ticker must be provided")
		return subcommands.ExitUsageError
	}
	ticker := models.NormalizeTicker(f.Arg(0))

	catalog, err := openCatalog(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		return subcommands.ExitFailure
	}

	res, err := catalog.FetchSeries(ctx, ticker)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error fetching series: %v\n", err)
		return subcommands.ExitFailure
	}
	if res == dataset.FetchUnknownTicker {
		fmt.Fprintf(os.Stderr, "unknown ticker %s\n", ticker)
		return subcommands.ExitFailure
	}

	rec, _ := catalog.Get(ticker)
	return printMarkdown(formatSeries(rec, c.last))
}

type averageCmd struct {
	chartPath string
	last      int
}

func (*averageCmd) Name() string     { return "average" }
func (*averageCmd) Synopsis() string { return "average the NAV of several ETFs day by day" }
func (*averageCmd) Usage() string {
	return `average [-chart out.svg] [-n days] <ticker>...

  Selects the tickers and prints the averaged NAV series.
`
}

func (c *averageCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.chartPath, "chart", "", "write the averaged series chart to this .svg or .png file")
	f.IntVar(&c.last, "n", 0, "only show the most recent N days")
}

func (c *averageCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "at least one ticker must be provided")
		return subcommands.ExitUsageError
	}

	catalog, err := openCatalog(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading catalog: %v\n", err)
		return subcommands.ExitFailure
	}

	m := portfolio.NewManager(catalog, nil)
	for _, t := range f.Args() {
		out, err := m.Select(ctx, t)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error selecting %s: %v\n", t, err)
			return subcommands.ExitFailure
		}
		if out == portfolio.OutcomeUnknownTicker {
			fmt.Fprintf(os.Stderr, "unknown ticker %s\n", models.NormalizeTicker(t))
			return subcommands.ExitFailure
		}
	}

	if c.chartPath != "" {
		if err := writeChart(c.chartPath, m); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing chart: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	md := mcp.FormatPortfolio(m.View()) + "\n" + mcp.FormatAverage(m.Average(), c.last)
	return printMarkdown(md)
}

func writeChart(path string, m *portfolio.Manager) error {
	opts := chart.Options{
		Title:  "Average NAV: " + strings.Join(m.Selection(), ", "),
		Format: chart.FormatSVG,
	}
	if strings.HasSuffix(strings.ToLower(path), ".png") {
		opts.Format = chart.FormatPNG
	}
	body, err := chart.Render(m.Average(), opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, body, 0o644)
}

// formatSeries formats a record's series as a markdown table.
func formatSeries(rec *models.TickerRecord, last int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s", rec.Ticker))
	if rec.DisplayName != "" {
		sb.WriteString(" - " + rec.DisplayName)
	}
	sb.WriteString("\n\n")

	n := rec.Series.Len()
	if n == 0 {
		sb.WriteString("No series data.\n")
		return sb.String()
	}
	start := 0
	if last > 0 && last < n {
		start = n - last
	}

	sb.WriteString("| Date | NAV | Volume |\n")
	sb.WriteString("|------|-----|--------|\n")
	for i := start; i < n; i++ {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
			rec.Series.Dates[i].Format(time.DateOnly), common.FormatNAV(rec.Series.NAV[i]), rec.Series.Volume[i].String()))
	}
	return sb.String()
}
