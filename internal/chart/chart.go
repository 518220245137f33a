// Package chart renders the averaged portfolio series as a line chart.
package chart

import (
	"errors"
	"fmt"

	"github.com/bobmcallan/etf-portal/internal/models"
	charts "github.com/vicanso/go-charts/v2"
)

// ErrNoData is returned when there are no points to draw.
var ErrNoData = errors.New("no data to chart")

// Output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// Options controls chart rendering. Zero values use the defaults.
type Options struct {
	Title  string
	Width  int
	Height int
	Format string
}

const (
	defaultWidth  = 900
	defaultHeight = 420
	defaultTitle  = "Average NAV"
)

// ContentType returns the MIME type for the options' output format.
func (o Options) ContentType() string {
	if o.Format == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Render draws points as a line chart and returns the encoded image.
func Render(points []models.AveragedPoint, opts Options) ([]byte, error) {
	if len(points) == 0 {
		return nil, ErrNoData
	}
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}
	if opts.Title == "" {
		opts.Title = defaultTitle
	}

	labels := make([]string, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		labels[i] = p.Date.Format("01/02/06")
		values[i] = p.Average.InexactFloat64()
	}

	yMin, yMax := yRange(values)

	renderOpts := []charts.OptionFunc{
		charts.TitleTextOptionFunc(opts.Title),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        labels,
			BoundaryGap: charts.FalseFlag(),
			SplitNumber: splitNumber(len(labels)),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(opts.Width),
		charts.HeightOptionFunc(opts.Height),
	}
	if opts.Format == FormatPNG {
		renderOpts = append(renderOpts, charts.PNGTypeOption())
	} else {
		renderOpts = append(renderOpts, charts.SVGTypeOption())
	}

	painter, err := charts.LineRender([][]float64{values}, renderOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	buf, err := painter.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}
	return buf, nil
}

// yRange pads the value range by 5% so the line does not touch the frame.
func yRange(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	padding := (hi - lo) * 0.05
	if padding == 0 {
		padding = hi * 0.05
	}
	if padding == 0 {
		padding = 1
	}
	return lo - padding, hi + padding
}

func splitNumber(n int) int {
	if n > 30 {
		return 6
	}
	split := n / 3
	if split < 3 {
		split = 3
	}
	return split
}
