// Package chart draws the report charts as PNG files with go-chart.
package chart

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/klytics/santekit/internal/normalize"
	"github.com/klytics/santekit/internal/stats"
)

// DefaultWidth is the image width in pixels. Heights follow the chart
// kind's aspect ratio so the image matches the space the layout reserves.
const DefaultWidth = 1200

// ErrInvalidChart is returned for charts whose series do not line up with
// their labels, or that have nothing to draw.
var ErrInvalidChart = errors.New("invalid chart data")

// Renderer draws stats charts.
type Renderer struct {
	Width int
}

// New returns a renderer drawing at width pixels, DefaultWidth when 0.
func New(width int) *Renderer {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Renderer{Width: width}
}

// RenderChart writes c as a PNG at path.
func (r *Renderer) RenderChart(c *stats.Chart, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	if err := r.Write(c, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write renders c as PNG to w.
func (r *Renderer) Write(c *stats.Chart, w io.Writer) error {
	if err := Validate(c); err != nil {
		return err
	}
	width := r.Width
	if width <= 0 {
		width = DefaultWidth
	}
	height := int(float64(width) * c.Kind.Aspect())

	var err error
	switch c.Kind {
	case stats.ChartLine:
		err = lineChart(c, width, height).Render(gochart.PNG, w)
	case stats.ChartBar, stats.ChartGroupedBar:
		err = barChart(c, width, height).Render(gochart.PNG, w)
	case stats.ChartPie:
		err = pieChart(c, width, height).Render(gochart.PNG, w)
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidChart, c.Kind)
	}
	if err != nil {
		return fmt.Errorf("could not draw %s: %w", c.File, err)
	}
	return nil
}

// Validate checks that every series has one value per label.
func Validate(c *stats.Chart) error {
	if c == nil || len(c.Labels) == 0 || len(c.Series) == 0 {
		return fmt.Errorf("%w: nothing to draw", ErrInvalidChart)
	}
	for _, s := range c.Series {
		if len(s.Values) != len(c.Labels) {
			return fmt.Errorf("%w: series %q has %d values for %d labels", ErrInvalidChart, s.Name, len(s.Values), len(c.Labels))
		}
	}
	return nil
}

func color(hex string, i int) drawing.Color {
	if hex == "" {
		hex = stats.Palette[i%len(stats.Palette)]
	}
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

func formatValue(v interface{}) string {
	if f, ok := v.(float64); ok {
		return normalize.FormatAmount(f)
	}
	return fmt.Sprint(v)
}

// valueRange spans 0 to the largest value plus headroom. go-chart refuses
// zero-height ranges, so an all-zero chart still gets a unit range.
func valueRange(c *stats.Chart) *gochart.ContinuousRange {
	top := 0.0
	for _, s := range c.Series {
		for _, v := range s.Values {
			if v > top {
				top = v
			}
		}
	}
	if top <= 0 {
		top = 1
	}
	return &gochart.ContinuousRange{Min: 0, Max: top * 1.1}
}

// lineChart puts label i at x = i. go-chart takes the x range from the
// ticks, so blank ticks half a step outside the labels keep the range open
// when there is a single month.
func lineChart(c *stats.Chart, width, height int) *gochart.Chart {
	n := len(c.Labels)
	ticks := []gochart.Tick{{Value: -0.5}}
	xs := make([]float64, n)
	for i, l := range c.Labels {
		xs[i] = float64(i)
		ticks = append(ticks, gochart.Tick{Value: float64(i), Label: l})
	}
	ticks = append(ticks, gochart.Tick{Value: float64(n) - 0.5})

	graph := &gochart.Chart{
		Title:      c.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		XAxis: gochart.XAxis{
			Name:      c.XLabel,
			Ticks:     ticks,
			Range:     &gochart.ContinuousRange{Min: -0.5, Max: float64(n) - 0.5},
			TickStyle: gochart.Style{TextRotationDegrees: 45},
		},
		YAxis: gochart.YAxis{
			Name:           c.YLabel,
			Range:          valueRange(c),
			ValueFormatter: formatValue,
		},
	}
	for i, s := range c.Series {
		col := color(s.Color, i)
		graph.Series = append(graph.Series, gochart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: s.Values,
			Style: gochart.Style{
				StrokeColor: col,
				StrokeWidth: 3,
				DotColor:    col,
				DotWidth:    4,
			},
		})
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(graph)}
	return graph
}

// barChart draws one bar per label and series. Grouped bars are laid side
// by side, colored by series, with the group label on the first bar and a
// legend naming the series.
func barChart(c *stats.Chart, width, height int) *gochart.BarChart {
	bc := &gochart.BarChart{
		Title:      c.Title,
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		YAxis: gochart.YAxis{
			Name:           c.YLabel,
			Range:          valueRange(c),
			ValueFormatter: formatValue,
		},
	}
	n := len(c.Labels) * len(c.Series)
	bc.BarWidth = barWidth(width, n)
	bc.BarSpacing = bc.BarWidth / 3
	for i, label := range c.Labels {
		for j, s := range c.Series {
			l := ""
			if j == 0 {
				l = normalize.ShortenName(label, normalize.DisplayWords, normalize.DisplayChars)
			}
			col := color(s.Color, j)
			bc.Bars = append(bc.Bars, gochart.Value{
				Label: l,
				Value: s.Values[i],
				Style: gochart.Style{FillColor: col, StrokeColor: col},
			})
		}
	}
	if len(c.Series) > 1 {
		bc.Elements = []gochart.Renderable{barLegend(c)}
	}
	return bc
}

// barLegend reuses go-chart's line chart legend, which only reads series
// names and styles, with one thick swatch per bar series.
func barLegend(c *stats.Chart) gochart.Renderable {
	keys := &gochart.Chart{}
	for i, s := range c.Series {
		keys.Series = append(keys.Series, gochart.ContinuousSeries{
			Name:  s.Name,
			Style: gochart.Style{StrokeColor: color(s.Color, i), StrokeWidth: 8},
		})
	}
	return gochart.Legend(keys)
}

func barWidth(width, bars int) int {
	w := (width - 200) / (bars + bars/3 + 1)
	switch {
	case w < 8:
		return 8
	case w > 120:
		return 120
	}
	return w
}

func pieChart(c *stats.Chart, width, height int) *gochart.PieChart {
	pc := &gochart.PieChart{
		Title:  c.Title,
		Width:  width,
		Height: height,
	}
	for i, label := range c.Labels {
		col := color("", i)
		pc.Values = append(pc.Values, gochart.Value{
			Label: label,
			Value: c.Series[0].Values[i],
			Style: gochart.Style{FillColor: col, StrokeColor: drawing.ColorWhite},
		})
	}
	return pc
}
