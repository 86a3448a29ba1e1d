package chart

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klytics/santekit/internal/claims"
	"github.com/klytics/santekit/internal/stats"
)

func monthly() *stats.Chart {
	return &stats.Chart{
		Kind:   stats.ChartGroupedBar,
		Title:  "Mensuel",
		Labels: []string{"Janvier 2024", "Février 2024", "Mars 2024"},
		Series: []stats.Series{
			{Name: "Couvert", Values: []float64{16000, 24000, 12000}, Color: stats.ColorGreen},
			{Name: "Rejets", Values: []float64{0, 2000, 0}, Color: stats.ColorOrange},
		},
		File: stats.FileMonthlyChart,
	}
}

func TestWriteKinds(t *testing.T) {
	tests := []struct {
		name  string
		chart *stats.Chart
	}{
		{"grouped bar", monthly()},
		{"bar", &stats.Chart{Kind: stats.ChartBar, Labels: []string{"ASSURÉ PRINCIPAL", "CONJOINT", "ENFANT"},
			Series: []stats.Series{{Name: "Montant", Values: []float64{40000, 8000, 12000}}}}},
		{"line", &stats.Chart{Kind: stats.ChartLine, Labels: []string{"Janvier 2024", "Février 2024"},
			Series: []stats.Series{{Name: "Adherent", Values: []float64{2, 2}}, {Name: "Total", Values: []float64{4, 5}}}}},
		{"single point line", &stats.Chart{Kind: stats.ChartLine, Labels: []string{"Janvier 2024"},
			Series: []stats.Series{{Name: "Total", Values: []float64{4}}}}},
		{"all zero bar", &stats.Chart{Kind: stats.ChartBar, Labels: []string{"A", "B"},
			Series: []stats.Series{{Values: []float64{0, 0}}}}},
		{"pie", &stats.Chart{Kind: stats.ChartPie, Labels: []string{"PHARMACIE (57.1%)", "ANALYSES (42.9%)"},
			Series: []stats.Series{{Values: []float64{32000, 24000}}}}},
	}
	r := New(600)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := r.Write(tt.chart, &buf); err != nil {
				t.Fatalf("Write: %v", err)
			}
			img, err := png.Decode(&buf)
			if err != nil {
				t.Fatalf("not a PNG: %v", err)
			}
			want := int(600 * tt.chart.Kind.Aspect())
			if got := img.Bounds().Dy(); got != want {
				t.Errorf("height = %d, want %d", got, want)
			}
		})
	}
}

func TestRenderChartWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), stats.FileMonthlyChart)
	if err := New(0).RenderChart(monthly(), path); err != nil {
		t.Fatalf("RenderChart: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("empty image file")
	}
}

func TestValidate(t *testing.T) {
	bad := monthly()
	bad.Series[1].Values = bad.Series[1].Values[:2]
	if err := Validate(bad); !errors.Is(err, ErrInvalidChart) {
		t.Errorf("mismatched series: err = %v", err)
	}
	if err := Validate(&stats.Chart{Kind: stats.ChartPie}); !errors.Is(err, ErrInvalidChart) {
		t.Errorf("empty chart: err = %v", err)
	}
	if err := Validate(nil); !errors.Is(err, ErrInvalidChart) {
		t.Errorf("nil chart: err = %v", err)
	}
	if err := New(0).Write(&stats.Chart{Kind: "radar", Labels: []string{"a"}, Series: []stats.Series{{Values: []float64{1}}}}, &bytes.Buffer{}); !errors.Is(err, ErrInvalidChart) {
		t.Errorf("unknown kind: err = %v", err)
	}
}

func TestBarWidth(t *testing.T) {
	if w := barWidth(1200, 2); w != 120 {
		t.Errorf("few bars: width = %d, want 120", w)
	}
	if w := barWidth(1200, 200); w != 8 {
		t.Errorf("many bars: width = %d, want 8", w)
	}
}

func TestSingleMonthHeadcountChart(t *testing.T) {
	sec, err := stats.HeadcountSection([]claims.HeadcountRecord{{
		Month: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), Principal: 2, Spouse: 1, Child: 3, Total: 6,
	}})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), sec.Chart.File)
	if err := New(0).RenderChart(sec.Chart, path); err != nil {
		t.Fatalf("one month of headcount: %v", err)
	}

	g := lineChart(sec.Chart, 600, 300)
	first, last := g.XAxis.Ticks[0], g.XAxis.Ticks[len(g.XAxis.Ticks)-1]
	if first.Value != -0.5 || last.Value != 0.5 || first.Label != "" || last.Label != "" {
		t.Errorf("boundary ticks = %+v, %+v", first, last)
	}
}

func TestGroupedBarLegend(t *testing.T) {
	if els := barChart(monthly(), 600, 300).Elements; len(els) != 1 {
		t.Errorf("grouped bars have %d elements, want a legend", len(els))
	}
	single := &stats.Chart{Kind: stats.ChartBar, Labels: []string{"A"}, Series: []stats.Series{{Name: "Montant", Values: []float64{1}}}}
	if els := barChart(single, 600, 300).Elements; len(els) != 0 {
		t.Errorf("single series bars have %d elements, want none", len(els))
	}
}
