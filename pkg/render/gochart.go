package render

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/uca-platform/uca-api/internal/models"
	appErrors "github.com/uca-platform/uca-api/pkg/errors"
)

const (
	rasterHeight   = 650
	rasterBarWidth = 46
	rasterMinWidth = 900
)

// RasterRenderer renders chart specifications to PNG using go-chart. A probe
// render runs once on first use; when it fails (e.g. font initialisation in a
// stripped container) every call reports ErrRenderUnavailable so the export
// pipeline can fall back to markup.
type RasterRenderer struct {
	probeOnce sync.Once
	probeErr  error
}

// NewRasterRenderer constructs a raster renderer.
func NewRasterRenderer() *RasterRenderer {
	return &RasterRenderer{}
}

// Available reports whether the raster engine can produce images.
func (r *RasterRenderer) Available() bool {
	r.probe()
	return r.probeErr == nil
}

// RenderToImage renders the specification to PNG bytes.
func (r *RasterRenderer) RenderToImage(ctx context.Context, spec models.ChartSpecification) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.probe()
	if r.probeErr != nil {
		return nil, appErrors.Wrap(r.probeErr, appErrors.ErrRenderUnavailable.Code, appErrors.ErrRenderUnavailable.Status, "raster engine probe failed")
	}
	if len(spec.Series) == 0 || len(spec.Labels) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "chart specification has no data")
	}

	bars := flattenBars(spec)
	graph := chart.BarChart{
		Title:    spec.Title,
		Height:   rasterHeight,
		Width:    chartWidth(len(bars)),
		BarWidth: rasterBarWidth,
		Background: chart.Style{
			Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.Style{FontSize: 9.0},
		YAxis: chart.YAxis{
			Name:  spec.YAxisTitle,
			Range: yRange(spec),
		},
		Bars: bars,
	}

	buf := &bytes.Buffer{}
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrRenderUnavailable.Code, appErrors.ErrRenderUnavailable.Status, "raster render failed")
	}
	return buf.Bytes(), nil
}

func (r *RasterRenderer) probe() {
	r.probeOnce.Do(func() {
		probe := chart.BarChart{
			Height:   128,
			Width:    256,
			BarWidth: 20,
			Bars:     []chart.Value{{Value: 1, Label: "p"}},
		}
		r.probeErr = probe.Render(chart.PNG, &bytes.Buffer{})
	})
}

// flattenBars lays the grouped series out side by side: for every section
// label, one bar per series, labelled "<label> · <series>". Single-series
// charts keep the plain section label.
func flattenBars(spec models.ChartSpecification) []chart.Value {
	bars := make([]chart.Value, 0, len(spec.Labels)*len(spec.Series))
	for i, label := range spec.Labels {
		for _, series := range spec.Series {
			if i >= len(series.Values) {
				continue
			}
			barLabel := label
			if len(spec.Series) > 1 {
				barLabel = fmt.Sprintf("%s · %s", shortLabel(label), series.Name)
			}
			color := drawing.ColorFromHex(stripHash(series.Color))
			bars = append(bars, chart.Value{
				Value: series.Values[i],
				Label: barLabel,
				Style: chart.Style{
					FillColor:   color,
					StrokeColor: color.WithAlpha(255),
					StrokeWidth: 1,
				},
			})
		}
	}
	return bars
}

func yRange(spec models.ChartSpecification) chart.Range {
	if spec.YMax > 0 {
		return &chart.ContinuousRange{Min: 0, Max: spec.YMax}
	}
	return &chart.ContinuousRange{Min: 0, Max: 100}
}

func chartWidth(barCount int) int {
	width := barCount * (rasterBarWidth + 18)
	if width < rasterMinWidth {
		return rasterMinWidth
	}
	return width
}

// shortLabel compresses "Section 3" to "S3" so grouped bar labels stay legible.
func shortLabel(label string) string {
	const prefix = "Section "
	if len(label) > len(prefix) && label[:len(prefix)] == prefix {
		return "S" + label[len(prefix):]
	}
	return label
}

func stripHash(hex string) string {
	if len(hex) > 0 && hex[0] == '#' {
		return hex[1:]
	}
	return hex
}
