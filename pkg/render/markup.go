package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/uca-platform/uca-api/internal/models"
)

// MarkupRenderer serializes a chart specification into a self-contained
// interactive HTML document. The document embeds the specification as JSON
// and draws it client-side, so it opens in any browser without a server or
// external assets. This is the fallback representation; it never rasterizes.
type MarkupRenderer struct {
	tmpl *template.Template
}

// NewMarkupRenderer constructs a markup renderer.
func NewMarkupRenderer() *MarkupRenderer {
	return &MarkupRenderer{tmpl: template.Must(template.New("chart").Parse(markupTemplate))}
}

// RenderToMarkup renders the specification to a standalone HTML document.
func (r *MarkupRenderer) RenderToMarkup(ctx context.Context, spec models.ChartSpecification) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("marshal chart specification: %w", err)
	}
	buf := &bytes.Buffer{}
	data := struct {
		Title string
		Spec  template.JS
	}{
		Title: spec.Title,
		Spec:  template.JS(payload),
	}
	if err := r.tmpl.Execute(buf, data); err != nil {
		return nil, fmt.Errorf("render chart markup: %w", err)
	}
	return buf.Bytes(), nil
}

const markupTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 24px; color: #333; }
h1 { font-size: 20px; text-align: center; }
#legend { text-align: center; margin-bottom: 12px; }
#legend span { display: inline-block; margin: 0 8px; font-size: 12px; }
#legend i { display: inline-block; width: 12px; height: 12px; margin-right: 4px; vertical-align: middle; }
canvas { display: block; margin: 0 auto; border: 1px solid #ccc; background: #fff; }
#axis { text-align: center; font-size: 12px; margin-top: 8px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div id="legend"></div>
<canvas id="chart" width="1200" height="600"></canvas>
<div id="axis"></div>
<script>
const spec = {{.Spec}};
const canvas = document.getElementById("chart");
const ctx = canvas.getContext("2d");
const pad = {top: 24, right: 24, bottom: 60, left: 52};
const plotW = canvas.width - pad.left - pad.right;
const plotH = canvas.height - pad.top - pad.bottom;
const yMax = spec.y_max && spec.y_max > 0 ? spec.y_max : 100;

const legend = document.getElementById("legend");
spec.series.forEach(function (s) {
  const item = document.createElement("span");
  const swatch = document.createElement("i");
  swatch.style.background = s.color;
  item.appendChild(swatch);
  item.appendChild(document.createTextNode(s.name));
  legend.appendChild(item);
});

ctx.strokeStyle = "#999";
for (let g = 0; g <= 5; g++) {
  const y = pad.top + plotH - (plotH * g) / 5;
  ctx.globalAlpha = g === 0 ? 1 : 0.25;
  ctx.beginPath();
  ctx.moveTo(pad.left, y);
  ctx.lineTo(pad.left + plotW, y);
  ctx.stroke();
  ctx.globalAlpha = 1;
  ctx.fillStyle = "#666";
  ctx.font = "11px sans-serif";
  ctx.textAlign = "right";
  ctx.fillText(((yMax * g) / 5).toFixed(0), pad.left - 6, y + 4);
}

const groups = spec.labels.length;
const seriesCount = spec.series.length;
const groupW = plotW / groups;
const barW = Math.min(48, (groupW * 0.8) / seriesCount);

spec.labels.forEach(function (label, gi) {
  const groupX = pad.left + gi * groupW + (groupW - barW * seriesCount) / 2;
  spec.series.forEach(function (s, si) {
    const v = s.values[gi] || 0;
    const h = (v / yMax) * plotH;
    ctx.fillStyle = s.color;
    ctx.globalAlpha = 0.85;
    ctx.fillRect(groupX + si * barW, pad.top + plotH - h, barW - 2, h);
    ctx.globalAlpha = 1;
    ctx.fillStyle = "#000";
    ctx.font = "10px sans-serif";
    ctx.textAlign = "center";
    if (h > 14) {
      ctx.fillText(v.toFixed(1), groupX + si * barW + barW / 2, pad.top + plotH - h + 12);
    }
  });
  ctx.fillStyle = "#333";
  ctx.font = "12px sans-serif";
  ctx.textAlign = "center";
  ctx.fillText(label, pad.left + gi * groupW + groupW / 2, canvas.height - pad.bottom + 20);
});

document.getElementById("axis").textContent = spec.x_axis_title + " / " + spec.y_axis_title;
</script>
</body>
</html>
`
