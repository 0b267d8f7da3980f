// Package render turns abstract chart specifications into persistable
// artifact bytes. The raster renderer is the primary engine; the markup
// renderer produces the self-contained fallback representation used when
// rasterization is unavailable.
package render

import (
	"context"

	"github.com/uca-platform/uca-api/internal/models"
)

// Engine is the rendering capability consumed by the export pipeline. The
// pipeline depends only on this interface, never on a concrete library.
type Engine interface {
	// RenderToImage produces a rasterized (PNG) rendition of the chart.
	// It returns ErrRenderUnavailable when the raster engine cannot run.
	RenderToImage(ctx context.Context, spec models.ChartSpecification) ([]byte, error)
	// RenderToMarkup produces a self-contained interactive HTML rendition.
	RenderToMarkup(ctx context.Context, spec models.ChartSpecification) ([]byte, error)
}

// DefaultEngine combines the go-chart raster renderer with the HTML markup
// renderer.
type DefaultEngine struct {
	raster *RasterRenderer
	markup *MarkupRenderer
}

// NewDefaultEngine wires the standard renderer pair.
func NewDefaultEngine() *DefaultEngine {
	return &DefaultEngine{
		raster: NewRasterRenderer(),
		markup: NewMarkupRenderer(),
	}
}

// RenderToImage implements Engine.
func (e *DefaultEngine) RenderToImage(ctx context.Context, spec models.ChartSpecification) ([]byte, error) {
	return e.raster.RenderToImage(ctx, spec)
}

// RenderToMarkup implements Engine.
func (e *DefaultEngine) RenderToMarkup(ctx context.Context, spec models.ChartSpecification) ([]byte, error) {
	return e.markup.RenderToMarkup(ctx, spec)
}
