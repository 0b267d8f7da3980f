package render

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uca-platform/uca-api/internal/models"
)

func sampleSpec() models.ChartSpecification {
	return models.ChartSpecification{
		Kind:       models.ChartKindSectionComparison,
		Title:      "Category Averages per Section",
		XAxisTitle: "Section",
		YAxisTitle: "Average (%)",
		Labels:     []string{"Section 1", "Section 2"},
		Series: []models.ChartSeries{
			{Key: "quiz", Name: "Quiz", Color: "#55C2C3", Values: []float64{65.0, 70.5}},
			{Key: "midterm", Name: "Midterm", Color: "#F0C4C0", Values: []float64{81.0, 60.0}},
		},
	}
}

func TestRasterRendererProducesPNG(t *testing.T) {
	r := NewRasterRenderer()
	require.True(t, r.Available())

	img, err := r.RenderToImage(context.Background(), sampleSpec())
	require.NoError(t, err)
	require.Greater(t, len(img), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img[:4])
}

func TestRasterRendererRejectsEmptySpec(t *testing.T) {
	r := NewRasterRenderer()
	_, err := r.RenderToImage(context.Background(), models.ChartSpecification{Title: "empty"})
	require.Error(t, err)
}

func TestRasterRendererHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRasterRenderer()
	_, err := r.RenderToImage(ctx, sampleSpec())
	require.ErrorIs(t, err, context.Canceled)
}

func TestMarkupRendererEmbedsSpecification(t *testing.T) {
	r := NewMarkupRenderer()
	out, err := r.RenderToMarkup(context.Background(), sampleSpec())
	require.NoError(t, err)

	html := string(out)
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "Category Averages per Section")
	assert.Contains(t, html, `"section_comparison"`)
	assert.Contains(t, html, `"#55C2C3"`)
	// Self-contained: no external script or stylesheet references.
	assert.NotContains(t, html, "src=\"http")
	assert.NotContains(t, html, "href=\"http")
}

func TestDefaultEngineRendersBothRepresentations(t *testing.T) {
	e := NewDefaultEngine()

	img, err := e.RenderToImage(context.Background(), sampleSpec())
	require.NoError(t, err)
	assert.NotEmpty(t, img)

	markup, err := e.RenderToMarkup(context.Background(), sampleSpec())
	require.NoError(t, err)
	assert.Contains(t, string(markup), "<canvas")
}
