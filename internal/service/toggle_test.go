package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uca-platform/uca-api/internal/models"
	appErrors "github.com/uca-platform/uca-api/pkg/errors"
)

func TestResolveTogglesDefaultsToFullSet(t *testing.T) {
	resolved, err := ResolveToggles(models.ToggleSelection{})
	require.NoError(t, err)
	assert.Equal(t, models.Categories, resolved.Categories)
	assert.True(t, resolved.Composite)
}

func TestResolveTogglesAllOffRejected(t *testing.T) {
	off := false
	_, err := ResolveToggles(models.ToggleSelection{
		Categories: map[models.Category]bool{},
		Composite:  &off,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrEmptySelection)
}

func TestResolveTogglesExplicitSubset(t *testing.T) {
	off := false
	resolved, err := ResolveToggles(models.ToggleSelection{
		Categories: map[models.Category]bool{
			models.CategoryFinal: true,
			models.CategoryQuiz:  true,
			models.CategoryLab:   false,
		},
		Composite: &off,
	})
	require.NoError(t, err)
	// Canonical order, not map iteration order.
	assert.Equal(t, []models.Category{models.CategoryQuiz, models.CategoryFinal}, resolved.Categories)
	assert.False(t, resolved.Composite)
}

func TestResolveTogglesCompositeOnlyIsValid(t *testing.T) {
	resolved, err := ResolveToggles(models.ToggleSelection{
		Categories: map[models.Category]bool{},
	})
	require.NoError(t, err)
	assert.Empty(t, resolved.Categories)
	assert.True(t, resolved.Composite)
}
