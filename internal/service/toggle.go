package service

import (
	"github.com/uca-platform/uca-api/internal/models"
	appErrors "github.com/uca-platform/uca-api/pkg/errors"
)

// ResolvedSelection is the outcome of toggle resolution: the categories to
// chart, in canonical order, plus whether the weighted composite series is
// included.
type ResolvedSelection struct {
	Categories []models.Category
	Composite  bool
}

// Includes reports whether the category survived resolution.
func (r ResolvedSelection) Includes(category models.Category) bool {
	for _, c := range r.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// ResolveToggles maps a caller-supplied visibility selection onto the set of
// series to include. A nil category map means "unspecified" and resolves to
// the full category set; an explicit map includes only the categories set to
// true. The composite defaults to included. A selection that switches
// everything off is caller error and rejected with EMPTY_SELECTION rather
// than silently producing a blank chart.
func ResolveToggles(selection models.ToggleSelection) (ResolvedSelection, error) {
	resolved := ResolvedSelection{Composite: true}
	if selection.Composite != nil {
		resolved.Composite = *selection.Composite
	}

	if selection.Categories == nil {
		resolved.Categories = append(resolved.Categories, models.Categories...)
		return resolved, nil
	}

	for _, category := range models.Categories {
		if selection.Categories[category] {
			resolved.Categories = append(resolved.Categories, category)
		}
	}

	if len(resolved.Categories) == 0 && !resolved.Composite {
		return ResolvedSelection{}, appErrors.Clone(appErrors.ErrEmptySelection, "")
	}
	return resolved, nil
}
