package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uca-platform/uca-api/internal/models"
)

func comparisonStats() []models.SectionStatistics {
	return []models.SectionStatistics{
		{
			SectionID: "sec-1", SectionNumber: 1, Instructor: "Dr. Chen",
			CategoryAvg: map[models.Category]float64{
				models.CategoryQuiz:  65.0,
				models.CategoryFinal: 90.0,
			},
			Composite: 81.0,
		},
		{
			SectionID: "sec-2", SectionNumber: 2, Instructor: "Dr. Okafor",
			CategoryAvg: map[models.Category]float64{
				models.CategoryQuiz:  60.0,
				models.CategoryFinal: 60.0,
			},
			Composite: 60.0,
		},
	}
}

func TestBuildSectionComparison(t *testing.T) {
	svc := NewChartService()
	selection := ResolvedSelection{
		Categories: []models.Category{models.CategoryQuiz, models.CategoryFinal},
		Composite:  true,
	}

	spec := svc.BuildSectionComparison("CS101", comparisonStats(), selection)

	assert.Equal(t, models.ChartKindSectionComparison, spec.Kind)
	assert.Equal(t, []string{"Section 1", "Section 2"}, spec.Labels)
	require.Len(t, spec.Series, 3)
	assert.Equal(t, "Quiz", spec.Series[0].Name)
	assert.Equal(t, []float64{65.0, 60.0}, spec.Series[0].Values)
	assert.Equal(t, "Final", spec.Series[1].Name)
	assert.Equal(t, "Weighted Composite", spec.Series[2].Name)
	assert.Equal(t, []float64{81.0, 60.0}, spec.Series[2].Values)
}

func TestBuildSectionComparisonSkipsCategoriesWithoutData(t *testing.T) {
	svc := NewChartService()
	selection := ResolvedSelection{
		Categories: []models.Category{models.CategoryQuiz, models.CategoryLab},
		Composite:  false,
	}

	spec := svc.BuildSectionComparison("CS101", comparisonStats(), selection)

	require.Len(t, spec.Series, 1)
	assert.Equal(t, "quiz", spec.Series[0].Key)
}

func TestBuildCompositeSummaryIgnoresCategoryToggles(t *testing.T) {
	svc := NewChartService()
	spec := svc.BuildCompositeSummary("CS101", comparisonStats())

	assert.Equal(t, models.ChartKindWeightedComposite, spec.Kind)
	require.Len(t, spec.Series, 1)
	assert.Equal(t, []float64{81.0, 60.0}, spec.Series[0].Values)
}

func TestBuildDistributionChart(t *testing.T) {
	svc := NewChartService()
	sections := []models.Section{
		{ID: "sec-1", SectionNumber: 1},
		{ID: "sec-2", SectionNumber: 2},
	}
	rows := []models.GradeDistributionRow{
		{SectionID: "sec-1", Grade: "A", Count: 5},
		{SectionID: "sec-2", Grade: "A", Count: 3},
		{SectionID: "sec-1", Grade: "F", Count: 1},
	}

	spec := svc.BuildDistributionChart("CS101", sections, rows)

	assert.Equal(t, models.ChartKindGradeDistribution, spec.Kind)
	require.Len(t, spec.Series, 2)
	assert.Equal(t, "A", spec.Series[0].Key)
	assert.Equal(t, []float64{5, 3}, spec.Series[0].Values)
	assert.Equal(t, "F", spec.Series[1].Key)
	assert.InDelta(t, 6.0, spec.YMax, 1e-9)
}
