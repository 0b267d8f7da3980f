package service

import (
	"fmt"

	"github.com/uca-platform/uca-api/internal/models"
)

// categoryColors is the fixed chart palette, one color per category.
var categoryColors = map[models.Category]string{
	models.CategoryQuiz:       "#55C2C3",
	models.CategoryAssignment: "#A2C4AD",
	models.CategoryHomework:   "#C7E1F3",
	models.CategoryMidterm:    "#F0C4C0",
	models.CategoryFinal:      "#BDE3E3",
	models.CategoryLab:        "#DBC6E4",
}

const (
	compositeColor    = "#5EC776"
	distributionColor = "#696969"
)

// ChartService builds abstract chart specifications from computed statistics.
// It is side effect free: specifications are plain data, rendering and
// persistence happen in the export pipeline.
type ChartService struct{}

// NewChartService constructs the chart builder.
func NewChartService() *ChartService {
	return &ChartService{}
}

// BuildSectionComparison produces the grouped-bar comparison: one group per
// section, one bar per included category, plus the composite series when
// selected. Series order follows the canonical category order so identical
// inputs yield identical specifications.
func (s *ChartService) BuildSectionComparison(courseName string, stats []models.SectionStatistics, selection ResolvedSelection) models.ChartSpecification {
	spec := models.ChartSpecification{
		Kind:       models.ChartKindSectionComparison,
		Title:      fmt.Sprintf("%s - Category Averages per Section", courseName),
		XAxisTitle: "Section",
		YAxisTitle: "Average (%)",
		Labels:     sectionLabels(stats),
	}

	for _, category := range selection.Categories {
		values := make([]float64, len(stats))
		seen := false
		for i, st := range stats {
			if avg, ok := st.CategoryAvg[category]; ok {
				values[i] = avg
				seen = true
			}
		}
		// A category no section has records for would chart as an all-zero
		// series; leave it out entirely.
		if !seen {
			continue
		}
		spec.Series = append(spec.Series, models.ChartSeries{
			Key:    string(category),
			Name:   category.DisplayName(),
			Color:  categoryColors[category],
			Values: values,
		})
	}

	if selection.Composite {
		values := make([]float64, len(stats))
		for i, st := range stats {
			values[i] = st.Composite
		}
		spec.Series = append(spec.Series, models.ChartSeries{
			Key:    "composite",
			Name:   "Weighted Composite",
			Color:  compositeColor,
			Values: values,
		})
	}

	return spec
}

// BuildCompositeSummary produces the single-bar-per-section weighted
// composite chart. Always derivable regardless of category toggles since the
// composite is itself one of the toggleable series.
func (s *ChartService) BuildCompositeSummary(courseName string, stats []models.SectionStatistics) models.ChartSpecification {
	values := make([]float64, len(stats))
	for i, st := range stats {
		values[i] = st.Composite
	}
	return models.ChartSpecification{
		Kind:       models.ChartKindWeightedComposite,
		Title:      fmt.Sprintf("%s - Weighted Composite Scores", courseName),
		XAxisTitle: "Section",
		YAxisTitle: "Composite (%)",
		Labels:     sectionLabels(stats),
		Series: []models.ChartSeries{{
			Key:    "composite",
			Name:   "Weighted Composite",
			Color:  compositeColor,
			Values: values,
		}},
	}
}

// BuildDistributionChart produces the letter-grade count chart: one series
// per grade band, one group per section. The YMax scales to the largest count.
func (s *ChartService) BuildDistributionChart(courseName string, sections []models.Section, rows []models.GradeDistributionRow) models.ChartSpecification {
	spec := models.ChartSpecification{
		Kind:       models.ChartKindGradeDistribution,
		Title:      fmt.Sprintf("%s - Grade Distribution", courseName),
		XAxisTitle: "Section",
		YAxisTitle: "Students",
	}

	index := make(map[string]int, len(sections))
	for i, section := range sections {
		index[section.ID] = i
		spec.Labels = append(spec.Labels, section.Label())
	}

	counts := make(map[string][]float64)
	maxCount := 0.0
	for _, row := range rows {
		pos, ok := index[row.SectionID]
		if !ok {
			continue
		}
		if _, ok := counts[row.Grade]; !ok {
			counts[row.Grade] = make([]float64, len(sections))
		}
		counts[row.Grade][pos] = float64(row.Count)
		if float64(row.Count) > maxCount {
			maxCount = float64(row.Count)
		}
	}

	for _, band := range models.DefaultGradeBands {
		values, ok := counts[band.Grade]
		if !ok {
			continue
		}
		spec.Series = append(spec.Series, models.ChartSeries{
			Key:    band.Grade,
			Name:   fmt.Sprintf("%s (%s)", band.Grade, band.RangeDisplay()),
			Color:  distributionColor,
			Values: values,
		})
	}
	if maxCount > 0 {
		spec.YMax = maxCount * 1.2
	}

	return spec
}

func sectionLabels(stats []models.SectionStatistics) []string {
	labels := make([]string, len(stats))
	for i, st := range stats {
		labels[i] = models.Section{SectionNumber: st.SectionNumber}.Label()
	}
	return labels
}
