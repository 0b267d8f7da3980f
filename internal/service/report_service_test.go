package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uca-platform/uca-api/internal/models"
)

func assembleFixture() (*models.Course, *models.WeightConfiguration, []models.SectionStatistics, *models.CohortStatistics) {
	course := &models.Course{ID: "course-1", Name: "Intro to Computing", Code: "CS101", TermSemester: "2026-Spring", Coordinator: "Dr. Reed"}
	weights := &models.WeightConfiguration{Weights: models.CategoryWeights{
		models.CategoryQuiz:  40,
		models.CategoryFinal: 60,
	}}
	stats := []models.SectionStatistics{
		{SectionID: "sec-1", SectionNumber: 1, Instructor: "Dr. Chen", TotalStudents: 30,
			CategoryAvg: map[models.Category]float64{models.CategoryQuiz: 65.0}, Composite: 65.0},
		{SectionID: "sec-2", SectionNumber: 2, Instructor: "Dr. Okafor", TotalStudents: 28, MissingData: true,
			CategoryAvg: map[models.Category]float64{}},
	}
	cohort := &models.CohortStatistics{CourseID: "course-1", SectionCount: 2, Mean: 32.5, Min: 0, Max: 65.0}
	return course, weights, stats, cohort
}

func sectionKinds(doc *models.ReportDocument) []models.ReportSectionKind {
	kinds := make([]models.ReportSectionKind, len(doc.Sections))
	for i, s := range doc.Sections {
		kinds[i] = s.Kind
	}
	return kinds
}

func TestAssembleFixedOrderWithPrimaryArtifacts(t *testing.T) {
	svc := &ReportService{}
	course, weights, stats, cohort := assembleFixture()
	charts := map[models.ChartKind]*models.ExportedArtifact{
		models.ChartKindSectionComparison: {
			CourseID: "course-1", ChartKind: models.ChartKindSectionComparison,
			Representation: models.RepresentationPrimary,
			StoragePath:    "charts/course_course-1_section_comparison.png",
		},
		models.ChartKindWeightedComposite: {
			CourseID: "course-1", ChartKind: models.ChartKindWeightedComposite,
			Representation: models.RepresentationPrimary,
			StoragePath:    "charts/course_course-1_weighted_composite.png",
		},
	}

	doc := svc.Assemble(course, weights, stats, cohort, charts, nil, nil, models.ReportJobParams{Format: models.ReportFormatPDF})

	require.NotNil(t, doc)
	assert.Equal(t, "CS101 Assessment Report", doc.Title)
	assert.Equal(t, []models.ReportSectionKind{
		models.ReportSectionSummary,
		models.ReportSectionTable,
		models.ReportSectionChart,
		models.ReportSectionChart,
		models.ReportSectionTable,
	}, sectionKinds(doc))

	// Embedded charts carry no note; the note text belongs to placeholders.
	assert.Empty(t, doc.Sections[2].Note)
	assert.Empty(t, doc.Sections[3].Note)

	// Missing-data section shows up flagged in the statistics table.
	table := doc.Sections[1].Table
	require.NotNil(t, table)
	require.Len(t, table.Rows, 2)
	assert.Contains(t, table.Rows[1], "0.0 (no data)")
}

func TestAssembleFallbackArtifactBecomesPlaceholderWithTables(t *testing.T) {
	svc := &ReportService{}
	course, weights, stats, cohort := assembleFixture()
	charts := map[models.ChartKind]*models.ExportedArtifact{
		models.ChartKindSectionComparison: {
			CourseID: "course-1", ChartKind: models.ChartKindSectionComparison,
			Representation: models.RepresentationFallback,
			StoragePath:    "charts/course_course-1_section_comparison.html",
		},
		// Weighted composite artifact missing entirely.
	}

	doc := svc.Assemble(course, weights, stats, cohort, charts, nil, nil, models.ReportJobParams{Format: models.ReportFormatPDF})

	require.NotEmpty(t, doc.Sections)
	assert.Equal(t, models.ReportSectionPlaceholder, doc.Sections[2].Kind)
	assert.Equal(t, placeholderNote, doc.Sections[2].Note)
	assert.Equal(t, models.ReportSectionPlaceholder, doc.Sections[3].Kind)

	// Tables are always present: the report degrades to tables-only, never
	// to empty.
	var tables int
	for _, section := range doc.Sections {
		if section.Kind == models.ReportSectionTable {
			tables++
		}
	}
	assert.Equal(t, 2, tables)
}

func TestAssembleIncludesDistributionSections(t *testing.T) {
	svc := &ReportService{}
	course, weights, stats, cohort := assembleFixture()
	sections := []models.Section{{ID: "sec-1", SectionNumber: 1}}
	rows := []models.GradeDistributionRow{{SectionID: "sec-1", Grade: "A", Count: 4}}

	doc := svc.Assemble(course, weights, stats, cohort, nil, sections, rows, models.ReportJobParams{
		Format:              models.ReportFormatPDF,
		IncludeDistribution: true,
		Title:               "Spring Review",
	})

	assert.Equal(t, "Spring Review", doc.Title)
	kinds := sectionKinds(doc)
	assert.Equal(t, []models.ReportSectionKind{
		models.ReportSectionSummary,
		models.ReportSectionTable,
		models.ReportSectionPlaceholder,
		models.ReportSectionPlaceholder,
		models.ReportSectionTable,
		models.ReportSectionPlaceholder,
		models.ReportSectionTable,
	}, kinds)

	dist := doc.Sections[4].Table
	require.NotNil(t, dist)
	require.Len(t, dist.Rows, 1)
	assert.Equal(t, []string{"Section 1", "A", "92.5%+", "4"}, dist.Rows[0])
}

func TestBuildCSVDatasetIncludesCohortRow(t *testing.T) {
	_, _, stats, cohort := assembleFixture()
	dataset := buildCSVDataset(stats, cohort)

	require.Len(t, dataset.Rows, 3)
	// Headers: Section, Instructor, Students, six categories, Composite.
	require.Len(t, dataset.Headers, 10)
	assert.Equal(t, "Quiz", dataset.Headers[3])
	assert.Equal(t, "Cohort Mean", dataset.Rows[2][0])
	assert.Equal(t, "32.5", dataset.Rows[2][9])
	assert.Equal(t, "65.0", dataset.Rows[0][3])
	// Categories without data stay blank rather than zero-filled.
	assert.Equal(t, "", dataset.Rows[0][7])
}
