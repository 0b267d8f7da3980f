package dto

import (
	"time"

	"github.com/uca-platform/uca-api/internal/models"
)

// CourseAnalysisResponse is the computed statistics payload for a course.
type CourseAnalysisResponse struct {
	Course      models.Course               `json:"course"`
	Weights     models.CategoryWeights      `json:"weights"`
	Sections    []models.SectionStatistics  `json:"sections"`
	Cohort      models.CohortStatistics     `json:"cohort"`
	Charts      []models.ChartSpecification `json:"charts"`
	GeneratedAt time.Time                   `json:"generated_at"`
	Cached      bool                        `json:"cached"`
}

// ImportSnapshotResult reports what an accepted snapshot replaced.
type ImportSnapshotResult struct {
	CourseID         string `json:"course_id"`
	Sections         int    `json:"sections"`
	Records          int    `json:"records"`
	DistributionRows int    `json:"distribution_rows"`
}

// ChartExportRequest selects which charts to export and which series to show.
type ChartExportRequest struct {
	Kinds   []models.ChartKind     `json:"kinds"`
	Toggles models.ToggleSelection `json:"toggles"`
}

// ChartExportResponse lists the artifacts produced by one export call.
type ChartExportResponse struct {
	Artifacts []models.ExportedArtifact `json:"artifacts"`
}

// CourseSnapshot is the full JSON dump of a course's assessment state:
// source data plus the derived statistics, suitable for archival or offline
// analysis.
type CourseSnapshot struct {
	Course       models.Course                 `json:"course"`
	Weights      models.CategoryWeights        `json:"weights"`
	Sections     []models.Section              `json:"sections"`
	Statistics   []models.SectionStatistics    `json:"statistics"`
	Cohort       models.CohortStatistics       `json:"cohort"`
	Distribution []models.GradeDistributionRow `json:"distribution,omitempty"`
	GeneratedAt  time.Time                     `json:"generated_at"`
}
