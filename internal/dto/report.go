package dto

import (
	"time"

	"github.com/uca-platform/uca-api/internal/models"
)

// CreateReportRequest queues report generation for a course.
type CreateReportRequest struct {
	CourseID            string                 `json:"course_id" validate:"required"`
	Format              models.ReportFormat    `json:"format" validate:"required,oneof=pdf csv"`
	Toggles             models.ToggleSelection `json:"toggles"`
	IncludeDistribution bool                   `json:"include_distribution"`
	RegenerateArtifacts bool                   `json:"regenerate_artifacts"`
	Title               string                 `json:"title" validate:"max=160"`
}

// ReportJobResponse confirms a queued job.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress and, once finished, the signed
// download URL.
type ReportStatusResponse struct {
	ID           string              `json:"id"`
	CourseID     string              `json:"course_id"`
	Status       models.ReportStatus `json:"status"`
	Progress     int                 `json:"progress"`
	ResultURL    *string             `json:"result_url,omitempty"`
	ErrorMessage *string             `json:"error_message,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	FinishedAt   *time.Time          `json:"finished_at,omitempty"`
}
