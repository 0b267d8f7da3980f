package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ReportFormat enumerates supported rendered report formats.
type ReportFormat string

const (
	ReportFormatPDF ReportFormat = "pdf"
	ReportFormatCSV ReportFormat = "csv"
)

// ReportStatus captures background job lifecycle states.
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "QUEUED"
	ReportStatusProcessing ReportStatus = "PROCESSING"
	ReportStatusFinished   ReportStatus = "FINISHED"
	ReportStatusFailed     ReportStatus = "FAILED"
)

// ReportJob is the persisted metadata of one report generation request.
type ReportJob struct {
	ID           string          `db:"id" json:"id"`
	CourseID     string          `db:"course_id" json:"course_id"`
	Params       ReportJobParams `db:"params" json:"params"`
	Status       ReportStatus    `db:"status" json:"status"`
	Progress     int             `db:"progress" json:"progress"`
	ResultURL    *string         `db:"result_url" json:"result_url,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time      `db:"finished_at" json:"finished_at,omitempty"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
}

// ReportJobParams stores request-scoped report options persisted as JSONB.
type ReportJobParams struct {
	Format              ReportFormat    `json:"format"`
	Toggles             ToggleSelection `json:"toggles,omitempty"`
	IncludeDistribution bool            `json:"includeDistribution"`
	RegenerateArtifacts bool            `json:"regenerateArtifacts"`
	Title               string          `json:"title,omitempty"`
}

// Value marshals params to JSON for persistence.
func (p ReportJobParams) Value() (driver.Value, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal report job params: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the params struct.
func (p *ReportJobParams) Scan(value interface{}) error {
	if value == nil {
		*p = ReportJobParams{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for ReportJobParams", value)
	}
	if len(data) == 0 {
		*p = ReportJobParams{}
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("unmarshal report job params: %w", err)
	}
	return nil
}

// ReportSectionKind identifies the content type of one report section.
type ReportSectionKind string

const (
	ReportSectionSummary     ReportSectionKind = "course_summary"
	ReportSectionChart       ReportSectionKind = "chart"
	ReportSectionTable       ReportSectionKind = "table"
	ReportSectionPlaceholder ReportSectionKind = "chart_placeholder"
)

// ReportTable is a rendered statistics table.
type ReportTable struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// ReportSection is one ordered element of an assembled report: a chart
// artifact reference, a table, a placeholder, or the course summary block.
type ReportSection struct {
	Kind     ReportSectionKind `json:"kind"`
	Title    string            `json:"title"`
	Artifact *ExportedArtifact `json:"artifact,omitempty"`
	Table    *ReportTable      `json:"table,omitempty"`
	// Note carries the placeholder text when a chart could not be embedded.
	Note string `json:"note,omitempty"`
	// Lines holds the course summary content.
	Lines []string `json:"lines,omitempty"`
}

// ReportDocument is the assembled, ordered report. Produced once per request
// and not mutated after assembly.
type ReportDocument struct {
	CourseID    string          `json:"course_id"`
	Title       string          `json:"title"`
	GeneratedAt time.Time       `json:"generated_at"`
	Sections    []ReportSection `json:"sections"`
}
