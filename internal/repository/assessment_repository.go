package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uca-platform/uca-api/internal/models"
)

// AssessmentRepository manages assessment record persistence.
type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository creates a repository instance.
func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// ListBySection returns a section's assessment records ordered by category
// and instance number.
func (r *AssessmentRepository) ListBySection(ctx context.Context, sectionID string) ([]models.AssessmentRecord, error) {
	const query = `SELECT id, section_id, category, instance_number, max_marks, average_marks, created_at, updated_at
FROM assessment_records WHERE section_id = $1 ORDER BY category, instance_number ASC`
	var records []models.AssessmentRecord
	if err := r.db.SelectContext(ctx, &records, query, sectionID); err != nil {
		return nil, fmt.Errorf("list assessment records for section %s: %w", sectionID, err)
	}
	return records, nil
}

// ReplaceForSection swaps the section's assessment records atomically.
func (r *AssessmentRepository) ReplaceForSection(ctx context.Context, sectionID string, records []models.AssessmentRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assessment replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM assessment_records WHERE section_id = $1`, sectionID); err != nil {
		return fmt.Errorf("clear assessment records for section %s: %w", sectionID, err)
	}
	const insert = `INSERT INTO assessment_records (id, section_id, category, instance_number, max_marks, average_marks, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())`
	for _, record := range records {
		if record.ID == "" {
			record.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, insert, record.ID, sectionID, record.Category, record.InstanceNumber, record.MaxMarks, record.AverageMarks); err != nil {
			return fmt.Errorf("insert assessment record: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit assessment replace: %w", err)
	}
	return nil
}

// ListByCourse returns every assessment record of the course's sections in a
// single query, ordered so records group naturally by section.
func (r *AssessmentRepository) ListByCourse(ctx context.Context, courseID string) ([]models.AssessmentRecord, error) {
	const query = `SELECT ar.id, ar.section_id, ar.category, ar.instance_number, ar.max_marks, ar.average_marks, ar.created_at, ar.updated_at
FROM assessment_records ar
JOIN sections s ON s.id = ar.section_id
WHERE s.course_id = $1
ORDER BY s.section_number, ar.category, ar.instance_number ASC`
	var records []models.AssessmentRecord
	if err := r.db.SelectContext(ctx, &records, query, courseID); err != nil {
		return nil, fmt.Errorf("list assessment records for course %s: %w", courseID, err)
	}
	return records, nil
}
