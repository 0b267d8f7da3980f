package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uca-platform/uca-api/internal/models"
)

// SectionRepository manages course section persistence.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository creates a repository instance.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// GetByID returns a single section.
func (r *SectionRepository) GetByID(ctx context.Context, id string) (*models.Section, error) {
	const query = `SELECT id, course_id, section_number, instructor, total_students, created_at FROM sections WHERE id = $1`
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, fmt.Errorf("get section %s: %w", id, err)
	}
	return &section, nil
}

// Upsert stores the section, replacing any previous row with the same ID.
func (r *SectionRepository) Upsert(ctx context.Context, section *models.Section) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	const query = `INSERT INTO sections (id, course_id, section_number, instructor, total_students, created_at)
VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (id) DO UPDATE SET
	section_number = EXCLUDED.section_number,
	instructor = EXCLUDED.instructor,
	total_students = EXCLUDED.total_students`
	if _, err := r.db.ExecContext(ctx, query, section.ID, section.CourseID, section.SectionNumber, section.Instructor, section.TotalStudents); err != nil {
		return fmt.Errorf("upsert section %s: %w", section.ID, err)
	}
	return nil
}

// ListByCourse returns the course's sections in section-number order. The
// ordering is what keeps chart output deterministic for identical inputs.
func (r *SectionRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Section, error) {
	const query = `SELECT id, course_id, section_number, instructor, total_students, created_at
FROM sections WHERE course_id = $1 ORDER BY section_number ASC`
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query, courseID); err != nil {
		return nil, fmt.Errorf("list sections for course %s: %w", courseID, err)
	}
	return sections, nil
}
