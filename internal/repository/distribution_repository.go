package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uca-platform/uca-api/internal/models"
)

// DistributionRepository manages stored grade distribution counts.
type DistributionRepository struct {
	db *sqlx.DB
}

// NewDistributionRepository creates a repository instance.
func NewDistributionRepository(db *sqlx.DB) *DistributionRepository {
	return &DistributionRepository{db: db}
}

// ListByCourse returns every grade count row for the course, ordered by
// section then grade so chart series come out stable.
func (r *DistributionRepository) ListByCourse(ctx context.Context, courseID string) ([]models.GradeDistributionRow, error) {
	const query = `SELECT gd.id, gd.course_id, gd.section_id, gd.grade, gd.count
FROM grade_distributions gd
JOIN sections s ON s.id = gd.section_id
WHERE gd.course_id = $1
ORDER BY s.section_number, gd.grade ASC`
	var rows []models.GradeDistributionRow
	if err := r.db.SelectContext(ctx, &rows, query, courseID); err != nil {
		return nil, fmt.Errorf("list grade distributions for course %s: %w", courseID, err)
	}
	return rows, nil
}

// ReplaceForSection swaps the section's distribution rows atomically.
func (r *DistributionRepository) ReplaceForSection(ctx context.Context, courseID, sectionID string, rows []models.GradeDistributionRow) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin distribution replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM grade_distributions WHERE section_id = $1`, sectionID); err != nil {
		return fmt.Errorf("clear grade distributions for section %s: %w", sectionID, err)
	}
	const insert = `INSERT INTO grade_distributions (id, course_id, section_id, grade, count) VALUES ($1, $2, $3, $4, $5)`
	for _, row := range rows {
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, insert, row.ID, courseID, sectionID, row.Grade, row.Count); err != nil {
			return fmt.Errorf("insert grade distribution row: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit distribution replace: %w", err)
	}
	return nil
}
