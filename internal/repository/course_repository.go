package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uca-platform/uca-api/internal/models"
)

// CourseRepository manages course persistence.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a repository instance.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// GetByID returns a course by its identifier.
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, name, code, term_semester, coordinator, created_at, updated_at FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, fmt.Errorf("get course %s: %w", id, err)
	}
	return &course, nil
}

// Upsert stores the course, replacing any previous row with the same ID.
func (r *CourseRepository) Upsert(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	course.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO courses (id, name, code, term_semester, coordinator, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW(), $6)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	code = EXCLUDED.code,
	term_semester = EXCLUDED.term_semester,
	coordinator = EXCLUDED.coordinator,
	updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, course.ID, course.Name, course.Code, course.TermSemester, course.Coordinator, course.UpdatedAt); err != nil {
		return fmt.Errorf("upsert course %s: %w", course.ID, err)
	}
	return nil
}

// List returns courses optionally filtered by a search term against name or
// code, ordered by code.
func (r *CourseRepository) List(ctx context.Context, search string) ([]models.Course, error) {
	query := "SELECT id, name, code, term_semester, coordinator, created_at, updated_at FROM courses"
	var args []interface{}
	if search != "" {
		query += " WHERE LOWER(name) LIKE $1 OR LOWER(code) LIKE $1"
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	query += " ORDER BY code"
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}
