package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uca-platform/uca-api/internal/models"
)

// WeightConfigRepository manages per-course weight configurations.
type WeightConfigRepository struct {
	db *sqlx.DB
}

// NewWeightConfigRepository creates a repository instance.
func NewWeightConfigRepository(db *sqlx.DB) *WeightConfigRepository {
	return &WeightConfigRepository{db: db}
}

// GetByCourse returns the course's weight configuration.
func (r *WeightConfigRepository) GetByCourse(ctx context.Context, courseID string) (*models.WeightConfiguration, error) {
	const query = `SELECT id, course_id, weights, updated_at FROM weight_configurations WHERE course_id = $1`
	var cfg models.WeightConfiguration
	if err := r.db.GetContext(ctx, &cfg, query, courseID); err != nil {
		return nil, fmt.Errorf("get weight configuration for course %s: %w", courseID, err)
	}
	return &cfg, nil
}

// Upsert stores the configuration, replacing any previous row for the course.
// Validation happens in the service layer before this is ever called.
func (r *WeightConfigRepository) Upsert(ctx context.Context, cfg *models.WeightConfiguration) error {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	cfg.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO weight_configurations (id, course_id, weights, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (course_id) DO UPDATE SET weights = EXCLUDED.weights, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, cfg.ID, cfg.CourseID, cfg.Weights, cfg.UpdatedAt); err != nil {
		return fmt.Errorf("upsert weight configuration for course %s: %w", cfg.CourseID, err)
	}
	return nil
}
