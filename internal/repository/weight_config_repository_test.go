package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/uca-platform/uca-api/internal/models"
)

func TestWeightConfigRepositoryGetByCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWeightConfigRepository(db)

	rows := sqlmock.NewRows([]string{"id", "course_id", "weights", "updated_at"}).
		AddRow("wc-1", "course-1", `{"quiz":20,"midterm":30,"final":50}`, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, course_id, weights, updated_at FROM weight_configurations WHERE course_id = $1")).
		WithArgs("course-1").
		WillReturnRows(rows)

	cfg, err := repo.GetByCourse(context.Background(), "course-1")
	require.NoError(t, err)
	require.InDelta(t, 50.0, cfg.Weight(models.CategoryFinal), 1e-9)
	require.NoError(t, cfg.Validate())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWeightConfigRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewWeightConfigRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO weight_configurations")).
		WithArgs(sqlmock.AnyArg(), "course-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	cfg := &models.WeightConfiguration{
		CourseID: "course-1",
		Weights:  models.CategoryWeights{models.CategoryQuiz: 40, models.CategoryFinal: 60},
	}
	require.NoError(t, repo.Upsert(context.Background(), cfg))
	require.NotEmpty(t, cfg.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
