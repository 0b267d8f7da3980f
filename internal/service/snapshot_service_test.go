package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uca-platform/uca-api/internal/dto"
	"github.com/uca-platform/uca-api/internal/models"
	appErrors "github.com/uca-platform/uca-api/pkg/errors"
)

type fakeCourseStore struct {
	upserted []models.Course
}

func (f *fakeCourseStore) Upsert(ctx context.Context, course *models.Course) error {
	f.upserted = append(f.upserted, *course)
	return nil
}

type fakeSectionStore struct {
	upserted []models.Section
}

func (f *fakeSectionStore) Upsert(ctx context.Context, section *models.Section) error {
	f.upserted = append(f.upserted, *section)
	return nil
}

type fakeAssessmentStore struct {
	replaced map[string][]models.AssessmentRecord
}

func (f *fakeAssessmentStore) ReplaceForSection(ctx context.Context, sectionID string, records []models.AssessmentRecord) error {
	if f.replaced == nil {
		f.replaced = make(map[string][]models.AssessmentRecord)
	}
	f.replaced[sectionID] = records
	return nil
}

type fakeWeightStore struct {
	upserted []models.WeightConfiguration
}

func (f *fakeWeightStore) Upsert(ctx context.Context, cfg *models.WeightConfiguration) error {
	f.upserted = append(f.upserted, *cfg)
	return nil
}

type fakeDistributionStore struct {
	replaced map[string][]models.GradeDistributionRow
}

func (f *fakeDistributionStore) ReplaceForSection(ctx context.Context, courseID, sectionID string, rows []models.GradeDistributionRow) error {
	if f.replaced == nil {
		f.replaced = make(map[string][]models.GradeDistributionRow)
	}
	f.replaced[sectionID] = rows
	return nil
}

func snapshotFixture() dto.CourseSnapshot {
	return dto.CourseSnapshot{
		Course:  models.Course{ID: "course-1", Name: "Data Structures", Code: "CS101"},
		Weights: models.CategoryWeights{models.CategoryQuiz: 40, models.CategoryFinal: 60},
		Sections: []models.Section{
			{ID: "sec-1", SectionNumber: 1, Instructor: "Dr. Rahman", Records: []models.AssessmentRecord{
				{ID: "rec-1", SectionID: "sec-1", Category: models.CategoryQuiz, InstanceNumber: 1, MaxMarks: 10, AverageMarks: 8},
				{ID: "rec-2", SectionID: "sec-1", Category: models.CategoryFinal, InstanceNumber: 1, MaxMarks: 100, AverageMarks: 72},
			}},
			{ID: "sec-2", SectionNumber: 2, Instructor: "Dr. Khan"},
		},
		Distribution: []models.GradeDistributionRow{
			{SectionID: "sec-1", Grade: "A", Count: 4},
			{SectionID: "sec-1", Grade: "F", Count: 1},
		},
	}
}

func newSnapshotService(courses *fakeCourseStore, sections *fakeSectionStore, assessments *fakeAssessmentStore, weights *fakeWeightStore, distributions *fakeDistributionStore) *SnapshotService {
	analysis := NewAnalysisService(nil, nil, nil, nil, nil, NewStatisticsService(nil), NewChartService(), nil, nil, 0, nil)
	return NewSnapshotService(courses, sections, assessments, weights, distributions, analysis, nil)
}

func TestSnapshotImportReplacesCourseData(t *testing.T) {
	courses := &fakeCourseStore{}
	sections := &fakeSectionStore{}
	assessments := &fakeAssessmentStore{}
	weights := &fakeWeightStore{}
	distributions := &fakeDistributionStore{}
	svc := newSnapshotService(courses, sections, assessments, weights, distributions)

	result, err := svc.Import(context.Background(), "course-1", snapshotFixture())
	require.NoError(t, err)
	require.Equal(t, 2, result.Sections)
	require.Equal(t, 2, result.Records)
	require.Equal(t, 2, result.DistributionRows)

	require.Len(t, courses.upserted, 1)
	require.Equal(t, "CS101", courses.upserted[0].Code)
	require.Len(t, sections.upserted, 2)
	require.Equal(t, "course-1", sections.upserted[0].CourseID)
	require.Len(t, assessments.replaced["sec-1"], 2)
	require.Empty(t, assessments.replaced["sec-2"])
	require.Len(t, weights.upserted, 1)
	require.InDelta(t, 60, weights.upserted[0].Weights[models.CategoryFinal], 1e-9)
	require.Len(t, distributions.replaced["sec-1"], 2)
}

func TestSnapshotImportRejectsInvalidWeights(t *testing.T) {
	courses := &fakeCourseStore{}
	svc := newSnapshotService(courses, &fakeSectionStore{}, &fakeAssessmentStore{}, &fakeWeightStore{}, &fakeDistributionStore{})

	snap := snapshotFixture()
	snap.Weights = models.CategoryWeights{models.CategoryQuiz: 40, models.CategoryFinal: 30}

	_, err := svc.Import(context.Background(), "course-1", snap)
	require.ErrorIs(t, err, appErrors.ErrInvalidWeights)
	require.Empty(t, courses.upserted)
}

func TestSnapshotImportRejectsOutOfRangeRecord(t *testing.T) {
	courses := &fakeCourseStore{}
	assessments := &fakeAssessmentStore{}
	svc := newSnapshotService(courses, &fakeSectionStore{}, assessments, &fakeWeightStore{}, &fakeDistributionStore{})

	snap := snapshotFixture()
	snap.Sections[0].Records[0].MaxMarks = 10
	snap.Sections[0].Records[0].AverageMarks = 25

	_, err := svc.Import(context.Background(), "course-1", snap)
	require.ErrorIs(t, err, appErrors.ErrValidation)
	require.Empty(t, courses.upserted)
	require.Empty(t, assessments.replaced)
}

func TestSnapshotImportRejectsUnknownCategory(t *testing.T) {
	courses := &fakeCourseStore{}
	svc := newSnapshotService(courses, &fakeSectionStore{}, &fakeAssessmentStore{}, &fakeWeightStore{}, &fakeDistributionStore{})

	snap := snapshotFixture()
	snap.Sections[0].Records[1].Category = "participation"

	_, err := svc.Import(context.Background(), "course-1", snap)
	require.ErrorIs(t, err, appErrors.ErrValidation)
	require.Empty(t, courses.upserted)
}

func TestSnapshotImportRejectsCourseMismatch(t *testing.T) {
	svc := newSnapshotService(&fakeCourseStore{}, &fakeSectionStore{}, &fakeAssessmentStore{}, &fakeWeightStore{}, &fakeDistributionStore{})

	snap := snapshotFixture()
	_, err := svc.Import(context.Background(), "course-2", snap)
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSnapshotImportDefaultsCourseIDFromPath(t *testing.T) {
	courses := &fakeCourseStore{}
	svc := newSnapshotService(courses, &fakeSectionStore{}, &fakeAssessmentStore{}, &fakeWeightStore{}, &fakeDistributionStore{})

	snap := snapshotFixture()
	snap.Course.ID = ""
	result, err := svc.Import(context.Background(), "course-9", snap)
	require.NoError(t, err)
	require.Equal(t, "course-9", result.CourseID)
	require.Equal(t, "course-9", courses.upserted[0].ID)
}
