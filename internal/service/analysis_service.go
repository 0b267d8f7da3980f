package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/uca-platform/uca-api/internal/dto"
	"github.com/uca-platform/uca-api/internal/models"
	appErrors "github.com/uca-platform/uca-api/pkg/errors"
)

type courseReader interface {
	GetByID(ctx context.Context, id string) (*models.Course, error)
}

type sectionReader interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Section, error)
}

type assessmentReader interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.AssessmentRecord, error)
}

type weightConfigReader interface {
	GetByCourse(ctx context.Context, courseID string) (*models.WeightConfiguration, error)
}

type distributionReader interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.GradeDistributionRow, error)
}

// AnalysisService loads a course's assessment data and orchestrates the
// statistics, chart building and artifact export pipeline on top of it.
type AnalysisService struct {
	courses       courseReader
	sections      sectionReader
	assessments   assessmentReader
	weights       weightConfigReader
	distributions distributionReader
	stats         *StatisticsService
	charts        *ChartService
	artifacts     *ArtifactService
	cache         *CacheService
	cacheTTL      time.Duration
	logger        *zap.Logger
}

// NewAnalysisService constructs the orchestrator.
func NewAnalysisService(
	courses courseReader,
	sections sectionReader,
	assessments assessmentReader,
	weights weightConfigReader,
	distributions distributionReader,
	stats *StatisticsService,
	charts *ChartService,
	artifacts *ArtifactService,
	cache *CacheService,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{
		courses:       courses,
		sections:      sections,
		assessments:   assessments,
		weights:       weights,
		distributions: distributions,
		stats:         stats,
		charts:        charts,
		artifacts:     artifacts,
		cache:         cache,
		cacheTTL:      cacheTTL,
		logger:        logger,
	}
}

// courseData is the loaded input set for one course computation.
type courseData struct {
	course   *models.Course
	sections []models.Section
	weights  *models.WeightConfiguration
}

// loadCourse fetches the course, its sections with records attached, and the
// weight configuration.
func (s *AnalysisService) loadCourse(ctx context.Context, courseID string) (*courseData, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	sections, err := s.sections.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sections")
	}

	records, err := s.assessments.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment records")
	}
	bySection := make(map[string][]models.AssessmentRecord)
	for _, record := range records {
		bySection[record.SectionID] = append(bySection[record.SectionID], record)
	}
	for i := range sections {
		sections[i].Records = bySection[sections[i].ID]
	}

	weights, err := s.weights.GetByCourse(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidWeights, "course has no weight configuration")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weight configuration")
	}

	return &courseData{course: course, sections: sections, weights: weights}, nil
}

// analysisCacheKey embeds the weight fingerprint so a configuration change
// can never serve statistics computed under the old weights.
func analysisCacheKey(courseID string, cfg *models.WeightConfiguration) string {
	return fmt.Sprintf("uca:analysis:%s:%s", courseID, cfg.Fingerprint())
}

// GetCourseAnalysis computes (or serves from cache) the full statistics view
// for a course.
func (s *AnalysisService) GetCourseAnalysis(ctx context.Context, courseID string) (*dto.CourseAnalysisResponse, error) {
	data, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	key := analysisCacheKey(courseID, data.weights)
	var cached dto.CourseAnalysisResponse
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		cached.Cached = true
		return &cached, nil
	}

	cohort, sectionStats, err := s.stats.ComputeCohortStatistics(courseID, data.sections, *data.weights)
	if err != nil {
		return nil, err
	}

	// Default full selection; the UI filters series client-side.
	selection, _ := ResolveToggles(models.ToggleSelection{})
	specs := []models.ChartSpecification{
		s.charts.BuildSectionComparison(data.course.Name, sectionStats, selection),
		s.charts.BuildCompositeSummary(data.course.Name, sectionStats),
	}

	resp := &dto.CourseAnalysisResponse{
		Course:      *data.course,
		Weights:     data.weights.Weights,
		Sections:    sectionStats,
		Cohort:      *cohort,
		Charts:      specs,
		GeneratedAt: time.Now().UTC(),
	}
	_ = s.cache.Set(ctx, key, resp, s.cacheTTL)
	return resp, nil
}

// ExportCharts builds and persists the requested chart artifacts. A failed
// export aborts that chart only; the call errors out only when every
// requested chart failed.
func (s *AnalysisService) ExportCharts(ctx context.Context, courseID string, req dto.ChartExportRequest) (*dto.ChartExportResponse, error) {
	selection, err := ResolveToggles(req.Toggles)
	if err != nil {
		return nil, err
	}

	data, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	_, sectionStats, err := s.stats.ComputeCohortStatistics(courseID, data.sections, *data.weights)
	if err != nil {
		return nil, err
	}

	kinds := req.Kinds
	if len(kinds) == 0 {
		kinds = []models.ChartKind{models.ChartKindSectionComparison, models.ChartKindWeightedComposite}
	}

	resp := &dto.ChartExportResponse{}
	var lastErr error
	for _, kind := range kinds {
		spec, specErr := s.buildSpec(ctx, kind, data, sectionStats, selection)
		if specErr != nil {
			lastErr = specErr
			continue
		}
		artifact, exportErr := s.artifacts.Export(ctx, spec, courseID, kind)
		if exportErr != nil {
			s.logger.Error("chart export failed",
				zap.String("course_id", courseID),
				zap.String("chart_kind", string(kind)),
				zap.Error(exportErr))
			lastErr = exportErr
			continue
		}
		resp.Artifacts = append(resp.Artifacts, *artifact)
	}

	if len(resp.Artifacts) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return resp, nil
}

func (s *AnalysisService) buildSpec(ctx context.Context, kind models.ChartKind, data *courseData, sectionStats []models.SectionStatistics, selection ResolvedSelection) (models.ChartSpecification, error) {
	switch kind {
	case models.ChartKindSectionComparison:
		return s.charts.BuildSectionComparison(data.course.Name, sectionStats, selection), nil
	case models.ChartKindWeightedComposite:
		return s.charts.BuildCompositeSummary(data.course.Name, sectionStats), nil
	case models.ChartKindGradeDistribution:
		rows, err := s.distributions.ListByCourse(ctx, data.course.ID)
		if err != nil {
			return models.ChartSpecification{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade distribution")
		}
		return s.charts.BuildDistributionChart(data.course.Name, data.sections, rows), nil
	default:
		return models.ChartSpecification{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown chart kind %q", kind))
	}
}

// Snapshot dumps the course's raw data and derived statistics as one JSON
// payload for archival or offline analysis.
func (s *AnalysisService) Snapshot(ctx context.Context, courseID string) (*dto.CourseSnapshot, error) {
	data, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	cohort, sectionStats, err := s.stats.ComputeCohortStatistics(courseID, data.sections, *data.weights)
	if err != nil {
		return nil, err
	}
	rows, err := s.distributions.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade distribution")
	}
	return &dto.CourseSnapshot{
		Course:       *data.course,
		Weights:      data.weights.Weights,
		Sections:     data.sections,
		Statistics:   sectionStats,
		Cohort:       *cohort,
		Distribution: rows,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

// InvalidateCourse drops cached statistics for a course after its records or
// weights change.
func (s *AnalysisService) InvalidateCourse(ctx context.Context, courseID string) {
	_ = s.cache.Invalidate(ctx, fmt.Sprintf("uca:analysis:%s:*", courseID))
}
