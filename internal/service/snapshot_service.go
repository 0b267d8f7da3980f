package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/uca-platform/uca-api/internal/dto"
	"github.com/uca-platform/uca-api/internal/models"
	appErrors "github.com/uca-platform/uca-api/pkg/errors"
)

type courseWriter interface {
	Upsert(ctx context.Context, course *models.Course) error
}

type sectionWriter interface {
	Upsert(ctx context.Context, section *models.Section) error
}

type assessmentWriter interface {
	ReplaceForSection(ctx context.Context, sectionID string, records []models.AssessmentRecord) error
}

type weightConfigWriter interface {
	Upsert(ctx context.Context, cfg *models.WeightConfiguration) error
}

type distributionWriter interface {
	ReplaceForSection(ctx context.Context, courseID, sectionID string, rows []models.GradeDistributionRow) error
}

// SnapshotService restores a course from an exported snapshot. The snapshot's
// weight configuration and assessment records are validated before anything
// is written, so a rejected import leaves the stored course untouched.
type SnapshotService struct {
	courses       courseWriter
	sections      sectionWriter
	assessments   assessmentWriter
	weights       weightConfigWriter
	distributions distributionWriter
	analysis      *AnalysisService
	logger        *zap.Logger
}

// NewSnapshotService constructs the importer.
func NewSnapshotService(
	courses courseWriter,
	sections sectionWriter,
	assessments assessmentWriter,
	weights weightConfigWriter,
	distributions distributionWriter,
	analysis *AnalysisService,
	logger *zap.Logger,
) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotService{
		courses:       courses,
		sections:      sections,
		assessments:   assessments,
		weights:       weights,
		distributions: distributions,
		analysis:      analysis,
		logger:        logger,
	}
}

// Import replaces the course's stored data with the snapshot's contents.
func (s *SnapshotService) Import(ctx context.Context, courseID string, snap dto.CourseSnapshot) (*dto.ImportSnapshotResult, error) {
	if snap.Course.ID == "" {
		snap.Course.ID = courseID
	}
	if snap.Course.ID != courseID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "snapshot course id does not match the request path")
	}
	if snap.Course.Name == "" || snap.Course.Code == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "snapshot course requires name and code")
	}

	cfg := models.WeightConfiguration{CourseID: courseID, Weights: snap.Weights}
	if err := cfg.Validate(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidWeights.Code, appErrors.ErrInvalidWeights.Status, "invalid weight configuration")
	}
	for _, section := range snap.Sections {
		for _, record := range section.Records {
			if err := record.Validate(); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assessment record")
			}
		}
	}

	if err := s.courses.Upsert(ctx, &snap.Course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store course")
	}

	result := &dto.ImportSnapshotResult{CourseID: courseID}
	for i := range snap.Sections {
		section := snap.Sections[i]
		section.CourseID = courseID
		if err := s.sections.Upsert(ctx, &section); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store section")
		}
		if err := s.assessments.ReplaceForSection(ctx, section.ID, section.Records); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store assessment records")
		}
		result.Sections++
		result.Records += len(section.Records)
	}

	if err := s.weights.Upsert(ctx, &cfg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store weight configuration")
	}

	bySection := make(map[string][]models.GradeDistributionRow)
	for _, row := range snap.Distribution {
		bySection[row.SectionID] = append(bySection[row.SectionID], row)
	}
	for sectionID, rows := range bySection {
		if err := s.distributions.ReplaceForSection(ctx, courseID, sectionID, rows); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store grade distribution")
		}
		result.DistributionRows += len(rows)
	}

	s.analysis.InvalidateCourse(ctx, courseID)
	s.logger.Info("course snapshot imported",
		zap.String("course_id", courseID),
		zap.Int("sections", result.Sections),
		zap.Int("records", result.Records))
	return result, nil
}
