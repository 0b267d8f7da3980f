package service

import (
	"math"

	"go.uber.org/zap"

	"github.com/uca-platform/uca-api/internal/models"
	appErrors "github.com/uca-platform/uca-api/pkg/errors"
)

// StatisticsService derives per-section and cohort statistics from raw
// assessment records and a weight configuration. Computation is pure: it
// never queries storage and identical inputs always produce identical
// outputs, which is what makes exported reports reproducible.
type StatisticsService struct {
	logger *zap.Logger
}

// NewStatisticsService constructs the statistics service.
func NewStatisticsService(logger *zap.Logger) *StatisticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatisticsService{logger: logger}
}

// ComputeSectionStatistics derives one section's normalized category averages
// and weighted composite.
//
// Each record is normalized to a 0-100 scale before same-category instances
// are averaged (normalize-then-average): three quizzes with different max
// marks each count equally, instead of letting a high-max quiz dominate a raw
// marks average. The composite then applies the category weights over the
// categories the section actually has records for; an absent category
// contributes nothing and its weight is excluded from the denominator for
// that section only, so sections with different category coverage stay
// comparable.
//
// The weight configuration is validated before computing; ErrInvalidWeights
// is returned when the weights do not sum to 100 within tolerance.
func (s *StatisticsService) ComputeSectionStatistics(section models.Section, cfg models.WeightConfiguration) (models.SectionStatistics, error) {
	if err := cfg.Validate(); err != nil {
		return models.SectionStatistics{}, appErrors.Wrap(err, appErrors.ErrInvalidWeights.Code, appErrors.ErrInvalidWeights.Status, "invalid weight configuration")
	}
	return s.computeSection(section, cfg), nil
}

// computeSection does the per-section math for an already validated
// configuration. ComputeCohortStatistics validates once and calls this in a
// loop rather than re-validating per section.
func (s *StatisticsService) computeSection(section models.Section, cfg models.WeightConfiguration) models.SectionStatistics {
	stats := models.SectionStatistics{
		SectionID:     section.ID,
		SectionNumber: section.SectionNumber,
		Instructor:    section.Instructor,
		TotalStudents: section.TotalStudents,
		CategoryAvg:   make(map[models.Category]float64),
	}

	if len(section.Records) == 0 {
		// No records is a warning, not an error: the composite stays 0 and
		// downstream charting still renders a bar at zero.
		stats.MissingData = true
		s.logger.Warn("section has no assessment records",
			zap.String("section_id", section.ID),
			zap.Int("section_number", section.SectionNumber))
		return stats
	}

	sums := make(map[models.Category]float64)
	counts := make(map[models.Category]int)
	for _, record := range section.Records {
		if record.MaxMarks <= 0 {
			continue
		}
		pct := record.AverageMarks / record.MaxMarks * 100
		sums[record.Category] += pct
		counts[record.Category]++
	}
	for _, category := range models.Categories {
		if counts[category] == 0 {
			continue
		}
		stats.CategoryAvg[category] = sums[category] / float64(counts[category])
	}

	var weightedSum, weightTotal float64
	for _, category := range models.Categories {
		avg, present := stats.CategoryAvg[category]
		if !present {
			continue
		}
		weight := cfg.Weight(category)
		if weight <= 0 {
			continue
		}
		weightedSum += avg * weight
		weightTotal += weight
	}
	if weightTotal > 0 {
		stats.Composite = weightedSum / weightTotal
	}

	return stats
}

// ComputeCohortStatistics derives the course-level aggregate over all
// sections plus each section's statistics. The weight configuration is
// validated exactly once here; an invalid configuration fails the whole
// computation before any section is processed.
func (s *StatisticsService) ComputeCohortStatistics(courseID string, sections []models.Section, cfg models.WeightConfiguration) (*models.CohortStatistics, []models.SectionStatistics, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInvalidWeights.Code, appErrors.ErrInvalidWeights.Status, "invalid weight configuration")
	}

	sectionStats := make([]models.SectionStatistics, 0, len(sections))
	for _, section := range sections {
		sectionStats = append(sectionStats, s.computeSection(section, cfg))
	}

	cohort := &models.CohortStatistics{
		CourseID:      courseID,
		SectionCount:  len(sectionStats),
		CategoryMeans: make(map[models.Category]float64),
	}
	if len(sectionStats) == 0 {
		return cohort, sectionStats, nil
	}

	var sum float64
	cohort.Min = math.Inf(1)
	cohort.Max = math.Inf(-1)
	for _, stats := range sectionStats {
		sum += stats.Composite
		if stats.Composite < cohort.Min {
			cohort.Min = stats.Composite
		}
		if stats.Composite > cohort.Max {
			cohort.Max = stats.Composite
		}
	}
	cohort.Mean = sum / float64(len(sectionStats))

	var variance float64
	for _, stats := range sectionStats {
		diff := stats.Composite - cohort.Mean
		variance += diff * diff
	}
	cohort.StdDev = math.Sqrt(variance / float64(len(sectionStats)))

	for _, category := range models.Categories {
		var total float64
		var n int
		for _, stats := range sectionStats {
			if avg, ok := stats.CategoryAvg[category]; ok {
				total += avg
				n++
			}
		}
		if n > 0 {
			cohort.CategoryMeans[category] = total / float64(n)
		}
	}

	return cohort, sectionStats, nil
}
