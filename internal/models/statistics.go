package models

// SectionStatistics is the derived, per-section view of assessment
// performance: one normalized average per category plus the weighted
// composite. Recomputed on demand, never stored as input.
type SectionStatistics struct {
	SectionID     string               `json:"section_id"`
	SectionNumber int                  `json:"section_number"`
	Instructor    string               `json:"instructor"`
	TotalStudents int                  `json:"total_students"`
	CategoryAvg   map[Category]float64 `json:"category_averages"`
	Composite     float64              `json:"composite"`
	// MissingData is set when the section has no assessment records at all.
	// The composite defaults to 0 and downstream charting still renders.
	MissingData bool `json:"missing_data,omitempty"`
}

// HasCategory reports whether the section produced a normalized average for
// the category (at least one record of that category exists).
func (s SectionStatistics) HasCategory(category Category) bool {
	_, ok := s.CategoryAvg[category]
	return ok
}

// CohortStatistics aggregates weighted composites across all sections of a
// course, plus per-category cohort means for cross-section comparison.
type CohortStatistics struct {
	CourseID      string               `json:"course_id"`
	SectionCount  int                  `json:"section_count"`
	Mean          float64              `json:"mean"`
	StdDev        float64              `json:"std_dev"`
	Min           float64              `json:"min"`
	Max           float64              `json:"max"`
	CategoryMeans map[Category]float64 `json:"category_means"`
}
