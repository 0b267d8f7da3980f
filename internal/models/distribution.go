package models

import "strconv"

// GradeBand defines one letter grade and its percentage range. MaxPercentage
// of nil means open-ended ("92.5%+").
type GradeBand struct {
	Grade         string   `db:"grade" json:"grade"`
	MinPercentage float64  `db:"min_percentage" json:"min_percentage"`
	MaxPercentage *float64 `db:"max_percentage" json:"max_percentage,omitempty"`
	Order         int      `db:"sort_order" json:"order"`
}

func pct(v float64) *float64 { return &v }

// DefaultGradeBands is the institutional default boundary table, applied when
// a course has no custom bands.
var DefaultGradeBands = []GradeBand{
	{Grade: "A", MinPercentage: 92.5, Order: 0},
	{Grade: "A-", MinPercentage: 89.5, MaxPercentage: pct(92.5), Order: 1},
	{Grade: "B+", MinPercentage: 86.5, MaxPercentage: pct(89.5), Order: 2},
	{Grade: "B", MinPercentage: 82.5, MaxPercentage: pct(86.5), Order: 3},
	{Grade: "B-", MinPercentage: 79.5, MaxPercentage: pct(82.5), Order: 4},
	{Grade: "C+", MinPercentage: 76.5, MaxPercentage: pct(79.5), Order: 5},
	{Grade: "C", MinPercentage: 72.5, MaxPercentage: pct(76.5), Order: 6},
	{Grade: "C-", MinPercentage: 69.5, MaxPercentage: pct(72.5), Order: 7},
	{Grade: "D", MinPercentage: 59.5, MaxPercentage: pct(69.5), Order: 8},
	{Grade: "F", MinPercentage: 0, MaxPercentage: pct(59.5), Order: 9},
}

// RangeDisplay formats the band's percentage range for tables and legends.
func (b GradeBand) RangeDisplay() string {
	min := strconv.FormatFloat(b.MinPercentage, 'f', -1, 64)
	if b.MaxPercentage != nil {
		max := strconv.FormatFloat(*b.MaxPercentage, 'f', -1, 64)
		return min + "-" + max + "%"
	}
	return min + "%+"
}

// GradeDistributionRow stores the student count for one letter grade in one
// section.
type GradeDistributionRow struct {
	ID        string `db:"id" json:"id"`
	CourseID  string `db:"course_id" json:"course_id"`
	SectionID string `db:"section_id" json:"section_id"`
	Grade     string `db:"grade" json:"grade"`
	Count     int    `db:"count" json:"count"`
}
