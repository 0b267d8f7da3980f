package models

import (
	"crypto/sha256"
	"database/sql/driver"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// Category enumerates the assessment categories a course may grade.
type Category string

const (
	CategoryQuiz       Category = "quiz"
	CategoryAssignment Category = "assignment"
	CategoryHomework   Category = "homework"
	CategoryMidterm    Category = "midterm"
	CategoryFinal      Category = "final"
	CategoryLab        Category = "lab"
)

// Categories lists every category in canonical order. All statistics and
// chart series iterate in this order so identical inputs always produce
// identical outputs.
var Categories = []Category{
	CategoryQuiz,
	CategoryAssignment,
	CategoryHomework,
	CategoryMidterm,
	CategoryFinal,
	CategoryLab,
}

// DisplayName returns the human label used on charts and reports.
func (c Category) DisplayName() string {
	switch c {
	case CategoryQuiz:
		return "Quiz"
	case CategoryAssignment:
		return "Assignment"
	case CategoryHomework:
		return "Homework"
	case CategoryMidterm:
		return "Midterm"
	case CategoryFinal:
		return "Final"
	case CategoryLab:
		return "Lab"
	default:
		return string(c)
	}
}

// Valid reports whether the category is one of the known assessment types.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// AssessmentRecord stores the aggregate outcome of one assessment instance
// for a section (e.g. Quiz 2). Max and average marks are raw, not yet
// normalized to a percentage scale.
type AssessmentRecord struct {
	ID             string    `db:"id" json:"id"`
	SectionID      string    `db:"section_id" json:"section_id"`
	Category       Category  `db:"category" json:"category"`
	InstanceNumber int       `db:"instance_number" json:"instance_number"`
	MaxMarks       float64   `db:"max_marks" json:"max_marks"`
	AverageMarks   float64   `db:"average_marks" json:"average_marks"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Validate checks record-level invariants.
func (a AssessmentRecord) Validate() error {
	if !a.Category.Valid() {
		return fmt.Errorf("unknown category %q", a.Category)
	}
	if a.MaxMarks <= 0 {
		return fmt.Errorf("max_marks must be positive, got %v", a.MaxMarks)
	}
	if a.AverageMarks < 0 || a.AverageMarks > a.MaxMarks {
		return fmt.Errorf("average_marks %v out of range [0, %v]", a.AverageMarks, a.MaxMarks)
	}
	return nil
}

// WeightTolerance is the permitted deviation of a weight sum from 100.
const WeightTolerance = 0.01

// CategoryWeights is the per-category weight map, persisted as JSONB.
type CategoryWeights map[Category]float64

// Value marshals the weight map for persistence.
func (w CategoryWeights) Value() (driver.Value, error) {
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("marshal category weights: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSONB payload into the weight map.
func (w *CategoryWeights) Scan(value interface{}) error {
	if value == nil {
		*w = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for CategoryWeights", value)
	}
	if len(data) == 0 {
		*w = nil
		return nil
	}
	if err := json.Unmarshal(data, w); err != nil {
		return fmt.Errorf("unmarshal category weights: %w", err)
	}
	return nil
}

// WeightConfiguration maps assessment categories to percentage weights.
// Weights across categories in use must sum to 100 within WeightTolerance.
type WeightConfiguration struct {
	ID        string          `db:"id" json:"id"`
	CourseID  string          `db:"course_id" json:"course_id"`
	Weights   CategoryWeights `db:"weights" json:"weights"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Validate verifies that the configured weights sum to 100 within tolerance.
// Violations are reported, never silently normalized.
func (w WeightConfiguration) Validate() error {
	if len(w.Weights) == 0 {
		return fmt.Errorf("no weights configured")
	}
	total := 0.0
	for category, weight := range w.Weights {
		if !category.Valid() {
			return fmt.Errorf("unknown category %q in weight configuration", category)
		}
		if weight < 0 || weight > 100 {
			return fmt.Errorf("weight for %s out of range [0, 100]: %v", category, weight)
		}
		total += weight
	}
	if math.Abs(total-100) > WeightTolerance {
		return fmt.Errorf("weights sum to %.2f, expected 100.00", total)
	}
	return nil
}

// Weight returns the configured weight for a category, zero when absent.
func (w WeightConfiguration) Weight(category Category) float64 {
	return w.Weights[category]
}

// Fingerprint returns a stable digest of the weight values. Cache keys for
// derived statistics embed it so a weight change can never serve stale data.
func (w WeightConfiguration) Fingerprint() string {
	keys := make([]string, 0, len(w.Weights))
	for category := range w.Weights {
		keys = append(keys, string(category))
	}
	sort.Strings(keys)
	h := sha256.New()
	for _, key := range keys {
		fmt.Fprintf(h, "%s=%.4f;", key, w.Weights[Category(key)])
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
