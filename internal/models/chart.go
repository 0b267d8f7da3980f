package models

// ChartKind identifies the chart produced from a set of statistics. Together
// with a course ID it forms the deterministic artifact key.
type ChartKind string

const (
	// ChartKindSectionComparison is the grouped-bar chart with one group per
	// section and one bar per included category.
	ChartKindSectionComparison ChartKind = "section_comparison"
	// ChartKindWeightedComposite is the single-bar-per-section summary of
	// weighted composite scores.
	ChartKindWeightedComposite ChartKind = "weighted_composite"
	// ChartKindGradeDistribution shows letter-grade counts per section.
	ChartKindGradeDistribution ChartKind = "grade_distribution"
)

// Valid reports whether the kind is one of the supported charts.
func (k ChartKind) Valid() bool {
	switch k {
	case ChartKindSectionComparison, ChartKindWeightedComposite, ChartKindGradeDistribution:
		return true
	default:
		return false
	}
}

// ToggleSelection carries the caller's per-request series visibility choices.
// A nil entry means "unspecified"; the resolver applies defaults. Stateless,
// scoped to a single chart request.
type ToggleSelection struct {
	Categories map[Category]bool `json:"categories,omitempty"`
	Composite  *bool             `json:"composite,omitempty"`
}

// ChartSeries is one labelled data series of a chart, aligned with Labels.
type ChartSeries struct {
	Key    string    `json:"key"`
	Name   string    `json:"name"`
	Color  string    `json:"color"`
	Values []float64 `json:"values"`
}

// ChartSpecification is the abstract description a rendering engine consumes.
// It is self-describing: labels carry category names and section identifiers
// verbatim so the artifact does not need the source statistics replayed.
type ChartSpecification struct {
	Kind       ChartKind     `json:"kind"`
	Title      string        `json:"title"`
	XAxisTitle string        `json:"x_axis_title"`
	YAxisTitle string        `json:"y_axis_title"`
	Labels     []string      `json:"labels"`
	Series     []ChartSeries `json:"series"`
	YMax       float64       `json:"y_max,omitempty"`
}
