package review

import "math"

// Dimension is one weighted criterion of the quality review rubric.
type Dimension struct {
	Name   string
	Weight float64
}

// Dimensions is the fixed 8-dimension review rubric. Weights sum to 1.0 and
// the order matches the score block the review prompt asks the model to emit.
var Dimensions = []Dimension{
	{Name: "Factual Accuracy", Weight: 0.20},
	{Name: "Source Credibility", Weight: 0.15},
	{Name: "Analytical Depth", Weight: 0.20},
	{Name: "Objectivity", Weight: 0.15},
	{Name: "Comprehensiveness", Weight: 0.10},
	{Name: "Timeliness", Weight: 0.10},
	{Name: "Clarity", Weight: 0.05},
	{Name: "Practical Insight", Weight: 0.05},
}

// Abbreviations for ranking-table column headers, same order as Dimensions.
var Abbreviations = []string{
	"Accuracy", "Sources", "Depth", "Objectivity",
	"Coverage", "Timeliness", "Clarity", "Insight",
}

// RoundToHalf rounds to the nearest multiple of 0.5, halves rounding up:
// 4.3 becomes 4.5, 4.2 becomes 4.0.
func RoundToHalf(v float64) float64 {
	return math.Floor(v*2+0.5) / 2
}
