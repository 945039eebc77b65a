package review

import (
	"fmt"
	"regexp"
	"strconv"
)

// Per-dimension fallback patterns in decreasing specificity: indexed label
// with full name, bare name, bare indexed label. The first match wins.
var scorePatterns = buildScorePatterns()

var compositeExpr = regexp.MustCompile(`\*\*([0-9.]+)\s*/\s*5\*\*`)

func buildScorePatterns() [][]*regexp.Regexp {
	patterns := make([][]*regexp.Regexp, len(Dimensions))
	for i, dim := range Dimensions {
		name := regexp.QuoteMeta(dim.Name)
		patterns[i] = []*regexp.Regexp{
			regexp.MustCompile(fmt.Sprintf(`Dimension\s*%d\s*[-–]\s*%s\s*:\s*([0-9])`, i+1, name)),
			regexp.MustCompile(fmt.Sprintf(`%s\s*:\s*([0-9])`, name)),
			regexp.MustCompile(fmt.Sprintf(`Dimension\s*%d\s*:\s*([0-9])`, i+1)),
		}
	}
	return patterns
}

// ParseScores extracts per-dimension scores from free review text and computes
// the weighted composite. Matched digits outside [1,5] leave the dimension
// unscored. An incomplete score set yields the 0 sentinel composite, which is
// distinct from any genuine score (minimum weighted sum is 1.0).
func ParseScores(text string) (map[string]int, float64) {
	scores := make(map[string]int, len(Dimensions))

	for i, dim := range Dimensions {
		for _, pattern := range scorePatterns[i] {
			m := pattern.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			if v, err := strconv.Atoi(m[1]); err == nil && v >= 1 && v <= 5 {
				scores[dim.Name] = v
			}
			break
		}
	}

	if len(scores) != len(Dimensions) {
		return scores, 0
	}

	var weighted float64
	for _, dim := range Dimensions {
		weighted += float64(scores[dim.Name]) * dim.Weight
	}
	return scores, RoundToHalf(weighted)
}

// ParseComposite recovers the composite value from a persisted score record's
// literal `**X/5**` line.
func ParseComposite(text string) (float64, bool) {
	m := compositeExpr.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatComposite renders a composite for score records and ranking rows,
// always with one decimal place so the value stays a parseable half-multiple.
func FormatComposite(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
