package matching

import (
	"math"
	"strings"
)

// Result is the outcome of scoring a consultant skill set against an
// opportunity's required skills. Matched and Gaps keep the original spelling
// and order of the required list.
type Result struct {
	Percentage uint     `json:"percentage"`
	Matched    []string `json:"matched"`
	Gaps       []string `json:"gaps"`
}

// Score computes how much of the required skill list the consultant covers.
// A required skill counts as matched when any normalized consultant skill is
// a substring of the normalized required skill or vice versa, so naming
// variants like "React" and "React.js" still match. An empty required list
// scores 0, never an error. Deterministic: identical inputs give identical
// results, which is what makes version-keyed score caching sound.
func Score(consultantSkills []string, requiredSkills []string) Result {
	res := Result{Matched: []string{}, Gaps: []string{}}

	if len(requiredSkills) == 0 {
		return res
	}

	normalized := make([]string, 0, len(consultantSkills))
	for _, s := range consultantSkills {
		if n := Normalize(s); n != "" {
			normalized = append(normalized, n)
		}
	}

	for _, required := range requiredSkills {
		if covers(normalized, Normalize(required)) {
			res.Matched = append(res.Matched, required)
		} else {
			res.Gaps = append(res.Gaps, required)
		}
	}

	res.Percentage = uint(math.Round(100 * float64(len(res.Matched)) / float64(len(requiredSkills))))
	return res
}

func covers(normalizedSkills []string, required string) bool {
	if required == "" {
		return false
	}
	for _, skill := range normalizedSkills {
		if strings.Contains(required, skill) || strings.Contains(skill, required) {
			return true
		}
	}
	return false
}
