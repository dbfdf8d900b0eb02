package eval

import (
	"math"
	"strings"
)

// An answer passes when it covers at least half of the expected concepts.
const passCoverage = 0.5

// Score grades an answer by concept coverage: case-insensitive substring
// containment per expected concept. Pure function, no side effects.
func Score(answer string, expectedConcepts []string) ScoreResult {
	result := ScoreResult{
		Hits:   []string{},
		Missed: []string{},
	}

	if len(expectedConcepts) == 0 {
		return result
	}

	lowered := strings.ToLower(answer)
	for _, concept := range expectedConcepts {
		if strings.Contains(lowered, strings.ToLower(concept)) {
			result.Hits = append(result.Hits, concept)
		} else {
			result.Missed = append(result.Missed, concept)
		}
	}

	coverage := float64(len(result.Hits)) / float64(len(expectedConcepts))
	result.Coverage = math.Round(coverage*100) / 100
	result.Pass = result.Coverage >= passCoverage

	return result
}
