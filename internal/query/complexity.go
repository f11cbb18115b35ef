// Package query analyzes and normalizes user queries before retrieval:
// complexity classification, typo and abbreviation normalization, core-keyword
// extraction, content-category detection, and casual-conversation detection.
// All classification tables are plain data so they can be tested and extended
// without touching control flow.
package query

import "strings"

// Complexity is a coarse estimate of query difficulty, used to size retrieval
// breadth: harder questions need broader recall before filtering.
type Complexity string

const (
	Simple   Complexity = "SIMPLE"
	Moderate Complexity = "MODERATE"
	Complex  Complexity = "COMPLEX"
)

var simpleIndicators = []string{
	"what is", "who is", "when is", "where is", "define",
	"list", "name", "show", "find", "get", "tell me",
}

var complexIndicators = []string{
	"compare", "analyze", "evaluate", "explain why", "how does",
	"what are the differences", "pros and cons", "advantages and disadvantages",
	"implement", "strategy", "methodology", "framework", "comprehensive",
	"in-depth", "detailed analysis", "step-by-step",
}

var multiPartIndicators = []string{"and", "also", "additionally", "furthermore", "moreover"}

// Classify assigns a complexity tier to a query.
func Classify(q string) Complexity {
	lower := strings.ToLower(strings.TrimSpace(q))
	wordCount := len(strings.Fields(q))

	containsAny := func(indicators []string) bool {
		for _, ind := range indicators {
			if strings.Contains(lower, ind) {
				return true
			}
		}
		return false
	}

	multiPartHits := 0
	for _, ind := range multiPartIndicators {
		if strings.Contains(lower, ind) {
			multiPartHits++
		}
	}

	switch {
	case wordCount <= 5:
		return Simple
	case containsAny(complexIndicators):
		return Complex
	case wordCount > 15 || multiPartHits >= 2:
		return Complex
	case wordCount > 10 || containsAny([]string{"how", "why", "explain"}):
		return Moderate
	case containsAny(simpleIndicators):
		return Simple
	default:
		return Moderate
	}
}
