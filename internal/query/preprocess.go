package query

import (
	"regexp"
	"strings"
)

// typoFixes corrects common misspellings of educational terms before retrieval.
var typoFixes = map[string]string{
	"assesment":   "assessment",
	"assesments":  "assessments",
	"assement":    "assessment",
	"asessment":   "assessment",
	"evalution":   "evaluation",
	"evalutions":  "evaluations",
	"evalutation": "evaluation",
	"evaulation":  "evaluation",
	"diferent":    "different",
	"diference":   "difference",
	"effecive":    "effective",
	"effectiv":    "effective",
	"tecnique":    "technique",
	"tecniques":   "techniques",
	"strategie":   "strategies",
	"stratagies":  "strategies",
}

// abbreviations expands common educational acronyms so retrieval matches the
// long forms stored in source documents.
var abbreviations = map[string]string{
	"ai":    "artificial intelligence",
	"ml":    "machine learning",
	"nlp":   "natural language processing",
	"lms":   "learning management system",
	"iep":   "individualized education program",
	"rti":   "response to intervention",
	"pbl":   "project based learning",
	"stem":  "science technology engineering mathematics",
	"steam": "science technology engineering arts mathematics",
	"sel":   "social emotional learning",
	"ell":   "english language learner",
	"esl":   "english second language",
	"slo":   "student learning objective",
	"pln":   "professional learning network",
	"plc":   "professional learning community",
}

// synonymExpansions appends related terms for key educational concepts,
// widening recall without changing query intent. At most two related terms
// are added per concept.
var synonymExpansions = map[string][]string{
	"assessment":      {"evaluation", "testing"},
	"evaluation":      {"assessment", "testing"},
	"pedagogy":        {"teaching", "instruction"},
	"differentiation": {"personalization", "individualization"},
	"engagement":      {"motivation", "participation"},
	"curriculum":      {"program", "standards"},
	"objective":       {"goal", "outcome"},
}

var wordRe = regexp.MustCompile(`\b[\w-]+\b`)

// Preprocess normalizes a query for retrieval: lowercases, collapses
// whitespace, fixes known typos, expands abbreviations, and appends synonyms
// for key educational concepts. The original query is never mutated; callers
// keep it for display and follow-up detection.
func Preprocess(q string) string {
	processed := strings.ToLower(strings.TrimSpace(q))
	processed = strings.Join(strings.Fields(processed), " ")

	words := strings.Fields(processed)
	for i, w := range words {
		clean := strings.Trim(w, ".,!?;:\"()[]")
		if fix, ok := typoFixes[clean]; ok {
			words[i] = strings.Replace(w, clean, fix, 1)
		} else if full, ok := abbreviations[clean]; ok {
			words[i] = strings.Replace(w, clean, full, 1)
		}
	}
	processed = strings.Join(words, " ")

	// Synonym expansion appends, never substitutes, so the user's own terms
	// keep their full weight in the embedding.
	for _, w := range wordRe.FindAllString(processed, -1) {
		related, ok := synonymExpansions[w]
		if !ok {
			continue
		}
		for _, term := range related {
			if !strings.Contains(processed, term) {
				processed += " " + term
			}
		}
	}

	return strings.TrimSpace(processed)
}
