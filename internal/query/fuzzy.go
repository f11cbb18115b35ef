package query

import "strings"

// fuzzyCorrections maps frequent misspellings of domain vocabulary to their
// corrected forms. Distinct from typoFixes: these run as their own retrieval
// strategy so corrected results can carry a small score penalty.
var fuzzyCorrections = map[string]string{
	"assesment":  "assessment",
	"evalution":  "evaluation",
	"learing":    "learning",
	"teching":    "teaching",
	"studens":    "students",
	"objetive":   "objective",
	"stragety":   "strategy",
	"knowlege":   "knowledge",
	"performace": "performance",
	"engagment":  "engagement",
	"curriculm":  "curriculum",
	"instraction": "instruction",
}

// FuzzyCorrect applies the correction dictionary to a query. It returns the
// corrected query and whether any correction was applied; the fuzzy retrieval
// strategy only re-searches when corrections were made.
func FuzzyCorrect(q string) (string, bool) {
	corrected := strings.ToLower(q)
	applied := false
	for typo, fix := range fuzzyCorrections {
		if strings.Contains(corrected, typo) {
			corrected = strings.ReplaceAll(corrected, typo, fix)
			applied = true
		}
	}
	return corrected, applied
}
