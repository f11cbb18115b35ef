package query

import "strings"

var keywordStopwords = map[string]struct{}{
	"what": {}, "is": {}, "are": {}, "the": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {},
	"by": {}, "from": {}, "how": {}, "does": {}, "do": {}, "can": {}, "will": {},
	"would": {}, "tell": {}, "me": {}, "about": {}, "explain": {}, "describe": {},
	"give": {}, "information": {}, "different": {}, "types": {}, "kind": {},
	"kinds": {}, "type": {},
}

// educationalTerms are prioritized when extracting core keywords: a query
// about "formative assessment strategies" should re-search on those terms
// before anything else.
var educationalTerms = map[string]struct{}{
	"assessment": {}, "formative": {}, "summative": {}, "evaluation": {},
	"testing": {}, "grading": {}, "student": {}, "learning": {}, "teaching": {},
}

// CoreKeywords extracts the salient terms of a query for the keyword-focused
// retrieval strategy: stopword-filtered words of four or more characters,
// educational vocabulary first, then at most three other keywords.
func CoreKeywords(q string) []string {
	var priority, other []string
	for _, w := range strings.Fields(strings.ToLower(q)) {
		w = strings.Trim(w, ".,!?;:\"()[]")
		if len(w) <= 3 {
			continue
		}
		if _, stop := keywordStopwords[w]; stop {
			continue
		}
		if _, edu := educationalTerms[w]; edu {
			priority = append(priority, w)
		} else {
			other = append(other, w)
		}
	}

	if len(other) > 3 {
		other = other[:3]
	}
	return append(priority, other...)
}
