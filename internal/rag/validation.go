package rag

import "strings"

// refusalPhrases mark a generated answer as unusable. The generation gateway
// never errors on refusals; they surface here as ordinary low-quality text.
var refusalPhrases = []string{
	"i don't know",
	"i do not know",
	"i cannot answer",
	"i can't answer",
	"i'm unable to",
	"i am unable to",
	"as an ai",
	"no information available",
	"does not contain any information",
}

// domainVocabulary signals that an answer engages with educational content.
var domainVocabulary = []string{
	"student", "teacher", "learning", "teaching", "assessment", "curriculum",
	"classroom", "lesson", "school", "grade", "instruction", "education",
}

// fallbackLimit caps the extraction fallback answer length.
const fallbackLimit = 900

// ValidAnswer reports whether generated text can stand as an answer to the
// query. Rejected answers trigger the deterministic extraction fallback, so
// this errs toward rejecting: too short, refusal phrasing, no lexical
// grounding in the query or the domain, or fewer than two substantive
// sentences.
func ValidAnswer(answer, query string) bool {
	trimmed := strings.TrimSpace(answer)
	if len(trimmed) < 20 {
		return false
	}

	lower := strings.ToLower(trimmed)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, phrase) {
			return false
		}
	}

	grounded := false
	for _, w := range strings.Fields(strings.ToLower(query)) {
		w = strings.Trim(w, ".,!?;:\"'()")
		if len(w) > 3 && strings.Contains(lower, w) {
			grounded = true
			break
		}
	}
	if !grounded {
		for _, term := range domainVocabulary {
			if strings.Contains(lower, term) {
				grounded = true
				break
			}
		}
	}
	// A long answer can stand alone even without detected grounding.
	if !grounded && len(trimmed) < 200 {
		return false
	}

	substantive := 0
	for _, sentence := range splitIntoSentences(trimmed) {
		if len(strings.Fields(sentence)) >= 3 {
			substantive++
		}
	}
	return substantive >= 2
}

// ExtractFallback builds a deterministic answer directly from the assembled
// context when generation fails or produces invalid text. It returns the
// first substantive passages, length-capped, with source header lines
// stripped.
func ExtractFallback(assembledContext string) string {
	var passages []string
	used := 0

	for _, block := range strings.Split(assembledContext, "\n\n") {
		var lines []string
		for _, line := range strings.Split(block, "\n") {
			if strings.HasPrefix(line, "Source: ") {
				continue
			}
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				lines = append(lines, trimmed)
			}
		}
		passage := strings.Join(lines, " ")
		if len(strings.Fields(passage)) < 5 {
			continue
		}
		if used+len(passage) > fallbackLimit && used > 0 {
			break
		}
		passages = append(passages, passage)
		used += len(passage)
	}

	if len(passages) == 0 {
		return ""
	}
	return "Based on the available documents:\n\n" + strings.Join(passages, "\n\n")
}

// NoResultsAnswer is the templated response for empty evidence. The phrasing
// acknowledges the conversation when the query was a follow-up.
func NoResultsAnswer(isFollowUp bool) string {
	if isFollowUp {
		return "I couldn't find more information about that topic in the knowledge base. " +
			"Could you rephrase the follow-up, or ask about a related area?"
	}
	return "I couldn't find relevant information in the knowledge base to answer that. " +
		"Try rephrasing the question or asking about a related topic."
}

// splitIntoSentences is a cheap sentence splitter for answer validation.
func splitIntoSentences(s string) []string {
	var sentences []string
	start := 0
	for i, r := range s {
		if r == '.' || r == '!' || r == '?' {
			if sentence := strings.TrimSpace(s[start:i]); sentence != "" {
				sentences = append(sentences, sentence)
			}
			start = i + 1
		}
	}
	if tail := strings.TrimSpace(s[start:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}
