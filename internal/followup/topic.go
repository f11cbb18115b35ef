package followup

import (
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// maxPreviousKeywords bounds how much of the prior exchange is carried into
// the enhanced retrieval query.
const maxPreviousKeywords = 8

var topicStopwords = map[string]struct{}{
	"the": {}, "and": {}, "that": {}, "this": {}, "these": {}, "those": {},
	"with": {}, "from": {}, "your": {}, "have": {}, "has": {}, "are": {},
	"was": {}, "were": {}, "will": {}, "would": {}, "could": {}, "should": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "about": {}, "there": {},
	"their": {}, "they": {}, "them": {}, "then": {}, "than": {}, "also": {},
	"such": {}, "some": {}, "more": {}, "most": {}, "into": {}, "over": {},
	"here": {}, "been": {}, "being": {}, "does": {}, "very": {}, "each": {},
	"other": {}, "based": {}, "used": {}, "using": {}, "source": {},
}

// focusRules map cue words in a follow-up to what the user wants next.
// Checked in order; the first matching rule wins. Very short queries without
// a cue are clarifications; everything else is a general expansion.
var focusRules = []struct {
	focus string
	cues  []string
}{
	{"examples", []string{"example", "examples", "instance", "sample"}},
	{"alternatives", []string{"different", "difference", "other", "others", "alternative", "alternatives", "instead", "compare"}},
	{"details", []string{"detail", "details", "elaborate", "further", "deeper"}},
}

// ExtractTopic derives the topic of the previous exchange for query
// enhancement. The prior answer is flattened from markdown and its first
// substantive sentence becomes the topic; if the answer yields nothing
// usable, the prior question is used with its interrogative lead-in stripped.
func ExtractTopic(priorAnswer, priorQuestion string) string {
	plain := flattenMarkdown(priorAnswer)
	for _, sentence := range splitSentences(plain) {
		if len(strings.Fields(sentence)) >= 4 {
			return truncateWords(sentence, 12)
		}
	}

	question := strings.TrimSpace(priorQuestion)
	for _, lead := range []string{"what is ", "what are ", "how do ", "how does ", "tell me about ", "explain "} {
		if strings.HasPrefix(strings.ToLower(question), lead) {
			question = question[len(lead):]
			break
		}
	}
	return truncateWords(strings.TrimRight(question, "?!. "), 12)
}

// PreviousKeywords extracts the most frequent substantive terms from the
// prior exchange, markdown stripped, for retrieval enhancement.
func PreviousKeywords(priorQuestion, priorAnswer string) []string {
	combined := priorQuestion + " " + flattenMarkdown(priorAnswer)

	counts := make(map[string]int)
	var order []string
	for _, w := range strings.Fields(strings.ToLower(combined)) {
		w = strings.Trim(w, ".,!?;:\"'()[]*#")
		if len(w) <= 3 {
			continue
		}
		if _, stop := topicStopwords[w]; stop {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	// Frequency first, first appearance breaks ties for determinism.
	rank := make(map[string]int, len(order))
	for i, w := range order {
		rank[w] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return rank[order[i]] < rank[order[j]]
	})

	if len(order) > maxPreviousKeywords {
		order = order[:maxPreviousKeywords]
	}
	return order
}

// ClassifyFocus labels what the follow-up is asking for relative to the
// previous answer.
func ClassifyFocus(q string) string {
	lower := " " + strings.ToLower(q) + " "
	words := make(map[string]struct{})
	for _, w := range strings.Fields(lower) {
		words[strings.Trim(w, ".,!?;:\"'()")] = struct{}{}
	}

	for _, rule := range focusRules {
		for _, cue := range rule.cues {
			if _, ok := words[cue]; ok {
				return rule.focus
			}
		}
	}
	if len(strings.Fields(q)) <= 4 {
		return "clarification"
	}
	return "general_expansion"
}

// EnhanceQuery widens a follow-up's retrieval query with the prior topic and
// keywords, since the literal follow-up text ("give me examples of these") is
// useless as a search query on its own.
func EnhanceQuery(processedQuery string, r Result) string {
	if !r.IsFollowUp {
		return processedQuery
	}

	parts := []string{processedQuery}
	if r.Topic != "" {
		parts = append(parts, strings.ToLower(r.Topic))
	}
	for i, kw := range r.PreviousKeywords {
		if i >= 4 {
			break
		}
		if !strings.Contains(strings.Join(parts, " "), kw) {
			parts = append(parts, kw)
		}
	}
	return strings.Join(parts, " ")
}

// flattenMarkdown renders markdown down to plain text so headings, emphasis
// markers, and list bullets do not pollute topics or keywords.
func flattenMarkdown(md string) string {
	source := []byte(md)
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	var sb strings.Builder
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if n.Type() == ast.TypeBlock && sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		if t, ok := n.(*ast.Text); ok {
			sb.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.Join(strings.Fields(sb.String()), " ")
}

// splitSentences is a cheap sentence splitter, good enough for topic lines.
func splitSentences(s string) []string {
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

func truncateWords(s string, max int) string {
	words := strings.Fields(s)
	if len(words) > max {
		words = words[:max]
	}
	return strings.Join(words, " ")
}
