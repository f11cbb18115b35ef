package ranking

import (
	"sort"
	"strings"

	"github.com/Akshay-i95/edify-v3/internal/query"
	"github.com/Akshay-i95/edify-v3/internal/retrieval"
)

// Boost weights for enhanced relevance. The raw similarity score stays the
// dominant signal; boosts reward lexical evidence that embeddings miss.
const (
	categoryBaseBoost     = 0.3
	categoryPerMatchBoost = 0.1
	keywordCoverageBoost  = 0.2
	eduDensityPerMatch    = 0.05
	eduDensityCap         = 0.15
)

// eduIndicators are domain vocabulary whose presence in a chunk suggests
// substantive educational content rather than boilerplate.
var eduIndicators = []string{
	"assessment", "curriculum", "learning", "teaching", "student", "classroom",
	"instruction", "pedagogy", "lesson", "evaluation",
}

// Scorer turns raw similarity scores into enhanced relevance and applies the
// adaptive acceptance threshold.
type Scorer struct {
	floor       float64 // acceptance threshold until minAccepted chunks pass
	bar         float64 // stricter threshold once minAccepted chunks passed
	minAccepted int
}

// NewScorer creates a Scorer with the given adaptive threshold settings.
func NewScorer(floor, bar float64, minAccepted int) *Scorer {
	return &Scorer{floor: floor, bar: bar, minAccepted: minAccepted}
}

// Enhance fills EnhancedRelevance on a copy of the candidates. The enhanced
// score is the similarity score plus three lexical boosts: category indicator
// matches, core keyword coverage, and educational term density.
func Enhance(candidates []retrieval.Candidate, processedQuery string) []retrieval.Candidate {
	categories := query.DetectCategories(processedQuery)
	keywords := query.CoreKeywords(processedQuery)

	scored := make([]retrieval.Candidate, len(candidates))
	copy(scored, candidates)

	for i := range scored {
		lowerText := strings.ToLower(scored[i].Text)
		boost := 0.0

		for _, cat := range categories {
			if matches := cat.IndicatorMatches(lowerText); matches > 0 {
				boost += categoryBaseBoost + categoryPerMatchBoost*float64(matches)
			}
		}

		if len(keywords) > 0 {
			present := 0
			for _, kw := range keywords {
				if strings.Contains(lowerText, kw) {
					present++
				}
			}
			boost += keywordCoverageBoost * float64(present) / float64(len(keywords))
		}

		eduMatches := 0
		for _, term := range eduIndicators {
			if strings.Contains(lowerText, term) {
				eduMatches++
			}
		}
		density := eduDensityPerMatch * float64(eduMatches)
		if density > eduDensityCap {
			density = eduDensityCap
		}
		boost += density

		scored[i].EnhancedRelevance = scored[i].SimilarityScore + boost
	}

	return scored
}

// Rank enhances, filters, and orders candidates for selection. The acceptance
// threshold is adaptive: candidates pass at the floor until minAccepted have
// been accepted, after which the stricter bar applies. This keeps sparse
// topics answerable while staying selective on well-covered ones. The result
// is sorted by enhanced relevance and truncated to maxChunks.
func (s *Scorer) Rank(candidates []retrieval.Candidate, processedQuery string, maxChunks int) []retrieval.Candidate {
	scored := Enhance(candidates, processedQuery)

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].EnhancedRelevance > scored[j].EnhancedRelevance
	})

	var accepted []retrieval.Candidate
	for _, c := range scored {
		threshold := s.floor
		if len(accepted) >= s.minAccepted {
			threshold = s.bar
		}
		if c.EnhancedRelevance >= threshold {
			accepted = append(accepted, c)
		}
	}

	if len(accepted) > maxChunks {
		accepted = accepted[:maxChunks]
	}
	return accepted
}
