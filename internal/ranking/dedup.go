package ranking

import (
	"sort"

	"github.com/Akshay-i95/edify-v3/internal/retrieval"
)

// Select applies diversity-aware selection to ranked candidates. The first
// pass takes at most one chunk per source document, so a single long document
// cannot crowd out the rest of the knowledge base. The second pass backfills
// remaining slots with the next-best chunks regardless of document.
//
// Privileged callers skip deduplication and the cap entirely and get the
// whole pool sorted by enhanced relevance. That mode exists for audit and
// transparency, not answer quality.
func Select(candidates []retrieval.Candidate, max int, privileged bool) []retrieval.Candidate {
	if len(candidates) == 0 {
		return nil
	}

	sorted := make([]retrieval.Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EnhancedRelevance > sorted[j].EnhancedRelevance
	})

	if privileged {
		return sorted
	}

	if max <= 0 {
		return nil
	}

	seenIDs := make(map[string]bool)
	seenFiles := make(map[string]bool)
	var selected []retrieval.Candidate

	// Pass 1: best chunk per document.
	for _, c := range sorted {
		if len(selected) >= max {
			break
		}
		if seenIDs[c.ID] || seenFiles[c.Filename] {
			continue
		}
		seenIDs[c.ID] = true
		seenFiles[c.Filename] = true
		selected = append(selected, c)
	}

	// Pass 2: backfill open slots with remaining chunks by relevance.
	for _, c := range sorted {
		if len(selected) >= max {
			break
		}
		if seenIDs[c.ID] {
			continue
		}
		seenIDs[c.ID] = true
		selected = append(selected, c)
	}

	return selected
}
