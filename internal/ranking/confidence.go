package ranking

import "github.com/Akshay-i95/edify-v3/internal/query"

// Confidence estimates answer confidence from the evidence that backed it.
// The estimate is a step function of mean similarity, tiered by query
// complexity: harder questions get lower confidence for the same evidence.
// A rich evidence set (five or more chunks) earns a small bonus. The result
// is clamped to [0.1, 1.0]; with no evidence at all a flat 0.3 is returned.
func Confidence(complexity query.Complexity, similarityScores []float64, chunkCount int) float64 {
	if len(similarityScores) == 0 {
		return 0.3
	}

	sum := 0.0
	for _, s := range similarityScores {
		sum += s
	}
	mean := sum / float64(len(similarityScores))

	strong := mean > 0.7
	var confidence float64
	switch complexity {
	case query.Simple:
		if strong {
			confidence = 0.8
		} else {
			confidence = 0.6
		}
	case query.Complex:
		if strong {
			confidence = 0.6
		} else {
			confidence = 0.4
		}
	default: // Moderate
		if strong {
			confidence = 0.7
		} else {
			confidence = 0.5
		}
	}

	if chunkCount >= 5 {
		confidence += 0.1
	}

	if confidence < 0.1 {
		confidence = 0.1
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}
