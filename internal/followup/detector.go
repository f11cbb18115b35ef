package followup

import (
	"context"
	"math"
	"strings"

	"github.com/Akshay-i95/edify-v3/internal/contextutil"
	"github.com/Akshay-i95/edify-v3/internal/llm"
)

// minAnswerLength is the shortest prior answer worth following up on.
// Anything shorter is a refusal or an error message, not a topic.
const minAnswerLength = 20

// Embedder abstracts the embeddings client for continuity scoring.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Result describes the outcome of follow-up detection. Topic, keywords, and
// focus are only populated when IsFollowUp is true; they feed the enhanced
// retrieval query.
type Result struct {
	IsFollowUp       bool
	Continuity       float64
	Topic            string
	PreviousKeywords []string
	QueryFocus       string
}

// Detector scores how strongly a query continues the previous exchange.
type Detector struct {
	embedder      Embedder
	baseThreshold float64
	thresholdStep float64
	thresholdCap  float64
}

// NewDetector creates a Detector. The follow-up threshold starts at base and
// relaxes by step per history message, down to at most base minus cap.
func NewDetector(embedder Embedder, base, step, cap float64) *Detector {
	return &Detector{
		embedder:      embedder,
		baseThreshold: base,
		thresholdStep: step,
		thresholdCap:  cap,
	}
}

// Detect decides whether the query is a follow-up to the conversation so far.
// It needs at least one complete prior exchange and a substantive prior
// answer. Embedding failures degrade gracefully to "not a follow-up" so a
// flaky embeddings backend never blocks answering.
func (d *Detector) Detect(ctx context.Context, currentQuery string, history []llm.Message) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(history) < 2 {
		return Result{}, nil
	}

	priorQuestion, priorAnswer := lastExchange(history)
	if priorQuestion == "" || len(strings.TrimSpace(priorAnswer)) < minAnswerLength {
		return Result{}, nil
	}

	vectors, err := d.embedder.EmbedTexts(ctx, []string{currentQuery, priorQuestion, priorAnswer})
	if err != nil {
		logger.WarnContext(ctx, "follow-up embedding failed, treating query as standalone", "error", err)
		return Result{}, nil
	}
	if len(vectors) != 3 {
		logger.WarnContext(ctx, "follow-up embedding returned unexpected count, treating query as standalone",
			"count", len(vectors))
		return Result{}, nil
	}

	questionSim := cosine(vectors[0], vectors[1])
	answerSim := cosine(vectors[0], vectors[2])
	continuity := continuityScore(questionSim, answerSim, len(history), currentQuery)

	threshold := d.baseThreshold - math.Min(d.thresholdCap, float64(len(history))*d.thresholdStep)
	if continuity < threshold {
		return Result{Continuity: continuity}, nil
	}

	result := Result{
		IsFollowUp:       true,
		Continuity:       continuity,
		Topic:            ExtractTopic(priorAnswer, priorQuestion),
		PreviousKeywords: PreviousKeywords(priorQuestion, priorAnswer),
		QueryFocus:       ClassifyFocus(currentQuery),
	}
	logger.DebugContext(ctx, "follow-up detected",
		"continuity", continuity, "threshold", threshold, "focus", result.QueryFocus)
	return result, nil
}

// continuityScore blends similarity to the prior question and answer with a
// conversation-depth bonus, then amplifies short queries. A three-word query
// rarely stands alone; brevity itself is continuity evidence.
func continuityScore(questionSim, answerSim float64, historyLen int, currentQuery string) float64 {
	strongest := math.Max(questionSim, answerSim)
	depthBonus := math.Min(0.2, float64(historyLen)*0.03)
	score := strongest*0.7 + questionSim*0.2 + answerSim*0.1 + depthBonus

	words := len(strings.Fields(currentQuery))
	switch {
	case words <= 5:
		score *= 1.2
	case words <= 10:
		score *= 1.1
	}

	return math.Max(0, math.Min(1, score))
}

// lastExchange returns the most recent user question and the assistant answer
// that followed it.
func lastExchange(history []llm.Message) (question, answer string) {
	for i := len(history) - 1; i >= 0; i-- {
		switch history[i].Role {
		case "assistant":
			if answer == "" {
				answer = history[i].Content
			}
		case "user":
			if answer != "" && question == "" {
				question = history[i].Content
			}
		}
		if question != "" && answer != "" {
			break
		}
	}
	return question, answer
}

// cosine computes cosine similarity between two vectors, 0 on any degenerate
// input.
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
