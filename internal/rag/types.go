package rag

import "github.com/Akshay-i95/edify-v3/internal/llm"

// QueryRequest represents one chatbot query. Conversation state travels with
// the request; the caller is the system of record for history.
type QueryRequest struct {
	// Query is the user's question.
	Query string `json:"query"`
	// History is the ordered conversation so far, oldest first.
	History []llm.Message `json:"history,omitempty"`
	// Namespaces are the knowledge base partitions the caller may read. When
	// empty the engine resolves a namespace from the query itself.
	Namespaces []string `json:"namespaces,omitempty"`
	// Role is the caller-asserted role. The "admin" role gets the full
	// undeduplicated candidate pool for transparency.
	Role string `json:"role,omitempty"`
}

// Source describes one source document behind an answer.
type Source struct {
	// Filename is the source document identity in the index.
	Filename string `json:"filename"`
	// DisplayName is a human-readable name derived from the filename.
	DisplayName string `json:"display_name"`
	// Score is the best enhanced relevance among the document's used chunks.
	Score float64 `json:"score"`
	// Excerpt is a short snippet from the highest-scoring used chunk.
	Excerpt string `json:"excerpt"`
	// DownloadURL is a time-limited link to the document, when available.
	DownloadURL string `json:"download_url,omitempty"`
	// VideoURL links to source video content, when the chunk came from a
	// transcription.
	VideoURL string `json:"video_url,omitempty"`
}

// QueryResponse is the engine's answer.
type QueryResponse struct {
	// Answer is the generated (or extracted) answer text.
	Answer string `json:"answer"`
	// Sources lists the documents the answer drew from, best first.
	Sources []Source `json:"sources"`
	// Confidence is the estimated answer confidence in [0, 1].
	Confidence float64 `json:"confidence"`
	// IsFollowUp reports whether the query was treated as a follow-up.
	IsFollowUp bool `json:"is_follow_up"`
	// Complexity is the classified query complexity tier.
	Complexity string `json:"complexity"`
	// Namespaces are the partitions actually searched.
	Namespaces []string `json:"namespaces,omitempty"`
	// ChunkCount is the number of chunks behind the answer.
	ChunkCount int `json:"chunk_count"`
	// Model identifies the generation model, empty for non-generated answers.
	Model string `json:"model,omitempty"`
}
