package storage

import "time"

// ChunkRecord is the relational shadow of a vector point. It carries the
// chunk text and document metadata so neighbor expansion and source display
// do not need a second vector round trip.
type ChunkRecord struct {
	ID               string // UUID (same as the vector point ID)
	Namespace        string // Knowledge base partition, e.g. "kb-msp"
	Filename         string // Source document name
	ChunkIndex       int    // Position within the source document (starts at 0)
	ContentType      string // "text", "table", "image_caption", ...
	Grade            string // Normalized grade tag, e.g. "grade7"; empty if not grade-specific
	Department       string
	ExtractionMethod string
	VideoURL         string
	Text             string
	CreatedAt        time.Time
}
