package rag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/Akshay-i95/edify-v3/internal/retrieval"
)

// contextEncoding is the tokenizer used for the optional token budget.
const contextEncoding = "cl100k_base"

// Assembler concatenates selected chunks into the bounded context block
// passed to the generation gateway. Chunks are grouped by source document in
// relevance order and read in document order within each group, so the model
// sees coherent passages instead of score-shuffled fragments.
type Assembler struct {
	charBudget  int
	tokenBudget int // 0 disables token counting
	encoder     *tiktoken.Tiktoken
}

// NewAssembler creates an Assembler. tokenBudget of 0 disables the token
// limit and only the character budget applies.
func NewAssembler(charBudget, tokenBudget int) (*Assembler, error) {
	a := &Assembler{charBudget: charBudget, tokenBudget: tokenBudget}
	if tokenBudget > 0 {
		encoder, err := tiktoken.GetEncoding(contextEncoding)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s encoding: %w", contextEncoding, err)
		}
		a.encoder = encoder
	}
	return a, nil
}

// Assemble builds the context string. Truncation happens only at chunk
// boundaries: once a chunk does not fit, assembly stops. The one exception is
// the very first chunk, which is always included whole so there is never an
// empty context for a nonempty selection.
func (a *Assembler) Assemble(chunks []retrieval.Candidate) string {
	if len(chunks) == 0 {
		return ""
	}

	var sb strings.Builder
	usedTokens := 0
	appended := 0

	for _, group := range groupByFilename(chunks) {
		for _, c := range group {
			piece := formatChunk(c)
			if appended > 0 {
				if sb.Len()+len(piece) > a.charBudget {
					return strings.TrimRight(sb.String(), "\n")
				}
				if a.encoder != nil {
					pieceTokens := len(a.encoder.Encode(piece, nil, nil))
					if usedTokens+pieceTokens > a.tokenBudget {
						return strings.TrimRight(sb.String(), "\n")
					}
					usedTokens += pieceTokens
				}
			} else if a.encoder != nil {
				usedTokens += len(a.encoder.Encode(piece, nil, nil))
			}
			sb.WriteString(piece)
			appended++
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// formatChunk renders one chunk with its source tag and 1-based section
// number.
func formatChunk(c retrieval.Candidate) string {
	return fmt.Sprintf("Source: %s [Section %d]\n%s\n\n", c.Filename, c.ChunkIndex+1, c.Text)
}

// groupByFilename buckets chunks by source document, documents ordered by
// first appearance (relevance), chunks within a document ordered by position.
func groupByFilename(chunks []retrieval.Candidate) [][]retrieval.Candidate {
	index := make(map[string]int)
	var groups [][]retrieval.Candidate
	for _, c := range chunks {
		i, ok := index[c.Filename]
		if !ok {
			i = len(groups)
			index[c.Filename] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], c)
	}

	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].ChunkIndex < group[j].ChunkIndex
		})
	}
	return groups
}
