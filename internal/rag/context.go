package rag

import (
	"fmt"
	"strings"
)

// NoContext is the sentinel returned by [AssembleContext] when retrieval
// produced no chunks. Callers must branch on [IsNoContext] before forwarding
// the context to the answer generator and reply with a user-facing
// "I don't have that information" message instead.
const NoContext = "No relevant information found in the uploaded documents."

// AssembleContext formats retrieved chunks into a single prompt context.
// Chunks are kept in the rank order produced by retrieval, each labeled with
// its rank and joined by blank lines:
//
//	[Context 1]: <text>
//
//	[Context 2]: <text>
//
// Total size is bounded only by the caller's choice of top-k and chunk size;
// there is no separate truncation step.
func AssembleContext(chunks []Chunk) string {
	if len(chunks) == 0 {
		return NoContext
	}
	blocks := make([]string, len(chunks))
	for i, chunk := range chunks {
		blocks[i] = fmt.Sprintf("[Context %d]: %s", i+1, chunk.Text)
	}
	return strings.Join(blocks, "\n\n")
}

// IsNoContext reports whether s is the no-results sentinel.
func IsNoContext(s string) bool { return s == NoContext }
