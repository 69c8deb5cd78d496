// Package chunker splits raw document text into overlapping windows for
// embedding and retrieval. Windows target a configurable size and prefer
// breaking at natural boundaries — paragraph, then sentence, then line, then
// word — falling back to a hard character cut only when no boundary exists
// within the window. Consecutive chunks re-include trailing context from the
// previous chunk so information spanning a boundary stays retrievable.
//
// Chunking is deterministic: the same text with the same (size, overlap)
// always yields the same sequence of chunks, in source order.
package chunker

import (
	"strings"
	"unicode"
)

// Default chunking parameters. Sizes are in characters (runes).
const (
	DefaultSize    = 1000
	DefaultOverlap = 200
)

// Chunk is a single window of document text. Index is the chunk's position
// within its source text, counting from zero.
type Chunk struct {
	Text  string
	Index int
}

// Split divides text into chunks of at most size characters with roughly
// overlap characters of shared context between consecutive chunks.
// Empty or whitespace-only input yields nil, never an error.
func Split(text string, size, overlap int) []Chunk {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 5
	}

	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var chunks []Chunk
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			chunks = appendChunk(chunks, runes[start:])
			break
		}
		cut := breakPoint(runes, start, end)
		chunks = appendChunk(chunks, runes[start:cut])
		start = overlapStart(runes, start, cut, overlap)
	}
	return chunks
}

// appendChunk trims the window and appends it unless trimming left nothing.
func appendChunk(chunks []Chunk, window []rune) []Chunk {
	t := strings.TrimSpace(string(window))
	if t == "" {
		return chunks
	}
	return append(chunks, Chunk{Text: t, Index: len(chunks)})
}

// breakPoint picks the cut position for the window [start, end). Boundaries
// are searched backwards from end, never cutting before the window midpoint
// so that boundary-rich text cannot degenerate into tiny fragments.
// Returns end (hard cut) when no boundary qualifies.
func breakPoint(runes []rune, start, end int) int {
	floor := start + (end-start)/2

	// Paragraph: position just past a blank line.
	for p := end; p > floor; p-- {
		if p >= 2 && runes[p-1] == '\n' && runes[p-2] == '\n' {
			return p
		}
	}
	// Sentence: terminator followed by whitespace.
	for p := end; p > floor; p-- {
		if isSentenceEnd(runes[p-1]) && unicode.IsSpace(runes[p]) {
			return p
		}
	}
	// Line break.
	for p := end; p > floor; p-- {
		if runes[p-1] == '\n' {
			return p
		}
	}
	// Word boundary.
	for p := end; p > floor; p-- {
		if unicode.IsSpace(runes[p-1]) {
			return p
		}
	}
	return end
}

// overlapStart computes where the next window begins: overlap characters
// before the cut, snapped forward to the next word boundary so re-included
// context never starts mid-word. Progress past start is always guaranteed.
func overlapStart(runes []rune, start, cut, overlap int) int {
	next := cut - overlap
	if next <= start {
		return cut
	}
	for next < cut && !unicode.IsSpace(runes[next-1]) && !unicode.IsSpace(runes[next]) {
		next++
	}
	for next < cut && unicode.IsSpace(runes[next]) {
		next++
	}
	return next
}

// isSentenceEnd reports whether r terminates a sentence.
func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
