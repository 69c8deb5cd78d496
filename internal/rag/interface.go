// Package rag implements the retrieval core of the booking assistant:
// an in-memory vector index over document chunks, the ingestion/retrieval
// pipeline that feeds it, and the context assembly step that formats
// retrieved chunks for the downstream answer generator.
//
// Concrete embedding backends and the optional persistent vector store
// satisfy the interfaces here so the dialogue layer never depends on a
// specific backend.
package rag

import (
	"context"
	"fmt"
)

// Document is an input document: an opaque byte stream with a name.
// Documents are consumed entirely during ingestion and never stored verbatim.
type Document struct {
	// Name is the file name; its extension selects the text extractor.
	Name string

	// Data is the raw document content.
	Data []byte
}

// Chunk is a unit of retrievable document text.
type Chunk struct {
	// Text is the chunk content.
	Text string

	// Source is the name of the document the chunk was extracted from.
	Source string

	// Order is the chunk's position in the ingested corpus. Chunks keep
	// their source order across documents within one ingestion batch.
	Order int
}

// Embedder converts text into dense vector embeddings.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// EmbedOne embeds a single text, typically a user query at retrieval time.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("rag: embedder returned %d vectors for one text", len(vectors))
	}
	return vectors[0], nil
}

// Retriever fetches the most relevant chunks for a query. It is the contract
// the dialogue layer consumes; both the in-memory [Pipeline] and the
// Qdrant-backed [StoreRetriever] implement it.
// Implementations must be safe to call from multiple goroutines.
type Retriever interface {
	// Retrieve returns up to topK chunks in rank order, most relevant
	// first. An empty result means no documents have been ingested.
	Retrieve(ctx context.Context, query string, topK int) ([]Chunk, error)
}

// VectorStore persists chunks with their embeddings and supports similarity
// search. Used by the optional persistent (Qdrant) deployment mode; the
// in-memory pipeline owns its index directly.
// Implementations must be safe to call from multiple goroutines.
type VectorStore interface {
	// Upsert stores a batch of chunks with their pre-computed embeddings.
	// embeddings[i] is the vector for chunks[i].
	Upsert(ctx context.Context, chunks []Chunk, embeddings [][]float32) error

	// Search returns the top-k most relevant chunks for the query embedding.
	Search(ctx context.Context, queryEmbedding []float32, topK int) ([]Chunk, error)

	// Close releases any resources held by the store.
	Close() error
}
