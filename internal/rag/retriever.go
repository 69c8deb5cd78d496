package rag

import (
	"context"
	"fmt"
)

// StoreRetriever implements Retriever on top of a persistent VectorStore.
// It embeds the query at retrieval time and delegates similarity search to
// the store. Used in the Qdrant deployment mode; the in-memory [Pipeline]
// is its own retriever.
type StoreRetriever struct {
	embedder    Embedder
	store       VectorStore
	defaultTopK int
}

// NewStoreRetriever constructs a StoreRetriever from the given Embedder and
// VectorStore. defaultTopK is used when Retrieve is called with topK=0.
func NewStoreRetriever(embedder Embedder, store VectorStore, defaultTopK int) (*StoreRetriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("rag: embedder must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("rag: store must not be nil")
	}
	if defaultTopK <= 0 {
		defaultTopK = 8
	}
	return &StoreRetriever{embedder: embedder, store: store, defaultTopK: defaultTopK}, nil
}

// Retrieve embeds the query and returns the top-k most relevant chunks.
// If topK is 0 the defaultTopK configured at construction time is used.
func (r *StoreRetriever) Retrieve(ctx context.Context, query string, topK int) ([]Chunk, error) {
	if topK <= 0 {
		topK = r.defaultTopK
	}

	queryVector, err := EmbedOne(ctx, r.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("rag: embedding query failed: %w", err)
	}

	chunks, err := r.store.Search(ctx, queryVector, topK)
	if err != nil {
		return nil, fmt.Errorf("rag: vector search failed: %w", err)
	}
	return chunks, nil
}
