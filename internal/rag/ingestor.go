package rag

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/chunker"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/logging"
)

// StoreIngestor loads documents into a persistent VectorStore. Unlike the
// in-memory [Pipeline], successive batches accumulate in the store instead
// of replacing each other; the store may also already hold chunks written
// by earlier processes.
type StoreIngestor struct {
	embedder Embedder
	store    VectorStore
	cfg      PipelineConfig

	mu    sync.Mutex
	count int // chunks written by this process
}

// NewStoreIngestor constructs a StoreIngestor around the given embedder and
// vector store.
func NewStoreIngestor(embedder Embedder, store VectorStore, cfg PipelineConfig) (*StoreIngestor, error) {
	if embedder == nil {
		return nil, fmt.Errorf("rag: embedder must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("rag: store must not be nil")
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = chunker.DefaultSize
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = chunker.DefaultOverlap
	}
	return &StoreIngestor{embedder: embedder, store: store, cfg: cfg}, nil
}

// Ingest extracts, chunks, embeds, and upserts a batch of documents into the
// store. Returns the total number of chunks written by this process so far.
// Fails with [ErrNoExtractableContent] when no text could be extracted from
// any document in the batch.
func (s *StoreIngestor) Ingest(ctx context.Context, docs []Document) (int, error) {
	log := logging.FromContext(ctx)

	chunks := chunkDocuments(ctx, docs, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	if len(chunks) == 0 {
		return 0, ErrNoExtractableContent
	}

	vectors, err := embedChunks(ctx, s.embedder, chunks)
	if err != nil {
		return 0, err
	}

	if err := s.store.Upsert(ctx, chunks, vectors); err != nil {
		return 0, fmt.Errorf("rag: upserting chunks: %w", err)
	}

	s.mu.Lock()
	s.count += len(chunks)
	total := s.count
	s.mu.Unlock()

	log.Info("ingest: chunks upserted",
		slog.Int("documents", len(docs)),
		slog.Int("chunks", len(chunks)),
	)
	return total, nil
}

// Ready reports whether this process has written at least one chunk.
func (s *StoreIngestor) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count > 0
}

// Count returns the number of chunks written by this process.
func (s *StoreIngestor) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}
