package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/chunker"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/extract"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/logging"
)

// ErrNoExtractableContent is returned by Ingest when no text could be
// extracted from any document in the batch. The pipeline's previous corpus,
// if any, is left untouched.
var ErrNoExtractableContent = errors.New("rag: no extractable content in any document")

// PipelineConfig holds the tunable parameters of the retrieval pipeline.
type PipelineConfig struct {
	// ChunkSize is the target chunk size in characters. Defaults to
	// chunker.DefaultSize if zero.
	ChunkSize int

	// ChunkOverlap is the overlap between consecutive chunks in
	// characters. Defaults to chunker.DefaultOverlap if zero.
	ChunkOverlap int

	// TopK is the number of chunks returned by Retrieve when the caller
	// passes 0. Defaults to 8 if zero.
	TopK int
}

// corpus is an immutable snapshot of one ingestion batch. chunks and the
// index's vectors are parallel: index position i refers to chunks[i].
type corpus struct {
	chunks []Chunk
	index  *FlatIndex
}

// Pipeline orchestrates extract → chunk → embed → index at ingestion time
// and embed → search → chunk lookup at query time, over a single in-memory
// corpus. The corpus lives only for the process lifetime.
//
// The pipeline moves between two states: Empty (no corpus, Retrieve returns
// nothing) and Ready (a corpus is published). Each successful Ingest
// replaces the corpus wholesale; a failed Ingest preserves the last
// published corpus. The new corpus is built entirely off to the side and
// published with a single pointer swap under the write lock, so concurrent
// readers only ever observe a complete corpus — old or new, never partial.
type Pipeline struct {
	embedder Embedder
	cfg      PipelineConfig

	mu     sync.RWMutex
	corpus *corpus // nil while Empty
}

// NewPipeline constructs a Pipeline around the given embedder. The embedder
// is injected rather than created here: the host application owns its
// lifecycle (initialise once at startup, dispose at shutdown).
func NewPipeline(embedder Embedder, cfg PipelineConfig) (*Pipeline, error) {
	if embedder == nil {
		return nil, fmt.Errorf("rag: embedder must not be nil")
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = chunker.DefaultSize
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = chunker.DefaultOverlap
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 8
	}
	return &Pipeline{embedder: embedder, cfg: cfg}, nil
}

// Ready reports whether a corpus has been published.
func (p *Pipeline) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.corpus != nil
}

// Count returns the number of chunks in the current corpus, 0 while Empty.
func (p *Pipeline) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.corpus == nil {
		return 0
	}
	return len(p.corpus.chunks)
}

// Ingest extracts, chunks, embeds, and indexes a batch of documents,
// replacing any previously published corpus. Documents that fail extraction
// are logged and skipped; the batch continues with the remaining documents.
// Returns the number of chunks now in the corpus.
//
// If no text could be extracted from any document, Ingest fails with
// [ErrNoExtractableContent]. On that failure — and on embedding failure —
// the previously published corpus stays in place and Retrieve keeps serving
// it.
func (p *Pipeline) Ingest(ctx context.Context, docs []Document) (int, error) {
	log := logging.FromContext(ctx)

	chunks := chunkDocuments(ctx, docs, p.cfg.ChunkSize, p.cfg.ChunkOverlap)
	if len(chunks) == 0 {
		return 0, ErrNoExtractableContent
	}

	vectors, err := embedChunks(ctx, p.embedder, chunks)
	if err != nil {
		return 0, err
	}

	index, err := NewFlatIndex(vectors)
	if err != nil {
		return 0, fmt.Errorf("rag: building index: %w", err)
	}

	next := &corpus{chunks: chunks, index: index}
	p.mu.Lock()
	p.corpus = next
	p.mu.Unlock()

	log.Info("ingest: corpus published",
		slog.Int("documents", len(docs)),
		slog.Int("chunks", len(chunks)),
	)
	return len(chunks), nil
}

// chunkDocuments extracts text from each document and splits it into chunks.
// Documents that fail extraction are logged and skipped; chunk Order numbers
// run across the whole batch.
func chunkDocuments(ctx context.Context, docs []Document, size, overlap int) []Chunk {
	log := logging.FromContext(ctx)

	var chunks []Chunk
	for _, doc := range docs {
		text, err := extract.Text(doc.Name, doc.Data)
		if err != nil {
			log.Warn("ingest: skipping document, extraction failed",
				slog.String("document", doc.Name),
				slog.Any("error", err),
			)
			continue
		}
		for _, c := range chunker.Split(text, size, overlap) {
			chunks = append(chunks, Chunk{Text: c.Text, Source: doc.Name, Order: len(chunks)})
		}
	}
	return chunks
}

// embedChunks embeds the text of every chunk, preserving order.
func embedChunks(ctx context.Context, embedder Embedder, chunks []Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("rag: embedding corpus: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("rag: embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	return vectors, nil
}

// Retrieve returns the topK chunks most relevant to query, in rank order.
// While the pipeline is Empty it returns an empty result and no error —
// "no documents loaded" is a user-facing condition, not a failure. If topK
// is 0 the configured default is used. Result length is min(topK, corpus
// size).
func (p *Pipeline) Retrieve(ctx context.Context, query string, topK int) ([]Chunk, error) {
	if topK <= 0 {
		topK = p.cfg.TopK
	}

	p.mu.RLock()
	c := p.corpus
	p.mu.RUnlock()
	if c == nil {
		return nil, nil
	}

	queryVector, err := EmbedOne(ctx, p.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("rag: embedding query: %w", err)
	}

	hits, err := c.index.Search(queryVector, topK)
	if err != nil {
		return nil, fmt.Errorf("rag: searching index: %w", err)
	}

	out := make([]Chunk, len(hits))
	for i, hit := range hits {
		out[i] = c.chunks[hit.Index]
	}
	return out, nil
}
