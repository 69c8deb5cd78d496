package rag

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"unicode"
)

// wordEmbedder is a deterministic bag-of-words embedder for tests. Each
// distinct token gets its own dimension, assigned on first sight, so texts
// sharing words land near each other under L2 and texts with no shared
// words land far apart. failErr, when set, makes Embed fail.
type wordEmbedder struct {
	mu      sync.Mutex
	vocab   map[string]int
	failErr error
}

const wordEmbedderDim = 256

func newWordEmbedder() *wordEmbedder {
	return &wordEmbedder{vocab: make(map[string]int)}
}

func (e *wordEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.failErr != nil {
		return nil, e.failErr
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, wordEmbedderDim)
		for _, tok := range tokenize(text) {
			idx, ok := e.vocab[tok]
			if !ok {
				idx = len(e.vocab)
				e.vocab[tok] = idx
			}
			if idx < wordEmbedderDim {
				v[idx]++
			}
		}
		normalize(v)
		out[i] = v
	}
	return out, nil
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
}

func textDoc(name, text string) Document {
	return Document{Name: name, Data: []byte(text)}
}

func Test_Pipeline_StartsEmpty(t *testing.T) {
	t.Parallel()
	p, err := NewPipeline(newWordEmbedder(), PipelineConfig{})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	if p.Ready() {
		t.Error("new pipeline should not be ready")
	}
	if p.Count() != 0 {
		t.Errorf("Count = %d, want 0", p.Count())
	}

	chunks, err := p.Retrieve(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("Retrieve on empty pipeline: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("Retrieve on empty pipeline returned %d chunks", len(chunks))
	}
}

func Test_Pipeline_NilEmbedderRejected(t *testing.T) {
	t.Parallel()
	if _, err := NewPipeline(nil, PipelineConfig{}); err == nil {
		t.Error("expected error for nil embedder")
	}
}

func Test_Pipeline_IngestAndRetrieveRoundTrip(t *testing.T) {
	t.Parallel()
	p, err := NewPipeline(newWordEmbedder(), PipelineConfig{ChunkSize: 80, ChunkOverlap: 10})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	docs := []Document{
		textDoc("clinic.txt", "The clinic opens at nine every weekday morning.\n\nParking is available behind the building."),
		textDoc("billing.txt", "Invoices mention the zebrafish payment portal for online settlement."),
	}
	n, err := p.Ingest(context.Background(), docs)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if n == 0 {
		t.Fatal("Ingest reported zero chunks")
	}
	if !p.Ready() || p.Count() != n {
		t.Errorf("Ready=%v Count=%d, want ready with %d chunks", p.Ready(), p.Count(), n)
	}

	chunks, err := p.Retrieve(context.Background(), "zebrafish portal", 1)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if !strings.Contains(chunks[0].Text, "zebrafish") {
		t.Errorf("top chunk %q does not contain the query marker", chunks[0].Text)
	}
	if chunks[0].Source != "billing.txt" {
		t.Errorf("top chunk source = %q, want billing.txt", chunks[0].Source)
	}
}

func Test_Pipeline_RetrieveCountBounded(t *testing.T) {
	t.Parallel()
	p, err := NewPipeline(newWordEmbedder(), PipelineConfig{ChunkSize: 40, ChunkOverlap: 0})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	if _, err := p.Ingest(context.Background(), []Document{
		textDoc("a.txt", "alpha beta gamma.\n\ndelta epsilon zeta.\n\neta theta iota."),
	}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	total := p.Count()
	chunks, err := p.Retrieve(context.Background(), "alpha", total+10)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(chunks) != total {
		t.Errorf("asked for %d, got %d chunks, want clamp to corpus size %d", total+10, len(chunks), total)
	}
}

func Test_Pipeline_IngestEmptyBatchFails(t *testing.T) {
	t.Parallel()
	p, err := NewPipeline(newWordEmbedder(), PipelineConfig{})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	if _, err := p.Ingest(context.Background(), nil); !errors.Is(err, ErrNoExtractableContent) {
		t.Errorf("Ingest(nil) = %v, want ErrNoExtractableContent", err)
	}
	if _, err := p.Ingest(context.Background(), []Document{textDoc("blank.txt", "   \n\t ")}); !errors.Is(err, ErrNoExtractableContent) {
		t.Errorf("Ingest(whitespace doc) = %v, want ErrNoExtractableContent", err)
	}
}

func Test_Pipeline_FailedIngestPreservesCorpus(t *testing.T) {
	t.Parallel()
	emb := newWordEmbedder()
	p, err := NewPipeline(emb, PipelineConfig{ChunkSize: 80, ChunkOverlap: 10})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	if _, err := p.Ingest(context.Background(), []Document{
		textDoc("good.txt", "The flamingo ward is on the second floor."),
	}); err != nil {
		t.Fatalf("initial Ingest: %v", err)
	}
	before := p.Count()

	// Batch with no extractable text: prior corpus must survive.
	if _, err := p.Ingest(context.Background(), []Document{{Name: "broken.bin", Data: []byte{0x01}}}); err == nil {
		t.Fatal("expected failure for unextractable batch")
	}
	if p.Count() != before {
		t.Errorf("corpus size changed after failed ingest: %d -> %d", before, p.Count())
	}

	// Embedding failure mid-ingest: prior corpus must survive too.
	emb.mu.Lock()
	emb.failErr = errors.New("embedder down")
	emb.mu.Unlock()
	if _, err := p.Ingest(context.Background(), []Document{
		textDoc("new.txt", "Entirely new content that should not be published."),
	}); err == nil {
		t.Fatal("expected failure when embedder errors")
	}
	emb.mu.Lock()
	emb.failErr = nil
	emb.mu.Unlock()

	if p.Count() != before {
		t.Errorf("corpus size changed after embed failure: %d -> %d", before, p.Count())
	}
	chunks, err := p.Retrieve(context.Background(), "flamingo ward", 1)
	if err != nil {
		t.Fatalf("Retrieve after failed ingest: %v", err)
	}
	if len(chunks) != 1 || !strings.Contains(chunks[0].Text, "flamingo") {
		t.Errorf("prior corpus no longer served: %+v", chunks)
	}
}

func Test_Pipeline_SuccessfulIngestReplacesCorpus(t *testing.T) {
	t.Parallel()
	p, err := NewPipeline(newWordEmbedder(), PipelineConfig{ChunkSize: 80, ChunkOverlap: 10})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	if _, err := p.Ingest(context.Background(), []Document{
		textDoc("old.txt", "The aardvark policy applies to legacy accounts."),
	}); err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	if _, err := p.Ingest(context.Background(), []Document{
		textDoc("new.txt", "The pelican policy applies to all new accounts."),
	}); err != nil {
		t.Fatalf("second Ingest: %v", err)
	}

	chunks, err := p.Retrieve(context.Background(), "aardvark policy", p.Count())
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	for _, c := range chunks {
		if strings.Contains(c.Text, "aardvark") {
			t.Errorf("old corpus still retrievable after replacement: %q", c.Text)
		}
	}
}

func Test_Pipeline_DoctorRecords(t *testing.T) {
	t.Parallel()
	p, err := NewPipeline(newWordEmbedder(), PipelineConfig{ChunkSize: 30, ChunkOverlap: 5, TopK: 1})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	if _, err := p.Ingest(context.Background(), []Document{
		textDoc("doctors.txt", "Dr. Alice - Cardiology, Fee: $150\n\nDr. Bob - Dermatology, Fee: $120"),
	}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	chunks, err := p.Retrieve(context.Background(), "cardiology fee", 0) // 0 uses configured TopK
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if !strings.Contains(chunks[0].Text, "Alice") || !strings.Contains(chunks[0].Text, "Cardiology") {
		t.Errorf("top chunk %q should keep the cardiologist's name and specialty together", chunks[0].Text)
	}
}
