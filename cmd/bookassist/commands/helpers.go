package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/assistant"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/embedder"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/mailer"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/rag"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/server"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/store"
)

// ragStack bundles everything a command needs from the retrieval layer:
// the query-side retriever, the upload-side ingestor, any readiness probes
// the backend exposes, and a close func for held connections.
type ragStack struct {
	retriever rag.Retriever
	ingestor  server.Ingestor
	pingers   []server.Pinger
	close     func()
}

// buildRAG wires the retrieval stack for the configured vector backend.
// "memory" (the default) keeps the corpus in-process and loses it on exit;
// "qdrant" persists chunks in a Qdrant collection shared with `bookassist
// ingest`.
func buildRAG(ctx context.Context, emb rag.Embedder, log *slog.Logger) (*ragStack, error) {
	stack := &ragStack{close: func() {}}
	if o, ok := emb.(*embedder.OllamaEmbedder); ok {
		stack.pingers = append(stack.pingers, server.NewPinger("ollama", o.Ping))
	}

	switch backend := getEnvOrDefault("VECTOR_BACKEND", "memory"); backend {
	case "memory":
		p, err := rag.NewPipeline(emb, pipelineConfig())
		if err != nil {
			return nil, fmt.Errorf("building pipeline: %w", err)
		}
		stack.retriever = p
		stack.ingestor = p

	case "qdrant":
		qs, err := newQdrantStore(ctx)
		if err != nil {
			return nil, fmt.Errorf("connecting to Qdrant: %w", err)
		}
		retriever, err := rag.NewStoreRetriever(emb, qs, getEnvInt("TOP_K_CHUNKS", 0))
		if err != nil {
			_ = qs.Close()
			return nil, err
		}
		ingestor, err := rag.NewStoreIngestor(emb, qs, pipelineConfig())
		if err != nil {
			_ = qs.Close()
			return nil, err
		}
		stack.retriever = retriever
		stack.ingestor = ingestor
		stack.pingers = append(stack.pingers, server.NewPinger("qdrant", qs.Ping))
		stack.close = func() { _ = qs.Close() }
		log.Info("qdrant backend selected",
			slog.String("host", getEnvOrDefault("QDRANT_HOST", "localhost")),
			slog.String("collection", getEnvOrDefault("QDRANT_COLLECTION", "bookassist-docs")),
		)

	default:
		return nil, fmt.Errorf("unknown VECTOR_BACKEND %q (want memory or qdrant)", backend)
	}
	return stack, nil
}

// newQdrantStore connects to Qdrant using the QDRANT_* environment variables.
// The collection's vector size follows the configured embedding backend.
func newQdrantStore(ctx context.Context) (*rag.QdrantStore, error) {
	vectorSize := uint64(embedder.DefaultDimensions(embedder.ResolveBackend())) //nolint:gosec // dimensions are bounded
	return rag.NewQdrantStore(ctx, &rag.QdrantConfig{
		Host:       getEnvOrDefault("QDRANT_HOST", "localhost"),
		Port:       getEnvInt("QDRANT_PORT", 6334),
		Collection: getEnvOrDefault("QDRANT_COLLECTION", "bookassist-docs"),
		VectorSize: vectorSize,
		APIKey:     os.Getenv("QDRANT_API_KEY"),
		UseTLS:     os.Getenv("QDRANT_TLS") == "true",
	})
}

// pipelineConfig reads the chunking and retrieval tunables from env.
// Zeroes fall back to the rag package defaults.
func pipelineConfig() rag.PipelineConfig {
	return rag.PipelineConfig{
		ChunkSize:    getEnvInt("CHUNK_SIZE", 0),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 0),
		TopK:         getEnvInt("TOP_K_CHUNKS", 0),
	}
}

// assistantConfig reads the dialogue tunables from env. Zeroes fall back to
// the assistant package defaults.
func assistantConfig() assistant.Config {
	return assistant.Config{
		TopK:       getEnvInt("TOP_K_CHUNKS", 0),
		MaxHistory: getEnvInt("MAX_CONVERSATION_HISTORY", 0),
	}
}

// buildStore opens the bookings database. BOOKASSIST_DB overrides the default
// path (~/.bookassist/bookings.db); set it to "disabled" to turn persistence
// off. Open failures disable persistence with a warning rather than aborting,
// so the assistant keeps working without a writable disk.
func buildStore(log *slog.Logger) *store.SQLiteStore {
	dbPath := os.Getenv("BOOKASSIST_DB")
	if dbPath == "disabled" {
		log.Info("store: disabled via BOOKASSIST_DB=disabled")
		return nil
	}
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			log.Warn("store: could not resolve default DB path, disabling", slog.Any("error", err))
			return nil
		}
	}
	st, err := store.Open(dbPath)
	if err != nil {
		log.Warn("store: failed to open, disabling persistence", slog.Any("error", err))
		return nil
	}
	log.Info("store: opened", slog.String("path", dbPath))
	return st
}

// storeOrNil converts a possibly-nil concrete store into the assistant's
// Store interface without producing a typed nil.
func storeOrNil(st *store.SQLiteStore) assistant.Store {
	if st == nil {
		return nil
	}
	return st
}

// buildMailer constructs the confirmation mailer from the SMTP_* and GMAIL_*
// environment variables. Missing credentials leave it disabled; bookings
// still succeed, just without an email.
func buildMailer(log *slog.Logger) *mailer.Mailer {
	m := mailer.New(&mailer.Config{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     getEnvInt("SMTP_PORT", 0),
		Sender:   os.Getenv("GMAIL_ADDRESS"),
		Password: os.Getenv("GMAIL_APP_PASSWORD"),
	})
	if m.Enabled() {
		log.Info("mailer: enabled", slog.String("sender", os.Getenv("GMAIL_ADDRESS")))
	} else {
		log.Info("mailer: disabled", slog.String("reason", "GMAIL_ADDRESS or GMAIL_APP_PASSWORD not set"))
	}
	return m
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
