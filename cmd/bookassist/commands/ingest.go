package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/embedder"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/logging"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/rag"
)

// NewIngestCmd constructs the `bookassist ingest` command, which loads local
// documents into the Qdrant vector store ahead of serving.
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Ingest documents into the Qdrant vector store",
		Long: `Extract, chunk, embed, and upsert local documents into Qdrant.

Documents ingested here persist across restarts: run the server or chat
with VECTOR_BACKEND=qdrant to retrieve from the same collection.
Supported formats: .pdf, .txt, .md.

Environment variables:
  QDRANT_HOST          Qdrant server hostname (default: localhost)
  QDRANT_PORT          Qdrant gRPC port (default: 6334)
  QDRANT_COLLECTION    Collection name (default: bookassist-docs)
  QDRANT_API_KEY       Optional API key for authenticated clusters
  MODEL_PROVIDER       Embedding backend: ollama, openai, azure (default: ollama)

Examples:
  bookassist ingest clinic.pdf
  bookassist ingest docs/doctors.txt docs/fees.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			if err := embedder.Validate(log); err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("ingest: failed to initialise embedder: %w", err)
			}
			log.Info("embedder initialised", slog.String("provider", embedder.ResolveBackend()))

			qs, err := newQdrantStore(ctx)
			if err != nil {
				return fmt.Errorf("ingest: failed to connect to Qdrant: %w", err)
			}
			defer qs.Close()
			log.Info("qdrant store ready",
				slog.String("host", getEnvOrDefault("QDRANT_HOST", "localhost")),
				slog.Int("port", getEnvInt("QDRANT_PORT", 6334)),
				slog.String("collection", getEnvOrDefault("QDRANT_COLLECTION", "bookassist-docs")),
			)

			ingestor, err := rag.NewStoreIngestor(emb, qs, pipelineConfig())
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			batch := make([]rag.Document, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("ingest: reading %s: %w", path, err)
				}
				batch = append(batch, rag.Document{Name: filepath.Base(path), Data: data})
			}

			chunks, err := ingestor.Ingest(ctx, batch)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			log.Info("ingestion complete", slog.Int("documents", len(batch)), slog.Int("chunks", chunks))
			return nil
		},
	}

	return cmd
}
