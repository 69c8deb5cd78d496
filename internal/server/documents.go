package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/embedder"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/logging"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/rag"
)

// maxUploadBytes bounds the total size of one document upload request.
const maxUploadBytes = 32 << 20 // 32 MiB

// handleDocuments handles POST /api/documents. The request is a multipart
// form whose "files" parts are the documents to ingest. Each successful
// upload replaces the previous corpus; a failed upload leaves it untouched.
func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart body", http.StatusBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		http.Error(w, "no files in upload — use multipart field \"files\"", http.StatusBadRequest)
		return
	}

	docs := make([]rag.Document, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			http.Error(w, "could not read uploaded file", http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			http.Error(w, "could not read uploaded file", http.StatusBadRequest)
			return
		}
		docs = append(docs, rag.Document{Name: fh.Filename, Data: data})
	}

	chunks, err := s.ingestor.Ingest(r.Context(), docs)
	switch {
	case errors.Is(err, rag.ErrNoExtractableContent):
		http.Error(w, "no text could be extracted from the uploaded documents", http.StatusUnprocessableEntity)
		return
	case errors.Is(err, embedder.ErrUnavailable):
		http.Error(w, "embedding service unavailable, try again shortly", http.StatusServiceUnavailable)
		return
	case err != nil:
		log.Error("documents: ingest failed", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.metrics.ingestsTotal.Inc()
	s.metrics.corpusChunks.Set(float64(chunks))
	log.Info("documents: ingested",
		slog.Int("documents", len(docs)),
		slog.Int("chunks", chunks),
	)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(documentsResponse{Documents: len(docs), Chunks: chunks}); err != nil {
		log.Error("documents: encode response", slog.Any("error", err))
	}
}
