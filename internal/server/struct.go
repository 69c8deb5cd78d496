package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/rag"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/store"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// Registry receives the server's Prometheus metrics and backs GET /metrics.
	// If nil a fresh registry is created, keeping unit tests hermetic.
	Registry *prometheus.Registry
}

// chatter is the interface handleChat calls to produce a reply.
// *assistant.Assistant satisfies it; tests inject a fake.
type chatter interface {
	Handle(ctx context.Context, sessionID, message string) (string, error)
}

// Ingestor is the interface handleDocuments calls to load documents.
// *rag.Pipeline satisfies it; tests inject a fake.
type Ingestor interface {
	Ingest(ctx context.Context, docs []rag.Document) (int, error)
	Ready() bool
	Count() int
}

// bookingLister is the read surface handleBookings needs.
// *store.SQLiteStore satisfies it.
type bookingLister interface {
	BookingsByEmail(ctx context.Context, email string) ([]store.Booking, error)
	AllBookings(ctx context.Context) ([]store.Booking, error)
}

// Server is the HTTP server that exposes the assistant via a REST API.
type Server struct {
	// chat produces assistant replies for /api/chat.
	chat chatter
	// ingestor loads uploaded documents for /api/documents.
	ingestor Ingestor
	// bookings serves /api/bookings; nil when persistence is disabled.
	bookings bookingLister
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds the server's Prometheus instruments.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// chatRequest is the JSON body for POST /api/chat.
type chatRequest struct {
	// SessionID identifies the conversation. Empty starts a new session.
	SessionID string `json:"session_id"`
	// Message is the user's message.
	Message string `json:"message"`
}

// chatResponse is the JSON response for POST /api/chat.
type chatResponse struct {
	// SessionID echoes the session, generated server-side when the request
	// carried none.
	SessionID string `json:"session_id"`
	// Reply is the assistant's answer.
	Reply string `json:"reply"`
}

// documentsResponse is the JSON response for POST /api/documents.
type documentsResponse struct {
	// Documents is the number of files received in the upload.
	Documents int `json:"documents"`
	// Chunks is the corpus size after ingestion.
	Chunks int `json:"chunks"`
}

// bookingItem is one booking in the GET /api/bookings response.
type bookingItem struct {
	Reference string `json:"reference"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Service   string `json:"service"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Status    string `json:"status"`
}
