package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/assistant"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/embedder"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/logging"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/server"
)

// NewServeCmd constructs the `bookassist serve` command, which starts the
// HTTP server exposing the assistant's REST API.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the bookassist HTTP server",
		Long: `Start the booking assistant HTTP server on localhost.

The server exposes a REST API: POST /api/chat for conversation,
POST /api/documents for knowledge-base uploads, and GET /api/bookings for
booking lookups. GET /healthz, GET /api/ready, and GET /metrics serve
operational probes.

Set BOOKASSIST_API_KEY to require a Bearer token on the /api/* routes.

Examples:
  bookassist serve
  bookassist serve --port 9090
  MODEL_PROVIDER=openai bookassist serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			if err := embedder.Validate(log); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("serve: failed to initialise embedder: %w", err)
			}

			chatModel, err := assistant.NewChatModelFromEnv()
			if err != nil {
				return fmt.Errorf("serve: failed to initialise chat model: %w", err)
			}

			stack, err := buildRAG(ctx, emb, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer stack.close()

			st := buildStore(log)
			if st != nil {
				defer func() { _ = st.Close() }()
			}

			asst := assistant.New(chatModel, stack.retriever, storeOrNil(st), buildMailer(log), assistantConfig())

			cfg := &server.Config{
				Host:    host,
				Port:    port,
				Logger:  log,
				Pingers: stack.pingers,
				APIKey:  os.Getenv("BOOKASSIST_API_KEY"),
			}
			var srv *server.Server
			if st != nil {
				srv, err = server.New(asst, stack.ingestor, st, cfg)
			} else {
				srv, err = server.New(asst, stack.ingestor, nil, cfg)
			}
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")

	return cmd
}
