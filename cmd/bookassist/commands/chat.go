package commands

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/assistant"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/embedder"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/logging"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/rag"
)

// NewChatCmd constructs the `bookassist chat` command, an interactive
// terminal session with the assistant.
func NewChatCmd() *cobra.Command {
	var docs []string
	var sessionID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the booking assistant in the terminal",
		Long: `Start an interactive terminal session with the booking assistant.

Documents passed with --doc are ingested into the knowledge base before
the conversation starts, so the assistant can answer questions about them
and quote doctors and fees during booking. Type "exit" or "quit" (or press
Ctrl-D) to leave.

Examples:
  bookassist chat
  bookassist chat --doc clinic.pdf --doc doctors.txt
  bookassist chat --session 3f2a... (resume a persisted conversation)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			if err := embedder.Validate(log); err != nil {
				return fmt.Errorf("chat: %w", err)
			}
			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("chat: failed to initialise embedder: %w", err)
			}

			chatModel, err := assistant.NewChatModelFromEnv()
			if err != nil {
				return fmt.Errorf("chat: failed to initialise chat model: %w", err)
			}

			stack, err := buildRAG(ctx, emb, log)
			if err != nil {
				return fmt.Errorf("chat: %w", err)
			}
			defer stack.close()

			if len(docs) > 0 {
				batch := make([]rag.Document, 0, len(docs))
				for _, path := range docs {
					data, err := os.ReadFile(path)
					if err != nil {
						return fmt.Errorf("chat: reading %s: %w", path, err)
					}
					batch = append(batch, rag.Document{Name: filepath.Base(path), Data: data})
				}
				chunks, err := stack.ingestor.Ingest(ctx, batch)
				if err != nil {
					return fmt.Errorf("chat: ingesting documents: %w", err)
				}
				fmt.Printf("Loaded %d document(s) into %d chunks.\n", len(batch), chunks)
			}

			st := buildStore(log)
			if st != nil {
				defer func() { _ = st.Close() }()
			}

			asst := assistant.New(chatModel, stack.retriever, storeOrNil(st), buildMailer(log), assistantConfig())

			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			prompt := color.New(color.FgCyan, color.Bold).SprintFunc()
			replyTag := color.New(color.FgGreen).SprintFunc()

			fmt.Println("Booking assistant ready. Type your message, or \"exit\" to leave.")
			scanner := bufio.NewScanner(os.Stdin)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for {
				fmt.Print(prompt("you> "))
				if !scanner.Scan() {
					fmt.Println()
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}

				reply, err := asst.Handle(ctx, sessionID, line)
				if err != nil {
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
					continue
				}
				fmt.Printf("%s %s\n\n", replyTag("assistant>"), reply)
			}
		},
	}

	cmd.Flags().StringArrayVarP(&docs, "doc", "d", nil, "Document to load before the session (repeatable)")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session id to use (default: a fresh id)")

	return cmd
}
