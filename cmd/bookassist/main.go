// Command bookassist is the entry point for the clinic appointment booking
// assistant. It provides a CLI interface (via Cobra) and an HTTP server
// exposing the chat, document upload, and bookings API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/cmd/bookassist/commands"
)

func main() {
	// Load a local .env if present. Real environment variables still win;
	// godotenv never overrides what is already set.
	_ = godotenv.Load()

	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
