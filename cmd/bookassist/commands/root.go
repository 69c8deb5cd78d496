// Package commands defines all Cobra CLI commands for the bookassist binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/audit"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/config"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bookassist",
		Short: "Bookassist — an AI appointment booking assistant for clinics",
		Long: `Bookassist is a conversational assistant for clinic appointment booking.

It answers questions from uploaded clinic documents (PDF or plain text)
using retrieval-augmented generation, walks patients through booking an
appointment step by step, and sends email confirmations.

Model provider is selected via the MODEL_PROVIDER environment variable
or a YAML config file (~/.bookassist/config.yaml).
See 'bookassist --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.bookassist/config.yaml)")

	root.AddCommand(
		NewChatCmd(),
		NewServeCmd(),
		NewIngestCmd(),
		NewVersionCmd(),
	)

	return root
}
