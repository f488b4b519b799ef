// Package cmd implements the helpdesk CLI.
package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "helpdesk",
	Short: "Helpdesk - FAQ question answering service",
	Long: `Helpdesk answers customer questions from an embedded FAQ knowledge
base, grounding each answer in the most relevant entries and keeping
per-session conversation history.

Run "helpdesk serve" to start the HTTP API, or "helpdesk ingest" to load
FAQ entries into the knowledge index.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Local development keeps API keys in .env; absence is fine.
		_ = godotenv.Load()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
