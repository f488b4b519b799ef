package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trackline/helpdesk/internal/app"
	"github.com/trackline/helpdesk/internal/config"
	"github.com/trackline/helpdesk/internal/knowledge"
	"github.com/trackline/helpdesk/internal/log"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Load FAQ entries into the knowledge index",
	Long: `Ingest reads FAQ entries from a JSON file (an array of objects with
"question" and "answer" fields) and embeds them into the knowledge index.
Without a file argument it seeds the built-in FAQ set.

Ingestion is all-or-nothing: if embedding fails for any entry, no entry
from the batch is stored.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}
		return runIngest(path)
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func loadEntries(path string) ([]knowledge.Entry, error) {
	if path == "" {
		return knowledge.DefaultFAQ(), nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var entries []knowledge.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%s contains no entries", path)
	}
	for i, e := range entries {
		if e.Question == "" || e.Answer == "" {
			return nil, fmt.Errorf("%s: entry %d is missing a question or answer", path, i)
		}
	}
	return entries, nil
}

func runIngest(path string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	entries, err := loadEntries(path)
	if err != nil {
		return err
	}

	logger := log.New(log.Config{Level: log.ParseLevel(cfg.LogLevel), JSON: cfg.LogJSON})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer a.Close()

	if err := a.Index.EnsureCollection(ctx); err != nil {
		return fmt.Errorf("ensuring collection: %w", err)
	}
	if err := a.Index.AddEntries(ctx, entries); err != nil {
		return fmt.Errorf("ingesting entries: %w", err)
	}

	stats := a.Index.Stats(ctx)
	fmt.Printf("Ingested %d entries into %q (%d documents total)\n",
		len(entries), stats.CollectionName, stats.DocumentCount)
	return nil
}
