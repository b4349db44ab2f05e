package main

import (
	"fmt"

	"github.com/goodtune/workday/internal/config"
	"github.com/goodtune/workday/internal/source"
	"github.com/goodtune/workday/internal/storage"
	"github.com/spf13/cobra"
)

// importBatchSize bounds one storage write.
const importBatchSize = 500

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Load a JSONL event log into the store",
	Long: `Import reads a JSONL event export (one {"timestamp", "kind"} object per
line) and appends its events to the configured event store.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	src := &source.JSONLSource{Path: args[0]}

	var (
		batch    []storage.Event
		imported int
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := store.Events().AppendBatch(cmd.Context(), batch); err != nil {
			return fmt.Errorf("failed to append events: %w", err)
		}
		imported += len(batch)
		batch = batch[:0]
		return nil
	}

	for ev, err := range src.Events(cmd.Context()) {
		if err != nil {
			return err
		}
		batch = append(batch, storage.Event{
			Timestamp: ev.Timestamp,
			Kind:      ev.Kind,
			Origin:    "import",
		})
		if len(batch) >= importBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}

	fmt.Printf("Imported %d events from %s\n", imported, args[0])
	return nil
}
