package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Harshitk-cp/oracle/internal/domain"
	"github.com/spf13/cobra"
)

var observeCmd = &cobra.Command{
	Use:   "observe",
	Short: "Detect patterns and update hypotheses",
	Long: `Run one observation cycle over recent entries in the local database.

Patterns that clear their significance thresholds seed new hypotheses;
existing hypotheses are decayed and checked for staleness.

Example:
  oracle observe
  oracle observe --entries journal.json --lookback 180`,
	RunE: runObserve,
}

var (
	observeEntriesFile string
	observeLookback    int
)

func init() {
	observeCmd.Flags().StringVar(&observeEntriesFile, "entries", "", "JSON file of entries to import before observing")
	observeCmd.Flags().IntVar(&observeLookback, "lookback", 0, "Days of entries to analyze (default: $LOOKBACK_DAYS or 90)")
}

func runObserve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	if observeEntriesFile != "" {
		entries, err := readEntriesFile(observeEntriesFile)
		if err != nil {
			return err
		}
		for i := range entries {
			if err := ws.store.Create(ctx, &entries[i]); err != nil {
				return fmt.Errorf("import entry %d: %w", i, err)
			}
		}
		if !outputJSON {
			outputText(cmd, "Imported %d entries.\n", len(entries))
		}
	}

	if observeLookback > 0 {
		ws.runner.SetLookbackDays(observeLookback)
	}

	result, err := ws.runner.RunCycle(ctx)
	if err != nil {
		return fmt.Errorf("observe: %w", err)
	}
	return outputCycle(cmd, result)
}

// readEntriesFile accepts either a JSON array of entries or an object with
// an "entries" array.
func readEntriesFile(path string) ([]domain.ObservableEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}

	var entries []domain.ObservableEntry
	if err := json.Unmarshal(data, &entries); err == nil {
		return entries, nil
	}

	var wrapped struct {
		Entries []domain.ObservableEntry `json:"entries"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse entries: %w", err)
	}
	return wrapped.Entries, nil
}
