package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Harshitk-cp/oracle/internal/domain"
	"github.com/spf13/cobra"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Record a journal entry",
	Long: `Record a journal entry with optional ratings and cosmic tags.

Example:
  oracle entry --content "slow morning, headache" --mood 4 --symptoms headache
  oracle entry --content "great focus" --energy 8 --planet Mercury --kp 2.3`,
	RunE: runEntry,
}

var (
	entryContent  string
	entryMood     float64
	entryEnergy   float64
	entrySymptoms string
	entryPlanet   string
	entryKp       float64
	entryMoon     string
	entryGate     int
	entryLine     int
	entryAt       string
)

func init() {
	entryCmd.Flags().StringVarP(&entryContent, "content", "c", "", "Entry text (required)")
	entryCmd.Flags().Float64Var(&entryMood, "mood", 0, "Mood rating 1-10")
	entryCmd.Flags().Float64Var(&entryEnergy, "energy", 0, "Energy rating 1-10")
	entryCmd.Flags().StringVar(&entrySymptoms, "symptoms", "", "Comma-separated symptoms")
	entryCmd.Flags().StringVar(&entryPlanet, "planet", "", "Ruling planet of the current period")
	entryCmd.Flags().Float64Var(&entryKp, "kp", -1, "Geomagnetic kp index")
	entryCmd.Flags().StringVar(&entryMoon, "moon", "", "Moon phase name")
	entryCmd.Flags().IntVar(&entryGate, "gate", 0, "Sun gate 1-64")
	entryCmd.Flags().IntVar(&entryLine, "line", 0, "Sun gate line 1-6")
	entryCmd.Flags().StringVar(&entryAt, "at", "", "Entry time in RFC3339 (default: now)")
	_ = entryCmd.MarkFlagRequired("content")
}

func runEntry(cmd *cobra.Command, args []string) error {
	e, err := entryFromFlags(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	if err := ws.store.Create(ctx, e); err != nil {
		return fmt.Errorf("record entry: %w", err)
	}

	if outputJSON {
		return outputAsJSON(cmd, e)
	}
	outputText(cmd, "Recorded: %s\n", e.ID)
	return nil
}

func entryFromFlags(cmd *cobra.Command) (*domain.ObservableEntry, error) {
	if strings.TrimSpace(entryContent) == "" {
		return nil, fmt.Errorf("--content is required")
	}

	e := &domain.ObservableEntry{Content: entryContent}
	if entryAt != "" {
		at, err := time.Parse(time.RFC3339, entryAt)
		if err != nil {
			return nil, fmt.Errorf("invalid --at: %w", err)
		}
		e.CreatedAt = at
	}
	if cmd.Flags().Changed("mood") {
		v := entryMood
		e.Mood = &v
	}
	if cmd.Flags().Changed("energy") {
		v := entryEnergy
		e.Energy = &v
	}
	if entrySymptoms != "" {
		e.Symptoms = splitAndTrim(entrySymptoms)
	}

	cosmic := &domain.CosmicSnapshot{}
	if entryPlanet != "" {
		cosmic.Card = &domain.CardReading{Planet: entryPlanet}
	}
	if cmd.Flags().Changed("kp") {
		kp := entryKp
		cosmic.Solar = &domain.SolarReading{Kp: &kp}
	}
	if entryMoon != "" {
		cosmic.Moon = &domain.MoonReading{Phase: entryMoon}
	}
	if entryGate != 0 {
		cosmic.Gate = &domain.GateReading{Sun: entryGate, SunLine: entryLine}
	}
	if *cosmic != (domain.CosmicSnapshot{}) {
		e.Cosmic = cosmic
	}
	return e, nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
