package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Harshitk-cp/oracle/internal/domain"
	"github.com/Harshitk-cp/oracle/internal/service"
	"github.com/spf13/cobra"
)

// outputAsJSON writes any value as formatted JSON to the command's stdout.
func outputAsJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func outputText(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

func outputError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", err)
}

func shortID(id fmt.Stringer) string {
	return id.String()[:8]
}

func outputHypotheses(cmd *cobra.Command, list []domain.Hypothesis) error {
	if outputJSON {
		return outputAsJSON(cmd, list)
	}
	if len(list) == 0 {
		outputText(cmd, "No hypotheses.\n")
		return nil
	}
	for _, h := range list {
		outputText(cmd, "%s  %-10s %5.1f%%  %s\n", shortID(h.ID), h.Status, h.Confidence*100, h.Statement)
	}
	return nil
}

func outputHypothesis(cmd *cobra.Command, h *domain.Hypothesis) error {
	if outputJSON {
		return outputAsJSON(cmd, h)
	}
	outputText(cmd, "ID:          %s\n", h.ID)
	outputText(cmd, "Statement:   %s\n", h.Statement)
	outputText(cmd, "Type:        %s (%s)\n", h.Type, h.Category)
	outputText(cmd, "Status:      %s\n", h.Status)
	outputText(cmd, "Confidence:  %.1f%%\n", h.Confidence*100)
	outputText(cmd, "Detected:    %s\n", h.FirstDetectedAt.Format("2006-01-02 15:04"))
	outputText(cmd, "Last seen:   %s\n", h.LastEvidenceAt.Format("2006-01-02 15:04"))
	outputText(cmd, "Evidence (%d):\n", len(h.EvidenceRecords))
	for _, r := range h.EvidenceRecords {
		outputText(cmd, "  %s  %-26s %+.2f  %s\n", r.Timestamp.Format("2006-01-02"), r.EvidenceType, r.EffectiveWeight, r.Description)
	}
	return nil
}

func outputUpdates(cmd *cobra.Command, updates []domain.HypothesisUpdate) error {
	if outputJSON {
		if updates == nil {
			updates = []domain.HypothesisUpdate{}
		}
		return outputAsJSON(cmd, updates)
	}
	if len(updates) == 0 {
		outputText(cmd, "No hypotheses were updated.\n")
		return nil
	}
	outputText(cmd, "Updated %d hypotheses:\n", len(updates))
	for _, u := range updates {
		outputUpdateLine(cmd, u)
	}
	return nil
}

func outputUpdateLine(cmd *cobra.Command, u domain.HypothesisUpdate) {
	direction := "→"
	if u.NewConfidence > u.PreviousConfidence {
		direction = "↑"
	} else if u.NewConfidence < u.PreviousConfidence {
		direction = "↓"
	}
	status := string(u.NewStatus)
	if u.StatusChanged() {
		status = fmt.Sprintf("%s → %s", u.PreviousStatus, u.NewStatus)
	}
	outputText(cmd, "  %s: %.2f %s %.2f [%s] %s\n",
		shortID(u.HypothesisID), u.PreviousConfidence, direction, u.NewConfidence, status, u.Statement)
}

func outputCycle(cmd *cobra.Command, result *service.CycleResult) error {
	if outputJSON {
		return outputAsJSON(cmd, result)
	}

	obs := result.Observation
	outputText(cmd, "Analyzed %d entries over %.0f days.\n", obs.EntriesAnalyzed, obs.DaysCovered)
	if obs.MoodSummary != nil {
		outputText(cmd, "Mood: mean %.1f, median %.1f, sd %.2f (n=%d)\n",
			obs.MoodSummary.Mean, obs.MoodSummary.Median, obs.MoodSummary.StdDev, obs.MoodSummary.Count)
	}

	outputText(cmd, "\nPatterns (%d):\n", len(obs.Patterns))
	for _, p := range obs.Patterns {
		outputText(cmd, "  %-28s %5.1f%%  %s\n", p.Type, p.Confidence*100, p.Description)
	}
	if len(obs.SkippedReasons) > 0 && verbose {
		outputText(cmd, "\nSkipped:\n  %s\n", strings.Join(obs.SkippedReasons, "\n  "))
	}

	if ingest := result.Hypotheses; ingest != nil {
		outputText(cmd, "\nNew hypotheses (%d):\n", len(ingest.Created))
		for _, h := range ingest.Created {
			outputText(cmd, "  %s  %5.1f%%  %s\n", shortID(h.ID), h.Confidence*100, h.Statement)
		}
		if len(ingest.StatusChanges) > 0 {
			outputText(cmd, "\nStatus changes:\n")
			for _, u := range ingest.StatusChanges {
				outputUpdateLine(cmd, u)
			}
		}
	}
	return nil
}
