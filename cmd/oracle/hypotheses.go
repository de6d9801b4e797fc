package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Harshitk-cp/oracle/internal/domain"
	"github.com/Harshitk-cp/oracle/internal/service"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var hypothesesCmd = &cobra.Command{
	Use:     "hypotheses [id]",
	Aliases: []string{"h"},
	Short:   "List hypotheses or show one in detail",
	Long: `List tracked hypotheses, or show one hypothesis with its evidence.

The --status filter accepts active, confirmed, all, or a lifecycle state
(FORMING, TESTING, CONFIRMED, REJECTED, STALE). An id may be abbreviated
to any unique prefix.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHypotheses,
}

var confirmCmd = &cobra.Command{
	Use:   "confirm <id>",
	Short: "Confirm a hypothesis from your own experience",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFeedback(cmd, args[0], (*service.HypothesisService).Confirm)
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject a hypothesis that does not match your experience",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFeedback(cmd, args[0], (*service.HypothesisService).Reject)
	},
}

var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "Record freeform evidence against matching hypotheses",
	Long: `Record a piece of evidence and apply it to every open hypothesis that
matches all of the given selectors.

Example:
  oracle evidence --type MOOD_LOG --category mood --description "flat all week"
  oracle evidence --type USER_REPORTED_CORRELATION --planet Venus --keywords love,art`,
	RunE: runEvidence,
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Mark hypotheses without recent evidence as stale",
	RunE:  runSweep,
}

var (
	hypothesesStatus string

	evidenceType        string
	evidenceSource      string
	evidenceDescription string
	evidenceIDs         string
	evidenceCategory    string
	evidencePlanet      string
	evidenceKeywords    string
)

func init() {
	hypothesesCmd.Flags().StringVar(&hypothesesStatus, "status", "all", "Filter by status")

	evidenceCmd.Flags().StringVar(&evidenceType, "type", "", "Evidence type, e.g. MOOD_LOG (required)")
	evidenceCmd.Flags().StringVar(&evidenceSource, "source", "cli", "Where the evidence came from")
	evidenceCmd.Flags().StringVar(&evidenceDescription, "description", "", "What was observed")
	evidenceCmd.Flags().StringVar(&evidenceIDs, "ids", "", "Comma-separated hypothesis ids or prefixes")
	evidenceCmd.Flags().StringVar(&evidenceCategory, "category", "", "Hypothesis category (mood, energy, themes, symptoms, timing, gates)")
	evidenceCmd.Flags().StringVar(&evidencePlanet, "planet", "", "Only hypotheses with evidence from this planet's periods")
	evidenceCmd.Flags().StringVar(&evidenceKeywords, "keywords", "", "Comma-separated words matched against statements")
	_ = evidenceCmd.MarkFlagRequired("type")
}

func runHypotheses(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	if len(args) == 1 {
		id, err := resolveID(ws.hypotheses, args[0])
		if err != nil {
			return err
		}
		h, err := ws.hypotheses.Get(id)
		if err != nil {
			return err
		}
		return outputHypothesis(cmd, h)
	}

	list, err := ws.hypotheses.List(hypothesesStatus)
	if err != nil {
		return err
	}
	return outputHypotheses(cmd, list)
}

type feedbackFunc func(*service.HypothesisService, context.Context, uuid.UUID) (*domain.HypothesisUpdate, error)

func runFeedback(cmd *cobra.Command, ref string, apply feedbackFunc) error {
	ctx := cmd.Context()
	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	id, err := resolveID(ws.hypotheses, ref)
	if err != nil {
		return err
	}
	update, err := apply(ws.hypotheses, ctx, id)
	if err != nil {
		return err
	}
	return outputUpdates(cmd, []domain.HypothesisUpdate{*update})
}

func runEvidence(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	in := service.EvidenceInput{
		EvidenceType: domain.EvidenceType(strings.ToUpper(evidenceType)),
		Source:       evidenceSource,
		Description:  evidenceDescription,
		Category:     evidenceCategory,
		Planet:       evidencePlanet,
		Keywords:     splitAndTrim(evidenceKeywords),
	}
	for _, ref := range splitAndTrim(evidenceIDs) {
		id, err := resolveID(ws.hypotheses, ref)
		if err != nil {
			return err
		}
		in.HypothesisIDs = append(in.HypothesisIDs, id)
	}

	updates, err := ws.hypotheses.RecordEvidence(ctx, in)
	if err != nil {
		return err
	}
	return outputUpdates(cmd, updates)
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	updates, err := ws.hypotheses.Sweep(ctx)
	if err != nil {
		return err
	}
	return outputUpdates(cmd, updates)
}

// resolveID accepts a full uuid or a unique prefix of one.
func resolveID(hs *service.HypothesisService, ref string) (uuid.UUID, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}

	all, err := hs.List(service.FilterAll)
	if err != nil {
		return uuid.Nil, err
	}
	var matches []uuid.UUID
	for _, h := range all {
		if strings.HasPrefix(h.ID.String(), strings.ToLower(ref)) {
			matches = append(matches, h.ID)
		}
	}
	switch len(matches) {
	case 0:
		return uuid.Nil, fmt.Errorf("%w: %s", service.ErrHypothesisNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return uuid.Nil, fmt.Errorf("ambiguous id %q matches %d hypotheses", ref, len(matches))
	}
}
