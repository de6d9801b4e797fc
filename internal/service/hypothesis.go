package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Harshitk-cp/oracle/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrHypothesisNotFound  = errors.New("hypothesis not found")
	ErrUnknownEvidenceType = errors.New("unknown evidence type")
	ErrInvalidStatusFilter = errors.New("invalid status filter")
	ErrEvidenceUnscoped    = errors.New("at least one of hypothesis_ids, category, planet or keywords is required")
)

// Status filters accepted by List in addition to the lifecycle states.
const (
	FilterActive    = "active"
	FilterConfirmed = "confirmed"
	FilterAll       = "all"
)

// EvidenceInput describes freeform evidence and which hypotheses it bears on.
// Every non-empty criterion must hold for a hypothesis to match.
type EvidenceInput struct {
	EvidenceType  domain.EvidenceType `json:"evidence_type"`
	Source        string              `json:"source"`
	Description   string              `json:"description"`
	HypothesisIDs []uuid.UUID         `json:"hypothesis_ids,omitempty"`
	Category      string              `json:"category,omitempty"`
	Planet        string              `json:"planet,omitempty"`
	Keywords      []string            `json:"keywords,omitempty"`
}

func (in EvidenceInput) scoped() bool {
	return len(in.HypothesisIDs) > 0 || in.Category != "" || in.Planet != "" || len(in.Keywords) > 0
}

// Matcher builds the predicate TestEvidence applies to each hypothesis.
func (in EvidenceInput) Matcher() EvidenceMatcher {
	ids := make(map[uuid.UUID]bool, len(in.HypothesisIDs))
	for _, id := range in.HypothesisIDs {
		ids[id] = true
	}
	keywords := make([]string, 0, len(in.Keywords))
	for _, kw := range in.Keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			keywords = append(keywords, kw)
		}
	}

	return func(h domain.Hypothesis) bool {
		if len(ids) > 0 && !ids[h.ID] {
			return false
		}
		if in.Category != "" && !strings.EqualFold(in.Category, h.Category) {
			return false
		}
		if in.Planet != "" && h.PeriodEvidenceCount[in.Planet] == 0 {
			return false
		}
		if len(keywords) > 0 {
			statement := strings.ToLower(h.Statement)
			for _, kw := range keywords {
				if strings.Contains(statement, kw) {
					return true
				}
			}
			return false
		}
		return true
	}
}

// PatternProjection pairs a detected pattern with the confidence the
// bootstrap formula would give it.
type PatternProjection struct {
	PatternType domain.PatternType `json:"pattern_type"`
	Statement   string             `json:"statement"`
	Projected   float64            `json:"projected_confidence"`
}

// IngestResult reports what one batch of patterns did to the collection.
type IngestResult struct {
	Created       []domain.Hypothesis       `json:"created"`
	Decayed       []domain.HypothesisUpdate `json:"decayed"`
	StatusChanges []domain.HypothesisUpdate `json:"status_changes"`
	Projections   []PatternProjection       `json:"projections"`
}

// HypothesisService serializes access to a HypothesisEngine and writes the
// collection back to its store after every mutation.
type HypothesisService struct {
	mu     sync.Mutex
	engine *HypothesisEngine
	store  domain.HypothesisStore
	logger *zap.Logger
}

func NewHypothesisService(engine *HypothesisEngine, store domain.HypothesisStore, logger *zap.Logger) *HypothesisService {
	return &HypothesisService{
		engine: engine,
		store:  store,
		logger: logger,
	}
}

// Load restores the engine from the store, replacing anything in memory.
func (s *HypothesisService) Load(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	list, err := s.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load hypotheses: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.LoadHypotheses(list)

	s.logger.Info("hypotheses loaded", zap.Int("count", len(list)))
	return nil
}

// List returns hypotheses matching filter: "active", "confirmed", "all",
// empty for all, or a lifecycle status such as "STALE".
func (s *HypothesisService) List(filter string) ([]domain.Hypothesis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch strings.ToLower(filter) {
	case FilterActive:
		return s.engine.GetActive(), nil
	case FilterConfirmed:
		return s.engine.GetConfirmed(), nil
	case FilterAll, "":
		return s.engine.GetAll(), nil
	}

	status := strings.ToUpper(filter)
	if !domain.ValidHypothesisStatus(status) {
		return nil, ErrInvalidStatusFilter
	}
	out := []domain.Hypothesis{}
	for _, h := range s.engine.GetAll() {
		if h.Status == domain.HypothesisStatus(status) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (s *HypothesisService) Get(id uuid.UUID) (*domain.Hypothesis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.engine.Get(id)
	if !ok {
		return nil, ErrHypothesisNotFound
	}
	return &h, nil
}

func (s *HypothesisService) Confirm(ctx context.Context, id uuid.UUID) (*domain.HypothesisUpdate, error) {
	return s.feedback(ctx, id, s.engine.UserConfirm)
}

func (s *HypothesisService) Reject(ctx context.Context, id uuid.UUID) (*domain.HypothesisUpdate, error) {
	return s.feedback(ctx, id, s.engine.UserReject)
}

func (s *HypothesisService) feedback(ctx context.Context, id uuid.UUID, apply func(uuid.UUID) *domain.HypothesisUpdate) (*domain.HypothesisUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	update := apply(id)
	if update == nil {
		return nil, ErrHypothesisNotFound
	}
	if err := s.persist(ctx); err != nil {
		return update, err
	}
	return update, nil
}

// RecordEvidence tests freeform evidence against every open hypothesis the
// input's criteria select.
func (s *HypothesisService) RecordEvidence(ctx context.Context, in EvidenceInput) ([]domain.HypothesisUpdate, error) {
	if !domain.ValidEvidenceType(string(in.EvidenceType)) {
		return nil, ErrUnknownEvidenceType
	}
	if !in.scoped() {
		return nil, ErrEvidenceUnscoped
	}
	if in.Source == "" {
		in.Source = domain.SourceUnknown
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updates := s.engine.TestEvidence(in.EvidenceType, in.Source, in.Description, in.Matcher())
	if len(updates) == 0 {
		return updates, nil
	}
	if err := s.persist(ctx); err != nil {
		return updates, err
	}
	return updates, nil
}

// Sweep re-resolves staleness across the collection.
func (s *HypothesisService) Sweep(ctx context.Context) ([]domain.HypothesisUpdate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updates := s.engine.RefreshStaleStatus()
	if len(updates) == 0 {
		return updates, nil
	}
	if err := s.persist(ctx); err != nil {
		return updates, err
	}
	return updates, nil
}

// Ingest turns detected patterns into hypotheses, decays open ones against
// the current clock, refreshes staleness and saves the result.
func (s *HypothesisService) Ingest(ctx context.Context, patterns []domain.Pattern) (*IngestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &IngestResult{
		Projections: make([]PatternProjection, 0, len(patterns)),
	}
	for _, p := range patterns {
		result.Projections = append(result.Projections, PatternProjection{
			PatternType: p.Type,
			Statement:   PatternStatement(p),
			Projected:   s.engine.ProjectedConfidence(p),
		})
	}

	result.Created = s.engine.GenerateFromPatterns(patterns)
	result.Decayed = s.engine.ApplyDecay()
	result.StatusChanges = s.engine.RefreshStaleStatus()

	if err := s.persist(ctx); err != nil {
		return result, err
	}
	return result, nil
}

// persist must be called with mu held. A failed save leaves the in-memory
// state ahead of the store until the next successful save.
func (s *HypothesisService) persist(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.SaveAll(ctx, s.engine.GetAll()); err != nil {
		s.logger.Error("failed to save hypotheses", zap.Error(err))
		return fmt.Errorf("save hypotheses: %w", err)
	}
	return nil
}
