package service

import (
	"fmt"
	"math"
	"time"

	"github.com/Harshitk-cp/oracle/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ConfirmedThreshold = 0.85
	TestingThreshold   = 0.60
	RejectedThreshold  = 0.20
	StaleAfterDays     = 60.0

	historyEpsilon = 1e-9
)

// ResolveStatus maps confidence, contradiction and staleness to a lifecycle
// state. Staleness is checked first and overrides everything else.
func ResolveStatus(confidence float64, hasContradiction bool, daysSinceEvidence float64) domain.HypothesisStatus {
	switch {
	case daysSinceEvidence >= StaleAfterDays:
		return domain.StatusStale
	case confidence > ConfirmedThreshold:
		return domain.StatusConfirmed
	case confidence >= TestingThreshold:
		return domain.StatusTesting
	case confidence < RejectedThreshold && hasContradiction:
		return domain.StatusRejected
	default:
		return domain.StatusForming
	}
}

// EvidenceMatcher decides whether a piece of evidence bears on a hypothesis.
// It must not modify the hypothesis it is given.
type EvidenceMatcher func(h domain.Hypothesis) bool

type patternMapping struct {
	hypothesisType domain.HypothesisType
	category       string
}

var patternMappings = map[domain.PatternType]patternMapping{
	domain.PatternInterPeriodMoodVariance:   {domain.HypothesisPeriodCorrelation, "mood"},
	domain.PatternInterPeriodEnergyVariance: {domain.HypothesisPeriodCorrelation, "energy"},
	domain.PatternPeriodThemeAlignment:      {domain.HypothesisPeriodTheme, "themes"},
	domain.PatternSymptomPeriodCluster:      {domain.HypothesisSymptomCycle, "symptoms"},
	domain.PatternSolarCorrelation:          {domain.HypothesisCosmicSensitivity, "mood"},
	domain.PatternSolarEnergyCorrelation:    {domain.HypothesisCosmicSensitivity, "energy"},
	domain.PatternLunarPhaseMood:            {domain.HypothesisLunarSensitivity, "mood"},
	domain.PatternTimeOfDayMood:             {domain.HypothesisTemporalRhythm, "timing"},
	domain.PatternTimeOfDayEnergy:           {domain.HypothesisTemporalRhythm, "timing"},
	domain.PatternDayOfWeekMood:             {domain.HypothesisTemporalRhythm, "timing"},
	domain.PatternGateMoodVariance:          {domain.HypothesisGateResonance, "gates"},
}

// HypothesisEngine owns the in-memory hypothesis collection. It holds no
// lock; callers that share an engine across goroutines must serialize access.
type HypothesisEngine struct {
	logger *zap.Logger
	now    func() time.Time

	hypotheses  []*domain.Hypothesis
	byID        map[uuid.UUID]*domain.Hypothesis
	byStatement map[string]*domain.Hypothesis
}

func NewHypothesisEngine(logger *zap.Logger) *HypothesisEngine {
	e := &HypothesisEngine{
		logger: logger,
		now:    time.Now,
	}
	e.Reset()
	return e
}

func (e *HypothesisEngine) SetClock(now func() time.Time) {
	e.now = now
}

// Reset drops every hypothesis.
func (e *HypothesisEngine) Reset() {
	e.hypotheses = nil
	e.byID = make(map[uuid.UUID]*domain.Hypothesis)
	e.byStatement = make(map[string]*domain.Hypothesis)
}

// GenerateFromPatterns creates one hypothesis per previously unseen statement
// and returns only the newly created ones. Each is seeded with a single
// evidence record typed from its pattern.
func (e *HypothesisEngine) GenerateFromPatterns(patterns []domain.Pattern) []domain.Hypothesis {
	now := e.now()
	created := []domain.Hypothesis{}

	for _, p := range patterns {
		mapping, ok := patternMappings[p.Type]
		if !ok {
			e.logger.Warn("no hypothesis mapping for pattern", zap.String("pattern_type", string(p.Type)))
			continue
		}

		statement := PatternStatement(p)
		if _, exists := e.byStatement[statement]; exists {
			continue
		}

		seed := CreateEvidenceRecord(p.EvidenceType, domain.SourceObserver, p.Description, 0, now, time.Time{})
		confidence := CalculateConfidence([]domain.EvidenceRecord{seed}).Confidence

		h := &domain.Hypothesis{
			ID:                  uuid.New(),
			Statement:           statement,
			Type:                mapping.hypothesisType,
			Category:            mapping.category,
			Status:              ResolveStatus(confidence, false, 0),
			Confidence:          confidence,
			EvidenceRecords:     []domain.EvidenceRecord{seed},
			ConfidenceHistory:   []domain.ConfidenceSnapshot{{Confidence: confidence, Timestamp: now}},
			FirstDetectedAt:     now,
			LastEvidenceAt:      now,
			PeriodEvidenceCount: map[string]int{},
			GateEvidenceCount:   map[int]int{},
			SourcePatterns:      []string{string(p.Type)},
		}
		if p.Planet != "" {
			h.PeriodEvidenceCount[p.Planet] = 1
		}
		if p.SunGate != 0 {
			h.GateEvidenceCount[p.SunGate] = 1
		}

		e.add(h)
		created = append(created, h.Clone())

		e.logger.Debug("hypothesis created",
			zap.String("id", h.ID.String()),
			zap.String("statement", statement),
			zap.Float64("confidence", confidence))
	}

	return created
}

// TestEvidence appends evidence to every FORMING, TESTING or STALE hypothesis
// the matcher accepts. CONFIRMED and REJECTED hypotheses are left alone.
func (e *HypothesisEngine) TestEvidence(evidenceType domain.EvidenceType, source, description string, match EvidenceMatcher) []domain.HypothesisUpdate {
	updates := []domain.HypothesisUpdate{}
	for _, h := range e.hypotheses {
		if h.Status == domain.StatusConfirmed || h.Status == domain.StatusRejected {
			continue
		}
		if match == nil || !match(*h) {
			continue
		}
		updates = append(updates, e.addEvidence(h, evidenceType, source, description))
	}
	return updates
}

// UserConfirm records explicit user agreement. It returns nil for an unknown id.
func (e *HypothesisEngine) UserConfirm(id uuid.UUID) *domain.HypothesisUpdate {
	return e.userFeedback(id, domain.EvidenceUserConfirmation, "confirmed by user")
}

// UserReject records explicit user disagreement. It returns nil for an unknown id.
func (e *HypothesisEngine) UserReject(id uuid.UUID) *domain.HypothesisUpdate {
	return e.userFeedback(id, domain.EvidenceUserRejection, "rejected by user")
}

func (e *HypothesisEngine) userFeedback(id uuid.UUID, evidenceType domain.EvidenceType, description string) *domain.HypothesisUpdate {
	h, ok := e.byID[id]
	if !ok {
		return nil
	}
	update := e.addEvidence(h, evidenceType, domain.SourceUser, description)
	return &update
}

func (e *HypothesisEngine) addEvidence(h *domain.Hypothesis, evidenceType domain.EvidenceType, source, description string) domain.HypothesisUpdate {
	now := e.now()
	rec := CreateEvidenceRecord(evidenceType, source, description, len(h.EvidenceRecords), now, time.Time{})

	update := domain.HypothesisUpdate{
		HypothesisID:       h.ID,
		Statement:          h.Statement,
		EvidenceID:         rec.ID,
		PreviousConfidence: h.Confidence,
		PreviousStatus:     h.Status,
	}

	h.EvidenceRecords = append(h.EvidenceRecords, rec)
	h.Confidence = CalculateConfidence(h.EvidenceRecords).Confidence
	h.ConfidenceHistory = append(h.ConfidenceHistory, domain.ConfidenceSnapshot{Confidence: h.Confidence, Timestamp: now})
	h.LastEvidenceAt = now
	h.Status = ResolveStatus(h.Confidence, h.HasContradiction(), 0)

	update.NewConfidence = h.Confidence
	update.NewStatus = h.Status
	e.logTransition(update)
	return update
}

// RefreshStaleStatus re-resolves every status from stored confidence and the
// time elapsed since the last evidence, and reports what changed.
func (e *HypothesisEngine) RefreshStaleStatus() []domain.HypothesisUpdate {
	now := e.now()
	updates := []domain.HypothesisUpdate{}
	for _, h := range e.hypotheses {
		status := ResolveStatus(h.Confidence, h.HasContradiction(), daysSince(h.LastEvidenceAt, now))
		if status == h.Status {
			continue
		}
		update := domain.HypothesisUpdate{
			HypothesisID:       h.ID,
			Statement:          h.Statement,
			PreviousConfidence: h.Confidence,
			NewConfidence:      h.Confidence,
			PreviousStatus:     h.Status,
			NewStatus:          status,
		}
		h.Status = status
		e.logTransition(update)
		updates = append(updates, update)
	}
	return updates
}

// ApplyDecay recalculates FORMING and TESTING hypotheses against the current
// clock so old evidence loses weight. Settled hypotheses only move through
// RefreshStaleStatus or user feedback.
func (e *HypothesisEngine) ApplyDecay() []domain.HypothesisUpdate {
	now := e.now()
	updates := []domain.HypothesisUpdate{}
	for _, h := range e.hypotheses {
		if h.Status != domain.StatusForming && h.Status != domain.StatusTesting {
			continue
		}

		records, result := RecalculateConfidence(h.EvidenceRecords, now)
		h.EvidenceRecords = records
		if math.Abs(result.Confidence-h.Confidence) < historyEpsilon {
			continue
		}

		update := domain.HypothesisUpdate{
			HypothesisID:       h.ID,
			Statement:          h.Statement,
			PreviousConfidence: h.Confidence,
			PreviousStatus:     h.Status,
		}
		h.Confidence = result.Confidence
		h.ConfidenceHistory = append(h.ConfidenceHistory, domain.ConfidenceSnapshot{Confidence: h.Confidence, Timestamp: now})
		h.Status = ResolveStatus(h.Confidence, h.HasContradiction(), daysSince(h.LastEvidenceAt, now))

		update.NewConfidence = h.Confidence
		update.NewStatus = h.Status
		e.logTransition(update)
		updates = append(updates, update)
	}
	return updates
}

// ProjectedConfidence estimates what a pattern would be worth as a fresh
// hypothesis using the bootstrap formula.
func (e *HypothesisEngine) ProjectedConfidence(p domain.Pattern) float64 {
	return CalculateInitialConfidence(BaseWeight(p.EvidenceType), Reliability(domain.SourceObserver), p.DataPoints, p.EffectSize)
}

func (e *HypothesisEngine) Get(id uuid.UUID) (domain.Hypothesis, bool) {
	h, ok := e.byID[id]
	if !ok {
		return domain.Hypothesis{}, false
	}
	return h.Clone(), true
}

// GetActive returns FORMING and TESTING hypotheses.
func (e *HypothesisEngine) GetActive() []domain.Hypothesis {
	return e.filter(func(h *domain.Hypothesis) bool {
		return h.Status == domain.StatusForming || h.Status == domain.StatusTesting
	})
}

func (e *HypothesisEngine) GetConfirmed() []domain.Hypothesis {
	return e.filter(func(h *domain.Hypothesis) bool {
		return h.Status == domain.StatusConfirmed
	})
}

// GetAll returns copies of every hypothesis in creation order.
func (e *HypothesisEngine) GetAll() []domain.Hypothesis {
	return e.filter(func(*domain.Hypothesis) bool { return true })
}

// LoadHypotheses replaces the collection with copies of list. A later entry
// with a statement or id already seen is dropped.
func (e *HypothesisEngine) LoadHypotheses(list []domain.Hypothesis) {
	e.Reset()
	for _, h := range list {
		if _, dup := e.byID[h.ID]; dup {
			continue
		}
		if _, dup := e.byStatement[h.Statement]; dup {
			continue
		}
		c := h.Clone()
		e.add(&c)
	}
}

func (e *HypothesisEngine) add(h *domain.Hypothesis) {
	e.hypotheses = append(e.hypotheses, h)
	e.byID[h.ID] = h
	e.byStatement[h.Statement] = h
}

func (e *HypothesisEngine) filter(keep func(*domain.Hypothesis) bool) []domain.Hypothesis {
	out := []domain.Hypothesis{}
	for _, h := range e.hypotheses {
		if keep(h) {
			out = append(out, h.Clone())
		}
	}
	return out
}

func (e *HypothesisEngine) logTransition(u domain.HypothesisUpdate) {
	if !u.StatusChanged() {
		return
	}
	e.logger.Debug("hypothesis status changed",
		zap.String("id", u.HypothesisID.String()),
		zap.String("from", string(u.PreviousStatus)),
		zap.String("to", string(u.NewStatus)),
		zap.Float64("confidence", u.NewConfidence))
}

func daysSince(t, now time.Time) float64 {
	if t.IsZero() || !t.Before(now) {
		return 0
	}
	return now.Sub(t).Hours() / 24
}

// PatternStatement renders the dedup key for a pattern. Statements carry no
// numbers so the same finding maps to the same hypothesis across cycles.
func PatternStatement(p domain.Pattern) string {
	switch p.Type {
	case domain.PatternInterPeriodMoodVariance:
		return fmt.Sprintf("Mood runs higher during %s periods", p.Planet)
	case domain.PatternInterPeriodEnergyVariance:
		return fmt.Sprintf("Energy runs higher during %s periods", p.Planet)
	case domain.PatternPeriodThemeAlignment:
		return fmt.Sprintf("Journal themes follow %s periods", p.Planet)
	case domain.PatternSymptomPeriodCluster:
		symptom := "Symptoms"
		if c, ok := p.Data.(domain.SymptomCluster); ok && c.Symptom != "" {
			symptom = capitalize(c.Symptom)
		}
		return fmt.Sprintf("%s clusters during %s periods", symptom, p.Planet)
	case domain.PatternSolarCorrelation:
		return "Mood " + direction(p.EffectSize) + " with geomagnetic activity"
	case domain.PatternSolarEnergyCorrelation:
		return "Energy " + direction(p.EffectSize) + " with geomagnetic activity"
	case domain.PatternLunarPhaseMood:
		return fmt.Sprintf("Mood peaks around the %s", p.MoonPhase)
	case domain.PatternTimeOfDayMood:
		return "Mood peaks between " + hourBlock(p.HourOfDay)
	case domain.PatternTimeOfDayEnergy:
		return "Energy peaks between " + hourBlock(p.HourOfDay)
	case domain.PatternDayOfWeekMood:
		day := "one day of the week"
		if p.DayOfWeek != nil && *p.DayOfWeek >= 0 && *p.DayOfWeek < 7 {
			day = time.Weekday(*p.DayOfWeek).String() + "s"
		}
		return "Mood peaks on " + day
	case domain.PatternGateMoodVariance:
		return fmt.Sprintf("Mood lifts while the sun is in Gate %d", p.SunGate)
	default:
		return p.Description
	}
}

func direction(r float64) string {
	if r < 0 {
		return "falls"
	}
	return "rises"
}

func hourBlock(start *int) string {
	if start == nil {
		return "an unknown time of day"
	}
	return fmt.Sprintf("%02d:00 and %02d:00", *start, *start+HourBlockSize)
}
