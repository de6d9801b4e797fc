package domain

import (
	"time"

	"github.com/google/uuid"
)

// HypothesisStatus is the lifecycle state of a hypothesis.
type HypothesisStatus string

const (
	StatusForming   HypothesisStatus = "FORMING"
	StatusTesting   HypothesisStatus = "TESTING"
	StatusConfirmed HypothesisStatus = "CONFIRMED"
	StatusRejected  HypothesisStatus = "REJECTED"
	StatusStale     HypothesisStatus = "STALE"
)

func ValidHypothesisStatus(s string) bool {
	switch HypothesisStatus(s) {
	case StatusForming, StatusTesting, StatusConfirmed, StatusRejected, StatusStale:
		return true
	}
	return false
}

// HypothesisType groups hypotheses by the kind of pattern they came from.
type HypothesisType string

const (
	HypothesisPeriodCorrelation HypothesisType = "PERIOD_CORRELATION"
	HypothesisPeriodTheme       HypothesisType = "PERIOD_THEME"
	HypothesisSymptomCycle      HypothesisType = "SYMPTOM_CYCLE"
	HypothesisCosmicSensitivity HypothesisType = "COSMIC_SENSITIVITY"
	HypothesisLunarSensitivity  HypothesisType = "LUNAR_SENSITIVITY"
	HypothesisTemporalRhythm    HypothesisType = "TEMPORAL_RHYTHM"
	HypothesisGateResonance     HypothesisType = "GATE_RESONANCE"
)

// ConfidenceSnapshot is one point in a hypothesis's confidence history.
type ConfidenceSnapshot struct {
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// Hypothesis is a tracked candidate pattern with accumulated evidence.
// Statement is the dedup key. Evidence records are kept oldest first.
type Hypothesis struct {
	ID                  uuid.UUID            `json:"id"`
	Statement           string               `json:"statement"`
	Type                HypothesisType       `json:"type"`
	Category            string               `json:"category"`
	Status              HypothesisStatus     `json:"status"`
	Confidence          float64              `json:"confidence"`
	EvidenceRecords     []EvidenceRecord     `json:"evidence_records"`
	ConfidenceHistory   []ConfidenceSnapshot `json:"confidence_history"`
	FirstDetectedAt     time.Time            `json:"first_detected_at"`
	LastEvidenceAt      time.Time            `json:"last_evidence_at"`
	PeriodEvidenceCount map[string]int       `json:"period_evidence_count"`
	GateEvidenceCount   map[int]int          `json:"gate_evidence_count"`
	SourcePatterns      []string             `json:"source_patterns"`
}

// HasContradiction reports whether any contradiction-kind evidence exists.
func (h *Hypothesis) HasContradiction() bool {
	for _, r := range h.EvidenceRecords {
		if r.IsContradiction() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers never share slices or maps with the engine.
func (h Hypothesis) Clone() Hypothesis {
	c := h
	if h.EvidenceRecords != nil {
		c.EvidenceRecords = append([]EvidenceRecord(nil), h.EvidenceRecords...)
	}
	if h.ConfidenceHistory != nil {
		c.ConfidenceHistory = append([]ConfidenceSnapshot(nil), h.ConfidenceHistory...)
	}
	if h.SourcePatterns != nil {
		c.SourcePatterns = append([]string(nil), h.SourcePatterns...)
	}
	if h.PeriodEvidenceCount != nil {
		c.PeriodEvidenceCount = make(map[string]int, len(h.PeriodEvidenceCount))
		for k, v := range h.PeriodEvidenceCount {
			c.PeriodEvidenceCount[k] = v
		}
	}
	if h.GateEvidenceCount != nil {
		c.GateEvidenceCount = make(map[int]int, len(h.GateEvidenceCount))
		for k, v := range h.GateEvidenceCount {
			c.GateEvidenceCount[k] = v
		}
	}
	return c
}

// HypothesisUpdate summarizes what one piece of evidence did to a hypothesis.
type HypothesisUpdate struct {
	HypothesisID       uuid.UUID        `json:"hypothesis_id"`
	Statement          string           `json:"statement"`
	EvidenceID         string           `json:"evidence_id"`
	PreviousConfidence float64          `json:"previous_confidence"`
	NewConfidence      float64          `json:"new_confidence"`
	PreviousStatus     HypothesisStatus `json:"previous_status"`
	NewStatus          HypothesisStatus `json:"new_status"`
}

// StatusChanged reports whether the update moved the hypothesis to a new state.
func (u HypothesisUpdate) StatusChanged() bool {
	return u.PreviousStatus != u.NewStatus
}
