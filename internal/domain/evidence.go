package domain

import "time"

// EvidenceType classifies a piece of evidence. Weights per type live in the
// confidence calculator.
type EvidenceType string

const (
	// Direct user input
	EvidenceUserConfirmation        EvidenceType = "USER_CONFIRMATION"
	EvidenceUserExplicitStatement   EvidenceType = "USER_EXPLICIT_STATEMENT"
	EvidenceUserReportedCorrelation EvidenceType = "USER_REPORTED_CORRELATION"

	// Observable data
	EvidenceMoodLog             EvidenceType = "MOOD_LOG"
	EvidenceJournalEntry        EvidenceType = "JOURNAL_ENTRY"
	EvidenceSymptomLog          EvidenceType = "SYMPTOM_LOG"
	EvidenceEnergyLog           EvidenceType = "ENERGY_LOG"
	EvidenceBehaviorObservation EvidenceType = "BEHAVIOR_OBSERVATION"
	EvidenceConversationMention EvidenceType = "CONVERSATION_MENTION"

	// System analysis
	EvidenceStatisticalCorrelation EvidenceType = "STATISTICAL_CORRELATION"
	EvidencePatternDetection       EvidenceType = "PATTERN_DETECTION"
	EvidenceTemporalPattern        EvidenceType = "TEMPORAL_PATTERN"
	EvidenceCyclicalAlignment      EvidenceType = "CYCLICAL_ALIGNMENT"
	EvidenceCosmicCorrelation      EvidenceType = "COSMIC_CORRELATION"

	// Computed suggestions
	EvidenceAstrologicalTransit EvidenceType = "ASTROLOGICAL_TRANSIT"
	EvidenceGateActivation      EvidenceType = "GATE_ACTIVATION"
	EvidenceNumerologyCycle     EvidenceType = "NUMEROLOGY_CYCLE"
	EvidenceThemeSuggestion     EvidenceType = "THEME_SUGGESTION"

	// Contradictions
	EvidenceUserRejection  EvidenceType = "USER_REJECTION"
	EvidenceCounterPattern EvidenceType = "COUNTER_PATTERN"
	EvidenceDataMismatch   EvidenceType = "DATA_MISMATCH"
)

// AllEvidenceTypes lists every evidence type in tier order.
var AllEvidenceTypes = []EvidenceType{
	EvidenceUserConfirmation, EvidenceUserExplicitStatement, EvidenceUserReportedCorrelation,
	EvidenceMoodLog, EvidenceJournalEntry, EvidenceSymptomLog, EvidenceEnergyLog,
	EvidenceBehaviorObservation, EvidenceConversationMention,
	EvidenceStatisticalCorrelation, EvidencePatternDetection, EvidenceTemporalPattern,
	EvidenceCyclicalAlignment, EvidenceCosmicCorrelation,
	EvidenceAstrologicalTransit, EvidenceGateActivation, EvidenceNumerologyCycle, EvidenceThemeSuggestion,
	EvidenceUserRejection, EvidenceCounterPattern, EvidenceDataMismatch,
}

func ValidEvidenceType(s string) bool {
	for _, t := range AllEvidenceTypes {
		if string(t) == s {
			return true
		}
	}
	return false
}

// Well-known evidence sources. Unrecognized keys are scored as SourceUnknown.
const (
	SourceUser                = "user"
	SourceJournal             = "journal"
	SourceMoodTracker         = "mood_tracker"
	SourceObserver            = "observer"
	SourceStatisticalAnalysis = "statistical_analysis"
	SourcePatternDetector     = "pattern_detector"
	SourceConversation        = "conversation"
	SourceCosmicCalculator    = "cosmic_calculator"
	SourceSynthesis           = "synthesis"
	SourceInference           = "inference"
	SourceUnknown             = "unknown"
)

// EvidenceRecord is one weighted data point for or against a hypothesis.
// Only RecencyMultiplier, PositionFactor and EffectiveWeight change after
// creation, when confidence is recalculated against a new clock.
type EvidenceRecord struct {
	ID                string       `json:"id"`
	EvidenceType      EvidenceType `json:"evidence_type"`
	Source            string       `json:"source"`
	Description       string       `json:"description"`
	Timestamp         time.Time    `json:"timestamp"`
	BaseWeight        float64      `json:"base_weight"`
	SourceReliability float64      `json:"source_reliability"`
	RecencyMultiplier float64      `json:"recency_multiplier"`
	PositionFactor    float64      `json:"position_factor"`
	EffectiveWeight   float64      `json:"effective_weight"`
}

// IsContradiction reports whether the record counts against its hypothesis.
func (r EvidenceRecord) IsContradiction() bool {
	return r.BaseWeight < 0
}
