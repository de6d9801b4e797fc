package service

import (
	"math"
	"time"

	"github.com/Harshitk-cp/oracle/internal/domain"
	"github.com/oklog/ulid/v2"
)

const (
	RecencyHalfLifeDays     = 30.0
	RecencyFloor            = 0.10
	PositionDecay           = 0.1
	ContradictionMultiplier = 2.0

	BaselineScore    = 0.20
	WeightScale      = 0.12
	SigmoidSteepness = 5.0
	SigmoidMidpoint  = 0.5

	HighConfidenceThreshold     = 0.80
	ModerateConfidenceThreshold = 0.60

	MaxInitialConfidence = 0.75
	initialDataPointsRef = 10
)

var recencyLambda = math.Ln2 / RecencyHalfLifeDays

// ConfidenceBand is a coarse classification of a confidence score.
type ConfidenceBand string

const (
	BandHigh     ConfidenceBand = "HIGH"
	BandModerate ConfidenceBand = "MODERATE"
	BandLow      ConfidenceBand = "LOW"
)

// BaseWeights is the fixed signed weight of each evidence type.
var BaseWeights = map[domain.EvidenceType]float64{
	// Direct user input
	domain.EvidenceUserConfirmation:        1.00,
	domain.EvidenceUserExplicitStatement:   0.95,
	domain.EvidenceUserReportedCorrelation: 0.90,

	// Observable data
	domain.EvidenceMoodLog:             0.80,
	domain.EvidenceJournalEntry:        0.75,
	domain.EvidenceSymptomLog:          0.75,
	domain.EvidenceEnergyLog:           0.70,
	domain.EvidenceBehaviorObservation: 0.70,
	domain.EvidenceConversationMention: 0.65,

	// System analysis
	domain.EvidenceStatisticalCorrelation: 0.60,
	domain.EvidencePatternDetection:       0.55,
	domain.EvidenceTemporalPattern:        0.50,
	domain.EvidenceCyclicalAlignment:      0.50,
	domain.EvidenceCosmicCorrelation:      0.45,

	// Computed suggestions
	domain.EvidenceAstrologicalTransit: 0.40,
	domain.EvidenceGateActivation:      0.35,
	domain.EvidenceNumerologyCycle:     0.30,
	domain.EvidenceThemeSuggestion:     0.25,

	// Contradictions
	domain.EvidenceUserRejection:  -1.5,
	domain.EvidenceCounterPattern: -1.0,
	domain.EvidenceDataMismatch:   -0.5,
}

// SourceReliability scales evidence by how trustworthy its source is.
var SourceReliability = map[string]float64{
	domain.SourceUser:                1.0,
	domain.SourceJournal:             0.9,
	domain.SourceMoodTracker:         0.85,
	domain.SourceObserver:            0.8,
	domain.SourceStatisticalAnalysis: 0.8,
	domain.SourcePatternDetector:     0.75,
	domain.SourceConversation:        0.7,
	domain.SourceCosmicCalculator:    0.6,
	domain.SourceSynthesis:           0.6,
	domain.SourceInference:           0.5,
	domain.SourceUnknown:             0.5,
}

// BaseWeight returns the weight for t. Unknown types carry no weight.
func BaseWeight(t domain.EvidenceType) float64 {
	return BaseWeights[t]
}

// Reliability returns the reliability of source, falling back to "unknown".
func Reliability(source string) float64 {
	if r, ok := SourceReliability[source]; ok {
		return r
	}
	return SourceReliability[domain.SourceUnknown]
}

func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

func clampUnit(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// CalculateRecencyMultiplier decays evidence with a 30-day half-life, floored
// at RecencyFloor. Evidence dated at or after now is never boosted above 1.
func CalculateRecencyMultiplier(evidenceDate, now time.Time) float64 {
	if !evidenceDate.Before(now) {
		return 1.0
	}
	days := now.Sub(evidenceDate).Hours() / 24
	m := math.Exp(-recencyLambda * days)
	if m < RecencyFloor {
		return RecencyFloor
	}
	return m
}

// CalculatePositionFactor gives diminishing returns by position in the
// evidence list. Position 0 (the oldest record) keeps full weight.
func CalculatePositionFactor(position int) float64 {
	if position < 0 {
		position = 0
	}
	return 1.0 / (1.0 + PositionDecay*float64(position))
}

// CreateEvidenceRecord builds a record with all derived weights filled in.
// A zero evidenceDate means the evidence happened at now.
func CreateEvidenceRecord(evidenceType domain.EvidenceType, source, description string, position int, now, evidenceDate time.Time) domain.EvidenceRecord {
	if evidenceDate.IsZero() {
		evidenceDate = now
	}
	rec := domain.EvidenceRecord{
		ID:                ulid.Make().String(),
		EvidenceType:      evidenceType,
		Source:            source,
		Description:       description,
		Timestamp:         evidenceDate,
		BaseWeight:        BaseWeight(evidenceType),
		SourceReliability: Reliability(source),
	}
	applyWeights(&rec, position, now)
	return rec
}

// applyWeights derives the recency, position and effective weight of rec.
// Contradictions hit at double strength and skip recency and position.
func applyWeights(rec *domain.EvidenceRecord, position int, now time.Time) {
	if rec.IsContradiction() {
		rec.RecencyMultiplier = 1.0
		rec.PositionFactor = 1.0
		rec.EffectiveWeight = rec.BaseWeight * rec.SourceReliability * ContradictionMultiplier
		return
	}
	rec.RecencyMultiplier = CalculateRecencyMultiplier(rec.Timestamp, now)
	rec.PositionFactor = CalculatePositionFactor(position)
	rec.EffectiveWeight = rec.BaseWeight * rec.SourceReliability * rec.RecencyMultiplier * rec.PositionFactor
}

// ConfidenceResult is the outcome of aggregating a set of evidence records.
type ConfidenceResult struct {
	Confidence    float64        `json:"confidence"`
	Band          ConfidenceBand `json:"band"`
	TotalWeight   float64        `json:"total_weight"`
	RawScore      float64        `json:"raw_score"`
	PositiveCount int            `json:"positive_count"`
	NegativeCount int            `json:"negative_count"`
}

// CalculateConfidence sums effective weights and squashes them through a
// sigmoid centred on 0.5.
func CalculateConfidence(records []domain.EvidenceRecord) ConfidenceResult {
	var result ConfidenceResult
	for _, r := range records {
		result.TotalWeight += r.EffectiveWeight
		switch {
		case r.EffectiveWeight > 0:
			result.PositiveCount++
		case r.EffectiveWeight < 0:
			result.NegativeCount++
		}
	}

	result.RawScore = BaselineScore + result.TotalWeight*WeightScale
	result.Confidence = clampUnit(Sigmoid(SigmoidSteepness * (result.RawScore - SigmoidMidpoint)))
	result.Band = ClassifyConfidence(result.Confidence)
	return result
}

func ClassifyConfidence(confidence float64) ConfidenceBand {
	switch {
	case confidence > HighConfidenceThreshold:
		return BandHigh
	case confidence >= ModerateConfidenceThreshold:
		return BandModerate
	default:
		return BandLow
	}
}

// CalculateInitialConfidence bootstraps a score for a pattern before any
// evidence record exists. It is capped so a first pass alone cannot reach
// confirmed territory.
func CalculateInitialConfidence(baseWeight, reliability float64, dataPoints int, correlationStrength float64) float64 {
	if dataPoints < 0 {
		dataPoints = 0
	}
	volume := math.Log(1+float64(dataPoints)) / math.Log(1+initialDataPointsRef)
	raw := BaselineScore + baseWeight*reliability*volume*math.Abs(correlationStrength)*0.5
	if raw > MaxInitialConfidence {
		return MaxInitialConfidence
	}
	if raw < 0 {
		return 0
	}
	return raw
}

// RecalculateConfidence refreshes recency, position and effective weight of
// every record against now, using each record's current index as its
// position. The input slice is not modified.
func RecalculateConfidence(records []domain.EvidenceRecord, now time.Time) ([]domain.EvidenceRecord, ConfidenceResult) {
	refreshed := make([]domain.EvidenceRecord, len(records))
	for i, r := range records {
		applyWeights(&r, i, now)
		refreshed[i] = r
	}
	return refreshed, CalculateConfidence(refreshed)
}
