package service

import (
	"math"
	"testing"
	"time"

	"github.com/Harshitk-cp/oracle/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(days float64) time.Time {
	return testNow.Add(-time.Duration(days * 24 * float64(time.Hour)))
}

func TestCalculateRecencyMultiplier(t *testing.T) {
	tests := []struct {
		name     string
		date     time.Time
		expected float64
		delta    float64
	}{
		{"now", testNow, 1.0, 0},
		{"future", testNow.Add(48 * time.Hour), 1.0, 0},
		{"half life", daysAgo(30), 0.5, 0.01},
		{"two half lives", daysAgo(60), 0.25, 0.01},
		{"floor at 120 days", daysAgo(120), RecencyFloor, 0},
		{"floor at a year", daysAgo(365), RecencyFloor, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateRecencyMultiplier(tt.date, testNow)
			assert.InDelta(t, tt.expected, got, tt.delta)
		})
	}
}

func TestCalculatePositionFactor(t *testing.T) {
	assert.Equal(t, 1.0, CalculatePositionFactor(0))
	assert.InDelta(t, 0.5, CalculatePositionFactor(10), 1e-12)
	assert.InDelta(t, 1/1.1, CalculatePositionFactor(1), 1e-12)
	assert.Equal(t, 1.0, CalculatePositionFactor(-3), "negative positions clamp to the first slot")
}

func TestCreateEvidenceRecord_JournalFromUser(t *testing.T) {
	rec := CreateEvidenceRecord(domain.EvidenceJournalEntry, domain.SourceUser, "wrote about it", 0, testNow, time.Time{})

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, testNow, rec.Timestamp)
	assert.Equal(t, 0.75, rec.BaseWeight)
	assert.Equal(t, 1.0, rec.SourceReliability)
	assert.Equal(t, 1.0, rec.RecencyMultiplier)
	assert.Equal(t, 1.0, rec.PositionFactor)
	assert.Equal(t, 0.75, rec.EffectiveWeight)
}

func TestCreateEvidenceRecord_PositiveFormula(t *testing.T) {
	rec := CreateEvidenceRecord(domain.EvidenceMoodLog, domain.SourceMoodTracker, "", 4, testNow, daysAgo(30))

	want := 0.80 * 0.85 * rec.RecencyMultiplier * (1 / 1.4)
	assert.InDelta(t, 0.5, rec.RecencyMultiplier, 0.01)
	assert.InDelta(t, want, rec.EffectiveWeight, 1e-12)
}

func TestCreateEvidenceRecord_ContradictionSkipsDecay(t *testing.T) {
	rec := CreateEvidenceRecord(domain.EvidenceUserRejection, domain.SourceUser, "not me", 9, testNow, daysAgo(200))

	assert.True(t, rec.IsContradiction())
	assert.Equal(t, 1.0, rec.RecencyMultiplier)
	assert.Equal(t, 1.0, rec.PositionFactor)
	assert.Equal(t, -3.0, rec.EffectiveWeight)
}

func TestCreateEvidenceRecord_UnknownKeys(t *testing.T) {
	rec := CreateEvidenceRecord(domain.EvidenceMoodLog, "somewhere-new", "", 0, testNow, time.Time{})
	assert.Equal(t, 0.5, rec.SourceReliability)

	rec = CreateEvidenceRecord(domain.EvidenceType("MADE_UP"), domain.SourceUser, "", 0, testNow, time.Time{})
	assert.Equal(t, 0.0, rec.BaseWeight)
	assert.Equal(t, 0.0, rec.EffectiveWeight)
}

func TestCreateEvidenceRecord_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		rec := CreateEvidenceRecord(domain.EvidenceMoodLog, domain.SourceUser, "", i, testNow, time.Time{})
		require.False(t, seen[rec.ID], "duplicate id %s", rec.ID)
		seen[rec.ID] = true
	}
}

func TestBaseWeights_Tiers(t *testing.T) {
	require.Len(t, BaseWeights, len(domain.AllEvidenceTypes))

	for _, et := range domain.AllEvidenceTypes {
		w, ok := BaseWeights[et]
		require.True(t, ok, "missing weight for %s", et)
		assert.NotZero(t, w)
		assert.GreaterOrEqual(t, w, -1.5)
		assert.LessOrEqual(t, w, 1.0)
	}

	for source, r := range SourceReliability {
		assert.GreaterOrEqual(t, r, 0.5, source)
		assert.LessOrEqual(t, r, 1.0, source)
	}
}

func TestCalculateConfidence_Empty(t *testing.T) {
	result := CalculateConfidence(nil)

	assert.Less(t, result.Confidence, 0.3)
	assert.Equal(t, BandLow, result.Band)
	assert.Equal(t, 0.0, result.TotalWeight)
	assert.InDelta(t, BaselineScore, result.RawScore, 1e-12)
	assert.InDelta(t, Sigmoid(-1.5), result.Confidence, 1e-12)
}

func TestCalculateConfidence_Formula(t *testing.T) {
	records := []domain.EvidenceRecord{
		CreateEvidenceRecord(domain.EvidenceUserConfirmation, domain.SourceUser, "", 0, testNow, time.Time{}),
		CreateEvidenceRecord(domain.EvidenceMoodLog, domain.SourceMoodTracker, "", 1, testNow, time.Time{}),
	}

	total := 1.0 + 0.80*0.85/1.1
	raw := 0.20 + total*0.12
	want := 1 / (1 + math.Exp(-5*(raw-0.5)))

	result := CalculateConfidence(records)
	assert.InDelta(t, total, result.TotalWeight, 1e-12)
	assert.InDelta(t, raw, result.RawScore, 1e-12)
	assert.InDelta(t, want, result.Confidence, 1e-12)
	assert.Equal(t, 2, result.PositiveCount)
	assert.Equal(t, 0, result.NegativeCount)
}

func TestCalculateConfidence_RejectionLowersConfidence(t *testing.T) {
	positive := []domain.EvidenceRecord{
		CreateEvidenceRecord(domain.EvidenceUserConfirmation, domain.SourceUser, "", 0, testNow, time.Time{}),
		CreateEvidenceRecord(domain.EvidenceJournalEntry, domain.SourceJournal, "", 1, testNow, time.Time{}),
		CreateEvidenceRecord(domain.EvidenceMoodLog, domain.SourceMoodTracker, "", 2, testNow, time.Time{}),
	}
	withRejection := append(append([]domain.EvidenceRecord(nil), positive...),
		CreateEvidenceRecord(domain.EvidenceUserRejection, domain.SourceUser, "", 3, testNow, time.Time{}))

	before := CalculateConfidence(positive)
	after := CalculateConfidence(withRejection)

	assert.Less(t, after.Confidence, before.Confidence)
	assert.Equal(t, 1, after.NegativeCount)
	assert.Equal(t, 3, after.PositiveCount)
}

func TestClassifyConfidence(t *testing.T) {
	tests := []struct {
		confidence float64
		expected   ConfidenceBand
	}{
		{0.95, BandHigh},
		{0.81, BandHigh},
		{0.80, BandModerate},
		{0.60, BandModerate},
		{0.59, BandLow},
		{0.0, BandLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifyConfidence(tt.confidence), "confidence %f", tt.confidence)
	}
}

func TestCalculateInitialConfidence(t *testing.T) {
	// 0.20 + 0.60*0.8*(ln 11/ln 11)*0.8*0.5
	got := CalculateInitialConfidence(0.60, 0.8, 10, 0.8)
	assert.InDelta(t, 0.392, got, 1e-9)

	assert.Equal(t, MaxInitialConfidence, CalculateInitialConfidence(1.0, 1.0, 1000, 1.0))
	assert.InDelta(t, BaselineScore, CalculateInitialConfidence(0.6, 0.8, 0, 0.9), 1e-12)
	assert.Equal(t, CalculateInitialConfidence(0.6, 0.8, 20, 0.7), CalculateInitialConfidence(0.6, 0.8, 20, -0.7))
}

func TestRecalculateConfidence(t *testing.T) {
	created := daysAgo(60)
	records := []domain.EvidenceRecord{
		CreateEvidenceRecord(domain.EvidenceMoodLog, domain.SourceUser, "", 0, created, time.Time{}),
		CreateEvidenceRecord(domain.EvidenceJournalEntry, domain.SourceUser, "", 5, created, time.Time{}),
		CreateEvidenceRecord(domain.EvidenceCounterPattern, domain.SourceObserver, "", 2, created, time.Time{}),
	}
	original := append([]domain.EvidenceRecord(nil), records...)

	refreshed, result := RecalculateConfidence(records, testNow)
	require.Len(t, refreshed, 3)

	assert.Equal(t, original, records, "input records are not modified")

	assert.InDelta(t, 0.25, refreshed[0].RecencyMultiplier, 0.01)
	assert.Equal(t, 1.0, refreshed[0].PositionFactor)
	assert.InDelta(t, 1/1.1, refreshed[1].PositionFactor, 1e-12, "position follows the array index")
	assert.Equal(t, -1.6, refreshed[2].EffectiveWeight)

	assert.Less(t, result.Confidence, CalculateConfidence(records).Confidence)
	assert.Equal(t, CalculateConfidence(refreshed), result)
}
