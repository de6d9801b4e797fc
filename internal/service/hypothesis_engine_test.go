package service

import (
	"encoding/json"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/Harshitk-cp/oracle/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(days int) { c.now = c.now.AddDate(0, 0, days) }

func newTestEngine() (*HypothesisEngine, *testClock) {
	clock := &testClock{now: testNow}
	e := NewHypothesisEngine(zap.NewNop())
	e.SetClock(clock.Now)
	return e, clock
}

func solarPattern() domain.Pattern {
	return domain.Pattern{
		Type:         domain.PatternSolarCorrelation,
		Confidence:   0.99,
		Description:  "Mood rises with geomagnetic activity (r=0.91 over 15 entries)",
		PValue:       0.01,
		EffectSize:   0.91,
		EvidenceType: domain.EvidenceCosmicCorrelation,
		DataPoints:   15,
	}
}

func periodPattern(planet string) domain.Pattern {
	return domain.Pattern{
		Type:         domain.PatternInterPeriodMoodVariance,
		Confidence:   0.98,
		Description:  "Mood averages 8.0 during " + planet + " periods",
		PValue:       0.02,
		EffectSize:   6,
		EvidenceType: domain.EvidenceCyclicalAlignment,
		DataPoints:   24,
		Planet:       planet,
	}
}

func TestResolveStatus(t *testing.T) {
	tests := []struct {
		name             string
		confidence       float64
		hasContradiction bool
		days             float64
		expected         domain.HypothesisStatus
	}{
		{"stale overrides high confidence", 0.9, false, 65, domain.StatusStale},
		{"stale at exactly sixty days", 0.5, true, 60, domain.StatusStale},
		{"confirmed", 0.86, false, 0, domain.StatusConfirmed},
		{"upper testing bound", 0.85, false, 0, domain.StatusTesting},
		{"lower testing bound", 0.60, false, 10, domain.StatusTesting},
		{"low without contradiction keeps forming", 0.15, false, 0, domain.StatusForming},
		{"low with contradiction rejects", 0.15, true, 0, domain.StatusRejected},
		{"rejection threshold is strict", 0.20, true, 0, domain.StatusForming},
		{"middling", 0.45, false, 59, domain.StatusForming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveStatus(tt.confidence, tt.hasContradiction, tt.days))
		})
	}
}

func TestGenerateFromPatterns_SeedsHypothesis(t *testing.T) {
	e, _ := newTestEngine()

	created := e.GenerateFromPatterns([]domain.Pattern{periodPattern("Venus")})
	require.Len(t, created, 1)

	h := created[0]
	assert.NotEqual(t, uuid.Nil, h.ID)
	assert.Equal(t, "Mood runs higher during Venus periods", h.Statement)
	assert.Equal(t, domain.HypothesisPeriodCorrelation, h.Type)
	assert.Equal(t, "mood", h.Category)
	assert.Equal(t, domain.StatusForming, h.Status)
	assert.Equal(t, testNow, h.FirstDetectedAt)
	assert.Equal(t, testNow, h.LastEvidenceAt)
	assert.Equal(t, map[string]int{"Venus": 1}, h.PeriodEvidenceCount)
	assert.Empty(t, h.GateEvidenceCount)
	assert.Equal(t, []string{"INTER_PERIOD_MOOD_VARIANCE"}, h.SourcePatterns)

	require.Len(t, h.EvidenceRecords, 1)
	seed := h.EvidenceRecords[0]
	assert.Equal(t, domain.EvidenceCyclicalAlignment, seed.EvidenceType)
	assert.Equal(t, domain.SourceObserver, seed.Source)
	assert.InDelta(t, 0.50*0.8, seed.EffectiveWeight, 1e-12)

	require.Len(t, h.ConfidenceHistory, 1)
	assert.Equal(t, h.Confidence, h.ConfidenceHistory[0].Confidence)
	assert.InDelta(t, CalculateConfidence(h.EvidenceRecords).Confidence, h.Confidence, 1e-12)
}

func TestGenerateFromPatterns_GateCounts(t *testing.T) {
	e, _ := newTestEngine()
	p := domain.Pattern{
		Type:         domain.PatternGateMoodVariance,
		EvidenceType: domain.EvidenceGateActivation,
		SunGate:      41,
		GateLine:     3,
	}

	created := e.GenerateFromPatterns([]domain.Pattern{p})
	require.Len(t, created, 1)
	assert.Equal(t, map[int]int{41: 1}, created[0].GateEvidenceCount)
	assert.Equal(t, domain.HypothesisGateResonance, created[0].Type)
	assert.Equal(t, "Mood lifts while the sun is in Gate 41", created[0].Statement)
}

func TestGenerateFromPatterns_Idempotent(t *testing.T) {
	e, _ := newTestEngine()

	first := e.GenerateFromPatterns([]domain.Pattern{solarPattern()})
	second := e.GenerateFromPatterns([]domain.Pattern{solarPattern()})

	assert.Len(t, first, 1)
	assert.Empty(t, second)
	assert.Len(t, e.GetAll(), 1)
}

func TestGenerateFromPatterns_DedupesWithinBatch(t *testing.T) {
	e, _ := newTestEngine()

	stronger := solarPattern()
	stronger.EffectSize = 0.95
	created := e.GenerateFromPatterns([]domain.Pattern{solarPattern(), stronger, periodPattern("Mars")})

	assert.Len(t, created, 2)
	assert.Len(t, e.GetAll(), 2)
}

func TestGenerateFromPatterns_SkipsUnknownType(t *testing.T) {
	e, _ := newTestEngine()

	created := e.GenerateFromPatterns([]domain.Pattern{{Type: "SOMETHING_ELSE", EvidenceType: domain.EvidencePatternDetection}})

	assert.Empty(t, created)
	assert.Empty(t, e.GetAll())
}

func TestUserConfirm_PromotesThroughLifecycle(t *testing.T) {
	e, clock := newTestEngine()
	h := e.GenerateFromPatterns([]domain.Pattern{solarPattern()})[0]

	var statuses []domain.HypothesisStatus
	for i := 0; i < 7; i++ {
		clock.now = clock.now.Add(time.Hour)
		update := e.UserConfirm(h.ID)
		require.NotNil(t, update)
		assert.Greater(t, update.NewConfidence, update.PreviousConfidence)
		statuses = append(statuses, update.NewStatus)
	}

	assert.Equal(t, domain.StatusForming, statuses[0])
	assert.Equal(t, domain.StatusTesting, statuses[3])
	assert.Equal(t, domain.StatusTesting, statuses[5])
	assert.Equal(t, domain.StatusConfirmed, statuses[6])

	got, ok := e.Get(h.ID)
	require.True(t, ok)
	assert.Len(t, got.EvidenceRecords, 8)
	assert.Len(t, got.ConfidenceHistory, 8)
	assert.Equal(t, clock.now, got.LastEvidenceAt)
	assert.InDelta(t, 1/1.7, got.EvidenceRecords[7].PositionFactor, 1e-12)
	assert.Len(t, e.GetConfirmed(), 1)
	assert.Empty(t, e.GetActive())
}

func TestUserReject_RejectsWithContradiction(t *testing.T) {
	e, _ := newTestEngine()
	h := e.GenerateFromPatterns([]domain.Pattern{solarPattern()})[0]

	update := e.UserReject(h.ID)
	require.NotNil(t, update)

	assert.Equal(t, domain.StatusForming, update.PreviousStatus)
	assert.Equal(t, domain.StatusRejected, update.NewStatus)
	assert.True(t, update.StatusChanged())
	assert.Less(t, update.NewConfidence, RejectedThreshold)

	got, _ := e.Get(h.ID)
	assert.True(t, got.HasContradiction())
	assert.Equal(t, -3.0, got.EvidenceRecords[1].EffectiveWeight)
}

func TestUserFeedback_UnknownID(t *testing.T) {
	e, _ := newTestEngine()
	e.GenerateFromPatterns([]domain.Pattern{solarPattern()})

	assert.Nil(t, e.UserConfirm(uuid.New()))
	assert.Nil(t, e.UserReject(uuid.New()))
}

func TestTestEvidence_MatchesAndFreezesSettled(t *testing.T) {
	e, _ := newTestEngine()
	e.GenerateFromPatterns([]domain.Pattern{solarPattern(), periodPattern("Venus"), periodPattern("Mars")})

	all := e.GetAll()
	var venus, mars domain.Hypothesis
	for _, h := range all {
		switch h.PeriodEvidenceCount["Venus"] + 2*h.PeriodEvidenceCount["Mars"] {
		case 1:
			venus = h
		case 2:
			mars = h
		}
	}
	require.NotEqual(t, uuid.Nil, venus.ID)
	require.NotEqual(t, uuid.Nil, mars.ID)

	require.NotNil(t, e.UserReject(mars.ID))

	byCategory := func(h domain.Hypothesis) bool { return h.Category == "mood" }
	updates := e.TestEvidence(domain.EvidenceMoodLog, domain.SourceMoodTracker, "good day", byCategory)

	require.Len(t, updates, 2, "solar and Venus match; rejected Mars is frozen")
	for _, u := range updates {
		assert.NotEqual(t, mars.ID, u.HypothesisID)
		assert.NotEmpty(t, u.EvidenceID)
		assert.Greater(t, u.NewConfidence, u.PreviousConfidence)
	}

	got, _ := e.Get(venus.ID)
	require.Len(t, got.EvidenceRecords, 2)
	assert.InDelta(t, 0.80*0.85/1.1, got.EvidenceRecords[1].EffectiveWeight, 1e-12)

	frozen, _ := e.Get(mars.ID)
	assert.Len(t, frozen.EvidenceRecords, 2)
}

func TestTestEvidence_NoMatch(t *testing.T) {
	e, _ := newTestEngine()
	e.GenerateFromPatterns([]domain.Pattern{solarPattern()})

	updates := e.TestEvidence(domain.EvidenceJournalEntry, domain.SourceJournal, "", func(domain.Hypothesis) bool { return false })
	assert.Empty(t, updates)

	assert.Empty(t, e.TestEvidence(domain.EvidenceJournalEntry, domain.SourceJournal, "", nil))
}

func TestRefreshStaleStatus(t *testing.T) {
	e, clock := newTestEngine()
	h := e.GenerateFromPatterns([]domain.Pattern{solarPattern()})[0]
	for i := 0; i < 7; i++ {
		e.UserConfirm(h.ID)
	}
	got, _ := e.Get(h.ID)
	require.Equal(t, domain.StatusConfirmed, got.Status)

	clock.Advance(59)
	assert.Empty(t, e.RefreshStaleStatus())

	clock.Advance(6)
	updates := e.RefreshStaleStatus()
	require.Len(t, updates, 1)
	assert.Equal(t, domain.StatusConfirmed, updates[0].PreviousStatus)
	assert.Equal(t, domain.StatusStale, updates[0].NewStatus)
	assert.Equal(t, updates[0].PreviousConfidence, updates[0].NewConfidence)

	got, _ = e.Get(h.ID)
	assert.Equal(t, domain.StatusStale, got.Status)
	assert.Empty(t, e.RefreshStaleStatus(), "a second sweep changes nothing")
}

func TestStaleHypothesisRevivesWithEvidence(t *testing.T) {
	e, clock := newTestEngine()
	h := e.GenerateFromPatterns([]domain.Pattern{solarPattern()})[0]

	clock.Advance(70)
	e.RefreshStaleStatus()

	updates := e.TestEvidence(domain.EvidenceUserReportedCorrelation, domain.SourceUser, "noticed it again", func(domain.Hypothesis) bool { return true })
	require.Len(t, updates, 1)
	assert.Equal(t, domain.StatusStale, updates[0].PreviousStatus)
	assert.Equal(t, domain.StatusForming, updates[0].NewStatus)

	got, _ := e.Get(h.ID)
	assert.Equal(t, clock.now, got.LastEvidenceAt)
}

func TestApplyDecay(t *testing.T) {
	e, clock := newTestEngine()
	h := e.GenerateFromPatterns([]domain.Pattern{solarPattern()})[0]
	e.UserConfirm(h.ID)
	before, _ := e.Get(h.ID)

	clock.Advance(30)
	updates := e.ApplyDecay()
	require.Len(t, updates, 1)
	assert.Less(t, updates[0].NewConfidence, updates[0].PreviousConfidence)

	after, _ := e.Get(h.ID)
	assert.InDelta(t, 0.5, after.EvidenceRecords[0].RecencyMultiplier, 0.01)
	assert.Len(t, after.ConfidenceHistory, len(before.ConfidenceHistory)+1)
	assert.Equal(t, before.LastEvidenceAt, after.LastEvidenceAt)

	assert.Empty(t, e.ApplyDecay(), "decay against the same clock is a no-op")
}

func TestApplyDecay_SkipsSettled(t *testing.T) {
	e, clock := newTestEngine()
	h := e.GenerateFromPatterns([]domain.Pattern{solarPattern()})[0]
	e.UserReject(h.ID)

	clock.Advance(40)
	assert.Empty(t, e.ApplyDecay())
}

func TestGetAll_ReturnsCopies(t *testing.T) {
	e, _ := newTestEngine()
	h := e.GenerateFromPatterns([]domain.Pattern{periodPattern("Venus")})[0]

	all := e.GetAll()
	all[0].Statement = "mutated"
	all[0].PeriodEvidenceCount["Venus"] = 99
	all[0].EvidenceRecords[0].Description = "mutated"

	got, _ := e.Get(h.ID)
	assert.Equal(t, h.Statement, got.Statement)
	assert.Equal(t, 1, got.PeriodEvidenceCount["Venus"])
	assert.NotEqual(t, "mutated", got.EvidenceRecords[0].Description)
}

func TestLoadHypotheses_RoundTrip(t *testing.T) {
	e1, _ := newTestEngine()
	created := e1.GenerateFromPatterns([]domain.Pattern{solarPattern(), periodPattern("Venus")})
	e1.UserConfirm(created[0].ID)
	e1.UserReject(created[1].ID)

	e2, _ := newTestEngine()
	e2.LoadHypotheses(e1.GetAll())

	assert.Equal(t, e1.GetAll(), e2.GetAll())

	again := e2.GenerateFromPatterns([]domain.Pattern{solarPattern()})
	assert.Empty(t, again, "loaded statements still dedupe")
	assert.NotNil(t, e2.UserConfirm(created[0].ID), "loaded ids resolve")
}

func TestLoadHypotheses_NonASCIIStatementSurvivesJSON(t *testing.T) {
	pattern := domain.Pattern{
		Type:         domain.PatternSymptomPeriodCluster,
		Confidence:   0.97,
		PValue:       0.03,
		EffectSize:   0.4,
		EvidenceType: domain.EvidencePatternDetection,
		DataPoints:   30,
		Planet:       "Venus",
		Data:         domain.SymptomCluster{Symptom: "ébriété"},
	}

	e1, _ := newTestEngine()
	created := e1.GenerateFromPatterns([]domain.Pattern{pattern})
	require.Len(t, created, 1)
	assert.True(t, utf8.ValidString(created[0].Statement))
	assert.Equal(t, "Ébriété clusters during Venus periods", created[0].Statement)

	raw, err := json.Marshal(e1.GetAll())
	require.NoError(t, err)
	var saved []domain.Hypothesis
	require.NoError(t, json.Unmarshal(raw, &saved))

	e2, _ := newTestEngine()
	e2.LoadHypotheses(saved)

	assert.Empty(t, e2.GenerateFromPatterns([]domain.Pattern{pattern}))
	assert.Len(t, e2.GetAll(), 1)
}

func TestLoadHypotheses_DropsDuplicates(t *testing.T) {
	e1, _ := newTestEngine()
	h := e1.GenerateFromPatterns([]domain.Pattern{solarPattern()})[0]

	dupStatement := h.Clone()
	dupStatement.ID = uuid.New()

	e2, _ := newTestEngine()
	e2.LoadHypotheses([]domain.Hypothesis{h, h, dupStatement})
	assert.Len(t, e2.GetAll(), 1)
}

func TestReset(t *testing.T) {
	e, _ := newTestEngine()
	h := e.GenerateFromPatterns([]domain.Pattern{solarPattern()})[0]

	e.Reset()

	assert.Empty(t, e.GetAll())
	_, ok := e.Get(h.ID)
	assert.False(t, ok)
	assert.Len(t, e.GenerateFromPatterns([]domain.Pattern{solarPattern()}), 1)
}

func TestProjectedConfidence(t *testing.T) {
	e, _ := newTestEngine()

	p := solarPattern()
	p.DataPoints = 10
	p.EffectSize = -0.8
	assert.InDelta(t, 0.2+0.45*0.8*0.8*0.5, e.ProjectedConfidence(p), 1e-9)

	p.DataPoints = 5000
	p.EffectSize = 6
	assert.Equal(t, MaxInitialConfidence, e.ProjectedConfidence(p))
}

func TestPatternStatement(t *testing.T) {
	hour := 8
	day := int(time.Saturday)
	tests := []struct {
		pattern  domain.Pattern
		expected string
	}{
		{domain.Pattern{Type: domain.PatternSolarCorrelation, EffectSize: -0.7}, "Mood falls with geomagnetic activity"},
		{domain.Pattern{Type: domain.PatternSolarEnergyCorrelation, EffectSize: 0.7}, "Energy rises with geomagnetic activity"},
		{domain.Pattern{Type: domain.PatternTimeOfDayMood, HourOfDay: &hour}, "Mood peaks between 08:00 and 12:00"},
		{domain.Pattern{Type: domain.PatternDayOfWeekMood, DayOfWeek: &day}, "Mood peaks on Saturdays"},
		{domain.Pattern{Type: domain.PatternLunarPhaseMood, MoonPhase: "Full Moon"}, "Mood peaks around the Full Moon"},
		{domain.Pattern{Type: domain.PatternSymptomPeriodCluster, Planet: "Saturn", Data: domain.SymptomCluster{Symptom: "headache"}}, "Headache clusters during Saturn periods"},
		{domain.Pattern{Type: domain.PatternSymptomPeriodCluster, Planet: "Moon", Data: domain.SymptomCluster{Symptom: "übelkeit"}}, "Übelkeit clusters during Moon periods"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, PatternStatement(tt.pattern))
	}
}
