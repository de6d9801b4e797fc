package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Harshitk-cp/oracle/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockHypothesisStore mocks the HypothesisStore interface.
type MockHypothesisStore struct {
	mock.Mock
}

func (m *MockHypothesisStore) LoadAll(ctx context.Context) ([]domain.Hypothesis, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Hypothesis), args.Error(1)
}

func (m *MockHypothesisStore) SaveAll(ctx context.Context, hypotheses []domain.Hypothesis) error {
	args := m.Called(ctx, hypotheses)
	return args.Error(0)
}

func newTestHypothesisService(store domain.HypothesisStore) (*HypothesisService, *HypothesisEngine, *testClock) {
	engine, clock := newTestEngine()
	return NewHypothesisService(engine, store, zap.NewNop()), engine, clock
}

func TestHypothesisService_Load(t *testing.T) {
	ctx := context.Background()
	seeded, _ := newTestEngine()
	seeded.GenerateFromPatterns([]domain.Pattern{solarPattern(), periodPattern("Venus")})

	store := new(MockHypothesisStore)
	store.On("LoadAll", ctx).Return(seeded.GetAll(), nil)

	svc, engine, _ := newTestHypothesisService(store)
	require.NoError(t, svc.Load(ctx))

	assert.Equal(t, seeded.GetAll(), engine.GetAll())
	store.AssertExpectations(t)
}

func TestHypothesisService_LoadError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")

	store := new(MockHypothesisStore)
	store.On("LoadAll", ctx).Return(nil, boom)

	svc, _, _ := newTestHypothesisService(store)
	err := svc.Load(ctx)

	assert.ErrorIs(t, err, boom)
}

func TestHypothesisService_IngestPersists(t *testing.T) {
	ctx := context.Background()
	store := new(MockHypothesisStore)
	store.On("SaveAll", ctx, mock.MatchedBy(func(list []domain.Hypothesis) bool {
		return len(list) == 2
	})).Return(nil).Twice()

	svc, _, _ := newTestHypothesisService(store)

	result, err := svc.Ingest(ctx, []domain.Pattern{solarPattern(), periodPattern("Venus")})
	require.NoError(t, err)
	assert.Len(t, result.Created, 2)
	require.Len(t, result.Projections, 2)
	assert.Equal(t, "Mood rises with geomagnetic activity", result.Projections[0].Statement)
	assert.LessOrEqual(t, result.Projections[0].Projected, MaxInitialConfidence)

	again, err := svc.Ingest(ctx, []domain.Pattern{solarPattern()})
	require.NoError(t, err)
	assert.Empty(t, again.Created)

	store.AssertExpectations(t)
}

func TestHypothesisService_ConfirmAndReject(t *testing.T) {
	ctx := context.Background()
	store := new(MockHypothesisStore)
	store.On("SaveAll", ctx, mock.Anything).Return(nil)

	svc, engine, _ := newTestHypothesisService(store)
	h := engine.GenerateFromPatterns([]domain.Pattern{solarPattern()})[0]

	update, err := svc.Confirm(ctx, h.ID)
	require.NoError(t, err)
	assert.Greater(t, update.NewConfidence, update.PreviousConfidence)

	update, err = svc.Reject(ctx, h.ID)
	require.NoError(t, err)
	assert.Less(t, update.NewConfidence, update.PreviousConfidence)

	_, err = svc.Confirm(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrHypothesisNotFound)

	store.AssertNumberOfCalls(t, "SaveAll", 2)
}

func TestHypothesisService_SaveFailureKeepsUpdate(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")
	store := new(MockHypothesisStore)
	store.On("SaveAll", ctx, mock.Anything).Return(boom)

	svc, engine, _ := newTestHypothesisService(store)
	h := engine.GenerateFromPatterns([]domain.Pattern{solarPattern()})[0]

	update, err := svc.Confirm(ctx, h.ID)
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, update)

	got, err := svc.Get(h.ID)
	require.NoError(t, err)
	assert.Len(t, got.EvidenceRecords, 2)
}

func TestHypothesisService_RecordEvidence(t *testing.T) {
	ctx := context.Background()
	store := new(MockHypothesisStore)
	store.On("SaveAll", ctx, mock.Anything).Return(nil)

	svc, engine, _ := newTestHypothesisService(store)
	engine.GenerateFromPatterns([]domain.Pattern{solarPattern(), periodPattern("Venus"), periodPattern("Mars")})

	updates, err := svc.RecordEvidence(ctx, EvidenceInput{
		EvidenceType: domain.EvidenceJournalEntry,
		Source:       domain.SourceJournal,
		Description:  "great week",
		Planet:       "Venus",
	})
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, "Mood runs higher during Venus periods", updates[0].Statement)

	updates, err = svc.RecordEvidence(ctx, EvidenceInput{
		EvidenceType: domain.EvidenceConversationMention,
		Keywords:     []string{"  GEOMAGNETIC "},
	})
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, "Mood rises with geomagnetic activity", updates[0].Statement)

	updates, err = svc.RecordEvidence(ctx, EvidenceInput{
		EvidenceType: domain.EvidenceMoodLog,
		Category:     "energy",
	})
	require.NoError(t, err)
	assert.Empty(t, updates)

	store.AssertNumberOfCalls(t, "SaveAll", 2)
}

func TestHypothesisService_RecordEvidenceValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestHypothesisService(nil)

	_, err := svc.RecordEvidence(ctx, EvidenceInput{EvidenceType: "HUNCH", Category: "mood"})
	assert.ErrorIs(t, err, ErrUnknownEvidenceType)

	_, err = svc.RecordEvidence(ctx, EvidenceInput{EvidenceType: domain.EvidenceMoodLog})
	assert.ErrorIs(t, err, ErrEvidenceUnscoped)
}

func TestHypothesisService_RecordEvidenceDefaultsSource(t *testing.T) {
	ctx := context.Background()
	svc, engine, _ := newTestHypothesisService(nil)
	h := engine.GenerateFromPatterns([]domain.Pattern{solarPattern()})[0]

	_, err := svc.RecordEvidence(ctx, EvidenceInput{
		EvidenceType:  domain.EvidenceMoodLog,
		HypothesisIDs: []uuid.UUID{h.ID},
	})
	require.NoError(t, err)

	got, err := svc.Get(h.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SourceUnknown, got.EvidenceRecords[1].Source)
	assert.Equal(t, 0.5, got.EvidenceRecords[1].SourceReliability)
}

func TestHypothesisService_List(t *testing.T) {
	ctx := context.Background()
	svc, engine, _ := newTestHypothesisService(nil)
	created := engine.GenerateFromPatterns([]domain.Pattern{solarPattern(), periodPattern("Venus")})
	_, err := svc.Reject(ctx, created[1].ID)
	require.NoError(t, err)

	tests := []struct {
		filter   string
		expected int
	}{
		{"", 2},
		{"all", 2},
		{"active", 1},
		{"confirmed", 0},
		{"REJECTED", 1},
		{"forming", 1},
	}
	for _, tt := range tests {
		list, err := svc.List(tt.filter)
		require.NoError(t, err, tt.filter)
		assert.Len(t, list, tt.expected, tt.filter)
	}

	_, err = svc.List("maybe")
	assert.ErrorIs(t, err, ErrInvalidStatusFilter)
}

func TestHypothesisService_Sweep(t *testing.T) {
	ctx := context.Background()
	store := new(MockHypothesisStore)
	store.On("SaveAll", ctx, mock.Anything).Return(nil).Once()

	svc, engine, clock := newTestHypothesisService(store)
	engine.GenerateFromPatterns([]domain.Pattern{solarPattern()})

	updates, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Empty(t, updates)

	clock.Advance(61)
	updates, err = svc.Sweep(ctx)
	require.NoError(t, err)
	require.Len(t, updates, 1)
	assert.Equal(t, domain.StatusStale, updates[0].NewStatus)

	store.AssertExpectations(t)
}

func TestHypothesisService_GetNotFound(t *testing.T) {
	svc, _, _ := newTestHypothesisService(nil)

	_, err := svc.Get(uuid.New())
	assert.ErrorIs(t, err, ErrHypothesisNotFound)
}
