package prediction

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

// fakeOracle scripts oracle responses and counts calls.
type fakeOracle struct {
	mu      sync.Mutex
	calls   int
	payload *OraclePayload
	err     error
	lastReq OracleRequest
}

func (f *fakeOracle) PredictForgetting(ctx context.Context, req OracleRequest) (*OraclePayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

func (f *fakeOracle) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func floatPtr(v float64) *float64 { return &v }

func newTestCard(t *testing.T) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(uuid.New(), "la manzana", "the apple")
	require.NoError(t, err)
	return card
}

func newTestProgress(t *testing.T, card *domain.Card) *domain.CardProgress {
	t.Helper()
	progress, err := domain.NewCardProgress(uuid.New(), card.ID)
	require.NoError(t, err)
	return progress
}

func TestPredictOracleResultIsNormalized(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{payload: &OraclePayload{
		ForgettingProbability: floatPtr(65),
		RecommendedInterval:   floatPtr(4),
		Difficulty:            "Hard",
		Confidence:            floatPtr(85),
		Reasoning:             "low easiness and recent lapses",
	}}
	predictor := NewPredictor(oracle, NewMemoryCache(), Config{}, nil)

	card := newTestCard(t)
	pred := predictor.Predict(context.Background(), card, newTestProgress(t, card), nil)

	assert.Equal(t, card.ID, pred.CardID)
	assert.Equal(t, 65.0, pred.ForgettingProbability)
	assert.Equal(t, 4.0, pred.RecommendedInterval)
	assert.Equal(t, domain.DifficultyHard, pred.Difficulty)
	assert.Equal(t, 85.0, pred.Confidence)
	assert.True(t, pred.AIPowered)
}

func TestPredictClampsOutOfRangeOracleValues(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{payload: &OraclePayload{
		ForgettingProbability: floatPtr(250),
		RecommendedInterval:   floatPtr(99999),
		Difficulty:            "Impossible",
		Confidence:            floatPtr(-10),
	}}
	predictor := NewPredictor(oracle, NewMemoryCache(), Config{}, nil)

	card := newTestCard(t)
	pred := predictor.Predict(context.Background(), card, newTestProgress(t, card), nil)

	assert.Equal(t, 100.0, pred.ForgettingProbability)
	assert.Equal(t, 180.0, pred.RecommendedInterval)
	assert.Equal(t, domain.DifficultyMedium, pred.Difficulty)
	assert.Equal(t, 0.0, pred.Confidence)
}

func TestPredictCacheHitSkipsOracle(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{payload: &OraclePayload{ForgettingProbability: floatPtr(40)}}
	predictor := NewPredictor(oracle, NewMemoryCache(), Config{}, nil)

	card := newTestCard(t)
	progress := newTestProgress(t, card)

	first := predictor.Predict(context.Background(), card, progress, nil)
	second := predictor.Predict(context.Background(), card, progress, nil)

	assert.Same(t, first, second)
	assert.Equal(t, 1, oracle.callCount())
}

func TestPredictVersionChangeInvalidatesCache(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{payload: &OraclePayload{ForgettingProbability: floatPtr(40)}}
	predictor := NewPredictor(oracle, NewMemoryCache(), Config{}, nil)

	card := newTestCard(t)
	progress := newTestProgress(t, card)

	predictor.Predict(context.Background(), card, progress, nil)

	// A scheduling mutation moves UpdatedAt, which moves the version marker.
	moved := *progress
	moved.UpdatedAt = moved.UpdatedAt.Add(time.Second)
	predictor.Predict(context.Background(), card, &moved, nil)

	assert.Equal(t, 2, oracle.callCount())
}

func TestPredictFallbackOnOracleFailure(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{err: ErrOracleUnavailable}
	predictor := NewPredictor(oracle, NewMemoryCache(), Config{}, nil)

	card := newTestCard(t)
	progress := newTestProgress(t, card)
	progress.Easiness = 2.5
	progress.Repetition = 2
	progress.Interval = 6

	pred := predictor.Predict(context.Background(), card, progress, nil)

	// 100 - ((2.5-1.3)/1.2)*50 - 2*5 = 40
	assert.Equal(t, 40.0, pred.ForgettingProbability)
	assert.Equal(t, 6.0, pred.RecommendedInterval)
	assert.Equal(t, domain.DifficultyEasy, pred.Difficulty)
	assert.Equal(t, 60.0, pred.Confidence)
	assert.False(t, pred.AIPowered)
	assert.NotEmpty(t, pred.Reasoning)
}

func TestPredictFallbackStaysWithinBounds(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{err: ErrOracleUnavailable}
	predictor := NewPredictor(oracle, NewMemoryCache(), Config{}, nil)
	card := newTestCard(t)

	t.Run("floor at 10", func(t *testing.T) {
		t.Parallel()

		progress := newTestProgress(t, card)
		progress.Easiness = 2.5
		progress.Repetition = 50

		pred := predictor.Predict(context.Background(), card, progress, nil)
		assert.Equal(t, 10.0, pred.ForgettingProbability)
	})

	t.Run("ceiling at 90", func(t *testing.T) {
		t.Parallel()

		progress := newTestProgress(t, card)
		progress.Easiness = 1.3
		progress.Repetition = 0
		progress.UpdatedAt = progress.UpdatedAt.Add(time.Second)

		pred := predictor.Predict(context.Background(), card, progress, nil)
		assert.Equal(t, 90.0, pred.ForgettingProbability)
		assert.Equal(t, domain.DifficultyHard, pred.Difficulty)
	})
}

func TestPredictFallbackIsCached(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{err: ErrOracleUnavailable}
	predictor := NewPredictor(oracle, NewMemoryCache(), Config{}, nil)

	card := newTestCard(t)
	progress := newTestProgress(t, card)

	predictor.Predict(context.Background(), card, progress, nil)
	predictor.Predict(context.Background(), card, progress, nil)

	// The fallback result is cached for the TTL too; an unreachable oracle
	// must not be hammered on every request.
	assert.Equal(t, 1, oracle.callCount())
}

func TestPredictNilProgressUsesDefaults(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{err: ErrOracleUnavailable}
	predictor := NewPredictor(oracle, NewMemoryCache(), Config{}, nil)
	card := newTestCard(t)

	pred := predictor.Predict(context.Background(), card, nil, nil)

	// 100 - ((2.5-1.3)/1.2)*50 - 0 = 50 with default scheduling values.
	assert.Equal(t, 50.0, pred.ForgettingProbability)
	assert.Equal(t, domain.DefaultInterval, pred.RecommendedInterval)
	assert.Equal(t, domain.DefaultEasiness, oracle.lastReq.Easiness)
	assert.Equal(t, 0, oracle.lastReq.Repetition)
}

func TestPredictSendsSchedulingSignalsToOracle(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{payload: &OraclePayload{}}
	predictor := NewPredictor(oracle, NewMemoryCache(), Config{}, nil)

	card := newTestCard(t)
	progress := newTestProgress(t, card)
	progress.Easiness = 1.9
	progress.Repetition = 4
	progress.Interval = 12

	event, err := domain.NewReviewEvent(progress.UserID, card.ID, 3, time.Now())
	require.NoError(t, err)

	predictor.Predict(context.Background(), card, progress, []*domain.ReviewEvent{event})

	assert.Equal(t, card.Front, oracle.lastReq.CardFront)
	assert.Equal(t, 1.9, oracle.lastReq.Easiness)
	assert.Equal(t, 4, oracle.lastReq.Repetition)
	assert.Equal(t, 12.0, oracle.lastReq.IntervalDays)
	assert.Contains(t, oracle.lastReq.History, "Quality 3/5")
}
