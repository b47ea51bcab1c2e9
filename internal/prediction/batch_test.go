package prediction

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

// fakeStateSource serves a fixed ownership set with empty scheduling state.
type fakeStateSource struct {
	owned    map[uuid.UUID]*domain.Card
	stateErr error
}

func (f *fakeStateSource) OwnedCards(
	ctx context.Context,
	ownerID uuid.UUID,
	cardIDs []uuid.UUID,
) ([]*domain.Card, error) {
	var cards []*domain.Card
	for _, id := range cardIDs {
		if card, ok := f.owned[id]; ok {
			cards = append(cards, card)
		}
	}
	return cards, nil
}

func (f *fakeStateSource) SchedulingState(
	ctx context.Context,
	ownerID, cardID uuid.UUID,
) (*domain.CardProgress, []*domain.ReviewEvent, error) {
	if f.stateErr != nil {
		return nil, nil, f.stateErr
	}
	return nil, nil, nil
}

func TestPredictBatchFiltersOwnership(t *testing.T) {
	t.Parallel()

	ownedCard := newTestCard(t)
	source := &fakeStateSource{owned: map[uuid.UUID]*domain.Card{ownedCard.ID: ownedCard}}

	oracle := &fakeOracle{payload: &OraclePayload{ForgettingProbability: floatPtr(50)}}
	predictor := NewPredictor(oracle, NewMemoryCache(), Config{}, nil)
	aggregator := NewAggregator(predictor, source, 4)

	foreignID := uuid.New()
	result, err := aggregator.PredictBatch(
		context.Background(),
		uuid.New(),
		[]uuid.UUID{ownedCard.ID, foreignID},
	)
	require.NoError(t, err)

	assert.Len(t, result.Predictions, 1)
	assert.Contains(t, result.Predictions, ownedCard.ID)
	assert.NotContains(t, result.Predictions, foreignID)
	assert.Equal(t, 1, result.Stats.TotalCards)
}

func TestPredictBatchEmptySelection(t *testing.T) {
	t.Parallel()

	source := &fakeStateSource{owned: map[uuid.UUID]*domain.Card{}}
	oracle := &fakeOracle{payload: &OraclePayload{}}
	predictor := NewPredictor(oracle, NewMemoryCache(), Config{}, nil)
	aggregator := NewAggregator(predictor, source, 4)

	result, err := aggregator.PredictBatch(context.Background(), uuid.New(), []uuid.UUID{uuid.New()})
	require.NoError(t, err)

	assert.Empty(t, result.Predictions)
	assert.Equal(t, domain.DeckRiskStats{}, result.Stats)
	assert.Equal(t, 0, oracle.callCount())
}

func TestPredictBatchStateLoadFailureAbortsBatch(t *testing.T) {
	t.Parallel()

	card := newTestCard(t)
	loadErr := errors.New("connection reset")
	source := &fakeStateSource{
		owned:    map[uuid.UUID]*domain.Card{card.ID: card},
		stateErr: loadErr,
	}

	predictor := NewPredictor(&fakeOracle{payload: &OraclePayload{}}, NewMemoryCache(), Config{}, nil)
	aggregator := NewAggregator(predictor, source, 4)

	_, err := aggregator.PredictBatch(context.Background(), uuid.New(), []uuid.UUID{card.ID})
	assert.ErrorIs(t, err, loadErr)
}

func TestPredictBatchFanOut(t *testing.T) {
	t.Parallel()

	owned := make(map[uuid.UUID]*domain.Card)
	var ids []uuid.UUID
	for i := 0; i < 20; i++ {
		card := newTestCard(t)
		owned[card.ID] = card
		ids = append(ids, card.ID)
	}

	source := &fakeStateSource{owned: owned}
	oracle := &fakeOracle{payload: &OraclePayload{ForgettingProbability: floatPtr(45)}}
	predictor := NewPredictor(oracle, NewMemoryCache(), Config{}, nil)
	aggregator := NewAggregator(predictor, source, 4)

	result, err := aggregator.PredictBatch(context.Background(), uuid.New(), ids)
	require.NoError(t, err)

	assert.Len(t, result.Predictions, 20)
	assert.Equal(t, 20, result.Stats.TotalCards)
	assert.Equal(t, 45.0, result.Stats.AverageForgettingProbability)
}

func TestComputeRiskStats(t *testing.T) {
	t.Parallel()

	predictionWith := func(probability float64) *domain.Prediction {
		return &domain.Prediction{CardID: uuid.New(), ForgettingProbability: probability}
	}

	t.Run("bands split at 40 and 70", func(t *testing.T) {
		t.Parallel()

		predictions := map[uuid.UUID]*domain.Prediction{}
		for _, p := range []float64{90, 70.1, 70, 40, 39.9, 10} {
			pred := predictionWith(p)
			predictions[pred.CardID] = pred
		}

		stats := ComputeRiskStats(predictions)

		assert.Equal(t, 6, stats.TotalCards)
		assert.Equal(t, 2, stats.HighRiskCards)   // 90, 70.1
		assert.Equal(t, 2, stats.MediumRiskCards) // 70, 40
		assert.Equal(t, 2, stats.LowRiskCards)    // 39.9, 10
	})

	t.Run("average rounds to one decimal", func(t *testing.T) {
		t.Parallel()

		predictions := map[uuid.UUID]*domain.Prediction{}
		for _, p := range []float64{33, 33, 34} {
			pred := predictionWith(p)
			predictions[pred.CardID] = pred
		}

		stats := ComputeRiskStats(predictions)
		assert.Equal(t, 33.3, stats.AverageForgettingProbability)
	})

	t.Run("empty input yields zeros", func(t *testing.T) {
		t.Parallel()

		stats := ComputeRiskStats(nil)
		assert.Equal(t, domain.DeckRiskStats{}, stats)
		assert.Equal(t, 0.0, stats.AverageForgettingProbability)
	})
}
