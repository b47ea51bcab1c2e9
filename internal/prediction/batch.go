package prediction

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

// DefaultBatchConcurrency bounds parallel oracle fan-out for a batch request.
const DefaultBatchConcurrency = 8

// Risk band thresholds on forgetting probability, in percent.
const (
	highRiskThreshold   = 70.0
	mediumRiskThreshold = 40.0
)

// StateSource supplies the per-card scheduling state the aggregator needs.
// OwnedCards filters the requested IDs down to cards the owner may see;
// unknown and foreign IDs are silently dropped, never errors.
type StateSource interface {
	OwnedCards(ctx context.Context, ownerID uuid.UUID, cardIDs []uuid.UUID) ([]*domain.Card, error)
	SchedulingState(ctx context.Context, ownerID, cardID uuid.UUID) (*domain.CardProgress, []*domain.ReviewEvent, error)
}

// BatchResult pairs the per-card predictions with the aggregate risk view.
type BatchResult struct {
	Predictions map[uuid.UUID]*domain.Prediction
	Stats       domain.DeckRiskStats
}

// Aggregator fans a Predictor out over many cards concurrently and reduces
// the results into deck-level risk statistics.
type Aggregator struct {
	predictor   *Predictor
	source      StateSource
	concurrency int
}

// NewAggregator creates an Aggregator. Concurrency values below one fall back
// to DefaultBatchConcurrency.
func NewAggregator(predictor *Predictor, source StateSource, concurrency int) *Aggregator {
	if predictor == nil {
		panic("predictor cannot be nil")
	}
	if source == nil {
		panic("state source cannot be nil")
	}
	if concurrency < 1 {
		concurrency = DefaultBatchConcurrency
	}

	return &Aggregator{
		predictor:   predictor,
		source:      source,
		concurrency: concurrency,
	}
}

// PredictBatch computes predictions for every requested card the owner can
// see and aggregates them into risk statistics. Cards the owner does not own
// are excluded before any prediction work happens, so the stats never leak
// another user's cards.
//
// Individual predictions cannot fail; only state loading can, and a single
// card's load failure aborts the batch rather than returning partial stats.
func (a *Aggregator) PredictBatch(
	ctx context.Context,
	ownerID uuid.UUID,
	cardIDs []uuid.UUID,
) (*BatchResult, error) {
	cards, err := a.source.OwnedCards(ctx, ownerID, cardIDs)
	if err != nil {
		return nil, fmt.Errorf("resolving owned cards: %w", err)
	}

	predictions := make(map[uuid.UUID]*domain.Prediction, len(cards))
	var mu sync.Mutex

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for _, card := range cards {
		g.Go(func() error {
			progress, history, err := a.source.SchedulingState(groupCtx, ownerID, card.ID)
			if err != nil {
				return fmt.Errorf("loading scheduling state for card %s: %w", card.ID, err)
			}

			prediction := a.predictor.Predict(groupCtx, card, progress, history)

			mu.Lock()
			predictions[card.ID] = prediction
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &BatchResult{
		Predictions: predictions,
		Stats:       ComputeRiskStats(predictions),
	}, nil
}

// ComputeRiskStats buckets predictions into risk bands and averages the
// forgetting probability. Probability above 70 is high risk, 40 to 70
// inclusive is medium, below 40 is low. The average is rounded to one
// decimal place; an empty input yields all zeros rather than NaN.
func ComputeRiskStats(predictions map[uuid.UUID]*domain.Prediction) domain.DeckRiskStats {
	stats := domain.DeckRiskStats{TotalCards: len(predictions)}
	if stats.TotalCards == 0 {
		return stats
	}

	var sum float64
	for _, p := range predictions {
		sum += p.ForgettingProbability
		switch {
		case p.ForgettingProbability > highRiskThreshold:
			stats.HighRiskCards++
		case p.ForgettingProbability >= mediumRiskThreshold:
			stats.MediumRiskCards++
		default:
			stats.LowRiskCards++
		}
	}

	stats.AverageForgettingProbability = math.Round(sum/float64(stats.TotalCards)*10) / 10
	return stats
}
