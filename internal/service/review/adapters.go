package review

import (
	"context"

	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/prediction"
	"github.com/mnemo-app/mnemo-api/internal/store"
)

// storeStateSource adapts the card, progress, and review stores to the
// prediction.StateSource interface so the batch aggregator can stay ignorant
// of the persistence layer.
type storeStateSource struct {
	cardStore     store.CardStore
	progressStore store.ProgressStore
	reviewStore   store.ReviewStore
}

// Ensure storeStateSource implements the prediction.StateSource interface
var _ prediction.StateSource = (*storeStateSource)(nil)

// NewStateSource creates a prediction.StateSource backed by the stores.
func NewStateSource(
	cardStore store.CardStore,
	progressStore store.ProgressStore,
	reviewStore store.ReviewStore,
) prediction.StateSource {
	if cardStore == nil || progressStore == nil || reviewStore == nil {
		panic("stores cannot be nil")
	}
	return &storeStateSource{
		cardStore:     cardStore,
		progressStore: progressStore,
		reviewStore:   reviewStore,
	}
}

// OwnedCards implements prediction.StateSource.OwnedCards
func (s *storeStateSource) OwnedCards(
	ctx context.Context,
	ownerID uuid.UUID,
	cardIDs []uuid.UUID,
) ([]*domain.Card, error) {
	return s.cardStore.GetOwned(ctx, ownerID, cardIDs)
}

// SchedulingState implements prediction.StateSource.SchedulingState
// Missing progress is normal for never-reviewed cards and surfaces as a nil
// progress rather than an error.
func (s *storeStateSource) SchedulingState(
	ctx context.Context,
	ownerID, cardID uuid.UUID,
) (*domain.CardProgress, []*domain.ReviewEvent, error) {
	progress, err := s.progressStore.Get(ctx, ownerID, cardID)
	if err != nil {
		if !store.IsNotFoundError(err) {
			return nil, nil, err
		}
		progress = nil
	}

	history, err := s.reviewStore.ListRecent(ctx, ownerID, cardID, historyLimit)
	if err != nil {
		return nil, nil, err
	}

	return progress, history, nil
}
