package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/domain/srs"
	"github.com/mnemo-app/mnemo-api/internal/platform/logger"
	"github.com/mnemo-app/mnemo-api/internal/prediction"
	"github.com/mnemo-app/mnemo-api/internal/store"
)

// historyLimit is how many recent reviews are loaded for the predictor.
const historyLimit = 10

// reviewService is the standard implementation of ReviewService.
type reviewService struct {
	db            *sql.DB
	deckStore     store.DeckStore
	cardStore     store.CardStore
	progressStore store.ProgressStore
	reviewStore   store.ReviewStore
	scheduler     srs.Service
	predictor     *prediction.Predictor
	aggregator    *prediction.Aggregator
	logger        *slog.Logger

	// Injectable for tests.
	runInTx func(ctx context.Context, db *sql.DB, fn store.TxFn) error
	now     func() time.Time
}

// Ensure reviewService implements the ReviewService interface
var _ ReviewService = (*reviewService)(nil)

// NewReviewService creates the standard review service. All dependencies are
// required; a nil logger falls back to the default.
func NewReviewService(
	db *sql.DB,
	deckStore store.DeckStore,
	cardStore store.CardStore,
	progressStore store.ProgressStore,
	reviewStore store.ReviewStore,
	scheduler srs.Service,
	predictor *prediction.Predictor,
	aggregator *prediction.Aggregator,
	log *slog.Logger,
) ReviewService {
	if db == nil {
		panic("db cannot be nil")
	}
	if deckStore == nil || cardStore == nil || progressStore == nil || reviewStore == nil {
		panic("stores cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if predictor == nil || aggregator == nil {
		panic("predictor and aggregator cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &reviewService{
		db:            db,
		deckStore:     deckStore,
		cardStore:     cardStore,
		progressStore: progressStore,
		reviewStore:   reviewStore,
		scheduler:     scheduler,
		predictor:     predictor,
		aggregator:    aggregator,
		logger:        log.With(slog.String("component", "review_service")),
		runInTx:       store.RunInTransaction,
		now:           time.Now,
	}
}

// RecordReview implements ReviewService.RecordReview
func (s *reviewService) RecordReview(
	ctx context.Context,
	userID, cardID uuid.UUID,
	quality int,
) (*domain.CardProgress, error) {
	return s.recordReview(ctx, userID, cardID, quality, nil)
}

// RecordReviewWithInsights implements ReviewService.RecordReviewWithInsights
// The prediction is computed against the pre-review state, outside the
// transaction, so a slow oracle never extends the write's lock window.
func (s *reviewService) RecordReviewWithInsights(
	ctx context.Context,
	userID, cardID uuid.UUID,
	quality int,
) (*ReviewInsights, error) {
	if !domain.ValidQuality(quality) {
		return nil, ErrInvalidQuality
	}

	card, err := s.ownedCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	pred := s.predictCurrent(ctx, userID, card)

	progress, err := s.recordReview(ctx, userID, cardID, quality, &pred.RecommendedInterval)
	if err != nil {
		return nil, err
	}

	return &ReviewInsights{Progress: progress, Prediction: pred}, nil
}

// recordReview runs the transactional core shared by both review paths.
// A non-nil recommended interval selects the blended scheduling update.
func (s *reviewService) recordReview(
	ctx context.Context,
	userID, cardID uuid.UUID,
	quality int,
	recommended *float64,
) (*domain.CardProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !domain.ValidQuality(quality) {
		return nil, ErrInvalidQuality
	}

	if _, err := s.ownedCard(ctx, userID, cardID); err != nil {
		return nil, err
	}

	now := s.now()
	var updated *domain.CardProgress

	err := s.runInTx(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		progressStore := s.progressStore.WithTx(tx)
		reviewStore := s.reviewStore.WithTx(tx)

		current, err := progressStore.GetForUpdate(ctx, userID, cardID)
		isFirstReview := errors.Is(err, store.ErrProgressNotFound)
		if err != nil && !isFirstReview {
			return fmt.Errorf("loading progress: %w", err)
		}

		if isFirstReview {
			current, err = domain.NewCardProgress(userID, cardID)
			if err != nil {
				return fmt.Errorf("creating progress: %w", err)
			}
		}

		expectedVersion := current.VersionMarker()

		updated, err = s.advance(current, quality, recommended, now)
		if err != nil {
			return err
		}

		if isFirstReview {
			updated.CreatedAt = current.CreatedAt
			if err := progressStore.Create(ctx, updated); err != nil {
				return fmt.Errorf("persisting progress: %w", err)
			}
		} else {
			if err := progressStore.Update(ctx, updated, expectedVersion); err != nil {
				return fmt.Errorf("persisting progress: %w", err)
			}
		}

		event, err := domain.NewReviewEvent(userID, cardID, quality, now)
		if err != nil {
			return fmt.Errorf("creating review event: %w", err)
		}
		if err := reviewStore.Append(ctx, event); err != nil {
			return fmt.Errorf("appending review event: %w", err)
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, store.ErrEditConflict) || errors.Is(err, store.ErrDuplicate) {
			log.Warn("concurrent review conflict",
				slog.String("user_id", userID.String()),
				slog.String("card_id", cardID.String()))
			return nil, ErrReviewConflict
		}
		return nil, err
	}

	log.Info("review recorded",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.Int("quality", quality),
		slog.Float64("interval_days", updated.Interval))
	return updated, nil
}

// advance dispatches to the plain or blended scheduling update.
func (s *reviewService) advance(
	progress *domain.CardProgress,
	quality int,
	recommended *float64,
	now time.Time,
) (*domain.CardProgress, error) {
	if recommended == nil {
		return s.scheduler.AdvanceProgress(progress, quality, now)
	}
	return s.scheduler.AdvanceProgressBlended(progress, quality, *recommended, now)
}

// DueCards implements ReviewService.DueCards
func (s *reviewService) DueCards(
	ctx context.Context,
	userID, deckID uuid.UUID,
	asOf time.Time,
	limit int,
) ([]*domain.Card, error) {
	deck, err := s.deckStore.GetByID(ctx, deckID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrDeckNotFound
		}
		return nil, err
	}
	if deck.UserID != userID {
		return nil, ErrNotOwned
	}

	cards, err := s.cardStore.ListByDeck(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("listing cards: %w", err)
	}

	progress, err := s.progressStore.ListByUserAndDeck(ctx, userID, deckID)
	if err != nil {
		return nil, fmt.Errorf("listing progress: %w", err)
	}

	if limit <= 0 {
		limit = DefaultDueLimit
	}

	return srs.SelectDue(cards, progress, asOf, limit), nil
}

// Predict implements ReviewService.Predict
func (s *reviewService) Predict(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.Prediction, error) {
	card, err := s.ownedCard(ctx, userID, cardID)
	if err != nil {
		return nil, err
	}

	return s.predictCurrent(ctx, userID, card), nil
}

// PredictBatch implements ReviewService.PredictBatch
func (s *reviewService) PredictBatch(
	ctx context.Context,
	userID uuid.UUID,
	cardIDs []uuid.UUID,
) (*prediction.BatchResult, error) {
	return s.aggregator.PredictBatch(ctx, userID, cardIDs)
}

// predictCurrent loads the card's current scheduling state and history and
// asks the predictor for an estimate. State-loading failures degrade to a
// prediction over default state; the predictor itself never fails.
func (s *reviewService) predictCurrent(
	ctx context.Context,
	userID uuid.UUID,
	card *domain.Card,
) *domain.Prediction {
	log := logger.FromContextOrDefault(ctx, s.logger)

	progress, err := s.progressStore.Get(ctx, userID, card.ID)
	if err != nil && !store.IsNotFoundError(err) {
		log.Warn("failed to load progress for prediction, assuming defaults",
			slog.String("card_id", card.ID.String()),
			slog.String("error", err.Error()))
		progress = nil
	}

	history, err := s.reviewStore.ListRecent(ctx, userID, card.ID, historyLimit)
	if err != nil {
		log.Warn("failed to load review history for prediction",
			slog.String("card_id", card.ID.String()),
			slog.String("error", err.Error()))
		history = nil
	}

	return s.predictor.Predict(ctx, card, progress, history)
}

// ownedCard loads a card and verifies the user owns it through its deck.
func (s *reviewService) ownedCard(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.Card, error) {
	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}

	deck, err := s.deckStore.GetByID(ctx, card.DeckID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}

	if deck.UserID != userID {
		return nil, ErrNotOwned
	}

	return card, nil
}
