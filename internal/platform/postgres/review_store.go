package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/platform/logger"
	"github.com/mnemo-app/mnemo-api/internal/store"
)

// PostgresReviewStore implements the store.ReviewStore interface
// using a PostgreSQL database as the storage backend.
type PostgresReviewStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewStore creates a new PostgreSQL implementation of the ReviewStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresReviewStore(db store.DBTX, logger *slog.Logger) *PostgresReviewStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_store")),
	}
}

// Ensure PostgresReviewStore implements store.ReviewStore interface
var _ store.ReviewStore = (*PostgresReviewStore)(nil)

// Append implements store.ReviewStore.Append
// Review events are immutable; there is no update path.
func (s *PostgresReviewStore) Append(ctx context.Context, event *domain.ReviewEvent) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := event.Validate(); err != nil {
		log.Warn("review event validation failed during append",
			slog.String("error", err.Error()),
			slog.String("card_id", event.CardID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO review_events (id, user_id, card_id, quality, reviewed_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		event.ID,
		event.UserID,
		event.CardID,
		event.Quality,
		event.ReviewedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: card %s or user %s not found",
				store.ErrInvalidEntity, event.CardID, event.UserID)
		}

		log.Error("failed to append review event",
			slog.String("error", err.Error()),
			slog.String("card_id", event.CardID.String()),
			slog.String("user_id", event.UserID.String()))
		return err
	}

	log.Info("review event appended",
		slog.String("event_id", event.ID.String()),
		slog.String("card_id", event.CardID.String()),
		slog.Int("quality", event.Quality))
	return nil
}

// ListRecent implements store.ReviewStore.ListRecent
// Returns an empty slice if the card has no review history.
func (s *PostgresReviewStore) ListRecent(
	ctx context.Context,
	userID, cardID uuid.UUID,
	limit int,
) ([]*domain.ReviewEvent, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, user_id, card_id, quality, reviewed_at
		FROM review_events
		WHERE user_id = $1 AND card_id = $2
		ORDER BY reviewed_at DESC
		LIMIT $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, cardID, limit)
	if err != nil {
		log.Error("failed to query review events",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	events := []*domain.ReviewEvent{}
	for rows.Next() {
		var event domain.ReviewEvent
		err := rows.Scan(
			&event.ID,
			&event.UserID,
			&event.CardID,
			&event.Quality,
			&event.ReviewedAt,
		)
		if err != nil {
			log.Error("failed to scan review event row",
				slog.String("error", err.Error()))
			return nil, err
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return events, nil
}

// WithTx implements store.ReviewStore.WithTx
// It returns a new ReviewStore bound to the given transaction.
func (s *PostgresReviewStore) WithTx(tx *sql.Tx) store.ReviewStore {
	return &PostgresReviewStore{
		db:     tx,
		logger: s.logger,
	}
}
