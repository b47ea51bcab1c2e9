package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/platform/logger"
	"github.com/mnemo-app/mnemo-api/internal/store"
)

// PostgresProgressStore implements the store.ProgressStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgressStore creates a new PostgreSQL implementation of the ProgressStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// Ensure PostgresProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*PostgresProgressStore)(nil)

const progressColumns = `
	user_id, card_id, easiness, repetition, interval_days,
	last_reviewed_at, next_review_at, review_count, created_at, updated_at`

// Get implements store.ProgressStore.Get
// Returns store.ErrProgressNotFound if the card has never been reviewed.
func (s *PostgresProgressStore) Get(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardProgress, error) {
	query := `SELECT` + progressColumns + `
		FROM card_progress
		WHERE user_id = $1 AND card_id = $2`
	return s.getOne(ctx, query, userID, cardID)
}

// GetForUpdate implements store.ProgressStore.GetForUpdate
// When run inside a transaction this row-locks the progress so concurrent
// reviews of the same card serialize on the database.
func (s *PostgresProgressStore) GetForUpdate(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardProgress, error) {
	query := `SELECT` + progressColumns + `
		FROM card_progress
		WHERE user_id = $1 AND card_id = $2
		FOR UPDATE`
	return s.getOne(ctx, query, userID, cardID)
}

func (s *PostgresProgressStore) getOne(
	ctx context.Context,
	query string,
	userID, cardID uuid.UUID,
) (*domain.CardProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var progress domain.CardProgress
	var lastReviewedAt sql.NullTime
	var nextReviewAt sql.NullTime

	err := s.db.QueryRowContext(ctx, query, userID, cardID).Scan(
		&progress.UserID,
		&progress.CardID,
		&progress.Easiness,
		&progress.Repetition,
		&progress.Interval,
		&lastReviewedAt,
		&nextReviewAt,
		&progress.ReviewCount,
		&progress.CreatedAt,
		&progress.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card progress not found",
				slog.String("user_id", userID.String()),
				slog.String("card_id", cardID.String()))
			return nil, store.ErrProgressNotFound
		}
		log.Error("failed to get card progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return nil, err
	}

	if lastReviewedAt.Valid {
		progress.LastReviewedAt = lastReviewedAt.Time
	}
	if nextReviewAt.Valid {
		t := nextReviewAt.Time
		progress.NextReviewAt = &t
	}

	return &progress, nil
}

// Create implements store.ProgressStore.Create
// Returns store.ErrDuplicate if the (user, card) pair already has progress.
func (s *PostgresProgressStore) Create(ctx context.Context, progress *domain.CardProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		log.Warn("progress validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", progress.CardID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO card_progress (` + progressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		progress.UserID,
		progress.CardID,
		progress.Easiness,
		progress.Repetition,
		progress.Interval,
		nullableTime(progress.LastReviewedAt),
		progress.NextReviewAt,
		progress.ReviewCount,
		progress.CreatedAt,
		progress.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			log.Warn("progress already exists",
				slog.String("user_id", progress.UserID.String()),
				slog.String("card_id", progress.CardID.String()))
			return fmt.Errorf("%w: progress for card %s", store.ErrDuplicate, progress.CardID)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: card %s or user %s not found",
				store.ErrInvalidEntity, progress.CardID, progress.UserID)
		}

		log.Error("failed to create card progress",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()),
			slog.String("card_id", progress.CardID.String()))
		return err
	}

	log.Info("card progress created",
		slog.String("user_id", progress.UserID.String()),
		slog.String("card_id", progress.CardID.String()))
	return nil
}

// Update implements store.ProgressStore.Update
// The update is conditioned on the version marker observed at read time.
// Returns store.ErrEditConflict if the stored version has moved, and
// store.ErrProgressNotFound if no row exists at all.
func (s *PostgresProgressStore) Update(
	ctx context.Context,
	progress *domain.CardProgress,
	expectedVersion int64,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		log.Warn("progress validation failed during update",
			slog.String("error", err.Error()),
			slog.String("card_id", progress.CardID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE card_progress
		SET easiness = $1, repetition = $2, interval_days = $3,
			last_reviewed_at = $4, next_review_at = $5, review_count = $6,
			updated_at = $7
		WHERE user_id = $8 AND card_id = $9 AND updated_at = $10
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		progress.Easiness,
		progress.Repetition,
		progress.Interval,
		nullableTime(progress.LastReviewedAt),
		progress.NextReviewAt,
		progress.ReviewCount,
		progress.UpdatedAt,
		progress.UserID,
		progress.CardID,
		time.UnixMicro(expectedVersion).UTC(),
	)

	if err != nil {
		log.Error("failed to update card progress",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()),
			slog.String("card_id", progress.CardID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("card_id", progress.CardID.String()))
		return err
	}

	// Zero rows means the row is gone or its version moved; distinguish
	// the two so callers can retry conflicts but surface missing state.
	if rowsAffected == 0 {
		_, getErr := s.Get(ctx, progress.UserID, progress.CardID)
		if errors.Is(getErr, store.ErrProgressNotFound) {
			return store.ErrProgressNotFound
		}
		log.Debug("card progress version conflict",
			slog.String("user_id", progress.UserID.String()),
			slog.String("card_id", progress.CardID.String()),
			slog.Int64("expected_version", expectedVersion))
		return store.ErrEditConflict
	}

	log.Info("card progress updated",
		slog.String("user_id", progress.UserID.String()),
		slog.String("card_id", progress.CardID.String()),
		slog.Int("repetition", progress.Repetition))
	return nil
}

// ListByUserAndDeck implements store.ProgressStore.ListByUserAndDeck
// Returns an empty map if the user has no progress in the deck.
func (s *PostgresProgressStore) ListByUserAndDeck(
	ctx context.Context,
	userID, deckID uuid.UUID,
) (map[uuid.UUID]*domain.CardProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT p.user_id, p.card_id, p.easiness, p.repetition, p.interval_days,
			p.last_reviewed_at, p.next_review_at, p.review_count, p.created_at, p.updated_at
		FROM card_progress p
		JOIN cards c ON c.id = p.card_id
		WHERE p.user_id = $1 AND c.deck_id = $2
	`

	rows, err := s.db.QueryContext(ctx, query, userID, deckID)
	if err != nil {
		log.Error("failed to query progress by deck",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("deck_id", deckID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	byCard := make(map[uuid.UUID]*domain.CardProgress)
	for rows.Next() {
		var progress domain.CardProgress
		var lastReviewedAt sql.NullTime
		var nextReviewAt sql.NullTime

		err := rows.Scan(
			&progress.UserID,
			&progress.CardID,
			&progress.Easiness,
			&progress.Repetition,
			&progress.Interval,
			&lastReviewedAt,
			&nextReviewAt,
			&progress.ReviewCount,
			&progress.CreatedAt,
			&progress.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan progress row",
				slog.String("error", err.Error()))
			return nil, err
		}

		if lastReviewedAt.Valid {
			progress.LastReviewedAt = lastReviewedAt.Time
		}
		if nextReviewAt.Valid {
			t := nextReviewAt.Time
			progress.NextReviewAt = &t
		}

		byCard[progress.CardID] = &progress
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return byCard, nil
}

// WithTx implements store.ProgressStore.WithTx
// It returns a new ProgressStore bound to the given transaction.
func (s *PostgresProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return &PostgresProgressStore{
		db:     tx,
		logger: s.logger,
	}
}

// nullableTime maps the zero time to NULL so "never reviewed" round-trips.
func nullableTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
