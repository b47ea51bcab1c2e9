package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

// ProgressStore defines the interface for per-user card scheduling state.
// There is at most one progress row per (user, card) pair; it is the single
// writable scheduling record, while review events are append-only history.
type ProgressStore interface {
	// Get retrieves the progress for a user's card.
	// Returns ErrProgressNotFound if the card has never been reviewed.
	Get(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardProgress, error)

	// GetForUpdate retrieves the progress for a user's card and, when run
	// inside a transaction, row-locks it so concurrent reviews of the same
	// card serialize. Returns ErrProgressNotFound if no row exists.
	GetForUpdate(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardProgress, error)

	// Create inserts the initial progress row for a card.
	// Returns ErrDuplicate if the (user, card) pair already has progress.
	Create(ctx context.Context, progress *domain.CardProgress) error

	// Update persists new scheduling state, conditioned on the version
	// marker observed at read time. Returns ErrEditConflict if the stored
	// version no longer matches expectedVersion.
	Update(ctx context.Context, progress *domain.CardProgress, expectedVersion int64) error

	// ListByUserAndDeck retrieves all progress rows for a user's cards in a
	// deck, keyed by card ID.
	ListByUserAndDeck(ctx context.Context, userID, deckID uuid.UUID) (map[uuid.UUID]*domain.CardProgress, error)

	// WithTx returns a ProgressStore bound to the provided transaction.
	WithTx(tx *sql.Tx) ProgressStore
}
