package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

// ReviewStore defines the interface for the append-only review history.
// Events are never updated or deleted; corrections happen by appending.
type ReviewStore interface {
	// Append saves a new review event.
	// Returns validation errors if the event data is invalid.
	Append(ctx context.Context, event *domain.ReviewEvent) error

	// ListRecent retrieves up to limit review events for a user's card,
	// most recent first.
	ListRecent(ctx context.Context, userID, cardID uuid.UUID, limit int) ([]*domain.ReviewEvent, error)

	// WithTx returns a ReviewStore bound to the provided transaction.
	WithTx(tx *sql.Tx) ReviewStore
}
