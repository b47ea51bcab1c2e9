package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

// DeckStore defines the interface for deck data persistence.
type DeckStore interface {
	// Create saves a new deck to the store.
	// Returns validation errors if the deck data is invalid.
	Create(ctx context.Context, deck *domain.Deck) error

	// GetByID retrieves a deck by its unique ID.
	// Returns ErrDeckNotFound if the deck does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error)

	// ListByUser retrieves all decks owned by the given user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Deck, error)

	// WithTx returns a DeckStore bound to the provided transaction.
	// The transaction is created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) DeckStore
}
