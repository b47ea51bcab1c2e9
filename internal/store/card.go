package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// Create saves a new card to the store.
	// Returns validation errors if the card data is invalid.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// ListByDeck retrieves all cards in a deck, oldest first.
	ListByDeck(ctx context.Context, deckID uuid.UUID) ([]*domain.Card, error)

	// GetOwned resolves the given card IDs to cards whose deck belongs to
	// ownerID. IDs that do not exist or belong to another user are silently
	// omitted from the result; the method never errors on them.
	GetOwned(ctx context.Context, ownerID uuid.UUID, cardIDs []uuid.UUID) ([]*domain.Card, error)

	// WithTx returns a CardStore bound to the provided transaction.
	WithTx(tx *sql.Tx) CardStore
}
