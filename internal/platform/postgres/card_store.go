package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/platform/logger"
	"github.com/mnemo-app/mnemo-api/internal/store"
)

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the CardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// Create implements store.CardStore.Create
// Returns store.ErrInvalidEntity if the deck does not exist (foreign key violation).
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO cards (id, deck_id, front, back, phonetic, example, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		card.ID,
		card.DeckID,
		card.Front,
		card.Back,
		card.Phonetic,
		card.Example,
		card.CreatedAt,
		card.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during card creation",
				slog.String("card_id", card.ID.String()),
				slog.String("deck_id", card.DeckID.String()))
			return fmt.Errorf("%w: deck with ID %s not found",
				store.ErrInvalidEntity, card.DeckID)
		}

		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()),
			slog.String("deck_id", card.DeckID.String()))
		return err
	}

	log.Info("card created successfully",
		slog.String("card_id", card.ID.String()),
		slog.String("deck_id", card.DeckID.String()))
	return nil
}

// GetByID implements store.CardStore.GetByID
// Returns store.ErrCardNotFound if the card does not exist.
func (s *PostgresCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, deck_id, front, back, phonetic, example, created_at, updated_at
		FROM cards
		WHERE id = $1
	`

	var card domain.Card
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&card.ID,
		&card.DeckID,
		&card.Front,
		&card.Back,
		&card.Phonetic,
		&card.Example,
		&card.CreatedAt,
		&card.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found", slog.String("card_id", id.String()))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card by ID",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, err
	}

	return &card, nil
}

// ListByDeck implements store.CardStore.ListByDeck
// Returns an empty slice if the deck has no cards.
func (s *PostgresCardStore) ListByDeck(ctx context.Context, deckID uuid.UUID) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, deck_id, front, back, phonetic, example, created_at, updated_at
		FROM cards
		WHERE deck_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, deckID)
	if err != nil {
		log.Error("failed to query cards by deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	return scanCards(rows, log)
}

// GetOwned implements store.CardStore.GetOwned
// Ownership resolves through the card's deck; IDs that do not exist or belong
// to another user are omitted rather than reported as errors.
func (s *PostgresCardStore) GetOwned(
	ctx context.Context,
	ownerID uuid.UUID,
	cardIDs []uuid.UUID,
) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(cardIDs) == 0 {
		return []*domain.Card{}, nil
	}

	query := `
		SELECT c.id, c.deck_id, c.front, c.back, c.phonetic, c.example, c.created_at, c.updated_at
		FROM cards c
		JOIN decks d ON d.id = c.deck_id
		WHERE d.user_id = $1 AND c.id = ANY($2)
		ORDER BY c.created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID, cardIDs)
	if err != nil {
		log.Error("failed to query owned cards",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()),
			slog.Int("requested", len(cardIDs)))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	cards, err := scanCards(rows, log)
	if err != nil {
		return nil, err
	}

	if len(cards) < len(cardIDs) {
		log.Debug("some requested cards were not owned or not found",
			slog.String("user_id", ownerID.String()),
			slog.Int("requested", len(cardIDs)),
			slog.Int("resolved", len(cards)))
	}

	return cards, nil
}

// WithTx implements store.CardStore.WithTx
// It returns a new CardStore bound to the given transaction.
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}

// scanCards drains a card result set into a slice.
func scanCards(rows *sql.Rows, log *slog.Logger) ([]*domain.Card, error) {
	cards := []*domain.Card{}
	for rows.Next() {
		var card domain.Card
		err := rows.Scan(
			&card.ID,
			&card.DeckID,
			&card.Front,
			&card.Back,
			&card.Phonetic,
			&card.Example,
			&card.CreatedAt,
			&card.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan card row",
				slog.String("error", err.Error()))
			return nil, err
		}
		cards = append(cards, &card)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return cards, nil
}
