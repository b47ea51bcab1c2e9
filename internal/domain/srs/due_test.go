package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

func TestIsDue(t *testing.T) {
	t.Parallel()

	asOf := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := asOf.Add(-time.Hour)
	future := asOf.Add(time.Hour)

	tests := []struct {
		name     string
		progress *domain.CardProgress
		want     bool
	}{
		{name: "nil progress is due", progress: nil, want: true},
		{name: "never scheduled is due", progress: &domain.CardProgress{}, want: true},
		{name: "past next review is due", progress: &domain.CardProgress{NextReviewAt: &past}, want: true},
		{name: "exact next review is due", progress: &domain.CardProgress{NextReviewAt: &asOf}, want: true},
		{name: "future next review is not due", progress: &domain.CardProgress{NextReviewAt: &future}, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, IsDue(tc.progress, asOf))
		})
	}
}

func TestSelectDue(t *testing.T) {
	t.Parallel()

	asOf := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := asOf.Add(-time.Minute)
	future := asOf.Add(time.Minute)

	newCard := func() *domain.Card {
		card, err := domain.NewCard(uuid.New(), "front", "back")
		require.NoError(t, err)
		return card
	}

	dueCard := newCard()
	futureCard := newCard()
	unseenCard := newCard()

	cards := []*domain.Card{dueCard, futureCard, unseenCard}
	progress := map[uuid.UUID]*domain.CardProgress{
		dueCard.ID:    {NextReviewAt: &past},
		futureCard.ID: {NextReviewAt: &future},
	}

	t.Run("selects due and unseen cards", func(t *testing.T) {
		t.Parallel()

		due := SelectDue(cards, progress, asOf, 0)
		assert.Equal(t, []*domain.Card{dueCard, unseenCard}, due)
	})

	t.Run("limit caps selection", func(t *testing.T) {
		t.Parallel()

		due := SelectDue(cards, progress, asOf, 1)
		assert.Equal(t, []*domain.Card{dueCard}, due)
	})

	t.Run("empty input yields empty selection", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, SelectDue(nil, nil, asOf, 10))
	})
}
