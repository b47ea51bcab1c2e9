package srs

import (
	"time"

	"github.com/google/uuid"
	"github.com/mnemo-app/mnemo-api/internal/domain"
)

// IsDue reports whether a card with the given progress is due at the asOf
// instant. Missing progress (nil) and a nil NextReviewAt both mean the card
// has never been scheduled and is due immediately.
func IsDue(progress *domain.CardProgress, asOf time.Time) bool {
	if progress == nil || progress.NextReviewAt == nil {
		return true
	}
	return !progress.NextReviewAt.After(asOf)
}

// SelectDue filters cards down to those due at the asOf instant, consulting
// each card's progress by ID. The asOf instant is supplied by the caller so
// selection is reproducible regardless of the deployment's local clock.
//
// A limit greater than zero caps the result size. No ordering beyond the
// input order is guaranteed.
func SelectDue(
	cards []*domain.Card,
	progress map[uuid.UUID]*domain.CardProgress,
	asOf time.Time,
	limit int,
) []*domain.Card {
	due := make([]*domain.Card, 0, len(cards))
	for _, card := range cards {
		if !IsDue(progress[card.ID], asOf) {
			continue
		}
		due = append(due, card)
		if limit > 0 && len(due) >= limit {
			break
		}
	}
	return due
}
