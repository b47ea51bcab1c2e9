package prediction

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

func TestFormatHistory(t *testing.T) {
	t.Parallel()

	t.Run("empty history is stated explicitly", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "No review history available.", FormatHistory(nil, 10))
	})

	t.Run("events render one line each", func(t *testing.T) {
		t.Parallel()

		reviewedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		event, err := domain.NewReviewEvent(uuid.New(), uuid.New(), 5, reviewedAt)
		require.NoError(t, err)

		got := FormatHistory([]*domain.ReviewEvent{event}, 10)
		assert.Equal(t, "- 2025-06-01T12:00:00Z: Quality 5/5 (Perfect recall)", got)
	})

	t.Run("limit truncates", func(t *testing.T) {
		t.Parallel()

		events := make([]*domain.ReviewEvent, 5)
		for i := range events {
			event, err := domain.NewReviewEvent(uuid.New(), uuid.New(), i, time.Now())
			require.NoError(t, err)
			events[i] = event
		}

		got := FormatHistory(events, 2)
		assert.Len(t, strings.Split(got, "\n"), 2)
	})
}
