package prediction

import (
	"fmt"
	"strings"
	"time"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

// historyLimit caps how many recent review events are described to the
// oracle. Older history adds tokens without improving the estimate.
const historyLimit = 10

// FormatHistory renders up to limit review events as a plain-text list for
// the oracle prompt, most recent first. An empty history is stated
// explicitly so the oracle never has to guess what absence means.
func FormatHistory(events []*domain.ReviewEvent, limit int) string {
	if len(events) == 0 {
		return "No review history available."
	}

	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}

	lines := make([]string, 0, len(events))
	for _, event := range events {
		lines = append(lines, fmt.Sprintf("- %s: Quality %d/5 (%s)",
			event.ReviewedAt.UTC().Format(time.RFC3339),
			event.Quality,
			qualityText(event.Quality)))
	}

	return strings.Join(lines, "\n")
}

// qualityText maps a quality score to the wording the oracle prompt uses.
func qualityText(quality int) string {
	switch quality {
	case 0:
		return "Complete blackout"
	case 1:
		return "Incorrect, but familiar"
	case 2:
		return "Incorrect, but easy to recall"
	case 3:
		return "Correct with difficulty"
	case 4:
		return "Correct with hesitation"
	case 5:
		return "Perfect recall"
	default:
		return "Unknown"
	}
}
