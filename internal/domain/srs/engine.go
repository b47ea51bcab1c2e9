package srs

import (
	"math"
	"time"
)

// Easiness bounds. The floor is the classical SM-2 minimum; the ceiling keeps
// intervals from growing without bound on long streaks of perfect recalls.
const (
	MinEasiness = 1.3
	MaxEasiness = 2.5
)

// Relearning steps expressed as day fractions so a single unit (days) covers
// everything from one minute to six months.
const (
	blackoutInterval   = 1.0 / 1440.0 // quality 0: one minute
	lapseInterval      = 5.0 / 1440.0 // quality 1-2: five minutes
	hardRecallInterval = 0.25         // quality 3: six hours
	firstInterval      = 1.0          // first successful recall: one day
	secondInterval     = 6.0          // second successful recall: six days
)

// State is the pure SM-2 scheduling tuple. It deliberately carries no
// identity or timestamps; Advance is a total function over it.
type State struct {
	Easiness   float64
	Repetition int
	Interval   float64 // days, fractional
}

// Advance computes the next scheduling state for a review with the given
// quality score. It is pure and total: out-of-range qualities are clamped
// rather than rejected, and the result is always a valid state.
//
// Quality bands:
//   - 0: complete blackout; relearn in one minute, repetition resets.
//   - 1-2: failed recall; relearn in five minutes, repetition decrements.
//   - 3: correct with difficulty; six hours, still counts as a success.
//   - 4-5: solid recall; 1 day, then 6 days, then interval x easiness.
func Advance(state State, quality int) State {
	if quality < 0 {
		quality = 0
	}
	if quality > 5 {
		quality = 5
	}

	next := State{
		Easiness:   nextEasiness(state.Easiness, quality),
		Repetition: nextRepetition(state.Repetition, quality),
	}

	switch {
	case quality == 0:
		next.Interval = blackoutInterval
	case quality <= 2:
		next.Interval = lapseInterval
	case quality == 3:
		next.Interval = hardRecallInterval
	default:
		next.Interval = growInterval(state.Interval, next.Repetition, next.Easiness)
	}

	return next
}

// nextEasiness applies the SM-2 easiness update
// EF' = EF + (0.1 - (5-q)*(0.08 + (5-q)*0.02)), clamped to [1.3, 2.5].
func nextEasiness(easiness float64, quality int) float64 {
	miss := float64(5 - quality)
	easiness += 0.1 - miss*(0.08+miss*0.02)

	if easiness < MinEasiness {
		easiness = MinEasiness
	}
	if easiness > MaxEasiness {
		easiness = MaxEasiness
	}

	return easiness
}

// nextRepetition is the single repetition rule shared by the deterministic
// engine and the blended path: successes increment, a blackout resets, and
// other failures decrement without going negative.
func nextRepetition(repetition, quality int) int {
	switch {
	case quality >= 3:
		return repetition + 1
	case quality == 0:
		return 0
	case repetition > 0:
		return repetition - 1
	default:
		return 0
	}
}

// growInterval computes the interval for a successful recall given the
// already-incremented repetition count. Matured cards grow by the new
// easiness factor; the result is truncated to whole days, matching classical
// SM-2 where long-term intervals are day-granular.
func growInterval(interval float64, repetition int, easiness float64) float64 {
	switch {
	case repetition <= 1:
		return firstInterval
	case repetition == 2:
		return secondInterval
	default:
		grown := math.Floor(interval * easiness)
		if grown < firstInterval {
			grown = firstInterval
		}
		return grown
	}
}

// IntervalDuration converts a fractional-day interval into a time.Duration.
// The conversion is exact for the relearning steps: 1/1440 days is exactly
// one minute.
func IntervalDuration(days float64) time.Duration {
	return time.Duration(days * float64(24*time.Hour))
}

// NextReviewAt returns the absolute next-review instant for an interval,
// anchored at the supplied instant. Rounding to absolute time happens only
// here; intervals stay fractional everywhere else.
func NextReviewAt(now time.Time, days float64) time.Time {
	return now.UTC().Add(IntervalDuration(days))
}
