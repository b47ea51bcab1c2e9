package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAdvanceQualityBands(t *testing.T) {
	t.Parallel()

	start := State{Easiness: 2.5, Repetition: 0, Interval: 1}

	tests := []struct {
		name         string
		quality      int
		wantInterval float64
	}{
		{name: "blackout relearns in one minute", quality: 0, wantInterval: 1.0 / 1440.0},
		{name: "failed recall relearns in five minutes", quality: 1, wantInterval: 5.0 / 1440.0},
		{name: "familiar failure relearns in five minutes", quality: 2, wantInterval: 5.0 / 1440.0},
		{name: "hard recall retries in six hours", quality: 3, wantInterval: 0.25},
		{name: "first solid recall schedules one day", quality: 4, wantInterval: 1},
		{name: "first perfect recall schedules one day", quality: 5, wantInterval: 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			next := Advance(start, tc.quality)
			assert.Equal(t, tc.wantInterval, next.Interval)
		})
	}
}

func TestAdvanceEasinessUpdate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		easiness float64
		quality  int
		want     float64
	}{
		{name: "perfect recall raises toward ceiling", easiness: 2.3, quality: 5, want: 2.4},
		{name: "ceiling holds at 2.5", easiness: 2.5, quality: 5, want: 2.5},
		{name: "hesitation leaves easiness unchanged", easiness: 2.5, quality: 4, want: 2.5},
		{name: "hard recall drops by 0.14", easiness: 2.5, quality: 3, want: 2.36},
		{name: "blackout drops by 0.8", easiness: 2.5, quality: 0, want: 1.7},
		{name: "floor holds at 1.3", easiness: 1.3, quality: 0, want: 1.3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			next := Advance(State{Easiness: tc.easiness, Repetition: 1, Interval: 1}, tc.quality)
			assert.InDelta(t, tc.want, next.Easiness, 1e-9)
		})
	}
}

func TestAdvanceRepetitionRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		repetition int
		quality    int
		want       int
	}{
		{name: "success increments", repetition: 2, quality: 4, want: 3},
		{name: "hard recall still increments", repetition: 2, quality: 3, want: 3},
		{name: "blackout resets to zero", repetition: 7, quality: 0, want: 0},
		{name: "lapse decrements", repetition: 3, quality: 2, want: 2},
		{name: "lapse never goes negative", repetition: 0, quality: 1, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			next := Advance(State{Easiness: 2.5, Repetition: tc.repetition, Interval: 1}, tc.quality)
			assert.Equal(t, tc.want, next.Repetition)
		})
	}
}

func TestAdvanceMaturedIntervalGrowth(t *testing.T) {
	t.Parallel()

	// Third successful repetition onward grows by the updated easiness,
	// truncated to whole days: floor(6 * 2.1) = 12.
	next := Advance(State{Easiness: 2.0, Repetition: 3, Interval: 6}, 5)

	assert.InDelta(t, 2.1, next.Easiness, 1e-9)
	assert.Equal(t, 4, next.Repetition)
	assert.Equal(t, float64(12), next.Interval)
}

func TestAdvanceSecondSuccessSchedulesSixDays(t *testing.T) {
	t.Parallel()

	next := Advance(State{Easiness: 2.5, Repetition: 1, Interval: 1}, 4)

	assert.Equal(t, 2, next.Repetition)
	assert.Equal(t, float64(6), next.Interval)
}

func TestAdvanceClampsOutOfRangeQuality(t *testing.T) {
	t.Parallel()

	start := State{Easiness: 2.5, Repetition: 1, Interval: 1}

	assert.Equal(t, Advance(start, 0), Advance(start, -3))
	assert.Equal(t, Advance(start, 5), Advance(start, 11))
}

func TestIntervalDuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, time.Minute, IntervalDuration(1.0/1440.0))
	assert.Equal(t, 5*time.Minute, IntervalDuration(5.0/1440.0))
	assert.Equal(t, 6*time.Hour, IntervalDuration(0.25))
	assert.Equal(t, 24*time.Hour, IntervalDuration(1))
}

func TestNextReviewAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, now.Add(time.Minute), NextReviewAt(now, 1.0/1440.0))
	assert.Equal(t, now.AddDate(0, 0, 6), NextReviewAt(now, 6))
}
