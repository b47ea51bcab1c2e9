package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-app/mnemo-api/internal/domain"
)

func TestAdvanceProgress(t *testing.T) {
	t.Parallel()

	svc := NewService()
	now := time.Date(2025, 6, 1, 12, 0, 0, 123456789, time.UTC)

	progress, err := domain.NewCardProgress(uuid.New(), uuid.New())
	require.NoError(t, err)
	before := *progress

	updated, err := svc.AdvanceProgress(progress, 5, now)
	require.NoError(t, err)

	// Original entity untouched.
	assert.Equal(t, before, *progress)

	assert.Equal(t, 1, updated.Repetition)
	assert.Equal(t, float64(1), updated.Interval)
	assert.Equal(t, 1, updated.ReviewCount)
	require.NotNil(t, updated.NextReviewAt)
	assert.Equal(t, updated.LastReviewedAt.Add(24*time.Hour), *updated.NextReviewAt)

	// Timestamps are microsecond-granular so the version marker survives a
	// database round trip.
	assert.Equal(t, updated.UpdatedAt, updated.UpdatedAt.Truncate(time.Microsecond))
	assert.NotEqual(t, progress.VersionMarker(), updated.VersionMarker())
}

func TestAdvanceProgressValidation(t *testing.T) {
	t.Parallel()

	svc := NewService()
	now := time.Now()

	_, err := svc.AdvanceProgress(nil, 4, now)
	assert.ErrorIs(t, err, ErrNilProgress)

	progress, err := domain.NewCardProgress(uuid.New(), uuid.New())
	require.NoError(t, err)

	_, err = svc.AdvanceProgress(progress, 6, now)
	assert.ErrorIs(t, err, domain.ErrInvalidQuality)

	_, err = svc.AdvanceProgress(progress, -1, now)
	assert.ErrorIs(t, err, domain.ErrInvalidQuality)
}

func TestAdvanceProgressBlended(t *testing.T) {
	t.Parallel()

	svc := NewService()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	progress, err := domain.NewCardProgress(uuid.New(), uuid.New())
	require.NoError(t, err)
	progress.Easiness = 2.0
	progress.Repetition = 3
	progress.Interval = 6

	updated, err := svc.AdvanceProgressBlended(progress, 5, 20, now)
	require.NoError(t, err)

	// Deterministic interval floor(6*2.1)=12, blended 0.7*12 + 0.3*20 = 14.4.
	assert.InDelta(t, 14.4, updated.Interval, 1e-9)
	assert.Equal(t, 4, updated.Repetition)

	_, err = svc.AdvanceProgressBlended(nil, 5, 20, now)
	assert.ErrorIs(t, err, ErrNilProgress)
}
