package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-app/mnemo-api/internal/api/shared"
	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/prediction"
	"github.com/mnemo-app/mnemo-api/internal/service/review"
)

// stubReviewService scripts review.ReviewService responses for handler tests.
type stubReviewService struct {
	progress    *domain.CardProgress
	insights    *review.ReviewInsights
	cards       []*domain.Card
	pred        *domain.Prediction
	batch       *prediction.BatchResult
	err         error
	recordCalls int
	lastQuality int
	lastAsOf    time.Time
	lastLimit   int
	lastCardIDs []uuid.UUID
}

func (s *stubReviewService) RecordReview(
	ctx context.Context,
	userID, cardID uuid.UUID,
	quality int,
) (*domain.CardProgress, error) {
	s.recordCalls++
	s.lastQuality = quality
	return s.progress, s.err
}

func (s *stubReviewService) RecordReviewWithInsights(
	ctx context.Context,
	userID, cardID uuid.UUID,
	quality int,
) (*review.ReviewInsights, error) {
	s.recordCalls++
	s.lastQuality = quality
	return s.insights, s.err
}

func (s *stubReviewService) DueCards(
	ctx context.Context,
	userID, deckID uuid.UUID,
	asOf time.Time,
	limit int,
) ([]*domain.Card, error) {
	s.lastAsOf = asOf
	s.lastLimit = limit
	return s.cards, s.err
}

func (s *stubReviewService) Predict(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.Prediction, error) {
	return s.pred, s.err
}

func (s *stubReviewService) PredictBatch(
	ctx context.Context,
	userID uuid.UUID,
	cardIDs []uuid.UUID,
) (*prediction.BatchResult, error) {
	s.lastCardIDs = cardIDs
	return s.batch, s.err
}

// newAuthedRequest builds a request carrying a chi URL parameter and an
// authenticated user ID, the way the router and middleware would.
func newAuthedRequest(
	t *testing.T,
	method, target string,
	userID uuid.UUID,
	pathID string,
	body any,
) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	ctx := req.Context()

	if pathID != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", pathID)
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	if userID != uuid.Nil {
		ctx = context.WithValue(ctx, shared.UserIDContextKey, userID)
	}

	return req.WithContext(ctx)
}

func intPtr(v int) *int { return &v }

func sampleProgress(t *testing.T) *domain.CardProgress {
	t.Helper()

	progress, err := domain.NewCardProgress(uuid.New(), uuid.New())
	require.NoError(t, err)
	progress.Repetition = 1
	progress.ReviewCount = 1
	next := progress.UpdatedAt.Add(24 * time.Hour)
	progress.NextReviewAt = &next
	return progress
}

func TestRecordReviewHandler(t *testing.T) {
	t.Parallel()

	t.Run("records and returns progress", func(t *testing.T) {
		t.Parallel()

		svc := &stubReviewService{progress: sampleProgress(t)}
		handler := NewReviewHandler(svc, slog.Default())

		req := newAuthedRequest(t, http.MethodPost, "/cards/x/review", uuid.New(),
			uuid.New().String(), RecordReviewRequest{Quality: intPtr(4)})
		rec := httptest.NewRecorder()
		handler.RecordReview(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 4, svc.lastQuality)

		var resp ProgressResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, svc.progress.CardID.String(), resp.CardID)
		assert.Equal(t, 1, resp.ReviewCount)
	})

	t.Run("insights flag returns prediction alongside progress", func(t *testing.T) {
		t.Parallel()

		progress := sampleProgress(t)
		svc := &stubReviewService{insights: &review.ReviewInsights{
			Progress: progress,
			Prediction: &domain.Prediction{
				CardID:                progress.CardID,
				ForgettingProbability: 35,
				RecommendedInterval:   4,
				Difficulty:            domain.DifficultyMedium,
				Confidence:            80,
				AIPowered:             true,
			},
		}}
		handler := NewReviewHandler(svc, slog.Default())

		req := newAuthedRequest(t, http.MethodPost, "/cards/x/review", uuid.New(),
			uuid.New().String(), RecordReviewRequest{Quality: intPtr(5), WithInsights: true})
		rec := httptest.NewRecorder()
		handler.RecordReview(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp ReviewInsightsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 35.0, resp.Prediction.ForgettingProbability)
		assert.True(t, resp.Prediction.AIPowered)
	})

	t.Run("invalid card ID", func(t *testing.T) {
		t.Parallel()

		handler := NewReviewHandler(&stubReviewService{}, slog.Default())

		req := newAuthedRequest(t, http.MethodPost, "/cards/x/review", uuid.New(),
			"not-a-uuid", RecordReviewRequest{Quality: intPtr(4)})
		rec := httptest.NewRecorder()
		handler.RecordReview(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing user ID", func(t *testing.T) {
		t.Parallel()

		handler := NewReviewHandler(&stubReviewService{}, slog.Default())

		req := newAuthedRequest(t, http.MethodPost, "/cards/x/review", uuid.Nil,
			uuid.New().String(), RecordReviewRequest{Quality: intPtr(4)})
		rec := httptest.NewRecorder()
		handler.RecordReview(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing quality field", func(t *testing.T) {
		t.Parallel()

		svc := &stubReviewService{progress: sampleProgress(t)}
		handler := NewReviewHandler(svc, slog.Default())

		req := newAuthedRequest(t, http.MethodPost, "/cards/x/review", uuid.New(),
			uuid.New().String(), map[string]any{})
		rec := httptest.NewRecorder()
		handler.RecordReview(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, 0, svc.recordCalls)
	})

	t.Run("explicit quality zero is accepted", func(t *testing.T) {
		t.Parallel()

		svc := &stubReviewService{progress: sampleProgress(t)}
		handler := NewReviewHandler(svc, slog.Default())

		req := newAuthedRequest(t, http.MethodPost, "/cards/x/review", uuid.New(),
			uuid.New().String(), RecordReviewRequest{Quality: intPtr(0)})
		rec := httptest.NewRecorder()
		handler.RecordReview(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, svc.recordCalls)
		assert.Equal(t, 0, svc.lastQuality)
	})

	t.Run("quality out of range", func(t *testing.T) {
		t.Parallel()

		handler := NewReviewHandler(&stubReviewService{}, slog.Default())

		req := newAuthedRequest(t, http.MethodPost, "/cards/x/review", uuid.New(),
			uuid.New().String(), RecordReviewRequest{Quality: intPtr(6)})
		rec := httptest.NewRecorder()
		handler.RecordReview(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("service errors map to status codes", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			err    error
			status int
		}{
			{review.ErrCardNotFound, http.StatusNotFound},
			{review.ErrNotOwned, http.StatusForbidden},
			{review.ErrReviewConflict, http.StatusConflict},
		}
		for _, tc := range cases {
			svc := &stubReviewService{err: tc.err}
			handler := NewReviewHandler(svc, slog.Default())

			req := newAuthedRequest(t, http.MethodPost, "/cards/x/review", uuid.New(),
				uuid.New().String(), RecordReviewRequest{Quality: intPtr(4)})
			rec := httptest.NewRecorder()
			handler.RecordReview(rec, req)

			assert.Equal(t, tc.status, rec.Code, "for %v", tc.err)
		}
	})
}

func TestDueCardsHandler(t *testing.T) {
	t.Parallel()

	t.Run("returns due cards with query parameters", func(t *testing.T) {
		t.Parallel()

		card, err := domain.NewCard(uuid.New(), "front", "back")
		require.NoError(t, err)
		svc := &stubReviewService{cards: []*domain.Card{card}}
		handler := NewReviewHandler(svc, slog.Default())

		asOf := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		target := fmt.Sprintf("/decks/x/due?as_of=%s&limit=5", asOf.Format(time.RFC3339))
		req := newAuthedRequest(t, http.MethodGet, target, uuid.New(), uuid.New().String(), nil)
		rec := httptest.NewRecorder()
		handler.DueCards(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, svc.lastAsOf.Equal(asOf))
		assert.Equal(t, 5, svc.lastLimit)

		var resp []CardResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp, 1)
		assert.Equal(t, card.ID.String(), resp[0].ID)
	})

	t.Run("empty deck serializes as empty array", func(t *testing.T) {
		t.Parallel()

		handler := NewReviewHandler(&stubReviewService{}, slog.Default())

		req := newAuthedRequest(t, http.MethodGet, "/decks/x/due", uuid.New(), uuid.New().String(), nil)
		rec := httptest.NewRecorder()
		handler.DueCards(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("bad as_of timestamp", func(t *testing.T) {
		t.Parallel()

		handler := NewReviewHandler(&stubReviewService{}, slog.Default())

		req := newAuthedRequest(t, http.MethodGet, "/decks/x/due?as_of=yesterday",
			uuid.New(), uuid.New().String(), nil)
		rec := httptest.NewRecorder()
		handler.DueCards(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("negative limit", func(t *testing.T) {
		t.Parallel()

		handler := NewReviewHandler(&stubReviewService{}, slog.Default())

		req := newAuthedRequest(t, http.MethodGet, "/decks/x/due?limit=-1",
			uuid.New(), uuid.New().String(), nil)
		rec := httptest.NewRecorder()
		handler.DueCards(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("deck not found", func(t *testing.T) {
		t.Parallel()

		handler := NewReviewHandler(&stubReviewService{err: review.ErrDeckNotFound}, slog.Default())

		req := newAuthedRequest(t, http.MethodGet, "/decks/x/due", uuid.New(), uuid.New().String(), nil)
		rec := httptest.NewRecorder()
		handler.DueCards(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
