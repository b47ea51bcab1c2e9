package prediction

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/domain/srs"
	"github.com/mnemo-app/mnemo-api/internal/platform/logger"
)

// Defaults for predictor behavior when the config leaves them unset.
const (
	DefaultCacheTTL      = time.Hour
	DefaultOracleTimeout = 15 * time.Second
)

// Normalization bounds for oracle output and the fallback estimate.
const (
	minRecommendedInterval = 1.0
	maxRecommendedInterval = 180.0
	fallbackConfidence     = 60.0
)

// unscheduledVersion keys cached predictions for cards that have no
// scheduling state yet. The first recorded review creates state with a real
// version marker, which naturally supersedes this key.
const unscheduledVersion int64 = 0

// Config tunes a Predictor.
type Config struct {
	// CacheTTL is how long a prediction (oracle-derived or fallback) stays
	// cached. Zero means DefaultCacheTTL.
	CacheTTL time.Duration

	// OracleTimeout bounds a single oracle call. Zero means
	// DefaultOracleTimeout.
	OracleTimeout time.Duration
}

// Predictor computes forgetting-curve estimates for cards. It is cache-first,
// consults the oracle on a miss, and degrades to a deterministic fallback on
// any oracle failure. Predict never returns an error: the caller always gets
// a usable, well-formed prediction.
type Predictor struct {
	oracle  Oracle
	cache   Cache
	ttl     time.Duration
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewPredictor creates a Predictor with the given oracle and cache.
func NewPredictor(oracle Oracle, cache Cache, cfg Config, log *slog.Logger) *Predictor {
	if oracle == nil {
		panic("oracle cannot be nil")
	}
	if cache == nil {
		panic("cache cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	timeout := cfg.OracleTimeout
	if timeout <= 0 {
		timeout = DefaultOracleTimeout
	}

	return &Predictor{
		oracle:  oracle,
		cache:   cache,
		ttl:     ttl,
		timeout: timeout,
		logger:  log.With(slog.String("component", "predictor")),
		now:     time.Now,
	}
}

// Predict returns the forgetting estimate for a card given its scheduling
// state and recent review history. Progress may be nil for a card that has
// never been reviewed; default scheduling values are assumed.
//
// The result is cached under (card ID, version marker) for the configured
// TTL regardless of whether it came from the oracle or the fallback, so a
// card that has not changed costs at most one oracle call per TTL window and
// an unreachable oracle does not cause recomputation storms.
func (p *Predictor) Predict(
	ctx context.Context,
	card *domain.Card,
	progress *domain.CardProgress,
	history []*domain.ReviewEvent,
) *domain.Prediction {
	log := logger.FromContextOrDefault(ctx, p.logger)

	easiness, repetition, interval := schedulingSignals(progress)

	key := CacheKey{CardID: card.ID, Version: unscheduledVersion}
	if progress != nil {
		key.Version = progress.VersionMarker()
	}

	if cached, ok := p.cache.Get(key); ok {
		log.Debug("prediction cache hit",
			slog.String("card_id", card.ID.String()),
			slog.Int64("version", key.Version))
		return cached
	}

	prediction := p.consultOracle(ctx, card, easiness, repetition, interval, history)
	if prediction == nil {
		prediction = p.fallback(card, easiness, repetition, interval)
	}

	p.cache.Put(key, prediction, p.ttl)
	return prediction
}

// consultOracle performs one time-bounded oracle call and normalizes the
// payload. Returns nil on any failure; the caller substitutes the fallback.
// A cancelled or timed-out call is treated identically to any other failure.
func (p *Predictor) consultOracle(
	ctx context.Context,
	card *domain.Card,
	easiness float64,
	repetition int,
	interval float64,
	history []*domain.ReviewEvent,
) *domain.Prediction {
	log := logger.FromContextOrDefault(ctx, p.logger)

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	payload, err := p.oracle.PredictForgetting(callCtx, OracleRequest{
		CardFront:    card.Front,
		Easiness:     easiness,
		Repetition:   repetition,
		IntervalDays: interval,
		History:      FormatHistory(history, historyLimit),
	})
	if err != nil {
		log.Warn("oracle prediction failed, using fallback",
			slog.String("card_id", card.ID.String()),
			slog.String("error", err.Error()))
		return nil
	}

	return p.normalize(card, payload, interval)
}

// normalize validates and clamps an oracle payload into a Prediction.
// Absent fields take the documented defaults; nothing from the oracle is
// trusted unclamped.
func (p *Predictor) normalize(
	card *domain.Card,
	payload *OraclePayload,
	currentInterval float64,
) *domain.Prediction {
	probability := 50.0
	if payload.ForgettingProbability != nil {
		probability = clamp(*payload.ForgettingProbability, 0, 100)
	}

	recommended := clamp(currentInterval, minRecommendedInterval, maxRecommendedInterval)
	if payload.RecommendedInterval != nil {
		recommended = clamp(*payload.RecommendedInterval, minRecommendedInterval, maxRecommendedInterval)
	}

	confidence := 50.0
	if payload.Confidence != nil {
		confidence = clamp(*payload.Confidence, 0, 100)
	}

	reasoning := payload.Reasoning
	if reasoning == "" {
		reasoning = "AI prediction based on learning patterns."
	}

	return &domain.Prediction{
		CardID:                card.ID,
		ForgettingProbability: probability,
		RecommendedInterval:   recommended,
		Difficulty:            domain.ParseDifficulty(payload.Difficulty),
		Confidence:            confidence,
		Reasoning:             reasoning,
		AIPowered:             true,
		GeneratedAt:           p.now().UTC(),
	}
}

// fallback derives a deterministic estimate from the SM-2 state alone:
// low easiness and few repetitions mean high forgetting risk. The result is
// always within [10, 90] so it never claims certainty either way.
func (p *Predictor) fallback(
	card *domain.Card,
	easiness float64,
	repetition int,
	interval float64,
) *domain.Prediction {
	probability := 100 - ((easiness-srs.MinEasiness)/1.2)*50 - float64(repetition)*5
	probability = math.Round(clamp(probability, 10, 90))

	difficulty := domain.DifficultyMedium
	switch {
	case easiness < 2.0:
		difficulty = domain.DifficultyHard
	case easiness > 2.3:
		difficulty = domain.DifficultyEasy
	}

	return &domain.Prediction{
		CardID:                card.ID,
		ForgettingProbability: probability,
		RecommendedInterval:   interval,
		Difficulty:            difficulty,
		Confidence:            fallbackConfidence,
		Reasoning:             "Fallback prediction based on SM-2 scheduling state.",
		AIPowered:             false,
		GeneratedAt:           p.now().UTC(),
	}
}

// schedulingSignals extracts the difficulty signals from progress, assuming
// default scheduling values for never-reviewed cards.
func schedulingSignals(progress *domain.CardProgress) (easiness float64, repetition int, interval float64) {
	if progress == nil {
		return domain.DefaultEasiness, 0, domain.DefaultInterval
	}
	return progress.Easiness, progress.Repetition, progress.Interval
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
