package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/mnemo-app/mnemo-api/internal/domain"
	"github.com/mnemo-app/mnemo-api/internal/prediction"
)

// DeckResponse represents the response data for a deck
type DeckResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CardResponse represents the response data for a card
type CardResponse struct {
	ID        string    `json:"id"`
	DeckID    string    `json:"deck_id"`
	Front     string    `json:"front"`
	Back      string    `json:"back"`
	Phonetic  string    `json:"phonetic,omitempty"`
	Example   string    `json:"example,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProgressResponse represents the response data for card scheduling state
type ProgressResponse struct {
	CardID         string     `json:"card_id"`
	Easiness       float64    `json:"easiness"`
	Repetition     int        `json:"repetition"`
	IntervalDays   float64    `json:"interval_days"`
	LastReviewedAt time.Time  `json:"last_reviewed_at"`
	NextReviewAt   *time.Time `json:"next_review_at"`
	ReviewCount    int        `json:"review_count"`
}

// PredictionResponse represents the response data for a forgetting prediction
type PredictionResponse struct {
	CardID                string    `json:"card_id"`
	ForgettingProbability float64   `json:"forgetting_probability"`
	RecommendedInterval   float64   `json:"recommended_interval"`
	Difficulty            string    `json:"difficulty"`
	Confidence            float64   `json:"confidence"`
	Reasoning             string    `json:"reasoning"`
	AIPowered             bool      `json:"ai_powered"`
	GeneratedAt           time.Time `json:"generated_at"`
}

// RiskStatsResponse represents aggregated risk statistics for a batch
type RiskStatsResponse struct {
	TotalCards                   int     `json:"total_cards"`
	HighRiskCards                int     `json:"high_risk_cards"`
	MediumRiskCards              int     `json:"medium_risk_cards"`
	LowRiskCards                 int     `json:"low_risk_cards"`
	AverageForgettingProbability float64 `json:"average_forgetting_probability"`
}

// BatchPredictionResponse represents the response data for batch predictions
type BatchPredictionResponse struct {
	Predictions map[string]PredictionResponse `json:"predictions"`
	Stats       RiskStatsResponse             `json:"stats"`
}

// ReviewInsightsResponse pairs the updated schedule with its prediction
type ReviewInsightsResponse struct {
	Progress   ProgressResponse   `json:"progress"`
	Prediction PredictionResponse `json:"prediction"`
}

// deckToResponse converts a domain deck to its response representation
func deckToResponse(deck *domain.Deck) DeckResponse {
	return DeckResponse{
		ID:          deck.ID.String(),
		Name:        deck.Name,
		Description: deck.Description,
		CreatedAt:   deck.CreatedAt,
		UpdatedAt:   deck.UpdatedAt,
	}
}

// cardToResponse converts a domain card to its response representation
func cardToResponse(card *domain.Card) CardResponse {
	return CardResponse{
		ID:        card.ID.String(),
		DeckID:    card.DeckID.String(),
		Front:     card.Front,
		Back:      card.Back,
		Phonetic:  card.Phonetic,
		Example:   card.Example,
		CreatedAt: card.CreatedAt,
		UpdatedAt: card.UpdatedAt,
	}
}

// cardsToResponse converts a slice of domain cards
func cardsToResponse(cards []*domain.Card) []CardResponse {
	responses := make([]CardResponse, 0, len(cards))
	for _, card := range cards {
		responses = append(responses, cardToResponse(card))
	}
	return responses
}

// progressToResponse converts domain scheduling state to its response representation
func progressToResponse(progress *domain.CardProgress) ProgressResponse {
	return ProgressResponse{
		CardID:         progress.CardID.String(),
		Easiness:       progress.Easiness,
		Repetition:     progress.Repetition,
		IntervalDays:   progress.Interval,
		LastReviewedAt: progress.LastReviewedAt,
		NextReviewAt:   progress.NextReviewAt,
		ReviewCount:    progress.ReviewCount,
	}
}

// predictionToResponse converts a domain prediction to its response representation
func predictionToResponse(pred *domain.Prediction) PredictionResponse {
	return PredictionResponse{
		CardID:                pred.CardID.String(),
		ForgettingProbability: pred.ForgettingProbability,
		RecommendedInterval:   pred.RecommendedInterval,
		Difficulty:            string(pred.Difficulty),
		Confidence:            pred.Confidence,
		Reasoning:             pred.Reasoning,
		AIPowered:             pred.AIPowered,
		GeneratedAt:           pred.GeneratedAt,
	}
}

// batchToResponse converts a batch prediction result to its response representation
func batchToResponse(result *prediction.BatchResult) BatchPredictionResponse {
	predictions := make(map[string]PredictionResponse, len(result.Predictions))
	for id, pred := range result.Predictions {
		predictions[id.String()] = predictionToResponse(pred)
	}

	return BatchPredictionResponse{
		Predictions: predictions,
		Stats: RiskStatsResponse{
			TotalCards:                   result.Stats.TotalCards,
			HighRiskCards:                result.Stats.HighRiskCards,
			MediumRiskCards:              result.Stats.MediumRiskCards,
			LowRiskCards:                 result.Stats.LowRiskCards,
			AverageForgettingProbability: result.Stats.AverageForgettingProbability,
		},
	}
}

// parseIDs converts string UUIDs to parsed form, reporting the first bad one.
func parseIDs(raw []string) ([]uuid.UUID, string, bool) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, s, false
		}
		ids = append(ids, id)
	}
	return ids, "", true
}
