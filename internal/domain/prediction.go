package domain

import (
	"time"

	"github.com/google/uuid"
)

// Difficulty is the coarse difficulty label attached to a prediction.
type Difficulty string

// Possible difficulty values
const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// ParseDifficulty maps a free-form label to a Difficulty, defaulting to
// Medium for anything unrecognized. Oracle output is never trusted to be
// well-formed.
func ParseDifficulty(s string) Difficulty {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(s)
	default:
		return DifficultyMedium
	}
}

// Prediction is a derived, cacheable forgetting-curve estimate for one card.
// It is advisory only and never authoritative scheduling state. AIPowered
// distinguishes oracle-derived results from the deterministic fallback so
// consumers can weight confidence accordingly.
type Prediction struct {
	CardID                uuid.UUID  `json:"card_id"`
	ForgettingProbability float64    `json:"forgetting_probability"` // 0..100
	RecommendedInterval   float64    `json:"recommended_interval"`   // days, 1..180
	Difficulty            Difficulty `json:"difficulty"`
	Confidence            float64    `json:"confidence"` // 0..100
	Reasoning             string     `json:"reasoning"`
	AIPowered             bool       `json:"ai_powered"`
	GeneratedAt           time.Time  `json:"generated_at"`
}

// DeckRiskStats summarizes a batch of predictions into risk bands.
// It is recomputed on every request and never persisted.
type DeckRiskStats struct {
	TotalCards                   int     `json:"total_cards"`
	HighRiskCards                int     `json:"high_risk_cards"`   // probability > 70
	MediumRiskCards              int     `json:"medium_risk_cards"` // 40 <= probability <= 70
	LowRiskCards                 int     `json:"low_risk_cards"`    // probability < 40
	AverageForgettingProbability float64 `json:"average_forgetting_probability"`
}
