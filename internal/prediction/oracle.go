package prediction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Common oracle errors
var (
	// ErrOracleUnavailable indicates the oracle could not be reached or did
	// not produce a usable response in time.
	ErrOracleUnavailable = errors.New("prediction oracle unavailable")

	// ErrMalformedPayload indicates the oracle responded but its payload did
	// not contain a parseable prediction object. Consumers must treat this
	// exactly like unavailability: fall back, never trust the partial data.
	ErrMalformedPayload = errors.New("malformed oracle payload")
)

// Oracle is the external prediction source. Implementations may block on
// network I/O and must honor context cancellation; callers bound each request
// with a timeout and treat every error, including cancellation, as a signal
// to fall back.
type Oracle interface {
	PredictForgetting(ctx context.Context, req OracleRequest) (*OraclePayload, error)
}

// OracleRequest carries the card's difficulty signals and formatted review
// history to the oracle.
type OracleRequest struct {
	CardFront    string
	Easiness     float64
	Repetition   int
	IntervalDays float64
	History      string
}

// OraclePayload is the structured prediction the oracle is asked to return.
// Numeric fields are pointers so an absent field is distinguishable from a
// zero value; normalization applies the documented defaults for absent or
// out-of-range values.
type OraclePayload struct {
	ForgettingProbability *float64 `json:"forgetting_probability"`
	RecommendedInterval   *float64 `json:"recommended_interval"`
	Difficulty            string   `json:"difficulty"`
	Confidence            *float64 `json:"confidence"`
	Reasoning             string   `json:"reasoning"`
}

// ParsePayload extracts the first JSON object embedded in the oracle's raw
// text output and decodes it. Oracles wrap their JSON in prose or markdown
// fences often enough that strict whole-body decoding would reject usable
// answers.
//
// Returns ErrMalformedPayload (wrapped) when no object can be decoded.
func ParsePayload(raw string) (*OraclePayload, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrMalformedPayload)
	}

	var payload OraclePayload
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	return &payload, nil
}
