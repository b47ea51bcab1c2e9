// Package oracle provides the OpenAI-backed implementation of the
// prediction.Oracle interface. It owns prompt construction and transport;
// payload parsing and normalization live with the prediction package so every
// oracle implementation is held to the same contract.
package oracle

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mnemo-app/mnemo-api/internal/config"
	"github.com/mnemo-app/mnemo-api/internal/prediction"
)

const (
	defaultModel = openai.GPT4oMini

	// Low temperature keeps the numeric estimates stable between calls for
	// the same card state; the cache assumes repeat calls agree.
	requestTemperature = 0.3
	requestMaxTokens   = 500
)

const systemPrompt = "You are an expert in memory retention and spaced " +
	"repetition learning. Analyze the learner's review history and current " +
	"scheduling state, then respond with a single JSON object containing: " +
	"forgetting_probability (0-100), recommended_interval (days, 1-180), " +
	"difficulty (Easy, Medium, or Hard), confidence (0-100), and a short " +
	"reasoning string. Respond with JSON only."

// Client calls the OpenAI chat completions API to estimate forgetting
// probability for a card.
type Client struct {
	api    *openai.Client
	model  string
	logger *slog.Logger
}

// Ensure Client implements the prediction.Oracle interface
var _ prediction.Oracle = (*Client)(nil)

// NewClient creates an oracle client from configuration. A custom base URL
// routes requests to an OpenAI-compatible endpoint; an empty model selects
// the default.
func NewClient(cfg config.OracleConfig, log *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("oracle API key is required")
	}
	if log == nil {
		log = slog.Default()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	return &Client{
		api:    openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: log.With(slog.String("component", "oracle_client")),
	}, nil
}

// PredictForgetting sends one chat completion request and parses the
// prediction payload out of the response text.
func (c *Client) PredictForgetting(
	ctx context.Context,
	req prediction.OracleRequest,
) (*prediction.OraclePayload, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: requestTemperature,
		MaxTokens:   requestMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(req)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", prediction.ErrOracleUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: response contained no choices", prediction.ErrOracleUnavailable)
	}

	payload, err := prediction.ParsePayload(resp.Choices[0].Message.Content)
	if err != nil {
		c.logger.Warn("unparseable oracle response",
			slog.String("model", c.model),
			slog.String("error", err.Error()))
		return nil, err
	}

	return payload, nil
}

// userPrompt renders the card's scheduling signals and history for the model.
func userPrompt(req prediction.OracleRequest) string {
	return fmt.Sprintf(
		"Card front: %q\n"+
			"Easiness factor: %.2f\n"+
			"Successful repetitions: %d\n"+
			"Current interval: %.4f days\n\n"+
			"Recent review history (most recent first):\n%s",
		req.CardFront, req.Easiness, req.Repetition, req.IntervalDays, req.History)
}
