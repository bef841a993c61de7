// Package llm calls chat-completion models. Every call is a single attempt
// with a bounded timeout; failures come back as classified result envelopes,
// never as raised errors.
package llm

import (
	"context"

	"github.com/docmorph/api/internal/domain/docmodel"
)

// GenerationConfig mirrors the chat-completions sampling parameters. Fields
// marshal straight into the request body.
type GenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	TopP             float64 `json:"top_p"`
	MaxTokens        int     `json:"max_tokens"`
	PresencePenalty  float64 `json:"presence_penalty"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
}

// DefaultConfig is the baseline for ad hoc calls.
func DefaultConfig() GenerationConfig {
	return GenerationConfig{
		Temperature: 0.3,
		TopP:        1,
		MaxTokens:   2000,
	}
}

// DocumentConfig is tuned for long structured generations: more tokens,
// controlled diversity, mild repetition penalties.
func DocumentConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:      0.3,
		TopP:             0.9,
		MaxTokens:        3000,
		PresencePenalty:  0.1,
		FrequencyPenalty: 0.1,
	}
}

// Provider is one model backend. Generate performs exactly one attempt and
// reports the outcome in the result envelope.
type Provider interface {
	Generate(ctx context.Context, payload docmodel.PromptPayload, cfg GenerationConfig, userID string) docmodel.GenerationResult
	Model() string
}
