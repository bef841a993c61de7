// Package openaicompat implements the llm.Provider against any
// OpenAI-compatible chat-completions endpoint.
package openaicompat

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/docmorph/api/internal/config"
	"github.com/docmorph/api/internal/domain/docmodel"
	"github.com/docmorph/api/internal/llm"
	"github.com/docmorph/api/pkg/logging"
)

var logger = logging.NewLogger("llm_openai")

type Client struct {
	client openai.Client
	model  string
}

func NewClient(settings config.Settings) (*Client, error) {
	if settings.APIKey == "" {
		return nil, errors.New("api key is required")
	}
	model := settings.Model
	if model == "" {
		model = config.DefaultModelName
	}

	opts := []option.RequestOption{
		option.WithAPIKey(settings.APIKey),
		option.WithRequestTimeout(config.LLMRequestTimeout),
		option.WithMaxRetries(0),
	}
	if settings.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(settings.Endpoint))
	}

	c := &Client{
		client: openai.NewClient(opts...),
		model:  model,
	}
	logger.Info("openai-compatible llm configured", "model", model)
	return c, nil
}

func (c *Client) Model() string { return c.model }

func (c *Client) Generate(ctx context.Context, payload docmodel.PromptPayload, cfg llm.GenerationConfig, userID string) docmodel.GenerationResult {
	start := time.Now()
	meta := docmodel.GenerationMeta{
		Timestamp:    start,
		Model:        c.model,
		PromptLength: utf8.RuneCountInString(payload.SystemPrompt) + utf8.RuneCountInString(payload.UserPrompt),
	}

	logger.Info("llm call", "model", c.model, "prompt_length", meta.PromptLength, "max_tokens", cfg.MaxTokens)

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(payload.SystemPrompt),
			openai.UserMessage(payload.UserPrompt),
		},
		Temperature:      openai.Float(cfg.Temperature),
		TopP:             openai.Float(cfg.TopP),
		MaxTokens:        openai.Int(int64(cfg.MaxTokens)),
		PresencePenalty:  openai.Float(cfg.PresencePenalty),
		FrequencyPenalty: openai.Float(cfg.FrequencyPenalty),
		N:                openai.Int(1),
		User:             openai.String(userID),
	})
	if err != nil {
		return c.failure(meta, start, err)
	}
	if len(resp.Choices) == 0 {
		meta.ErrorType = docmodel.ErrTypeGeneric
		meta.Latency = time.Since(start)
		return docmodel.GenerationResult{
			Success: false,
			Err:     fmt.Sprintf("Exception lors de l'appel API %s: réponse invalide, pas de choix disponibles", c.model),
			Meta:    meta,
		}
	}

	content := resp.Choices[0].Message.Content
	meta.ResponseLength = utf8.RuneCountInString(content)
	meta.Usage = docmodel.Usage{
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
	}
	meta.FinishReason = string(resp.Choices[0].FinishReason)
	meta.Latency = time.Since(start)

	logger.Info("llm response received",
		"response_length", meta.ResponseLength,
		"total_tokens", meta.Usage.TotalTokens,
		"finish_reason", meta.FinishReason)

	return docmodel.GenerationResult{Success: true, Content: content, Meta: meta}
}

func (c *Client) failure(meta docmodel.GenerationMeta, start time.Time, err error) docmodel.GenerationResult {
	meta.Latency = time.Since(start)

	var apiErr *openai.Error
	switch {
	case errors.As(err, &apiErr):
		meta.ErrorType = docmodel.ErrTypeHTTP
		meta.StatusCode = apiErr.StatusCode
		meta.Latency = time.Since(start)
		logger.Error("llm call failed", "error_type", meta.ErrorType, "status", apiErr.StatusCode)
		return docmodel.GenerationResult{
			Success: false,
			Err:     fmt.Sprintf("Erreur HTTP API %s: %d, %s", c.model, apiErr.StatusCode, apiErr.Error()),
			Meta:    meta,
		}
	case errors.Is(err, context.DeadlineExceeded):
		meta.ErrorType = docmodel.ErrTypeTimeout
		logger.Error("llm call failed", "error_type", meta.ErrorType)
		return docmodel.GenerationResult{
			Success: false,
			Err:     fmt.Sprintf("Timeout lors de l'appel API %s", c.model),
			Meta:    meta,
		}
	default:
		meta.ErrorType = docmodel.ErrTypeGeneric
		logger.Error("llm call failed", "error_type", meta.ErrorType, "error", err)
		return docmodel.GenerationResult{
			Success: false,
			Err:     fmt.Sprintf("Exception lors de l'appel API %s: %v", c.model, err),
			Meta:    meta,
		}
	}
}
