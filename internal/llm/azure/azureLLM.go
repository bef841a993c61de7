// Package azure implements the llm.Provider against an APIM-fronted Azure
// OpenAI chat-completions deployment.
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/docmorph/api/internal/config"
	"github.com/docmorph/api/internal/customHttpClient"
	"github.com/docmorph/api/internal/domain/docmodel"
	"github.com/docmorph/api/internal/llm"
	"github.com/docmorph/api/pkg/logging"
)

var logger = logging.NewLogger("llm_azure")

type Client struct {
	apiKey     string
	endpoint   string
	model      string
	httpClient *http.Client
}

func NewClient(settings config.Settings) (*Client, error) {
	if settings.APIKey == "" || settings.Endpoint == "" {
		return nil, errors.New("api key and endpoint are required")
	}
	model := settings.Model
	if model == "" {
		model = config.DefaultModelName
	}

	c := &Client{
		apiKey:   settings.APIKey,
		endpoint: strings.TrimRight(settings.Endpoint, "/"),
		model:    model,
		httpClient: customHttpClient.NewPooledClient(config.LLMRequestTimeout),
	}
	logger.Info("azure llm configured", "model", c.model, "endpoint", c.endpoint)
	return c, nil
}

func (c *Client) Model() string { return c.model }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	llm.GenerationConfig
	Stream   bool      `json:"stream"`
	User     string    `json:"user"`
	Messages []message `json:"messages"`
	N        int       `json:"n"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage docmodel.Usage `json:"usage"`
}

// Generate performs one chat-completions call. All failure modes end up in
// the envelope with an error type of http_error, timeout or
// general_exception; the method itself never errors.
func (c *Client) Generate(ctx context.Context, payload docmodel.PromptPayload, cfg llm.GenerationConfig, userID string) docmodel.GenerationResult {
	start := time.Now()
	meta := docmodel.GenerationMeta{
		Timestamp:    start,
		Model:        c.model,
		PromptLength: utf8.RuneCountInString(payload.SystemPrompt) + utf8.RuneCountInString(payload.UserPrompt),
	}

	url := fmt.Sprintf("%s/deployments/%s/chat/completions?api-version=%s", c.endpoint, c.model, config.APIVersion)
	body := chatRequest{
		GenerationConfig: cfg,
		Stream:           false,
		User:             userID,
		Messages: []message{
			{Role: "system", Content: payload.SystemPrompt},
			{Role: "user", Content: payload.UserPrompt},
		},
		N: 1,
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return c.failure(meta, start, docmodel.ErrTypeGeneric,
			fmt.Sprintf("Exception lors de l'appel API %s: %v", c.model, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return c.failure(meta, start, docmodel.ErrTypeGeneric,
			fmt.Sprintf("Exception lors de l'appel API %s: %v", c.model, err))
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	logger.Info("llm call", "model", c.model, "prompt_length", meta.PromptLength, "max_tokens", cfg.MaxTokens)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return c.failure(meta, start, docmodel.ErrTypeTimeout,
				fmt.Sprintf("Timeout lors de l'appel API %s", c.model))
		}
		return c.failure(meta, start, docmodel.ErrTypeGeneric,
			fmt.Sprintf("Exception lors de l'appel API %s: %v", c.model, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.failure(meta, start, docmodel.ErrTypeGeneric,
			fmt.Sprintf("Exception lors de l'appel API %s: %v", c.model, err))
	}

	if resp.StatusCode >= 400 {
		meta.StatusCode = resp.StatusCode
		return c.failure(meta, start, docmodel.ErrTypeHTTP,
			fmt.Sprintf("Erreur HTTP API %s: %d, %s", c.model, resp.StatusCode, string(raw)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return c.failure(meta, start, docmodel.ErrTypeGeneric,
			fmt.Sprintf("Exception lors de l'appel API %s: %v", c.model, err))
	}
	if len(parsed.Choices) == 0 {
		return c.failure(meta, start, docmodel.ErrTypeGeneric,
			fmt.Sprintf("Exception lors de l'appel API %s: réponse invalide, pas de choix disponibles", c.model))
	}

	content := parsed.Choices[0].Message.Content
	meta.ResponseLength = utf8.RuneCountInString(content)
	meta.Usage = parsed.Usage
	meta.FinishReason = parsed.Choices[0].FinishReason
	meta.Latency = time.Since(start)

	logger.Info("llm response received",
		"response_length", meta.ResponseLength,
		"total_tokens", meta.Usage.TotalTokens,
		"finish_reason", meta.FinishReason)

	return docmodel.GenerationResult{
		Success: true,
		Content: content,
		Meta:    meta,
	}
}

func (c *Client) failure(meta docmodel.GenerationMeta, start time.Time, errType, message string) docmodel.GenerationResult {
	meta.ErrorType = errType
	meta.Latency = time.Since(start)
	logger.Error("llm call failed", "error_type", errType, "error", message)
	return docmodel.GenerationResult{
		Success: false,
		Err:     message,
		Meta:    meta,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
