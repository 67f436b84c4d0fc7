// Package llm generates city descriptions through an OpenAI-compatible chat API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexivanou/communes-api/internal/config"
	"github.com/alexivanou/communes-api/internal/model"
	"github.com/alexivanou/communes-api/internal/retry"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// sectionsSchema is built per request; Definition.MarshalJSON fills nil maps in place.
func sectionsSchema() *jsonschema.Definition {
	return &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"description": {Type: jsonschema.String},
			"history":     {Type: jsonschema.String},
			"attractions": {
				Type:  jsonschema.Array,
				Items: &jsonschema.Definition{Type: jsonschema.String},
			},
		},
		Required:             []string{"description", "history", "attractions"},
		AdditionalProperties: false,
	}
}

// Client calls the chat completion endpoint with a client-side rate limit,
// a per-call timeout and one retry on transient failures.
type Client struct {
	api        *openai.Client
	model      string
	structured bool
	limiter    *rate.Limiter
	timeout    time.Duration
	retry      retry.Policy
	logger     *zap.Logger
}

// NewClient creates a new generator client
func NewClient(cfg config.LLMConfig, logger *zap.Logger) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), 1+cfg.RatePerMinute/10)
	}

	return &Client{
		api:        openai.NewClientWithConfig(oc),
		model:      cfg.Model,
		structured: cfg.StructuredOutput,
		limiter:    limiter,
		timeout:    cfg.Timeout,
		retry:      retry.Once,
		logger:     logger,
	}
}

// Structured reports whether responses are requested as JSON
func (c *Client) Structured() bool {
	return c.structured
}

// Generate sends prompt and parses the response into sections.
// Unusable content is reported as ErrMalformedOutput.
func (c *Client) Generate(ctx context.Context, prompt string) (*model.DescriptionSections, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("llm rate limit: %w", err)
	}

	var content string
	err := c.retry.Do(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		start := time.Now()
		resp, err := c.api.CreateChatCompletion(callCtx, c.request(prompt))
		if err != nil {
			c.logger.Warn("Chat completion failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
			if isClientError(err) {
				return retry.Permanent(err)
			}
			return err
		}

		content = ""
		if len(resp.Choices) > 0 {
			content = resp.Choices[0].Message.Content
		}
		c.logger.Debug("Chat completion done",
			zap.String("model", resp.Model),
			zap.Int("total_tokens", resp.Usage.TotalTokens),
			zap.Duration("duration", time.Since(start)),
		)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	return ParseSections(content)
}

func (c *Client) request(prompt string) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature:      0.7,
		TopP:             0.9,
		FrequencyPenalty: 0.1,
	}
	if c.structured {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "city_description",
				Schema: sectionsSchema(),
				Strict: true,
			},
		}
	}
	return req
}

// isClientError reports 4xx responses other than 429, which a retry cannot fix
func isClientError(err error) bool {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	return status >= 400 && status < 500 && status != http.StatusTooManyRequests
}
