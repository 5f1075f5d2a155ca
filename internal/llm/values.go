// Package llm provides an optional LLM-backed value generator for the
// synthesizer. Every failure falls back to the randomized generator, so a
// misbehaving model can never block test synthesis.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"api-test-engine/internal/config"
	"api-test-engine/internal/logger"
	"api-test-engine/internal/synthesizer"
	"api-test-engine/internal/types"

	openai "github.com/sashabaranov/go-openai"
)

// completer is the slice of the OpenAI client the generator needs.
// Narrowed for testability.
type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ValueClient asks a chat model for constraint-satisfying values.
type ValueClient struct {
	client   completer
	cfg      config.LLMConfig
	fallback synthesizer.ValueGenerator
	log      *logger.Logger
	timeout  time.Duration
}

// NewValueClient creates the generator from the run configuration.
func NewValueClient(cfg config.LLMConfig, log *logger.Logger) *ValueClient {
	if log == nil {
		log = logger.Discard()
	}
	return &ValueClient{
		client:   openai.NewClient(cfg.APIKey),
		cfg:      cfg,
		fallback: synthesizer.NewRandomGenerator(),
		log:      log,
		timeout:  15 * time.Second,
	}
}

// Value implements synthesizer.ValueGenerator.
func (c *ValueClient) Value(paramType string, constraints *types.Constraints) interface{} {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	value, err := c.generate(ctx, paramType, constraints)
	if err != nil {
		c.log.WithError(err).Debug("llm value generation failed, using random fallback")
		return c.fallback.Value(paramType, constraints)
	}
	return value
}

func (c *ValueClient) generate(ctx context.Context, paramType string, constraints *types.Constraints) (interface{}, error) {
	prompt := buildPrompt(paramType, constraints)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: float32(c.cfg.Temperature),
		MaxTokens:   64,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You generate a single realistic test value for an API parameter. Respond with a JSON document {\"value\": ...} and nothing else.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from model")
	}

	var parsed struct {
		Value interface{} `json:"value"`
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse model response %q: %w", content, err)
	}
	if parsed.Value == nil {
		return nil, fmt.Errorf("model returned no value")
	}
	return coerce(paramType, parsed.Value), nil
}

// buildPrompt describes the wanted value and its constraints.
func buildPrompt(paramType string, c *types.Constraints) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a valid value of type %q.", paramType)
	if c == nil {
		return b.String()
	}
	if c.Min != nil {
		fmt.Fprintf(&b, " Minimum: %v.", *c.Min)
	}
	if c.Max != nil {
		fmt.Fprintf(&b, " Maximum: %v.", *c.Max)
	}
	if c.MinLength != nil {
		fmt.Fprintf(&b, " Minimum length: %d.", *c.MinLength)
	}
	if c.MaxLength != nil {
		fmt.Fprintf(&b, " Maximum length: %d.", *c.MaxLength)
	}
	if c.Pattern != "" {
		fmt.Fprintf(&b, " Must match regex: %s.", c.Pattern)
	}
	if len(c.Enum) > 0 {
		fmt.Fprintf(&b, " Must be one of: %s.", strings.Join(c.Enum, ", "))
	}
	if c.Email {
		b.WriteString(" Must be a valid email address.")
	}
	if c.Phone {
		b.WriteString(" Must be a valid phone number.")
	}
	return b.String()
}

// coerce aligns the model's JSON value with the declared semantic type.
func coerce(paramType string, value interface{}) interface{} {
	switch paramType {
	case "int", "long":
		if f, ok := value.(float64); ok {
			return int64(f)
		}
	case "string", "date", "datetime":
		return fmt.Sprint(value)
	}
	return value
}
