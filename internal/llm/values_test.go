package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"api-test-engine/internal/config"
	"api-test-engine/internal/logger"
	"api-test-engine/internal/synthesizer"
	"api-test-engine/internal/types"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	content string
	err     error
	prompts []string
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if len(req.Messages) > 0 {
		f.prompts = append(f.prompts, req.Messages[len(req.Messages)-1].Content)
	}
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func newTestClient(fake *fakeCompleter) *ValueClient {
	return &ValueClient{
		client:   fake,
		cfg:      config.LLMConfig{Model: "gpt-4"},
		fallback: synthesizer.NewRandomGenerator(),
		log:      logger.Discard(),
		timeout:  time.Second,
	}
}

func TestValueFromModel(t *testing.T) {
	fake := &fakeCompleter{content: `{"value": "Alice Smith"}`}
	c := newTestClient(fake)

	v := c.Value("string", nil)
	assert.Equal(t, "Alice Smith", v)
}

func TestValueCoercesIntegers(t *testing.T) {
	c := newTestClient(&fakeCompleter{content: `{"value": 42}`})
	assert.Equal(t, int64(42), c.Value("int", nil))
	assert.Equal(t, int64(42), c.Value("long", nil))
}

func TestValueFallsBackOnError(t *testing.T) {
	c := newTestClient(&fakeCompleter{err: errors.New("rate limited")})

	v := c.Value("int", &types.Constraints{})
	_, ok := v.(int64)
	assert.True(t, ok, "fallback must still produce a typed value, got %T", v)
}

func TestValueFallsBackOnGarbageResponse(t *testing.T) {
	c := newTestClient(&fakeCompleter{content: "sure, here you go: 42"})

	v := c.Value("string", nil)
	s, ok := v.(string)
	require.True(t, ok)
	assert.NotEmpty(t, s)
}

func TestValueFallsBackOnNullValue(t *testing.T) {
	c := newTestClient(&fakeCompleter{content: `{"value": null}`})

	v := c.Value("boolean", nil)
	assert.Equal(t, true, v, "random fallback for booleans")
}

func TestPromptCarriesConstraints(t *testing.T) {
	minLen, maxLen := 2, 50
	min := 1.0
	prompt := buildPrompt("string", &types.Constraints{
		Min:       &min,
		MinLength: &minLen,
		MaxLength: &maxLen,
		Pattern:   "^[a-z]+$",
		Enum:      []string{"red", "blue"},
		Email:     true,
	})

	assert.Contains(t, prompt, `type "string"`)
	assert.Contains(t, prompt, "Minimum: 1")
	assert.Contains(t, prompt, "Minimum length: 2")
	assert.Contains(t, prompt, "Maximum length: 50")
	assert.Contains(t, prompt, "^[a-z]+$")
	assert.Contains(t, prompt, "red, blue")
	assert.Contains(t, prompt, "email address")
}

func TestCoerce(t *testing.T) {
	assert.Equal(t, int64(7), coerce("int", float64(7)))
	assert.Equal(t, "7", coerce("string", float64(7)))
	assert.Equal(t, "2024-01-01", coerce("date", "2024-01-01"))
	assert.Equal(t, true, coerce("boolean", true))
}

var _ synthesizer.ValueGenerator = (*ValueClient)(nil)
