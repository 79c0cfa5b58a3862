package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"caixa/internal/config"

	openrouter "github.com/revrost/go-openrouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewClient_DisabledWithoutKey(t *testing.T) {
	c, err := NewClient(config.Config{LLMModel: "openai/gpt-4o-mini"}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, c.Enabled())

	_, err = c.ChatWithMessages(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

type fakeCompleter struct {
	requests []openrouter.ChatCompletionRequest
	err      error
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openrouter.ChatCompletionRequest) (openrouter.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return openrouter.ChatCompletionResponse{}, f.err
	}
	return openrouter.ChatCompletionResponse{
		Usage: &openrouter.Usage{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120, Cost: 0.001},
	}, nil
}

func TestClient_AccumulatesUsage(t *testing.T) {
	api := &fakeCompleter{}
	c := newClient(api, "openai/gpt-4o-mini", zaptest.NewLogger(t))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.ChatWithMessages(ctx, []openrouter.ChatCompletionMessage{openrouter.UserMessage("oi")}, ToolSchemas())
		require.NoError(t, err)
	}
	api.err = errors.New("upstream down")
	_, err := c.ChatWithMessages(ctx, nil, nil)
	require.Error(t, err)

	require.Len(t, api.requests, 3)
	assert.Equal(t, "openai/gpt-4o-mini", api.requests[0].Model)
	assert.Len(t, api.requests[0].Tools, len(ToolSchemas()))

	u := c.Usage()
	assert.Equal(t, 2, u.Requests)
	assert.Equal(t, 240, u.TotalTokens())
	assert.InDelta(t, 0.002, u.Cost, 1e-9)
}

func TestToolSchemas_UniqueNames(t *testing.T) {
	seen := map[string]bool{}
	for _, tool := range ToolSchemas() {
		require.NotNil(t, tool.Function)
		assert.False(t, seen[tool.Function.Name], tool.Function.Name)
		seen[tool.Function.Name] = true
	}
	assert.Len(t, seen, 5)
}

func TestSystemPrompt(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	assert.Contains(t, systemPromptAt(now, false), "2024-06-10")
	assert.NotContains(t, systemPromptAt(now, false), "conversa")
	assert.Contains(t, systemPromptAt(now, true), "conversa")
}
