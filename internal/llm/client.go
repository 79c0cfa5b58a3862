package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"caixa/internal/config"

	openrouter "github.com/revrost/go-openrouter"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("llm is not configured")

type ToolCall = openrouter.ToolCall

type completer interface {
	CreateChatCompletion(ctx context.Context, request openrouter.ChatCompletionRequest) (openrouter.ChatCompletionResponse, error)
}

// Usage is the running total of one process.
type Usage struct {
	Requests         int
	PromptTokens     int
	CompletionTokens int
	Cost             float64
}

func (u Usage) TotalTokens() int {
	return u.PromptTokens + u.CompletionTokens
}

// Client talks to an OpenRouter-compatible endpoint. A client without a
// model or key is valid but disabled: every call returns ErrNotConfigured.
type Client struct {
	api    completer
	model  string
	logger *zap.Logger

	mu    sync.Mutex
	usage Usage
}

func NewClient(cfg config.Config, logger *zap.Logger) (*Client, error) {
	logger = logger.Named("llm")
	model := strings.TrimSpace(cfg.LLMModel)
	apiKey := strings.TrimSpace(cfg.LLMAPIKey)

	if model == "" || apiKey == "" {
		logger.Warn("assistant config is incomplete; assistant will be disabled",
			zap.Bool("has_model", model != ""),
			zap.Bool("has_api_key", apiKey != ""),
		)
		return &Client{model: model, logger: logger}, nil
	}

	orCfg := openrouter.DefaultConfig(apiKey)
	if base := strings.TrimSpace(cfg.LLMBaseURL); base != "" {
		orCfg.BaseURL = base
	}
	orCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return newClient(openrouter.NewClientWithConfig(*orCfg), model, logger), nil
}

func newClient(api completer, model string, logger *zap.Logger) *Client {
	return &Client{api: api, model: model, logger: logger}
}

func (c *Client) Enabled() bool {
	return c != nil && c.api != nil
}

func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

// ChatWithMessages sends the whole conversation with the tool schemas and
// adds the reported usage to the running total.
func (c *Client) ChatWithMessages(ctx context.Context, messages []openrouter.ChatCompletionMessage, tools []openrouter.Tool) (openrouter.ChatCompletionResponse, error) {
	if !c.Enabled() {
		return openrouter.ChatCompletionResponse{}, ErrNotConfigured
	}

	c.logger.Debug("chat completion",
		zap.String("model", c.model),
		zap.Int("messages", len(messages)),
		zap.Int("tools", len(tools)),
	)
	resp, err := c.api.CreateChatCompletion(ctx, openrouter.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
		Tools:    tools,
	})
	if err != nil {
		return openrouter.ChatCompletionResponse{}, err
	}

	c.mu.Lock()
	c.usage.Requests++
	if resp.Usage != nil {
		c.usage.PromptTokens += resp.Usage.PromptTokens
		c.usage.CompletionTokens += resp.Usage.CompletionTokens
		c.usage.Cost += resp.Usage.Cost
	}
	c.mu.Unlock()
	return resp, nil
}

func (c *Client) Usage() Usage {
	if c == nil {
		return Usage{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usage
}
