package cli

import (
	"strings"

	openrouter "github.com/revrost/go-openrouter"
	"go.uber.org/zap"
)

const (
	defaultHistoryMaxMessages = 24
	defaultHistoryMaxTokens   = 3000
)

// SessionHistory is the assistant conversation of one REPL session. The
// system prompt stays first; older turns are dropped to fit the limits.
type SessionHistory struct {
	messages    []openrouter.ChatCompletionMessage
	maxMessages int
	maxTokens   int
	logger      *zap.Logger
}

func NewSessionHistory(maxMessages, maxTokens int, logger *zap.Logger) *SessionHistory {
	if maxMessages <= 0 {
		maxMessages = defaultHistoryMaxMessages
	}
	if maxTokens <= 0 {
		maxTokens = defaultHistoryMaxTokens
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHistory{
		maxMessages: maxMessages,
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

// Append adds a message. Trimming waits while tool results are still
// owed to the last assistant message.
func (h *SessionHistory) Append(message openrouter.ChatCompletionMessage) {
	h.messages = append(h.messages, message)
	if len(message.ToolCalls) > 0 || h.pendingToolResults() > 0 {
		return
	}
	h.enforceLimits()
}

func (h *SessionHistory) GetMessages() []openrouter.ChatCompletionMessage {
	if len(h.messages) == 0 {
		return nil
	}
	out := make([]openrouter.ChatCompletionMessage, len(h.messages))
	copy(out, h.messages)
	return out
}

func (h *SessionHistory) Clear() {
	h.messages = nil
}

func (h *SessionHistory) TokenCount() int {
	return estimateTokens(h.messages)
}

// pendingToolResults counts the calls of the last tool-calling assistant
// message that have no tool reply yet.
func (h *SessionHistory) pendingToolResults() int {
	for i := len(h.messages) - 1; i >= 0; i-- {
		msg := h.messages[i]
		if msg.Role != openrouter.ChatMessageRoleAssistant {
			continue
		}
		if len(msg.ToolCalls) == 0 {
			return 0
		}
		return len(msg.ToolCalls) - (len(h.messages) - 1 - i)
	}
	return 0
}

func (h *SessionHistory) enforceLimits() {
	trimmed := false
	for h.overLimits() {
		next, ok := dropOldestTurn(h.messages)
		if !ok {
			break
		}
		h.messages = next
		trimmed = true
	}

	if trimmed {
		h.logger.Info("session history trimmed",
			zap.Int("messages", len(h.messages)),
			zap.Int("tokens", estimateTokens(h.messages)),
		)
	}
}

func (h *SessionHistory) overLimits() bool {
	return len(h.messages) > h.maxMessages || estimateTokens(h.messages) > h.maxTokens
}

// dropOldestTurn removes the oldest non-system message together with the
// tool replies that answer it. The newest message is never dropped.
func dropOldestTurn(messages []openrouter.ChatCompletionMessage) ([]openrouter.ChatCompletionMessage, bool) {
	start := 0
	if len(messages) > 0 && messages[0].Role == openrouter.ChatMessageRoleSystem {
		start = 1
	}
	end := start + 1
	for end < len(messages) && messages[end].Role == openrouter.ChatMessageRoleTool {
		end++
	}
	if end >= len(messages) {
		return messages, false
	}
	out := make([]openrouter.ChatCompletionMessage, 0, len(messages)-(end-start))
	out = append(out, messages[:start]...)
	out = append(out, messages[end:]...)
	return out, true
}

func estimateTokens(messages []openrouter.ChatCompletionMessage) int {
	total := 0
	for _, msg := range messages {
		total += estimateTokensForMessage(msg)
	}
	return total
}

func estimateTokensForMessage(message openrouter.ChatCompletionMessage) int {
	if message.Role == openrouter.ChatMessageRoleTool {
		// compact JSON has no spaces to count
		return len(message.Content.Text)/4 + 1
	}
	total := len(strings.Fields(message.Content.Text))
	if message.Content.Text == "" {
		for _, part := range message.Content.Multi {
			total += len(strings.Fields(part.Text))
		}
	}
	for _, call := range message.ToolCalls {
		total += 1 + len(strings.Fields(call.Function.Arguments))
	}
	return total
}
