package cli

import (
	"context"
	"errors"
	"io"
	"strings"

	"caixa/internal/llm"

	openrouter "github.com/revrost/go-openrouter"
	"go.uber.org/zap"
)

// cmdAssistant answers one question, or opens a conversation when no
// question is given.
func (r *Runner) cmdAssistant(ctx context.Context, args []string) error {
	if r.llm == nil || !r.llm.Enabled() {
		return llm.ErrNotConfigured
	}
	query := strings.TrimSpace(strings.Join(args, " "))
	if query != "" {
		history := NewSessionHistory(0, 0, r.logger)
		return r.handleQuery(ctx, query, false, history)
	}
	return r.runREPL(ctx)
}

func (r *Runner) runREPL(ctx context.Context) error {
	history := NewSessionHistory(defaultHistoryMaxMessages, defaultHistoryMaxTokens, r.logger)
	history.Append(openrouter.SystemMessage(llm.SystemPromptWithContext(true)))
	r.println("Assistente do caixa (digite 'sair' para encerrar, /clear, /history)")

	for {
		line, err := r.prompt("> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.ToLower(line) {
		case "":
			continue
		case "/clear":
			history.Clear()
			history.Append(openrouter.SystemMessage(llm.SystemPromptWithContext(true)))
			r.println("Histórico apagado.")
			continue
		case "/history":
			r.printHistory(history)
			continue
		case "sair", "exit", "quit":
			return nil
		}

		if err := r.handleQuery(ctx, line, true, history); err != nil {
			if ctx.Err() != nil {
				return err
			}
			// keep the session alive on a failed question
			r.println(friendlyError(err))
			r.logger.Error("assistant query", zap.Error(err))
		}
	}
}

func (r *Runner) handleQuery(ctx context.Context, query string, interactive bool, history *SessionHistory) error {
	r.logger.Info("query received", zap.String("query", query), zap.Bool("interactive", interactive))
	resp, err := r.runAgent(ctx, query, interactive, history)
	if err != nil {
		return err
	}
	r.logger.Info("response",
		zap.String("answer", resp.AnswerText),
		zap.Int("tool_calls", len(resp.ToolCalls)),
		zap.String("next_step", resp.NextStep),
	)
	if ok, err := r.emit(resp); ok {
		return err
	}
	if resp.AnswerText == "" {
		r.println("(sem resposta)")
	} else {
		r.println(resp.AnswerText)
	}
	if resp.NextStep != "" {
		r.printf("\nPróximo passo: %s\n", resp.NextStep)
	}
	if r.options.Debug {
		for _, call := range resp.ToolCalls {
			status := "ok"
			if !call.OK {
				status = call.Err
			}
			r.printf("  [%s %dms] %s\n", call.Name, call.MS, status)
		}
	}
	return nil
}

func (r *Runner) printHistory(history *SessionHistory) {
	messages := history.GetMessages()
	if len(messages) == 0 {
		r.println("Histórico vazio.")
		return
	}
	r.printf("Histórico (%d mensagens, ~%d tokens):\n", len(messages), history.TokenCount())
	defer r.printUsage()
	for i, msg := range messages {
		preview := messagePreview(msg)
		if preview == "" {
			preview = "(vazio)"
		}
		r.printf("%d) %s: %s\n", i+1, msg.Role, preview)
	}
}

func (r *Runner) printUsage() {
	u := r.llm.Usage()
	r.printf("Assistente: %d requisições, %d tokens", u.Requests, u.TotalTokens())
	if u.Cost > 0 {
		r.printf(", custo US$ %.4f", u.Cost)
	}
	r.println()
}

func messagePreview(msg openrouter.ChatCompletionMessage) string {
	text := strings.TrimSpace(msg.Content.Text)
	if text == "" && len(msg.ToolCalls) > 0 {
		names := make([]string, 0, len(msg.ToolCalls))
		for _, call := range msg.ToolCalls {
			names = append(names, call.Function.Name)
		}
		text = "→ " + strings.Join(names, ", ")
	}
	const maxLen = 120
	if runes := []rune(text); len(runes) > maxLen {
		return string(runes[:maxLen]) + "..."
	}
	return text
}
