package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"caixa/internal/api"
	"caixa/internal/llm"
	"caixa/internal/payables"
	"caixa/internal/session"

	openrouter "github.com/revrost/go-openrouter"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	maxToolRounds       = 4
	defaultProductLimit = 10
	maxProductLimit     = 50
)

type chatModel interface {
	Enabled() bool
	Usage() llm.Usage
	ChatWithMessages(ctx context.Context, messages []openrouter.ChatCompletionMessage, tools []openrouter.Tool) (openrouter.ChatCompletionResponse, error)
}

type response struct {
	Query      string           `json:"query"`
	AnswerText string           `json:"answer_text"`
	ToolCalls  []toolCallRecord `json:"tool_calls,omitempty"`
	NextStep   string           `json:"next_step,omitempty"`
}

type toolCallRecord struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
	MS   int64          `json:"ms"`
	OK   bool           `json:"ok"`
	Err  string         `json:"err,omitempty"`
}

// runAgent answers query with the read-only tools. The conversation lives
// in history; a one-shot question passes a fresh one.
func (r *Runner) runAgent(ctx context.Context, query string, interactive bool, history *SessionHistory) (response, error) {
	if r.llm == nil || !r.llm.Enabled() {
		return response{}, llm.ErrNotConfigured
	}
	if len(history.GetMessages()) == 0 {
		history.Append(openrouter.SystemMessage(llm.SystemPromptWithContext(interactive)))
	}
	history.Append(openrouter.UserMessage(query))

	var toolCalls []toolCallRecord
	for round := 0; round < maxToolRounds; round++ {
		resp, err := r.llm.ChatWithMessages(ctx, history.GetMessages(), llm.ToolSchemas())
		if err != nil {
			return response{}, err
		}
		logLLMUsage(r.logger, resp)
		if len(resp.Choices) == 0 {
			return response{}, errors.New("llm returned empty response")
		}

		msg := resp.Choices[0].Message
		r.logger.Debug("llm response",
			zap.String("content", msg.Content.Text),
			zap.Int("tool_calls", len(msg.ToolCalls)),
		)
		history.Append(msg)

		if len(msg.ToolCalls) == 0 {
			return response{
				Query:      query,
				AnswerText: strings.TrimSpace(msg.Content.Text),
				ToolCalls:  toolCalls,
			}, nil
		}

		toolMsgs, records, fatal := r.executeToolCalls(ctx, msg.ToolCalls)
		toolCalls = append(toolCalls, records...)
		for _, m := range toolMsgs {
			history.Append(m)
		}
		if fatal != nil {
			return response{
				Query:      query,
				AnswerText: friendlyError(fatal),
				ToolCalls:  toolCalls,
			}, nil
		}
	}

	return response{
		Query:      query,
		AnswerText: "Não consegui concluir a consulta: limite de etapas atingido.",
		ToolCalls:  toolCalls,
		NextStep:   "Reformule a pergunta de forma mais específica.",
	}, nil
}

// executeToolCalls answers every call, so the history never holds a tool
// call without its result. Failures go back to the model as an error
// payload; a session failure is also returned as fatal.
func (r *Runner) executeToolCalls(ctx context.Context, calls []llm.ToolCall) ([]openrouter.ChatCompletionMessage, []toolCallRecord, error) {
	msgs := make([]openrouter.ChatCompletionMessage, 0, len(calls))
	records := make([]toolCallRecord, 0, len(calls))
	var fatal error

	for _, call := range calls {
		args := map[string]any{}
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				record := toolCallRecord{Name: call.Function.Name, Err: fmt.Sprintf("invalid tool args: %v", err)}
				records = append(records, record)
				msgs = append(msgs, openrouter.ToolMessage(call.ID, toolErrorPayload(record.Err)))
				continue
			}
		}

		var (
			result any
			record toolCallRecord
			err    error
		)
		if fatal != nil {
			err = fatal
			record = toolCallRecord{Name: call.Function.Name, Args: args, Err: "skipped"}
		} else {
			result, record, err = r.dispatchToolCall(ctx, call.Function.Name, args)
		}
		records = append(records, record)
		if err != nil {
			if fatal == nil && sessionFailure(err) {
				fatal = err
			}
			msgs = append(msgs, openrouter.ToolMessage(call.ID, toolErrorPayload(friendlyError(err))))
			continue
		}

		payload, err := json.Marshal(result)
		if err != nil {
			msgs = append(msgs, openrouter.ToolMessage(call.ID, toolErrorPayload(err.Error())))
			continue
		}
		msgs = append(msgs, openrouter.ToolMessage(call.ID, string(payload)))
	}
	return msgs, records, fatal
}

func sessionFailure(err error) bool {
	return errors.Is(err, api.ErrUnauthorized) ||
		errors.Is(err, api.ErrMissingToken) ||
		errors.Is(err, session.ErrNotLoggedIn) ||
		errors.Is(err, session.ErrTokenExpired)
}

func (r *Runner) dispatchToolCall(ctx context.Context, name string, args map[string]any) (any, toolCallRecord, error) {
	switch name {
	case llm.ToolRegisterStatus:
		return trackCall(r.logger, name, args, func() (registerView, error) {
			status, err := r.api.CashRegisterStatus(ctx)
			if err != nil {
				return registerView{}, err
			}
			return registerViewOf(status), nil
		})
	case llm.ToolClosingData:
		return trackCall(r.logger, name, args, func() (closingView, error) {
			data, err := r.api.ClosingData(ctx)
			if err != nil {
				return closingView{}, err
			}
			return closingViewOf(data), nil
		})
	case llm.ToolDailySales:
		refresh := getBoolArg(args, "refresh")
		return trackCall(r.logger, name, args, func() (salesView, error) {
			if refresh {
				stats, err := r.stats.Refresh(ctx)
				return salesViewOf(stats, false), err
			}
			stats, cached, err := r.stats.Daily(ctx)
			return salesViewOf(stats, cached), err
		})
	case llm.ToolPendingPayables:
		raw, _ := getStringArg(args, "month")
		month, err := parseMonth(raw)
		if err != nil {
			return nil, toolCallRecord{Name: name, Args: args, Err: err.Error()}, err
		}
		return trackCall(r.logger, name, args, func() (payablesView, error) {
			overview, err := r.payables.Overview(ctx, api.PayableQuery{Month: month, Status: "pending"})
			if err != nil {
				return payablesView{}, err
			}
			stats, err := r.payables.MonthlyStats(ctx, month)
			if err != nil {
				return payablesView{}, err
			}
			return payablesViewOf(overview, stats), nil
		})
	case llm.ToolSearchProducts:
		query, _ := getStringArg(args, "query")
		limit := getIntArg(args, "limit", defaultProductLimit)
		if limit < 1 || limit > maxProductLimit {
			limit = defaultProductLimit
		}
		return trackCall(r.logger, name, args, func() ([]productView, error) {
			page, err := r.api.ListProducts(ctx, api.ListQuery{Search: query, Limit: limit})
			if err != nil {
				return nil, err
			}
			out := make([]productView, 0, len(page.Data))
			for _, p := range page.Data {
				out = append(out, productViewOf(p))
			}
			return out, nil
		})
	default:
		err := fmt.Errorf("unknown tool: %s", name)
		return nil, toolCallRecord{Name: name, Args: args, Err: err.Error()}, err
	}
}

type registerView struct {
	IsOpen        bool             `json:"is_open"`
	InitialAmount *decimal.Decimal `json:"initial_amount,omitempty"`
	CurrentAmount *decimal.Decimal `json:"current_amount,omitempty"`
	CashLimit     *decimal.Decimal `json:"cash_limit,omitempty"`
	OverLimit     bool             `json:"over_limit,omitempty"`
	OpenedAt      string           `json:"opened_at,omitempty"`
	Transactions  int              `json:"transactions,omitempty"`
}

func registerViewOf(s api.CashRegisterStatus) registerView {
	if !s.IsOpen || s.CashRegister == nil {
		return registerView{}
	}
	reg := s.CashRegister
	return registerView{
		IsOpen:        true,
		InitialAmount: &reg.InitialAmount,
		CurrentAmount: &reg.CurrentAmount,
		CashLimit:     &reg.CashLimit,
		OverLimit:     reg.CurrentAmount.GreaterThan(reg.CashLimit),
		OpenedAt:      reg.OpenedAt.Format(time.RFC3339),
		Transactions:  len(reg.Transactions),
	}
}

type closingView struct {
	InitialAmount    decimal.Decimal `json:"initial_amount"`
	TotalSales       decimal.Decimal `json:"total_sales"`
	TotalWithdrawals decimal.Decimal `json:"total_withdrawals"`
	ExpectedBalance  api.Balances    `json:"expected_balance"`
}

func closingViewOf(d api.ClosingData) closingView {
	return closingView{
		InitialAmount:    d.InitialAmount,
		TotalSales:       d.TotalSales,
		TotalWithdrawals: d.TotalWithdrawals,
		ExpectedBalance:  d.ExpectedBalance,
	}
}

type salesView struct {
	Date          string          `json:"date"`
	SalesCount    int             `json:"sales_count"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
	ByMethod      api.Balances    `json:"by_method"`
	Cached        bool            `json:"cached"`
}

func salesViewOf(s api.DailySalesStats, cached bool) salesView {
	return salesView{
		Date:          s.Date,
		SalesCount:    s.SalesCount,
		TotalSales:    s.TotalSales,
		AverageTicket: s.AverageTicket,
		ByMethod:      s.ByMethod,
		Cached:        cached,
	}
}

type billView struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Type        api.PayableType `json:"type"`
	Value       decimal.Decimal `json:"value"`
	DueDate     string          `json:"due_date,omitempty"`
	DueDay      int             `json:"due_day,omitempty"`
}

type planView struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Remaining   int             `json:"remaining_installments"`
	Outstanding decimal.Decimal `json:"outstanding"`
	NextDueDate string          `json:"next_due_date,omitempty"`
}

type payablesView struct {
	Month        string          `json:"month"`
	Bills        []billView      `json:"bills"`
	Plans        []planView      `json:"plans"`
	TotalDue     decimal.Decimal `json:"total_due"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	TotalPending decimal.Decimal `json:"total_pending"`
	OverdueCount int             `json:"overdue_count"`
}

func payablesViewOf(o payables.Overview, stats api.MonthlyStats) payablesView {
	v := payablesView{
		Month:        stats.Month,
		Bills:        make([]billView, 0, len(o.Singles)),
		Plans:        make([]planView, 0, len(o.Plans)),
		TotalDue:     stats.TotalDue,
		TotalPaid:    stats.TotalPaid,
		TotalPending: stats.TotalPending,
		OverdueCount: stats.OverdueCount,
	}
	for _, p := range o.Singles {
		v.Bills = append(v.Bills, billView{
			ID: p.ID, Description: p.Description, Type: p.Type,
			Value: p.TotalValue, DueDate: p.DueDate, DueDay: p.DueDay,
		})
	}
	for _, plan := range o.Plans {
		pv := planView{
			ID:          plan.ID,
			Description: plan.Description(),
			Remaining:   plan.Remaining(),
			Outstanding: plan.Outstanding(),
		}
		if next, ok := plan.Next(); ok {
			pv.NextDueDate = next.DueDate
		}
		v.Plans = append(v.Plans, pv)
	}
	return v
}

type productView struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Barcode  string          `json:"barcode,omitempty"`
	Category string          `json:"category,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Stock    decimal.Decimal `json:"stock"`
	MinStock decimal.Decimal `json:"min_stock"`
}

func productViewOf(p api.Product) productView {
	return productView{
		ID: p.ID, Name: p.Name, Barcode: p.Barcode, Category: p.Category,
		Price: p.Price, Stock: p.Stock, MinStock: p.MinStock,
	}
}

func trackCall[T any](logger *zap.Logger, name string, args map[string]any, fn func() (T, error)) (T, toolCallRecord, error) {
	start := time.Now()
	result, err := fn()
	record := toolCallRecord{
		Name: name,
		Args: args,
		MS:   time.Since(start).Milliseconds(),
		OK:   err == nil,
	}
	if err != nil {
		record.Err = err.Error()
	}
	logger.Info("tool call",
		zap.String("name", name),
		zap.Any("args", args),
		zap.Int64("ms", record.MS),
		zap.Bool("ok", record.OK),
		zap.String("err", record.Err),
	)
	return result, record, err
}

func getStringArg(args map[string]any, key string) (string, bool) {
	value, ok := args[key]
	if !ok {
		return "", false
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v), true
	default:
		return fmt.Sprintf("%v", v), true
	}
}

func getIntArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolArg(args map[string]any, key string) bool {
	switch v := args[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

func toolErrorPayload(message string) string {
	encoded, err := json.Marshal(map[string]string{"error": message})
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, message)
	}
	return string(encoded)
}

func logLLMUsage(logger *zap.Logger, resp openrouter.ChatCompletionResponse) {
	if resp.Usage == nil {
		return
	}
	logger.Info("llm usage",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Float64("cost", resp.Usage.Cost),
	)
}
