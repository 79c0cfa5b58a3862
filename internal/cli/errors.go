package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"caixa/internal/api"
	"caixa/internal/cart"
	"caixa/internal/cashregister"
	"caixa/internal/catalog"
	"caixa/internal/gate"
	"caixa/internal/llm"
	"caixa/internal/payables"
	"caixa/internal/reports"
	"caixa/internal/session"

	"go.uber.org/zap"
)

// userError is what main prints: one localized line. The wrapped error
// keeps the detail for errors.Is and the log.
type userError struct {
	msg string
	err error
}

func (e *userError) Error() string { return e.msg }
func (e *userError) Unwrap() error { return e.err }

func (r *Runner) fail(cmd string, err error) error {
	var vErr *cashregister.ValidationError
	if errors.As(err, &vErr) {
		r.logger.Warn("validation", zap.String("command", cmd), zap.String("field", vErr.Field), zap.Error(err))
	} else {
		r.logger.Error("command failed", zap.String("command", cmd), zap.Error(err))
	}
	return &userError{msg: friendlyError(err), err: err}
}

var fieldNames = map[string]string{
	"name":        "nome",
	"price":       "preço",
	"costPrice":   "custo",
	"stock":       "estoque",
	"minStock":    "estoque mínimo",
	"barcode":     "código de barras",
	"unit":        "unidade",
	"email":       "e-mail",
	"document":    "CPF/CNPJ",
	"phone":       "telefone",
	"type":        "tipo",
	"description": "descrição",
	"totalValue":  "valor",
	"dueDate":     "vencimento",
	"dueDay":      "dia de vencimento",
	"supplierId":  "fornecedor",
}

func friendlyError(err error) string {
	var vErr *cashregister.ValidationError
	var inErr *api.InputError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &vErr):
		return vErr.Message
	case errors.As(err, &inErr):
		names := make([]string, 0, len(inErr.Fields))
		for field := range inErr.Fields {
			if pt, ok := fieldNames[field]; ok {
				field = pt
			}
			names = append(names, field)
		}
		sort.Strings(names)
		return "Campos inválidos: " + strings.Join(names, ", ") + "."
	case errors.Is(err, errBadCredentials):
		return "E-mail ou senha incorretos."
	case errors.Is(err, api.ErrMissingToken), errors.Is(err, session.ErrNotLoggedIn):
		return "Sessão não iniciada. Use: caixa login"
	case errors.Is(err, session.ErrTokenExpired), errors.Is(err, api.ErrUnauthorized):
		return "Sessão expirada ou sem permissão. Entre novamente com: caixa login"
	case errors.Is(err, session.ErrNotAdmin):
		return "Apenas administradores podem fazer isso."
	case errors.Is(err, api.ErrRateLimited):
		return "Muitas requisições. Tente novamente em instantes."
	case errors.Is(err, cashregister.ErrAlreadyOpen):
		return "O caixa já está aberto."
	case errors.Is(err, cashregister.ErrNotOpen):
		return "Nenhum caixa aberto. Use: caixa register open"
	case errors.Is(err, cashregister.ErrInFlight):
		return "Aguarde: a operação anterior ainda está em andamento."
	case errors.Is(err, gate.ErrIncomplete):
		return "A senha deve ter 4 dígitos."
	case errors.Is(err, gate.ErrWrongPIN):
		return "Senha incorreta."
	case errors.Is(err, cart.ErrEmpty):
		return "Adicione pelo menos um produto."
	case errors.Is(err, cart.ErrNoPaymentMethod), errors.Is(err, cart.ErrBadMethod):
		return "Escolha a forma de pagamento: cash, credit, debit ou pix."
	case errors.Is(err, cart.ErrBadQuantity):
		return "Quantidade inválida."
	case errors.Is(err, payables.ErrInvalidMode):
		return "Vencimento inválido: informe -due AAAA-MM-DD, -day 1..31 ou -installments N (N ≥ 2)."
	case errors.Is(err, catalog.ErrNotCSV):
		return "O arquivo de importação deve ser .csv."
	case errors.Is(err, reports.ErrUnknownType):
		return "Tipo de relatório inválido: sales, products, cash-register, accounts-payable ou suppliers."
	case errors.Is(err, reports.ErrUnknownPeriod):
		return "Período inválido: daily, weekly, monthly ou yearly."
	case errors.Is(err, llm.ErrNotConfigured):
		return "Assistente desativado: configure LLM_MODEL e LLM_API_KEY."
	case errors.Is(err, context.DeadlineExceeded):
		return "Tempo esgotado. Tente novamente."
	case errors.Is(err, context.Canceled):
		return "Operação cancelada."
	case errors.Is(err, io.EOF):
		return "Entrada encerrada."
	case errors.Is(err, errUsage):
		return err.Error()
	}
	if msg := api.ServerMessage(err); msg != "" {
		return "Erro do servidor: " + msg
	}
	if errors.Is(err, api.ErrNotFound) {
		return "Registro não encontrado."
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return "Não foi possível concluir a operação. Tente novamente."
	}
	return "Falha de comunicação com o servidor. Verifique a conexão."
}

var (
	errUsage          = errors.New("uso")
	errBadCredentials = errors.New("bad credentials")
)

func usagef(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errUsage}, args...)...)
}
