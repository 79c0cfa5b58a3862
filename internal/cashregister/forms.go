package cashregister

import (
	"errors"
	"strings"
	"unicode/utf8"

	"caixa/internal/api"
	"caixa/internal/money"

	"github.com/shopspring/decimal"
)

// MaxReasonLength caps the withdrawal reason, in characters.
const MaxReasonLength = 15

var (
	ErrMalformedAmount   = errors.New("malformed amount")
	ErrAmountNotPositive = errors.New("amount must be positive")
	ErrExceedsBalance    = errors.New("amount exceeds drawer balance")
	ErrMissingReason     = errors.New("reason is required")
	ErrNoClosingValues   = errors.New("no closing values")
	ErrNegativeAmount    = errors.New("negative amount")
	ErrInFlight          = errors.New("request already in flight")
)

// ValidationError is the single message surfaced to the operator for a
// rejected form. Err is one of the sentinels above.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

// OpenForm collects the initial float and the soft cash limit.
type OpenForm struct {
	Format        money.Format
	InitialAmount string
	CashLimit     string
	InFlight      bool
}

func NewOpenForm(f money.Format) *OpenForm {
	return &OpenForm{Format: f}
}

func (f *OpenForm) SetInitialAmount(raw string) { f.InitialAmount = f.Format.Mask(raw) }
func (f *OpenForm) SetCashLimit(raw string) { f.CashLimit = f.Format.Mask(raw) }

// CanSubmit mirrors the confirm button: disabled while in flight or while
// either field is not a positive amount.
func (f *OpenForm) CanSubmit() bool {
	if f.InFlight {
		return false
	}
	return f.Format.ParseMasked(f.InitialAmount).IsPositive() && f.Format.ParseMasked(f.CashLimit).IsPositive()
}

func (f *OpenForm) parseField(field, value string) (decimal.Decimal, error) {
	d, err := f.Format.Parse(value)
	if err != nil {
		return decimal.Zero, invalid(field, "valor inválido", ErrMalformedAmount)
	}
	if !d.IsPositive() {
		return decimal.Zero, invalid(field, "o valor deve ser maior que zero", ErrAmountNotPositive)
	}
	return d, nil
}

func (f *OpenForm) Validate() (api.OpenRegisterRequest, error) {
	if f.InFlight {
		return api.OpenRegisterRequest{}, ErrInFlight
	}
	initial, err := f.parseField("initialAmount", f.InitialAmount)
	if err != nil {
		return api.OpenRegisterRequest{}, err
	}
	limit, err := f.parseField("cashLimit", f.CashLimit)
	if err != nil {
		return api.OpenRegisterRequest{}, err
	}
	return api.OpenRegisterRequest{InitialAmount: initial, CashLimit: limit}, nil
}

// WithdrawalForm is a sangria. Balance is the drawer amount known when the
// form was created; it is a hint only, the server re-validates.
type WithdrawalForm struct {
	Format  money.Format
	Amount  string
	Reason  string
	Balance decimal.Decimal
}

func NewWithdrawalForm(f money.Format, balance decimal.Decimal) *WithdrawalForm {
	return &WithdrawalForm{Format: f, Balance: balance}
}

func (f *WithdrawalForm) SetAmount(raw string) { f.Amount = f.Format.Mask(raw) }

// SetReason keeps at most MaxReasonLength characters; the rest is dropped.
func (f *WithdrawalForm) SetReason(raw string) {
	if utf8.RuneCountInString(raw) <= MaxReasonLength {
		f.Reason = raw
		return
	}
	f.Reason = string([]rune(raw)[:MaxReasonLength])
}

// Validate applies, in order: positive amount, amount within balance,
// non-blank reason. Only the first failure is reported.
func (f *WithdrawalForm) Validate() (api.TransactionRequest, error) {
	amount, err := f.Format.Parse(f.Amount)
	if err != nil || !amount.IsPositive() {
		return api.TransactionRequest{}, invalid("amount", "informe um valor válido", ErrAmountNotPositive)
	}
	if amount.GreaterThan(f.Balance) {
		return api.TransactionRequest{}, invalid("amount", "valor maior que o saldo em caixa", ErrExceedsBalance)
	}
	reason := strings.TrimSpace(f.Reason)
	if reason == "" {
		return api.TransactionRequest{}, invalid("reason", "informe o motivo da sangria", ErrMissingReason)
	}
	return api.TransactionRequest{
		Type:   api.TransactionWithdrawal,
		Amount: amount,
		Reason: reason,
	}, nil
}

// ClosingForm collects the operator's count per payment method. It never
// computes a difference against the expected values.
type ClosingForm struct {
	Format      money.Format
	Data        api.ClosingData
	Values      map[api.PaymentMethod]string
	Observation string
}

// NewClosingForm pre-fills every field with the masked expected value,
// sign included.
func NewClosingForm(f money.Format, data api.ClosingData) *ClosingForm {
	form := &ClosingForm{
		Format: f,
		Data:   data,
		Values: make(map[api.PaymentMethod]string, len(api.PaymentMethods)),
	}
	for _, m := range api.PaymentMethods {
		form.Values[m] = f.MaskDecimal(data.ExpectedBalance.Get(m))
	}
	return form
}

func (f *ClosingForm) SetValue(m api.PaymentMethod, raw string) error {
	if !m.Valid() {
		return invalid("values", "forma de pagamento desconhecida", ErrMalformedAmount)
	}
	f.Values[m] = f.Format.Mask(raw)
	return nil
}

func (f *ClosingForm) Validate() (api.CloseRegisterRequest, error) {
	var values api.Balances
	hasValue := false
	for _, m := range api.PaymentMethods {
		v := f.Format.ParseMasked(f.Values[m])
		if v.IsNegative() {
			return api.CloseRegisterRequest{}, invalid(string(m), "o valor contado não pode ser negativo", ErrNegativeAmount)
		}
		values.Set(m, v)
		if !v.IsZero() {
			hasValue = true
		}
	}
	if !hasValue {
		return api.CloseRegisterRequest{}, invalid("values", "insira pelo menos um valor", ErrNoClosingValues)
	}
	return api.CloseRegisterRequest{
		Values:      values,
		Observation: strings.TrimSpace(f.Observation),
	}, nil
}
