package cashregister

import (
	"testing"

	"caixa/internal/api"
	"caixa/internal/money"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestOpenForm(t *testing.T) {
	form := NewOpenForm(money.BRL)
	assert.False(t, form.CanSubmit())

	form.SetInitialAmount("10000")
	assert.Equal(t, "100,00", form.InitialAmount)
	assert.False(t, form.CanSubmit())

	form.SetCashLimit("50000")
	assert.True(t, form.CanSubmit())

	form.InFlight = true
	assert.False(t, form.CanSubmit())
	_, err := form.Validate()
	assert.ErrorIs(t, err, ErrInFlight)
	form.InFlight = false

	req, err := form.Validate()
	require.NoError(t, err)
	assert.True(t, req.InitialAmount.Equal(dec("100")))
	assert.True(t, req.CashLimit.Equal(dec("500")))
}

func TestOpenForm_RejectsMalformedAndZero(t *testing.T) {
	form := &OpenForm{Format: money.BRL, InitialAmount: "abc", CashLimit: "10,00"}
	_, err := form.Validate()
	assert.ErrorIs(t, err, ErrMalformedAmount)

	form.InitialAmount = "0,00"
	_, err = form.Validate()
	assert.ErrorIs(t, err, ErrAmountNotPositive)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "initialAmount", verr.Field)
}

func TestWithdrawalForm_ReasonIsCapped(t *testing.T) {
	form := NewWithdrawalForm(money.BRL, dec("100"))
	form.SetReason("depósito bancário semanal")
	assert.Equal(t, "depósito bancár", form.Reason)
	assert.Len(t, []rune(form.Reason), MaxReasonLength)
}

func TestWithdrawalForm_ValidationPrecedence(t *testing.T) {
	cases := []struct {
		name    string
		amount  string
		reason  string
		balance string
		want    error
	}{
		{"zero amount beats everything", "", "", "0", ErrAmountNotPositive},
		{"malformed amount", "x", "troco", "100", ErrAmountNotPositive},
		{"over balance before reason", "200,00", "", "100", ErrExceedsBalance},
		{"blank reason", "50,00", "   ", "100", ErrMissingReason},
		{"exact balance is fine", "100,00", "banco", "100", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := NewWithdrawalForm(money.BRL, dec(tc.balance))
			form.Amount = tc.amount
			form.SetReason(tc.reason)

			req, err := form.Validate()
			if tc.want == nil {
				require.NoError(t, err)
				assert.Equal(t, api.TransactionWithdrawal, req.Type)
				assert.Equal(t, "banco", req.Reason)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestClosingForm_PrefillSubmitsExpected(t *testing.T) {
	data := api.ClosingData{ExpectedBalance: api.Balances{Cash: dec("100"), Pix: dec("50")}}
	form := NewClosingForm(money.BRL, data)

	assert.Equal(t, "100,00", form.Values[api.PaymentCash])
	assert.Equal(t, "0,00", form.Values[api.PaymentCredit])
	assert.Equal(t, "50,00", form.Values[api.PaymentPix])

	form.Observation = "  tudo certo  "
	req, err := form.Validate()
	require.NoError(t, err)
	assert.True(t, req.Values.Cash.Equal(dec("100")))
	assert.True(t, req.Values.Credit.IsZero())
	assert.True(t, req.Values.Debit.IsZero())
	assert.True(t, req.Values.Pix.Equal(dec("50")))
	assert.Equal(t, "tudo certo", req.Observation)
}

func TestClosingForm_AllZeroBlocked(t *testing.T) {
	data := api.ClosingData{ExpectedBalance: api.Balances{Cash: dec("100"), Pix: dec("50")}}
	form := NewClosingForm(money.BRL, data)
	for _, m := range api.PaymentMethods {
		require.NoError(t, form.SetValue(m, "0"))
	}

	_, err := form.Validate()
	assert.ErrorIs(t, err, ErrNoClosingValues)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "insira pelo menos um valor", verr.Message)
}

func TestClosingForm_EditedValue(t *testing.T) {
	form := NewClosingForm(money.BRL, api.ClosingData{})
	require.NoError(t, form.SetValue(api.PaymentDebit, "12345"))
	assert.Error(t, form.SetValue("boleto", "1"))

	req, err := form.Validate()
	require.NoError(t, err)
	assert.True(t, req.Values.Debit.Equal(dec("123.45")))
}

func TestClosingForm_NegativeExpectedKeepsSign(t *testing.T) {
	data := api.ClosingData{ExpectedBalance: api.Balances{Cash: dec("-20"), Pix: dec("30")}}
	form := NewClosingForm(money.BRL, data)
	assert.Equal(t, "-20,00", form.Values[api.PaymentCash])

	_, err := form.Validate()
	assert.ErrorIs(t, err, ErrNegativeAmount)

	require.NoError(t, form.SetValue(api.PaymentCash, "0"))
	req, err := form.Validate()
	require.NoError(t, err)
	assert.True(t, req.Values.Cash.IsZero())
	assert.True(t, req.Values.Pix.Equal(dec("30")))
}

func TestOpenForm_NegativeMaskedAmountRejected(t *testing.T) {
	form := NewOpenForm(money.BRL)
	form.InitialAmount = money.MaskDecimal(dec("-200"))
	form.CashLimit = "300,00"
	assert.False(t, form.CanSubmit())

	_, err := form.Validate()
	assert.ErrorIs(t, err, ErrAmountNotPositive)
}
