package cashregister

import (
	"context"
	"errors"
	"testing"
	"time"

	"caixa/internal/api"
	"caixa/internal/config"
	"caixa/internal/money"
	"caixa/internal/testutil/fakeapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type countingStats struct{ calls int }

func (s *countingStats) Invalidate(context.Context) error {
	s.calls++
	return nil
}

func newController(t *testing.T) (*Controller, *fakeapi.Server, *countingStats) {
	srv := fakeapi.New()
	t.Cleanup(srv.Close)
	logger := zaptest.NewLogger(t)
	client := api.NewClient(config.Config{APIURL: srv.URL, Token: fakeapi.Token, Timeout: 5 * time.Second}, logger)
	stats := &countingStats{}
	return NewController(client, stats, money.BRL, logger), srv, stats
}

func TestController_Lifecycle(t *testing.T) {
	ctrl, srv, stats := newController(t)
	ctx := context.Background()

	state, err := ctrl.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateClosed, state)

	open := ctrl.NewOpenForm()
	open.SetInitialAmount("20000")
	open.SetCashLimit("30000")
	require.NoError(t, ctrl.Open(ctx, open))
	assert.False(t, open.InFlight)
	assert.Equal(t, StateOpen, ctrl.State())
	require.NotNil(t, ctrl.Register())
	assert.True(t, ctrl.Register().CurrentAmount.Equal(dec("200")))

	assert.ErrorIs(t, ctrl.Open(ctx, open), ErrAlreadyOpen)

	w, err := ctrl.NewWithdrawalForm()
	require.NoError(t, err)
	w.SetAmount("5000")
	w.SetReason("depósito")
	tx, err := ctrl.Withdraw(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, api.TransactionWithdrawal, tx.Type)
	assert.True(t, ctrl.Register().CurrentAmount.Equal(dec("150")))
	assert.Equal(t, 1, stats.calls)

	closing, err := ctrl.NewClosingForm(ctx)
	require.NoError(t, err)
	assert.Equal(t, "150,00", closing.Values[api.PaymentCash])
	assert.True(t, closing.Data.TotalWithdrawals.Equal(dec("50")))

	closed, err := ctrl.Close(ctx, closing)
	require.NoError(t, err)
	assert.Equal(t, api.RegisterClosed, closed.Status)
	assert.True(t, closed.Consistent())
	assert.Equal(t, StateClosed, ctrl.State())
	assert.Nil(t, ctrl.Register())
	assert.Nil(t, srv.Register())
	assert.Len(t, ctrl.History(), 1)
	assert.Equal(t, 2, stats.calls)
}

func TestController_OpenRejectedLocally(t *testing.T) {
	ctrl, srv, _ := newController(t)
	ctx := context.Background()

	form := ctrl.NewOpenForm()
	form.InitialAmount = "dez reais"
	form.CashLimit = "100,00"
	err := ctrl.Open(ctx, form)
	assert.ErrorIs(t, err, ErrMalformedAmount)
	assert.Zero(t, srv.Hits("POST", "/api/cash-register"))
}

func TestController_StaleSnapshotIsRejectedByServer(t *testing.T) {
	ctrl, _, _ := newController(t)
	ctx := context.Background()

	open := ctrl.NewOpenForm()
	open.SetInitialAmount("10000")
	open.SetCashLimit("10000")
	require.NoError(t, ctrl.Open(ctx, open))

	first, err := ctrl.NewWithdrawalForm()
	require.NoError(t, err)
	second, err := ctrl.NewWithdrawalForm()
	require.NoError(t, err)

	first.SetAmount("8000")
	first.SetReason("banco")
	_, err = ctrl.Withdraw(ctx, first)
	require.NoError(t, err)

	// second still believes 100,00 is in the drawer
	second.SetAmount("8000")
	second.SetReason("banco")
	_, err = ctrl.Withdraw(ctx, second)
	assert.ErrorIs(t, err, api.ErrInvalidInput)
	assert.Equal(t, "saldo insuficiente", api.ServerMessage(err))
}

func TestController_RequiresOpenRegister(t *testing.T) {
	ctrl, _, _ := newController(t)
	ctx := context.Background()

	_, err := ctrl.NewWithdrawalForm()
	assert.ErrorIs(t, err, ErrNotOpen)
	_, err = ctrl.NewClosingForm(ctx)
	assert.ErrorIs(t, err, ErrNotOpen)
	_, err = ctrl.Close(ctx, NewClosingForm(money.BRL, api.ClosingData{}))
	assert.ErrorIs(t, err, ErrNotOpen)
}

type failingBackend struct {
	Backend
}

func (failingBackend) CashRegisterStatus(context.Context) (api.CashRegisterStatus, error) {
	return api.CashRegisterStatus{}, errors.New("connection refused")
}

func TestController_RefreshFailureKeepsState(t *testing.T) {
	ctrl, _, _ := newController(t)
	ctx := context.Background()

	open := ctrl.NewOpenForm()
	open.SetInitialAmount("10000")
	open.SetCashLimit("10000")
	require.NoError(t, ctrl.Open(ctx, open))

	ctrl.backend = failingBackend{Backend: ctrl.backend}
	state, err := ctrl.Refresh(ctx)
	assert.Error(t, err)
	assert.Equal(t, StateOpen, state)
	assert.NotNil(t, ctrl.Register())
}

func TestController_OverLimit(t *testing.T) {
	ctrl := &Controller{}
	assert.False(t, ctrl.OverLimit())

	ctrl.register = &api.CashRegister{CurrentAmount: dec("600"), CashLimit: dec("500")}
	assert.True(t, ctrl.OverLimit())
	ctrl.register.CurrentAmount = dec("500")
	assert.False(t, ctrl.OverLimit())
}
