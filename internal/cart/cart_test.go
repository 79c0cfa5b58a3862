package cart

import (
	"context"
	"testing"
	"time"

	"caixa/internal/api"
	"caixa/internal/cashregister"
	"caixa/internal/config"
	"caixa/internal/money"
	"caixa/internal/testutil/fakeapi"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	arroz  = api.Product{ID: "p-1", Name: "Arroz 5kg", Price: decimal.RequireFromString("24.90")}
	queijo = api.Product{ID: "p-2", Name: "Queijo", Price: decimal.RequireFromString("39.99")}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCart_Totals(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(arroz, dec("2")))
	require.NoError(t, c.Add(queijo, dec("0.3456")))
	require.NoError(t, c.Add(arroz, dec("1")))

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.True(t, lines[0].Quantity.Equal(dec("3")))
	assert.Equal(t, "74.70", lines[0].Total().StringFixed(2))
	assert.True(t, lines[1].Quantity.Equal(dec("0.346")))
	assert.Equal(t, "13.84", lines[1].Total().StringFixed(2))
	assert.Equal(t, "88.54", c.Total().StringFixed(2))

	require.NoError(t, c.SetQuantity("p-2", decimal.Zero))
	assert.Len(t, c.Lines(), 1)
	assert.ErrorIs(t, c.Remove("p-9"), ErrUnknownLine)
	assert.ErrorIs(t, c.Add(arroz, dec("-1")), ErrBadQuantity)
}

func TestCart_RequestValidation(t *testing.T) {
	c := New()
	_, _, err := c.Request()
	assert.ErrorIs(t, err, ErrEmpty)

	require.NoError(t, c.Add(arroz, dec("1")))
	_, _, err = c.Request()
	assert.ErrorIs(t, err, ErrNoPaymentMethod)

	assert.ErrorIs(t, c.SetPaymentMethod("boleto"), ErrBadMethod)
	require.NoError(t, c.SetPaymentMethod(api.PaymentPix))
	req, key, err := c.Request()
	require.NoError(t, err)
	assert.NotEmpty(t, key)
	assert.Equal(t, api.PaymentPix, req.PaymentMethod)
	assert.Equal(t, "24.90", req.Total.StringFixed(2))
}

func TestCart_KeyStableUntilChange(t *testing.T) {
	c := New()
	require.NoError(t, c.Add(arroz, dec("1")))
	require.NoError(t, c.SetPaymentMethod(api.PaymentCash))

	_, k1, err := c.Request()
	require.NoError(t, err)
	_, k2, err := c.Request()
	require.NoError(t, err)
	assert.Equal(t, k1, k2)

	require.NoError(t, c.Add(queijo, dec("1")))
	_, k3, err := c.Request()
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)
}

func setupCheckout(t *testing.T) (*Checkout, *cashregister.Controller, *fakeapi.Server) {
	srv := fakeapi.New()
	t.Cleanup(srv.Close)
	logger := zaptest.NewLogger(t)
	client := api.NewClient(config.Config{APIURL: srv.URL, Token: fakeapi.Token, Timeout: 5 * time.Second}, logger)
	ctrl := cashregister.NewController(client, nil, money.BRL, logger)
	return NewCheckout(client, ctrl, logger), ctrl, srv
}

func TestCheckout_SubmitClearsOnSuccess(t *testing.T) {
	checkout, ctrl, srv := setupCheckout(t)
	ctx := context.Background()

	form := ctrl.NewOpenForm()
	form.SetInitialAmount("10000")
	require.NoError(t, ctrl.Open(ctx, form))

	c := New()
	require.NoError(t, c.Add(arroz, dec("2")))
	require.NoError(t, c.SetPaymentMethod(api.PaymentCash))

	sale, err := checkout.Submit(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, "49.80", sale.Total.StringFixed(2))
	assert.Empty(t, c.Lines())
	assert.Equal(t, 1, srv.Hits("POST", "/api/sales"))
	assert.Equal(t, "149.80", ctrl.Register().CurrentAmount.StringFixed(2))
}

func TestCheckout_FailureKeepsCart(t *testing.T) {
	checkout, _, srv := setupCheckout(t)

	c := New()
	require.NoError(t, c.Add(arroz, dec("1")))
	require.NoError(t, c.SetPaymentMethod(api.PaymentDebit))

	_, err := checkout.Submit(context.Background(), c)
	assert.ErrorIs(t, err, api.ErrConflict)
	assert.Len(t, c.Lines(), 1)
	assert.Equal(t, 1, srv.Hits("POST", "/api/sales"))
}

func TestCheckout_EmptyCartNeverPosts(t *testing.T) {
	checkout, _, srv := setupCheckout(t)

	_, err := checkout.Submit(context.Background(), New())
	assert.ErrorIs(t, err, ErrEmpty)
	assert.Zero(t, srv.Hits("POST", "/api/sales"))
}
