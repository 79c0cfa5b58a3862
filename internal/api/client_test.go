package api_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"caixa/internal/api"
	"caixa/internal/config"
	"caixa/internal/testutil/fakeapi"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newClient(t *testing.T, url, token string) *api.Client {
	t.Helper()
	cfg := config.Config{APIURL: url, Token: token, Timeout: 5 * time.Second}
	return api.NewClient(cfg, zaptest.NewLogger(t))
}

func TestClient_MissingToken(t *testing.T) {
	srv := fakeapi.New()
	defer srv.Close()

	client := newClient(t, srv.URL, "")
	_, err := client.CashRegisterStatus(context.Background())
	assert.ErrorIs(t, err, api.ErrMissingToken)
	assert.Zero(t, srv.Hits(http.MethodGet, "/api/cash-register"))
}

func TestClient_ErrorMapping(t *testing.T) {
	srv := fakeapi.New()
	defer srv.Close()

	client := newClient(t, srv.URL, "bogus")
	_, err := client.CashRegisterStatus(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Equal(t, "token inválido", api.ServerMessage(err))

	client.SetToken(fakeapi.Token)
	_, err = client.ClosingData(context.Background())
	assert.ErrorIs(t, err, api.ErrNotFound)

	_, err = client.OpenCashRegister(context.Background(), api.OpenRegisterRequest{
		InitialAmount: decimal.NewFromInt(100),
		CashLimit:     decimal.NewFromInt(500),
	})
	require.NoError(t, err)
	_, err = client.OpenCashRegister(context.Background(), api.OpenRegisterRequest{
		InitialAmount: decimal.NewFromInt(100),
		CashLimit:     decimal.NewFromInt(500),
	})
	assert.ErrorIs(t, err, api.ErrConflict)
}

func TestClient_RetriesOnlyReads(t *testing.T) {
	var gets, posts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			gets.Add(1)
		case http.MethodPost:
			posts.Add(1)
		}
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, "tok")
	_, err := client.DailySalesStats(context.Background())
	assert.ErrorIs(t, err, api.ErrRateLimited)
	assert.EqualValues(t, 2, gets.Load())

	_, err = client.AddTransaction(context.Background(), api.TransactionRequest{Type: api.TransactionWithdrawal, Amount: decimal.NewFromInt(1), Reason: "x"})
	assert.ErrorIs(t, err, api.ErrRateLimited)
	assert.EqualValues(t, 1, posts.Load())
}

func TestClient_DecimalsTravelAsNumbers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(r.Body)
		assert.JSONEq(t, `{"initialAmount":150.5,"cashLimit":1000}`, buf.String())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"r1","status":"open","initialAmount":150.5,"currentAmount":150.5,"cashLimit":1000}`))
	}))
	defer srv.Close()

	client := newClient(t, srv.URL, "tok")
	reg, err := client.OpenCashRegister(context.Background(), api.OpenRegisterRequest{
		InitialAmount: decimal.RequireFromString("150.50"),
		CashLimit:     decimal.NewFromInt(1000),
	})
	require.NoError(t, err)
	assert.True(t, reg.InitialAmount.Equal(decimal.RequireFromString("150.5")))
}

func TestClient_SaleIdempotency(t *testing.T) {
	srv := fakeapi.New()
	defer srv.Close()
	ctx := context.Background()
	client := newClient(t, srv.URL, fakeapi.Token)

	_, err := client.OpenCashRegister(ctx, api.OpenRegisterRequest{InitialAmount: decimal.NewFromInt(50), CashLimit: decimal.NewFromInt(300)})
	require.NoError(t, err)

	req := api.CreateSaleRequest{
		Items:         []api.SaleItem{{ProductID: "p1", Name: "Arroz", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(20), Total: decimal.NewFromInt(20)}},
		PaymentMethod: api.PaymentCash,
		Total:         decimal.NewFromInt(20),
	}
	first, err := client.CreateSale(ctx, req, "k-1")
	require.NoError(t, err)
	second, err := client.CreateSale(ctx, req, "k-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	sales, err := client.ListSales(ctx, api.SalesQuery{})
	require.NoError(t, err)
	assert.Len(t, sales, 1)
}

func TestClient_DownloadReport(t *testing.T) {
	srv := fakeapi.New()
	defer srv.Close()

	client := newClient(t, srv.URL, fakeapi.Token)
	blob, err := client.DownloadReport(context.Background(), "sales", "monthly")
	require.NoError(t, err)
	assert.Equal(t, "type,period\nsales,monthly\n", string(blob))
}

func TestCashRegister_Consistent(t *testing.T) {
	now := time.Now()
	open := api.CashRegister{Status: api.RegisterOpen}
	assert.True(t, open.Consistent())

	closed := api.CashRegister{Status: api.RegisterClosed, ClosedAt: &now, FinalAmounts: &api.Balances{}}
	assert.True(t, closed.Consistent())

	broken := api.CashRegister{Status: api.RegisterClosed, ClosedAt: &now}
	assert.False(t, broken.Consistent())
}
