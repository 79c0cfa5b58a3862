package api

import (
	"context"
	"net/http"
	"strings"
	"time"
)

type SalesQuery struct {
	From          time.Time
	To            time.Time
	PaymentMethod PaymentMethod
}

func (q SalesQuery) params() map[string]string {
	params := map[string]string{}
	if !q.From.IsZero() {
		params["startDate"] = q.From.Format(time.DateOnly)
	}
	if !q.To.IsZero() {
		params["endDate"] = q.To.Format(time.DateOnly)
	}
	if q.PaymentMethod != "" {
		params["paymentMethod"] = string(q.PaymentMethod)
	}
	return params
}

func (c *Client) ListSales(ctx context.Context, q SalesQuery) ([]Sale, error) {
	var resp []Sale
	if err := c.doGet(ctx, "/api/sales", q.params(), &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateSale posts one sale. idempotencyKey lets the server drop a
// duplicate submit of the same cart.
func (c *Client) CreateSale(ctx context.Context, req CreateSaleRequest, idempotencyKey string) (Sale, error) {
	var resp Sale
	r, err := c.authed(ctx, &resp)
	if err != nil {
		return Sale{}, err
	}
	if key := strings.TrimSpace(idempotencyKey); key != "" {
		r.SetHeader("Idempotency-Key", key)
	}
	r.SetHeader("Content-Type", "application/json").SetBody(req)
	if err := c.send(r, http.MethodPost, "/api/sales"); err != nil {
		return Sale{}, err
	}
	return resp, nil
}

func (c *Client) DailySalesStats(ctx context.Context) (DailySalesStats, error) {
	var resp DailySalesStats
	if err := c.doGet(ctx, "/api/sales/stats/daily", nil, &resp); err != nil {
		return DailySalesStats{}, err
	}
	return resp, nil
}
