package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

type PayableQuery struct {
	Month  time.Time
	Status string // "paid", "pending" or empty for both
	Type   PayableType
}

func (q PayableQuery) params() map[string]string {
	params := map[string]string{}
	if !q.Month.IsZero() {
		params["month"] = q.Month.Format("2006-01")
	}
	if q.Status != "" {
		params["status"] = q.Status
	}
	if q.Type != "" {
		params["type"] = string(q.Type)
	}
	return params
}

func (c *Client) ListPayables(ctx context.Context, q PayableQuery) ([]AccountPayable, error) {
	var resp []AccountPayable
	if err := c.doGet(ctx, "/api/accounts-payable", q.params(), &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) CreatePayable(ctx context.Context, in PayableInput) ([]AccountPayable, error) {
	// Installment entries come back as the whole generated chain.
	var resp []AccountPayable
	if err := c.doJSON(ctx, http.MethodPost, "/api/accounts-payable", in, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) UpdatePayable(ctx context.Context, id string, in PayableInput) (AccountPayable, error) {
	path, err := itemPath("/api/accounts-payable", id)
	if err != nil {
		return AccountPayable{}, err
	}
	var resp AccountPayable
	if err := c.doJSON(ctx, http.MethodPut, path, in, &resp); err != nil {
		return AccountPayable{}, err
	}
	return resp, nil
}

func (c *Client) DeletePayable(ctx context.Context, id string) error {
	path, err := itemPath("/api/accounts-payable", id)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) PayableMonthlyStats(ctx context.Context, month time.Time) (MonthlyStats, error) {
	var resp MonthlyStats
	query := map[string]string{}
	if !month.IsZero() {
		query["month"] = month.Format("2006-01")
	}
	if err := c.doGet(ctx, "/api/accounts-payable/monthly-stats", query, &resp); err != nil {
		return MonthlyStats{}, err
	}
	return resp, nil
}

// Installments returns every installment of the plan keyed by id, paid ones
// included.
func (c *Client) Installments(ctx context.Context, id string) ([]AccountPayable, error) {
	path, err := itemPath("/api/accounts-payable/installments", id)
	if err != nil {
		return nil, err
	}
	var resp []AccountPayable
	if err := c.doGet(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) MarkPayableAsPaid(ctx context.Context, id string) (AccountPayable, error) {
	if strings.TrimSpace(id) == "" {
		return AccountPayable{}, errors.New("id is required")
	}
	var resp AccountPayable
	if err := c.doJSON(ctx, http.MethodPut, "/api/accounts-payable/mark-as-paid", markAsPaidRequest{ID: id}, &resp); err != nil {
		return AccountPayable{}, err
	}
	return resp, nil
}
