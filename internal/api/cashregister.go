package api

import (
	"context"
	"net/http"
	"time"
)

func (c *Client) CashRegisterStatus(ctx context.Context) (CashRegisterStatus, error) {
	var resp CashRegisterStatus
	if err := c.doGet(ctx, "/api/cash-register", nil, &resp); err != nil {
		return CashRegisterStatus{}, err
	}
	return resp, nil
}

func (c *Client) OpenCashRegister(ctx context.Context, req OpenRegisterRequest) (CashRegister, error) {
	var resp CashRegister
	if err := c.doJSON(ctx, http.MethodPost, "/api/cash-register", req, &resp); err != nil {
		return CashRegister{}, err
	}
	return resp, nil
}

func (c *Client) AddTransaction(ctx context.Context, req TransactionRequest) (Transaction, error) {
	var resp Transaction
	if err := c.doJSON(ctx, http.MethodPost, "/api/cash-register/transaction", req, &resp); err != nil {
		return Transaction{}, err
	}
	return resp, nil
}

// DailyCashRegisters lists every register opened on day (local date).
func (c *Client) DailyCashRegisters(ctx context.Context, day time.Time) ([]CashRegister, error) {
	var resp []CashRegister
	query := map[string]string{}
	if !day.IsZero() {
		query["date"] = day.Format(time.DateOnly)
	}
	if err := c.doGet(ctx, "/api/cash-register/daily", query, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) ClosingData(ctx context.Context) (ClosingData, error) {
	var resp ClosingData
	if err := c.doGet(ctx, "/api/cash-register/closing-data", nil, &resp); err != nil {
		return ClosingData{}, err
	}
	return resp, nil
}

func (c *Client) CloseCashRegister(ctx context.Context, req CloseRegisterRequest) (CashRegister, error) {
	var resp CashRegister
	if err := c.doJSON(ctx, http.MethodPost, "/api/cash-register/close", req, &resp); err != nil {
		return CashRegister{}, err
	}
	return resp, nil
}

// VerifyPassword checks the dashboard PIN. Only an explicit isValid=true
// counts as success.
func (c *Client) VerifyPassword(ctx context.Context, pin string) (bool, error) {
	var resp verifyPasswordResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/verify-password", verifyPasswordRequest{Password: pin}, &resp); err != nil {
		return false, err
	}
	return resp.IsValid, nil
}
