package api

import (
	"context"
	"fmt"
	"net/http"
)

// Login and Register are the only calls made without a bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (AuthResponse, error) {
	var resp AuthResponse
	req := c.request(ctx, &resp).
		SetHeader("Content-Type", "application/json").
		SetBody(creds)
	if err := c.send(req, http.MethodPost, "/api/auth/login"); err != nil {
		return AuthResponse{}, err
	}
	if resp.Token == "" {
		return AuthResponse{}, fmt.Errorf("login: %w", ErrMissingToken)
	}
	return resp, nil
}

func (c *Client) Register(ctx context.Context, in RegisterAccountRequest) (AuthResponse, error) {
	var resp AuthResponse
	req := c.request(ctx, &resp).
		SetHeader("Content-Type", "application/json").
		SetBody(in)
	if err := c.send(req, http.MethodPost, "/api/auth/register"); err != nil {
		return AuthResponse{}, err
	}
	return resp, nil
}
