package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"caixa/internal/config"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

var (
	ErrMissingToken = errors.New("pos token is required")
	ErrUnauthorized = errors.New("pos unauthorized")
	ErrRateLimited  = errors.New("pos rate limited")
	ErrNotFound     = errors.New("pos resource not found")
	ErrConflict     = errors.New("pos conflict")
	ErrInvalidInput = errors.New("pos rejected input")
)

func init() {
	// The API speaks JSON numbers for money.
	decimal.MarshalJSONWithoutQuotes = true
}

type APIError struct {
	StatusCode int
	Status     string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("pos api error: %s: %s", e.Status, e.Message)
	case e.Body != "":
		return fmt.Sprintf("pos api error: %s: %s", e.Status, e.Body)
	default:
		return fmt.Sprintf("pos api error: %s", e.Status)
	}
}

type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

func NewClient(cfg config.Config, logger *zap.Logger) *Client {
	logger = logger.Named("api")

	httpClient := resty.New().
		SetBaseURL(cfg.APIURL).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(1).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			// Only reads are replayed; a repeated sale or withdrawal is not harmless.
			if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
				return false
			}
			if err != nil {
				return true
			}
			return resp.StatusCode() == http.StatusTooManyRequests
		}).
		OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			if req.Header.Get(requestIDHeader) == "" {
				req.SetHeader(requestIDHeader, uuid.NewString())
			}
			return nil
		}).
		OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			logger.Debug("api response",
				zap.String("method", resp.Request.Method),
				zap.String("url", resp.Request.URL),
				zap.Int("status", resp.StatusCode()),
				zap.Duration("elapsed", resp.Time()),
			)
			return nil
		})

	c := &Client{
		http:   httpClient,
		logger: logger,
	}
	c.SetToken(cfg.Token)
	return c
}

// SetToken replaces the bearer token used by every subsequent request.
func (c *Client) SetToken(token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		c.http.SetAuthToken("")
		return
	}
	c.http.SetAuthScheme("Bearer")
	c.http.SetAuthToken(token)
}

func (c *Client) HasToken() bool {
	return strings.TrimSpace(c.http.Token) != ""
}

func (c *Client) request(ctx context.Context, result any) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if result != nil {
		req.SetResult(result)
	}
	return req
}

func (c *Client) authed(ctx context.Context, result any) (*resty.Request, error) {
	if !c.HasToken() {
		return nil, ErrMissingToken
	}
	return c.request(ctx, result), nil
}

func (c *Client) doGet(ctx context.Context, path string, query map[string]string, result any) error {
	req, err := c.authed(ctx, result)
	if err != nil {
		return err
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	return c.send(req, http.MethodGet, path)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, result any) error {
	req, err := c.authed(ctx, result)
	if err != nil {
		return err
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	return c.send(req, method, path)
}

func (c *Client) send(req *resty.Request, method, path string) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("pos request: %w", err)
	}
	if resp.IsError() {
		apiErr := apiErrorFromResponse(resp)
		c.logger.Warn("api error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode()),
			zap.Error(apiErr),
		)
		return apiErr
	}
	return nil
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func apiErrorFromResponse(resp *resty.Response) error {
	body := strings.TrimSpace(resp.String())
	apiErr := &APIError{
		StatusCode: resp.StatusCode(),
		Status:     resp.Status(),
		Body:       body,
	}

	var parsed errorBody
	if json.Unmarshal(resp.Body(), &parsed) == nil {
		apiErr.Message = strings.TrimSpace(parsed.Message)
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(parsed.Error)
		}
	}

	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrUnauthorized, apiErr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", ErrRateLimited, apiErr)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, apiErr)
	case http.StatusConflict:
		return fmt.Errorf("%w: %w", ErrConflict, apiErr)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %w", ErrInvalidInput, apiErr)
	default:
		return apiErr
	}
}

// ServerMessage extracts the human message the API attached to err, if any.
func ServerMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
