package api

import (
	"context"
	"fmt"
	"net/http"
)

func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var resp []Notification
	if err := c.doGet(ctx, "/api/notifications", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) PaymentNotifications(ctx context.Context) ([]PaymentNotification, error) {
	var resp []PaymentNotification
	if err := c.doGet(ctx, "/api/payments/notifications", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// DownloadReport fetches the raw report blob.
func (c *Client) DownloadReport(ctx context.Context, reportType, period string) ([]byte, error) {
	req, err := c.authed(ctx, nil)
	if err != nil {
		return nil, err
	}
	req.SetHeader("Accept", "text/csv, application/octet-stream").
		SetQueryParams(map[string]string{"type": reportType, "period": period})

	resp, err := req.Execute(http.MethodGet, "/api/reports")
	if err != nil {
		return nil, fmt.Errorf("pos request: %w", err)
	}
	if resp.IsError() {
		return nil, apiErrorFromResponse(resp)
	}
	return resp.Body(), nil
}
