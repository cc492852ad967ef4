package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/sandeepkv93/twodo/internal/model"
)

type successResponse struct {
	Success bool `json:"success"`
}

func (c *Client) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	const op = "list notifications"
	data, err := c.do(ctx, op, http.MethodGet, "/notifications", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Success       bool                 `json:"success"`
		Notifications []model.Notification `json:"notifications"`
	}
	if err := decode(op, data, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &model.NetworkError{Op: op, Err: errors.New("server reported failure")}
	}
	if out.Notifications == nil {
		out.Notifications = []model.Notification{}
	}
	return out.Notifications, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	return c.postAck(ctx, "mark notification read", "/notifications/"+url.PathEscape(id)+"/mark-read")
}

func (c *Client) ClearNotifications(ctx context.Context) error {
	return c.postAck(ctx, "clear notifications", "/notifications/clear")
}

func (c *Client) postAck(ctx context.Context, op, path string) error {
	data, err := c.do(ctx, op, http.MethodPost, path, nil)
	if err != nil {
		return err
	}
	var ack successResponse
	if err := decode(op, data, &ack); err != nil {
		return err
	}
	if !ack.Success {
		return &model.NetworkError{Op: op, Err: errors.New("server reported failure")}
	}
	return nil
}
