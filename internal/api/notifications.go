package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/TheRealCocky/Leilao-client/internal/notify"
)

// ErrMissingNotificationID is returned before any network call when a
// notification id is required but empty.
var ErrMissingNotificationID = errors.New("notification id is required")

// NotificationsByUser returns the stored notification history for a user.
func (c *Client) NotificationsByUser(ctx context.Context, userID string) ([]notify.Notification, error) {
	var notifications []notify.Notification
	if err := c.do(ctx, http.MethodGet, "/notifications/user/"+userID, nil, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkNotificationRead flags a notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) (*notify.Notification, error) {
	if id == "" {
		return nil, ErrMissingNotificationID
	}
	var n notify.Notification
	if err := c.do(ctx, http.MethodPatch, "/notifications/"+id+"/read", nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// CreateNotification posts a notification for a user. Normally the backend
// emits notifications itself; this mirrors the admin surface it exposes.
func (c *Client) CreateNotification(ctx context.Context, userID, message string) (*notify.Notification, error) {
	body := map[string]string{"userId": userID, "message": message}
	var n notify.Notification
	if err := c.do(ctx, http.MethodPost, "/notifications", body, &n); err != nil {
		return nil, err
	}
	return &n, nil
}
