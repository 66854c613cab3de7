package api

import (
	"context"
	"errors"
	"net/http"
)

// ErrMissingUserID is returned before any network call when a user id is
// required but empty.
var ErrMissingUserID = errors.New("user id is required")

// ListUsers returns all users. Admin surface.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser provisions an account directly on the users collection. Unlike
// Register this is an authenticated admin call, so roles other than the
// default are accepted.
func (c *Client) CreateUser(ctx context.Context, req RegisterRequest) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/users", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser returns one user by id.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, ErrMissingUserID
	}
	var user User
	if err := c.do(ctx, http.MethodGet, "/users/"+id, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
