package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// ErrNoToken indicates a login response that carried neither known token
// shape. It is treated as a login failure.
var ErrNoToken = errors.New("no access token in login response")

// User is the backend's user representation.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// UnmarshalJSON normalizes the dual identity shape (`id` or `_id`).
func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	aux := struct {
		*alias
		ID    string `json:"id"`
		AltID string `json:"_id"`
	}{alias: (*alias)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	u.ID = aux.ID
	if u.ID == "" {
		u.ID = aux.AltID
	}
	return nil
}

// RegisterRequest is the payload for account creation. Role is optional;
// the backend defaults it to BUYER.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for an access token. The backend has shipped
// two response shapes ({access_token} and {token:{access_token}}); both are
// accepted.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	var resp struct {
		AccessToken string `json:"access_token"`
		Token       *struct {
			AccessToken string `json:"access_token"`
		} `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return "", err
	}

	token := resp.AccessToken
	if token == "" && resp.Token != nil {
		token = resp.Token.AccessToken
	}
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
