package api

import (
	"context"
	"encoding/json"
	"net/http"

	"bundlehub-client/internal/model"
)

// Register creates an account and stores the returned access token.
func (c *Client) Register(ctx context.Context, reg model.Registration) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/register", reg, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken != "" {
		c.tokens.Set(ctx, resp.AccessToken)
	}
	return &resp, nil
}

// Login authenticates and stores the returned access token.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/login", creds, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken != "" {
		c.tokens.Set(ctx, resp.AccessToken)
	}
	return &resp, nil
}

// Logout invalidates the session server-side and clears the stored token.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doJSON(ctx, http.MethodPost, "/api/logout", nil, nil); err != nil {
		return err
	}
	c.tokens.Clear(ctx)
	return nil
}

// TryRefresh attempts a silent token refresh using the refresh cookie.
// Used at startup when no access token is held. Never returns an error;
// a failed refresh simply leaves the client unauthenticated.
func (c *Client) TryRefresh(ctx context.Context) bool {
	return c.refresh(ctx) != ""
}

// Me fetches the current identity. The backend wraps the user in an array;
// the first element is used.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/api/user", nil, &raw); err != nil {
		return nil, err
	}

	var users []model.User
	if err := json.Unmarshal(raw, &users); err == nil {
		if len(users) == 0 {
			return nil, nil
		}
		return &users[0], nil
	}

	var user model.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
