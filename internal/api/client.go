package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"bundlehub-client/internal/session"
	"bundlehub-client/pkg/apierror"

	"go.uber.org/zap"
)

const refreshPath = "/api/refresh"

// Client talks to the storefront backend. Every request carries the bearer
// access token when one is held; the cookie jar carries the long-lived
// refresh cookie on every call, since the refresh path depends on it.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  *session.Store
	log     *zap.Logger
}

// New creates a backend client with a cookie jar for the refresh credential.
func New(baseURL string, timeout time.Duration, tokens *session.Store, log *zap.Logger) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		tokens: tokens,
		log:    log,
	}, nil
}

// do issues a request with the current bearer token attached. On a 401 it
// performs exactly one silent refresh against the refresh endpoint and
// reissues the original request once with the new token. If the refresh
// fails or yields no token, the original 401 response is returned unmodified.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	resp, err := c.send(ctx, method, path, payload, c.tokens.Get())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	newToken := c.refresh(ctx)
	if newToken == "" {
		return resp, nil
	}

	c.log.Debug("retrying request with refreshed token",
		zap.String("method", method), zap.String("path", path))
	resp.Body.Close()
	return c.send(ctx, method, path, payload, newToken)
}

// send issues a single request. No retry logic lives here.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	return resp, nil
}

// refresh mints a new access token using only the refresh cookie, storing it
// on success. All failures, network included, are swallowed and reported as
// "" so the caller falls through to the original 401.
func (c *Client) refresh(ctx context.Context) string {
	resp, err := c.send(ctx, http.MethodPost, refreshPath, nil, "")
	if err != nil {
		c.log.Warn("token refresh failed", zap.Error(err))
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ""
	}

	var result struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.log.Warn("token refresh returned malformed body", zap.Error(err))
		return ""
	}
	if result.AccessToken == "" {
		return ""
	}

	c.tokens.Set(ctx, result.AccessToken)
	return result.AccessToken
}

// doJSON issues a request and decodes a 2xx body into out. Non-2xx statuses
// become a typed *apierror.Error.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apierror.FromResponse(resp.StatusCode, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
