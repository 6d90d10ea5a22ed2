package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/fleety/fleetyctl/internal/errors"
)

// TokenSource yields the current credential token, or "" when no session is
// active. It is consulted on every request rather than captured once, so a
// logout or token refresh is reflected immediately.
type TokenSource func() string

// Client is the Fleety platform API client
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	tokens     TokenSource
}

// NewClient creates a new platform API client
func NewClient(baseURL string, tokens TokenSource) *Client {
	if tokens == nil {
		tokens = func() string { return "" }
	}
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tokens: tokens,
	}
}

// WithTimeout sets a custom timeout for remote calls
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.HTTPClient.Timeout = timeout
	return c
}

// doRequest performs an HTTP request with authentication
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRequestFailed, "failed to marshal request body", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRequestFailed, "failed to create request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	// Per-request id for correlating client logs with service logs
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.tokens(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, errors.Wrap(errors.ErrCodeRequestTimeout, "request timed out", err).
				WithSuggestion("Check connectivity to " + c.BaseURL).
				WithSuggestion("Raise request_timeout in the config file if the service is slow")
		}
		return nil, errors.Wrap(errors.ErrCodeRequestFailed, "request could not complete", err).
			WithSuggestion("Check connectivity to " + c.BaseURL)
	}

	return resp, nil
}

func isTimeout(err error) bool {
	type timeout interface{ Timeout() bool }
	for e := err; e != nil; e = unwrapOnce(e) {
		if te, ok := e.(timeout); ok && te.Timeout() {
			return true
		}
	}
	return false
}

func unwrapOnce(err error) error {
	u, ok := err.(interface{ Unwrap() error })
	if !ok {
		return nil
	}
	return u.Unwrap()
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// parseResponse parses the response body into the target struct
//
// Non-2xx statuses become remote errors carrying the service-provided
// message; an unreadable success body is a transport error, since the request
// outcome is then unknown to the caller.
func parseResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)

		message := "request failed with status " + resp.Status
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil {
			if errResp.Error != "" {
				message = errResp.Error
			} else if errResp.Message != "" {
				message = errResp.Message
			}
		}

		return errors.New(remoteCode(resp.StatusCode), message)
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return errors.Wrap(errors.ErrCodeBadResponseBody, "failed to decode response", err)
		}
	}

	return nil
}

// remoteCode maps an HTTP status to one of the remote error codes
func remoteCode(status int) errors.ErrorCode {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.ErrCodeUnauthorized
	case http.StatusNotFound:
		return errors.ErrCodeRemoteNotFound
	case http.StatusConflict:
		return errors.ErrCodeRemoteDuplicate
	default:
		return errors.ErrCodeRemoteRejected
	}
}
