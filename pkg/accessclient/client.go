// Package accessclient is a Go client for the access request JSON API.
package accessclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultRetryAttempts = 3
	DefaultRetryDelay    = 500 * time.Millisecond
	defaultTimeout       = 15 * time.Second
)

type Options struct {
	BaseURL       string
	AccessToken   string
	DeviceID      string
	HTTPClient    *http.Client
	RetryAttempts int
	RetryDelay    time.Duration
}

type Client struct {
	baseURL       string
	accessToken   string
	deviceID      string
	httpClient    *http.Client
	retryAttempts int
	retryDelay    time.Duration
	sleep         func(ctx context.Context, d time.Duration) error
}

// Error is a non-2xx API response.
type Error struct {
	StatusCode int
	Message    string
	Errors     []FieldError
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("access api: %d %s", e.StatusCode, e.Message)
}

// Retryable reports whether the request may succeed when sent again.
func (e *Error) Retryable() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

func New(opts Options) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = DefaultRetryAttempts
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}

	return &Client{
		baseURL:       strings.TrimRight(opts.BaseURL, "/") + "/api/v1",
		accessToken:   opts.AccessToken,
		deviceID:      opts.DeviceID,
		httpClient:    opts.HTTPClient,
		retryAttempts: opts.RetryAttempts,
		retryDelay:    opts.RetryDelay,
		sleep:         sleepContext,
	}
}

// SaveMember submits the access request, creating it when input.ID is nil. Transport
// failures and 5xx responses are retried with a linear backoff; 4xx responses are not.
func (c *Client) SaveMember(ctx context.Context, input *SaveMemberInput) (*Member, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}

	method, path := http.MethodPost, "/members"
	if input.ID != nil {
		method, path = http.MethodPut, "/members/"+input.ID.String()
	}

	var member Member
	var lastErr error
	for attempt := 1; attempt <= c.retryAttempts; attempt++ {
		lastErr = c.do(ctx, method, path, body, &member)
		if lastErr == nil {
			return &member, nil
		}
		if !retryable(lastErr) || attempt == c.retryAttempts {
			break
		}
		if err := c.sleep(ctx, time.Duration(attempt)*c.retryDelay); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

func (c *Client) SearchMembers(ctx context.Context, lastName, email string) (*SearchResult, error) {
	q := url.Values{}
	if lastName != "" {
		q.Set("last_name", lastName)
	}
	if email != "" {
		q.Set("email", email)
	}

	path := "/members/search"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var result SearchResult
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetMember(ctx context.Context, id uuid.UUID) (*Member, error) {
	var member Member
	if err := c.do(ctx, http.MethodGet, "/members/"+id.String(), nil, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

func (c *Client) DeleteMember(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/members/"+id.String(), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, dest any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	if c.deviceID != "" {
		req.Header.Set("X-Device-ID", c.deviceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload struct {
			Message string       `json:"message"`
			Errors  []FieldError `json:"errors"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Message != "" {
			apiErr.Message = payload.Message
			apiErr.Errors = payload.Errors
		}
		return apiErr
	}

	if dest == nil {
		return nil
	}

	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return json.Unmarshal(envelope.Data, dest)
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	// transport failure
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
