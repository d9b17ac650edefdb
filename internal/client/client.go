// Package client talks to the activities API on behalf of the roster view.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Shivanand-hulikatti/activity-signup/internal/model"
)

const maxResponseBytes = 4 << 20

// APIError is a non-2xx answer from the activities API. Detail holds the
// server's "detail" string and is empty when the body carried none.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("activities api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("activities api: status %d: %s", e.StatusCode, e.Detail)
}

// Client is an HTTP client for the activities API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the API rooted at baseURL. A nil httpClient
// gets a default client with a 15 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// ListActivities fetches the activity collection in server order.
func (c *Client) ListActivities(ctx context.Context) (model.Activities, error) {
	body, err := c.do(ctx, http.MethodGet, "/activities", nil)
	if err != nil {
		return nil, err
	}
	var activities model.Activities
	if err := json.Unmarshal(body, &activities); err != nil {
		return nil, fmt.Errorf("decode activities: %w", err)
	}
	return activities, nil
}

// Signup registers email for activity and returns the server's message.
func (c *Client) Signup(ctx context.Context, activity, email string) (string, error) {
	path := "/activities/" + url.PathEscape(activity) + "/signup?" +
		url.Values{"email": {email}}.Encode()
	body, err := c.do(ctx, http.MethodPost, path, nil)
	if err != nil {
		return "", err
	}
	var resp model.SignupResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decode signup response: %w", err)
	}
	return resp.Message, nil
}

// Unregister removes participant from activity. Any success body is ignored.
func (c *Client) Unregister(ctx context.Context, activity, participant string) error {
	payload, err := json.Marshal(model.UnregisterRequest{Email: participant})
	if err != nil {
		return fmt.Errorf("encode unregister request: %w", err)
	}
	path := "/activities/" + url.PathEscape(activity) + "/unregister"
	_, err = c.do(ctx, http.MethodPost, path, payload)
	return err
}

// do sends one request. Transport failures come back wrapped; non-2xx
// statuses come back as *APIError.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	if gjson.ValidBytes(body) {
		if d := gjson.GetBytes(body, "detail"); d.Type == gjson.String {
			apiErr.Detail = d.String()
		}
	}
	return apiErr
}
