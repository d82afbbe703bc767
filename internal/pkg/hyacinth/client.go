package hyacinth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://us-central1-hyacinthattendance.cloudfunctions.net"

var (
	ErrRemoteFailure = errors.New("attendance api request failed")
	ErrMissingAPIKey = errors.New("attendance api key is not configured")
)

// envelope is the response shape of every endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client calls the attendance cloud functions. Requests are not retried.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetUsersByDepartment returns the raw user records of a department.
func (c *Client) GetUsersByDepartment(ctx context.Context, departmentID string) ([]map[string]any, error) {
	var data any
	if err := c.call(ctx, "getUsersByDepartment", map[string]any{"departmentId": departmentID}, &data); err != nil {
		return nil, err
	}
	return asRecords(data), nil
}

// GetUserSchedule returns the raw weekly schedule entries of a user.
func (c *Client) GetUserSchedule(ctx context.Context, userID string) ([]map[string]any, error) {
	var data any
	if err := c.call(ctx, "getUserSchedule", map[string]any{"userId": userID}, &data); err != nil {
		return nil, err
	}
	return asRecords(data), nil
}

// GetAttendanceLogs returns the raw logs of a user between two YYYY-MM-DD dates, inclusive.
func (c *Client) GetAttendanceLogs(ctx context.Context, userID, startDate, endDate string) ([]map[string]any, error) {
	var data any
	body := map[string]any{"userId": userID, "startDate": startDate, "endDate": endDate}
	if err := c.call(ctx, "getAttendanceLogs", body, &data); err != nil {
		return nil, err
	}
	return asRecords(data), nil
}

func (c *Client) call(ctx context.Context, endpoint string, body map[string]any, out any) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}
	body["apiKey"] = c.apiKey

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRemoteFailure, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return fmt.Errorf("%w: %s: reading body: %w", ErrRemoteFailure, endpoint, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: %s: status %d: invalid response body", ErrRemoteFailure, endpoint, resp.StatusCode)
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%w: %s: %s", ErrRemoteFailure, endpoint, msg)
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(env.Data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %s: invalid data: %w", ErrRemoteFailure, endpoint, err)
	}
	return nil
}

// asRecords accepts a bare array or an object wrapping one in items, users,
// results, logs or schedule.
func asRecords(v any) []map[string]any {
	var list []any
	switch t := v.(type) {
	case []any:
		list = t
	case map[string]any:
		for _, k := range []string{"items", "users", "results", "logs", "schedule"} {
			if arr, ok := t[k].([]any); ok {
				list = arr
				break
			}
		}
	}

	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
