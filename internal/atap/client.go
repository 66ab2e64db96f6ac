// Package atap wraps the remote Solar Atap content API. All persistence and
// token validation live behind that API; this client only shapes requests and
// absorbs the envelope and schema quirks of its responses.
package atap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to the remote content API. Public reads carry no credentials;
// mutating calls attach the bearer token supplied by the caller. Failures are
// surfaced to the immediate caller exactly once, with no retries.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
	}
}

// RequestError carries the status and body of a non-2xx response. Its message
// is shown to the operator verbatim, so it keeps the remote API's own wording.
type RequestError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Status, e.Body)
}

// request performs one call and returns the raw body. A 204 yields a nil body
// without parsing; any other non-2xx status becomes a *RequestError.
func (c *Client) request(ctx context.Context, method, path, token string, body interface{}, headers map[string]string) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if token != "" {
		req.SetAuthToken(token)
	}
	if body != nil {
		req.SetBody(body)
	}
	for k, v := range headers {
		req.SetHeader(k, v)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.StatusCode() == http.StatusNoContent {
		return nil, nil
	}
	if !resp.IsSuccess() {
		return nil, &RequestError{
			StatusCode: resp.StatusCode(),
			Status:     http.StatusText(resp.StatusCode()),
			Body:       string(resp.Body()),
		}
	}
	return resp.Body(), nil
}

// The API wraps some responses in {data: T} and returns bare T elsewhere, so
// every call site unwraps both shapes.

func unwrapList[T any](body []byte) ([]T, error) {
	if len(body) == 0 {
		return nil, nil
	}
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err == nil && len(env.Data) > 0 {
		// An enveloped null data key means an empty result, not a malformed
		// response.
		if string(env.Data) == "null" {
			return []T{}, nil
		}
		var list []T
		if err := json.Unmarshal(env.Data, &list); err == nil {
			return list, nil
		}
	}
	var list []T
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("parse list response: %w", err)
	}
	return list, nil
}

func unwrapItem[T any](body []byte) (T, error) {
	var env struct {
		Data *T `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err == nil && env.Data != nil {
		return *env.Data, nil
	}
	var item T
	if err := json.Unmarshal(body, &item); err != nil {
		var zero T
		return zero, fmt.Errorf("parse item response: %w", err)
	}
	return item, nil
}
