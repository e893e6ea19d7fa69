package core

import (
	"net/http"

	"github.com/bytedance/sonic"
)

// Response is a parsed exchange response. It is returned whenever the
// exchange answered with JSON, whatever the status code.
type Response struct {
	// StatusCode is the HTTP status code returned by the exchange.
	StatusCode int
	// Headers contains the response headers.
	Headers http.Header
	// Body contains the raw response body bytes.
	Body []byte
	// Data is the decoded JSON value.
	Data any
}

// IsSuccess returns true if the response status code indicates success (2xx).
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true if the response status code indicates an error (4xx or 5xx).
func (r *Response) IsError() bool {
	return r.StatusCode >= http.StatusBadRequest
}

// Object returns the decoded body when it is a JSON object.
func (r *Response) Object() (map[string]any, bool) {
	obj, ok := r.Data.(map[string]any)
	return obj, ok
}

// ListenKey returns the listenKey field of the body, if present and a non-empty string.
func (r *Response) ListenKey() (string, bool) {
	obj, ok := r.Object()
	if !ok {
		return "", false
	}
	key, ok := obj["listenKey"].(string)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

// APIError returns the exchange error payload when the body carries one.
func (r *Response) APIError() (*APIError, bool) {
	obj, ok := r.Object()
	if !ok {
		return nil, false
	}
	if _, hasCode := obj["code"]; !hasCode {
		return nil, false
	}
	var apiErr APIError
	if err := sonic.Unmarshal(r.Body, &apiErr); err != nil || apiErr.Code == 0 {
		return nil, false
	}
	return &apiErr, true
}

// Unmarshal parses the response body into the provided value using sonic.
func (r *Response) Unmarshal(v any) error {
	return sonic.Unmarshal(r.Body, v)
}
