package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// HTTPError represents a non-2xx HTTP response returned by the remote service.
type HTTPError struct {
	StatusCode int
	Body       []byte
	Header     http.Header
	JSON       any
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("http error: status=%d body=%s", e.StatusCode, string(e.Body))
}

// Retryable reports whether the error should be considered transient.
func (e *HTTPError) Retryable() bool {
	if e == nil {
		return false
	}
	return RetryableStatus(e.StatusCode)
}

// RetryableStatus reports whether a status code is worth retrying: rate
// limiting, request timeout, or a 5xx from the gateway.
func RetryableStatus(code int) bool {
	switch {
	case code == http.StatusTooManyRequests:
		return true
	case code == http.StatusRequestTimeout:
		return true
	case code >= 500 && code <= 599:
		return true
	}
	return false
}

// decodeJSONBody parses the body bytes into a generic JSON payload.
func decodeJSONBody(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil
	}
	return payload
}
