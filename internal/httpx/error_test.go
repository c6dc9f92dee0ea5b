package httpx

import (
	"net/http"
	"testing"
)

func TestRetryableStatus(t *testing.T) {
	tests := []struct {
		code      int
		retryable bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusRequestTimeout, true},
		{http.StatusInternalServerError, true},
		{http.StatusBadGateway, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, false},
		{http.StatusNotFound, false},
		{http.StatusConflict, false},
		{http.StatusOK, false},
	}
	for _, tc := range tests {
		if got := RetryableStatus(tc.code); got != tc.retryable {
			t.Fatalf("RetryableStatus(%d) = %v, expected %v", tc.code, got, tc.retryable)
		}
	}
}

func TestHTTPErrorRetryable(t *testing.T) {
	var nilErr *HTTPError
	if nilErr.Retryable() {
		t.Fatal("nil error must not be retryable")
	}
	if !(&HTTPError{StatusCode: 503}).Retryable() {
		t.Fatal("503 must be retryable")
	}
	if (&HTTPError{StatusCode: 404}).Retryable() {
		t.Fatal("404 must not be retryable")
	}
}
