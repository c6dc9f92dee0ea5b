package optrack

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/storyprotocol/story-sdk-go/internal/httpx"
	"github.com/storyprotocol/story-sdk-go/internal/storyapi"
)

// NormalizeError maps an arbitrary failure to a display-ready one-line
// message. Gateway failures prefer the error message carried in the response
// body over the raw status line.
func NormalizeError(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "operation timed out"
	case errors.Is(err, context.Canceled):
		return "operation canceled"
	}

	var httpErr *httpx.HTTPError
	if errors.As(err, &httpErr) {
		if msg := storyapi.ErrorMessageFromJSON(httpErr.JSON); msg != "" {
			return msg
		}
		if msg := storyapi.ErrorMessage(httpErr.Body); msg != "" {
			return msg
		}
		return fmt.Sprintf("request failed with status %d", httpErr.StatusCode)
	}

	return strings.Join(strings.Fields(err.Error()), " ")
}
