package optrack

import (
	"context"
	"errors"
	"time"
)

// Do runs one tracked invocation of op: the busy flag is set and the error
// record cleared before fn runs, the flag is cleared once fn settles, and the
// response is returned exactly as fn produced it. On failure the returned
// error is an *Error carrying the normalized message, recorded under the same
// operation key.
func Do[Req, Resp any](ctx context.Context, t *Tracker, op string, req Req, fn func(context.Context, Req) (Resp, error)) (Resp, error) {
	var zero Resp
	if t == nil {
		return zero, errors.New("optrack: tracker is nil")
	}
	if fn == nil {
		return zero, errors.New("optrack: delegate is nil")
	}

	callID, err := t.begin(op)
	if err != nil {
		return zero, err
	}

	start := time.Now()
	resp, err := fn(ctx, req)
	if opErr := t.finish(op, callID, start, err); opErr != nil {
		return zero, opErr
	}
	return resp, nil
}
