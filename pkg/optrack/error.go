package optrack

// Error is the failure type returned by tracked operations. Error() yields
// only the normalized message, which is the same string recorded in the
// tracker, so string-only consumers see identical text in both places. The
// underlying failure is preserved and reachable via errors.Unwrap / errors.As.
type Error struct {
	Component string
	Op        string
	Message   string

	cause error
}

func newError(component, op, message string, cause error) *Error {
	return &Error{
		Component: component,
		Op:        op,
		Message:   message,
		cause:     cause,
	}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// Unwrap returns the original failure the delegate produced.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Cause is an alias of Unwrap for github.com/pkg/errors traversal.
func (e *Error) Cause() error {
	return e.Unwrap()
}
