package optrack

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Status is a point-in-time view of one operation's tracked state.
type Status struct {
	Loading bool
	Err     *Error
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger attaches a zerolog logger; operation begin/end/failure are
// logged at debug level.
func WithLogger(log zerolog.Logger) Option {
	return func(t *Tracker) {
		t.log = log
	}
}

// WithNormalizer overrides the error normalizer.
func WithNormalizer(fn func(error) string) Option {
	return func(t *Tracker) {
		if fn != nil {
			t.normalize = fn
		}
	}
}

// WithMetrics registers operation counters and duration histograms with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(t *Tracker) {
		t.metrics = newMetrics(reg)
	}
}

// Tracker holds per-operation busy flags and last-error records for a fixed
// operation registry. The registry never changes after construction: the busy
// and error maps contain exactly the registered names for the tracker's
// lifetime.
type Tracker struct {
	component string
	ops       []string
	normalize func(error) string
	log       zerolog.Logger
	metrics   *metrics

	mu   sync.RWMutex
	busy map[string]bool
	errs map[string]*Error

	subMu   sync.RWMutex
	subs    map[uint64]chan Update
	nextSub uint64
}

// New constructs a Tracker for the named component and operation registry.
// Duplicate operation names are collapsed.
func New(component string, ops []string, opts ...Option) *Tracker {
	t := &Tracker{
		component: component,
		normalize: NormalizeError,
		log:       zerolog.Nop(),
		busy:      make(map[string]bool, len(ops)),
		errs:      make(map[string]*Error, len(ops)),
		subs:      make(map[uint64]chan Update),
	}
	for _, op := range ops {
		if _, ok := t.busy[op]; ok {
			continue
		}
		t.ops = append(t.ops, op)
		t.busy[op] = false
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.With().Str("component", component).Logger()
	return t
}

// Component returns the component name supplied at construction.
func (t *Tracker) Component() string {
	return t.component
}

// Operations returns the registered operation names in registration order.
func (t *Tracker) Operations() []string {
	out := make([]string, len(t.ops))
	copy(out, t.ops)
	return out
}

// Registered reports whether op belongs to the registry.
func (t *Tracker) Registered(op string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.busy[op]
	return ok
}

// Loading reports the operation's busy flag. Unregistered names report false.
func (t *Tracker) Loading(op string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.busy[op]
}

// LastError returns the operation's recorded error, or nil when the last
// invocation succeeded or the operation has not run yet.
func (t *Tracker) LastError(op string) *Error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.errs[op]
}

// Snapshot returns the current status of every registered operation.
func (t *Tracker) Snapshot() map[string]Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]Status, len(t.ops))
	for _, op := range t.ops {
		out[op] = Status{Loading: t.busy[op], Err: t.errs[op]}
	}
	return out
}

// begin marks the operation busy and clears its error record. It runs
// synchronously before the delegate is invoked.
func (t *Tracker) begin(op string) (string, error) {
	if !t.Registered(op) {
		return "", fmt.Errorf("optrack: operation %q not registered for %s", op, t.component)
	}

	t.mu.Lock()
	t.busy[op] = true
	delete(t.errs, op)
	t.mu.Unlock()

	callID := uuid.NewString()
	t.log.Debug().Str("operation", op).Str("call_id", callID).Msg("operation started")
	t.publish(Update{
		Component: t.component,
		Operation: op,
		CallID:    callID,
		State:     StatePending,
		At:        time.Now(),
	})
	return callID, nil
}

// finish clears the busy flag and, on failure, records and returns the
// normalized error.
func (t *Tracker) finish(op, callID string, start time.Time, err error) *Error {
	elapsed := time.Since(start)

	if err == nil {
		t.mu.Lock()
		t.busy[op] = false
		t.mu.Unlock()

		t.metrics.observe(t.component, op, elapsed, false)
		t.log.Debug().Str("operation", op).Str("call_id", callID).Dur("elapsed", elapsed).Msg("operation succeeded")
		t.publish(Update{
			Component: t.component,
			Operation: op,
			CallID:    callID,
			State:     StateSuccess,
			At:        time.Now(),
		})
		return nil
	}

	opErr := newError(t.component, op, t.normalize(err), err)

	t.mu.Lock()
	t.busy[op] = false
	t.errs[op] = opErr
	t.mu.Unlock()

	t.metrics.observe(t.component, op, elapsed, true)
	t.log.Debug().Str("operation", op).Str("call_id", callID).Dur("elapsed", elapsed).
		Str("error", opErr.Message).Msg("operation failed")
	t.publish(Update{
		Component: t.component,
		Operation: op,
		CallID:    callID,
		State:     StateFailure,
		Err:       opErr,
		At:        time.Now(),
	})
	return opErr
}
