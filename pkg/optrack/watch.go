package optrack

import "time"

// State is the lifecycle phase of a single tracked call.
type State string

const (
	StatePending State = "pending"
	StateSuccess State = "success"
	StateFailure State = "failure"
)

// Update describes one lifecycle transition of one call. CallID is unique per
// invocation, so concurrent calls to the same operation produce independent
// pending/settled pairs even though they share a busy flag.
type Update struct {
	Component string
	Operation string
	CallID    string
	State     State
	Err       *Error
	At        time.Time
}

// Subscribe registers an update channel with the given buffer size and returns
// it along with a cancel function. Updates are dropped rather than block a
// caller when the subscriber falls behind.
func (t *Tracker) Subscribe(buffer int) (<-chan Update, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Update, buffer)

	t.subMu.Lock()
	id := t.nextSub
	t.nextSub++
	t.subs[id] = ch
	t.subMu.Unlock()

	cancel := func() {
		t.subMu.Lock()
		defer t.subMu.Unlock()
		if existing, ok := t.subs[id]; ok {
			delete(t.subs, id)
			close(existing)
		}
	}
	return ch, cancel
}

func (t *Tracker) publish(u Update) {
	t.subMu.RLock()
	defer t.subMu.RUnlock()
	for _, ch := range t.subs {
		select {
		case ch <- u:
		default:
		}
	}
}
