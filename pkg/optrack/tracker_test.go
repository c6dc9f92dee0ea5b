package optrack_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyprotocol/story-sdk-go/pkg/optrack"
)

type request struct {
	ID string
}

type response struct {
	TxHash string
}

func newTracker(opts ...optrack.Option) *optrack.Tracker {
	return optrack.New("test", []string{"execute", "getLicenseTerms"}, opts...)
}

func TestLoadingLifecycle(t *testing.T) {
	tr := newTracker()

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		_, err := optrack.Do(context.Background(), tr, "execute", &request{ID: "0x1"},
			func(ctx context.Context, req *request) (*response, error) {
				close(entered)
				<-release
				return &response{TxHash: "0xabc"}, nil
			})
		assert.NoError(t, err)
	}()

	<-entered
	// Busy flag was set synchronously before the delegate could settle.
	require.True(t, tr.Loading("execute"))
	require.False(t, tr.Loading("getLicenseTerms"))

	close(release)
	<-done
	require.False(t, tr.Loading("execute"))
	require.Nil(t, tr.LastError("execute"))
}

func TestSuccessPassThrough(t *testing.T) {
	tr := newTracker()

	want := &response{TxHash: "0xabc"}
	got, err := optrack.Do(context.Background(), tr, "execute", &request{ID: "0x1"},
		func(ctx context.Context, req *request) (*response, error) {
			return want, nil
		})
	require.NoError(t, err)
	require.Same(t, want, got)
}

func TestFailureRecordsNormalizedMessage(t *testing.T) {
	tr := newTracker()

	boom := errors.New("connection\nrefused")
	_, err := optrack.Do(context.Background(), tr, "getLicenseTerms", &request{ID: "5"},
		func(ctx context.Context, req *request) (*response, error) {
			return nil, boom
		})
	require.Error(t, err)

	var opErr *optrack.Error
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "connection refused", opErr.Message)
	assert.Equal(t, opErr.Message, err.Error())
	assert.True(t, errors.Is(err, boom), "original cause must stay reachable")

	recorded := tr.LastError("getLicenseTerms")
	require.NotNil(t, recorded)
	assert.Equal(t, opErr.Message, recorded.Message)

	// Other operations' entries stay untouched.
	assert.Nil(t, tr.LastError("execute"))
	assert.False(t, tr.Loading("getLicenseTerms"))
}

func TestErrorClearedOnNextInvocation(t *testing.T) {
	tr := newTracker()

	_, err := optrack.Do(context.Background(), tr, "execute", &request{},
		func(ctx context.Context, req *request) (*response, error) {
			return nil, errors.New("boom")
		})
	require.Error(t, err)
	require.NotNil(t, tr.LastError("execute"))

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = optrack.Do(context.Background(), tr, "execute", &request{},
			func(ctx context.Context, req *request) (*response, error) {
				close(entered)
				<-release
				return &response{}, nil
			})
	}()

	<-entered
	// The error record is cleared before the delegate settles.
	assert.Nil(t, tr.LastError("execute"))
	close(release)
	<-done
	assert.Nil(t, tr.LastError("execute"))
}

// TestBusyFlagRaceOnConcurrentCalls pins down the documented behaviour of
// keying the busy flag by operation name: when one of two concurrent calls
// settles first, the flag reads false even though the other call is still in
// flight.
func TestBusyFlagRaceOnConcurrentCalls(t *testing.T) {
	tr := newTracker()

	enteredA := make(chan struct{})
	releaseA := make(chan struct{})
	doneA := make(chan struct{})
	go func() {
		defer close(doneA)
		_, _ = optrack.Do(context.Background(), tr, "execute", &request{ID: "a"},
			func(ctx context.Context, req *request) (*response, error) {
				close(enteredA)
				<-releaseA
				return &response{}, nil
			})
	}()
	<-enteredA

	enteredB := make(chan struct{})
	releaseB := make(chan struct{})
	doneB := make(chan struct{})
	go func() {
		defer close(doneB)
		_, _ = optrack.Do(context.Background(), tr, "execute", &request{ID: "b"},
			func(ctx context.Context, req *request) (*response, error) {
				close(enteredB)
				<-releaseB
				return &response{}, nil
			})
	}()
	<-enteredB

	require.True(t, tr.Loading("execute"))

	close(releaseA)
	<-doneA
	// B is still running, but A's completion already cleared the shared flag.
	require.False(t, tr.Loading("execute"))

	close(releaseB)
	<-doneB
	require.False(t, tr.Loading("execute"))
}

// TestConcurrentCallsSharedState hammers one tracker from many goroutines,
// mixing tracked calls with registry and state reads, so every access pattern
// the client surface allows overlaps under the race detector.
func TestConcurrentCallsSharedState(t *testing.T) {
	tr := newTracker()

	const workers = 8
	const calls = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			op := "execute"
			if w%2 == 1 {
				op = "getLicenseTerms"
			}
			for i := 0; i < calls; i++ {
				if i%3 == 0 {
					_, _ = optrack.Do(context.Background(), tr, op, &request{},
						func(ctx context.Context, req *request) (*response, error) {
							return nil, errors.New("boom")
						})
				} else {
					_, _ = optrack.Do(context.Background(), tr, op, &request{},
						func(ctx context.Context, req *request) (*response, error) {
							return &response{}, nil
						})
				}
				_ = tr.Registered(op)
				_ = tr.Loading(op)
				_ = tr.LastError(op)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < workers*calls; i++ {
			_ = tr.Snapshot()
		}
	}()

	wg.Wait()
	require.False(t, tr.Loading("execute"))
	require.False(t, tr.Loading("getLicenseTerms"))
}

func TestSubscribePerCallUpdates(t *testing.T) {
	tr := newTracker()
	updates, cancel := tr.Subscribe(8)
	defer cancel()

	_, err := optrack.Do(context.Background(), tr, "execute", &request{},
		func(ctx context.Context, req *request) (*response, error) {
			return &response{}, nil
		})
	require.NoError(t, err)

	_, err = optrack.Do(context.Background(), tr, "execute", &request{},
		func(ctx context.Context, req *request) (*response, error) {
			return nil, errors.New("boom")
		})
	require.Error(t, err)

	collected := make([]optrack.Update, 0, 4)
	for len(collected) < 4 {
		select {
		case u := <-updates:
			collected = append(collected, u)
		case <-time.After(time.Second):
			t.Fatalf("timed out collecting updates, got %d", len(collected))
		}
	}

	require.Equal(t, optrack.StatePending, collected[0].State)
	require.Equal(t, optrack.StateSuccess, collected[1].State)
	require.Equal(t, optrack.StatePending, collected[2].State)
	require.Equal(t, optrack.StateFailure, collected[3].State)

	assert.Equal(t, collected[0].CallID, collected[1].CallID)
	assert.Equal(t, collected[2].CallID, collected[3].CallID)
	assert.NotEqual(t, collected[0].CallID, collected[2].CallID)

	require.NotNil(t, collected[3].Err)
	assert.Equal(t, "boom", collected[3].Err.Message)
}

func TestUnknownOperationRejected(t *testing.T) {
	tr := newTracker()

	_, err := optrack.Do(context.Background(), tr, "mintLicenseTokens", &request{},
		func(ctx context.Context, req *request) (*response, error) {
			t.Fatal("delegate must not run for unregistered operations")
			return nil, nil
		})
	require.Error(t, err)
	assert.False(t, tr.Loading("mintLicenseTokens"))
}

func TestSnapshotCoversRegistry(t *testing.T) {
	tr := newTracker()
	snap := tr.Snapshot()
	require.Len(t, snap, 2)
	require.Contains(t, snap, "execute")
	require.Contains(t, snap, "getLicenseTerms")
	assert.False(t, snap["execute"].Loading)
	assert.Nil(t, snap["execute"].Err)
}

func TestMetricsObserved(t *testing.T) {
	reg := prometheus.NewRegistry()
	tr := newTracker(optrack.WithMetrics(reg))

	_, _ = optrack.Do(context.Background(), tr, "execute", &request{},
		func(ctx context.Context, req *request) (*response, error) {
			return &response{}, nil
		})
	_, _ = optrack.Do(context.Background(), tr, "execute", &request{},
		func(ctx context.Context, req *request) (*response, error) {
			return nil, errors.New("boom")
		})

	count, err := testutil.GatherAndCount(reg, "story_sdk_operations_total")
	require.NoError(t, err)
	// One success series and one failure series.
	assert.Equal(t, 2, count)
}
