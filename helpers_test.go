package dirz

import (
	"context"
	"errors"
	"testing"
	"time"
)

// waitFor polls cond until it holds or timeout elapses; hook handlers run asynchronously.
func waitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}

type ecosystem struct {
	Carbon int
	Oxygen int
}

var errNotEnoughCarbon = errors.New("not enough carbon")

// carbonSteps binds the compress/oxygen pair used across registry and pipeline tests.
func carbonSteps() []Step[*ecosystem] {
	return []Step[*ecosystem]{
		Guard("compress", Forward,
			func(_ context.Context, e *ecosystem) bool { return e.Carbon >= 10 },
			func(_ context.Context, e *ecosystem) *ecosystem { e.Carbon -= 10; return e },
			errNotEnoughCarbon,
		),
		Transform("oxygen", Backward, func(_ context.Context, e *ecosystem) *ecosystem {
			e.Oxygen += 5
			return e
		}),
	}
}

func newCarbonRegistry(t *testing.T) *Registry[*ecosystem] {
	t.Helper()
	r := NewRegistry[*ecosystem]("earth")
	if err := r.Register(carbonSteps()...); err != nil {
		t.Fatalf("register: %v", err)
	}
	return r
}
