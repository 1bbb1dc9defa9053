package dirz

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestCloseReleasesGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	r := newCarbonRegistry(t)
	p := NewPipeline("cycle", r, In("compress"), Out("oxygen"))

	received := make(chan struct{}, 1)
	_ = r.OnFailure(func(_ context.Context, _ RegistryEvent) error {
		received <- struct{}{}
		return nil
	})

	_, _ = p.Process(context.Background(), &ecosystem{Carbon: 50})
	_, _ = p.Process(context.Background(), &ecosystem{Carbon: 0})

	select {
	case <-received:
	case <-time.After(time.Second):
		t.Fatal("failure event not received")
	}

	_ = p.Close()
	_ = r.Close()
}
