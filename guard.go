package dirz

import (
	"context"
)

// Guard creates a Step that applies transformer only when condition holds.
// When condition is false the step fails with reason and transformer is never
// called, so the state is left exactly as it was received.
//
// Keeping the precondition separate from the update makes the failure path
// explicit: no partial mutation can happen before the check.
//
// Example:
//
//	var ErrNotEnoughCarbon = errors.New("not enough carbon")
//	compress := dirz.Guard("compress", dirz.Forward,
//	    func(_ context.Context, e *Ecosystem) bool { return e.Carbon >= 10 },
//	    func(_ context.Context, e *Ecosystem) *Ecosystem { e.Carbon -= 10; return e },
//	    ErrNotEnoughCarbon,
//	)
func Guard[T any](name Name, direction Direction, condition func(context.Context, T) bool, transformer func(context.Context, T) T, reason error) Step[T] {
	if reason == nil {
		reason = ErrTransformFailed
	}
	return Step[T]{
		name:      name,
		direction: direction,
		fn: func(ctx context.Context, value T) (result T, err error) {
			defer recoverFromPanic(&result, &err, value)
			if !condition(ctx, value) {
				return value, reason
			}
			return transformer(ctx, value), nil
		},
	}
}
