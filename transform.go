package dirz

import (
	"context"
)

// Transform creates a Step from a transformation that cannot fail.
// Use it for arithmetic, field mapping, or any update that is always valid.
// If the update might be rejected, use Apply or Guard instead.
//
// Example:
//
//	releaseOxygen := dirz.Transform("oxygen", dirz.Backward, func(_ context.Context, e *Ecosystem) *Ecosystem {
//	    e.Oxygen += 5
//	    return e
//	})
func Transform[T any](name Name, direction Direction, fn func(context.Context, T) T) Step[T] {
	return Step[T]{
		name:      name,
		direction: direction,
		fn: func(ctx context.Context, value T) (result T, err error) {
			defer recoverFromPanic(&result, &err, value)
			return fn(ctx, value), nil
		},
	}
}
