package dirz

import (
	"context"
)

// Effect creates a Step that inspects state without modifying it.
// The state always passes through unchanged; a returned error fails the step.
// Typical uses are validation, audit trails, and progress output.
//
// Example:
//
//	announce := dirz.Effect("fossil_fold", dirz.Forward, func(_ context.Context, e *Ecosystem) error {
//	    fmt.Println("[IN] fossil_fold → compressing...")
//	    return nil
//	})
func Effect[T any](name Name, direction Direction, fn func(context.Context, T) error) Step[T] {
	return Step[T]{
		name:      name,
		direction: direction,
		fn: func(ctx context.Context, value T) (result T, err error) {
			defer recoverFromPanic(&result, &err, value)
			if fnErr := fn(ctx, value); fnErr != nil {
				return value, fnErr
			}
			return value, nil
		},
	}
}
