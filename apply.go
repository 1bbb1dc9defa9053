package dirz

import (
	"context"
)

// Apply creates a Step from a transformation that may fail.
// Apply is the general-purpose adapter: the function returns the updated
// state or an error. On error the input state is handed back to the caller
// and whatever the function returned is discarded.
//
// A transformation operating on a pointer must not mutate it before deciding
// to fail, since the caller still owns that value.
//
// Example:
//
//	parse := dirz.Apply("parse", dirz.Forward, func(_ context.Context, raw string) (string, error) {
//	    if raw == "" {
//	        return "", errors.New("empty input")
//	    }
//	    return strings.TrimSpace(raw), nil
//	})
func Apply[T any](name Name, direction Direction, fn func(context.Context, T) (T, error)) Step[T] {
	return Step[T]{
		name:      name,
		direction: direction,
		fn: func(ctx context.Context, value T) (result T, err error) {
			defer recoverFromPanic(&result, &err, value)
			result, err = fn(ctx, value)
			if err != nil {
				return value, err
			}
			return result, nil
		},
	}
}
