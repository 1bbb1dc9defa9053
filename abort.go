package dirz

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// ExitFailure is the process status InvokeOrAbort exits with.
const ExitFailure = 1

// AbortPolicy controls what InvokeOrAbort does on failure.
// Out receives the diagnostic line and Exit is called with ExitFailure.
type AbortPolicy struct {
	Out  io.Writer
	Exit func(code int)
}

// DefaultAbortPolicy writes to os.Stderr and calls os.Exit.
func DefaultAbortPolicy() AbortPolicy {
	return AbortPolicy{Out: os.Stderr, Exit: os.Exit}
}

// Diagnostic formats the failure line written by InvokeOrAbort:
//
//	[IN] compress failed → not enough carbon
func Diagnostic(direction Direction, name Name, message string) string {
	return fmt.Sprintf("[%s] %s failed → %s", direction, name, message)
}

// InvokeOrAbort calls Invoke and terminates the process if it fails.
//
// This is the explicit fail-fast policy: on any error it writes a
// direction-tagged Diagnostic line to the abort policy's writer and calls its
// Exit function with ExitFailure. An empty message is replaced with the error
// text. Use Invoke when the caller needs to decide how to recover.
//
// If Exit returns (as it does under test), the input state is returned.
func (r *Registry[T]) InvokeOrAbort(ctx context.Context, name Name, direction Direction, state T, message string) T {
	result, err := r.Invoke(ctx, name, direction, state)
	if err == nil {
		return result
	}

	if message == "" {
		message = err.Error()
	}

	policy := r.abortPolicy()
	out := policy.Out
	if out == nil {
		out = os.Stderr
	}
	exit := policy.Exit
	if exit == nil {
		exit = os.Exit
	}

	r.log().Error("aborting",
		zap.String("registry", r.name),
		zap.String("step", name),
		zap.Stringer("direction", direction),
		zap.Error(err))

	fmt.Fprintln(out, Diagnostic(direction, name, message)) //nolint:errcheck
	exit(ExitFailure)
	return state
}

func (r *Registry[T]) abortPolicy() AbortPolicy {
	if !r.sealed.Load() {
		r.mu.RLock()
		defer r.mu.RUnlock()
	}
	return r.abort
}
