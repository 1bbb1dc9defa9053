package dirz

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Registry errors.
var (
	ErrDuplicateBinding  = errors.New("duplicate binding")
	ErrUnknownBinding    = errors.New("unknown binding")
	ErrSealed            = errors.New("registry is sealed")
	ErrInvalidDirection  = errors.New("invalid direction")
	ErrNilTransformation = errors.New("nil transformation")
	ErrEmptyName         = errors.New("empty binding name")
	ErrTransformFailed   = errors.New("transformation failed")
	ErrPanic             = errors.New("transformation panicked")
)

// DuplicateBindingError is returned by Bind when the (name, direction) key
// is already present. The existing binding is left untouched.
type DuplicateBindingError struct {
	Registry  Name
	Name      Name
	Direction Direction
}

func (e *DuplicateBindingError) Error() string {
	return fmt.Sprintf("registry %q: step %q (%s) already bound", e.Registry, e.Name, e.Direction)
}

// Is matches ErrDuplicateBinding.
func (*DuplicateBindingError) Is(target error) bool {
	return target == ErrDuplicateBinding
}

// UnknownBindingError is returned when a call references a key that was never bound.
type UnknownBindingError struct {
	Registry  Name
	Name      Name
	Direction Direction
}

func (e *UnknownBindingError) Error() string {
	return fmt.Sprintf("registry %q: no step %q (%s)", e.Registry, e.Name, e.Direction)
}

// Is matches ErrUnknownBinding.
func (*UnknownBindingError) Is(target error) bool {
	return target == ErrUnknownBinding
}

// TransformError reports that a bound transformation rejected its input.
// It carries the key that was invoked, the underlying reason, and the
// state the transformation received.
type TransformError[T any] struct {
	InputData T
	Timestamp time.Time
	Reason    error
	Name      Name
	Duration  time.Duration
	Direction Direction
	Timeout   bool
	Canceled  bool
}

// Error implements the error interface.
func (e *TransformError[T]) Error() string {
	location := fmt.Sprintf("step %q (%s)", e.Name, e.Direction)

	if e.Timeout {
		return fmt.Sprintf("%s timed out after %v: %v", location, e.Duration, e.Reason)
	}
	if e.Canceled {
		return fmt.Sprintf("%s canceled after %v: %v", location, e.Duration, e.Reason)
	}
	return fmt.Sprintf("%s failed after %v: %v", location, e.Duration, e.Reason)
}

// Unwrap returns the reason, supporting errors.Is and errors.As on it.
func (e *TransformError[T]) Unwrap() error {
	return e.Reason
}

// Is matches ErrTransformFailed.
func (*TransformError[T]) Is(target error) bool {
	return target == ErrTransformFailed
}

// Key returns the key of the failed binding.
func (e *TransformError[T]) Key() Key {
	return Key{Name: e.Name, Direction: e.Direction}
}

// IsTimeout returns true if the failure was caused by a deadline.
func (e *TransformError[T]) IsTimeout() bool {
	return e.Timeout || errors.Is(e.Reason, context.DeadlineExceeded)
}

// IsCanceled returns true if the failure was caused by cancellation.
func (e *TransformError[T]) IsCanceled() bool {
	return e.Canceled || errors.Is(e.Reason, context.Canceled)
}

// PipelineError reports the step at which a Pipeline stopped.
type PipelineError[T any] struct {
	Err      error
	Pipeline Name
	Call     Call
	Step     int
}

func (e *PipelineError[T]) Error() string {
	return fmt.Sprintf("pipeline %q stopped at step %d (%s): %v", e.Pipeline, e.Step+1, e.Call.Key(), e.Err)
}

// Unwrap returns the registry error for the failed step.
func (e *PipelineError[T]) Unwrap() error {
	return e.Err
}

// recoverFromPanic converts a panic in a transformation into an error and
// restores the input state.
func recoverFromPanic[T any](result *T, err *error, input T) {
	if r := recover(); r != nil {
		*result = input
		*err = fmt.Errorf("%w: %v", ErrPanic, r)
	}
}
