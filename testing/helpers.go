// Package testing provides test utilities for dirz-based code.
//
// Example usage:
//
//	func TestCycle(t *testing.T) {
//		compress := dirztest.NewMockTransformation[int](t, "compress", dirz.Forward).
//			WithReturn(40, nil)
//
//		registry := dirz.NewRegistry[int]("test")
//		_ = registry.Register(compress.Step())
//
//		result, err := registry.Invoke(context.Background(), "compress", dirz.Forward, 50)
//		// result: 40, err: nil
//		dirztest.AssertInvokedWith(t, compress, 50)
//	}
package testing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/dirz"
)

// MockTransformation records its calls and returns configured results.
// With nothing configured it passes its input through unchanged.
type MockTransformation[T any] struct { //nolint:govet // fieldalignment: test helper
	t           *testing.T
	name        dirz.Name
	direction   dirz.Direction
	returnVal   T
	returnErr   error
	hasReturn   bool
	panicMsg    string
	mu          sync.RWMutex
	callHistory []MockCall[T]
}

// MockCall is a single recorded call.
type MockCall[T any] struct {
	Input     T
	Timestamp time.Time
	Context   context.Context
}

// NewMockTransformation creates a mock bound to name and direction.
func NewMockTransformation[T any](t *testing.T, name dirz.Name, direction dirz.Direction) *MockTransformation[T] {
	return &MockTransformation[T]{
		t:         t,
		name:      name,
		direction: direction,
	}
}

// WithReturn makes every subsequent call return val and err.
func (m *MockTransformation[T]) WithReturn(val T, err error) *MockTransformation[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.returnVal = val
	m.returnErr = err
	m.hasReturn = true
	return m
}

// WithError makes every subsequent call fail with err.
func (m *MockTransformation[T]) WithError(err error) *MockTransformation[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	m.returnVal = zero
	m.returnErr = err
	m.hasReturn = true
	return m
}

// WithPanic makes every subsequent call panic with msg.
func (m *MockTransformation[T]) WithPanic(msg string) *MockTransformation[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panicMsg = msg
	return m
}

// Name returns the mock's binding name.
func (m *MockTransformation[T]) Name() dirz.Name {
	return m.name
}

// Direction returns the mock's binding direction.
func (m *MockTransformation[T]) Direction() dirz.Direction {
	return m.direction
}

// Transform implements dirz.Transformation.
func (m *MockTransformation[T]) Transform(ctx context.Context, state T) (T, error) {
	m.mu.Lock()
	m.callHistory = append(m.callHistory, MockCall[T]{
		Input:     state,
		Timestamp: time.Now(),
		Context:   ctx,
	})
	panicMsg := m.panicMsg
	hasReturn := m.hasReturn
	val, err := m.returnVal, m.returnErr
	m.mu.Unlock()

	if panicMsg != "" {
		panic(panicMsg)
	}
	if !hasReturn {
		return state, nil
	}
	return val, err
}

// Step wraps the mock as a dirz.Step ready for Register.
func (m *MockTransformation[T]) Step() dirz.Step[T] {
	return dirz.Apply(m.name, m.direction, m.Transform)
}

// CallCount returns the number of recorded calls.
func (m *MockTransformation[T]) CallCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.callHistory)
}

// LastInput returns the input of the most recent call.
func (m *MockTransformation[T]) LastInput() (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.callHistory) == 0 {
		var zero T
		return zero, false
	}
	return m.callHistory[len(m.callHistory)-1].Input, true
}

// CallHistory returns a copy of the recorded calls.
func (m *MockTransformation[T]) CallHistory() []MockCall[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	history := make([]MockCall[T], len(m.callHistory))
	copy(history, m.callHistory)
	return history
}

// Reset clears recorded calls and configured behavior.
func (m *MockTransformation[T]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	m.callHistory = nil
	m.returnVal = zero
	m.returnErr = nil
	m.hasReturn = false
	m.panicMsg = ""
}

// AssertInvoked verifies the mock was called exactly expectedCalls times.
func AssertInvoked[T any](t *testing.T, mock *MockTransformation[T], expectedCalls int) {
	t.Helper()
	actualCalls := mock.CallCount()
	if actualCalls != expectedCalls {
		t.Errorf("expected %s (%s) to be invoked %d times, but was invoked %d times",
			mock.name, mock.direction, expectedCalls, actualCalls)
	}
}

// AssertNotInvoked verifies the mock was never called.
func AssertNotInvoked[T any](t *testing.T, mock *MockTransformation[T]) {
	t.Helper()
	AssertInvoked(t, mock, 0)
}

// AssertInvokedWith verifies the most recent call received expectedInput.
func AssertInvokedWith[T comparable](t *testing.T, mock *MockTransformation[T], expectedInput T) {
	t.Helper()
	actualInput, ok := mock.LastInput()
	if !ok {
		t.Errorf("expected %s (%s) to be invoked with %v, but it was never invoked",
			mock.name, mock.direction, expectedInput)
		return
	}
	if actualInput != expectedInput {
		t.Errorf("expected %s (%s) to be invoked with %v, but was invoked with %v",
			mock.name, mock.direction, expectedInput, actualInput)
	}
}

// AssertTransformError verifies err is a *dirz.TransformError[T] for (name, direction)
// and returns it.
func AssertTransformError[T any](t *testing.T, err error, name dirz.Name, direction dirz.Direction) *dirz.TransformError[T] {
	t.Helper()
	var te *dirz.TransformError[T]
	if !errors.As(err, &te) {
		t.Fatalf("expected *dirz.TransformError, got %T: %v", err, err)
		return nil
	}
	if te.Name != name || te.Direction != direction {
		t.Errorf("expected failure at %s, got %s", dirz.Key{Name: name, Direction: direction}, te.Key())
	}
	return te
}

// WaitFor polls cond until it returns true or timeout elapses.
// Hook handlers run asynchronously, so tests observing them poll.
func WaitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}
