package dirz

import "context"

// Name is a type alias for step, registry, and pipeline names.
// Using this type encourages storing names as constants.
//
//	const (
//	    CompressName Name = "compress"
//	    OxygenName   Name = "oxygen"
//	)
type Name = string

// Transformation is a single-argument, single-result function over state T.
// A non-nil error is the failure signal and the returned state is ignored.
type Transformation[T any] func(context.Context, T) (T, error)

// Key identifies a binding within a Registry.
type Key struct {
	Name      Name
	Direction Direction
}

// String renders the key as "name/IN" or "name/OUT".
func (k Key) String() string {
	return k.Name + "/" + k.Direction.String()
}

// Step is a named, directional transformation.
// Steps are immutable values created by the adapter functions
// (Transform, Apply, Effect, Guard) and bound to a Registry with Register.
type Step[T any] struct {
	fn        func(context.Context, T) (T, error)
	name      Name
	direction Direction
}

// Process runs the step's transformation directly, bypassing any registry.
func (s Step[T]) Process(ctx context.Context, state T) (T, error) {
	return s.fn(ctx, state)
}

// Name returns the step name.
func (s Step[T]) Name() Name {
	return s.name
}

// Direction returns the step direction.
func (s Step[T]) Direction() Direction {
	return s.direction
}

// Key returns the dispatch key of the step.
func (s Step[T]) Key() Key {
	return Key{Name: s.name, Direction: s.direction}
}

// BindingInfo describes a registered binding for introspection.
type BindingInfo struct {
	Name      Name
	Direction Direction
}
