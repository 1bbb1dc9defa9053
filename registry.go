package dirz

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
	"go.uber.org/zap"
)

// Observability constants for the Registry.
const (
	// Metrics.
	RegistryBindingsTotal    = metricz.Key("registry.bindings.total")
	RegistryInvocationsTotal = metricz.Key("registry.invocations.total")
	RegistrySuccessesTotal   = metricz.Key("registry.successes.total")
	RegistryFailuresTotal    = metricz.Key("registry.failures.total")
	RegistryUnknownTotal     = metricz.Key("registry.unknown.total")
	RegistryInvokeDurationMs = metricz.Key("registry.invoke.duration.ms")

	// Spans.
	RegistryInvokeSpan = tracez.Key("registry.invoke")

	// Tags.
	RegistryTagName      = tracez.Tag("registry.step_name")
	RegistryTagDirection = tracez.Tag("registry.direction")
	RegistryTagSuccess   = tracez.Tag("registry.success")
	RegistryTagError     = tracez.Tag("registry.error")

	// Hook event keys.
	RegistryEventBound   = hookz.Key("registry.bound")
	RegistryEventFailure = hookz.Key("registry.failed")
	RegistryEventSealed  = hookz.Key("registry.sealed")
)

// RegistryEvent is emitted via hookz when a binding is added, when an
// invocation fails, and when the registry is sealed.
type RegistryEvent struct {
	Registry  Name          // Registry name
	Name      Name          // Step name (bound/failed)
	Direction Direction     // Step direction (bound/failed)
	Error     error         // Failure (failed)
	Duration  time.Duration // Time spent in the transformation (failed)
	Bindings  int           // Number of bindings (sealed)
	Timestamp time.Time     // When the event occurred
}

// Registry binds named, directional transformations and dispatches calls to them.
//
// Bindings are added during setup with Bind or Register. A binding key is the
// (name, direction) pair; the same name may be bound once per direction.
// Duplicate keys are rejected rather than overwritten.
//
// Invoke never terminates the process. Failures come back as values and the
// caller decides whether to abort, retry, or propagate. InvokeOrAbort is the
// explicit opt-in for the terminate-on-failure policy.
//
// The registry does not own state. It hands the caller's value to exactly one
// transformation per call and returns the result.
//
// # Concurrency
//
// Until Seal is called, the table is guarded by a read/write lock so Bind and
// Invoke may interleave. After Seal, Bind returns ErrSealed and Invoke reads
// the table without locking.
//
// # Observability
//
// Metrics:
//   - registry.bindings.total: Counter of successful bindings
//   - registry.invocations.total: Counter of Invoke calls
//   - registry.successes.total: Counter of successful invocations
//   - registry.failures.total: Counter of transformation failures
//   - registry.unknown.total: Counter of calls to unbound keys
//   - registry.invoke.duration.ms: Gauge of the last invocation duration
//
// Traces:
//   - registry.invoke: Span per dispatched invocation
//
// Events (via hooks):
//   - registry.bound: Fired after each successful binding
//   - registry.failed: Fired when a transformation fails
//   - registry.sealed: Fired once when the registry is sealed
type Registry[T any] struct {
	name     Name
	bindings map[Key]Transformation[T]
	mu       sync.RWMutex
	sealed   atomic.Bool
	clock    clockz.Clock
	logger   *zap.Logger
	abort    AbortPolicy
	metrics  *metricz.Registry
	tracer   *tracez.Tracer
	hooks    *hookz.Hooks[RegistryEvent]
}

// NewRegistry creates an empty, unsealed Registry.
func NewRegistry[T any](name Name) *Registry[T] {
	metrics := metricz.New()
	metrics.Counter(RegistryBindingsTotal)
	metrics.Counter(RegistryInvocationsTotal)
	metrics.Counter(RegistrySuccessesTotal)
	metrics.Counter(RegistryFailuresTotal)
	metrics.Counter(RegistryUnknownTotal)
	metrics.Gauge(RegistryInvokeDurationMs)

	return &Registry[T]{
		name:     name,
		bindings: make(map[Key]Transformation[T]),
		clock:    clockz.RealClock,
		logger:   zap.NewNop(),
		abort:    DefaultAbortPolicy(),
		metrics:  metrics,
		tracer:   tracez.New(),
		hooks:    hookz.New[RegistryEvent](),
	}
}

// Bind registers fn under (name, direction).
//
// Bind fails with a *DuplicateBindingError if the key is already bound, with
// ErrSealed after Seal, and with ErrEmptyName, ErrInvalidDirection or
// ErrNilTransformation for malformed arguments. On failure the table is
// unchanged.
func (r *Registry[T]) Bind(name Name, direction Direction, fn Transformation[T]) error {
	switch {
	case name == "":
		return ErrEmptyName
	case !direction.Valid():
		return ErrInvalidDirection
	case fn == nil:
		return ErrNilTransformation
	}

	key := Key{Name: name, Direction: direction}

	r.mu.Lock()
	if r.sealed.Load() {
		r.mu.Unlock()
		return ErrSealed
	}
	if _, exists := r.bindings[key]; exists {
		r.mu.Unlock()
		return &DuplicateBindingError{Registry: r.name, Name: name, Direction: direction}
	}
	r.bindings[key] = safe(fn)
	r.mu.Unlock()

	r.metrics.Counter(RegistryBindingsTotal).Inc()
	r.log().Debug("bound step",
		zap.String("registry", r.name),
		zap.String("step", name),
		zap.Stringer("direction", direction))

	_ = r.hooks.Emit(context.Background(), RegistryEventBound, RegistryEvent{ //nolint:errcheck
		Registry:  r.name,
		Name:      name,
		Direction: direction,
		Timestamp: r.getClock().Now(),
	})
	return nil
}

// Register binds each step in order, stopping at the first error.
func (r *Registry[T]) Register(steps ...Step[T]) error {
	for _, step := range steps {
		if step.fn == nil {
			return ErrNilTransformation
		}
		if err := r.Bind(step.name, step.direction, step.fn); err != nil {
			return err
		}
	}
	return nil
}

// Invoke dispatches state to the transformation bound under (name, direction).
//
// It returns a *UnknownBindingError if no such binding exists and a
// *TransformError[T] if the transformation fails or ctx is already done.
// In every failure case the returned state is the input state.
func (r *Registry[T]) Invoke(ctx context.Context, name Name, direction Direction, state T) (result T, err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	r.metrics.Counter(RegistryInvocationsTotal).Inc()

	fn, ok := r.lookup(Key{Name: name, Direction: direction})
	if !ok {
		r.metrics.Counter(RegistryUnknownTotal).Inc()
		return state, &UnknownBindingError{Registry: r.name, Name: name, Direction: direction}
	}

	ctx, span := r.tracer.StartSpan(ctx, RegistryInvokeSpan)
	span.SetTag(RegistryTagName, name)
	span.SetTag(RegistryTagDirection, direction.String())
	defer func() {
		if err == nil {
			span.SetTag(RegistryTagSuccess, "true")
		} else {
			span.SetTag(RegistryTagSuccess, "false")
			span.SetTag(RegistryTagError, err.Error())
		}
		span.Finish()
	}()

	clock := r.getClock()
	start := clock.Now()

	var reason error
	if ctxErr := ctx.Err(); ctxErr != nil {
		reason = ctxErr
	} else {
		result, reason = fn(ctx, state)
	}
	elapsed := clock.Since(start)
	r.metrics.Gauge(RegistryInvokeDurationMs).Set(float64(elapsed.Milliseconds()))

	if reason == nil {
		r.metrics.Counter(RegistrySuccessesTotal).Inc()
		return result, nil
	}

	r.metrics.Counter(RegistryFailuresTotal).Inc()
	failure := &TransformError[T]{
		InputData: state,
		Timestamp: clock.Now(),
		Reason:    reason,
		Name:      name,
		Duration:  elapsed,
		Direction: direction,
		Timeout:   errors.Is(reason, context.DeadlineExceeded),
		Canceled:  errors.Is(reason, context.Canceled),
	}

	r.log().Warn("step failed",
		zap.String("registry", r.name),
		zap.String("step", name),
		zap.Stringer("direction", direction),
		zap.Duration("duration", elapsed),
		zap.Error(reason))

	_ = r.hooks.Emit(ctx, RegistryEventFailure, RegistryEvent{ //nolint:errcheck
		Registry:  r.name,
		Name:      name,
		Direction: direction,
		Error:     failure,
		Duration:  elapsed,
		Timestamp: failure.Timestamp,
	})

	return state, failure
}

// Seal freezes the binding table. Subsequent Bind calls return ErrSealed.
// Seal is idempotent; the sealed event fires only on the first call.
func (r *Registry[T]) Seal() {
	r.mu.Lock()
	if r.sealed.Load() {
		r.mu.Unlock()
		return
	}
	r.sealed.Store(true)
	count := len(r.bindings)
	r.mu.Unlock()

	r.log().Debug("sealed registry",
		zap.String("registry", r.name),
		zap.Int("bindings", count))

	_ = r.hooks.Emit(context.Background(), RegistryEventSealed, RegistryEvent{ //nolint:errcheck
		Registry:  r.name,
		Bindings:  count,
		Timestamp: r.getClock().Now(),
	})
}

// Sealed reports whether Seal has been called.
func (r *Registry[T]) Sealed() bool {
	return r.sealed.Load()
}

// Lookup reports whether (name, direction) is bound.
func (r *Registry[T]) Lookup(name Name, direction Direction) (BindingInfo, bool) {
	if _, ok := r.lookup(Key{Name: name, Direction: direction}); !ok {
		return BindingInfo{}, false
	}
	return BindingInfo{Name: name, Direction: direction}, true
}

// Bindings returns every binding sorted by direction, then name.
func (r *Registry[T]) Bindings() []BindingInfo {
	if !r.sealed.Load() {
		r.mu.RLock()
		defer r.mu.RUnlock()
	}

	infos := make([]BindingInfo, 0, len(r.bindings))
	for key := range r.bindings {
		infos = append(infos, BindingInfo(key))
	}
	slices.SortFunc(infos, func(a, b BindingInfo) int {
		if c := cmp.Compare(a.Direction, b.Direction); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return infos
}

// Len returns the number of bindings.
func (r *Registry[T]) Len() int {
	if !r.sealed.Load() {
		r.mu.RLock()
		defer r.mu.RUnlock()
	}
	return len(r.bindings)
}

// Name returns the registry name.
func (r *Registry[T]) Name() Name {
	return r.name
}

// WithClock sets a custom clock for timestamps and durations.
// Like the other With methods it has no effect once the registry is sealed.
func (r *Registry[T]) WithClock(clock clockz.Clock) *Registry[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed.Load() {
		return r
	}
	r.clock = clock
	return r
}

// WithLogger sets the logger used for bind, seal, and failure records.
// A nil logger disables logging.
func (r *Registry[T]) WithLogger(logger *zap.Logger) *Registry[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed.Load() {
		return r
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r.logger = logger
	return r
}

// WithAbortPolicy sets where InvokeOrAbort writes its diagnostic and how it exits.
func (r *Registry[T]) WithAbortPolicy(policy AbortPolicy) *Registry[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed.Load() {
		return r
	}
	r.abort = policy
	return r
}

// Metrics returns the metrics registry for this registry.
func (r *Registry[T]) Metrics() *metricz.Registry {
	return r.metrics
}

// Tracer returns the tracer for this registry.
func (r *Registry[T]) Tracer() *tracez.Tracer {
	return r.tracer
}

// OnBound registers a handler called asynchronously after each binding.
func (r *Registry[T]) OnBound(handler func(context.Context, RegistryEvent) error) error {
	_, err := r.hooks.Hook(RegistryEventBound, handler)
	return err
}

// OnFailure registers a handler called asynchronously when a transformation fails.
func (r *Registry[T]) OnFailure(handler func(context.Context, RegistryEvent) error) error {
	_, err := r.hooks.Hook(RegistryEventFailure, handler)
	return err
}

// OnSealed registers a handler called asynchronously when the registry is sealed.
func (r *Registry[T]) OnSealed(handler func(context.Context, RegistryEvent) error) error {
	_, err := r.hooks.Hook(RegistryEventSealed, handler)
	return err
}

// Close shuts down observability components.
func (r *Registry[T]) Close() error {
	if r.tracer != nil {
		r.tracer.Close()
	}
	r.hooks.Close()
	return nil
}

func (r *Registry[T]) lookup(key Key) (Transformation[T], bool) {
	if r.sealed.Load() {
		fn, ok := r.bindings[key]
		return fn, ok
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.bindings[key]
	return fn, ok
}

func (r *Registry[T]) getClock() clockz.Clock {
	if !r.sealed.Load() {
		r.mu.RLock()
		defer r.mu.RUnlock()
	}
	if r.clock == nil {
		return clockz.RealClock
	}
	return r.clock
}

func (r *Registry[T]) log() *zap.Logger {
	if !r.sealed.Load() {
		r.mu.RLock()
		defer r.mu.RUnlock()
	}
	return r.logger
}

// safe wraps fn so a panic becomes an error and the input is restored.
func safe[T any](fn Transformation[T]) Transformation[T] {
	return func(ctx context.Context, value T) (result T, err error) {
		defer recoverFromPanic(&result, &err, value)
		result, err = fn(ctx, value)
		return result, err
	}
}
