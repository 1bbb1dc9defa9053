// Package dirz provides a type-safe registry of named, directional transformations
// over caller-owned state, with fail-fast invocation and failures reported as values.
//
// # Overview
//
// A transformation is a function that accepts one state value and returns either
// the updated state or an error. dirz binds transformations to a name and a
// direction, dispatches calls by that (name, direction) key, and reports every
// failure back to the caller. The library never terminates its host process on
// its own; the only path to process exit is the explicit InvokeOrAbort policy.
//
// # Installation
//
//	go get github.com/zoobzio/dirz
//
// # Core Concepts
//
//   - Direction: Forward (interior to exterior, tagged IN) or Backward
//     (exterior to interior, tagged OUT)
//   - Transformation[T]: func(context.Context, T) (T, error)
//   - Step[T]: an immutable (name, direction, transformation) value built with
//     adapters (Transform, Apply, Effect, Guard)
//   - Registry[T]: the binding table with O(1) dispatch
//   - Pipeline[T]: an ordered list of calls executed against a Registry
//
// Bindings are created during initialization. Once Seal is called the table is
// read-only and may be shared by concurrent callers without locking.
//
// # Quick Start
//
//	type Ecosystem struct {
//	    Carbon int
//	    Oxygen int
//	}
//
//	registry := dirz.NewRegistry[*Ecosystem]("earth")
//	_ = registry.Register(
//	    dirz.Guard("compress", dirz.Forward,
//	        func(_ context.Context, e *Ecosystem) bool { return e.Carbon >= 10 },
//	        func(_ context.Context, e *Ecosystem) *Ecosystem { e.Carbon -= 10; return e },
//	        errors.New("not enough carbon"),
//	    ),
//	    dirz.Transform("oxygen", dirz.Backward, func(_ context.Context, e *Ecosystem) *Ecosystem {
//	        e.Oxygen += 5
//	        return e
//	    }),
//	)
//	registry.Seal()
//
//	world := &Ecosystem{Carbon: 50}
//	world, err := registry.Invoke(ctx, "compress", dirz.Forward, world)
//
// # Error Handling
//
// Every error returned by the registry is one of:
//
//   - *DuplicateBindingError: the (name, direction) key is already bound
//   - *UnknownBindingError: no binding for the requested key
//   - *TransformError[T]: the transformation rejected its input
//
// Each matches its sentinel through errors.Is (ErrDuplicateBinding,
// ErrUnknownBinding, ErrTransformFailed). On any invocation failure the input
// state is returned unchanged.
//
//	_, err := registry.Invoke(ctx, "compress", dirz.Forward, world)
//	var te *dirz.TransformError[*Ecosystem]
//	if errors.As(err, &te) {
//	    log.Printf("%s %s: %v", te.Direction, te.Name, te.Reason)
//	}
//
// # Pipelines
//
// A Pipeline runs an ordered list of calls and reports how far it got:
//
//	cycle := dirz.NewPipeline("carbon-cycle", registry,
//	    dirz.In("compress"),
//	    dirz.Out("oxygen"),
//	)
//	world, report, err := cycle.Run(ctx, world)
//	fmt.Println(report.Status, report.Completed, report.Steps)
//
// # Fail-Fast Policy
//
// InvokeOrAbort is the opt-in terminating variant of Invoke. On failure it
// writes a direction-tagged line to the abort writer and exits with status 1:
//
//	[IN] compress failed → not enough carbon
//
// Tests replace the writer and exit function with WithAbortPolicy.
//
// # Observability
//
// Registries and pipelines carry metricz counters, tracez spans and hookz
// events. Logging is off unless WithLogger supplies a *zap.Logger.
//
// # Testing
//
// The dirz/testing package provides MockTransformation and invocation
// assertions. Use WithClock with clockz.NewFakeClock for deterministic
// timestamps and durations.
package dirz
