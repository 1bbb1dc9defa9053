package dirz

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Observability constants for the Pipeline.
const (
	// Metrics.
	PipelineRunsTotal      = metricz.Key("pipeline.runs.total")
	PipelineCompletedTotal = metricz.Key("pipeline.completed.total")
	PipelineFailedTotal    = metricz.Key("pipeline.failed.total")
	PipelineStepsCompleted = metricz.Key("pipeline.steps.completed")
	PipelineDurationMs     = metricz.Key("pipeline.duration.ms")

	// Spans.
	PipelineRunSpan  = tracez.Key("pipeline.run")
	PipelineStepSpan = tracez.Key("pipeline.step")

	// Tags.
	PipelineTagRunID      = tracez.Tag("pipeline.run_id")
	PipelineTagStepCount  = tracez.Tag("pipeline.step_count")
	PipelineTagStepNumber = tracez.Tag("pipeline.step_number")
	PipelineTagStepKey    = tracez.Tag("pipeline.step_key")
	PipelineTagStatus     = tracez.Tag("pipeline.status")
	PipelineTagError      = tracez.Tag("pipeline.error")

	// Hook event keys.
	PipelineEventStepComplete = hookz.Key("pipeline.step_complete")
	PipelineEventCompleted    = hookz.Key("pipeline.completed")
	PipelineEventFailed       = hookz.Key("pipeline.failed")
)

// Status is the position of a pipeline run in its lifecycle.
// Runs move linearly: Pending, Running, then Completed or Failed.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusCompleted
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusCompleted:
		return "completed"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Call names one registry invocation in a Pipeline.
type Call struct {
	Name      Name      `yaml:"step" json:"step"`
	Direction Direction `yaml:"direction" json:"direction"`
}

// Key returns the dispatch key of the call.
func (c Call) Key() Key {
	return Key(c)
}

// In builds a Call for a Forward binding.
func In(name Name) Call {
	return Call{Name: name, Direction: Forward}
}

// Out builds a Call for a Backward binding.
func Out(name Name) Call {
	return Call{Name: name, Direction: Backward}
}

// Report summarizes a single pipeline run.
// Step is the index of the step that was running when the run stopped,
// or -1 if no step started. RunID is unique per call to Run.
type Report struct {
	Pipeline  Name
	RunID     string
	Status    Status
	Step      int
	Steps     int
	Completed int
	Err       error
	Duration  time.Duration
}

// PipelineEvent is emitted via hookz as steps complete and when a run ends.
type PipelineEvent struct {
	Pipeline  Name          // Pipeline name
	RunID     string        // Run that produced the event
	Call      Call          // Step that completed or failed
	Step      int           // Step index (0-based)
	Steps     int           // Total steps
	Status    Status        // Run status after this event
	Error     error         // Failure, if any
	Duration  time.Duration // Step duration, or total run duration for terminal events
	Timestamp time.Time     // When the event occurred
}

// Pipeline runs an ordered list of calls against a Registry.
//
// Each call receives the state produced by the previous one. The first
// failure stops the run and the state as of the last successful step is
// returned together with a *PipelineError[T] that wraps the registry error.
// There are no retries; a caller may run again after correcting the cause.
//
// A Pipeline holds no state between runs, so identical inputs against
// identically populated registries produce identical results.
//
// Process has the Transformation signature, so a pipeline can itself be bound
// into a registry as a composite step.
//
// # Observability
//
// Metrics:
//   - pipeline.runs.total: Counter of runs
//   - pipeline.completed.total: Counter of completed runs
//   - pipeline.failed.total: Counter of failed runs
//   - pipeline.steps.completed: Gauge of steps completed in the last run
//   - pipeline.duration.ms: Gauge of the last run duration
//
// Traces:
//   - pipeline.run: Parent span for a run
//   - pipeline.step: Child span for each step
//
// Events (via hooks):
//   - pipeline.step_complete: Fired after each successful step
//   - pipeline.completed: Fired when every step succeeded
//   - pipeline.failed: Fired when a step failed
type Pipeline[T any] struct {
	name     Name
	registry *Registry[T]
	calls    []Call
	mu       sync.RWMutex
	clock    clockz.Clock
	metrics  *metricz.Registry
	tracer   *tracez.Tracer
	hooks    *hookz.Hooks[PipelineEvent]
}

// NewPipeline creates a Pipeline over registry with optional initial calls.
//
//	cycle := dirz.NewPipeline("carbon-cycle", registry,
//	    dirz.In("compress"),
//	    dirz.Out("oxygen"),
//	)
func NewPipeline[T any](name Name, registry *Registry[T], calls ...Call) *Pipeline[T] {
	metrics := metricz.New()
	metrics.Counter(PipelineRunsTotal)
	metrics.Counter(PipelineCompletedTotal)
	metrics.Counter(PipelineFailedTotal)
	metrics.Gauge(PipelineStepsCompleted)
	metrics.Gauge(PipelineDurationMs)

	return &Pipeline[T]{
		name:     name,
		registry: registry,
		calls:    slices.Clone(calls),
		clock:    clockz.RealClock,
		metrics:  metrics,
		tracer:   tracez.New(),
		hooks:    hookz.New[PipelineEvent](),
	}
}

// Then appends calls to the end of the pipeline.
func (p *Pipeline[T]) Then(calls ...Call) *Pipeline[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, calls...)
	return p
}

// Calls returns a copy of the pipeline's calls in order.
func (p *Pipeline[T]) Calls() []Call {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.calls)
}

// Len returns the number of calls.
func (p *Pipeline[T]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.calls)
}

// Validate checks that every call resolves to a binding and returns a
// *PipelineError[T] wrapping *UnknownBindingError for the first that does not.
func (p *Pipeline[T]) Validate() error {
	calls := p.Calls()
	for i, call := range calls {
		if _, ok := p.registry.Lookup(call.Name, call.Direction); !ok {
			return &PipelineError[T]{
				Pipeline: p.name,
				Step:     i,
				Call:     call,
				Err: &UnknownBindingError{
					Registry:  p.registry.Name(),
					Name:      call.Name,
					Direction: call.Direction,
				},
			}
		}
	}
	return nil
}

// Process runs the pipeline and returns the final state.
func (p *Pipeline[T]) Process(ctx context.Context, state T) (T, error) {
	result, _, err := p.Run(ctx, state)
	return result, err
}

// Run executes every call in order and reports how far it got.
func (p *Pipeline[T]) Run(ctx context.Context, state T) (result T, report *Report, err error) {
	if ctx == nil {
		ctx = context.Background()
	}

	calls := p.Calls()
	clock := p.getClock()

	report = &Report{
		Pipeline: p.name,
		RunID:    uuid.NewString(),
		Status:   StatusPending,
		Step:     -1,
		Steps:    len(calls),
	}

	p.metrics.Counter(PipelineRunsTotal).Inc()
	start := clock.Now()

	ctx, span := p.tracer.StartSpan(ctx, PipelineRunSpan)
	span.SetTag(PipelineTagRunID, report.RunID)
	span.SetTag(PipelineTagStepCount, fmt.Sprintf("%d", len(calls)))
	defer func() {
		report.Duration = clock.Since(start)
		p.metrics.Gauge(PipelineDurationMs).Set(float64(report.Duration.Milliseconds()))
		p.metrics.Gauge(PipelineStepsCompleted).Set(float64(report.Completed))
		span.SetTag(PipelineTagStatus, report.Status.String())
		if err != nil {
			span.SetTag(PipelineTagError, err.Error())
		}
		span.Finish()
	}()

	result = state
	for i, call := range calls {
		report.Status = StatusRunning
		report.Step = i

		stepCtx, stepSpan := p.tracer.StartSpan(ctx, PipelineStepSpan)
		stepSpan.SetTag(PipelineTagStepNumber, fmt.Sprintf("%d", i+1))
		stepSpan.SetTag(PipelineTagStepKey, call.Key().String())

		stepStart := clock.Now()
		next, stepErr := p.registry.Invoke(stepCtx, call.Name, call.Direction, result)
		stepDuration := clock.Since(stepStart)
		stepSpan.Finish()

		if stepErr != nil {
			report.Status = StatusFailed
			report.Err = stepErr
			p.metrics.Counter(PipelineFailedTotal).Inc()

			_ = p.hooks.Emit(ctx, PipelineEventFailed, PipelineEvent{ //nolint:errcheck
				Pipeline:  p.name,
				RunID:     report.RunID,
				Call:      call,
				Step:      i,
				Steps:     len(calls),
				Status:    StatusFailed,
				Error:     stepErr,
				Duration:  stepDuration,
				Timestamp: clock.Now(),
			})

			return result, report, &PipelineError[T]{
				Pipeline: p.name,
				Step:     i,
				Call:     call,
				Err:      stepErr,
			}
		}

		result = next
		report.Completed++

		_ = p.hooks.Emit(ctx, PipelineEventStepComplete, PipelineEvent{ //nolint:errcheck
			Pipeline:  p.name,
			RunID:     report.RunID,
			Call:      call,
			Step:      i,
			Steps:     len(calls),
			Status:    StatusRunning,
			Duration:  stepDuration,
			Timestamp: clock.Now(),
		})
	}

	report.Status = StatusCompleted
	p.metrics.Counter(PipelineCompletedTotal).Inc()

	_ = p.hooks.Emit(ctx, PipelineEventCompleted, PipelineEvent{ //nolint:errcheck
		Pipeline:  p.name,
		RunID:     report.RunID,
		Step:      report.Step,
		Steps:     len(calls),
		Status:    StatusCompleted,
		Duration:  clock.Since(start),
		Timestamp: clock.Now(),
	})

	return result, report, nil
}

// Name returns the pipeline name.
func (p *Pipeline[T]) Name() Name {
	return p.name
}

// WithClock sets a custom clock for durations and timestamps.
func (p *Pipeline[T]) WithClock(clock clockz.Clock) *Pipeline[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clock = clock
	return p
}

// Metrics returns the metrics registry for this pipeline.
func (p *Pipeline[T]) Metrics() *metricz.Registry {
	return p.metrics
}

// Tracer returns the tracer for this pipeline.
func (p *Pipeline[T]) Tracer() *tracez.Tracer {
	return p.tracer
}

// OnStepComplete registers a handler called asynchronously after each successful step.
func (p *Pipeline[T]) OnStepComplete(handler func(context.Context, PipelineEvent) error) error {
	_, err := p.hooks.Hook(PipelineEventStepComplete, handler)
	return err
}

// OnCompleted registers a handler called asynchronously when a run completes.
func (p *Pipeline[T]) OnCompleted(handler func(context.Context, PipelineEvent) error) error {
	_, err := p.hooks.Hook(PipelineEventCompleted, handler)
	return err
}

// OnFailed registers a handler called asynchronously when a run fails.
func (p *Pipeline[T]) OnFailed(handler func(context.Context, PipelineEvent) error) error {
	_, err := p.hooks.Hook(PipelineEventFailed, handler)
	return err
}

// Close shuts down observability components.
func (p *Pipeline[T]) Close() error {
	if p.tracer != nil {
		p.tracer.Close()
	}
	p.hooks.Close()
	return nil
}

func (p *Pipeline[T]) getClock() clockz.Clock {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.clock == nil {
		return clockz.RealClock
	}
	return p.clock
}
