// Package telemetry provides hierarchical timing collection for
// analysis operations. Timings form a tree, so a slow document update
// can be broken down into its parse, index, and diagnostic phases.
//
// Collectors travel through context, so instrumentation stays out of
// function signatures and costs nothing when disabled:
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.FromContext(ctx).Start("check main.beancount")
//	defer timer.End()
//
//	child := timer.Child("parse")
//	// ... work ...
//	child.End()
//
//	collector.Report(os.Stderr)
package telemetry

import (
	"context"
	"io"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

var collectorKey = contextKey{}

// Collector gathers timing data for a run.
type Collector interface {
	// Start begins timing an operation. The returned timer must be
	// ended when the operation completes.
	Start(name string) Timer

	// Report writes the collected timings.
	Report(w io.Writer)
}

// Timer tracks a single operation. Timers nest via Child.
type Timer interface {
	// End stops the timer and records the duration.
	End()

	// Child creates a nested timer under this one.
	Child(name string) Timer
}

// WithCollector attaches a collector to the context.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext extracts the collector from the context. When none is
// present it returns a collector that does nothing, so callers never
// need a nil check.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}
