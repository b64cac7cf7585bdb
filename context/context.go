// Copyright 2026 The Flowstone Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package context provides the ExecutionContext carried through every
// workflow operation of the flowstone engine.
//
// ExecutionContext bundles the capabilities an operation may need:
//   - a standard Go context for the current call
//   - a Clock for timestamps
//   - observability (Tracer, Metrics, Logger)
//   - an ErrorRecorder for errors that are reported but not returned
//
// Every capability defaults to a NoOp implementation, so an engine built
// without observability pays nothing for it:
//
//	ec := context.NewExecutionContext(context.Background(), clock.NewRealTimeClock())
//	ec = ec.WithLogger(observability.NewSlogLogger(slog.Default()))
//
// One ExecutionContext is shared by an engine and every handle it creates.
package context

import (
	"context"

	"github.com/flowstone/engine/clock"
)

// ExecutionContext carries capabilities through workflow operations.
// Values are treated as immutable: the With* methods return modified copies.
type ExecutionContext struct {
	// Context is the standard Go context of the current call.
	Context context.Context

	// Clock provides timestamps for events and cache expiry.
	Clock clock.Clock

	// Tracer handles distributed tracing. Defaults to NoOpTracer.
	Tracer Tracer

	// Metrics handles metrics collection. Defaults to NoOpMetrics.
	Metrics MetricsCollector

	// Logger handles structured logging. Defaults to NoOpLogger.
	Logger Logger

	// ErrorRecorder receives errors that do not fail the operation,
	// such as post-commit hook failures. Defaults to NoOpErrorRecorder.
	ErrorRecorder ErrorRecorder
}

// NewExecutionContext creates an execution context with NoOp observability.
// A nil clock is replaced with a RealTimeClock.
func NewExecutionContext(ctx context.Context, clk clock.Clock) *ExecutionContext {
	if ctx == nil {
		ctx = context.Background()
	}
	if clk == nil {
		clk = clock.NewRealTimeClock()
	}
	ec := &ExecutionContext{
		Context: ctx,
		Clock:   clk,
	}
	ec.ensureObservability()
	return ec
}

// ensureObservability replaces nil components with NoOp implementations.
func (e *ExecutionContext) ensureObservability() {
	if e.Logger == nil {
		e.Logger = &NoOpLogger{}
	}
	if e.Metrics == nil {
		e.Metrics = &NoOpMetrics{}
	}
	if e.Tracer == nil {
		e.Tracer = &NoOpTracer{}
	}
	if e.ErrorRecorder == nil {
		e.ErrorRecorder = &NoOpErrorRecorder{}
	}
	if e.Clock == nil {
		e.Clock = clock.NewRealTimeClock()
	}
	if e.Context == nil {
		e.Context = context.Background()
	}
}

// WithContext returns a copy bound to the given Go context.
func (e *ExecutionContext) WithContext(ctx context.Context) *ExecutionContext {
	newCtx := *e
	newCtx.Context = ctx
	newCtx.ensureObservability()
	return &newCtx
}

// WithClock returns a copy using the given clock.
func (e *ExecutionContext) WithClock(clk clock.Clock) *ExecutionContext {
	newCtx := *e
	newCtx.Clock = clk
	newCtx.ensureObservability()
	return &newCtx
}

// WithTracer returns a copy using the given tracer.
func (e *ExecutionContext) WithTracer(tracer Tracer) *ExecutionContext {
	newCtx := *e
	newCtx.Tracer = tracer
	newCtx.ensureObservability()
	return &newCtx
}

// WithMetrics returns a copy using the given metrics collector.
func (e *ExecutionContext) WithMetrics(metrics MetricsCollector) *ExecutionContext {
	newCtx := *e
	newCtx.Metrics = metrics
	newCtx.ensureObservability()
	return &newCtx
}

// WithLogger returns a copy using the given logger.
func (e *ExecutionContext) WithLogger(logger Logger) *ExecutionContext {
	newCtx := *e
	newCtx.Logger = logger
	newCtx.ensureObservability()
	return &newCtx
}

// WithErrorRecorder returns a copy using the given error recorder.
func (e *ExecutionContext) WithErrorRecorder(recorder ErrorRecorder) *ExecutionContext {
	newCtx := *e
	newCtx.ErrorRecorder = recorder
	newCtx.ensureObservability()
	return &newCtx
}

// Clone returns a builder seeded with this context's capabilities.
func (e *ExecutionContext) Clone() *ExecutionContextBuilder {
	return &ExecutionContextBuilder{
		ctx:           e.Context,
		clock:         e.Clock,
		logger:        e.Logger,
		metrics:       e.Metrics,
		tracer:        e.Tracer,
		errorRecorder: e.ErrorRecorder,
	}
}
