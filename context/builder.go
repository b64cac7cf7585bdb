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

package context

import (
	stdcontext "context"

	"github.com/flowstone/engine/clock"
)

// ExecutionContextBuilder provides a fluent API for building an ExecutionContext.
type ExecutionContextBuilder struct {
	ctx           stdcontext.Context
	clock         clock.Clock
	logger        Logger
	metrics       MetricsCollector
	tracer        Tracer
	errorRecorder ErrorRecorder
}

// NewExecutionContextBuilder creates a builder with a background context and a real-time clock.
func NewExecutionContextBuilder() *ExecutionContextBuilder {
	return &ExecutionContextBuilder{
		ctx:   stdcontext.Background(),
		clock: clock.NewRealTimeClock(),
	}
}

// WithContext sets the standard context.
func (b *ExecutionContextBuilder) WithContext(ctx stdcontext.Context) *ExecutionContextBuilder {
	b.ctx = ctx
	return b
}

// WithClock sets the clock.
func (b *ExecutionContextBuilder) WithClock(clk clock.Clock) *ExecutionContextBuilder {
	b.clock = clk
	return b
}

// WithLogger sets the logger.
func (b *ExecutionContextBuilder) WithLogger(logger Logger) *ExecutionContextBuilder {
	b.logger = logger
	return b
}

// WithMetrics sets the metrics collector.
func (b *ExecutionContextBuilder) WithMetrics(metrics MetricsCollector) *ExecutionContextBuilder {
	b.metrics = metrics
	return b
}

// WithTracer sets the tracer.
func (b *ExecutionContextBuilder) WithTracer(tracer Tracer) *ExecutionContextBuilder {
	b.tracer = tracer
	return b
}

// WithErrorRecorder sets the error recorder.
func (b *ExecutionContextBuilder) WithErrorRecorder(recorder ErrorRecorder) *ExecutionContextBuilder {
	b.errorRecorder = recorder
	return b
}

// Build creates the ExecutionContext. Unset capabilities fall back to NoOp implementations.
func (b *ExecutionContextBuilder) Build() *ExecutionContext {
	ec := &ExecutionContext{
		Context:       b.ctx,
		Clock:         b.clock,
		Logger:        b.logger,
		Metrics:       b.metrics,
		Tracer:        b.tracer,
		ErrorRecorder: b.errorRecorder,
	}
	ec.ensureObservability()
	return ec
}
