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

package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	execctx "github.com/flowstone/engine/context"
)

var (
	_ execctx.Tracer = (*OTelTracer)(nil)
	_ execctx.Span   = (*OTelSpan)(nil)
)

// OTelTracer starts OpenTelemetry spans for the engine.
type OTelTracer struct {
	tracer trace.Tracer
}

// NewOTelTracer wraps an OpenTelemetry tracer, typically obtained with
// otel.Tracer("flowstone").
func NewOTelTracer(tracer trace.Tracer) *OTelTracer {
	return &OTelTracer{tracer: tracer}
}

// StartSpan implements execctx.Tracer with a root span.
func (t *OTelTracer) StartSpan(name string) execctx.Span {
	return t.StartSpanContext(context.Background(), name)
}

// StartSpanContext starts a span as a child of any span carried by ctx.
func (t *OTelTracer) StartSpanContext(ctx context.Context, name string) execctx.Span {
	_, span := t.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindInternal))
	return &OTelSpan{span: span}
}

// OTelSpan adapts trace.Span.
type OTelSpan struct {
	span trace.Span
}

// Span returns the underlying OpenTelemetry span.
func (s *OTelSpan) Span() trace.Span {
	return s.span
}

// End implements execctx.Span.
func (s *OTelSpan) End() {
	s.span.End()
}

// SetAttribute implements execctx.Span.
func (s *OTelSpan) SetAttribute(key string, value interface{}) {
	s.span.SetAttributes(toAttribute(key, value))
}

// RecordError implements execctx.Span and marks the span as failed.
func (s *OTelSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func toAttribute(key string, value interface{}) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	default:
		return attribute.String(key, fmt.Sprint(v))
	}
}
