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

// Tracer creates trace spans. Implementations must be safe for concurrent use.
// Use NoOpTracer when tracing is disabled.
type Tracer interface {
	// StartSpan creates a span named name. Callers must End it.
	//
	//   span := tracer.StartSpan("workflow.apply")
	//   defer span.End()
	StartSpan(name string) Span
}

// Span is a single unit of traced work.
type Span interface {
	// End marks the span as complete.
	End()

	// SetAttribute attaches a key/value pair. Values are strings, integers,
	// booleans or floats; anything else is rendered with fmt.
	SetAttribute(key string, value interface{})

	// RecordError records an error on the span without ending it.
	RecordError(err error)
}

// MetricsCollector collects metrics by name.
// Implementations must be safe for concurrent use.
// Use NoOpMetrics when metrics are disabled.
type MetricsCollector interface {
	// Inc increments the counter name by 1.
	Inc(name string)

	// Add adds value to the counter name.
	Add(name string, value float64)

	// Observe records value in the histogram name, e.g. "transition_duration_seconds".
	Observe(name string, value float64)

	// Set sets the gauge name.
	Set(name string, value float64)
}

// Logger handles leveled structured logging.
// Implementations must be safe for concurrent use.
//
// Fields are passed as a map so call sites read like records:
//
//	logger.Info("transition applied", map[string]interface{}{
//	    "workflow":   "article_publishing",
//	    "transition": "publish",
//	})
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}
