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

// ErrorRecorder records errors that are reported but not returned to the caller.
// Implementations must be safe for concurrent use.
//
// The engine reports post-commit hook failures here: the transition already
// committed, so the error is observable but does not fail the operation.
type ErrorRecorder interface {
	// RecordError records an error with optional metadata such as
	// "workflow", "transition", "hook_point" and "subject_id".
	RecordError(err error, metadata map[string]interface{})
}

// NoOpErrorRecorder is the default ErrorRecorder. It discards everything.
type NoOpErrorRecorder struct{}

// RecordError is a no-op.
func (n *NoOpErrorRecorder) RecordError(err error, metadata map[string]interface{}) {}
