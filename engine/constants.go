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

package engine

// DefaultWorkflowKey selects the workflow for subjects that do not
// implement state.HasWorkflowKey.
const DefaultWorkflowKey = "default"

// Metric names reported through the execution context's MetricsCollector.
const (
	// MetricTransitionsApplied counts transitions committed.
	MetricTransitionsApplied = "transitions_applied_total"

	// MetricTransitionsDenied counts Apply calls rejected before any hook
	// beyond guard ran: not enabled, unauthorized or blocked.
	MetricTransitionsDenied = "transitions_denied_total"

	// MetricHookErrors counts failed hook subscribers, pre- and post-commit.
	MetricHookErrors = "hook_errors_total"

	// MetricGuardPanics counts guard functions that panicked.
	MetricGuardPanics = "guard_panic_total"

	// MetricTransitionDuration observes Apply latency in seconds.
	MetricTransitionDuration = "transition_duration_seconds"
)

// SpanApply names the span started for each Apply.
const SpanApply = "workflow.apply"
