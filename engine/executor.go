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

import (
	"context"
	"errors"
	"fmt"

	execctx "github.com/flowstone/engine/context"
	"github.com/flowstone/engine/event"
	"github.com/flowstone/engine/petri"
	"github.com/flowstone/engine/state"
)

// Result describes a committed transition.
type Result struct {
	// Transition is the transition applied.
	Transition *petri.Transition

	// Before is the marking prior to the transition.
	Before state.Marking

	// After is the committed marking.
	After state.Marking

	// HookErrors holds failures of entered, completed and announce
	// subscribers. They do not affect the committed marking.
	HookErrors []error
}

// Apply fires the named transition and commits the new marking.
//
// Steps, in order:
//  1. the transition must be enabled (TransitionNotEnabledError)
//  2. the caller's roles must permit it (UnauthorizedTransitionError)
//  3. guards and guard hooks may veto (TransitionBlockedError)
//  4. leave hooks run once per consumed place
//  5. transition hooks run once
//  6. the new marking is computed
//  7. enter hooks run once per produced place
//  8. the new marking is committed in a single write
//  9. entered hooks run once per produced place
//  10. completed hooks run once
//  11. announce hooks run once
//
// An error from steps 1 to 8 aborts Apply and nothing is persisted.
// Failures in steps 9 to 11 are collected in Result.HookErrors and Apply
// still succeeds.
func (h *WorkflowHandle) Apply(name string) (*Result, error) {
	e := h.engine
	start := e.ctx.Clock.Now()
	fields := h.fields(name)

	span := e.startSpan(h.ctx, SpanApply)
	defer span.End()
	span.SetAttribute("workflow", h.def.Name())
	span.SetAttribute("transition", name)
	span.SetAttribute("subject_type", h.subject.SubjectType())
	span.SetAttribute("subject_id", h.subject.SubjectID())

	t, err := h.check(name)
	if err != nil {
		span.RecordError(err)
		if IsDenial(err) {
			e.ctx.Metrics.Inc(MetricTransitionsDenied)
			fields["error"] = err.Error()
			e.ctx.Logger.Debug("transition denied", fields)
			return nil, err
		}
		return nil, h.abort(fields, err)
	}

	before := h.marking.Clone()

	for _, p := range t.From {
		if !before.IsActive(p) {
			continue
		}
		if err := e.dispatchPreCommit(h.ctx, h.newEvent(event.Leave, t, p, before.Clone(), state.Marking{})); err != nil {
			span.RecordError(err)
			return nil, h.abort(fields, err)
		}
	}

	if err := e.dispatchPreCommit(h.ctx, h.newEvent(event.Transition, t, "", before.Clone(), state.Marking{})); err != nil {
		span.RecordError(err)
		return nil, h.abort(fields, err)
	}

	after, err := before.Apply(h.def.Kind(), t)
	if err != nil {
		span.RecordError(err)
		return nil, h.abort(fields, err)
	}

	for _, p := range t.To {
		if err := e.dispatchPreCommit(h.ctx, h.newEvent(event.Enter, t, p, before.Clone(), after.Clone())); err != nil {
			span.RecordError(err)
			return nil, h.abort(fields, err)
		}
	}

	if err := e.commit(h.ctx, h.def, h.subject, after); err != nil {
		err = fmt.Errorf("engine: commit %q: %w", t.Name, err)
		span.RecordError(err)
		fields["error"] = err.Error()
		e.ctx.Logger.Error("marking commit failed", fields)
		e.ctx.ErrorRecorder.RecordError(err, fields)
		return nil, err
	}
	h.marking = after

	result := &Result{Transition: t, Before: before, After: after.Clone()}
	for _, p := range t.To {
		result.HookErrors = append(result.HookErrors, h.dispatchPostCommit(h.newEvent(event.Entered, t, p, before.Clone(), after.Clone()))...)
	}
	result.HookErrors = append(result.HookErrors, h.dispatchPostCommit(h.newEvent(event.Completed, t, "", before.Clone(), after.Clone()))...)
	result.HookErrors = append(result.HookErrors, h.dispatchPostCommit(h.newEvent(event.Announce, t, "", before.Clone(), after.Clone()))...)

	e.ctx.Metrics.Inc(MetricTransitionsApplied)
	e.ctx.Metrics.Observe(MetricTransitionDuration, e.ctx.Clock.Now().Sub(start).Seconds())
	span.SetAttribute("marking", after.String())
	span.SetAttribute("hook_errors", len(result.HookErrors))

	logFields := h.fields(t.Name)
	logFields["from"] = before.String()
	logFields["to"] = after.String()
	logFields["hook_errors"] = len(result.HookErrors)
	e.ctx.Logger.Info("transition applied", logFields)

	return result, nil
}

// abort logs and reports a failure before commit.
func (h *WorkflowHandle) abort(fields map[string]interface{}, err error) error {
	var hookErr *event.HookError
	if errors.As(err, &hookErr) {
		fields["hook_point"] = string(hookErr.Point)
	}
	fields["error"] = err.Error()
	h.engine.ctx.Logger.Error("transition aborted before commit", fields)
	h.engine.ctx.ErrorRecorder.RecordError(err, fields)
	return err
}

// dispatchPostCommit runs every matching subscriber of a post-commit point
// and reports each failure without stopping.
func (h *WorkflowHandle) dispatchPostCommit(ev *event.Event) []error {
	errs := h.engine.hooks.DispatchIsolated(h.ctx, ev)
	for _, err := range errs {
		fields := h.fields(ev.Transition.Name)
		fields["hook_point"] = string(ev.Point)
		fields["error"] = err.Error()
		h.engine.ctx.Logger.Warn("post-commit hook failed", fields)
		h.engine.ctx.ErrorRecorder.RecordError(err, fields)
	}
	if len(errs) > 0 {
		h.engine.ctx.Metrics.Add(MetricHookErrors, float64(len(errs)))
	}
	return errs
}

// dispatchPreCommit runs the subscribers of a pre-commit point. Without
// fault isolation the first failure stops dispatch; with it every
// subscriber runs and the failures are joined.
func (e *Engine) dispatchPreCommit(ctx context.Context, ev *event.Event) error {
	if !e.config.FaultIsolation {
		err := e.hooks.Dispatch(ctx, ev)
		if err != nil {
			e.ctx.Metrics.Inc(MetricHookErrors)
		}
		return err
	}

	errs := e.hooks.DispatchIsolated(ctx, ev)
	if len(errs) == 0 {
		return nil
	}
	e.ctx.Metrics.Add(MetricHookErrors, float64(len(errs)))
	return errors.Join(errs...)
}

// contextTracer is implemented by tracers that can parent spans on a
// context, such as observability.OTelTracer.
type contextTracer interface {
	StartSpanContext(ctx context.Context, name string) execctx.Span
}

func (e *Engine) startSpan(ctx context.Context, name string) execctx.Span {
	if ct, ok := e.ctx.Tracer.(contextTracer); ok {
		return ct.StartSpanContext(ctx, name)
	}
	return e.ctx.Tracer.StartSpan(name)
}
