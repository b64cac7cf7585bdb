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
	"fmt"

	"github.com/google/uuid"

	"github.com/flowstone/engine/event"
	"github.com/flowstone/engine/petri"
	"github.com/flowstone/engine/state"
)

// WorkflowHandle pairs a subject's Definition and Marking with the caller's
// roles for one unit of work. It is not safe for concurrent use and is not
// meant to outlive the request that created it.
type WorkflowHandle struct {
	engine  *Engine
	ctx     context.Context
	def     *petri.Definition
	subject state.Subject
	marking state.Marking
	roles   []string
}

// Definition returns the subject's workflow definition.
func (h *WorkflowHandle) Definition() *petri.Definition {
	return h.def
}

// Subject returns the subject the handle operates on.
func (h *WorkflowHandle) Subject() state.Subject {
	return h.subject
}

// Marking returns the current marking. After a successful Apply it is the
// committed marking.
func (h *WorkflowHandle) Marking() state.Marking {
	return h.marking.Clone()
}

// Roles returns the caller's roles.
func (h *WorkflowHandle) Roles() []string {
	return append([]string(nil), h.roles...)
}

// Enabled returns the transitions the current marking allows, in
// declaration order, regardless of roles and guards.
func (h *WorkflowHandle) Enabled() []*petri.Transition {
	return Enabled(h.def, h.marking)
}

// Authorized returns the enabled transitions the caller's roles permit.
func (h *WorkflowHandle) Authorized() []*petri.Transition {
	return FilterAuthorized(h.Enabled(), h.roles)
}

// Can runs the checks Apply would make before leaving any place: the
// transition exists, is enabled, is authorized and passes every guard.
// Guard hooks are dispatched; nothing is committed.
func (h *WorkflowHandle) Can(name string) error {
	_, err := h.check(name)
	return err
}

// check performs validation, authorization and guard evaluation.
func (h *WorkflowHandle) check(name string) (*petri.Transition, error) {
	t, ok := h.def.Transition(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q in %q", ErrUnknownTransition, name, h.def.Name())
	}

	if !IsEnabled(h.def.Kind(), h.marking, t) {
		return nil, &TransitionNotEnabledError{
			Workflow:   h.def.Name(),
			Transition: t.Name,
			Marking:    h.marking.String(),
		}
	}

	if !Authorized(t, h.roles) {
		return nil, &UnauthorizedTransitionError{
			Workflow:   h.def.Name(),
			Transition: t.Name,
			Required:   t.Roles(),
			Roles:      h.Roles(),
		}
	}

	reasons, err := h.evaluateGuards(t)
	if err != nil {
		return nil, err
	}
	if len(reasons) > 0 {
		return nil, &TransitionBlockedError{
			Workflow:   h.def.Name(),
			Transition: t.Name,
			Reasons:    reasons,
		}
	}
	return t, nil
}

// evaluateGuards runs guard functions, then guard hook subscribers, and
// returns the veto reasons of the first vetoing guard. A failing guard hook
// subscriber is an error, not a veto.
func (h *WorkflowHandle) evaluateGuards(t *petri.Transition) ([]string, error) {
	for _, fn := range h.engine.guardsFor(h.def.Name(), t.Name) {
		if allow, reason := h.engine.evaluateGuardSafely(h.ctx, fn, h.def, h.subject, t, h.marking); !allow {
			return []string{reason}, nil
		}
	}

	e := h.newEvent(event.Guard, t, "", h.marking.Clone(), state.Marking{})
	if err := h.engine.dispatchPreCommit(h.ctx, e); err != nil {
		return nil, err
	}
	if e.Blocked() {
		return e.Reasons(), nil
	}
	return nil, nil
}

// newEvent builds the event for point. Post-commit events pass the marking
// read before the transition as before, since h.marking already holds after.
func (h *WorkflowHandle) newEvent(point event.HookPoint, t *petri.Transition, place string, before, after state.Marking) *event.Event {
	return &event.Event{
		ID:         uuid.NewString(),
		Point:      point,
		Workflow:   h.def.Name(),
		Subject:    h.subject,
		Transition: t,
		Place:      place,
		Roles:      h.Roles(),
		Before:     before,
		After:      after,
		Timestamp:  h.engine.ctx.Clock.Now(),
	}
}

// fields returns the base log fields for t.
func (h *WorkflowHandle) fields(transition string) map[string]interface{} {
	return map[string]interface{}{
		"workflow":     h.def.Name(),
		"transition":   transition,
		"subject_type": h.subject.SubjectType(),
		"subject_id":   h.subject.SubjectID(),
	}
}
