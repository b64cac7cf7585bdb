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

	"github.com/flowstone/engine/petri"
	"github.com/flowstone/engine/state"
)

// GuardFunc decides whether an otherwise enabled transition may fire.
// It returns false to veto, with an optional human-readable reason that is
// passed to the caller in a TransitionBlockedError.
type GuardFunc func(ctx context.Context, subject state.Subject, t *petri.Transition, m state.Marking) (allow bool, reason string)

type guardEntry struct {
	workflow   string
	transition string
	fn         GuardFunc
}

func (g guardEntry) matches(workflow, transition string) bool {
	return (g.workflow == "" || g.workflow == workflow) &&
		(g.transition == "" || g.transition == transition)
}

// AddGuard registers fn for transition in workflow. An empty workflow or
// transition matches all. Guards for one transition run in registration
// order and the first veto wins.
func (e *Engine) AddGuard(workflow, transition string, fn GuardFunc) {
	if fn == nil {
		return
	}
	e.guardsMu.Lock()
	defer e.guardsMu.Unlock()
	e.guards = append(e.guards, guardEntry{workflow: workflow, transition: transition, fn: fn})
}

func (e *Engine) guardsFor(workflow, transition string) []GuardFunc {
	e.guardsMu.RLock()
	defer e.guardsMu.RUnlock()

	var out []GuardFunc
	for _, g := range e.guards {
		if g.matches(workflow, transition) {
			out = append(out, g.fn)
		}
	}
	return out
}

// evaluateGuardSafely runs one guard, turning a panic into a veto.
func (e *Engine) evaluateGuardSafely(ctx context.Context, fn GuardFunc, def *petri.Definition, subject state.Subject, t *petri.Transition, m state.Marking) (allow bool, reason string) {
	defer func() {
		if r := recover(); r != nil {
			allow = false
			reason = fmt.Sprintf("guard panicked: %v", r)
			e.ctx.Logger.Error("guard panicked", map[string]interface{}{
				"workflow":   def.Name(),
				"transition": t.Name,
				"panic":      r,
			})
			e.ctx.Metrics.Inc(MetricGuardPanics)
		}
	}()

	allow, reason = fn(ctx, subject, t, m.Clone())
	if !allow && reason == "" {
		reason = "vetoed by guard"
	}
	return allow, reason
}
