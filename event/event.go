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

// Package event provides the hook registry the engine dispatches to while
// applying a transition.
//
// Subscribers register for one hook point and may narrow what they receive
// by workflow name and by place or transition name. Dispatch is synchronous:
// subscribers run in registration order on the caller's goroutine.
//
// Example usage:
//
//	reg := event.NewRegistry()
//	reg.Subscribe(event.Entered, "article_publishing", "published",
//	    func(ctx context.Context, e *event.Event) error {
//	        return notify(ctx, e.Subject)
//	    })
package event

import (
	"context"
	"fmt"
	"time"

	"github.com/flowstone/engine/petri"
	"github.com/flowstone/engine/state"
)

// HookPoint names a moment in the transition lifecycle.
type HookPoint string

const (
	// Guard runs before anything else; subscribers may veto with Event.Block.
	Guard HookPoint = "guard"

	// Leave runs once per from place while the old marking is still current.
	Leave HookPoint = "leave"

	// Transition runs once while the subject is between places.
	Transition HookPoint = "transition"

	// Enter runs once per to place before the new marking is committed.
	Enter HookPoint = "enter"

	// Entered runs once per to place after the new marking is committed.
	Entered HookPoint = "entered"

	// Completed runs once after the whole transition succeeded.
	Completed HookPoint = "completed"

	// Announce runs last, once per transition, to signal a marking change.
	Announce HookPoint = "announce"
)

// Points lists every hook point in dispatch order.
var Points = []HookPoint{Guard, Leave, Transition, Enter, Entered, Completed, Announce}

// Valid reports whether p is a known hook point.
func (p HookPoint) Valid() bool {
	for _, known := range Points {
		if p == known {
			return true
		}
	}
	return false
}

// PlaceScoped reports whether p is dispatched per place rather than per
// transition. Name filters on place-scoped points match the place name.
func (p HookPoint) PlaceScoped() bool {
	return p == Leave || p == Enter || p == Entered
}

// PostCommit reports whether p runs after the new marking is committed.
func (p HookPoint) PostCommit() bool {
	return p == Entered || p == Completed || p == Announce
}

// Event describes one hook invocation. It is created by the engine right
// before dispatch and is not retained afterwards.
type Event struct {
	// ID is unique per event.
	ID string

	// Point is the hook point being dispatched.
	Point HookPoint

	// Workflow is the name of the definition.
	Workflow string

	// Subject is the entity the transition is applied to.
	Subject state.Subject

	// Transition is the transition being applied.
	Transition *petri.Transition

	// Place is set for place-scoped points only.
	Place string

	// Roles is the caller's resolved role set.
	Roles []string

	// Before is the marking prior to the transition.
	Before state.Marking

	// After is the new marking. It is the zero Marking for guard, leave and
	// transition points.
	After state.Marking

	// Timestamp is when the event was created.
	Timestamp time.Time

	reasons []string
}

// Block vetoes the transition from a guard subscriber. reason is reported
// to the caller. Block has no effect on other hook points.
func (e *Event) Block(reason string) {
	if e.Point != Guard {
		return
	}
	if reason == "" {
		reason = "blocked"
	}
	e.reasons = append(e.reasons, reason)
}

// Blocked reports whether a guard subscriber vetoed the transition.
func (e *Event) Blocked() bool {
	return len(e.reasons) > 0
}

// Reasons returns the veto reasons in the order they were given.
func (e *Event) Reasons() []string {
	out := make([]string, len(e.reasons))
	copy(out, e.reasons)
	return out
}

// String returns a short description for logs.
func (e *Event) String() string {
	name := ""
	if e.Transition != nil {
		name = e.Transition.Name
	}
	if e.Place != "" {
		return fmt.Sprintf("Event[%s %s/%s@%s]", e.Point, e.Workflow, name, e.Place)
	}
	return fmt.Sprintf("Event[%s %s/%s]", e.Point, e.Workflow, name)
}

// Handler processes one event. A returned error is a hook failure, not a
// veto: guard subscribers veto with Event.Block.
type Handler func(ctx context.Context, e *Event) error
