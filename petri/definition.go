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

// Package petri provides the workflow Definition model of the flowstone engine.
//
// A Definition is the immutable, validated description of a workflow: its
// places, its transitions in declaration order, its initial marking and its
// kind. Definitions are produced by Compile from a declarative Config and are
// never modified afterwards, so a single compiled Definition can be shared by
// any number of goroutines.
//
// Two kinds are supported:
//   - StateMachine: exactly one place is active at a time. A transition may list
//     several from places ("from any of these") but exactly one to place.
//   - Workflow: a Petri net. Any non-empty subset of places may be active, each
//     holding a token count; a transition consumes one token from every from
//     place and produces one token in every to place.
package petri

import (
	"fmt"
	"strings"
)

// Kind selects the marking semantics of a Definition.
type Kind int

const (
	// StateMachine allows exactly one active place.
	StateMachine Kind = iota

	// Workflow allows any non-empty set of active places with token counts.
	Workflow
)

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case StateMachine:
		return "state_machine"
	case Workflow:
		return "workflow"
	default:
		return "unknown"
	}
}

// ParseKind parses a configuration kind name. The empty string means StateMachine.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "state_machine", "statemachine":
		return StateMachine, nil
	case "workflow", "petri_net":
		return Workflow, nil
	default:
		return 0, fmt.Errorf("unknown workflow type %q", s)
	}
}

// DefaultMarkingProperty is the subject field that stores the marking when the
// configuration does not name one.
const DefaultMarkingProperty = "marking"

// Definition is a compiled, validated workflow description.
// All accessors return copies or immutable values; a Definition never changes
// after Compile returns it.
type Definition struct {
	name            string
	kind            Kind
	places          []*Place
	placeIndex      map[string]*Place
	transitions     []*Transition
	transIndex      map[string]*Transition
	initialMarking  []string
	supports        []string
	markingProperty string
	metadata        map[string]interface{}
}

// Name returns the workflow name.
func (d *Definition) Name() string {
	return d.name
}

// Kind returns the workflow kind.
func (d *Definition) Kind() Kind {
	return d.kind
}

// Places returns the places in declaration order.
func (d *Definition) Places() []*Place {
	out := make([]*Place, len(d.places))
	copy(out, d.places)
	return out
}

// Place looks up a place by name.
func (d *Definition) Place(name string) (*Place, bool) {
	p, ok := d.placeIndex[name]
	return p, ok
}

// HasPlace reports whether name is a declared place.
func (d *Definition) HasPlace(name string) bool {
	_, ok := d.placeIndex[name]
	return ok
}

// Transitions returns the transitions in declaration order.
func (d *Definition) Transitions() []*Transition {
	out := make([]*Transition, len(d.transitions))
	copy(out, d.transitions)
	return out
}

// Transition looks up a transition by name.
func (d *Definition) Transition(name string) (*Transition, bool) {
	t, ok := d.transIndex[name]
	return t, ok
}

// InitialMarking returns the names of the initially active places.
func (d *Definition) InitialMarking() []string {
	out := make([]string, len(d.initialMarking))
	copy(out, d.initialMarking)
	return out
}

// SupportedTypes returns the subject types this workflow applies to.
func (d *Definition) SupportedTypes() []string {
	out := make([]string, len(d.supports))
	copy(out, d.supports)
	return out
}

// Supports reports whether the workflow applies to subjectType.
// A definition without a supports list applies to every subject type.
func (d *Definition) Supports(subjectType string) bool {
	if len(d.supports) == 0 {
		return true
	}
	for _, s := range d.supports {
		if s == subjectType {
			return true
		}
	}
	return false
}

// MarkingProperty returns the subject field that stores the marking.
func (d *Definition) MarkingProperty() string {
	return d.markingProperty
}

// Metadata returns a copy of the workflow metadata.
func (d *Definition) Metadata() map[string]interface{} {
	return copyMetadata(d.metadata)
}

// Outgoing returns the transitions that list place in their from set, in declaration order.
func (d *Definition) Outgoing(place string) []*Transition {
	var out []*Transition
	for _, t := range d.transitions {
		if t.HasFrom(place) {
			out = append(out, t)
		}
	}
	return out
}

// IsTerminal reports whether place has no outgoing transition or is marked
// terminal in its metadata.
func (d *Definition) IsTerminal(place string) bool {
	if p, ok := d.placeIndex[place]; ok && p.Terminal() {
		return true
	}
	return len(d.Outgoing(place)) == 0
}

// String returns a short description for debugging.
func (d *Definition) String() string {
	return fmt.Sprintf("Definition[%s: %s places=%d transitions=%d]",
		d.name, d.kind, len(d.places), len(d.transitions))
}

func copyMetadata(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
