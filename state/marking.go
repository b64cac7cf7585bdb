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

// Package state holds the runtime state of a workflow subject: its Marking,
// the codec used to persist it, and the capability interfaces a subject
// implements to take part in a workflow.
package state

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/flowstone/engine/petri"
)

// Marking is the set of active places of a subject, with a token count per
// place. A Marking is a value: Apply returns a new Marking and never mutates
// the receiver. The zero value is an empty marking.
type Marking struct {
	active map[string]int
}

// NewMarking returns a marking with one token in each of the given places.
func NewMarking(places ...string) Marking {
	m := Marking{active: make(map[string]int, len(places))}
	for _, p := range places {
		m.active[p]++
	}
	return m
}

// NewMarkingFromCounts returns a marking with the given token counts.
// Entries with a count below 1 are dropped.
func NewMarkingFromCounts(counts map[string]int) Marking {
	m := Marking{active: make(map[string]int, len(counts))}
	for p, n := range counts {
		if n > 0 {
			m.active[p] = n
		}
	}
	return m
}

// Initial returns the initial marking of def.
func Initial(def *petri.Definition) Marking {
	return NewMarking(def.InitialMarking()...)
}

// IsActive reports whether place holds at least one token.
func (m Marking) IsActive(place string) bool {
	return m.active[place] > 0
}

// Count returns the number of tokens in place.
func (m Marking) Count(place string) int {
	return m.active[place]
}

// ActivePlaces returns the active place names in sorted order.
func (m Marking) ActivePlaces() []string {
	out := make([]string, 0, len(m.active))
	for p := range m.active {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Counts returns a copy of the place to token count map.
func (m Marking) Counts() map[string]int {
	out := make(map[string]int, len(m.active))
	for p, n := range m.active {
		out[p] = n
	}
	return out
}

// IsEmpty reports whether no place is active.
func (m Marking) IsEmpty() bool {
	return len(m.active) == 0
}

// Clone returns an independent copy of m.
func (m Marking) Clone() Marking {
	return Marking{active: m.Counts()}
}

// Equal reports whether both markings hold the same tokens.
func (m Marking) Equal(other Marking) bool {
	if len(m.active) != len(other.active) {
		return false
	}
	for p, n := range m.active {
		if other.active[p] != n {
			return false
		}
	}
	return true
}

// String renders the marking as {place:count, ...} in sorted order.
func (m Marking) String() string {
	parts := make([]string, 0, len(m.active))
	for _, p := range m.ActivePlaces() {
		parts = append(parts, fmt.Sprintf("%s:%d", p, m.active[p]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Apply fires t against m and returns the resulting marking.
//
// For a StateMachine the single active place must be one of t.From with
// exactly one token; t.To[0] becomes the sole active place.
// For a Workflow each place in t.From loses one token and each place in
// t.To gains one. A from place without tokens yields an
// *InsufficientTokensError and m is left as it was.
func (m Marking) Apply(kind petri.Kind, t *petri.Transition) (Marking, error) {
	if kind == petri.StateMachine {
		return m.applyStateMachine(t)
	}

	next := m.Clone()
	for _, p := range t.From {
		if next.active[p] < 1 {
			return m, &InsufficientTokensError{Transition: t.Name, Place: p, Have: next.active[p]}
		}
		next.active[p]--
		if next.active[p] == 0 {
			delete(next.active, p)
		}
	}
	for _, p := range t.To {
		next.active[p]++
	}
	return next, nil
}

func (m Marking) applyStateMachine(t *petri.Transition) (Marking, error) {
	if len(t.To) != 1 {
		return m, fmt.Errorf("state: transition %q must have exactly one to place in a state machine", t.Name)
	}
	var from string
	for _, p := range t.From {
		if m.active[p] > 0 {
			from = p
			break
		}
	}
	if from == "" {
		return m, &InsufficientTokensError{Transition: t.Name, Place: strings.Join(t.From, "|")}
	}
	if len(m.active) != 1 || m.active[from] != 1 {
		return m, &InsufficientTokensError{Transition: t.Name, Place: from, Have: m.active[from]}
	}
	return NewMarking(t.To[0]), nil
}

// Validate checks m against def: every active place must be declared, and a
// StateMachine marking must hold exactly one place with one token.
// A non-nil error means the persisted marking is corrupted.
func (m Marking) Validate(def *petri.Definition) error {
	for _, p := range m.ActivePlaces() {
		if !def.HasPlace(p) {
			return fmt.Errorf("state: marking %s references undeclared place %q in %q", m, p, def.Name())
		}
	}
	if def.Kind() == petri.StateMachine {
		if len(m.active) != 1 {
			return fmt.Errorf("state: state machine %q requires exactly one active place, got %d", def.Name(), len(m.active))
		}
		for p, n := range m.active {
			if n != 1 {
				return fmt.Errorf("state: state machine %q place %q holds %d tokens", def.Name(), p, n)
			}
		}
	}
	return nil
}

// Encode serializes m for the record store. A StateMachine marking is stored
// as the bare place name; a Workflow marking as a JSON object of counts.
func (m Marking) Encode(kind petri.Kind) (string, error) {
	if kind == petri.StateMachine {
		if len(m.active) > 1 {
			return "", fmt.Errorf("state: cannot encode %s as a state machine marking", m)
		}
		for p := range m.active {
			return p, nil
		}
		return "", nil
	}
	data, err := json.Marshal(m.Counts())
	if err != nil {
		return "", fmt.Errorf("state: encode marking: %w", err)
	}
	return string(data), nil
}

// Decode parses a value written by Encode. An empty value decodes to an
// empty marking.
func Decode(kind petri.Kind, value string) (Marking, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Marking{}, nil
	}
	if kind == petri.StateMachine {
		return NewMarking(value), nil
	}
	if !strings.HasPrefix(value, "{") {
		// A bare place name is accepted so a subject can move from a state
		// machine to a workflow definition without rewriting its records.
		return NewMarking(value), nil
	}
	var counts map[string]int
	if err := json.Unmarshal([]byte(value), &counts); err != nil {
		return Marking{}, fmt.Errorf("state: decode marking %q: %w", value, err)
	}
	return NewMarkingFromCounts(counts), nil
}
