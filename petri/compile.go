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

package petri

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDefinition is matched by every DefinitionError.
var ErrInvalidDefinition = errors.New("petri: invalid definition")

// DefinitionError reports malformed or inconsistent declarative input.
// It is fatal: a Definition is never produced from input that fails validation.
// All problems found are reported together.
type DefinitionError struct {
	Workflow string
	Problems []string
}

// Error implements error.
func (e *DefinitionError) Error() string {
	return fmt.Sprintf("petri: invalid definition %q: %s", e.Workflow, strings.Join(e.Problems, "; "))
}

// Is makes errors.Is(err, ErrInvalidDefinition) true.
func (e *DefinitionError) Is(target error) bool {
	return target == ErrInvalidDefinition
}

// Config is the declarative, already-parsed input to Compile.
// Slices are ordered: declaration order of places and transitions is preserved
// into the compiled Definition.
type Config struct {
	Name            string
	Kind            string
	Supports        []string
	MarkingProperty string
	InitialMarking  []string
	Places          []PlaceConfig
	Transitions     []TransitionConfig
	Metadata        map[string]interface{}
}

// PlaceConfig declares one place.
type PlaceConfig struct {
	Name     string
	Metadata map[string]interface{}
}

// TransitionConfig declares one transition.
type TransitionConfig struct {
	Name     string
	From     []string
	To       []string
	Metadata map[string]interface{}
}

// Compile validates cfg and builds an immutable Definition.
//
// Compile fails with a *DefinitionError when:
//   - the name, the places or a transition's from/to set is empty
//   - a place or transition name is declared twice
//   - a transition or the initial marking references an undeclared place
//   - a StateMachine has an initial marking with other than one place, or a
//     transition with other than one to place
//
// An empty initial marking defaults to the first declared place.
// Compile has no side effects.
func Compile(cfg Config) (*Definition, error) {
	v := &validator{}

	if strings.TrimSpace(cfg.Name) == "" {
		v.add("workflow name is required")
	}
	kind, err := ParseKind(cfg.Kind)
	if err != nil {
		v.add(err.Error())
	}

	def := &Definition{
		name:            cfg.Name,
		kind:            kind,
		placeIndex:      make(map[string]*Place, len(cfg.Places)),
		transIndex:      make(map[string]*Transition, len(cfg.Transitions)),
		supports:        append([]string(nil), cfg.Supports...),
		markingProperty: cfg.MarkingProperty,
		metadata:        copyMetadata(cfg.Metadata),
	}
	if def.markingProperty == "" {
		def.markingProperty = DefaultMarkingProperty
	}

	if len(cfg.Places) == 0 {
		v.add("at least one place is required")
	}
	for i, pc := range cfg.Places {
		if pc.Name == "" {
			v.add(fmt.Sprintf("place[%d]: name is required", i))
			continue
		}
		if _, exists := def.placeIndex[pc.Name]; exists {
			v.add(fmt.Sprintf("place %q is declared more than once", pc.Name))
			continue
		}
		p := &Place{Name: pc.Name, Metadata: copyMetadata(pc.Metadata)}
		def.places = append(def.places, p)
		def.placeIndex[p.Name] = p
	}

	for i, tc := range cfg.Transitions {
		if tc.Name == "" {
			v.add(fmt.Sprintf("transition[%d]: name is required", i))
			continue
		}
		if _, exists := def.transIndex[tc.Name]; exists {
			v.add(fmt.Sprintf("transition %q is declared more than once", tc.Name))
			continue
		}
		t := &Transition{
			Name:     tc.Name,
			From:     append([]string(nil), tc.From...),
			To:       append([]string(nil), tc.To...),
			Metadata: copyMetadata(tc.Metadata),
		}
		v.checkPlaceSet(def, t.Name, "from", t.From)
		v.checkPlaceSet(def, t.Name, "to", t.To)
		if kind == StateMachine && len(t.To) > 1 {
			v.add(fmt.Sprintf("transition %q: a state machine transition must have exactly one to place, got %d", t.Name, len(t.To)))
		}
		roles, err := parseRoles(t.Metadata[RoleMetadataKey])
		if err != nil {
			v.add(fmt.Sprintf("transition %q: %v", t.Name, err))
		}
		t.roles = roles
		def.transitions = append(def.transitions, t)
		def.transIndex[t.Name] = t
	}

	initial := cfg.InitialMarking
	if len(initial) == 0 && len(def.places) > 0 {
		initial = []string{def.places[0].Name}
	}
	if kind == StateMachine && len(initial) != 1 {
		v.add(fmt.Sprintf("a state machine must have exactly one initial place, got %d", len(initial)))
	}
	seen := make(map[string]bool, len(initial))
	for _, name := range initial {
		if !def.HasPlace(name) {
			v.add(fmt.Sprintf("initial marking references undeclared place %q", name))
		}
		if seen[name] {
			v.add(fmt.Sprintf("initial marking lists place %q more than once", name))
		}
		seen[name] = true
	}
	def.initialMarking = append([]string(nil), initial...)

	if len(v.problems) > 0 {
		return nil, &DefinitionError{Workflow: cfg.Name, Problems: v.problems}
	}
	return def, nil
}

// MustCompile is like Compile but panics on error. It is intended for
// definitions declared in code, such as tests and examples.
func MustCompile(cfg Config) *Definition {
	def, err := Compile(cfg)
	if err != nil {
		panic(err)
	}
	return def
}

type validator struct {
	problems []string
}

func (v *validator) add(problem string) {
	v.problems = append(v.problems, problem)
}

func (v *validator) checkPlaceSet(def *Definition, transition, side string, places []string) {
	if len(places) == 0 {
		v.add(fmt.Sprintf("transition %q: %s must list at least one place", transition, side))
		return
	}
	seen := make(map[string]bool, len(places))
	for _, name := range places {
		if !def.HasPlace(name) {
			v.add(fmt.Sprintf("transition %q: %s references undeclared place %q", transition, side, name))
		}
		if seen[name] {
			v.add(fmt.Sprintf("transition %q: %s lists place %q more than once", transition, side, name))
		}
		seen[name] = true
	}
}
