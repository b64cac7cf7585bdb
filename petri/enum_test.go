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
	"testing"
)

func TestFromEnumeration_AllPairs(t *testing.T) {
	def, err := FromEnumeration("status", StateMachine, []string{"new", "open", "closed"}, EnumAllPairs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := len(def.Places()); got != 3 {
		t.Errorf("expected 3 places, got %d", got)
	}
	if got := len(def.Transitions()); got != 6 {
		t.Errorf("expected 6 transitions, got %d", got)
	}
	tr, ok := def.Transition("open_to_new")
	if !ok {
		t.Fatal("expected transition open_to_new")
	}
	if tr.From[0] != "open" || tr.To[0] != "new" {
		t.Errorf("unexpected arcs for open_to_new: %v -> %v", tr.From, tr.To)
	}
	if initial := def.InitialMarking(); initial[0] != "new" {
		t.Errorf("expected initial marking new, got %v", initial)
	}
}

func TestFromEnumeration_Sequential(t *testing.T) {
	def, err := FromEnumeration("status", StateMachine, []string{"a", "b", "c"}, EnumSequential)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names := []string{}
	for _, tr := range def.Transitions() {
		names = append(names, tr.Name)
	}
	if len(names) != 2 || names[0] != "a_to_b" || names[1] != "b_to_c" {
		t.Errorf("expected [a_to_b b_to_c], got %v", names)
	}
}

func TestFromEnumeration_Empty(t *testing.T) {
	_, err := FromEnumeration("status", StateMachine, nil, EnumAllPairs)
	if !errors.Is(err, ErrInvalidDefinition) {
		t.Errorf("expected ErrInvalidDefinition, got %v", err)
	}
}

func TestParseEnumPolicy(t *testing.T) {
	if p, err := ParseEnumPolicy(""); err != nil || p != EnumAllPairs {
		t.Errorf("expected all_pairs default, got %v, %v", p, err)
	}
	if p, err := ParseEnumPolicy("Sequential"); err != nil || p != EnumSequential {
		t.Errorf("expected sequential, got %v, %v", p, err)
	}
	if _, err := ParseEnumPolicy("random"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
