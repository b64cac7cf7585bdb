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
	"github.com/flowstone/engine/petri"
	"github.com/flowstone/engine/state"
)

// Enabled returns the transitions of def that the marking m allows, in
// declaration order. It looks at tokens only; guards and roles are applied
// later.
//
// In a StateMachine a transition is enabled when the active place is one of
// its from places. In a Workflow every from place must hold a token.
func Enabled(def *petri.Definition, m state.Marking) []*petri.Transition {
	var out []*petri.Transition
	seen := make(map[string]bool)
	for _, t := range def.Transitions() {
		if seen[t.Name] {
			continue
		}
		if IsEnabled(def.Kind(), m, t) {
			out = append(out, t)
			seen[t.Name] = true
		}
	}
	return out
}

// IsEnabled reports whether m holds the tokens t consumes.
func IsEnabled(kind petri.Kind, m state.Marking, t *petri.Transition) bool {
	if kind == petri.StateMachine {
		for _, p := range t.From {
			if m.Count(p) == 1 && len(m.ActivePlaces()) == 1 {
				return true
			}
		}
		return false
	}

	for _, p := range t.From {
		if m.Count(p) < 1 {
			return false
		}
	}
	return len(t.From) > 0
}
