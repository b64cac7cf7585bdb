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

package verification

import (
	"fmt"

	"github.com/flowstone/engine/petri"
)

// Deadlock is a reachable marking in which the workflow is stuck.
type Deadlock struct {
	// Marking is the stuck marking, as state.Marking.String renders it.
	Marking string `json:"marking"`

	// Witness is the shortest transition sequence reaching it.
	Witness []string `json:"witness,omitempty"`
}

// Report summarizes the structural analysis of one definition.
type Report struct {
	Workflow string `json:"workflow"`
	Kind     string `json:"type"`

	States int `json:"states"`
	Edges  int `json:"edges"`

	// Bounded is true when exploration finished under the state limit.
	Bounded bool `json:"bounded"`

	// MaxTokens is the highest token count of any place in any explored
	// marking.
	MaxTokens int `json:"max_tokens"`

	// ReachablePlaces and UnreachablePlaces partition the declared places,
	// in declaration order.
	ReachablePlaces   []string `json:"reachable_places"`
	UnreachablePlaces []string `json:"unreachable_places"`

	// DeadTransitions are never enabled in any explored marking.
	DeadTransitions []string `json:"dead_transitions"`

	Deadlocks []Deadlock `json:"deadlocks"`
}

// OK reports whether the analysis found no problem.
func (r *Report) OK() bool {
	return r.Bounded &&
		len(r.UnreachablePlaces) == 0 &&
		len(r.DeadTransitions) == 0 &&
		len(r.Deadlocks) == 0
}

// Problems lists the findings as human-readable lines.
func (r *Report) Problems() []string {
	var out []string
	if !r.Bounded {
		out = append(out, fmt.Sprintf("state limit reached after %d states; workflow may be unbounded", r.States))
	}
	for _, p := range r.UnreachablePlaces {
		out = append(out, fmt.Sprintf("place %q is unreachable", p))
	}
	for _, t := range r.DeadTransitions {
		out = append(out, fmt.Sprintf("transition %q can never fire", t))
	}
	for _, d := range r.Deadlocks {
		out = append(out, fmt.Sprintf("deadlock at %s via %v", d.Marking, d.Witness))
	}
	return out
}

// Analyze explores def from its initial marking and reports reachable and
// unreachable places, dead transitions, deadlocks and boundedness.
//
// Reaching the state limit is not an error: the report is built from the
// explored part and Bounded is false.
func Analyze(def *petri.Definition, maxStates int) (*Report, error) {
	if def == nil {
		return nil, fmt.Errorf("verification: nil definition")
	}
	return NewVerifier(def, maxStates).Analyze()
}

// Analyze builds the state space and summarizes it in a Report.
func (v *Verifier) Analyze() (*Report, error) {
	ss, err := v.BuildStateSpace()
	if err != nil && ss == nil {
		return nil, err
	}

	r := &Report{
		Workflow:          v.def.Name(),
		Kind:              v.def.Kind().String(),
		States:            len(ss.States),
		Edges:             ss.EdgeCount(),
		Bounded:           ss.Complete,
		ReachablePlaces:   []string{},
		UnreachablePlaces: []string{},
		DeadTransitions:   []string{},
		Deadlocks:         []Deadlock{},
	}

	marked := make(map[string]bool)
	for _, s := range ss.States {
		for place, n := range s.Marking.Counts() {
			marked[place] = true
			if n > r.MaxTokens {
				r.MaxTokens = n
			}
		}
		if v.isDeadlock(ss, s) {
			r.Deadlocks = append(r.Deadlocks, Deadlock{
				Marking: s.Marking.String(),
				Witness: findPath(ss, ss.Initial, s.ID),
			})
		}
	}
	for _, p := range v.def.Places() {
		if marked[p.Name] {
			r.ReachablePlaces = append(r.ReachablePlaces, p.Name)
		} else {
			r.UnreachablePlaces = append(r.UnreachablePlaces, p.Name)
		}
	}

	fired := make(map[string]bool)
	for _, edges := range ss.Edges {
		for _, e := range edges {
			fired[e.Transition] = true
		}
	}
	for _, t := range v.def.Transitions() {
		if !fired[t.Name] {
			r.DeadTransitions = append(r.DeadTransitions, t.Name)
		}
	}
	return r, nil
}
