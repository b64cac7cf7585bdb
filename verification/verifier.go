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

// Package verification analyzes workflow definitions statically.
//
// The verifier explores every marking reachable from a definition's initial
// marking and reports structural problems before any subject runs through
// the workflow: places that can never hold a token, transitions that can
// never fire, markings where the workflow gets stuck, and unbounded token
// growth.
//
// # Usage
//
//	report, err := verification.Analyze(def, 10000)
//	if err != nil {
//	    return err
//	}
//	if !report.OK() {
//	    // definition has structural problems
//	}
//
// # State Space Exploration
//
// States are explored breadth-first. A state is a state.Marking; markings
// are deduplicated by their canonical string form. Exploration stops when
// every reachable marking has been visited or the state limit is reached.
//
// Enablement is decided by tokens alone, as engine.Enabled does. Guards and
// roles depend on the subject and caller, so the analysis assumes every
// enabled transition may fire.
package verification

import (
	"errors"
	"fmt"

	"github.com/flowstone/engine/engine"
	"github.com/flowstone/engine/petri"
	"github.com/flowstone/engine/state"
)

// DefaultMaxStates bounds exploration when no limit is given.
const DefaultMaxStates = 10000

// ErrStateLimit is returned by BuildStateSpace when exploration stopped at
// the state limit. The definition may be unbounded.
var ErrStateLimit = errors.New("state space limit reached")

// State is a node in the state space.
type State struct {
	// ID is assigned sequentially during exploration; the initial state is 0.
	ID int

	// Marking is the marking this state stands for.
	Marking state.Marking
}

// Edge is a transition firing between two states.
type Edge struct {
	From       int
	To         int
	Transition string
}

// StateSpace is the reachability graph of a definition.
type StateSpace struct {
	// States is indexed by State.ID.
	States []*State

	// Edges maps a state ID to its outgoing edges.
	Edges map[int][]Edge

	// Initial is the ID of the initial state.
	Initial int

	// Complete is false when exploration stopped at the state limit.
	Complete bool

	index    map[string]int
	expanded map[int]bool
}

// EdgeCount returns the number of edges in the graph.
func (ss *StateSpace) EdgeCount() int {
	n := 0
	for _, edges := range ss.Edges {
		n += len(edges)
	}
	return n
}

// Verifier explores and checks the state space of one definition.
type Verifier struct {
	def       *petri.Definition
	maxStates int
}

// NewVerifier creates a verifier for def. A maxStates of zero or less uses
// DefaultMaxStates.
func NewVerifier(def *petri.Definition, maxStates int) *Verifier {
	if maxStates <= 0 {
		maxStates = DefaultMaxStates
	}
	return &Verifier{def: def, maxStates: maxStates}
}

// Definition returns the definition under analysis.
func (v *Verifier) Definition() *petri.Definition {
	return v.def
}

// BuildStateSpace explores every marking reachable from the initial
// marking.
//
// The returned StateSpace is never nil. When the state limit is reached it
// is partial, Complete is false and the error wraps ErrStateLimit; checks
// may still run on the explored part.
func (v *Verifier) BuildStateSpace() (*StateSpace, error) {
	initial := state.Initial(v.def)
	ss := &StateSpace{
		States:   []*State{{ID: 0, Marking: initial}},
		Edges:    make(map[int][]Edge),
		index:    map[string]int{initial.String(): 0},
		expanded: make(map[int]bool),
	}

	queue := []int{0}
	for len(queue) > 0 {
		if len(ss.States) >= v.maxStates {
			return ss, fmt.Errorf("%w (%d states in %q); definition may be unbounded", ErrStateLimit, v.maxStates, v.def.Name())
		}

		id := queue[0]
		queue = queue[1:]
		current := ss.States[id]

		for _, t := range engine.Enabled(v.def, current.Marking) {
			next, err := current.Marking.Apply(v.def.Kind(), t)
			if err != nil {
				continue
			}

			key := next.String()
			to, seen := ss.index[key]
			if !seen {
				to = len(ss.States)
				ss.States = append(ss.States, &State{ID: to, Marking: next})
				ss.index[key] = to
				queue = append(queue, to)
			}
			ss.Edges[id] = append(ss.Edges[id], Edge{From: id, To: to, Transition: t.Name})
		}
		ss.expanded[id] = true
	}

	ss.Complete = true
	return ss, nil
}

// isDeadlock reports whether s is stuck: nothing is enabled while some
// active place is not terminal. Unexpanded states of a partial state space
// are never deadlocks.
func (v *Verifier) isDeadlock(ss *StateSpace, s *State) bool {
	if !ss.expanded[s.ID] || len(ss.Edges[s.ID]) > 0 {
		return false
	}
	if len(engine.Enabled(v.def, s.Marking)) > 0 {
		return false
	}
	for _, p := range s.Marking.ActivePlaces() {
		if !v.def.IsTerminal(p) {
			return true
		}
	}
	return false
}

// findPath returns the transition names leading from state from to state
// to, or nil when to is unreachable or equal to from.
func findPath(ss *StateSpace, from, to int) []string {
	if from == to {
		return nil
	}

	type node struct {
		id   int
		path []string
	}
	visited := map[int]bool{from: true}
	queue := []node{{id: from}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, edge := range ss.Edges[current.id] {
			if visited[edge.To] {
				continue
			}
			path := make([]string, len(current.path)+1)
			copy(path, current.path)
			path[len(current.path)] = edge.Transition

			if edge.To == to {
				return path
			}
			visited[edge.To] = true
			queue = append(queue, node{id: edge.To, path: path})
		}
	}
	return nil
}
