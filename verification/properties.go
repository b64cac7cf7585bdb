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
	"strings"
)

// Result is the outcome of checking one property. A satisfied result holds
// for every explored state; an unsatisfied one carries a witness path to a
// violating state.
type Result struct {
	Property  string
	Satisfied bool
	Message   string

	// Witness is the transition sequence from the initial state to the
	// violating state, or to the target state for reachability.
	Witness []string

	StatesChecked int
}

// Property is a named check over a state space.
type Property struct {
	Name        string
	Description string
	Check       func(v *Verifier, ss *StateSpace) Result
}

// Verify builds the state space once and checks every property against it.
// A state limit error is returned alongside results for the explored part.
func (v *Verifier) Verify(properties ...Property) ([]Result, error) {
	ss, err := v.BuildStateSpace()
	results := make([]Result, 0, len(properties))
	for _, p := range properties {
		r := p.Check(v, ss)
		r.Property = p.Name
		results = append(results, r)
	}
	return results, err
}

// AllSatisfied reports whether every result holds. No results is vacuously
// true.
func AllSatisfied(results []Result) bool {
	for _, r := range results {
		if !r.Satisfied {
			return false
		}
	}
	return true
}

// DeadlockFreedom holds when no explored state is a deadlock.
func DeadlockFreedom() Property {
	return Property{
		Name:        "deadlock_freedom",
		Description: "workflow never gets stuck outside a terminal place",
		Check: func(v *Verifier, ss *StateSpace) Result {
			return v.CheckDeadlockFreedom(ss)
		},
	}
}

// Reachable holds when place can hold a token.
func Reachable(place string) Property {
	return Property{
		Name:        "reachable_" + place,
		Description: fmt.Sprintf("place %s is reachable", place),
		Check: func(v *Verifier, ss *StateSpace) Result {
			return v.CheckReachability(ss, place)
		},
	}
}

// MutuallyExclusive holds when places a and b are never marked together.
func MutuallyExclusive(a, b string) Property {
	return Property{
		Name:        fmt.Sprintf("exclusive_%s_%s", a, b),
		Description: fmt.Sprintf("places %s and %s are mutually exclusive", a, b),
		Check: func(v *Verifier, ss *StateSpace) Result {
			return v.CheckMutualExclusion(ss, a, b)
		},
	}
}

// PlaceBound holds when place never holds more than limit tokens.
func PlaceBound(place string, limit int) Property {
	return Property{
		Name:        "bound_" + place,
		Description: fmt.Sprintf("place %s never exceeds %d tokens", place, limit),
		Check: func(v *Verifier, ss *StateSpace) Result {
			return v.CheckPlaceInvariant(ss, map[string]int{place: 1}, limit)
		},
	}
}

// CheckDeadlockFreedom reports the first deadlock found, if any.
func (v *Verifier) CheckDeadlockFreedom(ss *StateSpace) Result {
	for _, s := range ss.States {
		if v.isDeadlock(ss, s) {
			return Result{
				Property:      "deadlock_freedom",
				Message:       fmt.Sprintf("deadlock at state %d: %s", s.ID, s.Marking),
				Witness:       findPath(ss, ss.Initial, s.ID),
				StatesChecked: len(ss.States),
			}
		}
	}
	return Result{
		Property:      "deadlock_freedom",
		Satisfied:     true,
		Message:       "no deadlocks in reachable state space",
		StatesChecked: len(ss.States),
	}
}

// CheckReachability reports whether some explored state marks place, with
// the path to the first such state.
func (v *Verifier) CheckReachability(ss *StateSpace, place string) Result {
	for _, s := range ss.States {
		if s.Marking.IsActive(place) {
			return Result{
				Property:      "reachability",
				Satisfied:     true,
				Message:       fmt.Sprintf("place %s reachable at state %d", place, s.ID),
				Witness:       findPath(ss, ss.Initial, s.ID),
				StatesChecked: len(ss.States),
			}
		}
	}
	return Result{
		Property:      "reachability",
		Message:       fmt.Sprintf("place %s not reachable from %s", place, ss.States[ss.Initial].Marking),
		StatesChecked: len(ss.States),
	}
}

// CheckMutualExclusion reports whether places a and b are ever marked in
// the same state.
func (v *Verifier) CheckMutualExclusion(ss *StateSpace, a, b string) Result {
	for _, s := range ss.States {
		if s.Marking.IsActive(a) && s.Marking.IsActive(b) {
			return Result{
				Property:      "mutual_exclusion",
				Message:       fmt.Sprintf("places %s and %s both marked at state %d", a, b, s.ID),
				Witness:       findPath(ss, ss.Initial, s.ID),
				StatesChecked: len(ss.States),
			}
		}
	}
	return Result{
		Property:      "mutual_exclusion",
		Satisfied:     true,
		Message:       fmt.Sprintf("places %s and %s are never marked together", a, b),
		StatesChecked: len(ss.States),
	}
}

// CheckPlaceInvariant checks sum(coefficients[p] * tokens[p]) <= bound in
// every explored state.
//
// Token conservation in a workflow with a single token:
//
//	v.CheckPlaceInvariant(ss, map[string]int{"draft": 1, "pending": 1, "published": 1}, 1)
func (v *Verifier) CheckPlaceInvariant(ss *StateSpace, coefficients map[string]int, bound int) Result {
	for _, s := range ss.States {
		sum := 0
		for place, c := range coefficients {
			sum += c * s.Marking.Count(place)
		}
		if sum > bound {
			return Result{
				Property:      "place_invariant",
				Message:       fmt.Sprintf("invariant violated at state %d: %d > %d", s.ID, sum, bound),
				Witness:       findPath(ss, ss.Initial, s.ID),
				StatesChecked: len(ss.States),
			}
		}
	}
	return Result{
		Property:      "place_invariant",
		Satisfied:     true,
		Message:       fmt.Sprintf("invariant holds across %d states", len(ss.States)),
		StatesChecked: len(ss.States),
	}
}

// String renders a result on one line.
func (r Result) String() string {
	status := "ok"
	if !r.Satisfied {
		status = "FAILED"
	}
	s := fmt.Sprintf("%s: %s (%s)", r.Property, status, r.Message)
	if len(r.Witness) > 0 {
		s += " via " + strings.Join(r.Witness, " -> ")
	}
	return s
}
