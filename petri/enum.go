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
	"fmt"
	"strings"
)

// EnumPolicy selects which transitions FromEnumeration generates.
type EnumPolicy int

const (
	// EnumAllPairs generates one transition for every ordered pair of
	// distinct values, named "<a>_to_<b>".
	EnumAllPairs EnumPolicy = iota

	// EnumSequential generates transitions only between consecutive values.
	EnumSequential
)

// String returns the configuration name of the policy.
func (p EnumPolicy) String() string {
	switch p {
	case EnumAllPairs:
		return "all_pairs"
	case EnumSequential:
		return "sequential"
	default:
		return "unknown"
	}
}

// ParseEnumPolicy maps a configuration value onto an EnumPolicy.
// The empty string selects EnumAllPairs.
func ParseEnumPolicy(s string) (EnumPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all_pairs", "allpairs":
		return EnumAllPairs, nil
	case "sequential":
		return EnumSequential, nil
	default:
		return 0, fmt.Errorf("unknown enumeration policy %q", s)
	}
}

// EnumerationPlaces returns one PlaceConfig per value, in order.
func EnumerationPlaces(values []string) []PlaceConfig {
	places := make([]PlaceConfig, 0, len(values))
	for _, v := range values {
		places = append(places, PlaceConfig{Name: v})
	}
	return places
}

// EnumerationTransitions generates transitions between values per policy.
func EnumerationTransitions(values []string, policy EnumPolicy) []TransitionConfig {
	var out []TransitionConfig
	switch policy {
	case EnumSequential:
		for i := 0; i+1 < len(values); i++ {
			out = append(out, enumTransition(values[i], values[i+1]))
		}
	default:
		for _, a := range values {
			for _, b := range values {
				if a != b {
					out = append(out, enumTransition(a, b))
				}
			}
		}
	}
	return out
}

func enumTransition(from, to string) TransitionConfig {
	return TransitionConfig{
		Name: from + "_to_" + to,
		From: []string{from},
		To:   []string{to},
	}
}

// FromEnumeration compiles a Definition from an ordered enumeration of state
// values: one place per value, transitions per policy, and the first value as
// the initial marking.
func FromEnumeration(name string, kind Kind, values []string, policy EnumPolicy) (*Definition, error) {
	cfg := Config{
		Name:        name,
		Kind:        kind.String(),
		Places:      EnumerationPlaces(values),
		Transitions: EnumerationTransitions(values, policy),
	}
	return Compile(cfg)
}
