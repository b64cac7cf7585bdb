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

// RoleMetadataKey is the transition metadata key listing the roles allowed to
// fire it. Absent or empty means unrestricted.
const RoleMetadataKey = "role"

// Transition is a named state change consuming its from places and producing
// its to places. From and To are ordered sets of declared place names.
type Transition struct {
	// Name is unique within its Definition.
	Name string

	// From lists the places the transition consumes from, in declaration order.
	From []string

	// To lists the places the transition produces into, in declaration order.
	To []string

	// Metadata holds arbitrary data; "role" gates who may fire the transition.
	Metadata map[string]interface{}

	roles []string
}

// Roles returns the role identifiers allowed to fire the transition.
// An empty result means the transition is unrestricted.
//
// The "role" metadata value may be a list or a single string; strings are split
// on '|' and ',' so "editor|admin" means either role.
func (t *Transition) Roles() []string {
	out := make([]string, len(t.roles))
	copy(out, t.roles)
	return out
}

// Restricted reports whether the transition carries a role gate.
func (t *Transition) Restricted() bool {
	return len(t.roles) > 0
}

// HasFrom reports whether place is in the from set.
func (t *Transition) HasFrom(place string) bool {
	return containsString(t.From, place)
}

// HasTo reports whether place is in the to set.
func (t *Transition) HasTo(place string) bool {
	return containsString(t.To, place)
}

// String returns a human-readable representation of the transition for debugging.
func (t *Transition) String() string {
	restricted := ""
	if len(t.roles) > 0 {
		restricted = fmt.Sprintf(" roles=%s", strings.Join(t.roles, "|"))
	}
	return fmt.Sprintf("Transition[%s: %s -> %s%s]",
		t.Name, strings.Join(t.From, ","), strings.Join(t.To, ","), restricted)
}

// parseRoles normalizes the "role" metadata value.
func parseRoles(v interface{}) ([]string, error) {
	var raw []string
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		raw = strings.FieldsFunc(val, func(r rune) bool { return r == '|' || r == ',' })
	case []string:
		raw = val
	case []interface{}:
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("role entries must be strings, got %T", item)
			}
			raw = append(raw, s)
		}
	default:
		return nil, fmt.Errorf("role must be a string or a list of strings, got %T", v)
	}

	var roles []string
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r != "" && !containsString(roles, r) {
			roles = append(roles, r)
		}
	}
	return roles, nil
}

func containsString(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
