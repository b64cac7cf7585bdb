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
	"context"

	"github.com/flowstone/engine/petri"
)

// RoleResolver maps an acting caller onto its role identifiers. Identity
// resolution itself lives outside the engine.
type RoleResolver interface {
	RolesFor(ctx context.Context, caller interface{}) ([]string, error)
}

// RoleResolverFunc adapts a function to RoleResolver.
type RoleResolverFunc func(ctx context.Context, caller interface{}) ([]string, error)

// RolesFor implements RoleResolver.
func (f RoleResolverFunc) RolesFor(ctx context.Context, caller interface{}) ([]string, error) {
	return f(ctx, caller)
}

// Authorized reports whether roles may fire t: an unrestricted transition
// is open to everyone, otherwise roles must intersect t.Roles().
func Authorized(t *petri.Transition, roles []string) bool {
	if !t.Restricted() {
		return true
	}
	for _, required := range t.Roles() {
		for _, have := range roles {
			if required == have {
				return true
			}
		}
	}
	return false
}

// FilterAuthorized returns the transitions of ts that roles may fire,
// keeping their order.
func FilterAuthorized(ts []*petri.Transition, roles []string) []*petri.Transition {
	out := make([]*petri.Transition, 0, len(ts))
	for _, t := range ts {
		if Authorized(t, roles) {
			out = append(out, t)
		}
	}
	return out
}
