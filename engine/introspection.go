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

import "github.com/flowstone/engine/petri"

// TransitionInfo is one row of ListTransitions.
type TransitionInfo struct {
	Name       string   `json:"name"`
	To         []string `json:"to"`
	Enabled    bool     `json:"enabled"`
	Authorized bool     `json:"authorized"`
	Reasons    []string `json:"reasons,omitempty"`
}

// ListTransitions reports every transition of the definition in
// declaration order. Authorized means the caller's roles permit it and To
// lists all destination places.
//
// For authorized rows, Enabled means the marking allows the transition and
// every guard passes. Guard functions run and guard hook subscribers receive
// a guard event for each such row, and a failing guard hook aborts the
// listing. Unauthorized rows never reach the guards, so their Enabled only
// reflects the marking.
func (h *WorkflowHandle) ListTransitions() ([]TransitionInfo, error) {
	var out []TransitionInfo
	for _, t := range h.def.Transitions() {
		info := TransitionInfo{
			Name:       t.Name,
			To:         append([]string(nil), t.To...),
			Authorized: Authorized(t, h.roles),
		}
		info.Enabled = IsEnabled(h.def.Kind(), h.marking, t)
		if info.Enabled && info.Authorized {
			reasons, err := h.evaluateGuards(t)
			if err != nil {
				return nil, err
			}
			info.Enabled = len(reasons) == 0
			info.Reasons = reasons
		}
		out = append(out, info)
	}
	return out, nil
}

// CurrentMarking returns the marking encoded as it is persisted.
func (h *WorkflowHandle) CurrentMarking() (string, error) {
	return h.marking.Encode(h.def.Kind())
}

// Graph exports the definition with the current marking highlighted.
func (h *WorkflowHandle) Graph() *petri.Graph {
	return petri.ExportGraph(h.def, h.marking.Counts())
}
