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

import "fmt"

// TerminalMetadataKey marks a place as terminal regardless of its outgoing transitions.
const TerminalMetadataKey = "terminal"

// Place is a named state a subject can occupy.
// Places exist only as part of a Definition.
type Place struct {
	// Name is unique within its Definition.
	Name string

	// Metadata holds arbitrary presentation or domain data.
	Metadata map[string]interface{}
}

// Terminal reports whether metadata marks the place as terminal.
func (p *Place) Terminal() bool {
	v, ok := p.Metadata[TerminalMetadataKey].(bool)
	return ok && v
}

// String returns a human-readable representation of the place for debugging.
func (p *Place) String() string {
	return fmt.Sprintf("Place[%s]", p.Name)
}
