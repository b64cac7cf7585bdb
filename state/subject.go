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

package state

import "fmt"

// Subject is any entity that moves through a workflow.
type Subject interface {
	// SubjectType names the kind of entity, such as "article". It selects
	// the definitions that support the subject.
	SubjectType() string

	// SubjectID identifies the entity within its type.
	SubjectID() string
}

// HasWorkflowKey is implemented by subjects that choose their workflow.
// Subjects without it use the engine's default workflow key.
type HasWorkflowKey interface {
	WorkflowKey() string
}

// HasMarking is implemented by subjects that carry their own encoded
// marking in a named property.
type HasMarking interface {
	Marking(property string) string
	SetMarking(property, value string)
}

// Ref addresses the persisted marking of one subject.
type Ref struct {
	Type     string
	ID       string
	Property string
}

// RefOf builds the Ref for subject's marking property.
func RefOf(subject Subject, property string) Ref {
	return Ref{Type: subject.SubjectType(), ID: subject.SubjectID(), Property: property}
}

// String renders the ref as type:id:property.
func (r Ref) String() string {
	return fmt.Sprintf("%s:%s:%s", r.Type, r.ID, r.Property)
}
