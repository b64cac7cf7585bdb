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

// Package config parses the YAML definition source into petri.Config values
// and serves compiled definitions to the cache.
//
// A file declares workflows under a top-level "workflows" mapping:
//
//	workflows:
//	  article_publishing:
//	    type: state_machine
//	    supports: [article]
//	    marking_store: {property: status}
//	    initial_marking: draft
//	    places:
//	      draft: ~
//	      pending: {color: orange}
//	      published: ~
//	    transitions:
//	      submit: {from: draft, to: pending, metadata: {role: [author]}}
//	      publish: {from: pending, to: published, metadata: {role: "editor|admin"}}
//
// Declaration order of workflows, places and transitions is preserved.
// When places or transitions are null they are derived from the workflow's
// enumeration block.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/flowstone/engine/petri"
)

// ErrNoWorkflow is returned by Resolve when no workflow matches.
var ErrNoWorkflow = errors.New("config: no matching workflow")

// File is a parsed definition source.
type File struct {
	Workflows []*Workflow
}

// Workflow is one entry of the workflows mapping.
type Workflow struct {
	// Key is the workflow's name in the file.
	Key string

	Type            string
	Supports        []string
	MarkingProperty string
	InitialMarking  []string
	Metadata        map[string]interface{}

	// Places is nil when the file declares places as null.
	Places []petri.PlaceConfig

	// Transitions is nil when the file declares transitions as null.
	Transitions []petri.TransitionConfig

	Enumeration *Enumeration

	// Line is where the workflow is declared, for error messages.
	Line int
}

// Enumeration derives places or transitions from an ordered list of state
// values.
type Enumeration struct {
	Policy string   `yaml:"policy"`
	Values []string `yaml:"values"`
}

// Load reads and parses the file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse parses a YAML definition source.
func Parse(data []byte) (*File, error) {
	var raw struct {
		Workflows yaml.Node `yaml:"workflows"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}

	node := &raw.Workflows
	if isNull(node) {
		return &File{}, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("config: line %d: workflows must be a mapping", node.Line)
	}

	f := &File{}
	seen := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		if seen[keyNode.Value] {
			return nil, fmt.Errorf("config: line %d: workflow %q declared more than once", keyNode.Line, keyNode.Value)
		}
		seen[keyNode.Value] = true

		w, err := parseWorkflow(keyNode.Value, valueNode)
		if err != nil {
			return nil, err
		}
		w.Line = keyNode.Line
		f.Workflows = append(f.Workflows, w)
	}
	return f, nil
}

// Workflow returns the workflow declared under key.
func (f *File) Workflow(key string) (*Workflow, bool) {
	for _, w := range f.Workflows {
		if w.Key == key {
			return w, true
		}
	}
	return nil, false
}

// Resolve picks the workflow for a subject type and workflow key. A
// workflow declared under workflowKey wins when it supports the subject
// type. Otherwise, for the default key, the first workflow supporting the
// subject type is used.
func (f *File) Resolve(subjectType, workflowKey, defaultKey string) (*Workflow, error) {
	if w, ok := f.Workflow(workflowKey); ok && w.supports(subjectType) {
		return w, nil
	}
	if workflowKey == defaultKey {
		for _, w := range f.Workflows {
			if w.supports(subjectType) {
				return w, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: type %q key %q", ErrNoWorkflow, subjectType, workflowKey)
}

// Config converts w to a petri.Config, deriving null places or transitions
// from the enumeration block.
func (w *Workflow) Config() (petri.Config, error) {
	cfg := petri.Config{
		Name:            w.Key,
		Kind:            w.Type,
		Supports:        w.Supports,
		MarkingProperty: w.MarkingProperty,
		InitialMarking:  w.InitialMarking,
		Metadata:        w.Metadata,
		Places:          w.Places,
		Transitions:     w.Transitions,
	}

	if w.Places != nil && w.Transitions != nil {
		return cfg, nil
	}

	policy := petri.EnumAllPairs
	if w.Enumeration != nil {
		p, err := petri.ParseEnumPolicy(w.Enumeration.Policy)
		if err != nil {
			return petri.Config{}, fmt.Errorf("config: workflow %q: %w", w.Key, err)
		}
		policy = p
	}

	var values []string
	if w.Places == nil {
		if w.Enumeration == nil || len(w.Enumeration.Values) == 0 {
			return petri.Config{}, fmt.Errorf("config: workflow %q: places are null but no enumeration values are given", w.Key)
		}
		values = w.Enumeration.Values
		cfg.Places = petri.EnumerationPlaces(values)
	} else {
		for _, p := range w.Places {
			values = append(values, p.Name)
		}
	}
	if w.Transitions == nil {
		cfg.Transitions = petri.EnumerationTransitions(values, policy)
	}
	return cfg, nil
}

// Compile builds the definition for w.
func (w *Workflow) Compile() (*petri.Definition, error) {
	cfg, err := w.Config()
	if err != nil {
		return nil, err
	}
	return petri.Compile(cfg)
}

func (w *Workflow) supports(subjectType string) bool {
	if len(w.Supports) == 0 {
		return true
	}
	for _, s := range w.Supports {
		if s == subjectType {
			return true
		}
	}
	return false
}
