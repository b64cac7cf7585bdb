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

package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/flowstone/engine/petri"
)

// stringList accepts either a scalar or a sequence of scalars.
type stringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if isNull(value) || value.Value == "" {
			*l = nil
			return nil
		}
		*l = stringList{value.Value}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", value.Line)
	}
}

type rawWorkflow struct {
	Type         string     `yaml:"type"`
	Supports     stringList `yaml:"supports"`
	MarkingStore struct {
		Type     string `yaml:"type"`
		Property string `yaml:"property"`
	} `yaml:"marking_store"`
	InitialMarking stringList             `yaml:"initial_marking"`
	Metadata       map[string]interface{} `yaml:"metadata"`
	Places         yaml.Node              `yaml:"places"`
	Transitions    yaml.Node              `yaml:"transitions"`
	Enumeration    *Enumeration           `yaml:"enumeration"`
}

type rawTransition struct {
	Name     string                 `yaml:"name"`
	From     stringList             `yaml:"from"`
	To       stringList             `yaml:"to"`
	Metadata map[string]interface{} `yaml:"metadata"`
}

func parseWorkflow(key string, node *yaml.Node) (*Workflow, error) {
	var raw rawWorkflow
	if err := node.Decode(&raw); err != nil {
		return nil, fmt.Errorf("config: workflow %q: %w", key, err)
	}

	w := &Workflow{
		Key:             key,
		Type:            raw.Type,
		Supports:        raw.Supports,
		MarkingProperty: raw.MarkingStore.Property,
		InitialMarking:  raw.InitialMarking,
		Metadata:        raw.Metadata,
		Enumeration:     raw.Enumeration,
	}

	places, err := parsePlaces(&raw.Places)
	if err != nil {
		return nil, fmt.Errorf("config: workflow %q: %w", key, err)
	}
	w.Places = places

	transitions, err := parseTransitions(&raw.Transitions)
	if err != nil {
		return nil, fmt.Errorf("config: workflow %q: %w", key, err)
	}
	w.Transitions = transitions

	return w, nil
}

// parsePlaces accepts a mapping of name to metadata, a list of names or
// {name, metadata} items, or null. Null yields a nil slice.
func parsePlaces(node *yaml.Node) ([]petri.PlaceConfig, error) {
	if isNull(node) {
		return nil, nil
	}

	places := []petri.PlaceConfig{}
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			meta, err := placeMetadata(node.Content[i+1])
			if err != nil {
				return nil, fmt.Errorf("place %q: %w", node.Content[i].Value, err)
			}
			places = append(places, petri.PlaceConfig{Name: node.Content[i].Value, Metadata: meta})
		}
	case yaml.SequenceNode:
		for _, item := range node.Content {
			if item.Kind == yaml.ScalarNode {
				places = append(places, petri.PlaceConfig{Name: item.Value})
				continue
			}
			var p struct {
				Name     string                 `yaml:"name"`
				Metadata map[string]interface{} `yaml:"metadata"`
			}
			if err := item.Decode(&p); err != nil {
				return nil, fmt.Errorf("line %d: %w", item.Line, err)
			}
			places = append(places, petri.PlaceConfig{Name: p.Name, Metadata: p.Metadata})
		}
	default:
		return nil, fmt.Errorf("line %d: places must be a mapping, a list or null", node.Line)
	}
	return places, nil
}

// placeMetadata reads the value of a place mapping entry: null, a metadata
// mapping, or a mapping holding a single "metadata" key.
func placeMetadata(node *yaml.Node) (map[string]interface{}, error) {
	if isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: place value must be a mapping or null", node.Line)
	}

	var meta map[string]interface{}
	if err := node.Decode(&meta); err != nil {
		return nil, err
	}
	if inner, ok := meta["metadata"].(map[string]interface{}); ok && len(meta) == 1 {
		return inner, nil
	}
	return meta, nil
}

// parseTransitions accepts a mapping of name to {from, to, metadata}, a
// list of {name, from, to, metadata} items, or null.
func parseTransitions(node *yaml.Node) ([]petri.TransitionConfig, error) {
	if isNull(node) {
		return nil, nil
	}

	transitions := []petri.TransitionConfig{}
	add := func(name string, value *yaml.Node) error {
		var raw rawTransition
		if err := value.Decode(&raw); err != nil {
			return fmt.Errorf("transition %q: line %d: %w", name, value.Line, err)
		}
		if name == "" {
			name = raw.Name
		}
		transitions = append(transitions, petri.TransitionConfig{
			Name:     name,
			From:     raw.From,
			To:       raw.To,
			Metadata: raw.Metadata,
		})
		return nil
	}

	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			if err := add(node.Content[i].Value, node.Content[i+1]); err != nil {
				return nil, err
			}
		}
	case yaml.SequenceNode:
		for _, item := range node.Content {
			if err := add("", item); err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("line %d: transitions must be a mapping, a list or null", node.Line)
	}
	return transitions, nil
}

// isNull reports whether node is absent or an explicit null.
func isNull(node *yaml.Node) bool {
	return node == nil || node.Kind == 0 || (node.Kind == yaml.ScalarNode && node.Tag == "!!null")
}
