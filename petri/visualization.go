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
	"sort"
	"strings"
)

// Graph is a read-only structural export of a Definition for presentation
// layers. It serializes to JSON as {places, transitions, meta}.
type Graph struct {
	Name        string            `json:"name"`
	Kind        string            `json:"type"`
	Places      []GraphPlace      `json:"places"`
	Transitions []GraphTransition `json:"transitions"`
	Meta        GraphMeta         `json:"meta"`
}

// GraphPlace is one place in a Graph.
type GraphPlace struct {
	Name     string                 `json:"name"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Initial  bool                   `json:"initial"`
	Active   bool                   `json:"active"`
	Tokens   int                    `json:"tokens,omitempty"`
}

// GraphTransition is one transition in a Graph.
type GraphTransition struct {
	Name     string                 `json:"name"`
	From     []string               `json:"from"`
	To       []string               `json:"to"`
	Roles    []string               `json:"roles,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// GraphMeta carries markings and counts.
type GraphMeta struct {
	InitialMarking []string       `json:"initial_marking"`
	CurrentMarking map[string]int `json:"current_marking"`
	Counts         GraphCounts    `json:"counts"`
}

// GraphCounts summarizes the size of a Graph.
type GraphCounts struct {
	Places      int `json:"places"`
	Transitions int `json:"transitions"`
	Active      int `json:"active"`
}

// ExportGraph builds a Graph for def. current maps active places to token
// counts and may be nil when no subject is in view.
func ExportGraph(def *Definition, current map[string]int) *Graph {
	initial := def.InitialMarking()
	g := &Graph{
		Name: def.Name(),
		Kind: def.Kind().String(),
		Meta: GraphMeta{
			InitialMarking: initial,
			CurrentMarking: make(map[string]int, len(current)),
		},
	}

	for _, p := range def.places {
		tokens := current[p.Name]
		g.Places = append(g.Places, GraphPlace{
			Name:     p.Name,
			Metadata: copyMetadata(p.Metadata),
			Initial:  containsString(initial, p.Name),
			Active:   tokens > 0,
			Tokens:   tokens,
		})
		if tokens > 0 {
			g.Meta.CurrentMarking[p.Name] = tokens
			g.Meta.Counts.Active++
		}
	}
	for _, t := range def.transitions {
		g.Transitions = append(g.Transitions, GraphTransition{
			Name:     t.Name,
			From:     append([]string(nil), t.From...),
			To:       append([]string(nil), t.To...),
			Roles:    t.Roles(),
			Metadata: copyMetadata(t.Metadata),
		})
	}
	g.Meta.Counts.Places = len(g.Places)
	g.Meta.Counts.Transitions = len(g.Transitions)
	return g
}

// ActivePlaces returns the names of active places in sorted order.
func (g *Graph) ActivePlaces() []string {
	out := make([]string, 0, len(g.Meta.CurrentMarking))
	for name := range g.Meta.CurrentMarking {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// DOT renders the graph in Graphviz DOT format.
//
// State machines are drawn place to place with transitions as edge labels.
// Workflows are drawn as a bipartite net with transitions as boxes.
// Active places are filled.
func (g *Graph) DOT() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("digraph \"%s\" {\n", escapeLabel(g.Name)))
	sb.WriteString("  rankdir=LR;\n")
	sb.WriteString("  node [fontname=\"Helvetica\"];\n")
	sb.WriteString("  edge [fontname=\"Helvetica\"];\n\n")

	sb.WriteString("  // Places\n")
	for i, p := range g.Places {
		attrs := fmt.Sprintf("label=\"%s\" shape=circle", escapeLabel(p.Name))
		if p.Initial {
			attrs += " peripheries=2"
		}
		if p.Active {
			attrs += " style=filled fillcolor=\"#a0d8ef\""
		}
		sb.WriteString(fmt.Sprintf("  p%d [%s];\n", i, attrs))
	}
	sb.WriteString("\n")

	index := g.placeIDs()
	if g.Kind == StateMachine.String() {
		sb.WriteString("  // Transitions\n")
		for _, t := range g.Transitions {
			for _, from := range t.From {
				for _, to := range t.To {
					sb.WriteString(fmt.Sprintf("  %s -> %s [label=\"%s\"];\n",
						index[from], index[to], escapeLabel(t.Name)))
				}
			}
		}
		sb.WriteString("}\n")
		return sb.String()
	}

	sb.WriteString("  // Transitions\n")
	for i, t := range g.Transitions {
		sb.WriteString(fmt.Sprintf("  t%d [label=\"%s\" shape=box];\n", i, escapeLabel(t.Name)))
	}
	sb.WriteString("\n")

	sb.WriteString("  // Arcs\n")
	for i, t := range g.Transitions {
		for _, from := range t.From {
			sb.WriteString(fmt.Sprintf("  %s -> t%d;\n", index[from], i))
		}
		for _, to := range t.To {
			sb.WriteString(fmt.Sprintf("  t%d -> %s;\n", i, index[to]))
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

// Mermaid renders the graph as a Mermaid flowchart.
func (g *Graph) Mermaid() string {
	var sb strings.Builder

	sb.WriteString("graph LR\n")

	for i, p := range g.Places {
		sb.WriteString(fmt.Sprintf("  p%d((%s))\n", i, escapeMermaidLabel(p.Name)))
	}

	index := g.placeIDs()
	if g.Kind == StateMachine.String() {
		for _, t := range g.Transitions {
			for _, from := range t.From {
				for _, to := range t.To {
					sb.WriteString(fmt.Sprintf("  %s -->|%s| %s\n",
						index[from], escapeMermaidLabel(t.Name), index[to]))
				}
			}
		}
	} else {
		for i, t := range g.Transitions {
			sb.WriteString(fmt.Sprintf("  t%d[%s]\n", i, escapeMermaidLabel(t.Name)))
		}
		for i, t := range g.Transitions {
			for _, from := range t.From {
				sb.WriteString(fmt.Sprintf("  %s --> t%d\n", index[from], i))
			}
			for _, to := range t.To {
				sb.WriteString(fmt.Sprintf("  t%d --> %s\n", i, index[to]))
			}
		}
	}

	for i, p := range g.Places {
		if p.Active {
			sb.WriteString(fmt.Sprintf("  style p%d fill:#a0d8ef\n", i))
		}
	}

	return sb.String()
}

func (g *Graph) placeIDs() map[string]string {
	ids := make(map[string]string, len(g.Places))
	for i, p := range g.Places {
		ids[p.Name] = fmt.Sprintf("p%d", i)
	}
	return ids
}

// escapeLabel escapes special characters for DOT format.
func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// escapeMermaidLabel escapes special characters for Mermaid format.
func escapeMermaidLabel(s string) string {
	// Mermaid uses different escaping rules
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
