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
	"encoding/json"
	"strings"
	"testing"
)

func TestExportGraph(t *testing.T) {
	def := MustCompile(publishingConfig())
	g := ExportGraph(def, map[string]int{"pending": 1})

	if g.Meta.Counts.Places != 3 || g.Meta.Counts.Transitions != 3 || g.Meta.Counts.Active != 1 {
		t.Errorf("unexpected counts: %+v", g.Meta.Counts)
	}
	if len(g.Meta.InitialMarking) != 1 || g.Meta.InitialMarking[0] != "draft" {
		t.Errorf("unexpected initial marking: %v", g.Meta.InitialMarking)
	}
	if g.Meta.CurrentMarking["pending"] != 1 {
		t.Errorf("unexpected current marking: %v", g.Meta.CurrentMarking)
	}
	if !g.Places[0].Initial || g.Places[0].Active {
		t.Errorf("draft should be initial and inactive: %+v", g.Places[0])
	}
	if !g.Places[1].Active {
		t.Errorf("pending should be active: %+v", g.Places[1])
	}
	if got := g.ActivePlaces(); len(got) != 1 || got[0] != "pending" {
		t.Errorf("expected active [pending], got %v", got)
	}
}

func TestExportGraph_JSON(t *testing.T) {
	def := MustCompile(publishingConfig())
	data, err := json.Marshal(ExportGraph(def, nil))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"places", "transitions", "meta"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("expected key %q in JSON export", key)
		}
	}
	meta := decoded["meta"].(map[string]interface{})
	for _, key := range []string{"initial_marking", "current_marking", "counts"} {
		if _, ok := meta[key]; !ok {
			t.Errorf("expected meta key %q in JSON export", key)
		}
	}
}

func TestGraph_DOT(t *testing.T) {
	def := MustCompile(publishingConfig())
	dot := ExportGraph(def, map[string]int{"draft": 1}).DOT()

	for _, want := range []string{
		`digraph "article_publishing"`,
		`p0 [label="draft" shape=circle peripheries=2 style=filled`,
		`p0 -> p1 [label="submit"];`,
		`p2 -> p0 [label="reject"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q:\n%s", want, dot)
		}
	}
}

func TestGraph_DOTWorkflow(t *testing.T) {
	def := MustCompile(Config{
		Name:   "review",
		Kind:   "workflow",
		Places: []PlaceConfig{{Name: "start"}, {Name: "a"}, {Name: "b"}},
		Transitions: []TransitionConfig{
			{Name: "fork", From: []string{"start"}, To: []string{"a", "b"}},
		},
	})
	dot := ExportGraph(def, nil).DOT()

	for _, want := range []string{`t0 [label="fork" shape=box];`, "p0 -> t0;", "t0 -> p1;", "t0 -> p2;"} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q:\n%s", want, dot)
		}
	}
}

func TestGraph_Mermaid(t *testing.T) {
	def := MustCompile(publishingConfig())
	out := ExportGraph(def, map[string]int{"published": 1}).Mermaid()

	for _, want := range []string{"graph LR", "p0((draft))", "p0 -->|submit| p1", "style p2 fill:#a0d8ef"} {
		if !strings.Contains(out, want) {
			t.Errorf("Mermaid output missing %q:\n%s", want, out)
		}
	}
}

func TestEscapeLabels(t *testing.T) {
	if got := escapeLabel(`a "b"`); got != `a \"b\"` {
		t.Errorf("escapeLabel: got %s", got)
	}
	if got := escapeMermaidLabel("<x>"); got != "&lt;x&gt;" {
		t.Errorf("escapeMermaidLabel: got %s", got)
	}
}
