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
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowstone/engine/cache"
	"github.com/flowstone/engine/petri"
)

func loadTestdata(t *testing.T) *File {
	t.Helper()
	f, err := Load(filepath.Join("testdata", "workflows.yaml"))
	require.NoError(t, err)
	return f
}

func TestLoad_PreservesOrder(t *testing.T) {
	f := loadTestdata(t)

	require.Len(t, f.Workflows, 3)
	assert.Equal(t, "article_publishing", f.Workflows[0].Key)
	assert.Equal(t, "legal_review", f.Workflows[1].Key)
	assert.Equal(t, "ticket_status", f.Workflows[2].Key)

	w := f.Workflows[0]
	names := []string{}
	for _, p := range w.Places {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"draft", "pending", "published"}, names)

	tnames := []string{}
	for _, tr := range w.Transitions {
		tnames = append(tnames, tr.Name)
	}
	assert.Equal(t, []string{"submit", "publish", "reject"}, tnames)
}

func TestLoad_StateMachine(t *testing.T) {
	f := loadTestdata(t)
	w, ok := f.Workflow("article_publishing")
	require.True(t, ok)

	def, err := w.Compile()
	require.NoError(t, err)

	assert.Equal(t, petri.StateMachine, def.Kind())
	assert.Equal(t, "status", def.MarkingProperty())
	assert.Equal(t, []string{"draft"}, def.InitialMarking())
	assert.Equal(t, "Article publishing", def.Metadata()["title"])

	pending, _ := def.Place("pending")
	assert.Equal(t, "orange", pending.Metadata["color"])
	published, _ := def.Place("published")
	assert.True(t, published.Terminal())

	submit, _ := def.Transition("submit")
	assert.Equal(t, []string{"author"}, submit.Roles())
	publish, _ := def.Transition("publish")
	assert.Equal(t, []string{"editor", "admin"}, publish.Roles())
	reject, _ := def.Transition("reject")
	assert.Equal(t, []string{"pending", "published"}, reject.From)
}

func TestLoad_WorkflowList(t *testing.T) {
	f := loadTestdata(t)
	w, _ := f.Workflow("legal_review")

	def, err := w.Compile()
	require.NoError(t, err)

	assert.Equal(t, petri.Workflow, def.Kind())
	assert.Equal(t, []string{"start"}, def.InitialMarking())
	fork, _ := def.Transition("fork")
	assert.Equal(t, []string{"legal", "tech"}, fork.To)
}

func TestLoad_Enumeration(t *testing.T) {
	f := loadTestdata(t)
	w, _ := f.Workflow("ticket_status")
	assert.Nil(t, w.Places)
	assert.Nil(t, w.Transitions)

	def, err := w.Compile()
	require.NoError(t, err)

	assert.Len(t, def.Places(), 3)
	names := []string{}
	for _, tr := range def.Transitions() {
		names = append(names, tr.Name)
	}
	assert.Equal(t, []string{"new_to_open", "open_to_closed"}, names)
}

func TestWorkflow_EnumeratesTransitionsFromPlaces(t *testing.T) {
	f, err := Parse([]byte(`
workflows:
  status:
    places: [a, b]
    transitions: ~
`))
	require.NoError(t, err)

	def, err := f.Workflows[0].Compile()
	require.NoError(t, err)

	_, ok := def.Transition("a_to_b")
	assert.True(t, ok)
	_, ok = def.Transition("b_to_a")
	assert.True(t, ok, "all_pairs is the default policy")
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "workflows: [\n"},
		{"workflows not a mapping", "workflows: [a, b]"},
		{"places scalar", "workflows:\n  w:\n    places: draft\n"},
		{"transitions scalar", "workflows:\n  w:\n    places: [a]\n    transitions: go\n"},
		{"from not a string", "workflows:\n  w:\n    places: [a]\n    transitions:\n      t: {from: {x: 1}, to: a}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestWorkflow_CompileErrors(t *testing.T) {
	f, err := Parse([]byte(`
workflows:
  broken:
    places: [draft]
    transitions:
      go: {from: draft, to: nowhere}
  no_values:
    places: ~
`))
	require.NoError(t, err)

	_, err = f.Workflows[0].Compile()
	assert.ErrorIs(t, err, petri.ErrInvalidDefinition)

	_, err = f.Workflows[1].Compile()
	assert.ErrorContains(t, err, "no enumeration values")
}

func TestFile_Resolve(t *testing.T) {
	f := loadTestdata(t)

	w, err := f.Resolve("article", "default", "default")
	require.NoError(t, err)
	assert.Equal(t, "article_publishing", w.Key)

	w, err = f.Resolve("article", "legal_review", "default")
	require.NoError(t, err)
	assert.Equal(t, "legal_review", w.Key)

	w, err = f.Resolve("contract", "default", "default")
	require.NoError(t, err)
	assert.Equal(t, "legal_review", w.Key)

	_, err = f.Resolve("ticket", "legal_review", "default")
	assert.True(t, errors.Is(err, ErrNoWorkflow))

	_, err = f.Resolve("invoice", "default", "default")
	assert.ErrorIs(t, err, ErrNoWorkflow)
}

func TestLoader_WithCache(t *testing.T) {
	f := loadTestdata(t)
	c := cache.New(Loader(f, "default"), nil, cache.DefaultConfig())

	def, err := c.Get(context.Background(), "ticket", "default")
	require.NoError(t, err)
	assert.Equal(t, "ticket_status", def.Name())
}

func TestFileLoader_PicksUpEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workflows.yaml")
	write := func(places string) {
		require.NoError(t, os.WriteFile(path, []byte("workflows:\n  w:\n    places: "+places+"\n    transitions: ~\n"), 0o600))
	}

	write("[a, b]")
	c := cache.New(FileLoader(path, "default"), nil, cache.Config{Debug: true})

	def, err := c.Get(context.Background(), "any", "default")
	require.NoError(t, err)
	assert.Len(t, def.Places(), 2)

	write("[a, b, c]")
	def, err = c.Get(context.Background(), "any", "default")
	require.NoError(t, err)
	assert.Len(t, def.Places(), 3)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
