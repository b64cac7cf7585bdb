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
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/flowstone/engine/cache"
	"github.com/flowstone/engine/clock"
	execctx "github.com/flowstone/engine/context"
	"github.com/flowstone/engine/event"
	"github.com/flowstone/engine/petri"
)

// article is a test subject carrying its own markings.
type article struct {
	id       string
	workflow string
	fields   map[string]string
}

func newArticle(id string) *article {
	return &article{id: id, fields: map[string]string{}}
}

func (a *article) SubjectType() string { return "article" }
func (a *article) SubjectID() string   { return a.id }
func (a *article) WorkflowKey() string { return a.workflow }

func (a *article) Marking(property string) string { return a.fields[property] }

func (a *article) SetMarking(property, value string) { a.fields[property] = value }

// bareSubject implements neither HasMarking nor HasWorkflowKey.
type bareSubject struct{}

func (bareSubject) SubjectType() string { return "article" }
func (bareSubject) SubjectID() string   { return "bare" }

func publishingConfig() petri.Config {
	return petri.Config{
		Name:            "article_publishing",
		Supports:        []string{"article"},
		MarkingProperty: "status",
		Places:          []petri.PlaceConfig{{Name: "draft"}, {Name: "pending"}, {Name: "published"}},
		Transitions: []petri.TransitionConfig{
			{Name: "submit", From: []string{"draft"}, To: []string{"pending"},
				Metadata: map[string]interface{}{"role": []interface{}{"author"}}},
			{Name: "publish", From: []string{"pending"}, To: []string{"published"},
				Metadata: map[string]interface{}{"role": "editor|admin"}},
			{Name: "reject", From: []string{"pending"}, To: []string{"draft"}},
		},
	}
}

func reviewConfig() petri.Config {
	return petri.Config{
		Name:            "legal_review",
		Kind:            "workflow",
		MarkingProperty: "review",
		Places: []petri.PlaceConfig{
			{Name: "start"}, {Name: "legal"}, {Name: "tech"}, {Name: "done"},
		},
		Transitions: []petri.TransitionConfig{
			{Name: "fork", From: []string{"start"}, To: []string{"legal", "tech"}},
			{Name: "join", From: []string{"legal", "tech"}, To: []string{"done"}},
		},
	}
}

// definitions serves compiled definitions by workflow key.
func definitions(t *testing.T, cfgs map[string]petri.Config) DefinitionProvider {
	t.Helper()
	return cache.New(cache.LoaderFunc(func(ctx context.Context, subjectType, workflowKey string) (*petri.Definition, error) {
		cfg, ok := cfgs[workflowKey]
		if !ok {
			return nil, fmt.Errorf("unexpected workflow key %q", workflowKey)
		}
		return petri.Compile(cfg)
	}), nil, cache.DefaultConfig())
}

// recordingLogger keeps messages per level.
type recordingLogger struct {
	mu     sync.Mutex
	debug  []string
	info   []string
	warn   []string
	errors []string
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debug = append(l.debug, msg)
}

func (l *recordingLogger) Info(msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.info = append(l.info, msg)
}

func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warn = append(l.warn, msg)
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

// recordingMetrics sums values per metric name.
type recordingMetrics struct {
	mu     sync.Mutex
	values map[string]float64
	counts map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{values: map[string]float64{}, counts: map[string]int{}}
}

func (m *recordingMetrics) Inc(name string) { m.Add(name, 1) }

func (m *recordingMetrics) Add(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name] += value
	m.counts[name]++
}

func (m *recordingMetrics) Observe(name string, value float64) { m.Add(name, value) }
func (m *recordingMetrics) Set(name string, value float64)     { m.Add(name, value) }

func (m *recordingMetrics) value(name string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[name]
}

func (m *recordingMetrics) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[name]
}

// recordingErrors collects errors reported to the ErrorRecorder.
type recordingErrors struct {
	mu   sync.Mutex
	errs []error
}

func (r *recordingErrors) RecordError(err error, metadata map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

type harness struct {
	engine  *Engine
	logger  *recordingLogger
	metrics *recordingMetrics
	errs    *recordingErrors
	clock   *clock.VirtualClock
}

func newHarness(t *testing.T, config Config, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		logger:  &recordingLogger{},
		metrics: newRecordingMetrics(),
		errs:    &recordingErrors{},
		clock:   clock.NewVirtualClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	ectx := execctx.NewExecutionContextBuilder().
		WithClock(h.clock).
		WithLogger(h.logger).
		WithMetrics(h.metrics).
		WithErrorRecorder(h.errs).
		Build()

	defs := definitions(t, map[string]petri.Config{
		DefaultWorkflowKey: publishingConfig(),
		"legal_review":     reviewConfig(),
	})
	h.engine = NewEngine(defs, ectx, config, opts...)
	return h
}

// hookRecorder subscribes to every hook point and records the sequence.
type hookRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *hookRecorder) attach(t *testing.T, reg *event.Registry) {
	t.Helper()
	for _, p := range event.Points {
		if _, err := reg.Subscribe(p, "", "", r.record); err != nil {
			t.Fatalf("subscribe %s: %v", p, err)
		}
	}
}

func (r *hookRecorder) record(ctx context.Context, e *event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := string(e.Point)
	if e.Place != "" {
		name += ":" + e.Place
	}
	r.calls = append(r.calls, name)
	return nil
}

func (r *hookRecorder) points() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *hookRecorder) countPrefix(prefix string) int {
	n := 0
	for _, c := range r.points() {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}
