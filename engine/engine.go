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

// Package engine applies workflow transitions to subjects.
//
// An Engine resolves the Definition for a subject, loads the subject's
// Marking and hands back a WorkflowHandle. The handle answers which
// transitions are enabled and authorized for the caller, and applies a
// chosen transition through the fixed hook sequence
//
//	guard, leave, transition, enter, (commit), entered, completed, announce
//
// Commit is the durability boundary. A failure before commit leaves the
// persisted marking untouched; a hook failure after commit is reported in
// the Result but does not undo the transition.
//
// # Usage Example
//
//	defs := cache.New(config.Loader(file), clock.NewRealTimeClock(), cache.DefaultConfig())
//	eng := engine.NewEngine(defs, execctx.NewExecutionContext(ctx, nil), engine.DefaultConfig(),
//	    engine.WithStore(store.NewMemoryStore()),
//	)
//
//	h, err := eng.Handle(ctx, article, []string{"author"})
//	if err != nil {
//	    return err
//	}
//	res, err := h.Apply("submit")
//	if engine.IsDenial(err) {
//	    // present as a refusal
//	}
//
// The engine assumes a single writer per subject and does no locking of
// its own. Independent subjects may be handled concurrently.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	execctx "github.com/flowstone/engine/context"
	"github.com/flowstone/engine/event"
	"github.com/flowstone/engine/petri"
	"github.com/flowstone/engine/state"
	"github.com/flowstone/engine/store"
)

// Config defines the configuration for the engine.
type Config struct {
	// FaultIsolation keeps pre-commit hook dispatch going past a failing
	// subscriber; all failures are then returned together. Apply still
	// aborts before commit when any subscriber failed.
	FaultIsolation bool

	// DefaultWorkflowKey is used for subjects that do not implement
	// state.HasWorkflowKey.
	DefaultWorkflowKey string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		FaultIsolation:     false,
		DefaultWorkflowKey: DefaultWorkflowKey,
	}
}

// DefinitionProvider returns the compiled Definition for a subject type and
// workflow key. *cache.Cache implements it.
type DefinitionProvider interface {
	Get(ctx context.Context, subjectType, workflowKey string) (*petri.Definition, error)
}

// Engine builds WorkflowHandles and holds what they share: definitions,
// hook registry, guards, record store and observability.
//
// The engine is safe for concurrent use.
type Engine struct {
	defs   DefinitionProvider
	ctx    *execctx.ExecutionContext
	config Config

	hooks *event.Registry
	store store.RecordStore
	roles RoleResolver

	guardsMu sync.RWMutex
	guards   []guardEntry
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore sets the record store markings are read from and committed to.
// Without one, subjects must implement state.HasMarking.
func WithStore(s store.RecordStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithHooks sets the hook registry. By default the engine creates its own.
func WithHooks(r *event.Registry) Option {
	return func(e *Engine) {
		e.hooks = r
	}
}

// WithRoleResolver sets the resolver used by HandleFor.
func WithRoleResolver(r RoleResolver) Option {
	return func(e *Engine) {
		e.roles = r
	}
}

// NewEngine creates an engine.
//
// Parameters:
//   - defs: source of compiled definitions, usually a cache
//   - ctx: execution context with clock and observability; nil uses defaults
//   - config: engine configuration
//
// An empty DefaultWorkflowKey falls back to "default".
func NewEngine(defs DefinitionProvider, ctx *execctx.ExecutionContext, config Config, opts ...Option) *Engine {
	if ctx == nil {
		ctx = execctx.NewExecutionContext(context.Background(), nil)
	}
	if config.DefaultWorkflowKey == "" {
		config.DefaultWorkflowKey = DefaultWorkflowKey
	}

	e := &Engine{
		defs:   defs,
		ctx:    ctx,
		config: config,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.hooks == nil {
		e.hooks = event.NewRegistry()
	}
	return e
}

// Hooks returns the registry hook subscribers register with.
func (e *Engine) Hooks() *event.Registry {
	return e.hooks
}

// ExecutionContext returns the execution context used by this engine.
func (e *Engine) ExecutionContext() *execctx.ExecutionContext {
	return e.ctx
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.config
}

// WorkflowKey returns the workflow key used for subject.
func (e *Engine) WorkflowKey(subject state.Subject) string {
	if k, ok := subject.(state.HasWorkflowKey); ok && k.WorkflowKey() != "" {
		return k.WorkflowKey()
	}
	return e.config.DefaultWorkflowKey
}

// Definition resolves the definition for subject.
func (e *Engine) Definition(ctx context.Context, subject state.Subject) (*petri.Definition, error) {
	key := e.WorkflowKey(subject)
	def, err := e.defs.Get(ctx, subject.SubjectType(), key)
	if err != nil {
		return nil, fmt.Errorf("engine: load workflow %q for %s: %w", key, subject.SubjectType(), err)
	}
	if !def.Supports(subject.SubjectType()) {
		return nil, fmt.Errorf("%w: %q does not support %q", ErrUnsupportedSubject, def.Name(), subject.SubjectType())
	}
	return def, nil
}

// Handle resolves the definition and current marking of subject and pairs
// them with the caller's roles. The handle is meant for one request.
func (e *Engine) Handle(ctx context.Context, subject state.Subject, roles []string) (*WorkflowHandle, error) {
	def, err := e.Definition(ctx, subject)
	if err != nil {
		return nil, err
	}

	marking, err := e.loadMarking(ctx, def, subject)
	if err != nil {
		return nil, err
	}

	return &WorkflowHandle{
		engine:  e,
		ctx:     ctx,
		def:     def,
		subject: subject,
		marking: marking,
		roles:   append([]string(nil), roles...),
	}, nil
}

// HandleFor is Handle with roles obtained from the engine's RoleResolver.
func (e *Engine) HandleFor(ctx context.Context, subject state.Subject, caller interface{}) (*WorkflowHandle, error) {
	if e.roles == nil {
		return nil, fmt.Errorf("engine: no role resolver configured")
	}
	roles, err := e.roles.RolesFor(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("engine: resolve roles: %w", err)
	}
	return e.Handle(ctx, subject, roles)
}

// CurrentMarking returns the encoded marking of subject, as it would be
// persisted.
func (e *Engine) CurrentMarking(ctx context.Context, subject state.Subject) (string, error) {
	h, err := e.Handle(ctx, subject, nil)
	if err != nil {
		return "", err
	}
	return h.CurrentMarking()
}

// ListTransitions lists every transition of subject's workflow with its
// enabled and authorized flags for the given roles.
func (e *Engine) ListTransitions(ctx context.Context, subject state.Subject, roles []string) ([]TransitionInfo, error) {
	h, err := e.Handle(ctx, subject, roles)
	if err != nil {
		return nil, err
	}
	return h.ListTransitions()
}

// Graph exports subject's workflow with its current marking highlighted.
func (e *Engine) Graph(ctx context.Context, subject state.Subject) (*petri.Graph, error) {
	h, err := e.Handle(ctx, subject, nil)
	if err != nil {
		return nil, err
	}
	return h.Graph(), nil
}

// loadMarking reads the subject's marking from the record store or from
// the subject itself. A missing or empty marking yields the initial one.
func (e *Engine) loadMarking(ctx context.Context, def *petri.Definition, subject state.Subject) (state.Marking, error) {
	var raw string
	switch {
	case e.store != nil:
		v, err := e.store.ReadMarking(ctx, state.RefOf(subject, def.MarkingProperty()))
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return state.Marking{}, fmt.Errorf("engine: read marking of %s %s: %w", subject.SubjectType(), subject.SubjectID(), err)
		}
		raw = v
	default:
		if hm, ok := subject.(state.HasMarking); ok {
			raw = hm.Marking(def.MarkingProperty())
		}
	}

	m, err := state.Decode(def.Kind(), raw)
	if err != nil {
		return state.Marking{}, fmt.Errorf("engine: %s %s: %w", subject.SubjectType(), subject.SubjectID(), err)
	}
	if m.IsEmpty() {
		return state.Initial(def), nil
	}
	if err := m.Validate(def); err != nil {
		return state.Marking{}, fmt.Errorf("engine: %s %s: %w", subject.SubjectType(), subject.SubjectID(), err)
	}
	return m, nil
}

// commit persists m as the subject's marking in a single write.
func (e *Engine) commit(ctx context.Context, def *petri.Definition, subject state.Subject, m state.Marking) error {
	value, err := m.Encode(def.Kind())
	if err != nil {
		return err
	}
	if e.store != nil {
		return e.store.WriteMarking(ctx, state.RefOf(subject, def.MarkingProperty()), value)
	}
	if hm, ok := subject.(state.HasMarking); ok {
		hm.SetMarking(def.MarkingProperty(), value)
		return nil
	}
	return ErrNoRecordStore
}
