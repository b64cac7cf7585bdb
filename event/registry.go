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

package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// subscription is one registered handler with its filters.
type subscription struct {
	id       string
	point    HookPoint
	workflow string
	name     string
	handler  Handler
}

// shouldHandle reports whether both filters match e. An empty filter
// matches everything on its axis.
func (s *subscription) shouldHandle(e *Event) bool {
	if s.point != e.Point {
		return false
	}
	if s.workflow != "" && s.workflow != e.Workflow {
		return false
	}
	if s.name == "" {
		return true
	}
	if e.Point.PlaceScoped() {
		return s.name == e.Place
	}
	return e.Transition != nil && s.name == e.Transition.Name
}

// Registry holds hook subscriptions in registration order.
// It is safe for concurrent use; dispatch works on a snapshot, so a handler
// may subscribe or unsubscribe without deadlocking.
type Registry struct {
	mu   sync.RWMutex
	subs []*subscription
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Subscribe registers handler for point. workflow and name narrow the
// events received; pass "" for either to match all. name is a place name
// for leave, enter and entered, and a transition name otherwise.
// Returns a subscription ID for Unsubscribe.
func (r *Registry) Subscribe(point HookPoint, workflow, name string, handler Handler) (string, error) {
	if handler == nil {
		return "", fmt.Errorf("handler cannot be nil")
	}
	if !point.Valid() {
		return "", fmt.Errorf("unknown hook point %q", point)
	}

	sub := &subscription{
		id:       "sub-" + uuid.NewString(),
		point:    point,
		workflow: workflow,
		name:     name,
		handler:  handler,
	}

	r.mu.Lock()
	r.subs = append(r.subs, sub)
	r.mu.Unlock()

	return sub.id, nil
}

// Unsubscribe removes a subscription by ID.
func (r *Registry) Unsubscribe(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, sub := range r.subs {
		if sub.id == id {
			r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("subscription %q not found", id)
}

// Len returns the number of subscriptions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// HasSubscribers reports whether any subscriber would receive e.
func (r *Registry) HasSubscribers(e *Event) bool {
	return len(r.matching(e)) > 0
}

// Dispatch calls every matching subscriber in registration order and stops
// at the first failure, which is returned as a *HookError. On a guard
// event, dispatch also stops once a subscriber blocks.
func (r *Registry) Dispatch(ctx context.Context, e *Event) error {
	for _, sub := range r.matching(e) {
		if err := invoke(ctx, sub, e); err != nil {
			return err
		}
		if e.Blocked() {
			return nil
		}
	}
	return nil
}

// DispatchIsolated calls every matching subscriber in registration order
// even when some fail, and returns each failure as a *HookError.
// On a guard event, dispatch still stops once a subscriber blocks.
func (r *Registry) DispatchIsolated(ctx context.Context, e *Event) []error {
	var errs []error
	for _, sub := range r.matching(e) {
		if err := invoke(ctx, sub, e); err != nil {
			errs = append(errs, err)
		}
		if e.Blocked() {
			break
		}
	}
	return errs
}

// matching returns a snapshot of the subscriptions for e.
func (r *Registry) matching(e *Event) []*subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*subscription
	for _, sub := range r.subs {
		if sub.shouldHandle(e) {
			out = append(out, sub)
		}
	}
	return out
}

// invoke runs one handler, converting a panic into a *HookError.
func invoke(ctx context.Context, sub *subscription, e *Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HookError{Point: e.Point, Subscriber: sub.id, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if herr := sub.handler(ctx, e); herr != nil {
		return &HookError{Point: e.Point, Subscriber: sub.id, Err: herr}
	}
	return nil
}
