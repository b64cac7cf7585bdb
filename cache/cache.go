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

// Package cache memoizes compiled workflow definitions per subject type and
// workflow key.
//
// Concurrent misses for one key share a single compile. Entries expire
// after a TTL measured on the injected clock, and can be dropped explicitly
// with Invalidate. In debug mode nothing is kept and every Get recompiles,
// which suits iterating on definitions during development.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/flowstone/engine/clock"
	"github.com/flowstone/engine/petri"
)

// DefaultTTL is how long a compiled definition stays cached.
const DefaultTTL = 5 * time.Minute

// Config configures a Cache.
type Config struct {
	// TTL bounds the life of an entry. Zero or negative means no expiry.
	TTL time.Duration

	// Debug disables memoization.
	Debug bool
}

// DefaultConfig returns a Config with DefaultTTL.
func DefaultConfig() Config {
	return Config{TTL: DefaultTTL}
}

// Loader compiles the definition for a subject type and workflow key.
type Loader interface {
	Load(ctx context.Context, subjectType, workflowKey string) (*petri.Definition, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, subjectType, workflowKey string) (*petri.Definition, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context, subjectType, workflowKey string) (*petri.Definition, error) {
	return f(ctx, subjectType, workflowKey)
}

// Key identifies a cache entry.
type Key struct {
	SubjectType string
	WorkflowKey string
}

func (k Key) String() string {
	return k.SubjectType + "\x00" + k.WorkflowKey
}

type entry struct {
	def       *petri.Definition
	expiresAt time.Time
}

// Cache is a process-wide, read-mostly store of compiled definitions.
// It is safe for concurrent use.
type Cache struct {
	loader Loader
	clock  clock.Clock
	config Config

	group singleflight.Group

	mu      sync.RWMutex
	entries map[Key]entry

	// epoch and gens advance on InvalidateAll and Invalidate. A compile
	// started under an older generation is not stored.
	epoch   uint64
	gens    map[Key]uint64
	loading map[Key]int
}

type generation struct {
	epoch uint64
	gen   uint64
}

// New creates a cache over loader. A nil clock uses real time.
func New(loader Loader, clk clock.Clock, config Config) *Cache {
	if clk == nil {
		clk = clock.NewRealTimeClock()
	}
	return &Cache{
		loader:  loader,
		clock:   clk,
		config:  config,
		entries: make(map[Key]entry),
		gens:    make(map[Key]uint64),
		loading: make(map[Key]int),
	}
}

// Get returns the definition for (subjectType, workflowKey), compiling it on
// a miss. Callers racing on the same missing key receive the same
// *petri.Definition from one compile.
//
// The shared compile does not inherit the cancellation of the caller that
// started it, so one cancelled caller does not fail the others.
func (c *Cache) Get(ctx context.Context, subjectType, workflowKey string) (*petri.Definition, error) {
	key := Key{SubjectType: subjectType, WorkflowKey: workflowKey}

	if !c.config.Debug {
		if def, ok := c.lookup(key); ok {
			return def, nil
		}
	}

	v, err, _ := c.group.Do(key.String(), func() (interface{}, error) {
		if !c.config.Debug {
			if def, ok := c.lookup(key); ok {
				return def, nil
			}
		}

		gen := c.beginLoad(key)
		defer c.endLoad(key)

		def, err := c.loader.Load(context.WithoutCancel(ctx), subjectType, workflowKey)
		if err != nil {
			return nil, err
		}
		if def == nil {
			return nil, fmt.Errorf("cache: loader returned no definition for %s/%s", subjectType, workflowKey)
		}
		if !c.config.Debug {
			c.store(key, def, gen)
		}
		return def, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*petri.Definition), nil
}

// Invalidate drops the entry for (subjectType, workflowKey). The next Get
// recompiles, and a compile already in flight for the key is not stored.
func (c *Cache) Invalidate(subjectType, workflowKey string) {
	key := Key{SubjectType: subjectType, WorkflowKey: workflowKey}

	c.mu.Lock()
	delete(c.entries, key)
	c.gens[key]++
	c.mu.Unlock()

	c.group.Forget(key.String())
}

// InvalidateAll drops every entry. Compiles in flight are not stored.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	keys := make([]Key, 0, len(c.entries)+len(c.loading))
	for k := range c.entries {
		keys = append(keys, k)
	}
	for k := range c.loading {
		if _, ok := c.entries[k]; !ok {
			keys = append(keys, k)
		}
	}
	c.entries = make(map[Key]entry)
	c.epoch++
	c.mu.Unlock()

	for _, k := range keys {
		c.group.Forget(k.String())
	}
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	now := c.clock.Now()

	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, e := range c.entries {
		if !e.expired(now) {
			n++
		}
	}
	return n
}

func (c *Cache) lookup(key Key) (*petri.Definition, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || e.expired(c.clock.Now()) {
		return nil, false
	}
	return e.def, true
}

func (c *Cache) beginLoad(key Key) generation {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading[key]++
	return generation{epoch: c.epoch, gen: c.gens[key]}
}

func (c *Cache) endLoad(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading[key]--; c.loading[key] <= 0 {
		delete(c.loading, key)
	}
}

// store keeps def unless key was invalidated since gen was taken.
func (c *Cache) store(key Key, def *petri.Definition, gen generation) {
	e := entry{def: def}
	if c.config.TTL > 0 {
		e.expiresAt = c.clock.Now().Add(c.config.TTL)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != gen.epoch || c.gens[key] != gen.gen {
		return
	}
	c.entries[key] = e
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}
