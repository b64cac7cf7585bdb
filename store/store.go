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

// Package store defines the record store the engine commits markings to,
// together with an in-memory implementation. Backends for Redis and
// PostgreSQL live in subpackages.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/flowstone/engine/state"
)

// ErrNotFound is returned by ReadMarking when no marking has been written
// for the subject. The engine then starts from the initial marking.
var ErrNotFound = errors.New("store: marking not found")

// RecordStore persists the encoded marking of a subject.
//
// WriteMarking is the engine's commit point: when it returns nil the new
// marking must be durable. The engine assumes a single writer per subject
// and does no locking of its own.
type RecordStore interface {
	ReadMarking(ctx context.Context, ref state.Ref) (string, error)
	WriteMarking(ctx context.Context, ref state.Ref, value string) error
}

// MemoryStore is a RecordStore backed by a map. It is safe for concurrent
// use and suits tests and single-process deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[state.Ref]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[state.Ref]string)}
}

// ReadMarking implements RecordStore.
func (s *MemoryStore) ReadMarking(ctx context.Context, ref state.Ref) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.records[ref]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// WriteMarking implements RecordStore.
func (s *MemoryStore) WriteMarking(ctx context.Context, ref state.Ref, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[ref] = value
	return nil
}

// Len returns the number of stored markings.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
