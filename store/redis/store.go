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

// Package redis provides a Redis-backed store.RecordStore.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/flowstone/engine/state"
	"github.com/flowstone/engine/store"
)

var _ store.RecordStore = (*Store)(nil)

// Store keeps one string key per subject marking.
type Store struct {
	client goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the key prefix. Default is "flowstone".
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithTTL sets an expiry on written markings. Default is 0 (no expiry).
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// New creates a Redis store.
//
// Example:
//
//	s := redis.New(
//	    goredis.NewClient(&goredis.Options{Addr: "localhost:6379"}),
//	    redis.WithPrefix("myapp"),
//	)
func New(client goredis.UniversalClient, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: "flowstone",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReadMarking implements store.RecordStore.
func (s *Store) ReadMarking(ctx context.Context, ref state.Ref) (string, error) {
	value, err := s.client.Get(ctx, s.key(ref)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", store.ErrNotFound
		}
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return value, nil
}

// WriteMarking implements store.RecordStore.
func (s *Store) WriteMarking(ctx context.Context, ref state.Ref, value string) error {
	if err := s.client.Set(ctx, s.key(ref), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete removes a stored marking. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, ref state.Ref) error {
	if err := s.client.Del(ctx, s.key(ref)).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}

func (s *Store) key(ref state.Ref) string {
	return fmt.Sprintf("%s:marking:%s:%s:%s", s.prefix, ref.Type, ref.ID, ref.Property)
}
