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

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/flowstone/engine/state"
)

func TestMemoryStore_ReadWrite(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	ref := state.Ref{Type: "article", ID: "1", Property: "status"}

	if _, err := s.ReadMarking(ctx, ref); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.WriteMarking(ctx, ref, "pending"); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := s.ReadMarking(ctx, ref)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got != "pending" {
		t.Errorf("expected pending, got %s", got)
	}

	other := ref
	other.Property = "review"
	if _, err := s.ReadMarking(ctx, other); !errors.Is(err, ErrNotFound) {
		t.Errorf("markings are keyed by property, got %v", err)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 record, got %d", s.Len())
	}
}

func TestMemoryStore_WriteCancelled(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.WriteMarking(ctx, state.Ref{Type: "article", ID: "1"}, "draft")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if s.Len() != 0 {
		t.Error("cancelled write must not be stored")
	}
}
