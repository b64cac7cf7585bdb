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

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowstone/engine/state"
	"github.com/flowstone/engine/store"
)

func setupStore(t *testing.T, opts ...Option) (*Store, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, opts...), mr
}

var ref = state.Ref{Type: "article", ID: "42", Property: "status"}

func TestStore_ReadNotFound(t *testing.T) {
	s, _ := setupStore(t)

	_, err := s.ReadMarking(context.Background(), ref)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_WriteAndRead(t *testing.T) {
	s, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteMarking(ctx, ref, "pending"))

	got, err := s.ReadMarking(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "pending", got)

	raw, err := mr.Get("flowstone:marking:article:42:status")
	require.NoError(t, err)
	assert.Equal(t, "pending", raw)
}

func TestStore_Prefix(t *testing.T) {
	s, mr := setupStore(t, WithPrefix("cms"))

	require.NoError(t, s.WriteMarking(context.Background(), ref, `{"legal":1}`))
	assert.True(t, mr.Exists("cms:marking:article:42:status"))
}

func TestStore_TTL(t *testing.T) {
	s, mr := setupStore(t, WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, s.WriteMarking(ctx, ref, "draft"))
	assert.Equal(t, time.Minute, mr.TTL("flowstone:marking:article:42:status"))

	mr.FastForward(2 * time.Minute)
	_, err := s.ReadMarking(ctx, ref)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteMarking(ctx, ref, "draft"))
	require.NoError(t, s.Delete(ctx, ref))
	require.NoError(t, s.Delete(ctx, ref))

	_, err := s.ReadMarking(ctx, ref)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_ConnectionError(t *testing.T) {
	s, mr := setupStore(t)
	mr.Close()

	_, err := s.ReadMarking(context.Background(), ref)
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrNotFound)
}
