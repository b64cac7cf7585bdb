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

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowstone/engine/state"
	"github.com/flowstone/engine/store"
)

// fakeDB keeps rows in memory and records the SQL it receives.
type fakeDB struct {
	rows    map[state.Ref]string
	version map[state.Ref]int64
	queries []string
	execErr error
}

func newFakeDB() *fakeDB {
	return &fakeDB{rows: map[state.Ref]string{}, version: map[state.Ref]int64{}}
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.queries = append(f.queries, sql)
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	if strings.Contains(sql, "DO NOTHING") {
		ref := state.Ref{Type: args[0].(string), ID: args[1].(string), Property: args[2].(string)}
		if _, ok := f.rows[ref]; ok {
			return pgconn.NewCommandTag("INSERT 0 0"), nil
		}
		f.rows[ref] = args[3].(string)
		f.version[ref] = 1
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
	if strings.Contains(sql, "INSERT INTO") {
		ref := state.Ref{Type: args[0].(string), ID: args[1].(string), Property: args[2].(string)}
		f.rows[ref] = args[3].(string)
		f.version[ref]++
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
	if strings.HasPrefix(sql, "UPDATE") {
		ref := state.Ref{Type: args[0].(string), ID: args[1].(string), Property: args[2].(string)}
		if _, ok := f.rows[ref]; !ok || f.version[ref] != args[4].(int64) {
			return pgconn.NewCommandTag("UPDATE 0"), nil
		}
		f.rows[ref] = args[3].(string)
		f.version[ref]++
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.queries = append(f.queries, sql)
	ref := state.Ref{Type: args[0].(string), ID: args[1].(string), Property: args[2].(string)}
	value, ok := f.rows[ref]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	if strings.HasPrefix(sql, "SELECT version") {
		return fakeRow{value: f.version[ref]}
	}
	return fakeRow{value: value}
}

type fakeRow struct {
	value any
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	switch d := dest[0].(type) {
	case *string:
		*d = r.value.(string)
	case *int64:
		*d = r.value.(int64)
	default:
		return fmt.Errorf("unsupported scan target %T", dest[0])
	}
	return nil
}

var ref = state.Ref{Type: "article", ID: "42", Property: "status"}

func TestStore_ReadNotFound(t *testing.T) {
	s, err := NewFromDB(newFakeDB())
	require.NoError(t, err)

	_, err = s.ReadMarking(context.Background(), ref)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_WriteAndRead(t *testing.T) {
	db := newFakeDB()
	s, err := NewFromDB(db)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.WriteMarking(ctx, ref, "pending"))
	require.NoError(t, s.WriteMarking(ctx, ref, "published"))

	got, err := s.ReadMarking(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "published", got)

	version, err := s.Version(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	assert.Contains(t, db.queries[0], "INSERT INTO workflow_markings")
	assert.Contains(t, db.queries[0], "ON CONFLICT (subject_type, subject_id, property)")
	assert.Contains(t, db.queries[0], "version = workflow_markings.version + 1")
}

func TestStore_WithTable(t *testing.T) {
	db := newFakeDB()
	s, err := NewFromDB(db, WithTable("cms.article_states"))
	require.NoError(t, err)

	require.NoError(t, s.Migrate(context.Background()))
	assert.Contains(t, db.queries[0], "CREATE TABLE IF NOT EXISTS cms.article_states")
}

func TestStore_InvalidTable(t *testing.T) {
	_, err := NewFromDB(newFakeDB(), WithTable("markings; DROP TABLE users"))
	assert.Error(t, err)
}

func TestStore_WriteError(t *testing.T) {
	db := newFakeDB()
	db.execErr = errors.New("connection reset")
	s, err := NewFromDB(db)
	require.NoError(t, err)

	err = s.WriteMarking(context.Background(), ref, "draft")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NotErrorIs(t, err, store.ErrNotFound)
}

func TestStore_CompareAndWrite(t *testing.T) {
	db := newFakeDB()
	s, err := NewFromDB(db)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.CompareAndWriteMarking(ctx, ref, "draft", 0))
	err = s.CompareAndWriteMarking(ctx, ref, "draft", 0)
	assert.ErrorIs(t, err, ErrVersionConflict, "a second create must conflict")

	version, err := s.Version(ctx, ref)
	require.NoError(t, err)
	require.Equal(t, int64(1), version)

	require.NoError(t, s.CompareAndWriteMarking(ctx, ref, "pending", version))

	// A writer still holding version 1 lost the race.
	err = s.CompareAndWriteMarking(ctx, ref, "published", version)
	assert.ErrorIs(t, err, ErrVersionConflict)

	got, err := s.ReadMarking(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, "pending", got)

	version, err = s.Version(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
	assert.Contains(t, db.queries[len(db.queries)-1], "SELECT version")
}

func TestStore_CompareAndWriteError(t *testing.T) {
	db := newFakeDB()
	db.execErr = errors.New("connection reset")
	s, err := NewFromDB(db)
	require.NoError(t, err)

	err = s.CompareAndWriteMarking(context.Background(), ref, "draft", 3)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrVersionConflict)
}

func TestStore_CloseWithoutOwnedPool(t *testing.T) {
	db := newFakeDB()
	s, err := NewFromDB(db)
	require.NoError(t, err)

	assert.NotPanics(t, s.Close)
	assert.NotPanics(t, s.Close)

	require.NoError(t, s.WriteMarking(context.Background(), ref, "draft"), "Close must leave a caller-owned DB usable")
}
