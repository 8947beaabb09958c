package recgen

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recgen/recgen/dialect"
)

type fakeRecord struct {
	id int64
}

func (r *fakeRecord) TypeName() string         { return "Fake" }
func (r *fakeRecord) ID() int64                { return r.id }
func (r *fakeRecord) Version() int64           { return 0 }
func (r *fakeRecord) Get(string) (string, error) { return "", nil }
func (r *fakeRecord) Set(context.Context, dialect.ExecQuerier, string, string) error {
	return nil
}
func (r *fakeRecord) Delete(context.Context, dialect.ExecQuerier) error { return nil }

// fakeStore backs an iterator with an in-memory identifier set.
type fakeStore struct {
	ids   map[int64]bool
	loads int
}

func (s *fakeStore) load(_ context.Context, _ dialect.ExecQuerier, id int64) (Record, error) {
	s.loads++
	if !s.ids[id] {
		return nil, NewNotFoundErrorWithID("Fake", id)
	}
	return &fakeRecord{id: id}, nil
}

func (s *fakeStore) nextID(_ context.Context, _ dialect.ExecQuerier, after int64) (int64, bool, error) {
	var sorted []int64
	for id := range s.ids {
		if id > after {
			sorted = append(sorted, id)
		}
	}
	if len(sorted) == 0 {
		return 0, false, nil
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted[0], true, nil
}

func collect(t *testing.T, it *Iterator) []int64 {
	t.Helper()
	var ids []int64
	for it.Next(context.Background()) {
		ids = append(ids, it.Record().ID())
	}
	require.NoError(t, it.Err())
	return ids
}

func TestIteratorDense(t *testing.T) {
	t.Parallel()
	s := &fakeStore{ids: map[int64]bool{1: true, 2: true, 3: true}}
	it := NewIterator(nil, 1, 3, s.load, s.nextID)
	assert.Equal(t, []int64{1, 2, 3}, collect(t, it))
}

func TestIteratorSkipsGaps(t *testing.T) {
	t.Parallel()
	s := &fakeStore{ids: map[int64]bool{1: true, 2: true, 4: true, 5: true}}
	it := NewIterator(nil, 1, 5, s.load, s.nextID)
	assert.Equal(t, []int64{1, 2, 4, 5}, collect(t, it))
}

func TestIteratorObservesConcurrentDeletion(t *testing.T) {
	t.Parallel()
	s := &fakeStore{ids: map[int64]bool{1: true, 2: true, 3: true, 4: true, 5: true}}
	it := NewIterator(nil, 1, 5, s.load, s.nextID)
	ctx := context.Background()

	require.True(t, it.Next(ctx))
	assert.Equal(t, int64(1), it.Record().ID())
	// Deleted between steps; the iterator re-queries and resumes at 3.
	delete(s.ids, 2)
	require.True(t, it.Next(ctx))
	assert.Equal(t, int64(3), it.Record().ID())
	require.True(t, it.Next(ctx))
	assert.Equal(t, int64(4), it.Record().ID())
}

func TestIteratorStopsAtUpperBound(t *testing.T) {
	t.Parallel()
	s := &fakeStore{ids: map[int64]bool{1: true, 9: true}}
	it := NewIterator(nil, 1, 5, s.load, s.nextID)
	assert.Equal(t, []int64{1}, collect(t, it))
}

func TestIteratorEmptyRange(t *testing.T) {
	t.Parallel()
	s := &fakeStore{ids: map[int64]bool{}}
	it := NewIterator(nil, 1, 100, s.load, s.nextID)
	assert.Empty(t, collect(t, it))
	// One load attempt, one next-identifier query, no scan of the whole range.
	assert.Equal(t, 1, s.loads)
}

func TestIteratorLoadOnePerStep(t *testing.T) {
	t.Parallel()
	s := &fakeStore{ids: map[int64]bool{1: true, 2: true, 3: true}}
	it := NewIterator(nil, 1, 3, s.load, s.nextID)
	require.True(t, it.Next(context.Background()))
	assert.Equal(t, 1, s.loads)
}

func TestIteratorPropagatesErrors(t *testing.T) {
	t.Parallel()
	boom := errors.New("store offline")
	load := func(context.Context, dialect.ExecQuerier, int64) (Record, error) {
		return nil, boom
	}
	next := func(context.Context, dialect.ExecQuerier, int64) (int64, bool, error) {
		return 0, false, nil
	}
	it := NewIterator(nil, 1, 3, load, next)
	assert.False(t, it.Next(context.Background()))
	assert.ErrorIs(t, it.Err(), boom)
	// The iterator stays stopped.
	assert.False(t, it.Next(context.Background()))
}
