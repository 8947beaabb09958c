package recgen

import (
	"context"

	"github.com/recgen/recgen/dialect"
)

// LoadFunc loads the instance with the given identifier. Generated
// code supplies one per record type.
type LoadFunc func(ctx context.Context, conn dialect.ExecQuerier, id int64) (Record, error)

// NextIDFunc returns the smallest existing identifier strictly greater
// than after, or ok=false when none exists.
type NextIDFunc func(ctx context.Context, conn dialect.ExecQuerier, after int64) (int64, bool, error)

// Iterator is a lazy, single-pass, forward-only sequence over the
// instances of one record type within an inclusive identifier range.
// One instance is loaded per step. The iterator owns conn exclusively
// for its lifetime and must not be shared between goroutines.
//
// Usage follows the bufio.Scanner shape:
//
//	it := model.AuthorType().Iterate(conn, 1, 100)
//	for it.Next(ctx) {
//	    r := it.Record()
//	    ...
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator struct {
	conn   dialect.ExecQuerier
	pos    int64 // next identifier to attempt
	last   int64 // inclusive upper bound
	load   LoadFunc
	nextID NextIDFunc
	cur    Record
	err    error
	done   bool
}

// NewIterator assembles an iterator from the per-type load and
// next-identifier functions. Called by generated code; generic
// consumers obtain iterators through Introspection.Iterate.
func NewIterator(conn dialect.ExecQuerier, from, to int64, load LoadFunc, nextID NextIDFunc) *Iterator {
	return &Iterator{conn: conn, pos: from, last: to, load: load, nextID: nextID}
}

// Next advances to the next existing instance in the range. When the
// identifier at the current position is missing (for example deleted
// mid-iteration), it re-queries the store for the smallest existing
// identifier strictly greater than the position and resumes there; if
// none remains within range, iteration ends without error.
func (it *Iterator) Next(ctx context.Context) bool {
	if it.done || it.err != nil {
		return false
	}
	for it.pos <= it.last {
		r, err := it.load(ctx, it.conn, it.pos)
		if err == nil {
			it.cur = r
			it.pos++
			return true
		}
		if !IsNotFound(err) {
			it.err = err
			return false
		}
		id, ok, err := it.nextID(ctx, it.conn, it.pos)
		if err != nil {
			it.err = err
			return false
		}
		if !ok || id > it.last {
			break
		}
		it.pos = id
	}
	it.done = true
	it.cur = nil
	return false
}

// Record returns the instance loaded by the last successful Next.
func (it *Iterator) Record() Record {
	return it.cur
}

// Err returns the first error encountered during iteration, if any.
// A range that simply ran out of instances reports no error.
func (it *Iterator) Err() error {
	return it.err
}
