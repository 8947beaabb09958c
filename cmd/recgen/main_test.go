package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitStatements(t *testing.T) {
	t.Parallel()
	script := `-- Schema for dialect sqlite. Generated by recgen.

CREATE TABLE books (
    id INTEGER PRIMARY KEY AUTOINCREMENT
);

CREATE UNIQUE INDEX IF NOT EXISTS books_isbn_idx ON books (isbn);
`
	stmts := splitStatements(script)
	assert.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "CREATE TABLE books")
	assert.Contains(t, stmts[1], "CREATE UNIQUE INDEX")

	assert.Empty(t, splitStatements(""))
	assert.Empty(t, splitStatements("-- comment only"))
}
