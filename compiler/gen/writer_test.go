package gen

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recgen/recgen/compiler/load"
)

func TestWrite(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	files := []File{
		{Name: "book.go", Content: []byte("package model\n")},
		{Name: "schema.sql", Content: []byte("CREATE TABLE books;\n")},
		{Name: "doc/catalog.md", Content: []byte("# Catalog\n")},
	}
	require.NoError(t, Write(context.Background(), dir, files))

	got, err := os.ReadFile(filepath.Join(dir, "book.go"))
	require.NoError(t, err)
	assert.Equal(t, "package model\n", string(got))
	got, err = os.ReadFile(filepath.Join(dir, "doc", "catalog.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Catalog\n", string(got))
}

func TestWriteMissingTarget(t *testing.T) {
	t.Parallel()
	err := Write(context.Background(), filepath.Join(t.TempDir(), "absent"), nil)
	require.Error(t, err)
	assert.True(t, IsTargetError(err))
}

func TestWriteTargetNotDirectory(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	err := Write(context.Background(), path, nil)
	require.Error(t, err)
	assert.True(t, IsTargetError(err))
}

func TestGenerateAbortsOnEmitterError(t *testing.T) {
	t.Parallel()
	s, err := load.Parse([]byte(`
records:
  - name: Book
    attributes: [{name: title, type: string}]
`))
	require.NoError(t, err)
	dir := t.TempDir()
	g, err := NewGraph(Config{Package: "model", Target: dir}, s)
	require.NoError(t, err)

	ok := EmitterFunc(func(*Graph) ([]File, error) {
		return []File{{Name: "ok.go", Content: []byte("package model\n")}}, nil
	})
	bad := EmitterFunc(func(*Graph) ([]File, error) {
		return nil, NewWriteError("bad.go", os.ErrPermission)
	})
	err = Generate(context.Background(), g, ok, bad)
	require.Error(t, err)
	assert.True(t, IsWriteError(err))

	// Emission failed, so nothing was written at all.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
