package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recgen/recgen/compiler/gen"
	"github.com/recgen/recgen/compiler/load"
	"github.com/recgen/recgen/dialect"
)

const bookstoreDoc = `
records:
  - name: Author
    table: authors
    category: catalog
    attributes:
      - {name: name, type: string}
      - {name: email, type: string, optional: true, mutable: true, unique: true}
      - {name: api_token, type: string, mutable: true, secret: true}
  - name: Book
    table: books
    category: catalog
    validator: "pages > 0"
    attributes:
      - {name: title, type: string, mutable: true}
      - {name: isbn, type: string, unique: true}
      - {name: pages, type: integer, mutable: true}
      - {name: publisher, type: reference, ref: Publisher, optional: true, mutable: true}
  - name: Publisher
    attributes:
      - {name: name, type: string}
  - name: Authorship
    table: authorships
    category: relations
    attributes:
      - {name: book, type: reference, ref: Book}
      - {name: author, type: reference, ref: Author}
`

func emitBookstore(t *testing.T) map[string]string {
	t.Helper()
	s, err := load.Parse([]byte(bookstoreDoc))
	require.NoError(t, err)
	g, err := gen.NewGraph(gen.Config{Package: "model", Target: t.TempDir()}, s)
	require.NoError(t, err)
	files, err := NewEmitter().Emit(g)
	require.NoError(t, err)
	out := make(map[string]string, len(files))
	for _, f := range files {
		out[f.Name] = string(f.Content)
	}
	return out
}

func TestEmitFiles(t *testing.T) {
	t.Parallel()
	out := emitBookstore(t)
	require.Len(t, out, 5)
	for _, name := range []string{"author.go", "book.go", "publisher.go", "authorship.go", "runtime.go"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out["book.go"], "Code generated by recgen. DO NOT EDIT.")
	assert.Contains(t, out["book.go"], "package model")
}

func TestEmitEntitySurface(t *testing.T) {
	t.Parallel()
	out := emitBookstore(t)
	book := out["book.go"]

	assert.Contains(t, book, "type BookID int64")
	assert.Contains(t, book, "type Book struct")
	assert.Contains(t, book, "func CreateBook(ctx context.Context, conn dialect.ExecQuerier, title string, isbn string, pages int64, publisherID *int64) (*Book, error)")
	assert.Contains(t, book, "func CreateBooks(ctx context.Context, conn dialect.ExecQuerier, inputs []BookInput) error")
	assert.Contains(t, book, "func LoadBook(ctx context.Context, conn dialect.ExecQuerier, id int64) (*Book, error)")
	assert.Contains(t, book, "func LoadBookByID(ctx context.Context, conn dialect.ExecQuerier, id BookID) (*Book, error)")
	assert.Contains(t, book, "func LoadBookByIsbn(ctx context.Context, conn dialect.ExecQuerier, v string) (*Book, error)")
	assert.Contains(t, book, `"INSERT INTO books (title, isbn, pages, publisher_id, version) VALUES (?, ?, ?, ?, 0)"`)
	assert.Contains(t, book, "UPDATE books SET title = ?, version = version + 1 WHERE id = ? AND version = ?")
	assert.Contains(t, book, `recgen.Validate("Book", r)`)

	// The join record gets the content loader, plain entities do not.
	join := out["authorship.go"]
	assert.Contains(t, join, "func LoadAuthorshipsByContent(ctx context.Context, conn dialect.ExecQuerier, bookID int64, authorID int64) ([]*Authorship, error)")
	assert.NotContains(t, book, "ByContent")
}

func TestEmitSecretExclusion(t *testing.T) {
	t.Parallel()
	out := emitBookstore(t)
	author := out["author.go"]

	// Dedicated accessors exist.
	assert.Contains(t, author, "func (m *Author) APIToken() string")
	assert.Contains(t, author, "func (m *Author) SetAPIToken(")

	// The generic surface does not know the attribute.
	assert.NotContains(t, author, `case "api_token":`)
	assert.NotContains(t, author, `{Kind: recgen.KindString, Mutable: true, Name: "api_token"}`)
	assert.Contains(t, author, `[]string{"name", "email"}`)
}

func TestEmitReceiverNeverShadowsLocals(t *testing.T) {
	t.Parallel()
	// Record names starting with the letters of generated locals
	// (v in setters, n in row counts) must still compile: the
	// receiver is fixed to m.
	s, err := load.Parse([]byte(`
records:
  - name: Note
    attributes:
      - {name: body, type: string, mutable: true}
  - name: Vendor
    attributes:
      - {name: name, type: string, mutable: true}
`))
	require.NoError(t, err)
	g, err := gen.NewGraph(gen.Config{Package: "model", Target: t.TempDir()}, s)
	require.NoError(t, err)
	files, err := NewEmitter().Emit(g)
	require.NoError(t, err)
	out := make(map[string]string, len(files))
	for _, f := range files {
		out[f.Name] = string(f.Content)
	}

	note, vendor := out["note.go"], out["vendor.go"]
	assert.Contains(t, note, "func (m *Note) SetBody(ctx context.Context, conn dialect.ExecQuerier, v string) error")
	assert.Contains(t, vendor, "func (m *Vendor) SetName(ctx context.Context, conn dialect.ExecQuerier, v string) error")
	assert.NotContains(t, note, "func (n *Note)")
	assert.NotContains(t, vendor, "func (v *Vendor)")
}

func TestEmitRelationAccessors(t *testing.T) {
	t.Parallel()
	out := emitBookstore(t)
	book := out["book.go"]

	assert.Contains(t, book, `refType == "Authorship" && refAttr == "book"`)
	assert.Contains(t, book, `related == "Author" && relation == "Authorship" && refAttr == "book"`)
	assert.Contains(t, book, "JOIN authorships j ON j.author_id = r.id WHERE j.book_id = ? ORDER BY r.id")

	// Publisher is referenced directly, not through a join.
	pub := out["publisher.go"]
	assert.Contains(t, pub, `refType == "Book" && refAttr == "publisher"`)
	assert.NotContains(t, pub, "related ==")
}

func TestEmitRuntime(t *testing.T) {
	t.Parallel()
	out := emitBookstore(t)
	rt := out["runtime.go"]
	assert.Contains(t, rt, "recgen.Register(AuthorType())")
	assert.Contains(t, rt, "recgen.Register(AuthorshipType())")
	assert.Contains(t, rt, `recgen.RegisterValidator("Book", recgen.MustExprValidator("pages > 0"))`)
	assert.NotContains(t, rt, `RegisterValidator("Author"`)
}

func TestDDLSQLite(t *testing.T) {
	t.Parallel()
	s, err := load.Parse([]byte(bookstoreDoc))
	require.NoError(t, err)
	g, err := gen.NewGraph(gen.Config{Package: "model", Target: t.TempDir()}, s)
	require.NoError(t, err)

	files, err := NewDDL(dialect.SQLite).Emit(g)
	require.NoError(t, err)
	require.Len(t, files, 1)
	ddl := string(files[0].Content)

	assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS books (")
	assert.Contains(t, ddl, "id INTEGER PRIMARY KEY AUTOINCREMENT")
	assert.Contains(t, ddl, "title TEXT NOT NULL")
	assert.Contains(t, ddl, "publisher_id INTEGER REFERENCES publishers (id)")
	assert.NotContains(t, ddl, "publisher_id INTEGER NOT NULL")
	assert.Contains(t, ddl, "version INTEGER NOT NULL")
	assert.Contains(t, ddl, "CREATE UNIQUE INDEX IF NOT EXISTS books_isbn_idx ON books (isbn);")
	assert.Contains(t, ddl, "CREATE UNIQUE INDEX IF NOT EXISTS authors_email_idx ON authors (email);")
}

func TestDDLPostgres(t *testing.T) {
	t.Parallel()
	s, err := load.Parse([]byte(bookstoreDoc))
	require.NoError(t, err)
	g, err := gen.NewGraph(gen.Config{Package: "model", Target: t.TempDir()}, s)
	require.NoError(t, err)

	files, err := NewDDL(dialect.Postgres).Emit(g)
	require.NoError(t, err)
	ddl := string(files[0].Content)
	assert.Contains(t, ddl, "id BIGSERIAL PRIMARY KEY")
	assert.Contains(t, ddl, "pages BIGINT NOT NULL")
}

func TestDDLUnknownDialect(t *testing.T) {
	t.Parallel()
	s, err := load.Parse([]byte(bookstoreDoc))
	require.NoError(t, err)
	g, err := gen.NewGraph(gen.Config{Package: "model", Target: t.TempDir()}, s)
	require.NoError(t, err)
	_, err = NewDDL("oracle").Emit(g)
	require.Error(t, err)
}
