package load

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recgen/recgen/schema"
)

func TestParseFile(t *testing.T) {
	t.Parallel()
	s, err := ParseFile("testdata/bookstore.yaml")
	require.NoError(t, err)
	require.NoError(t, Validate(s))
	require.Len(t, s.Records, 4)

	book, ok := s.Record("Book")
	require.True(t, ok)
	assert.Equal(t, "books", book.Table)
	assert.Equal(t, "catalog", book.Category)
	assert.Equal(t, "pages > 0", book.Validator)

	pub, ok := book.Attribute("publisher")
	require.True(t, ok)
	assert.True(t, pub.IsReference())
	assert.Equal(t, "Publisher", pub.Ref)
	assert.True(t, pub.Optional)
	assert.True(t, pub.Mutable)

	token, ok := s.Records[0].Attribute("api_token")
	require.True(t, ok)
	assert.True(t, token.Secret)
}

func TestParseBackReferences(t *testing.T) {
	t.Parallel()
	s, err := ParseFile("testdata/bookstore.yaml")
	require.NoError(t, err)

	book, _ := s.Record("Book")
	assert.Equal(t, []schema.BackReference{
		{Record: "Authorship", Attribute: "book"},
	}, book.ReferencedBy)

	pub, _ := s.Record("Publisher")
	assert.Equal(t, []schema.BackReference{
		{Record: "Book", Attribute: "publisher"},
	}, pub.ReferencedBy)

	// Join records themselves are referenced by nothing.
	join, _ := s.Record("Authorship")
	assert.Empty(t, join.ReferencedBy)
}

func TestParseTwoReferencesSameTarget(t *testing.T) {
	t.Parallel()
	s, err := Parse([]byte(`
records:
  - name: City
    attributes:
      - name: name
        type: string
  - name: Route
    attributes:
      - name: origin
        type: reference
        ref: City
      - name: destination
        type: reference
        ref: City
`))
	require.NoError(t, err)
	require.NoError(t, Validate(s))

	city, _ := s.Record("City")
	assert.Equal(t, []schema.BackReference{
		{Record: "Route", Attribute: "destination"},
		{Record: "Route", Attribute: "origin"},
	}, city.ReferencedBy)
}

func TestValidateErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "dangling reference",
			doc: `
records:
  - name: Book
    attributes:
      - name: publisher
        type: reference
        ref: Publisher
`,
			want: `record "Book" attribute "publisher" references unknown record "Publisher"`,
		},
		{
			name: "duplicate record",
			doc: `
records:
  - name: Book
    attributes: [{name: title, type: string}]
  - name: Book
    attributes: [{name: title, type: string}]
`,
			want: `duplicate record "Book"`,
		},
		{
			name: "duplicate attribute",
			doc: `
records:
  - name: Book
    attributes:
      - {name: title, type: string}
      - {name: title, type: string}
`,
			want: `record "Book" has duplicate attribute "title"`,
		},
		{
			name: "unknown type",
			doc: `
records:
  - name: Book
    attributes: [{name: price, type: float}]
`,
			want: `record "Book" attribute "price" has unknown type "float"`,
		},
		{
			name: "secret reference",
			doc: `
records:
  - name: Spy
    attributes:
      - {name: handler, type: reference, ref: Spy, secret: true}
`,
			want: `record "Spy" attribute "handler" is a reference and cannot be secret`,
		},
		{
			name: "reference without target",
			doc: `
records:
  - name: Book
    attributes: [{name: publisher, type: reference}]
`,
			want: `record "Book" attribute "publisher" is a reference without a target`,
		},
		{
			name: "shadowed builtin",
			doc: `
records:
  - name: Book
    attributes: [{name: id, type: integer}]
`,
			want: `record "Book" attribute "id" shadows a builtin column`,
		},
		{
			name: "self join",
			doc: `
records:
  - name: Friendship
    attributes:
      - {name: a, type: reference, ref: Friendship}
      - {name: b, type: reference, ref: Friendship}
`,
			want: `record "Friendship" joins "Friendship" to itself`,
		},
		{
			name: "shared table",
			doc: `
records:
  - name: Book
    table: items
    attributes: [{name: title, type: string}]
  - name: Pen
    table: items
    attributes: [{name: color, type: string}]
`,
			want: `records "Book" and "Pen" share table "items"`,
		},
		{
			// The default table name counts too: an undeclared
			// table collides with a matching declared one.
			name: "shared table via default name",
			doc: `
records:
  - name: Item
    attributes: [{name: title, type: string}]
  - name: Thing
    table: items
    attributes: [{name: color, type: string}]
`,
			want: `records "Item" and "Thing" share table "items"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s, err := Parse([]byte(tt.doc))
			require.NoError(t, err)
			err = Validate(s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestJoinTargets(t *testing.T) {
	t.Parallel()
	s, err := ParseFile("testdata/bookstore.yaml")
	require.NoError(t, err)

	join, _ := s.Record("Authorship")
	targets, ok := JoinTargets(join)
	require.True(t, ok)
	assert.Equal(t, [2]string{"Book", "Author"}, targets)

	// Not a join: wrong attribute count.
	book, _ := s.Record("Book")
	_, ok = JoinTargets(book)
	assert.False(t, ok)

	// Not a join: optional reference disqualifies.
	s2, err := Parse([]byte(`
records:
  - name: A
    attributes: [{name: x, type: string}]
  - name: B
    attributes: [{name: y, type: string}]
  - name: Link
    attributes:
      - {name: a, type: reference, ref: A, optional: true}
      - {name: b, type: reference, ref: B}
`))
	require.NoError(t, err)
	link, _ := s2.Record("Link")
	_, ok = JoinTargets(link)
	assert.False(t, ok)

	// Not a join: mutable reference disqualifies.
	s3, err := Parse([]byte(`
records:
  - name: A
    attributes: [{name: x, type: string}]
  - name: B
    attributes: [{name: y, type: string}]
  - name: Link
    attributes:
      - {name: a, type: reference, ref: A, mutable: true}
      - {name: b, type: reference, ref: B}
`))
	require.NoError(t, err)
	link3, _ := s3.Record("Link")
	_, ok = JoinTargets(link3)
	assert.False(t, ok)
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()
	_, err := Parse([]byte("records: {not: a list}"))
	require.Error(t, err)
}
