package recgen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recgen/recgen/dialect"
)

type fakeIntrospection struct {
	name  string
	attrs []Attribute
}

func (f *fakeIntrospection) Name() string               { return f.name }
func (f *fakeIntrospection) Table() string              { return f.name + "s" }
func (f *fakeIntrospection) Category() string           { return "" }
func (f *fakeIntrospection) AttributeNames() []string {
	names := make([]string, len(f.attrs))
	for i, at := range f.attrs {
		names[i] = at.Name
	}
	return names
}
func (f *fakeIntrospection) Attributes() []Attribute         { return f.attrs }
func (f *fakeIntrospection) BackReferences() []BackReference { return nil }
func (f *fakeIntrospection) Load(context.Context, dialect.ExecQuerier, int64) (Record, error) {
	return nil, NewNotFoundError(f.name)
}
func (f *fakeIntrospection) LoadMany(context.Context, dialect.ExecQuerier, int64, int64) ([]Record, error) {
	return nil, nil
}
func (f *fakeIntrospection) Count(context.Context, dialect.ExecQuerier) (int64, error) {
	return 0, nil
}
func (f *fakeIntrospection) NewFactory() Factory { return nil }
func (f *fakeIntrospection) GetReferencing(context.Context, dialect.ExecQuerier, int64, string, string) ([]Record, error) {
	return nil, NewNotFoundError(f.name)
}
func (f *fakeIntrospection) GetRelated(context.Context, dialect.ExecQuerier, int64, string, string, string) ([]Record, error) {
	return nil, NewNotFoundError(f.name)
}
func (f *fakeIntrospection) Iterate(conn dialect.ExecQuerier, from, to int64) *Iterator {
	return NewIterator(conn, from, to, f.Load, func(context.Context, dialect.ExecQuerier, int64) (int64, bool, error) {
		return 0, false, nil
	})
}

func TestRegisterAndLookup(t *testing.T) {
	defer unregisterAll()
	unregisterAll()

	Register(&fakeIntrospection{name: "Song"})
	Register(&fakeIntrospection{name: "Album"})

	in, ok := Lookup("Song")
	require.True(t, ok)
	assert.Equal(t, "Songs", in.Table())

	_, ok = Lookup("Missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"Album", "Song"}, Types())
}

func TestRegisterPanics(t *testing.T) {
	defer unregisterAll()
	unregisterAll()

	assert.Panics(t, func() { Register(nil) })

	Register(&fakeIntrospection{name: "Song"})
	assert.Panics(t, func() { Register(&fakeIntrospection{name: "Song"}) })
}

func TestRegisterValidator(t *testing.T) {
	defer func() {
		validatorsMu.Lock()
		validators = make(map[string]Validator)
		validatorsMu.Unlock()
	}()

	assert.Panics(t, func() { RegisterValidator("v", nil) })

	called := false
	RegisterValidator("v", func(Record) error {
		called = true
		return nil
	})
	assert.Panics(t, func() { RegisterValidator("v", func(Record) error { return nil }) })

	v, ok := LookupValidator("v")
	require.True(t, ok)
	require.NoError(t, v(nil))
	assert.True(t, called)
}

func TestValidateUnregisteredName(t *testing.T) {
	err := Validate("no-such-validator", &fakeRecord{id: 1})
	assert.True(t, IsValidation(err))
}
