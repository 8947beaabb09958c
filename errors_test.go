package recgen

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError(t *testing.T) {
	t.Parallel()
	err := NewNotFoundError("Book")
	assert.EqualError(t, err, "recgen: Book not found")
	assert.True(t, IsNotFound(err))
	assert.ErrorIs(t, err, ErrNotFound)

	withID := NewNotFoundErrorWithID("Book", int64(7))
	assert.EqualError(t, withID, "recgen: Book not found (id=7)")
	assert.Equal(t, "Book", withID.Label())
	assert.Equal(t, int64(7), withID.ID())

	// Wrapped errors still match.
	wrapped := fmt.Errorf("loading: %w", withID)
	assert.True(t, IsNotFound(wrapped))

	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(errors.New("other")))
}

func TestAttributeErrors(t *testing.T) {
	t.Parallel()
	unknown := NewUnknownAttributeError("Book", "ghost")
	assert.EqualError(t, unknown, `recgen: unknown attribute "ghost" on Book`)
	assert.True(t, IsUnknownAttribute(unknown))
	assert.False(t, IsUnknownAttribute(NewNotFoundError("Book")))

	immutable := NewImmutableAttributeError("Book", "isbn")
	assert.EqualError(t, immutable, `recgen: attribute "isbn" on Book is not mutable`)
	assert.True(t, IsImmutableAttribute(immutable))

	missing := NewMissingMandatoryError("Book", "title")
	assert.EqualError(t, missing, `recgen: mandatory attribute "title" on Book not set`)
	assert.True(t, IsMissingMandatory(missing))
}

func TestParseErrorUnwraps(t *testing.T) {
	t.Parallel()
	err := NewParseError("(5", ErrMissingCloseParen)
	assert.True(t, IsParseError(err))
	assert.ErrorIs(t, err, ErrMissingCloseParen)
	assert.Contains(t, err.Error(), `"(5"`)
}

func TestValidationError(t *testing.T) {
	t.Parallel()
	cause := errors.New("pages must be positive")
	err := NewValidationError("Book", cause)
	assert.True(t, IsValidation(err))
	assert.ErrorIs(t, err, cause)
}

func TestMutationError(t *testing.T) {
	t.Parallel()
	cause := errors.New("disk full")
	err := NewMutationError("Book", "create", cause)
	assert.EqualError(t, err, "recgen: create Book: disk full")
	assert.True(t, IsMutationError(err))
	assert.ErrorIs(t, err, cause)
}
