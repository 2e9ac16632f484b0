package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFound_CoversAllResourceErrors(t *testing.T) {
	for _, err := range []error{ErrNotFound, ErrMailNotFound, ErrAttachmentNotFound, ErrUserNotFound} {
		assert.True(t, IsNotFound(err), err.Error())
	}
	assert.True(t, IsNotFound(fmt.Errorf("fetching: %w", ErrMailNotFound)))
	assert.False(t, IsNotFound(ErrDuplicateEntry))
	assert.False(t, IsNotFound(nil))
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrMailNotFound, CodeNotFound},
		{ErrDuplicateEntry, CodeDuplicateEntry},
		{ErrInvalidInput, CodeInvalidInput},
		{ErrUnauthorized, CodeUnauthorized},
		{ErrForbidden, CodeForbidden},
		{fmt.Errorf("something else"), CodeInternalError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetErrorCode(tt.err))
	}
}

func TestAppError_Unwrap(t *testing.T) {
	appErr := NewAppError(ErrUserNotFound, "no such account", CodeNotFound)
	assert.Equal(t, "no such account", appErr.Error())
	assert.True(t, IsNotFound(appErr))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))

	wrapped := Wrap(ErrNotFound, "loading mail")
	assert.True(t, IsNotFound(wrapped))
	assert.Contains(t, wrapped.Error(), "loading mail")
}
