package errors

import (
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorKeepsTypedError(t *testing.T) {
	err := Clone(ErrCapacityExceeded, "Tahfiz is full")
	got := FromError(err)
	require.NotNil(t, got)
	assert.Equal(t, http.StatusConflict, got.Status)
	assert.Equal(t, "Tahfiz is full", got.Message)
}

func TestFromErrorHidesUnknownCause(t *testing.T) {
	got := FromError(sql.ErrConnDone)
	require.NotNil(t, got)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, ErrInternal.Message, got.Message)
	assert.ErrorIs(t, got, sql.ErrConnDone)
}

func TestCloneMatchesOriginal(t *testing.T) {
	err := Clone(ErrNotFound, "student not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestWithDetails(t *testing.T) {
	details := []FieldError{{Field: "phone", Message: "must be a valid phone number"}}
	err := WithDetails(ErrValidation, details)
	assert.Equal(t, details, err.Details)
	assert.Nil(t, ErrValidation.Details)
}
