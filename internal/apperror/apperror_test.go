package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFound(t *testing.T) {
	err := NotFound("participant", "42")

	assert.Equal(t, "participant not found with id 42", err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
}

func TestConflict(t *testing.T) {
	err := Conflict("token", "red42")

	assert.Equal(t, "token conflict with id red42", err.Error())
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestWrappedStillMatches(t *testing.T) {
	wrapped := fmt.Errorf("claiming: %w", Conflict("token", "red42"))

	assert.True(t, errors.Is(wrapped, ErrConflict))

	var appErr *AppError
	assert.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, "token conflict with id red42", appErr.Message)
}
