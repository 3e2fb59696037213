package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gartstein/staffboard/internal/board/models"
	"github.com/stretchr/testify/assert"
)

func TestTypedErrorsUnwrap(t *testing.T) {
	var err error = &CapacityError{Zone: models.ZoneReception, Capacity: 2}
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Contains(t, err.Error(), "reception holds at most 2")

	var capErr *CapacityError
	wrapped := fmt.Errorf("assign: %w", err)
	assert.True(t, errors.As(wrapped, &capErr))
	assert.Equal(t, 2, capErr.Capacity)

	err = &EligibilityError{Role: models.RoleCleaner, Zone: models.ZoneArchives}
	assert.ErrorIs(t, err, ErrRoleIneligible)
	assert.NotErrorIs(t, err, ErrCapacityExceeded)
	assert.Contains(t, err.Error(), "cleaner cannot be placed in archives")
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"Name":  "is required",
		"Email": "must be a valid email",
	}}
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "invalid employee data: Email: must be a valid email; Name: is required", err.Error())
}
