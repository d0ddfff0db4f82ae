package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError_Creation(t *testing.T) {
	message := "order not found"
	err := NewNotFoundError(message)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
}

func TestNotFoundError_IsNotFoundError(t *testing.T) {
	err := NewNotFoundError("test not found")

	notFoundErr, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.NotNil(t, notFoundErr)
	assert.Equal(t, "test not found", notFoundErr.Message)
}

func TestNotFoundError_IsNotFoundError_Wrapped(t *testing.T) {
	err := fmt.Errorf("loading order: %w", NewNotFoundError("order not found"))

	notFoundErr, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.Equal(t, "order not found", notFoundErr.Message)
}

func TestNotFoundError_IsNotFoundError_WithOtherError(t *testing.T) {
	err := errors.New("some other error")

	notFoundErr, ok := IsNotFoundError(err)
	assert.False(t, ok)
	assert.Nil(t, notFoundErr)
}

func TestValidationError_Creation(t *testing.T) {
	message := "validation failed"
	details := []ValidationDetail{
		{Field: "email", Message: "invalid email"},
		{Field: "name", Message: "required field"},
	}

	err := NewValidationError(message, details...)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
	assert.Len(t, err.Details, 2)

	ve, ok := IsValidationError(err)
	assert.True(t, ok)
	assert.Equal(t, "email", ve.Details[0].Field)
}

func TestTypedErrors_Classification(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"conflict", NewConflictError("c"), func(e error) bool { _, ok := IsConflictError(e); return ok }},
		{"forbidden", NewForbiddenError("f"), func(e error) bool { _, ok := IsForbiddenError(e); return ok }},
		{"unauthorized", NewUnauthorizedError("u"), func(e error) bool { _, ok := IsUnauthorizedError(e); return ok }},
		{"deadlock", NewDeadlockError("d"), func(e error) bool { _, ok := IsDeadlockError(e); return ok }},
		{"rate limit", NewRateLimitError("r"), func(e error) bool { _, ok := IsRateLimitError(e); return ok }},
		{"stock", NewStockError(StockFailure{ProductID: "p1", Reason: ReasonOutOfStock}), func(e error) bool { _, ok := IsStockError(e); return ok }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			assert.True(t, tt.check(fmt.Errorf("wrapped: %w", tt.err)))
			assert.False(t, tt.check(errors.New("plain")))
		})
	}
}

func TestStockError_Message(t *testing.T) {
	single := NewStockError(StockFailure{ProductID: "p1", Requested: 3, Available: 1, Reason: ReasonInsufficientAvailable})
	assert.Equal(t, "product p1 cannot be reserved: INSUFFICIENT_AVAILABLE", single.Error())

	multi := NewStockError(
		StockFailure{ProductID: "p1", Reason: ReasonNotFound},
		StockFailure{ProductID: "p2", Reason: ReasonOutOfStock},
	)
	assert.Equal(t, "2 items cannot be reserved", multi.Error())
}

func TestInternalError_Creation(t *testing.T) {
	cause := errors.New("database error")
	err := NewInternalError("failed to query database", cause)

	assert.NotNil(t, err)
	assert.Equal(t, "failed to query database", err.Message)
	assert.Equal(t, cause, err.Cause)
	assert.Contains(t, err.Error(), "failed to query database")
	assert.Contains(t, err.Error(), "database error")
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewInternalError("wrapper", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestInternalError_NilCause(t *testing.T) {
	err := NewInternalError("no cause", nil)

	assert.Equal(t, "no cause", err.Error())
	assert.Nil(t, err.Unwrap())
}
