package shared

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	wrapped := ErrNotFound.WithMessage("Opportunity 7 not found")

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrInvalidInput))
	assert.Equal(t, "Opportunity 7 not found", wrapped.Error())
}

func TestDomainError_WrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := fmt.Errorf("allocate: %w", ErrAllocation.Wrap(cause))

	assert.True(t, errors.Is(err, ErrAllocation))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection refused")

	var domainErr *DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, CodeAllocationFailed, domainErr.Code)
}

func TestAsTimeout(t *testing.T) {
	t.Run("maps deadline exceeded", func(t *testing.T) {
		err := AsTimeout(fmt.Errorf("query: %w", context.DeadlineExceeded))
		assert.True(t, errors.Is(err, ErrTimeout))
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})

	t.Run("passes other errors through", func(t *testing.T) {
		other := errors.New("boom")
		assert.Same(t, other, AsTimeout(other))
	})

	t.Run("does not wrap twice", func(t *testing.T) {
		once := AsTimeout(context.DeadlineExceeded)
		assert.Same(t, once, AsTimeout(once))
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, AsTimeout(nil))
	})
}
