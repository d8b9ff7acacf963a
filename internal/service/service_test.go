package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shiva/propdispatch/internal/repository"
)

func TestClassifyError(t *testing.T) {
	assert.NoError(t, classifyError(nil, ErrRequestNotFound))

	deadline := fmt.Errorf("assign: %w", context.DeadlineExceeded)
	assert.ErrorIs(t, classifyError(deadline, ErrRequestNotFound), ErrAssignTimeout)

	conflict := fmt.Errorf("assign: request 3: %w", repository.ErrNotPending)
	assert.ErrorIs(t, classifyError(conflict, ErrRequestNotFound), ErrAssignmentConflict)

	missing := fmt.Errorf("assign: provider 9: %w", repository.ErrNotFound)
	assert.ErrorIs(t, classifyError(missing, ErrProviderNotFound), ErrProviderNotFound)

	boom := errors.New("connection reset")
	got := classifyError(boom, ErrRequestNotFound)
	assert.ErrorIs(t, got, boom)
	assert.Contains(t, got.Error(), "storage:")
}

func TestClassifyError_CanceledIsNotTimeout(t *testing.T) {
	canceled := fmt.Errorf("assign: %w", context.Canceled)

	got := classifyError(canceled, ErrRequestNotFound)
	assert.NotErrorIs(t, got, ErrAssignTimeout)
	assert.ErrorIs(t, got, context.Canceled)
	assert.Contains(t, got.Error(), "storage:")
}
