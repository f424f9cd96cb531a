package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewDomainError(ErrCodeValidation, "question is required"),
			expected: "[VALIDATION_ERROR] question is required",
		},
		{
			name:     "with cause",
			err:      NewDomainErrorWithCause(ErrCodeUpstream, "model call failed", errors.New("connection refused")),
			expected: "[UPSTREAM_ERROR] model call failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewDomainErrorWithCause(ErrCodeInternalError, "internal failure", cause)

	assert.ErrorIs(t, err, cause)
}

func TestDomainError_IsMatchesSentinel(t *testing.T) {
	err := NewDomainErrorWithCause(ErrCodeMalformedModel, ErrMalformedOutput.Message, errors.New("bad yaml"))
	wrapped := fmt.Errorf("parse: %w", err)

	assert.ErrorIs(t, wrapped, ErrMalformedOutput)
	assert.NotErrorIs(t, wrapped, ErrModelUnavailable)
}

func TestErrQuestionTooLong_MentionsLimit(t *testing.T) {
	assert.Contains(t, ErrQuestionTooLong.Error(), "1000")
}
