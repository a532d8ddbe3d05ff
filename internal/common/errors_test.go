package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{NewAppError("VALIDATION_ERROR", "bad", ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", ErrInvalidInput), http.StatusBadRequest},
		{ErrNotFound, http.StatusNotFound},
		{WrapError(ErrUnavailable, "llm"), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "err=%v", tt.err)
	}
}

func TestAppErrorFormatting(t *testing.T) {
	err := NewAppError("CONFIG_ERROR", "missing key", ErrInvalidInput)
	assert.Equal(t, "CONFIG_ERROR: missing key: invalid input", err.Error())
	assert.Equal(t, "X: y", NewAppError("X", "y", nil).Error())
	assert.Nil(t, WrapError(nil, "ignored"))
}
