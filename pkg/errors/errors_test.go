package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("loading inverted.brix: %w", ErrMissingIndex), http.StatusNotFound},
		{ErrInvalidInput, http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", ErrLocked), http.StatusConflict},
		{ErrCorruptSnapshot, http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
		{Newf(ErrInvalidInput, http.StatusRequestEntityTooLarge, "query longer than %d", 10), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatusCode(tt.err), tt.err.Error())
	}
}

func TestAppError_Unwrap(t *testing.T) {
	err := New(ErrMalformedQuery, http.StatusBadRequest, "empty query")
	assert.True(t, Is(err, ErrMalformedQuery))
	assert.Equal(t, "malformed query: empty query", err.Error())
}
