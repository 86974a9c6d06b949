package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{fmt.Errorf("scan: %w", ErrItemNotFound), http.StatusNotFound},
		{ErrRestaurantNotFound, http.StatusNotFound},
		{Validation("name is required"), http.StatusBadRequest},
		{ErrAuthorization, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrConflict, http.StatusConflict},
		{fmt.Errorf("dial: %w", ErrConnectionTimeout), http.StatusGatewayTimeout},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{ErrConnectionFailure, http.StatusServiceUnavailable},
		{fmt.Errorf("%w: boom", ErrAllTiersFailed), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.err), "Status(%v)", tt.err)
	}
}

func TestValidationMessage(t *testing.T) {
	err := Validation("price must not be negative")
	assert.Equal(t, "price must not be negative", err.Error())
	assert.ErrorIs(t, err, ErrValidation)
	assert.False(t, IsNotFound(err))
	assert.True(t, IsNotFound(fmt.Errorf("x: %w", ErrItemNotFound)))
}
