package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{name: "validation", err: NewValidationError("bad date"), want: http.StatusBadRequest},
		{name: "credentials", err: NewInvalidCredentialsError(), want: http.StatusUnauthorized},
		{name: "permissions", err: NewInsufficientPermissionsError("approve doctors"), want: http.StatusForbidden},
		{name: "missing plan", err: NewDietPlanNotFoundError("p1"), want: http.StatusNotFound},
		{name: "role taken", err: NewRoleAlreadySelectedError(), want: http.StatusConflict},
		{name: "rate limited", err: NewTooManyRequestsError(""), want: http.StatusTooManyRequests},
		{name: "ai down", err: NewAIUnavailableError("try later", nil), want: http.StatusServiceUnavailable},
		{name: "database", err: NewDatabaseError("save", stderrors.New("boom")), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestWrapAndMatch(t *testing.T) {
	// Arrange
	cause := stderrors.New("disk full")
	inner := NewDatabaseError("save appointment", cause)
	wrapped := fmt.Errorf("booking: %w", inner)

	// Act
	kept := Wrap(wrapped, "ignored")
	generic := Wrap(cause, "Something broke")

	// Assert
	assert.Same(t, inner, kept)
	assert.True(t, Is(wrapped, CodeDatabaseError))
	assert.False(t, Is(cause, CodeDatabaseError))
	assert.True(t, stderrors.Is(kept, cause))

	require.NotNil(t, generic)
	assert.Equal(t, CodeInternal, generic.Code)
	assert.Equal(t, "Something broke", generic.Message)
	assert.Nil(t, Wrap(nil, "nothing"))

	_, ok := As(cause)
	assert.False(t, ok)
}
