package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Defaults(t *testing.T) {
	e := New("email_exists", "email already registered")

	assert.Equal(t, "email already registered", e.Error())
	assert.Equal(t, "email_exists", e.Code())
	assert.Equal(t, http.StatusInternalServerError, e.HTTPStatus())
	assert.Nil(t, e.Debug())
}

func TestError_SetDebugAndStatus(t *testing.T) {
	cause := errors.New("disk full")
	e := New("x", "failed").SetDebug(cause).SetHTTPStatus(http.StatusConflict)

	assert.Equal(t, http.StatusConflict, e.HTTPStatus())
	assert.Equal(t, cause, e.Debug())
	assert.True(t, errors.Is(e, cause))
	assert.Equal(t, "failed", e.Error())
}

func TestAs_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("signin: %w", Unauthorized("bad token"))

	ae, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeUnauthorized, ae.Code())
	assert.True(t, HasCode(wrapped, CodeUnauthorized))
	assert.False(t, HasCode(wrapped, CodeNotFound))

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		err    *Error
		code   string
		status int
	}{
		{Internal(errors.New("x")), CodeInternal, http.StatusInternalServerError},
		{NotFound("missing"), CodeNotFound, http.StatusNotFound},
		{InvalidInput("bad"), CodeInvalidInput, http.StatusBadRequest},
		{Unauthorized("who"), CodeUnauthorized, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code())
			assert.Equal(t, tt.status, tt.err.HTTPStatus())
		})
	}
}
