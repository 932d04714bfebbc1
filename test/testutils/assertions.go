// Package testutils provides custom assertions and testing utilities
package testutils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	apperrors "github.com/ayurwell/portal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope is the API response body
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *EnvelopeError  `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

// EnvelopeError is the error part of the envelope
type EnvelopeError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details string                 `json:"details,omitempty"`
	Meta    map[string]interface{} `json:"metadata,omitempty"`
}

// DecodeEnvelope asserts the status code and decodes the response body
func DecodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, expectedStatus int) Envelope {
	t.Helper()

	require.Equal(t, expectedStatus, rec.Code, "unexpected status, body: %s", rec.Body.String())

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body is not an envelope: %s", rec.Body.String())
	return env
}

// DecodeData asserts a successful envelope and decodes its data into target
func DecodeData(t *testing.T, rec *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	t.Helper()

	env := DecodeEnvelope(t, rec, expectedStatus)
	require.True(t, env.Success, "expected success envelope, body: %s", rec.Body.String())
	if target != nil {
		require.NoError(t, json.Unmarshal(env.Data, target))
	}
}

// AssertErrorEnvelope asserts a failed envelope carrying code
func AssertErrorEnvelope(t *testing.T, rec *httptest.ResponseRecorder, expectedStatus int, code apperrors.ErrorCode) Envelope {
	t.Helper()

	env := DecodeEnvelope(t, rec, expectedStatus)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error, "expected an error object, body: %s", rec.Body.String())
	assert.Equal(t, string(code), env.Error.Code)
	return env
}

// AssertAppError asserts that err is an AppError with the given code
func AssertAppError(t *testing.T, err error, code apperrors.ErrorCode) *apperrors.AppError {
	t.Helper()

	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok, "expected *AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code, "message: %s", appErr.Message)
	return appErr
}
