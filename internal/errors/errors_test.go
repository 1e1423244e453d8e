package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorImplementsError(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "bad input")

	assert.Equal(t, "bad input", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", err.ErrorCode)
}

func TestErrorResponseEnvelope(t *testing.T) {
	resp := NewErrorResponse(ErrNoAnalyzableData)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/analyze", nil)
	require.NoError(t, render.Render(w, r, resp))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			ErrorCode string `json:"error_code"`
			Message   string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "NO_ANALYZABLE_DATA", body.Error.ErrorCode)
	assert.NotEmpty(t, body.Error.Message)
}

func TestErrValidationCarriesField(t *testing.T) {
	err := ErrValidation("domain", "must be one of the known domains")

	details, ok := err.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "domain", details.Field)
}

func TestAnalysisErrorWrapsCause(t *testing.T) {
	cause := errors.New("validator rejected every table")
	err := AnalysisError(cause)

	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.Equal(t, cause.Error(), err.Details)
}

func TestErrPanic(t *testing.T) {
	err := ErrPanic("boom")

	assert.Equal(t, http.StatusInternalServerError, err.StatusCode)
	assert.Equal(t, "boom", err.Details)
}
