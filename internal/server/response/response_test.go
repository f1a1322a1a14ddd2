package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/userdetails/pkg/errors"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestOK(t *testing.T) {
	w := httptest.NewRecorder()
	OK(w, map[string]string{"firstName": "Jane"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	resp := decode(t, w)
	assert.Nil(t, resp.Error)
	assert.Equal(t, map[string]any{"firstName": "Jane"}, resp.Data)
}

func TestOKNullData(t *testing.T) {
	w := httptest.NewRecorder()
	OK(w, nil)
	assert.JSONEq(t, `{"data":null,"error":null}`, w.Body.String())
}

func TestAccepted(t *testing.T) {
	w := httptest.NewRecorder()
	Accepted(w, map[string]string{"state": "Submitting"})
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestValidationFailed(t *testing.T) {
	w := httptest.NewRecorder()
	ValidationFailed(w, errors.ValidationErrors{
		errors.NewValidationError("email", errors.PatternMismatch, "x", "Invalid email format"),
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
	assert.Equal(t, map[string]string{"email": "Invalid email format"}, resp.Error.Fields)
}

func TestErrorFromType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		kind string
	}{
		{"validation errors", errors.ValidationErrors{errors.NewValidationError("dob", errors.Required, "", "DOB is required")}, http.StatusUnprocessableEntity, "VALIDATION_FAILED"},
		{"wrapped validation error", fmt.Errorf("submit: %w", errors.NewValidationError("dob", errors.Required, "", "DOB is required")), http.StatusUnprocessableEntity, "VALIDATION_FAILED"},
		{"not found", errors.NewNotFoundError("session", "abc"), http.StatusNotFound, "NOT_FOUND"},
		{"state conflict", errors.NewStateError("submit", "Submitting", errors.New("pending")), http.StatusConflict, "CONFLICT"},
		{"invalid input", fmt.Errorf("%w: unknown field", errors.ErrInvalidInput), http.StatusBadRequest, "BAD_REQUEST"},
		{"body too large", fmt.Errorf("decode: %w", &http.MaxBytesError{Limit: 10}), http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorFromType(w, tt.err)
			assert.Equal(t, tt.code, w.Code)
			resp := decode(t, w)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.kind, resp.Error.Code)
		})
	}
}

func TestInternalErrorHidesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	InternalError(w, errors.New("secret database path"))
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestMethodNotAllowed(t *testing.T) {
	w := httptest.NewRecorder()
	MethodNotAllowed(w, http.MethodPatch)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, w.Body.String(), "PATCH")
}
