// Package response provides the JSON envelope used by every API endpoint:
// a data field for successful responses and an error field for failures.
package response

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/agentstation/userdetails/pkg/errors"
)

// Response is the standardized API response structure.
type Response struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
}

// Error is an API error. Fields carries per-field validation messages.
type Error struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Success creates a successful response with data.
func Success(data any) Response {
	return Response{Data: data}
}

// Fail creates an error response.
func Fail(code, message, details string) Response {
	return Response{
		Error: &Error{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// JSON writes resp with the given status code.
func JSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent, so encoding errors cannot be reported.
	_ = json.NewEncoder(w).Encode(resp)
}

// OK writes a successful response with 200 status.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Success(data))
}

// Accepted writes a successful response with 202 status, used when work
// such as a submission completes later.
func Accepted(w http.ResponseWriter, data any) {
	JSON(w, http.StatusAccepted, Success(data))
}

// BadRequest writes a 400 error response.
func BadRequest(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusBadRequest, Fail("BAD_REQUEST", message, details))
}

// NotFound writes a 404 error response.
func NotFound(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusNotFound, Fail("NOT_FOUND", message, details))
}

// MethodNotAllowed writes a 405 error response.
func MethodNotAllowed(w http.ResponseWriter, method string) {
	JSON(w, http.StatusMethodNotAllowed, Fail(
		"METHOD_NOT_ALLOWED",
		"Method not allowed",
		"Method "+method+" is not supported for this endpoint",
	))
}

// Conflict writes a 409 error response.
func Conflict(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusConflict, Fail("CONFLICT", message, details))
}

// TooLarge writes a 413 error response.
func TooLarge(w http.ResponseWriter, details string) {
	JSON(w, http.StatusRequestEntityTooLarge, Fail("REQUEST_TOO_LARGE", "Request body too large", details))
}

// ValidationFailed writes a 422 error response listing field messages.
func ValidationFailed(w http.ResponseWriter, verrs errors.ValidationErrors) {
	resp := Fail("VALIDATION_FAILED", "Validation failed", "")
	resp.Error.Fields = verrs.Fields()
	JSON(w, http.StatusUnprocessableEntity, resp)
}

// InternalError writes a 500 error response without exposing err.
func InternalError(w http.ResponseWriter, _ error) {
	JSON(w, http.StatusInternalServerError, Fail(
		"INTERNAL_ERROR",
		"Internal server error",
		"An unexpected error occurred",
	))
}

// ServiceUnavailable writes a 503 error response.
func ServiceUnavailable(w http.ResponseWriter, message string) {
	JSON(w, http.StatusServiceUnavailable, Fail(
		"SERVICE_UNAVAILABLE",
		"Service unavailable",
		message,
	))
}

// ErrorFromType maps typed and sentinel errors to HTTP responses.
func ErrorFromType(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if verrs, ok := errors.AsValidationErrors(err); ok {
		ValidationFailed(w, verrs)
		return
	}

	switch {
	case stderrors.As(err, &tooLarge):
		TooLarge(w, err.Error())
	case errors.IsNotFound(err):
		NotFound(w, err.Error(), "")
	case errors.IsConflict(err):
		Conflict(w, err.Error(), "")
	case errors.IsValidationError(err):
		BadRequest(w, err.Error(), "")
	default:
		InternalError(w, err)
	}
}
