package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/newthinker/tradelab/internal/core"
)

// ErrorResponse is the error body returned by every endpoint.
type ErrorResponse struct {
	Detail string            `json:"detail"`
	Code   string            `json:"code"`
	Errors []core.FieldError `json:"errors,omitempty"`
}

// Message is a plain informational body.
type Message struct {
	Message string `json:"message"`
}

// JSON writes data as the response body.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNoData), errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrArchiveDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error writes an error response with the status derived from err.
func Error(w http.ResponseWriter, err error) {
	ErrorStatus(w, StatusFor(err), err)
}

// ErrorStatus writes an error response with an explicit status.
func ErrorStatus(w http.ResponseWriter, status int, err error) {
	resp := ErrorResponse{
		Detail: "an internal error occurred",
		Code:   "INTERNAL_ERROR",
	}

	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		resp.Code = coreErr.Code
		resp.Detail = coreErr.Message
		if coreErr.Cause != nil {
			resp.Detail = coreErr.Message + ": " + coreErr.Cause.Error()
		}
	}

	var fields core.ValidationErrors
	if errors.As(err, &fields) {
		resp.Errors = fields
	}

	JSON(w, status, resp)
}
