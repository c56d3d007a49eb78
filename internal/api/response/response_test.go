package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/newthinker/tradelab/internal/core"
)

func TestJSON_RawPayload(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, map[string]int{"count": 3})

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected application/json content type")
	}

	var body map[string]int
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["count"] != 3 {
		t.Errorf("expected unwrapped payload, got %s", w.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrInvalidParameter, http.StatusBadRequest},
		{core.WrapError(core.ErrValidation, core.ValidationErrors{{Field: "open", Message: "x"}}), http.StatusUnprocessableEntity},
		{core.ErrNoData, http.StatusNotFound},
		{fmt.Errorf("lookup: %w", core.ErrNotFound), http.StatusNotFound},
		{core.ErrUnauthorized, http.StatusUnauthorized},
		{core.ErrArchiveDisabled, http.StatusServiceUnavailable},
		{core.ErrStorageFailed, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := StatusFor(tt.err); got != tt.want {
				t.Errorf("StatusFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestError_WithCoreError(t *testing.T) {
	w := httptest.NewRecorder()

	Error(w, core.ErrNoData)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}

	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Code != "NO_DATA" {
		t.Errorf("expected NO_DATA, got %s", resp.Code)
	}
	if resp.Detail != "no ticker data found in database" {
		t.Errorf("unexpected detail %q", resp.Detail)
	}
}

func TestError_ValidationFields(t *testing.T) {
	w := httptest.NewRecorder()
	err := core.WrapError(core.ErrValidation, core.ValidationErrors{
		{Field: "high", Message: "High price must be greater than or equal to low price"},
	})

	Error(w, err)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", w.Code)
	}

	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Errors) != 1 || resp.Errors[0].Field != "high" {
		t.Errorf("expected field errors, got %+v", resp.Errors)
	}
}

func TestErrorStatus_StandardError(t *testing.T) {
	w := httptest.NewRecorder()

	ErrorStatus(w, http.StatusBadRequest, errors.New("boom"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	var resp ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Code != "INTERNAL_ERROR" {
		t.Errorf("expected INTERNAL_ERROR, got %s", resp.Code)
	}
	if resp.Errors != nil {
		t.Error("expected no field errors")
	}
}
