/*
Package resp writes JSON and plain-text HTTP responses.

Success bodies are the payload itself (for example {"user": ...} or
{"token": ..., "user": ...}); error bodies are ErrorResponse.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"duvidha/internal/pkg/errs"
	"duvidha/internal/pkg/logx"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	// Code is the business error code (see errs).
	Code int `json:"code"`

	// Message is the client-facing description.
	Message string `json:"message"`

	// Errors lists field-level validation failures.
	Errors []errs.FieldError `json:"errors,omitempty"`
}

// RespondJSON marshals payload and writes it with the given status.
func RespondJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		logx.FromContext(r.Context()).Error().Err(err).Int("http_status", status).Msg("encoding JSON response failed")
		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// RespondOK writes payload with 200 OK.
func RespondOK(w http.ResponseWriter, r *http.Request, payload any) {
	RespondJSON(w, r, http.StatusOK, payload)
}

// RespondCreated writes payload with 201 Created.
func RespondCreated(w http.ResponseWriter, r *http.Request, payload any) {
	RespondJSON(w, r, http.StatusCreated, payload)
}

// RespondError writes customErr as an ErrorResponse. A nil error is sent as ErrUnknown.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	RespondJSON(w, r, customErr.Status, ErrorResponse{
		Code:    customErr.Code,
		Message: customErr.Message,
		Errors:  customErr.Fields,
	})
}

// RespondText writes a plain-text body.
func RespondText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}
