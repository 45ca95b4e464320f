package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"duvidha/internal/pkg/errs"
)

// Kind classifies a failed call so callers never inspect response shapes.
type Kind string

const (
	KindValidation         Kind = "validation"
	KindConflict           Kind = "conflict"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindUnauthorized       Kind = "unauthorized"
	KindForbidden          Kind = "forbidden"
	KindNotFound           Kind = "not_found"
	KindDecode             Kind = "decode"
	KindNetwork            Kind = "network"
	KindServer             Kind = "server"
)

// Error is the single error type returned by Client.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Fields  []errs.FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// errorBody is the server's error envelope.
type errorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  []errs.FieldError `json:"errors"`
}

// message picks the explicit message, then the joined field messages, then fallback.
func (b errorBody) message(fallback string) string {
	if m := strings.TrimSpace(b.Message); m != "" {
		return m
	}

	msgs := make([]string, 0, len(b.Errors))
	for _, fe := range b.Errors {
		if m := strings.TrimSpace(fe.Message); m != "" {
			msgs = append(msgs, m)
		}
	}
	if len(msgs) > 0 {
		return strings.Join(msgs, ", ")
	}

	return fallback
}

func kindFor(status, code int) Kind {
	switch {
	case status == http.StatusUnauthorized && code == errs.ErrInvalidCredentials:
		return KindInvalidCredentials
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status >= http.StatusInternalServerError:
		return KindServer
	default:
		return KindValidation
	}
}
