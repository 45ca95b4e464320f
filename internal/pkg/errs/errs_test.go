package errs

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewError_UsesTemplate(t *testing.T) {
	e := NewError(ErrInvalidCredentials)

	assert.Equal(t, ErrInvalidCredentials, e.Code)
	assert.Equal(t, http.StatusUnauthorized, e.Status)
	assert.Equal(t, "Invalid credentials", e.Message)
}

func TestNewError_FormatsDetails(t *testing.T) {
	e := NewError(ErrComplaintStatusInvalid, "closed")

	assert.Equal(t, `Invalid complaint status "closed".`, e.Message)
	assert.Equal(t, http.StatusBadRequest, e.Status)
}

func TestNewError_UnknownHidesCause(t *testing.T) {
	e := NewError(ErrUnknown, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, e.Status)
	assert.NotContains(t, e.Message, "connection refused")
}

func TestNewError_UnregisteredCodeFallsBack(t *testing.T) {
	e := NewError(424242)

	assert.Equal(t, ErrUnknown, e.Code)
}

func TestNewError_DoesNotMutateTemplate(t *testing.T) {
	_ = NewError(ErrComplaintStatusInvalid, "x")
	e := NewError(ErrComplaintStatusInvalid, "y")

	assert.Equal(t, `Invalid complaint status "y".`, e.Message)
}

func TestNewValidationError_JoinsMessages(t *testing.T) {
	e := NewValidationError([]FieldError{
		{Field: "email", Message: "Email must end with @iiitdwd.ac.in"},
		{Field: "password", Message: "Password must contain a digit"},
	})

	assert.Equal(t, ErrInvalidParams, e.Code)
	assert.Equal(t, http.StatusBadRequest, e.Status)
	assert.Equal(t, "Email must end with @iiitdwd.ac.in, Password must contain a digit", e.Message)
	assert.Len(t, e.Fields, 2)
}
