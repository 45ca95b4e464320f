package errs

import "net/http"

// errorMap holds the message and HTTP status template for every code.
var errorMap = map[int]CustomError{
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Malformed JSON body.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},

	ErrComplaintNotFound:      {Code: ErrComplaintNotFound, Message: "Complaint not found.", Status: http.StatusNotFound},
	ErrComplaintStatusInvalid: {Code: ErrComplaintStatusInvalid, Message: "Invalid complaint status %q.", Status: http.StatusBadRequest},

	ErrEmailAlreadyRegistered: {Code: ErrEmailAlreadyRegistered, Message: "Email is already registered.", Status: http.StatusConflict},
	ErrInvalidCredentials:     {Code: ErrInvalidCredentials, Message: "Invalid credentials", Status: http.StatusUnauthorized},
	ErrUnauthorized:           {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrForbidden:              {Code: ErrForbidden, Message: "You are not allowed to do that.", Status: http.StatusForbidden},

	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
