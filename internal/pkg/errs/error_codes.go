/*
Package errs provides the application error type and its business codes.

Every failure that reaches an HTTP response is expressed as a *CustomError
carrying a numeric code, a user-facing message and the HTTP status to send.
*/
package errs

// 1xxx: request handling
const (
	// ErrInvalidParams indicates that request field validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates a Content-Type other than JSON.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates a syntactically invalid or mistyped JSON body.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing data after the JSON document.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates the body exceeded the server limit.
	ErrRequestEntityTooLarge = 1006
)

// 2xxx: complaints
const (
	// ErrComplaintNotFound indicates the requested complaint does not exist.
	ErrComplaintNotFound = 2101

	// ErrComplaintStatusInvalid indicates an unknown complaint status value.
	ErrComplaintStatusInvalid = 2102
)

// 3xxx: accounts and authentication
const (
	// ErrEmailAlreadyRegistered is the ConflictError of signup.
	ErrEmailAlreadyRegistered = 3001

	// ErrInvalidCredentials is returned for both unknown email and wrong password.
	ErrInvalidCredentials = 3002

	// ErrUnauthorized indicates a missing, malformed, forged or expired bearer token.
	ErrUnauthorized = 3003

	// ErrForbidden indicates an authenticated user lacking the required role or ownership.
	ErrForbidden = 3004
)

// 5xxx: internal
const (
	// ErrUnknown represents an unclassified server failure.
	ErrUnknown = 5000
)
