/*
Package req binds HTTP request bodies into handler input structs.
*/
package req

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"duvidha/internal/pkg/errs"
)

// MaxJSONBodySize bounds every JSON request body (64 KB).
const MaxJSONBodySize int64 = 64 << 10

// BindJSON decodes the JSON body of r into dst.
// Unknown fields, trailing documents and oversized bodies are rejected.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
