package jwt

import (
	"context"
	"net/http"
	"strings"

	"duvidha/internal/pkg/errs"
	"duvidha/internal/pkg/logx"
	"duvidha/internal/pkg/resp"
)

type contextKey string

const (
	// ContextAuthPayloadKey stores the verified *Payload in the request context.
	ContextAuthPayloadKey contextKey = "auth_payload"
)

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

// IdentityExtractorMiddleware verifies a bearer token when one is present and
// injects its Payload into the context. Requests without a valid token pass
// through as anonymous.
func IdentityExtractorMiddleware(secretKey string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			payload, err := ParseToken(tokenString, secretKey)
			if err != nil {
				logx.FromContext(r.Context()).Debug().Err(err).Msg("ignoring invalid bearer token")
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithPayload(r.Context(), payload)))
		})
	}
}

// RequireAuth rejects requests whose context carries no verified Payload.
// It must run after IdentityExtractorMiddleware.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetPayloadFromContext(r) == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ContextWithPayload returns a copy of ctx carrying payload.
func ContextWithPayload(ctx context.Context, payload *Payload) context.Context {
	return context.WithValue(ctx, ContextAuthPayloadKey, payload)
}

// GetPayloadFromContext returns the verified Payload, or nil for anonymous requests.
func GetPayloadFromContext(r *http.Request) *Payload {
	payload, _ := r.Context().Value(ContextAuthPayloadKey).(*Payload)
	return payload
}
