package api

import "net/http"

// TokenSource yields the bearer token to attach, or "" for anonymous requests.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// BearerTransport sets "Authorization: Bearer <token>" on every outgoing
// request when Source has a token. It never retries or refreshes.
type BearerTransport struct {
	Source TokenSource

	// Base is the underlying transport; http.DefaultTransport when nil.
	Base http.RoundTripper
}

func (t *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	if t.Source == nil {
		return base.RoundTrip(req)
	}
	token := t.Source.Token()
	if token == "" {
		return base.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request.
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+token)
	return base.RoundTrip(r)
}
