package jwt

import "github.com/golang-jwt/jwt/v5"

// Payload is the claim set of a Duvidha identity token.
//
// The registered claims are flattened into the top-level JSON object so that
// "exp" is readable by any client decoding the payload segment.
type Payload struct {
	jwt.RegisteredClaims

	// ID is the user's UUID; it is also written to the "sub" claim.
	ID string `json:"id"`

	// Username is the display name chosen at signup.
	Username string `json:"username"`

	// Email is the institutional address the user signed up with.
	Email string `json:"email"`

	// Role is either "student" or "maintainer".
	Role string `json:"role"`
}

// ExpiresAtUnix returns the "exp" claim in unix seconds, or 0 when absent.
func (p *Payload) ExpiresAtUnix() int64 {
	if p == nil || p.ExpiresAt == nil {
		return 0
	}
	return p.ExpiresAt.Unix()
}
