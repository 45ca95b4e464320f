package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// UserIdentityExpiration is the default lifetime of an identity token.
	UserIdentityExpiration = 24 * time.Hour

	// TokenIssuer identifies the issuer of the token.
	TokenIssuer = "Duvidha-Server"
)

var (
	// ErrDecode is returned when a token is not three base64url segments
	// carrying a JSON header and payload.
	ErrDecode = errors.New("jwt: malformed token")

	// ErrInvalidSignature is returned when a token fails verification for any
	// reason other than expiry: bad signature, wrong algorithm, wrong issuer
	// or missing identity.
	ErrInvalidSignature = errors.New("jwt: invalid token")

	// ErrExpired is returned when a correctly signed token is past its "exp".
	ErrExpired = errors.New("jwt: token expired")
)

// GenerateToken signs payload with secretKey, valid for duration from now.
func GenerateToken(payload *Payload, secretKey string, duration time.Duration) (string, error) {
	return GenerateTokenAt(payload, secretKey, time.Now(), duration)
}

// GenerateTokenAt signs payload as if issued at now. The output depends only
// on its arguments.
func GenerateTokenAt(payload *Payload, secretKey string, now time.Time, duration time.Duration) (string, error) {
	if payload == nil || strings.TrimSpace(payload.ID) == "" {
		return "", errors.New("jwt: payload has no user id")
	}

	payload.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   payload.ID,
		Issuer:    TokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	return token.SignedString([]byte(secretKey))
}

// ParseToken verifies tokenString against secretKey and returns its payload.
// Only HS256 tokens from TokenIssuer with an "exp" claim in the future pass.
func ParseToken(tokenString string, secretKey string) (*Payload, error) {
	claims := &Payload{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return []byte(secretKey), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(TokenIssuer),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if strings.TrimSpace(claims.ID) == "" {
		return nil, fmt.Errorf("%w: missing user id", ErrInvalidSignature)
	}

	return claims, nil
}

// DecodeToken reads the payload of tokenString without verifying the
// signature or expiry. Its result is for display only and must never be used
// for an authorization decision.
func DecodeToken(tokenString string) (*Payload, error) {
	claims := &Payload{}

	// An unknown or missing "alg" only matters for verification; the
	// claims are already decoded by then.
	_, _, err := jwt.NewParser().ParseUnverified(tokenString, claims)
	if err != nil && !errors.Is(err, jwt.ErrTokenUnverifiable) {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return claims, nil
}
