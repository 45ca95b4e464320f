/*
Package user holds the account model of the complaint desk, the credential
policy shared by server and client, and the Postgres-backed credential store.
*/
package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Role is the single authorization flag carried by an account.
type Role string

const (
	RoleStudent    Role = "student"
	RoleMaintainer Role = "maintainer"
)

var (
	// ErrNotFound is returned when no account matches the lookup.
	ErrNotFound = errors.New("user: not found")

	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("user: email already registered")
)

// User is a stored account. The password hash never leaves the server.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	RoomNumber   string
	CreatedAt    time.Time
}

// Public is the projection of a User that API responses expose.
type Public struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Role       Role      `json:"role"`
	RoomNumber string    `json:"roomNumber,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Public returns the non-sensitive view of u.
func (u User) Public() Public {
	return Public{
		ID:         u.ID.String(),
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.Role,
		RoomNumber: u.RoomNumber,
		CreatedAt:  u.CreatedAt,
	}
}

// IsMaintainer reports whether role grants maintainer privileges.
func (r Role) IsMaintainer() bool {
	return r == RoleMaintainer
}
