/*
Package session is the client's view of who is signed in.

State changes only through Reduce, a pure function of the previous State and
an Action. Manager owns the current State, performs the network and storage
side effects, and feeds their outcomes to Reduce.
*/
package session

import (
	"duvidha/internal/app/user"
	"duvidha/internal/pkg/auth/jwt"
)

// Status is the lifecycle of one signup or signin attempt.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusFulfilled Status = "fulfilled"
	StatusRejected  Status = "rejected"
)

// Profile is the decoded token payload kept for display. It is never proof
// of identity; the server re-verifies the token on every protected call.
type Profile struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	RoomNumber string `json:"roomNumber,omitempty"`
	ExpiresAt  int64  `json:"exp,omitempty"`
}

func profileFromPayload(p *jwt.Payload) *Profile {
	return &Profile{
		ID:        p.ID,
		Username:  p.Username,
		Email:     p.Email,
		Role:      p.Role,
		ExpiresAt: p.ExpiresAtUnix(),
	}
}

func profileFromPublic(u user.Public) *Profile {
	return &Profile{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Role:       string(u.Role),
		RoomNumber: u.RoomNumber,
	}
}

type State struct {
	Token         string
	User          *Profile
	Authenticated bool

	SignupStatus Status
	SigninStatus Status
	Loading      bool
	Error        string
}

// Initial is the anonymous, idle state.
func Initial() State {
	return State{SignupStatus: StatusIdle, SigninStatus: StatusIdle}
}

// Action is an input to Reduce.
type Action interface {
	action()
}

type (
	SignupPending   struct{}
	SignupFulfilled struct{ User *Profile }
	SignupRejected  struct{ Message string }

	SigninPending   struct{}
	SigninFulfilled struct {
		Token string
		User  *Profile
	}
	SigninRejected struct{ Message string }

	LoggedOut struct{}

	// Restored carries the session recovered at startup; an empty Token means anonymous.
	Restored struct {
		Token string
		User  *Profile
	}
)

func (SignupPending) action()   {}
func (SignupFulfilled) action() {}
func (SignupRejected) action()  {}
func (SigninPending) action()   {}
func (SigninFulfilled) action() {}
func (SigninRejected) action()  {}
func (LoggedOut) action()       {}
func (Restored) action()        {}

// Reduce returns the state that follows s after a.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SignupPending:
		s.SignupStatus = StatusPending
		s.Loading = true
		s.Error = ""

	case SignupFulfilled:
		s.SignupStatus = StatusFulfilled
		s.Loading = false
		// Signing up does not sign in; an existing session is left alone.
		if !s.Authenticated {
			s.User = a.User
		}

	case SignupRejected:
		s.SignupStatus = StatusRejected
		s.Loading = false
		s.Error = a.Message

	case SigninPending:
		s.SigninStatus = StatusPending
		s.Loading = true
		s.Error = ""

	case SigninFulfilled:
		s.SigninStatus = StatusFulfilled
		s.Loading = false
		s.Token = a.Token
		s.User = a.User
		s.Authenticated = true

	case SigninRejected:
		s.SigninStatus = StatusRejected
		s.Loading = false
		s.Error = a.Message

	case LoggedOut:
		s.Token = ""
		s.User = nil
		s.Authenticated = false
		s.Error = ""
		s.Loading = false

	case Restored:
		s.Token = a.Token
		s.User = a.User
		s.Authenticated = a.Token != ""
		if !s.Authenticated {
			s.User = nil
		}
	}
	return s
}
