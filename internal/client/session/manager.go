package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"duvidha/internal/app/user"
	"duvidha/internal/client/api"
	"duvidha/internal/client/storage"
	"duvidha/internal/pkg/auth/jwt"
	"duvidha/internal/pkg/logx"
)

const (
	signupFailed = "Signup failed"
	signinFailed = "Signin failed"
)

// Storage is the durable side of the session.
type Storage interface {
	LoadSession(ctx context.Context) (storage.Session, error)
	SaveSession(ctx context.Context, s storage.Session) error
	ClearSession(ctx context.Context) error
}

// AuthAPI is the part of the HTTP client the manager calls.
type AuthAPI interface {
	Signup(ctx context.Context, in user.SignupInput) (user.Public, error)
	Signin(ctx context.Context, in api.SigninInput) (api.SigninResult, error)
}

// Manager owns the client State. Every resolution is applied under one lock,
// so concurrent signins end with whichever resolved last.
type Manager struct {
	mu    sync.Mutex
	state State
	store Storage
	api   AuthAPI
	now   func() time.Time

	// pending holds snapshots not yet delivered; delivering is set while one
	// goroutine runs subscribers. Both are guarded by mu.
	pending    []State
	delivering bool

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(State)
}

type Option func(*Manager)

// WithClock sets the clock used to judge token expiry at startup.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager builds a Manager and reconciles the persisted session.
func NewManager(ctx context.Context, store Storage, client AuthAPI, opts ...Option) *Manager {
	m := &Manager{
		state: Initial(),
		store: store,
		api:   client,
		now:   time.Now,
		subs:  make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.Restore(ctx)
	return m
}

// State returns a snapshot of the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Token implements api.TokenSource.
func (m *Manager) Token() string {
	return m.State().Token
}

// Subscribe registers fn to be called with every new state. Calls never run
// concurrently and arrive in the order the states were produced; a state
// reached while another goroutine is notifying is delivered by that
// goroutine. The returned func removes fn.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	id := m.nextID
	m.nextID++
	m.subs[id] = fn

	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		delete(m.subs, id)
	}
}

// dispatch applies a, with an optional side effect run under the same lock,
// and queues the resulting snapshot for subscribers.
func (m *Manager) dispatch(a Action, effect func()) {
	m.mu.Lock()
	if effect != nil {
		effect()
	}
	m.state = Reduce(m.state, a)
	m.pending = append(m.pending, m.state)
	if m.delivering {
		// The active deliverer picks this snapshot up after the ones before it.
		m.mu.Unlock()
		return
	}
	m.delivering = true
	m.mu.Unlock()

	m.deliver()
}

// deliver drains pending in the order Reduce produced the snapshots. Only one
// goroutine delivers at a time, so the last notification always matches State.
func (m *Manager) deliver() {
	for {
		m.mu.Lock()
		batch := m.pending
		m.pending = nil
		if len(batch) == 0 {
			m.delivering = false
			m.mu.Unlock()
			return
		}
		m.mu.Unlock()

		m.subMu.Lock()
		subs := make([]func(State), 0, len(m.subs))
		for _, fn := range m.subs {
			subs = append(subs, fn)
		}
		m.subMu.Unlock()

		for _, snapshot := range batch {
			for _, fn := range subs {
				fn(snapshot)
			}
		}
	}
}

// Restore loads the persisted session. It becomes authenticated only when
// the token decodes and its exp is strictly after now; anything else clears
// storage and leaves the session anonymous.
func (m *Manager) Restore(ctx context.Context) {
	saved, err := m.store.LoadSession(ctx)
	if err != nil {
		logx.Error(err, "loading persisted session failed")
		m.dispatch(Restored{}, nil)
		return
	}
	if saved.Empty() {
		m.dispatch(Restored{}, nil)
		return
	}

	profile, reason := m.validSession(saved)
	if profile == nil {
		logx.Warn("discarding persisted session", "reason", reason)
		m.dispatch(Restored{}, func() {
			if err := m.store.ClearSession(ctx); err != nil {
				logx.Error(err, "clearing persisted session failed")
			}
		})
		return
	}

	m.dispatch(Restored{Token: saved.Token, User: profile}, nil)
}

func (m *Manager) validSession(saved storage.Session) (*Profile, string) {
	if saved.Token == "" || saved.User == "" {
		return nil, "incomplete"
	}

	payload, err := jwt.DecodeToken(saved.Token)
	if err != nil {
		return nil, "undecodable token"
	}

	exp := payload.ExpiresAtUnix()
	if exp == 0 {
		return nil, "token has no expiry"
	}
	if !time.Unix(exp, 0).After(m.now()) {
		return nil, "token expired"
	}

	var profile Profile
	if err := json.Unmarshal([]byte(saved.User), &profile); err != nil {
		return nil, "undecodable user"
	}
	profile.ExpiresAt = exp
	return &profile, ""
}

// Signup validates in locally and, if it passes, registers the account.
// The session stays anonymous either way.
func (m *Manager) Signup(ctx context.Context, in user.SignupInput) (user.Public, error) {
	m.dispatch(SignupPending{}, nil)

	in = in.Normalize()
	if err := user.ValidateSignup(in); err != nil {
		m.dispatch(SignupRejected{Message: errorMessage(err, signupFailed)}, nil)
		return user.Public{}, err
	}

	created, err := m.api.Signup(ctx, in)
	if err != nil {
		m.dispatch(SignupRejected{Message: errorMessage(err, signupFailed)}, nil)
		return user.Public{}, err
	}

	m.dispatch(SignupFulfilled{User: profileFromPublic(created)}, nil)
	return created, nil
}

// Signin exchanges credentials for a token, then decodes and persists it.
func (m *Manager) Signin(ctx context.Context, in api.SigninInput) error {
	m.dispatch(SigninPending{}, nil)

	in.Email = user.NormalizeEmail(in.Email)
	if in.Email == "" || in.Password == "" {
		err := &user.ValidationError{Violations: []user.Violation{{Field: "credentials", Message: "Email and password are required"}}}
		m.dispatch(SigninRejected{Message: errorMessage(err, signinFailed)}, nil)
		return err
	}

	res, err := m.api.Signin(ctx, in)
	if err != nil {
		m.dispatch(SigninRejected{Message: errorMessage(err, signinFailed)}, nil)
		return err
	}

	payload, err := jwt.DecodeToken(res.Token)
	if err != nil {
		m.dispatch(SigninRejected{Message: "Received an unreadable token"}, nil)
		return err
	}
	profile := profileFromPayload(payload)
	profile.RoomNumber = res.User.RoomNumber

	encoded, err := json.Marshal(profile)
	if err != nil {
		m.dispatch(SigninRejected{Message: signinFailed}, nil)
		return fmt.Errorf("encode profile: %w", err)
	}

	m.dispatch(SigninFulfilled{Token: res.Token, User: profile}, func() {
		if err := m.store.SaveSession(ctx, storage.Session{Token: res.Token, User: string(encoded)}); err != nil {
			logx.Error(err, "persisting session failed", "user_id", profile.ID)
		}
	})
	return nil
}

// Logout forgets the session locally. The token stays valid on the server
// until it expires. Calling it again is harmless.
func (m *Manager) Logout(ctx context.Context) error {
	var clearErr error
	m.dispatch(LoggedOut{}, func() {
		clearErr = m.store.ClearSession(ctx)
	})
	if clearErr != nil {
		logx.Error(clearErr, "clearing persisted session failed")
	}
	return clearErr
}

// errorMessage flattens any failure into the one string the UI shows.
func errorMessage(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		return apiErr.Message
	}

	var vErr *user.ValidationError
	if errors.As(err, &vErr) && len(vErr.Violations) > 0 {
		msgs := make([]string, 0, len(vErr.Violations))
		for _, v := range vErr.Violations {
			msgs = append(msgs, v.Message)
		}
		return strings.Join(msgs, ", ")
	}

	return fallback
}
