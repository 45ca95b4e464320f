package session

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"duvidha/internal/app/user"
	"duvidha/internal/client/api"
	"duvidha/internal/client/storage"
	"duvidha/internal/pkg/auth/jwt"
)

var now = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

type memStore struct {
	mu      sync.Mutex
	session storage.Session
	clears  int
}

func (s *memStore) LoadSession(context.Context) (storage.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, nil
}

func (s *memStore) SaveSession(_ context.Context, sess storage.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = sess
	return nil
}

func (s *memStore) ClearSession(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = storage.Session{}
	s.clears++
	return nil
}

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) Signup(ctx context.Context, in user.SignupInput) (user.Public, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(user.Public), args.Error(1)
}

func (m *mockAPI) Signin(ctx context.Context, in api.SigninInput) (api.SigninResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(api.SigninResult), args.Error(1)
}

func tokenExpiringAt(t *testing.T, exp time.Time) string {
	t.Helper()
	issued := exp.Add(-24 * time.Hour)
	token, err := jwt.GenerateTokenAt(&jwt.Payload{
		ID:       "7f1c7c1e-3f59-4c6a-9f53-1c2d3e4f5a6b",
		Username: "alice",
		Email:    "alice@iiitdwd.ac.in",
		Role:     "student",
	}, "client-never-knows-this", issued, 24*time.Hour)
	require.NoError(t, err)
	return token
}

func persisted(t *testing.T, token string) storage.Session {
	t.Helper()
	payload, err := jwt.DecodeToken(token)
	require.NoError(t, err)
	raw, err := json.Marshal(profileFromPayload(payload))
	require.NoError(t, err)
	return storage.Session{Token: token, User: string(raw)}
}

func TestReduce_LogoutIsIdempotent(t *testing.T) {
	s := Reduce(Initial(), SigninFulfilled{Token: "t", User: &Profile{ID: "1"}})
	s = Reduce(s, SignupRejected{Message: "boom"})

	once := Reduce(s, LoggedOut{})
	twice := Reduce(once, LoggedOut{})

	assert.Equal(t, once, twice)
	assert.False(t, once.Authenticated)
	assert.Empty(t, once.Token)
	assert.Nil(t, once.User)
	assert.Empty(t, once.Error)
}

func TestReduce_SignupDoesNotAuthenticate(t *testing.T) {
	s := Reduce(Initial(), SignupPending{})
	assert.True(t, s.Loading)
	assert.Equal(t, StatusPending, s.SignupStatus)

	s = Reduce(s, SignupFulfilled{User: &Profile{Email: "alice@iiitdwd.ac.in"}})
	assert.False(t, s.Loading)
	assert.Equal(t, StatusFulfilled, s.SignupStatus)
	assert.False(t, s.Authenticated)
	assert.Empty(t, s.Token)
	require.NotNil(t, s.User)
	assert.Equal(t, "alice@iiitdwd.ac.in", s.User.Email)
}

func TestReduce_PendingClearsError(t *testing.T) {
	s := Reduce(Initial(), SigninRejected{Message: "Invalid credentials"})
	assert.Equal(t, "Invalid credentials", s.Error)
	assert.False(t, s.Authenticated)

	s = Reduce(s, SigninPending{})
	assert.Empty(t, s.Error)
	assert.Equal(t, StatusPending, s.SigninStatus)
}

func TestRestore(t *testing.T) {
	tests := []struct {
		name     string
		session  func(t *testing.T) storage.Session
		authed   bool
		clearsTo bool
	}{
		{
			name:    "future exp restores",
			session: func(t *testing.T) storage.Session { return persisted(t, tokenExpiringAt(t, now.Add(time.Hour))) },
			authed:  true,
		},
		{
			name:     "past exp clears",
			session:  func(t *testing.T) storage.Session { return persisted(t, tokenExpiringAt(t, now.Add(-time.Second))) },
			clearsTo: true,
		},
		{
			name:     "exp equal to now clears",
			session:  func(t *testing.T) storage.Session { return persisted(t, tokenExpiringAt(t, now)) },
			clearsTo: true,
		},
		{
			name:     "garbage token clears",
			session:  func(*testing.T) storage.Session { return storage.Session{Token: "not-a-jwt", User: "{}"} },
			clearsTo: true,
		},
		{
			name: "token without user clears",
			session: func(t *testing.T) storage.Session {
				return storage.Session{Token: tokenExpiringAt(t, now.Add(time.Hour))}
			},
			clearsTo: true,
		},
		{
			name:    "empty store stays anonymous",
			session: func(*testing.T) storage.Session { return storage.Session{} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{session: tt.session(t)}
			client := new(mockAPI)

			m := NewManager(context.Background(), store, client, WithClock(clock))
			s := m.State()

			assert.Equal(t, tt.authed, s.Authenticated)
			if tt.authed {
				require.NotNil(t, s.User)
				assert.Equal(t, "alice@iiitdwd.ac.in", s.User.Email)
				assert.Equal(t, now.Add(time.Hour).Unix(), s.User.ExpiresAt)
				assert.Equal(t, s.Token, m.Token())
			} else {
				assert.Nil(t, s.User)
				assert.Empty(t, m.Token())
			}

			if tt.clearsTo {
				assert.Equal(t, 1, store.clears)
				assert.True(t, store.session.Empty())
			}
			client.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything)
			client.AssertNotCalled(t, "Signin", mock.Anything, mock.Anything)
		})
	}
}

func TestSignup_LocalValidationSkipsNetwork(t *testing.T) {
	store := &memStore{}
	client := new(mockAPI)
	m := NewManager(context.Background(), store, client, WithClock(clock))

	_, err := m.Signup(context.Background(), user.SignupInput{
		Username: "mallory",
		Email:    "mallory@gmail.com",
		Password: "Passw0rd!",
	})
	require.Error(t, err)

	var vErr *user.ValidationError
	require.ErrorAs(t, err, &vErr)
	client.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything)

	s := m.State()
	assert.Equal(t, StatusRejected, s.SignupStatus)
	assert.Equal(t, "Email must end with @iiitdwd.ac.in", s.Error)
	assert.False(t, s.Loading)
}

func TestSignup_Fulfilled(t *testing.T) {
	store := &memStore{}
	client := new(mockAPI)
	client.On("Signup", mock.Anything, mock.MatchedBy(func(in user.SignupInput) bool {
		return in.Email == "alice@iiitdwd.ac.in"
	})).Return(user.Public{ID: "u1", Username: "alice", Email: "alice@iiitdwd.ac.in", Role: user.RoleStudent}, nil)

	m := NewManager(context.Background(), store, client, WithClock(clock))

	got, err := m.Signup(context.Background(), user.SignupInput{
		Username: "alice",
		Email:    "Alice@iiitdwd.ac.in",
		Password: "Passw0rd!",
	})
	require.NoError(t, err)
	assert.Equal(t, user.RoleStudent, got.Role)

	s := m.State()
	assert.Equal(t, StatusFulfilled, s.SignupStatus)
	assert.False(t, s.Authenticated)
	require.NotNil(t, s.User)
	assert.Equal(t, "student", s.User.Role)
	assert.True(t, store.session.Empty())
	client.AssertExpectations(t)
}

func TestSignup_ConflictMessage(t *testing.T) {
	client := new(mockAPI)
	client.On("Signup", mock.Anything, mock.Anything).Return(user.Public{}, &api.Error{
		Kind: api.KindConflict, Status: http.StatusConflict, Message: "This email is already registered.",
	})

	m := NewManager(context.Background(), &memStore{}, client, WithClock(clock))
	_, err := m.Signup(context.Background(), user.SignupInput{Username: "a", Email: "a@iiitdwd.ac.in", Password: "Passw0rd!"})

	assert.Equal(t, api.KindConflict, api.KindOf(err))
	assert.Equal(t, "This email is already registered.", m.State().Error)
}

func TestSignin_PersistsTokenAndUser(t *testing.T) {
	store := &memStore{}
	client := new(mockAPI)
	token := tokenExpiringAt(t, now.Add(24*time.Hour))
	client.On("Signin", mock.Anything, api.SigninInput{Email: "alice@iiitdwd.ac.in", Password: "Passw0rd!"}).
		Return(api.SigninResult{Token: token, User: user.Public{Email: "alice@iiitdwd.ac.in", RoomNumber: "B-214"}}, nil)

	m := NewManager(context.Background(), store, client, WithClock(clock))

	var seen []State
	unsubscribe := m.Subscribe(func(s State) { seen = append(seen, s) })
	defer unsubscribe()

	require.NoError(t, m.Signin(context.Background(), api.SigninInput{Email: " ALICE@iiitdwd.ac.in", Password: "Passw0rd!"}))

	s := m.State()
	assert.True(t, s.Authenticated)
	assert.Equal(t, token, s.Token)
	require.NotNil(t, s.User)
	assert.Equal(t, "alice", s.User.Username)
	assert.Equal(t, "B-214", s.User.RoomNumber)
	assert.True(t, time.Unix(s.User.ExpiresAt, 0).After(now))

	assert.Equal(t, token, store.session.Token)
	var stored Profile
	require.NoError(t, json.Unmarshal([]byte(store.session.User), &stored))
	assert.Equal(t, *s.User, stored)

	require.Len(t, seen, 2)
	assert.Equal(t, StatusPending, seen[0].SigninStatus)
	assert.Equal(t, StatusFulfilled, seen[1].SigninStatus)

	// A restart with the same store restores the session.
	restarted := NewManager(context.Background(), store, client, WithClock(clock))
	assert.True(t, restarted.State().Authenticated)
}

func TestSignin_InvalidCredentialsStaysAnonymous(t *testing.T) {
	store := &memStore{}
	client := new(mockAPI)
	client.On("Signin", mock.Anything, mock.Anything).Return(api.SigninResult{}, &api.Error{
		Kind: api.KindInvalidCredentials, Status: http.StatusUnauthorized, Message: "Invalid credentials",
	})

	m := NewManager(context.Background(), store, client, WithClock(clock))
	err := m.Signin(context.Background(), api.SigninInput{Email: "alice@iiitdwd.ac.in", Password: "nope"})

	assert.Equal(t, api.KindInvalidCredentials, api.KindOf(err))
	s := m.State()
	assert.False(t, s.Authenticated)
	assert.Equal(t, StatusRejected, s.SigninStatus)
	assert.Equal(t, "Invalid credentials", s.Error)
	assert.True(t, store.session.Empty())
}

func TestSignin_MissingFieldsSkipNetwork(t *testing.T) {
	client := new(mockAPI)
	m := NewManager(context.Background(), &memStore{}, client, WithClock(clock))

	require.Error(t, m.Signin(context.Background(), api.SigninInput{Email: "alice@iiitdwd.ac.in"}))
	client.AssertNotCalled(t, "Signin", mock.Anything, mock.Anything)
	assert.Equal(t, "Email and password are required", m.State().Error)
}

func TestSignin_FallbackMessage(t *testing.T) {
	client := new(mockAPI)
	client.On("Signin", mock.Anything, mock.Anything).Return(api.SigninResult{}, context.DeadlineExceeded)

	m := NewManager(context.Background(), &memStore{}, client, WithClock(clock))
	require.Error(t, m.Signin(context.Background(), api.SigninInput{Email: "a@iiitdwd.ac.in", Password: "x"}))
	assert.Equal(t, signinFailed, m.State().Error)
}

func TestLogout_Idempotent(t *testing.T) {
	store := &memStore{session: persisted(t, tokenExpiringAt(t, now.Add(time.Hour)))}
	m := NewManager(context.Background(), store, new(mockAPI), WithClock(clock))
	require.True(t, m.State().Authenticated)

	require.NoError(t, m.Logout(context.Background()))
	once := m.State()
	require.NoError(t, m.Logout(context.Background()))

	assert.Equal(t, once, m.State())
	assert.False(t, once.Authenticated)
	assert.True(t, store.session.Empty())
}

func TestSignin_ConcurrentResolutionsNotifyInOrder(t *testing.T) {
	store := &memStore{}
	client := new(mockAPI)
	tokenA := tokenExpiringAt(t, now.Add(time.Hour))
	tokenB := tokenExpiringAt(t, now.Add(2*time.Hour))
	inA := api.SigninInput{Email: "alice@iiitdwd.ac.in", Password: "first-Passw0rd!"}
	inB := api.SigninInput{Email: "alice@iiitdwd.ac.in", Password: "second-Passw0rd!"}
	client.On("Signin", mock.Anything, inA).Return(api.SigninResult{Token: tokenA}, nil)
	client.On("Signin", mock.Anything, inB).Return(api.SigninResult{Token: tokenB}, nil)

	m := NewManager(context.Background(), store, client, WithClock(clock))

	var (
		mu       sync.Mutex
		notified []string
		sawA     = make(chan struct{})
		holdA    = make(chan struct{})
		once     sync.Once
	)
	m.Subscribe(func(s State) {
		if s.SigninStatus == StatusFulfilled && s.Token == tokenA {
			// Keep A's notification in flight while B resolves.
			once.Do(func() { close(sawA) })
			<-holdA
		}
		mu.Lock()
		notified = append(notified, s.Token)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, m.Signin(context.Background(), inA))
	}()
	<-sawA

	require.NoError(t, m.Signin(context.Background(), inB))
	assert.Equal(t, tokenB, m.State().Token)

	close(holdA)
	wg.Wait()

	assert.Equal(t, tokenB, m.State().Token)
	assert.Equal(t, tokenB, store.session.Token)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, notified)
	assert.Equal(t, tokenB, notified[len(notified)-1])
	assert.Contains(t, notified, tokenA)
}
