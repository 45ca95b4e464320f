package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"duvidha/internal/app/complaint"
	"duvidha/internal/app/user"
	"duvidha/internal/configs"
	"duvidha/internal/pkg/auth/jwt"
)

const testSecret = "handler-test-secret"

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// memUsers is an in-memory user.Repository.
type memUsers struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]user.User
	clock time.Time
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[uuid.UUID]user.User{}, clock: testNow}
}

func (m *memUsers) Create(_ context.Context, u user.User) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return user.User{}, user.ErrEmailTaken
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = m.clock
	m.byID[u.ID] = u
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id uuid.UUID) (user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byID[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

// memComplaints is an in-memory complaint.Repository.
type memComplaints struct {
	mu    sync.Mutex
	items map[uuid.UUID]complaint.Complaint
	seq   int
}

func newMemComplaints() *memComplaints {
	return &memComplaints{items: map[uuid.UUID]complaint.Complaint{}}
}

func (m *memComplaints) Create(_ context.Context, c complaint.Complaint) (complaint.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	c.ID = uuid.New()
	if c.Status == "" {
		c.Status = complaint.StatusPending
	}
	if c.Category == "" {
		c.Category = complaint.DefaultCategory
	}
	c.CreatedAt = testNow.Add(time.Duration(m.seq) * time.Minute)
	c.UpdatedAt = c.CreatedAt
	m.items[c.ID] = c
	return c, nil
}

func (m *memComplaints) GetByID(_ context.Context, id uuid.UUID) (complaint.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.items[id]
	if !ok {
		return complaint.Complaint{}, complaint.ErrNotFound
	}
	return c, nil
}

func (m *memComplaints) List(_ context.Context, filter complaint.ListFilter) ([]complaint.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []complaint.Complaint{}
	for _, c := range m.items {
		if filter.UserID != nil && c.UserID != *filter.UserID {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memComplaints) UpdateStatus(_ context.Context, id uuid.UUID, status complaint.Status) (complaint.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.items[id]
	if !ok {
		return complaint.Complaint{}, complaint.ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = c.UpdatedAt.Add(time.Minute)
	m.items[c.ID] = c
	return c, nil
}

// mockUsers is a testify mock for failure paths the in-memory store cannot produce.
type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) Create(ctx context.Context, u user.User) (user.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(user.User), args.Error(1)
}

func (m *mockUsers) GetByEmail(ctx context.Context, email string) (user.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(user.User), args.Error(1)
}

func (m *mockUsers) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(user.User), args.Error(1)
}

func testConfig() *configs.AppConfig {
	return &configs.AppConfig{
		Environment:    "test",
		Port:           5001,
		AllowedOrigins: []string{"https://duvidha-ki-suvidha.vercel.app"},
		JWTSecret:      testSecret,
		TokenTTL:       24 * time.Hour,
	}
}

func newTestDeps() *AppDeps {
	return &AppDeps{
		Config:     testConfig(),
		Users:      newMemUsers(),
		Complaints: newMemComplaints(),
		BcryptCost: bcrypt.MinCost,
		Now:        time.Now,
	}
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// seedUser stores an account directly and returns a valid token for it.
func seedUser(t *testing.T, deps *AppDeps, name string, role user.Role) (user.User, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.MinCost)
	require.NoError(t, err)

	u, err := deps.Users.Create(context.Background(), user.User{
		Username:     name,
		Email:        name + "@iiitdwd.ac.in",
		PasswordHash: string(hashed),
		Role:         role,
	})
	require.NoError(t, err)

	token, err := jwt.GenerateToken(&jwt.Payload{
		ID:       u.ID.String(),
		Username: u.Username,
		Email:    u.Email,
		Role:     string(u.Role),
	}, testSecret, time.Hour)
	require.NoError(t, err)

	return u, token
}
