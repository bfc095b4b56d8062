package quizkit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// memStore is an in-memory TokenStore with injectable failures.
type memStore struct {
	mu      sync.Mutex
	access  string
	refresh string

	failLoad  error
	failSave  error
	failClear error

	saves  int
	clears int
}

func (s *memStore) Save(ctx context.Context, access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave != nil {
		return s.failSave
	}
	s.access, s.refresh = access, refresh
	s.saves++
	return nil
}

func (s *memStore) SaveAccess(ctx context.Context, access string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave != nil {
		return s.failSave
	}
	s.access = access
	s.saves++
	return nil
}

func (s *memStore) Load(ctx context.Context) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLoad != nil {
		return "", "", s.failLoad
	}
	if s.access == "" || s.refresh == "" {
		return "", "", nil
	}
	return s.access, s.refresh, nil
}

func (s *memStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failClear != nil {
		return s.failClear
	}
	s.access, s.refresh = "", ""
	s.clears++
	return nil
}

func (s *memStore) pair() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access, s.refresh
}

// stubBackend is an AuthBackend with overridable behavior per call.
type stubBackend struct {
	loginFn    func(ctx context.Context, creds LoginCredentials) (*UserIdentity, string, string, error)
	registerFn func(ctx context.Context, creds RegisterCredentials) (*UserIdentity, string, string, error)
	logoutFn   func(ctx context.Context, access, refresh string) error
	refreshFn  func(ctx context.Context, refresh string) (string, error)
	userFn     func(ctx context.Context, access string) (*UserIdentity, error)

	mu      sync.Mutex
	logouts int
}

func (b *stubBackend) Login(ctx context.Context, creds LoginCredentials) (*UserIdentity, string, string, error) {
	if b.loginFn == nil {
		return nil, "", "", errors.New("login not stubbed")
	}
	return b.loginFn(ctx, creds)
}

func (b *stubBackend) Register(ctx context.Context, creds RegisterCredentials) (*UserIdentity, string, string, error) {
	if b.registerFn == nil {
		return nil, "", "", errors.New("register not stubbed")
	}
	return b.registerFn(ctx, creds)
}

func (b *stubBackend) Logout(ctx context.Context, access, refresh string) error {
	b.mu.Lock()
	b.logouts++
	b.mu.Unlock()
	if b.logoutFn == nil {
		return nil
	}
	return b.logoutFn(ctx, access, refresh)
}

func (b *stubBackend) RefreshAccess(ctx context.Context, refresh string) (string, error) {
	if b.refreshFn == nil {
		return "", errors.New("refresh not stubbed")
	}
	return b.refreshFn(ctx, refresh)
}

func (b *stubBackend) CurrentUser(ctx context.Context, access string) (*UserIdentity, error) {
	if b.userFn == nil {
		return nil, errors.New("current user not stubbed")
	}
	return b.userFn(ctx, access)
}

func (b *stubBackend) logoutCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.logouts
}

func testIdentity() *UserIdentity {
	return &UserIdentity{
		ID:       "user-1",
		Email:    "alice@example.com",
		Username: "alice",
		IsActive: true,
	}
}

// signedToken mints a parseable access credential expiring at exp.
func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newTestSession(store TokenStore, backend AuthBackend) *Session {
	cfg := defaultConfig()
	cfg.Backend.BaseURL = "http://localhost:8000"
	return NewSession(store, backend, cfg, NewMetrics(cfg.Metrics))
}

// restoreEmpty drives a fresh session to StatusUnauthenticated so auth
// operations are accepted.
func restoreEmpty(t *testing.T, s *Session) {
	t.Helper()
	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := s.Status(); got != StatusUnauthenticated {
		t.Fatalf("expected unauthenticated after empty restore, got %v", got)
	}
}
