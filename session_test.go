package quizkit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTransitionIsPure(t *testing.T) {
	id := testIdentity()
	failure := errors.New("boom")

	tests := []struct {
		name string
		from sessionState
		ev   sessionEvent
		want sessionState
	}{
		{
			name: "restore started",
			from: sessionState{status: StatusIdle},
			ev:   sessionEvent{kind: evRestoreStarted},
			want: sessionState{status: StatusRestoring},
		},
		{
			name: "auth started from unauthenticated",
			from: sessionState{status: StatusUnauthenticated},
			ev:   sessionEvent{kind: evAuthStarted},
			want: sessionState{status: StatusAuthenticating},
		},
		{
			name: "auth succeeded carries identity",
			from: sessionState{status: StatusAuthenticating},
			ev:   sessionEvent{kind: evAuthSucceeded, identity: id},
			want: sessionState{status: StatusAuthenticated, identity: id},
		},
		{
			name: "auth failed records failure",
			from: sessionState{status: StatusAuthenticating},
			ev:   sessionEvent{kind: evAuthFailed, failure: failure},
			want: sessionState{status: StatusFailed, failure: failure},
		},
		{
			name: "signed out drops identity",
			from: sessionState{status: StatusAuthenticated, identity: id},
			ev:   sessionEvent{kind: evSignedOut},
			want: sessionState{status: StatusUnauthenticated},
		},
		{
			name: "error cleared keeps status and identity",
			from: sessionState{status: StatusAuthenticated, identity: id, failure: failure},
			ev:   sessionEvent{kind: evErrorCleared},
			want: sessionState{status: StatusAuthenticated, identity: id},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := transition(tc.from, tc.ev)
			if got.status != tc.want.status {
				t.Fatalf("status: got %v, want %v", got.status, tc.want.status)
			}
			if got.identity != tc.want.identity {
				t.Fatalf("identity: got %v, want %v", got.identity, tc.want.identity)
			}
			if got.failure != tc.want.failure {
				t.Fatalf("failure: got %v, want %v", got.failure, tc.want.failure)
			}
		})
	}
}

func TestRestoreEmptyStoreResolvesUnauthenticated(t *testing.T) {
	store := &memStore{}
	s := newTestSession(store, &stubBackend{})

	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := s.Status(); got != StatusUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", got)
	}
}

func TestRestoreHalfPairClearsStore(t *testing.T) {
	store := &memStore{access: "orphaned-access"}
	s := newTestSession(store, &stubBackend{})

	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := s.Status(); got != StatusUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", got)
	}
	if store.clears == 0 {
		t.Fatal("expected half-present pair to be cleared")
	}
}

func TestRestoreValidPairAuthenticates(t *testing.T) {
	access := signedToken(t, time.Now().Add(time.Hour))
	store := &memStore{access: access, refresh: "refresh-1"}
	backend := &stubBackend{
		userFn: func(ctx context.Context, got string) (*UserIdentity, error) {
			if got != access {
				t.Fatalf("unexpected access credential: %q", got)
			}
			return testIdentity(), nil
		},
	}
	s := newTestSession(store, backend)

	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := s.Status(); got != StatusAuthenticated {
		t.Fatalf("expected authenticated, got %v", got)
	}
	id, ok := s.Identity()
	if !ok || id.ID != "user-1" {
		t.Fatalf("expected identity snapshot, got %+v ok=%v", id, ok)
	}
}

func TestRestoreExpiredAccessRefreshesOnce(t *testing.T) {
	fresh := signedToken(t, time.Now().Add(time.Hour))
	store := &memStore{access: "stale", refresh: "refresh-1"}
	backend := &stubBackend{
		userFn: func(ctx context.Context, access string) (*UserIdentity, error) {
			if access == "stale" {
				return nil, ErrUnauthorized
			}
			return testIdentity(), nil
		},
		refreshFn: func(ctx context.Context, refresh string) (string, error) {
			return fresh, nil
		},
	}
	s := newTestSession(store, backend)

	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if got := s.Status(); got != StatusAuthenticated {
		t.Fatalf("expected authenticated, got %v", got)
	}
	access, refresh := store.pair()
	if access != fresh || refresh != "refresh-1" {
		t.Fatalf("expected refreshed access half only, got %q/%q", access, refresh)
	}
}

func TestRestoreRejectedPairResolvesUnauthenticated(t *testing.T) {
	store := &memStore{access: "stale", refresh: "revoked"}
	backend := &stubBackend{
		userFn: func(ctx context.Context, access string) (*UserIdentity, error) {
			return nil, ErrUnauthorized
		},
		refreshFn: func(ctx context.Context, refresh string) (string, error) {
			return "", ErrInvalidCredentials
		},
	}
	s := newTestSession(store, backend)

	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("stale session is not an error, got %v", err)
	}
	if got := s.Status(); got != StatusUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", got)
	}
	if access, refresh := store.pair(); access != "" || refresh != "" {
		t.Fatalf("expected cleared store, got %q/%q", access, refresh)
	}
}

func TestRestoreStoreFailureIsReturned(t *testing.T) {
	storeErr := errors.New("redis down")
	store := &memStore{failLoad: storeErr}
	s := newTestSession(store, &stubBackend{})

	err := s.Restore(context.Background())
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected wrapped store failure, got %v", err)
	}
}

func TestLoginBeforeRestoreRejected(t *testing.T) {
	s := newTestSession(&memStore{}, &stubBackend{})

	err := s.Login(context.Background(), LoginCredentials{Email: "a@b.c", Password: "pw"})
	if !errors.Is(err, ErrRestorePending) {
		t.Fatalf("expected ErrRestorePending, got %v", err)
	}
}

func TestLoginSuccessPersistsPair(t *testing.T) {
	store := &memStore{}
	backend := &stubBackend{
		loginFn: func(ctx context.Context, creds LoginCredentials) (*UserIdentity, string, string, error) {
			return testIdentity(), "access-1", "refresh-1", nil
		},
	}
	s := newTestSession(store, backend)
	restoreEmpty(t, s)

	if err := s.Login(context.Background(), LoginCredentials{Email: "alice@example.com", Password: "correct"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if got := s.Status(); got != StatusAuthenticated {
		t.Fatalf("expected authenticated, got %v", got)
	}
	if access, refresh := store.pair(); access != "access-1" || refresh != "refresh-1" {
		t.Fatalf("expected persisted pair, got %q/%q", access, refresh)
	}
}

func TestLoginRejectionMovesToFailed(t *testing.T) {
	store := &memStore{}
	backend := &stubBackend{
		loginFn: func(ctx context.Context, creds LoginCredentials) (*UserIdentity, string, string, error) {
			return nil, "", "", ErrInvalidCredentials
		},
	}
	s := newTestSession(store, backend)
	restoreEmpty(t, s)

	err := s.Login(context.Background(), LoginCredentials{Email: "alice@example.com", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if got := s.Status(); got != StatusFailed {
		t.Fatalf("expected failed, got %v", got)
	}
	if !errors.Is(s.Failure(), ErrInvalidCredentials) {
		t.Fatalf("expected recorded failure, got %v", s.Failure())
	}
	if store.saves != 0 {
		t.Fatal("no token write may happen on a rejected login")
	}

	// A failed session accepts the next attempt.
	backend.loginFn = func(ctx context.Context, creds LoginCredentials) (*UserIdentity, string, string, error) {
		return testIdentity(), "access-2", "refresh-2", nil
	}
	if err := s.Login(context.Background(), LoginCredentials{Email: "alice@example.com", Password: "correct"}); err != nil {
		t.Fatalf("retry login: %v", err)
	}
	if got := s.Status(); got != StatusAuthenticated {
		t.Fatalf("expected authenticated after retry, got %v", got)
	}
}

func TestLoginWhileAuthenticatedRejected(t *testing.T) {
	store := &memStore{}
	backend := &stubBackend{
		loginFn: func(ctx context.Context, creds LoginCredentials) (*UserIdentity, string, string, error) {
			return testIdentity(), "access-1", "refresh-1", nil
		},
	}
	s := newTestSession(store, backend)
	restoreEmpty(t, s)
	if err := s.Login(context.Background(), LoginCredentials{Email: "a@b.c", Password: "pw"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	err := s.Login(context.Background(), LoginCredentials{Email: "a@b.c", Password: "pw"})
	if !errors.Is(err, ErrAlreadyAuthenticated) {
		t.Fatalf("expected ErrAlreadyAuthenticated, got %v", err)
	}
}

func TestRegisterLocalValidationSkipsNetwork(t *testing.T) {
	calls := 0
	backend := &stubBackend{
		registerFn: func(ctx context.Context, creds RegisterCredentials) (*UserIdentity, string, string, error) {
			calls++
			return testIdentity(), "a", "r", nil
		},
	}
	s := newTestSession(&memStore{}, backend)
	restoreEmpty(t, s)

	err := s.Register(context.Background(), RegisterCredentials{
		Email:           "alice@example.com",
		Username:        "alice",
		Password:        "short",
		PasswordConfirm: "short",
	})
	ve, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, found := ve.Fields["password"]; !found {
		t.Fatalf("expected password field detail, got %v", ve.Fields)
	}
	if calls != 0 {
		t.Fatal("local validation must not reach the backend")
	}
	if got := s.Status(); got != StatusFailed {
		t.Fatalf("expected failed, got %v", got)
	}
}

func TestRegisterValidationFields(t *testing.T) {
	tests := []struct {
		name  string
		creds RegisterCredentials
		field string
	}{
		{"missing email", RegisterCredentials{Username: "u", Password: "longenough", PasswordConfirm: "longenough"}, "email"},
		{"missing username", RegisterCredentials{Email: "a@b.c", Password: "longenough", PasswordConfirm: "longenough"}, "username"},
		{"missing password", RegisterCredentials{Email: "a@b.c", Username: "u"}, "password"},
		{"mismatched confirm", RegisterCredentials{Email: "a@b.c", Username: "u", Password: "longenough", PasswordConfirm: "different"}, "password_confirm"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ve := validateRegistration(tc.creds, 8)
			if ve == nil {
				t.Fatal("expected a validation error")
			}
			if _, ok := ve.Fields[tc.field]; !ok {
				t.Fatalf("expected %q in %v", tc.field, ve.Fields)
			}
		})
	}

	if ve := validateRegistration(RegisterCredentials{
		Email:           "a@b.c",
		Username:        "u",
		Password:        "longenough",
		PasswordConfirm: "longenough",
	}, 8); ve != nil {
		t.Fatalf("expected valid credentials, got %v", ve)
	}
}

func TestRegisterSuccessSignsIn(t *testing.T) {
	store := &memStore{}
	backend := &stubBackend{
		registerFn: func(ctx context.Context, creds RegisterCredentials) (*UserIdentity, string, string, error) {
			return testIdentity(), "access-1", "refresh-1", nil
		},
	}
	s := newTestSession(store, backend)
	restoreEmpty(t, s)

	err := s.Register(context.Background(), RegisterCredentials{
		Email:           "alice@example.com",
		Username:        "alice",
		Password:        "longenough",
		PasswordConfirm: "longenough",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if got := s.Status(); got != StatusAuthenticated {
		t.Fatalf("expected authenticated, got %v", got)
	}
	if access, _ := store.pair(); access != "access-1" {
		t.Fatal("expected persisted pair after register")
	}
}

func TestLogoutClearsLocallyAndNotifiesBackend(t *testing.T) {
	store := &memStore{access: "access-1", refresh: "refresh-1"}
	backend := &stubBackend{
		userFn: func(ctx context.Context, access string) (*UserIdentity, error) {
			return testIdentity(), nil
		},
	}
	s := newTestSession(store, backend)
	// Avoid the refresh path in restore.
	store.access = signedToken(t, time.Now().Add(time.Hour))
	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if err := s.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if got := s.Status(); got != StatusUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", got)
	}
	if access, refresh := store.pair(); access != "" || refresh != "" {
		t.Fatalf("expected cleared store, got %q/%q", access, refresh)
	}
	if backend.logoutCalls() != 1 {
		t.Fatalf("expected one remote logout, got %d", backend.logoutCalls())
	}
}

func TestLogoutIgnoresRemoteFailure(t *testing.T) {
	store := &memStore{access: signedToken(t, time.Now().Add(time.Hour)), refresh: "refresh-1"}
	backend := &stubBackend{
		userFn: func(ctx context.Context, access string) (*UserIdentity, error) {
			return testIdentity(), nil
		},
		logoutFn: func(ctx context.Context, access, refresh string) error {
			return ErrNetwork
		},
	}
	s := newTestSession(store, backend)
	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}

	if err := s.Logout(context.Background()); err != nil {
		t.Fatalf("remote failure must not surface, got %v", err)
	}
	if got := s.Status(); got != StatusUnauthenticated {
		t.Fatalf("expected unauthenticated, got %v", got)
	}
}

func TestLogoutWithoutSessionSkipsBackend(t *testing.T) {
	store := &memStore{}
	backend := &stubBackend{}
	s := newTestSession(store, backend)
	restoreEmpty(t, s)

	if err := s.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if backend.logoutCalls() != 0 {
		t.Fatal("no stored refresh credential, no remote call")
	}
}

func TestAccessTokenFreshPassesThrough(t *testing.T) {
	access := signedToken(t, time.Now().Add(time.Hour))
	store := &memStore{access: access, refresh: "refresh-1"}
	refreshes := 0
	backend := &stubBackend{
		userFn: func(ctx context.Context, access string) (*UserIdentity, error) {
			return testIdentity(), nil
		},
		refreshFn: func(ctx context.Context, refresh string) (string, error) {
			refreshes++
			return "unexpected", nil
		},
	}
	s := newTestSession(store, backend)
	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}

	got, err := s.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("access token: %v", err)
	}
	if got != access {
		t.Fatalf("expected stored credential back, got %q", got)
	}
	if refreshes != 0 {
		t.Fatal("fresh credential must not be exchanged")
	}
}

func TestAccessTokenExpiringIsExchanged(t *testing.T) {
	expiring := signedToken(t, time.Now().Add(5*time.Second))
	fresh := signedToken(t, time.Now().Add(time.Hour))
	store := &memStore{access: expiring, refresh: "refresh-1"}
	backend := &stubBackend{
		userFn: func(ctx context.Context, access string) (*UserIdentity, error) {
			return testIdentity(), nil
		},
		refreshFn: func(ctx context.Context, refresh string) (string, error) {
			if refresh != "refresh-1" {
				t.Fatalf("unexpected refresh credential: %q", refresh)
			}
			return fresh, nil
		},
	}
	s := newTestSession(store, backend)
	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}

	got, err := s.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("access token: %v", err)
	}
	if got != fresh {
		t.Fatalf("expected exchanged credential, got %q", got)
	}
	if access, refresh := store.pair(); access != fresh || refresh != "refresh-1" {
		t.Fatalf("expected only the access half rewritten, got %q/%q", access, refresh)
	}
}

func TestAccessTokenRefreshRejectionIsTerminal(t *testing.T) {
	expiring := signedToken(t, time.Now().Add(5*time.Second))
	store := &memStore{access: expiring, refresh: "refresh-1"}
	backend := &stubBackend{
		// The stored credential still authenticates the identity fetch, so
		// restore succeeds without an exchange.
		userFn: func(ctx context.Context, access string) (*UserIdentity, error) {
			return testIdentity(), nil
		},
		refreshFn: func(ctx context.Context, refresh string) (string, error) {
			return "", ErrInvalidCredentials
		},
	}
	s := newTestSession(store, backend)
	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}

	_, err := s.AccessToken(context.Background())
	if !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid, got %v", err)
	}
	if got := s.Status(); got != StatusUnauthenticated {
		t.Fatalf("expected unauthenticated after terminal refresh, got %v", got)
	}
	if access, refresh := store.pair(); access != "" || refresh != "" {
		t.Fatalf("expected cleared store, got %q/%q", access, refresh)
	}
}

func TestLogoutDiscardsInFlightRefresh(t *testing.T) {
	expiring := signedToken(t, time.Now().Add(5*time.Second))
	store := &memStore{access: expiring, refresh: "refresh-1"}

	entered := make(chan struct{})
	release := make(chan struct{})
	backend := &stubBackend{
		userFn: func(ctx context.Context, access string) (*UserIdentity, error) {
			return testIdentity(), nil
		},
		refreshFn: func(ctx context.Context, refresh string) (string, error) {
			close(entered)
			<-release
			return "late-access", nil
		},
	}
	s := newTestSession(store, backend)
	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.AccessToken(context.Background())
		done <- err
	}()

	<-entered
	if err := s.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	close(release)

	if err := <-done; !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected stale exchange to be discarded, got %v", err)
	}
	if access, refresh := store.pair(); access != "" || refresh != "" {
		t.Fatalf("late refresh result leaked into cleared store: %q/%q", access, refresh)
	}
}

func TestAccessTokenRequiresAuthenticated(t *testing.T) {
	s := newTestSession(&memStore{}, &stubBackend{})
	restoreEmpty(t, s)

	_, err := s.AccessToken(context.Background())
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestIsAuthorizedRoles(t *testing.T) {
	store := &memStore{access: signedToken(t, time.Now().Add(time.Hour)), refresh: "r"}
	staff := testIdentity()
	staff.IsStaff = true
	backend := &stubBackend{
		userFn: func(ctx context.Context, access string) (*UserIdentity, error) {
			return staff, nil
		},
	}
	s := newTestSession(store, backend)

	if s.IsAuthorized(RoleMember) {
		t.Fatal("no identity, no authorization")
	}
	if err := s.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !s.IsAuthorized(RoleMember) || !s.IsAdmin() {
		t.Fatal("staff identity must satisfy both roles")
	}
}

func TestClearErrorKeepsState(t *testing.T) {
	backend := &stubBackend{
		loginFn: func(ctx context.Context, creds LoginCredentials) (*UserIdentity, string, string, error) {
			return nil, "", "", ErrInvalidCredentials
		},
	}
	s := newTestSession(&memStore{}, backend)
	restoreEmpty(t, s)
	_ = s.Login(context.Background(), LoginCredentials{Email: "a@b.c", Password: "wrong"})

	s.ClearError()
	if s.Failure() != nil {
		t.Fatalf("expected cleared failure, got %v", s.Failure())
	}
}

func TestAccessExpiring(t *testing.T) {
	leeway := 30 * time.Second

	if accessExpiring(signedToken(t, time.Now().Add(time.Hour)), leeway) {
		t.Fatal("credential an hour out is not expiring")
	}
	if !accessExpiring(signedToken(t, time.Now().Add(5*time.Second)), leeway) {
		t.Fatal("credential inside the leeway is expiring")
	}
	if !accessExpiring(signedToken(t, time.Now().Add(-time.Minute)), leeway) {
		t.Fatal("expired credential is expiring")
	}
	if !accessExpiring("not-a-jwt", leeway) {
		t.Fatal("unparseable credential is treated as expiring")
	}
}
