package quizkit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionStatus is the authentication lifecycle state.
type SessionStatus uint8

const (
	StatusIdle SessionStatus = iota
	StatusRestoring
	StatusAuthenticating
	StatusAuthenticated
	StatusUnauthenticated
	StatusFailed
)

func (s SessionStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRestoring:
		return "restoring"
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Role is a coarse authorization role derived from the identity snapshot.
type Role uint8

const (
	// RoleMember is any signed-in user.
	RoleMember Role = iota
	// RoleAdmin requires a staff identity.
	RoleAdmin
)

type sessionEventKind uint8

const (
	evRestoreStarted sessionEventKind = iota
	evAuthStarted
	evAuthSucceeded
	evAuthFailed
	evSignedOut
	evErrorCleared
)

type sessionEvent struct {
	kind     sessionEventKind
	identity *UserIdentity
	failure  error
}

// sessionState is the tagged-union session state. An identity is present
// exactly when status is StatusAuthenticated.
type sessionState struct {
	status   SessionStatus
	identity *UserIdentity
	failure  error
}

// transition is the pure state function: no I/O, no side effects. All
// session mutation funnels through it.
func transition(s sessionState, ev sessionEvent) sessionState {
	switch ev.kind {
	case evRestoreStarted:
		return sessionState{status: StatusRestoring}
	case evAuthStarted:
		return sessionState{status: StatusAuthenticating}
	case evAuthSucceeded:
		return sessionState{status: StatusAuthenticated, identity: ev.identity}
	case evAuthFailed:
		return sessionState{status: StatusFailed, failure: ev.failure}
	case evSignedOut:
		return sessionState{status: StatusUnauthenticated}
	case evErrorCleared:
		return sessionState{status: s.status, identity: s.identity}
	default:
		return s
	}
}

// Session is the authentication session state machine. It owns the current
// identity snapshot and the durable credentials pair; nothing else writes
// tokens.
type Session struct {
	mu    sync.Mutex
	state sessionState
	// gen is bumped on logout so an in-flight refresh result is discarded
	// instead of being written back into a cleared store.
	gen uint64

	store   TokenStore
	backend AuthBackend
	auth    AuthConfig
	logoutT time.Duration
	metrics *Metrics
}

// NewSession wires a session over its token store and auth backend. Most
// callers obtain one through [Builder.Build] instead.
func NewSession(store TokenStore, backend AuthBackend, cfg Config, metrics *Metrics) *Session {
	return &Session{
		store:   store,
		backend: backend,
		auth:    cfg.Auth,
		logoutT: cfg.Backend.LogoutTimeout,
		metrics: metrics,
	}
}

// Status returns the externally observable session status.
func (s *Session) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.status
}

// Identity returns the current identity snapshot. ok is false in every
// status except StatusAuthenticated.
func (s *Session) Identity() (UserIdentity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.identity == nil {
		return UserIdentity{}, false
	}
	return *s.state.identity, true
}

// Failure returns the failure recorded by the last rejected operation, if
// the session is in StatusFailed.
func (s *Session) Failure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.failure
}

// ClearError resets the recorded failure without any I/O or state change.
func (s *Session) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = transition(s.state, sessionEvent{kind: evErrorCleared})
}

// IsAuthorized is a pure read of the identity snapshot. An absent identity
// is false for every role.
func (s *Session) IsAuthorized(role Role) bool {
	id, ok := s.Identity()
	if !ok {
		return false
	}
	if role == RoleAdmin {
		return id.IsStaff
	}
	return true
}

// IsAdmin reports whether the signed-in user is staff.
func (s *Session) IsAdmin() bool { return s.IsAuthorized(RoleAdmin) }

// Restore rebuilds the session from the durable credentials pair at startup.
// A missing or half-present pair, and a stored pair the backend no longer
// accepts, both resolve to StatusUnauthenticated with the store cleared;
// neither is an error. Only token-store I/O failures are returned.
func (s *Session) Restore(ctx context.Context) error {
	s.mu.Lock()
	switch s.state.status {
	case StatusRestoring, StatusAuthenticating:
		s.mu.Unlock()
		return ErrOperationInFlight
	case StatusAuthenticated:
		s.mu.Unlock()
		return ErrAlreadyAuthenticated
	}
	s.state = transition(s.state, sessionEvent{kind: evRestoreStarted})
	gen := s.gen
	s.mu.Unlock()

	access, refresh, err := s.store.Load(ctx)
	if err != nil {
		s.applyIfCurrent(gen, sessionEvent{kind: evSignedOut})
		s.metrics.Inc(MetricRestoreFailure)
		return fmt.Errorf("load credentials: %w", err)
	}
	if access == "" || refresh == "" {
		if err := s.store.Clear(ctx); err != nil {
			log.Print("quizkit: credential clear failed during restore")
		}
		s.applyIfCurrent(gen, sessionEvent{kind: evSignedOut})
		s.metrics.Inc(MetricRestoreFailure)
		return nil
	}

	identity, err := s.backend.CurrentUser(ctx, access)
	if err != nil && (errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrInvalidCredentials)) {
		// Expired access credential: one refresh exchange, then refetch.
		var newAccess string
		newAccess, err = s.refreshAccess(ctx, gen, refresh)
		if err == nil {
			identity, err = s.backend.CurrentUser(ctx, newAccess)
		}
	}
	if err != nil {
		if cerr := s.store.Clear(ctx); cerr != nil {
			log.Print("quizkit: credential clear failed during restore")
		}
		s.applyIfCurrent(gen, sessionEvent{kind: evSignedOut})
		s.metrics.Inc(MetricRestoreFailure)
		return nil
	}

	s.applyIfCurrent(gen, sessionEvent{kind: evAuthSucceeded, identity: identity})
	s.metrics.Inc(MetricRestoreSuccess)
	return nil
}

// Login authenticates with email and password. It is accepted only once the
// startup restore has completed and only from a non-authenticated state. On
// failure the session moves to StatusFailed with the reason attached and no
// partial token write occurs.
func (s *Session) Login(ctx context.Context, creds LoginCredentials) error {
	gen, err := s.beginAuth()
	if err != nil {
		return err
	}

	identity, access, refresh, err := s.backend.Login(ctx, creds)
	if err != nil {
		s.applyIfCurrent(gen, sessionEvent{kind: evAuthFailed, failure: err})
		s.metrics.Inc(MetricLoginFailure)
		return err
	}
	if err := s.store.Save(ctx, access, refresh); err != nil {
		err = fmt.Errorf("persist credentials: %w", err)
		s.applyIfCurrent(gen, sessionEvent{kind: evAuthFailed, failure: err})
		s.metrics.Inc(MetricLoginFailure)
		return err
	}

	s.applyIfCurrent(gen, sessionEvent{kind: evAuthSucceeded, identity: identity})
	s.metrics.Inc(MetricLoginSuccess)
	return nil
}

// Register creates an account and signs in. Local validation (matching
// passwords, minimum length, required fields) runs before any network call;
// a local [ValidationError] performs no I/O.
func (s *Session) Register(ctx context.Context, creds RegisterCredentials) error {
	gen, err := s.beginAuth()
	if err != nil {
		return err
	}

	if ve := validateRegistration(creds, s.auth.PasswordMinLength); ve != nil {
		s.applyIfCurrent(gen, sessionEvent{kind: evAuthFailed, failure: ve})
		s.metrics.Inc(MetricRegisterFailure)
		return ve
	}

	identity, access, refresh, err := s.backend.Register(ctx, creds)
	if err != nil {
		s.applyIfCurrent(gen, sessionEvent{kind: evAuthFailed, failure: err})
		s.metrics.Inc(MetricRegisterFailure)
		return err
	}
	if err := s.store.Save(ctx, access, refresh); err != nil {
		err = fmt.Errorf("persist credentials: %w", err)
		s.applyIfCurrent(gen, sessionEvent{kind: evAuthFailed, failure: err})
		s.metrics.Inc(MetricRegisterFailure)
		return err
	}

	s.applyIfCurrent(gen, sessionEvent{kind: evAuthSucceeded, identity: identity})
	s.metrics.Inc(MetricRegisterSuccess)
	return nil
}

// Logout clears local state unconditionally and invalidates the refresh
// credential server-side on a best-effort basis; a remote failure is logged
// and ignored. Any in-flight refresh exchange becomes stale: its result will
// not be written back.
func (s *Session) Logout(ctx context.Context) error {
	access, refresh, loadErr := s.store.Load(ctx)

	s.mu.Lock()
	s.gen++
	s.state = transition(s.state, sessionEvent{kind: evSignedOut})
	clearErr := s.store.Clear(ctx)
	s.mu.Unlock()

	s.metrics.Inc(MetricLogout)

	if loadErr == nil && refresh != "" {
		lctx, cancel := context.WithTimeout(ctx, s.logoutT)
		defer cancel()
		if err := s.backend.Logout(lctx, access, refresh); err != nil {
			log.Print("quizkit: remote logout failed")
		}
	}
	if clearErr != nil {
		return fmt.Errorf("clear credentials: %w", clearErr)
	}
	return nil
}

// AccessToken returns an access credential usable for an authorized call,
// exchanging the refresh credential first when the current one is expired or
// about to expire. A failed exchange is terminal: the session becomes
// StatusUnauthenticated and the store is cleared.
func (s *Session) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	status := s.state.status
	gen := s.gen
	s.mu.Unlock()
	if status != StatusAuthenticated {
		return "", ErrNotAuthenticated
	}

	access, refresh, err := s.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load credentials: %w", err)
	}
	if access == "" || refresh == "" {
		return "", ErrNotAuthenticated
	}
	if !accessExpiring(access, s.auth.RefreshLeeway) {
		return access, nil
	}
	return s.refreshAccess(ctx, gen, refresh)
}

// refreshAccess exchanges the refresh credential for a new access credential
// and overwrites only the access half of the stored pair. The write is
// skipped when the session generation moved on (logout raced the exchange).
func (s *Session) refreshAccess(ctx context.Context, gen uint64, refresh string) (string, error) {
	access, err := s.backend.RefreshAccess(ctx, refresh)
	if err != nil {
		if cerr := s.store.Clear(ctx); cerr != nil {
			log.Print("quizkit: credential clear failed after refresh rejection")
		}
		s.applyIfCurrent(gen, sessionEvent{kind: evSignedOut})
		s.metrics.Inc(MetricRefreshFailure)
		return "", fmt.Errorf("%w: %v", ErrRefreshInvalid, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		// Logged out while the exchange was in flight; discard the result.
		return "", ErrNotAuthenticated
	}
	if err := s.store.SaveAccess(ctx, access); err != nil {
		return "", fmt.Errorf("persist access credential: %w", err)
	}
	s.metrics.Inc(MetricRefreshSuccess)
	return access, nil
}

func (s *Session) beginAuth() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state.status {
	case StatusIdle:
		return 0, ErrRestorePending
	case StatusRestoring, StatusAuthenticating:
		return 0, ErrOperationInFlight
	case StatusAuthenticated:
		return 0, ErrAlreadyAuthenticated
	}
	s.state = transition(s.state, sessionEvent{kind: evAuthStarted})
	return s.gen, nil
}

func (s *Session) applyIfCurrent(gen uint64, ev sessionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	s.state = transition(s.state, ev)
}

func validateRegistration(creds RegisterCredentials, minLen int) *ValidationError {
	fields := map[string]string{}
	if creds.Email == "" {
		fields["email"] = "required"
	}
	if creds.Username == "" {
		fields["username"] = "required"
	}
	if creds.Password == "" {
		fields["password"] = "required"
	} else if len(creds.Password) < minLen {
		fields["password"] = fmt.Sprintf("must be at least %d characters", minLen)
	}
	if creds.PasswordConfirm != creds.Password {
		fields["password_confirm"] = "passwords do not match"
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// accessExpiring inspects the unverified exp claim of the access credential.
// Signature verification is the backend's job; the client only needs the
// deadline. Unparseable tokens are treated as expiring so the next call
// exchanges them.
func accessExpiring(access string, leeway time.Duration) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(access, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return time.Until(claims.ExpiresAt.Time) <= leeway
}
