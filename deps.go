package quizkit

import "context"

// TokenStore is the durable holder of the credentials pair. Implementations
// must keep the pair all-or-nothing: a reader must never observe one half of
// the pair as the result of Clear alone. Tokens are opaque strings.
//
// The tokenstore sub-package provides the Redis-backed implementation.
type TokenStore interface {
	// Save persists both halves of the pair.
	Save(ctx context.Context, access, refresh string) error
	// SaveAccess overwrites only the access half, leaving refresh intact.
	SaveAccess(ctx context.Context, access string) error
	// Load returns the stored pair. Both strings empty (and a nil error)
	// means no session; a half-present pair is reported the same way.
	Load(ctx context.Context) (access, refresh string, err error)
	// Clear removes both halves atomically.
	Clear(ctx context.Context) error
}

// AuthBackend is the remote authentication contract consumed by [Session].
// Implementations return taxonomy errors (see errors.go); the default
// implementation wraps internal/api.
type AuthBackend interface {
	Login(ctx context.Context, creds LoginCredentials) (*UserIdentity, string, string, error)
	Register(ctx context.Context, creds RegisterCredentials) (*UserIdentity, string, string, error)
	// Logout invalidates the refresh credential server-side. Best effort:
	// the session ignores its error.
	Logout(ctx context.Context, access, refresh string) error
	// RefreshAccess exchanges the refresh credential for a new access
	// credential.
	RefreshAccess(ctx context.Context, refresh string) (string, error)
	CurrentUser(ctx context.Context, access string) (*UserIdentity, error)
}

// CatalogClient is the read-only question source consumed by [QuizEngine].
type CatalogClient interface {
	ListGenres(ctx context.Context) ([]Genre, error)
	// ListRandomQuestions returns up to count questions, optionally scoped
	// to a genre. The returned order is the attempt order.
	ListRandomQuestions(ctx context.Context, genreID string, count int) ([]Question, error)
	// ListIncorrectQuestions returns previously incorrectly answered
	// questions. An empty result is not an error.
	ListIncorrectQuestions(ctx context.Context, genreID string, limit int) ([]Question, error)
}

// ProgressRecorder is the persistence sink a completed genre attempt is
// reported to. Failures must not corrupt in-memory quiz state.
type ProgressRecorder interface {
	SaveAttempt(ctx context.Context, result AttemptResult) error
}
