// Package quizkit is the client-side session and quiz engine for the
// e-learning REST backend: authentication session lifecycle, the per-attempt
// quiz state machine, scoring, and completed-attempt persistence.
//
// The package is the public surface. It exposes [Client], [Builder], [Config],
// [Session], [QuizEngine], and the domain value types. Wire-level concerns
// (endpoint paths, DTO shapes, HTTP status mapping) live under internal/ and
// are never exported; durable credential storage lives in the tokenstore
// sub-package.
//
// # Architecture boundaries
//
//   - [Session] owns the credentials pair and the identity snapshot. Nothing
//     else writes tokens; the quiz engine only reads the access credential
//     through the session when authorizing catalog and persistence calls.
//   - [QuizEngine] is instantiated per attempt and never shares mutable state
//     with the session.
//   - The backend's authorization and scoring are trusted; the client does not
//     re-validate them.
//
// Engine methods are safe to call from multiple goroutines after construction
// through [Builder.Build], but the semantic model is single-threaded: one
// operation runs to completion before the next is accepted, and duplicate
// answer submissions are rejected rather than queued.
package quizkit
