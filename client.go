package quizkit

import (
	"github.com/elearnlabs/quizkit/internal/api"
)

// Client is the assembled engine facade: one authentication session, a quiz
// engine factory, and the progress/admin surfaces, all sharing the same wire
// client and metrics.
type Client struct {
	config   Config
	api      *api.Client
	session  *Session
	catalog  CatalogClient
	recorder ProgressRecorder
	metrics  *Metrics
}

// Session returns the authentication session. There is exactly one per
// client.
func (c *Client) Session() *Session {
	return c.session
}

// Catalog returns the read-only question source.
func (c *Client) Catalog() CatalogClient {
	return c.catalog
}

// NewQuiz creates a quiz engine for one attempt sequence. Engines are cheap;
// create one per attempt flow and discard it.
func (c *Client) NewQuiz() *QuizEngine {
	return NewQuizEngine(c.catalog, c.recorder, c.config, c.metrics)
}

// Admin returns the administrator surface. Calls fail with [ErrUnauthorized]
// at the backend for non-staff sessions; use [Session.IsAdmin] to gate the
// UI.
func (c *Client) Admin() *Admin {
	return &Admin{api: c.api}
}

// MetricsSnapshot copies the in-process counters.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return c.metrics.Snapshot()
}
