package quizkit

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/elearnlabs/quizkit/internal/api"
	"github.com/elearnlabs/quizkit/tokenstore"
)

// Builder assembles a [Client]. Construction is allocation-only; no I/O
// happens before the first engine call.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	store  TokenStore

	built bool
}

// New starts a builder with default configuration.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis supplies the Redis client backing the durable token store.
func (b *Builder) WithRedis(rdb redis.UniversalClient) *Builder {
	b.redis = rdb
	return b
}

// WithTokenStore overrides the token store entirely. When set, no Redis
// client is required; tests use this to substitute an in-memory store.
func (b *Builder) WithTokenStore(store TokenStore) *Builder {
	b.store = store
	return b
}

// Build validates the configuration and dependencies and assembles the
// client. A builder can be used once.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if err := b.config.Validate(); err != nil {
		return nil, err
	}

	store := b.store
	if store == nil {
		if b.redis == nil {
			return nil, errors.New("redis client required (or provide a token store)")
		}
		store = tokenstore.NewStore(b.redis, b.config.TokenStore.Prefix)
	}

	metrics := NewMetrics(b.config.Metrics)
	wire := api.New(b.config.Backend.BaseURL, b.config.Backend.Timeout, nil)
	session := NewSession(store, &apiAuthBackend{api: wire}, b.config, metrics)
	// Authorized catalog/progress calls pull their bearer credential from
	// the session, which may refresh it on the way out.
	wire.SetTokenSource(session)

	client := &Client{
		config:   b.config,
		api:      wire,
		session:  session,
		catalog:  &apiCatalog{api: wire},
		recorder: &apiRecorder{api: wire},
		metrics:  metrics,
	}

	b.built = true
	return client, nil
}
