package quizkit

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds all tunables for a [Client]. Instances are configured during
// initialization and treated as immutable afterwards.
type Config struct {
	Backend    BackendConfig
	Auth       AuthConfig
	Quiz       QuizConfig
	TokenStore TokenStoreConfig
	Metrics    MetricsConfig
}

// BackendConfig describes how to reach the REST backend.
type BackendConfig struct {
	BaseURL string
	// Timeout bounds every wire call; per-call contexts may shorten it.
	Timeout time.Duration
	// LogoutTimeout bounds the best-effort remote logout call only.
	LogoutTimeout time.Duration
}

// AuthConfig controls session behavior.
type AuthConfig struct {
	// PasswordMinLength is enforced locally before registration hits the
	// network.
	PasswordMinLength int
	// RefreshLeeway: when the access credential's exp claim is within this
	// window, the session exchanges the refresh credential before an
	// authorized call instead of letting the call fail.
	RefreshLeeway time.Duration
}

// QuizConfig controls attempt construction.
type QuizConfig struct {
	// QuestionCount requested per genre attempt.
	QuestionCount int
	// ReviewLimit requested per incorrect-review attempt.
	ReviewLimit int
}

// TokenStoreConfig namespaces the durable credential keys.
type TokenStoreConfig struct {
	Prefix string
}

// MetricsConfig toggles the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			Timeout:       15 * time.Second,
			LogoutTimeout: 3 * time.Second,
		},
		Auth: AuthConfig{
			PasswordMinLength: 8,
			RefreshLeeway:     30 * time.Second,
		},
		Quiz: QuizConfig{
			QuestionCount: 10,
			ReviewLimit:   10,
		},
		TokenStore: TokenStoreConfig{
			Prefix: "qk",
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Validate reports the first structural problem with the config.
func (c Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("Backend.BaseURL is required")
	}
	if c.Backend.Timeout <= 0 {
		return errors.New("Backend.Timeout must be positive")
	}
	if c.Auth.PasswordMinLength < 1 {
		return errors.New("Auth.PasswordMinLength must be positive")
	}
	if c.Quiz.QuestionCount < 1 {
		return errors.New("Quiz.QuestionCount must be positive")
	}
	if c.Quiz.ReviewLimit < 1 {
		return errors.New("Quiz.ReviewLimit must be positive")
	}
	if c.TokenStore.Prefix == "" {
		return errors.New("TokenStore.Prefix is required")
	}
	return nil
}

// LoadConfigFromEnv builds a Config from environment variables, falling back
// to defaults for anything unset:
//
//	QUIZKIT_API_URL, QUIZKIT_HTTP_TIMEOUT, QUIZKIT_QUESTION_COUNT,
//	QUIZKIT_REVIEW_LIMIT, QUIZKIT_TOKEN_PREFIX
func LoadConfigFromEnv() Config {
	cfg := defaultConfig()
	cfg.Backend.BaseURL = getenv("QUIZKIT_API_URL", "http://localhost:8000")
	cfg.Backend.Timeout = getenvDuration("QUIZKIT_HTTP_TIMEOUT", cfg.Backend.Timeout)
	cfg.Quiz.QuestionCount = getenvInt("QUIZKIT_QUESTION_COUNT", cfg.Quiz.QuestionCount)
	cfg.Quiz.ReviewLimit = getenvInt("QUIZKIT_REVIEW_LIMIT", cfg.Quiz.ReviewLimit)
	cfg.TokenStore.Prefix = getenv("QUIZKIT_TOKEN_PREFIX", cfg.TokenStore.Prefix)
	return cfg
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
