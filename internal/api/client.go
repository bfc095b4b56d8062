// Package api is the wire-level client for the e-learning REST backend.
// It owns endpoint paths, DTO shapes, and HTTP status normalization; domain
// conversion happens in the root package.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrTransport marks failures below the HTTP layer: connection refused, DNS,
// timeouts. Anything the backend answered is a *StatusError instead.
var ErrTransport = errors.New("transport failure")

// StatusError is a non-2xx backend response with whatever structure the
// backend attached: a detail message and, for 400s, field-level errors.
type StatusError struct {
	Code   int
	Detail string
	Fields map[string]string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned %d", e.Code)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Code, e.Detail)
}

// TokenSource supplies the bearer credential for authorized calls.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// Client is the HTTP client for one backend base URL.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
}

// New builds a client. tokens may be nil for anonymous use; authorized
// endpoints then fail at the backend, not in the client.
func New(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: timeout},
		tokens: tokens,
	}
}

// SetTokenSource attaches the bearer credential supplier after construction.
// The builder needs this because the session that supplies tokens is itself
// constructed over this client.
func (c *Client) SetTokenSource(tokens TokenSource) { c.tokens = tokens }

type callOpts struct {
	method string
	path   string
	query  url.Values
	body   any
	// bearer attaches the token source credential; bearerToken overrides it
	// with an explicit credential (used by the auth flows that manage the
	// pair themselves).
	bearer      bool
	bearerToken string
	out         any
}

func (c *Client) call(ctx context.Context, opts callOpts) error {
	u := c.base + opts.path
	if len(opts.query) > 0 {
		u += "?" + opts.query.Encode()
	}

	var body io.Reader
	if opts.body != nil {
		payload, err := json.Marshal(opts.body)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, opts.method, u, body)
	if err != nil {
		return err
	}
	if opts.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := opts.bearerToken
	if token == "" && opts.bearer && c.tokens != nil {
		token, err = c.tokens.AccessToken(ctx)
		if err != nil {
			return err
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeStatusError(resp)
	}
	if opts.out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(opts.out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeStatusError pulls the backend's detail/message plus any field-level
// validation map out of an error body. Bodies that are not JSON objects are
// tolerated; the status code alone still classifies the failure.
func decodeStatusError(resp *http.Response) error {
	se := &StatusError{Code: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil || len(raw) == 0 {
		return se
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return se
	}
	for _, key := range []string{"detail", "message"} {
		var s string
		if msg, ok := payload[key]; ok && json.Unmarshal(msg, &s) == nil && s != "" {
			se.Detail = s
			break
		}
	}

	// DRF-style field errors: {"email": ["already in use"], ...}.
	for field, msg := range payload {
		if field == "detail" || field == "message" {
			continue
		}
		var list []string
		if json.Unmarshal(msg, &list) == nil && len(list) > 0 {
			if se.Fields == nil {
				se.Fields = map[string]string{}
			}
			se.Fields[field] = list[0]
			continue
		}
		var s string
		if json.Unmarshal(msg, &s) == nil && s != "" {
			if se.Fields == nil {
				se.Fields = map[string]string{}
			}
			se.Fields[field] = s
		}
	}
	if se.Detail == "" && len(se.Fields) > 0 {
		for field, msg := range se.Fields {
			se.Detail = field + ": " + msg
			break
		}
	}
	return se
}
