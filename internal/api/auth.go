package api

import (
	"context"
	"net/http"
)

// User mirrors the backend account payload.
type User struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	Username   string  `json:"username"`
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	IsActive   bool    `json:"is_active"`
	IsStaff    bool    `json:"is_staff"`
	DateJoined string  `json:"date_joined"`
	LastLogin  *string `json:"last_login"`
}

// Tokens is the credentials pair as issued by the backend.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// AuthResponse is the login/register success payload.
type AuthResponse struct {
	User   User   `json:"user"`
	Tokens Tokens `json:"tokens"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email           string `json:"email"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type refreshResponse struct {
	Access string `json:"access"`
}

// Login exchanges email/password for an identity and a credentials pair.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.call(ctx, callOpts{
		method: http.MethodPost,
		path:   "/api/auth/login/",
		body:   loginRequest{Email: email, Password: password},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account; the backend signs the new account in and
// returns the same shape as Login.
func (c *Client) Register(ctx context.Context, email, username, password, passwordConfirm string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.call(ctx, callOpts{
		method: http.MethodPost,
		path:   "/api/auth/register/",
		body: registerRequest{
			Email:           email,
			Username:        username,
			Password:        password,
			PasswordConfirm: passwordConfirm,
		},
		out: &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout blacklists the refresh credential server-side.
func (c *Client) Logout(ctx context.Context, access, refresh string) error {
	return c.call(ctx, callOpts{
		method:      http.MethodPost,
		path:        "/api/auth/logout/",
		body:        refreshRequest{Refresh: refresh},
		bearerToken: access,
	})
}

// RefreshAccess mints a new access credential from the refresh credential.
func (c *Client) RefreshAccess(ctx context.Context, refresh string) (string, error) {
	var out refreshResponse
	err := c.call(ctx, callOpts{
		method: http.MethodPost,
		path:   "/api/auth/token/refresh/",
		body:   refreshRequest{Refresh: refresh},
		out:    &out,
	})
	if err != nil {
		return "", err
	}
	return out.Access, nil
}

// CurrentUser fetches the identity behind an access credential.
func (c *Client) CurrentUser(ctx context.Context, access string) (*User, error) {
	var out User
	err := c.call(ctx, callOpts{
		method:      http.MethodGet,
		path:        "/api/auth/user/",
		bearerToken: access,
		out:         &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
