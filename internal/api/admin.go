package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// AdminStats mirrors the backend's platform-level dashboard numbers.
type AdminStats struct {
	TotalUsers     int `json:"total_users"`
	TotalQuestions int `json:"total_questions"`
	TotalGenres    int `json:"total_genres"`
	TotalSessions  int `json:"total_sessions"`
}

// GenreInput is the create/update payload for a genre.
type GenreInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ChoiceInput is one choice inside a question create/update payload.
type ChoiceInput struct {
	Content    string `json:"content"`
	IsCorrect  bool   `json:"is_correct"`
	OrderIndex int    `json:"order_index"`
}

// QuestionInput is the create/update payload for a question.
type QuestionInput struct {
	Genre         string        `json:"genre"`
	Difficulty    int           `json:"difficulty"`
	Body          string        `json:"body"`
	Object        string        `json:"object"`
	Clarification string        `json:"clarification"`
	IsActive      bool          `json:"is_active"`
	Choices       []ChoiceInput `json:"choices"`
}

type userList struct {
	Results []User
}

func (l *userList) UnmarshalJSON(data []byte) error {
	var page struct {
		Results []User `json:"results"`
	}
	if err := json.Unmarshal(data, &page); err == nil && page.Results != nil {
		l.Results = page.Results
		return nil
	}
	return json.Unmarshal(data, &l.Results)
}

// GetAdminStats fetches the dashboard numbers.
func (c *Client) GetAdminStats(ctx context.Context) (*AdminStats, error) {
	var out AdminStats
	err := c.call(ctx, callOpts{
		method: http.MethodGet,
		path:   "/api/admin/stats/",
		bearer: true,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateGenre adds a genre.
func (c *Client) CreateGenre(ctx context.Context, in GenreInput) (*Genre, error) {
	var out Genre
	err := c.call(ctx, callOpts{
		method: http.MethodPost,
		path:   "/api/admin/genres/",
		body:   in,
		bearer: true,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateGenre replaces a genre.
func (c *Client) UpdateGenre(ctx context.Context, id string, in GenreInput) (*Genre, error) {
	var out Genre
	err := c.call(ctx, callOpts{
		method: http.MethodPut,
		path:   "/api/admin/genres/" + id + "/",
		body:   in,
		bearer: true,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteGenre removes a genre.
func (c *Client) DeleteGenre(ctx context.Context, id string) error {
	return c.call(ctx, callOpts{
		method: http.MethodDelete,
		path:   "/api/admin/genres/" + id + "/",
		bearer: true,
	})
}

// CreateQuestion adds a question with its choices.
func (c *Client) CreateQuestion(ctx context.Context, in QuestionInput) (*Question, error) {
	var out Question
	err := c.call(ctx, callOpts{
		method: http.MethodPost,
		path:   "/api/admin/questions/",
		body:   in,
		bearer: true,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateQuestion replaces a question and its choices.
func (c *Client) UpdateQuestion(ctx context.Context, id string, in QuestionInput) (*Question, error) {
	var out Question
	err := c.call(ctx, callOpts{
		method: http.MethodPut,
		path:   "/api/admin/questions/" + id + "/",
		body:   in,
		bearer: true,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteQuestion removes a question.
func (c *Client) DeleteQuestion(ctx context.Context, id string) error {
	return c.call(ctx, callOpts{
		method: http.MethodDelete,
		path:   "/api/admin/questions/" + id + "/",
		bearer: true,
	})
}

// ListUsers fetches every account for the user management surface.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var out userList
	err := c.call(ctx, callOpts{
		method: http.MethodGet,
		path:   "/api/admin/users/",
		bearer: true,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Results, nil
}

// SetUserActive activates or deactivates an account.
func (c *Client) SetUserActive(ctx context.Context, id string, active bool) error {
	return c.call(ctx, callOpts{
		method: http.MethodPatch,
		path:   "/api/admin/users/" + id + "/",
		body:   map[string]bool{"is_active": active},
		bearer: true,
	})
}
