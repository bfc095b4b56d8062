package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// Genre mirrors the backend genre payload.
type Genre struct {
	ID            json.Number `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	QuestionCount int         `json:"question_count"`
}

// Choice mirrors the backend choice payload.
type Choice struct {
	ID         string `json:"id"`
	Content    string `json:"content"`
	IsCorrect  bool   `json:"is_correct"`
	OrderIndex int    `json:"order_index"`
}

// Question mirrors the backend question payload. The "object" field carries
// the supporting text shown alongside the body.
type Question struct {
	ID            string   `json:"id"`
	Genre         string   `json:"genre"`
	GenreName     string   `json:"genre_name"`
	Difficulty    int      `json:"difficulty"`
	Body          string   `json:"body"`
	Object        string   `json:"object"`
	Clarification string   `json:"clarification"`
	Choices       []Choice `json:"choices"`
	IsActive      bool     `json:"is_active"`
}

// genreList tolerates both the paginated and the bare-array response shape.
type genreList struct {
	Results []Genre
}

func (l *genreList) UnmarshalJSON(data []byte) error {
	var page struct {
		Results []Genre `json:"results"`
	}
	if err := json.Unmarshal(data, &page); err == nil && page.Results != nil {
		l.Results = page.Results
		return nil
	}
	return json.Unmarshal(data, &l.Results)
}

// questionList tolerates {"questions": [...]}, {"results": [...]}, and bare
// arrays; the backend uses all three across endpoints.
type questionList struct {
	Results []Question
}

func (l *questionList) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Questions []Question `json:"questions"`
		Results   []Question `json:"results"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil {
		if wrapped.Questions != nil {
			l.Results = wrapped.Questions
			return nil
		}
		if wrapped.Results != nil {
			l.Results = wrapped.Results
			return nil
		}
	}
	return json.Unmarshal(data, &l.Results)
}

// ListGenres fetches every genre.
func (c *Client) ListGenres(ctx context.Context) ([]Genre, error) {
	var out genreList
	err := c.call(ctx, callOpts{
		method: http.MethodGet,
		path:   "/api/questions/genres/",
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Results, nil
}

// ListRandomQuestions fetches up to count questions, optionally scoped to a
// genre. The backend fixes the order; the client never reshuffles.
func (c *Client) ListRandomQuestions(ctx context.Context, genreID string, count int) ([]Question, error) {
	query := url.Values{"count": {strconv.Itoa(count)}}
	if genreID != "" {
		query.Set("genre", genreID)
	}
	var out questionList
	err := c.call(ctx, callOpts{
		method: http.MethodGet,
		path:   "/api/questions/questions/random/",
		query:  query,
		bearer: true,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Results, nil
}

// ListIncorrectQuestions fetches previously incorrectly answered questions.
// An empty list is a valid answer, not an error.
func (c *Client) ListIncorrectQuestions(ctx context.Context, genreID string, limit int) ([]Question, error) {
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if genreID != "" {
		query.Set("genre", genreID)
	}
	var out questionList
	err := c.call(ctx, callOpts{
		method: http.MethodGet,
		path:   "/api/progress/incorrect-questions/",
		query:  query,
		bearer: true,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Results, nil
}
