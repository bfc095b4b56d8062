package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// SessionAnswer is one answer record inside a persisted quiz session.
type SessionAnswer struct {
	QuestionID       string `json:"question_id"`
	SelectedChoiceID string `json:"selected_choice_id"`
	IsCorrect        bool   `json:"is_correct"`
}

// SaveSessionRequest is the persistence payload for a completed attempt.
type SaveSessionRequest struct {
	SessionType    string          `json:"session_type"`
	Genre          string          `json:"genre"`
	TotalQuestions int             `json:"total_questions"`
	Answers        []SessionAnswer `json:"answers"`
}

// QuizSession mirrors the backend's persisted session payload.
type QuizSession struct {
	ID              string  `json:"id"`
	Genre           string  `json:"genre"`
	GenreName       string  `json:"genre_name"`
	SessionType     string  `json:"session_type"`
	TotalQuestions  int     `json:"total_questions"`
	CorrectAnswers  int     `json:"correct_answers"`
	ScorePercentage float64 `json:"score_percentage"`
	StartTime       string  `json:"start_time"`
	IsCompleted     bool    `json:"is_completed"`
}

// Statistics mirrors the backend's study statistics payload.
type Statistics struct {
	TotalSessions  int     `json:"total_sessions"`
	TotalQuestions int     `json:"total_questions"`
	CorrectAnswers int     `json:"correct_answers"`
	AccuracyRate   float64 `json:"accuracy_rate"`
	AverageScore   float64 `json:"average_score"`
}

type sessionList struct {
	Results []QuizSession
}

func (l *sessionList) UnmarshalJSON(data []byte) error {
	var page struct {
		Results []QuizSession `json:"results"`
	}
	if err := json.Unmarshal(data, &page); err == nil && page.Results != nil {
		l.Results = page.Results
		return nil
	}
	return json.Unmarshal(data, &l.Results)
}

// SaveSession persists a completed attempt.
func (c *Client) SaveSession(ctx context.Context, req SaveSessionRequest) error {
	return c.call(ctx, callOpts{
		method: http.MethodPost,
		path:   "/api/progress/sessions/",
		body:   req,
		bearer: true,
	})
}

// ListSessions fetches past attempt summaries, newest first.
func (c *Client) ListSessions(ctx context.Context, genreID, dateFrom, dateTo string, limit int) ([]QuizSession, error) {
	query := url.Values{}
	if genreID != "" {
		query.Set("genre", genreID)
	}
	if dateFrom != "" {
		query.Set("date_from", dateFrom)
	}
	if dateTo != "" {
		query.Set("date_to", dateTo)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var out sessionList
	err := c.call(ctx, callOpts{
		method: http.MethodGet,
		path:   "/api/progress/sessions/",
		query:  query,
		bearer: true,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return out.Results, nil
}

// GetStatistics fetches the caller's aggregate study statistics.
func (c *Client) GetStatistics(ctx context.Context) (*Statistics, error) {
	var out Statistics
	err := c.call(ctx, callOpts{
		method: http.MethodGet,
		path:   "/api/progress/statistics/",
		bearer: true,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
