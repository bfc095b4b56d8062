package quizkit

import (
	"context"
	"time"

	"github.com/elearnlabs/quizkit/internal/api"
)

// Statistics fetches the signed-in user's aggregate study statistics.
func (c *Client) Statistics(ctx context.Context) (StudyStatistics, error) {
	stats, err := c.api.GetStatistics(ctx)
	if err != nil {
		return StudyStatistics{}, normalizeAPIError(err, false)
	}
	return StudyStatistics{
		TotalSessions:  stats.TotalSessions,
		TotalQuestions: stats.TotalQuestions,
		CorrectAnswers: stats.CorrectAnswers,
		AccuracyRate:   stats.AccuracyRate,
		AverageScore:   stats.AverageScore,
	}, nil
}

// History fetches past attempt summaries, newest first. Zero-valued filter
// fields are not applied.
func (c *Client) History(ctx context.Context, filter HistoryFilter) ([]AttemptSummary, error) {
	sessions, err := c.api.ListSessions(ctx, filter.GenreID, filter.DateFrom, filter.DateTo, filter.Limit)
	if err != nil {
		return nil, normalizeAPIError(err, false)
	}
	out := make([]AttemptSummary, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, attemptSummaryFromDTO(s))
	}
	return out, nil
}

func attemptSummaryFromDTO(s api.QuizSession) AttemptSummary {
	out := AttemptSummary{
		ID:              s.ID,
		GenreID:         s.Genre,
		GenreName:       s.GenreName,
		SessionType:     s.SessionType,
		TotalQuestions:  s.TotalQuestions,
		CorrectAnswers:  s.CorrectAnswers,
		ScorePercentage: s.ScorePercentage,
		Completed:       s.IsCompleted,
	}
	if t, err := time.Parse(time.RFC3339, s.StartTime); err == nil {
		out.StartedAt = t
	}
	return out
}
