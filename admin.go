package quizkit

import (
	"context"

	"github.com/elearnlabs/quizkit/internal/api"
)

// Admin is the administrator surface: genre and question management plus
// account activation. Authorization is enforced by the backend; a non-staff
// session receives [ErrUnauthorized].
type Admin struct {
	api *api.Client
}

// PlatformStats are the dashboard-level totals.
type PlatformStats struct {
	TotalUsers     int
	TotalQuestions int
	TotalGenres    int
	TotalSessions  int
}

// GenreInput is the create/update payload for a genre.
type GenreInput struct {
	Name        string
	Description string
}

// ChoiceInput is one choice in a question create/update payload.
type ChoiceInput struct {
	Content    string
	IsCorrect  bool
	OrderIndex int
}

// QuestionInput is the create/update payload for a question.
type QuestionInput struct {
	GenreID        string
	Difficulty     int
	Body           string
	SupportingText string
	Clarification  string
	IsActive       bool
	Choices        []ChoiceInput
}

func (in QuestionInput) toDTO() api.QuestionInput {
	choices := make([]api.ChoiceInput, 0, len(in.Choices))
	for _, c := range in.Choices {
		choices = append(choices, api.ChoiceInput{
			Content:    c.Content,
			IsCorrect:  c.IsCorrect,
			OrderIndex: c.OrderIndex,
		})
	}
	return api.QuestionInput{
		Genre:         in.GenreID,
		Difficulty:    in.Difficulty,
		Body:          in.Body,
		Object:        in.SupportingText,
		Clarification: in.Clarification,
		IsActive:      in.IsActive,
		Choices:       choices,
	}
}

// Stats fetches the platform totals.
func (a *Admin) Stats(ctx context.Context) (PlatformStats, error) {
	stats, err := a.api.GetAdminStats(ctx)
	if err != nil {
		return PlatformStats{}, normalizeAPIError(err, false)
	}
	return PlatformStats{
		TotalUsers:     stats.TotalUsers,
		TotalQuestions: stats.TotalQuestions,
		TotalGenres:    stats.TotalGenres,
		TotalSessions:  stats.TotalSessions,
	}, nil
}

// CreateGenre adds a genre.
func (a *Admin) CreateGenre(ctx context.Context, in GenreInput) (Genre, error) {
	g, err := a.api.CreateGenre(ctx, api.GenreInput{Name: in.Name, Description: in.Description})
	if err != nil {
		return Genre{}, normalizeAPIError(err, false)
	}
	return genreFromDTO(*g), nil
}

// UpdateGenre replaces a genre.
func (a *Admin) UpdateGenre(ctx context.Context, id string, in GenreInput) (Genre, error) {
	g, err := a.api.UpdateGenre(ctx, id, api.GenreInput{Name: in.Name, Description: in.Description})
	if err != nil {
		return Genre{}, normalizeAPIError(err, false)
	}
	return genreFromDTO(*g), nil
}

// DeleteGenre removes a genre.
func (a *Admin) DeleteGenre(ctx context.Context, id string) error {
	return normalizeAPIError(a.api.DeleteGenre(ctx, id), false)
}

// CreateQuestion adds a question with its choices.
func (a *Admin) CreateQuestion(ctx context.Context, in QuestionInput) (Question, error) {
	q, err := a.api.CreateQuestion(ctx, in.toDTO())
	if err != nil {
		return Question{}, normalizeAPIError(err, false)
	}
	return questionFromDTO(*q), nil
}

// UpdateQuestion replaces a question and its choices.
func (a *Admin) UpdateQuestion(ctx context.Context, id string, in QuestionInput) (Question, error) {
	q, err := a.api.UpdateQuestion(ctx, id, in.toDTO())
	if err != nil {
		return Question{}, normalizeAPIError(err, false)
	}
	return questionFromDTO(*q), nil
}

// DeleteQuestion removes a question.
func (a *Admin) DeleteQuestion(ctx context.Context, id string) error {
	return normalizeAPIError(a.api.DeleteQuestion(ctx, id), false)
}

// ListAccounts fetches every account.
func (a *Admin) ListAccounts(ctx context.Context) ([]UserIdentity, error) {
	users, err := a.api.ListUsers(ctx)
	if err != nil {
		return nil, normalizeAPIError(err, false)
	}
	out := make([]UserIdentity, 0, len(users))
	for i := range users {
		out = append(out, *identityFromDTO(&users[i]))
	}
	return out, nil
}

// SetAccountActive activates or deactivates an account.
func (a *Admin) SetAccountActive(ctx context.Context, id string, active bool) error {
	return normalizeAPIError(a.api.SetUserActive(ctx, id, active), false)
}
