package quizkit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/elearnlabs/quizkit/internal/api"
)

// normalizeAPIError maps wire-level failures onto the package taxonomy,
// keeping the backend's human-readable message and reason code attached.
// authCall widens 401 to ErrInvalidCredentials (a rejected login) instead of
// ErrUnauthorized (a rejected authorized call).
func normalizeAPIError(err error, authCall bool) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, api.ErrTransport) {
		return &APIError{Reason: "transport", Message: err.Error(), Kind: ErrNetwork}
	}

	var se *api.StatusError
	if !errors.As(err, &se) {
		return err
	}
	switch se.Code {
	case 400:
		if len(se.Fields) > 0 {
			return &ValidationError{Fields: se.Fields}
		}
		return &APIError{Reason: "bad_request", Message: se.Detail, Kind: ErrValidation}
	case 401:
		kind := ErrUnauthorized
		if authCall {
			kind = ErrInvalidCredentials
		}
		return &APIError{Reason: "unauthorized", Message: se.Detail, Kind: kind}
	case 403:
		return &APIError{Reason: "forbidden", Message: se.Detail, Kind: ErrUnauthorized}
	case 404:
		return &APIError{Reason: "not_found", Message: se.Detail, Kind: ErrNotFound}
	case 409:
		return &APIError{Reason: "conflict", Message: se.Detail, Kind: ErrMalformedData}
	default:
		return &APIError{Reason: fmt.Sprintf("http_%d", se.Code), Message: se.Detail, Kind: ErrNetwork}
	}
}

func identityFromDTO(u *api.User) *UserIdentity {
	id := &UserIdentity{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
		IsActive: u.IsActive,
		IsStaff:  u.IsStaff,
	}
	switch {
	case u.FirstName != "" && u.LastName != "":
		id.DisplayName = u.FirstName + " " + u.LastName
	case u.FirstName != "":
		id.DisplayName = u.FirstName
	case u.LastName != "":
		id.DisplayName = u.LastName
	}
	if t, err := time.Parse(time.RFC3339, u.DateJoined); err == nil {
		id.JoinedAt = t
	}
	if u.LastLogin != nil {
		if t, err := time.Parse(time.RFC3339, *u.LastLogin); err == nil {
			id.LastLoginAt = &t
		}
	}
	return id
}

func genreFromDTO(g api.Genre) Genre {
	return Genre{
		ID:            g.ID.String(),
		Name:          g.Name,
		Description:   g.Description,
		QuestionCount: g.QuestionCount,
	}
}

func questionFromDTO(q api.Question) Question {
	choices := make([]Choice, 0, len(q.Choices))
	for _, c := range q.Choices {
		choices = append(choices, Choice{
			ID:         c.ID,
			Content:    c.Content,
			IsCorrect:  c.IsCorrect,
			OrderIndex: c.OrderIndex,
		})
	}
	return Question{
		ID:             q.ID,
		Body:           q.Body,
		SupportingText: q.Object,
		Clarification:  q.Clarification,
		GenreID:        q.Genre,
		GenreName:      q.GenreName,
		Difficulty:     q.Difficulty,
		Choices:        choices,
		IsActive:       q.IsActive,
	}
}

// apiAuthBackend adapts the wire client to [AuthBackend].
type apiAuthBackend struct {
	api *api.Client
}

func (b *apiAuthBackend) Login(ctx context.Context, creds LoginCredentials) (*UserIdentity, string, string, error) {
	resp, err := b.api.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, "", "", normalizeAPIError(err, true)
	}
	return identityFromDTO(&resp.User), resp.Tokens.Access, resp.Tokens.Refresh, nil
}

func (b *apiAuthBackend) Register(ctx context.Context, creds RegisterCredentials) (*UserIdentity, string, string, error) {
	resp, err := b.api.Register(ctx, creds.Email, creds.Username, creds.Password, creds.PasswordConfirm)
	if err != nil {
		return nil, "", "", normalizeAPIError(err, true)
	}
	return identityFromDTO(&resp.User), resp.Tokens.Access, resp.Tokens.Refresh, nil
}

func (b *apiAuthBackend) Logout(ctx context.Context, access, refresh string) error {
	return normalizeAPIError(b.api.Logout(ctx, access, refresh), false)
}

func (b *apiAuthBackend) RefreshAccess(ctx context.Context, refresh string) (string, error) {
	access, err := b.api.RefreshAccess(ctx, refresh)
	if err != nil {
		return "", normalizeAPIError(err, true)
	}
	return access, nil
}

func (b *apiAuthBackend) CurrentUser(ctx context.Context, access string) (*UserIdentity, error) {
	user, err := b.api.CurrentUser(ctx, access)
	if err != nil {
		return nil, normalizeAPIError(err, false)
	}
	return identityFromDTO(user), nil
}

// apiCatalog adapts the wire client to [CatalogClient].
type apiCatalog struct {
	api *api.Client
}

func (c *apiCatalog) ListGenres(ctx context.Context) ([]Genre, error) {
	dtos, err := c.api.ListGenres(ctx)
	if err != nil {
		return nil, normalizeAPIError(err, false)
	}
	genres := make([]Genre, 0, len(dtos))
	for _, g := range dtos {
		genres = append(genres, genreFromDTO(g))
	}
	return genres, nil
}

func (c *apiCatalog) ListRandomQuestions(ctx context.Context, genreID string, count int) ([]Question, error) {
	dtos, err := c.api.ListRandomQuestions(ctx, genreID, count)
	if err != nil {
		return nil, normalizeAPIError(err, false)
	}
	questions := make([]Question, 0, len(dtos))
	for _, q := range dtos {
		questions = append(questions, questionFromDTO(q))
	}
	return questions, nil
}

func (c *apiCatalog) ListIncorrectQuestions(ctx context.Context, genreID string, limit int) ([]Question, error) {
	dtos, err := c.api.ListIncorrectQuestions(ctx, genreID, limit)
	if err != nil {
		return nil, normalizeAPIError(err, false)
	}
	questions := make([]Question, 0, len(dtos))
	for _, q := range dtos {
		questions = append(questions, questionFromDTO(q))
	}
	return questions, nil
}

// apiRecorder adapts the wire client to [ProgressRecorder].
type apiRecorder struct {
	api *api.Client
}

func (r *apiRecorder) SaveAttempt(ctx context.Context, result AttemptResult) error {
	answers := make([]api.SessionAnswer, 0, len(result.Answers))
	for _, a := range result.Answers {
		answers = append(answers, api.SessionAnswer{
			QuestionID:       a.QuestionID,
			SelectedChoiceID: a.SelectedChoiceID,
			IsCorrect:        a.IsCorrect,
		})
	}
	err := r.api.SaveSession(ctx, api.SaveSessionRequest{
		SessionType:    result.Mode.String(),
		Genre:          result.GenreID,
		TotalQuestions: result.TotalQuestions,
		Answers:        answers,
	})
	return normalizeAPIError(err, false)
}
