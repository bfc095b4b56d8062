package quizkit

import (
	"sort"
	"time"
)

// UserIdentity is the immutable-once-fetched snapshot of the signed-in user.
// It is owned by [Session] and only ever replaced wholesale after a
// successful fetch, never patched in place.
type UserIdentity struct {
	ID          string
	Email       string
	Username    string
	DisplayName string
	IsActive    bool
	IsStaff     bool
	JoinedAt    time.Time
	LastLoginAt *time.Time
}

// Genre is a topic used to partition the question bank.
type Genre struct {
	ID            string
	Name          string
	Description   string
	QuestionCount int
}

// Choice is one selectable answer of a question. OrderIndex is the stable
// presentation tie-break.
type Choice struct {
	ID         string
	Content    string
	IsCorrect  bool
	OrderIndex int
}

// Question is a single quiz question as served by the catalog. Exactly one
// correct choice is expected but not guaranteed; correctness lookup degrades
// to false on inconsistent data instead of failing.
type Question struct {
	ID             string
	Body           string
	SupportingText string
	Clarification  string
	GenreID        string
	GenreName      string
	Difficulty     int
	Choices        []Choice
	IsActive       bool
}

// AnswerableChoices returns the choices a user may actually select: empty
// content is excluded, ordering is ascending OrderIndex (stable). Excluded
// choices still belong to the stored choice set for correctness lookup.
func (q *Question) AnswerableChoices() []Choice {
	out := make([]Choice, 0, len(q.Choices))
	for _, c := range q.Choices {
		if c.Content != "" {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}

// AnswerRecord is one scored answer. Records are append-only and never
// reordered.
type AnswerRecord struct {
	QuestionID       string
	SelectedChoiceID string
	IsCorrect        bool
}

// LoginCredentials are the inputs to [Session.Login].
type LoginCredentials struct {
	Email    string
	Password string
}

// RegisterCredentials are the inputs to [Session.Register]. Password and
// PasswordConfirm must match and meet the configured minimum length before
// any network call is made.
type RegisterCredentials struct {
	Email           string
	Username        string
	Password        string
	PasswordConfirm string
}

// AttemptResult is the persistence payload for a completed attempt.
type AttemptResult struct {
	AttemptID      string
	Mode           QuizMode
	GenreID        string
	TotalQuestions int
	Answers        []AnswerRecord
}

// AttemptSummary is one past attempt as reported by the progress backend.
type AttemptSummary struct {
	ID              string
	GenreID         string
	GenreName       string
	SessionType     string
	TotalQuestions  int
	CorrectAnswers  int
	ScorePercentage float64
	StartedAt       time.Time
	Completed       bool
}

// StudyStatistics aggregates a user's overall progress.
type StudyStatistics struct {
	TotalSessions  int
	TotalQuestions int
	CorrectAnswers int
	AccuracyRate   float64
	AverageScore   float64
}

// HistoryFilter narrows [Client.History] results. Zero values mean no filter.
type HistoryFilter struct {
	GenreID  string
	DateFrom string
	DateTo   string
	Limit    int
}
