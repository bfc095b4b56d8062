package quizkit

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/google/uuid"
)

// QuizPhase is the lifecycle state of a [QuizEngine].
type QuizPhase uint8

const (
	PhaseSelecting QuizPhase = iota
	PhaseInProgress
	PhaseCompleted
)

func (p QuizPhase) String() string {
	switch p {
	case PhaseSelecting:
		return "selecting"
	case PhaseInProgress:
		return "in_progress"
	case PhaseCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// QuizMode distinguishes a genre attempt from an incorrect-review attempt.
// Review attempts behave identically in progress but are never persisted.
type QuizMode uint8

const (
	ModeGenre QuizMode = iota
	ModeReview
)

func (m QuizMode) String() string {
	if m == ModeReview {
		return "review"
	}
	return "genre"
}

// Attempt is one run through a fixed, ordered question set. It lives for
// exactly one quiz session and is never persisted except through the final
// SaveAttempt dispatch on completion of a genre attempt.
type Attempt struct {
	ID        string
	Mode      QuizMode
	GenreID   string
	Questions []Question

	cursor  int
	answers []AnswerRecord
}

// Cursor is the index of the question awaiting an answer.
func (a *Attempt) Cursor() int { return a.cursor }

// Completed reports whether every question has an answer record.
func (a *Attempt) Completed() bool { return a.cursor >= len(a.Questions) }

// Current returns the question at the cursor, or false once completed.
func (a *Attempt) Current() (Question, bool) {
	if a.Completed() {
		return Question{}, false
	}
	return a.Questions[a.cursor], true
}

// Answers returns a copy of the records in submission order.
func (a *Attempt) Answers() []AnswerRecord {
	out := make([]AnswerRecord, len(a.answers))
	copy(out, a.answers)
	return out
}

// SubmitResult reports the outcome of one accepted submission.
type SubmitResult struct {
	Record    AnswerRecord
	Completed bool
	// Score is only meaningful when Completed is true.
	Score int
	// SaveErr carries a failed persistence dispatch as a warning. The
	// completed state and the score are unaffected by it.
	SaveErr error
}

// QuizEngine sequences one attempt at a time from a question source to a
// scored, optionally persisted result. It reads the access credential
// through the catalog/recorder implementations and never mutates session
// state.
type QuizEngine struct {
	mu       sync.Mutex
	catalog  CatalogClient
	recorder ProgressRecorder
	quiz     QuizConfig
	metrics  *Metrics

	phase   QuizPhase
	mode    QuizMode
	genreID string
	attempt *Attempt
}

// NewQuizEngine wires an engine over its question source and persistence
// sink. Most callers obtain one through [Client.NewQuiz].
func NewQuizEngine(catalog CatalogClient, recorder ProgressRecorder, cfg Config, metrics *Metrics) *QuizEngine {
	return &QuizEngine{
		catalog:  catalog,
		recorder: recorder,
		quiz:     cfg.Quiz,
		metrics:  metrics,
	}
}

// Phase returns the current lifecycle phase.
func (e *QuizEngine) Phase() QuizPhase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Attempt returns the live attempt, or false outside one.
func (e *QuizEngine) Attempt() (*Attempt, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.attempt == nil {
		return nil, false
	}
	return e.attempt, true
}

// StartGenre fetches a random question set for the genre and begins a new
// attempt. An empty set fails with [ErrEmptyQuestionSet] and creates no
// attempt.
func (e *QuizEngine) StartGenre(ctx context.Context, genreID string) error {
	questions, err := e.catalog.ListRandomQuestions(ctx, genreID, e.quiz.QuestionCount)
	if err != nil {
		return err
	}
	return e.start(ModeGenre, genreID, questions)
}

// StartReview begins an attempt over previously incorrectly answered
// questions. An empty pool fails with [ErrEmptyQuestionSet]; callers surface
// that as "nothing to review", not as a fault.
func (e *QuizEngine) StartReview(ctx context.Context) error {
	questions, err := e.catalog.ListIncorrectQuestions(ctx, "", e.quiz.ReviewLimit)
	if err != nil {
		return err
	}
	return e.start(ModeReview, "", questions)
}

// start fixes the question order for the attempt's lifetime. The engine
// never reshuffles; any randomization is the catalog's responsibility.
func (e *QuizEngine) start(mode QuizMode, genreID string, questions []Question) error {
	if len(questions) == 0 {
		return ErrEmptyQuestionSet
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.phase = PhaseInProgress
	e.mode = mode
	e.genreID = genreID
	e.attempt = &Attempt{
		ID:        uuid.NewString(),
		Mode:      mode,
		GenreID:   genreID,
		Questions: questions,
		answers:   make([]AnswerRecord, 0, len(questions)),
	}
	e.metrics.Inc(MetricAttemptStarted)
	return nil
}

// Submit records an answer for the current cursor question and advances.
// questionID must identify the cursor question: a repeated submission for an
// already-answered question is rejected with [ErrAnswerAlreadyRecorded]
// rather than overwriting. Correctness is the selected choice's flag looked
// up across the question's full choice set; an unknown selection or
// inconsistent backend data degrades to incorrect instead of failing.
//
// The submission that answers the final question transitions the engine to
// PhaseCompleted and, for a genre attempt, dispatches the persistence
// request in the same call. A dispatch failure is reported through
// [SubmitResult.SaveErr] and logged; it never rolls back completion or the
// score.
func (e *QuizEngine) Submit(ctx context.Context, questionID, choiceID string) (SubmitResult, error) {
	e.mu.Lock()

	switch e.phase {
	case PhaseSelecting:
		e.mu.Unlock()
		return SubmitResult{}, ErrNoActiveAttempt
	case PhaseCompleted:
		e.mu.Unlock()
		return SubmitResult{}, ErrAttemptCompleted
	}

	a := e.attempt
	for _, rec := range a.answers {
		if rec.QuestionID == questionID {
			e.mu.Unlock()
			return SubmitResult{}, ErrAnswerAlreadyRecorded
		}
	}
	q := a.Questions[a.cursor]
	if q.ID != questionID {
		e.mu.Unlock()
		return SubmitResult{}, ErrQuestionMismatch
	}

	record := AnswerRecord{
		QuestionID:       questionID,
		SelectedChoiceID: choiceID,
		IsCorrect:        choiceCorrect(q, choiceID),
	}
	a.answers = append(a.answers, record)
	a.cursor++

	result := SubmitResult{Record: record}
	var save *AttemptResult
	if a.cursor >= len(a.Questions) {
		e.phase = PhaseCompleted
		result.Completed = true
		result.Score = scoreOf(a.answers)
		e.metrics.Inc(MetricAttemptCompleted)
		if e.mode == ModeGenre {
			save = &AttemptResult{
				AttemptID:      a.ID,
				Mode:           a.Mode,
				GenreID:        a.GenreID,
				TotalQuestions: len(a.Questions),
				Answers:        append([]AnswerRecord(nil), a.answers...),
			}
		}
	}
	e.mu.Unlock()

	if save != nil {
		if err := e.recorder.SaveAttempt(ctx, *save); err != nil {
			log.Print("quizkit: attempt persistence failed")
			e.metrics.Inc(MetricAttemptSaveFailed)
			result.SaveErr = fmt.Errorf("save attempt: %w", err)
		}
	}
	return result, nil
}

// Score is a pure function over the recorded answers: correct/total as a
// percentage rounded to the nearest integer. Outside an attempt, or before
// any answer, the score is defined to be 0. Repeated calls have no side
// effects.
func (e *QuizEngine) Score() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.attempt == nil {
		return 0
	}
	return scoreOf(e.attempt.answers)
}

// Restart discards the current attempt and requests a brand-new question set
// with the same parameters: the same genre, or a fresh incorrect-question
// query in review mode. Nothing from the previous attempt is reused.
func (e *QuizEngine) Restart(ctx context.Context) error {
	e.mu.Lock()
	if e.attempt == nil {
		e.mu.Unlock()
		return ErrNoActiveAttempt
	}
	mode, genreID := e.mode, e.genreID
	e.mu.Unlock()

	if mode == ModeReview {
		return e.StartReview(ctx)
	}
	return e.StartGenre(ctx, genreID)
}

// Reset returns to PhaseSelecting and discards the attempt entirely. No
// persistence happens, even for a completed genre attempt that was already
// saved once.
func (e *QuizEngine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.phase = PhaseSelecting
	e.mode = ModeGenre
	e.genreID = ""
	e.attempt = nil
}

// choiceCorrect looks choiceID up in the question's full choice set,
// including choices excluded from presentation. Unknown IDs, or a question
// with zero (or several) choices flagged correct, resolve through the flag
// of whatever was selected; there is nothing to crash on.
func choiceCorrect(q Question, choiceID string) bool {
	for _, c := range q.Choices {
		if c.ID == choiceID {
			return c.IsCorrect
		}
	}
	return false
}

func scoreOf(answers []AnswerRecord) int {
	if len(answers) == 0 {
		return 0
	}
	correct := 0
	for _, rec := range answers {
		if rec.IsCorrect {
			correct++
		}
	}
	return int(math.Round(float64(correct) / float64(len(answers)) * 100))
}
