package domain

import (
	"context"
	"math"
	"time"
)

type AttemptStatus string

const (
	AttemptNotStarted AttemptStatus = "not_started"
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
)

// DeadlineGrace absorbs clock skew and request latency around a timer deadline.
const DeadlineGrace = 5 * time.Second

// Answers maps question id to the selected option value.
type Answers map[string]string

func (a Answers) clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Attempt is one user's pass through one quiz.
type Attempt struct {
	ID             string
	UserID         string
	QuizID         string
	Status         AttemptStatus
	Answers        Answers
	Score          *int
	CorrectAnswers int
	TotalQuestions int
	StartedAt      time.Time
	CompletedAt    *time.Time
	DeadlineAt     *time.Time
	CreatedAt      time.Time
}

// Expired reports whether the timer ran out at now, grace included.
func (a *Attempt) Expired(now time.Time) bool {
	if a.DeadlineAt == nil {
		return false
	}
	return now.After(a.DeadlineAt.Add(DeadlineGrace))
}

// Duration is the wall time between start and completion.
func (a *Attempt) Duration() time.Duration {
	if a.CompletedAt == nil {
		return 0
	}
	return a.CompletedAt.Sub(a.StartedAt)
}

func (a *Attempt) copy() *Attempt {
	c := *a
	c.Answers = a.Answers.clone()
	return &c
}

// StartInput carries everything the Start guard looks at.
type StartInput struct {
	AttemptID      string
	UserID         string
	QuizID         string
	TotalQuestions int
	Policy         Policy
	CompletedCount int
	Now            time.Time
}

// StartAttempt performs not_started -> in_progress. Modes without retakes
// allow exactly one completed attempt per (user, quiz).
func StartAttempt(in StartInput) (*Attempt, error) {
	if !in.Policy.RetakeAllowed && in.CompletedCount > 0 {
		return nil, NewConflictError(ReasonAttemptBlocked, "This quiz can only be taken once in exam mode")
	}
	now := in.Now.UTC()
	a := &Attempt{
		ID:             in.AttemptID,
		UserID:         in.UserID,
		QuizID:         in.QuizID,
		Status:         AttemptInProgress,
		Answers:        Answers{},
		TotalQuestions: in.TotalQuestions,
		StartedAt:      now,
		CreatedAt:      now,
	}
	if in.Policy.TimerActive {
		deadline := now.Add(time.Duration(in.Policy.TimeLimitMinutes) * time.Minute)
		a.DeadlineAt = &deadline
	}
	return a, nil
}

// SelectAnswer records or overwrites the selection for one question. The
// answer is not checked against the question's options.
func SelectAnswer(a *Attempt, questionID, answer string, now time.Time) (*Attempt, error) {
	if a.Status != AttemptInProgress {
		return nil, NewConflictError(ReasonAttemptCompleted, "Attempt is already completed")
	}
	if a.Expired(now) {
		return nil, NewConflictError(ReasonTimeExpired, "Time limit has been reached")
	}
	next := a.copy()
	next.Answers[questionID] = answer
	return next, nil
}

// SubmitAttempt performs in_progress -> completed and scores the answers.
func SubmitAttempt(a *Attempt, questions []*Question, now time.Time) (*Attempt, ScoreResult, error) {
	if a.Status != AttemptInProgress {
		return nil, ScoreResult{}, NewConflictError(ReasonAttemptCompleted, "Attempt is already completed")
	}
	result := ComputeScore(questions, a.Answers)
	next := a.copy()
	completedAt := now.UTC()
	// A timed attempt never completes later than its deadline.
	if next.DeadlineAt != nil && completedAt.After(*next.DeadlineAt) {
		completedAt = *next.DeadlineAt
	}
	next.Status = AttemptCompleted
	next.Score = &result.Score
	next.CorrectAnswers = result.Correct
	next.TotalQuestions = result.Total
	next.CompletedAt = &completedAt
	return next, result, nil
}

// TimeUpAttempt submits whatever answers exist once the deadline is reached.
func TimeUpAttempt(a *Attempt, questions []*Question, now time.Time) (*Attempt, ScoreResult, error) {
	if a.Status != AttemptInProgress {
		return nil, ScoreResult{}, NewConflictError(ReasonAttemptCompleted, "Attempt is already completed")
	}
	if a.DeadlineAt == nil {
		return nil, ScoreResult{}, NewValidationError("Attempt has no time limit")
	}
	if now.Before(a.DeadlineAt.Add(-DeadlineGrace)) {
		return nil, ScoreResult{}, NewValidationError("Time limit has not been reached yet")
	}
	return SubmitAttempt(a, questions, now)
}

type ScoreResult struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
	Score   int `json:"score"`
}

// ComputeScore counts exact matches against each question's correct answer.
// Unanswered questions count as wrong; an empty quiz scores 0.
func ComputeScore(questions []*Question, answers Answers) ScoreResult {
	res := ScoreResult{Total: len(questions)}
	for _, q := range questions {
		if ans, ok := answers[q.ID]; ok && q.IsCorrect(ans) {
			res.Correct++
		}
	}
	if res.Total == 0 {
		return res
	}
	res.Score = int(math.Floor(100*float64(res.Correct)/float64(res.Total) + 0.5))
	return res
}

// AttemptRepository persists attempts.
type AttemptRepository interface {
	Create(ctx context.Context, a *Attempt) error
	GetByID(ctx context.Context, id string) (*Attempt, error)
	FindInProgress(ctx context.Context, userID, quizID string) (*Attempt, error)
	CountCompleted(ctx context.Context, userID, quizID string) (int, error)
	UpdateAnswers(ctx context.Context, a *Attempt) error
	// Finalize flips an in_progress row to completed. It fails with a
	// CONFLICT when the row was already completed by a concurrent call.
	Finalize(ctx context.Context, a *Attempt) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*Attempt, error)
}
