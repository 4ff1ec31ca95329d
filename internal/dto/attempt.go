package dto

import (
	"time"

	"synapse/internal/domain"
)

type AttemptResponse struct {
	ID               string         `json:"id"`
	QuizID           string         `json:"quiz_id"`
	Status           string         `json:"status"`
	Answers          domain.Answers `json:"answers"`
	Score            *int           `json:"score,omitempty"`
	CorrectAnswers   int            `json:"correct_answers"`
	TotalQuestions   int            `json:"total_questions"`
	StartedAt        time.Time      `json:"started_at"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	DeadlineAt       *time.Time     `json:"deadline_at,omitempty"`
	RemainingSeconds *int           `json:"remaining_seconds,omitempty"`
	Policy           domain.Policy  `json:"policy"`
	Resumed          bool           `json:"resumed,omitempty"`
}

type SelectAnswerRequest struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// AnswerFeedback is only returned when the mode gives immediate feedback.
type AnswerFeedback struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correct_answer"`
	Explanation   string `json:"explanation,omitempty"`
}

type SelectAnswerResponse struct {
	Attempt  AttemptResponse `json:"attempt"`
	Feedback *AnswerFeedback `json:"feedback,omitempty"`
}

type SubmitAttemptResponse struct {
	Attempt  AttemptResponse    `json:"attempt"`
	Result   domain.ScoreResult `json:"result"`
	Progress domain.Outcome     `json:"progress"`
}

type ReviewItem struct {
	QuestionID    string   `json:"question_id"`
	Text          string   `json:"question_text"`
	Options       []string `json:"options"`
	Selected      string   `json:"selected,omitempty"`
	CorrectAnswer string   `json:"correct_answer"`
	Correct       bool     `json:"correct"`
	Explanation   string   `json:"explanation,omitempty"`
}

type ReviewResponse struct {
	AttemptID string       `json:"attempt_id"`
	QuizID    string       `json:"quiz_id"`
	Score     int          `json:"score"`
	Items     []ReviewItem `json:"items"`
}

type AttemptHistoryResponse struct {
	Attempts []AttemptResponse `json:"attempts"`
}

type ActiveUsersResponse struct {
	QuizID string                 `json:"quiz_id"`
	Users  []domain.ActiveSession `json:"users"`
}
