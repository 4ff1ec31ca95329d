package domain

import (
	"context"
	"time"
)

// Difficulty of a generated quiz
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulty levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeTrueFalse      QuestionType = "true_false"
)

// Quiz belongs to a room and is optionally derived from one document.
// It is immutable once its questions are generated.
type Quiz struct {
	ID               string
	RoomID           string
	DocumentID       *string
	CreatedBy        string
	Title            string
	Description      string
	Difficulty       Difficulty
	TimeLimitMinutes *int
	CreatedAt        time.Time
	Questions        []*Question
}

// Question belongs to one quiz. CorrectAnswer is expected to be one of
// Options but nothing enforces it.
type Question struct {
	ID            string
	QuizID        string
	Text          string
	Type          QuestionType
	Options       []string
	CorrectAnswer string
	Explanation   string
	OrderIndex    int
}

// IsCorrect compares with exact, case-sensitive equality.
func (q *Question) IsCorrect(answer string) bool {
	return answer == q.CorrectAnswer
}

// QuizGeneration limits
const (
	MaxContentChars      = 8000
	MinQuestionCount     = 5
	MaxQuestionCount     = 25
	DefaultQuestionCount = 5
)

// ClampQuestionCount keeps a requested count inside the generation range.
// Zero or negative means "not specified".
func ClampQuestionCount(n int) int {
	if n <= 0 {
		return DefaultQuestionCount
	}
	if n < MinQuestionCount {
		return MinQuestionCount
	}
	if n > MaxQuestionCount {
		return MaxQuestionCount
	}
	return n
}

// GenerationRequest is the input of one LLM generation round trip.
type GenerationRequest struct {
	Content       string
	Difficulty    Difficulty
	QuestionCount int
}

// GeneratedQuestion is a normalised question as produced by the model.
type GeneratedQuestion struct {
	Question    string       `json:"question"`
	Type        QuestionType `json:"type"`
	Options     []string     `json:"options"`
	Correct     string       `json:"correct"`
	Explanation string       `json:"explanation,omitempty"`
}

// QuizGenerator turns raw text into a question set.
type QuizGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) ([]GeneratedQuestion, error)
}
