package dto

import "time"

// CreateQuizRequest generates a quiz from a room document.
type CreateQuizRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	DocumentID       string `json:"document_id"`
	Difficulty       string `json:"difficulty"`
	QuestionCount    int    `json:"question_count"`
	TimeLimitMinutes *int   `json:"time_limit_minutes"`
}

// QuestionResponse never carries the correct answer.
type QuestionResponse struct {
	ID         string   `json:"id"`
	Text       string   `json:"question_text"`
	Type       string   `json:"question_type"`
	Options    []string `json:"options"`
	OrderIndex int      `json:"order_index"`
}

type QuizResponse struct {
	ID               string             `json:"id"`
	RoomID           string             `json:"room_id"`
	DocumentID       *string            `json:"document_id,omitempty"`
	Title            string             `json:"title"`
	Description      string             `json:"description,omitempty"`
	Difficulty       string             `json:"difficulty"`
	TimeLimitMinutes *int               `json:"time_limit_minutes,omitempty"`
	QuestionCount    int                `json:"question_count"`
	CreatedBy        string             `json:"created_by"`
	CreatedAt        time.Time          `json:"created_at"`
	Questions        []QuestionResponse `json:"questions,omitempty"`
}

type QuizListResponse struct {
	Quizzes []QuizResponse `json:"quizzes"`
}

// GenerateQuizRequest is the body of POST /generate-quiz. Field names are
// camelCase to stay compatible with existing clients.
type GenerateQuizRequest struct {
	Content       string `json:"content"`
	Difficulty    string `json:"difficulty"`
	QuestionCount int    `json:"questionCount"`
}

// GeneratedQuestionResponse carries options as a JSON encoded string.
type GeneratedQuestionResponse struct {
	Question string `json:"question"`
	Type     string `json:"type"`
	Options  string `json:"options"`
	Correct  string `json:"correct"`
}

type GenerateQuizResponse struct {
	Questions []GeneratedQuestionResponse `json:"questions"`
}

// ErrorResponse is the error body of /generate-quiz
type ErrorResponse struct {
	Error string `json:"error"`
}
