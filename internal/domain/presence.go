package domain

import "time"

// ActiveSession marks a user as currently working through a quiz.
type ActiveSession struct {
	UserID          string    `json:"user_id"`
	QuizID          string    `json:"quiz_id"`
	RoomID          string    `json:"room_id"`
	CurrentQuestion int       `json:"current_question"`
	AnswersCount    int       `json:"answers_count"`
	StartedAt       time.Time `json:"started_at"`
	LastActivity    time.Time `json:"last_activity"`
}

// Stale reports whether the session has not been refreshed within ttl.
func (s ActiveSession) Stale(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastActivity) > ttl
}
