package util

import "github.com/google/uuid"

// NewID returns a random UUID used as the public identifier of rooms,
// quizzes, questions, documents and attempts.
func NewID() string {
	return uuid.NewString()
}

// IsUUID reports whether s parses as a UUID.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
