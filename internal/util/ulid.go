package util

import (
	"github.com/oklog/ulid/v2"
)

// NewULID returns a time-ordered identifier for rows that are never exposed
// outside the database (memberships, preferences, bookmarks).
func NewULID() string {
	return ulid.Make().String()
}
