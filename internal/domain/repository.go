package domain

import (
	"context"
	"time"
)

// TransactionManager runs fn inside one database transaction. Repositories
// called with the ctx passed to fn join that transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type RoomRepository interface {
	Create(ctx context.Context, room *Room) error
	GetByID(ctx context.Context, id string) (*Room, error)
	GetByCode(ctx context.Context, code string) (*Room, error)
	ListForUser(ctx context.Context, userID string) ([]*Room, error)
	Leaderboard(ctx context.Context, roomID string) ([]LeaderboardEntry, error)
}

type RoomMemberRepository interface {
	// Add fails with a CONFLICT (ALREADY_MEMBER) for an existing membership.
	Add(ctx context.Context, m *RoomMember) error
	Get(ctx context.Context, roomID, userID string) (*RoomMember, error)
	ListMembers(ctx context.Context, roomID string) ([]*MemberProfile, error)
}

// MemberProfile is a membership joined with the member's public profile.
type MemberProfile struct {
	RoomMember
	Username    string
	DisplayName string
	Level       int
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *Document) error
	GetByID(ctx context.Context, id string) (*Document, error)
	ListByRoom(ctx context.Context, roomID string) ([]*Document, error)
}

type QuizRepository interface {
	Create(ctx context.Context, quiz *Quiz) error
	CreateQuestions(ctx context.Context, questions []*Question) error
	GetByID(ctx context.Context, id string) (*Quiz, error)
	GetQuestions(ctx context.Context, quizID string) ([]*Question, error)
	ListByRoom(ctx context.Context, roomID string) ([]*Quiz, error)
	CountQuestions(ctx context.Context, quizID string) (int, error)
}

type PreferencesRepository interface {
	// Get returns nil, nil when the user never saved preferences.
	Get(ctx context.Context, userID string) (*Preferences, error)
	Upsert(ctx context.Context, p *Preferences) error
}

// Bookmark is a saved question with an optional personal note.
type Bookmark struct {
	ID         string
	UserID     string
	QuestionID string
	Notes      string
	CreatedAt  time.Time
}

type BookmarkRepository interface {
	Upsert(ctx context.Context, b *Bookmark) error
	Delete(ctx context.Context, userID, questionID string) error
	ListByUser(ctx context.Context, userID string) ([]*Bookmark, error)
}
