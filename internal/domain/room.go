package domain

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Mode controls timer, feedback and retake behavior of every quiz in a room.
type Mode string

const (
	ModeStudy     Mode = "study"
	ModeChallenge Mode = "challenge"
	ModeExam      Mode = "exam"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeStudy, ModeChallenge, ModeExam:
		return true
	}
	return false
}

type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleMember MemberRole = "member"
)

type Room struct {
	ID                 string
	Code               string
	Name               string
	Mode               Mode
	LeaderboardEnabled bool
	OwnerID            string
	CreatedAt          time.Time
}

type RoomMember struct {
	RoomID   string
	UserID   string
	Role     MemberRole
	JoinedAt time.Time
}

// Document is plain text uploaded into a room; quizzes are generated from it.
type Document struct {
	ID         string
	RoomID     string
	Name       string
	Content    string
	FilePath   string
	UploadedBy string
	CreatedAt  time.Time
}

// LeaderboardEntry aggregates one user's completed attempts in a room.
type LeaderboardEntry struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	TotalScore  int    `json:"total_score"`
	QuizCount   int    `json:"quiz_count"`
}

// ErrDuplicate is wrapped by repositories when a unique key already exists.
var ErrDuplicate = errors.New("duplicate key")

const (
	roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	RoomCodeLength   = 6
)

// GenerateRoomCode returns a random join code. Ambiguous glyphs (0/O, 1/I)
// are left out of the alphabet.
func GenerateRoomCode() (string, error) {
	var sb strings.Builder
	sb.Grow(RoomCodeLength)
	max := big.NewInt(int64(len(roomCodeAlphabet)))
	for i := 0; i < RoomCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate room code: %w", err)
		}
		sb.WriteByte(roomCodeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

// NormalizeRoomCode upper-cases and trims a user supplied join code.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidRoomCode checks length and alphabet of an already normalised code.
func IsValidRoomCode(code string) bool {
	if len(code) != RoomCodeLength {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(roomCodeAlphabet, r) {
			return false
		}
	}
	return true
}
