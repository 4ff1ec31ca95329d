package dto

import "time"

// CreateRoomRequest is the body of POST /api/rooms
type CreateRoomRequest struct {
	Name               string `json:"name"`
	Mode               string `json:"mode"`
	LeaderboardEnabled bool   `json:"leaderboard_enabled"`
}

// JoinRoomRequest is the body of POST /api/rooms/join
type JoinRoomRequest struct {
	Code string `json:"code"`
}

type RoomResponse struct {
	ID                 string    `json:"id"`
	Code               string    `json:"code"`
	Name               string    `json:"name"`
	Mode               string    `json:"mode"`
	LeaderboardEnabled bool      `json:"leaderboard_enabled"`
	OwnerID            string    `json:"owner_id"`
	IsOwner            bool      `json:"is_owner"`
	CreatedAt          time.Time `json:"created_at"`
}

type RoomListResponse struct {
	Rooms []RoomResponse `json:"rooms"`
}

type MemberResponse struct {
	UserID      string    `json:"user_id"`
	Role        string    `json:"role"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name,omitempty"`
	Level       int       `json:"level"`
	JoinedAt    time.Time `json:"joined_at"`
}

type MemberListResponse struct {
	Members []MemberResponse `json:"members"`
}

type LeaderboardEntryResponse struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	TotalScore  int    `json:"total_score"`
	QuizCount   int    `json:"quiz_count"`
}

type LeaderboardResponse struct {
	RoomID  string                     `json:"room_id"`
	Entries []LeaderboardEntryResponse `json:"entries"`
}

// CreateDocumentRequest carries already extracted text.
type CreateDocumentRequest struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type DocumentResponse struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"room_id"`
	Name       string    `json:"name"`
	Content    string    `json:"content,omitempty"`
	UploadedBy string    `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
}
