package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"synapse/internal/domain"
	"synapse/internal/repository/models"
	"synapse/internal/util"

	"github.com/jmoiron/sqlx"
)

type sqlxRoomMemberRepository struct {
	db *sqlx.DB
}

func NewSQLXRoomMemberRepository(db *sqlx.DB) domain.RoomMemberRepository {
	return &sqlxRoomMemberRepository{db: db}
}

func (r *sqlxRoomMemberRepository) Add(ctx context.Context, m *domain.RoomMember) error {
	if m.JoinedAt.IsZero() {
		m.JoinedAt = time.Now().UTC()
	}
	row := models.RoomMember{
		ID:       util.NewULID(),
		RoomID:   m.RoomID,
		UserID:   m.UserID,
		Role:     string(m.Role),
		JoinedAt: m.JoinedAt,
	}
	query := `INSERT INTO room_members (id, room_id, user_id, role, joined_at)
	          VALUES (:id, :room_id, :user_id, :role, :joined_at)`
	if _, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, row); err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError(domain.ReasonAlreadyMember, "You are already a member of this room")
		}
		return fmt.Errorf("failed to add room member: %w", err)
	}
	return nil
}

func (r *sqlxRoomMemberRepository) Get(ctx context.Context, roomID, userID string) (*domain.RoomMember, error) {
	var row models.RoomMember
	query := `SELECT id, room_id, user_id, role, joined_at FROM room_members WHERE room_id = $1 AND user_id = $2`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &row, query, roomID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("Room membership not found")
		}
		return nil, fmt.Errorf("failed to get room member: %w", err)
	}
	return &domain.RoomMember{
		RoomID:   row.RoomID,
		UserID:   row.UserID,
		Role:     domain.MemberRole(row.Role),
		JoinedAt: row.JoinedAt,
	}, nil
}

func (r *sqlxRoomMemberRepository) ListMembers(ctx context.Context, roomID string) ([]*domain.MemberProfile, error) {
	query := `SELECT m.id, m.room_id, m.user_id, m.role, m.joined_at, p.username, p.display_name, p.level
	          FROM room_members m
	          LEFT JOIN profiles p ON p.id = m.user_id
	          WHERE m.room_id = $1
	          ORDER BY m.joined_at`
	var rows []models.MemberWithProfile
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, roomID); err != nil {
		return nil, fmt.Errorf("failed to list room members: %w", err)
	}
	out := make([]*domain.MemberProfile, 0, len(rows))
	for _, row := range rows {
		username := row.Username.String
		if username == "" {
			username = "Unknown"
		}
		level := 1
		if row.Level.Valid {
			level = int(row.Level.Int64)
		}
		out = append(out, &domain.MemberProfile{
			RoomMember: domain.RoomMember{
				RoomID:   row.RoomID,
				UserID:   row.UserID,
				Role:     domain.MemberRole(row.Role),
				JoinedAt: row.JoinedAt,
			},
			Username:    username,
			DisplayName: row.DisplayName.String,
			Level:       level,
		})
	}
	return out, nil
}
