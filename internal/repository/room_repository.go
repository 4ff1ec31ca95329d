package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"synapse/internal/domain"
	"synapse/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

type sqlxRoomRepository struct {
	db *sqlx.DB
}

func NewSQLXRoomRepository(db *sqlx.DB) domain.RoomRepository {
	return &sqlxRoomRepository{db: db}
}

const roomColumns = `id, code, name, mode, leaderboard_enabled, owner_id, created_at, updated_at`

func toDomainRoom(m *models.Room) *domain.Room {
	if m == nil {
		return nil
	}
	return &domain.Room{
		ID:                 m.ID,
		Code:               m.Code,
		Name:               m.Name,
		Mode:               domain.Mode(m.Mode),
		LeaderboardEnabled: m.LeaderboardEnabled,
		OwnerID:            m.OwnerID,
		CreatedAt:          m.CreatedAt,
	}
}

func fromDomainRoom(r *domain.Room) *models.Room {
	if r == nil {
		return nil
	}
	created := r.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return &models.Room{
		ID:                 r.ID,
		Code:               r.Code,
		Name:               r.Name,
		Mode:               string(r.Mode),
		LeaderboardEnabled: r.LeaderboardEnabled,
		OwnerID:            r.OwnerID,
		CreatedAt:          created,
		UpdatedAt:          created,
	}
}

// Create wraps domain.ErrDuplicate when the join code is already taken.
func (r *sqlxRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	m := fromDomainRoom(room)
	query := `INSERT INTO rooms (` + roomColumns + `)
	          VALUES (:id, :code, :name, :mode, :leaderboard_enabled, :owner_id, :created_at, :updated_at)`
	if _, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, m); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("room code %s: %w", room.Code, domain.ErrDuplicate)
		}
		return fmt.Errorf("failed to create room: %w", err)
	}
	room.CreatedAt = m.CreatedAt
	return nil
}

func (r *sqlxRoomRepository) getOne(ctx context.Context, where string, arg interface{}) (*domain.Room, error) {
	var m models.Room
	query := `SELECT ` + roomColumns + ` FROM rooms WHERE ` + where
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("Room not found")
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return toDomainRoom(&m), nil
}

func (r *sqlxRoomRepository) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *sqlxRoomRepository) GetByCode(ctx context.Context, code string) (*domain.Room, error) {
	return r.getOne(ctx, "code = $1", code)
}

// ListForUser returns rooms the user owns or joined, newest first.
func (r *sqlxRoomRepository) ListForUser(ctx context.Context, userID string) ([]*domain.Room, error) {
	query := `SELECT DISTINCT r.id, r.code, r.name, r.mode, r.leaderboard_enabled, r.owner_id, r.created_at, r.updated_at
	          FROM rooms r
	          LEFT JOIN room_members m ON m.room_id = r.id
	          WHERE r.owner_id = $1 OR m.user_id = $1
	          ORDER BY r.created_at DESC`
	var rows []models.Room
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	rooms := make([]*domain.Room, 0, len(rows))
	for i := range rows {
		rooms = append(rooms, toDomainRoom(&rows[i]))
	}
	return rooms, nil
}

// Leaderboard sums scores of completed attempts per user across the room's
// quizzes, highest total first.
func (r *sqlxRoomRepository) Leaderboard(ctx context.Context, roomID string) ([]domain.LeaderboardEntry, error) {
	query := `SELECT a.user_id,
	                 COALESCE(p.display_name, p.username, 'Unknown') AS display_name,
	                 COALESCE(SUM(a.score), 0) AS total_score,
	                 COUNT(*) AS quiz_count
	          FROM quiz_attempts a
	          JOIN quizzes q ON q.id = a.quiz_id
	          LEFT JOIN profiles p ON p.id = a.user_id
	          WHERE q.room_id = $1 AND a.status = 'completed'
	          GROUP BY a.user_id, p.display_name, p.username
	          ORDER BY total_score DESC, quiz_count DESC, a.user_id`
	var rows []models.LeaderboardRow
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, roomID); err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	entries := make([]domain.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.LeaderboardEntry{
			UserID:      row.UserID,
			DisplayName: row.DisplayName,
			TotalScore:  row.TotalScore,
			QuizCount:   row.QuizCount,
		})
	}
	return entries, nil
}
