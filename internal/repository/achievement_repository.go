package repository

import (
	"context"
	"fmt"
	"time"

	"synapse/internal/domain"
	"synapse/internal/repository/models"
	"synapse/internal/util"

	"github.com/jmoiron/sqlx"
)

type sqlxAchievementRepository struct {
	db *sqlx.DB
}

func NewSQLXAchievementRepository(db *sqlx.DB) domain.AchievementRepository {
	return &sqlxAchievementRepository{db: db}
}

func toDomainAchievement(m *models.Achievement) domain.Achievement {
	return domain.Achievement{
		ID:               domain.AchievementID(m.ID),
		Name:             m.Name,
		Description:      m.Description,
		Icon:             m.Icon,
		Category:         m.Category,
		XPReward:         m.XPReward,
		RequirementValue: int(m.RequirementValue.Int64),
	}
}

func (r *sqlxAchievementRepository) ListCatalog(ctx context.Context) ([]domain.Achievement, error) {
	query := `SELECT id, name, description, icon, category, xp_reward, requirement_value
	          FROM achievements ORDER BY category, requirement_value NULLS FIRST, id`
	var rows []models.Achievement
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	out := make([]domain.Achievement, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainAchievement(&rows[i]))
	}
	return out, nil
}

func (r *sqlxAchievementRepository) ListEarned(ctx context.Context, userID string) (map[domain.AchievementID]time.Time, error) {
	query := `SELECT achievement_id, earned_at FROM user_achievements WHERE user_id = $1`
	var rows []models.UserAchievement
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list earned achievements: %w", err)
	}
	out := make(map[domain.AchievementID]time.Time, len(rows))
	for _, row := range rows {
		out[domain.AchievementID(row.AchievementID)] = row.EarnedAt
	}
	return out, nil
}

func (r *sqlxAchievementRepository) Award(ctx context.Context, userID string, id domain.AchievementID, at time.Time) (bool, error) {
	query := `INSERT INTO user_achievements (id, user_id, achievement_id, earned_at)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (user_id, achievement_id) DO NOTHING`
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, util.NewULID(), userID, string(id), at)
	if err != nil {
		return false, fmt.Errorf("failed to award achievement %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 1, nil
}
