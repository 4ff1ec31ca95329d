package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"synapse/internal/domain"
	"synapse/internal/repository/models"
	"synapse/internal/util"

	"github.com/jmoiron/sqlx"
)

type sqlxAttemptRepository struct {
	db *sqlx.DB
}

func NewSQLXAttemptRepository(db *sqlx.DB) domain.AttemptRepository {
	return &sqlxAttemptRepository{db: db}
}

const attemptColumns = `id, user_id, quiz_id, status, answers, score, correct_answers, total_questions, started_at, completed_at, deadline_at, created_at`

func toDomainAttempt(m *models.QuizAttempt) *domain.Attempt {
	if m == nil {
		return nil
	}
	a := &domain.Attempt{
		ID:             m.ID,
		UserID:         m.UserID,
		QuizID:         m.QuizID,
		Status:         domain.AttemptStatus(m.Status),
		Answers:        domain.Answers(m.Answers),
		Score:          intFromNull(m.Score),
		CorrectAnswers: m.CorrectAnswers,
		TotalQuestions: m.TotalQuestions,
		CompletedAt:    timeFromNull(m.CompletedAt),
		DeadlineAt:     timeFromNull(m.DeadlineAt),
		CreatedAt:      m.CreatedAt,
	}
	if a.Answers == nil {
		a.Answers = domain.Answers{}
	}
	if m.StartedAt.Valid {
		a.StartedAt = m.StartedAt.Time
	} else {
		a.StartedAt = m.CreatedAt
	}
	return a
}

func fromDomainAttempt(a *domain.Attempt) *models.QuizAttempt {
	if a == nil {
		return nil
	}
	return &models.QuizAttempt{
		ID:             a.ID,
		UserID:         a.UserID,
		QuizID:         a.QuizID,
		Status:         string(a.Status),
		Answers:        models.AnswerMap(a.Answers),
		Score:          nullableInt(a.Score),
		CorrectAnswers: a.CorrectAnswers,
		TotalQuestions: a.TotalQuestions,
		StartedAt:      util.TimeToNullTime(a.StartedAt),
		CompletedAt:    util.TimePtrToNullTime(a.CompletedAt),
		DeadlineAt:     util.TimePtrToNullTime(a.DeadlineAt),
		CreatedAt:      a.CreatedAt,
	}
}

// Create wraps domain.ErrDuplicate when the user already has an open
// attempt on the quiz.
func (r *sqlxAttemptRepository) Create(ctx context.Context, a *domain.Attempt) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = a.StartedAt
	}
	query := `INSERT INTO quiz_attempts (` + attemptColumns + `)
	          VALUES (:id, :user_id, :quiz_id, :status, :answers, :score, :correct_answers, :total_questions, :started_at, :completed_at, :deadline_at, :created_at)`
	if _, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, fromDomainAttempt(a)); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("open attempt for quiz %s: %w", a.QuizID, domain.ErrDuplicate)
		}
		return fmt.Errorf("failed to create attempt: %w", err)
	}
	return nil
}

func (r *sqlxAttemptRepository) GetByID(ctx context.Context, id string) (*domain.Attempt, error) {
	var m models.QuizAttempt
	query := `SELECT ` + attemptColumns + ` FROM quiz_attempts WHERE id = $1`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("Attempt not found")
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return toDomainAttempt(&m), nil
}

// FindInProgress returns nil, nil when there is no open attempt.
func (r *sqlxAttemptRepository) FindInProgress(ctx context.Context, userID, quizID string) (*domain.Attempt, error) {
	var m models.QuizAttempt
	query := `SELECT ` + attemptColumns + ` FROM quiz_attempts
	          WHERE user_id = $1 AND quiz_id = $2 AND status = 'in_progress'
	          ORDER BY started_at DESC LIMIT 1`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, userID, quizID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find open attempt: %w", err)
	}
	return toDomainAttempt(&m), nil
}

func (r *sqlxAttemptRepository) CountCompleted(ctx context.Context, userID, quizID string) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM quiz_attempts WHERE user_id = $1 AND quiz_id = $2 AND status = 'completed'`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &n, query, userID, quizID); err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}
	return n, nil
}

func (r *sqlxAttemptRepository) UpdateAnswers(ctx context.Context, a *domain.Attempt) error {
	query := `UPDATE quiz_attempts SET answers = $1 WHERE id = $2 AND status = 'in_progress'`
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, models.AnswerMap(a.Answers), a.ID)
	if err != nil {
		return fmt.Errorf("failed to save answers: %w", err)
	}
	return requireOneRow(res)
}

// Finalize only matches rows still in progress, so the second of two
// concurrent submits affects nothing and gets a CONFLICT.
func (r *sqlxAttemptRepository) Finalize(ctx context.Context, a *domain.Attempt) error {
	query := `UPDATE quiz_attempts
	          SET status = 'completed', answers = $1, score = $2, correct_answers = $3, completed_at = $4
	          WHERE id = $5 AND status = 'in_progress'`
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		models.AnswerMap(a.Answers), nullableInt(a.Score), a.CorrectAnswers, util.TimePtrToNullTime(a.CompletedAt), a.ID)
	if err != nil {
		return fmt.Errorf("failed to finalize attempt: %w", err)
	}
	return requireOneRow(res)
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.NewConflictError(domain.ReasonAttemptCompleted, "This attempt has already been submitted")
	}
	return nil
}

func (r *sqlxAttemptRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Attempt, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + attemptColumns + ` FROM quiz_attempts
	          WHERE user_id = $1 ORDER BY started_at DESC LIMIT $2`
	var rows []models.QuizAttempt
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	out := make([]*domain.Attempt, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainAttempt(&rows[i]))
	}
	return out, nil
}
