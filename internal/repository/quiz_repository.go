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

type sqlxQuizRepository struct {
	db *sqlx.DB
}

func NewSQLXQuizRepository(db *sqlx.DB) domain.QuizRepository {
	return &sqlxQuizRepository{db: db}
}

const quizColumns = `id, room_id, document_id, created_by, title, description, difficulty, time_limit_minutes, created_at`

func toDomainQuiz(m *models.Quiz) *domain.Quiz {
	if m == nil {
		return nil
	}
	q := &domain.Quiz{
		ID:               m.ID,
		RoomID:           m.RoomID,
		CreatedBy:        m.CreatedBy,
		Title:            m.Title,
		Description:      m.Description.String,
		Difficulty:       domain.Difficulty(m.Difficulty),
		TimeLimitMinutes: intFromNull(m.TimeLimitMinutes),
		CreatedAt:        m.CreatedAt,
	}
	if m.DocumentID.Valid {
		id := m.DocumentID.String
		q.DocumentID = &id
	}
	return q
}

func fromDomainQuiz(q *domain.Quiz) *models.Quiz {
	if q == nil {
		return nil
	}
	m := &models.Quiz{
		ID:               q.ID,
		RoomID:           q.RoomID,
		CreatedBy:        q.CreatedBy,
		Title:            q.Title,
		Description:      util.StringToNullString(q.Description),
		Difficulty:       string(q.Difficulty),
		TimeLimitMinutes: nullableInt(q.TimeLimitMinutes),
		CreatedAt:        q.CreatedAt,
	}
	if q.DocumentID != nil {
		m.DocumentID = sql.NullString{String: *q.DocumentID, Valid: true}
	}
	return m
}

func toDomainQuestion(m *models.Question) *domain.Question {
	return &domain.Question{
		ID:            m.ID,
		QuizID:        m.QuizID,
		Text:          m.QuestionText,
		Type:          domain.QuestionType(m.QuestionType),
		Options:       []string(m.Options),
		CorrectAnswer: m.CorrectAnswer,
		Explanation:   m.Explanation.String,
		OrderIndex:    m.OrderIndex,
	}
}

func fromDomainQuestion(q *domain.Question) *models.Question {
	return &models.Question{
		ID:            q.ID,
		QuizID:        q.QuizID,
		QuestionText:  q.Text,
		QuestionType:  string(q.Type),
		Options:       models.StringSlice(q.Options),
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   util.StringToNullString(q.Explanation),
		OrderIndex:    q.OrderIndex,
	}
}

func (r *sqlxQuizRepository) Create(ctx context.Context, quiz *domain.Quiz) error {
	if quiz.CreatedAt.IsZero() {
		quiz.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO quizzes (` + quizColumns + `)
	          VALUES (:id, :room_id, :document_id, :created_by, :title, :description, :difficulty, :time_limit_minutes, :created_at)`
	if _, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, fromDomainQuiz(quiz)); err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	return nil
}

// CreateQuestions inserts one row per question so callers inside a
// transaction see a failure for the exact question that broke.
func (r *sqlxQuizRepository) CreateQuestions(ctx context.Context, questions []*domain.Question) error {
	query := `INSERT INTO questions (id, quiz_id, question_text, question_type, options, correct_answer, explanation, order_index)
	          VALUES (:id, :quiz_id, :question_text, :question_type, :options, :correct_answer, :explanation, :order_index)`
	exec := GetExecutor(ctx, r.db)
	for _, q := range questions {
		if _, err := exec.NamedExecContext(ctx, query, fromDomainQuestion(q)); err != nil {
			return fmt.Errorf("failed to create question %d: %w", q.OrderIndex, err)
		}
	}
	return nil
}

func (r *sqlxQuizRepository) GetByID(ctx context.Context, id string) (*domain.Quiz, error) {
	var m models.Quiz
	query := `SELECT ` + quizColumns + ` FROM quizzes WHERE id = $1`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("Quiz not found")
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return toDomainQuiz(&m), nil
}

func (r *sqlxQuizRepository) GetQuestions(ctx context.Context, quizID string) ([]*domain.Question, error) {
	query := `SELECT id, quiz_id, question_text, question_type, options, correct_answer, explanation, order_index
	          FROM questions WHERE quiz_id = $1 ORDER BY order_index`
	var rows []models.Question
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, quizID); err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	out := make([]*domain.Question, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainQuestion(&rows[i]))
	}
	return out, nil
}

func (r *sqlxQuizRepository) ListByRoom(ctx context.Context, roomID string) ([]*domain.Quiz, error) {
	query := `SELECT ` + quizColumns + ` FROM quizzes WHERE room_id = $1 ORDER BY created_at DESC`
	var rows []models.Quiz
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, roomID); err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}
	out := make([]*domain.Quiz, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainQuiz(&rows[i]))
	}
	return out, nil
}

func (r *sqlxQuizRepository) CountQuestions(ctx context.Context, quizID string) (int, error) {
	var n int
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &n, `SELECT COUNT(*) FROM questions WHERE quiz_id = $1`, quizID); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return n, nil
}
