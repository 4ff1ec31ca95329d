package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"synapse/internal/domain"
	"synapse/internal/dto"
	"synapse/internal/logger"
	"synapse/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// QuizService generates, stores and lists quizzes.
type QuizService interface {
	CreateQuiz(ctx context.Context, userID, roomID string, req dto.CreateQuizRequest) (*dto.QuizResponse, error)
	ListQuizzes(ctx context.Context, userID, roomID string) (*dto.QuizListResponse, error)
	GetQuiz(ctx context.Context, userID, quizID string) (*dto.QuizResponse, error)
	// GenerateQuestions backs POST /generate-quiz and stores nothing.
	GenerateQuestions(ctx context.Context, req dto.GenerateQuizRequest) (*dto.GenerateQuizResponse, error)
}

type quizServiceImpl struct {
	tx        domain.TransactionManager
	quizzes   domain.QuizRepository
	documents domain.DocumentRepository
	generator domain.QuizGenerator
	guard     roomGuard
	now       func() time.Time
}

func NewQuizService(
	tx domain.TransactionManager,
	quizzes domain.QuizRepository,
	documents domain.DocumentRepository,
	rooms domain.RoomRepository,
	members domain.RoomMemberRepository,
	generator domain.QuizGenerator,
) QuizService {
	return &quizServiceImpl{
		tx:        tx,
		quizzes:   quizzes,
		documents: documents,
		generator: generator,
		guard:     roomGuard{rooms: rooms, members: members},
		now:       time.Now,
	}
}

func toQuizResponse(q *domain.Quiz, questionCount int) dto.QuizResponse {
	return dto.QuizResponse{
		ID:               q.ID,
		RoomID:           q.RoomID,
		DocumentID:       q.DocumentID,
		Title:            q.Title,
		Description:      q.Description,
		Difficulty:       string(q.Difficulty),
		TimeLimitMinutes: q.TimeLimitMinutes,
		QuestionCount:    questionCount,
		CreatedBy:        q.CreatedBy,
		CreatedAt:        q.CreatedAt,
	}
}

func toQuestionResponses(questions []*domain.Question) []dto.QuestionResponse {
	out := make([]dto.QuestionResponse, 0, len(questions))
	for _, q := range questions {
		out = append(out, dto.QuestionResponse{
			ID:         q.ID,
			Text:       q.Text,
			Type:       string(q.Type),
			Options:    q.Options,
			OrderIndex: q.OrderIndex,
		})
	}
	return out
}

// CreateQuiz calls the generator outside any transaction and then stores the
// quiz with its ordered questions atomically.
func (s *quizServiceImpl) CreateQuiz(ctx context.Context, userID, roomID string, req dto.CreateQuizRequest) (*dto.QuizResponse, error) {
	l := logger.Get()
	if _, err := s.guard.requireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}
	doc, err := s.documents.GetByID(ctx, req.DocumentID)
	if err != nil {
		return nil, wrapErr(err, "failed to load document")
	}
	if doc.RoomID != roomID {
		return nil, domain.NewNotFoundError("Document not found")
	}

	difficulty := domain.Difficulty(req.Difficulty)
	if !difficulty.Valid() {
		difficulty = domain.DifficultyMedium
	}
	generated, err := s.generator.Generate(ctx, domain.GenerationRequest{
		Content:       doc.Content,
		Difficulty:    difficulty,
		QuestionCount: domain.ClampQuestionCount(req.QuestionCount),
	})
	if err != nil {
		l.Warn("Quiz generation failed", zap.String("room_id", roomID), zap.String("document_id", doc.ID), zap.Error(err))
		return nil, wrapErr(err, "failed to generate quiz")
	}

	var limit *int
	if req.TimeLimitMinutes != nil && *req.TimeLimitMinutes > 0 {
		v := *req.TimeLimitMinutes
		limit = &v
	}
	docID := doc.ID
	quiz := &domain.Quiz{
		ID:               util.NewID(),
		RoomID:           roomID,
		DocumentID:       &docID,
		CreatedBy:        userID,
		Title:            strings.TrimSpace(req.Title),
		Description:      strings.TrimSpace(req.Description),
		Difficulty:       difficulty,
		TimeLimitMinutes: limit,
		CreatedAt:        s.now().UTC(),
	}
	questions := make([]*domain.Question, 0, len(generated))
	for i, g := range generated {
		questions = append(questions, &domain.Question{
			ID:            util.NewID(),
			QuizID:        quiz.ID,
			Text:          g.Question,
			Type:          g.Type,
			Options:       g.Options,
			CorrectAnswer: g.Correct,
			Explanation:   g.Explanation,
			OrderIndex:    i,
		})
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.quizzes.Create(ctx, quiz); err != nil {
			return err
		}
		return s.quizzes.CreateQuestions(ctx, questions)
	})
	if err != nil {
		return nil, wrapErr(err, "failed to store quiz")
	}
	quiz.Questions = questions

	l.Info("Quiz created", zap.String("quiz_id", quiz.ID), zap.Int("questions", len(questions)))
	resp := toQuizResponse(quiz, len(questions))
	resp.Questions = toQuestionResponses(questions)
	return &resp, nil
}

func (s *quizServiceImpl) ListQuizzes(ctx context.Context, userID, roomID string) (*dto.QuizListResponse, error) {
	if _, err := s.guard.requireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}
	quizzes, err := s.quizzes.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, wrapErr(err, "failed to list quizzes")
	}

	counts := make([]int, len(quizzes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, q := range quizzes {
		i, q := i, q
		g.Go(func() error {
			n, err := s.quizzes.CountQuestions(gctx, q.ID)
			if err != nil {
				return err
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, wrapErr(err, "failed to count questions")
	}

	out := &dto.QuizListResponse{Quizzes: make([]dto.QuizResponse, 0, len(quizzes))}
	for i, q := range quizzes {
		out.Quizzes = append(out.Quizzes, toQuizResponse(q, counts[i]))
	}
	return out, nil
}

func (s *quizServiceImpl) GetQuiz(ctx context.Context, userID, quizID string) (*dto.QuizResponse, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, wrapErr(err, "failed to load quiz")
	}
	if _, err := s.guard.requireMember(ctx, quiz.RoomID, userID); err != nil {
		return nil, err
	}
	questions, err := s.quizzes.GetQuestions(ctx, quizID)
	if err != nil {
		return nil, wrapErr(err, "failed to load questions")
	}
	resp := toQuizResponse(quiz, len(questions))
	resp.Questions = toQuestionResponses(questions)
	return &resp, nil
}

func (s *quizServiceImpl) GenerateQuestions(ctx context.Context, req dto.GenerateQuizRequest) (*dto.GenerateQuizResponse, error) {
	generated, err := s.generator.Generate(ctx, domain.GenerationRequest{
		Content:       req.Content,
		Difficulty:    domain.Difficulty(req.Difficulty),
		QuestionCount: req.QuestionCount,
	})
	if err != nil {
		return nil, wrapErr(err, "failed to generate quiz")
	}
	out := &dto.GenerateQuizResponse{Questions: make([]dto.GeneratedQuestionResponse, 0, len(generated))}
	for _, g := range generated {
		options, err := json.Marshal(g.Options)
		if err != nil {
			return nil, domain.NewInternalError("failed to encode options", err)
		}
		out.Questions = append(out.Questions, dto.GeneratedQuestionResponse{
			Question: g.Question,
			Type:     string(g.Type),
			Options:  string(options),
			Correct:  g.Correct,
		})
	}
	return out, nil
}
