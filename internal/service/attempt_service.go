package service

import (
	"context"
	"errors"
	"math"
	"time"

	"synapse/internal/domain"
	"synapse/internal/dto"
	"synapse/internal/logger"
	"synapse/internal/util"

	"go.uber.org/zap"
)

const defaultHistoryLimit = 20

// LeaderboardInvalidator drops cached aggregates after a completion.
type LeaderboardInvalidator interface {
	InvalidateLeaderboard(ctx context.Context, roomID string)
}

// AttemptService drives the attempt state machine for one user at a time.
type AttemptService interface {
	Start(ctx context.Context, userID, quizID string) (*dto.AttemptResponse, error)
	SelectAnswer(ctx context.Context, userID, attemptID string, req dto.SelectAnswerRequest) (*dto.SelectAnswerResponse, error)
	Submit(ctx context.Context, userID, attemptID string) (*dto.SubmitAttemptResponse, error)
	TimeUp(ctx context.Context, userID, attemptID string) (*dto.SubmitAttemptResponse, error)
	Get(ctx context.Context, userID, attemptID string) (*dto.AttemptResponse, error)
	Review(ctx context.Context, userID, attemptID string) (*dto.ReviewResponse, error)
	History(ctx context.Context, userID string, limit int) (*dto.AttemptHistoryResponse, error)
	ActiveUsers(ctx context.Context, userID, quizID string) (*dto.ActiveUsersResponse, error)
}

type attemptServiceImpl struct {
	tx           domain.TransactionManager
	attempts     domain.AttemptRepository
	quizzes      domain.QuizRepository
	prefs        domain.PreferencesRepository
	gamification GamificationService
	presence     PresenceService
	leaderboard  LeaderboardInvalidator
	guard        roomGuard
	now          func() time.Time
}

func NewAttemptService(
	tx domain.TransactionManager,
	attempts domain.AttemptRepository,
	quizzes domain.QuizRepository,
	rooms domain.RoomRepository,
	members domain.RoomMemberRepository,
	prefs domain.PreferencesRepository,
	gamification GamificationService,
	presence PresenceService,
	leaderboard LeaderboardInvalidator,
) AttemptService {
	return &attemptServiceImpl{
		tx:           tx,
		attempts:     attempts,
		quizzes:      quizzes,
		prefs:        prefs,
		gamification: gamification,
		presence:     presence,
		leaderboard:  leaderboard,
		guard:        roomGuard{rooms: rooms, members: members},
		now:          time.Now,
	}
}

// quizContext is everything the policy depends on for one (user, quiz).
type quizContext struct {
	quiz   *domain.Quiz
	room   *domain.Room
	policy domain.Policy
}

func (s *attemptServiceImpl) loadQuizContext(ctx context.Context, userID, quizID string) (*quizContext, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, wrapErr(err, "failed to load quiz")
	}
	room, err := s.guard.requireMember(ctx, quiz.RoomID, userID)
	if err != nil {
		return nil, err
	}
	prefs, err := s.prefs.Get(ctx, userID)
	if err != nil {
		return nil, wrapErr(err, "failed to load preferences")
	}
	return &quizContext{
		quiz:   quiz,
		room:   room,
		policy: domain.PolicyFor(room.Mode, quiz.TimeLimitMinutes, prefs),
	}, nil
}

// loadOwnedAttempt hides attempts of other users behind NOT_FOUND.
func (s *attemptServiceImpl) loadOwnedAttempt(ctx context.Context, userID, attemptID string) (*domain.Attempt, error) {
	a, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return nil, wrapErr(err, "failed to load attempt")
	}
	if a.UserID != userID {
		return nil, domain.NewNotFoundError("Attempt not found")
	}
	return a, nil
}

func (s *attemptServiceImpl) toResponse(a *domain.Attempt, policy domain.Policy) dto.AttemptResponse {
	resp := dto.AttemptResponse{
		ID:             a.ID,
		QuizID:         a.QuizID,
		Status:         string(a.Status),
		Answers:        a.Answers,
		Score:          a.Score,
		CorrectAnswers: a.CorrectAnswers,
		TotalQuestions: a.TotalQuestions,
		StartedAt:      a.StartedAt,
		CompletedAt:    a.CompletedAt,
		DeadlineAt:     a.DeadlineAt,
		Policy:         policy,
	}
	if resp.Answers == nil {
		resp.Answers = domain.Answers{}
	}
	if a.Status == domain.AttemptInProgress && a.DeadlineAt != nil {
		left := int(math.Ceil(a.DeadlineAt.Sub(s.now()).Seconds()))
		if left < 0 {
			left = 0
		}
		resp.RemainingSeconds = &left
	}
	return resp
}

func (s *attemptServiceImpl) touch(ctx context.Context, a *domain.Attempt, roomID string, current int) {
	s.presence.Touch(ctx, domain.ActiveSession{
		UserID:          a.UserID,
		QuizID:          a.QuizID,
		RoomID:          roomID,
		CurrentQuestion: current,
		AnswersCount:    len(a.Answers),
		StartedAt:       a.StartedAt,
	})
}

// Start resumes an open attempt, or opens a new one when the mode allows it.
// An open attempt whose timer already ran out is submitted first.
func (s *attemptServiceImpl) Start(ctx context.Context, userID, quizID string) (*dto.AttemptResponse, error) {
	l := logger.Get()
	qc, err := s.loadQuizContext(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	open, err := s.attempts.FindInProgress(ctx, userID, quizID)
	if err != nil {
		return nil, wrapErr(err, "failed to look up open attempt")
	}
	if open != nil {
		if !open.Expired(now) {
			return s.resume(ctx, open, qc), nil
		}
		l.Info("Submitting expired attempt before restart", zap.String("attempt_id", open.ID))
		if _, _, err := s.closeExpired(ctx, open, qc); err != nil {
			return nil, err
		}
	}

	completed, err := s.attempts.CountCompleted(ctx, userID, quizID)
	if err != nil {
		return nil, wrapErr(err, "failed to count attempts")
	}
	total, err := s.quizzes.CountQuestions(ctx, quizID)
	if err != nil {
		return nil, wrapErr(err, "failed to count questions")
	}
	a, err := domain.StartAttempt(domain.StartInput{
		AttemptID:      util.NewID(),
		UserID:         userID,
		QuizID:         quizID,
		TotalQuestions: total,
		Policy:         qc.policy,
		CompletedCount: completed,
		Now:            now,
	})
	if err != nil {
		return nil, err
	}

	if err := s.attempts.Create(ctx, a); err != nil {
		if !errors.Is(err, domain.ErrDuplicate) {
			return nil, wrapErr(err, "failed to start attempt")
		}
		// A concurrent Start won the insert; hand back its row.
		open, ferr := s.attempts.FindInProgress(ctx, userID, quizID)
		if ferr != nil || open == nil {
			return nil, wrapErr(err, "failed to start attempt")
		}
		return s.resume(ctx, open, qc), nil
	}

	l.Info("Attempt started", zap.String("attempt_id", a.ID), zap.String("quiz_id", quizID), zap.String("mode", string(qc.policy.Mode)))
	s.touch(ctx, a, qc.room.ID, 0)
	resp := s.toResponse(a, qc.policy)
	return &resp, nil
}

func (s *attemptServiceImpl) resume(ctx context.Context, a *domain.Attempt, qc *quizContext) *dto.AttemptResponse {
	s.touch(ctx, a, qc.room.ID, len(a.Answers))
	resp := s.toResponse(a, qc.policy)
	resp.Resumed = true
	return &resp
}

func (s *attemptServiceImpl) closeExpired(ctx context.Context, a *domain.Attempt, qc *quizContext) (*domain.Attempt, *dto.SubmitAttemptResponse, error) {
	questions, err := s.quizzes.GetQuestions(ctx, a.QuizID)
	if err != nil {
		return nil, nil, wrapErr(err, "failed to load questions")
	}
	done, result, err := domain.TimeUpAttempt(a, questions, s.now())
	if err != nil {
		return nil, nil, err
	}
	resp, err := s.finalize(ctx, done, result, qc)
	if err != nil && domain.ConflictReasonOf(err) == domain.ReasonAttemptCompleted {
		// Someone else closed it first.
		return done, nil, nil
	}
	return done, resp, err
}

func (s *attemptServiceImpl) SelectAnswer(ctx context.Context, userID, attemptID string, req dto.SelectAnswerRequest) (*dto.SelectAnswerResponse, error) {
	a, err := s.loadOwnedAttempt(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}
	qc, err := s.loadQuizContext(ctx, userID, a.QuizID)
	if err != nil {
		return nil, err
	}
	questions, err := s.quizzes.GetQuestions(ctx, a.QuizID)
	if err != nil {
		return nil, wrapErr(err, "failed to load questions")
	}
	var question *domain.Question
	for _, q := range questions {
		if q.ID == req.QuestionID {
			question = q
			break
		}
	}
	if question == nil {
		return nil, domain.NewNotFoundError("Question not found")
	}

	next, err := domain.SelectAnswer(a, req.QuestionID, req.Answer, s.now())
	if err != nil {
		if domain.ConflictReasonOf(err) == domain.ReasonTimeExpired {
			if _, _, ferr := s.closeExpired(ctx, a, qc); ferr != nil {
				logger.Get().Error("Failed to submit expired attempt", zap.String("attempt_id", a.ID), zap.Error(ferr))
			}
		}
		return nil, err
	}
	if err := s.attempts.UpdateAnswers(ctx, next); err != nil {
		return nil, wrapErr(err, "failed to save answer")
	}

	s.touch(ctx, next, qc.room.ID, question.OrderIndex)
	resp := &dto.SelectAnswerResponse{Attempt: s.toResponse(next, qc.policy)}
	if qc.policy.ImmediateFeedback {
		resp.Feedback = &dto.AnswerFeedback{
			Correct:       question.IsCorrect(req.Answer),
			CorrectAnswer: question.CorrectAnswer,
			Explanation:   question.Explanation,
		}
	}
	return resp, nil
}

func (s *attemptServiceImpl) Submit(ctx context.Context, userID, attemptID string) (*dto.SubmitAttemptResponse, error) {
	return s.complete(ctx, userID, attemptID, domain.SubmitAttempt)
}

func (s *attemptServiceImpl) TimeUp(ctx context.Context, userID, attemptID string) (*dto.SubmitAttemptResponse, error) {
	return s.complete(ctx, userID, attemptID, domain.TimeUpAttempt)
}

type transition func(a *domain.Attempt, questions []*domain.Question, now time.Time) (*domain.Attempt, domain.ScoreResult, error)

func (s *attemptServiceImpl) complete(ctx context.Context, userID, attemptID string, next transition) (*dto.SubmitAttemptResponse, error) {
	a, err := s.loadOwnedAttempt(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}
	qc, err := s.loadQuizContext(ctx, userID, a.QuizID)
	if err != nil {
		return nil, err
	}
	questions, err := s.quizzes.GetQuestions(ctx, a.QuizID)
	if err != nil {
		return nil, wrapErr(err, "failed to load questions")
	}
	done, result, err := next(a, questions, s.now())
	if err != nil {
		return nil, err
	}
	return s.finalize(ctx, done, result, qc)
}

// finalize stores the completed attempt and the gamification update in one
// transaction. The catalog is read before it opens. Presence and cache
// cleanup run after commit.
func (s *attemptServiceImpl) finalize(ctx context.Context, done *domain.Attempt, result domain.ScoreResult, qc *quizContext) (*dto.SubmitAttemptResponse, error) {
	catalog := s.gamification.Catalog(ctx)

	var outcome domain.Outcome
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.attempts.Finalize(ctx, done); err != nil {
			return err
		}
		var err error
		outcome, err = s.gamification.RecordCompletion(ctx, done.UserID, domain.Completion{
			CorrectAnswers: result.Correct,
			TotalQuestions: result.Total,
			Score:          result.Score,
			StartedAt:      done.StartedAt,
			CompletedAt:    *done.CompletedAt,
		}, catalog)
		return err
	})
	if err != nil {
		return nil, wrapErr(err, "failed to submit attempt")
	}

	s.presence.Leave(ctx, done.QuizID, done.UserID)
	if s.leaderboard != nil {
		s.leaderboard.InvalidateLeaderboard(ctx, qc.room.ID)
	}
	logger.Get().Info("Attempt completed",
		zap.String("attempt_id", done.ID),
		zap.Int("score", result.Score),
		zap.Int("xp_earned", outcome.XPEarned))

	return &dto.SubmitAttemptResponse{
		Attempt:  s.toResponse(done, qc.policy),
		Result:   result,
		Progress: outcome,
	}, nil
}

// Get reports the stored state without side effects.
func (s *attemptServiceImpl) Get(ctx context.Context, userID, attemptID string) (*dto.AttemptResponse, error) {
	a, err := s.loadOwnedAttempt(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}
	qc, err := s.loadQuizContext(ctx, userID, a.QuizID)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(a, qc.policy)
	return &resp, nil
}

func (s *attemptServiceImpl) Review(ctx context.Context, userID, attemptID string) (*dto.ReviewResponse, error) {
	a, err := s.loadOwnedAttempt(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}
	if a.Status != domain.AttemptCompleted {
		return nil, domain.NewForbiddenError("Review is available after submitting")
	}
	qc, err := s.loadQuizContext(ctx, userID, a.QuizID)
	if err != nil {
		return nil, err
	}
	if !qc.policy.ReviewAllowed {
		return nil, domain.NewForbiddenError("Answers are hidden for this quiz")
	}
	questions, err := s.quizzes.GetQuestions(ctx, a.QuizID)
	if err != nil {
		return nil, wrapErr(err, "failed to load questions")
	}

	resp := &dto.ReviewResponse{AttemptID: a.ID, QuizID: a.QuizID, Items: make([]dto.ReviewItem, 0, len(questions))}
	if a.Score != nil {
		resp.Score = *a.Score
	}
	for _, q := range questions {
		selected := a.Answers[q.ID]
		resp.Items = append(resp.Items, dto.ReviewItem{
			QuestionID:    q.ID,
			Text:          q.Text,
			Options:       q.Options,
			Selected:      selected,
			CorrectAnswer: q.CorrectAnswer,
			Correct:       q.IsCorrect(selected),
			Explanation:   q.Explanation,
		})
	}
	return resp, nil
}

func (s *attemptServiceImpl) History(ctx context.Context, userID string, limit int) (*dto.AttemptHistoryResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultHistoryLimit
	}
	list, err := s.attempts.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, wrapErr(err, "failed to list attempts")
	}
	out := &dto.AttemptHistoryResponse{Attempts: make([]dto.AttemptResponse, 0, len(list))}
	for _, a := range list {
		out.Attempts = append(out.Attempts, s.toResponse(a, domain.Policy{}))
	}
	return out, nil
}

func (s *attemptServiceImpl) ActiveUsers(ctx context.Context, userID, quizID string) (*dto.ActiveUsersResponse, error) {
	quiz, err := s.quizzes.GetByID(ctx, quizID)
	if err != nil {
		return nil, wrapErr(err, "failed to load quiz")
	}
	if _, err := s.guard.requireMember(ctx, quiz.RoomID, userID); err != nil {
		return nil, err
	}
	return &dto.ActiveUsersResponse{QuizID: quizID, Users: s.presence.ListActive(ctx, quizID, userID)}, nil
}
