package service

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"synapse/internal/cache"
	"synapse/internal/domain"
	"synapse/internal/logger"

	"go.uber.org/zap"
)

// PresenceService tracks who is currently working through a quiz. Every
// operation is best effort: cache failures are logged and swallowed.
type PresenceService interface {
	Touch(ctx context.Context, session domain.ActiveSession)
	Leave(ctx context.Context, quizID, userID string)
	ListActive(ctx context.Context, quizID, excludeUserID string) []domain.ActiveSession
}

type presenceServiceImpl struct {
	cache domain.Cache
	ttl   time.Duration
	now   func() time.Time
}

func NewPresenceService(cache domain.Cache, ttl time.Duration) PresenceService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &presenceServiceImpl{cache: cache, ttl: ttl, now: time.Now}
}

func (s *presenceServiceImpl) Touch(ctx context.Context, session domain.ActiveSession) {
	if s.cache == nil {
		return
	}
	session.LastActivity = s.now().UTC()
	data, err := json.Marshal(session)
	if err != nil {
		return
	}
	key := cache.PresenceKey(session.QuizID)
	if err := s.cache.HSet(ctx, key, session.UserID, string(data)); err != nil {
		logger.Get().Warn("Presence update failed", zap.String("quiz_id", session.QuizID), zap.Error(err))
		return
	}
	// The whole hash outlives any single session by one ttl.
	if err := s.cache.Expire(ctx, key, s.ttl); err != nil {
		logger.Get().Warn("Presence expiry failed", zap.String("quiz_id", session.QuizID), zap.Error(err))
	}
}

func (s *presenceServiceImpl) Leave(ctx context.Context, quizID, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.HDel(ctx, cache.PresenceKey(quizID), userID); err != nil {
		logger.Get().Warn("Presence removal failed", zap.String("quiz_id", quizID), zap.Error(err))
	}
}

// ListActive returns fresh sessions ordered by start time. Stale fields are
// pruned on the way.
func (s *presenceServiceImpl) ListActive(ctx context.Context, quizID, excludeUserID string) []domain.ActiveSession {
	out := []domain.ActiveSession{}
	if s.cache == nil {
		return out
	}
	key := cache.PresenceKey(quizID)
	fields, err := s.cache.HGetAll(ctx, key)
	if err != nil {
		logger.Get().Warn("Presence read failed", zap.String("quiz_id", quizID), zap.Error(err))
		return out
	}

	now := s.now().UTC()
	var stale []string
	for userID, raw := range fields {
		var sess domain.ActiveSession
		if err := json.Unmarshal([]byte(raw), &sess); err != nil || sess.Stale(now, s.ttl) {
			stale = append(stale, userID)
			continue
		}
		if userID == excludeUserID {
			continue
		}
		out = append(out, sess)
	}
	if len(stale) > 0 {
		if err := s.cache.HDel(ctx, key, stale...); err != nil {
			logger.Get().Warn("Presence prune failed", zap.String("quiz_id", quizID), zap.Error(err))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}
