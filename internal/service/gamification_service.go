package service

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"synapse/internal/cache"
	"synapse/internal/domain"
	"synapse/internal/dto"
	"synapse/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	defaultActivityDays = 30
	maxActivityDays     = 365
)

// GamificationService owns XP, levels, streaks, achievements and daily activity.
type GamificationService interface {
	// Catalog returns the achievement catalog. Callers load it before opening
	// the finalisation transaction so a failed read cannot abort that tx.
	Catalog(ctx context.Context) []domain.Achievement
	// RecordCompletion must be called inside the transaction that finalises
	// the attempt. An empty catalog means the built-in one.
	RecordCompletion(ctx context.Context, userID string, c domain.Completion, catalog []domain.Achievement) (domain.Outcome, error)
	GetProfile(ctx context.Context, userID, username string) (*dto.ProfileResponse, error)
	ListAchievements(ctx context.Context, userID string) (*dto.AchievementListResponse, error)
	GetActivity(ctx context.Context, userID string, days int) (*dto.ActivityResponse, error)
}

type gamificationServiceImpl struct {
	profiles     domain.ProfileRepository
	achievements domain.AchievementRepository
	activity     domain.ActivityRepository
	cache        domain.Cache
	catalogTTL   time.Duration
	sf           singleflight.Group
	now          func() time.Time
}

func NewGamificationService(
	profiles domain.ProfileRepository,
	achievements domain.AchievementRepository,
	activity domain.ActivityRepository,
	cache domain.Cache,
	catalogTTL time.Duration,
) GamificationService {
	return &gamificationServiceImpl{
		profiles:     profiles,
		achievements: achievements,
		activity:     activity,
		cache:        cache,
		catalogTTL:   catalogTTL,
		now:          time.Now,
	}
}

func (s *gamificationServiceImpl) RecordCompletion(ctx context.Context, userID string, c domain.Completion, catalog []domain.Achievement) (domain.Outcome, error) {
	if len(catalog) == 0 {
		catalog = domain.DefaultAchievementCatalog()
	}
	prev, err := s.profiles.GetForUpdate(ctx, userID)
	if err != nil {
		return domain.Outcome{}, wrapErr(err, "failed to load profile")
	}
	earnedAt, err := s.achievements.ListEarned(ctx, userID)
	if err != nil {
		return domain.Outcome{}, wrapErr(err, "failed to load achievements")
	}
	earned := make(map[domain.AchievementID]bool, len(earnedAt))
	for id := range earnedAt {
		earned[id] = true
	}

	progress := domain.ApplyCompletion(*prev, c, catalog, earned)

	planned := append([]domain.Achievement(nil), progress.Awarded...)
	for _, a := range planned {
		inserted, err := s.achievements.Award(ctx, userID, a.ID, c.CompletedAt)
		if err != nil {
			return domain.Outcome{}, wrapErr(err, "failed to award achievement")
		}
		if !inserted {
			progress.Revoke(a.ID)
		}
	}

	if err := s.profiles.Update(ctx, &progress.Stats); err != nil {
		return domain.Outcome{}, wrapErr(err, "failed to update profile")
	}

	outcome := progress.Outcome()
	delta := domain.DailyActivity{
		QuizzesCompleted:  1,
		XPEarned:          outcome.XPEarned,
		QuestionsAnswered: c.TotalQuestions,
		CorrectAnswers:    c.CorrectAnswers,
	}
	if err := s.activity.Record(ctx, userID, domain.CalendarDay(c.CompletedAt), delta); err != nil {
		return domain.Outcome{}, wrapErr(err, "failed to record activity")
	}

	logger.Get().Info("Completion recorded",
		zap.String("user_id", userID),
		zap.Int("xp_earned", outcome.XPEarned),
		zap.Int("level", outcome.NewLevel),
		zap.Int("achievements", len(outcome.NewAchievements)))
	return outcome, nil
}

// Catalog reads the achievement catalog through the cache and falls back to
// the built-in list when both the cache and the table are unavailable.
func (s *gamificationServiceImpl) Catalog(ctx context.Context) []domain.Achievement {
	key := cache.AchievementCatalogKey()
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key); err == nil {
			var list []domain.Achievement
			if err := json.Unmarshal([]byte(raw), &list); err == nil && len(list) > 0 {
				return list
			}
		} else if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("Achievement catalog cache read failed", zap.Error(err))
		}
	}

	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		list, err := s.achievements.ListCatalog(ctx)
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, errors.New("achievement catalog is empty")
		}
		if s.cache != nil {
			if data, err := json.Marshal(list); err == nil {
				if err := s.cache.Set(ctx, key, string(data), s.catalogTTL); err != nil {
					logger.Get().Warn("Achievement catalog cache write failed", zap.Error(err))
				}
			}
		}
		return list, nil
	})
	if err != nil {
		logger.Get().Warn("Using built-in achievement catalog", zap.Error(err))
		return domain.DefaultAchievementCatalog()
	}
	return v.([]domain.Achievement)
}

func (s *gamificationServiceImpl) GetProfile(ctx context.Context, userID, username string) (*dto.ProfileResponse, error) {
	stats, err := s.profiles.Get(ctx, userID)
	if domain.IsCode(err, domain.CodeNotFound) {
		if err := s.profiles.EnsureProfile(ctx, userID, username); err != nil {
			return nil, wrapErr(err, "failed to create profile")
		}
		stats, err = s.profiles.Get(ctx, userID)
	}
	if err != nil {
		return nil, wrapErr(err, "failed to load profile")
	}

	var (
		earned map[domain.AchievementID]time.Time
		recent []domain.DailyActivity
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		earned, err = s.achievements.ListEarned(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.activity.ListSince(gctx, userID, domain.CalendarDay(s.now()).AddDate(0, 0, -6))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, wrapErr(err, "failed to load profile details")
	}
	if recent == nil {
		recent = []domain.DailyActivity{}
	}

	accuracy := 0
	if stats.TotalQuestionsAnswered > 0 {
		accuracy = stats.TotalCorrectAnswers * 100 / stats.TotalQuestionsAnswered
	}
	return &dto.ProfileResponse{
		UserID:                 stats.UserID,
		Username:               stats.Username,
		DisplayName:            stats.DisplayName,
		XP:                     stats.XP,
		Level:                  stats.Level,
		StreakDays:             stats.StreakDays,
		LastActivityDate:       stats.LastActivityDate,
		TotalQuizzesCompleted:  stats.TotalQuizzesCompleted,
		TotalCorrectAnswers:    stats.TotalCorrectAnswers,
		TotalQuestionsAnswered: stats.TotalQuestionsAnswered,
		Accuracy:               accuracy,
		LevelProgress:          domain.ProgressForXP(stats.XP),
		AchievementsEarned:     len(earned),
		RecentActivity:         recent,
	}, nil
}

func (s *gamificationServiceImpl) ListAchievements(ctx context.Context, userID string) (*dto.AchievementListResponse, error) {
	earned, err := s.achievements.ListEarned(ctx, userID)
	if err != nil {
		return nil, wrapErr(err, "failed to load achievements")
	}
	catalog := s.Catalog(ctx)
	out := &dto.AchievementListResponse{
		Achievements: make([]dto.AchievementResponse, 0, len(catalog)),
		TotalCount:   len(catalog),
	}
	for _, a := range catalog {
		item := dto.AchievementResponse{Achievement: a, Rarity: a.Rarity()}
		if at, ok := earned[a.ID]; ok {
			at := at
			item.Earned = true
			item.EarnedAt = &at
			out.EarnedCount++
		}
		out.Achievements = append(out.Achievements, item)
	}
	// Earned first, then by reward.
	sort.SliceStable(out.Achievements, func(i, j int) bool {
		a, b := out.Achievements[i], out.Achievements[j]
		if a.Earned != b.Earned {
			return a.Earned
		}
		return a.XPReward < b.XPReward
	})
	return out, nil
}

// GetActivity returns one entry per UTC day, oldest first, with zero rows
// for days without completions.
func (s *gamificationServiceImpl) GetActivity(ctx context.Context, userID string, days int) (*dto.ActivityResponse, error) {
	if days <= 0 {
		days = defaultActivityDays
	}
	if days > maxActivityDays {
		days = maxActivityDays
	}
	today := domain.CalendarDay(s.now())
	since := today.AddDate(0, 0, -(days - 1))
	rows, err := s.activity.ListSince(ctx, userID, since)
	if err != nil {
		return nil, wrapErr(err, "failed to load activity")
	}
	byDay := make(map[time.Time]domain.DailyActivity, len(rows))
	for _, r := range rows {
		byDay[domain.CalendarDay(r.Date)] = r
	}

	out := &dto.ActivityResponse{Days: make([]domain.DailyActivity, 0, days)}
	for d := since; !d.After(today); d = d.AddDate(0, 0, 1) {
		entry, ok := byDay[d]
		if !ok {
			entry = domain.DailyActivity{}
		}
		entry.Date = d
		out.TotalXP += entry.XPEarned
		out.TotalQuizzes += entry.QuizzesCompleted
		out.Days = append(out.Days, entry)
	}
	return out, nil
}
