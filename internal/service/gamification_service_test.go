package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"synapse/internal/cache"
	"synapse/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type gamificationFixture struct {
	profiles     *MockProfileRepository
	achievements *MockAchievementRepository
	activity     *MockActivityRepository
	svc          *gamificationServiceImpl
}

func newGamificationFixture(c domain.Cache) *gamificationFixture {
	f := &gamificationFixture{
		profiles:     new(MockProfileRepository),
		achievements: new(MockAchievementRepository),
		activity:     new(MockActivityRepository),
	}
	f.svc = NewGamificationService(f.profiles, f.achievements, f.activity, c, time.Hour).(*gamificationServiceImpl)
	f.svc.now = func() time.Time { return time.Date(2026, 5, 10, 15, 0, 0, 0, time.UTC) }
	return f
}

func TestGamificationService_RecordCompletion(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	perfect := domain.Completion{CorrectAnswers: 5, TotalQuestions: 5, Score: 100, StartedAt: start, CompletedAt: start.Add(10 * time.Minute)}

	t.Run("first perfect quiz", func(t *testing.T) {
		f := newGamificationFixture(nil)
		f.profiles.On("GetForUpdate", mock.Anything, "u1").Return(&domain.Stats{UserID: "u1", Level: 1}, nil)
		f.achievements.On("ListEarned", mock.Anything, "u1").Return(map[domain.AchievementID]time.Time{}, nil)
		f.achievements.On("Award", mock.Anything, "u1", domain.AchievementFirstQuiz, perfect.CompletedAt).Return(true, nil)
		f.achievements.On("Award", mock.Anything, "u1", domain.AchievementPerfectScore, perfect.CompletedAt).Return(true, nil)
		f.profiles.On("Update", mock.Anything, mock.MatchedBy(func(s *domain.Stats) bool {
			return s.XP == 250 && s.Level == 3 && s.StreakDays == 1 && s.TotalQuizzesCompleted == 1
		})).Return(nil)
		f.activity.On("Record", mock.Anything, "u1", domain.CalendarDay(start), domain.DailyActivity{
			QuizzesCompleted: 1, XPEarned: 250, QuestionsAnswered: 5, CorrectAnswers: 5,
		}).Return(nil)

		out, err := f.svc.RecordCompletion(ctx, "u1", perfect, domain.DefaultAchievementCatalog())
		require.NoError(t, err)
		assert.Equal(t, 125, out.BaseXP)
		assert.Equal(t, 250, out.XPEarned)
		assert.True(t, out.LevelUp)
		assert.Len(t, out.NewAchievements, 2)
		f.profiles.AssertExpectations(t)
		f.activity.AssertExpectations(t)
	})

	t.Run("award lost to a concurrent insert is not paid", func(t *testing.T) {
		f := newGamificationFixture(nil)
		f.profiles.On("GetForUpdate", mock.Anything, "u1").Return(&domain.Stats{UserID: "u1", Level: 1}, nil)
		f.achievements.On("ListEarned", mock.Anything, "u1").Return(map[domain.AchievementID]time.Time{}, nil)
		f.achievements.On("Award", mock.Anything, "u1", domain.AchievementFirstQuiz, mock.Anything).Return(false, nil)
		f.achievements.On("Award", mock.Anything, "u1", domain.AchievementPerfectScore, mock.Anything).Return(true, nil)
		f.profiles.On("Update", mock.Anything, mock.MatchedBy(func(s *domain.Stats) bool { return s.XP == 200 })).Return(nil)
		f.activity.On("Record", mock.Anything, "u1", mock.Anything, mock.Anything).Return(nil)

		out, err := f.svc.RecordCompletion(ctx, "u1", perfect, domain.DefaultAchievementCatalog())
		require.NoError(t, err)
		assert.Equal(t, 200, out.XPEarned)
		require.Len(t, out.NewAchievements, 1)
		assert.Equal(t, domain.AchievementPerfectScore, out.NewAchievements[0].ID)
	})

	t.Run("empty catalog uses the built-in one without a query", func(t *testing.T) {
		f := newGamificationFixture(nil)
		f.profiles.On("GetForUpdate", mock.Anything, "u1").Return(&domain.Stats{UserID: "u1", Level: 1}, nil)
		f.achievements.On("ListEarned", mock.Anything, "u1").Return(map[domain.AchievementID]time.Time{}, nil)
		f.achievements.On("Award", mock.Anything, "u1", mock.Anything, mock.Anything).Return(true, nil)
		f.profiles.On("Update", mock.Anything, mock.Anything).Return(nil)
		f.activity.On("Record", mock.Anything, "u1", mock.Anything, mock.Anything).Return(nil)

		out, err := f.svc.RecordCompletion(ctx, "u1", perfect, nil)
		require.NoError(t, err)
		assert.Len(t, out.NewAchievements, 2)
		f.achievements.AssertNotCalled(t, "ListCatalog", mock.Anything)
	})

	t.Run("award failure aborts", func(t *testing.T) {
		f := newGamificationFixture(nil)
		f.profiles.On("GetForUpdate", mock.Anything, "u1").Return(&domain.Stats{UserID: "u1"}, nil)
		f.achievements.On("ListEarned", mock.Anything, "u1").Return(map[domain.AchievementID]time.Time{}, nil)
		f.achievements.On("Award", mock.Anything, "u1", mock.Anything, mock.Anything).Return(false, errors.New("db down"))

		_, err := f.svc.RecordCompletion(ctx, "u1", perfect, domain.DefaultAchievementCatalog())
		assert.True(t, domain.IsCode(err, domain.CodeInternal))
		f.profiles.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestGamificationService_Catalog(t *testing.T) {
	ctx := context.Background()

	t.Run("falls back to the built-in list", func(t *testing.T) {
		f := newGamificationFixture(nil)
		f.achievements.On("ListCatalog", mock.Anything).Return(nil, errors.New("relation does not exist"))
		assert.Equal(t, domain.DefaultAchievementCatalog(), f.svc.Catalog(ctx))
	})

	t.Run("served from cache after the first read", func(t *testing.T) {
		c, mr := newTestCache(t)
		f := newGamificationFixture(c)
		custom := []domain.Achievement{{ID: domain.AchievementFirstQuiz, Name: "Hello", XPReward: 5}}
		f.achievements.On("ListCatalog", mock.Anything).Return(custom, nil).Once()

		assert.Equal(t, custom, f.svc.Catalog(ctx))
		assert.Equal(t, custom, f.svc.Catalog(ctx))
		f.achievements.AssertNumberOfCalls(t, "ListCatalog", 1)

		raw, err := mr.Get(cache.AchievementCatalogKey())
		require.NoError(t, err)
		var cached []domain.Achievement
		require.NoError(t, json.Unmarshal([]byte(raw), &cached))
		assert.Equal(t, custom, cached)
	})
}

func TestGamificationService_GetProfile(t *testing.T) {
	ctx := context.Background()
	last := time.Date(2026, 5, 9, 0, 0, 0, 0, time.UTC)

	t.Run("creates a missing profile", func(t *testing.T) {
		f := newGamificationFixture(nil)
		f.profiles.On("Get", mock.Anything, "u1").Return(nil, domain.NewNotFoundError("Profile not found")).Once()
		f.profiles.On("EnsureProfile", mock.Anything, "u1", "alice").Return(nil)
		f.profiles.On("Get", mock.Anything, "u1").Return(&domain.Stats{UserID: "u1", Username: "alice", Level: 1}, nil).Once()
		f.achievements.On("ListEarned", mock.Anything, "u1").Return(map[domain.AchievementID]time.Time{}, nil)
		f.activity.On("ListSince", mock.Anything, "u1", mock.Anything).Return(nil, nil)

		p, err := f.svc.GetProfile(ctx, "u1", "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", p.Username)
		assert.Equal(t, 1, p.Level)
		assert.NotNil(t, p.RecentActivity)
	})

	t.Run("accuracy and level progress", func(t *testing.T) {
		f := newGamificationFixture(nil)
		f.profiles.On("Get", mock.Anything, "u1").Return(&domain.Stats{
			UserID: "u1", XP: 249, Level: 3, StreakDays: 2, LastActivityDate: &last,
			TotalCorrectAnswers: 7, TotalQuestionsAnswered: 10,
		}, nil)
		f.achievements.On("ListEarned", mock.Anything, "u1").Return(map[domain.AchievementID]time.Time{
			domain.AchievementFirstQuiz: last,
		}, nil)
		f.activity.On("ListSince", mock.Anything, "u1", time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)).
			Return([]domain.DailyActivity{{Date: last, QuizzesCompleted: 1}}, nil)

		p, err := f.svc.GetProfile(ctx, "u1", "alice")
		require.NoError(t, err)
		assert.Equal(t, 70, p.Accuracy)
		assert.Equal(t, 49, p.LevelProgress.XPIntoLevel)
		assert.Equal(t, 1, p.AchievementsEarned)
		assert.Len(t, p.RecentActivity, 1)
	})
}

func TestGamificationService_ListAchievements(t *testing.T) {
	f := newGamificationFixture(nil)
	earnedAt := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	f.achievements.On("ListEarned", mock.Anything, "u1").Return(map[domain.AchievementID]time.Time{
		domain.AchievementStreak30: earnedAt,
	}, nil)
	f.achievements.On("ListCatalog", mock.Anything).Return(domain.DefaultAchievementCatalog(), nil)

	resp, err := f.svc.ListAchievements(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 8, resp.TotalCount)
	assert.Equal(t, 1, resp.EarnedCount)
	first := resp.Achievements[0]
	assert.Equal(t, domain.AchievementStreak30, first.ID)
	assert.True(t, first.Earned)
	assert.Equal(t, "legendary", first.Rarity)
	require.NotNil(t, first.EarnedAt)
	assert.Equal(t, earnedAt, *first.EarnedAt)
	assert.False(t, resp.Achievements[1].Earned)
}

func TestGamificationService_GetActivity_FillsGaps(t *testing.T) {
	f := newGamificationFixture(nil)
	since := time.Date(2026, 5, 8, 0, 0, 0, 0, time.UTC)
	f.activity.On("ListSince", mock.Anything, "u1", since).Return([]domain.DailyActivity{
		{Date: time.Date(2026, 5, 9, 0, 0, 0, 0, time.UTC), QuizzesCompleted: 2, XPEarned: 80},
	}, nil)

	resp, err := f.svc.GetActivity(context.Background(), "u1", 3)
	require.NoError(t, err)
	require.Len(t, resp.Days, 3)
	assert.Equal(t, since, resp.Days[0].Date)
	assert.Equal(t, 0, resp.Days[0].QuizzesCompleted)
	assert.Equal(t, 2, resp.Days[1].QuizzesCompleted)
	assert.Equal(t, time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC), resp.Days[2].Date)
	assert.Equal(t, 80, resp.TotalXP)
	assert.Equal(t, 2, resp.TotalQuizzes)
}

func TestGamificationService_GetActivity_ClampsDays(t *testing.T) {
	f := newGamificationFixture(nil)
	f.activity.On("ListSince", mock.Anything, "u1", mock.Anything).Return([]domain.DailyActivity{}, nil)

	resp, err := f.svc.GetActivity(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Len(t, resp.Days, defaultActivityDays)

	resp, err = f.svc.GetActivity(context.Background(), "u1", 5000)
	require.NoError(t, err)
	assert.Len(t, resp.Days, maxActivityDays)
}
