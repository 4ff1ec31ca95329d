package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"synapse/internal/domain"
	"synapse/internal/dto"
	"synapse/internal/handler"
	"synapse/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

const (
	testUserID   = "6f1c2a4e-2b7d-4c61-9d9e-1a2b3c4d5e6f"
	testUsername = "alice"
	roomID       = "0b8f3c1e-8a0d-4f0e-9a57-4a3c2f1d0e9b"
	quizID       = "1c9e4d2f-9b1e-4a1f-8b68-5b4d3e2f1a0c"
	attemptID    = "2dab5e30-ac2f-4b20-9c79-6c5e4f302b1d"
	questionID   = "3ebc6f41-bd30-4c31-ad8a-7d6f50413c2e"
)

// --- Manual Mocks ---

type MockRoomService struct {
	CreateRoomFunc            func(ctx context.Context, userID, username string, req dto.CreateRoomRequest) (*dto.RoomResponse, error)
	JoinRoomFunc              func(ctx context.Context, userID, username string, req dto.JoinRoomRequest) (*dto.RoomResponse, error)
	ListRoomsFunc             func(ctx context.Context, userID string) (*dto.RoomListResponse, error)
	GetRoomFunc               func(ctx context.Context, userID, roomID string) (*dto.RoomResponse, error)
	ListMembersFunc           func(ctx context.Context, userID, roomID string) (*dto.MemberListResponse, error)
	GetLeaderboardFunc        func(ctx context.Context, userID, roomID string) (*dto.LeaderboardResponse, error)
	InvalidateLeaderboardFunc func(ctx context.Context, roomID string)
}

func (m *MockRoomService) CreateRoom(ctx context.Context, userID, username string, req dto.CreateRoomRequest) (*dto.RoomResponse, error) {
	if m.CreateRoomFunc != nil {
		return m.CreateRoomFunc(ctx, userID, username, req)
	}
	panic("MockRoomService.CreateRoomFunc not implemented")
}
func (m *MockRoomService) JoinRoom(ctx context.Context, userID, username string, req dto.JoinRoomRequest) (*dto.RoomResponse, error) {
	if m.JoinRoomFunc != nil {
		return m.JoinRoomFunc(ctx, userID, username, req)
	}
	panic("MockRoomService.JoinRoomFunc not implemented")
}
func (m *MockRoomService) ListRooms(ctx context.Context, userID string) (*dto.RoomListResponse, error) {
	if m.ListRoomsFunc != nil {
		return m.ListRoomsFunc(ctx, userID)
	}
	panic("MockRoomService.ListRoomsFunc not implemented")
}
func (m *MockRoomService) GetRoom(ctx context.Context, userID, roomID string) (*dto.RoomResponse, error) {
	if m.GetRoomFunc != nil {
		return m.GetRoomFunc(ctx, userID, roomID)
	}
	panic("MockRoomService.GetRoomFunc not implemented")
}
func (m *MockRoomService) ListMembers(ctx context.Context, userID, roomID string) (*dto.MemberListResponse, error) {
	if m.ListMembersFunc != nil {
		return m.ListMembersFunc(ctx, userID, roomID)
	}
	panic("MockRoomService.ListMembersFunc not implemented")
}
func (m *MockRoomService) GetLeaderboard(ctx context.Context, userID, roomID string) (*dto.LeaderboardResponse, error) {
	if m.GetLeaderboardFunc != nil {
		return m.GetLeaderboardFunc(ctx, userID, roomID)
	}
	panic("MockRoomService.GetLeaderboardFunc not implemented")
}
func (m *MockRoomService) InvalidateLeaderboard(ctx context.Context, roomID string) {
	if m.InvalidateLeaderboardFunc != nil {
		m.InvalidateLeaderboardFunc(ctx, roomID)
		return
	}
	panic("MockRoomService.InvalidateLeaderboardFunc not implemented")
}

type MockDocumentService struct {
	UploadFunc func(ctx context.Context, userID, roomID string, req dto.CreateDocumentRequest) (*dto.DocumentResponse, error)
	ListFunc   func(ctx context.Context, userID, roomID string) (*dto.DocumentListResponse, error)
}

func (m *MockDocumentService) Upload(ctx context.Context, userID, roomID string, req dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, userID, roomID, req)
	}
	panic("MockDocumentService.UploadFunc not implemented")
}
func (m *MockDocumentService) List(ctx context.Context, userID, roomID string) (*dto.DocumentListResponse, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, roomID)
	}
	panic("MockDocumentService.ListFunc not implemented")
}

type MockQuizService struct {
	CreateQuizFunc        func(ctx context.Context, userID, roomID string, req dto.CreateQuizRequest) (*dto.QuizResponse, error)
	ListQuizzesFunc       func(ctx context.Context, userID, roomID string) (*dto.QuizListResponse, error)
	GetQuizFunc           func(ctx context.Context, userID, quizID string) (*dto.QuizResponse, error)
	GenerateQuestionsFunc func(ctx context.Context, req dto.GenerateQuizRequest) (*dto.GenerateQuizResponse, error)
}

func (m *MockQuizService) CreateQuiz(ctx context.Context, userID, roomID string, req dto.CreateQuizRequest) (*dto.QuizResponse, error) {
	if m.CreateQuizFunc != nil {
		return m.CreateQuizFunc(ctx, userID, roomID, req)
	}
	panic("MockQuizService.CreateQuizFunc not implemented")
}
func (m *MockQuizService) ListQuizzes(ctx context.Context, userID, roomID string) (*dto.QuizListResponse, error) {
	if m.ListQuizzesFunc != nil {
		return m.ListQuizzesFunc(ctx, userID, roomID)
	}
	panic("MockQuizService.ListQuizzesFunc not implemented")
}
func (m *MockQuizService) GetQuiz(ctx context.Context, userID, quizID string) (*dto.QuizResponse, error) {
	if m.GetQuizFunc != nil {
		return m.GetQuizFunc(ctx, userID, quizID)
	}
	panic("MockQuizService.GetQuizFunc not implemented")
}
func (m *MockQuizService) GenerateQuestions(ctx context.Context, req dto.GenerateQuizRequest) (*dto.GenerateQuizResponse, error) {
	if m.GenerateQuestionsFunc != nil {
		return m.GenerateQuestionsFunc(ctx, req)
	}
	panic("MockQuizService.GenerateQuestionsFunc not implemented")
}

type MockAttemptService struct {
	StartFunc        func(ctx context.Context, userID, quizID string) (*dto.AttemptResponse, error)
	SelectAnswerFunc func(ctx context.Context, userID, attemptID string, req dto.SelectAnswerRequest) (*dto.SelectAnswerResponse, error)
	SubmitFunc       func(ctx context.Context, userID, attemptID string) (*dto.SubmitAttemptResponse, error)
	TimeUpFunc       func(ctx context.Context, userID, attemptID string) (*dto.SubmitAttemptResponse, error)
	GetFunc          func(ctx context.Context, userID, attemptID string) (*dto.AttemptResponse, error)
	ReviewFunc       func(ctx context.Context, userID, attemptID string) (*dto.ReviewResponse, error)
	HistoryFunc      func(ctx context.Context, userID string, limit int) (*dto.AttemptHistoryResponse, error)
	ActiveUsersFunc  func(ctx context.Context, userID, quizID string) (*dto.ActiveUsersResponse, error)
}

func (m *MockAttemptService) Start(ctx context.Context, userID, quizID string) (*dto.AttemptResponse, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, userID, quizID)
	}
	panic("MockAttemptService.StartFunc not implemented")
}
func (m *MockAttemptService) SelectAnswer(ctx context.Context, userID, attemptID string, req dto.SelectAnswerRequest) (*dto.SelectAnswerResponse, error) {
	if m.SelectAnswerFunc != nil {
		return m.SelectAnswerFunc(ctx, userID, attemptID, req)
	}
	panic("MockAttemptService.SelectAnswerFunc not implemented")
}
func (m *MockAttemptService) Submit(ctx context.Context, userID, attemptID string) (*dto.SubmitAttemptResponse, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, userID, attemptID)
	}
	panic("MockAttemptService.SubmitFunc not implemented")
}
func (m *MockAttemptService) TimeUp(ctx context.Context, userID, attemptID string) (*dto.SubmitAttemptResponse, error) {
	if m.TimeUpFunc != nil {
		return m.TimeUpFunc(ctx, userID, attemptID)
	}
	panic("MockAttemptService.TimeUpFunc not implemented")
}
func (m *MockAttemptService) Get(ctx context.Context, userID, attemptID string) (*dto.AttemptResponse, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userID, attemptID)
	}
	panic("MockAttemptService.GetFunc not implemented")
}
func (m *MockAttemptService) Review(ctx context.Context, userID, attemptID string) (*dto.ReviewResponse, error) {
	if m.ReviewFunc != nil {
		return m.ReviewFunc(ctx, userID, attemptID)
	}
	panic("MockAttemptService.ReviewFunc not implemented")
}
func (m *MockAttemptService) History(ctx context.Context, userID string, limit int) (*dto.AttemptHistoryResponse, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, userID, limit)
	}
	panic("MockAttemptService.HistoryFunc not implemented")
}
func (m *MockAttemptService) ActiveUsers(ctx context.Context, userID, quizID string) (*dto.ActiveUsersResponse, error) {
	if m.ActiveUsersFunc != nil {
		return m.ActiveUsersFunc(ctx, userID, quizID)
	}
	panic("MockAttemptService.ActiveUsersFunc not implemented")
}

type MockGamificationService struct {
	CatalogFunc          func(ctx context.Context) []domain.Achievement
	RecordCompletionFunc func(ctx context.Context, userID string, c domain.Completion, catalog []domain.Achievement) (domain.Outcome, error)
	GetProfileFunc       func(ctx context.Context, userID, username string) (*dto.ProfileResponse, error)
	ListAchievementsFunc func(ctx context.Context, userID string) (*dto.AchievementListResponse, error)
	GetActivityFunc      func(ctx context.Context, userID string, days int) (*dto.ActivityResponse, error)
}

func (m *MockGamificationService) Catalog(ctx context.Context) []domain.Achievement {
	if m.CatalogFunc != nil {
		return m.CatalogFunc(ctx)
	}
	panic("MockGamificationService.CatalogFunc not implemented")
}
func (m *MockGamificationService) RecordCompletion(ctx context.Context, userID string, c domain.Completion, catalog []domain.Achievement) (domain.Outcome, error) {
	if m.RecordCompletionFunc != nil {
		return m.RecordCompletionFunc(ctx, userID, c, catalog)
	}
	panic("MockGamificationService.RecordCompletionFunc not implemented")
}
func (m *MockGamificationService) GetProfile(ctx context.Context, userID, username string) (*dto.ProfileResponse, error) {
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, userID, username)
	}
	panic("MockGamificationService.GetProfileFunc not implemented")
}
func (m *MockGamificationService) ListAchievements(ctx context.Context, userID string) (*dto.AchievementListResponse, error) {
	if m.ListAchievementsFunc != nil {
		return m.ListAchievementsFunc(ctx, userID)
	}
	panic("MockGamificationService.ListAchievementsFunc not implemented")
}
func (m *MockGamificationService) GetActivity(ctx context.Context, userID string, days int) (*dto.ActivityResponse, error) {
	if m.GetActivityFunc != nil {
		return m.GetActivityFunc(ctx, userID, days)
	}
	panic("MockGamificationService.GetActivityFunc not implemented")
}

type MockPreferencesService struct {
	GetFunc    func(ctx context.Context, userID string) (*domain.Preferences, error)
	UpdateFunc func(ctx context.Context, userID string, req dto.UpdatePreferencesRequest) (*domain.Preferences, error)
}

func (m *MockPreferencesService) Get(ctx context.Context, userID string) (*domain.Preferences, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userID)
	}
	panic("MockPreferencesService.GetFunc not implemented")
}
func (m *MockPreferencesService) Update(ctx context.Context, userID string, req dto.UpdatePreferencesRequest) (*domain.Preferences, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, userID, req)
	}
	panic("MockPreferencesService.UpdateFunc not implemented")
}

type MockBookmarkService struct {
	SaveFunc   func(ctx context.Context, userID, questionID string, req dto.BookmarkRequest) (*dto.BookmarkResponse, error)
	RemoveFunc func(ctx context.Context, userID, questionID string) error
	ListFunc   func(ctx context.Context, userID string) (*dto.BookmarkListResponse, error)
}

func (m *MockBookmarkService) Save(ctx context.Context, userID, questionID string, req dto.BookmarkRequest) (*dto.BookmarkResponse, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, userID, questionID, req)
	}
	panic("MockBookmarkService.SaveFunc not implemented")
}
func (m *MockBookmarkService) Remove(ctx context.Context, userID, questionID string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, userID, questionID)
	}
	panic("MockBookmarkService.RemoveFunc not implemented")
}
func (m *MockBookmarkService) List(ctx context.Context, userID string) (*dto.BookmarkListResponse, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	panic("MockBookmarkService.ListFunc not implemented")
}

// --- Test app ---

type mocks struct {
	rooms        *MockRoomService
	documents    *MockDocumentService
	quizzes      *MockQuizService
	attempts     *MockAttemptService
	gamification *MockGamificationService
	preferences  *MockPreferencesService
	bookmarks    *MockBookmarkService
}

// fakeAuth stands in for middleware.Protected and authenticates every
// request as testUserID.
func fakeAuth(c *fiber.Ctx) error {
	c.Locals(middleware.UserIDKey, testUserID)
	c.Locals(middleware.UsernameKey, testUsername)
	return c.Next()
}

func newTestApp() (*fiber.App, *mocks) {
	m := &mocks{
		rooms:        &MockRoomService{},
		documents:    &MockDocumentService{},
		quizzes:      &MockQuizService{},
		attempts:     &MockAttemptService{},
		gamification: &MockGamificationService{},
		preferences:  &MockPreferencesService{},
		bookmarks:    &MockBookmarkService{},
	}
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	handler.RegisterRoutes(app, handler.Handlers{
		Rooms:    handler.NewRoomHandler(m.rooms, m.documents),
		Quizzes:  handler.NewQuizHandler(m.quizzes),
		Attempts: handler.NewAttemptHandler(m.attempts),
		Users:    handler.NewUserHandler(m.gamification, m.preferences, m.bookmarks),
	}, fakeAuth)
	return app, m
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}
