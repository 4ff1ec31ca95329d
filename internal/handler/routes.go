package handler

import (
	"synapse/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups everything mounted by RegisterRoutes.
type Handlers struct {
	Rooms    *RoomHandler
	Quizzes  *QuizHandler
	Attempts *AttemptHandler
	Users    *UserHandler
}

// RegisterRoutes mounts POST /generate-quiz on app and the protected REST
// API under /api.
func RegisterRoutes(app *fiber.App, h Handlers, auth fiber.Handler) {
	vm := middleware.NewValidationMiddleware()

	app.Post("/generate-quiz", h.Quizzes.GenerateQuiz)

	api := app.Group("/api", auth)

	rooms := api.Group("/rooms")
	rooms.Post("/", h.Rooms.CreateRoom)
	rooms.Get("/", h.Rooms.ListRooms)
	rooms.Post("/join", h.Rooms.JoinRoom)

	// Validators are attached per route so /rooms/join never reaches them.
	roomID := vm.ValidateIDParams("roomID")
	rooms.Get("/:roomID", roomID, h.Rooms.GetRoom)
	rooms.Get("/:roomID/members", roomID, h.Rooms.ListMembers)
	rooms.Get("/:roomID/leaderboard", roomID, h.Rooms.GetLeaderboard)
	rooms.Post("/:roomID/documents", roomID, h.Rooms.UploadDocument)
	rooms.Get("/:roomID/documents", roomID, h.Rooms.ListDocuments)
	rooms.Post("/:roomID/quizzes", roomID, h.Quizzes.CreateQuiz)
	rooms.Get("/:roomID/quizzes", roomID, h.Quizzes.ListQuizzes)

	quiz := api.Group("/quizzes/:quizID", vm.ValidateIDParams("quizID"))
	quiz.Get("/", h.Quizzes.GetQuiz)
	quiz.Post("/attempts", h.Attempts.StartAttempt)
	quiz.Get("/active-users", h.Attempts.ActiveUsers)

	attempt := api.Group("/attempts/:attemptID", vm.ValidateIDParams("attemptID"))
	attempt.Get("/", h.Attempts.GetAttempt)
	attempt.Put("/answers", h.Attempts.SelectAnswer)
	attempt.Post("/submit", h.Attempts.SubmitAttempt)
	attempt.Post("/timeup", h.Attempts.TimeUp)
	attempt.Get("/review", h.Attempts.ReviewAttempt)

	question := api.Group("/questions/:questionID", vm.ValidateIDParams("questionID"))
	question.Put("/bookmark", h.Users.SaveBookmark)
	question.Delete("/bookmark", h.Users.RemoveBookmark)

	me := api.Group("/users/me")
	me.Get("/", h.Users.GetMyProfile)
	me.Get("/achievements", h.Users.GetMyAchievements)
	me.Get("/activity", vm.ValidateDaysQuery(), h.Users.GetMyActivity)
	me.Get("/attempts", h.Attempts.GetMyAttempts)
	me.Get("/preferences", h.Users.GetMyPreferences)
	me.Put("/preferences", h.Users.UpdateMyPreferences)
	me.Get("/bookmarks", h.Users.GetMyBookmarks)
}
