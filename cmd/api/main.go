// @title Synapse API
// @version 1.0
// @description Collaborative study rooms with AI generated quizzes.
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "synapse/cmd/api/docs"
	"synapse/internal/adapter"
	"synapse/internal/adapter/quizgen"
	"synapse/internal/cache"
	"synapse/internal/config"
	"synapse/internal/database"
	"synapse/internal/domain"
	"synapse/internal/handler"
	"synapse/internal/logger"
	"synapse/internal/middleware"
	"synapse/internal/repository"
	"synapse/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const (
	defaultLeaderboardTTL = 30 * time.Second
	defaultCatalogTTL     = time.Hour
	defaultPresenceTTL    = 2 * time.Minute
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

// healthCheck pings Postgres and Redis.
func healthCheck(db *sqlx.DB, cacheAdapter domain.Cache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()

		status := fiber.Map{"database": "ok", "redis": "ok"}
		healthy := true
		if err := db.PingContext(ctx); err != nil {
			logger.Get().Warn("Health check: database ping failed", zap.Error(err))
			status["database"] = "unavailable"
			healthy = false
		}
		if err := cacheAdapter.Ping(ctx); err != nil {
			logger.Get().Warn("Health check: redis ping failed", zap.Error(err))
			status["redis"] = "unavailable"
			healthy = false
		}

		if !healthy {
			return c.Status(fiber.StatusServiceUnavailable).JSON(status)
		}
		return c.JSON(status)
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	db, err := database.NewSQLXPostgresDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Successfully connected to Redis")
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)

	generator, err := quizgen.NewQuizGenerator(cfg.LLM)
	if err != nil {
		appLogger.Fatal("Failed to create quiz generator", zap.Error(err))
	}
	appLogger.Info("Quiz generator initialized", zap.String("provider", cfg.LLM.Provider))

	verifier, err := middleware.NewHMACVerifier(cfg.Auth)
	if err != nil {
		appLogger.Fatal("Failed to create token verifier", zap.Error(err))
	}

	// Repositories
	txManager := repository.NewTransactionManagerAdapter(db)
	roomRepo := repository.NewSQLXRoomRepository(db)
	memberRepo := repository.NewSQLXRoomMemberRepository(db)
	documentRepo := repository.NewSQLXDocumentRepository(db)
	quizRepo := repository.NewSQLXQuizRepository(db)
	attemptRepo := repository.NewSQLXAttemptRepository(db)
	profileRepo := repository.NewSQLXProfileRepository(db)
	achievementRepo := repository.NewSQLXAchievementRepository(db)
	activityRepo := repository.NewSQLXActivityRepository(db)
	preferencesRepo := repository.NewSQLXPreferencesRepository(db)
	bookmarkRepo := repository.NewSQLXBookmarkRepository(db)

	// Services
	leaderboardTTL := cfg.ParseTTLStringOrDefault(cfg.CacheTTLs.Leaderboard, defaultLeaderboardTTL)
	catalogTTL := cfg.ParseTTLStringOrDefault(cfg.CacheTTLs.AchievementCatalog, defaultCatalogTTL)
	presenceTTL := cfg.ParseTTLStringOrDefault(cfg.Presence.TTL, defaultPresenceTTL)

	roomService := service.NewRoomService(txManager, roomRepo, memberRepo, profileRepo, cacheAdapter, leaderboardTTL)
	documentService := service.NewDocumentService(documentRepo, roomRepo, memberRepo)
	quizService := service.NewQuizService(txManager, quizRepo, documentRepo, roomRepo, memberRepo, generator)
	gamificationService := service.NewGamificationService(profileRepo, achievementRepo, activityRepo, cacheAdapter, catalogTTL)
	presenceService := service.NewPresenceService(cacheAdapter, presenceTTL)
	preferencesService := service.NewPreferencesService(preferencesRepo)
	bookmarkService := service.NewBookmarkService(bookmarkRepo)
	attemptService := service.NewAttemptService(
		txManager, attemptRepo, quizRepo, roomRepo, memberRepo, preferencesRepo,
		gamificationService, presenceService, roomService,
	)
	appLogger.Info("Services initialized",
		zap.Duration("leaderboard_ttl", leaderboardTTL),
		zap.Duration("catalog_ttl", catalogTTL),
		zap.Duration("presence_ttl", presenceTTL),
	)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization,x-client-info,apikey", MaxAge: 300}))
	app.Use(recover.New())

	app.Get("/healthz", healthCheck(db, cacheAdapter))
	app.Get("/swagger/*", swagger.HandlerDefault)

	handler.RegisterRoutes(app, handler.Handlers{
		Rooms:    handler.NewRoomHandler(roomService, documentService),
		Quizzes:  handler.NewQuizHandler(quizService),
		Attempts: handler.NewAttemptHandler(attemptService),
		Users:    handler.NewUserHandler(gamificationService, preferencesService, bookmarkService),
	}, middleware.Protected(verifier))

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
