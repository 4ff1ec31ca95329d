package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"synapse/cmd/seed_demo_data/internal/seedmodels"
	"synapse/internal/config"
	"synapse/internal/database"
	"synapse/internal/domain"
	"synapse/internal/logger"
	"synapse/internal/repository"
	"synapse/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultSeedFilePath = "config/seed_data/demo_room.json"

func main() {
	var seedFilePath string
	cmd := &cobra.Command{
		Use:          "seed_demo_data",
		Short:        "Insert a demo room with one document and authored quizzes",
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			run(cmd.Context(), seedFilePath)
		},
	}
	cmd.Flags().StringVar(&seedFilePath, "file", defaultSeedFilePath, "path to the demo room JSON file")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, seedFilePath string) {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	db, err := database.NewSQLXPostgresDB(cfg.GetDSN())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	log.Info("Loading seed data from file", zap.String("path", seedFilePath))
	byteValue, err := os.ReadFile(seedFilePath)
	if err != nil {
		log.Fatal("Failed to read seed file", zap.String("path", seedFilePath), zap.Error(err))
	}

	var seed seedmodels.SeedRoom
	if err := json.Unmarshal(byteValue, &seed); err != nil {
		log.Fatal("Failed to unmarshal seed data", zap.Error(err))
	}
	if err := seed.Validate(); err != nil {
		log.Fatal("Invalid seed data", zap.Error(err))
	}

	rooms := repository.NewSQLXRoomRepository(db)
	existing, err := rooms.GetByCode(ctx, domain.NormalizeRoomCode(seed.Code))
	if err == nil {
		log.Info("Demo room already present, nothing to do", zap.String("room_id", existing.ID), zap.String("code", existing.Code))
		return
	}
	if !domain.IsCode(err, domain.CodeNotFound) {
		log.Fatal("Failed to look up demo room", zap.Error(err))
	}

	tx := repository.NewTransactionManagerAdapter(db)
	err = tx.WithTransaction(ctx, func(ctx context.Context) error {
		return seedRoom(ctx, db, seed)
	})
	if err != nil {
		log.Fatal("Seeding failed, transaction rolled back", zap.Error(err))
	}
	log.Info("Demo data seeding completed", zap.String("code", seed.Code), zap.Int("quizzes", len(seed.Quizzes)))
}

// seedRoom writes everything inside the caller's transaction; the
// repositories pick the tx up from ctx.
func seedRoom(ctx context.Context, db *sqlx.DB, seed seedmodels.SeedRoom) error {
	log := logger.Get()
	now := time.Now().UTC()

	profiles := repository.NewSQLXProfileRepository(db)
	if err := profiles.EnsureProfile(ctx, seed.OwnerID, seed.OwnerUsername); err != nil {
		return fmt.Errorf("ensure owner profile: %w", err)
	}

	room := seed.Room(util.NewID(), now)
	if err := repository.NewSQLXRoomRepository(db).Create(ctx, room); err != nil {
		return err
	}
	member := &domain.RoomMember{RoomID: room.ID, UserID: seed.OwnerID, Role: domain.RoleOwner, JoinedAt: now}
	if err := repository.NewSQLXRoomMemberRepository(db).Add(ctx, member); err != nil {
		return fmt.Errorf("add owner membership: %w", err)
	}
	log.Info("Created room", zap.String("id", room.ID), zap.String("code", room.Code))

	doc := &domain.Document{
		ID:         util.NewID(),
		RoomID:     room.ID,
		Name:       seed.DocumentName,
		Content:    seed.DocumentContent,
		UploadedBy: seed.OwnerID,
		CreatedAt:  now,
	}
	if err := repository.NewSQLXDocumentRepository(db).Create(ctx, doc); err != nil {
		return err
	}

	quizzes := repository.NewSQLXQuizRepository(db)
	for _, sq := range seed.Quizzes {
		quiz := sq.Quiz(room.ID, doc.ID, seed.OwnerID, util.NewID, now)
		if err := quizzes.Create(ctx, quiz); err != nil {
			return err
		}
		if err := quizzes.CreateQuestions(ctx, quiz.Questions); err != nil {
			return err
		}
		log.Info("Created quiz", zap.String("id", quiz.ID), zap.String("title", quiz.Title), zap.Int("questions", len(quiz.Questions)))
	}
	return nil
}
