package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Jidetireni/sanctuary-access/internal/config"
	"github.com/Jidetireni/sanctuary-access/internal/repository"
	"github.com/Jidetireni/sanctuary-access/pkg/database"
	"github.com/Jidetireni/sanctuary-access/pkg/logger"
)

type Seed struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         *database.PostgresDB
	MemberRepo *repository.MemberRepository
}

// NewSeeder only opens the database; redis and SMTP are not needed to seed.
func NewSeeder(cfg *config.Config) (*Seed, func(), error) {

	if !cfg.IsDev {
		return nil, nil, fmt.Errorf("seeding is only allowed in development environment")
	}

	db, cleanup, err := database.New(cfg.Database.URL, database.Options{MaxOpenConns: cfg.Database.MaxOpenConns})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Seed{
		Config:     cfg,
		Logger:     logger.New(cfg),
		DB:         db,
		MemberRepo: repository.NewMemberRepository(db.DB),
	}, cleanup, nil
}

func (s *Seed) ResetDB() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.Logger.Info().Msg("resetting database")
	if err := s.MemberRepo.Truncate(ctx); err != nil {
		log.Fatalf("Failed to reset database: %v", err)
	}

	s.Logger.Info().Msg("database reset completed")
}
