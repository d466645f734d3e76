package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Jidetireni/sanctuary-access/internal/helpers"
	"github.com/Jidetireni/sanctuary-access/internal/repository"
	"github.com/samber/lo"
)

func (s *Seed) CreateMembers() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created := 0
	for i, seedMember := range Members {
		member, err := s.createMember(ctx, seedMember, i)
		if err != nil {
			log.Fatalf("Failed to seed %s: %v", seedMember.Email, err)
		}
		if member != nil {
			created++
		}
	}

	s.Logger.Info().Int("count", created).Msg("seeded access requests")
}

func (s *Seed) createMember(ctx context.Context, seedMember SeedMember, offset int) (*repository.Member, error) {
	exists, err := s.MemberRepo.Exists(ctx, repository.MemberRepositoryFilter{Email: &seedMember.Email})
	if err != nil {
		return nil, fmt.Errorf("check member existence: %w", err)
	}
	if exists {
		s.Logger.Info().Str("email", seedMember.Email).Msg("member already exists, skipping")
		return nil, nil
	}

	tx, err := s.DB.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	member := &repository.Member{
		FirstName: seedMember.FirstName,
		LastName:  seedMember.LastName,
		Phone:     seedMember.Phone,
		Email:     seedMember.Email,
		// spread the requests out so the dashboard has something to page through
		RequestedAt: time.Now().UTC().Add(-time.Duration(offset) * time.Hour),
		DeviceID:    repository.ToNullString(lo.ToPtr(seedMember.DeviceID)),
		UserID:      helpers.GenerateUserID(seedMember.LastName, seedMember.Phone),
	}

	createdMember, err := s.MemberRepo.Create(ctx, member, tx)
	if err != nil {
		return nil, fmt.Errorf("create member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return createdMember, nil
}
