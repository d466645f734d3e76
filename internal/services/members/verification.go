package members

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strings"

	"github.com/Jidetireni/sanctuary-access/internal/constants"
	"github.com/Jidetireni/sanctuary-access/internal/dto"
	"github.com/Jidetireni/sanctuary-access/internal/helpers"
	"github.com/Jidetireni/sanctuary-access/internal/repository"
	svc "github.com/Jidetireni/sanctuary-access/internal/services"
	"github.com/Jidetireni/sanctuary-access/internal/services/users"
	"github.com/Jidetireni/sanctuary-access/pkg/cache"
	"github.com/Jidetireni/sanctuary-access/pkg/email"
	"github.com/google/uuid"
)

type emailVerification struct {
	MemberID uuid.UUID `json:"member_id"`
	Email    string    `json:"email"`
}

// RequestEmailVerification stores a one-time token and mails the confirmation link to
// the address on the access request.
func (m *Member) RequestEmailVerification(ctx context.Context, id uuid.UUID, requester *users.UserContextValue) (*dto.VerificationResponse, error) {
	member, err := m.authorizedMember(ctx, id, requester, "verify this email")
	if err != nil {
		return nil, err
	}

	tok, err := helpers.GenerateToken(32)
	if err != nil {
		return nil, err
	}

	if err := m.Cache.Set(ctx, constants.EmailVerificationPrefix+helpers.HashToken(tok), emailVerification{
		MemberID: member.ID,
		Email:    member.Email,
	}, constants.EmailVerificationTTL); err != nil {
		return nil, err
	}

	link := strings.TrimRight(m.Config.Server.APIURL, "/") + "/api/v1/email/verify?token=" + url.QueryEscape(tok)
	if err := m.Mailer.SendTemplate(ctx, member.Email, "Confirm your email address", email.EmailTemplateTypeEmailVerification, email.EmailVerificationData{
		FirstName: member.FirstName,
		VerifyURL: link,
	}); err != nil {
		return nil, err
	}

	return &dto.VerificationResponse{
		MemberID:  member.ID,
		Email:     member.Email,
		ExpiresAt: m.now().Add(constants.EmailVerificationTTL).UTC(),
	}, nil
}

// VerifyEmail consumes the token and stamps email_validated_at.
func (m *Member) VerifyEmail(ctx context.Context, tok string) (*dto.Member, error) {
	if tok == "" {
		return nil, svc.BadRequestError("verification token is required")
	}

	var pending emailVerification
	if err := m.Cache.Take(ctx, constants.EmailVerificationPrefix+helpers.HashToken(tok), &pending); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, svc.BadRequestError("invalid or expired verification link")
		}
		return nil, err
	}

	member, err := m.MemberRepository.Get(ctx, repository.MemberRepositoryFilter{ID: &pending.MemberID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, svc.NotFoundError("Access request")
		}
		return nil, err
	}
	if !strings.EqualFold(member.Email, pending.Email) {
		return nil, svc.BadRequestError("the email address changed after the link was sent")
	}

	updated, err := m.MemberRepository.MarkEmailValidated(ctx, member.ID, m.now().UTC())
	if err != nil {
		return nil, err
	}
	return toMember(updated), nil
}
