package members

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/Jidetireni/sanctuary-access/internal/config"
	"github.com/Jidetireni/sanctuary-access/internal/constants"
	"github.com/Jidetireni/sanctuary-access/internal/dto"
	"github.com/Jidetireni/sanctuary-access/internal/helpers"
	"github.com/Jidetireni/sanctuary-access/internal/repository"
	svc "github.com/Jidetireni/sanctuary-access/internal/services"
	"github.com/Jidetireni/sanctuary-access/internal/services/users"
	"github.com/Jidetireni/sanctuary-access/pkg/cache"
	"github.com/Jidetireni/sanctuary-access/pkg/email"
	"github.com/Jidetireni/sanctuary-access/pkg/images"
	"github.com/Jidetireni/sanctuary-access/pkg/logger"
	"github.com/Jidetireni/sanctuary-access/pkg/metrics"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/samber/lo"
)

var (
	_ MemberRepository = (*repository.MemberRepository)(nil)
	_ ImageStore       = (*images.Processor)(nil)
	_ Mailer           = (*email.Email)(nil)
)

type MemberRepository interface {
	Get(ctx context.Context, filter repository.MemberRepositoryFilter) (*repository.Member, error)
	List(ctx context.Context, filter repository.MemberRepositoryFilter, opts repository.QueryOptions) (*repository.ListResult[repository.Member], error)
	Create(ctx context.Context, member *repository.Member, tx *sqlx.Tx) (*repository.Member, error)
	Update(ctx context.Context, member *repository.Member, tx *sqlx.Tx) (*repository.Member, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetPicture(ctx context.Context, id uuid.UUID, picture string) (*repository.Member, error)
	MarkEmailValidated(ctx context.Context, id uuid.UUID, at time.Time) (*repository.Member, error)
}

type ImageStore interface {
	Store(ownerID uuid.UUID, r io.Reader) (string, error)
	Remove(relPath string) error
}

type Mailer interface {
	SendTemplate(ctx context.Context, to, subject string, name email.EmailTemplateType, data any) error
}

const notifyTimeout = 30 * time.Second

type Member struct {
	DB               *sqlx.DB
	Config           *config.Config
	MemberRepository MemberRepository
	Images           ImageStore
	Mailer           Mailer
	Cache            cache.Store
	Logger           *logger.Logger

	now func() time.Time
	wg  sync.WaitGroup
}

func New(db *sqlx.DB, config *config.Config, memberRepo MemberRepository, images ImageStore, mailer Mailer, store cache.Store, logger *logger.Logger) *Member {
	return &Member{
		DB:               db,
		Config:           config,
		MemberRepository: memberRepo,
		Images:           images,
		Mailer:           mailer,
		Cache:            store,
		Logger:           logger,
		now:              time.Now,
	}
}

// Wait blocks until pending admin notifications are delivered or have failed.
func (m *Member) Wait() {
	m.wg.Wait()
}

func (m *Member) Search(ctx context.Context, input dto.SearchInput, opts dto.QueryOptions, requester *users.UserContextValue) (*dto.SearchResult, error) {
	mode, filter, err := ResolveSearch(input, requester)
	if err != nil {
		return nil, err
	}
	metrics.SearchQueries.WithLabelValues(string(mode)).Inc()

	result, err := m.MemberRepository.List(ctx, filter, toQueryOptions(opts))
	if err != nil {
		return nil, err
	}

	return &dto.SearchResult{
		Mode:       string(mode),
		Items:      toMembers(result.Items),
		NextCursor: result.NextCursor,
	}, nil
}

func (m *Member) Get(ctx context.Context, id uuid.UUID, requester *users.UserContextValue) (*dto.Member, error) {
	member, err := m.authorizedMember(ctx, id, requester, "view this access request")
	if err != nil {
		return nil, err
	}
	return toMember(member), nil
}

// List is the admin dashboard listing, newest requests first by default.
func (m *Member) List(ctx context.Context, opts dto.QueryOptions, requester *users.UserContextValue) (*dto.ListResponse[dto.Member], error) {
	if requester == nil {
		return nil, svc.UnauthorizedError()
	}
	if !requester.IsAuthenticatedAsAdmin {
		return nil, svc.AdminForbiddenError("view the dashboard")
	}

	result, err := m.MemberRepository.List(ctx, repository.MemberRepositoryFilter{}, toQueryOptions(opts))
	if err != nil {
		return nil, err
	}

	return &dto.ListResponse[dto.Member]{
		Items:      toMembers(result.Items),
		NextCursor: result.NextCursor,
	}, nil
}

// Submit creates the access request, or updates it when an id is given. It reports
// whether a new row was created.
func (m *Member) Submit(ctx context.Context, input *dto.SubmitMemberInput, requester *users.UserContextValue) (*dto.Member, bool, error) {
	if requester == nil {
		return nil, false, svc.UnauthorizedError()
	}
	// members may only file requests under their own login email
	if !requester.IsAuthenticatedAsAdmin && !strings.EqualFold(strings.TrimSpace(input.Email), requester.Email) {
		return nil, false, svc.ForbiddenError("submit an access request for another email")
	}

	record := &repository.Member{
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		Phone:       strings.TrimSpace(input.Phone),
		Email:       strings.TrimSpace(input.Email),
		RequestedAt: m.now().UTC(),
		DeviceID:    repository.ToNullString(lo.ToPtr(strings.TrimSpace(input.DeviceID))),
		UserID:      strings.TrimSpace(input.UserID),
	}
	if record.UserID == "" {
		record.UserID = helpers.GenerateUserID(record.LastName, record.Phone)
	}

	created := input.ID == nil
	if !created {
		existing, err := m.authorizedMember(ctx, *input.ID, requester, "update this access request")
		if err != nil {
			return nil, false, err
		}
		record.ID = existing.ID
		if !record.DeviceID.Valid {
			record.DeviceID = existing.DeviceID
		}
	}

	tx, err := m.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	var saved *repository.Member
	if created {
		saved, err = m.MemberRepository.Create(ctx, record, tx)
	} else {
		saved, err = m.MemberRepository.Update(ctx, record, tx)
	}
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}

	metrics.MemberSubmissions.WithLabelValues(lo.Ternary(created, "created", "updated")).Inc()
	m.notifyAdmins(ctx, saved)

	return toMember(saved), created, nil
}

func (m *Member) Delete(ctx context.Context, id uuid.UUID, requester *users.UserContextValue) error {
	if requester == nil {
		return svc.UnauthorizedError()
	}
	if !requester.IsAuthenticatedAsAdmin {
		return svc.AdminForbiddenError("delete access requests")
	}

	member, err := m.MemberRepository.Get(ctx, repository.MemberRepositoryFilter{ID: &id})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return svc.NotFoundError("Access request")
		}
		return err
	}

	if err := m.MemberRepository.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return svc.NotFoundError("Access request")
		}
		return err
	}

	if member.Picture.Valid {
		if err := m.Images.Remove(member.Picture.String); err != nil {
			m.Logger.Warn().Err(err).Str("member_id", id.String()).Msg("failed to remove picture")
		}
	}
	return nil
}

func (m *Member) UploadPicture(ctx context.Context, id uuid.UUID, r io.Reader, requester *users.UserContextValue) (*dto.Member, error) {
	member, err := m.authorizedMember(ctx, id, requester, "change this picture")
	if err != nil {
		return nil, err
	}

	path, err := m.Images.Store(member.ID, r)
	if err != nil {
		switch {
		case errors.Is(err, images.ErrTooLarge):
			return nil, svc.BadRequestError("picture exceeds the 10 MiB limit")
		case errors.Is(err, images.ErrUnsupportedType):
			return nil, svc.BadRequestError("picture must be a JPEG, PNG or GIF image")
		case errors.Is(err, images.ErrTooManyPixels):
			return nil, svc.BadRequestError("picture dimensions are too large")
		}
		return nil, err
	}

	updated, err := m.MemberRepository.SetPicture(ctx, member.ID, path)
	if err != nil {
		_ = m.Images.Remove(path)
		return nil, err
	}

	if member.Picture.Valid && member.Picture.String != path {
		if err := m.Images.Remove(member.Picture.String); err != nil {
			m.Logger.Warn().Err(err).Str("member_id", id.String()).Msg("failed to remove previous picture")
		}
	}

	return toMember(updated), nil
}

// authorizedMember loads the row and checks the requester owns it or is an admin.
func (m *Member) authorizedMember(ctx context.Context, id uuid.UUID, requester *users.UserContextValue, action string) (*repository.Member, error) {
	if requester == nil {
		return nil, svc.UnauthorizedError()
	}

	member, err := m.MemberRepository.Get(ctx, repository.MemberRepositoryFilter{ID: &id})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, svc.NotFoundError("Access request")
		}
		return nil, err
	}

	if !canAccess(member, requester) {
		return nil, svc.ForbiddenError(action)
	}
	return member, nil
}

func canAccess(member *repository.Member, requester *users.UserContextValue) bool {
	return requester.IsAuthenticatedAsAdmin || strings.EqualFold(member.Email, requester.Email)
}

// notifyAdmins mails every configured admin in the background. Failures are logged.
func (m *Member) notifyAdmins(ctx context.Context, member *repository.Member) {
	recipients := m.Config.Auth.AdminEmails
	if len(recipients) == 0 || m.Mailer == nil {
		return
	}

	data := email.AccessRequestData{
		FirstName:    member.FirstName,
		LastName:     member.LastName,
		Email:        member.Email,
		Phone:        member.Phone,
		UserID:       member.UserID,
		RequestedAt:  member.RequestedAt.Format(time.RFC1123),
		DashboardURL: strings.TrimRight(m.Config.Server.FEURL, "/") + "/admin",
	}
	subject := "Facility access request: " + member.FirstName + " " + member.LastName

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()

		for _, to := range recipients {
			if err := m.Mailer.SendTemplate(ctx, to, subject, email.EmailTemplateTypeAccessRequest, data); err != nil {
				m.Logger.Error().Err(err).
					Str("member_id", member.ID.String()).
					Str("to", to).
					Msg("failed to send access request notification")
			}
		}
	}()
}

func toQueryOptions(opts dto.QueryOptions) repository.QueryOptions {
	return repository.QueryOptions{
		Limit:  opts.Limit,
		Cursor: opts.Cursor,
		Sort:   opts.Sort,
	}
}

func toMembers(items []*repository.Member) []dto.Member {
	return lo.Map(items, func(item *repository.Member, _ int) dto.Member {
		return *toMember(item)
	})
}

func toMember(m *repository.Member) *dto.Member {
	out := &dto.Member{
		ID:          m.ID,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Phone:       m.Phone,
		Email:       m.Email,
		RequestedAt: m.RequestedAt,
		DeviceID:    m.DeviceID.String,
		UserID:      m.UserID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Picture.Valid {
		out.PictureURL = constants.UploadsPath + m.Picture.String
	}
	if m.EmailValidatedAt.Valid {
		out.EmailValidatedAt = lo.ToPtr(m.EmailValidatedAt.Time)
	}
	return out
}
