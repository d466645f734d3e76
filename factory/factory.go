package factory

import (
	"context"

	"github.com/Jidetireni/sanctuary-access/internal/config"
	"github.com/Jidetireni/sanctuary-access/internal/middleware"
	"github.com/Jidetireni/sanctuary-access/internal/repository"
	"github.com/Jidetireni/sanctuary-access/internal/services/mailer"
	"github.com/Jidetireni/sanctuary-access/internal/services/members"
	"github.com/Jidetireni/sanctuary-access/internal/services/users"

	"github.com/Jidetireni/sanctuary-access/pkg/cache"
	"github.com/Jidetireni/sanctuary-access/pkg/database"
	emailpkg "github.com/Jidetireni/sanctuary-access/pkg/email"
	"github.com/Jidetireni/sanctuary-access/pkg/google"
	"github.com/Jidetireni/sanctuary-access/pkg/images"
	"github.com/Jidetireni/sanctuary-access/pkg/logger"
	"github.com/Jidetireni/sanctuary-access/pkg/token"
	"github.com/go-chi/chi/v5"
)

// MemoryCacheURI selects the in-process cache instead of redis.
const MemoryCacheURI = "memory://"

type Repositories struct {
	Member *repository.MemberRepository
}

type Services struct {
	Member *members.Member
	User   *users.User
	Mailer *mailer.Mailer
}

type Factory struct {
	DB           *database.PostgresDB
	Cache        cache.Store
	JWTToken     *token.Jwt
	Email        *emailpkg.Email
	Images       *images.Processor
	Logger       *logger.Logger
	Router       *chi.Mux
	Services     *Services
	Repositories *Repositories
	Middleware   *middleware.Middleware
}

func New(cfg *config.Config, log *logger.Logger) (*Factory, func(), error) {
	db, dbCleanup, err := database.New(cfg.Database.URL, database.Options{
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return nil, nil, err
	}

	store, cacheCleanup, err := newCache(cfg, log)
	if err != nil {
		dbCleanup()
		return nil, nil, err
	}

	cleanup := func() {
		cacheCleanup()
		dbCleanup()
	}

	var googleProvider users.GoogleProvider
	if cfg.GoogleEnabled() {
		provider, err := google.New(context.Background(), google.Options{
			ClientID:     cfg.Auth.GoogleClientID,
			ClientSecret: cfg.Auth.GoogleClientSecret,
			RedirectURL:  cfg.Auth.GoogleRedirectURL,
		})
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		googleProvider = provider
	} else {
		log.Warn().Msg("google sign-in disabled: GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET or GOOGLE_REDIRECT_URL not set")
	}

	email, err := emailpkg.New(cfg, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	jwtToken := token.NewJwt(cfg.Auth.JWTSecret)
	admins := users.NewAdminGate(cfg.Auth.AdminEmails)
	imageProcessor := images.NewProcessor(cfg.Upload.Dir)

	memberRepo := repository.NewMemberRepository(db.DB)

	membersService := members.New(
		db.DB,
		cfg,
		memberRepo,
		imageProcessor,
		email,
		store,
		log,
	)

	usersService := users.New(
		cfg,
		jwtToken,
		store,
		googleProvider,
		admins,
		log,
	)

	middleware := middleware.New(jwtToken, admins, log)

	return &Factory{
			DB:       db,
			Cache:    store,
			JWTToken: jwtToken,
			Email:    email,
			Images:   imageProcessor,
			Logger:   log,
			Router:   chi.NewRouter(),
			Services: &Services{
				Member: membersService,
				User:   usersService,
				Mailer: mailer.New(email),
			},
			Repositories: &Repositories{
				Member: memberRepo,
			},
			Middleware: middleware,
		}, func() {
			// let in-flight notifications finish before the pools close
			membersService.Wait()
			cleanup()
		}, nil
}

func newCache(cfg *config.Config, log *logger.Logger) (cache.Store, func(), error) {
	if cfg.Redis.URI == MemoryCacheURI {
		log.Warn().Msg("using the in-process cache; sessions do not survive restarts")
		return cache.NewMemory(), func() {}, nil
	}

	redis, cleanup, err := cache.New(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return redis, cleanup, nil
}
