package users

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Jidetireni/sanctuary-access/internal/config"
	"github.com/Jidetireni/sanctuary-access/internal/constants"
	"github.com/Jidetireni/sanctuary-access/internal/dto"
	"github.com/Jidetireni/sanctuary-access/internal/helpers"
	svc "github.com/Jidetireni/sanctuary-access/internal/services"
	"github.com/Jidetireni/sanctuary-access/pkg/cache"
	"github.com/Jidetireni/sanctuary-access/pkg/google"
	"github.com/Jidetireni/sanctuary-access/pkg/logger"
	"github.com/Jidetireni/sanctuary-access/pkg/metrics"
	"github.com/Jidetireni/sanctuary-access/pkg/token"
)

var (
	_ TokenService   = (*token.Jwt)(nil)
	_ GoogleProvider = (*google.Provider)(nil)
)

type TokenService interface {
	GenerateTokenPair(params *token.TokenPairParams) (*token.TokenPair, error)
	ValidateToken(tokenString string, expected token.JWTType) (*token.UserClaims, error)
}

type GoogleProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*google.Identity, error)
}

type refreshRecord struct {
	Email    string         `json:"email"`
	Provider token.Provider `json:"provider"`
}

type User struct {
	Config       *config.Config
	TokenService TokenService
	Cache        cache.Store
	Google       GoogleProvider
	Admins       *AdminGate
	Logger       *logger.Logger
}

// New builds the auth service. google may be nil when Google sign-in is not configured.
func New(cfg *config.Config, tokenService TokenService, store cache.Store, google GoogleProvider, admins *AdminGate, logger *logger.Logger) *User {
	return &User{
		Config:       cfg,
		TokenService: tokenService,
		Cache:        store,
		Google:       google,
		Admins:       admins,
		Logger:       logger,
	}
}

// Login issues a credential session for any syntactically valid email. Credential
// sessions never carry the admin role.
func (u *User) Login(ctx context.Context, w http.ResponseWriter, input *dto.LoginInput) (*dto.AuthResponse, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		metrics.LoginAttempts.WithLabelValues(string(token.ProviderCredentials), "failure").Inc()
		return nil, svc.BadRequestError("email is required")
	}

	resp, err := u.issueSession(ctx, w, email, strings.TrimSpace(input.Name), token.ProviderCredentials)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(string(token.ProviderCredentials), "failure").Inc()
		return nil, err
	}

	metrics.LoginAttempts.WithLabelValues(string(token.ProviderCredentials), "success").Inc()
	return resp, nil
}

// GoogleAuthURL records a one-time state and returns the Google consent URL.
func (u *User) GoogleAuthURL(ctx context.Context) (string, error) {
	if u.Google == nil {
		return "", svc.NotFoundError("Google sign-in")
	}

	state, err := helpers.GenerateToken(32)
	if err != nil {
		return "", err
	}
	if err := u.Cache.Set(ctx, constants.OAuthStatePrefix+helpers.HashToken(state), true, constants.OAuthStateTTL); err != nil {
		return "", err
	}

	return u.Google.AuthCodeURL(state), nil
}

// GoogleCallback consumes the state, exchanges the code and issues a session for the
// verified Google identity.
func (u *User) GoogleCallback(ctx context.Context, w http.ResponseWriter, state, code string) (*dto.AuthResponse, error) {
	resp, err := u.googleCallback(ctx, w, state, code)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(string(token.ProviderGoogle), "failure").Inc()
		return nil, err
	}

	metrics.LoginAttempts.WithLabelValues(string(token.ProviderGoogle), "success").Inc()
	return resp, nil
}

func (u *User) googleCallback(ctx context.Context, w http.ResponseWriter, state, code string) (*dto.AuthResponse, error) {
	if u.Google == nil {
		return nil, svc.NotFoundError("Google sign-in")
	}
	if state == "" || code == "" {
		return nil, svc.BadRequestError("missing state or code")
	}

	var valid bool
	if err := u.Cache.Take(ctx, constants.OAuthStatePrefix+helpers.HashToken(state), &valid); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, svc.BadRequestError("invalid or expired sign-in state")
		}
		return nil, err
	}

	identity, err := u.Google.Exchange(ctx, code)
	if err != nil {
		u.Logger.Warn().Err(err).Msg("google code exchange failed")
		return nil, &svc.APIError{
			Status:  http.StatusUnauthorized,
			Message: "Google sign-in failed",
		}
	}
	if !identity.EmailVerified || identity.Email == "" {
		return nil, svc.ForbiddenError("sign in with an unverified Google email")
	}

	return u.issueSession(ctx, w, normalizeEmail(identity.Email), identity.Name, token.ProviderGoogle)
}

// Refresh rotates the refresh token. The presented token is consumed so it cannot be
// replayed, and the admin role is recomputed from the current configuration.
func (u *User) Refresh(ctx context.Context, w http.ResponseWriter, refreshToken string) (*dto.AuthResponse, error) {
	if refreshToken == "" {
		return nil, svc.UnauthorizedError()
	}

	claims, err := u.TokenService.ValidateToken(refreshToken, token.JWTTypeRefresh)
	if err != nil {
		return nil, &svc.APIError{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized: invalid refresh token",
		}
	}

	key := constants.RefreshTokenPrefix + claims.ID
	var record refreshRecord
	if err := u.Cache.Take(ctx, key, &record); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, &svc.APIError{
				Status:  http.StatusUnauthorized,
				Message: "Unauthorized: refresh token revoked",
			}
		}
		return nil, err
	}

	resp, err := u.issueSession(ctx, w, claims.Email, claims.Name, claims.Provider)
	if err != nil {
		// put the consumed record back so a failed rotation does not end the session
		if claims.ExpiresAt != nil {
			if ttl := time.Until(claims.ExpiresAt.Time); ttl > 0 {
				if restoreErr := u.Cache.Set(ctx, key, record, ttl); restoreErr != nil {
					u.Logger.Warn().Err(restoreErr).Str("email", claims.Email).Msg("failed to restore refresh token")
				}
			}
		}
		return nil, err
	}
	return resp, nil
}

// Logout revokes the refresh token when one is presented and clears the cookies.
func (u *User) Logout(ctx context.Context, w http.ResponseWriter, refreshToken string) error {
	defer u.ClearCookies(w)

	if refreshToken == "" {
		return nil
	}
	claims, err := u.TokenService.ValidateToken(refreshToken, token.JWTTypeRefresh)
	if err != nil {
		return nil
	}
	return u.Cache.Delete(ctx, constants.RefreshTokenPrefix+claims.ID)
}

func (u *User) Me(ctx context.Context) (*dto.AuthUser, error) {
	user, ok := FromContext(ctx)
	if !ok {
		return nil, svc.UnauthorizedError()
	}

	return &dto.AuthUser{
		Email:    user.Email,
		Name:     user.Name,
		Provider: string(user.Provider),
		Roles:    user.Roles,
		IsAdmin:  user.IsAuthenticatedAsAdmin,
	}, nil
}

func (u *User) issueSession(ctx context.Context, w http.ResponseWriter, email, name string, provider token.Provider) (*dto.AuthResponse, error) {
	roles := u.Admins.RolesFor(email, provider)

	pair, err := u.TokenService.GenerateTokenPair(&token.TokenPairParams{
		Email:    email,
		Name:     name,
		Provider: provider,
		Roles:    roles,
	})
	if err != nil {
		return nil, err
	}

	if err := u.Cache.Set(ctx, constants.RefreshTokenPrefix+pair.RefreshTokenID, refreshRecord{
		Email:    email,
		Provider: provider,
	}, time.Until(pair.RefreshExpiresAt)); err != nil {
		return nil, err
	}

	u.SetJWTCookie(w, pair)

	u.Logger.Info().
		Str("email", email).
		Str("provider", string(provider)).
		Msg("session issued")

	return &dto.AuthResponse{
		User: &dto.AuthUser{
			Email:    email,
			Name:     name,
			Provider: string(provider),
			Roles:    roles,
			IsAdmin:  u.Admins.IsAdminEmail(email) && provider == token.ProviderGoogle,
		},
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		TokenType:        "Bearer",
		ExpiresIn:        int64(time.Until(pair.AccessExpiresAt).Seconds()),
		RefreshExpiresAt: pair.RefreshExpiresAt,
	}, nil
}
