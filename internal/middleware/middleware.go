package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/Jidetireni/sanctuary-access/internal/services/users"
	"github.com/Jidetireni/sanctuary-access/pkg/logger"
	"github.com/Jidetireni/sanctuary-access/pkg/token"
)

var _ TokenValidator = (*token.Jwt)(nil)

type TokenValidator interface {
	ValidateToken(tokenString string, expected token.JWTType) (*token.UserClaims, error)
}

// TODO: add rate limiting on the auth routes
type Middleware struct {
	TokenSvc TokenValidator
	Admins   *users.AdminGate
	Logger   *logger.Logger
}

func New(tokenSvc TokenValidator, admins *users.AdminGate, logger *logger.Logger) *Middleware {
	return &Middleware{
		TokenSvc: tokenSvc,
		Admins:   admins,
		Logger:   logger,
	}
}

func (m *Middleware) apiError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"message": message,
		"status":  code,
	}); err != nil {
		m.Logger.Error().Err(err).Msg("failed to write middleware error")
	}
}
