package middleware

import (
	"net/http"
	"strings"

	"github.com/Jidetireni/sanctuary-access/internal/services/users"
	"github.com/Jidetireni/sanctuary-access/pkg/token"
)

// accessToken reads the bearer token, falling back to the access token cookie.
func accessToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}

	if cookie, err := r.Cookie(token.AccessTokenName); err == nil {
		return cookie.Value
	}
	return ""
}

func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := accessToken(r)
		if tokenString == "" {
			m.apiError(w, "Unauthorized: No token provided", http.StatusUnauthorized)
			return
		}

		claims, err := m.TokenSvc.ValidateToken(tokenString, token.JWTTypeAccess)
		if err != nil {
			m.apiError(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}

		userCtx := users.UserContextValue{
			Email:    claims.Email,
			Name:     claims.Name,
			Provider: claims.Provider,
			Roles:    claims.Roles,
			TokenID:  claims.ID,
			// re-checked against the configured admin list on every request
			IsAuthenticatedAsAdmin: m.Admins.IsAdmin(claims),
		}

		next.ServeHTTP(w, r.WithContext(users.NewContextWithUser(r.Context(), &userCtx)))
	})
}

func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := users.FromContext(r.Context())
		if !ok {
			m.apiError(w, "Unauthorized: No user found", http.StatusUnauthorized)
			return
		}

		if !user.IsAuthenticatedAsAdmin {
			m.apiError(w, "Forbidden: Insufficient permissions", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
