package middleware

import (
	"net/http"
	"time"

	"github.com/Jidetireni/sanctuary-access/internal/services/users"
	"github.com/go-chi/chi/v5/middleware"
)

// LoggerMiddleware returns a handler that logs requests using the zerolog instance.
// It runs outside RequireAuth, so the session is read through a holder the auth
// middleware fills in.
func (m *Middleware) LoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		holder := &users.UserContextValue{}
		next.ServeHTTP(ww, r.WithContext(users.NewContextWithHolder(r.Context(), holder)))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		event := m.Logger.Info()
		if status >= http.StatusInternalServerError {
			event = m.Logger.Error()
		}

		event.
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Str("ip", r.RemoteAddr).
			Str("user_email", holder.Email).
			Msg("incoming_request")
	})
}
