package main

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) router() {
	mw := s.Factory.Middleware
	h := s.Handlers
	r := s.Factory.Router

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.LoggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(mw.Metrics)

	r.Handle("/metrics", promhttp.Handler())

	uploads := http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.Config.Upload.Dir)))
	r.Handle("/uploads/*", uploads)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.Config.Server.RequestTimeout))

		r.Get("/healthz", h.HealthCheckHandler)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Get("/google", h.GoogleLogin)
			r.Get("/google/callback", h.GoogleCallback)
			r.Post("/refresh", h.RefreshToken)
			r.Post("/logout", h.Logout)

			r.With(mw.RequireAuth).Get("/me", h.Me)
		})

		r.Get("/email/verify", h.VerifyEmail)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAuth)

			r.Post("/email/send", h.SendEmail)

			r.Route("/members", func(r chi.Router) {
				r.With(mw.RequireAdmin).Get("/", h.ListMembers)
				r.Post("/", h.SubmitMember)
				r.Get("/search", h.SearchMembers)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.GetMember)
					r.Put("/", h.UpdateMember)
					r.With(mw.RequireAdmin).Delete("/", h.DeleteMember)
					r.Post("/picture", h.UploadPicture)
					r.Post("/verify-email", h.RequestEmailVerification)
				})
			})
		})
	})

	if dir := s.Config.Server.StaticDir; dir != "" {
		if _, err := os.Stat(dir); err != nil {
			s.Logger.Warn().Err(err).Str("dir", dir).Msg("static directory unavailable, frontend not served")
			return
		}
		r.Handle("/*", http.FileServer(http.Dir(dir)))
	}
}
