package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Jidetireni/sanctuary-access/factory"
	"github.com/Jidetireni/sanctuary-access/internal/api/handlers"
	"github.com/Jidetireni/sanctuary-access/internal/config"
	"github.com/Jidetireni/sanctuary-access/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	Config   *config.Config
	Logger   *logger.Logger
	Factory  *factory.Factory
	Handlers *handlers.Handlers
}

func NewServer() (*Server, func(), error) {
	cfg := config.New()
	log := logger.New(cfg)

	factory, cleanup, err := factory.New(cfg, log)
	if err != nil {
		return nil, nil, err
	}

	validate, trans, err := handlers.NewValidator()
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	handlers := handlers.NewHandlers(factory, cfg, validate, trans)

	server := &Server{
		Config:   cfg,
		Logger:   log,
		Factory:  factory,
		Handlers: handlers,
	}

	server.router()
	return server, cleanup, nil
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      s.Factory.Router,
		WriteTimeout: s.Config.Server.RequestTimeout + 20*time.Second,
		ReadTimeout:  time.Second * 30,
		IdleTimeout:  time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info().
			Str("addr", srv.Addr).
			Str("env", s.Config.Server.Env).
			Msgf("server running on http://localhost:%s/api/v1", s.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case sig := <-stop:
		s.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
