package app

import (
	"context"
	"log"

	"alumni-portal/internal/config"
	"alumni-portal/internal/http"
	"alumni-portal/internal/http/middleware"
	"alumni-portal/internal/repository/memory"
	"alumni-portal/pkg/rbac"
)

const serverAddrPrefix = ":"

// Service represents the portal application
type Service struct {
	config  *config.Config
	checker *rbac.Checker
	users   *memory.UserRepository
	csrf    *middleware.CSRFMiddleware
	server  *http.Server
}

// NewService creates and initializes a new Service instance
// This is a convenience wrapper around InitializeService
func NewService(ctx context.Context, cfg *config.Config) (*Service, error) {
	return InitializeService(ctx, cfg, Options{})
}

// Start starts the HTTP server and blocks until it stops.
func (s *Service) Start() error {
	log.Printf("Starting HTTP server on port %s", s.config.Server.Port)
	return s.server.Start(serverAddrPrefix + s.config.Server.Port)
}

// Shutdown gracefully shuts down the service
func (s *Service) Shutdown(ctx context.Context) error {
	defer s.csrf.Stop()
	return s.server.Shutdown(ctx)
}

// Checker exposes the authorization checker built from the active config.
func (s *Service) Checker() *rbac.Checker {
	return s.checker
}

// Server exposes the HTTP server, mainly for tests.
func (s *Service) Server() *http.Server {
	return s.server
}
