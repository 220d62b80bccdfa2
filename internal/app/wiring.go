package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"alumni-portal/internal/audit"
	"alumni-portal/internal/auth"
	"alumni-portal/internal/config"
	"alumni-portal/internal/domain/user"
	"alumni-portal/internal/http"
	"alumni-portal/internal/http/middleware"
	"alumni-portal/internal/repository/memory"
	apperrors "alumni-portal/pkg/errors"
	"alumni-portal/pkg/logger"
	"alumni-portal/pkg/metrics"
	"alumni-portal/pkg/password"
	"alumni-portal/pkg/rbac"
	"alumni-portal/pkg/rbac/presets"
)

const auditRecentEvents = 500

// Options overrides wiring defaults. The zero value writes audit lines to
// stdout and uses the AlumniNetwork preset.
type Options struct {
	RBAC         *rbac.Config
	AuditOut     io.Writer
	HashPassword func(string) (string, error)
}

// InitializeService wires up all dependencies and returns a configured Service
func InitializeService(ctx context.Context, cfg *config.Config, opts Options) (*Service, error) {
	rbacConfig := presets.AlumniNetwork()
	if opts.RBAC != nil {
		rbacConfig = *opts.RBAC
	}
	checker, err := rbac.New(rbacConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build rbac checker: %w", err)
	}

	if opts.AuditOut == nil {
		opts.AuditOut = os.Stdout
	}
	if opts.HashPassword == nil {
		opts.HashPassword = password.Hash
	}

	users := memory.NewUserRepository()
	if cfg.Bootstrap.Enabled() {
		if err := bootstrapSuperAdmin(ctx, users, cfg.Bootstrap, opts.HashPassword); err != nil {
			return nil, err
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryDuration)
	revocations := auth.NewRevocations()
	csrf := middleware.NewCSRFMiddleware(ctx)

	server := http.NewServer(&http.ServerDependencies{
		Config:         cfg,
		Checker:        checker,
		Users:          users,
		JWTService:     jwtService,
		Revocations:    revocations,
		AuthMiddleware: auth.NewMiddleware(jwtService, revocations, users, checker, cfg.Session.CookieName),
		CSRFMiddleware: csrf,
		AuditLogger:    audit.NewLogger(opts.AuditOut, auditRecentEvents),
		Metrics:        metrics.New(),
	})

	return &Service{
		config:  cfg,
		checker: checker,
		users:   users,
		csrf:    csrf,
		server:  server,
	}, nil
}

// bootstrapSuperAdmin seeds the first super admin so the directory can be
// managed. An existing account with the same email is left untouched.
func bootstrapSuperAdmin(ctx context.Context, users *memory.UserRepository, b config.BootstrapConfig, hash func(string) (string, error)) error {
	passwordHash, err := hash(b.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap password: %w", err)
	}

	u, err := users.Create(ctx, user.CreateUserInput{
		Email:        b.AdminEmail,
		Name:         "Administrator",
		PasswordHash: passwordHash,
		Role:         rbac.RoleSuperAdmin,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			log.Printf("Bootstrap admin %s already exists", logger.MaskEmail(b.AdminEmail))
			return nil
		}
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}

	log.Printf("Bootstrap super admin created: %s", u.ID)
	return nil
}
