package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meatlab/lims-api/internal/config"
	"github.com/meatlab/lims-api/internal/domain"
	"go.uber.org/zap"
)

// ProfileStore resolves and provisions the profile behind a token subject
type ProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	EnsureExists(ctx context.Context, profile *domain.Profile) error
}

// Middleware handles authentication for HTTP requests
type Middleware struct {
	jwtValidator *JWTValidator
	profiles     ProfileStore
	apiKey       string
	logger       *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(cfg *config.Config, profiles ProfileStore, logger *zap.Logger) *Middleware {
	return &Middleware{
		jwtValidator: NewJWTValidator(&cfg.Auth),
		profiles:     profiles,
		apiKey:       cfg.Auth.AdminAPIKey,
		logger:       logger,
	}
}

// Authenticate is the main authentication middleware
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Try API key first
		if apiKey := r.Header.Get("x-api-key"); apiKey != "" {
			if m.validateAPIKey(apiKey) {
				userCtx := systemUser()
				m.logger.Info("request authenticated",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("auth_type", "api_key"),
					zap.String("user_id", userCtx.UserID.String()),
					zap.Duration("auth_duration", time.Since(start)),
				)
				next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
				return
			}
			m.logger.Warn("invalid API key attempt",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
			)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized: missing authorization header", http.StatusUnauthorized)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			http.Error(w, "Unauthorized: invalid authorization header format", http.StatusUnauthorized)
			return
		}

		userCtx, err := m.jwtValidator.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
			return
		}

		if err := m.resolveProfile(r.Context(), userCtx); err != nil {
			m.logger.Error("failed to resolve profile",
				zap.String("user_id", userCtx.UserID.String()),
				zap.Error(err),
			)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		m.logger.Info("request authenticated",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("auth_type", "jwt"),
			zap.String("user_id", userCtx.UserID.String()),
			zap.String("user_email", userCtx.Email),
			zap.String("role", string(userCtx.Role)),
			zap.Duration("auth_duration", time.Since(start)),
		)

		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
	})
}

// resolveProfile loads the caller's role. A first-time user gets a viewer
// profile; an admin promotes them afterwards.
func (m *Middleware) resolveProfile(ctx context.Context, userCtx *UserContext) error {
	if m.profiles == nil {
		userCtx.Role = domain.RoleViewer
		return nil
	}

	profile, err := m.profiles.GetByID(ctx, userCtx.UserID)
	if err == nil {
		userCtx.Role = profile.Role
		if profile.FullName != "" {
			userCtx.DisplayName = profile.FullName
		}
		return nil
	}

	profile = &domain.Profile{
		ID:       userCtx.UserID,
		FullName: userCtx.DisplayName,
		Email:    userCtx.Email,
		Role:     domain.RoleViewer,
	}
	if err := m.profiles.EnsureExists(ctx, profile); err != nil {
		return err
	}

	// Another request may have provisioned the row first
	stored, err := m.profiles.GetByID(ctx, userCtx.UserID)
	if err != nil {
		return err
	}
	userCtx.Role = stored.Role
	return nil
}

func systemUser() *UserContext {
	return &UserContext{
		UserID:      SystemUserID,
		DisplayName: "System",
		Email:       "system@lims.local",
		Role:        domain.RoleAdmin,
		IsSystem:    true,
	}
}

// RequireRole middleware ensures user has specific role
func (m *Middleware) RequireRole(roles ...domain.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userCtx, ok := FromContext(r.Context())
			if !ok {
				http.Error(w, "Forbidden: no user context", http.StatusForbidden)
				return
			}

			if !userCtx.HasAnyRole(roles...) {
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin middleware ensures user has admin role or valid API key
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireRole(domain.RoleAdmin)(next)
}

// RequireEditor middleware ensures user may create and edit lab records
func (m *Middleware) RequireEditor(next http.Handler) http.Handler {
	return m.RequireRole(domain.RoleAdmin, domain.RoleAnalyst)(next)
}

func (m *Middleware) validateAPIKey(key string) bool {
	if m.apiKey == "" {
		return false
	}
	// Constant-time comparison to prevent timing attacks
	return subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) == 1
}
