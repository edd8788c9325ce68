// Package adminsignin authenticates funnel administrators. Credentials are
// verified against Keycloak; authorization is a separate allow-list check
// against the admin_users table, so a valid Keycloak account that is not on
// the list is signed straight back out.
package adminsignin

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"farmchain-workers/internal/common/auth"
	"farmchain-workers/internal/common/errors"
	"farmchain-workers/internal/common/logger"
	"farmchain-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

type Service struct {
	config   *Config
	logger   logger.Logger
	keycloak *auth.KeycloakClient
	db       *sql.DB
	redis    redis.Cmdable
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:   config,
		logger:   deps.Logger,
		keycloak: deps.Keycloak,
		db:       deps.DB,
		redis:    deps.Redis,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	s.logger.Info("Executing admin sign-in", map[string]interface{}{
		"email": input.Email,
	})

	// Step 1: Verify credentials against the identity provider
	tokens, err := s.keycloak.PasswordSignIn(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	// Step 2: Introspect the access token to get the Keycloak subject. The
	// tokens minted in step 1 are unusable if this fails, so revoke them
	// rather than leave a live session behind.
	tokenInfo, err := s.keycloak.ValidateToken(ctx, tokens.AccessToken)
	if err != nil {
		if logoutErr := s.keycloak.Logout(ctx, tokens.RefreshToken); logoutErr != nil {
			s.logger.Warn("Failed to revoke tokens after introspection failure", map[string]interface{}{
				"error": logoutErr.Error(),
			})
		}
		return nil, err
	}

	// Step 3: Allow-list check. Valid credentials alone do not grant access.
	admin, err := s.lookupAdmin(ctx, tokenInfo.Sub)
	if err != nil {
		if stdErr, ok := err.(*errors.StandardError); ok && stdErr.Code == "ADMIN_NOT_AUTHORIZED" {
			// Best-effort revocation of the tokens we just minted.
			if logoutErr := s.keycloak.Logout(ctx, tokens.RefreshToken); logoutErr != nil {
				s.logger.Warn("Failed to revoke tokens for unauthorized sign-in", map[string]interface{}{
					"subject": tokenInfo.Sub,
					"error":   logoutErr.Error(),
				})
			}
		}
		return nil, err
	}

	// Step 4: Record the sign-in
	if _, err := s.db.ExecContext(ctx, `
		UPDATE admin_users SET last_login = $1 WHERE id = $2`,
		time.Now().UTC(), admin.ID,
	); err != nil {
		s.logger.Warn("Failed to record admin last login", map[string]interface{}{
			"adminId": admin.ID,
			"error":   err.Error(),
		})
	}

	// Step 5: Open the server-side session that admin-verify re-checks on
	// every navigation
	sessionID := tokenInfo.Sid
	if sessionID == "" {
		sessionID = tokenInfo.Jti
	}
	if err := s.storeSession(ctx, sessionID, admin); err != nil {
		return nil, err
	}

	s.logger.Info("Admin sign-in completed successfully", map[string]interface{}{
		"adminId":   admin.ID,
		"email":     admin.Email,
		"sessionId": sessionID,
	})

	return &Output{
		Success:      true,
		AdminID:      admin.ID,
		Email:        admin.Email,
		DisplayName:  admin.DisplayName,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
		SessionID:    sessionID,
	}, nil
}

// lookupAdmin loads the allow-list row keyed by the Keycloak subject. A
// missing or inactive row is ADMIN_NOT_AUTHORIZED, deliberately distinct from
// bad credentials.
func (s *Service) lookupAdmin(ctx context.Context, subject string) (*models.AdminUser, error) {
	var admin models.AdminUser
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, status
		FROM admin_users
		WHERE id = $1`, subject).
		Scan(&admin.ID, &admin.Email, &admin.DisplayName, &admin.Status)
	if err == sql.ErrNoRows {
		return nil, errors.NewAdminNotAuthorizedError(fmt.Sprintf("subject %s is not on the admin allow-list", subject))
	}
	if err != nil {
		return nil, &errors.StandardError{
			Code:      "QUERY_EXECUTION_FAILED",
			Message:   "Admin allow-list lookup failed",
			Details:   err.Error(),
			Retryable: true,
			Timestamp: time.Now().UTC(),
		}
	}

	if admin.Status != models.AdminUserStatusActive {
		return nil, errors.NewAdminNotAuthorizedError(fmt.Sprintf("admin %s has status %s", admin.ID, admin.Status))
	}

	return &admin, nil
}

func (s *Service) storeSession(ctx context.Context, sessionID string, admin *models.AdminUser) error {
	payload, _ := json.Marshal(map[string]interface{}{
		"adminId":    admin.ID,
		"email":      admin.Email,
		"signedInAt": time.Now().UTC().Format(time.RFC3339),
	})

	err := s.redis.Set(ctx, models.AdminSessionKey(sessionID), string(payload), s.config.SessionTTL).Err()
	if err != nil {
		return &errors.StandardError{
			Code:      "SESSION_STORE_FAILED",
			Message:   "Failed to open admin session",
			Details:   err.Error(),
			Retryable: true,
			Timestamp: time.Now().UTC(),
		}
	}
	return nil
}

func (s *Service) TestConnection(ctx context.Context) error {
	if s.redis == nil {
		return fmt.Errorf("redis client not configured")
	}
	if _, err := s.redis.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}
