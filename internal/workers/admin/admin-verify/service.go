// Package adminverify re-checks an admin session on every protected
// navigation. Authorization is never cached client-side: the token must still
// be active, the server-side session key must still exist, and the allow-list
// row is re-read each time, so a revocation or suspension takes effect on the
// very next check.
package adminverify

import (
	"context"
	"database/sql"
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
	// Step 1: The token must still be active at the identity provider
	tokenInfo, err := s.keycloak.ValidateToken(ctx, input.AccessToken)
	if err != nil {
		return nil, err
	}

	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = tokenInfo.Sid
	}
	if sessionID == "" {
		sessionID = tokenInfo.Jti
	}

	// Step 2: The server-side session must not have been revoked
	exists, err := s.redis.Exists(ctx, models.AdminSessionKey(sessionID)).Result()
	if err != nil {
		return nil, &errors.StandardError{
			Code:      "SESSION_STORE_FAILED",
			Message:   "Failed to check admin session",
			Details:   err.Error(),
			Retryable: true,
			Timestamp: time.Now().UTC(),
		}
	}
	if exists == 0 {
		return nil, errors.NewSessionRevokedError(sessionID)
	}

	// Step 3: The allow-list row must still be present and active. A row
	// removed or suspended mid-session ends the session here.
	var admin models.AdminUser
	err = s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, status
		FROM admin_users
		WHERE id = $1`, tokenInfo.Sub).
		Scan(&admin.ID, &admin.Email, &admin.DisplayName, &admin.Status)
	if err == sql.ErrNoRows || (err == nil && admin.Status != models.AdminUserStatusActive) {
		s.revokeSession(ctx, sessionID)
		return nil, errors.NewAdminNotAuthorizedError(fmt.Sprintf("subject %s is no longer on the admin allow-list", tokenInfo.Sub))
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

	s.logger.Debug("Admin session verified", map[string]interface{}{
		"adminId":   admin.ID,
		"sessionId": sessionID,
	})

	return &Output{
		Authorized:  true,
		AdminID:     admin.ID,
		Email:       admin.Email,
		DisplayName: admin.DisplayName,
		SessionID:   sessionID,
	}, nil
}

func (s *Service) revokeSession(ctx context.Context, sessionID string) {
	if err := s.redis.Del(ctx, models.AdminSessionKey(sessionID)).Err(); err != nil {
		s.logger.Warn("Failed to revoke session for deauthorized admin", map[string]interface{}{
			"sessionId": sessionID,
			"error":     err.Error(),
		})
	}
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
