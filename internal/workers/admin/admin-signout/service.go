// Package adminsignout closes an admin session. Deleting the Redis key is the
// revocation that admin-verify observes; the Keycloak logout is best-effort
// on top of it.
package adminsignout

import (
	"context"
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
	redis    redis.Cmdable
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:   config,
		logger:   deps.Logger,
		keycloak: deps.Keycloak,
		redis:    deps.Redis,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	s.logger.Info("Executing admin sign-out", map[string]interface{}{
		"sessionId": input.SessionID,
		"adminId":   input.AdminID,
	})

	deleted, err := s.redis.Del(ctx, models.AdminSessionKey(input.SessionID)).Result()
	if err != nil {
		return nil, &errors.StandardError{
			Code:      "SESSION_STORE_FAILED",
			Message:   "Failed to close admin session",
			Details:   err.Error(),
			Retryable: true,
			Timestamp: time.Now().UTC(),
		}
	}

	var tokenRevoked bool
	if input.RefreshToken != "" {
		if err := s.keycloak.Logout(ctx, input.RefreshToken); err != nil {
			// The session key is already gone, so the sign-out holds even if
			// the provider-side revocation does not.
			s.logger.Warn("Failed to revoke refresh token", map[string]interface{}{
				"sessionId": input.SessionID,
				"error":     err.Error(),
			})
		} else {
			tokenRevoked = true
		}
	}

	s.logger.Info("Admin sign-out completed", map[string]interface{}{
		"sessionId":           input.SessionID,
		"sessionsInvalidated": deleted,
		"tokenRevoked":        tokenRevoked,
	})

	return &Output{
		Success:             true,
		SessionsInvalidated: int(deleted),
		TokenRevoked:        tokenRevoked,
		SignedOutAt:         time.Now().UTC().Format(time.RFC3339),
	}, nil
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
