package adminsignout

import (
	"farmchain-workers/internal/common/auth"
	"farmchain-workers/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

type Input struct {
	SessionID    string `json:"sessionId"`
	RefreshToken string `json:"refreshToken,omitempty"`
	AdminID      string `json:"adminId,omitempty"`
}

type Output struct {
	Success             bool   `json:"success"`
	SessionsInvalidated int    `json:"sessionsInvalidated"`
	TokenRevoked        bool   `json:"tokenRevoked"`
	SignedOutAt         string `json:"signedOutAt"` // ISO 8601
}

type ServiceDependencies struct {
	Keycloak *auth.KeycloakClient
	Redis    redis.Cmdable
	Logger   logger.Logger
}
