package adminverify

import (
	"database/sql"

	"farmchain-workers/internal/common/auth"
	"farmchain-workers/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

type Input struct {
	AccessToken string `json:"accessToken"`
	SessionID   string `json:"sessionId,omitempty"`
}

type Output struct {
	Authorized  bool   `json:"authorized"`
	AdminID     string `json:"adminId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	SessionID   string `json:"sessionId"`
}

type ServiceDependencies struct {
	Keycloak *auth.KeycloakClient
	DB       *sql.DB
	Redis    redis.Cmdable
	Logger   logger.Logger
}
