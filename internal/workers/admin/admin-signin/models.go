package adminsignin

import (
	"database/sql"

	"farmchain-workers/internal/common/auth"
	"farmchain-workers/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

type Input struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Output struct {
	Success      bool   `json:"success"`
	AdminID      string `json:"adminId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
	SessionID    string `json:"sessionId"`
}

type ServiceDependencies struct {
	Keycloak *auth.KeycloakClient
	DB       *sql.DB
	Redis    redis.Cmdable
	Logger   logger.Logger
}
