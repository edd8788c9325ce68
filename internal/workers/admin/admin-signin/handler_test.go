package adminsignin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"farmchain-workers/internal/common/auth"
	"farmchain-workers/internal/common/errors"
	"farmchain-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
		SessionTTL:    60 * time.Minute,
	}
}

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func newTestLogger(t *testing.T) logger.Logger {
	return &testLogger{t: t}
}

// keycloakFixture stands in for the identity provider. logoutCalls counts
// best-effort token revocations.
type keycloakFixture struct {
	server             *httptest.Server
	rejectSignin       bool
	inactiveIntrospect bool
	logoutCalls        int32
}

func newKeycloakFixture(t *testing.T) *keycloakFixture {
	f := &keycloakFixture{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/token/introspect"):
			w.Header().Set("Content-Type", "application/json")
			if f.inactiveIntrospect {
				w.Write([]byte(`{"active": false}`))
				return
			}
			w.Write([]byte(`{"active": true, "sub": "kc-sub-1", "sid": "sess-1", "jti": "jti-1", "email": "admin@farmchain.example"}`))
		case strings.HasSuffix(r.URL.Path, "/logout"):
			atomic.AddInt32(&f.logoutCalls, 1)
			w.WriteHeader(http.StatusNoContent)
		case strings.HasSuffix(r.URL.Path, "/token"):
			if f.rejectSignin {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error": "invalid_grant"}`))
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token": "access-token-1", "refresh_token": "refresh-token-1", "expires_in": 300, "session_state": "sess-1"}`))
		default:
			t.Errorf("unexpected keycloak path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return f
}

func (f *keycloakFixture) client() *auth.KeycloakClient {
	return auth.NewKeycloakClient(f.server.URL, "farmchain", "funnel-backend", "secret")
}

func expectAdminRow(mock sqlmock.Sqlmock, status string) {
	mock.ExpectQuery(`SELECT id, email, display_name, status`).
		WithArgs("kc-sub-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "display_name", "status"}).
			AddRow("kc-sub-1", "admin@farmchain.example", "Funnel Admin", status))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestService_Execute_Success(t *testing.T) {
	kc := newKeycloakFixture(t)
	defer kc.server.Close()

	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()

	expectAdminRow(dbMock, "active")
	dbMock.ExpectExec(`UPDATE admin_users SET last_login`).
		WithArgs(sqlmock.AnyArg(), "kc-sub-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	redisMock.Regexp().ExpectSet("admin_session:sess-1", `\{.*"adminId":"kc-sub-1".*\}`, 60*time.Minute).SetVal("OK")

	service := NewService(ServiceDependencies{
		Keycloak: kc.client(),
		DB:       db,
		Redis:    redisClient,
		Logger:   newTestLogger(t),
	}, createTestConfig())

	output, err := service.Execute(context.Background(), &Input{
		Email:    "admin@farmchain.example",
		Password: "correct-horse",
	})

	assert.NoError(t, err)
	assert.True(t, output.Success)
	assert.Equal(t, "kc-sub-1", output.AdminID)
	assert.Equal(t, "admin@farmchain.example", output.Email)
	assert.Equal(t, "Funnel Admin", output.DisplayName)
	assert.Equal(t, "access-token-1", output.AccessToken)
	assert.Equal(t, "sess-1", output.SessionID)
	assert.Equal(t, int32(0), atomic.LoadInt32(&kc.logoutCalls))

	assert.NoError(t, dbMock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestService_Execute_InvalidCredentials(t *testing.T) {
	kc := newKeycloakFixture(t)
	kc.rejectSignin = true
	defer kc.server.Close()

	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()

	service := NewService(ServiceDependencies{
		Keycloak: kc.client(),
		DB:       db,
		Redis:    redisClient,
		Logger:   newTestLogger(t),
	}, createTestConfig())

	output, err := service.Execute(context.Background(), &Input{
		Email:    "admin@farmchain.example",
		Password: "wrong",
	})

	assert.Error(t, err)
	assert.Nil(t, output)

	stdErr, ok := err.(*errors.StandardError)
	assert.True(t, ok)
	assert.Equal(t, "AUTH_INVALID_CREDENTIALS", string(stdErr.Code))
	assert.False(t, stdErr.Retryable)

	// Nothing touched downstream
	assert.NoError(t, dbMock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestService_Execute_IntrospectionFailureRevokesTokens(t *testing.T) {
	kc := newKeycloakFixture(t)
	kc.inactiveIntrospect = true
	defer kc.server.Close()

	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()

	service := NewService(ServiceDependencies{
		Keycloak: kc.client(),
		DB:       db,
		Redis:    redisClient,
		Logger:   newTestLogger(t),
	}, createTestConfig())

	output, err := service.Execute(context.Background(), &Input{
		Email:    "admin@farmchain.example",
		Password: "correct-horse",
	})

	assert.Error(t, err)
	assert.Nil(t, output)

	stdErr, ok := err.(*errors.StandardError)
	assert.True(t, ok)
	assert.Equal(t, "TOKEN_INVALID", string(stdErr.Code))

	// The tokens minted by the sign-in were revoked, and neither the
	// allow-list nor the session store was touched.
	assert.Equal(t, int32(1), atomic.LoadInt32(&kc.logoutCalls))
	assert.NoError(t, dbMock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestService_Execute_NotOnAllowList(t *testing.T) {
	kc := newKeycloakFixture(t)
	defer kc.server.Close()

	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()

	dbMock.ExpectQuery(`SELECT id, email, display_name, status`).
		WithArgs("kc-sub-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "display_name", "status"}))

	service := NewService(ServiceDependencies{
		Keycloak: kc.client(),
		DB:       db,
		Redis:    redisClient,
		Logger:   newTestLogger(t),
	}, createTestConfig())

	output, err := service.Execute(context.Background(), &Input{
		Email:    "stranger@farmchain.example",
		Password: "correct-horse",
	})

	assert.Error(t, err)
	assert.Nil(t, output)

	stdErr, ok := err.(*errors.StandardError)
	assert.True(t, ok)
	assert.Equal(t, "ADMIN_NOT_AUTHORIZED", string(stdErr.Code))

	// The freshly minted tokens were revoked and no session opened.
	assert.Equal(t, int32(1), atomic.LoadInt32(&kc.logoutCalls))
	assert.NoError(t, dbMock.ExpectationsWereMet())
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestService_Execute_SuspendedAdminRefused(t *testing.T) {
	kc := newKeycloakFixture(t)
	defer kc.server.Close()

	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	redisClient, _ := redismock.NewClientMock()

	expectAdminRow(dbMock, "suspended")

	service := NewService(ServiceDependencies{
		Keycloak: kc.client(),
		DB:       db,
		Redis:    redisClient,
		Logger:   newTestLogger(t),
	}, createTestConfig())

	output, err := service.Execute(context.Background(), &Input{
		Email:    "admin@farmchain.example",
		Password: "correct-horse",
	})

	assert.Error(t, err)
	assert.Nil(t, output)

	stdErr, ok := err.(*errors.StandardError)
	assert.True(t, ok)
	assert.Equal(t, "ADMIN_NOT_AUTHORIZED", string(stdErr.Code))
	assert.Equal(t, int32(1), atomic.LoadInt32(&kc.logoutCalls))
}

func TestService_Execute_LastLoginFailureIsNotFatal(t *testing.T) {
	kc := newKeycloakFixture(t)
	defer kc.server.Close()

	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	redisClient, redisMock := redismock.NewClientMock()

	expectAdminRow(dbMock, "active")
	dbMock.ExpectExec(`UPDATE admin_users SET last_login`).
		WillReturnError(assert.AnError)
	redisMock.Regexp().ExpectSet("admin_session:sess-1", `\{.*\}`, 60*time.Minute).SetVal("OK")

	service := NewService(ServiceDependencies{
		Keycloak: kc.client(),
		DB:       db,
		Redis:    redisClient,
		Logger:   newTestLogger(t),
	}, createTestConfig())

	output, err := service.Execute(context.Background(), &Input{
		Email:    "admin@farmchain.example",
		Password: "correct-horse",
	})

	assert.NoError(t, err)
	assert.True(t, output.Success)
}

// ==========================
// Configuration Tests
// ==========================

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.SessionTTL = 0
	assert.Error(t, cfg.Validate())
}

func TestGetInputSchema(t *testing.T) {
	schema := GetInputSchema()

	assert.Equal(t, []string{"email", "password"}, schema.Required)
	assert.Contains(t, schema.Properties, "email")
	assert.Contains(t, schema.Properties, "password")
}
