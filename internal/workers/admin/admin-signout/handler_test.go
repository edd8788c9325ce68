package adminsignout

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
		Timeout:       10 * time.Second,
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

func newKeycloakServer(t *testing.T, logoutCalls *int32, failLogout bool) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/logout") {
			t.Errorf("unexpected keycloak path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		atomic.AddInt32(logoutCalls, 1)
		if failLogout {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestService_Execute_Success(t *testing.T) {
	var logoutCalls int32
	kc := newKeycloakServer(t, &logoutCalls, false)
	defer kc.Close()

	redisClient, redisMock := redismock.NewClientMock()
	redisMock.ExpectDel("admin_session:sess-1").SetVal(1)

	service := NewService(ServiceDependencies{
		Keycloak: auth.NewKeycloakClient(kc.URL, "farmchain", "funnel-backend", "secret"),
		Redis:    redisClient,
		Logger:   newTestLogger(t),
	}, createTestConfig())

	output, err := service.Execute(context.Background(), &Input{
		SessionID:    "sess-1",
		RefreshToken: "refresh-token-1",
		AdminID:      "kc-sub-1",
	})

	assert.NoError(t, err)
	assert.True(t, output.Success)
	assert.Equal(t, 1, output.SessionsInvalidated)
	assert.True(t, output.TokenRevoked)
	assert.Equal(t, int32(1), atomic.LoadInt32(&logoutCalls))

	_, err = time.Parse(time.RFC3339, output.SignedOutAt)
	assert.NoError(t, err)

	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestService_Execute_AlreadySignedOut(t *testing.T) {
	var logoutCalls int32
	kc := newKeycloakServer(t, &logoutCalls, false)
	defer kc.Close()

	redisClient, redisMock := redismock.NewClientMock()
	redisMock.ExpectDel("admin_session:sess-1").SetVal(0)

	service := NewService(ServiceDependencies{
		Keycloak: auth.NewKeycloakClient(kc.URL, "farmchain", "funnel-backend", "secret"),
		Redis:    redisClient,
		Logger:   newTestLogger(t),
	}, createTestConfig())

	output, err := service.Execute(context.Background(), &Input{SessionID: "sess-1"})

	// Signing out twice is a no-op, not an error.
	assert.NoError(t, err)
	assert.True(t, output.Success)
	assert.Equal(t, 0, output.SessionsInvalidated)
	assert.False(t, output.TokenRevoked)
	assert.Equal(t, int32(0), atomic.LoadInt32(&logoutCalls))
}

func TestService_Execute_KeycloakFailureIsNotFatal(t *testing.T) {
	var logoutCalls int32
	kc := newKeycloakServer(t, &logoutCalls, true)
	defer kc.Close()

	redisClient, redisMock := redismock.NewClientMock()
	redisMock.ExpectDel("admin_session:sess-1").SetVal(1)

	service := NewService(ServiceDependencies{
		Keycloak: auth.NewKeycloakClient(kc.URL, "farmchain", "funnel-backend", "secret"),
		Redis:    redisClient,
		Logger:   newTestLogger(t),
	}, createTestConfig())

	output, err := service.Execute(context.Background(), &Input{
		SessionID:    "sess-1",
		RefreshToken: "refresh-token-1",
	})

	// The session key is gone, which is what admin-verify enforces.
	assert.NoError(t, err)
	assert.True(t, output.Success)
	assert.Equal(t, 1, output.SessionsInvalidated)
	assert.False(t, output.TokenRevoked)
}

func TestService_Execute_RedisFailure(t *testing.T) {
	var logoutCalls int32
	kc := newKeycloakServer(t, &logoutCalls, false)
	defer kc.Close()

	redisClient, redisMock := redismock.NewClientMock()
	redisMock.ExpectDel("admin_session:sess-1").SetErr(assert.AnError)

	service := NewService(ServiceDependencies{
		Keycloak: auth.NewKeycloakClient(kc.URL, "farmchain", "funnel-backend", "secret"),
		Redis:    redisClient,
		Logger:   newTestLogger(t),
	}, createTestConfig())

	output, err := service.Execute(context.Background(), &Input{SessionID: "sess-1"})

	assert.Error(t, err)
	assert.Nil(t, output)

	stdErr, ok := err.(*errors.StandardError)
	assert.True(t, ok)
	assert.Equal(t, "SESSION_STORE_FAILED", string(stdErr.Code))
	assert.True(t, stdErr.Retryable)
}
