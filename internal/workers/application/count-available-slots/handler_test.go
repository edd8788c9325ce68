// internal/workers/application/count-available-slots/handler_test.go
package countavailableslots

import (
	"context"
	"errors"
	"testing"
	"time"

	"farmchain-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:     10 * time.Second,
		SlotCeiling: 100,
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

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_CountsAllStatuses(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT admin_status, COUNT\(\*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"admin_status", "count"}).
			AddRow("Approved", 37).
			AddRow("Pending Review", 12).
			AddRow("Declined", 5))

	handler := NewHandler(createTestConfig(), db, newTestLogger(t))
	output, err := handler.Execute(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 100, output.SlotCeiling)
	assert.Equal(t, 37, output.ApprovedCount)
	assert.Equal(t, 12, output.PendingReviewCount)
	assert.Equal(t, 5, output.DeclinedCount)
	assert.Equal(t, 63, output.AvailableSlots)

	_, err = time.Parse(time.RFC3339, output.CountedAt)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_NoApplicationsYet(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT admin_status, COUNT\(\*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"admin_status", "count"}))

	handler := NewHandler(createTestConfig(), db, newTestLogger(t))
	output, err := handler.Execute(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 0, output.ApprovedCount)
	assert.Equal(t, 100, output.AvailableSlots)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_AvailableNeverNegative(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	// Approvals made while enforcement was off can exceed the ceiling.
	mock.ExpectQuery(`SELECT admin_status, COUNT\(\*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"admin_status", "count"}).
			AddRow("Approved", 104))

	handler := NewHandler(createTestConfig(), db, newTestLogger(t))
	output, err := handler.Execute(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 104, output.ApprovedCount)
	assert.Equal(t, 0, output.AvailableSlots)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_QueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT admin_status, COUNT\(\*\)`).
		WillReturnError(errors.New("connection refused"))

	handler := NewHandler(createTestConfig(), db, newTestLogger(t))
	output, err := handler.Execute(context.Background())

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrQueryExecutionFailed))
	assert.Nil(t, output)

	assert.NoError(t, mock.ExpectationsWereMet())
}
