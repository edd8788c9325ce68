// internal/workers/application/review-application/handler_test.go
package reviewapplication

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
		Timeout:         30 * time.Second,
		SlotCeiling:     100,
		EnforceCapacity: true,
	}
}

func createTestInput(decision string) *Input {
	return &Input{
		ApplicationID: "app-001",
		Decision:      decision,
		AdminNotes:    "Reviewed herd commitment and documents",
		ReviewerID:    "admin-007",
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

func expectApplicationLock(mock sqlmock.Sqlmock, status string) {
	mock.ExpectQuery(`SELECT admin_status`).
		WithArgs("app-001").
		WillReturnRows(sqlmock.NewRows([]string{"admin_status"}).AddRow(status))
}

func expectCapacityLock(mock sqlmock.Sqlmock) {
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WithArgs(capacityLockKey).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func expectApprovedCount(mock sqlmock.Sqlmock, count int) {
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM applications`).
		WithArgs("Approved").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_ApproveSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectApplicationLock(mock, "Pending Review")
	expectCapacityLock(mock)
	mock.ExpectExec(`UPDATE applications`).
		WithArgs("Approved", "Reviewed herd commitment and documents", sqlmock.AnyArg(), "app-001", 100).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectApprovedCount(mock, 42)
	mock.ExpectCommit()

	handler := NewHandler(createTestConfig(), db, newTestLogger(t))
	output, err := handler.Execute(context.Background(), createTestInput("Approved"))

	assert.NoError(t, err)
	assert.NotNil(t, output)
	assert.Equal(t, "app-001", output.ApplicationID)
	assert.Equal(t, "Approved", output.AdminStatus)
	assert.Equal(t, 42, output.ApprovedCount)
	assert.Equal(t, 58, output.AvailableSlots)

	_, err = time.Parse(time.RFC3339, output.UpdatedAt)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_DeclineSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectApplicationLock(mock, "Pending Review")
	mock.ExpectExec(`UPDATE applications`).
		WithArgs("Declined", "Reviewed herd commitment and documents", sqlmock.AnyArg(), "app-001").
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectApprovedCount(mock, 100)
	mock.ExpectCommit()

	handler := NewHandler(createTestConfig(), db, newTestLogger(t))
	output, err := handler.Execute(context.Background(), createTestInput("Declined"))

	// Declines go through even with every slot taken.
	assert.NoError(t, err)
	assert.Equal(t, "Declined", output.AdminStatus)
	assert.Equal(t, 100, output.ApprovedCount)
	assert.Equal(t, 0, output.AvailableSlots)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ApplicationNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT admin_status`).
		WithArgs("app-001").
		WillReturnRows(sqlmock.NewRows([]string{"admin_status"}))
	mock.ExpectRollback()

	handler := NewHandler(createTestConfig(), db, newTestLogger(t))
	output, err := handler.Execute(context.Background(), createTestInput("Approved"))

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrApplicationNotFound))
	assert.Nil(t, output)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_AlreadyDecidedRefused(t *testing.T) {
	for _, terminal := range []string{"Approved", "Declined"} {
		t.Run(terminal, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			mock.ExpectBegin()
			expectApplicationLock(mock, terminal)
			mock.ExpectRollback()

			handler := NewHandler(createTestConfig(), db, newTestLogger(t))
			output, err := handler.Execute(context.Background(), createTestInput("Declined"))

			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrApplicationAlreadyDecided))
			assert.Contains(t, err.Error(), terminal)
			assert.Nil(t, output)

			// Terminal states are final; nothing is written.
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_CapacityExhausted(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectApplicationLock(mock, "Pending Review")
	expectCapacityLock(mock)
	// The guarded update matches no row once the ceiling is reached.
	mock.ExpectExec(`UPDATE applications`).
		WithArgs("Approved", "Reviewed herd commitment and documents", sqlmock.AnyArg(), "app-001", 100).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	handler := NewHandler(createTestConfig(), db, newTestLogger(t))
	output, err := handler.Execute(context.Background(), createTestInput("Approved"))

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrCapacityExhausted))
	assert.Contains(t, err.Error(), "100")
	assert.Nil(t, output)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// Two approvals racing for the last slot resolve in lock order: the row lock
// alone would let them proceed on different applications, so each approval
// must take the shared advisory lock before its guarded update. The winner
// commits the 100th approval; the loser, counting after the winner's commit,
// matches no row and is refused.
func TestHandler_Execute_LastSlotSingleWinner(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	// Winner: lock, guard passes at 99 Approved, commits the 100th.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT admin_status`).
		WithArgs("app-001").
		WillReturnRows(sqlmock.NewRows([]string{"admin_status"}).AddRow("Pending Review"))
	expectCapacityLock(mock)
	mock.ExpectExec(`UPDATE applications`).
		WithArgs("Approved", "Reviewed herd commitment and documents", sqlmock.AnyArg(), "app-001", 100).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectApprovedCount(mock, 100)
	mock.ExpectCommit()

	// Loser: acquires the lock only after the winner commits, so its guard
	// counts 100 Approved and the update matches nothing.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT admin_status`).
		WithArgs("app-002").
		WillReturnRows(sqlmock.NewRows([]string{"admin_status"}).AddRow("Pending Review"))
	expectCapacityLock(mock)
	mock.ExpectExec(`UPDATE applications`).
		WithArgs("Approved", "Reviewed herd commitment and documents", sqlmock.AnyArg(), "app-002", 100).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	handler := NewHandler(createTestConfig(), db, newTestLogger(t))

	winner, err := handler.Execute(context.Background(), createTestInput("Approved"))
	assert.NoError(t, err)
	assert.Equal(t, 100, winner.ApprovedCount)
	assert.Equal(t, 0, winner.AvailableSlots)

	loserInput := createTestInput("Approved")
	loserInput.ApplicationID = "app-002"
	loser, err := handler.Execute(context.Background(), loserInput)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrCapacityExhausted))
	assert.Nil(t, loser)

	// Ordered expectations prove the lock is taken before each guarded update.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_CapacityLockFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectApplicationLock(mock, "Pending Review")
	mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
		WithArgs(capacityLockKey).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	handler := NewHandler(createTestConfig(), db, newTestLogger(t))
	output, err := handler.Execute(context.Background(), createTestInput("Approved"))

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrDatabaseUpdateFailed))
	assert.Nil(t, output)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_CapacityNotEnforced(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectApplicationLock(mock, "Pending Review")
	// With enforcement off, approvals use the plain update with no ceiling arg.
	mock.ExpectExec(`UPDATE applications`).
		WithArgs("Approved", "Reviewed herd commitment and documents", sqlmock.AnyArg(), "app-001").
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectApprovedCount(mock, 103)
	mock.ExpectCommit()

	cfg := createTestConfig()
	cfg.EnforceCapacity = false

	handler := NewHandler(cfg, db, newTestLogger(t))
	output, err := handler.Execute(context.Background(), createTestInput("Approved"))

	assert.NoError(t, err)
	assert.Equal(t, 103, output.ApprovedCount)
	assert.Equal(t, 0, output.AvailableSlots)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_UpdateFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	expectApplicationLock(mock, "Pending Review")
	expectCapacityLock(mock)
	mock.ExpectExec(`UPDATE applications`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	handler := NewHandler(createTestConfig(), db, newTestLogger(t))
	output, err := handler.Execute(context.Background(), createTestInput("Approved"))

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrDatabaseUpdateFailed))
	assert.Nil(t, output)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetInputSchema_RejectsUnknownDecision(t *testing.T) {
	schema := GetInputSchema()

	assert.Contains(t, schema.Required, "applicationId")
	assert.Contains(t, schema.Required, "decision")
	assert.Equal(t, []string{"Approved", "Declined"}, schema.Properties["decision"].Enum)
}
