// internal/workers/application/review-application/handler.go
package reviewapplication

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"farmchain-workers/internal/common/logger"
	"farmchain-workers/internal/common/metrics"
	"farmchain-workers/internal/common/validation"
	"farmchain-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "review-application"

	// capacityLockKey is the advisory lock id shared by every capacity-gated
	// approval. The row lock on the application only serializes decisions on
	// the same application; the Approved count guard needs all approvals to
	// run one at a time, so each one takes this transaction-scoped lock
	// before counting.
	capacityLockKey int64 = 824042
)

var (
	ErrValidationFailed          = errors.New("VALIDATION_FAILED")
	ErrApplicationNotFound       = errors.New("APPLICATION_NOT_FOUND")
	ErrApplicationAlreadyDecided = errors.New("APPLICATION_ALREADY_DECIDED")
	ErrCapacityExhausted         = errors.New("CAPACITY_EXHAUSTED")
	ErrDatabaseUpdateFailed      = errors.New("DATABASE_UPDATE_FAILED")
)

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	input, err := parseInput(job)
	if err != nil {
		h.failJob(client, job, "VALIDATION_FAILED", err.Error(), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, input)
	if err != nil {
		errorCode := "UNKNOWN_ERROR"
		retries := int32(0)
		switch {
		case errors.Is(err, ErrValidationFailed):
			errorCode = "VALIDATION_FAILED"
		case errors.Is(err, ErrApplicationNotFound):
			errorCode = "APPLICATION_NOT_FOUND"
		case errors.Is(err, ErrApplicationAlreadyDecided):
			errorCode = "APPLICATION_ALREADY_DECIDED"
		case errors.Is(err, ErrCapacityExhausted):
			errorCode = "CAPACITY_EXHAUSTED"
		case errors.Is(err, ErrDatabaseUpdateFailed):
			errorCode = "DATABASE_UPDATE_FAILED"
			retries = 3
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, fmt.Errorf("%w: parse variables: %v", ErrValidationFailed, err)
	}

	result := validation.ValidateInput(variables, GetInputSchema())
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, strings.Join(result.GetErrorMessages(), "; "))
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		return nil, fmt.Errorf("%w: decode input: %v", ErrValidationFailed, err)
	}

	return &input, nil
}

// execute records a terminal review decision in one transaction: lock the
// application, verify it is still Pending Review, apply the decision. When
// capacity enforcement is on, the approval first takes the shared advisory
// lock (held until commit) and only lands while the Approved count is below
// the slot ceiling; with approvals serialized on that lock, each guard's
// count includes every previously committed approval, so two concurrent
// approvals cannot both take the last slot. Declines are never
// capacity-gated.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %v", ErrDatabaseUpdateFailed, err)
	}
	defer tx.Rollback()

	var currentStatus string
	err = tx.QueryRowContext(ctx, `
		SELECT admin_status
		FROM applications
		WHERE id = $1
		FOR UPDATE`, input.ApplicationID).Scan(&currentStatus)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no application with id %s", ErrApplicationNotFound, input.ApplicationID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: application lookup failed: %v", ErrDatabaseUpdateFailed, err)
	}

	// Approved and Declined are terminal; a second decision is refused rather
	// than overwritten.
	if currentStatus != string(models.AdminStatusPendingReview) {
		return nil, fmt.Errorf("%w: application %s is already %s", ErrApplicationAlreadyDecided, input.ApplicationID, currentStatus)
	}

	updatedAt := time.Now().UTC().Format(time.RFC3339)

	if input.Decision == string(models.AdminStatusApproved) && h.config.EnforceCapacity {
		// Released automatically at commit or rollback.
		if _, err := tx.ExecContext(ctx,
			`SELECT pg_advisory_xact_lock($1)`, capacityLockKey); err != nil {
			return nil, fmt.Errorf("%w: capacity lock failed: %v", ErrDatabaseUpdateFailed, err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE applications
			SET admin_status = $1, admin_notes = $2, updated_at = $3
			WHERE id = $4
			AND (SELECT COUNT(*) FROM applications WHERE admin_status = $1) < $5`,
			string(models.AdminStatusApproved),
			input.AdminNotes,
			updatedAt,
			input.ApplicationID,
			h.config.SlotCeiling,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: approval update failed: %v", ErrDatabaseUpdateFailed, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("%w: approval update failed: %v", ErrDatabaseUpdateFailed, err)
		}
		if affected == 0 {
			return nil, fmt.Errorf("%w: all %d membership slots are taken", ErrCapacityExhausted, h.config.SlotCeiling)
		}
	} else {
		_, err := tx.ExecContext(ctx, `
			UPDATE applications
			SET admin_status = $1, admin_notes = $2, updated_at = $3
			WHERE id = $4`,
			input.Decision,
			input.AdminNotes,
			updatedAt,
			input.ApplicationID,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: decision update failed: %v", ErrDatabaseUpdateFailed, err)
		}
	}

	var approvedCount int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM applications WHERE admin_status = $1`,
		string(models.AdminStatusApproved)).Scan(&approvedCount)
	if err != nil {
		return nil, fmt.Errorf("%w: approved count failed: %v", ErrDatabaseUpdateFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit failed: %v", ErrDatabaseUpdateFailed, err)
	}

	availableSlots := h.config.SlotCeiling - approvedCount
	if availableSlots < 0 {
		availableSlots = 0
	}
	metrics.ApprovedSlotsRemaining.Set(float64(availableSlots))
	metrics.ApplicationDecisions.WithLabelValues(input.Decision).Inc()

	h.logger.Info("application reviewed", map[string]interface{}{
		"applicationId":  input.ApplicationID,
		"decision":       input.Decision,
		"reviewerId":     input.ReviewerID,
		"approvedCount":  approvedCount,
		"availableSlots": availableSlots,
	})

	return &Output{
		ApplicationID:  input.ApplicationID,
		AdminStatus:    input.Decision,
		ApprovedCount:  approvedCount,
		AvailableSlots: availableSlots,
		UpdatedAt:      updatedAt,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	} else {
		h.logger.Info("job completed successfully", map[string]interface{}{
			"jobKey": job.Key,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
