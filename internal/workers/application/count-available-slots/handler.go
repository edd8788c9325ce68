// internal/workers/application/count-available-slots/handler.go
package countavailableslots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"farmchain-workers/internal/common/logger"
	"farmchain-workers/internal/common/metrics"
	"farmchain-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "count-available-slots"
)

var (
	ErrQueryExecutionFailed = errors.New("QUERY_EXECUTION_FAILED")
)

// Handler reports how many founding-member slots remain. The number is a
// snapshot for display; the approval path re-checks capacity under a shared
// advisory lock, so a stale count here can never oversell a slot.
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

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx)
	if err != nil {
		h.failJob(client, job, "QUERY_EXECUTION_FAILED", err.Error(), 3)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context) (*Output, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT admin_status, COUNT(*)
		FROM applications
		GROUP BY admin_status`)
	if err != nil {
		return nil, fmt.Errorf("%w: status counts failed: %v", ErrQueryExecutionFailed, err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("%w: scan status count: %v", ErrQueryExecutionFailed, err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: status counts failed: %v", ErrQueryExecutionFailed, err)
	}

	approved := counts[string(models.AdminStatusApproved)]
	available := h.config.SlotCeiling - approved
	if available < 0 {
		available = 0
	}
	metrics.ApprovedSlotsRemaining.Set(float64(available))

	h.logger.Info("counted membership slots", map[string]interface{}{
		"approvedCount":  approved,
		"availableSlots": available,
	})

	return &Output{
		SlotCeiling:        h.config.SlotCeiling,
		ApprovedCount:      approved,
		PendingReviewCount: counts[string(models.AdminStatusPendingReview)],
		DeclinedCount:      counts[string(models.AdminStatusDeclined)],
		AvailableSlots:     available,
		CountedAt:          time.Now().UTC().Format(time.RFC3339),
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

func (h *Handler) Execute(ctx context.Context) (*Output, error) {
	return h.execute(ctx)
}
