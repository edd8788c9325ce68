// internal/workers/application/submit-application/handler.go
package submitapplication

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"farmchain-workers/internal/common/logger"
	"farmchain-workers/internal/common/validation"
	"farmchain-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "submit-application"
)

var (
	ErrValidationFailed     = errors.New("VALIDATION_FAILED")
	ErrLeadNotFound         = errors.New("LEAD_NOT_FOUND")
	ErrLeadNotPending       = errors.New("LEAD_NOT_PENDING")
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
)

var bvnPattern = regexp.MustCompile(`^[0-9]{11}$`)

type Handler struct {
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	return &Handler{
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	output, err := h.execute(ctx, input)
	if err != nil {
		errorCode := "UNKNOWN_ERROR"
		retries := int32(0)
		switch {
		case errors.Is(err, ErrValidationFailed):
			errorCode = "VALIDATION_FAILED"
		case errors.Is(err, ErrLeadNotFound):
			errorCode = "LEAD_NOT_FOUND"
		case errors.Is(err, ErrLeadNotPending):
			errorCode = "LEAD_NOT_PENDING"
		case errors.Is(err, ErrDatabaseInsertFailed):
			errorCode = "DATABASE_INSERT_FAILED"
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

	if input.CattleCommitted < 1 {
		return nil, fmt.Errorf("%w: cattleCommitted must be a positive integer", ErrValidationFailed)
	}
	if !models.ValidReferralSources[input.ReferralSource] {
		return nil, fmt.Errorf("%w: unknown referralSource %q", ErrValidationFailed, input.ReferralSource)
	}

	return &input, nil
}

// execute runs the intake as one transaction: lock the lead, verify it is
// still Pending, insert the application, flip the lead to Submitted. Either
// both writes land or neither does, so no orphan application can outlive a
// still-Pending lead.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %v", ErrDatabaseInsertFailed, err)
	}
	defer tx.Rollback()

	var financeTrack, status string
	err = tx.QueryRowContext(ctx, `
		SELECT finance_track, application_status
		FROM qualified_leads
		WHERE id = $1
		FOR UPDATE`, input.LeadID).Scan(&financeTrack, &status)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no lead with id %s", ErrLeadNotFound, input.LeadID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: lead lookup failed: %v", ErrDatabaseInsertFailed, err)
	}

	// Fail closed on replay: Submitted means an application already exists,
	// Ineligible means the prospect never qualified.
	if status != string(models.LeadStatusPending) {
		return nil, fmt.Errorf("%w: lead %s has status %s", ErrLeadNotPending, input.LeadID, status)
	}

	// Financing-track requireds depend on the lead row, so they are checked
	// here rather than in the schema.
	if financeTrack == string(models.FinanceTrackFinancing) {
		if strings.TrimSpace(input.EmploymentInfo) == "" {
			return nil, fmt.Errorf("%w: employmentInfo is required on the Financing track", ErrValidationFailed)
		}
		if !bvnPattern.MatchString(input.BVN) {
			return nil, fmt.Errorf("%w: bvn must be 11 digits on the Financing track", ErrValidationFailed)
		}
	}

	appID := uuid.New().String()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO applications (
			id, lead_id, full_name, address, date_of_birth,
			employment_info, bvn, cattle_committed, expectations,
			referral_source, admin_status, admin_notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, '', $12, $12)`,
		appID,
		input.LeadID,
		input.FullName,
		input.Address,
		input.DateOfBirth,
		input.EmploymentInfo,
		input.BVN,
		input.CattleCommitted,
		input.Expectations,
		input.ReferralSource,
		string(models.AdminStatusPendingReview),
		createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: application insert failed: %v", ErrDatabaseInsertFailed, err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE qualified_leads
		SET application_status = $1
		WHERE id = $2`,
		string(models.LeadStatusSubmitted),
		input.LeadID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: lead transition failed: %v", ErrDatabaseInsertFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit failed: %v", ErrDatabaseInsertFailed, err)
	}

	h.logger.Info("application submitted", map[string]interface{}{
		"applicationId": appID,
		"leadId":        input.LeadID,
		"financeTrack":  financeTrack,
	})

	return &Output{
		ApplicationID: appID,
		AdminStatus:   string(models.AdminStatusPendingReview),
		LeadStatus:    string(models.LeadStatusSubmitted),
		CreatedAt:     createdAt,
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
