// internal/workers/lead/qualify-lead/handler.go
package qualifylead

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
	"farmchain-workers/internal/eligibility"
	"farmchain-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "qualify-lead"
)

var (
	ErrValidationFailed     = errors.New("VALIDATION_FAILED")
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
)

type Handler struct {
	config *Config
	db     *sql.DB
	rule   eligibility.Rule
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, rule eligibility.Rule, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		rule:   rule,
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
		if errors.Is(err, ErrDatabaseInsertFailed) {
			errorCode = "DATABASE_INSERT_FAILED"
			retries = 3
		} else if errors.Is(err, ErrValidationFailed) {
			errorCode = "VALIDATION_FAILED"
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	// Evaluate the admission rule first. A malformed income is an ineligible
	// lead, never a failure: the row is still written for audit visibility.
	decision := h.rule.Evaluate(eligibility.Input{
		FinanceTrack:        models.FinanceTrack(input.FinanceTrack),
		ContributionAbility: models.ContributionAbility(input.ContributionAbility),
		AnnualIncome:        input.AnnualIncome,
	})
	status := decision.Status()

	leadID := uuid.New().String()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO qualified_leads (
			id, name, email, phone, finance_track, contribution_ability,
			annual_income, why_join, application_status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		leadID,
		input.Name,
		input.Email,
		input.Phone,
		input.FinanceTrack,
		input.ContributionAbility,
		decision.Income,
		input.WhyJoin,
		string(status),
		createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert failed: %v", ErrDatabaseInsertFailed, err)
	}

	outcome := "ineligible"
	if decision.Eligible {
		outcome = "eligible"
	}
	metrics.LeadQualifications.WithLabelValues(outcome).Inc()

	h.logger.Info("lead recorded", map[string]interface{}{
		"leadId":            leadID,
		"applicationStatus": string(status),
		"reason":            decision.Reason,
		"financeTrack":      input.FinanceTrack,
	})

	return &Output{
		LeadID:            leadID,
		Eligible:          decision.Eligible,
		ApplicationStatus: string(status),
		Reason:            decision.Reason,
		CreatedAt:         createdAt,
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
