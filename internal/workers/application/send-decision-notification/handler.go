// internal/workers/application/send-decision-notification/handler.go
package senddecisionnotification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	commonaws "farmchain-workers/internal/common/aws"
	"farmchain-workers/internal/common/logger"
	"farmchain-workers/internal/common/validation"
	"farmchain-workers/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "send-decision-notification"
)

var (
	ErrValidationFailed       = errors.New("VALIDATION_FAILED")
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

// EmailSender and SMSSender are satisfied by the AWS wrappers and by test
// doubles.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

type SMSSender interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Handler struct {
	config *Config
	email  EmailSender
	sms    SMSSender
	logger logger.Logger
}

func NewHandler(config *Config, email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		email:  email,
		sms:    sms,
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
		case errors.Is(err, ErrNotificationSendFailed):
			errorCode = "NOTIFICATION_SEND_FAILED"
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

// execute fans the decision out to every enabled channel. One channel
// failing does not suppress the other; the job only fails, retryably, when
// at least one channel was attempted and none got the message out. With no
// channel in play at all (email disabled, SMS disabled or no phone) there is
// nothing a retry could deliver, so the job completes with both sent flags
// off.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	subject, htmlBody, textBody := buildEmailContent(input)

	output := &Output{
		ApplicationID: input.ApplicationID,
	}

	var channelErrs []string
	attempted := 0

	if h.config.EmailEnabled {
		attempted++
		emailInput := commonaws.BuildEmailInput(h.config.FromEmail, input.Email, subject, htmlBody, textBody)
		if _, err := h.email.SendEmail(ctx, emailInput); err != nil {
			h.logger.Error("decision email failed", map[string]interface{}{
				"applicationId": input.ApplicationID,
				"error":         err.Error(),
			})
			channelErrs = append(channelErrs, fmt.Sprintf("email: %v", err))
		} else {
			output.EmailSent = true
		}
	}

	if h.config.SMSEnabled && input.Phone != "" {
		attempted++
		smsInput := commonaws.BuildSMSInput(input.Phone, textBody, h.config.SMSSenderID)
		if _, err := h.sms.Publish(ctx, smsInput); err != nil {
			h.logger.Error("decision SMS failed", map[string]interface{}{
				"applicationId": input.ApplicationID,
				"error":         err.Error(),
			})
			channelErrs = append(channelErrs, fmt.Sprintf("sms: %v", err))
		} else {
			output.SMSSent = true
		}
	}

	if attempted == 0 {
		h.logger.Warn("no notification channel in play, completing without sending", map[string]interface{}{
			"applicationId": input.ApplicationID,
			"emailEnabled":  h.config.EmailEnabled,
			"smsEnabled":    h.config.SMSEnabled,
			"hasPhone":      input.Phone != "",
		})
		return output, nil
	}

	if !output.EmailSent && !output.SMSSent {
		return nil, fmt.Errorf("%w: %s", ErrNotificationSendFailed, strings.Join(channelErrs, "; "))
	}

	output.SentAt = time.Now().UTC().Format(time.RFC3339)

	h.logger.Info("decision notification sent", map[string]interface{}{
		"applicationId": input.ApplicationID,
		"adminStatus":   input.AdminStatus,
		"emailSent":     output.EmailSent,
		"smsSent":       output.SMSSent,
	})

	return output, nil
}

func buildEmailContent(input *Input) (subject, htmlBody, textBody string) {
	if input.AdminStatus == string(models.AdminStatusApproved) {
		subject = "Your FarmChain membership application has been approved"
		textBody = fmt.Sprintf(
			"Dear %s,\n\nCongratulations! Your application (%s) to join the FarmChain cattle cooperative has been approved. Our onboarding team will contact you with the next steps.\n\nThe FarmChain Team",
			input.FullName, input.ApplicationID)
	} else {
		subject = "An update on your FarmChain membership application"
		textBody = fmt.Sprintf(
			"Dear %s,\n\nThank you for applying to the FarmChain cattle cooperative. After careful review, we are unable to offer you membership in the current cohort. We encourage you to apply again when the next cohort opens.\n\nThe FarmChain Team",
			input.FullName)
	}
	htmlBody = "<p>" + strings.ReplaceAll(textBody, "\n\n", "</p><p>") + "</p>"
	return subject, htmlBody, textBody
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
