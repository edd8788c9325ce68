// internal/workers/application/send-decision-notification/handler_test.go
package senddecisionnotification

import (
	"context"
	"errors"
	"testing"
	"time"

	"farmchain-workers/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		EmailEnabled: true,
		FromEmail:    "no-reply@farmchain.example",
		SMSEnabled:   true,
		SMSSenderID:  "FarmChain",
	}
}

func createTestInput(status string) *Input {
	return &Input{
		ApplicationID: "app-001",
		AdminStatus:   status,
		FullName:      "Adaeze Obi",
		Email:         "adaeze@example.com",
		Phone:         "+2348012345678",
	}
}

type mockEmailSender struct {
	err    error
	inputs []*ses.SendEmailInput
}

func (m *mockEmailSender) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	m.inputs = append(m.inputs, input)
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{}, nil
}

type mockSMSSender struct {
	err    error
	inputs []*sns.PublishInput
}

func (m *mockSMSSender) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	m.inputs = append(m.inputs, input)
	if m.err != nil {
		return nil, m.err
	}
	return &sns.PublishOutput{}, nil
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

func TestHandler_Execute_ApprovedBothChannels(t *testing.T) {
	email := &mockEmailSender{}
	sms := &mockSMSSender{}

	handler := NewHandler(createTestConfig(), email, sms, newTestLogger(t))
	output, err := handler.Execute(context.Background(), createTestInput("Approved"))

	assert.NoError(t, err)
	assert.True(t, output.EmailSent)
	assert.True(t, output.SMSSent)
	assert.Len(t, email.inputs, 1)
	assert.Len(t, sms.inputs, 1)

	assert.Contains(t, *email.inputs[0].Message.Subject.Data, "approved")
	assert.Contains(t, *email.inputs[0].Message.Body.Text.Data, "Adaeze Obi")
	assert.Equal(t, "no-reply@farmchain.example", *email.inputs[0].Source)
	assert.Equal(t, "+2348012345678", *sms.inputs[0].PhoneNumber)

	_, err = time.Parse(time.RFC3339, output.SentAt)
	assert.NoError(t, err)
}

func TestHandler_Execute_DeclinedContent(t *testing.T) {
	email := &mockEmailSender{}

	cfg := createTestConfig()
	cfg.SMSEnabled = false

	handler := NewHandler(cfg, email, nil, newTestLogger(t))
	output, err := handler.Execute(context.Background(), createTestInput("Declined"))

	assert.NoError(t, err)
	assert.True(t, output.EmailSent)
	assert.False(t, output.SMSSent)

	assert.Contains(t, *email.inputs[0].Message.Subject.Data, "update")
	assert.Contains(t, *email.inputs[0].Message.Body.Text.Data, "unable to offer")
	assert.NotContains(t, *email.inputs[0].Message.Body.Text.Data, "Congratulations")
}

func TestHandler_Execute_EmailFailureIsolated(t *testing.T) {
	email := &mockEmailSender{err: errors.New("throttled")}
	sms := &mockSMSSender{}

	handler := NewHandler(createTestConfig(), email, sms, newTestLogger(t))
	output, err := handler.Execute(context.Background(), createTestInput("Approved"))

	// The SMS still went out, so the job succeeds with the email flagged off.
	assert.NoError(t, err)
	assert.False(t, output.EmailSent)
	assert.True(t, output.SMSSent)
}

func TestHandler_Execute_AllChannelsFailed(t *testing.T) {
	email := &mockEmailSender{err: errors.New("throttled")}
	sms := &mockSMSSender{err: errors.New("opted out")}

	handler := NewHandler(createTestConfig(), email, sms, newTestLogger(t))
	output, err := handler.Execute(context.Background(), createTestInput("Approved"))

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotificationSendFailed))
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "sms")
	assert.Nil(t, output)
}

func TestHandler_Execute_SMSSkippedWithoutPhone(t *testing.T) {
	email := &mockEmailSender{}
	sms := &mockSMSSender{}

	input := createTestInput("Approved")
	input.Phone = ""

	handler := NewHandler(createTestConfig(), email, sms, newTestLogger(t))
	output, err := handler.Execute(context.Background(), input)

	assert.NoError(t, err)
	assert.True(t, output.EmailSent)
	assert.False(t, output.SMSSent)
	assert.Empty(t, sms.inputs)
}

func TestHandler_Execute_NoChannelsInPlay(t *testing.T) {
	t.Run("both channels disabled", func(t *testing.T) {
		cfg := createTestConfig()
		cfg.EmailEnabled = false
		cfg.SMSEnabled = false

		handler := NewHandler(cfg, nil, nil, newTestLogger(t))
		output, err := handler.Execute(context.Background(), createTestInput("Approved"))

		// Nothing was attempted, so nothing failed; retrying would never
		// deliver anything, so the job completes with both flags off.
		assert.NoError(t, err)
		assert.False(t, output.EmailSent)
		assert.False(t, output.SMSSent)
		assert.Empty(t, output.SentAt)
	})

	t.Run("sms only but no phone", func(t *testing.T) {
		sms := &mockSMSSender{}

		cfg := createTestConfig()
		cfg.EmailEnabled = false

		input := createTestInput("Declined")
		input.Phone = ""

		handler := NewHandler(cfg, nil, sms, newTestLogger(t))
		output, err := handler.Execute(context.Background(), input)

		assert.NoError(t, err)
		assert.False(t, output.EmailSent)
		assert.False(t, output.SMSSent)
		assert.Empty(t, output.SentAt)
		assert.Empty(t, sms.inputs)
	})
}

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{EmailEnabled: true}
	assert.Error(t, cfg.Validate())

	cfg.FromEmail = "no-reply@farmchain.example"
	assert.NoError(t, cfg.Validate())

	cfg = &Config{}
	assert.Error(t, cfg.Validate())
}
