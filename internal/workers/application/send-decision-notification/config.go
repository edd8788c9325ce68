// internal/workers/application/send-decision-notification/config.go
package senddecisionnotification

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout time.Duration

	EmailEnabled bool
	FromEmail    string

	SMSEnabled  bool
	SMSSenderID string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		EmailEnabled: true,
		SMSEnabled:   false,
	}
}

func (c *Config) Validate() error {
	if c.EmailEnabled && c.FromEmail == "" {
		return fmt.Errorf("from email is required when email notifications are enabled")
	}
	if !c.EmailEnabled && !c.SMSEnabled {
		return fmt.Errorf("at least one notification channel must be enabled")
	}
	return nil
}
