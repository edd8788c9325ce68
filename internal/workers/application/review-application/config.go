// internal/workers/application/review-application/config.go
package reviewapplication

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout time.Duration
	// SlotCeiling is the founding-cohort size; approvals are refused once the
	// live Approved count reaches it (when EnforceCapacity is set).
	SlotCeiling     int
	EnforceCapacity bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         30 * time.Second,
		SlotCeiling:     100,
		EnforceCapacity: true,
	}
}

func (c *Config) Validate() error {
	if c.SlotCeiling <= 0 {
		return fmt.Errorf("slot ceiling must be positive")
	}
	return nil
}
