// internal/workers/application/count-available-slots/config.go
package countavailableslots

import (
	"fmt"
	"time"
)

type Config struct {
	Timeout     time.Duration
	SlotCeiling int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     10 * time.Second,
		SlotCeiling: 100,
	}
}

func (c *Config) Validate() error {
	if c.SlotCeiling <= 0 {
		return fmt.Errorf("slot ceiling must be positive")
	}
	return nil
}
