// internal/workers/lead/qualify-lead/config.go
package qualifylead

import "time"

// No per-worker config beyond the shared eligibility rule, but the struct is
// provided for consistency with the other workers.
type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
