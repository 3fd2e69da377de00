package scheduler

import (
	"time"

	"github.com/smallbiznis/sairex/internal/config"
)

// Config controls how often background jobs run and how long each may take.
type Config struct {
	RunInterval time.Duration
	JobTimeout  time.Duration
	EnabledJobs []string
}

func DefaultConfig() Config {
	return Config{
		RunInterval: 30 * time.Second,
		JobTimeout:  2 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}

// ProvideConfig takes the loop interval from the relay settings loaded at startup.
func ProvideConfig(holder *config.BillingConfigHolder) Config {
	return Config{RunInterval: holder.Get().Relay.Interval}.withDefaults()
}
