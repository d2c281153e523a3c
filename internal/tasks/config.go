package tasks

import (
	"time"

	"github.com/avelichko/inkwell/internal/config"
)

// Config controls the queue worker pool and task retention.
type Config struct {
	Workers           int
	MaxRetries        int
	RetryDelay        time.Duration
	TaskTimeout       time.Duration
	ReleaseAfter      time.Duration
	CleanupInterval   time.Duration
	RetentionDuration time.Duration
}

// FromApp maps the application's task section onto a queue Config,
// backfilling unset fields with defaults.
func FromApp(cfg config.Tasks) Config {
	return Config{
		Workers:           cfg.Workers,
		MaxRetries:        cfg.MaxRetries,
		RetryDelay:        cfg.RetryDelay,
		TaskTimeout:       cfg.TaskTimeout,
		ReleaseAfter:      cfg.ReleaseAfter,
		CleanupInterval:   cfg.CleanupInterval,
		RetentionDuration: cfg.RetentionDuration,
	}.normalized()
}

// DefaultConfig returns a Config suitable for a single-user deployment.
func DefaultConfig() Config {
	return Config{}.normalized()
}

func (c Config) normalized() Config {
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Minute
	}
	if c.TaskTimeout <= 0 {
		c.TaskTimeout = 5 * time.Minute
	}
	if c.ReleaseAfter <= 0 {
		c.ReleaseAfter = 15 * time.Minute
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = time.Hour
	}
	if c.RetentionDuration <= 0 {
		c.RetentionDuration = 24 * time.Hour
	}
	return c
}
