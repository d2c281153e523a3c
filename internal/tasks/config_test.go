package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/avelichko/inkwell/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Minute, cfg.RetryDelay)
	assert.Equal(t, 5*time.Minute, cfg.TaskTimeout)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}

func TestFromAppKeepsExplicitValues(t *testing.T) {
	cfg := FromApp(config.Tasks{
		Workers:     8,
		MaxRetries:  1,
		TaskTimeout: time.Minute,
	})
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 1, cfg.MaxRetries)
	assert.Equal(t, time.Minute, cfg.TaskTimeout)

	// Unset fields fall back to defaults
	assert.Equal(t, time.Minute, cfg.RetryDelay)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}

func TestQueueConfigurations(t *testing.T) {
	assert.Equal(t, "sync_book", SyncBookTask{}.Config().Name)
	assert.Equal(t, "mirror_chapter", MirrorChapterTask{}.Config().Name)
	assert.Equal(t, "reconcile", ReconcileTask{}.Config().Name)
}
