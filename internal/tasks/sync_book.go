package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/avelichko/inkwell/internal/syncer"
)

// SyncBookTask pushes a single local book and its chapters to the mirror.
// Enqueued after book edits when the account is signed in.
type SyncBookTask struct {
	UID    string `json:"uid"`
	BookID string `json:"book_id"`
}

// Config returns the queue configuration for book push tasks.
func (t SyncBookTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "sync_book",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// SyncBookProcessor creates a processor function for SyncBookTask.
func SyncBookProcessor(s *syncer.Syncer) backlite.QueueProcessor[SyncBookTask] {
	return func(ctx context.Context, task SyncBookTask) error {
		if task.UID == "" {
			log.Printf("[TASK] sync_book %s skipped: not signed in", task.BookID)
			return nil
		}
		if err := s.PushBook(ctx, task.UID, task.BookID); err != nil {
			return fmt.Errorf("push book %s: %w", task.BookID, err)
		}
		log.Printf("[TASK] Pushed book %s to mirror", task.BookID)
		return nil
	}
}

// NewSyncBookQueue creates a backlite queue for book push tasks.
func NewSyncBookQueue(s *syncer.Syncer) backlite.Queue {
	return backlite.NewQueue(SyncBookProcessor(s))
}
