package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/avelichko/inkwell/internal/syncer"
)

// ReconcileTask runs a full reconciliation pass against the mirror: every
// remote book is merged into the local store one by one. Enqueued on
// sign-in and available on demand.
type ReconcileTask struct {
	UID string `json:"uid"`
}

// Config returns the queue configuration for reconciliation tasks.
func (t ReconcileTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "reconcile",
		MaxAttempts: 2,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ReconcileProcessor creates a processor function for ReconcileTask.
// Per-book failures are absorbed into the run summary; only a failure to
// reach the mirror at all retries the task.
func ReconcileProcessor(s *syncer.Syncer) backlite.QueueProcessor[ReconcileTask] {
	return func(ctx context.Context, task ReconcileTask) error {
		if task.UID == "" {
			log.Println("[TASK] reconcile skipped: not signed in")
			return nil
		}
		summary, err := s.Run(ctx, task.UID)
		if err != nil {
			return fmt.Errorf("reconcile: %w", err)
		}
		log.Printf("[TASK] Reconciliation finished: %d books processed, %d failed",
			summary.Processed, summary.Failed)
		return nil
	}
}

// NewReconcileQueue creates a backlite queue for reconciliation tasks.
func NewReconcileQueue(s *syncer.Syncer) backlite.Queue {
	return backlite.NewQueue(ReconcileProcessor(s))
}
