package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/avelichko/inkwell/internal/entities"
	"github.com/avelichko/inkwell/internal/syncer"
)

// ChapterGetter loads a single chapter for mirroring.
type ChapterGetter interface {
	Get(bookID string, position int) (*entities.Chapter, error)
}

// MirrorChapterTask writes one chapter's metadata to the mirror. Enqueued
// after each chapter save on a synced book.
type MirrorChapterTask struct {
	UID      string `json:"uid"`
	BookID   string `json:"book_id"`
	Position int    `json:"position"`
}

// Config returns the queue configuration for chapter mirror tasks.
func (t MirrorChapterTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "mirror_chapter",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// MirrorChapterProcessor creates a processor function for MirrorChapterTask.
// A chapter deleted before the task runs is treated as done.
func MirrorChapterProcessor(s *syncer.Syncer, chapters ChapterGetter) backlite.QueueProcessor[MirrorChapterTask] {
	return func(ctx context.Context, task MirrorChapterTask) error {
		chapter, err := chapters.Get(task.BookID, task.Position)
		if err != nil {
			return fmt.Errorf("load chapter %s/%d: %w", task.BookID, task.Position, err)
		}
		if chapter == nil {
			log.Printf("[TASK] mirror_chapter %s/%d skipped: chapter gone", task.BookID, task.Position)
			return nil
		}
		if err := s.MirrorChapter(ctx, task.UID, *chapter); err != nil {
			return fmt.Errorf("mirror chapter %s/%d: %w", task.BookID, task.Position, err)
		}
		return nil
	}
}

// NewMirrorChapterQueue creates a backlite queue for chapter mirror tasks.
func NewMirrorChapterQueue(s *syncer.Syncer, chapters ChapterGetter) backlite.Queue {
	return backlite.NewQueue(MirrorChapterProcessor(s, chapters))
}
