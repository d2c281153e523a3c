package http

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/avelichko/inkwell/internal/auth"
	"github.com/avelichko/inkwell/internal/entities"
)

// Each controller defines the store interface it consumes; this file holds
// the ones shared between controllers.

// BookReader provides read access to books.
type BookReader interface {
	GetAll() ([]entities.Book, error)
	GetByID(id string) (*entities.Book, error)
}

// ChapterReader provides read access to chapters.
type ChapterReader interface {
	ForBook(bookID string) ([]entities.Chapter, error)
	Get(bookID string, position int) (*entities.Chapter, error)
}

// TaskEnqueuer submits background tasks. Nil-able: controllers skip
// enqueueing when no task client is configured.
type TaskEnqueuer interface {
	Add(tasks ...backlite.Task) *backlite.TaskAddOp
}

// resolveUID returns the mirror uid for the request: the authenticated
// user's uid when present, otherwise the statically configured one.
func resolveUID(c *gin.Context, fallback string) string {
	if uid := auth.CurrentUID(c); uid != "" {
		return uid
	}
	return fallback
}

// enqueue saves tasks, logging failures instead of failing the request.
// Mirror writes are best-effort; the local store is the source of truth
// until the next reconciliation.
func enqueue(c *gin.Context, client TaskEnqueuer, tasks ...backlite.Task) {
	if client == nil {
		return
	}
	if _, err := client.Add(tasks...).Ctx(c.Request.Context()).Save(); err != nil {
		log.Printf("Failed to enqueue task: %v", err)
	}
}
