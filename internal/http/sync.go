package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avelichko/inkwell/internal/syncer"
	"github.com/avelichko/inkwell/internal/tasks"
)

// SyncController exposes mirror synchronization: triggering a full
// reconciliation, pushing a single book, and removing a book's remote copy.
type SyncController struct {
	syncer      *syncer.Syncer
	taskClient  TaskEnqueuer
	fallbackUID string
}

func NewSyncController(s *syncer.Syncer, taskClient TaskEnqueuer, fallbackUID string) *SyncController {
	return &SyncController{
		syncer:      s,
		taskClient:  taskClient,
		fallbackUID: fallbackUID,
	}
}

// TriggerReconcile enqueues a full reconciliation pass.
// POST /api/sync
func (controller *SyncController) TriggerReconcile(c *gin.Context) {
	uid := resolveUID(c, controller.fallbackUID)
	if uid == "" {
		respondError(c, http.StatusConflict, "not signed in to a mirror account")
		return
	}
	if controller.taskClient == nil {
		respondError(c, http.StatusServiceUnavailable, "task queue disabled")
		return
	}
	enqueue(c, controller.taskClient, tasks.ReconcileTask{UID: uid})
	respondAccepted(c, "reconciliation scheduled", nil)
}

// GetStatus reports the outcome of the most recent reconciliation run.
// GET /api/sync/status
func (controller *SyncController) GetStatus(c *gin.Context) {
	summary := controller.syncer.LastSummary()
	if summary == nil {
		c.IndentedJSON(http.StatusOK, gin.H{"ran": false})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{
		"ran":          true,
		"processed":    summary.Processed,
		"failed":       summary.Failed,
		"completed_at": summary.CompletedAt,
	})
}

// PushBook schedules a single book push to the mirror.
// POST /api/books/:id/sync
func (controller *SyncController) PushBook(c *gin.Context) {
	uid := resolveUID(c, controller.fallbackUID)
	if uid == "" {
		respondError(c, http.StatusConflict, "not signed in to a mirror account")
		return
	}
	if controller.taskClient == nil {
		respondError(c, http.StatusServiceUnavailable, "task queue disabled")
		return
	}
	enqueue(c, controller.taskClient, tasks.SyncBookTask{UID: uid, BookID: c.Param("id")})
	respondAccepted(c, "book push scheduled", gin.H{"book_id": c.Param("id")})
}

// RemoveRemote deletes a book's remote copy and marks it unsynced locally.
// Runs synchronously so the caller learns whether the remote delete landed.
// DELETE /api/books/:id/mirror
func (controller *SyncController) RemoveRemote(c *gin.Context) {
	uid := resolveUID(c, controller.fallbackUID)
	if uid == "" {
		respondError(c, http.StatusConflict, "not signed in to a mirror account")
		return
	}
	if err := controller.syncer.RemoveRemote(c.Request.Context(), uid, c.Param("id")); err != nil {
		respondInternalError(c, err, "remove remote book")
		return
	}
	respondSuccess(c, "remote copy removed")
}
