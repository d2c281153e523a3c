package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avelichko/inkwell/internal/entities"
	"github.com/avelichko/inkwell/internal/reminders"
)

// RemindersController manages writing reminder settings and the scheduler
// that fires them.
type RemindersController struct {
	settings  *reminders.SettingsStore
	scheduler *reminders.Scheduler
}

func NewRemindersController(settings *reminders.SettingsStore, scheduler *reminders.Scheduler) *RemindersController {
	return &RemindersController{settings: settings, scheduler: scheduler}
}

type reminderSettingsRequest struct {
	Enabled  bool     `json:"enabled"`
	Interval string   `json:"interval"`
	BookIDs  []string `json:"book_ids"`
}

// GetSettings returns the current reminder configuration.
// GET /api/reminders
func (controller *RemindersController) GetSettings(c *gin.Context) {
	settings := controller.settings.Get()

	var next *string
	if t := controller.scheduler.NextRun(); t != nil {
		s := t.String()
		next = &s
	}

	c.IndentedJSON(http.StatusOK, gin.H{
		"enabled":  settings.Enabled,
		"interval": settings.Interval,
		"book_ids": settings.BookIDs,
		"running":  controller.scheduler.IsRunning(),
		"next_run": next,
	})
}

// UpdateSettings replaces the reminder configuration and reschedules.
// PUT /api/reminders
func (controller *RemindersController) UpdateSettings(c *gin.Context) {
	var req reminderSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	interval := entities.ReminderInterval(req.Interval)
	if req.Enabled && !interval.Valid() {
		respondBadRequest(c, "invalid reminder interval")
		return
	}

	controller.settings.Set(entities.ReminderSettings{
		Enabled:  req.Enabled,
		Interval: interval,
		BookIDs:  req.BookIDs,
	})

	if err := controller.scheduler.Reschedule(); err != nil {
		respondInternalError(c, err, "reschedule reminders")
		return
	}
	respondSuccess(c, "reminder settings updated")
}
