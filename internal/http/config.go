package http

import (
	"github.com/avelichko/inkwell/internal/auth"
	"github.com/avelichko/inkwell/internal/config"
	"github.com/avelichko/inkwell/internal/database"
	"github.com/avelichko/inkwell/internal/database/books"
	"github.com/avelichko/inkwell/internal/database/chapters"
	"github.com/avelichko/inkwell/internal/reminders"
	"github.com/avelichko/inkwell/internal/services"
	"github.com/avelichko/inkwell/internal/syncer"
	"github.com/avelichko/inkwell/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed to
// create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database    *database.Database
	Books       *books.Repository
	Chapters    *chapters.Repository
	BookService *services.BookService
	Syncer      *syncer.Syncer

	// Mirror account for single-user deployments without local auth
	FallbackUID string

	// Reminders
	ReminderSettings  *reminders.SettingsStore
	ReminderScheduler *reminders.Scheduler

	// Authentication (nil when auth is disabled)
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	AuthConfig     config.Auth
	CSRFSecret     []byte
	SecureCookies  bool

	// Task queue client (optional)
	TaskClient *tasks.Client

	// Application info
	Version string
}

// taskEnqueuer adapts the optional task client to the TaskEnqueuer
// interface, preserving nil-ness.
func (cfg RouterConfig) taskEnqueuer() TaskEnqueuer {
	if cfg.TaskClient == nil {
		return nil
	}
	return cfg.TaskClient
}
